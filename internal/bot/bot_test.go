package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/guandan/internal/deck"
	"github.com/lox/guandan/internal/randutil"
	"github.com/lox/guandan/internal/rules"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"", "low"},
		{"low", "low"},
		{"LOW", "low"},
		{"random", "random"},
		{"rand", "random"},
	}
	for _, tt := range tests {
		s, err := Resolve(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, s.Name())
	}

	_, err := Resolve("chart")
	assert.Error(t, err)
}

func TestLowBotLeadsLowestSingle(t *testing.T) {
	s, _ := Resolve("low")
	play := s.Decide(deck.MustParseCards("3c 3d 7s Kc"), deck.Two, nil, nil)

	require.Len(t, play, 1)
	assert.Equal(t, 3, play[0].LogicValue(deck.Two))
}

func TestLowBotTakesFinishingMove(t *testing.T) {
	s, _ := Resolve("low")

	play := s.Decide(deck.MustParseCards("9c 9d"), deck.Two, nil, nil)
	assert.Len(t, play, 2, "a pair that empties the hand beats leading a single")

	play = s.Decide(deck.MustParseCards("Qc Qd"), deck.Two, mustHand(t, "9c 9d", deck.Two), nil)
	assert.Len(t, play, 2)
}

func TestLowBotFollowsWithCheapest(t *testing.T) {
	s, _ := Resolve("low")
	hand := deck.MustParseCards("4c 4d Tc Td 6c 6d 6s 6h")

	play := s.Decide(hand, deck.Two, mustHand(t, "9c 9d", deck.Two), nil)
	require.NotNil(t, play)
	h, err := rules.Classify(play, deck.Two)
	require.NoError(t, err)
	assert.Equal(t, rules.Pair, h.Type)
	assert.Equal(t, 10, h.Value)
}

func TestLowBotBombsOnlyWhenForced(t *testing.T) {
	s, _ := Resolve("low")
	hand := deck.MustParseCards("4c 4d Tc Td 6c 6d 6s 6h")

	play := s.Decide(hand, deck.Two, mustHand(t, "Ac Ad", deck.Two), nil)
	require.NotNil(t, play)
	h, err := rules.Classify(play, deck.Two)
	require.NoError(t, err)
	assert.Equal(t, rules.Bomb, h.Type)
	assert.Equal(t, 6, h.Value)
}

func TestLowBotPassesWhenBeaten(t *testing.T) {
	s, _ := Resolve("low")
	hand := deck.MustParseCards("4c 4d Tc Td 6c 6d 6s 6h")

	play := s.Decide(hand, deck.Two, mustHand(t, "7c 7d 7s 7h", deck.Two), nil)
	assert.Nil(t, play)
}

func TestRandBotStaysLegal(t *testing.T) {
	s, _ := Resolve("random")
	hand := deck.MustParseCards("7h 7c 9c 9d Jc Qd Kc Ks 3c 4c 5c 6c")
	target := mustHand(t, "5d 5s", deck.Seven)

	held := make(map[string]int)
	for _, c := range hand {
		held[c.ID()]++
	}

	for seed := int64(0); seed < 50; seed++ {
		rng := randutil.New(seed)

		play := s.Decide(hand, deck.Seven, target, rng)
		if play != nil {
			h, err := rules.Classify(play, deck.Seven)
			require.NoError(t, err)
			assert.Positive(t, rules.Compare(h, *target))
		}

		lead := s.Decide(hand, deck.Seven, nil, rng)
		require.NotNil(t, lead, "a free lead must always produce a play")
		_, err := rules.Classify(lead, deck.Seven)
		require.NoError(t, err)
		for _, c := range lead {
			assert.Positive(t, held[c.ID()], "played a card outside the hand")
		}
	}
}

func TestTributePayment(t *testing.T) {
	hand := deck.MustParseCards("3d Kh 7c As")

	assert.Equal(t, deck.Ace, TributePayment(hand, deck.Two).Rank)
	assert.Equal(t, deck.Seven, TributePayment(hand, deck.Seven).Rank)

	withJoker := deck.MustParseCards("5c BJ 9d")
	assert.Equal(t, deck.BigJoker, TributePayment(withJoker, deck.Two).Rank)
}

func TestTributeReturn(t *testing.T) {
	hand := deck.MustParseCards("3d Kh 7c As")

	assert.Equal(t, deck.Three, TributeReturn(hand, deck.Two).Rank)
	assert.Equal(t, deck.Three, TributeReturn(hand, deck.Seven).Rank)
}
