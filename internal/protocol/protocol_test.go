package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/guandan/internal/deck"
)

func TestEncodeParseDecode(t *testing.T) {
	data, err := Encode(EventPlayHand, PlayHandData{Cards: []string{"Hearts-7-0", "Spades-7-0"}})
	require.NoError(t, err)

	m, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, EventPlayHand, m.Event)

	var play PlayHandData
	require.NoError(t, m.Decode(&play))
	assert.Equal(t, []string{"Hearts-7-0", "Spades-7-0"}, play.Cards)
}

func TestParseRejectsUntagged(t *testing.T) {
	_, err := Parse([]byte(`{"payload":{}}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestEmptyPayloadEvents(t *testing.T) {
	data, err := Encode(EventReady, nil)
	require.NoError(t, err)

	m, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, EventReady, m.Event)
	assert.Empty(t, m.Payload)
}

func TestHandViewWireForms(t *testing.T) {
	t.Run("hidden hand is a bare count", func(t *testing.T) {
		data, err := json.Marshal(HiddenHand(27))
		require.NoError(t, err)
		assert.Equal(t, "27", string(data))
	})

	t.Run("visible hand is a card array", func(t *testing.T) {
		cards := deck.MustParseCards("7h SJ")
		data, err := json.Marshal(VisibleHand(cards))
		require.NoError(t, err)

		var parsed []Card
		require.NoError(t, json.Unmarshal(data, &parsed))
		require.Len(t, parsed, 2)
		assert.Equal(t, "Hearts-7-0", parsed[0].ID)
		assert.Equal(t, "Joker-SJ-0", parsed[1].ID)
	})

	t.Run("empty visible hand stays an array", func(t *testing.T) {
		data, err := json.Marshal(VisibleHand(nil))
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	})

	t.Run("round trip", func(t *testing.T) {
		hands := [4]HandView{
			VisibleHand(deck.MustParseCards("7h 7s")),
			HiddenHand(27),
			HiddenHand(0),
			VisibleHand(nil),
		}
		data, err := json.Marshal(hands)
		require.NoError(t, err)

		var parsed [4]HandView
		require.NoError(t, json.Unmarshal(data, &parsed))
		assert.Len(t, parsed[0].Cards, 2)
		assert.Equal(t, 2, parsed[0].Count)
		assert.Nil(t, parsed[1].Cards)
		assert.Equal(t, 27, parsed[1].Count)
		assert.Equal(t, 0, parsed[2].Count)
		assert.NotNil(t, parsed[3].Cards)
	})
}

func TestCardFromDeck(t *testing.T) {
	cards := deck.PromoteForLevel(deck.MustParseCards("7h 7s 9c BJ"), deck.Seven)

	wild := CardFromDeck(cards[0])
	assert.Equal(t, "Hearts-7-0", wild.ID)
	assert.Equal(t, "Hearts", wild.Suit)
	assert.Equal(t, "7", wild.Rank)
	assert.True(t, wild.LevelCard)
	assert.True(t, wild.Wild)

	level := CardFromDeck(cards[1])
	assert.True(t, level.LevelCard)
	assert.False(t, level.Wild)

	plain := CardFromDeck(cards[2])
	assert.False(t, plain.LevelCard)
	assert.False(t, plain.Wild)

	joker := CardFromDeck(cards[3])
	assert.Equal(t, "Joker", joker.Suit)
	assert.Equal(t, "BJ", joker.Rank)
}

func TestGameModeValid(t *testing.T) {
	assert.True(t, ModeNormal.Valid())
	assert.True(t, ModeSkill.Valid())
	assert.False(t, GameMode("Turbo").Valid())
}

func TestGameStateOmitsEmptyOptionals(t *testing.T) {
	state := GameStateData{
		Phase:       "Playing",
		Level:       "2",
		CurrentTurn: 0,
		Hands:       [4]HandView{VisibleHand(nil), HiddenHand(1), HiddenHand(1), HiddenHand(1)},
		Winners:     []int{},
		TeamLevels:  [2]string{"2", "2"},
	}
	data, err := json.Marshal(state)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "lastHand")
	assert.NotContains(t, string(data), "tributeState")
	assert.Contains(t, string(data), `"winners":[]`)
}
