package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/guandan/internal/deck"
	"github.com/lox/guandan/internal/randutil"
)

func TestLevelUpSteps(t *testing.T) {
	tests := []struct {
		name  string
		order []int
		team  int
		step  int
	}{
		{"double win", []int{0, 2, 1, 3}, 0, 3},
		{"first and third", []int{1, 0, 3, 2}, 1, 2},
		{"first and last", []int{0, 1, 3, 2}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatch(nil)
			out := m.ConcludeDeal(tt.order)
			assert.Equal(t, tt.team, out.WinningTeam)
			assert.Equal(t, tt.step, out.Step)
			assert.Equal(t, deck.Two+deck.Rank(tt.step), out.Levels[tt.team])
			assert.Equal(t, deck.Two, out.Levels[1-tt.team], "loser level unchanged")
			assert.False(t, out.MatchOver)
		})
	}
}

func TestBankerSwitchesToWinner(t *testing.T) {
	m := NewMatch(nil)
	require.Equal(t, 0, m.ActiveTeam())

	m.ConcludeDeal([]int{1, 3, 0, 2})
	assert.Equal(t, 1, m.ActiveTeam())

	m.ConcludeDeal([]int{0, 2, 1, 3})
	assert.Equal(t, 0, m.ActiveTeam())
}

func TestLevelSaturates(t *testing.T) {
	m := NewMatch(nil)
	m.levels[0] = deck.King

	out := m.ConcludeDeal([]int{0, 2, 1, 3})
	assert.Equal(t, MaxLevel, out.Levels[0], "13 + 3 caps at the ace")
	assert.False(t, out.MatchOver, "the team was not yet at the cap when the deal began")
}

func TestMatchTermination(t *testing.T) {
	m := NewMatch(nil)
	m.levels[0] = MaxLevel

	out := m.ConcludeDeal([]int{0, 2, 1, 3})
	require.False(t, out.MatchOver, "first win at the cap")

	out = m.ConcludeDeal([]int{2, 0, 3, 1})
	assert.True(t, out.MatchOver, "second consecutive win at the cap")
	assert.Equal(t, 0, out.WinningTeam)
	assert.Equal(t, Levels{MaxLevel, deck.Two}, out.Levels)
}

func TestOpponentWinResetsConsecutive(t *testing.T) {
	m := NewMatch(nil)
	m.levels[0] = MaxLevel

	require.False(t, m.ConcludeDeal([]int{0, 2, 1, 3}).MatchOver)
	require.False(t, m.ConcludeDeal([]int{1, 3, 0, 2}).MatchOver, "team 1 interrupts")
	require.False(t, m.ConcludeDeal([]int{0, 2, 1, 3}).MatchOver, "count restarts at one")
	assert.True(t, m.ConcludeDeal([]int{0, 2, 1, 3}).MatchOver)
}

func TestNoCountingBelowCap(t *testing.T) {
	m := NewMatch(nil)
	m.levels[0] = deck.King

	// The win that reaches the cap does not itself count.
	require.False(t, m.ConcludeDeal([]int{0, 2, 1, 3}).MatchOver)
	require.False(t, m.ConcludeDeal([]int{0, 2, 1, 3}).MatchOver)
	assert.True(t, m.ConcludeDeal([]int{0, 2, 1, 3}).MatchOver)
}

func TestReset(t *testing.T) {
	m := NewMatch(randutil.New(7))
	m.StartDeal()
	m.ConcludeDeal([]int{0, 2, 1, 3})
	require.Equal(t, 1, m.DealsPlayed())

	m.Reset()
	assert.Equal(t, Levels{deck.Two, deck.Two}, m.Levels())
	assert.Equal(t, 0, m.ActiveTeam())
	assert.Nil(t, m.Deal())
	assert.Equal(t, 0, m.DealsPlayed())
}

func TestStartDealChainsState(t *testing.T) {
	m := NewMatch(randutil.New(11))

	first := m.StartDeal()
	require.Equal(t, Playing, first.Phase())
	assert.Equal(t, deck.Two, first.Level())
	assert.Equal(t, 0, first.CurrentTurn())

	// Conclude with a tie pattern so the next deal skips tribute and the
	// start seat is deterministic regardless of the dealt hands.
	out := m.ConcludeDeal([]int{1, 0, 2, 3})
	require.Equal(t, 1, out.WinningTeam)
	require.Equal(t, 1, out.Step)
	require.Nil(t, m.Deal())

	second := m.StartDeal()
	assert.Equal(t, m.Deal(), second)
	assert.Equal(t, deck.Three, second.Level(), "team 1 defends its new level")
	assert.Equal(t, 1, second.ActiveTeam())
	assert.Equal(t, Playing, second.Phase())
	assert.Equal(t, 2, second.CurrentTurn(), "third finisher of the tie leads")
}
