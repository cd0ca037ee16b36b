package game

import (
	rand "math/rand/v2"

	"github.com/lox/guandan/internal/deck"
)

// MaxLevel is the level cap. A team must win twice in a row while already
// here to take the match.
const MaxLevel = deck.Ace

// Levels holds both team levels indexed by team number
type Levels [2]deck.Rank

// Outcome summarises a concluded deal
type Outcome struct {
	Order       []int
	WinningTeam int
	Step        int
	Levels      Levels
	MatchOver   bool
}

// Match chains deals. It owns the current deal, both team levels, the
// active (banker) team and the consecutive-win counters that decide
// overall victory.
type Match struct {
	rng         *rand.Rand
	levels      Levels
	activeTeam  int
	consecutive [2]int
	prevOrder   []int
	deal        *Deal
	dealsPlayed int
}

// NewMatch creates a fresh match: both teams at level 2, team 0 active
func NewMatch(rng *rand.Rand) *Match {
	return &Match{rng: rng, levels: Levels{deck.Two, deck.Two}}
}

// StartDeal constructs and starts the next deal at the active team's level
func (m *Match) StartDeal() *Deal {
	m.deal = NewDeal(m.rng, m.levels[m.activeTeam], m.activeTeam, m.prevOrder)
	m.deal.Start()
	return m.deal
}

// ConcludeDeal applies the level-up step for the finished deal, switches
// the banker to the winning team and reports whether the match is over.
// The consecutive-win counter only moves for a team that began the deal at
// MaxLevel; a deal win by the other side resets it.
func (m *Match) ConcludeDeal(order []int) Outcome {
	winTeam := teamOf(order[0])

	step := 1
	switch {
	case sameTeam(order[0], order[1]):
		step = 3
	case sameTeam(order[0], order[2]):
		step = 2
	}

	m.consecutive[1-winTeam] = 0
	matchOver := false
	if m.levels[winTeam] == MaxLevel {
		m.consecutive[winTeam]++
		matchOver = m.consecutive[winTeam] >= 2
	}

	next := m.levels[winTeam] + deck.Rank(step)
	if next > MaxLevel {
		next = MaxLevel
	}
	m.levels[winTeam] = next
	m.activeTeam = winTeam
	m.prevOrder = append([]int(nil), order...)
	m.dealsPlayed++
	m.deal = nil

	return Outcome{
		Order:       append([]int(nil), order...),
		WinningTeam: winTeam,
		Step:        step,
		Levels:      m.levels,
		MatchOver:   matchOver,
	}
}

// Reset discards the current deal and restores fresh-match state. Used on
// match completion and host force-end.
func (m *Match) Reset() {
	m.levels = Levels{deck.Two, deck.Two}
	m.activeTeam = 0
	m.consecutive = [2]int{}
	m.prevOrder = nil
	m.deal = nil
	m.dealsPlayed = 0
}

// Deal returns the deal in progress, or nil between deals
func (m *Match) Deal() *Deal { return m.deal }

// Levels returns both team levels
func (m *Match) Levels() Levels { return m.levels }

// ActiveTeam returns the banker team
func (m *Match) ActiveTeam() int { return m.activeTeam }

// DealsPlayed returns the number of concluded deals
func (m *Match) DealsPlayed() int { return m.dealsPlayed }
