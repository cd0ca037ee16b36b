package bot

import (
	"math/rand/v2"

	"github.com/lox/guandan/internal/deck"
	"github.com/lox/guandan/internal/rules"
)

// randBot draws uniformly among the legal moves; when following, passing is
// one more option in the draw.
type randBot struct{}

func (randBot) Name() string { return "random" }

func (randBot) Decide(hand []deck.Card, level deck.Rank, target *rules.Hand, rng *rand.Rand) []deck.Card {
	moves := Moves(hand, level, target)
	if len(moves) == 0 {
		return nil
	}
	n := len(moves)
	if target != nil {
		n++
	}
	k := rng.IntN(n)
	if k == len(moves) {
		return nil
	}
	return moves[k].Cards
}
