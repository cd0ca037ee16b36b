package bot

import (
	"math/rand/v2"

	"github.com/lox/guandan/internal/deck"
	"github.com/lox/guandan/internal/rules"
)

// lowBot plays the cheapest thing that works: the lowest single on a free
// lead, the smallest beating shape otherwise, bombs only when nothing else
// beats. A move that empties the hand is always taken.
type lowBot struct{}

func (lowBot) Name() string { return "low" }

func (lowBot) Decide(hand []deck.Card, level deck.Rank, target *rules.Hand, _ *rand.Rand) []deck.Card {
	moves := Moves(hand, level, target)
	if len(moves) == 0 {
		return nil
	}
	for _, m := range moves {
		if len(m.Cards) == len(hand) {
			return m.Cards
		}
	}
	if target == nil {
		for _, m := range moves {
			if m.Type == rules.Single {
				return m.Cards
			}
		}
	}
	return moves[0].Cards
}
