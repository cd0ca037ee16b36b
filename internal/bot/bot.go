// Package bot provides the strategies that play for vacant or disconnected
// seats, and the legal-move generator they share.
package bot

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/lox/guandan/internal/deck"
	"github.com/lox/guandan/internal/rules"
)

// Strategy picks a bot seat's play. Decide returns the cards to put down, or
// nil to pass; target is the hand to beat, nil on a free lead. Strategies
// are stateless, randomness comes in through rng.
type Strategy interface {
	Name() string
	Decide(hand []deck.Card, level deck.Rank, target *rules.Hand, rng *rand.Rand) []deck.Card
}

// Resolve returns the strategy registered under name. The empty name means
// the default conservative strategy.
func Resolve(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "low":
		return lowBot{}, nil
	case "random", "rand":
		return randBot{}, nil
	}
	return nil, fmt.Errorf("unknown bot strategy %q", name)
}

// Names lists the registered strategy names.
func Names() []string {
	return []string{"low", "random"}
}

// TributePayment picks the card a bot seat pays when it owes tribute: its
// largest, which is the only payment the rules accept.
func TributePayment(hand []deck.Card, level deck.Rank) deck.Card {
	return rules.Largest(hand, level)
}

// TributeReturn picks the card a bot seat hands back: its lowest.
func TributeReturn(hand []deck.Card, level deck.Rank) deck.Card {
	sorted := deck.SortDescending(hand, level)
	return sorted[len(sorted)-1]
}
