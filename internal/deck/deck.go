package deck

import (
	rand "math/rand/v2"
	"sort"
)

// Size is the number of cards in the two-deck stack: two copies of a 52-card
// pack plus two pairs of jokers.
const Size = 108

// HandSize is the number of cards each of the four seats receives
const HandSize = Size / 4

// Deck holds the 108-card stack together with the room-private random
// source used to shuffle it.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates an ordered 108-card stack. The rng is only consumed by
// Shuffle, so a nil rng is fine for callers that never shuffle.
func New(rng *rand.Rand) *Deck {
	cards := make([]Card, 0, Size)
	for cp := 0; cp < 2; cp++ {
		for suit := Diamonds; suit <= Spades; suit++ {
			for rank := Two; rank <= Ace; rank++ {
				cards = append(cards, Card{Suit: suit, Rank: rank, Copy: cp})
			}
		}
		cards = append(cards,
			Card{Suit: Jokers, Rank: SmallJoker, Copy: cp},
			Card{Suit: Jokers, Rank: BigJoker, Copy: cp},
		)
	}
	return &Deck{cards: cards, rng: rng}
}

// Shuffle permutes the stack in place (Fisher-Yates). Identity tags are
// untouched; only the order changes.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// DealHands distributes the stack round-robin into four 27-card hands
func (d *Deck) DealHands() [4][]Card {
	var hands [4][]Card
	for i := range hands {
		hands[i] = make([]Card, 0, HandSize)
	}
	for i, c := range d.cards {
		hands[i%4] = append(hands[i%4], c)
	}
	return hands
}

// Cards returns the stack in its current order
func (d *Deck) Cards() []Card {
	return d.cards
}

// PromoteForLevel returns a copy of cards with the LevelCard and Wild flags
// recomputed for the given level. The input is not mutated.
func PromoteForLevel(cards []Card, level Rank) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		c.LevelCard = c.IsLevelCard(level)
		c.Wild = c.IsWild(level)
		out[i] = c
	}
	return out
}

// SortDescending returns a copy of cards stably sorted by logic value
// descending, suit descending as the tie-break. The head of the result is
// the hand's largest card.
func SortDescending(cards []Card, level Rank) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := out[i].LogicValue(level), out[j].LogicValue(level)
		if vi != vj {
			return vi > vj
		}
		return out[i].Suit > out[j].Suit
	})
	return out
}

// IndexByID returns the position of the card with the given identity tag,
// or -1 when it is absent.
func IndexByID(cards []Card, id string) int {
	for i, c := range cards {
		if c.ID() == id {
			return i
		}
	}
	return -1
}
