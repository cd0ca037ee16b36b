// Package rules classifies candidate plays and compares them under the
// bomb-ladder ordering.
package rules

import (
	"github.com/lox/guandan/internal/deck"
)

// Type identifies the shape of a classified play
type Type int

const (
	Single Type = iota + 1
	Pair
	Trips
	TripsWithPair
	Straight
	Tube
	Plate
	Bomb
	StraightFlush
	FourKings
)

// String returns the wire name of the type
func (t Type) String() string {
	switch t {
	case Single:
		return "Single"
	case Pair:
		return "Pair"
	case Trips:
		return "Trips"
	case TripsWithPair:
		return "TripsWithPair"
	case Straight:
		return "Straight"
	case Tube:
		return "Tube"
	case Plate:
		return "Plate"
	case Bomb:
		return "Bomb"
	case StraightFlush:
		return "StraightFlush"
	case FourKings:
		return "FourKings"
	default:
		return "Unknown"
	}
}

// IsBomb reports whether the type belongs to the bomb ladder
func (t Type) IsBomb() bool {
	return t == Bomb || t == StraightFlush || t == FourKings
}

// Hand is a classification result. Value is the logic value of the defining
// rank, except for sequence shapes (Straight, StraightFlush, Tube, Plate)
// where it is the highest face rank of the run. BombCount is set for Bomb
// and StraightFlush only.
type Hand struct {
	Type      Type
	Cards     []deck.Card
	Value     int
	BombCount int
}

// ladderScore positions a bomb-family hand on the ladder:
// FourKings > bombs of six or more > straight flush > 5-bomb > 4-bomb.
// Scores are doubled so the straight flush can sit at 5.5 without floats.
func (h Hand) ladderScore() int {
	switch h.Type {
	case FourKings:
		return 1000
	case StraightFlush:
		return 11
	default:
		return h.BombCount * 2
	}
}

// Compare returns >0 when a beats b, <0 when b beats a, and 0 when neither
// beats the other. Hands of different non-bomb types (or different card
// counts) are incomparable; callers must treat 0 as "does not beat".
func Compare(a, b Hand) int {
	if a.Type.IsBomb() || b.Type.IsBomb() {
		if !b.Type.IsBomb() {
			return 1
		}
		if !a.Type.IsBomb() {
			return -1
		}
		if as, bs := a.ladderScore(), b.ladderScore(); as != bs {
			return sign(as - bs)
		}
		return sign(a.Value - b.Value)
	}
	if a.Type != b.Type || len(a.Cards) != len(b.Cards) {
		return 0
	}
	return sign(a.Value - b.Value)
}

// Largest returns the card with the highest logic value, suit breaking ties
func Largest(cards []deck.Card, level deck.Rank) deck.Card {
	return deck.SortDescending(cards, level)[0]
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
