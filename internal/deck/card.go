// Package deck implements the two-deck Guandan card stack: 108 cards with
// stable identity tags, level-card promotion and the wild-card flag.
package deck

import "fmt"

// Suit represents a card suit. Jokers carry their own suit so that the four
// joker cards never collide with the coloured packs.
type Suit int

const (
	Diamonds Suit = iota
	Clubs
	Hearts
	Spades
	Jokers
)

// String returns the suit name used in identity tags (e.g. "Hearts")
func (s Suit) String() string {
	switch s {
	case Diamonds:
		return "Diamonds"
	case Clubs:
		return "Clubs"
	case Hearts:
		return "Hearts"
	case Spades:
		return "Spades"
	case Jokers:
		return "Joker"
	default:
		return "?"
	}
}

// Symbol returns the one-rune display form of a suit
func (s Suit) Symbol() string {
	switch s {
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	case Jokers:
		return "★"
	default:
		return "?"
	}
}

// Rank represents a card rank. Standard ranks carry their face value
// (Two = 2 .. Ace = 14); the jokers sit above them.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
	SmallJoker
	BigJoker
)

// String returns the short rank form used in identity tags
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	case r == SmallJoker:
		return "SJ"
	case r == BigJoker:
		return "BJ"
	default:
		return "?"
	}
}

// IsJoker returns true for the two joker ranks
func (r Rank) IsJoker() bool {
	return r == SmallJoker || r == BigJoker
}

// Logic values of the non-standard ranks. Level cards sit between Ace and
// SmallJoker regardless of the rank printed on them.
const (
	LevelValue      = 19
	SmallJokerValue = 20
	BigJokerValue   = 21
)

// Card is one of the 108 cards in the stack. Suit, Rank and Copy form the
// stable identity; LevelCard and Wild are derived flags recomputed by
// PromoteForLevel whenever a deal's level is known.
type Card struct {
	Suit      Suit
	Rank      Rank
	Copy      int
	LevelCard bool
	Wild      bool
}

// ID returns the identity tag unique across the two-deck stack,
// e.g. "Hearts-7-0" or "Joker-BJ-1". Tags survive shuffle and deal
// unchanged; they are the sole key by which plays are validated.
func (c Card) ID() string {
	return fmt.Sprintf("%s-%s-%d", c.Suit, c.Rank, c.Copy)
}

// String returns the display form, e.g. "7♥"
func (c Card) String() string {
	if c.Rank.IsJoker() {
		return c.Rank.String()
	}
	return c.Rank.String() + c.Suit.Symbol()
}

// LogicValue returns the card's comparison value under the given level:
// standard ranks 2..14, level rank 19, SmallJoker 20, BigJoker 21.
func (c Card) LogicValue(level Rank) int {
	switch {
	case c.Rank == BigJoker:
		return BigJokerValue
	case c.Rank == SmallJoker:
		return SmallJokerValue
	case c.Rank == level:
		return LevelValue
	default:
		return int(c.Rank)
	}
}

// FaceValue returns the printed rank used when the card participates in a
// sequence (straight, tube, plate). Jokers have no face value.
func (c Card) FaceValue() int {
	if c.Rank.IsJoker() {
		return 0
	}
	return int(c.Rank)
}

// IsLevelCard reports whether the card's rank equals the given level
func (c Card) IsLevelCard(level Rank) bool {
	return !c.Rank.IsJoker() && c.Rank == level
}

// IsWild reports whether the card is the Hearts level card
func (c Card) IsWild(level Rank) bool {
	return c.Suit == Hearts && c.IsLevelCard(level)
}
