package deck

import (
	"fmt"
	"strings"
)

// ParseCards parses a space-separated card string such as "7h 7s 10d SJ BJ"
// into cards. Ranks are 2-10/J/Q/K/A with a trailing suit letter
// (s/h/c/d); jokers are written SJ and BJ. Copy numbers are assigned in
// order of appearance, so a card may appear at most twice.
//
// Intended for tests and tooling; live hands always come from a dealt Deck.
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	seen := make(map[string]int)
	for _, f := range fields {
		c, err := parseCard(f)
		if err != nil {
			return nil, err
		}
		key := c.Suit.String() + "-" + c.Rank.String()
		c.Copy = seen[key]
		seen[key]++
		if c.Copy > 1 {
			return nil, fmt.Errorf("card %q appears more than twice", f)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is ParseCards that panics on malformed input
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// ParseRank parses the short rank form produced by Rank.String,
// e.g. "7", "10", "Q", "BJ".
func ParseRank(s string) (Rank, error) {
	for r := Two; r <= BigJoker; r++ {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("invalid rank %q", s)
}

// ParseID parses an identity tag produced by Card.ID, e.g. "Hearts-7-0".
// The derived flags are left unset; only identity is recovered.
func ParseID(id string) (Card, error) {
	parts := strings.Split(id, "-")
	if len(parts) != 3 {
		return Card{}, fmt.Errorf("invalid card id %q", id)
	}

	var suit Suit
	switch parts[0] {
	case "Diamonds":
		suit = Diamonds
	case "Clubs":
		suit = Clubs
	case "Hearts":
		suit = Hearts
	case "Spades":
		suit = Spades
	case "Joker":
		suit = Jokers
	default:
		return Card{}, fmt.Errorf("invalid suit in card id %q", id)
	}

	rank, err := ParseRank(parts[1])
	if err != nil {
		return Card{}, fmt.Errorf("invalid rank in card id %q", id)
	}
	if (suit == Jokers) != rank.IsJoker() {
		return Card{}, fmt.Errorf("invalid suit/rank pairing in card id %q", id)
	}

	var cp int
	if _, err := fmt.Sscanf(parts[2], "%d", &cp); err != nil || cp < 0 || cp > 1 {
		return Card{}, fmt.Errorf("invalid copy in card id %q", id)
	}

	return Card{Suit: suit, Rank: rank, Copy: cp}, nil
}

func parseCard(s string) (Card, error) {
	switch strings.ToUpper(s) {
	case "SJ":
		return Card{Suit: Jokers, Rank: SmallJoker}, nil
	case "BJ":
		return Card{Suit: Jokers, Rank: BigJoker}, nil
	}
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}

	var suit Suit
	switch s[len(s)-1] {
	case 's', 'S':
		suit = Spades
	case 'h', 'H':
		suit = Hearts
	case 'c', 'C':
		suit = Clubs
	case 'd', 'D':
		suit = Diamonds
	default:
		return Card{}, fmt.Errorf("invalid suit in card %q", s)
	}

	var rank Rank
	switch strings.ToUpper(s[:len(s)-1]) {
	case "2":
		rank = Two
	case "3":
		rank = Three
	case "4":
		rank = Four
	case "5":
		rank = Five
	case "6":
		rank = Six
	case "7":
		rank = Seven
	case "8":
		rank = Eight
	case "9":
		rank = Nine
	case "10", "T":
		rank = Ten
	case "J":
		rank = Jack
	case "Q":
		rank = Queen
	case "K":
		rank = King
	case "A":
		rank = Ace
	default:
		return Card{}, fmt.Errorf("invalid rank in card %q", s)
	}

	return Card{Suit: suit, Rank: rank}, nil
}
