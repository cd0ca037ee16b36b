package rules

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lox/guandan/internal/deck"
)

// ErrInvalidHand is returned when a card multiset forms no legal shape
var ErrInvalidHand = errors.New("not a legal hand")

// Classify determines the shape of a candidate play under the given level.
// Wild cards (the Hearts level card) may substitute for any rank up to Ace
// in singles, pairs, trips, trips-with-pair and bombs; sequence shapes are
// natural, with every card participating at its own face rank. A five-card
// set that reduces to one rank is a bomb, never trips-with-pair.
func Classify(cards []deck.Card, level deck.Rank) (Hand, error) {
	if len(cards) == 0 {
		return Hand{}, fmt.Errorf("%w: no cards", ErrInvalidHand)
	}

	var wilds int
	freq := make(map[int]int)
	for _, c := range cards {
		if c.IsWild(level) {
			wilds++
			continue
		}
		freq[c.LogicValue(level)]++
	}

	sorted := deck.SortDescending(cards, level)

	if len(cards) == 4 && freq[deck.SmallJokerValue] == 2 && freq[deck.BigJokerValue] == 2 {
		return Hand{Type: FourKings, Cards: sorted, Value: deck.BigJokerValue, BombCount: 4}, nil
	}

	if v, ok := uniformValue(freq, wilds); ok {
		switch n := len(cards); {
		case n == 1:
			return Hand{Type: Single, Cards: sorted, Value: v}, nil
		case n == 2:
			return Hand{Type: Pair, Cards: sorted, Value: v}, nil
		case n == 3:
			return Hand{Type: Trips, Cards: sorted, Value: v}, nil
		case n >= 4:
			return Hand{Type: Bomb, Cards: sorted, Value: v, BombCount: n}, nil
		}
	}

	switch len(cards) {
	case 5:
		if v, ok := tripsWithPairValue(freq, wilds); ok {
			return Hand{Type: TripsWithPair, Cards: sorted, Value: v}, nil
		}
		if high, suited, ok := straightRun(cards); ok {
			if suited {
				return Hand{Type: StraightFlush, Cards: sorted, Value: high, BombCount: 5}, nil
			}
			return Hand{Type: Straight, Cards: sorted, Value: high}, nil
		}
	case 6:
		if high, ok := consecutiveGroups(cards, 2); ok {
			return Hand{Type: Tube, Cards: sorted, Value: high}, nil
		}
		if high, ok := consecutiveGroups(cards, 3); ok {
			return Hand{Type: Plate, Cards: sorted, Value: high}, nil
		}
	}

	return Hand{}, fmt.Errorf("%w: %d cards form no shape", ErrInvalidHand, len(cards))
}

// uniformValue reports the single logic value the non-wild cards share once
// wilds are absorbed into it. Wilds cannot substitute for jokers; an
// all-wild set is a natural group of level cards.
func uniformValue(freq map[int]int, wilds int) (int, bool) {
	if len(freq) == 0 {
		if wilds == 0 {
			return 0, false
		}
		return deck.LevelValue, true
	}
	if len(freq) != 1 {
		return 0, false
	}
	var v int
	for value := range freq {
		v = value
	}
	if wilds > 0 && v >= deck.SmallJokerValue {
		return 0, false
	}
	return v, true
}

// tripsWithPairValue finds a 3+2 split over two distinct logic values,
// letting wilds complete either group. When both assignments work the
// higher trip wins. Returns the trip's logic value.
func tripsWithPairValue(freq map[int]int, wilds int) (int, bool) {
	if len(freq) != 2 {
		return 0, false
	}
	values := make([]int, 0, 2)
	for v := range freq {
		values = append(values, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	for _, trip := range values {
		pair := values[0]
		if trip == pair {
			pair = values[1]
		}
		needTrip := 3 - freq[trip]
		needPair := 2 - freq[pair]
		if needTrip < 0 || needPair < 0 || needTrip+needPair != wilds {
			continue
		}
		if needTrip > 0 && trip >= deck.SmallJokerValue {
			continue
		}
		if needPair > 0 && pair >= deck.SmallJokerValue {
			continue
		}
		return trip, true
	}
	return 0, false
}

// straightRun checks five distinct consecutive face ranks (ace high or low,
// jokers never). Reports the run's high face and whether it is single-suited.
func straightRun(cards []deck.Card) (int, bool, bool) {
	faces := make([]int, 0, len(cards))
	suited := true
	for _, c := range cards {
		if c.Rank.IsJoker() {
			return 0, false, false
		}
		faces = append(faces, c.FaceValue())
		if c.Suit != cards[0].Suit {
			suited = false
		}
	}
	high, ok := runHigh(faces)
	return high, suited, ok
}

// consecutiveGroups checks for runs of equal-size face groups: width 2 is a
// tube (three consecutive pairs), width 3 a plate (two consecutive triples).
func consecutiveGroups(cards []deck.Card, width int) (int, bool) {
	byFace := make(map[int]int)
	for _, c := range cards {
		if c.Rank.IsJoker() {
			return 0, false
		}
		byFace[c.FaceValue()]++
	}
	faces := make([]int, 0, len(byFace))
	for f, n := range byFace {
		if n != width {
			return 0, false
		}
		faces = append(faces, f)
	}
	return runHigh(faces)
}

// runHigh reports the high face of a consecutive run. Faces must be
// distinct; the ace tries 14 first and 1 (below the two) as the fallback.
func runHigh(faces []int) (int, bool) {
	distinct := make(map[int]bool, len(faces))
	for _, f := range faces {
		distinct[f] = true
	}
	if len(distinct) != len(faces) {
		return 0, false
	}

	sorted := make([]int, 0, len(distinct))
	for f := range distinct {
		sorted = append(sorted, f)
	}
	sort.Ints(sorted)

	if isConsecutive(sorted) {
		return sorted[len(sorted)-1], true
	}
	if sorted[len(sorted)-1] == int(deck.Ace) {
		low := append([]int{1}, sorted[:len(sorted)-1]...)
		if isConsecutive(low) {
			return low[len(low)-1], true
		}
	}
	return 0, false
}

func isConsecutive(sorted []int) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1]+1 {
			return false
		}
	}
	return true
}
