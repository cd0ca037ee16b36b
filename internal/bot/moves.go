package bot

import (
	"sort"
	"strings"

	"github.com/lox/guandan/internal/deck"
	"github.com/lox/guandan/internal/rules"
)

// Moves enumerates the legal plays available from a hand. With a nil target
// every playable shape is returned; otherwise only shapes that beat it.
// Interchangeable compositions collapse to one representative, and wilds are
// spent only where the natural copies run short.
func Moves(hand []deck.Card, level deck.Rank, target *rules.Hand) []rules.Hand {
	g := newGenerator(hand, level)

	var out []rules.Hand
	for _, cards := range g.candidates() {
		h, err := rules.Classify(cards, level)
		if err != nil {
			continue
		}
		if target != nil && rules.Compare(h, *target) <= 0 {
			continue
		}
		out = append(out, h)
	}

	sort.SliceStable(out, func(i, j int) bool { return cheaper(out[i], out[j]) })
	return out
}

// cheaper orders moves the way a reluctant player spends them: non-bombs
// before bombs, lower values first, shorter shapes on equal value.
func cheaper(a, b rules.Hand) bool {
	if a.Type.IsBomb() != b.Type.IsBomb() {
		return !a.Type.IsBomb()
	}
	if a.Type.IsBomb() {
		if c := rules.Compare(a, b); c != 0 {
			return c < 0
		}
		return false
	}
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	if len(a.Cards) != len(b.Cards) {
		return len(a.Cards) < len(b.Cards)
	}
	return a.Type < b.Type
}

// generator proposes candidate card multisets from one hand. Set shapes are
// keyed by logic value with wilds as a shared completion pool; sequence
// shapes are keyed by face rank, where wilds sit at their printed rank.
type generator struct {
	byValue map[int][]deck.Card
	byFace  map[int][]deck.Card
	wilds   []deck.Card
	values  []int
	seen    map[string]bool
	out     [][]deck.Card
}

func newGenerator(hand []deck.Card, level deck.Rank) *generator {
	g := &generator{
		byValue: make(map[int][]deck.Card),
		byFace:  make(map[int][]deck.Card),
		seen:    make(map[string]bool),
	}
	for _, c := range hand {
		if c.IsWild(level) {
			g.wilds = append(g.wilds, c)
			continue
		}
		g.byValue[c.LogicValue(level)] = append(g.byValue[c.LogicValue(level)], c)
		if !c.Rank.IsJoker() {
			g.byFace[c.FaceValue()] = append(g.byFace[c.FaceValue()], c)
		}
	}
	// Wilds join their face group last so sequences prefer natural copies.
	for _, c := range g.wilds {
		g.byFace[c.FaceValue()] = append(g.byFace[c.FaceValue()], c)
	}

	for v := range g.byValue {
		g.values = append(g.values, v)
	}
	if len(g.wilds) > 0 && len(g.byValue[deck.LevelValue]) == 0 {
		g.values = append(g.values, deck.LevelValue)
	}
	sort.Ints(g.values)
	return g
}

func (g *generator) candidates() [][]deck.Card {
	g.fourKings()
	g.sets()
	g.tripsWithPairs()
	g.runs(5, 1)
	g.runs(3, 2)
	g.runs(2, 3)
	return g.out
}

func (g *generator) fourKings() {
	sj := g.byValue[deck.SmallJokerValue]
	bj := g.byValue[deck.BigJokerValue]
	if len(sj) == 2 && len(bj) == 2 {
		g.add(append(append([]deck.Card{}, sj...), bj...))
	}
}

// sets proposes every size of uniform group per value: single, pair, trips
// and each bomb size the copies plus wilds can reach.
func (g *generator) sets() {
	for _, v := range g.values {
		limit := len(g.byValue[v])
		if v < deck.SmallJokerValue {
			limit += len(g.wilds)
		}
		for n := 1; n <= limit; n++ {
			cards, _ := g.take(v, n, 0)
			g.add(cards)
		}
	}
}

func (g *generator) tripsWithPairs() {
	for _, trip := range g.values {
		t, used := g.take(trip, 3, 0)
		if t == nil {
			continue
		}
		for _, pair := range g.values {
			if pair == trip {
				continue
			}
			p, _ := g.take(pair, 2, used)
			if p == nil {
				continue
			}
			g.add(append(append([]deck.Card{}, t...), p...))
		}
	}
}

// runs proposes natural sequences: span consecutive faces with width copies
// of each. Five singles also probe each suit for straight flushes.
func (g *generator) runs(span, width int) {
	for lo := 1; lo+span-1 <= int(deck.Ace); lo++ {
		g.add(g.runCards(lo, span, width, -1))
		if span == 5 {
			for suit := deck.Diamonds; suit <= deck.Spades; suit++ {
				g.add(g.runCards(lo, span, width, int(suit)))
			}
		}
	}
}

// runCards collects width cards for each face in [lo, lo+span), or nil when
// a face runs short. A non-negative suit restricts the pick to that suit.
func (g *generator) runCards(lo, span, width, suit int) []deck.Card {
	var cards []deck.Card
	for f := lo; f < lo+span; f++ {
		group := g.faceCards(f, suit)
		if len(group) < width {
			return nil
		}
		cards = append(cards, group[:width]...)
	}
	return cards
}

// faceCards returns the cards playable at face f, where 1 is the low ace.
func (g *generator) faceCards(f, suit int) []deck.Card {
	if f == 1 {
		f = int(deck.Ace)
	}
	group := g.byFace[f]
	if suit < 0 {
		return group
	}
	var suited []deck.Card
	for _, c := range group {
		if int(c.Suit) == suit {
			suited = append(suited, c)
		}
	}
	return suited
}

// take returns n cards of logic value v, naturals first and wilds for the
// remainder, skipping the first wildOffset wilds already spoken for.
// Reports how many wilds it consumed; nil when the hand cannot supply n.
func (g *generator) take(v, n, wildOffset int) ([]deck.Card, int) {
	naturals := g.byValue[v]
	if len(naturals) >= n {
		return naturals[:n:n], 0
	}
	short := n - len(naturals)
	if v >= deck.SmallJokerValue || wildOffset+short > len(g.wilds) {
		return nil, 0
	}
	cards := append([]deck.Card{}, naturals...)
	return append(cards, g.wilds[wildOffset:wildOffset+short]...), short
}

func (g *generator) add(cards []deck.Card) {
	if cards == nil {
		return
	}
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID()
	}
	sort.Strings(ids)
	key := strings.Join(ids, " ")
	if g.seen[key] {
		return
	}
	g.seen[key] = true
	g.out = append(g.out, cards)
}
