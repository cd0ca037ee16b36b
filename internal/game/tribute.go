package game

import (
	"fmt"

	"github.com/lox/guandan/internal/deck"
	"github.com/lox/guandan/internal/rules"
)

// TributeEdge is one pending transfer between seats. During tribute From
// owes To their largest card; during return-tribute From gives any card
// back. Card is nil until the transfer happens.
type TributeEdge struct {
	From int
	To   int
	Card *deck.Card
}

// TributeState is the tribute bookkeeping for one deal. Anti marks a
// cancelled tribute where the owing side resisted with two BigJokers.
type TributeState struct {
	Edges   []TributeEdge
	Returns []TributeEdge
	Anti    bool
}

// beginTribute computes tribute edges from the previous finishing order
// and either enters the Tribute phase or goes straight to Playing when no
// tribute is owed or the losers resist.
func (d *Deal) beginTribute() {
	p1, p2, p3, p4 := d.prevOrder[0], d.prevOrder[1], d.prevOrder[2], d.prevOrder[3]

	var edges []TributeEdge
	switch {
	case sameTeam(p1, p2):
		// Double win: both losers pay, crosswise.
		edges = []TributeEdge{{From: p4, To: p1}, {From: p3, To: p2}}
	case sameTeam(p1, p3):
		edges = []TributeEdge{{From: p4, To: p1}}
	default:
		// First and last place are partners: nothing owed, third leads.
		d.beginPlay(p3)
		return
	}

	if d.payerBigJokers(edges) >= 2 {
		d.tribute = &TributeState{Anti: true}
		d.beginPlay(p1)
		return
	}

	d.tribute = &TributeState{Edges: edges}
	d.phase = Tribute
}

// payerBigJokers counts BigJokers across the owing seats' hands
func (d *Deal) payerBigJokers(edges []TributeEdge) int {
	n := 0
	for _, e := range edges {
		for _, c := range d.hands[e.From] {
			if c.Rank == deck.BigJoker {
				n++
			}
		}
	}
	return n
}

// PayTribute applies seat's tribute payment. The card must carry the
// largest logic value in their hand; any copy of equal value qualifies.
func (d *Deal) PayTribute(seat int, id string) error {
	if d.phase != Tribute {
		return ErrOutOfPhase
	}
	edge := pendingEdge(d.tribute.Edges, seat)
	if edge == nil {
		return ErrNotYourTurn
	}

	i := deck.IndexByID(d.hands[seat], id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotHeld, id)
	}
	card := d.hands[seat][i]
	largest := rules.Largest(d.hands[seat], d.level)
	if card.LogicValue(d.level) < largest.LogicValue(d.level) {
		return ErrNotLargestTribute
	}

	d.moveCard(edge, seat, i)

	if edgesComplete(d.tribute.Edges) {
		d.beginReturns()
	}
	return nil
}

// ReturnTribute applies the recipient's return card; any held card is
// legal.
func (d *Deal) ReturnTribute(seat int, id string) error {
	if d.phase != ReturnTribute {
		return ErrOutOfPhase
	}
	edge := pendingEdge(d.tribute.Returns, seat)
	if edge == nil {
		return ErrNotYourTurn
	}

	i := deck.IndexByID(d.hands[seat], id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotHeld, id)
	}

	d.moveCard(edge, seat, i)

	if edgesComplete(d.tribute.Returns) {
		d.beginPlay(d.nextStart)
	}
	return nil
}

// moveCard transfers the card at index i of seat's hand along the edge,
// re-sorting the receiving hand.
func (d *Deal) moveCard(edge *TributeEdge, seat, i int) {
	card := d.hands[seat][i]
	d.hands[seat] = append(d.hands[seat][:i], d.hands[seat][i+1:]...)
	edge.Card = &card
	d.hands[edge.To] = deck.SortDescending(append(d.hands[edge.To], card), d.level)
}

// beginReturns fixes the next-start seat from the collected tributes and
// opens the return-tribute phase. The largest tribute's payer leads; on a
// tie the last-place payer wins it.
func (d *Deal) beginReturns() {
	p4 := d.prevOrder[3]
	best, bestValue := -1, -1
	for _, e := range d.tribute.Edges {
		v := e.Card.LogicValue(d.level)
		if v > bestValue || (v == bestValue && e.From == p4) {
			best, bestValue = e.From, v
		}
	}
	d.nextStart = best

	returns := make([]TributeEdge, 0, len(d.tribute.Edges))
	for _, e := range d.tribute.Edges {
		returns = append(returns, TributeEdge{From: e.To, To: e.From})
	}
	d.tribute.Returns = returns
	d.phase = ReturnTribute
}

// Tribute returns a copy of the deal's tribute state; ok is false when the
// deal has no tribute (first deal, or a tie scenario).
func (d *Deal) Tribute() (TributeState, bool) {
	if d.tribute == nil {
		return TributeState{}, false
	}
	return TributeState{
		Edges:   copyEdges(d.tribute.Edges),
		Returns: copyEdges(d.tribute.Returns),
		Anti:    d.tribute.Anti,
	}, true
}

func pendingEdge(edges []TributeEdge, seat int) *TributeEdge {
	for i := range edges {
		if edges[i].From == seat && edges[i].Card == nil {
			return &edges[i]
		}
	}
	return nil
}

func edgesComplete(edges []TributeEdge) bool {
	for _, e := range edges {
		if e.Card == nil {
			return false
		}
	}
	return true
}

func copyEdges(edges []TributeEdge) []TributeEdge {
	if edges == nil {
		return nil
	}
	out := make([]TributeEdge, len(edges))
	for i, e := range edges {
		out[i] = TributeEdge{From: e.From, To: e.To}
		if e.Card != nil {
			card := *e.Card
			out[i].Card = &card
		}
	}
	return out
}
