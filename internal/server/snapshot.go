package server

import (
	"github.com/lox/guandan/internal/game"
	"github.com/lox/guandan/internal/protocol"
	"github.com/lox/guandan/internal/rules"
)

// snapshot builds the authoritative game view tailored to one seat: the
// viewer's cards in full, every other hand as a count. Tribute transfers
// and played hands are public.
func (r *Room) snapshot(d *game.Deal, viewer int) protocol.GameStateData {
	counts := d.HandCounts()
	levels := r.match.Levels()

	st := protocol.GameStateData{
		Phase:       d.Phase().String(),
		Level:       d.Level().String(),
		CurrentTurn: d.CurrentTurn(),
		Winners:     d.Winners(),
		TeamLevels:  [2]string{levels[0].String(), levels[1].String()},
		ActiveTeam:  r.match.ActiveTeam(),
	}
	if st.Winners == nil {
		st.Winners = []int{}
	}

	for i := 0; i < 4; i++ {
		if i == viewer {
			st.Hands[i] = protocol.VisibleHand(d.Hand(i))
		} else {
			st.Hands[i] = protocol.HiddenHand(counts[i])
		}
	}

	if lp, ok := d.LastPlay(); ok {
		st.LastHand = playedHand(lp.Seat, lp.Hand)
	}
	for i, a := range d.RoundActions() {
		if a == nil {
			continue
		}
		ra := &protocol.RoundAction{Passed: a.Passed}
		if a.Hand != nil {
			ra.Hand = playedHand(i, *a.Hand)
		}
		st.RoundActions[i] = ra
	}
	if ts, ok := d.Tribute(); ok {
		st.Tribute = tributeState(ts)
	}
	return st
}

func playedHand(seat int, h rules.Hand) *protocol.PlayedHand {
	return &protocol.PlayedHand{
		Seat:  seat,
		Type:  h.Type.String(),
		Value: h.Value,
		Cards: protocol.CardsFromDeck(h.Cards),
	}
}

func tributeState(ts game.TributeState) *protocol.TributeState {
	return &protocol.TributeState{
		Edges:   tributeEdges(ts.Edges),
		Returns: tributeEdges(ts.Returns),
		Anti:    ts.Anti,
	}
}

func tributeEdges(edges []game.TributeEdge) []protocol.TributeEdge {
	if len(edges) == 0 {
		return nil
	}
	out := make([]protocol.TributeEdge, len(edges))
	for i, e := range edges {
		out[i] = protocol.TributeEdge{From: e.From, To: e.To}
		if e.Card != nil {
			card := protocol.CardFromDeck(*e.Card)
			out[i].Card = &card
		}
	}
	return out
}
