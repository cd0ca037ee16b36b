package protocol

import (
	"encoding/json"

	"github.com/lox/guandan/internal/deck"
)

// Card is the wire form of a card. ID is the stable identity tag clients
// echo back in playHand and tribute payloads.
type Card struct {
	ID        string `json:"id"`
	Suit      string `json:"suit"`
	Rank      string `json:"rank"`
	LevelCard bool   `json:"levelCard,omitempty"`
	Wild      bool   `json:"wild,omitempty"`
}

// CardFromDeck converts an engine card to its wire form
func CardFromDeck(c deck.Card) Card {
	return Card{
		ID:        c.ID(),
		Suit:      c.Suit.String(),
		Rank:      c.Rank.String(),
		LevelCard: c.LevelCard,
		Wild:      c.Wild,
	}
}

// CardsFromDeck converts a hand of engine cards to wire form
func CardsFromDeck(cards []deck.Card) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = CardFromDeck(c)
	}
	return out
}

// HandView is one seat's entry in a gameState hands array. The recipient's
// own seat carries full cards; every other seat only a count. On the wire
// the entry is either a card array or a bare integer.
type HandView struct {
	Count int
	Cards []Card
}

// VisibleHand builds the recipient's own entry
func VisibleHand(cards []deck.Card) HandView {
	wire := CardsFromDeck(cards)
	return HandView{Count: len(wire), Cards: wire}
}

// HiddenHand builds an opponent's count-only entry
func HiddenHand(count int) HandView {
	return HandView{Count: count}
}

// MarshalJSON emits a card array for visible hands, a bare count otherwise
func (h HandView) MarshalJSON() ([]byte, error) {
	if h.Cards == nil {
		return json.Marshal(h.Count)
	}
	return json.Marshal(h.Cards)
}

// UnmarshalJSON accepts either form
func (h *HandView) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		cards := []Card{}
		if err := json.Unmarshal(data, &cards); err != nil {
			return err
		}
		h.Cards = cards
		h.Count = len(cards)
		return nil
	}
	h.Cards = nil
	return json.Unmarshal(data, &h.Count)
}

// PlayedHand is a classified play on the wire
type PlayedHand struct {
	Seat  int    `json:"seat"`
	Type  string `json:"type"`
	Value int    `json:"value"`
	Cards []Card `json:"cards"`
}

// RoundAction is one seat's visible action in the current trick
type RoundAction struct {
	Passed bool        `json:"passed,omitempty"`
	Hand   *PlayedHand `json:"hand,omitempty"`
}

// TributeEdge mirrors a pending or completed tribute transfer
type TributeEdge struct {
	From int   `json:"from"`
	To   int   `json:"to"`
	Card *Card `json:"card,omitempty"`
}

// TributeState mirrors the deal's tribute bookkeeping
type TributeState struct {
	Edges   []TributeEdge `json:"edges,omitempty"`
	Returns []TributeEdge `json:"returns,omitempty"`
	Anti    bool          `json:"anti,omitempty"`
}

// GameStateData is the per-seat tailored authoritative snapshot. It is
// idempotent: a client can rebuild its entire view from any single frame.
type GameStateData struct {
	Phase        string          `json:"phase"`
	Level        string          `json:"level"`
	CurrentTurn  int             `json:"currentTurn"`
	Hands        [4]HandView     `json:"hands"`
	LastHand     *PlayedHand     `json:"lastHand,omitempty"`
	RoundActions [4]*RoundAction `json:"roundActions"`
	Winners      []int           `json:"winners"`
	Tribute      *TributeState   `json:"tributeState,omitempty"`
	TeamLevels   [2]string       `json:"teamLevels"`
	ActiveTeam   int             `json:"activeTeam"`
}
