package game

import (
	"fmt"
	rand "math/rand/v2"
	"sort"

	"github.com/lox/guandan/internal/deck"
	"github.com/lox/guandan/internal/rules"
)

// Phase is the deal state machine position
type Phase int

const (
	Waiting Phase = iota
	Dealing
	Tribute
	ReturnTribute
	Playing
	Score
)

// String returns the wire name of the phase
func (p Phase) String() string {
	switch p {
	case Waiting:
		return "Waiting"
	case Dealing:
		return "Dealing"
	case Tribute:
		return "Tribute"
	case ReturnTribute:
		return "ReturnTribute"
	case Playing:
		return "Playing"
	case Score:
		return "Score"
	default:
		return "Unknown"
	}
}

// LastPlay references the trick's current aggressor and their classified
// hand. Later seats must beat it or pass.
type LastPlay struct {
	Seat int
	Hand rules.Hand
}

// SeatAction is a seat's visible action in the current trick: a pass, or
// the hand they played.
type SeatAction struct {
	Passed bool
	Hand   *rules.Hand
}

// Deal runs one round of play from dealing to the Score phase. All methods
// are synchronous; the owning room actor serialises access.
type Deal struct {
	rng        *rand.Rand
	level      deck.Rank
	activeTeam int
	prevOrder  []int

	phase       Phase
	hands       [4][]deck.Card
	played      []deck.Card
	currentTurn int
	lastPlay    *LastPlay
	actions     [4]*SeatAction
	winners     []int
	tribute     *TributeState
	nextStart   int
}

// NewDeal creates a deal in the Waiting phase. level is the active team's
// current level; prevOrder is the previous deal's full finishing order,
// nil on the first deal of a match.
func NewDeal(rng *rand.Rand, level deck.Rank, activeTeam int, prevOrder []int) *Deal {
	return &Deal{
		rng:         rng,
		level:       level,
		activeTeam:  activeTeam,
		prevOrder:   prevOrder,
		currentTurn: -1,
		nextStart:   -1,
	}
}

// Start shuffles, deals and promotes the four hands, then enters Tribute
// or Playing depending on whether a previous finishing order exists.
func (d *Deal) Start() {
	if d.phase != Waiting {
		return
	}
	d.phase = Dealing

	dk := deck.New(d.rng)
	dk.Shuffle()
	for seat, hand := range dk.DealHands() {
		d.hands[seat] = deck.SortDescending(deck.PromoteForLevel(hand, d.level), d.level)
	}

	if len(d.prevOrder) == 4 {
		d.beginTribute()
		return
	}

	// First deal: the active team's first seat leads.
	d.beginPlay(d.activeTeam)
}

func (d *Deal) beginPlay(lead int) {
	d.phase = Playing
	d.currentTurn = lead
}

// PlayHand validates and applies a play of the identified cards by seat.
// Step order matters for error reporting: classification and comparison
// are checked before card ownership.
func (d *Deal) PlayHand(seat int, ids []string) error {
	if d.phase != Playing {
		return ErrOutOfPhase
	}
	if seat != d.currentTurn {
		return ErrNotYourTurn
	}

	cards, err := resolveIDs(ids)
	if err != nil {
		return err
	}

	hand, err := rules.Classify(cards, d.level)
	if err != nil {
		return err
	}

	if d.lastPlay != nil && d.lastPlay.Seat != seat {
		if rules.Compare(hand, d.lastPlay.Hand) <= 0 {
			return ErrNotBigEnough
		}
	}

	taken, err := d.takeFromHand(seat, ids)
	if err != nil {
		return err
	}

	// Carry the promoted flags from the hand, not the bare parsed ids.
	hand.Cards = deck.SortDescending(taken, d.level)
	d.played = append(d.played, taken...)
	d.lastPlay = &LastPlay{Seat: seat, Hand: hand}
	d.actions = [4]*SeatAction{}
	d.actions[seat] = &SeatAction{Hand: &hand}

	if len(d.hands[seat]) == 0 {
		d.winners = append(d.winners, seat)
		if d.checkTermination() {
			return nil
		}
	}

	d.advanceTurn()
	return nil
}

// Pass records a pass by seat and advances the turn. Passing is illegal on
// a free lead.
func (d *Deal) Pass(seat int) error {
	if d.phase != Playing {
		return ErrOutOfPhase
	}
	if seat != d.currentTurn {
		return ErrNotYourTurn
	}
	if d.lastPlay == nil || d.lastPlay.Seat == seat {
		return ErrCannotPass
	}
	d.actions[seat] = &SeatAction{Passed: true}
	d.advanceTurn()
	return nil
}

// advanceTurn scans clockwise from the current seat. The cycle check runs
// before the empty-hand skip so a finished aggressor still closes the
// trick they lead.
func (d *Deal) advanceTurn() {
	for step := 1; step <= 4; step++ {
		t := (d.currentTurn + step) % 4
		if d.lastPlay != nil && t == d.lastPlay.Seat {
			d.endTrick()
			return
		}
		if len(d.hands[t]) == 0 {
			continue
		}
		d.currentTurn = t
		return
	}
}

// endTrick hands the lead back to the trick's aggressor or, when the
// aggressor has finished, passes it on: partner first, then the next
// non-empty opponent clockwise.
func (d *Deal) endTrick() {
	aggressor := d.lastPlay.Seat
	d.lastPlay = nil
	d.actions = [4]*SeatAction{}

	if len(d.hands[aggressor]) > 0 {
		d.currentTurn = aggressor
		return
	}
	if partner := partnerOf(aggressor); len(d.hands[partner]) > 0 {
		d.currentTurn = partner
		return
	}
	for _, step := range []int{1, 3} {
		if t := (aggressor + step) % 4; len(d.hands[t]) > 0 {
			d.currentTurn = t
			return
		}
	}
}

// checkTermination ends the deal when both teammates have finished or a
// third seat empties. Returns true when the deal moved to Score.
func (d *Deal) checkTermination() bool {
	if len(d.winners) == 2 && sameTeam(d.winners[0], d.winners[1]) {
		d.finish(d.rankRemaining())
		return true
	}
	if len(d.winners) == 3 {
		d.finish(d.rankRemaining())
		return true
	}
	return false
}

// rankRemaining orders the unfinished seats for the tail of the finishing
// order: fewer cards first, lower seat breaking ties.
func (d *Deal) rankRemaining() []int {
	rest := make([]int, 0, 2)
	for seat := 0; seat < 4; seat++ {
		if len(d.hands[seat]) > 0 {
			rest = append(rest, seat)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return len(d.hands[rest[i]]) < len(d.hands[rest[j]])
	})
	return rest
}

func (d *Deal) finish(tail []int) {
	d.winners = append(d.winners, tail...)
	d.phase = Score
	d.currentTurn = -1
}

// takeFromHand removes the identified cards from the seat's hand, keeping
// their promoted flags. The hand is untouched when any id is missing.
func (d *Deal) takeFromHand(seat int, ids []string) ([]deck.Card, error) {
	remaining := append([]deck.Card(nil), d.hands[seat]...)
	taken := make([]deck.Card, 0, len(ids))
	for _, id := range ids {
		i := deck.IndexByID(remaining, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrCardNotHeld, id)
		}
		taken = append(taken, remaining[i])
		remaining = append(remaining[:i], remaining[i+1:]...)
	}
	d.hands[seat] = remaining
	return taken, nil
}

// resolveIDs parses identity tags into bare cards. Duplicate or malformed
// tags cannot name a held card.
func resolveIDs(ids []string) ([]deck.Card, error) {
	seen := make(map[string]bool, len(ids))
	cards := make([]deck.Card, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", ErrCardNotHeld, id)
		}
		seen[id] = true
		c, err := deck.ParseID(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrCardNotHeld, id)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// Phase returns the deal's current phase
func (d *Deal) Phase() Phase { return d.phase }

// Level returns the deal's level rank
func (d *Deal) Level() deck.Rank { return d.level }

// ActiveTeam returns the banker team for this deal
func (d *Deal) ActiveTeam() int { return d.activeTeam }

// CurrentTurn returns the seat to act, or -1 outside the Playing phase
func (d *Deal) CurrentTurn() int { return d.currentTurn }

// Hand returns a copy of the seat's current hand, sorted descending
func (d *Deal) Hand(seat int) []deck.Card {
	return append([]deck.Card(nil), d.hands[seat]...)
}

// HandCounts returns the number of cards each seat holds
func (d *Deal) HandCounts() [4]int {
	var counts [4]int
	for seat, hand := range d.hands {
		counts[seat] = len(hand)
	}
	return counts
}

// LastPlay returns the current trick's aggressor play, if any
func (d *Deal) LastPlay() (LastPlay, bool) {
	if d.lastPlay == nil {
		return LastPlay{}, false
	}
	return *d.lastPlay, true
}

// RoundActions returns each seat's visible action in the current trick;
// nil entries have not acted since the trick opened.
func (d *Deal) RoundActions() [4]*SeatAction {
	var actions [4]*SeatAction
	for seat, a := range d.actions {
		if a != nil {
			copied := *a
			actions[seat] = &copied
		}
	}
	return actions
}

// Winners returns the seats that have emptied their hands so far; once the
// deal reaches Score it is the full four-seat finishing order.
func (d *Deal) Winners() []int {
	return append([]int(nil), d.winners...)
}

// FinishOrder returns the full finishing order; valid only in Score
func (d *Deal) FinishOrder() []int {
	if d.phase != Score {
		return nil
	}
	return d.Winners()
}

// Played returns all cards played so far in this deal
func (d *Deal) Played() []deck.Card {
	return append([]deck.Card(nil), d.played...)
}

func sameTeam(a, b int) bool { return a%2 == b%2 }

func teamOf(seat int) int { return seat % 2 }

func partnerOf(seat int) int { return (seat + 2) % 4 }
