package server

import (
	"fmt"
	"math/rand/v2"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/guandan/internal/bot"
	"github.com/lox/guandan/internal/game"
	"github.com/lox/guandan/internal/protocol"
	"github.com/lox/guandan/internal/rules"
)

// maxChatLen bounds relayed chat messages, in runes.
const maxChatLen = 500

// session is the transport surface the room writes to. *Client implements
// it; tests substitute an in-memory fake.
type session interface {
	Send(data []byte)
	SendMessage(event protocol.Event, payload any)
	SendError(message string)
	bind(r *Room)
}

// seat is one of the four positions. A seat with a nil client and bot
// false is a disconnected human whose place is held until they rejoin by
// name or the match ends.
type seat struct {
	name     string
	client   session
	occupied bool
	ready    bool
	bot      bool
}

// Room runs one table. All state below the inbox is owned by the actor
// goroutine: commands, timer callbacks and joins are posted as tasks and
// run one at a time, so the engine never needs a lock.
//
// Timers carry the generation at which they were scheduled and no-op if
// the room has moved on, so a stale bot turn or deal transition can never
// touch a later deal.
type Room struct {
	id       string
	logger   zerolog.Logger
	clock    quartz.Clock
	rng      *rand.Rand
	strategy bot.Strategy
	botDelay time.Duration
	grace    time.Duration
	onEmpty  func(*Room)

	inbox    chan func()
	done     chan struct{}
	stopOnce sync.Once

	seats      [4]seat
	mode       protocol.GameMode
	match      *game.Match
	generation uint64
}

// NewRoom constructs a room and starts its actor goroutine. onEmpty is
// called from the actor when the last human leaves, before the actor
// stops.
func NewRoom(id string, logger zerolog.Logger, clock quartz.Clock, rng *rand.Rand, strategy bot.Strategy, settings GameSettings, onEmpty func(*Room)) *Room {
	r := &Room{
		id:       id,
		logger:   logger.With().Str("room", id).Logger(),
		clock:    clock,
		rng:      rng,
		strategy: strategy,
		botDelay: settings.BotDelay(),
		grace:    settings.DealGrace(),
		onEmpty:  onEmpty,
		inbox:    make(chan func(), 64),
		done:     make(chan struct{}),
		mode:     protocol.ModeNormal,
	}
	go r.run()
	return r
}

// ID returns the room's join code.
func (r *Room) ID() string { return r.id }

// Done is closed when the actor has stopped.
func (r *Room) Done() <-chan struct{} { return r.done }

func (r *Room) run() {
	for {
		select {
		case task := <-r.inbox:
			r.dispatch(task)
		case <-r.done:
			return
		}
	}
}

// dispatch runs one task. A panic is an engine invariant violation: log
// it and abandon the match rather than taking the process down.
func (r *Room) dispatch(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Interface("panic", rec).Bytes("stack", debug.Stack()).Msg("room task panicked, abandoning match")
			r.resetIdle()
		}
	}()
	task()
}

func (r *Room) stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

// post queues a task for the actor, dropping it if the room has stopped.
func (r *Room) post(task func()) {
	select {
	case r.inbox <- task:
	case <-r.done:
	}
}

// do runs a task on the actor and waits for it to finish.
func (r *Room) do(task func()) error {
	ran := make(chan struct{})
	select {
	case r.inbox <- func() { defer close(ran); task() }:
	case <-r.done:
		return ErrRoomClosed
	}
	select {
	case <-ran:
		return nil
	case <-r.done:
		return ErrRoomClosed
	}
}

// Join seats the client, preferring the disconnected seat held under the
// same name. It is synchronous so the caller knows the session is bound
// before reading the next frame.
func (r *Room) Join(c session, name string) error {
	var err error
	if derr := r.do(func() { err = r.join(c, name) }); derr != nil {
		return derr
	}
	return err
}

// Handle queues one already-parsed client command.
func (r *Room) Handle(c session, msg *protocol.Message) {
	r.post(func() { r.handle(c, msg) })
}

// Leave detaches a dropped connection. Mid-match the seat is held for
// reconnection; otherwise it is cleared.
func (r *Room) Leave(c session) {
	r.post(func() { r.leave(c) })
}

func (r *Room) join(c session, name string) error {
	// A disconnected seat under the same name is reclaimed, mid-match or
	// not. The rejoining client gets the room view plus a fresh private
	// snapshot to rebuild from.
	for i := range r.seats {
		s := &r.seats[i]
		if s.occupied && !s.bot && s.client == nil && s.name == name {
			s.client = c
			c.bind(r)
			r.logger.Info().Str("name", name).Int("seat", i).Msg("player reconnected")
			r.broadcastRoomState()
			r.sendGameState(i)
			return nil
		}
	}

	if r.nameTaken(name) {
		return fmt.Errorf("name %q is taken", name)
	}

	for i := range r.seats {
		if !r.seats[i].occupied {
			r.seats[i] = seat{name: name, client: c, occupied: true}
			c.bind(r)
			r.logger.Info().Str("name", name).Int("seat", i).Msg("player joined")
			r.broadcastRoomState()
			return nil
		}
	}
	return ErrRoomFull
}

func (r *Room) leave(c session) {
	i := r.seatOf(c)
	if i < 0 {
		return
	}
	s := &r.seats[i]
	if r.match != nil {
		// Hold the seat: the deal keeps running and simply waits on their
		// turn until they rejoin.
		s.client = nil
		r.logger.Info().Str("name", s.name).Int("seat", i).Msg("player disconnected, holding seat")
		r.broadcastRoomState()
		return
	}
	r.logger.Info().Str("name", s.name).Int("seat", i).Msg("player left")
	r.seats[i] = seat{}
	r.broadcastRoomState()
	r.maybeClose()
}

func (r *Room) seatOf(c session) int {
	for i := range r.seats {
		if r.seats[i].client == c {
			return i
		}
	}
	return -1
}

// maybeClose stops the room once no human holds a seat.
func (r *Room) maybeClose() {
	for i := range r.seats {
		if r.seats[i].occupied && !r.seats[i].bot {
			return
		}
	}
	r.logger.Info().Msg("no players left, closing room")
	if r.onEmpty != nil {
		r.onEmpty(r)
	}
	r.stop()
}

func (r *Room) handle(c session, msg *protocol.Message) {
	seatIdx := r.seatOf(c)
	if seatIdx < 0 {
		c.SendError("not seated in this room")
		return
	}

	switch msg.Event {
	case protocol.EventJoin:
		c.SendError("already in a room")

	case protocol.EventReady:
		r.handleReady(seatIdx)

	case protocol.EventStart:
		r.handleStart(seatIdx)

	case protocol.EventPlayHand:
		var data protocol.PlayHandData
		if err := msg.Decode(&data); err != nil {
			c.SendError(err.Error())
			return
		}
		r.handlePlay(seatIdx, data.Cards)

	case protocol.EventPass:
		r.handlePass(seatIdx)

	case protocol.EventTribute:
		var data protocol.TributeData
		if err := msg.Decode(&data); err != nil {
			c.SendError(err.Error())
			return
		}
		r.handleTribute(seatIdx, data.Card)

	case protocol.EventReturnTribute:
		var data protocol.ReturnTributeData
		if err := msg.Decode(&data); err != nil {
			c.SendError(err.Error())
			return
		}
		r.handleReturnTribute(seatIdx, data.Card)

	case protocol.EventSwitchSeat:
		var data protocol.SwitchSeatData
		if err := msg.Decode(&data); err != nil {
			c.SendError(err.Error())
			return
		}
		r.handleSwitchSeat(seatIdx, data.Target)

	case protocol.EventSetMode:
		var data protocol.SetModeData
		if err := msg.Decode(&data); err != nil {
			c.SendError(err.Error())
			return
		}
		r.handleSetMode(seatIdx, data.Mode)

	case protocol.EventForceEnd:
		r.handleForceEnd(seatIdx)

	case protocol.EventChat:
		var data protocol.ChatData
		if err := msg.Decode(&data); err != nil {
			c.SendError(err.Error())
			return
		}
		r.handleChat(seatIdx, data.Text)

	default:
		c.SendError(fmt.Sprintf("unknown event %q", msg.Event))
	}
}

// Lobby commands. All of these are stale once a match is running and are
// dropped silently, like any command that arrives after a phase change.

func (r *Room) handleReady(seatIdx int) {
	if r.match != nil {
		return
	}
	r.seats[seatIdx].ready = !r.seats[seatIdx].ready
	r.broadcastRoomState()
	if r.allReady() {
		r.startMatch()
	}
}

func (r *Room) allReady() bool {
	for i := range r.seats {
		if !r.seats[i].occupied || !r.seats[i].ready {
			return false
		}
	}
	return true
}

func (r *Room) nameTaken(name string) bool {
	for i := range r.seats {
		if r.seats[i].occupied && r.seats[i].name == name {
			return true
		}
	}
	return false
}

func (r *Room) handleStart(seatIdx int) {
	if r.match != nil {
		return
	}
	if seatIdx != 0 {
		r.sendError(seatIdx, "only the host can start the game")
		return
	}
	r.startMatch()
}

func (r *Room) handleSwitchSeat(seatIdx, target int) {
	if r.match != nil {
		return
	}
	if target < 0 || target > 3 {
		r.sendError(seatIdx, fmt.Sprintf("no seat %d", target))
		return
	}
	if target == seatIdx {
		return
	}
	if r.seats[target].occupied {
		r.sendError(seatIdx, "that seat is taken")
		return
	}
	r.seats[target] = r.seats[seatIdx]
	r.seats[seatIdx] = seat{}
	r.broadcastRoomState()
}

func (r *Room) handleSetMode(seatIdx int, mode protocol.GameMode) {
	if r.match != nil {
		return
	}
	if seatIdx != 0 {
		r.sendError(seatIdx, "only the host can change the mode")
		return
	}
	if !mode.Valid() {
		r.sendError(seatIdx, fmt.Sprintf("unknown mode %q", mode))
		return
	}
	r.mode = mode
	r.broadcastRoomState()
}

func (r *Room) handleChat(seatIdx int, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if runes := []rune(text); len(runes) > maxChatLen {
		text = string(runes[:maxChatLen])
	}
	r.broadcast(protocol.EventChatMessage, protocol.ChatMessageData{
		Sender: r.seats[seatIdx].name,
		Text:   text,
		Seat:   seatIdx,
		Time:   r.clock.Now(),
	})
}

func (r *Room) handleForceEnd(seatIdx int) {
	if r.match == nil {
		return
	}
	if seatIdx != 0 {
		r.sendError(seatIdx, "only the host can end the game")
		return
	}
	r.logger.Info().Msg("host force-ended the match")
	r.resetIdle()
}

// Match lifecycle.

func (r *Room) startMatch() {
	next := 1
	for i := range r.seats {
		if !r.seats[i].occupied {
			name := fmt.Sprintf("bot-%d", next)
			for r.nameTaken(name) {
				next++
				name = fmt.Sprintf("bot-%d", next)
			}
			next++
			r.seats[i] = seat{name: name, occupied: true, bot: true}
		}
		r.seats[i].ready = true
	}
	r.match = game.NewMatch(r.rng)
	r.logger.Info().Str("mode", string(r.mode)).Msg("match starting")
	r.broadcastRoomState()
	r.startDeal()
}

func (r *Room) startDeal() {
	r.generation++
	d := r.match.StartDeal()
	r.logger.Info().
		Int("deal", r.match.DealsPlayed()+1).
		Str("level", d.Level().String()).
		Int("activeTeam", d.ActiveTeam()).
		Str("phase", d.Phase().String()).
		Msg("deal started")
	r.broadcastGameState()
	r.scheduleBots(d)
}

// afterMutation runs after any accepted engine command: rebroadcast the
// authoritative state, then either finish the deal or line up whichever
// bots now owe an action.
func (r *Room) afterMutation() {
	d := r.activeDeal()
	if d == nil {
		return
	}
	r.broadcastGameState()
	if d.Phase() == game.Score {
		r.dealEnded(d)
		return
	}
	r.scheduleBots(d)
}

func (r *Room) dealEnded(d *game.Deal) {
	r.generation++
	order := d.FinishOrder()
	r.broadcast(protocol.EventGameOver, protocol.GameOverData{Winners: order})

	outcome := r.match.ConcludeDeal(order)
	r.logger.Info().
		Ints("order", order).
		Int("winningTeam", outcome.WinningTeam).
		Int("step", outcome.Step).
		Bool("matchOver", outcome.MatchOver).
		Msg("deal concluded")

	if outcome.MatchOver {
		r.broadcast(protocol.EventMatchOver, protocol.MatchOverData{
			Team:   outcome.WinningTeam,
			Levels: [2]string{outcome.Levels[0].String(), outcome.Levels[1].String()},
		})
		r.resetIdle()
		return
	}

	gen := r.generation
	r.after(r.grace, func() {
		if gen != r.generation || r.match == nil {
			return
		}
		r.startDeal()
	})
}

// resetIdle returns the room to the lobby: the match is discarded, bot
// seats and seats held for departed humans are cleared, and everyone is
// unreadied.
func (r *Room) resetIdle() {
	r.generation++
	r.match = nil
	for i := range r.seats {
		s := &r.seats[i]
		if s.bot || (s.occupied && s.client == nil) {
			r.seats[i] = seat{}
			continue
		}
		s.ready = false
	}
	r.broadcastRoomState()
	r.maybeClose()
}

// Engine commands. Stale rejections (wrong turn or phase, typically a
// replay after reconnect) are dropped without a reply; rule violations go
// back to the offending seat, which keeps the turn.

func (r *Room) activeDeal() *game.Deal {
	if r.match == nil {
		return nil
	}
	return r.match.Deal()
}

func (r *Room) handlePlay(seatIdx int, ids []string) {
	d := r.activeDeal()
	if d == nil {
		return
	}
	if err := d.PlayHand(seatIdx, ids); err != nil {
		r.reject(seatIdx, err)
		return
	}
	r.afterMutation()
}

func (r *Room) handlePass(seatIdx int) {
	d := r.activeDeal()
	if d == nil {
		return
	}
	if err := d.Pass(seatIdx); err != nil {
		r.reject(seatIdx, err)
		return
	}
	r.afterMutation()
}

func (r *Room) handleTribute(seatIdx int, id string) {
	d := r.activeDeal()
	if d == nil {
		return
	}
	if err := d.PayTribute(seatIdx, id); err != nil {
		r.reject(seatIdx, err)
		return
	}
	r.afterMutation()
}

func (r *Room) handleReturnTribute(seatIdx int, id string) {
	d := r.activeDeal()
	if d == nil {
		return
	}
	if err := d.ReturnTribute(seatIdx, id); err != nil {
		r.reject(seatIdx, err)
		return
	}
	r.afterMutation()
}

func (r *Room) reject(seatIdx int, err error) {
	if game.IsStale(err) {
		r.logger.Debug().Err(err).Int("seat", seatIdx).Msg("dropping stale command")
		return
	}
	r.sendError(seatIdx, err.Error())
}

// Bot turns.

// scheduleBots queues a delayed action for every bot seat the deal is
// waiting on. Duplicate schedules are harmless: a fired task re-checks
// the engine and stale commands are dropped.
func (r *Room) scheduleBots(d *game.Deal) {
	switch d.Phase() {
	case game.Playing:
		if turn := d.CurrentTurn(); turn >= 0 && r.seats[turn].bot {
			r.scheduleBotTask(turn)
		}
	case game.Tribute:
		ts, _ := d.Tribute()
		for _, e := range ts.Edges {
			if e.Card == nil && r.seats[e.From].bot {
				r.scheduleBotTask(e.From)
			}
		}
	case game.ReturnTribute:
		ts, _ := d.Tribute()
		for _, e := range ts.Returns {
			if e.Card == nil && r.seats[e.From].bot {
				r.scheduleBotTask(e.From)
			}
		}
	}
}

func (r *Room) scheduleBotTask(seatIdx int) {
	gen := r.generation
	r.after(r.botDelay, func() { r.botAct(gen, seatIdx) })
}

// after arms a timer whose task runs on the actor.
func (r *Room) after(d time.Duration, task func()) {
	r.clock.AfterFunc(d, func() { r.post(task) })
}

func (r *Room) botAct(gen uint64, seatIdx int) {
	if gen != r.generation {
		return
	}
	d := r.activeDeal()
	if d == nil || !r.seats[seatIdx].bot {
		return
	}

	var err error
	switch d.Phase() {
	case game.Playing:
		if d.CurrentTurn() != seatIdx {
			return
		}
		err = r.botPlay(d, seatIdx)
	case game.Tribute:
		err = d.PayTribute(seatIdx, bot.TributePayment(d.Hand(seatIdx), d.Level()).ID())
	case game.ReturnTribute:
		err = d.ReturnTribute(seatIdx, bot.TributeReturn(d.Hand(seatIdx), d.Level()).ID())
	default:
		return
	}

	if err != nil {
		if !game.IsStale(err) {
			r.logger.Warn().Err(err).Int("seat", seatIdx).Msg("bot action rejected")
		}
		return
	}
	r.afterMutation()
}

// botPlay asks the strategy for a move. An illegal move from a strategy
// degrades to a pass so a bad bot can stall a trick but never the deal.
func (r *Room) botPlay(d *game.Deal, seatIdx int) error {
	var target *rules.Hand
	if lp, ok := d.LastPlay(); ok && lp.Seat != seatIdx {
		h := lp.Hand
		target = &h
	}

	play := r.strategy.Decide(d.Hand(seatIdx), d.Level(), target, r.rng)
	if play == nil {
		return d.Pass(seatIdx)
	}
	ids := make([]string, len(play))
	for i, c := range play {
		ids[i] = c.ID()
	}
	if err := d.PlayHand(seatIdx, ids); err != nil {
		if game.IsStale(err) {
			return err
		}
		r.logger.Warn().Err(err).Int("seat", seatIdx).Str("strategy", r.strategy.Name()).Msg("bot produced an illegal play, passing")
		return d.Pass(seatIdx)
	}
	return nil
}

// Outbound frames.

func (r *Room) broadcast(event protocol.Event, payload any) {
	data, err := protocol.Encode(event, payload)
	if err != nil {
		r.logger.Error().Err(err).Str("event", event.String()).Msg("failed to encode frame")
		return
	}
	for i := range r.seats {
		if c := r.seats[i].client; c != nil {
			c.Send(data)
		}
	}
}

func (r *Room) sendError(seatIdx int, message string) {
	if c := r.seats[seatIdx].client; c != nil {
		c.SendError(message)
	}
}

func (r *Room) broadcastRoomState() {
	r.broadcast(protocol.EventRoomState, r.roomState())
}

func (r *Room) roomState() protocol.RoomStateData {
	st := protocol.RoomStateData{
		RoomID:      r.id,
		Mode:        r.mode,
		MatchActive: r.match != nil,
	}
	for i := range r.seats {
		s := r.seats[i]
		st.Seats[i] = protocol.SeatState{
			Seat:      i,
			Name:      s.name,
			Occupied:  s.occupied,
			Ready:     s.ready,
			Connected: s.client != nil || s.bot,
			Bot:       s.bot,
		}
	}
	return st
}

// broadcastGameState pushes each connected seat its own tailored
// snapshot.
func (r *Room) broadcastGameState() {
	for i := range r.seats {
		r.sendGameState(i)
	}
}

func (r *Room) sendGameState(seatIdx int) {
	d := r.activeDeal()
	if d == nil {
		return
	}
	if c := r.seats[seatIdx].client; c != nil {
		c.SendMessage(protocol.EventGameState, r.snapshot(d, seatIdx))
	}
}
