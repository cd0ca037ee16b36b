package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/guandan/cmd/guandan/shared"
	"github.com/lox/guandan/internal/bot"
	"github.com/lox/guandan/internal/deck"
	"github.com/lox/guandan/internal/protocol"
	"github.com/lox/guandan/internal/randutil"
	"github.com/lox/guandan/internal/rules"
	"github.com/lox/guandan/internal/server"
)

// BotCmd connects built-in strategies to a live server as ordinary
// websocket clients. The bots ready up again after every match, so a full
// table of them keeps playing until interrupted.
type BotCmd struct {
	Server   string `default:"ws://localhost:3000/ws" help:"WebSocket server URL"`
	Room     string `help:"Room code to join (empty provisions a new room)"`
	Name     string `default:"bot" help:"Client name, numbered when --count > 1"`
	Strategy string `default:"low" help:"Strategy the clients play (low|random)"`
	Count    int    `default:"1" help:"Number of clients to connect"`
	Seed     *int64 `help:"Deterministic RNG seed (optional)"`
	Debug    bool   `help:"Enable debug logging"`
}

func (c *BotCmd) Run() error {
	if c.Count < 1 || c.Count > 4 {
		return fmt.Errorf("count must be between 1 and 4, got %d", c.Count)
	}
	strategy, err := bot.Resolve(c.Strategy)
	if err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if c.Debug {
		level = zerolog.DebugLevel
	}
	logger := shared.SetupLogger(level)

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	if err := waitForServer(ctx, c.Server); err != nil {
		return fmt.Errorf("server not reachable: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	// Clients join one at a time: the first may provision the room, the
	// rest reuse its code.
	room := c.Room
	for i := 0; i < c.Count; i++ {
		name := c.Name
		if c.Count > 1 {
			name = fmt.Sprintf("%s-%d", c.Name, i+1)
		}
		p := &player{
			name:     name,
			strategy: strategy,
			rng:      randutil.New(seed + int64(i)),
			logger:   logger.With().Str("bot", name).Logger(),
		}
		joined, err := p.connect(ctx, c.Server, room)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		room = joined
		g.Go(func() error { return p.run(ctx) })
	}

	logger.Info().Str("room", room).Int("count", c.Count).Msg("Bots connected")
	return g.Wait()
}

// waitForServer polls the health endpoint behind the websocket URL.
func waitForServer(ctx context.Context, wsURL string) error {
	u, err := url.Parse(wsURL)
	if err != nil {
		return fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	}

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return server.WaitForHealthy(waitCtx, u.Scheme+"://"+u.Host)
}

// player is one websocket bot session.
type player struct {
	name     string
	strategy bot.Strategy
	rng      *rand.Rand
	logger   zerolog.Logger
	conn     *websocket.Conn
	seat     int
}

// connect dials, joins and waits for the roomState that seats us. It
// returns the room code so later clients can share a provisioned room.
func (p *player) connect(ctx context.Context, serverURL, room string) (string, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, serverURL, nil)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", serverURL, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	p.conn = conn
	p.seat = -1

	if err := p.send(protocol.EventJoin, protocol.JoinData{Name: p.name, RoomID: room}); err != nil {
		conn.Close()
		return "", err
	}

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	for {
		msg, err := p.read()
		if err != nil {
			conn.Close()
			return "", fmt.Errorf("waiting for join: %w", err)
		}
		switch msg.Event {
		case protocol.EventError:
			var e protocol.ErrorData
			if err := msg.Decode(&e); err != nil {
				conn.Close()
				return "", err
			}
			conn.Close()
			return "", fmt.Errorf("join rejected: %s", e.Message)
		case protocol.EventRoomState:
			var rs protocol.RoomStateData
			if err := msg.Decode(&rs); err != nil {
				conn.Close()
				return "", err
			}
			if err := p.handleRoomState(rs); err != nil {
				conn.Close()
				return "", err
			}
			if p.seat >= 0 {
				p.logger.Info().Str("room", rs.RoomID).Int("seat", p.seat).Msg("joined")
				return rs.RoomID, nil
			}
		}
	}
}

// run reacts to frames until the context ends or the connection drops.
func (p *player) run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		p.conn.Close()
	}()

	for {
		msg, err := p.read()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if err := p.react(msg); err != nil {
			return err
		}
	}
}

func (p *player) read() (*protocol.Message, error) {
	_, data, err := p.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return protocol.Parse(data)
}

func (p *player) send(event protocol.Event, payload any) error {
	data, err := protocol.Encode(event, payload)
	if err != nil {
		return err
	}
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

func (p *player) react(msg *protocol.Message) error {
	switch msg.Event {
	case protocol.EventRoomState:
		var rs protocol.RoomStateData
		if err := msg.Decode(&rs); err != nil {
			return err
		}
		return p.handleRoomState(rs)

	case protocol.EventGameState:
		var gs protocol.GameStateData
		if err := msg.Decode(&gs); err != nil {
			return err
		}
		return p.handleGameState(gs)

	case protocol.EventError:
		var e protocol.ErrorData
		if err := msg.Decode(&e); err != nil {
			return err
		}
		p.logger.Warn().Str("message", e.Message).Msg("server rejected an action")

	case protocol.EventGameOver:
		var g protocol.GameOverData
		if err := msg.Decode(&g); err != nil {
			return err
		}
		p.logger.Debug().Ints("winners", g.Winners).Msg("deal finished")

	case protocol.EventMatchOver:
		var m protocol.MatchOverData
		if err := msg.Decode(&m); err != nil {
			return err
		}
		p.logger.Info().Int("team", m.Team).Strs("levels", m.Levels[:]).Msg("match finished")
	}
	return nil
}

// handleRoomState refreshes the seat index and readies up in the lobby.
func (p *player) handleRoomState(rs protocol.RoomStateData) error {
	p.seat = -1
	for _, s := range rs.Seats {
		if s.Occupied && s.Name == p.name {
			p.seat = s.Seat
			if !rs.MatchActive && !s.Ready {
				return p.send(protocol.EventReady, nil)
			}
			break
		}
	}
	return nil
}

// handleGameState acts whenever the snapshot says it is our move: our
// turn in play, or a tribute transfer we still owe.
func (p *player) handleGameState(gs protocol.GameStateData) error {
	if p.seat < 0 {
		return nil
	}
	level, err := deck.ParseRank(gs.Level)
	if err != nil {
		return fmt.Errorf("game state level: %w", err)
	}
	hand, err := wireCards(gs.Hands[p.seat].Cards)
	if err != nil {
		return fmt.Errorf("own hand: %w", err)
	}

	switch gs.Phase {
	case "Playing":
		if gs.CurrentTurn != p.seat || len(hand) == 0 {
			return nil
		}
		return p.takeTurn(gs, hand, level)
	case "Tribute":
		return p.payTribute(gs, hand, level)
	case "ReturnTribute":
		return p.returnTribute(gs, hand, level)
	}
	return nil
}

func (p *player) takeTurn(gs protocol.GameStateData, hand []deck.Card, level deck.Rank) error {
	var target *rules.Hand
	if gs.LastHand != nil && gs.LastHand.Seat != p.seat {
		cards, err := wireCards(gs.LastHand.Cards)
		if err != nil {
			return fmt.Errorf("last hand: %w", err)
		}
		classified, err := rules.Classify(cards, level)
		if err != nil {
			return fmt.Errorf("last hand: %w", err)
		}
		target = &classified
	}

	play := p.strategy.Decide(hand, level, target, p.rng)
	if play == nil {
		return p.send(protocol.EventPass, nil)
	}
	ids := make([]string, len(play))
	for i, c := range play {
		ids[i] = c.ID()
	}
	p.logger.Debug().Strs("cards", ids).Msg("playing")
	return p.send(protocol.EventPlayHand, protocol.PlayHandData{Cards: ids})
}

func (p *player) payTribute(gs protocol.GameStateData, hand []deck.Card, level deck.Rank) error {
	if gs.Tribute == nil {
		return nil
	}
	for _, e := range gs.Tribute.Edges {
		if e.Card == nil && e.From == p.seat {
			card := bot.TributePayment(hand, level)
			return p.send(protocol.EventTribute, protocol.TributeData{Card: card.ID()})
		}
	}
	return nil
}

func (p *player) returnTribute(gs protocol.GameStateData, hand []deck.Card, level deck.Rank) error {
	if gs.Tribute == nil {
		return nil
	}
	for _, e := range gs.Tribute.Returns {
		if e.Card == nil && e.From == p.seat {
			card := bot.TributeReturn(hand, level)
			return p.send(protocol.EventReturnTribute, protocol.ReturnTributeData{Card: card.ID()})
		}
	}
	return nil
}

func wireCards(cards []protocol.Card) ([]deck.Card, error) {
	out := make([]deck.Card, len(cards))
	for i, c := range cards {
		parsed, err := deck.ParseID(c.ID)
		if err != nil {
			return nil, err
		}
		out[i] = parsed
	}
	return out, nil
}
