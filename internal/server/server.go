// Package server implements the multi-room Guandan websocket server: one
// actor goroutine per room owns that room's seats and deal engine, the
// registry maps join codes to rooms, and each websocket session feeds
// parsed frames to the room it is bound to.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/guandan/internal/bot"
	"github.com/lox/guandan/internal/protocol"
	"github.com/lox/guandan/internal/randutil"
)

// Server owns the HTTP listener, the room registry and the set of live
// websocket sessions.
type Server struct {
	logger   zerolog.Logger
	config   Config
	clock    quartz.Clock
	seed     int64
	roomSeq  atomic.Int64
	strategy bot.Strategy
	upgrader websocket.Upgrader
	registry *Registry
	mux      *http.ServeMux
	httpSrv  *http.Server
	mu       sync.Mutex
	clients  map[*Client]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithConfig replaces the default configuration.
func WithConfig(config Config) Option {
	return func(s *Server) { s.config = config }
}

// WithClock replaces the real clock, letting tests drive room timers.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// NewServer constructs a server. seed derives each room's private rng, so
// a fixed seed replays the same deals room for room.
func NewServer(logger zerolog.Logger, seed int64, opts ...Option) *Server {
	s := &Server{
		logger: logger.With().Str("component", "server").Logger(),
		config: DefaultConfig(),
		clock:  quartz.NewReal(),
		seed:   seed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*Client]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	strategy, err := bot.Resolve(s.config.Game.BotStrategy)
	if err != nil {
		s.logger.Warn().Err(err).Msg("falling back to default bot strategy")
		strategy, _ = bot.Resolve("")
	}
	s.strategy = strategy

	s.registry = NewRegistry(s.logger, s.newRoom, nil)

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.httpSrv = &http.Server{Handler: s.mux}

	return s
}

func (s *Server) newRoom(id string) *Room {
	rng := randutil.New(s.seed + s.roomSeq.Add(1))
	return NewRoom(id, s.logger, s.clock, rng, s.strategy, s.config.Game, s.registry.Remove)
}

// Handler exposes the routing for tests that serve over httptest.
func (s *Server) Handler() http.Handler { return s.mux }

// Start listens on addr and serves until Shutdown. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *Server) Start(addr string) error {
	s.httpSrv.Addr = addr
	s.logger.Info().Str("addr", addr).Msg("listening")
	return s.httpSrv.ListenAndServe()
}

// Shutdown stops every room, drops all sessions and closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.registry.StopAll()

	s.mu.Lock()
	for c := range s.clients {
		c.Close()
	}
	s.mu.Unlock()

	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := newClient(conn, s.logger)
	s.addClient(client)
	go client.writePump()
	client.readPump(s.handleMessage)

	if room := client.Room(); room != nil {
		room.Leave(client)
	}
	s.removeClient(client)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

func (s *Server) addClient(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
}

func (s *Server) removeClient(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
}

// handleMessage routes one inbound frame. Until a session joins a room
// the only frame the server accepts is join; afterwards everything goes
// to the room's actor.
func (s *Server) handleMessage(c *Client, data []byte) {
	msg, err := protocol.Parse(data)
	if err != nil {
		c.SendError(err.Error())
		return
	}

	if room := c.Room(); room != nil {
		room.Handle(c, msg)
		return
	}
	if msg.Event != protocol.EventJoin {
		c.SendError("join a room first")
		return
	}
	s.handleJoin(c, msg)
}

func (s *Server) handleJoin(c *Client, msg *protocol.Message) {
	var data protocol.JoinData
	if err := msg.Decode(&data); err != nil {
		c.SendError(err.Error())
		return
	}

	name := strings.TrimSpace(data.Name)
	if name == "" {
		c.SendError("name is required")
		return
	}
	if len([]rune(name)) > protocol.MaxNameLength {
		c.SendError(fmt.Sprintf("name must be at most %d characters", protocol.MaxNameLength))
		return
	}

	// Two attempts: the first can race a room closing between lookup and
	// join, in which case the second resolves a fresh room.
	for attempt := 0; attempt < 2; attempt++ {
		room, err := s.registry.Resolve(data.RoomID)
		if err != nil {
			c.SendError(err.Error())
			return
		}
		switch err := room.Join(c, name); {
		case err == nil:
			return
		case errors.Is(err, ErrRoomClosed):
			continue
		default:
			c.SendError(err.Error())
			return
		}
	}
	c.SendError("room is unavailable, try again")
}
