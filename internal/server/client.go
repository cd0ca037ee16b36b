package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/guandan/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Client is one websocket session. A session binds to at most one room
// and stays bound until the connection drops; the seat itself survives a
// drop mid-match and is reclaimed by name on the next join.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	room   atomic.Pointer[Room]
	logger zerolog.Logger
	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, logger zerolog.Logger) *Client {
	return &Client{
		conn:   conn,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
		logger: logger.With().Str("remote", conn.RemoteAddr().String()).Logger(),
	}
}

// Send queues an encoded frame without blocking. A client that cannot
// drain its buffer loses frames rather than stalling the room; every
// gameState frame is a full snapshot, so a later frame repairs the view.
func (c *Client) Send(data []byte) {
	select {
	case c.send <- data:
	case <-c.done:
	default:
		c.logger.Warn().Msg("send buffer full, dropping frame")
	}
}

// SendMessage encodes and queues a protocol frame.
func (c *Client) SendMessage(event protocol.Event, payload any) {
	data, err := protocol.Encode(event, payload)
	if err != nil {
		c.logger.Error().Err(err).Str("event", event.String()).Msg("failed to encode frame")
		return
	}
	c.Send(data)
}

// SendError reports a rejected command back to this client only.
func (c *Client) SendError(message string) {
	c.SendMessage(protocol.EventError, protocol.ErrorData{Message: message})
}

// Done is closed when the connection has shut down.
func (c *Client) Done() <-chan struct{} { return c.done }

// Room returns the room this session is bound to, or nil before a
// successful join.
func (c *Client) Room() *Room { return c.room.Load() }

func (c *Client) bind(r *Room) { c.room.Store(r) }

// Close tears the connection down. Safe to call from any goroutine and
// more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	_ = c.conn.Close()
}

// readPump delivers inbound frames to handle until the connection drops.
// It runs on the HTTP handler goroutine; when it returns the session is
// over.
func (c *Client) readPump(handle func(*Client, []byte)) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Debug().Err(err).Msg("websocket read failed")
			}
			return
		}
		handle(c, data)
	}
}

// writePump owns all writes to the connection: queued frames and
// keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
