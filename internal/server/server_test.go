package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lox/guandan/internal/protocol"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(zerolog.Nop(), 42)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})
	return srv, ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, event protocol.Event, payload any) {
	t.Helper()
	data, err := protocol.Encode(event, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func readFrame(t *testing.T, conn *websocket.Conn) *protocol.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	msg, err := protocol.Parse(raw)
	require.NoError(t, err)
	return msg
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, WaitForHealthy(ctx, ts.URL))
}

func TestJoinProvisionsRoom(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialWS(t, ts)

	writeFrame(t, conn, protocol.EventJoin, protocol.JoinData{Name: "alice"})

	msg := readFrame(t, conn)
	require.Equal(t, protocol.EventRoomState, msg.Event)

	var st protocol.RoomStateData
	require.NoError(t, msg.Decode(&st))
	require.Len(t, st.RoomID, 6, "an empty roomId provisions a room under a join code")
	require.Equal(t, "alice", st.Seats[0].Name)
	require.True(t, st.Seats[0].Connected)
	require.False(t, st.MatchActive)
}

func TestTwoClientsShareARoom(t *testing.T) {
	_, ts := newTestServer(t)

	alice := dialWS(t, ts)
	writeFrame(t, alice, protocol.EventJoin, protocol.JoinData{Name: "alice"})
	var st protocol.RoomStateData
	require.NoError(t, readFrame(t, alice).Decode(&st))

	bob := dialWS(t, ts)
	writeFrame(t, bob, protocol.EventJoin, protocol.JoinData{Name: "bob", RoomID: st.RoomID})
	var bobView protocol.RoomStateData
	require.NoError(t, readFrame(t, bob).Decode(&bobView))
	require.Equal(t, st.RoomID, bobView.RoomID)
	require.Equal(t, "alice", bobView.Seats[0].Name)
	require.Equal(t, "bob", bobView.Seats[1].Name)

	// Alice sees bob arrive on her second roomState.
	var aliceView protocol.RoomStateData
	require.NoError(t, readFrame(t, alice).Decode(&aliceView))
	require.Equal(t, bobView, aliceView)
}

func TestCommandsBeforeJoinRejected(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialWS(t, ts)

	writeFrame(t, conn, protocol.EventReady, nil)

	msg := readFrame(t, conn)
	require.Equal(t, protocol.EventError, msg.Event)
	var data protocol.ErrorData
	require.NoError(t, msg.Decode(&data))
	require.Contains(t, data.Message, "join a room first")
}

func TestJoinValidatesName(t *testing.T) {
	_, ts := newTestServer(t)

	conn := dialWS(t, ts)
	writeFrame(t, conn, protocol.EventJoin, protocol.JoinData{Name: "   "})
	msg := readFrame(t, conn)
	require.Equal(t, protocol.EventError, msg.Event)

	long := dialWS(t, ts)
	writeFrame(t, long, protocol.EventJoin, protocol.JoinData{Name: strings.Repeat("a", 11)})
	msg = readFrame(t, long)
	require.Equal(t, protocol.EventError, msg.Event)
	var data protocol.ErrorData
	require.NoError(t, msg.Decode(&data))
	require.Contains(t, data.Message, "at most")
}

func TestJoinRejectsBadRoomCode(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialWS(t, ts)

	writeFrame(t, conn, protocol.EventJoin, protocol.JoinData{Name: "alice", RoomID: "nope"})
	msg := readFrame(t, conn)
	require.Equal(t, protocol.EventError, msg.Event)
}

func TestMalformedFrameRejected(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialWS(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg := readFrame(t, conn)
	require.Equal(t, protocol.EventError, msg.Event)
}

func TestGameFlowsOverWebsocket(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dialWS(t, ts)

	writeFrame(t, conn, protocol.EventJoin, protocol.JoinData{Name: "alice"})
	require.Equal(t, protocol.EventRoomState, readFrame(t, conn).Event)

	// Starting alone fills the other seats with bots and deals.
	writeFrame(t, conn, protocol.EventStart, nil)

	var st protocol.RoomStateData
	var gs protocol.GameStateData
	sawGame := false
	for i := 0; i < 2; i++ {
		msg := readFrame(t, conn)
		switch msg.Event {
		case protocol.EventRoomState:
			require.NoError(t, msg.Decode(&st))
		case protocol.EventGameState:
			require.NoError(t, msg.Decode(&gs))
			sawGame = true
		}
	}
	require.True(t, st.MatchActive)
	require.True(t, st.Seats[3].Bot)
	require.True(t, sawGame, "starting a match pushes a snapshot")
	require.Equal(t, "Playing", gs.Phase)
	require.Len(t, gs.Hands[0].Cards, 27)

	// Alice leads her lowest card; the next snapshot reflects the play.
	low := gs.Hands[0].Cards[len(gs.Hands[0].Cards)-1]
	writeFrame(t, conn, protocol.EventPlayHand, protocol.PlayHandData{Cards: []string{low.ID}})

	msg := readFrame(t, conn)
	require.Equal(t, protocol.EventGameState, msg.Event)
	require.NoError(t, msg.Decode(&gs))
	require.Equal(t, 1, gs.CurrentTurn)
	require.Len(t, gs.Hands[0].Cards, 26)
}
