// Package protocol defines the wire protocol between the Guandan server
// and its clients. Every frame is a tagged record {event, payload}; the
// payload is decoded exactly once, at the transport boundary, into the
// typed struct for its event.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event tags a wire message
type Event string

// Client -> server events
const (
	EventJoin          Event = "join"
	EventReady         Event = "ready"
	EventStart         Event = "start"
	EventPlayHand      Event = "playHand"
	EventPass          Event = "pass"
	EventTribute       Event = "tribute"
	EventReturnTribute Event = "returnTribute"
	EventSwitchSeat    Event = "switchSeat"
	EventSetMode       Event = "setMode"
	EventForceEnd      Event = "forceEnd"
	EventChat          Event = "chat"
)

// Server -> client events
const (
	EventRoomState   Event = "roomState"
	EventGameState   Event = "gameState"
	EventError       Event = "error"
	EventGameOver    Event = "gameOver"
	EventMatchOver   Event = "matchOver"
	EventChatMessage Event = "chatMessage"
)

// String returns the event tag
func (e Event) String() string { return string(e) }

// MaxNameLength bounds player names on join
const MaxNameLength = 10

// GameMode selects the rule variant for a room
type GameMode string

const (
	ModeNormal GameMode = "Normal"
	ModeSkill  GameMode = "Skill"
)

// Valid reports whether the mode is one the server knows
func (m GameMode) Valid() bool {
	return m == ModeNormal || m == ModeSkill
}

// Message is the wire frame
type Message struct {
	Event   Event           `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage builds a frame with the payload marshalled in place
func NewMessage(event Event, payload any) (*Message, error) {
	if payload == nil {
		return &Message{Event: event}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	return &Message{Event: event, Payload: data}, nil
}

// Encode marshals a complete frame for the wire
func Encode(event Event, payload any) ([]byte, error) {
	m, err := NewMessage(event, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// Parse reads a frame off the wire. The payload stays raw until Decode.
func Parse(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	if m.Event == "" {
		return nil, fmt.Errorf("message has no event tag")
	}
	return &m, nil
}

// Decode unmarshals the payload into the typed struct for the event
func (m *Message) Decode(v any) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("%s: empty payload", m.Event)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("%s: %w", m.Event, err)
	}
	return nil
}

// Client -> server payloads

type JoinData struct {
	Name   string `json:"name"`
	RoomID string `json:"roomId"`
}

type PlayHandData struct {
	Cards []string `json:"cards"`
}

type TributeData struct {
	Card string `json:"card"`
}

type ReturnTributeData struct {
	Card string `json:"card"`
}

type SwitchSeatData struct {
	Target int `json:"target"`
}

type SetModeData struct {
	Mode GameMode `json:"mode"`
}

type ChatData struct {
	Text string `json:"text"`
}

// Server -> client payloads

// SeatState is one seat's occupancy in a roomState frame
type SeatState struct {
	Seat      int    `json:"seat"`
	Name      string `json:"name,omitempty"`
	Occupied  bool   `json:"occupied"`
	Ready     bool   `json:"ready"`
	Connected bool   `json:"connected"`
	Bot       bool   `json:"bot"`
}

type RoomStateData struct {
	RoomID      string       `json:"roomId"`
	Seats       [4]SeatState `json:"seats"`
	Mode        GameMode     `json:"mode"`
	MatchActive bool         `json:"matchActive"`
}

type ErrorData struct {
	Message string `json:"message"`
}

type GameOverData struct {
	Winners []int `json:"winners"`
}

type MatchOverData struct {
	Team   int       `json:"team"`
	Levels [2]string `json:"levels"`
}

type ChatMessageData struct {
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	Seat   int       `json:"seat"`
	Time   time.Time `json:"time"`
}
