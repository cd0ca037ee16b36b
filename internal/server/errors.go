package server

import "errors"

var (
	// ErrRoomFull is returned by Join when all four seats are taken by
	// connected players or bots.
	ErrRoomFull = errors.New("room is full")

	// ErrRoomClosed is returned when addressing a room whose actor has
	// stopped. The caller should resolve the room id again.
	ErrRoomClosed = errors.New("room closed")
)
