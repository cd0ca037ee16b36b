package server

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lox/guandan/internal/roomid"
)

// Registry tracks live rooms by join code. Lookups are concurrent; each
// room serialises its own state behind its actor goroutine.
type Registry struct {
	logger  zerolog.Logger
	factory func(id string) *Room
	newID   func() string
	mu      sync.RWMutex
	rooms   map[string]*Room
}

// NewRegistry constructs an empty registry. factory builds a room for an
// id; newID generates codes for rooms created without one (nil uses
// roomid.Generate).
func NewRegistry(logger zerolog.Logger, factory func(id string) *Room, newID func() string) *Registry {
	if newID == nil {
		newID = roomid.Generate
	}
	return &Registry{
		logger:  logger.With().Str("component", "registry").Logger(),
		factory: factory,
		newID:   newID,
		rooms:   make(map[string]*Room),
	}
}

// Resolve returns the room for id, creating it when absent. An empty id
// provisions a fresh room under a generated join code.
func (reg *Registry) Resolve(id string) (*Room, error) {
	if id == "" {
		return reg.create()
	}

	id = roomid.Normalize(id)
	if err := roomid.Validate(id); err != nil {
		return nil, err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if room, ok := reg.rooms[id]; ok {
		return room, nil
	}
	room := reg.factory(id)
	reg.rooms[id] = room
	reg.logger.Info().Str("room", id).Msg("room created")
	return room, nil
}

func (reg *Registry) create() (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for attempt := 0; attempt < 5; attempt++ {
		id := reg.newID()
		if _, taken := reg.rooms[id]; taken {
			continue
		}
		room := reg.factory(id)
		reg.rooms[id] = room
		reg.logger.Info().Str("room", id).Msg("room created")
		return room, nil
	}
	return nil, errors.New("could not allocate a room code")
}

// Get retrieves a room by id.
func (reg *Registry) Get(id string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[roomid.Normalize(id)]
	return room, ok
}

// Remove drops a room from the registry. The room is only removed if it
// is still the one registered under its id, so a code recycled to a new
// room is not clobbered by the old room's shutdown.
func (reg *Registry) Remove(room *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if current, ok := reg.rooms[room.ID()]; ok && current == room {
		delete(reg.rooms, room.ID())
		reg.logger.Info().Str("room", room.ID()).Msg("room removed")
	}
}

// Len reports the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// StopAll stops every room's actor.
func (reg *Registry) StopAll() {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	for _, room := range reg.rooms {
		room.stop()
	}
}
