package server

import (
	"testing"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lox/guandan/internal/bot"
	"github.com/lox/guandan/internal/randutil"
)

func newTestRegistry(t *testing.T, newID func() string) *Registry {
	t.Helper()
	strategy, err := bot.Resolve("low")
	require.NoError(t, err)
	settings := GameSettings{BotDelayMs: 1000, DealGraceMs: 3000}
	factory := func(id string) *Room {
		return NewRoom(id, zerolog.Nop(), quartz.NewReal(), randutil.New(1), strategy, settings, nil)
	}
	reg := NewRegistry(zerolog.Nop(), factory, newID)
	t.Cleanup(reg.StopAll)
	return reg
}

func TestResolveCreatesAndReuses(t *testing.T) {
	reg := newTestRegistry(t, nil)

	room1, err := reg.Resolve("ab12cd")
	require.NoError(t, err)
	require.Equal(t, "ab12cd", room1.ID())
	require.Equal(t, 1, reg.Len())

	// Codes are case-insensitive on lookup.
	room2, err := reg.Resolve("AB12CD")
	require.NoError(t, err)
	require.Same(t, room1, room2)
	require.Equal(t, 1, reg.Len())
}

func TestResolveValidatesCodes(t *testing.T) {
	reg := newTestRegistry(t, nil)

	_, err := reg.Resolve("abc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "6 characters")

	_, err = reg.Resolve("abcdeu")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid character")

	require.Zero(t, reg.Len())
}

func TestResolveEmptyIDGeneratesCode(t *testing.T) {
	codes := []string{"aaaaaa", "aaaaaa", "bbbbbb"}
	next := 0
	reg := newTestRegistry(t, func() string {
		code := codes[next]
		next++
		return code
	})

	room1, err := reg.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "aaaaaa", room1.ID())

	// The second room retries past the colliding code.
	room2, err := reg.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "bbbbbb", room2.ID())
	require.Equal(t, 2, reg.Len())
}

func TestGeneratedCodesAreWellFormed(t *testing.T) {
	reg := newTestRegistry(t, nil)
	room, err := reg.Resolve("")
	require.NoError(t, err)
	require.Len(t, room.ID(), 6)

	// The generated code resolves back to the same room.
	again, err := reg.Resolve(room.ID())
	require.NoError(t, err)
	require.Same(t, room, again)
}

func TestRemoveOnlyDropsCurrentRoom(t *testing.T) {
	reg := newTestRegistry(t, nil)

	room1, err := reg.Resolve("ab12cd")
	require.NoError(t, err)
	reg.Remove(room1)
	require.Zero(t, reg.Len())

	room2, err := reg.Resolve("ab12cd")
	require.NoError(t, err)
	require.NotSame(t, room1, room2)

	// A stale remove for the replaced room must not evict its successor.
	reg.Remove(room1)
	require.Equal(t, 1, reg.Len())
	room1.stop()
}
