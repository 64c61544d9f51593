package runtime

import (
	"testing"

	"driftway/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	alice = domain.Identity{ID: "alice", DisplayName: "Alice"}
	bob   = domain.Identity{ID: "bob", DisplayName: "Bob"}
)

func TestRegistry_Bind(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	connA := uuid.New()
	first, ok := registry.Bind(connA, alice, nil)
	req.True(ok)
	req.True(first)

	// Second device of the same identity is not "first".
	connB := uuid.New()
	first, ok = registry.Bind(connB, alice, nil)
	req.True(ok)
	req.False(first)

	// Rebinding the same transport is refused.
	_, ok = registry.Bind(connA, bob, nil)
	req.False(ok)

	identity, ok := registry.Identity(connA)
	req.True(ok)
	req.Equal(alice, identity)
}

func TestRegistry_Unbind_Reports_Removed_State(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	connA := uuid.New()
	_, ok := registry.Bind(connA, alice, nil)
	req.True(ok)
	req.True(registry.JoinRoom(connA, "conv-1"))
	req.True(registry.JoinRoom(connA, "conv-2"))
	req.True(registry.SetTyping("conv-1", alice.ID))

	result, ok := registry.Unbind(connA)
	req.True(ok)
	req.Equal(alice, result.Identity)
	req.ElementsMatch([]string{"conv-1", "conv-2"}, result.JoinedRooms)
	req.Equal([]string{"conv-1"}, result.TypingCleared)
	req.True(result.LastOfUser)

	// Everything is gone.
	req.False(registry.InRoom(connA, "conv-1"))
	req.Empty(registry.Typers("conv-1"))
	_, ok = registry.Identity(connA)
	req.False(ok)

	// Unbinding again is a no-op.
	_, ok = registry.Unbind(connA)
	req.False(ok)
}

func TestRegistry_Unbind_Multi_Device(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	connA, connB := uuid.New(), uuid.New()
	registry.Bind(connA, alice, nil)
	registry.Bind(connB, alice, nil)

	result, ok := registry.Unbind(connA)
	req.True(ok)
	req.False(result.LastOfUser)

	result, ok = registry.Unbind(connB)
	req.True(ok)
	req.True(result.LastOfUser)
}

func TestRegistry_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	connA, connB := uuid.New(), uuid.New()
	registry.Bind(connA, alice, nil)
	registry.Bind(connB, bob, nil)

	req.True(registry.JoinRoom(connA, "conv-1"))
	req.True(registry.JoinRoom(connB, "conv-1"))
	req.True(registry.InRoom(connA, "conv-1"))

	// Joining twice stays a single membership.
	req.True(registry.JoinRoom(connA, "conv-1"))
	req.Len(registry.RoomSinks("conv-1", nil), 2)
	req.Len(registry.RoomSinks("conv-1", &connA), 1)

	wasMember, _ := registry.LeaveRoom(connA, "conv-1")
	req.True(wasMember)
	req.False(registry.InRoom(connA, "conv-1"))

	// Leaving a room never joined is a no-op.
	wasMember, _ = registry.LeaveRoom(connA, "conv-1")
	req.False(wasMember)

	// Unknown connections cannot join.
	req.False(registry.JoinRoom(uuid.New(), "conv-1"))
}

func TestRegistry_Typing(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	req.True(registry.SetTyping("conv-1", alice.ID))
	// Duplicate start changes nothing.
	req.False(registry.SetTyping("conv-1", alice.ID))
	req.True(registry.SetTyping("conv-1", bob.ID))
	req.ElementsMatch([]string{alice.ID, bob.ID}, registry.Typers("conv-1"))

	req.True(registry.ClearTyping("conv-1", alice.ID))
	req.False(registry.ClearTyping("conv-1", alice.ID))
	req.Equal([]string{bob.ID}, registry.Typers("conv-1"))
}

func TestRegistry_Leave_Clears_Typing(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	connA := uuid.New()
	registry.Bind(connA, alice, nil)
	registry.JoinRoom(connA, "conv-1")
	registry.SetTyping("conv-1", alice.ID)

	_, typingCleared := registry.LeaveRoom(connA, "conv-1")
	req.True(typingCleared)
	req.Empty(registry.Typers("conv-1"))
}

func TestRegistry_Gauges(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	connA, connB := uuid.New(), uuid.New()
	registry.Bind(connA, alice, nil)
	registry.Bind(connB, bob, nil)
	registry.JoinRoom(connA, "conv-1")
	registry.SetTyping("conv-1", alice.ID)

	connections, rooms, typers := registry.Gauges()
	req.Equal(2, connections)
	req.Equal(1, rooms)
	req.Equal(1, typers)
}
