package runtime

import (
	"sync"

	"driftway/contract"
	"driftway/domain"

	"github.com/google/uuid"
)

type Set map[string]struct{}

// Registry owns every piece of mutable coordinator state: which
// transport connection belongs to which identity, which rooms each
// connection has joined, and who is typing where. All methods are short
// map operations under one RWMutex; anything returned for broadcasting
// is a point-in-time snapshot, so no caller ever holds the lock while
// writing to a sink or waiting on storage.
type Registry struct {
	mu sync.RWMutex

	// conns holds one entry per authenticated transport connection.
	conns map[uuid.UUID]*liveConnection

	// identityConns counts live connections per identity. Online status
	// follows the 0→1 and 1→0 transitions of this set, never a boolean
	// flipped by whichever disconnect happens to run last.
	identityConns map[string]map[uuid.UUID]struct{}

	// roomMembers maps a conversation id to the connections in its room.
	roomMembers map[string]map[uuid.UUID]struct{}

	// typing maps a conversation id to the identities currently typing.
	// Identities, not connections: typing is aggregated across devices.
	typing map[string]Set
}

type liveConnection struct {
	id       uuid.UUID
	identity domain.Identity
	sink     contract.EventSink
	joined   map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns:         make(map[uuid.UUID]*liveConnection),
		identityConns: make(map[string]map[uuid.UUID]struct{}),
		roomMembers:   make(map[string]map[uuid.UUID]struct{}),
		typing:        make(map[string]Set),
	}
}

// Bind associates a transport connection with an identity and its sink.
// It reports whether this is the identity's first live connection. A
// transport that is already bound stays untouched.
func (r *Registry) Bind(connID uuid.UUID, identity domain.Identity, sink contract.EventSink) (first, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[connID]; exists {
		return false, false
	}
	r.conns[connID] = &liveConnection{
		id:       connID,
		identity: identity,
		sink:     sink,
		joined:   make(map[string]struct{}),
	}
	set, exists := r.identityConns[identity.ID]
	if !exists {
		set = make(map[uuid.UUID]struct{})
		r.identityConns[identity.ID] = set
	}
	set[connID] = struct{}{}
	return len(set) == 1, true
}

// UnbindResult describes the state removed by an Unbind so the
// coordinator can broadcast the right notifications after the fact.
type UnbindResult struct {
	Identity      domain.Identity
	JoinedRooms   []string
	TypingCleared []string
	LastOfUser    bool
}

// Unbind removes a connection and every trace of it: room memberships
// and, when no other device keeps it alive, the identity's typing state.
// Safe to call for an unknown connection (reports ok=false), so abrupt
// disconnects racing an in-flight operation stay idempotent.
func (r *Registry) Unbind(connID uuid.UUID) (UnbindResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.conns[connID]
	if !exists {
		return UnbindResult{}, false
	}
	delete(r.conns, connID)

	result := UnbindResult{Identity: conn.identity}
	for roomID := range conn.joined {
		result.JoinedRooms = append(result.JoinedRooms, roomID)
		r.removeFromRoom(connID, roomID)
		if r.clearTyping(roomID, conn.identity.ID) {
			result.TypingCleared = append(result.TypingCleared, roomID)
		}
	}

	if set, exists := r.identityConns[conn.identity.ID]; exists {
		delete(set, connID)
		if len(set) == 0 {
			delete(r.identityConns, conn.identity.ID)
			result.LastOfUser = true
		}
	}
	return result, true
}

// Identity resolves a connection to its authenticated identity.
func (r *Registry) Identity(connID uuid.UUID) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, exists := r.conns[connID]
	if !exists {
		return domain.Identity{}, false
	}
	return conn.identity, true
}

// JoinRoom adds the connection to a conversation's room. Joining twice
// is a no-op. Reports ok=false when the connection is not bound, which
// also covers a disconnect racing the join's participant check.
func (r *Registry) JoinRoom(connID uuid.UUID, conversationID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.conns[connID]
	if !exists {
		return false
	}
	conn.joined[conversationID] = struct{}{}
	members, exists := r.roomMembers[conversationID]
	if !exists {
		members = make(map[uuid.UUID]struct{})
		r.roomMembers[conversationID] = members
	}
	members[connID] = struct{}{}
	return true
}

// LeaveRoom removes the connection from a room. Leaving a room never
// joined is a no-op. It also clears the identity's typing state for
// that conversation and reports whether it did.
func (r *Registry) LeaveRoom(connID uuid.UUID, conversationID string) (wasMember, typingCleared bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.conns[connID]
	if !exists {
		return false, false
	}
	if _, member := conn.joined[conversationID]; !member {
		return false, false
	}
	delete(conn.joined, conversationID)
	r.removeFromRoom(connID, conversationID)
	return true, r.clearTyping(conversationID, conn.identity.ID)
}

// SetTyping marks the identity as typing in a conversation and reports
// whether that changed anything.
func (r *Registry) SetTyping(conversationID, identityID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	typers, exists := r.typing[conversationID]
	if !exists {
		typers = make(Set)
		r.typing[conversationID] = typers
	}
	if _, already := typers[identityID]; already {
		return false
	}
	typers[identityID] = struct{}{}
	return true
}

// ClearTyping removes the identity from a conversation's typing set.
func (r *Registry) ClearTyping(conversationID, identityID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearTyping(conversationID, identityID)
}

// Typers returns the identities currently typing in a conversation.
func (r *Registry) Typers(conversationID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	typers := make([]string, 0, len(r.typing[conversationID]))
	for id := range r.typing[conversationID] {
		typers = append(typers, id)
	}
	return typers
}

// InRoom reports whether the connection currently belongs to the room.
func (r *Registry) InRoom(connID uuid.UUID, conversationID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, exists := r.conns[connID]
	if !exists {
		return false
	}
	_, member := conn.joined[conversationID]
	return member
}

// RoomSinks snapshots the sinks of every connection in a room. A nil
// exclude returns the full room (message fanout); excluding the acting
// connection serves the join/leave/typing notifications.
func (r *Registry) RoomSinks(conversationID string, exclude *uuid.UUID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, exists := r.roomMembers[conversationID]
	if !exists {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(members))
	for connID := range members {
		if exclude != nil && connID == *exclude {
			continue
		}
		if conn, live := r.conns[connID]; live {
			sinks = append(sinks, conn.sink)
		}
	}
	return sinks
}

// AllSinks snapshots every connection's sink except the excluded one.
// Used for the presence online/offline broadcasts.
func (r *Registry) AllSinks(exclude uuid.UUID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make([]contract.EventSink, 0, len(r.conns))
	for connID, conn := range r.conns {
		if connID == exclude {
			continue
		}
		sinks = append(sinks, conn.sink)
	}
	return sinks
}

// Gauges reports registry sizes for the telemetry worker.
func (r *Registry) Gauges() (connections, rooms, typers int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, set := range r.typing {
		typers += len(set)
	}
	return len(r.conns), len(r.roomMembers), typers
}

// callers must hold r.mu.
func (r *Registry) removeFromRoom(connID uuid.UUID, conversationID string) {
	members, exists := r.roomMembers[conversationID]
	if !exists {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.roomMembers, conversationID)
	}
}

// callers must hold r.mu.
func (r *Registry) clearTyping(conversationID, identityID string) bool {
	typers, exists := r.typing[conversationID]
	if !exists {
		return false
	}
	if _, typing := typers[identityID]; !typing {
		return false
	}
	delete(typers, identityID)
	if len(typers) == 0 {
		delete(r.typing, conversationID)
	}
	return true
}
