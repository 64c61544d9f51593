// Package runtime coordinates live connections, rooms, presence and
// message fanout. It owns no durable state: everything durable goes
// through the repositories, everything ephemeral lives in the Registry.
package runtime

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"driftway/contract"
	"driftway/domain"
	"driftway/domain/event"
	"driftway/errors"
	"driftway/repositories"

	"github.com/google/uuid"
)

// Coordinator is the orchestrator behind every transport command. Rules
// it keeps, in one place:
//
//   - A connection must authenticate before any room or message
//     operation; failures go back to that connection only.
//   - Room joins re-check conversation membership on every attempt.
//   - Message order within a conversation follows persistence order; a
//     per-conversation mutex serializes persist+broadcast of one send.
//   - The registry lock is never held across a storage call; storage
//     calls carry a deadline and fail the operation instead of wedging.
//   - Post-persist bookkeeping (last-message pointer, typing clear) is
//     best-effort: a message counts as sent once stored.
type Coordinator struct {
	log            *slog.Logger
	registry       *Registry
	users          repositories.IUserRepository
	conversations  repositories.IConversationRepository
	messages       repositories.IMessageRepository
	persistTimeout time.Duration

	sendMu   sync.Mutex
	sendLock map[string]*sync.Mutex
}

func NewCoordinator(
	log *slog.Logger,
	registry *Registry,
	users repositories.IUserRepository,
	conversations repositories.IConversationRepository,
	messages repositories.IMessageRepository,
	persistTimeout time.Duration,
) *Coordinator {
	return &Coordinator{
		log:            log,
		registry:       registry,
		users:          users,
		conversations:  conversations,
		messages:       messages,
		persistTimeout: persistTimeout,
		sendLock:       make(map[string]*sync.Mutex),
	}
}

// Authenticate binds a transport connection to the identity its session
// proved. The claimed user id must match the session owner; a transport
// that is already bound gets ErrAlreadyAuthenticated and no state
// changes. On an identity's first live connection the durable online
// flag is set and presence-online goes out to every other connection.
func (c *Coordinator) Authenticate(ctx context.Context, connID uuid.UUID, sessionIdentity domain.Identity, cmd domain.AuthenticateCommand, sink contract.EventSink) error {
	if cmd.UserID != sessionIdentity.ID {
		c.log.Warn("Authenticate claimed a foreign identity",
			"conn_id", connID, "claimed", cmd.UserID, "session", sessionIdentity.ID)
		return errors.ErrUnauthenticated
	}
	identity := sessionIdentity
	if cmd.DisplayName != "" {
		identity.DisplayName = cmd.DisplayName
	}

	first, ok := c.registry.Bind(connID, identity, sink)
	if !ok {
		return errors.ErrAlreadyAuthenticated
	}

	if first {
		// Presence flag is advisory; a storage hiccup must not kill the
		// freshly authenticated connection.
		if err := c.callStore(ctx, func() error {
			return c.users.SetOnlineStatus(identity.ID, true)
		}); err != nil {
			c.log.Error("Failed to persist online status", "user_id", identity.ID, "error", err)
		}
	}

	c.deliver(c.registry.AllSinks(connID), event.PresenceOnline{
		UserID:      identity.ID,
		DisplayName: identity.DisplayName,
	})
	c.log.Info("Connection authenticated", "conn_id", connID, "user_id", identity.ID)
	return nil
}

// Disconnect tears down everything the connection left behind: typing
// state, room memberships, and, when its identity has no other live
// device, the durable online flag. It runs on abrupt drops as well as
// graceful closes and is idempotent.
func (c *Coordinator) Disconnect(ctx context.Context, connID uuid.UUID) {
	result, ok := c.registry.Unbind(connID)
	if !ok {
		return
	}

	for _, conversationID := range result.TypingCleared {
		c.deliver(c.registry.RoomSinks(conversationID, nil), event.StoppedTyping{
			UserID:         result.Identity.ID,
			DisplayName:    result.Identity.DisplayName,
			ConversationID: conversationID,
		})
	}
	for _, conversationID := range result.JoinedRooms {
		c.deliver(c.registry.RoomSinks(conversationID, nil), event.ParticipantLeft{
			UserID:         result.Identity.ID,
			DisplayName:    result.Identity.DisplayName,
			ConversationID: conversationID,
		})
	}

	if result.LastOfUser {
		if err := c.callStore(ctx, func() error {
			return c.users.SetOnlineStatus(result.Identity.ID, false)
		}); err != nil {
			// Logged and swallowed: registry consistency must not depend
			// on this write landing.
			c.log.Error("Failed to persist offline status", "user_id", result.Identity.ID, "error", err)
		}
		c.deliver(c.registry.AllSinks(connID), event.PresenceOffline{
			UserID:      result.Identity.ID,
			DisplayName: result.Identity.DisplayName,
		})
	}
	c.log.Info("Connection cleaned up", "conn_id", connID, "user_id", result.Identity.ID)
}

// Join adds the connection to a conversation's room after re-verifying
// participation against storage. The membership check runs before the
// registry write and is never cached: participant lists change.
func (c *Coordinator) Join(ctx context.Context, connID uuid.UUID, conversationID string) error {
	identity, ok := c.registry.Identity(connID)
	if !ok {
		return errors.ErrUnauthenticated
	}

	var participant bool
	err := c.callStore(ctx, func() error {
		var storeErr error
		participant, storeErr = c.conversations.IsParticipant(conversationID, identity.ID)
		return storeErr
	})
	if stderrors.Is(err, errors.ErrNotFound) {
		return errors.ErrNotAParticipant
	}
	if err != nil {
		return err
	}
	if !participant {
		return errors.ErrNotAParticipant
	}

	// The connection may have dropped while we were checking storage;
	// JoinRoom refuses unbound connections, keeping cleanup races safe.
	if !c.registry.JoinRoom(connID, conversationID) {
		return errors.ErrUnauthenticated
	}

	c.deliver(c.registry.RoomSinks(conversationID, &connID), event.ParticipantJoined{
		UserID:         identity.ID,
		DisplayName:    identity.DisplayName,
		ConversationID: conversationID,
	})
	return nil
}

// Leave removes the connection from the room. Leaving a room never
// joined is a no-op, not an error.
func (c *Coordinator) Leave(_ context.Context, connID uuid.UUID, conversationID string) error {
	identity, ok := c.registry.Identity(connID)
	if !ok {
		return errors.ErrUnauthenticated
	}

	wasMember, typingCleared := c.registry.LeaveRoom(connID, conversationID)
	if !wasMember {
		return nil
	}
	if typingCleared {
		c.deliver(c.registry.RoomSinks(conversationID, &connID), event.StoppedTyping{
			UserID:         identity.ID,
			DisplayName:    identity.DisplayName,
			ConversationID: conversationID,
		})
	}
	c.deliver(c.registry.RoomSinks(conversationID, &connID), event.ParticipantLeft{
		UserID:         identity.ID,
		DisplayName:    identity.DisplayName,
		ConversationID: conversationID,
	})
	return nil
}

// TypingStart marks the identity as typing. Repeated calls while
// already typing are absorbed without a duplicate broadcast. A
// connection that never joined the room has no "rest of the room" to
// notify, so the signal is dropped silently.
func (c *Coordinator) TypingStart(_ context.Context, connID uuid.UUID, conversationID string) error {
	identity, ok := c.registry.Identity(connID)
	if !ok {
		return errors.ErrUnauthenticated
	}
	if !c.registry.InRoom(connID, conversationID) {
		return nil
	}
	if !c.registry.SetTyping(conversationID, identity.ID) {
		return nil
	}
	c.deliver(c.registry.RoomSinks(conversationID, &connID), event.Typing{
		UserID:         identity.ID,
		DisplayName:    identity.DisplayName,
		ConversationID: conversationID,
	})
	return nil
}

func (c *Coordinator) TypingStop(_ context.Context, connID uuid.UUID, conversationID string) error {
	identity, ok := c.registry.Identity(connID)
	if !ok {
		return errors.ErrUnauthenticated
	}
	if !c.registry.ClearTyping(conversationID, identity.ID) {
		return nil
	}
	c.deliver(c.registry.RoomSinks(conversationID, &connID), event.StoppedTyping{
		UserID:         identity.ID,
		DisplayName:    identity.DisplayName,
		ConversationID: conversationID,
	})
	return nil
}

// Send persists an envelope and fans it out to the conversation's room.
// The conversation mutex is held across persist+broadcast so broadcast
// order matches storage order; a storage deadline releases it by
// failing the send. Steps after the store are best-effort.
func (c *Coordinator) Send(ctx context.Context, connID uuid.UUID, cmd domain.SendMessageCommand) (domain.MessageEnvelope, error) {
	identity, ok := c.registry.Identity(connID)
	if !ok {
		return domain.MessageEnvelope{}, errors.ErrUnauthenticated
	}

	lock := c.conversationLock(cmd.ConversationID)
	lock.Lock()
	defer lock.Unlock()

	var participant bool
	err := c.callStore(ctx, func() error {
		var storeErr error
		participant, storeErr = c.conversations.IsParticipant(cmd.ConversationID, identity.ID)
		return storeErr
	})
	if stderrors.Is(err, errors.ErrNotFound) {
		return domain.MessageEnvelope{}, errors.ErrNotAParticipant
	}
	if err != nil {
		return domain.MessageEnvelope{}, err
	}
	if !participant {
		return domain.MessageEnvelope{}, errors.ErrNotAParticipant
	}

	// The store assigns id and server timestamp and seeds the sender's
	// read state. Failure here aborts the send: nothing was broadcast.
	var envelope domain.MessageEnvelope
	err = c.callStore(ctx, func() error {
		var storeErr error
		envelope, storeErr = c.messages.StoreMessage(cmd.Envelope(), identity.ID)
		return storeErr
	})
	if err != nil {
		return domain.MessageEnvelope{}, err
	}

	// Sent once stored. The pointer update and typing clear may lag
	// behind a crash; conversation listings catch up on the next send.
	if err := c.callStore(ctx, func() error {
		return c.conversations.UpdateLastMessage(cmd.ConversationID, envelope.ID.String())
	}); err != nil {
		c.log.Error("Failed to update last-message pointer",
			"conversation_id", cmd.ConversationID, "message_id", envelope.ID, "error", err)
	}

	if c.registry.ClearTyping(cmd.ConversationID, identity.ID) {
		c.deliver(c.registry.RoomSinks(cmd.ConversationID, &connID), event.StoppedTyping{
			UserID:         identity.ID,
			DisplayName:    identity.DisplayName,
			ConversationID: cmd.ConversationID,
		})
	}

	// Full room, sender's devices included, so multi-device clients stay
	// in sync.
	c.deliver(c.registry.RoomSinks(cmd.ConversationID, nil), event.MessageReceived{
		Envelope:   envelope,
		SenderName: identity.DisplayName,
	})
	return envelope, nil
}

// MarkRead records a read receipt and notifies the rest of the room.
func (c *Coordinator) MarkRead(ctx context.Context, connID uuid.UUID, conversationID, messageID string) error {
	identity, ok := c.registry.Identity(connID)
	if !ok {
		return errors.ErrUnauthenticated
	}

	err := c.callStore(ctx, func() error {
		_, storeErr := c.messages.MarkAsRead(messageID, identity.ID)
		return storeErr
	})
	if err != nil {
		return err
	}

	c.deliver(c.registry.RoomSinks(conversationID, &connID), event.MessageRead{
		ConversationID: conversationID,
		MessageID:      messageID,
		UserID:         identity.ID,
		ReadAt:         time.Now().UTC(),
	})
	return nil
}

// conversationLock returns the mutex serializing sends for one
// conversation, creating it on first use. Entries are never removed:
// a mutex is a few words and the map grows with the number of
// conversations ever written to, not with traffic. Removing an entry
// safely would need bookkeeping of in-flight holders that costs more
// than the memory it reclaims.
func (c *Coordinator) conversationLock(conversationID string) *sync.Mutex {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	lock, exists := c.sendLock[conversationID]
	if !exists {
		lock = &sync.Mutex{}
		c.sendLock[conversationID] = lock
	}
	return lock
}

// callStore runs a storage call under the configured deadline. A call
// that outlives its budget fails with ErrPersistence and its eventual
// result is discarded; the caller's locks are released either way.
func (c *Coordinator) callStore(ctx context.Context, f func() error) error {
	ctx, cancel := context.WithTimeout(ctx, c.persistTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- f() }()

	select {
	case err := <-done:
		if err == nil || stderrors.Is(err, errors.ErrNotFound) {
			return err
		}
		if stderrors.Is(err, errors.ErrPersistence) {
			return err
		}
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", errors.ErrPersistence, ctx.Err())
	}
}

// deliver pushes an event to each sink in the snapshot. Sinks guarantee
// a bounded Consume, so a slow consumer costs a dropped event and a log
// line, never a stalled broadcast.
func (c *Coordinator) deliver(sinks []contract.EventSink, e event.DomainEvent) {
	for _, sink := range sinks {
		if err := sink.Consume(context.Background(), e); err != nil {
			c.log.Warn("Dropping event for slow consumer", "event", fmt.Sprintf("%T", e), "error", err)
		}
	}
}
