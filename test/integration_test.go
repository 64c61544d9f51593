package test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"driftway/domain"
	"driftway/domain/event"
	"driftway/repositories"
	"driftway/runtime"
	"driftway/sink"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

// await pulls events off a sink until one matches, failing the test
// after a timeout. Events ahead of the match are discarded.
func await[T event.DomainEvent](t *testing.T, s *sink.ConnSink) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-s.Events:
			if match, ok := e.(T); ok {
				return match
			}
		case <-deadline:
			var zero T
			t.Fatalf("Timeout: event %T never arrived", zero)
			return zero
		}
	}
}

func Test_Scenario(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	// Reduced to 16 Mo for testing (avoid 20 Go of storage)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)
	t.Cleanup(func() { db.Close() })

	log := slog.Default()
	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	t.Cleanup(func() { blugeWriter.Close() })

	users := repositories.NewUserRepository(db)
	conversations := repositories.NewConversationRepository(db)
	search := repositories.NewSearchIndex(blugeWriter, log, 50, 50)
	messages := repositories.NewMessageRepository(db, search, log, lo.ToPtr(100))

	coordinator := runtime.NewCoordinator(
		log, runtime.NewRegistry(), users, conversations, messages, 3*time.Second,
	)

	// Given two registered users sharing a conversation
	aliceID, err := users.CreateUser("alice@example.com", "Alice", "hash-a")
	req.NoError(err)
	bobID, err := users.CreateUser("bob@example.com", "Bob", "hash-b")
	req.NoError(err)
	conversation, err := conversations.CreateConversation("pair chat", []string{aliceID, bobID})
	req.NoError(err)

	alice := domain.Identity{ID: aliceID, DisplayName: "Alice"}
	bob := domain.Identity{ID: bobID, DisplayName: "Bob"}

	aliceConn, bobConn := uuid.New(), uuid.New()
	aliceSink := sink.NewConnSink(64, time.Second)
	bobSink := sink.NewConnSink(64, time.Second)

	// When both authenticate and join the room
	req.NoError(coordinator.Authenticate(ctx, aliceConn, alice,
		domain.AuthenticateCommand{UserID: aliceID}, aliceSink))
	req.NoError(coordinator.Authenticate(ctx, bobConn, bob,
		domain.AuthenticateCommand{UserID: bobID}, bobSink))
	req.NoError(coordinator.Join(ctx, aliceConn, conversation.ID))
	req.NoError(coordinator.Join(ctx, bobConn, conversation.ID))

	joined := await[event.ParticipantJoined](t, aliceSink)
	req.Equal(bobID, joined.UserID)

	stored, err := users.GetUserByID(aliceID)
	req.NoError(err)
	req.True(stored.IsOnline)

	// When alice types then sends
	req.NoError(coordinator.TypingStart(ctx, aliceConn, conversation.ID))
	typing := await[event.Typing](t, bobSink)
	req.Equal(aliceID, typing.UserID)

	envelope, err := coordinator.Send(ctx, aliceConn, domain.SendMessageCommand{
		ConversationID: conversation.ID,
		Content:        "this message will self destruct in 5 seconds",
		MessageType:    domain.MessageTypeText,
	})
	req.NoError(err)

	// Then typing clears before the message lands, on both sides
	stopped := await[event.StoppedTyping](t, bobSink)
	req.Equal(aliceID, stopped.UserID)
	received := await[event.MessageReceived](t, bobSink)
	req.Equal(envelope.ID, received.Envelope.ID)
	req.Equal("Alice", received.SenderName)
	echoed := await[event.MessageReceived](t, aliceSink)
	req.Equal(envelope.ID, echoed.Envelope.ID)

	// And the envelope is durable with the sender's read state
	page, cursor, err := messages.GetMessages(conversation.ID, nil)
	req.NoError(err)
	req.Nil(cursor)
	req.Len(page, 1)
	req.Equal(envelope.ID, page[0].ID)
	req.Equal([]string{aliceID}, page[0].ReadBy)

	// And full-text search finds it once the index is flushed
	req.NoError(search.Flush())
	hits, total, err := search.Search(ctx, "destruct", conversation.ID, 0)
	req.NoError(err)
	req.Equal(uint64(1), total)
	req.Len(hits, 1)
	req.Equal(envelope.ID.String(), hits[0].MessageID)

	// When bob marks it read, alice hears about it
	req.NoError(coordinator.MarkRead(ctx, bobConn, conversation.ID, envelope.ID.String()))
	read := await[event.MessageRead](t, aliceSink)
	req.Equal(envelope.ID.String(), read.MessageID)
	req.Equal(bobID, read.UserID)

	page, _, err = messages.GetMessages(conversation.ID, nil)
	req.NoError(err)
	req.ElementsMatch([]string{aliceID, bobID}, page[0].ReadBy)

	// When alice disconnects, bob sees her leave and go offline
	coordinator.Disconnect(ctx, aliceConn)
	left := await[event.ParticipantLeft](t, bobSink)
	req.Equal(aliceID, left.UserID)
	offline := await[event.PresenceOffline](t, bobSink)
	req.Equal(aliceID, offline.UserID)

	stored, err = users.GetUserByID(aliceID)
	req.NoError(err)
	req.False(stored.IsOnline)
}
