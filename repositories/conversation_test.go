package repositories

import (
	"testing"

	"driftway/errors"

	"github.com/stretchr/testify/require"
)

func Test_CreateConversation_And_Get(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(testDB(t))

	created, err := repo.CreateConversation("design talk", []string{"alice", "bob"})
	req.NoError(err)
	req.NotEmpty(created.ID)
	req.False(created.IsEncrypted)

	fetched, err := repo.GetConversation(created.ID)
	req.NoError(err)
	req.Equal(created.ID, fetched.ID)
	req.Equal("design talk", fetched.Name)
	req.Equal([]string{"alice", "bob"}, fetched.Participants)
	req.Empty(fetched.LastMessageID)

	_, err = repo.GetConversation("no-such-conversation")
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_IsParticipant(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(testDB(t))

	created, err := repo.CreateConversation("private", []string{"alice", "bob"})
	req.NoError(err)

	ok, err := repo.IsParticipant(created.ID, "alice")
	req.NoError(err)
	req.True(ok)

	ok, err = repo.IsParticipant(created.ID, "mallory")
	req.NoError(err)
	req.False(ok)

	_, err = repo.IsParticipant("no-such-conversation", "alice")
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_UpdateLastMessage(t *testing.T) {
	req := require.New(t)
	repo := NewConversationRepository(testDB(t))

	created, err := repo.CreateConversation("room", []string{"alice", "bob"})
	req.NoError(err)

	req.NoError(repo.UpdateLastMessage(created.ID, "message-42"))
	fetched, err := repo.GetConversation(created.ID)
	req.NoError(err)
	req.Equal("message-42", fetched.LastMessageID)

	req.ErrorIs(repo.UpdateLastMessage("no-such-conversation", "m"), errors.ErrNotFound)
}
