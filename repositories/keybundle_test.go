package repositories

import (
	"testing"

	"driftway/errors"

	"github.com/stretchr/testify/require"
)

func Test_Activate_Marks_Conversation_Encrypted(t *testing.T) {
	req := require.New(t)
	db := testDB(t)
	conversations := NewConversationRepository(db)
	keys := NewKeyBundleRepository(db)

	conv, err := conversations.CreateConversation("secure", []string{"alice", "bob"})
	req.NoError(err)
	req.False(conv.IsEncrypted)

	bundle, err := keys.Activate(conv.ID, "opaque-bundle-v1", "alice")
	req.NoError(err)
	req.True(bundle.IsActive)
	req.Equal("alice", bundle.CreatedBy)
	req.Contains(bundle.ID, "key-")

	updated, err := conversations.GetConversation(conv.ID)
	req.NoError(err)
	req.True(updated.IsEncrypted)
}

func Test_Rotation_Keeps_Single_Active_Bundle(t *testing.T) {
	req := require.New(t)
	db := testDB(t)
	conversations := NewConversationRepository(db)
	keys := NewKeyBundleRepository(db)

	conv, err := conversations.CreateConversation("secure", []string{"alice", "bob"})
	req.NoError(err)

	first, err := keys.Activate(conv.ID, "bundle-v1", "alice")
	req.NoError(err)
	second, err := keys.Activate(conv.ID, "bundle-v2", "bob")
	req.NoError(err)
	req.NotEqual(first.ID, second.ID)

	active, err := keys.GetActive(conv.ID)
	req.NoError(err)
	req.Equal(second.ID, active.ID)
	req.Equal("bundle-v2", active.Bundle)
}

func Test_DeactivateAll(t *testing.T) {
	req := require.New(t)
	db := testDB(t)
	conversations := NewConversationRepository(db)
	keys := NewKeyBundleRepository(db)

	conv, err := conversations.CreateConversation("secure", []string{"alice", "bob"})
	req.NoError(err)
	_, err = keys.Activate(conv.ID, "bundle-v1", "alice")
	req.NoError(err)

	req.NoError(keys.DeactivateAll(conv.ID))

	_, err = keys.GetActive(conv.ID)
	req.ErrorIs(err, errors.ErrNotFound)

	updated, err := conversations.GetConversation(conv.ID)
	req.NoError(err)
	req.False(updated.IsEncrypted)

	// Disabling encryption twice stays a no-op.
	req.NoError(keys.DeactivateAll(conv.ID))
}

func Test_Activate_Unknown_Conversation(t *testing.T) {
	req := require.New(t)
	keys := NewKeyBundleRepository(testDB(t))

	_, err := keys.Activate("no-such-conversation", "bundle", "alice")
	req.ErrorIs(err, errors.ErrNotFound)
}
