package repositories

import (
	"log/slog"
	"testing"
	"time"

	"driftway/domain"
	"driftway/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func makeSession(credential string, expiresAt time.Time) domain.Session {
	return domain.Session{
		ID:            uuid.NewString(),
		UserID:        uuid.NewString(),
		Credential:    credential,
		OriginAddress: "10.0.0.7",
		ExpiresAt:     expiresAt,
	}
}

func Test_CreateSession_And_FindByCredential(t *testing.T) {
	req := require.New(t)
	repo := NewSessionRepository(testDB(t), slog.Default())

	session := makeSession("cred-abc", time.Now().Add(time.Hour))
	req.NoError(repo.CreateSession(session))

	found, err := repo.FindByCredential("cred-abc")
	req.NoError(err)
	req.Equal(session.ID, found.ID)
	req.Equal(session.UserID, found.UserID)
	req.Equal("10.0.0.7", found.OriginAddress)

	_, err = repo.FindByCredential("unknown-cred")
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_DeleteSession_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	repo := NewSessionRepository(testDB(t), slog.Default())

	session := makeSession("cred-to-delete", time.Now().Add(time.Hour))
	req.NoError(repo.CreateSession(session))

	req.NoError(repo.DeleteSession(session.ID))
	_, err := repo.FindByCredential("cred-to-delete")
	req.ErrorIs(err, errors.ErrNotFound)

	// Second delete is a no-op.
	req.NoError(repo.DeleteSession(session.ID))
}

func Test_DeleteExpired_Purges_Only_Expired(t *testing.T) {
	req := require.New(t)
	repo := NewSessionRepository(testDB(t), slog.Default())

	now := time.Now()
	expired1 := makeSession("cred-old-1", now.Add(-time.Hour))
	expired2 := makeSession("cred-old-2", now.Add(-time.Minute))
	alive := makeSession("cred-alive", now.Add(time.Hour))
	for _, s := range []domain.Session{expired1, expired2, alive} {
		req.NoError(repo.CreateSession(s))
	}

	removed, err := repo.DeleteExpired(now)
	req.NoError(err)
	req.Equal(2, removed)

	_, err = repo.FindByCredential("cred-old-1")
	req.ErrorIs(err, errors.ErrNotFound)
	_, err = repo.FindByCredential("cred-old-2")
	req.ErrorIs(err, errors.ErrNotFound)

	found, err := repo.FindByCredential("cred-alive")
	req.NoError(err)
	req.Equal(alive.ID, found.ID)
}
