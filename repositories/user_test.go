package repositories

import (
	"testing"

	"driftway/errors"

	"github.com/stretchr/testify/require"
)

func Test_CreateUser_And_Lookup(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(testDB(t))

	id, err := repo.CreateUser("alice@example.com", "Alice", "hashed-secret")
	req.NoError(err)
	req.NotEmpty(id)

	byEmail, err := repo.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(id, byEmail.ID)
	req.Equal("Alice", byEmail.DisplayName)
	req.Equal("hashed-secret", byEmail.PasswordHash)
	req.False(byEmail.IsOnline)

	byID, err := repo.GetUserByID(id)
	req.NoError(err)
	req.Equal(byEmail, byID)
}

func Test_CreateUser_Duplicate_Email(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(testDB(t))

	_, err := repo.CreateUser("bob@example.com", "Bob", "hash-1")
	req.NoError(err)

	_, err = repo.CreateUser("bob@example.com", "Bobby", "hash-2")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_GetUser_Not_Found(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(testDB(t))

	_, err := repo.GetUserByEmail("ghost@example.com")
	req.ErrorIs(err, errors.ErrNotFound)

	_, err = repo.GetUserByID("no-such-id")
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_SetOnlineStatus(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(testDB(t))

	id, err := repo.CreateUser("carol@example.com", "Carol", "hash")
	req.NoError(err)

	req.NoError(repo.SetOnlineStatus(id, true))
	user, err := repo.GetUserByID(id)
	req.NoError(err)
	req.True(user.IsOnline)

	req.NoError(repo.SetOnlineStatus(id, false))
	user, err = repo.GetUserByID(id)
	req.NoError(err)
	req.False(user.IsOnline)

	req.ErrorIs(repo.SetOnlineStatus("no-such-id", true), errors.ErrNotFound)
}
