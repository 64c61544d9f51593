package services

import (
	"log/slog"
	"testing"
	"time"

	"driftway/auth"
	"driftway/domain"
	"driftway/errors"
	"driftway/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testOrigin = "10.0.0.7"

var testSecret = []byte("test-secret")

func newAuthService(users *mocks.MockIUserRepository, sessions *mocks.MockISessionRepository) *AuthService {
	return NewAuthService(users, sessions, testSecret, time.Hour, slog.Default())
}

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mocks.NewMockIUserRepository(ctrl)
	sessions := mocks.NewMockISessionRepository(ctrl)
	svc := newAuthService(users, sessions)

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		email := "test@example.com"
		password := "ComplexPass123!"

		// Expect CreateUser to be called with a hashed password (not the plain one)
		users.EXPECT().
			CreateUser(email, "Tester", gomock.Not(password)).
			Return("user-uuid", nil).
			Times(1)

		userID, err := svc.Register(email, "Tester", password)

		req.NoError(err)
		req.Equal("user-uuid", userID)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)

		// Repository should NEVER be called
		users.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		userID, err := svc.Register("test@example.com", "Tester", "simple")

		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.Empty(userID)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)

		users.EXPECT().
			CreateUser("duplicate@example.com", "Tester", gomock.Any()).
			Return("", errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register("duplicate@example.com", "Tester", "ComplexPass123!")

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mocks.NewMockIUserRepository(ctrl)
	sessions := mocks.NewMockISessionRepository(ctrl)
	svc := newAuthService(users, sessions)

	password := "ComplexPass123!"
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	storedUser := domain.User{ID: "user-1", Email: "user@example.com", DisplayName: "User", PasswordHash: hash}

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)

		users.EXPECT().GetUserByEmail("user@example.com").Return(storedUser, nil)
		sessions.EXPECT().
			CreateSession(gomock.Any()).
			DoAndReturn(func(s domain.Session) error {
				req.Equal("user-1", s.UserID)
				req.Equal(testOrigin, s.OriginAddress)
				req.NotEmpty(s.Credential)
				return nil
			})

		credential, err := svc.Login("user@example.com", password, testOrigin)
		req.NoError(err)

		claims, err := auth.ParseToken(testSecret, credential)
		req.NoError(err)
		req.Equal("user-1", claims.UserID)
	})

	t.Run("should fail with wrong password", func(t *testing.T) {
		req := require.New(t)

		users.EXPECT().GetUserByEmail("user@example.com").Return(storedUser, nil)
		sessions.EXPECT().CreateSession(gomock.Any()).Times(0)

		_, err := svc.Login("user@example.com", "WrongPassword1!", testOrigin)
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should fail with unknown email without leaking existence", func(t *testing.T) {
		req := require.New(t)

		users.EXPECT().GetUserByEmail("ghost@example.com").Return(domain.User{}, errors.ErrNotFound)

		_, err := svc.Login("ghost@example.com", password, testOrigin)
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mocks.NewMockIUserRepository(ctrl)
	sessions := mocks.NewMockISessionRepository(ctrl)
	svc := newAuthService(users, sessions)

	t.Run("should delete the session behind the credential", func(t *testing.T) {
		req := require.New(t)

		sessions.EXPECT().
			FindByCredential("cred").
			Return(domain.Session{ID: "session-1"}, nil)
		sessions.EXPECT().DeleteSession("session-1").Return(nil)

		req.NoError(svc.Logout("cred"))
	})

	t.Run("should be a no-op when the session is already gone", func(t *testing.T) {
		req := require.New(t)

		sessions.EXPECT().
			FindByCredential("stale-cred").
			Return(domain.Session{}, errors.ErrNotFound)
		sessions.EXPECT().DeleteSession(gomock.Any()).Times(0)

		req.NoError(svc.Logout("stale-cred"))
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mocks.NewMockIUserRepository(ctrl)
	sessions := mocks.NewMockISessionRepository(ctrl)
	svc := newAuthService(users, sessions)

	validSession := domain.Session{
		ID:            "session-1",
		UserID:        "user-1",
		Credential:    "cred",
		OriginAddress: testOrigin,
		ExpiresAt:     time.Now().Add(time.Hour),
	}

	t.Run("should resolve identity for a valid credential and origin", func(t *testing.T) {
		req := require.New(t)

		sessions.EXPECT().FindByCredential("cred").Return(validSession, nil)
		users.EXPECT().
			GetUserByID("user-1").
			Return(domain.User{ID: "user-1", DisplayName: "Alice"}, nil)

		identity, err := svc.ValidateSession("cred", testOrigin)
		req.NoError(err)
		req.Equal(domain.Identity{ID: "user-1", DisplayName: "Alice"}, identity)
	})

	t.Run("should reject when credential is empty", func(t *testing.T) {
		req := require.New(t)

		sessions.EXPECT().FindByCredential(gomock.Any()).Times(0)

		_, err := svc.ValidateSession("", testOrigin)
		req.ErrorIs(err, errors.ErrUnauthenticated)
	})

	t.Run("should reject unknown credentials", func(t *testing.T) {
		req := require.New(t)

		sessions.EXPECT().
			FindByCredential("nope").
			Return(domain.Session{}, errors.ErrNotFound)

		_, err := svc.ValidateSession("nope", testOrigin)
		req.ErrorIs(err, errors.ErrUnauthenticated)
	})

	t.Run("should reject a credential presented from a different origin", func(t *testing.T) {
		req := require.New(t)

		sessions.EXPECT().FindByCredential("cred").Return(validSession, nil)

		_, err := svc.ValidateSession("cred", "192.168.1.66")
		req.ErrorIs(err, errors.ErrUnauthenticated)
	})

	t.Run("should purge an expired session on sight", func(t *testing.T) {
		req := require.New(t)

		expired := validSession
		expired.ExpiresAt = time.Now().Add(-time.Minute)
		sessions.EXPECT().FindByCredential("cred").Return(expired, nil)
		sessions.EXPECT().DeleteSession("session-1").Return(nil)

		_, err := svc.ValidateSession("cred", testOrigin)
		req.ErrorIs(err, errors.ErrUnauthenticated)
	})
}

func TestAuthService_SweepExpiredSessions(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := mocks.NewMockIUserRepository(ctrl)
	sessions := mocks.NewMockISessionRepository(ctrl)
	svc := newAuthService(users, sessions)

	sessions.EXPECT().DeleteExpired(gomock.Any()).Return(3, nil)

	removed, err := svc.SweepExpiredSessions()
	req.NoError(err)
	req.Equal(3, removed)
}
