//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"driftway/auth"
	"driftway/domain"
	"driftway/errors"
	"driftway/repositories"

	"github.com/google/uuid"
)

type IAuthService interface {
	Register(email, displayName, password string) (string, error)
	Login(email, password, origin string) (string, error)
	Logout(credential string) error
	ValidateSession(credential, origin string) (domain.Identity, error)
	SweepExpiredSessions() (int, error)
}

// AuthService owns the session lifecycle: issuing credentials at login,
// validating them against the stored session (expiry and origin
// pinning), and purging what has expired.
type AuthService struct {
	users    repositories.IUserRepository
	sessions repositories.ISessionRepository
	secret   []byte
	ttl      time.Duration
	log      *slog.Logger
}

func NewAuthService(
	users repositories.IUserRepository,
	sessions repositories.ISessionRepository,
	secret []byte,
	ttl time.Duration,
	log *slog.Logger,
) *AuthService {
	return &AuthService{users: users, sessions: sessions, secret: secret, ttl: ttl, log: log}
}

func (s *AuthService) Register(email, displayName, password string) (string, error) {
	valReq := auth.RegisterRequest{Email: email, DisplayName: displayName, Password: password}

	// Validate before any expensive cryptographic operation.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	userID, err := s.users.CreateUser(email, displayName, hashedPassword)
	if err != nil {
		return "", err // propagates ErrUserAlreadyExists when the email is taken
	}
	return userID, nil
}

// Login verifies the password and creates a session pinned to the
// presented network origin. The returned credential is only valid from
// that origin until it expires or is logged out.
func (s *AuthService) Login(email, password, origin string) (string, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration.
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	credential, err := auth.GenerateToken(s.secret, user.ID, s.ttl)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}

	session := domain.Session{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		Credential:    credential,
		OriginAddress: origin,
		ExpiresAt:     time.Now().Add(s.ttl),
	}
	if err := s.sessions.CreateSession(session); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}

	s.log.Info("Session created", "user_id", user.ID, "origin", origin)
	return credential, nil
}

func (s *AuthService) Logout(credential string) error {
	session, err := s.sessions.FindByCredential(credential)
	if stderrors.Is(err, errors.ErrNotFound) {
		return nil // already gone, logout is idempotent
	}
	if err != nil {
		return err
	}
	return s.sessions.DeleteSession(session.ID)
}

// ValidateSession is a pure check with one side effect: a session found
// expired is deleted in-line instead of waiting for the next sweep.
func (s *AuthService) ValidateSession(credential, origin string) (domain.Identity, error) {
	if credential == "" {
		return domain.Identity{}, errors.ErrUnauthenticated
	}

	session, err := s.sessions.FindByCredential(credential)
	if stderrors.Is(err, errors.ErrNotFound) {
		s.log.Warn("Session not found for presented credential")
		return domain.Identity{}, errors.ErrUnauthenticated
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}

	if session.OriginAddress != origin {
		s.log.Warn("Origin mismatch for session",
			"session_id", session.ID,
			"expected", session.OriginAddress,
			"got", origin)
		return domain.Identity{}, errors.ErrUnauthenticated
	}

	if session.Expired(time.Now()) {
		if err := s.sessions.DeleteSession(session.ID); err != nil {
			s.log.Error("Failed to purge expired session", "session_id", session.ID, "error", err)
		}
		return domain.Identity{}, errors.ErrUnauthenticated
	}

	user, err := s.users.GetUserByID(session.UserID)
	if err != nil {
		return domain.Identity{}, errors.ErrUnauthenticated
	}
	return domain.Identity{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// SweepExpiredSessions purges every expired session record. Run once at
// startup and then periodically by the sweeper worker.
func (s *AuthService) SweepExpiredSessions() (int, error) {
	return s.sessions.DeleteExpired(time.Now())
}
