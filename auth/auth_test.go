package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MySuperS3curePassw0rd!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("WrongPassword1!", hash)
	req.NoError(err)
	req.False(match)
}

func TestTokenRoundTrip(t *testing.T) {
	req := require.New(t)
	secret := []byte("test-secret")

	token, err := GenerateToken(secret, "user-42", time.Hour)
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := ParseToken(secret, token)
	req.NoError(err)
	req.Equal("user-42", claims.UserID)
	req.Equal("driftway", claims.Issuer)

	// A different secret must reject the token.
	_, err = ParseToken([]byte("other-secret"), token)
	req.Error(err)
}

func TestExpiredTokenRejected(t *testing.T) {
	req := require.New(t)
	secret := []byte("test-secret")

	token, err := GenerateToken(secret, "user-42", -time.Minute)
	req.NoError(err)

	_, err = ParseToken(secret, token)
	req.Error(err)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"test@example.com", "Alice", "ComplexPass123!"}, false},
		{"Invalid email", RegisterRequest{"notanemail", "Alice", "ComplexPass123!"}, true},
		{"Display name too short", RegisterRequest{"test@example.com", "A", "ComplexPass123!"}, true},
		{"Password too short", RegisterRequest{"test@example.com", "Alice", "Short1!"}, true},
		{"Missing digit", RegisterRequest{"test@example.com", "Alice", "NoDigitPassword!"}, true},
		{"Missing special char", RegisterRequest{"test@example.com", "Alice", "NoSpecialChar123"}, true},
		{"Missing uppercase", RegisterRequest{"test@example.com", "Alice", "nouppercase123!"}, true},
		{"Password too long (edge case)", RegisterRequest{"test@example.com", "Alice", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestActivateKeyValidation(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateActivateKey(ActivateKeyRequest{KeyBundle: "opaque"}))
	req.Error(ValidateActivateKey(ActivateKeyRequest{}))
}

func TestCreateConversationValidation(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateCreateConversation(CreateConversationRequest{
		Name:         "room",
		Participants: []string{"alice", "bob"},
	}))
	req.Error(ValidateCreateConversation(CreateConversationRequest{
		Name:         "room",
		Participants: []string{"alice"},
	}))
	req.Error(ValidateCreateConversation(CreateConversationRequest{
		Participants: []string{"alice", "bob"},
	}))
}
