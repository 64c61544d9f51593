package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
)

// MessageEnvelope is the unit fanned out to a conversation's room.
// When IsEncrypted is true, Content holds ciphertext and EncryptionIV
// must be non-empty; otherwise Content holds plaintext and EncryptionIV
// is empty. Either way Content is opaque to the server.
type MessageEnvelope struct {
	ID             uuid.UUID
	ConversationID string
	SenderID       string
	Content        string
	EncryptionIV   string
	IsEncrypted    bool
	MessageType    MessageType
	ReadBy         []string
	CreatedAt      time.Time
}

// EnvelopeInput is what a client submits; ID, ReadBy and CreatedAt are
// assigned at persistence time.
type EnvelopeInput struct {
	ConversationID string
	Content        string
	EncryptionIV   string
	IsEncrypted    bool
	MessageType    MessageType
}
