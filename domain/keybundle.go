package domain

import "time"

// KeyBundle is a conversation's encryption key material as stored by the
// server: an opaque blob produced and consumed by clients. The server
// only rotates and returns it, never parses it. At most one bundle is
// active per conversation.
type KeyBundle struct {
	ID             string
	ConversationID string
	Bundle         string
	CreatedBy      string
	CreatedAt      time.Time
	IsActive       bool
}
