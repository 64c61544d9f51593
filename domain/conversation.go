package domain

import "time"

// Conversation groups a fixed set of participants. Membership is the
// source of truth for who may join the conversation's live room; it is
// checked on every join, never cached.
type Conversation struct {
	ID            string
	Name          string
	Participants  []string
	LastMessageID string
	IsEncrypted   bool
	CreatedAt     time.Time
}

// HasParticipant reports whether userID belongs to the conversation.
func (c Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
