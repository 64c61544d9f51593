// Package event defines the closed set of outbound notifications the
// coordinator can push to a connection. Each variant maps to one frame
// type on the wire; the set being sealed documents the full protocol
// surface in one place.
package event

import (
	"time"

	"driftway/domain"
)

type DomainEvent interface {
	isDomainEvent()
}

// Authenticated acknowledges a successful authenticate command. Sent
// only to the connection that authenticated.
type Authenticated struct {
	Success bool
}

// MessageReceived carries a persisted envelope to every connection in
// the conversation's room, sender devices included.
type MessageReceived struct {
	Envelope   domain.MessageEnvelope
	SenderName string
}

type ParticipantJoined struct {
	UserID         string
	DisplayName    string
	ConversationID string
}

type ParticipantLeft struct {
	UserID         string
	DisplayName    string
	ConversationID string
}

type Typing struct {
	UserID         string
	DisplayName    string
	ConversationID string
}

type StoppedTyping struct {
	UserID         string
	DisplayName    string
	ConversationID string
}

type MessageRead struct {
	ConversationID string
	MessageID      string
	UserID         string
	ReadAt         time.Time
}

type PresenceOnline struct {
	UserID      string
	DisplayName string
}

type PresenceOffline struct {
	UserID      string
	DisplayName string
}

// Error reports a failed command to the offending connection only.
// Code is one of the wire codes from the errors package.
type Error struct {
	Message string
	Code    string
}

func (Authenticated) isDomainEvent()     {}
func (MessageReceived) isDomainEvent()   {}
func (ParticipantJoined) isDomainEvent() {}
func (ParticipantLeft) isDomainEvent()   {}
func (Typing) isDomainEvent()            {}
func (StoppedTyping) isDomainEvent()     {}
func (MessageRead) isDomainEvent()       {}
func (PresenceOnline) isDomainEvent()    {}
func (PresenceOffline) isDomainEvent()   {}
func (Error) isDomainEvent()             {}
