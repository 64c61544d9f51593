package server

import (
	"encoding/json"
	"fmt"
	"time"

	"driftway/domain"
	"driftway/domain/event"
)

// Frame is the wire unit in both directions: a type tag plus a
// type-specific JSON payload.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	frameAuthenticate      = "authenticate"
	frameJoinConversation  = "join_conversation"
	frameLeaveConversation = "leave_conversation"
	frameSendMessage       = "send_message"
	frameTypingStart       = "typing_start"
	frameTypingStop        = "typing_stop"
	frameMarkAsRead        = "mark_as_read"

	frameAuthenticated     = "authenticated"
	frameMessageReceived   = "message_received"
	frameParticipantJoined = "participant_joined"
	frameParticipantLeft   = "participant_left"
	frameTyping            = "typing"
	frameStoppedTyping     = "stopped_typing"
	frameMessageRead       = "message_read"
	framePresenceOnline    = "presence_online"
	framePresenceOffline   = "presence_offline"
	frameError             = "error"
)

type authenticatePayload struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type conversationPayload struct {
	ConversationID string `json:"conversation_id"`
}

type sendMessagePayload struct {
	ConversationID   string `json:"conversation_id"`
	Content          string `json:"content,omitempty"`
	MessageType      string `json:"message_type,omitempty"`
	EncryptedContent string `json:"encrypted_content,omitempty"`
	EncryptionIV     string `json:"encryption_iv,omitempty"`
}

type markAsReadPayload struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
}

// DecodeCommand parses one inbound frame into its command. Unknown
// frame types and malformed payloads are errors; the caller answers
// them with an error frame rather than dropping the connection.
func DecodeCommand(raw []byte) (domain.Command, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch frame.Type {
	case frameAuthenticate:
		var p authenticatePayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", frame.Type, err)
		}
		return domain.AuthenticateCommand{UserID: p.UserID, DisplayName: p.DisplayName}, nil

	case frameJoinConversation, frameLeaveConversation, frameTypingStart, frameTypingStop:
		var p conversationPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", frame.Type, err)
		}
		if p.ConversationID == "" {
			return nil, fmt.Errorf("%s frame missing conversation_id", frame.Type)
		}
		switch frame.Type {
		case frameJoinConversation:
			return domain.JoinConversationCommand{ConversationID: p.ConversationID}, nil
		case frameLeaveConversation:
			return domain.LeaveConversationCommand{ConversationID: p.ConversationID}, nil
		case frameTypingStart:
			return domain.TypingStartCommand{ConversationID: p.ConversationID}, nil
		default:
			return domain.TypingStopCommand{ConversationID: p.ConversationID}, nil
		}

	case frameSendMessage:
		var p sendMessagePayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", frame.Type, err)
		}
		if p.ConversationID == "" {
			return nil, fmt.Errorf("%s frame missing conversation_id", frame.Type)
		}
		messageType := domain.MessageType(p.MessageType)
		if messageType == "" {
			messageType = domain.MessageTypeText
		}
		return domain.SendMessageCommand{
			ConversationID:   p.ConversationID,
			Content:          p.Content,
			MessageType:      messageType,
			EncryptedContent: p.EncryptedContent,
			EncryptionIV:     p.EncryptionIV,
		}, nil

	case frameMarkAsRead:
		var p markAsReadPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return nil, fmt.Errorf("malformed %s payload: %w", frame.Type, err)
		}
		if p.ConversationID == "" || p.MessageID == "" {
			return nil, fmt.Errorf("%s frame missing identifiers", frame.Type)
		}
		return domain.MarkAsReadCommand{ConversationID: p.ConversationID, MessageID: p.MessageID}, nil

	default:
		return nil, fmt.Errorf("unknown frame type %q", frame.Type)
	}
}

type envelopePayload struct {
	ID             string   `json:"id"`
	ConversationID string   `json:"conversation_id"`
	SenderID       string   `json:"sender_id"`
	SenderName     string   `json:"sender_name,omitempty"`
	Content        string   `json:"content"`
	EncryptionIV   string   `json:"encryption_iv,omitempty"`
	IsEncrypted    bool     `json:"is_encrypted"`
	MessageType    string   `json:"message_type"`
	ReadBy         []string `json:"read_by"`
	CreatedAt      string   `json:"created_at"`
}

type participantPayload struct {
	UserID         string `json:"user_id"`
	DisplayName    string `json:"display_name"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type messageReadPayload struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	UserID         string `json:"user_id"`
	ReadAt         string `json:"read_at"`
}

type authenticatedPayload struct {
	Success bool `json:"success"`
}

type errorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func envelopeToWire(e domain.MessageEnvelope, senderName string) envelopePayload {
	readBy := e.ReadBy
	if readBy == nil {
		readBy = []string{}
	}
	return envelopePayload{
		ID:             e.ID.String(),
		ConversationID: e.ConversationID,
		SenderID:       e.SenderID,
		SenderName:     senderName,
		Content:        e.Content,
		EncryptionIV:   e.EncryptionIV,
		IsEncrypted:    e.IsEncrypted,
		MessageType:    string(e.MessageType),
		ReadBy:         readBy,
		CreatedAt:      e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// EncodeEvent renders one outbound event as a wire frame.
func EncodeEvent(e event.DomainEvent) ([]byte, error) {
	var (
		frameType string
		payload   any
	)

	switch ev := e.(type) {
	case event.Authenticated:
		frameType = frameAuthenticated
		payload = authenticatedPayload{Success: ev.Success}
	case event.MessageReceived:
		frameType = frameMessageReceived
		payload = envelopeToWire(ev.Envelope, ev.SenderName)
	case event.ParticipantJoined:
		frameType = frameParticipantJoined
		payload = participantPayload{UserID: ev.UserID, DisplayName: ev.DisplayName, ConversationID: ev.ConversationID}
	case event.ParticipantLeft:
		frameType = frameParticipantLeft
		payload = participantPayload{UserID: ev.UserID, DisplayName: ev.DisplayName, ConversationID: ev.ConversationID}
	case event.Typing:
		frameType = frameTyping
		payload = participantPayload{UserID: ev.UserID, DisplayName: ev.DisplayName, ConversationID: ev.ConversationID}
	case event.StoppedTyping:
		frameType = frameStoppedTyping
		payload = participantPayload{UserID: ev.UserID, DisplayName: ev.DisplayName, ConversationID: ev.ConversationID}
	case event.MessageRead:
		frameType = frameMessageRead
		payload = messageReadPayload{
			ConversationID: ev.ConversationID,
			MessageID:      ev.MessageID,
			UserID:         ev.UserID,
			ReadAt:         ev.ReadAt.UTC().Format(time.RFC3339Nano),
		}
	case event.PresenceOnline:
		frameType = framePresenceOnline
		payload = participantPayload{UserID: ev.UserID, DisplayName: ev.DisplayName}
	case event.PresenceOffline:
		frameType = framePresenceOffline
		payload = participantPayload{UserID: ev.UserID, DisplayName: ev.DisplayName}
	case event.Error:
		frameType = frameError
		payload = errorPayload{Message: ev.Message, Code: ev.Code}
	default:
		return nil, fmt.Errorf("unmapped event %T", e)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Type: frameType, Payload: raw})
}
