//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"

	"driftway/contract"
	"driftway/domain"
	"driftway/repositories"
	"driftway/runtime"

	"github.com/google/uuid"
)

type IChatService interface {
	Authenticate(ctx context.Context, connID uuid.UUID, sessionIdentity domain.Identity, cmd domain.AuthenticateCommand, sink contract.EventSink) error
	Disconnect(ctx context.Context, connID uuid.UUID)
	Join(ctx context.Context, connID uuid.UUID, conversationID string) error
	Leave(ctx context.Context, connID uuid.UUID, conversationID string) error
	TypingStart(ctx context.Context, connID uuid.UUID, conversationID string) error
	TypingStop(ctx context.Context, connID uuid.UUID, conversationID string) error
	Send(ctx context.Context, connID uuid.UUID, cmd domain.SendMessageCommand) (domain.MessageEnvelope, error)
	MarkRead(ctx context.Context, connID uuid.UUID, conversationID, messageID string) error
	GetMessages(conversationID string, cursor *string) ([]domain.MessageEnvelope, *string, error)
	SearchMessages(ctx context.Context, query, conversationID string, page int) ([]repositories.SearchHit, uint64, error)
}

// ChatService is the thin facade the transport and REST layers talk to;
// the live-state rules live in the coordinator.
type ChatService struct {
	coordinator *runtime.Coordinator
	messages    repositories.IMessageRepository
	search      repositories.ISearchIndex
}

func NewChatService(coordinator *runtime.Coordinator, messages repositories.IMessageRepository, search repositories.ISearchIndex) *ChatService {
	return &ChatService{coordinator: coordinator, messages: messages, search: search}
}

func (s *ChatService) Authenticate(ctx context.Context, connID uuid.UUID, sessionIdentity domain.Identity, cmd domain.AuthenticateCommand, sink contract.EventSink) error {
	return s.coordinator.Authenticate(ctx, connID, sessionIdentity, cmd, sink)
}

func (s *ChatService) Disconnect(ctx context.Context, connID uuid.UUID) {
	s.coordinator.Disconnect(ctx, connID)
}

func (s *ChatService) Join(ctx context.Context, connID uuid.UUID, conversationID string) error {
	return s.coordinator.Join(ctx, connID, conversationID)
}

func (s *ChatService) Leave(ctx context.Context, connID uuid.UUID, conversationID string) error {
	return s.coordinator.Leave(ctx, connID, conversationID)
}

func (s *ChatService) TypingStart(ctx context.Context, connID uuid.UUID, conversationID string) error {
	return s.coordinator.TypingStart(ctx, connID, conversationID)
}

func (s *ChatService) TypingStop(ctx context.Context, connID uuid.UUID, conversationID string) error {
	return s.coordinator.TypingStop(ctx, connID, conversationID)
}

func (s *ChatService) Send(ctx context.Context, connID uuid.UUID, cmd domain.SendMessageCommand) (domain.MessageEnvelope, error) {
	return s.coordinator.Send(ctx, connID, cmd)
}

func (s *ChatService) MarkRead(ctx context.Context, connID uuid.UUID, conversationID, messageID string) error {
	return s.coordinator.MarkRead(ctx, connID, conversationID, messageID)
}

func (s *ChatService) GetMessages(conversationID string, cursor *string) ([]domain.MessageEnvelope, *string, error) {
	return s.messages.GetMessages(conversationID, cursor)
}

// SearchMessages runs a full-text query over the plaintext history of
// a single conversation. Pending index writes are flushed first so a
// just-sent message is already findable.
func (s *ChatService) SearchMessages(ctx context.Context, query, conversationID string, page int) ([]repositories.SearchHit, uint64, error) {
	if err := s.search.Flush(); err != nil {
		return nil, 0, err
	}
	return s.search.Search(ctx, query, conversationID, page)
}
