//go:generate go run go.uber.org/mock/mockgen -source=key_service.go -destination=../mocks/mock_key_service.go -package=mocks
package services

import (
	"log/slog"

	"driftway/domain"
	"driftway/errors"
	"driftway/repositories"
)

type IKeyService interface {
	Activate(conversationID, bundle, actorID string) (domain.KeyBundle, error)
	GetActive(conversationID string) (domain.KeyBundle, error)
	Deactivate(conversationID string) error
}

// KeyService manages conversation key bundles. Bundles are opaque blobs:
// the service stores, rotates and returns them without ever looking
// inside. The atomicity of a rotation lives in the repository
// transaction; only the participant gate is enforced here.
type KeyService struct {
	keys          repositories.IKeyBundleRepository
	conversations repositories.IConversationRepository
	log           *slog.Logger
}

func NewKeyService(
	keys repositories.IKeyBundleRepository,
	conversations repositories.IConversationRepository,
	log *slog.Logger,
) *KeyService {
	return &KeyService{keys: keys, conversations: conversations, log: log}
}

func (s *KeyService) Activate(conversationID, bundle, actorID string) (domain.KeyBundle, error) {
	ok, err := s.conversations.IsParticipant(conversationID, actorID)
	if err != nil {
		return domain.KeyBundle{}, err
	}
	if !ok {
		return domain.KeyBundle{}, errors.ErrNotAParticipant
	}

	created, err := s.keys.Activate(conversationID, bundle, actorID)
	if err != nil {
		return domain.KeyBundle{}, err
	}
	s.log.Info("Key bundle rotated", "conversation_id", conversationID, "key_id", created.ID)
	return created, nil
}

func (s *KeyService) GetActive(conversationID string) (domain.KeyBundle, error) {
	return s.keys.GetActive(conversationID)
}

func (s *KeyService) Deactivate(conversationID string) error {
	if err := s.keys.DeactivateAll(conversationID); err != nil {
		return err
	}
	s.log.Info("Encryption disabled", "conversation_id", conversationID)
	return nil
}
