//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"time"

	"driftway/domain"
	"driftway/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type IConversationRepository interface {
	CreateConversation(name string, participants []string) (domain.Conversation, error)
	GetConversation(id string) (domain.Conversation, error)
	IsParticipant(conversationID, userID string) (bool, error)
	UpdateLastMessage(conversationID, messageID string) error
}

type ConversationRepository struct {
	db *badger.DB
}

func NewConversationRepository(db *badger.DB) ConversationRepository {
	return ConversationRepository{db: db}
}

type conversationRecord struct {
	ID            string   `cbor:"1,keyasint"`
	Name          string   `cbor:"2,keyasint"`
	Participants  []string `cbor:"3,keyasint"`
	LastMessageID string   `cbor:"4,keyasint"`
	IsEncrypted   bool     `cbor:"5,keyasint"`
	CreatedAt     int64    `cbor:"6,keyasint"`
}

func conversationKey(id string) []byte { return []byte("conv:" + id) }

func (c ConversationRepository) CreateConversation(name string, participants []string) (domain.Conversation, error) {
	rec := conversationRecord{
		ID:           uuid.NewString(),
		Name:         name,
		Participants: participants,
		CreatedAt:    time.Now().Unix(),
	}
	data, err := cbor.Marshal(rec)
	if err != nil {
		return domain.Conversation{}, err
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(conversationKey(rec.ID), data)
	})
	if err != nil {
		return domain.Conversation{}, err
	}
	return toConversation(rec), nil
}

func (c ConversationRepository) GetConversation(id string) (domain.Conversation, error) {
	var rec conversationRecord
	err := c.db.View(func(txn *badger.Txn) error {
		return readConversation(txn, id, &rec)
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Conversation{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.Conversation{}, err
	}
	return toConversation(rec), nil
}

// IsParticipant re-reads the participant list on every call; membership
// is never cached because it can change between two joins.
func (c ConversationRepository) IsParticipant(conversationID, userID string) (bool, error) {
	conv, err := c.GetConversation(conversationID)
	if err != nil {
		return false, err
	}
	return conv.HasParticipant(userID), nil
}

func (c ConversationRepository) UpdateLastMessage(conversationID, messageID string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		var rec conversationRecord
		if err := readConversation(txn, conversationID, &rec); err != nil {
			return err
		}
		rec.LastMessageID = messageID
		return writeConversation(txn, rec)
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrNotFound
	}
	return err
}

// readConversation and writeConversation are shared with the key bundle
// repository, whose rotation transaction must update the encrypted flag
// and the bundle records atomically.
func readConversation(txn *badger.Txn, id string, rec *conversationRecord) error {
	item, err := txn.Get(conversationKey(id))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, rec)
	})
}

func writeConversation(txn *badger.Txn, rec conversationRecord) error {
	data, err := cbor.Marshal(rec)
	if err != nil {
		return err
	}
	return txn.Set(conversationKey(rec.ID), data)
}

func toConversation(rec conversationRecord) domain.Conversation {
	return domain.Conversation{
		ID:            rec.ID,
		Name:          rec.Name,
		Participants:  rec.Participants,
		LastMessageID: rec.LastMessageID,
		IsEncrypted:   rec.IsEncrypted,
		CreatedAt:     time.Unix(rec.CreatedAt, 0).UTC(),
	}
}
