//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"driftway/domain"
	"driftway/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	StoreMessage(input domain.EnvelopeInput, senderID string) (domain.MessageEnvelope, error)
	GetMessages(conversationID string, cursor *string) ([]domain.MessageEnvelope, *string, error)
	MarkAsRead(messageID, userID string) (domain.MessageEnvelope, error)
}

type MessageRepository struct {
	db            *badger.DB
	index         ISearchIndex
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, index ISearchIndex, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, index: index, log: log, limitMessages: limitMessages}
}

type messageRecord struct {
	ID             string   `cbor:"1,keyasint"`
	ConversationID string   `cbor:"2,keyasint"`
	SenderID       string   `cbor:"3,keyasint"`
	Content        string   `cbor:"4,keyasint"`
	EncryptionIV   string   `cbor:"5,keyasint"`
	IsEncrypted    bool     `cbor:"6,keyasint"`
	MessageType    string   `cbor:"7,keyasint"`
	ReadBy         []string `cbor:"8,keyasint"`
	At             int64    `cbor:"9,keyasint"`
}

// messageKey is "msg:{conversation}:{timestamp_padded}:{uuid}":
//  1. The 19-digit zero padding makes lexicographic order chronological.
//  2. The UUID disambiguates two messages landing on the same nanosecond.
//
// A secondary "msgid:{uuid}" index points at the full key so read
// receipts can find a message by id alone.
func messageKey(conversationID string, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", conversationID, at.UnixNano(), id))
}

func messageIDKey(id string) []byte { return []byte("msgid:" + id) }

func messagePrefix(conversationID string) []byte {
	return []byte(fmt.Sprintf("msg:%s:", conversationID))
}

// StoreMessage assigns the envelope id and server timestamp, seeds the
// read state with the sender, and persists both the record and its id
// index in one transaction.
func (m MessageRepository) StoreMessage(input domain.EnvelopeInput, senderID string) (domain.MessageEnvelope, error) {
	rec := messageRecord{
		ID:             uuid.NewString(),
		ConversationID: input.ConversationID,
		SenderID:       senderID,
		Content:        input.Content,
		EncryptionIV:   input.EncryptionIV,
		IsEncrypted:    input.IsEncrypted,
		MessageType:    string(input.MessageType),
		ReadBy:         []string{senderID},
		At:             time.Now().UTC().UnixNano(),
	}
	data, err := cbor.Marshal(rec)
	if err != nil {
		return domain.MessageEnvelope{}, err
	}
	key := messageKey(input.ConversationID, time.Unix(0, rec.At), uuid.MustParse(rec.ID))
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(messageIDKey(rec.ID), key); err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return domain.MessageEnvelope{}, err
	}
	envelope, err := toEnvelope(rec)
	if err != nil {
		return domain.MessageEnvelope{}, err
	}
	// The full-text index is best effort: a failed index write must
	// not fail the persist the sender already waited on.
	if err := m.index.Index(envelope); err != nil {
		m.log.Warn("indexing message", slog.String("message_id", envelope.ID.String()), slog.String("error", err.Error()))
	}
	return envelope, nil
}

// GetMessages pages backwards through a conversation using a reverse
// prefix scan; the padded timestamp in the key keeps results sorted by
// time without a separate index. The returned cursor resumes the scan;
// a page shorter than the limit is the end of history and carries none.
func (m MessageRepository) GetMessages(conversationID string, cursor *string) ([]domain.MessageEnvelope, *string, error) {
	var records []messageRecord
	var lastKey string
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := messagePrefix(conversationID)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past every possible timestamp, then walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(records) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefix):])
			var rec messageRecord
			if err := item.Value(func(val []byte) error {
				return cbor.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	envelopes := make([]domain.MessageEnvelope, 0, len(records))
	for _, rec := range records {
		envelope, err := toEnvelope(rec)
		if err != nil {
			return nil, nil, err
		}
		envelopes = append(envelopes, envelope)
	}
	if m.limitMessages == nil || len(envelopes) < *m.limitMessages {
		return envelopes, nil, nil
	}
	return envelopes, &lastKey, nil
}

// MarkAsRead adds the reader to the message's read set. Re-reading an
// already read message is a no-op that still returns the envelope.
func (m MessageRepository) MarkAsRead(messageID, userID string) (domain.MessageEnvelope, error) {
	var rec messageRecord
	err := m.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(messageIDKey(messageID))
		if err != nil {
			return err
		}
		var key []byte
		if err := item.Value(func(val []byte) error {
			key = append([]byte(nil), val...)
			return nil
		}); err != nil {
			return err
		}
		item, err = txn.Get(key)
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &rec)
		}); err != nil {
			return err
		}
		if lo.Contains(rec.ReadBy, userID) {
			return nil
		}
		rec.ReadBy = append(rec.ReadBy, userID)
		data, err := cbor.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.MessageEnvelope{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.MessageEnvelope{}, err
	}
	return toEnvelope(rec)
}

func toEnvelope(rec messageRecord) (domain.MessageEnvelope, error) {
	parsedID, err := uuid.Parse(rec.ID)
	if err != nil {
		return domain.MessageEnvelope{}, err
	}
	return domain.MessageEnvelope{
		ID:             parsedID,
		ConversationID: rec.ConversationID,
		SenderID:       rec.SenderID,
		Content:        rec.Content,
		EncryptionIV:   rec.EncryptionIV,
		IsEncrypted:    rec.IsEncrypted,
		MessageType:    domain.MessageType(rec.MessageType),
		ReadBy:         rec.ReadBy,
		CreatedAt:      time.Unix(0, rec.At).UTC(),
	}, nil
}
