//go:generate go run go.uber.org/mock/mockgen -source=keybundle.go -destination=../mocks/mock_keybundle_repository.go -package=mocks
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

type IKeyBundleRepository interface {
	Activate(conversationID, bundle, createdBy string) (domain.KeyBundle, error)
	GetActive(conversationID string) (domain.KeyBundle, error)
	DeactivateAll(conversationID string) error
}

type KeyBundleRepository struct {
	db *badger.DB
}

func NewKeyBundleRepository(db *badger.DB) KeyBundleRepository {
	return KeyBundleRepository{db: db}
}

type keyBundleRecord struct {
	ID             string `cbor:"1,keyasint"`
	ConversationID string `cbor:"2,keyasint"`
	Bundle         string `cbor:"3,keyasint"`
	CreatedBy      string `cbor:"4,keyasint"`
	CreatedAt      int64  `cbor:"5,keyasint"`
	IsActive       bool   `cbor:"6,keyasint"`
}

func keyBundleKey(conversationID, id string) []byte {
	return []byte("convkey:" + conversationID + ":" + id)
}

func keyBundlePrefix(conversationID string) []byte {
	return []byte("convkey:" + conversationID + ":")
}

// Activate rotates the conversation's key material: every existing
// bundle is deactivated, the new bundle is inserted active, and the
// conversation is flagged encrypted. All three writes share one badger
// transaction, so a rotation can never be observed with two active
// bundles, or with the flag set and no active bundle.
func (k KeyBundleRepository) Activate(conversationID, bundle, createdBy string) (domain.KeyBundle, error) {
	rec := keyBundleRecord{
		ID:             "key-" + uuid.NewString(),
		ConversationID: conversationID,
		Bundle:         bundle,
		CreatedBy:      createdBy,
		CreatedAt:      time.Now().Unix(),
		IsActive:       true,
	}
	err := k.db.Update(func(txn *badger.Txn) error {
		var conv conversationRecord
		if err := readConversation(txn, conversationID, &conv); err != nil {
			return err
		}
		if err := k.deactivateInTxn(txn, conversationID); err != nil {
			return err
		}
		data, err := cbor.Marshal(rec)
		if err != nil {
			return err
		}
		if err := txn.Set(keyBundleKey(conversationID, rec.ID), data); err != nil {
			return err
		}
		conv.IsEncrypted = true
		return writeConversation(txn, conv)
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.KeyBundle{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.KeyBundle{}, err
	}
	return toKeyBundle(rec), nil
}

func (k KeyBundleRepository) GetActive(conversationID string) (domain.KeyBundle, error) {
	var found *keyBundleRecord
	err := k.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := keyBundlePrefix(conversationID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec keyBundleRecord
			if err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			if rec.IsActive {
				found = &rec
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return domain.KeyBundle{}, err
	}
	if found == nil {
		return domain.KeyBundle{}, errors.ErrNotFound
	}
	return toKeyBundle(*found), nil
}

// DeactivateAll turns encryption off for the conversation: all bundles
// are deactivated and the encrypted flag cleared, in one transaction.
// Idempotent; a conversation with no bundles is left untouched.
func (k KeyBundleRepository) DeactivateAll(conversationID string) error {
	err := k.db.Update(func(txn *badger.Txn) error {
		var conv conversationRecord
		if err := readConversation(txn, conversationID, &conv); err != nil {
			return err
		}
		if err := k.deactivateInTxn(txn, conversationID); err != nil {
			return err
		}
		conv.IsEncrypted = false
		return writeConversation(txn, conv)
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrNotFound
	}
	return err
}

func (k KeyBundleRepository) deactivateInTxn(txn *badger.Txn, conversationID string) error {
	type update struct {
		key  []byte
		data []byte
	}
	var updates []update
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	prefix := keyBundlePrefix(conversationID)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var rec keyBundleRecord
		if err := it.Item().Value(func(val []byte) error {
			return cbor.Unmarshal(val, &rec)
		}); err != nil {
			return err
		}
		if !rec.IsActive {
			continue
		}
		rec.IsActive = false
		data, err := cbor.Marshal(rec)
		if err != nil {
			return err
		}
		updates = append(updates, update{key: it.Item().KeyCopy(nil), data: data})
	}
	for _, u := range updates {
		if err := txn.Set(u.key, u.data); err != nil {
			return err
		}
	}
	return nil
}

func toKeyBundle(rec keyBundleRecord) domain.KeyBundle {
	return domain.KeyBundle{
		ID:             rec.ID,
		ConversationID: rec.ConversationID,
		Bundle:         rec.Bundle,
		CreatedBy:      rec.CreatedBy,
		CreatedAt:      time.Unix(rec.CreatedAt, 0).UTC(),
		IsActive:       rec.IsActive,
	}
}
