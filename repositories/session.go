//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"log/slog"
	"time"

	"driftway/domain"
	"driftway/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

type ISessionRepository interface {
	CreateSession(session domain.Session) error
	FindByCredential(credential string) (domain.Session, error)
	DeleteSession(id string) error
	DeleteExpired(now time.Time) (int, error)
}

type SessionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSessionRepository(db *badger.DB, log *slog.Logger) SessionRepository {
	return SessionRepository{db: db, log: log}
}

type sessionRecord struct {
	ID            string `cbor:"1,keyasint"`
	UserID        string `cbor:"2,keyasint"`
	Credential    string `cbor:"3,keyasint"`
	OriginAddress string `cbor:"4,keyasint"`
	ExpiresAt     int64  `cbor:"5,keyasint"`
}

const sessionPrefix = "session:"

// Sessions are keyed by id; a credential index key points back at the id
// so validation (which only holds the presented credential) is a
// two-step lookup, like the user email index.
func sessionKey(id string) []byte       { return []byte(sessionPrefix + id) }
func sessionCredKey(cred string) []byte { return []byte("sessioncred:" + cred) }

func (s SessionRepository) CreateSession(session domain.Session) error {
	data, err := cbor.Marshal(sessionRecord{
		ID:            session.ID,
		UserID:        session.UserID,
		Credential:    session.Credential,
		OriginAddress: session.OriginAddress,
		ExpiresAt:     session.ExpiresAt.Unix(),
	})
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(sessionCredKey(session.Credential), []byte(session.ID)); err != nil {
			return err
		}
		return txn.Set(sessionKey(session.ID), data)
	})
}

func (s SessionRepository) FindByCredential(credential string) (domain.Session, error) {
	var rec sessionRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionCredKey(credential))
		if err != nil {
			return err
		}
		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}
		item, err = txn.Get(sessionKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &rec)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Session{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	return toSession(rec), nil
}

// DeleteSession removes the record and its credential index. Deleting a
// session that is already gone is a no-op.
func (s SessionRepository) DeleteSession(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var rec sessionRecord
		if err := item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &rec)
		}); err != nil {
			return err
		}
		if err := txn.Delete(sessionCredKey(rec.Credential)); err != nil {
			return err
		}
		return txn.Delete(sessionKey(id))
	})
}

// DeleteExpired scans all session records and purges the ones past
// their lifetime. It returns how many were removed.
func (s SessionRepository) DeleteExpired(now time.Time) (int, error) {
	type doomed struct {
		id   string
		cred string
	}
	var expired []doomed
	err := s.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()
		prefix := []byte(sessionPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec sessionRecord
			if err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			if !now.Before(time.Unix(rec.ExpiresAt, 0)) {
				expired = append(expired, doomed{id: rec.ID, cred: rec.Credential})
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, d := range expired {
		err := s.db.Update(func(txn *badger.Txn) error {
			if err := txn.Delete(sessionCredKey(d.cred)); err != nil {
				return err
			}
			return txn.Delete(sessionKey(d.id))
		})
		if err != nil {
			return 0, err
		}
		s.log.Debug("Expired session purged", "session_id", d.id)
	}
	return len(expired), nil
}

func toSession(rec sessionRecord) domain.Session {
	return domain.Session{
		ID:            rec.ID,
		UserID:        rec.UserID,
		Credential:    rec.Credential,
		OriginAddress: rec.OriginAddress,
		ExpiresAt:     time.Unix(rec.ExpiresAt, 0).UTC(),
	}
}
