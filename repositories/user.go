//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"time"

	"driftway/domain"
	"driftway/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(email, displayName, hashedPassword string) (string, error)
	GetUserByEmail(email string) (domain.User, error)
	GetUserByID(id string) (domain.User, error)
	SetOnlineStatus(id string, online bool) error
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) UserRepository {
	return UserRepository{db: db}
}

// userRecord is the on-disk shape of a user. Records are encoded with
// CBOR; the email index key points at the primary record.
type userRecord struct {
	ID           string `cbor:"1,keyasint"`
	Email        string `cbor:"2,keyasint"`
	DisplayName  string `cbor:"3,keyasint"`
	PasswordHash string `cbor:"4,keyasint"`
	IsOnline     bool   `cbor:"5,keyasint"`
	CreatedAt    int64  `cbor:"6,keyasint"`
}

func userKey(id string) []byte         { return []byte("user:" + id) }
func userEmailKey(email string) []byte { return []byte("useremail:" + email) }

// CreateUser persists the user and its email index in one transaction.
// Returns ErrUserAlreadyExists when the email is taken.
func (u UserRepository) CreateUser(email, displayName, hashedPassword string) (string, error) {
	newID := uuid.NewString()
	data, err := cbor.Marshal(userRecord{
		ID:           newID,
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(userEmailKey(email)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(userEmailKey(email), []byte(newID)); err != nil {
			return err
		}
		return txn.Set(userKey(newID), data)
	})
	return newID, err
}

func (u UserRepository) GetUserByEmail(email string) (domain.User, error) {
	var id string
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userEmailKey(email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u.GetUserByID(id)
}

func (u UserRepository) GetUserByID(id string) (domain.User, error) {
	var rec userRecord
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &rec)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.User{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return toUser(rec), nil
}

// SetOnlineStatus flips the presence flag on the stored record. Missing
// users are reported as ErrNotFound so callers can log and move on.
func (u UserRepository) SetOnlineStatus(id string, online bool) error {
	err := u.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return err
		}
		var rec userRecord
		if err := item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &rec)
		}); err != nil {
			return err
		}
		rec.IsOnline = online
		data, err := cbor.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(userKey(id), data)
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrNotFound
	}
	return err
}

func toUser(rec userRecord) domain.User {
	return domain.User{
		ID:           rec.ID,
		Email:        rec.Email,
		DisplayName:  rec.DisplayName,
		PasswordHash: rec.PasswordHash,
		IsOnline:     rec.IsOnline,
		CreatedAt:    time.Unix(rec.CreatedAt, 0).UTC(),
	}
}
