//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"personal-chat/errors"
)

type IUserRepository interface {
	CreateUser(user User) (string, error)
	GetUserByEmail(email string) (User, error)
	ListUsers() ([]User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// Address groups the postal fields of a user profile.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// User is the durable profile record. Email doubles as the identity
// key used for presence, room derivation and message ownership.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	Mobile       string    `json:"mobile,omitempty"`
	Email        string    `json:"email"`
	Address      Address   `json:"address,omitempty"`
	LoginID      string    `json:"loginId,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
}

func userKey(email string) []byte {
	return []byte("user:" + email)
}

// CreateUser persists the profile, keyed by email. The password must
// already be hashed by the caller; this layer never sees plaintext.
func (u *UserRepository) CreateUser(user User) (string, error) {
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	if len(user.Roles) == 0 {
		user.Roles = []string{"user"}
	}

	data, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := userKey(user.Email)
		if _, err = txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (u *UserRepository) GetUserByEmail(email string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(email))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return user, nil
}

// ListUsers scans the user keyspace and returns every profile with the
// password hash stripped, ready to serve to clients.
func (u *UserRepository) ListUsers() ([]User, error) {
	var users []User
	err := u.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte("user:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var user User
				if err := json.Unmarshal(val, &user); err != nil {
					return err
				}
				user.PasswordHash = ""
				users = append(users, user)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return users, nil
}
