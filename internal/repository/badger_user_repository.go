package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ignatzorin/watersafe-backend/internal/models"
)

//	user/<id>            -> JSON пользователя
//	user_email/<email>   -> id
var (
	userPrefix      = []byte("user/")
	userEmailPrefix = []byte("user_email/")
)

func userKey(id uuid.UUID) []byte {
	return append(append([]byte{}, userPrefix...), id.String()...)
}

func userEmailKey(email string) []byte {
	return append(append([]byte{}, userEmailPrefix...), email...)
}

// storedUser нужен потому, что в models.User хеш пароля скрыт из JSON.
type storedUser struct {
	models.User
	PasswordHash *string `json:"passwordHash,omitempty"`
}

// BadgerUserRepository хранит пользователей во встроенном badger.
type BadgerUserRepository struct {
	db    *badger.DB
	clock clockwork.Clock
}

// NewBadgerUserRepository создаёт экземпляр репозитория.
func NewBadgerUserRepository(db *badger.DB, clock clockwork.Clock) *BadgerUserRepository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &BadgerUserRepository{db: db, clock: clock}
}

// Upsert создаёт пользователя или обновляет имя существующего.
func (r *BadgerUserRepository) Upsert(_ context.Context, user *models.User) error {
	return r.upsert(user, func(existing *models.User) {
		if user.Name != nil {
			existing.Name = user.Name
		}
	})
}

// SaveOperator создаёт сотрудника или повышает существующего пользователя.
func (r *BadgerUserRepository) SaveOperator(_ context.Context, user *models.User) error {
	user.Role = models.UserRoleOperator
	return r.upsert(user, func(existing *models.User) {
		if user.Name != nil {
			existing.Name = user.Name
		}
		existing.Role = models.UserRoleOperator
		existing.PasswordHash = user.PasswordHash
	})
}

func (r *BadgerUserRepository) upsert(user *models.User, merge func(existing *models.User)) error {
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		err = r.db.Update(func(txn *badger.Txn) error {
			now := r.clock.Now().UTC()

			existing, err := getUserByEmail(txn, user.Email)
			switch {
			case errors.Is(err, ErrUserNotFound):
				existing = &models.User{}
				*existing = *user
				existing.CreatedAt = now
				if err := txn.Set(userEmailKey(existing.Email), []byte(existing.ID.String())); err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				merge(existing)
			}
			existing.UpdatedAt = now

			if err := putUser(txn, existing); err != nil {
				return err
			}
			*user = *existing
			return nil
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return wrapBadger("upsert user", user.Email, err)
	}
	return nil
}

// GetByEmail возвращает пользователя по email.
func (r *BadgerUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUserByEmail(txn, email)
		return err
	})
	if err != nil {
		return nil, wrapBadger("get user by email", email, err)
	}
	return user, nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *BadgerUserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	if err != nil {
		return nil, wrapBadger("get user", id.String(), err)
	}
	return user, nil
}

// List возвращает пользователей, новые первыми.
func (r *BadgerUserRepository) List(_ context.Context) ([]models.User, error) {
	users := []models.User{}

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = userPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			user, err := decodeUser(it.Item())
			if err != nil {
				return err
			}
			users = append(users, *user)
		}
		return nil
	})
	if err != nil {
		return nil, wrapBadger("list users", "", err)
	}

	sort.SliceStable(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}
		return bytes.Compare(users[i].ID[:], users[j].ID[:]) < 0
	})
	return users, nil
}

func getUserByEmail(txn *badger.Txn, email string) (*models.User, error) {
	item, err := txn.Get(userEmailKey(email))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	if err := item.Value(func(val []byte) error {
		id, err = uuid.ParseBytes(val)
		return err
	}); err != nil {
		return nil, err
	}
	return getUser(txn, id)
}

func getUser(txn *badger.Txn, id uuid.UUID) (*models.User, error) {
	item, err := txn.Get(userKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeUser(item)
}

func decodeUser(item *badger.Item) (*models.User, error) {
	var stored storedUser
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &stored)
	}); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	user := stored.User
	user.PasswordHash = stored.PasswordHash
	return &user, nil
}

func putUser(txn *badger.Txn, user *models.User) error {
	data, err := json.Marshal(storedUser{User: *user, PasswordHash: user.PasswordHash})
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return txn.Set(userKey(user.ID), data)
}
