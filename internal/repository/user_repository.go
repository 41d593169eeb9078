package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/watersafe-backend/internal/models"
	"github.com/ignatzorin/watersafe-backend/internal/repository/common"
)

const userColumns = `id, email, name, role, password_hash, created_at, updated_at`

var (
	userByID    = common.Lookup{Table: "users", Columns: userColumns, Key: "id"}
	userByEmail = common.Lookup{Table: "users", Columns: userColumns, Key: "email"}
)

// UserRepository отвечает за работу с таблицей users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert создаёт пользователя или обновляет имя существующего.
// Отсутствующее имя не затирает сохранённое, роль и пароль не меняются.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE
		SET name = COALESCE(EXCLUDED.name, users.name),
			updated_at = NOW()
		RETURNING ` + userColumns

	if err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Email, user.Name, user.Role,
	).StructScan(user); err != nil {
		return fmt.Errorf("user repository: upsert %w", err)
	}
	return nil
}

// SaveOperator создаёт сотрудника или повышает существующего пользователя, задавая новый пароль.
func (r *UserRepository) SaveOperator(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, 'operator', $4, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE
		SET name = COALESCE(EXCLUDED.name, users.name),
			role = 'operator',
			password_hash = EXCLUDED.password_hash,
			updated_at = NOW()
		RETURNING ` + userColumns

	if err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash,
	).StructScan(user); err != nil {
		return fmt.Errorf("user repository: save operator %w", err)
	}
	return nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return common.GetOne[models.User](ctx, r.db, userByEmail, email, ErrUserNotFound)
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return common.GetOne[models.User](ctx, r.db, userByID, id, ErrUserNotFound)
}

// List возвращает пользователей, новые первыми.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id`,
	); err != nil {
		return nil, fmt.Errorf("user repository: list %w", err)
	}
	return users, nil
}
