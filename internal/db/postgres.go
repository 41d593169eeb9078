package db

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/ignatzorin/watersafe-backend/internal/logger"
)

// Пул рассчитан на поток гражданских обращений и модерацию, а не на массовый импорт.
const (
	maxOpenConns    = 20
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
)

// migrationLockKey - ключ pg_advisory_lock; сервер и watersafectl migrate не применяют миграции одновременно.
const migrationLockKey int64 = 0x5753_4d49_4752 // "WSMIGR"

// NewPostgres подключается к PostgreSQL и настраивает пул.
func NewPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось подключиться: %w", err)
	}

	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetConnMaxLifetime(connMaxLifetime)

	return conn, nil
}

// Migration - один SQL файл схемы.
type Migration struct {
	Name string
	SQL  string
}

// LoadMigrations читает *.sql из корня fsys в лексикографическом порядке имён (001_, 002_, ...).
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("postgres: список миграций: %w", err)
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("postgres: чтение миграции %s: %w", name, err)
		}
		if strings.TrimSpace(string(body)) == "" {
			return nil, fmt.Errorf("postgres: миграция %s пуста", name)
		}
		migrations = append(migrations, Migration{Name: path.Base(name), SQL: string(body)})
	}
	return migrations, nil
}

// RunMigrations применяет миграции из каталога dir.
func RunMigrations(ctx context.Context, conn *sqlx.DB, dir string) error {
	migrations, err := LoadMigrations(os.DirFS(dir))
	if err != nil {
		return err
	}
	return ApplyMigrations(ctx, conn, migrations)
}

// ApplyMigrations применяет ещё не записанные в schema_migrations миграции,
// каждую в своей транзакции вместе с отметкой о применении.
func ApplyMigrations(ctx context.Context, conn *sqlx.DB, migrations []Migration) error {
	// Advisory lock держится на соединении, поэтому берём выделенное.
	lockConn, err := conn.Connx(ctx)
	if err != nil {
		return fmt.Errorf("postgres: соединение для миграций: %w", err)
	}
	defer lockConn.Close()

	if _, err := lockConn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, migrationLockKey); err != nil {
		return fmt.Errorf("postgres: блокировка миграций: %w", err)
	}
	defer func() {
		if _, err := lockConn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationLockKey); err != nil {
			logger.Log.WithError(err).Warn("postgres: не удалось снять блокировку миграций")
		}
	}()

	if _, err := lockConn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return fmt.Errorf("postgres: таблица schema_migrations: %w", err)
	}

	var applied []string
	if err := lockConn.SelectContext(ctx, &applied, `SELECT name FROM schema_migrations`); err != nil {
		return fmt.Errorf("postgres: чтение schema_migrations: %w", err)
	}

	for _, m := range Pending(migrations, applied) {
		if err := applyMigration(ctx, lockConn, m); err != nil {
			return err
		}
		logger.Log.WithField("migration", m.Name).Info("postgres: миграция применена")
	}
	return nil
}

// Pending возвращает миграции, которых нет среди applied, сохраняя порядок.
func Pending(migrations []Migration, applied []string) []Migration {
	done := make(map[string]struct{}, len(applied))
	for _, name := range applied {
		done[name] = struct{}{}
	}

	pending := make([]Migration, 0, len(migrations))
	for _, m := range migrations {
		if _, ok := done[m.Name]; !ok {
			pending = append(pending, m)
		}
	}
	return pending
}

func applyMigration(ctx context.Context, conn *sqlx.Conn, m Migration) error {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: миграция %s: %w", m.Name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("postgres: миграция %s: %w", m.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, m.Name); err != nil {
		return fmt.Errorf("postgres: отметка миграции %s: %w", m.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit миграции %s: %w", m.Name, err)
	}
	return nil
}
