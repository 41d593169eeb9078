package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Lookup описывает выборку одной строки по ключу: таблица, столбцы и столбец ключа.
// Столбцы перечисляются явно, чтобы новая колонка в миграции не ломала сканирование в модель.
type Lookup struct {
	Table   string
	Columns string
	Key     string
}

func (l Lookup) query(lock bool) string {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", l.Columns, l.Table, l.Key)
	if lock {
		q += " FOR UPDATE"
	}
	return q
}

// GetOne читает одну строку; отсутствие строки превращается в notFound.
func GetOne[T any](ctx context.Context, q sqlx.QueryerContext, l Lookup, value interface{}, notFound error) (*T, error) {
	return getOne[T](ctx, q, l.query(false), l, value, notFound)
}

// GetOneForUpdate читает строку с блокировкой до конца транзакции tx.
func GetOneForUpdate[T any](ctx context.Context, tx *sqlx.Tx, l Lookup, value interface{}, notFound error) (*T, error) {
	return getOne[T](ctx, tx, l.query(true), l, value, notFound)
}

func getOne[T any](ctx context.Context, q sqlx.QueryerContext, query string, l Lookup, value interface{}, notFound error) (*T, error) {
	var row T
	if err := sqlx.GetContext(ctx, q, &row, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("%s by %s=%v: %w", l.Table, l.Key, value, err)
	}
	return &row, nil
}

// WithTransaction выполняет fn в транзакции: ошибка или паника откатывают, иначе commit.
// Ошибку fn возвращаем как есть, чтобы вызывающий мог сравнить её с ErrReportNotFound и т.п.
func WithTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
