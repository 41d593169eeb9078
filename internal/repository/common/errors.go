package common

import (
	"errors"

	"github.com/lib/pq"
)

// pgUniqueViolation - SQLSTATE нарушения уникального ограничения.
const pgUniqueViolation = "23505"

// IsUniqueViolation проверяет, что ошибка PostgreSQL вызвана нарушением ограничения constraint.
// Пустой constraint подходит под любое уникальное ограничение.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
