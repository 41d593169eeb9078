package common

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/watersafe-backend/internal/http/middleware"
	"github.com/ignatzorin/watersafe-backend/internal/models"
	"github.com/ignatzorin/watersafe-backend/internal/pkg/apperror"
)

// ErrUserNotFound is returned when user is not found in context
var ErrUserNotFound = errors.New("user is not present in request context")

// ErrInvalidBody отдаётся, когда тело запроса не разбирается как JSON.
var ErrInvalidBody = apperror.New(apperror.ErrCodeBadRequest, "Request body must be valid JSON")

// CurrentUserID extracts user ID from Gin context
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, ErrUserNotFound
	}

	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrUserNotFound
	}

	return userID, nil
}

// CurrentUserRole extracts user role from Gin context
func CurrentUserRole(c *gin.Context) (string, error) {
	raw, exists := c.Get(middleware.ContextRoleKey)
	if !exists {
		return "", ErrUserNotFound
	}

	role, ok := raw.(string)
	if !ok {
		return "", ErrUserNotFound
	}

	return role, nil
}

// IsOperator сообщает, пришёл ли запрос от сотрудника с валидным токеном.
func IsOperator(c *gin.Context) bool {
	if _, err := CurrentUserID(c); err != nil {
		return false
	}
	role, err := CurrentUserRole(c)
	return err == nil && role == models.UserRoleOperator
}

// ParseUUIDParam parses UUID from URL parameter.
// Идентификатор, который не разбирается, не может существовать: отдаём notFound.
func ParseUUIDParam(c *gin.Context, paramName string, notFound error) (uuid.UUID, error) {
	parsed, err := uuid.Parse(c.Param(paramName))
	if err != nil {
		return uuid.Nil, notFound
	}
	return parsed, nil
}

// BindJSON разбирает тело запроса; ошибки разбора превращаются в 400.
func BindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeBadRequest, ErrInvalidBody.Message)
	}
	return nil
}

// Fail передаёт ошибку в middleware.ErrorHandler и прерывает цепочку.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
