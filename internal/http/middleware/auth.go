package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/watersafe-backend/internal/models"
	"github.com/ignatzorin/watersafe-backend/internal/pkg/apperror"
	"github.com/ignatzorin/watersafe-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
)

// bearerToken достаёт токен из заголовка Authorization.
func bearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}

// AuthMiddleware проверяет JWT access токен.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			_ = c.Error(apperror.ErrUnauthorized)
			c.Abort()
			return
		}

		userID, role, err := tokens.ParseAccess(raw)
		if err != nil || userID == uuid.Nil {
			_ = c.Error(apperror.New(apperror.ErrCodeUnauthorized, "Invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

// OptionalAuth кладёт пользователя в контекст, если передан валидный токен.
// Без токена или с невалидным токеном запрос остаётся публичным.
func OptionalAuth(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			if userID, role, err := tokens.ParseAccess(raw); err == nil && userID != uuid.Nil {
				c.Set(ContextUserIDKey, userID)
				c.Set(ContextRoleKey, role)
			}
		}
		c.Next()
	}
}

// RequireOperator пропускает только сотрудников. Ставится после AuthMiddleware.
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextUserIDKey); !exists {
			_ = c.Error(apperror.ErrUnauthorized)
			c.Abort()
			return
		}
		if c.GetString(ContextRoleKey) != models.UserRoleOperator {
			_ = c.Error(apperror.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Moderation возвращает цепочку проверок для маршрутов модерации.
// При выключенной авторизации цепочка пуста.
func Moderation(tokens *service.TokenManager, enabled bool) []gin.HandlerFunc {
	if !enabled {
		return nil
	}
	return []gin.HandlerFunc{AuthMiddleware(tokens), RequireOperator()}
}
