package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/watersafe-backend/internal/pkg/apperror"
)

// UUIDValidator проверяет, что параметр с указанным именем является валидным UUID.
// Неразборчивый идентификатор означает несуществующий ресурс, поэтому отдаётся notFound.
// Использование: router.GET("/reports/:id", UUIDValidator("id", apperror.ErrReportNotFound), handler.Get)
func UUIDValidator(paramName string, notFound *apperror.AppError) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := uuid.Parse(c.Param(paramName)); err != nil {
			_ = c.Error(notFound)
			c.Abort()
			return
		}

		c.Next()
	}
}
