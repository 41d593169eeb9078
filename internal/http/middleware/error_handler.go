package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/watersafe-backend/internal/logger"
	"github.com/ignatzorin/watersafe-backend/internal/pkg/apperror"
)

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error  string                `json:"error"`
	Code   apperror.ErrorCode    `json:"code,omitempty"`
	Fields []apperror.FieldError `json:"fields,omitempty"`
}

// ErrorHandler обрабатывает ошибки централизованно.
// Маскирует внутренние ошибки и возвращает понятные сообщения клиенту.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Проверяем, не был ли уже отправлен ответ
		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status, body := render(err)

		entry := logger.Log.WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": status,
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("Request error")
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			entry.Warn("Request rejected")
		default:
			entry.Debug("Request rejected")
		}

		c.JSON(status, body)
	}
}

// render переводит ошибку в HTTP статус и тело ответа.
func render(err error) (int, ErrorResponse) {
	appErr, ok := apperror.As(err)
	if !ok {
		return http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Code:  apperror.ErrCodeInternal,
		}
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	message := appErr.Message
	if status >= http.StatusInternalServerError && appErr.Code != apperror.ErrCodeCodeGenerationExhausted {
		// детали хранилища наружу не отдаём
		message = "Internal server error"
	}

	return status, ErrorResponse{
		Error:  message,
		Code:   appErr.Code,
		Fields: appErr.Fields,
	}
}
