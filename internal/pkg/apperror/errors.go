package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound                ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized            ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden               ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest              ErrorCode = "BAD_REQUEST"
	ErrCodeConflict                ErrorCode = "CONFLICT"
	ErrCodeInternal                ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation              ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError           ErrorCode = "DATABASE_ERROR"
	ErrCodeCodeGenerationExhausted ErrorCode = "CODE_GENERATION_EXHAUSTED"
)

// FieldError описывает ошибку конкретного поля запроса.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	Fields     []FieldError
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s (%d fields)", e.Code, e.Message, len(e.Fields))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и сообщению, чтобы errors.Is работал с обёрнутыми sentinel-ами.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// NewValidation собирает ошибку валидации со списком полей.
func NewValidation(fields []FieldError) *AppError {
	return &AppError{
		Code:       ErrCodeValidation,
		Message:    "Validation failed",
		HTTPStatus: http.StatusBadRequest,
		Fields:     fields,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeCodeGenerationExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// As достаёт AppError из цепочки.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeNotFound
}

func IsValidation(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == ErrCodeValidation
}

var (
	ErrReportNotFound          = New(ErrCodeNotFound, "Not found")
	ErrUserNotFound            = New(ErrCodeNotFound, "User not found")
	ErrUnauthorized            = New(ErrCodeUnauthorized, "Authorization required")
	ErrForbidden               = New(ErrCodeForbidden, "Operator role required")
	ErrInvalidCredentials      = New(ErrCodeUnauthorized, "Invalid credentials")
	ErrCodeGenerationExhausted = New(ErrCodeCodeGenerationExhausted, "Could not allocate a unique report code, retry later")
)
