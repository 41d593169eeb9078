package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/ignatzorin/watersafe-backend/internal/pkg/apperror"
)

// Константы валидации
const (
	MaxLocationLength    = 255
	MaxIssueTypeLength   = 64
	MaxDescriptionLength = 5000
	MaxNameLength        = 100
	MaxEmailLength       = 254
	MaxResponseLength    = 5000
	MaxSearchLength      = 200
)

// validate потокобезопасен, создаём один раз.
var validate = validator.New()

// fieldErrors накапливает ошибки, не прерываясь на первой.
type fieldErrors []apperror.FieldError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, apperror.FieldError{Field: field, Message: message})
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperror.NewValidation(f)
}

// checkLength проверяет длину строки в символах.
func checkLength(errs *fieldErrors, field, value string, max int) bool {
	if max > 0 && utf8.RuneCountInString(value) > max {
		errs.add(field, fmt.Sprintf("must be at most %d characters", max))
		return false
	}
	return true
}

// requireText проверяет обязательное текстовое поле и возвращает его без краевых пробелов.
func requireText(errs *fieldErrors, field, value string, max int) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		errs.add(field, "is required")
		return ""
	}
	checkLength(errs, field, trimmed, max)
	return trimmed
}

// optionalText: пустая строка равносильна отсутствию значения.
func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// IsEmail проверяет синтаксис адреса.
func IsEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}
