package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ErrReportNotFound.HTTPStatus)
	assert.Equal(t, http.StatusUnauthorized, ErrInvalidCredentials.HTTPStatus)
	assert.Equal(t, http.StatusForbidden, ErrForbidden.HTTPStatus)
	assert.Equal(t, http.StatusServiceUnavailable, ErrCodeGenerationExhausted.HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, New(ErrCodeDatabaseError, "db").HTTPStatus)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, ErrCodeDatabaseError, "could not load report")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestIsMatchesWrappedSentinel(t *testing.T) {
	err := fmt.Errorf("report service: update: %w", ErrReportNotFound)

	assert.ErrorIs(t, err, ErrReportNotFound)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestNewValidation(t *testing.T) {
	err := NewValidation([]FieldError{
		{Field: "location", Message: "is required"},
		{Field: "priority", Message: "must be one of low, medium, high, critical"},
	})

	assert.True(t, IsValidation(err))
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Len(t, err.Fields, 2)
	assert.Contains(t, err.Error(), "2 fields")
}
