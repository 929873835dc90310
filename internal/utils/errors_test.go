package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ronicTakouugang/stockz/internal/models"
)

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "days: must be an integer", NewValidationError("days", "must be an integer").Error())
	assert.Equal(t, "bad request", (&ValidationError{Message: "bad request"}).Error())
}

func TestNewValidationErrorf(t *testing.T) {
	err := NewValidationErrorf("limit", "must be between %d and %d", 1, 500)
	assert.Equal(t, "limit: must be between 1 and 500", err.Error())

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "limit", ve.Field)
}

func TestValidationError_IsInvalidInput(t *testing.T) {
	err := fmt.Errorf("parse query: %w", NewValidationError("days", "required"))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.NotErrorIs(t, err, models.ErrQuotaExceeded)
}
