package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	message := "pharmacy not found"
	err := NewNotFoundError(message)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
}

func TestNotFoundError_IsNotFoundError(t *testing.T) {
	err := NewNotFoundError("reservation not found")

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, notFoundErr)
	assert.Equal(t, "reservation not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_WithOtherError(t *testing.T) {
	err := errors.New("some other error")

	notFoundErr, ok := IsNotFoundError(err)
	assert.False(t, ok)
	assert.Nil(t, notFoundErr)
}

func TestForbiddenError_IsForbiddenError(t *testing.T) {
	err := NewForbiddenError("reservation belongs to another user")

	fe, ok := IsForbiddenError(err)
	assert.True(t, ok)
	assert.Equal(t, "reservation belongs to another user", fe.Message)

	_, ok = IsForbiddenError(errors.New("plain"))
	assert.False(t, ok)
}

func TestConflictError_IsConflictError(t *testing.T) {
	err := NewConflictError("reservation is picked_up")

	ce, ok := IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, "reservation is picked_up", ce.Message)

	_, ok = IsConflictError(NewNotFoundError("nope"))
	assert.False(t, ok)
}

func TestUnprocessableError_CarriesCode(t *testing.T) {
	err := NewUnprocessableError(CodeInsufficientStock, "only 2 units of Dolo 650 available")

	ue, ok := IsUnprocessableError(err)
	assert.True(t, ok)
	assert.Equal(t, CodeInsufficientStock, ue.Code)
	assert.Equal(t, "only 2 units of Dolo 650 available", ue.Error())
}

func TestUnprocessableError_IsUnprocessableError_WithOtherError(t *testing.T) {
	ue, ok := IsUnprocessableError(errors.New("boom"))
	assert.False(t, ok)
	assert.Nil(t, ue)
}

func TestDeadlockError_IsDeadlockError(t *testing.T) {
	err := NewDeadlockError("max retries exceeded")

	de, ok := IsDeadlockError(err)
	assert.True(t, ok)
	assert.Equal(t, "max retries exceeded", de.Message)
}

func TestValidationError_Creation(t *testing.T) {
	message := "validation failed"
	details := []ValidationDetail{
		{Field: "medicines", Message: "medicines must not be empty"},
		{Field: "pharmacy_id", Message: "pharmacy_id must be a positive integer"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)
}

func TestInternalError_Creation(t *testing.T) {
	cause := errors.New("database error")
	err := NewInternalError("failed to query inventory", cause)

	assert.NotNil(t, err)
	assert.Equal(t, "failed to query inventory", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "failed to query inventory")
	assert.Contains(t, err.Error(), "database error")
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewInternalError("wrapper", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
}
