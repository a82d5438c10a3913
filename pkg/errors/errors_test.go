package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("select: %w", ErrStaleApplication)

	got := FromError(wrapped)
	assert.Equal(t, "STALE_APPLICATION", got.Code)
	assert.Equal(t, http.StatusConflict, got.Status)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, sql.ErrConnDone)
	assert.Nil(t, FromError(nil))
}

func TestCloneOverridesMessageOnly(t *testing.T) {
	clone := Clone(ErrValidation, "criteria must not be empty")
	assert.Equal(t, ErrValidation.Code, clone.Code)
	assert.Equal(t, "criteria must not be empty", clone.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)

	assert.Equal(t, ErrValidation.Message, Clone(ErrValidation, "").Message)
	assert.Nil(t, Clone(nil, "x"))
}

func TestHasCode(t *testing.T) {
	err := Wrap(sql.ErrNoRows, ErrNotFound.Code, ErrNotFound.Status, "application not found")
	assert.True(t, HasCode(fmt.Errorf("get: %w", err), "NOT_FOUND"))
	assert.False(t, HasCode(err, "CONFLICT"))
	assert.False(t, HasCode(sql.ErrNoRows, "NOT_FOUND"))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "remote service unavailable: boom", Wrap(fmt.Errorf("boom"), "X", 502, "remote service unavailable").Error())
	assert.Equal(t, "forbidden", ErrForbidden.Error())

	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}
