package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesExistingCode(t *testing.T) {
	inner := New(CodeValidation, "email no válido")
	wrapped := Wrap(inner, CodeInternal, "enroll failed")

	assert.True(t, HasCode(wrapped, CodeValidation))
	assert.Equal(t, "enroll failed", wrapped.Error())
	assert.ErrorIs(t, wrapped, inner)
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrap(errors.New("connection refused"), CodeInternal, "failed to store enrollment")

	assert.True(t, HasCode(wrapped, CodeInternal))
	assert.ErrorContains(t, errors.Unwrap(wrapped), "connection refused")
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("decode: %w", New(CodeBadRequest, "invalid request body"))

	assert.ErrorIs(t, err, &Error{Code: CodeBadRequest})
	assert.NotErrorIs(t, err, &Error{Code: CodeInternal})
}

func TestErrorFallsBackToCode(t *testing.T) {
	err := &Error{Code: CodeUnavailable}
	assert.Equal(t, "unavailable", err.Error())
}
