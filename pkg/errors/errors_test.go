package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfUnwraps(t *testing.T) {
	err := fmt.Errorf("handler: %w", Capacity("no remaining capacity"))
	assert.Equal(t, KindCapacity, KindOf(err))
	assert.True(t, Is(err, KindCapacity))
	assert.False(t, Is(err, KindConflict))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Transient("busy", nil).Retryable())
	assert.False(t, Capacity("full").Retryable())
	assert.False(t, Conflict("duplicate").Retryable())
	assert.False(t, Validation("bad input").Retryable())
}

func TestErrorIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transient("failed to check existing bookings", cause)

	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}
