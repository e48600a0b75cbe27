package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelWrapping(t *testing.T) {
	err := Wrap(ErrNotFound, "tag lookup")
	assert.True(t, Is(err, ErrNotFound))
	assert.True(t, IsNotFoundError(err))
	assert.False(t, IsNotFoundError(nil))
	assert.False(t, IsNotFoundError(New("something else")))
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("tag %q", "Pump-101")
	assert.True(t, Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "Pump-101")
}

func TestIsInvalidRequestError(t *testing.T) {
	assert.True(t, IsInvalidRequestError(Wrap(ErrInvalidQuery, "bad prefix")))
	assert.True(t, IsInvalidRequestError(NewInvalidRequestError("missing %s", "field")))
	assert.False(t, IsInvalidRequestError(ErrNotFound))
}

func TestHints(t *testing.T) {
	err := WithHint(ErrEndpointUnreachable, "check the repository URL")
	hints := GetAllHints(err)
	assert.Contains(t, hints, "check the repository URL")
}
