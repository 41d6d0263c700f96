package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	err := ProviderUnavailable(cause)

	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "token provider unavailable: connection refused", err.Error())
	assert.NotContains(t, err.Error(), "\n")
}

func TestProviderUnavailable_Nested(t *testing.T) {
	err := ProviderUnavailable(ProviderUnavailable(errors.New("timeout")))

	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "timeout")
}
