package errors

import (
	"errors"
	"fmt"
)

// Domain errors - Sentinel errors for use with errors.Is()
var (
	ErrProviderUnavailable = errors.New("token provider unavailable")
)

// ProviderUnavailable marks a failure to read the token set. The result
// matches both ErrProviderUnavailable and err.
func ProviderUnavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
}
