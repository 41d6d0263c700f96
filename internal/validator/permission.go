package validator

import (
	"errors"
	"fmt"

	"token-service/internal/domain/token"
)

const (
	DefaultPermission = token.PermissionRead

	errInvalidPermissionValueFmt = "%w: %q"
)

// ErrInvalidPermissionValue is returned when a supplied permission matches no known kind.
var ErrInvalidPermissionValue = errors.New("invalid permission value")

type PermissionValidator struct{}

func NewPermissionValidator() *PermissionValidator {
	return &PermissionValidator{}
}

// Validate maps raw to a permission. A nil raw means the caller supplied
// none and yields DefaultPermission; an explicit value must match exactly.
func (v *PermissionValidator) Validate(raw *string) (token.Permission, error) {
	value := string(DefaultPermission)
	if raw != nil {
		value = *raw
	}

	perm, err := token.ParsePermission(value)
	if err != nil {
		return "", fmt.Errorf(errInvalidPermissionValueFmt, ErrInvalidPermissionValue, value)
	}

	return perm, nil
}
