package token

import (
	"errors"
	"fmt"
)

// Token is an issued credential and the permissions it grants.
type Token struct {
	ID          string
	Permissions []Permission
}

type Permission string

const (
	PermissionRead          Permission = "read"
	PermissionWrite         Permission = "write"
	errInvalidPermissionFmt            = "%w: %q"
)

var ErrInvalidPermission = errors.New("invalid permission")

// Permissions lists every recognized permission.
var Permissions = []Permission{PermissionRead, PermissionWrite}

// Validate validates the permission
func (p Permission) Validate() error {
	switch p {
	case PermissionRead, PermissionWrite:
		return nil
	default:
		return fmt.Errorf(errInvalidPermissionFmt, ErrInvalidPermission, string(p))
	}
}

func (p Permission) String() string {
	return string(p)
}

// ParsePermission maps s to a Permission by exact, case-sensitive match.
func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// HasPermission returns true if the token grants the given permission
func (t *Token) HasPermission(perm Permission) bool {
	for _, p := range t.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
