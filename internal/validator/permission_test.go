package validator

import (
	"testing"

	"token-service/internal/domain/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestValidate_ValidPermission(t *testing.T) {
	v := NewPermissionValidator()

	for _, perm := range token.Permissions {
		got, err := v.Validate(strPtr(string(perm)))
		require.NoError(t, err)
		assert.Equal(t, perm, got)
	}
}

func TestValidate_DefaultPermission(t *testing.T) {
	v := NewPermissionValidator()

	got, err := v.Validate(nil)
	require.NoError(t, err)
	assert.Equal(t, token.PermissionRead, got)

	explicit, err := v.Validate(strPtr("read"))
	require.NoError(t, err)
	assert.Equal(t, explicit, got)
}

func TestValidate_InvalidPermission(t *testing.T) {
	v := NewPermissionValidator()

	inputs := []string{"invalidPermission", "invalid", "", "Read", "WRITE", "read ", "delete"}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := v.Validate(strPtr(in))
			assert.ErrorIs(t, err, ErrInvalidPermissionValue)
		})
	}
}
