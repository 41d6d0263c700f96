package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePermission(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Permission
		wantErr bool
	}{
		{"read", "read", PermissionRead, false},
		{"write", "write", PermissionWrite, false},
		{"uppercase rejected", "READ", "", true},
		{"mixed case rejected", "Write", "", true},
		{"padded rejected", " read", "", true},
		{"empty rejected", "", "", true},
		{"unknown rejected", "delete", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePermission(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidPermission)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasPermission(t *testing.T) {
	readOnly := &Token{ID: "tokenReadonly", Permissions: []Permission{PermissionRead}}
	all := &Token{ID: "token1234", Permissions: []Permission{PermissionRead, PermissionWrite}}
	none := &Token{ID: "empty"}

	assert.True(t, readOnly.HasPermission(PermissionRead))
	assert.False(t, readOnly.HasPermission(PermissionWrite))
	assert.True(t, all.HasPermission(PermissionWrite))
	assert.False(t, none.HasPermission(PermissionRead))
}

func TestHasPermissionIgnoresUnrelatedGrants(t *testing.T) {
	tok := &Token{ID: "t", Permissions: []Permission{PermissionRead}}
	before := tok.HasPermission(PermissionWrite)

	tok.Permissions = append(tok.Permissions, PermissionRead)
	assert.Equal(t, before, tok.HasPermission(PermissionWrite))
}
