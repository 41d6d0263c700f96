package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"token-service/internal/domain/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTokens = `[
	{"token": "token1234", "permissions": ["read", "write"]},
	{"token": "tokenReadonly", "permissions": ["read"]}
]`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	writeFile(t, path, sampleTokens)

	tokens, err := Load(path)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "tokenReadonly", tokens[1].ID)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	writeFile(t, path, "- token: tokenCanAll\n  permissions: [read, write]\n")

	tokens, err := Load(path)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, []token.Permission{token.PermissionRead, token.PermissionWrite}, tokens[0].Permissions)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	writeFile(t, path, sampleTokens)

	p, err := NewProvider(path)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
}

func TestWatcher_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	writeFile(t, path, sampleTokens)

	store, err := NewProvider(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, store)
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, path, `[{"token": "only", "permissions": ["write"]}]`)
	require.NoError(t, w.Reload())
	assert.Equal(t, 1, store.Len())
}

func TestWatcher_ReloadInvalidKeepsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	writeFile(t, path, sampleTokens)

	store, err := NewProvider(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, store)
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, path, `[{"token": "bad", "permissions": ["admin"]}]`)
	assert.Error(t, w.Reload())
	assert.Equal(t, 2, store.Len())
}

func TestWatcher_RunPicksUpChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	writeFile(t, path, sampleTokens)

	store, err := NewProvider(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, store)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	writeFile(t, path, `[{"token": "a", "permissions": ["read"]}, {"token": "b", "permissions": []}, {"token": "c", "permissions": ["write"]}]`)

	assert.Eventually(t, func() bool { return store.Len() == 3 }, 2*time.Second, 10*time.Millisecond)
}
