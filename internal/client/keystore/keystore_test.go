package keystore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/seedvault/internal/cryptox"
	"github.com/dmitrijs2005/seedvault/internal/keys"
)

func TestCreateLoadUnlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet", "id.json")

	kp, err := Create(path, []byte("hunter2"))
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, kp.Public, f.Public)

	got, err := f.Unlock([]byte("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, kp.Public, got.Public)
	assert.Equal(t, kp.Private, got.Private)

	_, err = f.Unlock([]byte("wrong"))
	assert.ErrorIs(t, err, cryptox.ErrWrongPassword)
}

func TestCreate_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id.json")
	_, err := Create(path, []byte("a"))
	require.NoError(t, err)

	_, err = Create(path, []byte("b"))
	assert.ErrorContains(t, err, "already exists")
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.json"))
	assert.ErrorIs(t, err, ErrNoKeystore)
}

func TestLoad_BadFiles(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("not json"), 0o600))
	_, err := Load(garbage)
	assert.Error(t, err)

	future := filepath.Join(dir, "future.json")
	b, err := json.Marshal(map[string]any{"version": 99})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(future, b, 0o600))
	_, err = Load(future)
	assert.ErrorContains(t, err, "unsupported version")
}

func TestUnlock_PublicKeyMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id.json")
	_, err := Create(path, []byte("pw"))
	require.NoError(t, err)

	f, err := Load(path)
	require.NoError(t, err)
	other, err := keys.NewKeypair()
	require.NoError(t, err)
	f.Public = other.Public

	_, err = f.Unlock([]byte("pw"))
	assert.ErrorContains(t, err, "does not match")
}
