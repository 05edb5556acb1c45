package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/seedvault/internal/vault"
)

func writeJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.NotEmpty(t, c.KeystorePath)
	assert.Equal(t, filepath.Dir(c.KeystorePath), filepath.Dir(c.BookPath))
	assert.Equal(t, 30*time.Second, c.RequestTTL)
	assert.Equal(t, uint64(3), c.Retries)
	assert.Equal(t, vault.DefaultProgramID, c.Program())
	require.NoError(t, c.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	path := writeJSON(t, map[string]any{
		"server_endpoint_addr": "json:1",
		"keystore_path":        "/tmp/json-id.json",
		"book_path":            "",
		"request_ttl":          "10s",
		"retries":              0,
	})

	c, err := load([]string{"-config", path, "-a", "flag:2", "-x", "ignored"})
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	want.ServerEndpointAddr = "flag:2"
	want.KeystorePath = "/tmp/json-id.json"
	want.BookPath = ""
	want.RequestTTL = 10 * time.Second
	want.Retries = 0
	assert.Empty(t, cmp.Diff(&want, c))
}

func TestLoad_Errors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))

	_, err := load([]string{"-c", bad})
	assert.Error(t, err)

	_, err = load([]string{"-t", "0s"})
	assert.ErrorContains(t, err, "ttl")

	_, err = load([]string{"-p", "nope!"})
	assert.ErrorContains(t, err, "program id")

	_, err = load([]string{"-r", "many"})
	assert.Error(t, err)
}

func TestParseFlags(t *testing.T) {
	var c Config
	require.NoError(t, parseFlags(&c, []string{"-a", "h:1", "-k", "k.json", "-b", "b.db", "-t", "1m", "-r", "9"}))

	assert.Empty(t, cmp.Diff(Config{
		ServerEndpointAddr: "h:1",
		KeystorePath:       "k.json",
		BookPath:           "b.db",
		RequestTTL:         time.Minute,
		Retries:            9,
	}, c))
}
