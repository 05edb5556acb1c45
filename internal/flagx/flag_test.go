package flagx

import (
	"flag"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterArgs(t *testing.T) {
	client := []string{"-a", "-k", "-b", "-p", "-t", "-r"}
	server := []string{"-a", "-m", "-s", "-d", "-f", "-i"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "config flags are not the client's",
			args:    []string{"-c", "client.json", "-a", "127.0.0.1:50051"},
			allowed: client,
			want:    []string{"-a", "127.0.0.1:50051"},
		},
		{
			name:    "book path kept next to keystore",
			args:    []string{"-k", "/home/u/.seedvault/id.json", "-b", "/home/u/.seedvault/book.db"},
			allowed: client,
			want:    []string{"-k", "/home/u/.seedvault/id.json", "-b", "/home/u/.seedvault/book.db"},
		},
		{
			name:    "empty book path in equals form disables the book",
			args:    []string{"-b=", "-t", "30s"},
			allowed: client,
			want:    []string{"-b=", "-t", "30s"},
		},
		{
			name:    "book flag without value at end is kept as-is",
			args:    []string{"-r", "5", "-b"},
			allowed: client,
			want:    []string{"-r", "5", "-b"},
		},
		{
			name:    "server storage flags, unknown ones dropped",
			args:    []string{"-s", "bolt", "-f", "data/ledger.db", "-x", "1", "positional"},
			allowed: server,
			want:    []string{"-s", "bolt", "-f", "data/ledger.db"},
		},
		{
			name:    "flag followed by another flag has no value",
			args:    []string{"-m", "-i", "1m"},
			allowed: server,
			want:    []string{"-m", "-i", "1m"},
		},
		{
			name:    "long config flag with equals",
			args:    []string{"--config=alt.json", "-a", ":50051"},
			allowed: []string{"-c", "--config"},
			want:    []string{"--config=alt.json"},
		},
		{
			name:    "value that looks like a flag in equals form",
			args:    []string{"--config=--weird.json"},
			allowed: []string{"--config"},
			want:    []string{"--config=--weird.json"},
		},
		{
			name:    "repeated flag preserved in order",
			args:    []string{"-d", "postgres://a", "-d", "postgres://b"},
			allowed: server,
			want:    []string{"-d", "postgres://a", "-d", "postgres://b"},
		},
		{
			name:    "empty args",
			args:    []string{},
			allowed: client,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func Test_jsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/short.json"}
		assert.Equal(t, "/path/short.json", JsonConfigFlags())
	})

	t.Run("long -config with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "/path/long.json"}
		assert.Equal(t, "/path/long.json", JsonConfigFlags())
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		os.Args = []string{"testbin", "-x", "1", "-y", "2"}
		assert.Empty(t, JsonConfigFlags())
	})

	t.Run("multiple flags, last wins", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/1.json", "-config", "/path/2.json"}
		assert.Equal(t, "/path/2.json", JsonConfigFlags())
	})
}

func TestNamesAndParseOwn(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	addr := fs.String("a", ":1", "")
	level := fs.String("l", "info", "")

	assert.ElementsMatch(t, []string{"-a", "-l"}, Names(fs))

	err := ParseOwn(fs, []string{"-c", "cfg.json", "-a", ":9000", "-x", "1", "-l=debug"})
	require.NoError(t, err)
	assert.Equal(t, ":9000", *addr)
	assert.Equal(t, "debug", *level)
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "a.json", ConfigPath([]string{"-a", ":1", "-c", "a.json"}))
	assert.Equal(t, "b.json", ConfigPath([]string{"-config=b.json"}))
	assert.Empty(t, ConfigPath(nil))
}
