package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/seedvault/internal/client/client"
	"github.com/dmitrijs2005/seedvault/internal/client/config"
	"github.com/dmitrijs2005/seedvault/internal/client/repositories/vaults"
	"github.com/dmitrijs2005/seedvault/internal/keys"
	"github.com/dmitrijs2005/seedvault/internal/vault"
)

type App struct {
	config  *config.Config
	api     client.Client
	deriver vault.Deriver
	book    vaults.Repository
	reader  *bufio.Reader
	out     io.Writer

	// getPassword reads a secret; swapped in tests.
	getPassword func(w io.Writer, prompt string) ([]byte, error)

	identity *keys.Keypair
}

// NewApp wires the CLI. book may be nil, in which case deposits are not
// remembered locally.
func NewApp(c *config.Config, api client.Client, book vaults.Repository, in io.Reader, out io.Writer) *App {
	return &App{
		config:      c,
		api:         api,
		deriver:     vault.NewDeriver(c.Program()),
		book:        book,
		reader:      bufio.NewReader(in),
		out:         out,
		getPassword: GetPassword,
	}
}

func (a *App) isUnlocked() bool {
	return a.identity != nil
}

func (a *App) status() string {
	if a.identity == nil {
		return "locked"
	}
	s := a.identity.Public.String()
	return s[:4] + ".." + s[len(s)-4:]
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// Run shows the banner and serves commands until exit or end of input.
func (a *App) Run(ctx context.Context) error {
	defer a.api.Close()

	a.printf("seedvault wallet (type 'help' for commands)\n")
	if err := a.api.Ping(ctx); err != nil {
		a.printf("warning: %v\n", err)
	}
	runREPL(ctx, a, a.status, a.reader, a.out)
	return nil
}
