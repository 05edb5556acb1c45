// Command client is the interactive seedvault wallet.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/seedvault/internal/client/cli"
	"github.com/dmitrijs2005/seedvault/internal/client/client"
	"github.com/dmitrijs2005/seedvault/internal/client/config"
	"github.com/dmitrijs2005/seedvault/internal/client/repositories/vaults"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	ctx := context.Background()

	var book vaults.Repository
	if cfg.BookPath != "" {
		db, err := vaults.OpenSQLite(ctx, cfg.BookPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "vault book:", err)
			return 1
		}
		defer db.Close()
		book = vaults.NewSQLiteRepository(db)
	}

	api, err := client.NewGRPCClient(cfg.ServerEndpointAddr, cfg.Retries)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	app := cli.NewApp(cfg, api, book, os.Stdin, os.Stdout)
	if err := app.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
