package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface runREPL dispatches to. App implements
// it; tests use a stub.
type execIface interface {
	isUnlocked() bool
	Keygen(ctx context.Context) error
	Unlock(ctx context.Context) error
	Whoami(ctx context.Context) error
	Airdrop(ctx context.Context, args []string) error
	Derive(ctx context.Context, args []string) error
	Deposit(ctx context.Context, args []string) error
	Withdraw(ctx context.Context, args []string) error
	Balance(ctx context.Context, args []string) error
	Vaults(ctx context.Context) error
}

const (
	helpLocked   = "Available commands: keygen, unlock, whoami, derive, balance, vaults, exit"
	helpUnlocked = "Available commands: whoami, airdrop, derive, deposit, withdraw, balance, vaults, exit"
)

// runREPL reads one command per line from reader and dispatches it to a.
// Command errors are printed and the loop continues. It returns on end of
// input or on "exit"/"quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "seedvault (%s)> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isUnlocked() {
				fmt.Fprintln(w, helpUnlocked)
			} else {
				fmt.Fprintln(w, helpLocked)
			}
		case "keygen":
			cmdErr = a.Keygen(ctx)
		case "unlock":
			cmdErr = a.Unlock(ctx)
		case "whoami":
			cmdErr = a.Whoami(ctx)
		case "airdrop":
			cmdErr = a.Airdrop(ctx, args)
		case "derive":
			cmdErr = a.Derive(ctx, args)
		case "deposit":
			cmdErr = a.Deposit(ctx, args)
		case "withdraw":
			cmdErr = a.Withdraw(ctx, args)
		case "balance":
			cmdErr = a.Balance(ctx, args)
		case "vaults":
			cmdErr = a.Vaults(ctx)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
		if cmdErr != nil {
			fmt.Fprintln(w, "Error:", cmdErr)
		}
		if errors.Is(err, io.EOF) {
			return
		}
	}
}
