package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/seedvault/internal/auth"
	"github.com/dmitrijs2005/seedvault/internal/client/keystore"
	"github.com/dmitrijs2005/seedvault/internal/client/repositories/vaults"
	"github.com/dmitrijs2005/seedvault/internal/common"
	"github.com/dmitrijs2005/seedvault/internal/keys"
)

// Instruction names as carried in the envelope "ins" claim.
const (
	opDeposit  = "deposit"
	opWithdraw = "withdraw"
)

var (
	errLocked = errors.New("wallet is locked, run 'unlock' first")
	errUsage  = errors.New("usage")
)

// Keygen creates a new encrypted identity at the configured keystore path.
func (a *App) Keygen(ctx context.Context) error {
	pw, err := a.getPassword(a.out, "New password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	again, err := a.getPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)

	if string(pw) != string(again) {
		return errors.New("passwords do not match")
	}
	if len(pw) == 0 {
		return errors.New("empty password")
	}

	kp, err := keystore.Create(a.config.KeystorePath, pw)
	if err != nil {
		return err
	}
	a.identity = kp
	a.printf("Created %s\nAddress: %s\n", a.config.KeystorePath, kp.Public)
	return nil
}

// Unlock decrypts the keystore for the rest of the session.
func (a *App) Unlock(ctx context.Context) error {
	f, err := keystore.Load(a.config.KeystorePath)
	if err != nil {
		return err
	}
	pw, err := a.getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	kp, err := f.Unlock(pw)
	if err != nil {
		return err
	}
	a.identity = kp
	a.printf("Unlocked %s\n", kp.Public)
	return nil
}

// address is the wallet's public key, read from the keystore when locked.
func (a *App) address() (keys.PublicKey, error) {
	if a.identity != nil {
		return a.identity.Public, nil
	}
	f, err := keystore.Load(a.config.KeystorePath)
	if err != nil {
		return keys.Zero, err
	}
	return f.Public, nil
}

func (a *App) Whoami(ctx context.Context) error {
	addr, err := a.address()
	if err != nil {
		return err
	}
	a.printf("%s\n", addr)
	return nil
}

func (a *App) Airdrop(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: airdrop <lamports>", errUsage)
	}
	lamports, err := parseLamports(args[0])
	if err != nil {
		return err
	}
	addr, err := a.address()
	if err != nil {
		return err
	}
	acc, err := a.api.Airdrop(ctx, addr, lamports)
	if err != nil {
		return err
	}
	a.printf("Balance: %d lamports\n", acc.Lamports)
	return nil
}

func (a *App) Derive(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: derive <seed>", errUsage)
	}
	seed, err := a.parseSeed(args[0])
	if err != nil {
		return err
	}
	depositor, err := a.address()
	if err != nil {
		return err
	}

	d, err := a.api.DeriveVault(ctx, depositor, seed)
	if err != nil {
		return err
	}
	local, bump, err := a.deriver.Derive(depositor, seed)
	if err != nil {
		return err
	}
	if local != d.Address || bump != d.Bump {
		return fmt.Errorf("server derived %s/%d, wallet derived %s/%d: check the program id", d.Address, d.Bump, local, bump)
	}
	a.printf("Vault: %s (bump %d)\n", d.Address, d.Bump)
	return nil
}

func (a *App) Deposit(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: deposit <seed> <lamports>", errUsage)
	}
	if !a.isUnlocked() {
		return errLocked
	}
	seed, err := a.parseSeed(args[0])
	if err != nil {
		return err
	}
	lamports, err := parseLamports(args[1])
	if err != nil {
		return err
	}

	envelope, err := a.sign(opDeposit, seed, lamports)
	if err != nil {
		return err
	}
	r, err := a.api.Deposit(ctx, envelope)
	if err != nil {
		return err
	}
	a.printf("Deposited %d lamports into %s (bump %d, fee %d)\n", r.Lamports, r.Vault, r.Bump, r.Fee)

	if a.book != nil {
		rec := &vaults.Record{
			Address:   r.Vault,
			Depositor: a.identity.Public,
			Seed:      seed,
			Bump:      r.Bump,
			Lamports:  r.Lamports,
			UpdatedAt: time.Now().UTC(),
		}
		if err := a.book.Save(ctx, rec); err != nil {
			a.printf("warning: vault not recorded locally, keep the seed %s: %v\n", seed, err)
		}
	}
	return nil
}

func (a *App) Withdraw(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: withdraw <seed>", errUsage)
	}
	if !a.isUnlocked() {
		return errLocked
	}
	seed, err := keys.Parse(args[0])
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	envelope, err := a.sign(opWithdraw, seed, 0)
	if err != nil {
		return err
	}
	r, err := a.api.Withdraw(ctx, envelope)
	if err != nil {
		return err
	}
	a.printf("Withdrew %d lamports from %s (fee %d)\n", r.Lamports, r.Vault, r.Fee)

	if a.book != nil {
		err := a.book.MarkClosed(ctx, r.Vault, time.Now().UTC())
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			a.printf("warning: %v\n", err)
		}
	}
	return nil
}

// Vaults lists the vaults this wallet has opened, as remembered locally.
func (a *App) Vaults(ctx context.Context) error {
	if a.book == nil {
		return errors.New("vault book is disabled")
	}
	addr, err := a.address()
	if err != nil {
		return err
	}
	list, err := a.book.ListByDepositor(ctx, addr)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("No vaults\n")
		return nil
	}
	for _, v := range list {
		state := "open"
		if v.Closed {
			state = "closed"
		}
		a.printf("%s  seed=%s  %d lamports  %s  %s\n",
			v.Address, v.Seed, v.Lamports, state, v.UpdatedAt.Format(time.DateTime))
	}
	return nil
}

func (a *App) Balance(ctx context.Context, args []string) error {
	var (
		addr keys.PublicKey
		err  error
	)
	switch len(args) {
	case 0:
		addr, err = a.address()
	case 1:
		addr, err = keys.Parse(args[0])
	default:
		return fmt.Errorf("%w: balance [address]", errUsage)
	}
	if err != nil {
		return err
	}

	acc, err := a.api.Account(ctx, addr)
	if errors.Is(err, common.ErrorNotFound) {
		a.printf("%s: no account\n", addr)
		return nil
	}
	if err != nil {
		return err
	}
	a.printf("%s: %d lamports\n", addr, acc.Lamports)
	return nil
}

// sign derives the vault for seed and wraps the instruction in an envelope
// signed by the unlocked identity.
func (a *App) sign(op string, seed keys.PublicKey, lamports uint64) (string, error) {
	addr, bump, err := a.deriver.Derive(a.identity.Public, seed)
	if err != nil {
		return "", err
	}
	return auth.Sign(a.identity, a.config.Program(), auth.Request{
		Op:        op,
		ExtraSeed: seed,
		Vault:     addr,
		Bump:      &bump,
		Amount:    lamports,
	}, a.config.RequestTTL)
}

// parseSeed accepts a base58 key or "new", which draws a random seed and
// prints it so the vault can be withdrawn later.
func (a *App) parseSeed(s string) (keys.PublicKey, error) {
	if s != "new" {
		k, err := keys.Parse(s)
		if err != nil {
			return keys.Zero, fmt.Errorf("seed: %w", err)
		}
		return k, nil
	}
	k, err := keys.NewRandom()
	if err != nil {
		return keys.Zero, err
	}
	a.printf("Seed: %s (keep it to withdraw)\n", k)
	return k, nil
}

func parseLamports(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("lamports: %w", err)
	}
	return n, nil
}
