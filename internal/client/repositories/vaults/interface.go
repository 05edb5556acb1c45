package vaults

import (
	"context"
	"time"

	"github.com/dmitrijs2005/seedvault/internal/keys"
)

// Record is one vault the wallet deposited into.
type Record struct {
	Address   keys.PublicKey
	Depositor keys.PublicKey
	Seed      keys.PublicKey
	Bump      uint8
	Lamports  uint64
	Closed    bool
	UpdatedAt time.Time
}

// Repository stores Records keyed by vault address.
type Repository interface {
	// Save inserts r or replaces the row with the same address.
	Save(ctx context.Context, r *Record) error

	// MarkClosed flags an open vault as withdrawn. It returns
	// common.ErrorNotFound when no open vault has that address.
	MarkClosed(ctx context.Context, address keys.PublicKey, at time.Time) error

	// ListByDepositor returns the depositor's vaults, open ones first.
	ListByDepositor(ctx context.Context, depositor keys.PublicKey) ([]Record, error)
}
