// Package repomanager picks the account storage backend and owns its
// transactions and schema migrations.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/seedvault/internal/server/repositories/accounts"
)

// TxFunc is run with an accounts repository bound to one transaction.
// Returning an error rolls back every write made through it.
type TxFunc func(ctx context.Context, repo accounts.Repository) error

type RepositoryManager interface {
	// RunMigrations brings the schema up to date. No-op for schemaless
	// backends.
	RunMigrations(ctx context.Context) error
	// Accounts returns a repository where every call commits on its own.
	Accounts() accounts.Repository
	// WithinTx runs fn atomically.
	WithinTx(ctx context.Context, fn TxFunc) error
	Close() error
}

// Backend names accepted by New.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	DatabaseDSN string
	BoltPath    string
	// TxRetries bounds how often a Postgres transaction is rerun after a
	// serialization failure or deadlock.
	TxRetries uint64
}

// New opens the backend named in opts.
func New(ctx context.Context, opts Options) (RepositoryManager, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewInMemoryRepositoryManager(), nil
	case BackendPostgres:
		return OpenPostgresRepositoryManager(ctx, opts.DatabaseDSN, opts.TxRetries)
	case BackendBolt:
		return NewBoltRepositoryManager(opts.BoltPath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
