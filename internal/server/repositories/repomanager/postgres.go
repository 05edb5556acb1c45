package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/seedvault/internal/dbx"
	"github.com/dmitrijs2005/seedvault/internal/server/migrations"
	"github.com/dmitrijs2005/seedvault/internal/server/repositories/accounts"
)

// PostgresRepositoryManager serves accounts from PostgreSQL through the pgx
// database/sql driver.
type PostgresRepositoryManager struct {
	db      *sql.DB
	retries uint64
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// OpenPostgresRepositoryManager connects to dsn and checks the connection.
func OpenPostgresRepositoryManager(ctx context.Context, dsn string, retries uint64) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresRepositoryManager(db, retries), nil
}

// NewPostgresRepositoryManager wraps an open *sql.DB.
func NewPostgresRepositoryManager(db *sql.DB, retries uint64) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{db: db, retries: retries}
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, ".")
}

func (m *PostgresRepositoryManager) Accounts() accounts.Repository {
	return accounts.NewPostgresRepository(m.db)
}

// WithinTx runs fn in a READ COMMITTED transaction; row locks taken with
// GetForUpdate serialise writers on the same account. Serialization
// failures and deadlocks rerun fn from scratch with exponential backoff.
func (m *PostgresRepositoryManager) WithinTx(ctx context.Context, fn TxFunc) error {
	backoff := retry.WithMaxRetries(m.retries, retry.NewExponential(10*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return fn(ctx, accounts.NewPostgresRepository(tx))
		})
		if dbx.IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
