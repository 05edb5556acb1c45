// Package accounts stores ledger accounts. Three backends share one
// contract: Postgres for deployments, bbolt for a single-node file store and
// an in-memory map for tests and throwaway runs.
//
// Repositories are bound to a transaction by the repomanager; none of them
// opens transactions on its own.
package accounts

import (
	"context"
	"errors"
	"math"

	"github.com/dmitrijs2005/seedvault/internal/keys"
	"github.com/dmitrijs2005/seedvault/internal/server/models"
)

// ErrOverflow is returned when a balance would not fit the storage column.
var ErrOverflow = errors.New("lamports overflow")

// Repository is the account store seen by the ledger.
type Repository interface {
	// Get returns the account at addr or common.ErrorNotFound.
	Get(ctx context.Context, addr keys.PublicKey) (*models.Account, error)
	// GetForUpdate is Get plus a write lock held until the transaction ends.
	GetForUpdate(ctx context.Context, addr keys.PublicKey) (*models.Account, error)
	// Create inserts acc, failing with common.ErrAccountAlreadyExists when
	// the address is taken.
	Create(ctx context.Context, acc *models.Account) error
	// Update stores the new balance of an existing account.
	Update(ctx context.Context, acc *models.Account) error
	// Delete removes the account at addr.
	Delete(ctx context.Context, addr keys.PublicKey) error
	// Credit adds lamports to addr, creating a system-owned account when
	// none exists, and returns the result.
	Credit(ctx context.Context, addr keys.PublicKey, lamports uint64) (*models.Account, error)
	// List returns every account in a stable order.
	List(ctx context.Context) ([]*models.Account, error)
}

func checkedAdd(a, b uint64) (uint64, error) {
	if b > math.MaxInt64 || a > math.MaxInt64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}
