package repomanager

import (
	"context"

	"github.com/dmitrijs2005/seedvault/internal/server/repositories/accounts"
)

// InMemoryRepositoryManager keeps accounts in process memory. State is lost
// on exit.
type InMemoryRepositoryManager struct {
	store *accounts.MemoryStore
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{store: accounts.NewMemoryStore()}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Accounts() accounts.Repository {
	return m.store.Repository()
}

func (m *InMemoryRepositoryManager) WithinTx(ctx context.Context, fn TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.store.Update(func(r *accounts.MemoryRepository) error {
		return fn(ctx, r)
	})
}

func (m *InMemoryRepositoryManager) Close() error { return nil }
