package repomanager

import (
	"context"

	"github.com/dmitrijs2005/seedvault/internal/server/repositories/accounts"
)

// BoltRepositoryManager serves accounts from a single bbolt file.
type BoltRepositoryManager struct {
	store *accounts.BoltStore
}

func NewBoltRepositoryManager(path string) (*BoltRepositoryManager, error) {
	s, err := accounts.OpenBolt(path)
	if err != nil {
		return nil, err
	}
	return &BoltRepositoryManager{store: s}, nil
}

func (m *BoltRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *BoltRepositoryManager) Accounts() accounts.Repository {
	return m.store.Repository()
}

func (m *BoltRepositoryManager) WithinTx(ctx context.Context, fn TxFunc) error {
	return m.store.Update(func(r *accounts.BoltRepository) error {
		return fn(ctx, r)
	})
}

func (m *BoltRepositoryManager) Close() error {
	return m.store.Close()
}
