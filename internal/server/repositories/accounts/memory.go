package accounts

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/seedvault/internal/common"
	"github.com/dmitrijs2005/seedvault/internal/keys"
	"github.com/dmitrijs2005/seedvault/internal/server/models"
)

// MemoryStore keeps accounts in a map. Writers are serialised and work on a
// private copy that replaces the live map only when they succeed.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[keys.PublicKey]models.Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: map[keys.PublicKey]models.Account{}}
}

// Update runs fn against a copy of the store and publishes the copy if fn
// returns nil. A failing or panicking fn leaves the store untouched.
func (s *MemoryStore) Update(fn func(r *MemoryRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := maps.Clone(s.accounts)
	if err := fn(&MemoryRepository{accounts: work}); err != nil {
		return err
	}
	s.accounts = work
	return nil
}

// View runs fn against the live map with writes refused.
func (s *MemoryStore) View(fn func(r *MemoryRepository) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&MemoryRepository{accounts: s.accounts, readOnly: true})
}

// Repository returns an auto-committing view: each call is its own
// transaction.
func (s *MemoryStore) Repository() Repository {
	return memoryAutoCommit{s: s}
}

// MemoryRepository is a Repository over one transaction's copy of the map.
type MemoryRepository struct {
	accounts map[keys.PublicKey]models.Account
	readOnly bool
}

var errReadOnly = fmt.Errorf("%w: write in read-only transaction", common.ErrorInternal)

func (r *MemoryRepository) Get(_ context.Context, addr keys.PublicKey) (*models.Account, error) {
	acc, ok := r.accounts[addr]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &acc, nil
}

// GetForUpdate is Get: the writer already holds the store exclusively.
func (r *MemoryRepository) GetForUpdate(ctx context.Context, addr keys.PublicKey) (*models.Account, error) {
	return r.Get(ctx, addr)
}

func (r *MemoryRepository) Create(_ context.Context, acc *models.Account) error {
	if r.readOnly {
		return errReadOnly
	}
	if _, ok := r.accounts[acc.Address]; ok {
		return fmt.Errorf("%w: %s", common.ErrAccountAlreadyExists, acc.Address)
	}
	if _, err := checkedAdd(acc.Lamports, 0); err != nil {
		return err
	}
	now := time.Now().UTC()
	acc.CreatedAt, acc.UpdatedAt = now, now
	r.accounts[acc.Address] = *acc
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, acc *models.Account) error {
	if r.readOnly {
		return errReadOnly
	}
	cur, ok := r.accounts[acc.Address]
	if !ok {
		return common.ErrorNotFound
	}
	if _, err := checkedAdd(acc.Lamports, 0); err != nil {
		return err
	}
	cur.Lamports = acc.Lamports
	cur.UpdatedAt = time.Now().UTC()
	acc.UpdatedAt = cur.UpdatedAt
	r.accounts[acc.Address] = cur
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, addr keys.PublicKey) error {
	if r.readOnly {
		return errReadOnly
	}
	if _, ok := r.accounts[addr]; !ok {
		return common.ErrorNotFound
	}
	delete(r.accounts, addr)
	return nil
}

func (r *MemoryRepository) Credit(_ context.Context, addr keys.PublicKey, lamports uint64) (*models.Account, error) {
	if r.readOnly {
		return nil, errReadOnly
	}
	now := time.Now().UTC()
	acc, ok := r.accounts[addr]
	if !ok {
		acc = models.Account{Address: addr, CreatedAt: now}
	}
	sum, err := checkedAdd(acc.Lamports, lamports)
	if err != nil {
		return nil, err
	}
	acc.Lamports = sum
	acc.UpdatedAt = now
	r.accounts[addr] = acc
	return &acc, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.Account, error) {
	out := make([]*models.Account, 0, len(r.accounts))
	for _, acc := range r.accounts {
		out = append(out, &acc)
	}
	slices.SortFunc(out, func(a, b *models.Account) int {
		return bytes.Compare(a.Address[:], b.Address[:])
	})
	return out, nil
}

type memoryAutoCommit struct {
	s *MemoryStore
}

func (m memoryAutoCommit) Get(ctx context.Context, addr keys.PublicKey) (acc *models.Account, err error) {
	err = m.s.View(func(r *MemoryRepository) error {
		acc, err = r.Get(ctx, addr)
		return err
	})
	return acc, err
}

func (m memoryAutoCommit) GetForUpdate(ctx context.Context, addr keys.PublicKey) (*models.Account, error) {
	return m.Get(ctx, addr)
}

func (m memoryAutoCommit) Create(ctx context.Context, acc *models.Account) error {
	return m.s.Update(func(r *MemoryRepository) error { return r.Create(ctx, acc) })
}

func (m memoryAutoCommit) Update(ctx context.Context, acc *models.Account) error {
	return m.s.Update(func(r *MemoryRepository) error { return r.Update(ctx, acc) })
}

func (m memoryAutoCommit) Delete(ctx context.Context, addr keys.PublicKey) error {
	return m.s.Update(func(r *MemoryRepository) error { return r.Delete(ctx, addr) })
}

func (m memoryAutoCommit) Credit(ctx context.Context, addr keys.PublicKey, lamports uint64) (acc *models.Account, err error) {
	err = m.s.Update(func(r *MemoryRepository) error {
		acc, err = r.Credit(ctx, addr, lamports)
		return err
	})
	return acc, err
}

func (m memoryAutoCommit) List(ctx context.Context) (out []*models.Account, err error) {
	err = m.s.View(func(r *MemoryRepository) error {
		out, err = r.List(ctx)
		return err
	})
	return out, err
}
