package accounts

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/seedvault/internal/common"
	"github.com/dmitrijs2005/seedvault/internal/keys"
	"github.com/dmitrijs2005/seedvault/internal/server/models"
)

func key(b byte) keys.PublicKey {
	var k keys.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}

type txStore interface {
	Repository() Repository
	update(fn func(r Repository) error) error
}

type memoryTxStore struct{ *MemoryStore }

func (s memoryTxStore) update(fn func(Repository) error) error {
	return s.Update(func(r *MemoryRepository) error { return fn(r) })
}

type boltTxStore struct{ *BoltStore }

func (s boltTxStore) update(fn func(Repository) error) error {
	return s.Update(func(r *BoltRepository) error { return fn(r) })
}

func stores(t *testing.T) map[string]txStore {
	t.Helper()
	b, err := OpenBolt(filepath.Join(t.TempDir(), "data", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	return map[string]txStore{
		"memory": memoryTxStore{NewMemoryStore()},
		"bolt":   boltTxStore{b},
	}
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			repo := s.Repository()
			addr, owner := key(1), key(2)

			_, err := repo.Get(ctx, addr)
			require.ErrorIs(t, err, common.ErrorNotFound)

			acc := &models.Account{Address: addr, Lamports: 100, Owner: owner}
			require.NoError(t, repo.Create(ctx, acc))
			assert.False(t, acc.CreatedAt.IsZero())

			err = repo.Create(ctx, &models.Account{Address: addr})
			require.ErrorIs(t, err, common.ErrAccountAlreadyExists)

			got, err := repo.Get(ctx, addr)
			require.NoError(t, err)
			assert.Equal(t, uint64(100), got.Lamports)
			assert.Equal(t, owner, got.Owner)

			got.Lamports = 40
			require.NoError(t, repo.Update(ctx, got))
			got, err = repo.GetForUpdate(ctx, addr)
			require.NoError(t, err)
			assert.Equal(t, uint64(40), got.Lamports)
			assert.Equal(t, owner, got.Owner, "update must not touch the owner")

			require.NoError(t, repo.Delete(ctx, addr))
			require.ErrorIs(t, repo.Delete(ctx, addr), common.ErrorNotFound)
			require.ErrorIs(t, repo.Update(ctx, got), common.ErrorNotFound)
		})
	}
}

func TestStore_Credit(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			repo := s.Repository()

			acc, err := repo.Credit(ctx, key(3), 500)
			require.NoError(t, err)
			assert.Equal(t, uint64(500), acc.Lamports)
			assert.Equal(t, keys.Zero, acc.Owner)

			acc, err = repo.Credit(ctx, key(3), 250)
			require.NoError(t, err)
			assert.Equal(t, uint64(750), acc.Lamports)

			_, err = repo.Credit(ctx, key(3), math.MaxInt64)
			require.ErrorIs(t, err, ErrOverflow)

			got, err := repo.Get(ctx, key(3))
			require.NoError(t, err)
			assert.Equal(t, uint64(750), got.Lamports, "failed credit must not change the balance")
		})
	}
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			repo := s.Repository()
			for _, b := range []byte{9, 4, 7} {
				require.NoError(t, repo.Create(ctx, &models.Account{Address: key(b), Lamports: uint64(b)}))
			}

			list, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, key(4), list[0].Address)
			assert.Equal(t, key(7), list[1].Address)
			assert.Equal(t, key(9), list[2].Address)
		})
	}
}

func TestStore_UpdateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Repository().Create(ctx, &models.Account{Address: key(1), Lamports: 10}))

			boom := errors.New("boom")
			err := s.update(func(r Repository) error {
				require.NoError(t, r.Create(ctx, &models.Account{Address: key(2), Lamports: 5}))
				acc, err := r.GetForUpdate(ctx, key(1))
				require.NoError(t, err)
				acc.Lamports = 0
				require.NoError(t, r.Update(ctx, acc))
				return boom
			})
			require.ErrorIs(t, err, boom)

			_, err = s.Repository().Get(ctx, key(2))
			assert.ErrorIs(t, err, common.ErrorNotFound)
			acc, err := s.Repository().Get(ctx, key(1))
			require.NoError(t, err)
			assert.Equal(t, uint64(10), acc.Lamports)
		})
	}
}

func TestStore_UpdateCommits(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.update(func(r Repository) error {
				return r.Create(ctx, &models.Account{Address: key(5), Lamports: 1})
			})
			require.NoError(t, err)

			_, err = s.Repository().Get(ctx, key(5))
			assert.NoError(t, err)
		})
	}
}

func TestMemoryStore_ViewIsReadOnly(t *testing.T) {
	s := NewMemoryStore()
	err := s.View(func(r *MemoryRepository) error {
		return r.Create(context.Background(), &models.Account{Address: key(1)})
	})
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestBoltStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, s.Repository().Create(ctx, &models.Account{Address: key(8), Lamports: 77, Owner: key(6), Space: 3}))
	require.NoError(t, s.Close())

	s, err = OpenBolt(path)
	require.NoError(t, err)
	defer s.Close()

	acc, err := s.Repository().Get(ctx, key(8))
	require.NoError(t, err)
	assert.Equal(t, uint64(77), acc.Lamports)
	assert.Equal(t, key(6), acc.Owner)
	assert.Equal(t, uint64(3), acc.Space)
}

func TestDecodeAccount_Truncated(t *testing.T) {
	_, err := decodeAccount(make([]byte, keys.Size), make([]byte, recordSize-1))
	assert.Error(t, err)

	_, err = decodeAccount(make([]byte, 3), make([]byte, recordSize))
	assert.Error(t, err)
}

func TestOpenBolt_EmptyPath(t *testing.T) {
	_, err := OpenBolt("")
	assert.Error(t, err)
}
