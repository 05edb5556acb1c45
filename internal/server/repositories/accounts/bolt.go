package accounts

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/dmitrijs2005/seedvault/internal/common"
	"github.com/dmitrijs2005/seedvault/internal/filex"
	"github.com/dmitrijs2005/seedvault/internal/keys"
	"github.com/dmitrijs2005/seedvault/internal/server/models"
)

var bucketAccounts = []byte("accounts_by_address")

// record layout, all integers little-endian:
// lamports u64 | owner [32] | space u64 | created_at unix-nano i64 | updated_at unix-nano i64
const recordSize = 8 + keys.Size + 8 + 8 + 8

func encodeAccount(a *models.Account) []byte {
	out := make([]byte, recordSize)
	off := 0
	binary.LittleEndian.PutUint64(out[off:], a.Lamports)
	off += 8
	copy(out[off:off+keys.Size], a.Owner[:])
	off += keys.Size
	binary.LittleEndian.PutUint64(out[off:], a.Space)
	off += 8
	binary.LittleEndian.PutUint64(out[off:], uint64(a.CreatedAt.UnixNano()))
	off += 8
	binary.LittleEndian.PutUint64(out[off:], uint64(a.UpdatedAt.UnixNano()))
	return out
}

func decodeAccount(key, b []byte) (*models.Account, error) {
	if len(b) != recordSize {
		return nil, fmt.Errorf("account: expected %d bytes, got %d", recordSize, len(b))
	}
	addr, err := keys.FromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("account key: %w", err)
	}

	a := &models.Account{Address: addr}
	off := 0
	a.Lamports = binary.LittleEndian.Uint64(b[off:])
	off += 8
	copy(a.Owner[:], b[off:off+keys.Size])
	off += keys.Size
	a.Space = binary.LittleEndian.Uint64(b[off:])
	off += 8
	a.CreatedAt = time.Unix(0, int64(binary.LittleEndian.Uint64(b[off:]))).UTC()
	off += 8
	a.UpdatedAt = time.Unix(0, int64(binary.LittleEndian.Uint64(b[off:]))).UTC()
	return a, nil
}

// BoltStore is a single-file account store. bbolt allows one writer at a
// time, which serialises every ledger transition.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the store at path.
func OpenBolt(path string) (*BoltStore, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt path required")
	}
	if _, err := filex.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketAccounts)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Update runs fn in a read-write bbolt transaction.
func (s *BoltStore) Update(fn func(r *BoltRepository) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(NewBoltRepository(tx))
	})
}

// View runs fn in a read-only bbolt transaction.
func (s *BoltStore) View(fn func(r *BoltRepository) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return fn(NewBoltRepository(tx))
	})
}

// Repository returns an auto-committing view over the store.
func (s *BoltStore) Repository() Repository {
	return boltAutoCommit{s: s}
}

// BoltRepository is a Repository bound to one bbolt transaction.
type BoltRepository struct {
	tx *bolt.Tx
}

func NewBoltRepository(tx *bolt.Tx) *BoltRepository {
	return &BoltRepository{tx: tx}
}

func (r *BoltRepository) bucket() (*bolt.Bucket, error) {
	b := r.tx.Bucket(bucketAccounts)
	if b == nil {
		return nil, fmt.Errorf("%w: bucket %s missing", common.ErrorInternal, bucketAccounts)
	}
	return b, nil
}

func (r *BoltRepository) Get(_ context.Context, addr keys.PublicKey) (*models.Account, error) {
	b, err := r.bucket()
	if err != nil {
		return nil, err
	}
	v := b.Get(addr[:])
	if v == nil {
		return nil, common.ErrorNotFound
	}
	return decodeAccount(addr[:], v)
}

// GetForUpdate is Get: bbolt write transactions are already exclusive.
func (r *BoltRepository) GetForUpdate(ctx context.Context, addr keys.PublicKey) (*models.Account, error) {
	return r.Get(ctx, addr)
}

func (r *BoltRepository) put(b *bolt.Bucket, a *models.Account) error {
	if err := b.Put(a.Address[:], encodeAccount(a)); err != nil {
		return fmt.Errorf("bolt put: %w", err)
	}
	return nil
}

func (r *BoltRepository) Create(_ context.Context, acc *models.Account) error {
	b, err := r.bucket()
	if err != nil {
		return err
	}
	if b.Get(acc.Address[:]) != nil {
		return fmt.Errorf("%w: %s", common.ErrAccountAlreadyExists, acc.Address)
	}
	if _, err := checkedAdd(acc.Lamports, 0); err != nil {
		return err
	}
	now := time.Now().UTC()
	acc.CreatedAt, acc.UpdatedAt = now, now
	return r.put(b, acc)
}

func (r *BoltRepository) Update(ctx context.Context, acc *models.Account) error {
	cur, err := r.Get(ctx, acc.Address)
	if err != nil {
		return err
	}
	if _, err := checkedAdd(acc.Lamports, 0); err != nil {
		return err
	}
	b, err := r.bucket()
	if err != nil {
		return err
	}
	cur.Lamports = acc.Lamports
	cur.UpdatedAt = time.Now().UTC()
	acc.UpdatedAt = cur.UpdatedAt
	return r.put(b, cur)
}

func (r *BoltRepository) Delete(_ context.Context, addr keys.PublicKey) error {
	b, err := r.bucket()
	if err != nil {
		return err
	}
	if b.Get(addr[:]) == nil {
		return common.ErrorNotFound
	}
	if err := b.Delete(addr[:]); err != nil {
		return fmt.Errorf("bolt delete: %w", err)
	}
	return nil
}

func (r *BoltRepository) Credit(ctx context.Context, addr keys.PublicKey, lamports uint64) (*models.Account, error) {
	b, err := r.bucket()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	acc, err := r.Get(ctx, addr)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorNotFound):
		acc = &models.Account{Address: addr, CreatedAt: now}
	default:
		return nil, err
	}

	sum, err := checkedAdd(acc.Lamports, lamports)
	if err != nil {
		return nil, err
	}
	acc.Lamports = sum
	acc.UpdatedAt = now
	if err := r.put(b, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func (r *BoltRepository) List(_ context.Context) ([]*models.Account, error) {
	b, err := r.bucket()
	if err != nil {
		return nil, err
	}
	var out []*models.Account
	err = b.ForEach(func(k, v []byte) error {
		acc, err := decodeAccount(k, v)
		if err != nil {
			return err
		}
		out = append(out, acc)
		return nil
	})
	return out, err
}

type boltAutoCommit struct {
	s *BoltStore
}

func (m boltAutoCommit) Get(ctx context.Context, addr keys.PublicKey) (acc *models.Account, err error) {
	err = m.s.View(func(r *BoltRepository) error {
		acc, err = r.Get(ctx, addr)
		return err
	})
	return acc, err
}

func (m boltAutoCommit) GetForUpdate(ctx context.Context, addr keys.PublicKey) (*models.Account, error) {
	return m.Get(ctx, addr)
}

func (m boltAutoCommit) Create(ctx context.Context, acc *models.Account) error {
	return m.s.Update(func(r *BoltRepository) error { return r.Create(ctx, acc) })
}

func (m boltAutoCommit) Update(ctx context.Context, acc *models.Account) error {
	return m.s.Update(func(r *BoltRepository) error { return r.Update(ctx, acc) })
}

func (m boltAutoCommit) Delete(ctx context.Context, addr keys.PublicKey) error {
	return m.s.Update(func(r *BoltRepository) error { return r.Delete(ctx, addr) })
}

func (m boltAutoCommit) Credit(ctx context.Context, addr keys.PublicKey, lamports uint64) (acc *models.Account, err error) {
	err = m.s.Update(func(r *BoltRepository) error {
		acc, err = r.Credit(ctx, addr, lamports)
		return err
	})
	return acc, err
}

func (m boltAutoCommit) List(ctx context.Context) (out []*models.Account, err error) {
	err = m.s.View(func(r *BoltRepository) error {
		out, err = r.List(ctx)
		return err
	})
	return out, err
}
