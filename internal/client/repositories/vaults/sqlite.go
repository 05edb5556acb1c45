package vaults

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/seedvault/internal/common"
	"github.com/dmitrijs2005/seedvault/internal/dbx"
	"github.com/dmitrijs2005/seedvault/internal/keys"
)

// SQLiteRepository implements Repository over a DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save upserts by address. Lamports are stored as decimal text because
// SQLite integers are signed 64-bit.
func (r *SQLiteRepository) Save(ctx context.Context, rec *Record) error {
	query := `INSERT INTO vaults (address, depositor, seed, bump, lamports, closed, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(address) DO UPDATE SET depositor = excluded.depositor,
				seed = excluded.seed,
				bump = excluded.bump,
				lamports = excluded.lamports,
				closed = excluded.closed,
				updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		rec.Address.String(), rec.Depositor.String(), rec.Seed.String(), int64(rec.Bump),
		strconv.FormatUint(rec.Lamports, 10), rec.Closed, rec.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save vault: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkClosed(ctx context.Context, address keys.PublicKey, at time.Time) error {
	query := `UPDATE vaults SET closed = 1, lamports = '0', updated_at = ? WHERE address = ? AND closed = 0`
	res, err := r.db.ExecContext(ctx, query, at.Unix(), address.String())
	if err != nil {
		return fmt.Errorf("failed to close vault: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListByDepositor(ctx context.Context, depositor keys.PublicKey) ([]Record, error) {
	query := `SELECT address, depositor, seed, bump, lamports, closed, updated_at
			FROM vaults WHERE depositor = ? ORDER BY closed, updated_at DESC, address`
	rows, err := r.db.QueryContext(ctx, query, depositor.String())
	if err != nil {
		return nil, fmt.Errorf("failed to select vaults: %w", err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var (
			address, dep, seed, lamports string
			bump, updated               int64
			closed                      bool
		)
		if err := rows.Scan(&address, &dep, &seed, &bump, &lamports, &closed, &updated); err != nil {
			return nil, err
		}
		rec, err := decode(address, dep, seed, bump, lamports, closed, updated)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func decode(address, depositor, seed string, bump int64, lamports string, closed bool, updated int64) (Record, error) {
	var (
		rec Record
		err error
	)
	if rec.Address, err = keys.Parse(address); err != nil {
		return Record{}, fmt.Errorf("address: %w", err)
	}
	if rec.Depositor, err = keys.Parse(depositor); err != nil {
		return Record{}, fmt.Errorf("depositor: %w", err)
	}
	if rec.Seed, err = keys.Parse(seed); err != nil {
		return Record{}, fmt.Errorf("seed: %w", err)
	}
	if bump < 0 || bump > 255 {
		return Record{}, fmt.Errorf("bump out of range: %d", bump)
	}
	rec.Bump = uint8(bump)
	if rec.Lamports, err = strconv.ParseUint(lamports, 10, 64); err != nil {
		return Record{}, fmt.Errorf("lamports: %w", err)
	}
	rec.Closed = closed
	rec.UpdatedAt = time.Unix(updated, 0).UTC()
	return rec, nil
}
