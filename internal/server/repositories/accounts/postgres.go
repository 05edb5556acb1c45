package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/seedvault/internal/common"
	"github.com/dmitrijs2005/seedvault/internal/dbx"
	"github.com/dmitrijs2005/seedvault/internal/keys"
	"github.com/dmitrijs2005/seedvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		addr, owner     string
		lamports, space int64
		created, update time.Time
	)
	if err := row.Scan(&addr, &lamports, &owner, &space, &created, &update); err != nil {
		return nil, err
	}

	a := &models.Account{Lamports: uint64(lamports), Space: uint64(space), CreatedAt: created, UpdatedAt: update}
	var err error
	if a.Address, err = keys.Parse(addr); err != nil {
		return nil, fmt.Errorf("stored address: %w", err)
	}
	if a.Owner, err = keys.Parse(owner); err != nil {
		return nil, fmt.Errorf("stored owner: %w", err)
	}
	return a, nil
}

func toBigint(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, ErrOverflow
	}
	return int64(v), nil
}

func (r *PostgresRepository) get(ctx context.Context, query string, addr keys.PublicKey) (*models.Account, error) {
	acc, err := scanAccount(r.db.QueryRowContext(ctx, query, addr.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return acc, nil
}

func (r *PostgresRepository) Get(ctx context.Context, addr keys.PublicKey) (*models.Account, error) {
	query :=
		`SELECT address, lamports, owner, space, created_at, updated_at FROM accounts
		 WHERE address = $1`
	return r.get(ctx, query, addr)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, addr keys.PublicKey) (*models.Account, error) {
	query :=
		`SELECT address, lamports, owner, space, created_at, updated_at FROM accounts
		 WHERE address = $1
		 FOR UPDATE`
	return r.get(ctx, query, addr)
}

func (r *PostgresRepository) Create(ctx context.Context, acc *models.Account) error {
	lamports, err := toBigint(acc.Lamports)
	if err != nil {
		return err
	}
	space, err := toBigint(acc.Space)
	if err != nil {
		return err
	}

	query :=
		`INSERT INTO accounts (address, lamports, owner, space)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (address) DO NOTHING
		 RETURNING created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query, acc.Address.String(), lamports, acc.Owner.String(), space).
		Scan(&acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", common.ErrAccountAlreadyExists, acc.Address)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, acc *models.Account) error {
	lamports, err := toBigint(acc.Lamports)
	if err != nil {
		return err
	}

	query :=
		`UPDATE accounts SET lamports = $2, updated_at = now()
		 WHERE address = $1
		 RETURNING updated_at`

	err = r.db.QueryRowContext(ctx, query, acc.Address.String(), lamports).Scan(&acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, addr keys.PublicKey) error {
	query := `DELETE FROM accounts WHERE address = $1`

	res, err := r.db.ExecContext(ctx, query, addr.String())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Credit(ctx context.Context, addr keys.PublicKey, lamports uint64) (*models.Account, error) {
	n, err := toBigint(lamports)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO accounts (address, lamports, owner, space)
		 VALUES ($1, $2, $3, 0)
		 ON CONFLICT (address) DO UPDATE
		 SET lamports = accounts.lamports + EXCLUDED.lamports, updated_at = now()
		 RETURNING address, lamports, owner, space, created_at, updated_at`

	acc, err := scanAccount(r.db.QueryRowContext(ctx, query, addr.String(), n, keys.Zero.String()))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return acc, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Account, error) {
	query :=
		`SELECT address, lamports, owner, space, created_at, updated_at FROM accounts
		 ORDER BY address`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
