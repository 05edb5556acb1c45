package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/seedvault/internal/server/repositories/accounts"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestPostgres_ImplementsManager(t *testing.T) {
	db, _ := newDB(t)
	var m RepositoryManager = NewPostgresRepositoryManager(db, 0)
	var _ accounts.Repository = m.Accounts()
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := NewPostgresRepositoryManager(db, 0)
	require.NoError(t, m.RunMigrations(context.Background()))
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := NewPostgresRepositoryManager(db, 0)
	require.EqualError(t, m.RunMigrations(context.Background()), "boom")
}

func TestWithinTx_Commits(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := NewPostgresRepositoryManager(db, 0)
	called := 0
	err := m.WithinTx(context.Background(), func(ctx context.Context, repo accounts.Repository) error {
		called++
		assert.NotNil(t, repo)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, called)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_RetriesSerializationFailure(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	m := NewPostgresRepositoryManager(db, 3)
	attempts := 0
	err := m.WithinTx(context.Background(), func(ctx context.Context, repo accounts.Repository) error {
		attempts++
		if attempts == 1 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_DoesNotRetryOtherErrors(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	m := NewPostgresRepositoryManager(db, 3)
	boom := errors.New("boom")
	attempts := 0
	err := m.WithinTx(context.Background(), func(ctx context.Context, repo accounts.Repository) error {
		attempts++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), Options{Backend: "tape"})
	assert.Error(t, err)
}
