package postgres

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopapi/internal/repository"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestMapError(t *testing.T) {
	err := mapError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"})
	assert.True(t, errors.Is(err, repository.ErrDuplicate))
	assert.Contains(t, err.Error(), "users_email_key")

	other := &pgconn.PgError{Code: "23503"}
	assert.Same(t, other, mapError(other))

	plain := errors.New("boom")
	assert.Equal(t, plain, mapError(plain))
}

func TestMustAffect(t *testing.T) {
	assert.NoError(t, mustAffect(sqlmock.NewResult(0, 1)))
	assert.ErrorIs(t, mustAffect(sqlmock.NewResult(0, 0)), sql.ErrNoRows)
	assert.Error(t, mustAffect(sqlmock.NewErrorResult(errors.New("no rows affected info"))))
}

func TestWithTx(t *testing.T) {
	db, mock := newMock(t)

	t.Run("commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit()
		require.NoError(t, withTx(t.Context(), db, func(*sql.Tx) error { return nil }))
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback()
		err := withTx(t.Context(), db, func(*sql.Tx) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("begin fails", func(t *testing.T) {
		mock.ExpectBegin().WillReturnError(errors.New("conn refused"))
		err := withTx(t.Context(), db, func(*sql.Tx) error { return nil })
		assert.ErrorContains(t, err, "begin tx")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
