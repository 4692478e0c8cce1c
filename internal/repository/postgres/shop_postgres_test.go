package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

var shopCols = []string{"id", "owner_id", "name", "description", "phone", "is_active", "created_at", "updated_at"}

func testShop() *model.Shop {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.Shop{
		ID:          "s-1",
		OwnerID:     "u-1",
		Name:        "Смачна крамниця",
		Description: "Домашня випічка",
		Phone:       "+380501234567",
		IsActive:    true,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func shopRows(shops ...*model.Shop) *sqlmock.Rows {
	rows := sqlmock.NewRows(shopCols)
	for _, s := range shops {
		rows.AddRow(s.ID, s.OwnerID, s.Name, s.Description, s.Phone, s.IsActive, s.CreatedAt, s.UpdatedAt)
	}
	return rows
}

func TestShopPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShopPostgres(db)
	s := testShop()

	mock.ExpectQuery("INSERT INTO shops").
		WithArgs(s.ID, s.OwnerID, s.Name, s.Description, s.Phone, s.IsActive, s.CreatedAt, s.UpdatedAt).
		WillReturnRows(shopRows(s))

	out, err := repo.Create(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, s.Name, out.Name)

	mock.ExpectQuery("INSERT INTO shops").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "shops_name_lower_idx"})

	_, err = repo.Create(context.Background(), s)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShopPostgres_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShopPostgres(db)
	s := testShop()
	s.IsActive = false

	mock.ExpectQuery("SELECT (.+) FROM shops WHERE id = ?").
		WithArgs(s.ID).
		WillReturnRows(shopRows(s))

	out, err := repo.FindByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.False(t, out.IsActive)

	mock.ExpectQuery("SELECT (.+) FROM shops WHERE id = ?").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestShopPostgres_NameTaken(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShopPostgres(db)

	mock.ExpectQuery("SELECT EXISTS (.+) lower\\(name\\) = lower\\(\\$1\\)").
		WithArgs("СМАЧНА КРАМНИЦЯ", "s-2").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.NameTaken(context.Background(), "СМАЧНА КРАМНИЦЯ", "s-2")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestShopPostgres_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShopPostgres(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM shops WHERE is_active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery("SELECT (.+) FROM shops WHERE is_active ORDER BY").
		WithArgs(5, 5).
		WillReturnRows(shopRows(testShop()))

	res, err := repo.List(context.Background(), repository.PageQuery{Limit: 5, Offset: 5})
	require.NoError(t, err)
	assert.Equal(t, 7, res.Total)
	assert.Len(t, res.Items, 1)

	mock.ExpectQuery("SELECT (.+) FROM shops WHERE owner_id = ?").
		WithArgs("u-9").
		WillReturnRows(shopRows())

	mine, err := repo.ListByOwner(context.Background(), "u-9")
	require.NoError(t, err)
	assert.NotNil(t, mine)
	assert.Empty(t, mine)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShopPostgres_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShopPostgres(db)
	s := testShop()

	mock.ExpectQuery("UPDATE shops SET name").
		WithArgs(s.ID, s.Name, s.Description, s.Phone, sqlmock.AnyArg()).
		WillReturnRows(shopRows(s))

	out, err := repo.Update(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, s.ID, out.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShopPostgres_Deactivate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewShopPostgres(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE shops SET is_active = false").
		WithArgs("s-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products SET is_active = false").
		WithArgs("s-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	assert.NoError(t, repo.Deactivate(context.Background(), "s-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
