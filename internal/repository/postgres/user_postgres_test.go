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

var userCols = []string{"id", "email", "first_name", "last_name", "phone", "is_active", "created_at", "updated_at"}

func testUser() *model.User {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.User{
		ID:        "u-1",
		Email:     "olena@example.com",
		FirstName: "Олена",
		LastName:  "Коваленко",
		Phone:     "+380501234567",
		IsActive:  true,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func userRow(u *model.User) *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow(u.ID, u.Email, u.FirstName, u.LastName, u.Phone, u.IsActive, u.CreatedAt, u.UpdatedAt)
}

func TestUserPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)
	ctx := context.Background()
	u := testUser()

	t.Run("success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO users").
			WithArgs(u.ID, u.Email, u.FirstName, u.LastName, u.Phone, u.IsActive, u.CreatedAt, u.UpdatedAt).
			WillReturnRows(userRow(u))
		mock.ExpectExec("INSERT INTO security").
			WithArgs(u.ID, "hash", u.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		out, err := repo.Create(ctx, u, "hash")
		require.NoError(t, err)
		assert.Equal(t, u.Email, out.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
		mock.ExpectRollback()

		out, err := repo.Create(ctx, u, "hash")
		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.Nil(t, out)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)
	u := testUser()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ?").
			WithArgs(u.Email).
			WillReturnRows(userRow(u))

		out, err := repo.FindByEmail(context.Background(), u.Email)
		require.NoError(t, err)
		assert.Equal(t, u.ID, out.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = ?").
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		out, err := repo.FindByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, out)
	})
}

func TestUserPostgres_Taken(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)

	mock.ExpectQuery("SELECT EXISTS (.+) FROM users WHERE email").
		WithArgs("a@b.ua", "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS (.+) FROM users WHERE phone").
		WithArgs("+380501234567", "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	taken, err := repo.EmailTaken(context.Background(), "a@b.ua", "")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.PhoneTaken(context.Background(), "+380501234567", "u-1")
	require.NoError(t, err)
	assert.False(t, taken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_Password(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT password_hash FROM security").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"password_hash"}).AddRow("$2a$hash"))
	hash, err := repo.PasswordHash(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "$2a$hash", hash)

	mock.ExpectExec("UPDATE security SET password_hash").
		WithArgs("u-1", "new", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.UpdatePassword(ctx, "u-1", "new"))

	mock.ExpectExec("UPDATE security SET password_hash").
		WithArgs("u-2", "new", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdatePassword(ctx, "u-2", "new"), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_UpdateProfile(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)
	u := testUser()
	u.FirstName = "Ганна"

	mock.ExpectQuery("UPDATE users").
		WithArgs(u.ID, u.FirstName, u.LastName, u.Phone, sqlmock.AnyArg()).
		WillReturnRows(userRow(u))

	out, err := repo.UpdateProfile(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "Ганна", out.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_Deactivate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("cascades", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE users SET is_active = false").
			WithArgs("u-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE products SET is_active = false").
			WithArgs("u-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec("UPDATE shops SET is_active = false").
			WithArgs("u-1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Deactivate(ctx, "u-1"))
	})

	t.Run("already inactive", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE users SET is_active = false").
			WithArgs("u-2", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Deactivate(ctx, "u-2"), sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryPostgres(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDeliveryPostgres(db)
	ctx := context.Background()
	cols := []string{"user_id", "first_name", "last_name", "phone", "city", "post_service", "post_office", "updated_at"}
	d := &model.DeliveryInfo{
		UserID:      "u-1",
		FirstName:   "Олена",
		LastName:    "Коваленко",
		Phone:       "+380501234567",
		City:        "Київ",
		PostService: model.PostServiceNovaPoshta,
		PostOffice:  12,
	}

	mock.ExpectQuery("INSERT INTO delivery_user_info (.+) ON CONFLICT").
		WithArgs(d.UserID, d.FirstName, d.LastName, d.Phone, d.City, d.PostService, d.PostOffice, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(d.UserID, d.FirstName, d.LastName, d.Phone, d.City, d.PostService, d.PostOffice, time.Now()))

	out, err := repo.Upsert(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, "Київ", out.City)

	mock.ExpectQuery("SELECT (.+) FROM delivery_user_info WHERE user_id = ?").
		WithArgs("u-2").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.Find(ctx, "u-2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
