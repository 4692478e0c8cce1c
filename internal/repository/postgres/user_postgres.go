package postgres

import (
	"context"
	"database/sql"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

const userColumns = `id, email, first_name, last_name, phone, is_active, created_at, updated_at`

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts the user and its security row in one transaction.
func (r *UserPostgres) Create(ctx context.Context, u *model.User, passwordHash string) (*model.User, error) {
	const qUser = `
		INSERT INTO users (id, email, first_name, last_name, phone, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	const qSecurity = `
		INSERT INTO security (user_id, password_hash, updated_at)
		VALUES ($1, $2, $3)
	`
	var out *model.User
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		out, err = scanUser(tx.QueryRowContext(ctx, qUser,
			u.ID,
			u.Email,
			u.FirstName,
			u.LastName,
			u.Phone,
			u.IsActive,
			u.CreatedAt,
			u.UpdatedAt,
		))
		if err != nil {
			return mapError(err)
		}
		if _, err := tx.ExecContext(ctx, qSecurity, out.ID, passwordHash, u.CreatedAt); err != nil {
			return mapError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single user by its ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a single user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *UserPostgres) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id::text <> $2)`
	var taken bool
	err := r.db.QueryRowContext(ctx, q, email, excludeID).Scan(&taken)
	return taken, err
}

func (r *UserPostgres) PhoneTaken(ctx context.Context, phone, excludeID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE phone = $1 AND id::text <> $2)`
	var taken bool
	err := r.db.QueryRowContext(ctx, q, phone, excludeID).Scan(&taken)
	return taken, err
}

func (r *UserPostgres) PasswordHash(ctx context.Context, userID string) (string, error) {
	const q = `SELECT password_hash FROM security WHERE user_id = $1`
	var hash string
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&hash); err != nil {
		return "", err
	}
	return hash, nil
}

func (r *UserPostgres) UpdatePassword(ctx context.Context, userID, hash string) error {
	const q = `UPDATE security SET password_hash = $2, updated_at = $3 WHERE user_id = $1`
	res, err := r.db.ExecContext(ctx, q, userID, hash, now())
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// UpdateProfile writes the editable profile fields.
func (r *UserPostgres) UpdateProfile(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		UPDATE users
		SET first_name = $2, last_name = $3, phone = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + userColumns
	out, err := scanUser(r.db.QueryRowContext(ctx, q, u.ID, u.FirstName, u.LastName, u.Phone, now()))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// Deactivate soft-deletes the user with everything it sells.
func (r *UserPostgres) Deactivate(ctx context.Context, userID string) error {
	const (
		qUser     = `UPDATE users SET is_active = false, updated_at = $2 WHERE id = $1 AND is_active`
		qProducts = `
			UPDATE products SET is_active = false, updated_at = $2
			WHERE is_active AND shop_id IN (SELECT id FROM shops WHERE owner_id = $1)`
		qShops = `UPDATE shops SET is_active = false, updated_at = $2 WHERE owner_id = $1 AND is_active`
	)
	ts := now()
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, qUser, userID, ts)
		if err != nil {
			return err
		}
		if err := mustAffect(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, qProducts, userID, ts); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, qShops, userID, ts)
		return err
	})
}
