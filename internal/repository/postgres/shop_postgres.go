package postgres

import (
	"context"
	"database/sql"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

const shopColumns = `id, owner_id, name, description, phone, is_active, created_at, updated_at`

// ShopPostgres is a PostgreSQL implementation of repository.ShopRepository.
type ShopPostgres struct {
	db *sql.DB
}

// NewShopPostgres creates a new ShopPostgres repository.
func NewShopPostgres(db *sql.DB) *ShopPostgres {
	return &ShopPostgres{db: db}
}

var _ repository.ShopRepository = (*ShopPostgres)(nil)

func scanShop(row rowScanner) (*model.Shop, error) {
	var s model.Shop
	if err := row.Scan(
		&s.ID,
		&s.OwnerID,
		&s.Name,
		&s.Description,
		&s.Phone,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ShopPostgres) Create(ctx context.Context, s *model.Shop) (*model.Shop, error) {
	const q = `
		INSERT INTO shops (` + shopColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + shopColumns
	out, err := scanShop(r.db.QueryRowContext(ctx, q,
		s.ID,
		s.OwnerID,
		s.Name,
		s.Description,
		s.Phone,
		s.IsActive,
		s.CreatedAt,
		s.UpdatedAt,
	))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *ShopPostgres) FindByID(ctx context.Context, id string) (*model.Shop, error) {
	const q = `SELECT ` + shopColumns + ` FROM shops WHERE id = $1`
	return scanShop(r.db.QueryRowContext(ctx, q, id))
}

func (r *ShopPostgres) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM shops WHERE lower(name) = lower($1) AND id::text <> $2)`
	var taken bool
	err := r.db.QueryRowContext(ctx, q, name, excludeID).Scan(&taken)
	return taken, err
}

// List returns active shops using LIMIT/OFFSET pagination and a total count.
func (r *ShopPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Shop], error) {
	const qCount = `SELECT COUNT(*) FROM shops WHERE is_active`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + shopColumns + `
		FROM shops
		WHERE is_active
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	items, err := r.queryShops(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Shop]{Items: items, Total: total}, nil
}

func (r *ShopPostgres) ListByOwner(ctx context.Context, ownerID string) ([]model.Shop, error) {
	const q = `
		SELECT ` + shopColumns + `
		FROM shops
		WHERE owner_id = $1 AND is_active
		ORDER BY created_at DESC, id DESC
	`
	return r.queryShops(ctx, q, ownerID)
}

func (r *ShopPostgres) queryShops(ctx context.Context, q string, args ...any) ([]model.Shop, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Shop, 0)
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ShopPostgres) Update(ctx context.Context, s *model.Shop) (*model.Shop, error) {
	const q = `
		UPDATE shops
		SET name = $2, description = $3, phone = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + shopColumns
	out, err := scanShop(r.db.QueryRowContext(ctx, q, s.ID, s.Name, s.Description, s.Phone, now()))
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// Deactivate soft-deletes the shop and its products.
func (r *ShopPostgres) Deactivate(ctx context.Context, id string) error {
	const (
		qShop     = `UPDATE shops SET is_active = false, updated_at = $2 WHERE id = $1 AND is_active`
		qProducts = `UPDATE products SET is_active = false, updated_at = $2 WHERE shop_id = $1 AND is_active`
	)
	ts := now()
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, qShop, id, ts)
		if err != nil {
			return err
		}
		if err := mustAffect(res); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, qProducts, id, ts)
		return err
	})
}
