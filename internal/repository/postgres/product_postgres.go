package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

const productViewColumns = `
	p.id, p.shop_id, p.category_id, p.subcategory_id, p.title, p.is_active, p.created_at, p.updated_at,
	d.id, d.description, d.price, d.quantity, d.status, d.characteristics, d.updated_at`

const productViewFrom = `
	FROM products p
	JOIN product_details d ON d.product_id = p.id`

// ProductPostgres is a PostgreSQL implementation of repository.ProductRepository.
type ProductPostgres struct {
	db *sql.DB
}

// NewProductPostgres creates a new ProductPostgres repository.
func NewProductPostgres(db *sql.DB) *ProductPostgres {
	return &ProductPostgres{db: db}
}

var _ repository.ProductRepository = (*ProductPostgres)(nil)

func scanProductView(row rowScanner) (*model.ProductView, error) {
	var (
		v   model.ProductView
		sub sql.NullInt64
	)
	if err := row.Scan(
		&v.ID,
		&v.ShopID,
		&v.CategoryID,
		&sub,
		&v.Title,
		&v.IsActive,
		&v.CreatedAt,
		&v.UpdatedAt,
		&v.Detail.ID,
		&v.Detail.Description,
		&v.Detail.Price,
		&v.Detail.Quantity,
		&v.Detail.Status,
		&v.Detail.Characteristics,
		&v.Detail.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if sub.Valid {
		id := int(sub.Int64)
		v.SubcategoryID = &id
	}
	v.Detail.ProductID = v.ID
	v.Photos = []model.ProductPhoto{}
	return &v, nil
}

func nullableInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// Create inserts product and detail rows and returns the stored view.
func (r *ProductPostgres) Create(ctx context.Context, p *model.Product, d *model.ProductDetail) (*model.ProductView, error) {
	const (
		qProduct = `
			INSERT INTO products (id, shop_id, category_id, subcategory_id, title, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		qDetail = `
			INSERT INTO product_details (id, product_id, description, price, quantity, status, characteristics, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	)
	var out *model.ProductView
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, qProduct,
			p.ID,
			p.ShopID,
			p.CategoryID,
			nullableInt(p.SubcategoryID),
			p.Title,
			p.IsActive,
			p.CreatedAt,
			p.UpdatedAt,
		); err != nil {
			return mapError(err)
		}
		if _, err := tx.ExecContext(ctx, qDetail,
			d.ID,
			p.ID,
			d.Description,
			d.Price,
			d.Quantity,
			d.Status,
			d.Characteristics,
			d.UpdatedAt,
		); err != nil {
			return mapError(err)
		}
		var err error
		out, err = findProductView(ctx, tx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findProductView(ctx context.Context, q queryRower, id string) (*model.ProductView, error) {
	query := `SELECT ` + productViewColumns + productViewFrom + ` WHERE p.id = $1`
	return scanProductView(q.QueryRowContext(ctx, query, id))
}

// FindByID fetches a product joined with its detail.
func (r *ProductPostgres) FindByID(ctx context.Context, id string) (*model.ProductView, error) {
	return findProductView(ctx, r.db, id)
}

// buildProductFilter renders the WHERE clause for f. Placeholders start at $1.
func buildProductFilter(f repository.ProductFilter) (string, []any) {
	conds := []string{"p.is_active", "s.is_active"}
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.ShopID != "" {
		add("p.shop_id = $%d", f.ShopID)
	}
	if f.CategoryID > 0 {
		add("p.category_id = $%d", f.CategoryID)
	}
	if f.SubcategoryID > 0 {
		add("p.subcategory_id = $%d", f.SubcategoryID)
	}
	if f.Status != "" {
		add("d.status = $%d", f.Status)
	}
	if f.MinPrice != nil {
		add("d.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("d.price <= $%d", *f.MaxPrice)
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns active products of active shops with a total count.
func (r *ProductPostgres) List(ctx context.Context, f repository.ProductFilter, pq repository.PageQuery) (*repository.PageResult[model.ProductView], error) {
	from := productViewFrom + `
	JOIN shops s ON s.id = p.shop_id`
	where, args := buildProductFilter(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	qList := `SELECT ` + productViewColumns + from + where +
		fmt.Sprintf(` ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, qList, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ProductView, 0)
	for rows.Next() {
		v, err := scanProductView(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.ProductView]{Items: items, Total: total}, nil
}

// Update writes the merged product and detail rows atomically.
func (r *ProductPostgres) Update(ctx context.Context, p *model.Product, d *model.ProductDetail) (*model.ProductView, error) {
	const (
		qProduct = `
			UPDATE products
			SET category_id = $2, subcategory_id = $3, title = $4, updated_at = $5
			WHERE id = $1`
		qDetail = `
			UPDATE product_details
			SET description = $2, price = $3, quantity = $4, status = $5, characteristics = $6, updated_at = $7
			WHERE product_id = $1`
	)
	ts := now()
	var out *model.ProductView
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, qProduct, p.ID, p.CategoryID, nullableInt(p.SubcategoryID), p.Title, ts)
		if err != nil {
			return mapError(err)
		}
		if err := mustAffect(res); err != nil {
			return err
		}
		res, err = tx.ExecContext(ctx, qDetail, p.ID, d.Description, d.Price, d.Quantity, d.Status, d.Characteristics, ts)
		if err != nil {
			return mapError(err)
		}
		if err := mustAffect(res); err != nil {
			return err
		}
		out, err = findProductView(ctx, tx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductPostgres) Deactivate(ctx context.Context, id string) error {
	const q = `UPDATE products SET is_active = false, updated_at = $2 WHERE id = $1 AND is_active`
	res, err := r.db.ExecContext(ctx, q, id, now())
	if err != nil {
		return err
	}
	return mustAffect(res)
}
