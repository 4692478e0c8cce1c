package postgres

import (
	"context"
	"database/sql"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

// CategoryPostgres is a PostgreSQL implementation of repository.CategoryRepository.
type CategoryPostgres struct {
	db *sql.DB
}

// NewCategoryPostgres creates a new CategoryPostgres repository.
func NewCategoryPostgres(db *sql.DB) *CategoryPostgres {
	return &CategoryPostgres{db: db}
}

var _ repository.CategoryRepository = (*CategoryPostgres)(nil)

// List returns every category with its subcategories nested, ordered by id.
func (r *CategoryPostgres) List(ctx context.Context) ([]model.Category, error) {
	const q = `
		SELECT c.id, c.slug, c.name, s.id, s.slug, s.name
		FROM categories c
		LEFT JOIN subcategories s ON s.category_id = c.id
		ORDER BY c.id ASC, s.id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Category, 0)
	for rows.Next() {
		var (
			c                model.Category
			subID            sql.NullInt64
			subSlug, subName sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &subID, &subSlug, &subName); err != nil {
			return nil, err
		}
		if n := len(out); n == 0 || out[n-1].ID != c.ID {
			c.Subcategories = []model.Subcategory{}
			out = append(out, c)
		}
		if subID.Valid {
			last := &out[len(out)-1]
			last.Subcategories = append(last.Subcategories, model.Subcategory{
				ID:         int(subID.Int64),
				CategoryID: c.ID,
				Slug:       subSlug.String,
				Name:       subName.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CategoryPostgres) CategoryExists(ctx context.Context, id int) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, id).Scan(&ok)
	return ok, err
}

func (r *CategoryPostgres) FindSubcategory(ctx context.Context, id int) (*model.Subcategory, error) {
	const q = `SELECT id, category_id, slug, name FROM subcategories WHERE id = $1`
	var s model.Subcategory
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.CategoryID, &s.Slug, &s.Name); err != nil {
		return nil, err
	}
	return &s, nil
}
