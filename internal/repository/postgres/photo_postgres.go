package postgres

import (
	"context"
	"database/sql"
	"errors"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

const photoColumns = `id, product_detail_id, storage_path, content_type, size, is_main, position, created_at`

// PhotoPostgres is a PostgreSQL implementation of repository.PhotoRepository.
type PhotoPostgres struct {
	db *sql.DB
}

// NewPhotoPostgres creates a new PhotoPostgres repository.
func NewPhotoPostgres(db *sql.DB) *PhotoPostgres {
	return &PhotoPostgres{db: db}
}

var _ repository.PhotoRepository = (*PhotoPostgres)(nil)

func scanPhoto(row rowScanner) (*model.ProductPhoto, error) {
	var p model.ProductPhoto
	if err := row.Scan(
		&p.ID,
		&p.ProductDetailID,
		&p.StoragePath,
		&p.ContentType,
		&p.Size,
		&p.IsMain,
		&p.Position,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PhotoPostgres) Create(ctx context.Context, photo *model.ProductPhoto) (*model.ProductPhoto, error) {
	const (
		qDemote = `UPDATE product_photos SET is_main = false WHERE product_detail_id = $1 AND is_main`
		qInsert = `
			INSERT INTO product_photos (` + photoColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6,
				(SELECT COALESCE(MAX(position), 0) + 1 FROM product_photos WHERE product_detail_id = $2), $7)
			RETURNING ` + photoColumns
	)
	var out *model.ProductPhoto
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if photo.IsMain {
			if _, err := tx.ExecContext(ctx, qDemote, photo.ProductDetailID); err != nil {
				return err
			}
		}
		var err error
		out, err = scanPhoto(tx.QueryRowContext(ctx, qInsert,
			photo.ID,
			photo.ProductDetailID,
			photo.StoragePath,
			photo.ContentType,
			photo.Size,
			photo.IsMain,
			photo.CreatedAt,
		))
		if err != nil {
			return mapError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PhotoPostgres) FindByID(ctx context.Context, id string) (*model.ProductPhoto, error) {
	const q = `SELECT ` + photoColumns + ` FROM product_photos WHERE id = $1`
	return scanPhoto(r.db.QueryRowContext(ctx, q, id))
}

func (r *PhotoPostgres) ListByDetail(ctx context.Context, detailID string) ([]model.ProductPhoto, error) {
	const q = `
		SELECT ` + photoColumns + `
		FROM product_photos
		WHERE product_detail_id = $1
		ORDER BY position ASC`
	rows, err := r.db.QueryContext(ctx, q, detailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ProductPhoto, 0)
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PhotoPostgres) CountByDetail(ctx context.Context, detailID string) (int, error) {
	const q = `SELECT COUNT(*) FROM product_photos WHERE product_detail_id = $1`
	var n int
	err := r.db.QueryRowContext(ctx, q, detailID).Scan(&n)
	return n, err
}

func (r *PhotoPostgres) Delete(ctx context.Context, id string) error {
	const (
		qDelete  = `DELETE FROM product_photos WHERE id = $1 RETURNING product_detail_id, is_main`
		qPromote = `
			UPDATE product_photos SET is_main = true
			WHERE id = (
				SELECT id FROM product_photos
				WHERE product_detail_id = $1
				ORDER BY position ASC
				LIMIT 1
			)`
	)
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			detailID string
			wasMain  bool
		)
		err := tx.QueryRowContext(ctx, qDelete, id).Scan(&detailID, &wasMain)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if !wasMain {
			return nil
		}
		_, err = tx.ExecContext(ctx, qPromote, detailID)
		return err
	})
}
