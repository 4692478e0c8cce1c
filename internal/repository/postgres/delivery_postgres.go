package postgres

import (
	"context"
	"database/sql"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

const deliveryColumns = `user_id, first_name, last_name, phone, city, post_service, post_office, updated_at`

// DeliveryPostgres is a PostgreSQL implementation of repository.DeliveryRepository.
type DeliveryPostgres struct {
	db *sql.DB
}

// NewDeliveryPostgres creates a new DeliveryPostgres repository.
func NewDeliveryPostgres(db *sql.DB) *DeliveryPostgres {
	return &DeliveryPostgres{db: db}
}

var _ repository.DeliveryRepository = (*DeliveryPostgres)(nil)

func scanDelivery(row rowScanner) (*model.DeliveryInfo, error) {
	var d model.DeliveryInfo
	if err := row.Scan(
		&d.UserID,
		&d.FirstName,
		&d.LastName,
		&d.Phone,
		&d.City,
		&d.PostService,
		&d.PostOffice,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DeliveryPostgres) Find(ctx context.Context, userID string) (*model.DeliveryInfo, error) {
	const q = `SELECT ` + deliveryColumns + ` FROM delivery_user_info WHERE user_id = $1`
	return scanDelivery(r.db.QueryRowContext(ctx, q, userID))
}

// Upsert inserts or replaces the profile of d.UserID.
func (r *DeliveryPostgres) Upsert(ctx context.Context, d *model.DeliveryInfo) (*model.DeliveryInfo, error) {
	const q = `
		INSERT INTO delivery_user_info (` + deliveryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone = EXCLUDED.phone,
			city = EXCLUDED.city,
			post_service = EXCLUDED.post_service,
			post_office = EXCLUDED.post_office,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + deliveryColumns
	return scanDelivery(r.db.QueryRowContext(ctx, q,
		d.UserID,
		d.FirstName,
		d.LastName,
		d.Phone,
		d.City,
		d.PostService,
		d.PostOffice,
		now(),
	))
}
