package repository

import (
	"context"

	"shopapi/internal/model"
)

// UserRepository persists users together with their Security row.
type UserRepository interface {
	// Create inserts the user and its password hash in one transaction.
	Create(ctx context.Context, u *model.User, passwordHash string) (*model.User, error)

	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail matches the lower-cased email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// EmailTaken and PhoneTaken ignore the row with excludeID (may be empty).
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	PhoneTaken(ctx context.Context, phone, excludeID string) (bool, error)

	PasswordHash(ctx context.Context, userID string) (string, error)
	UpdatePassword(ctx context.Context, userID, hash string) error

	// UpdateProfile writes names and phone and returns the stored row.
	UpdateProfile(ctx context.Context, u *model.User) (*model.User, error)

	// Deactivate soft-deletes the user, its shops and their products in one transaction.
	Deactivate(ctx context.Context, userID string) error
}

// DeliveryRepository persists the shipping profile of a user.
type DeliveryRepository interface {
	Find(ctx context.Context, userID string) (*model.DeliveryInfo, error)
	Upsert(ctx context.Context, d *model.DeliveryInfo) (*model.DeliveryInfo, error)
}
