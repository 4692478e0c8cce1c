package repository

import (
	"context"

	"shopapi/internal/model"
)

// ShopRepository persists shops.
type ShopRepository interface {
	Create(ctx context.Context, s *model.Shop) (*model.Shop, error)

	// FindByID returns the shop whether or not it is active.
	FindByID(ctx context.Context, id string) (*model.Shop, error)

	// NameTaken compares names case-insensitively, ignoring excludeID.
	NameTaken(ctx context.Context, name, excludeID string) (bool, error)

	// List returns active shops, newest first.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Shop], error)

	// ListByOwner returns the active shops of ownerID, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Shop, error)

	Update(ctx context.Context, s *model.Shop) (*model.Shop, error)

	// Deactivate soft-deletes the shop and all of its products in one transaction.
	Deactivate(ctx context.Context, id string) error
}
