package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"shopapi/internal/model"
)

// ProductFilter narrows product listings. Zero values mean "any".
type ProductFilter struct {
	ShopID        string
	CategoryID    int
	SubcategoryID int
	Status        string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
}

// ProductRepository persists products split across products and product_details.
// Returned views never carry photos; those come from PhotoRepository.
type ProductRepository interface {
	// Create inserts the product and its detail in one transaction.
	Create(ctx context.Context, p *model.Product, d *model.ProductDetail) (*model.ProductView, error)

	// FindByID returns the product and detail whether or not it is active.
	FindByID(ctx context.Context, id string) (*model.ProductView, error)

	// List returns active products of active shops, newest first.
	List(ctx context.Context, f ProductFilter, pq PageQuery) (*PageResult[model.ProductView], error)

	// Update writes both rows in one transaction.
	Update(ctx context.Context, p *model.Product, d *model.ProductDetail) (*model.ProductView, error)

	Deactivate(ctx context.Context, id string) error
}

// PhotoRepository persists product photos.
type PhotoRepository interface {
	// Create appends the photo after the existing ones. When photo.IsMain is set,
	// any previous main photo of the same detail is demoted in the same transaction.
	Create(ctx context.Context, photo *model.ProductPhoto) (*model.ProductPhoto, error)

	FindByID(ctx context.Context, id string) (*model.ProductPhoto, error)

	// ListByDetail returns photos ordered by position.
	ListByDetail(ctx context.Context, detailID string) ([]model.ProductPhoto, error)

	CountByDetail(ctx context.Context, detailID string) (int, error)

	// Delete removes the row; if it was the main photo the remaining photo with
	// the lowest position is promoted. Deleting a missing row is not an error.
	Delete(ctx context.Context, id string) error
}

// CategoryRepository reads the seeded taxonomy.
type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	CategoryExists(ctx context.Context, id int) (bool, error)
	FindSubcategory(ctx context.Context, id int) (*model.Subcategory, error)
}
