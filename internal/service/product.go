package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"shopapi/internal/logger"
	"shopapi/internal/model"
	"shopapi/internal/repository"
	"shopapi/internal/storage"
	"shopapi/internal/validation"
)

var tracer = otel.Tracer("shopapi/internal/service")

const maxCharacteristics = 30

// ProductInput is a complete product as submitted on creation, and the
// shape a patched product must satisfy before it is stored.
type ProductInput struct {
	Title           string                `json:"title" validate:"required,uk_text,min=2,max=200"`
	Description     string                `json:"description" validate:"required,uk_text,max=5000"`
	CategoryID      int                   `json:"category_id" validate:"required,gt=0"`
	SubcategoryID   *int                  `json:"subcategory_id" validate:"omitempty,gt=0"`
	Price           decimal.Decimal       `json:"price" validate:"money"`
	Quantity        int                   `json:"quantity" validate:"gte=0,lte=1000000"`
	Status          string                `json:"status" validate:"required,oneof=available out_of_stock pre_order"`
	Characteristics model.Characteristics `json:"characteristics" validate:"max=30,dive,keys,required,max=50,uk_text,endkeys,required,max=200"`
}

// ProductPatch changes only the fields that are set. A zero SubcategoryID
// clears the subcategory; Characteristics replace the whole map.
type ProductPatch struct {
	Title           *string                `json:"title"`
	Description     *string                `json:"description"`
	CategoryID      *int                   `json:"category_id"`
	SubcategoryID   *int                   `json:"subcategory_id"`
	Price           *decimal.Decimal       `json:"price"`
	Quantity        *int                   `json:"quantity"`
	Status          *string                `json:"status"`
	Characteristics *model.Characteristics `json:"characteristics"`
}

// ProductFilter narrows a product listing. Zero values mean "any".
type ProductFilter struct {
	ShopID        string
	CategoryID    int
	SubcategoryID int
	Status        string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
}

// ProductService manages products and their details.
type ProductService interface {
	Create(ctx context.Context, ownerID, shopID string, in ProductInput) (*model.ProductView, error)

	// Get returns an active product of an active shop with pre-signed photo URLs.
	Get(ctx context.Context, id string) (*model.ProductView, error)

	List(ctx context.Context, f ProductFilter, limit, offset int) (*ListResult[model.ProductView], error)

	// Update merges patch into the stored product, validates the result and
	// writes product and detail rows together.
	Update(ctx context.Context, ownerID, id string, patch ProductPatch) (*model.ProductView, error)

	Deactivate(ctx context.Context, ownerID, id string) error
}

type productService struct {
	products   repository.ProductRepository
	shops      repository.ShopRepository
	categories repository.CategoryRepository
	photos     repository.PhotoRepository
	store      storage.Storage
	urlTTL     time.Duration
	validate   *validation.Validator
	log        *zap.Logger
}

// NewProductService constructs a new ProductService.
func NewProductService(
	products repository.ProductRepository,
	shops repository.ShopRepository,
	categories repository.CategoryRepository,
	photos repository.PhotoRepository,
	store storage.Storage,
	urlTTL time.Duration,
	v *validation.Validator,
	log *zap.Logger,
) ProductService {
	return &productService{
		products:   products,
		shops:      shops,
		categories: categories,
		photos:     photos,
		store:      store,
		urlTTL:     urlTTL,
		validate:   v,
		log:        log,
	}
}

// activeProduct loads a product that is active and belongs to an active shop.
func activeProduct(ctx context.Context, products repository.ProductRepository, shops repository.ShopRepository, id string) (*model.ProductView, *model.Shop, error) {
	if id == "" {
		return nil, nil, ErrIDRequired
	}
	v, err := products.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFound(err, ErrProductNotFound)
	}
	if !v.IsActive {
		return nil, nil, ErrProductNotFound
	}
	sh, err := activeShop(ctx, shops, v.ShopID)
	if errors.Is(err, ErrShopNotFound) {
		return nil, nil, ErrProductNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return v, sh, nil
}

// ownedProduct is the ownership workflow: product, then its shop, then the owner.
func ownedProduct(ctx context.Context, products repository.ProductRepository, shops repository.ShopRepository, ownerID, id string) (*model.ProductView, error) {
	v, sh, err := activeProduct(ctx, products, shops, id)
	if err != nil {
		return nil, err
	}
	if sh.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return v, nil
}

// presignPhotos fills URL on every photo. A photo whose URL cannot be signed
// is returned without one.
func presignPhotos(ctx context.Context, store storage.Storage, ttl time.Duration, log *zap.Logger, photos []model.ProductPhoto) {
	for i := range photos {
		u, err := store.PresignGet(ctx, photos[i].StoragePath, ttl)
		if err != nil {
			logger.FromContext(ctx, log).Warn("photo_presign_failed",
				zap.String("photo_id", photos[i].ID),
				zap.Error(err),
			)
			continue
		}
		photos[i].URL = u
	}
}

// normalizeProduct trims text fields in place. Characteristic keys that
// become equal after trimming are rejected.
func normalizeProduct(in *ProductInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.SubcategoryID != nil && *in.SubcategoryID == 0 {
		in.SubcategoryID = nil
	}
	if len(in.Characteristics) > 0 {
		out := make(model.Characteristics, len(in.Characteristics))
		for k, v := range in.Characteristics {
			key := strings.TrimSpace(k)
			if _, dup := out[key]; dup {
				verr := validation.NewErrors()
				verr.Add("characteristics", fmt.Sprintf("duplicate key %q", key))
				return verr
			}
			out[key] = strings.TrimSpace(v)
		}
		in.Characteristics = out
	}
	return nil
}

// check validates in as a whole, including rules that need the database.
func (s *productService) check(ctx context.Context, in ProductInput) error {
	verr := validation.NewErrors()
	if err := s.validate.Struct(in); err != nil {
		var fe *validation.Errors
		if !errors.As(err, &fe) {
			return err
		}
		verr.Merge(fe)
	}

	if in.Status == model.ProductStatusAvailable && in.Quantity <= 0 {
		verr.Add("quantity", "must be greater than 0 when status is available")
	}

	if _, bad := verr.Fields["category_id"]; !bad && in.CategoryID > 0 {
		ok, err := s.categories.CategoryExists(ctx, in.CategoryID)
		if err != nil {
			return err
		}
		if !ok {
			verr.Add("category_id", "unknown category")
		} else if in.SubcategoryID != nil && *in.SubcategoryID > 0 {
			sub, err := s.categories.FindSubcategory(ctx, *in.SubcategoryID)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				verr.Add("subcategory_id", "unknown subcategory")
			case err != nil:
				return err
			case sub.CategoryID != in.CategoryID:
				verr.Add("subcategory_id", "does not belong to the selected category")
			}
		}
	}
	return verr.Err()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *productService) Create(ctx context.Context, ownerID, shopID string, in ProductInput) (_ *model.ProductView, err error) {
	ctx, span := tracer.Start(ctx, "ProductService.Create", trace.WithAttributes(attribute.String("shop.id", shopID)))
	defer func() { endSpan(span, err) }()

	if _, err := ownedShop(ctx, s.shops, ownerID, shopID); err != nil {
		return nil, err
	}
	if err := normalizeProduct(&in); err != nil {
		return nil, err
	}
	if err := s.check(ctx, in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &model.Product{
		ID:            uuid.NewString(),
		ShopID:        shopID,
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
		Title:         in.Title,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	d := &model.ProductDetail{
		ID:              uuid.NewString(),
		ProductID:       p.ID,
		Description:     in.Description,
		Price:           in.Price,
		Quantity:        in.Quantity,
		Status:          in.Status,
		Characteristics: in.Characteristics,
		UpdatedAt:       now,
	}
	view, err := s.products.Create(ctx, p, d)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("product.id", view.ID))
	logger.FromContext(ctx, s.log).Info("product_created",
		zap.String("product_id", view.ID),
		zap.String("shop_id", shopID),
	)
	return view, nil
}

func (s *productService) Get(ctx context.Context, id string) (*model.ProductView, error) {
	v, _, err := activeProduct(ctx, s.products, s.shops, id)
	if err != nil {
		return nil, err
	}
	photos, err := s.photos.ListByDetail(ctx, v.Detail.ID)
	if err != nil {
		return nil, err
	}
	presignPhotos(ctx, s.store, s.urlTTL, s.log, photos)
	v.Photos = photos
	return v, nil
}

func (s *productService) List(ctx context.Context, f ProductFilter, limit, offset int) (*ListResult[model.ProductView], error) {
	verr := validation.NewErrors()
	if f.Status != "" && !slices.Contains(model.ProductStatuses, f.Status) {
		verr.Add("status", "must be one of: "+strings.Join(model.ProductStatuses, ", "))
	}
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		verr.Add("min_price", "must not be negative")
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		verr.Add("max_price", "must not be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		verr.Add("min_price", "must not exceed max_price")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	res, err := s.products.List(ctx, repository.ProductFilter{
		ShopID:        f.ShopID,
		CategoryID:    f.CategoryID,
		SubcategoryID: f.SubcategoryID,
		Status:        f.Status,
		MinPrice:      f.MinPrice,
		MaxPrice:      f.MaxPrice,
	}, normalizePage(limit, offset))
	if err != nil {
		return nil, err
	}
	return &ListResult[model.ProductView]{Items: res.Items, Total: res.Total}, nil
}

func (s *productService) Update(ctx context.Context, ownerID, id string, patch ProductPatch) (_ *model.ProductView, err error) {
	ctx, span := tracer.Start(ctx, "ProductService.Update", trace.WithAttributes(attribute.String("product.id", id)))
	defer func() { endSpan(span, err) }()

	cur, err := ownedProduct(ctx, s.products, s.shops, ownerID, id)
	if err != nil {
		return nil, err
	}

	merged := mergeProduct(cur, patch)
	if err := normalizeProduct(&merged); err != nil {
		return nil, err
	}
	if err := s.check(ctx, merged); err != nil {
		return nil, err
	}

	p := cur.Product
	p.Title = merged.Title
	p.CategoryID = merged.CategoryID
	p.SubcategoryID = merged.SubcategoryID
	d := cur.Detail
	d.Description = merged.Description
	d.Price = merged.Price
	d.Quantity = merged.Quantity
	d.Status = merged.Status
	d.Characteristics = merged.Characteristics

	view, err := s.products.Update(ctx, &p, &d)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	photos, err := s.photos.ListByDetail(ctx, view.Detail.ID)
	if err != nil {
		return nil, err
	}
	presignPhotos(ctx, s.store, s.urlTTL, s.log, photos)
	view.Photos = photos

	logger.FromContext(ctx, s.log).Info("product_updated", zap.String("product_id", id))
	return view, nil
}

// mergeProduct overlays the set fields of patch onto the stored product.
func mergeProduct(cur *model.ProductView, patch ProductPatch) ProductInput {
	in := ProductInput{
		Title:           cur.Title,
		Description:     cur.Detail.Description,
		CategoryID:      cur.CategoryID,
		SubcategoryID:   cur.SubcategoryID,
		Price:           cur.Detail.Price,
		Quantity:        cur.Detail.Quantity,
		Status:          cur.Detail.Status,
		Characteristics: cur.Detail.Characteristics.Clone(),
	}
	if patch.Title != nil {
		in.Title = *patch.Title
	}
	if patch.Description != nil {
		in.Description = *patch.Description
	}
	if patch.CategoryID != nil {
		in.CategoryID = *patch.CategoryID
	}
	if patch.SubcategoryID != nil {
		sub := *patch.SubcategoryID
		in.SubcategoryID = &sub
	}
	if patch.Price != nil {
		in.Price = *patch.Price
	}
	if patch.Quantity != nil {
		in.Quantity = *patch.Quantity
	}
	if patch.Status != nil {
		in.Status = *patch.Status
	}
	if patch.Characteristics != nil {
		in.Characteristics = patch.Characteristics.Clone()
	}
	return in
}

func (s *productService) Deactivate(ctx context.Context, ownerID, id string) error {
	if _, err := ownedProduct(ctx, s.products, s.shops, ownerID, id); err != nil {
		return err
	}
	if err := s.products.Deactivate(ctx, id); err != nil {
		return notFound(err, ErrProductNotFound)
	}
	logger.FromContext(ctx, s.log).Info("product_deactivated", zap.String("product_id", id))
	return nil
}

