package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopapi/internal/logger"
	"shopapi/internal/model"
	"shopapi/internal/repository"
	"shopapi/internal/validation"
)

// ShopInput is the full set of editable shop fields.
type ShopInput struct {
	Name        string `json:"name" validate:"required,uk_text,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,uk_text,max=2000"`
	Phone       string `json:"phone" validate:"required,ua_phone"`
}

// ShopPatch changes only the fields that are set.
type ShopPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Phone       *string `json:"phone"`
}

// ShopService manages storefronts.
type ShopService interface {
	Create(ctx context.Context, ownerID string, in ShopInput) (*model.Shop, error)

	// Get returns an active shop.
	Get(ctx context.Context, id string) (*model.Shop, error)

	List(ctx context.Context, limit, offset int) (*ListResult[model.Shop], error)
	ListMine(ctx context.Context, ownerID string) ([]model.Shop, error)

	// Update and Deactivate are allowed to the owner only.
	Update(ctx context.Context, ownerID, id string, patch ShopPatch) (*model.Shop, error)
	Deactivate(ctx context.Context, ownerID, id string) error
}

type shopService struct {
	shops    repository.ShopRepository
	validate *validation.Validator
	log      *zap.Logger
}

// NewShopService constructs a new ShopService.
func NewShopService(shops repository.ShopRepository, v *validation.Validator, log *zap.Logger) ShopService {
	return &shopService{shops: shops, validate: v, log: log}
}

// activeShop loads an active shop; inactive and missing shops are both ErrShopNotFound.
func activeShop(ctx context.Context, shops repository.ShopRepository, id string) (*model.Shop, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	sh, err := shops.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrShopNotFound)
	}
	if !sh.IsActive {
		return nil, ErrShopNotFound
	}
	return sh, nil
}

// ownedShop is activeShop plus the ownership check.
func ownedShop(ctx context.Context, shops repository.ShopRepository, ownerID, id string) (*model.Shop, error) {
	sh, err := activeShop(ctx, shops, id)
	if err != nil {
		return nil, err
	}
	if sh.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return sh, nil
}

func normalizeShop(in *ShopInput) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Phone = validation.NormalizePhone(in.Phone)
}

func (s *shopService) Create(ctx context.Context, ownerID string, in ShopInput) (*model.Shop, error) {
	if ownerID == "" {
		return nil, ErrIDRequired
	}
	normalizeShop(&in)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	taken, err := s.shops.NameTaken(ctx, in.Name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrShopNameTaken
	}

	now := time.Now().UTC()
	sh, err := s.shops.Create(ctx, &model.Shop{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        in.Name,
		Description: in.Description,
		Phone:       in.Phone,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, conflict(err, ErrShopNameTaken)
	}
	logger.FromContext(ctx, s.log).Info("shop_created",
		zap.String("shop_id", sh.ID),
		zap.String("owner_id", ownerID),
	)
	return sh, nil
}

func (s *shopService) Get(ctx context.Context, id string) (*model.Shop, error) {
	return activeShop(ctx, s.shops, id)
}

func (s *shopService) List(ctx context.Context, limit, offset int) (*ListResult[model.Shop], error) {
	res, err := s.shops.List(ctx, normalizePage(limit, offset))
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Shop]{Items: res.Items, Total: res.Total}, nil
}

func (s *shopService) ListMine(ctx context.Context, ownerID string) ([]model.Shop, error) {
	if ownerID == "" {
		return nil, ErrIDRequired
	}
	return s.shops.ListByOwner(ctx, ownerID)
}

func (s *shopService) Update(ctx context.Context, ownerID, id string, patch ShopPatch) (*model.Shop, error) {
	sh, err := ownedShop(ctx, s.shops, ownerID, id)
	if err != nil {
		return nil, err
	}

	merged := ShopInput{Name: sh.Name, Description: sh.Description, Phone: sh.Phone}
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.Phone != nil {
		merged.Phone = *patch.Phone
	}
	normalizeShop(&merged)
	if err := s.validate.Struct(merged); err != nil {
		return nil, err
	}

	if !strings.EqualFold(merged.Name, sh.Name) {
		taken, err := s.shops.NameTaken(ctx, merged.Name, sh.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrShopNameTaken
		}
	}

	sh.Name, sh.Description, sh.Phone = merged.Name, merged.Description, merged.Phone
	out, err := s.shops.Update(ctx, sh)
	if err != nil {
		return nil, conflict(notFound(err, ErrShopNotFound), ErrShopNameTaken)
	}
	return out, nil
}

func (s *shopService) Deactivate(ctx context.Context, ownerID, id string) error {
	if _, err := ownedShop(ctx, s.shops, ownerID, id); err != nil {
		return err
	}
	if err := s.shops.Deactivate(ctx, id); err != nil {
		return notFound(err, ErrShopNotFound)
	}
	logger.FromContext(ctx, s.log).Info("shop_deactivated",
		zap.String("shop_id", id),
		zap.String("owner_id", ownerID),
	)
	return nil
}
