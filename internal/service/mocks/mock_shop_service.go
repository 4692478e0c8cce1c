package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shopapi/internal/model"
	"shopapi/internal/service"
)

var _ service.ShopService = (*MockShopService)(nil)

type MockShopService struct {
	mock.Mock
}

func (m *MockShopService) Create(ctx context.Context, ownerID string, in service.ShopInput) (*model.Shop, error) {
	args := m.Called(ctx, ownerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shop), args.Error(1)
}

func (m *MockShopService) Get(ctx context.Context, id string) (*model.Shop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shop), args.Error(1)
}

func (m *MockShopService) List(ctx context.Context, limit, offset int) (*service.ListResult[model.Shop], error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Shop]), args.Error(1)
}

func (m *MockShopService) ListMine(ctx context.Context, ownerID string) ([]model.Shop, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Shop), args.Error(1)
}

func (m *MockShopService) Update(ctx context.Context, ownerID, id string, patch service.ShopPatch) (*model.Shop, error) {
	args := m.Called(ctx, ownerID, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shop), args.Error(1)
}

func (m *MockShopService) Deactivate(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}
