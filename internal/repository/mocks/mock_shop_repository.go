package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

var _ repository.ShopRepository = (*MockShopRepository)(nil)

type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) Create(ctx context.Context, s *model.Shop) (*model.Shop, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shop), args.Error(1)
}

func (m *MockShopRepository) FindByID(ctx context.Context, id string) (*model.Shop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shop), args.Error(1)
}

func (m *MockShopRepository) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockShopRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Shop], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Shop]), args.Error(1)
}

func (m *MockShopRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Shop, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Shop), args.Error(1)
}

func (m *MockShopRepository) Update(ctx context.Context, s *model.Shop) (*model.Shop, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shop), args.Error(1)
}

func (m *MockShopRepository) Deactivate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
