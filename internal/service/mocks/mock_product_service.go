package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shopapi/internal/model"
	"shopapi/internal/service"
)

var _ service.ProductService = (*MockProductService)(nil)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, ownerID, shopID string, in service.ProductInput) (*model.ProductView, error) {
	args := m.Called(ctx, ownerID, shopID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductView), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id string) (*model.ProductView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductView), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context, f service.ProductFilter, limit, offset int) (*service.ListResult[model.ProductView], error) {
	args := m.Called(ctx, f, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.ProductView]), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, ownerID, id string, patch service.ProductPatch) (*model.ProductView, error) {
	args := m.Called(ctx, ownerID, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductView), args.Error(1)
}

func (m *MockProductService) Deactivate(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

var _ service.PhotoService = (*MockPhotoService)(nil)

type MockPhotoService struct {
	mock.Mock
}

func (m *MockPhotoService) Upload(ctx context.Context, ownerID, productID string, in service.PhotoUpload) (*model.ProductPhoto, error) {
	args := m.Called(ctx, ownerID, productID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPhoto), args.Error(1)
}

func (m *MockPhotoService) Delete(ctx context.Context, ownerID, productID, photoID string) error {
	args := m.Called(ctx, ownerID, productID, photoID)
	return args.Error(0)
}

var _ service.CategoryService = (*MockCategoryService)(nil)

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}
