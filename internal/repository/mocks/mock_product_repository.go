package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

var _ repository.ProductRepository = (*MockProductRepository)(nil)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *model.Product, d *model.ProductDetail) (*model.ProductView, error) {
	args := m.Called(ctx, p, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductView), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*model.ProductView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductView), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, f repository.ProductFilter, pq repository.PageQuery) (*repository.PageResult[model.ProductView], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.ProductView]), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, p *model.Product, d *model.ProductDetail) (*model.ProductView, error) {
	args := m.Called(ctx, p, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductView), args.Error(1)
}

func (m *MockProductRepository) Deactivate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ repository.PhotoRepository = (*MockPhotoRepository)(nil)

type MockPhotoRepository struct {
	mock.Mock
}

func (m *MockPhotoRepository) Create(ctx context.Context, photo *model.ProductPhoto) (*model.ProductPhoto, error) {
	args := m.Called(ctx, photo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPhoto), args.Error(1)
}

func (m *MockPhotoRepository) FindByID(ctx context.Context, id string) (*model.ProductPhoto, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPhoto), args.Error(1)
}

func (m *MockPhotoRepository) ListByDetail(ctx context.Context, detailID string) ([]model.ProductPhoto, error) {
	args := m.Called(ctx, detailID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProductPhoto), args.Error(1)
}

func (m *MockPhotoRepository) CountByDetail(ctx context.Context, detailID string) (int, error) {
	args := m.Called(ctx, detailID)
	return args.Int(0), args.Error(1)
}

func (m *MockPhotoRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ repository.CategoryRepository = (*MockCategoryRepository)(nil)

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryRepository) CategoryExists(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) FindSubcategory(ctx context.Context, id int) (*model.Subcategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subcategory), args.Error(1)
}
