package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopapi/internal/model"
	"shopapi/internal/repository"
	repoMocks "shopapi/internal/repository/mocks"
	"shopapi/internal/validation"
)

func activeShopFixture() *model.Shop {
	return &model.Shop{
		ID:          "s-1",
		OwnerID:     "u-1",
		Name:        "Смачна крамниця",
		Description: "Домашня випічка",
		Phone:       "+380501234567",
		IsActive:    true,
	}
}

func TestShopService_Create(t *testing.T) {
	ctx := context.Background()
	in := ShopInput{Name: " Смачна крамниця ", Description: "Домашня випічка", Phone: "0501234567"}

	tests := []struct {
		name       string
		in         ShopInput
		setupMocks func(m *repoMocks.MockShopRepository)
		wantErr    error
		wantField  string
	}{
		{
			name: "happy path",
			in:   in,
			setupMocks: func(m *repoMocks.MockShopRepository) {
				m.On("NameTaken", ctx, "Смачна крамниця", "").Return(false, nil)
				m.On("Create", ctx, mock.MatchedBy(func(s *model.Shop) bool {
					return s.OwnerID == "u-1" && s.Phone == "+380501234567" && s.IsActive
				})).Return(activeShopFixture(), nil)
			},
		},
		{
			name:       "name must be Ukrainian",
			in:         ShopInput{Name: "Tasty shop", Phone: "0501234567"},
			setupMocks: func(*repoMocks.MockShopRepository) {},
			wantField:  "name",
		},
		{
			name: "name taken",
			in:   in,
			setupMocks: func(m *repoMocks.MockShopRepository) {
				m.On("NameTaken", ctx, "Смачна крамниця", "").Return(true, nil)
			},
			wantErr: ErrShopNameTaken,
		},
		{
			name: "unique index race",
			in:   in,
			setupMocks: func(m *repoMocks.MockShopRepository) {
				m.On("NameTaken", ctx, mock.Anything, "").Return(false, nil)
				m.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicate)
			},
			wantErr: ErrShopNameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mShops := new(repoMocks.MockShopRepository)
			svc := NewShopService(mShops, validation.New(), zap.NewNop())
			tt.setupMocks(mShops)

			sh, err := svc.Create(ctx, "u-1", tt.in)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantField != "":
				var verr *validation.Errors
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Fields, tt.wantField)
			default:
				require.NoError(t, err)
				assert.Equal(t, "s-1", sh.ID)
			}
			mShops.AssertExpectations(t)
		})
	}
}

func TestShopService_Get(t *testing.T) {
	ctx := context.Background()
	inactive := activeShopFixture()
	inactive.IsActive = false

	mShops := new(repoMocks.MockShopRepository)
	svc := NewShopService(mShops, validation.New(), zap.NewNop())

	mShops.On("FindByID", ctx, "s-1").Return(activeShopFixture(), nil)
	mShops.On("FindByID", ctx, "s-2").Return(inactive, nil)
	mShops.On("FindByID", ctx, "s-3").Return(nil, sql.ErrNoRows)
	mShops.On("FindByID", ctx, "s-4").Return(nil, errors.New("db fail"))

	sh, err := svc.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", sh.ID)

	_, err = svc.Get(ctx, "s-2")
	assert.ErrorIs(t, err, ErrShopNotFound)
	_, err = svc.Get(ctx, "s-3")
	assert.ErrorIs(t, err, ErrShopNotFound)
	_, err = svc.Get(ctx, "s-4")
	assert.EqualError(t, err, "db fail")
	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrIDRequired)
}

func TestShopService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		limit, offset int
		want          repository.PageQuery
	}{
		{name: "explicit", limit: 5, offset: 10, want: repository.PageQuery{Limit: 5, Offset: 10}},
		{name: "defaults", limit: 0, offset: -3, want: repository.PageQuery{Limit: 20, Offset: 0}},
		{name: "capped", limit: 500, offset: 0, want: repository.PageQuery{Limit: 100, Offset: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mShops := new(repoMocks.MockShopRepository)
			svc := NewShopService(mShops, validation.New(), zap.NewNop())
			mShops.On("List", ctx, tt.want).
				Return(&repository.PageResult[model.Shop]{Items: []model.Shop{*activeShopFixture()}, Total: 1}, nil)

			res, err := svc.List(ctx, tt.limit, tt.offset)
			require.NoError(t, err)
			assert.Equal(t, 1, res.Total)
			mShops.AssertExpectations(t)
		})
	}
}

func TestShopService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("owner renames shop", func(t *testing.T) {
		mShops := new(repoMocks.MockShopRepository)
		svc := NewShopService(mShops, validation.New(), zap.NewNop())
		mShops.On("FindByID", ctx, "s-1").Return(activeShopFixture(), nil)
		mShops.On("NameTaken", ctx, "Пекарня Олени", "s-1").Return(false, nil)
		mShops.On("Update", ctx, mock.MatchedBy(func(s *model.Shop) bool {
			return s.Name == "Пекарня Олени" && s.Description == "Домашня випічка"
		})).Return(&model.Shop{ID: "s-1", Name: "Пекарня Олени"}, nil)

		sh, err := svc.Update(ctx, "u-1", "s-1", ShopPatch{Name: strPtr("Пекарня Олени")})
		require.NoError(t, err)
		assert.Equal(t, "Пекарня Олени", sh.Name)
		mShops.AssertExpectations(t)
	})

	t.Run("case change of own name skips uniqueness check", func(t *testing.T) {
		mShops := new(repoMocks.MockShopRepository)
		svc := NewShopService(mShops, validation.New(), zap.NewNop())
		mShops.On("FindByID", ctx, "s-1").Return(activeShopFixture(), nil)
		mShops.On("Update", ctx, mock.Anything).Return(activeShopFixture(), nil)

		_, err := svc.Update(ctx, "u-1", "s-1", ShopPatch{Name: strPtr("СМАЧНА КРАМНИЦЯ")})
		require.NoError(t, err)
		mShops.AssertNotCalled(t, "NameTaken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		mShops := new(repoMocks.MockShopRepository)
		svc := NewShopService(mShops, validation.New(), zap.NewNop())
		mShops.On("FindByID", ctx, "s-1").Return(activeShopFixture(), nil)

		_, err := svc.Update(ctx, "u-2", "s-1", ShopPatch{Name: strPtr("Пекарня")})
		assert.ErrorIs(t, err, ErrForbidden)
		mShops.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("invalid merged phone", func(t *testing.T) {
		mShops := new(repoMocks.MockShopRepository)
		svc := NewShopService(mShops, validation.New(), zap.NewNop())
		mShops.On("FindByID", ctx, "s-1").Return(activeShopFixture(), nil)

		_, err := svc.Update(ctx, "u-1", "s-1", ShopPatch{Phone: strPtr("+7 999 123 45 67")})
		var verr *validation.Errors
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "phone")
	})
}

func TestShopService_Deactivate(t *testing.T) {
	ctx := context.Background()
	mShops := new(repoMocks.MockShopRepository)
	svc := NewShopService(mShops, validation.New(), zap.NewNop())

	mShops.On("FindByID", ctx, "s-1").Return(activeShopFixture(), nil)
	mShops.On("Deactivate", ctx, "s-1").Return(nil).Once()

	assert.ErrorIs(t, svc.Deactivate(ctx, "u-2", "s-1"), ErrForbidden)
	assert.NoError(t, svc.Deactivate(ctx, "u-1", "s-1"))
	mShops.AssertExpectations(t)
}
