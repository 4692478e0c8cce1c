package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopapi/internal/model"
	repoMocks "shopapi/internal/repository/mocks"
)

func TestCategoryService_List(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockCategoryRepository)
	mRepo.On("List", ctx).Return([]model.Category{
		{ID: 1, Slug: "clothes", Name: "Одяг", Subcategories: []model.Subcategory{{ID: 1, CategoryID: 1, Slug: "sweaters", Name: "Светри"}}},
	}, nil)

	cats, err := NewCategoryService(mRepo).List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Светри", cats[0].Subcategories[0].Name)
	mRepo.AssertExpectations(t)
}
