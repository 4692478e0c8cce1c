package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopapi/internal/model"
	"shopapi/internal/repository"
)

var productViewCols = []string{
	"id", "shop_id", "category_id", "subcategory_id", "title", "is_active", "created_at", "updated_at",
	"detail_id", "description", "price", "quantity", "status", "characteristics", "detail_updated_at",
}

func productRow(rows *sqlmock.Rows, id string, sub any) *sqlmock.Rows {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return rows.AddRow(
		id, "s-1", 2, sub, "Светр вовняний", true, ts, ts,
		"d-"+id, "Теплий светр ручної роботи", "1250.50", 3, model.ProductStatusAvailable,
		[]byte(`{"Матеріал":"вовна"}`), ts,
	)
}

func TestProductPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductPostgres(db)
	ts := time.Now().UTC()
	sub := 5

	p := &model.Product{ID: "p-1", ShopID: "s-1", CategoryID: 2, SubcategoryID: &sub, Title: "Светр вовняний", IsActive: true, CreatedAt: ts, UpdatedAt: ts}
	d := &model.ProductDetail{
		ID:              "d-p-1",
		Description:     "Теплий светр ручної роботи",
		Price:           decimal.RequireFromString("1250.50"),
		Quantity:        3,
		Status:          model.ProductStatusAvailable,
		Characteristics: model.Characteristics{"Матеріал": "вовна"},
		UpdatedAt:       ts,
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO products").
			WithArgs(p.ID, p.ShopID, p.CategoryID, int64(5), p.Title, true, ts, ts).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO product_details").
			WithArgs(d.ID, p.ID, d.Description, sqlmock.AnyArg(), 3, d.Status, sqlmock.AnyArg(), ts).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT (.+) FROM products p JOIN product_details d ON d.product_id = p.id WHERE p.id = ?").
			WithArgs(p.ID).
			WillReturnRows(productRow(sqlmock.NewRows(productViewCols), p.ID, int64(5)))
		mock.ExpectCommit()

		v, err := repo.Create(context.Background(), p, d)
		require.NoError(t, err)
		assert.Equal(t, "p-1", v.ID)
		assert.Equal(t, "p-1", v.Detail.ProductID)
		require.NotNil(t, v.SubcategoryID)
		assert.Equal(t, 5, *v.SubcategoryID)
		assert.True(t, decimal.RequireFromString("1250.5").Equal(v.Detail.Price))
		assert.Equal(t, "вовна", v.Detail.Characteristics["Матеріал"])
		assert.NotNil(t, v.Photos)
	})

	t.Run("detail insert fails", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO products").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO product_details").WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		v, err := repo.Create(context.Background(), p, d)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.Nil(t, v)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductPostgres_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductPostgres(db)

	mock.ExpectQuery("SELECT (.+) WHERE p.id = ?").
		WithArgs("p-2").
		WillReturnRows(productRow(sqlmock.NewRows(productViewCols), "p-2", nil))

	v, err := repo.FindByID(context.Background(), "p-2")
	require.NoError(t, err)
	assert.Nil(t, v.SubcategoryID)

	mock.ExpectQuery("SELECT (.+) WHERE p.id = ?").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestBuildProductFilter(t *testing.T) {
	lo := decimal.NewFromInt(100)
	hi := decimal.NewFromInt(500)

	where, args := buildProductFilter(repository.ProductFilter{})
	assert.Equal(t, " WHERE p.is_active AND s.is_active", where)
	assert.Empty(t, args)

	where, args = buildProductFilter(repository.ProductFilter{
		ShopID:     "s-1",
		CategoryID: 2,
		Status:     model.ProductStatusPreOrder,
		MinPrice:   &lo,
		MaxPrice:   &hi,
	})
	assert.Equal(t,
		" WHERE p.is_active AND s.is_active AND p.shop_id = $1 AND p.category_id = $2 AND d.status = $3 AND d.price >= $4 AND d.price <= $5",
		where)
	assert.Equal(t, []any{"s-1", 2, model.ProductStatusPreOrder, lo, hi}, args)
}

func TestProductPostgres_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductPostgres(db)
	f := repository.ProductFilter{CategoryID: 2, SubcategoryID: 5}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products p (.+) JOIN shops s ON s.id = p.shop_id WHERE").
		WithArgs(2, 5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	rows := sqlmock.NewRows(productViewCols)
	productRow(rows, "p-1", int64(5))
	productRow(rows, "p-2", int64(5))
	mock.ExpectQuery("SELECT (.+) ORDER BY p.created_at DESC, p.id DESC LIMIT \\$3 OFFSET \\$4").
		WithArgs(2, 5, 20, 0).
		WillReturnRows(rows)

	res, err := repo.List(context.Background(), f, repository.PageQuery{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "p-2", res.Items[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductPostgres_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductPostgres(db)
	p := &model.Product{ID: "p-1", CategoryID: 2, Title: "Светр вовняний"}
	d := &model.ProductDetail{Description: "Теплий", Price: decimal.NewFromInt(900), Quantity: 0, Status: model.ProductStatusOutOfStock}

	t.Run("success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE products SET category_id").
			WithArgs(p.ID, p.CategoryID, nil, p.Title, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE product_details SET description").
			WithArgs(p.ID, d.Description, sqlmock.AnyArg(), 0, d.Status, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT (.+) WHERE p.id = ?").
			WithArgs(p.ID).
			WillReturnRows(productRow(sqlmock.NewRows(productViewCols), p.ID, nil))
		mock.ExpectCommit()

		v, err := repo.Update(context.Background(), p, d)
		require.NoError(t, err)
		assert.Equal(t, p.ID, v.ID)
	})

	t.Run("missing product", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE products SET category_id").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.Update(context.Background(), p, d)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductPostgres_Deactivate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductPostgres(db)

	mock.ExpectExec("UPDATE products SET is_active = false").
		WithArgs("p-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Deactivate(context.Background(), "p-1"))

	mock.ExpectExec("UPDATE products SET is_active = false").
		WithArgs("p-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Deactivate(context.Background(), "p-1"), sql.ErrNoRows)
}
