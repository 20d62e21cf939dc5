package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sincro/backoffice/app/models"
	"github.com/sincro/backoffice/pkg/apperr"
	"github.com/sincro/backoffice/pkg/listing"
)

func seedInventory(t *testing.T) *InventoryService {
	t.Helper()
	store, _ := newStore(t)
	seedProducts(t, store)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &models.StoreCategory{CategoryName: "Apparel"}))
	require.NoError(t, store.Create(ctx, &models.Store{StoreName: "Central", StoreCategoryID: 1}))
	require.NoError(t, store.Create(ctx, &models.Store{StoreName: "Outlet", StoreCategoryID: 1}))

	s := NewInventoryService(store)
	for _, in := range []InventoryInput{
		{StoreID: 1, ProductID: 1, StockQuantity: 10},
		{StoreID: 1, ProductID: 2, StockQuantity: 4},
		{StoreID: 1, ProductID: 3, StockQuantity: 0},
		{StoreID: 2, ProductID: 1, StockQuantity: 7},
	} {
		_, err := s.Create(ctx, in)
		require.NoError(t, err)
	}
	return s
}

func TestInventoryProductsFiltersOnProduct(t *testing.T) {
	s := seedInventory(t)
	ctx := context.Background()

	all, err := s.Products(ctx, InventoryFilter{StoreID: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)
	assert.Equal(t, "products", all.Entity)

	tops, err := s.Products(ctx, InventoryFilter{StoreID: 1, CategoryIDs: []int64{1}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, tops.Total)
	for _, row := range tops.Rows {
		require.NotNil(t, row.Product)
		require.NotNil(t, row.Product.ProductCategory)
		assert.Equal(t, "Tops", row.Product.ProductCategory.CategoryName)
	}

	linen, err := s.Products(ctx, InventoryFilter{StoreID: 1, Search: "100%", Params: listing.Params{Limit: 1}})
	require.NoError(t, err)
	require.EqualValues(t, 1, linen.Total)
	assert.Equal(t, "100% Linen Shirt", linen.Rows[0].Product.ProductName)
}

func TestInventoryProductsRequiresStore(t *testing.T) {
	s := seedInventory(t)

	_, err := s.Products(context.Background(), InventoryFilter{})
	require.Equal(t, apperr.Invalid, kindOf(t, err))
	e, _ := apperr.As(err)
	assert.Contains(t, e.Fields, "store_id")
}

func TestInventoryRejectsDuplicateProduct(t *testing.T) {
	s := seedInventory(t)

	_, err := s.Create(context.Background(), InventoryInput{StoreID: 1, ProductID: 1})
	require.Equal(t, apperr.Conflict, kindOf(t, err))
	e, _ := apperr.As(err)
	assert.Contains(t, e.Message, "Failed to add product to store")
}

func TestInventoryByStoreAndUpdate(t *testing.T) {
	s := seedInventory(t)
	ctx := context.Background()

	rows, err := s.ByStore(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Classic Tee", rows[0].Product.ProductName)

	row, err := s.Update(ctx, rows[1].ID, InventoryPatch{StockQuantity: ptr[int64](12)})
	require.NoError(t, err)
	assert.EqualValues(t, 12, row.StockQuantity)

	_, err = s.Update(ctx, rows[1].ID, InventoryPatch{StockQuantity: ptr[int64](-1)})
	assert.Equal(t, apperr.Invalid, kindOf(t, err))
}
