package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sincro/backoffice/app/models"
	"github.com/sincro/backoffice/pkg/listing"
)

func TestStoreListCategoriesAndSearch(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &models.StoreCategory{CategoryName: "Fashion"}))
	require.NoError(t, store.Create(ctx, &models.StoreCategory{CategoryName: "Grocery"}))
	require.NoError(t, store.Create(ctx, &models.StoreCategory{CategoryName: "Books"}))
	for _, st := range []models.Store{
		{StoreName: "Jakarta Flagship", StoreCategoryID: 1},
		{StoreName: "Bandung Market", StoreCategoryID: 2},
		{StoreName: "Jakarta Express", StoreCategoryID: 2},
		{StoreName: "Surabaya Reads", StoreCategoryID: 3},
	} {
		require.NoError(t, store.Create(ctx, &st))
	}
	svc := NewStoreService(store, nil)
	page := listing.Params{Page: 1, Limit: 10}

	res, err := svc.List(ctx, StoreFilter{Params: page, CategoryIDs: []int64{1, 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
	require.Len(t, res.Rows, 3)
	for _, st := range res.Rows {
		require.NotNil(t, st.StoreCategory, st.StoreName)
		assert.Equal(t, st.StoreCategoryID, st.StoreCategory.ID)
	}
	assert.Equal(t, "Grocery", res.Rows[1].StoreCategory.CategoryName)

	res, err = svc.List(ctx, StoreFilter{Params: page, CategoryIDs: []int64{2}, Search: "jakarta"})
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Total)
	assert.Equal(t, "Jakarta Express", res.Rows[0].StoreName)

	// An empty id set is no filter at all.
	res, err = svc.List(ctx, StoreFilter{Params: page, CategoryIDs: []int64{}})
	require.NoError(t, err)
	assert.EqualValues(t, 4, res.Total)

	res, err = svc.List(ctx, StoreFilter{Params: listing.Params{Page: 2, Limit: 3}})
	require.NoError(t, err)
	env := res.Map()
	assert.Equal(t, "Fetched stores successfully", env["message"])
	assert.EqualValues(t, 4, env["total_stores"])
	assert.Equal(t, 3, env["offset"])
	assert.Equal(t, 3, env["limit"])
	rows, ok := env["stores"].([]models.Store)
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, "Surabaya Reads", rows[0].StoreName)
	assert.Equal(t, "Books", rows[0].StoreCategory.CategoryName)
}
