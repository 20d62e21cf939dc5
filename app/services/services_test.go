package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sincro/backoffice/app/models"
	_ "github.com/sincro/backoffice/database/migrations"
	"github.com/sincro/backoffice/pkg/apperr"
	"github.com/sincro/backoffice/pkg/database"
	"github.com/sincro/backoffice/pkg/datastore/sqlstore"
	"github.com/sincro/backoffice/pkg/migration"
)

// newStore returns a migrated in-memory database.
func newStore(t *testing.T) (*sqlstore.Store, *gorm.DB) {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	_, err = migration.New(db, nil).Run(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return sqlstore.New(db), db
}

// seedProducts creates two categories and three products: ids 1 and 3 in
// category 1 ("Tops"), id 2 in category 2 ("Shoes").
func seedProducts(t *testing.T, s *sqlstore.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &models.Category{CategoryName: "Tops"}))
	require.NoError(t, s.Create(ctx, &models.Category{CategoryName: "Shoes"}))
	for _, p := range []models.Product{
		{ProductName: "Classic Tee", Price: decimal.NewFromInt(129000), CategoryID: 1},
		{ProductName: "Trail Runner", Price: decimal.NewFromInt(899000), CategoryID: 2},
		{ProductName: "100% Linen Shirt", Price: decimal.NewFromInt(349000), CategoryID: 1},
	} {
		require.NoError(t, s.Create(ctx, &p))
	}
}

func kindOf(t *testing.T, err error) apperr.Kind {
	t.Helper()
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok, "want *apperr.Error, got %T: %v", err, err)
	return e.Kind
}

func ptr[T any](v T) *T { return &v }
