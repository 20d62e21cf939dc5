package sqlstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sincro/backoffice/pkg/database"
	"github.com/sincro/backoffice/pkg/datastore"
	"github.com/sincro/backoffice/pkg/listing"
)

type category struct {
	ID   int64  `gorm:"primaryKey" json:"id"`
	Slug string `gorm:"size:64"    json:"slug"`
}

func (category) TableName() string { return "categories" }

type product struct {
	ID         int64     `gorm:"primaryKey"            json:"id"`
	Name       string    `gorm:"size:64;unique"        json:"name"`
	CategoryID int64     `                             json:"category_id"`
	Category   *category `gorm:"foreignKey:CategoryID" json:"category"`
}

func (product) TableName() string { return "products" }

type booking struct {
	ID        int64     `gorm:"primaryKey"           json:"id"`
	Code      string    `gorm:"size:64"              json:"code"`
	ProductID int64     `                            json:"product_id"`
	CreatedAt time.Time `                            json:"created_at"`
	Product   *product  `gorm:"foreignKey:ProductID" json:"product"`
}

func (booking) TableName() string { return "bookings" }

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&category{}, &product{}, &booking{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(db)
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &category{Slug: "tops"}))
	require.NoError(t, s.Create(ctx, &category{Slug: "shoes"}))
	require.NoError(t, s.Create(ctx, &product{Name: "Tee", CategoryID: 1}))
	require.NoError(t, s.Create(ctx, &product{Name: "Runner", CategoryID: 2}))
	require.NoError(t, s.Create(ctx, &product{Name: "Hoodie", CategoryID: 1}))
	for i := 1; i <= 25; i++ {
		code := fmt.Sprintf("QR-%02d", i)
		switch i {
		case 5:
			code = "QR-50%"
		case 6:
			code = "QR_X"
		}
		require.NoError(t, s.Create(ctx, &booking{Code: code, ProductID: int64(i%3 + 1)}))
	}
}

func bookings() listing.Query {
	return listing.From("bookings", "id", "code", "product_id", "created_at").
		With(listing.Relation{
			Name:       "product",
			Field:      "Product",
			Table:      "products",
			ForeignKey: "product_id",
			Columns:    []string{"id", "name", "category_id"},
		})
}

func TestRunPagesAndCounts(t *testing.T) {
	s := newStore(t)
	seed(t, s)
	ctx := context.Background()
	env := listing.Envelope{Entity: "bookings", Message: "ok"}

	res, err := listing.Run[booking](ctx, s, bookings(), listing.Params{Page: 3, Limit: 10}, env)
	require.NoError(t, err)
	assert.EqualValues(t, 25, res.Total)
	assert.Equal(t, 20, res.Offset)
	require.Len(t, res.Rows, 5)
	assert.EqualValues(t, 21, res.Rows[0].ID)
	require.NotNil(t, res.Rows[0].Product)
	assert.Equal(t, res.Rows[0].ProductID, res.Rows[0].Product.ID)

	res, err = listing.Run[booking](ctx, s, bookings(), listing.Params{Page: 4, Limit: 10}, env)
	require.NoError(t, err)
	assert.EqualValues(t, 25, res.Total)
	assert.Empty(t, res.Rows)
}

func TestFiltersAndEmptyIn(t *testing.T) {
	s := newStore(t)
	seed(t, s)
	ctx := context.Background()

	n, err := s.Count(ctx, bookings().In("product_id", []int64{1, 2}))
	require.NoError(t, err)
	assert.EqualValues(t, 17, n)

	all, err := s.Count(ctx, bookings().In("product_id", nil))
	require.NoError(t, err)
	assert.EqualValues(t, 25, all)
}

func TestSearchMatchesLiterally(t *testing.T) {
	s := newStore(t)
	seed(t, s)
	ctx := context.Background()

	for term, want := range map[string]int64{
		"%":     1,
		"_":     1,
		"qr-0":  7,
		"QR-2":  6,
		"nope!": 0,
	} {
		n, err := s.Count(ctx, bookings().Match(term, "code"))
		require.NoError(t, err, term)
		assert.Equal(t, want, n, term)
	}
}

func TestSearchFoldsBothSidesAlike(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &booking{Code: "Élodie Dupré", ProductID: 1}))
	require.NoError(t, s.Create(ctx, &booking{Code: "Marc Olsen", ProductID: 1}))

	for _, term := range []string{"Élodie", "ÉLODIE", "Dupré", "dupré", "DIE DUP"} {
		n, err := s.Count(ctx, bookings().Match(term, "code"))
		require.NoError(t, err, term)
		assert.EqualValues(t, 1, n, term)
	}
}

func TestRelationFilterRestrictsBaseRows(t *testing.T) {
	s := newStore(t)
	seed(t, s)
	ctx := context.Background()

	q := listing.From("bookings").With(listing.Relation{
		Name:       "product",
		Field:      "Product",
		Table:      "products",
		ForeignKey: "product_id",
		Relations: []listing.Relation{{
			Name:       "category",
			Field:      "Category",
			Table:      "categories",
			ForeignKey: "category_id",
			Filters:    []listing.Filter{{Column: "slug", Value: "shoes"}},
		}},
	})

	n, err := s.Count(ctx, q)
	require.NoError(t, err)
	// Product 2 (Runner) is the only shoe; bookings with i%3 == 1.
	assert.EqualValues(t, 9, n)

	var rows []booking
	require.NoError(t, s.Rows(ctx, q, listing.Range{Limit: 100}, &rows))
	require.Len(t, rows, 9)
	for _, b := range rows {
		require.NotNil(t, b.Product)
		require.NotNil(t, b.Product.Category)
		assert.Equal(t, "shoes", b.Product.Category.Slug)
	}
}

func TestCRUD(t *testing.T) {
	s := newStore(t)
	seed(t, s)
	ctx := context.Background()

	var p product
	require.NoError(t, s.Find(ctx, &p, 2))
	assert.Equal(t, "Runner", p.Name)

	assert.ErrorIs(t, s.Find(ctx, &product{}, 99), datastore.ErrNotFound)

	require.NoError(t, s.FindBy(ctx, &p, "name", "Hoodie"))
	assert.EqualValues(t, 3, p.ID)

	var updated product
	require.NoError(t, s.Update(ctx, &updated, 3, map[string]any{"name": "Zip Hoodie"}))
	assert.Equal(t, "Zip Hoodie", updated.Name)
	assert.EqualValues(t, 3, updated.ID)

	err := s.Create(ctx, &product{Name: "Tee", CategoryID: 1})
	assert.ErrorIs(t, err, datastore.ErrConflict)

	require.NoError(t, s.Delete(ctx, product{}, 3))
	assert.ErrorIs(t, s.Delete(ctx, product{}, 3), datastore.ErrNotFound)

	var names []product
	require.NoError(t, s.All(ctx, &names, "id", "name"))
	require.Len(t, names, 2)
	assert.Equal(t, "Tee", names[0].Name)
}
