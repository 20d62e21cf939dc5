package services

import (
	"context"
	"strings"

	"github.com/sincro/backoffice/app/models"
	"github.com/sincro/backoffice/pkg/apperr"
	"github.com/sincro/backoffice/pkg/datastore"
	"github.com/sincro/backoffice/pkg/listing"
	"github.com/sincro/backoffice/pkg/validate"
)

type InventoryInput struct {
	StoreID       int64   `json:"store_id"       validate:"required,gt=0"`
	ProductID     int64   `json:"product_id"     validate:"required,gt=0"`
	StockQuantity int64   `json:"stock_quantity" validate:"gte=0"`
	StockStatus   *string `json:"stock_status"   validate:"max=50"`
}

type InventoryPatch struct {
	StockQuantity *int64  `json:"stock_quantity" validate:"gte=0"`
	StockStatus   *string `json:"stock_status"   validate:"max=50"`
}

func (p InventoryPatch) fields() map[string]any {
	c := columns{}.
		set("stock_quantity", p.StockQuantity).
		set("stock_status", p.StockStatus)
	if len(c) > 0 {
		c["last_updated"] = now()
	}
	return c
}

// InventoryFilter selects the products stocked by one store.
type InventoryFilter struct {
	listing.Params
	StoreID     int64
	CategoryIDs []int64
	// Search matches product names.
	Search string
}

var inventoryColumns = []string{
	"id", "store_id", "product_id", "stock_quantity", "stock_status",
	"last_updated", "created_at",
}

var inventoryProductColumns = []string{
	"id", "product_name", "barcode", "price", "discounted_price", "created_at",
	"is_discount", "unit_price", "quantity", "total_price", "category_id",
	"brand", "color", "product_description", "seo_title", "seo_description",
	"seo_keywords", "photo_url",
}

type InventoryService struct {
	resource[models.StoreInventory, *models.StoreInventory]
}

func NewInventoryService(store datastore.Store) *InventoryService {
	return &InventoryService{resource[models.StoreInventory, *models.StoreInventory]{
		store: store, noun: "store inventory", many: "store inventory",
	}}
}

// Create adds a product to a store. A product is stocked at most once per
// store; a second insert is a Conflict.
func (s *InventoryService) Create(ctx context.Context, in InventoryInput) (*models.StoreInventory, error) {
	if err := validate.Check(in); err != nil {
		return nil, err
	}
	ts := now()
	row := &models.StoreInventory{
		StoreID:       in.StoreID,
		ProductID:     in.ProductID,
		StockQuantity: in.StockQuantity,
		StockStatus:   in.StockStatus,
		LastUpdated:   &ts,
	}
	if err := s.store.Create(ctx, row); err != nil {
		return nil, fail(ctx, err, "add", "product to store")
	}
	return row, nil
}

// ByStore lists a store's whole inventory with a product summary.
func (s *InventoryService) ByStore(ctx context.Context, storeID int64) ([]models.StoreInventory, error) {
	if err := requireID(storeID); err != nil {
		return nil, err
	}
	q := listing.From("store_inventories", inventoryColumns...).
		Eq("store_id", storeID).
		With(listing.Relation{
			Name:       "products",
			Field:      "Product",
			Table:      "products",
			ForeignKey: "product_id",
			Columns:    []string{"id", "product_name", "price", "barcode", "photo_url"},
		})

	total, err := s.store.Count(ctx, q)
	if err != nil {
		return nil, fail(ctx, err, "fetch", "store inventory")
	}
	rows := make([]models.StoreInventory, 0, total)
	if total > 0 {
		if err := s.store.Rows(ctx, q, listing.Range{Limit: int(total)}, &rows); err != nil {
			return nil, fail(ctx, err, "fetch", "store inventory")
		}
	}
	return rows, nil
}

func (s *InventoryService) Update(ctx context.Context, id int64, p InventoryPatch) (*models.StoreInventory, error) {
	return s.update(ctx, id, p)
}

func (s *InventoryService) Delete(ctx context.Context, id int64) error {
	return s.delete(ctx, id)
}

// Products pages through a store's inventory. Category and search
// predicates apply to the stocked product.
func (s *InventoryService) Products(ctx context.Context, f InventoryFilter) (listing.Result[models.StoreInventory], error) {
	if f.StoreID <= 0 {
		return listing.Result[models.StoreInventory]{}, apperr.Field("store_id", "The store_id field is required.")
	}
	product := listing.Relation{
		Name:       "products",
		Field:      "Product",
		Table:      "products",
		ForeignKey: "product_id",
		Columns:    inventoryProductColumns,
		Relations: []listing.Relation{{
			Name:       "product_category",
			Field:      "ProductCategory",
			Table:      "product_categories",
			ForeignKey: "category_id",
			Columns:    []string{"id", "category_name", "category_slug"},
		}},
	}
	if len(f.CategoryIDs) > 0 {
		product.Filters = []listing.Filter{{Column: "category_id", Op: listing.OpIn, Value: f.CategoryIDs}}
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		product.Search = &listing.Search{Term: term, Columns: []string{"product_name"}}
	}

	q := listing.From("store_inventories", inventoryColumns...).
		Eq("store_id", f.StoreID).
		With(product)
	res, err := listing.Run[models.StoreInventory](ctx, s.store, q, f.Params, listing.Envelope{
		Entity:  "products",
		Message: "Fetched store inventory products successfully",
	})
	return res, fail(ctx, err, "fetch", "store inventory products")
}
