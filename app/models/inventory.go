package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoreInventory is the stock of one product in one store.
type StoreInventory struct {
	ID            int64             `gorm:"primaryKey"                                json:"id"`
	StoreID       int64             `gorm:"not null;uniqueIndex:idx_store_product"    json:"store_id"`
	ProductID     int64             `gorm:"not null;uniqueIndex:idx_store_product"    json:"product_id"`
	StockQuantity int64             `gorm:"not null;default:0"                        json:"stock_quantity"`
	StockStatus   *string           `gorm:"size:50"                                   json:"stock_status"`
	LastUpdated   *time.Time        `                                                 json:"last_updated"`
	CreatedAt     time.Time         `                                                 json:"created_at"`
	Product       *InventoryProduct `gorm:"foreignKey:ProductID"                      json:"products"`
}

func (StoreInventory) TableName() string { return "store_inventories" }

// InventoryProduct is the product embedded in an inventory row, with its
// category nested one level further.
type InventoryProduct struct {
	ID                 int64               `gorm:"primaryKey"            json:"id"`
	ProductName        string              `gorm:"size:255"              json:"product_name"`
	Barcode            string              `gorm:"size:64"               json:"barcode"`
	Price              decimal.Decimal     `gorm:"type:decimal(12,2)"    json:"price"`
	DiscountedPrice    decimal.NullDecimal `gorm:"type:decimal(12,2)"    json:"discounted_price"`
	CreatedAt          time.Time           `                             json:"created_at"`
	IsDiscount         *bool               `                             json:"is_discount"`
	UnitPrice          decimal.NullDecimal `gorm:"type:decimal(12,2)"    json:"unit_price"`
	Quantity           *int                `                             json:"quantity"`
	TotalPrice         decimal.NullDecimal `gorm:"type:decimal(12,2)"    json:"total_price"`
	CategoryID         int64               `                             json:"category_id"`
	Brand              *string             `gorm:"size:120"              json:"brand"`
	Color              *string             `gorm:"size:60"               json:"color"`
	ProductDescription *string             `gorm:"type:text"             json:"product_description"`
	SeoTitle           *string             `gorm:"size:255"              json:"seo_title"`
	SeoDescription     *string             `gorm:"type:text"             json:"seo_description"`
	SeoKeywords        *string             `gorm:"size:512"              json:"seo_keywords"`
	PhotoURL           *string             `gorm:"size:512"              json:"photo_url"`
	ProductCategory    *CategorySummary    `gorm:"foreignKey:CategoryID" json:"product_category"`
}

func (InventoryProduct) TableName() string { return "products" }
