package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Category is a product category.
type Category struct {
	ID                     int64     `gorm:"primaryKey"           json:"id"`
	CategoryName           string    `gorm:"size:255;not null"    json:"category_name"`
	ParentCategoryID       *int64    `gorm:"index"                json:"parent_category_id"`
	CategoryType           *string   `gorm:"size:100"             json:"category_type"`
	CategoryDescription    *string   `gorm:"type:text"            json:"category_description"`
	CategoryImageURL       *string   `gorm:"size:512"             json:"category_image_url"`
	CategorySlug           *string   `gorm:"size:255;index"       json:"category_slug"`
	CategoryStatus         *string   `gorm:"size:50"              json:"category_status"`
	CategoryDisplayOrder   *int      `                            json:"category_display_order"`
	CategorySeoTitle       *string   `gorm:"size:255"             json:"category_seo_title"`
	CategorySeoDescription *string   `gorm:"type:text"            json:"category_seo_description"`
	CategorySeoKeywords    *string   `gorm:"size:512"             json:"category_seo_keywords"`
	CreatedAt              time.Time `                            json:"created_at"`
}

func (Category) TableName() string { return "product_categories" }

// CategorySummary is the slice of a category embedded in products.
type CategorySummary struct {
	ID           int64   `gorm:"primaryKey" json:"id"`
	CategoryName string  `gorm:"size:255"   json:"category_name"`
	CategorySlug *string `gorm:"size:255"   json:"category_slug"`
}

func (CategorySummary) TableName() string { return "product_categories" }

// Product is a catalogue item.
type Product struct {
	ID                 int64               `gorm:"primaryKey"           json:"id"`
	ProductName        string              `gorm:"size:255;not null"    json:"product_name"`
	Barcode            string              `gorm:"size:64;index"        json:"barcode"`
	Price              decimal.Decimal     `gorm:"type:decimal(12,2)"   json:"price"`
	DiscountedPrice    decimal.NullDecimal `gorm:"type:decimal(12,2)"   json:"discounted_price"`
	IsDiscount         *bool               `                            json:"is_discount"`
	UnitPrice          decimal.NullDecimal `gorm:"type:decimal(12,2)"   json:"unit_price"`
	Quantity           *int                `                            json:"quantity"`
	TotalPrice         decimal.NullDecimal `gorm:"type:decimal(12,2)"   json:"total_price"`
	CategoryID         int64               `gorm:"index;not null"       json:"category_id"`
	Subcategory        *int64              `                            json:"subcategory"`
	Brand              *string             `gorm:"size:120"             json:"brand"`
	Color              *string             `gorm:"size:60"              json:"color"`
	SizeAvailable      datatypes.JSON      `                            json:"size_available"`
	ModelSize          *string             `gorm:"size:60"              json:"model_size"`
	ModelHeight        *string             `gorm:"size:60"              json:"model_height"`
	Fit                *string             `gorm:"size:60"              json:"fit"`
	Gender             *string             `gorm:"size:30"              json:"gender"`
	InventoryStatus    *string             `gorm:"size:50"              json:"inventory_status"`
	Customizable       *bool               `                            json:"customizable"`
	ProductDescription *string             `gorm:"type:text"            json:"product_description"`
	AutoCompletion     *bool               `                            json:"auto_completion"`
	Reservations       *bool               `                            json:"reservations"`
	CouponsApplied     datatypes.JSON      `                            json:"coupons_applied"`
	SeoTitle           *string             `gorm:"size:255"             json:"seo_title"`
	SeoDescription     *string             `gorm:"type:text"            json:"seo_description"`
	SeoKeywords        *string             `gorm:"size:512"             json:"seo_keywords"`
	PhotoURL           *string             `gorm:"size:512"             json:"photo_url"`
	CreatedAt          time.Time           `                            json:"created_at"`
	Category           *CategorySummary    `gorm:"foreignKey:CategoryID" json:"product_categories"`
}

func (Product) TableName() string { return "products" }
