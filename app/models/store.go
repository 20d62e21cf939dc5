package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// StoreCategory groups stores.
type StoreCategory struct {
	ID               int64     `gorm:"primaryKey"        json:"id"`
	CreatedAt        time.Time `                         json:"created_at"`
	CategoryName     string    `gorm:"size:255;not null" json:"category_name"`
	ParentCategoryID *int64    `gorm:"index"             json:"parent_category_id"`
	StoreDescription *string   `gorm:"type:text"         json:"store_description"`
	StoreImage       *string   `gorm:"size:512"          json:"store_image"`
	StoreSlug        *string   `gorm:"size:255;index"    json:"store_slug"`
	StoreStatus      *string   `gorm:"size:50"           json:"store_status"`
	StoreSeoTitle    *string   `gorm:"size:255"          json:"store_seo_title"`
	StoreSeoKeywords *string   `gorm:"size:512"          json:"store_seo_keywords"`
}

func (StoreCategory) TableName() string { return "store_categories" }

// StoreCategorySummary is the slice of a store category embedded in stores.
type StoreCategorySummary struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	CategoryName string `gorm:"size:255"   json:"category_name"`
}

func (StoreCategorySummary) TableName() string { return "store_categories" }

// Store is a physical shop.
type Store struct {
	ID                    int64                 `gorm:"primaryKey"                 json:"id"`
	StoreName             string                `gorm:"size:255;not null"          json:"store_name"`
	StoreEmail            string                `gorm:"size:255"                   json:"store_email"`
	StorePhone            string                `gorm:"size:50"                    json:"store_phone"`
	StoreAddress          string                `gorm:"size:255"                   json:"store_address"`
	PostalCode            string                `gorm:"size:20"                    json:"postal_code"`
	Province              string                `gorm:"size:120"                   json:"province"`
	CoverImage            *string               `gorm:"size:512"                   json:"cover_image"`
	AdditionalImages      datatypes.JSON        `                                  json:"additional_images"`
	FreeShippingThreshold decimal.NullDecimal   `gorm:"type:decimal(12,2)"         json:"free_shipping_threshold"`
	StoreHours            *string               `gorm:"size:255"                   json:"store_hours"`
	PhotoURL              *string               `gorm:"size:512"                   json:"photo_url"`
	StoreCategoryID       int64                 `gorm:"index;not null"             json:"store_category_id"`
	CreatedAt             time.Time             `                                  json:"created_at"`
	UpdatedAt             *time.Time            `                                  json:"updated_at"`
	StoreCategory         *StoreCategorySummary `gorm:"foreignKey:StoreCategoryID" json:"store_category"`
}

func (Store) TableName() string { return "stores" }

// StoreOption is the id/name pair used by store pickers.
type StoreOption struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	StoreName string `gorm:"size:255"   json:"store_name"`
}

func (StoreOption) TableName() string { return "stores" }
