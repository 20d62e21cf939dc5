package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking is a product reservation made by a shopper.
type Booking struct {
	ID                 int64           `gorm:"primaryKey"              json:"id"`
	QRCode             string          `gorm:"column:qr_code;size:255" json:"qr_code"`
	ProductID          int64           `gorm:"not null;index"          json:"product_id"`
	UserID             string          `gorm:"size:64;index"           json:"user_id"`
	BookingSize        string          `gorm:"size:50"                 json:"booking_size"`
	BookingStatus      string          `gorm:"size:50;index"           json:"booking_status"`
	ExpirationTime     *time.Time      `                               json:"expiration_time"`
	BillingName        string          `gorm:"size:255"                json:"billing_name"`
	BillingEmail       string          `gorm:"size:255"                json:"billing_email"`
	BillingPhone       string          `gorm:"size:50"                 json:"billing_phone"`
	ShippingCity       string          `gorm:"size:120"                json:"shipping_city"`
	ShippingProvince   string          `gorm:"size:120"                json:"shipping_province"`
	ShippingPostalCode string          `gorm:"size:20"                 json:"shipping_postal_code"`
	ShippingState      string          `gorm:"size:120"                json:"shipping_state"`
	ShippingNotes      *string         `gorm:"type:text"               json:"shipping_notes"`
	CreatedAt          time.Time       `                               json:"created_at"`
	UpdatedAt          *time.Time      `                               json:"updated_at"`
	Product            *ProductSummary `gorm:"foreignKey:ProductID"    json:"products"`
}

func (Booking) TableName() string { return "bookings" }

// ProductSummary is the slice of a product embedded in bookings.
type ProductSummary struct {
	ID          int64           `gorm:"primaryKey"         json:"id"`
	ProductName string          `gorm:"size:255"           json:"product_name"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
}

func (ProductSummary) TableName() string { return "products" }
