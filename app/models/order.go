package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a placed customer order.
type Order struct {
	ID            int64           `gorm:"primaryKey"         json:"id"`
	CreatedAt     time.Time       `                          json:"created_at"`
	OrderCode     string          `gorm:"size:64;index"      json:"order_code"`
	UserID        string          `gorm:"size:64;index"      json:"user_id"`
	OrderStatus   string          `gorm:"size:50;index"      json:"order_status"`
	OrderDate     *time.Time      `                          json:"order_date"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2)" json:"subtotal"`
	ShippingFee   decimal.Decimal `gorm:"type:decimal(12,2)" json:"shipping_fee"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_amount"`
	FirstName     string          `gorm:"size:120"           json:"first_name"`
	LastName      string          `gorm:"size:120"           json:"last_name"`
	Phone         string          `gorm:"size:50"            json:"phone"`
	Email         string          `gorm:"size:255"           json:"email"`
	City          string          `gorm:"size:120"           json:"city"`
	PostalCode    string          `gorm:"size:20"            json:"postal_code"`
	StreetAddress string          `gorm:"size:255"           json:"street_address"`
}

func (Order) TableName() string { return "orders" }
