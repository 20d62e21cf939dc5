package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon statuses.
const (
	CouponActive  = "active"
	CouponUsed    = "used"
	CouponExpired = "expired"
)

// Coupon is a discount code.
type Coupon struct {
	ID             int64           `gorm:"primaryKey"                json:"id"`
	CouponCode     string          `gorm:"size:100;not null;unique"  json:"coupon_code"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2)"        json:"discount_amount"`
	CouponStatus   string          `gorm:"size:20;index;not null"    json:"coupon_status"`
	ExpirationDate *time.Time      `                                 json:"expiration_date"`
	CreatedAt      time.Time       `                                 json:"created_at"`
	UpdatedAt      *time.Time      `                                 json:"updated_at"`
}

func (Coupon) TableName() string { return "coupons" }
