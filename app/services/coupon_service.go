package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sincro/backoffice/app/models"
	"github.com/sincro/backoffice/pkg/datastore"
	"github.com/sincro/backoffice/pkg/listing"
	"github.com/sincro/backoffice/pkg/validate"
)

type CouponInput struct {
	CouponCode     string          `json:"coupon_code"     validate:"required,min=3,max=100"`
	DiscountAmount decimal.Decimal `json:"discount_amount" validate:"gte=0"`
	CouponStatus   string          `json:"coupon_status"   validate:"required,in=active|used|expired"`
	ExpirationDate *time.Time      `json:"expiration_date"`
}

type CouponPatch struct {
	CouponCode     *string          `json:"coupon_code"     validate:"min=3,max=100"`
	DiscountAmount *decimal.Decimal `json:"discount_amount" validate:"gte=0"`
	CouponStatus   *string          `json:"coupon_status"   validate:"in=active|used|expired"`
	ExpirationDate *time.Time       `json:"expiration_date"`
}

func (p CouponPatch) fields() map[string]any {
	c := columns{}.
		set("coupon_code", p.CouponCode).
		set("discount_amount", p.DiscountAmount).
		set("coupon_status", p.CouponStatus).
		set("expiration_date", p.ExpirationDate)
	if len(c) > 0 {
		c["updated_at"] = now()
	}
	return c
}

// CouponFilter selects coupons for List.
type CouponFilter struct {
	listing.Params
	Status string `json:"coupon_status" validate:"nullable,in=active|used|expired"`
	Search string `json:"search"`
}

var couponColumns = []string{
	"id", "coupon_code", "discount_amount", "coupon_status",
	"expiration_date", "created_at", "updated_at",
}

type CouponService struct {
	resource[models.Coupon, *models.Coupon]
}

func NewCouponService(store datastore.Store) *CouponService {
	return &CouponService{resource[models.Coupon, *models.Coupon]{store: store, noun: "coupon", many: "coupons"}}
}

func (s *CouponService) Create(ctx context.Context, in CouponInput) (*models.Coupon, error) {
	if err := validate.Check(in); err != nil {
		return nil, err
	}
	return s.create(ctx, &models.Coupon{
		CouponCode:     in.CouponCode,
		DiscountAmount: in.DiscountAmount,
		CouponStatus:   in.CouponStatus,
		ExpirationDate: in.ExpirationDate,
	})
}

func (s *CouponService) Get(ctx context.Context, id int64) (*models.Coupon, error) {
	return s.get(ctx, id)
}

func (s *CouponService) All(ctx context.Context) ([]models.Coupon, error) {
	return s.all(ctx)
}

func (s *CouponService) Update(ctx context.Context, id int64, p CouponPatch) (*models.Coupon, error) {
	return s.update(ctx, id, p)
}

func (s *CouponService) Delete(ctx context.Context, id int64) error {
	return s.delete(ctx, id)
}

// List filters by status and searches coupon codes.
func (s *CouponService) List(ctx context.Context, f CouponFilter) (listing.Result[models.Coupon], error) {
	if err := validate.Check(f); err != nil {
		return listing.Result[models.Coupon]{}, err
	}
	q := listing.From("coupons", couponColumns...).Match(f.Search, "coupon_code")
	if f.Status != "" {
		q = q.Eq("coupon_status", f.Status)
	}
	res, err := listing.Run[models.Coupon](ctx, s.store, q, f.Params, listing.Envelope{
		Entity:  "coupons",
		Message: "Fetched coupons successfully",
	})
	return res, fail(ctx, err, "fetch", "coupons")
}
