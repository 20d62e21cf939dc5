package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sincro/backoffice/pkg/apperr"
)

func TestCouponLifecycle(t *testing.T) {
	store, _ := newStore(t)
	s := NewCouponService(store)
	ctx := context.Background()

	c, err := s.Create(ctx, CouponInput{CouponCode: "WELCOME10", DiscountAmount: decimal.NewFromInt(10000), CouponStatus: "active"})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)

	_, err = s.Create(ctx, CouponInput{CouponCode: "WELCOME10", CouponStatus: "active"})
	assert.Equal(t, apperr.Conflict, kindOf(t, err))

	updated, err := s.Update(ctx, c.ID, CouponPatch{CouponStatus: ptr("used")})
	require.NoError(t, err)
	assert.Equal(t, "used", updated.CouponStatus)
	assert.Equal(t, "WELCOME10", updated.CouponCode)
	assert.NotNil(t, updated.UpdatedAt)

	require.NoError(t, s.Delete(ctx, c.ID))
	assert.Equal(t, apperr.NotFound, kindOf(t, s.Delete(ctx, c.ID)))
}

func TestCouponValidation(t *testing.T) {
	store, _ := newStore(t)
	s := NewCouponService(store)
	ctx := context.Background()

	_, err := s.Create(ctx, CouponInput{CouponCode: "X", DiscountAmount: decimal.NewFromInt(-1), CouponStatus: "gone"})
	require.Equal(t, apperr.Invalid, kindOf(t, err))
	e, _ := apperr.As(err)
	assert.Contains(t, e.Fields, "coupon_code")
	assert.Contains(t, e.Fields, "discount_amount")
	assert.Contains(t, e.Fields, "coupon_status")

	_, err = s.Update(ctx, 1, CouponPatch{CouponStatus: ptr("")})
	assert.Equal(t, apperr.Invalid, kindOf(t, err))

	_, err = s.List(ctx, CouponFilter{Status: "lost"})
	assert.Equal(t, apperr.Invalid, kindOf(t, err))
}

func TestCouponListFiltersByStatus(t *testing.T) {
	store, _ := newStore(t)
	s := NewCouponService(store)
	ctx := context.Background()
	for _, in := range []CouponInput{
		{CouponCode: "SPRING25", CouponStatus: "expired"},
		{CouponCode: "SUMMER10", CouponStatus: "active"},
		{CouponCode: "SUMMER20", CouponStatus: "active"},
	} {
		_, err := s.Create(ctx, in)
		require.NoError(t, err)
	}

	res, err := s.List(ctx, CouponFilter{Status: "active", Search: "summer"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)
	assert.Equal(t, "coupons", res.Entity)
}
