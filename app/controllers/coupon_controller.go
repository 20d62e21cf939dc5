package controllers

import (
	"net/http"

	"github.com/sincro/backoffice/app/services"
	"github.com/sincro/backoffice/pkg/ctx"
)

type CouponController struct {
	coupons *services.CouponService
}

func NewCouponController(coupons *services.CouponService) *CouponController {
	return &CouponController{coupons: coupons}
}

// Index handles GET /api/coupons?page=&limit=&couponStatus=&search=
func (h *CouponController) Index(c *ctx.Context) {
	params, err := pageParams(c)
	if err != nil {
		c.Fail(err)
		return
	}
	res, err := h.coupons.List(c.Context(), services.CouponFilter{
		Params: params,
		Status: c.Query("couponStatus"),
		Search: c.Query("search"),
	})
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CouponController) All(c *ctx.Context) {
	rows, err := h.coupons.All(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(rows)
}

func (h *CouponController) Show(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	coupon, err := h.coupons.Get(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(coupon)
}

func (h *CouponController) Store(c *ctx.Context) {
	var in services.CouponInput
	if !c.BindJSON(&in) {
		return
	}
	coupon, err := h.coupons.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(coupon)
}

func (h *CouponController) Update(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var p services.CouponPatch
	if !c.BindJSON(&p) {
		return
	}
	coupon, err := h.coupons.Update(c.Context(), id, p)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(coupon)
}

func (h *CouponController) Destroy(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	if err := h.coupons.Delete(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Coupon deleted successfully")
}
