package controllers

import (
	"net/http"

	"github.com/sincro/backoffice/app/services"
	"github.com/sincro/backoffice/pkg/ctx"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Index handles GET /api/orders?page=&limit=&userId=&orderStatus=&orderCode=&search=
func (h *OrderController) Index(c *ctx.Context) {
	params, err := pageParams(c)
	if err != nil {
		c.Fail(err)
		return
	}
	res, err := h.orders.List(c.Context(), services.OrderFilter{
		Params:      params,
		UserID:      c.Query("userId"),
		OrderStatus: c.Query("orderStatus"),
		OrderCode:   c.Query("orderCode"),
		Search:      c.Query("search"),
	})
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *OrderController) Show(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	o, err := h.orders.Get(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(o)
}
