package controllers

import (
	"net/http"

	"github.com/sincro/backoffice/app/services"
	"github.com/sincro/backoffice/pkg/ctx"
)

type BookingController struct {
	bookings *services.BookingService
}

func NewBookingController(bookings *services.BookingService) *BookingController {
	return &BookingController{bookings: bookings}
}

// Index handles GET /api/bookings?page=&limit=&userId=&productId=&bookingStatus=&search=
func (h *BookingController) Index(c *ctx.Context) {
	params, err := pageParams(c)
	if err != nil {
		c.Fail(err)
		return
	}
	productID, err := optionalID(c, "productId")
	if err != nil {
		c.Fail(err)
		return
	}
	res, err := h.bookings.List(c.Context(), services.BookingFilter{
		Params:        params,
		UserID:        c.Query("userId"),
		ProductID:     productID,
		BookingStatus: c.Query("bookingStatus"),
		Search:        c.Query("search"),
	})
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *BookingController) Show(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	b, err := h.bookings.Get(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(b)
}
