package services

import (
	"context"

	"github.com/sincro/backoffice/app/models"
	"github.com/sincro/backoffice/pkg/datastore"
	"github.com/sincro/backoffice/pkg/listing"
)

// OrderFilter selects orders for List. Zero fields do not filter.
type OrderFilter struct {
	listing.Params
	UserID      string
	OrderStatus string
	OrderCode   string
	// Search matches first name, last name, email or phone.
	Search string
}

var orderColumns = []string{
	"id", "created_at", "order_code", "user_id", "order_status", "order_date",
	"subtotal", "shipping_fee", "discount", "total_amount", "first_name",
	"last_name", "phone", "email", "city", "postal_code", "street_address",
}

type OrderService struct {
	resource[models.Order, *models.Order]
}

func NewOrderService(store datastore.Store) *OrderService {
	return &OrderService{resource[models.Order, *models.Order]{store: store, noun: "order", many: "orders"}}
}

func (s *OrderService) Get(ctx context.Context, id int64) (*models.Order, error) {
	return s.get(ctx, id)
}

func (s *OrderService) List(ctx context.Context, f OrderFilter) (listing.Result[models.Order], error) {
	q := listing.From("orders", orderColumns...).
		Match(f.Search, "first_name", "last_name", "email", "phone")
	if f.UserID != "" {
		q = q.Eq("user_id", f.UserID)
	}
	if f.OrderStatus != "" {
		q = q.Eq("order_status", f.OrderStatus)
	}
	if f.OrderCode != "" {
		q = q.Eq("order_code", f.OrderCode)
	}
	res, err := listing.Run[models.Order](ctx, s.store, q, f.Params, listing.Envelope{
		Entity:  "orders",
		Message: "Fetched orders successfully",
	})
	return res, fail(ctx, err, "fetch", "orders")
}
