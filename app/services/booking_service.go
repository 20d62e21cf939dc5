package services

import (
	"context"

	"github.com/sincro/backoffice/app/models"
	"github.com/sincro/backoffice/pkg/datastore"
	"github.com/sincro/backoffice/pkg/listing"
)

// BookingFilter selects bookings for List. Zero fields do not filter.
type BookingFilter struct {
	listing.Params
	UserID        string
	ProductID     int64
	BookingStatus string
	// Search matches billing name or email.
	Search string
}

var bookingColumns = []string{
	"id", "qr_code", "product_id", "user_id", "booking_size", "booking_status",
	"expiration_time", "billing_name", "billing_email", "billing_phone",
	"shipping_city", "shipping_province", "shipping_postal_code", "shipping_state",
	"shipping_notes", "created_at", "updated_at",
}

var bookingProduct = listing.Relation{
	Name:       "products",
	Field:      "Product",
	Table:      "products",
	ForeignKey: "product_id",
	Columns:    []string{"id", "product_name", "price"},
}

type BookingService struct {
	resource[models.Booking, *models.Booking]
}

func NewBookingService(store datastore.Store) *BookingService {
	return &BookingService{resource[models.Booking, *models.Booking]{store: store, noun: "booking", many: "bookings"}}
}

// Get loads a booking with its product.
func (s *BookingService) Get(ctx context.Context, id int64) (*models.Booking, error) {
	q := listing.From("bookings", bookingColumns...).With(bookingProduct).Eq("id", id)
	b, err := first[models.Booking](ctx, s.store, q)
	if err != nil {
		return nil, fail(ctx, err, "fetch", "booking")
	}
	return b, nil
}

func (s *BookingService) List(ctx context.Context, f BookingFilter) (listing.Result[models.Booking], error) {
	q := listing.From("bookings", bookingColumns...).
		With(bookingProduct).
		Match(f.Search, "billing_name", "billing_email")
	if f.UserID != "" {
		q = q.Eq("user_id", f.UserID)
	}
	if f.ProductID > 0 {
		q = q.Eq("product_id", f.ProductID)
	}
	if f.BookingStatus != "" {
		q = q.Eq("booking_status", f.BookingStatus)
	}
	res, err := listing.Run[models.Booking](ctx, s.store, q, f.Params, listing.Envelope{
		Entity:  "bookings",
		Message: "Fetched bookings successfully",
	})
	return res, fail(ctx, err, "fetch", "bookings")
}
