package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sincro/backoffice/app/models"
	"github.com/sincro/backoffice/pkg/apperr"
	"github.com/sincro/backoffice/pkg/listing"
)

func seedBookings(t *testing.T) *BookingService {
	t.Helper()
	store, _ := newStore(t)
	seedProducts(t, store)
	ctx := context.Background()
	for i := 1; i <= 25; i++ {
		status := "pending"
		if i%2 == 0 {
			status = "confirmed"
		}
		product := int64(i%3 + 1)
		if i == 7 {
			product = 99
		}
		require.NoError(t, store.Create(ctx, &models.Booking{
			QRCode:        fmt.Sprintf("QR-%02d", i),
			ProductID:     product,
			BookingStatus: status,
			BillingName:   fmt.Sprintf("Shopper %02d", i),
			BillingEmail:  fmt.Sprintf("shopper%02d@example.com", i),
		}))
	}
	return NewBookingService(store)
}

func TestBookingListPagesWithinFilter(t *testing.T) {
	s := seedBookings(t)

	res, err := s.List(context.Background(), BookingFilter{
		Params:        listing.Params{Page: 2, Limit: 5},
		BookingStatus: "confirmed",
	})
	require.NoError(t, err)

	assert.EqualValues(t, 12, res.Total)
	assert.Equal(t, 5, res.Offset)
	assert.Equal(t, 5, res.Limit)
	require.Len(t, res.Rows, 5)
	for _, b := range res.Rows {
		assert.Equal(t, "confirmed", b.BookingStatus)
	}
	assert.Equal(t, "QR-12", res.Rows[0].QRCode)

	body := res.Map()
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Fetched bookings successfully", body["message"])
	assert.EqualValues(t, 12, body["total_bookings"])
}

func TestBookingRelationIsObjectOrNull(t *testing.T) {
	s := seedBookings(t)
	ctx := context.Background()

	b, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, b.Product)
	assert.Equal(t, "Trail Runner", b.Product.ProductName)

	orphan, err := s.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, orphan.Product)
}

func TestBookingPastLastPageIsEmpty(t *testing.T) {
	s := seedBookings(t)

	res, err := s.List(context.Background(), BookingFilter{Params: listing.Params{Page: 9, Limit: 10}})
	require.NoError(t, err)
	assert.EqualValues(t, 25, res.Total)
	assert.Empty(t, res.Rows)
}

func TestBookingSearchMatchesBillingFields(t *testing.T) {
	s := seedBookings(t)

	res, err := s.List(context.Background(), BookingFilter{Search: "shopper1"})
	require.NoError(t, err)
	assert.EqualValues(t, 10, res.Total) // shopper10..shopper19

	res, err = s.List(context.Background(), BookingFilter{Search: "%"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Total)
}

func TestBookingRejectsBadPagination(t *testing.T) {
	s := seedBookings(t)

	_, err := s.List(context.Background(), BookingFilter{Params: listing.Params{Limit: 101}})
	assert.Equal(t, apperr.Invalid, kindOf(t, err))

	_, err = s.List(context.Background(), BookingFilter{Params: listing.Params{Page: -1}})
	assert.Equal(t, apperr.Invalid, kindOf(t, err))
}

func TestBookingGetMissing(t *testing.T) {
	s := seedBookings(t)

	_, err := s.Get(context.Background(), 404)
	assert.Equal(t, apperr.NotFound, kindOf(t, err))
	e, _ := apperr.As(err)
	assert.Equal(t, "Booking not found", e.Message)
}
