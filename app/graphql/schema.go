// Package graphql exposes the list actions as a read-only GraphQL schema.
//
//	{ bookings(bookingStatus: "confirmed", page: 2, limit: 5) {
//	    total offset limit items { id qr_code products { product_name } } } }
//
// Rows are served through their JSON form, so field names match the REST
// responses.
package graphql

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/sincro/backoffice/app/services"
	"github.com/sincro/backoffice/pkg/apperr"
	gql "github.com/sincro/backoffice/pkg/graphql"
	"github.com/sincro/backoffice/pkg/listing"
	"github.com/sincro/backoffice/pkg/logger"
)

// Services are the actions the schema reads from.
type Services struct {
	Bookings  *services.BookingService
	Coupons   *services.CouponService
	Orders    *services.OrderService
	Products  *services.ProductService
	Stores    *services.StoreService
	Inventory *services.InventoryService
	Users     *services.UserService
}

func fields(names map[string]graphql.Output) graphql.Fields {
	out := graphql.Fields{}
	for name, t := range names {
		out[name] = &graphql.Field{Type: t}
	}
	return out
}

func object(name string, f map[string]graphql.Output) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{Name: name, Fields: fields(f)})
}

// page wraps item in {total offset limit message items}.
func page(item *graphql.Object) *graphql.Object {
	return object(item.Name()+"Page", map[string]graphql.Output{
		"message": graphql.String,
		"total":   graphql.Int,
		"offset":  graphql.Int,
		"limit":   graphql.Int,
		"items":   graphql.NewList(item),
	})
}

var (
	productSummary = object("ProductSummary", map[string]graphql.Output{
		"id": graphql.Int, "product_name": graphql.String, "price": graphql.Float,
	})
	categorySummary = object("CategorySummary", map[string]graphql.Output{
		"id": graphql.Int, "category_name": graphql.String, "category_slug": graphql.String,
	})
	booking = object("Booking", map[string]graphql.Output{
		"id": graphql.Int, "qr_code": graphql.String, "product_id": graphql.Int,
		"user_id": graphql.String, "booking_size": graphql.String, "booking_status": graphql.String,
		"expiration_time": graphql.String, "billing_name": graphql.String,
		"billing_email": graphql.String, "billing_phone": graphql.String,
		"shipping_city": graphql.String, "created_at": graphql.String,
		"products": productSummary,
	})
	coupon = object("Coupon", map[string]graphql.Output{
		"id": graphql.Int, "coupon_code": graphql.String, "discount_amount": graphql.Float,
		"coupon_status": graphql.String, "expiration_date": graphql.String,
		"created_at": graphql.String, "updated_at": graphql.String,
	})
	order = object("Order", map[string]graphql.Output{
		"id": graphql.Int, "order_code": graphql.String, "user_id": graphql.String,
		"order_status": graphql.String, "order_date": graphql.String,
		"subtotal": graphql.Float, "shipping_fee": graphql.Float, "discount": graphql.Float,
		"total_amount": graphql.Float, "first_name": graphql.String, "last_name": graphql.String,
		"email": graphql.String, "phone": graphql.String, "city": graphql.String,
		"created_at": graphql.String,
	})
	product = object("Product", map[string]graphql.Output{
		"id": graphql.Int, "product_name": graphql.String, "barcode": graphql.String,
		"price": graphql.Float, "discounted_price": graphql.Float, "category_id": graphql.Int,
		"brand": graphql.String, "color": graphql.String, "photo_url": graphql.String,
		"created_at": graphql.String, "product_categories": categorySummary,
	})
	inventoryProduct = object("InventoryProduct", map[string]graphql.Output{
		"id": graphql.Int, "product_name": graphql.String, "barcode": graphql.String,
		"price": graphql.Float, "category_id": graphql.Int, "photo_url": graphql.String,
		"product_category": categorySummary,
	})
	inventory = object("StoreInventory", map[string]graphql.Output{
		"id": graphql.Int, "store_id": graphql.Int, "product_id": graphql.Int,
		"stock_quantity": graphql.Int, "stock_status": graphql.String,
		"last_updated": graphql.String, "products": inventoryProduct,
	})
	storeCategory = object("StoreCategorySummary", map[string]graphql.Output{
		"id": graphql.Int, "category_name": graphql.String,
	})
	store = object("Store", map[string]graphql.Output{
		"id": graphql.Int, "store_name": graphql.String, "store_email": graphql.String,
		"store_phone": graphql.String, "store_address": graphql.String,
		"postal_code": graphql.String, "province": graphql.String,
		"photo_url": graphql.String, "store_category_id": graphql.Int,
		"created_at": graphql.String, "store_category": storeCategory,
	})
	user = object("User", map[string]graphql.Output{
		"id": graphql.String, "first_name": graphql.String, "last_name": graphql.String,
		"email": graphql.String, "phone": graphql.String, "role": graphql.String,
		"store_id": graphql.Int, "created_at": graphql.String,
	})
)

func args(extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	out := graphql.FieldConfigArgument{
		"page":  &graphql.ArgumentConfig{Type: graphql.Int},
		"limit": &graphql.ArgumentConfig{Type: graphql.Int},
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

var (
	stringArg = &graphql.ArgumentConfig{Type: graphql.String}
	intArg    = &graphql.ArgumentConfig{Type: graphql.Int}
)

// NewSchema builds the query root over s.
func NewSchema(s Services) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"bookings": &graphql.Field{
				Type: page(booking),
				Args: args(graphql.FieldConfigArgument{
					"userId": stringArg, "productId": intArg, "bookingStatus": stringArg, "search": stringArg,
				}),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					a := argReader(p.Args)
					res, err := s.Bookings.List(p.Context, services.BookingFilter{
						Params:        a.params(),
						UserID:        a.str("userId"),
						ProductID:     int64(a.num("productId")),
						BookingStatus: a.str("bookingStatus"),
						Search:        a.str("search"),
					})
					return resolved(res, err)
				},
			},
			"coupons": &graphql.Field{
				Type: page(coupon),
				Args: args(graphql.FieldConfigArgument{"couponStatus": stringArg, "search": stringArg}),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					a := argReader(p.Args)
					res, err := s.Coupons.List(p.Context, services.CouponFilter{
						Params: a.params(),
						Status: a.str("couponStatus"),
						Search: a.str("search"),
					})
					return resolved(res, err)
				},
			},
			"orders": &graphql.Field{
				Type: page(order),
				Args: args(graphql.FieldConfigArgument{
					"userId": stringArg, "orderStatus": stringArg, "orderCode": stringArg, "search": stringArg,
				}),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					a := argReader(p.Args)
					res, err := s.Orders.List(p.Context, services.OrderFilter{
						Params:      a.params(),
						UserID:      a.str("userId"),
						OrderStatus: a.str("orderStatus"),
						OrderCode:   a.str("orderCode"),
						Search:      a.str("search"),
					})
					return resolved(res, err)
				},
			},
			"products": &graphql.Field{
				Type: page(product),
				Args: args(graphql.FieldConfigArgument{"categories": stringArg, "search": stringArg}),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					a := argReader(p.Args)
					ids, err := listing.ParseIDs("categories", a.str("categories"))
					if err != nil {
						return nil, clientError(err)
					}
					res, err := s.Products.List(p.Context, services.ProductFilter{
						Params: a.params(), CategoryIDs: ids, Search: a.str("search"),
					})
					return resolved(res, err)
				},
			},
			"stores": &graphql.Field{
				Type: page(store),
				Args: args(graphql.FieldConfigArgument{"categories": stringArg, "search": stringArg}),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					a := argReader(p.Args)
					ids, err := listing.ParseIDs("categories", a.str("categories"))
					if err != nil {
						return nil, clientError(err)
					}
					res, err := s.Stores.List(p.Context, services.StoreFilter{
						Params: a.params(), CategoryIDs: ids, Search: a.str("search"),
					})
					return resolved(res, err)
				},
			},
			"storeInventory": &graphql.Field{
				Type: page(inventory),
				Args: args(graphql.FieldConfigArgument{
					"storeId":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"categories": stringArg,
					"search":     stringArg,
				}),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					a := argReader(p.Args)
					ids, err := listing.ParseIDs("categories", a.str("categories"))
					if err != nil {
						return nil, clientError(err)
					}
					res, err := s.Inventory.Products(p.Context, services.InventoryFilter{
						Params:      a.params(),
						StoreID:     int64(a.num("storeId")),
						CategoryIDs: ids,
						Search:      a.str("search"),
					})
					return resolved(res, err)
				},
			},
			"users": &graphql.Field{
				Type: page(user),
				Args: args(graphql.FieldConfigArgument{"role": stringArg}),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					a := argReader(p.Args)
					res, err := s.Users.List(p.Context, services.UserFilter{Params: a.params(), Role: a.str("role")})
					return resolved(res, err)
				},
			},
		},
	})
	return gql.NewSchema(query)
}

type argReader map[string]any

func (a argReader) str(key string) string {
	s, _ := a[key].(string)
	return s
}

func (a argReader) num(key string) int {
	n, _ := a[key].(int)
	return n
}

func (a argReader) params() listing.Params {
	return listing.Params{Page: a.num("page"), Limit: a.num("limit")}
}

// resolved turns a list result into the page object. Rows go through
// their JSON encoding so decimals, times and relations render as in REST.
func resolved[T any](res listing.Result[T], err error) (any, error) {
	if err != nil {
		return nil, clientError(err)
	}
	raw, err := json.Marshal(res.Rows)
	if err != nil {
		return nil, clientError(err)
	}
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, clientError(err)
	}
	return map[string]any{
		"message": res.Message,
		"total":   res.Total,
		"offset":  res.Offset,
		"limit":   res.Limit,
		"items":   items,
	}, nil
}

// clientError keeps only the caller-safe message of err.
func clientError(err error) error {
	if e, ok := apperr.As(err); ok {
		if len(e.Fields) == 0 {
			return errors.New(e.Message)
		}
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		msgs := make([]string, len(keys))
		for i, k := range keys {
			msgs[i] = e.Fields[k]
		}
		return errors.New(e.Message + ": " + strings.Join(msgs, " "))
	}
	logger.Error("graphql: unhandled error", "error", err)
	return errors.New("Internal server error")
}
