package postgrest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sincro/backoffice/pkg/datastore"
	"github.com/sincro/backoffice/pkg/listing"
)

type product struct {
	ID          int64  `json:"id"`
	ProductName string `json:"product_name"`
}

type booking struct {
	ID        int64     `json:"id"`
	QRCode    string    `json:"qr_code"`
	CreatedAt time.Time `json:"created_at"`
	Notes     *string   `json:"shipping_notes"`
	Product   *product  `json:"products"`
}

func (booking) TableName() string { return "bookings" }

type captured struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   []byte
}

func newServer(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) (*Store, *[]captured) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []captured
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, captured{r.Method, r.URL.Path, r.URL.Query(), r.Header.Clone(), body})
		mu.Unlock()
		handle(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL, "service-key"), &calls
}

func bookingQuery() listing.Query {
	return listing.From("bookings", "id", "qr_code").
		In("product_id", []int64{3, 7}).
		Match("50%_off", "qr_code", "billing_name").
		With(listing.Relation{
			Name:       "products",
			Table:      "products",
			ForeignKey: "product_id",
			Columns:    []string{"id", "product_name"},
		})
}

func TestCountUsesExactCountHeader(t *testing.T) {
	store, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Range", "*/25")
	})

	n, err := store.Count(context.Background(), bookingQuery())
	require.NoError(t, err)
	assert.EqualValues(t, 25, n)

	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Equal(t, http.MethodHead, c.method)
	assert.Equal(t, "/rest/v1/bookings", c.path)
	assert.Equal(t, "count=exact", c.header.Get("Prefer"))
	assert.Equal(t, "service-key", c.header.Get("apikey"))
	assert.Equal(t, "Bearer service-key", c.header.Get("Authorization"))
	assert.Equal(t, "id", c.query.Get("select"))
	assert.Equal(t, "in.(3,7)", c.query.Get("product_id"))
	assert.Equal(t, `(qr_code.ilike."*50\\%\\_off*",billing_name.ilike."*50\\%\\_off*")`, c.query.Get("or"))
}

func TestCountDoesNotRetryServerErrors(t *testing.T) {
	store, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := store.Count(context.Background(), bookingQuery())
	require.Error(t, err)
	assert.Len(t, *calls, 1)
}

func TestRowsDoesNotRetryServerErrors(t *testing.T) {
	store, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	var out []booking
	err := store.Rows(context.Background(), bookingQuery(), listing.Range{Offset: 0, Limit: 10}, &out)
	require.Error(t, err)
	assert.Len(t, *calls, 1)
}

func TestRelationPredicatesUseInnerJoin(t *testing.T) {
	store, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Range", "0-0/1")
	})

	q := listing.From("store_inventories").With(listing.Relation{
		Name:    "products",
		Table:   "products",
		Columns: []string{"id", "product_name"},
		Relations: []listing.Relation{{
			Name:    "product_category",
			Table:   "product_categories",
			Columns: []string{"id"},
			Filters: []listing.Filter{{Column: "category_slug", Value: "shoes"}},
		}},
	})

	_, err := store.Count(context.Background(), q)
	require.NoError(t, err)

	c := (*calls)[0]
	assert.Equal(t, "id,products:products!inner(id,product_category:product_categories!inner(id))", c.query.Get("select"))
	assert.Equal(t, "eq.shoes", c.query.Get("products.product_category.category_slug"))
}

func TestRowsCollapsesEmbeddedArrays(t *testing.T) {
	store, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":1,"qr_code":"a","created_at":"2024-05-01T10:00:00+00:00","products":[{"id":3,"product_name":"Tee"}]},
			{"id":2,"qr_code":"b","created_at":"2024-05-01T10:00:00+00:00","products":[]}
		]`))
	})

	var rows []booking
	err := store.Rows(context.Background(), bookingQuery(), listing.Range{Offset: 10, Limit: 10}, &rows)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Product)
	assert.Equal(t, "Tee", rows[0].Product.ProductName)
	assert.Nil(t, rows[1].Product)

	c := (*calls)[0]
	assert.Equal(t, http.MethodGet, c.method)
	assert.Equal(t, "id,qr_code,products:products(id,product_name)", c.query.Get("select"))
	assert.Equal(t, "id.asc", c.query.Get("order"))
	assert.Equal(t, "10", c.query.Get("offset"))
	assert.Equal(t, "10", c.query.Get("limit"))
}

func TestFindMapsNotAcceptableToNotFound(t *testing.T) {
	store, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		_, _ = w.Write([]byte(`{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`))
	})

	err := store.Find(context.Background(), &booking{}, 42)
	assert.ErrorIs(t, err, datastore.ErrNotFound)
	assert.Equal(t, "eq.42", (*calls)[0].query.Get("id"))
	assert.Equal(t, objectJSON, (*calls)[0].header.Get("Accept"))
}

func TestCreateDropsGeneratedFields(t *testing.T) {
	store, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":9,"qr_code":"x","created_at":"2024-05-01T10:00:00+00:00","shipping_notes":null}`))
	})

	b := &booking{QRCode: "x"}
	require.NoError(t, store.Create(context.Background(), b))
	assert.EqualValues(t, 9, b.ID)
	assert.False(t, b.CreatedAt.IsZero())

	var sent map[string]any
	require.NoError(t, json.Unmarshal((*calls)[0].body, &sent))
	assert.Equal(t, map[string]any{"qr_code": "x"}, sent)
	assert.Equal(t, "return=representation", (*calls)[0].header.Get("Prefer"))
}

func TestCreateConflict(t *testing.T) {
	store, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint"}`))
	})

	err := store.Create(context.Background(), &booking{QRCode: "dup"})
	assert.ErrorIs(t, err, datastore.ErrConflict)
}

func TestUpdateSendsOnlyGivenFields(t *testing.T) {
	store, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":4,"qr_code":"new","created_at":"2024-05-01T10:00:00+00:00"}`))
	})

	b := &booking{ID: 4, QRCode: "old"}
	require.NoError(t, store.Update(context.Background(), b, 4, map[string]any{"qr_code": "new"}))
	assert.Equal(t, "new", b.QRCode)

	c := (*calls)[0]
	assert.Equal(t, http.MethodPatch, c.method)
	assert.Equal(t, "eq.4", c.query.Get("id"))
	assert.JSONEq(t, `{"qr_code":"new"}`, string(c.body))
}

func TestDeleteNothingIsNotFound(t *testing.T) {
	store, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	err := store.Delete(context.Background(), booking{}, 5)
	assert.ErrorIs(t, err, datastore.ErrNotFound)
}

func TestAllReadsTableFromElementType(t *testing.T) {
	store, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1},{"id":2}]`))
	})

	var rows []booking
	require.NoError(t, store.All(context.Background(), &rows, "id"))
	assert.Len(t, rows, 2)
	assert.Equal(t, "/rest/v1/bookings", (*calls)[0].path)
	assert.Equal(t, "id", (*calls)[0].query.Get("select"))
}

func TestParseTotal(t *testing.T) {
	n, err := parseTotal("0-9/120")
	require.NoError(t, err)
	assert.EqualValues(t, 120, n)

	_, err = parseTotal("0-9/*")
	assert.Error(t, err)
}
