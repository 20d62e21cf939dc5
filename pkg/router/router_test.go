package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(name string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", name)
			next.ServeHTTP(w, r)
		})
	}
}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }

func TestGroupsComposePrefixesAndMiddleware(t *testing.T) {
	r := New()
	api := r.Group("/api", tag("api"))
	coupons := api.Group("coupons", tag("auth"))
	coupons.Delete("/{id}", "coupons.destroy", ok, tag("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/coupons/7", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"api", "auth", "route"}, rec.Header().Values("X-Chain"))
}

func TestNamedRoutes(t *testing.T) {
	r := New()
	r.Group("/api").Get("/stores/{id}", "stores.show", ok)

	u, err := r.URL("stores.show", map[string]string{"id": "3"})
	require.NoError(t, err)
	assert.Equal(t, "/api/stores/3", u)

	_, err = r.URL("stores.show", nil)
	assert.Error(t, err)
	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestRoutesSorted(t *testing.T) {
	r := New()
	g := r.Group("/api")
	g.Put("/b", "b.update", ok)
	g.Get("/b", "b.show", ok)
	r.Get("/healthz", "health", ok)

	assert.Equal(t, []RouteInfo{
		{Method: "GET", Path: "/api/b", Name: "b.show"},
		{Method: "PUT", Path: "/api/b", Name: "b.update"},
		{Method: "GET", Path: "/healthz", Name: "health"},
	}, r.Routes())
}
