package gotrue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sincro/backoffice/pkg/identity"
)

func userJSON(id, email string) string {
	return `{"id":"` + id + `","email":"` + email + `","created_at":"2024-05-01T10:00:00Z",` +
		`"user_metadata":{"first_name":"Ana","last_name":"Ruiz","phone":"0812345678"}}`
}

func TestCreateSendsConfirmedUserWithMetadata(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/admin/users", r.URL.Path)
		assert.Equal(t, "Bearer service", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(userJSON("u-1", "ana@shop.io")))
	}))
	defer srv.Close()

	p := New(srv.URL, "service", "anon")
	ident, err := p.Create(context.Background(), identity.NewIdentity{
		Email: "ana@shop.io", Password: "secret1", FirstName: "Ana", LastName: "Ruiz", Phone: "0812345678", Role: "staff",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-1", ident.ID)
	assert.Equal(t, "Ruiz", ident.LastName)
	assert.Equal(t, "0812345678", ident.Phone)

	assert.Equal(t, true, got["email_confirm"])
	md := got["user_metadata"].(map[string]any)
	assert.Equal(t, "Ana", md["first_name"])
	assert.Equal(t, "staff", md["role"])
}

func TestCreateEmailTaken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code":422,"error_code":"email_exists","msg":"A user with this email address has already been registered"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "s", "a").Create(context.Background(), identity.NewIdentity{Email: "x@y.z"})
	assert.ErrorIs(t, err, identity.ErrEmailTaken)
}

func TestLookupSkipsMissing(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		id := strings.TrimPrefix(r.URL.Path, "/auth/v1/admin/users/")
		if id == "gone" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":404,"error_code":"user_not_found","msg":"User not found"}`))
			return
		}
		_, _ = w.Write([]byte(userJSON(id, id+"@shop.io")))
	}))
	defer srv.Close()

	got, err := New(srv.URL, "s", "a").Lookup(context.Background(), []string{"a", "gone", "b"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "b@shop.io", got["b"].Email)
	assert.Equal(t, []string{
		"/auth/v1/admin/users/a",
		"/auth/v1/admin/users/gone",
		"/auth/v1/admin/users/b",
	}, paths)
}

func TestLookupStopsOnServerError(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "s", "a").Lookup(context.Background(), []string{"a", "b", "c"})
	require.Error(t, err)
	assert.Equal(t, 1, hits)
}

func TestListPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1000", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`{"users":[` + userJSON("a", "a@x.io") + `,` + userJSON("b", "b@x.io") + `]}`))
	}))
	defer srv.Close()

	all, err := New(srv.URL, "s", "a").List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAuthenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret1" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"t","user":` + userJSON("u-1", body["email"]) + `}`))
	}))
	defer srv.Close()

	p := New(srv.URL, "service", "anon")
	ident, err := p.Authenticate(context.Background(), "ana@shop.io", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", ident.ID)

	_, err = p.Authenticate(context.Background(), "ana@shop.io", "nope")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestDeleteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := New(srv.URL, "s", "a").Delete(context.Background(), "u-9")
	assert.ErrorIs(t, err, identity.ErrNotFound)
}
