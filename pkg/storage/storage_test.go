package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	for in, want := range map[string]string{
		"products/1/photo.jpg":   "products/1/photo.jpg",
		"/stores//2/./photo.png": "stores/2/photo.png",
		`stores\3\photo.png`:     "stores/3/photo.png",
	} {
		got, err := Clean(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, bad := range []string{"", "  ", "../etc/passwd", "a/../../b"} {
		_, err := Clean(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}

func TestPhotoKey(t *testing.T) {
	assert.Equal(t, "products/12/photo.jpg", PhotoKey("products", 12, ".JPG"))
	assert.Equal(t, "stores/3/photo.bin", PhotoKey("stores", 3, ""))
}

func TestLocalDisk(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocal(t.TempDir(), "http://cdn.test/storage/")
	require.NoError(t, err)

	key := "products/7/photo.png"
	require.NoError(t, d.Put(ctx, key, strings.NewReader("v1"), "image/png"))
	require.NoError(t, d.Put(ctx, key, strings.NewReader("v2"), "image/png"))

	ok, err := d.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := d.Get(ctx, key)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "v2", string(body))
	assert.Equal(t, "http://cdn.test/storage/products/7/photo.png", d.URL(key))

	require.NoError(t, d.Delete(ctx, key))
	require.NoError(t, d.Delete(ctx, key))
	ok, err = d.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, d.Put(ctx, "../escape", strings.NewReader("x"), ""), ErrInvalidPath)
}

func TestS3PutUsesPathStyleEndpoint(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path+" "+r.Header.Get("Content-Type"))
		mu.Unlock()
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d, err := NewS3(context.Background(), S3Options{
		Bucket: "photos", Region: "us-east-1", Key: "k", Secret: "s",
		Endpoint: srv.URL, BaseURL: "https://cdn.test/",
	})
	require.NoError(t, err)

	require.NoError(t, d.Put(context.Background(), "stores/2/photo.jpg", strings.NewReader("img"), "image/jpeg"))
	assert.Equal(t, "https://cdn.test/stores/2/photo.jpg", d.URL("stores/2/photo.jpg"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 1)
	assert.Equal(t, "PUT /photos/stores/2/photo.jpg image/jpeg", seen[0])
}
