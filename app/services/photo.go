package services

import (
	"context"
	"io"
	"strings"

	"github.com/sincro/backoffice/pkg/apperr"
	"github.com/sincro/backoffice/pkg/storage"
)

// Photo is an uploaded image.
type Photo struct {
	Body        io.Reader
	ContentType string
}

var photoTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// savePhoto stores p under entity/id and returns its public URL.
func savePhoto(ctx context.Context, disk storage.Disk, entity string, id int64, p Photo) (string, error) {
	if disk == nil {
		return "", apperr.New(apperr.Internal, "Photo storage is not configured")
	}
	ct, _, _ := strings.Cut(p.ContentType, ";")
	ext, ok := photoTypes[strings.ToLower(strings.TrimSpace(ct))]
	if !ok {
		return "", apperr.Field("photo", "The photo must be a JPEG, PNG, WebP or GIF image.")
	}
	key := storage.PhotoKey(entity, id, ext)
	if err := disk.Put(ctx, key, p.Body, ct); err != nil {
		return "", err
	}
	return disk.URL(key), nil
}
