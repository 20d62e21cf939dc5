// Package storage stores uploaded product and store photos.
//
// Two drivers implement Disk:
//   - "local" files under STORAGE_LOCAL_ROOT, served by the kernel at /storage
//   - "s3"    any S3-compatible bucket (AWS S3, MinIO, R2)
//
//	disk, _ := storage.Open(ctx, config.StorageDefault())
//	_ = disk.Put(ctx, "products/12/photo.jpg", file, "image/jpeg")
//	url := disk.URL("products/12/photo.jpg")
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/sincro/backoffice/config"
)

// ErrInvalidPath is returned for keys that escape the disk root.
var ErrInvalidPath = errors.New("storage: invalid path")

// Disk is the driver interface.
type Disk interface {
	// Put writes r to key, replacing any previous object.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error

	// Get opens the object at key. The caller closes it.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL is the public address of key.
	URL(key string) string
}

// Open builds the disk named by driver from configuration.
func Open(ctx context.Context, driver string) (Disk, error) {
	switch driver {
	case "", "local":
		return NewLocal(config.StorageLocalRoot(), config.StorageURL())
	case "s3":
		return NewS3(ctx, S3Options{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
	default:
		return nil, fmt.Errorf("storage: unknown disk %q", driver)
	}
}

// Clean normalises key to a slash-separated relative path and rejects
// parent-directory segments.
func Clean(key string) (string, error) {
	key = strings.TrimLeft(strings.ReplaceAll(strings.TrimSpace(key), "\\", "/"), "/")
	if key == "" {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", ErrInvalidPath
		}
	}
	return path.Clean(key), nil
}

// PhotoKey is the object key for an entity photo, e.g. "products/12/photo.jpg".
func PhotoKey(entity string, id int64, ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%d/photo.%s", entity, id, ext)
}
