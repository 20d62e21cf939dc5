// Package datastore defines the backing-store capability the services
// depend on. Two implementations exist: sqlstore (gorm, any SQL dialect) and
// postgrest (a hosted PostgREST endpoint). Services receive a Store through
// their constructor and never reach for a global client.
package datastore

import (
	"context"
	"errors"

	"github.com/sincro/backoffice/pkg/listing"
)

var (
	// ErrNotFound is returned when a keyed read, update or delete matches no row.
	ErrNotFound = errors.New("datastore: record not found")
	// ErrConflict is returned for unique and foreign-key violations.
	ErrConflict = errors.New("datastore: constraint violation")
)

// Tabler is implemented by every persisted model.
type Tabler interface {
	TableName() string
}

// Store is the CRUD and list-query surface of a backing store.
type Store interface {
	listing.Source

	// Find loads the row with primary key id into dest.
	Find(ctx context.Context, dest Tabler, id any) error
	// FindBy loads the first row where column = value into dest.
	FindBy(ctx context.Context, dest Tabler, column string, value any) error
	// All loads every row of the table into dest, a pointer to a slice of a
	// Tabler type, ordered by primary key. columns narrows the selection.
	All(ctx context.Context, dest any, columns ...string) error
	// Create inserts row and refreshes it with store-generated fields.
	Create(ctx context.Context, row Tabler) error
	// Update applies fields to the row with primary key id, then reloads it
	// into dest.
	Update(ctx context.Context, dest Tabler, id any, fields map[string]any) error
	// Delete removes the row with primary key id from model's table.
	Delete(ctx context.Context, model Tabler, id any) error
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is, or wraps, ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
