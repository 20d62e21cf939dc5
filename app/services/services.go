// Package services holds the back-office actions, one service per entity.
//
// Services receive their backing store (and, for users, the identity
// provider) through their constructor. Every error they return is an
// *apperr.Error: store sentinels become NotFound or Conflict, anything else
// is logged with its cause and reported as "Failed to <verb> <noun>".
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/sincro/backoffice/pkg/apperr"
	"github.com/sincro/backoffice/pkg/datastore"
	"github.com/sincro/backoffice/pkg/listing"
	"github.com/sincro/backoffice/pkg/logger"
	"github.com/sincro/backoffice/pkg/validate"
)

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// fail classifies err for the caller. noun is singular for record actions
// ("coupon") and plural for collection reads ("coupons").
func fail(ctx context.Context, err error, verb, noun string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	switch {
	case datastore.IsNotFound(err):
		return apperr.Wrap(err, apperr.NotFound, apperr.Title(noun)+" not found")
	case datastore.IsConflict(err):
		return apperr.Wrap(err, apperr.Conflict, fmt.Sprintf("Failed to %s %s: conflicts with existing data", verb, noun))
	}

	wrapped := apperr.Wrap(err, apperr.Internal, fmt.Sprintf("Failed to %s %s", verb, noun))
	logger.WithCtx(ctx).Error(wrapped.Message, "error", fmt.Sprintf("%+v", wrapped.Cause()))
	return wrapped
}

// tabler is satisfied by a pointer to a persisted model.
type tabler[T any] interface {
	*T
	datastore.Tabler
}

// resource is the plain CRUD shared by the entity services.
type resource[T any, PT tabler[T]] struct {
	store datastore.Store
	noun  string // singular, lower case: "store category"
	many  string // plural: "store categories"
}

func (r resource[T, PT]) get(ctx context.Context, id int64) (*T, error) {
	var row T
	if err := r.store.Find(ctx, PT(&row), id); err != nil {
		return nil, fail(ctx, err, "fetch", r.noun)
	}
	return &row, nil
}

func (r resource[T, PT]) all(ctx context.Context, columns ...string) ([]T, error) {
	rows := make([]T, 0)
	if err := r.store.All(ctx, &rows, columns...); err != nil {
		return nil, fail(ctx, err, "fetch", r.many)
	}
	return rows, nil
}

func (r resource[T, PT]) create(ctx context.Context, row PT) (*T, error) {
	if err := r.store.Create(ctx, row); err != nil {
		return nil, fail(ctx, err, "create", r.noun)
	}
	return (*T)(row), nil
}

// update applies a validated patch. An empty patch returns the current row.
func (r resource[T, PT]) update(ctx context.Context, id int64, p patch) (*T, error) {
	if err := validate.Check(p); err != nil {
		return nil, err
	}
	var row T
	if err := r.store.Update(ctx, PT(&row), id, p.fields()); err != nil {
		return nil, fail(ctx, err, "update", r.noun)
	}
	return &row, nil
}

func (r resource[T, PT]) delete(ctx context.Context, id int64) error {
	var row T
	if err := r.store.Delete(ctx, PT(&row), id); err != nil {
		return fail(ctx, err, "delete", r.noun)
	}
	return nil
}

// patch is a partial update. fields maps column names to new values and
// omits absent fields.
type patch interface {
	fields() map[string]any
}

// columns collects the non-nil entries of a patch.
type columns map[string]any

func (c columns) set(column string, v any) columns {
	switch p := v.(type) {
	case *string:
		if p != nil {
			c[column] = *p
		}
	case *int64:
		if p != nil {
			c[column] = *p
		}
	case *int:
		if p != nil {
			c[column] = *p
		}
	case *bool:
		if p != nil {
			c[column] = *p
		}
	case *time.Time:
		if p != nil {
			c[column] = *p
		}
	case *decimal.Decimal:
		if p != nil {
			c[column] = *p
		}
	case datatypes.JSON:
		if p != nil {
			c[column] = p
		}
	default:
		if v != nil {
			c[column] = v
		}
	}
	return c
}

func requireID(id int64) error {
	if id <= 0 {
		return apperr.Field("id", "The id must be a positive integer.")
	}
	return nil
}

// first loads the single row of q, relations included.
func first[T any](ctx context.Context, src listing.Source, q listing.Query) (*T, error) {
	var rows []T
	if err := src.Rows(ctx, q, listing.Range{Limit: 1}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, datastore.ErrNotFound
	}
	return &rows[0], nil
}
