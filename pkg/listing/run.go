package listing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/sincro/backoffice/pkg/metrics"
)

var tracer = otel.Tracer("github.com/sincro/backoffice/pkg/listing")

// now is replaced in tests.
var now = time.Now

// Run resolves p, counts the rows matching q and loads the requested page.
// Either query failing aborts the whole operation; no partial result is
// returned. When the offset lies past the total the page query is skipped
// and the result carries no rows.
func Run[T any](ctx context.Context, src Source, q Query, p Params, env Envelope) (Result[T], error) {
	p, err := p.Resolve()
	if err != nil {
		return Result[T]{}, err
	}

	ctx, span := tracer.Start(ctx, "listing."+env.Entity)
	defer span.End()
	span.SetAttributes(
		attribute.String("listing.table", q.Table),
		attribute.Int("listing.page", p.Page),
		attribute.Int("listing.limit", p.Limit),
	)

	start := time.Now()
	total, err := src.Count(ctx, q)
	metrics.ObserveListQuery(env.Entity, "count", start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count")
		return Result[T]{}, err
	}

	offset := p.Offset()
	rows := make([]T, 0)
	if int64(offset) < total {
		start = time.Now()
		err = src.Rows(ctx, q, Range{Offset: offset, Limit: p.Limit}, &rows)
		metrics.ObserveListQuery(env.Entity, "rows", start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "rows")
			return Result[T]{}, err
		}
	}
	span.SetAttributes(attribute.Int64("listing.total", total), attribute.Int("listing.rows", len(rows)))

	return Result[T]{
		Envelope: env,
		Time:     now(),
		Total:    total,
		Offset:   offset,
		Limit:    p.Limit,
		Rows:     rows,
	}, nil
}
