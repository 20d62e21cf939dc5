// Package logger provides the process-wide structured logger built on
// log/slog.
//
// WithCtx returns the request-scoped logger installed by the logging
// middleware, so every line a handler writes carries its request id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("coupon created", "coupon_id", c.ID)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// L is the base logger. Setup replaces it; until then it writes text to stdout.
var L = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

// Options configures Setup.
type Options struct {
	Production bool
	Output     io.Writer
	// Extra handlers receive every record the primary handler accepts.
	Extra []slog.Handler
}

// Setup builds the base logger: JSON at info level in production, text at
// debug level elsewhere. It also becomes the slog default.
func Setup(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var handler slog.Handler
	if opts.Production {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	if len(opts.Extra) > 0 {
		handler = NewMultiHandler(append([]slog.Handler{handler}, opts.Extra...)...)
	}

	L = slog.New(handler)
	slog.SetDefault(L)
	return L
}

type ctxKey struct{}

// WithCtx returns the logger stored in ctx, or the base logger. When ctx
// carries a sampled span its trace id is attached.
func WithCtx(ctx context.Context) *slog.Logger {
	log := L
	if stored, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && stored != nil {
		log = stored
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		log = log.With("trace_id", sc.TraceID().String())
	}
	return log
}

// InjectLogger stores log in ctx for WithCtx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
