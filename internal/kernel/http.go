// Package kernel builds the HTTP handler: global middleware, operational
// endpoints and the API routes.
package kernel

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sincro/backoffice/app/graphql"
	"github.com/sincro/backoffice/app/routes"
	"github.com/sincro/backoffice/config"
	"github.com/sincro/backoffice/internal/bootstrap"
	gql "github.com/sincro/backoffice/pkg/graphql"
	"github.com/sincro/backoffice/pkg/metrics"
	"github.com/sincro/backoffice/pkg/middleware"
	"github.com/sincro/backoffice/pkg/reqid"
	"github.com/sincro/backoffice/pkg/response"
	"github.com/sincro/backoffice/pkg/router"
	"github.com/sincro/backoffice/pkg/storage"
	"github.com/sincro/backoffice/pkg/tracing"
)

// New returns the router for app. limiter may be nil to disable rate
// limiting; the caller owns its sweep loop.
func New(app *bootstrap.App, limiter *middleware.RateLimiter) (*router.Router, error) {
	r := router.New()

	// Outermost first: metrics see total latency, recovery sits inside
	// tracing so panics still close their span, and the request id exists
	// before anything logs.
	r.Use(metrics.Middleware())
	r.Use(tracing.Middleware)
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(config.CORSOrigins())))
	if limiter != nil {
		r.Use(limiter.Middleware)
	}
	r.Use(middleware.Timeout(config.RequestTimeout()))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", "health", health(app))
	r.Get("/metrics", "metrics", metrics.Handler())

	if disk, ok := app.Photos.(*storage.Local); ok {
		prefix := storagePrefix(config.StorageURL())
		r.Handle(prefix+"/*", "storage", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(disk.Root()))))
	}

	authenticate := middleware.Auth(app.Issuer)

	schema, err := graphql.NewSchema(app.Graph())
	if err != nil {
		return nil, err
	}
	r.Handle("/graphql", "graphql", authenticate(gql.Handler(schema)))

	routes.RegisterAPI(r, app.Controllers(), authenticate)
	return r, nil
}

// health answers 200 while the SQL connection (if any) answers a ping.
func health(app *bootstrap.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if app.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			sqlDB, err := app.DB.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// storagePrefix is the path of the public storage URL, "/storage" when it
// has none.
func storagePrefix(publicURL string) string {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "/storage"
	}
	p := "/" + strings.Trim(u.Path, "/")
	if p == "/" {
		return "/storage"
	}
	return p
}
