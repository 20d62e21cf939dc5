package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/sincro/backoffice/pkg/logger"
	"github.com/sincro/backoffice/pkg/response"
)

// Recovery turns a handler panic into a logged 500. Register it after
// Logger so the log line carries the request id.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.WithCtx(r.Context()).Error("panic recovered",
					"error", fmt.Sprintf("%v", rec),
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
				)
				response.Error(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
