// Package ctx gives handlers a single request context instead of the
// (http.ResponseWriter, *http.Request) pair:
//
//	func (h *CouponController) Show(c *ctx.Context) {
//	    id, err := c.ParamInt64("id")
//	    if err != nil {
//	        c.Fail(err)
//	        return
//	    }
//	    ...
//	}
//
//	router.Get("/coupons/{id}", "coupons.show", ctx.Wrap(h.Show))
package ctx

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/sincro/backoffice/pkg/apperr"
	"github.com/sincro/backoffice/pkg/bind"
	"github.com/sincro/backoffice/pkg/logger"
	"github.com/sincro/backoffice/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap adapts h to http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps one request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// Param returns a URL path parameter.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamInt64 parses a positive numeric path parameter.
func (c *Context) ParamInt64(key string) (int64, error) {
	n, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || n <= 0 {
		return 0, apperr.Field(key, "The "+key+" must be a positive integer.")
	}
	return n, nil
}

// Query returns a trimmed query-string value, or "".
func (c *Context) Query(key string) string {
	return strings.TrimSpace(c.R.URL.Query().Get(key))
}

// Context returns the request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// BindJSON decodes and validates the body into dest. On failure it writes
// the error response and returns false.
//
//	var in CouponInput
//	if !c.BindJSON(&in) {
//	    return
//	}
func (c *Context) BindJSON(dest any) bool {
	if err := bind.JSON(c.W, c.R, dest); err != nil {
		c.Fail(err)
		return false
	}
	return true
}

// JSON writes v with code.
func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

// Success sends {"status":200,"data":...}.
func (c *Context) Success(data any) {
	c.status = http.StatusOK
	response.Success(c.W, data)
}

// Created sends {"status":201,"data":...}.
func (c *Context) Created(data any) {
	c.status = http.StatusCreated
	response.Created(c.W, data)
}

// Message sends {"status":200,"message":...}.
func (c *Context) Message(message string) {
	c.status = http.StatusOK
	response.Message(c.W, message)
}

// Fail writes err through response.Fail. Errors that carry no caller-safe
// message are logged here, since nothing upstream has seen them.
func (c *Context) Fail(err error) {
	if _, ok := apperr.As(err); !ok {
		logger.WithCtx(c.Context()).Error("unhandled error", "method", c.R.Method, "path", c.R.URL.Path, "error", err)
	}
	c.status = response.StatusOf(apperr.KindOf(err))
	response.Fail(c.W, err)
}

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
