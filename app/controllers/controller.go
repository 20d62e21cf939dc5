// Package controllers adapts HTTP requests to the service actions.
//
// Handlers use the ctx.Context signature and are mounted with ctx.Wrap.
// They parse path and query parameters, call one service method and write
// either the {status, data} envelope or a list result as is.
package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sincro/backoffice/app/services"
	"github.com/sincro/backoffice/config"
	"github.com/sincro/backoffice/pkg/apperr"
	"github.com/sincro/backoffice/pkg/ctx"
	"github.com/sincro/backoffice/pkg/listing"
)

// pageParams reads ?page= and ?limit=. Absent values take the defaults;
// present ones must be positive integers.
func pageParams(c *ctx.Context) (listing.Params, error) {
	page, err := listing.ParsePositive("page", c.Query("page"))
	if err != nil {
		return listing.Params{}, err
	}
	limit, err := listing.ParsePositive("limit", c.Query("limit"))
	if err != nil {
		return listing.Params{}, err
	}
	p := listing.Params{Page: page, Limit: limit}
	if _, err := p.Resolve(); err != nil {
		return listing.Params{}, err
	}
	return p, nil
}

// optionalID parses an optional positive integer query parameter.
func optionalID(c *ctx.Context, key string) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, apperr.Field(key, "The "+key+" must be a positive integer.")
	}
	return n, nil
}

// photo reads the "photo" part of a multipart upload. Release it with
// closePhoto.
func photo(c *ctx.Context) (services.Photo, error) {
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, config.MaxBodyBytes())
	if err := c.R.ParseMultipartForm(config.MaxBodyBytes()); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return services.Photo{}, apperr.New(apperr.Malformed, "Request body too large")
		}
		return services.Photo{}, apperr.Wrap(err, apperr.Malformed, "Expected a multipart/form-data body")
	}
	file, header, err := c.R.FormFile("photo")
	if err != nil {
		return services.Photo{}, apperr.Field("photo", "The photo field is required.")
	}
	ct := header.Header.Get("Content-Type")
	if ct == "" || strings.HasPrefix(ct, "application/octet-stream") {
		// Sniff the first bytes when the client sent no useful type.
		buf := make([]byte, 512)
		n, _ := file.Read(buf)
		ct = http.DetectContentType(buf[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return services.Photo{}, apperr.Wrap(err, apperr.Malformed, "Unreadable photo")
		}
	}
	return services.Photo{Body: file, ContentType: ct}, nil
}

func closePhoto(p services.Photo) {
	if rc, ok := p.Body.(io.Closer); ok {
		rc.Close() //nolint:errcheck
	}
}
