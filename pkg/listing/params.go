package listing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sincro/backoffice/pkg/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params carries pagination. Zero values mean "use the default".
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Resolve applies defaults and rejects out-of-range values.
func (p Params) Resolve() (Params, error) {
	fields := map[string]string{}
	switch {
	case p.Page == 0:
		p.Page = DefaultPage
	case p.Page < 0:
		fields["page"] = "The page must be at least 1."
	}
	switch {
	case p.Limit == 0:
		p.Limit = DefaultLimit
	case p.Limit < 0:
		fields["limit"] = "The limit must be at least 1."
	case p.Limit > MaxLimit:
		fields["limit"] = fmt.Sprintf("The limit must not be greater than %d.", MaxLimit)
	}
	if len(fields) > 0 {
		return p, apperr.Validation(fields)
	}
	return p, nil
}

// Offset is (page-1)*limit.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePositive parses a query-string pagination value. An empty string
// yields 0 (default); anything that is not a positive integer is rejected.
func ParsePositive(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, apperr.Field(field, fmt.Sprintf("The %s must be a positive integer.", field))
	}
	return n, nil
}

// ParseIDs expands a delimiter-joined id list such as "3.7.12" or "3,7".
// An empty string means no filter and returns nil.
func ParseIDs(field, raw string) ([]int64, error) {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == '.' || r == ',' })
	if len(parts) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			return nil, apperr.Field(field, fmt.Sprintf("The %s must be a list of numeric ids.", field))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// EscapeLike escapes esc, '%' and '_' in term so that it matches literally in
// a LIKE pattern declared with ESCAPE esc.
func EscapeLike(term string, esc rune) string {
	var b strings.Builder
	b.Grow(len(term) + 4)
	for _, r := range term {
		if r == esc || r == '%' || r == '_' {
			b.WriteRune(esc)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ContainsPattern returns a "%term%" pattern with term escaped. Case is left
// to the database so both sides fold the same way.
func ContainsPattern(term string, esc rune) string {
	return "%" + EscapeLike(term, esc) + "%"
}
