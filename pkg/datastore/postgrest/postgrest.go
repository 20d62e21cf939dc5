// Package postgrest implements datastore.Store over a hosted PostgREST
// endpoint such as Supabase's /rest/v1.
//
// Counts use HEAD with Prefer: count=exact and read the total from
// Content-Range. Embedded relations that carry predicates are requested with
// !inner so they restrict the base rows, and embedded arrays are collapsed to
// a single object or null before decoding.
package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/sincro/backoffice/pkg/datastore"
	"github.com/sincro/backoffice/pkg/http"
	"github.com/sincro/backoffice/pkg/listing"
	"github.com/sincro/backoffice/pkg/metrics"
)

const (
	restPath   = "/rest/v1/"
	objectJSON = "application/vnd.pgrst.object+json"
	likeEscape = '\\'
)

// Store is a PostgREST-backed datastore.Store.
type Store struct {
	c *http.Client
}

// New builds a store for the project at baseURL authenticated with key.
func New(baseURL, key string, opts ...http.Option) *Store {
	opts = append([]http.Option{
		http.WithHeader("apikey", key),
		http.WithHeader("Authorization", "Bearer "+key),
	}, opts...)
	return &Store{c: http.NewClient(baseURL, opts...)}
}

func (s *Store) Count(ctx context.Context, q listing.Query) (int64, error) {
	defer metrics.ObserveDBQuery("count", time.Now())

	req := s.c.Head(restPath + q.Table).
		Query("select", selectList([]string{"id"}, restricting(q.Relations), true)).
		Header("Prefer", "count=exact")
	applyFilters(req, "", q.Filters, q.Search)
	applyRelationFilters(req, "", q.Relations)

	resp, err := req.Send(ctx)
	if err != nil {
		return 0, err
	}
	if err := check(resp); err != nil {
		return 0, err
	}
	return parseTotal(resp.Header("Content-Range"))
}

func (s *Store) Rows(ctx context.Context, q listing.Query, r listing.Range, dest any) error {
	defer metrics.ObserveDBQuery("select", time.Now())

	req := s.c.Get(restPath+q.Table).
		Query("select", selectList(q.Columns, q.Relations, false)).
		Query("order", q.Order()+".asc").
		Query("offset", strconv.Itoa(r.Offset)).
		Query("limit", strconv.Itoa(r.Limit))
	applyFilters(req, "", q.Filters, q.Search)
	applyRelationFilters(req, "", q.Relations)

	resp, err := req.Send(ctx)
	if err != nil {
		return err
	}
	if err := check(resp); err != nil {
		return err
	}
	raw, err := listing.NormalizeRelations(resp.Raw, q.Relations)
	if err != nil {
		return fmt.Errorf("postgrest: normalize %s: %w", q.Table, err)
	}
	return decode(raw, dest)
}

func (s *Store) Find(ctx context.Context, dest datastore.Tabler, id any) error {
	return s.FindBy(ctx, dest, "id", id)
}

func (s *Store) FindBy(ctx context.Context, dest datastore.Tabler, column string, value any) error {
	defer metrics.ObserveDBQuery("select", time.Now())

	resp, err := s.c.Get(restPath+dest.TableName()).
		Query("select", "*").
		Query(column, "eq."+literal(value)).
		Query("limit", "1").
		Header("Accept", objectJSON).
		Send(ctx)
	if err != nil {
		return err
	}
	if err := check(resp); err != nil {
		return err
	}
	return decode(resp.Raw, dest)
}

func (s *Store) All(ctx context.Context, dest any, columns ...string) error {
	defer metrics.ObserveDBQuery("select", time.Now())

	table, err := tableOf(dest)
	if err != nil {
		return err
	}
	sel := "*"
	if len(columns) > 0 {
		sel = strings.Join(columns, ",")
	}
	resp, err := s.c.Get(restPath+table).
		Query("select", sel).
		Query("order", "id.asc").
		Send(ctx)
	if err != nil {
		return err
	}
	if err := check(resp); err != nil {
		return err
	}
	return decode(resp.Raw, dest)
}

func (s *Store) Create(ctx context.Context, row datastore.Tabler) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	body, err := writable(row)
	if err != nil {
		return err
	}
	resp, err := s.c.Post(restPath+row.TableName()).
		Header("Prefer", "return=representation").
		Header("Accept", objectJSON).
		Body(body).
		Send(ctx)
	if err != nil {
		return err
	}
	if err := check(resp); err != nil {
		return err
	}
	return decode(resp.Raw, row)
}

func (s *Store) Update(ctx context.Context, dest datastore.Tabler, id any, fields map[string]any) error {
	if len(fields) == 0 {
		return s.Find(ctx, dest, id)
	}
	defer metrics.ObserveDBQuery("update", time.Now())

	resp, err := s.c.Patch(restPath+dest.TableName()).
		Query("id", "eq."+literal(id)).
		Header("Prefer", "return=representation").
		Header("Accept", objectJSON).
		Body(fields).
		Send(ctx)
	if err != nil {
		return err
	}
	if err := check(resp); err != nil {
		return err
	}
	rv := reflect.ValueOf(dest).Elem()
	rv.Set(reflect.Zero(rv.Type()))
	return decode(resp.Raw, dest)
}

func (s *Store) Delete(ctx context.Context, model datastore.Tabler, id any) error {
	defer metrics.ObserveDBQuery("delete", time.Now())

	resp, err := s.c.Delete(restPath+model.TableName()).
		Query("id", "eq."+literal(id)).
		Header("Prefer", "return=representation").
		Query("select", "id").
		Send(ctx)
	if err != nil {
		return err
	}
	if err := check(resp); err != nil {
		return err
	}
	var deleted []json.RawMessage
	if err := json.Unmarshal(resp.Raw, &deleted); err != nil {
		return fmt.Errorf("postgrest: decode delete: %w", err)
	}
	if len(deleted) == 0 {
		return datastore.ErrNotFound
	}
	return nil
}

// selectList renders "a,b,alias:table(c,d)". With inner set, every embed is
// marked !inner and only carries its id.
func selectList(columns []string, rels []listing.Relation, inner bool) string {
	parts := append([]string(nil), columns...)
	if len(parts) == 0 {
		parts = []string{"*"}
	}
	for _, rel := range rels {
		parts = append(parts, embed(rel, inner))
	}
	return strings.Join(parts, ",")
}

func embed(rel listing.Relation, countOnly bool) string {
	target := rel.Table
	if countOnly || restricts(rel) {
		target += "!inner"
	}
	cols := rel.Columns
	children := rel.Relations
	if countOnly {
		cols = []string{"id"}
		children = restricting(children)
	}
	return rel.Name + ":" + target + "(" + selectList(cols, children, countOnly) + ")"
}

func restricts(rel listing.Relation) bool {
	if rel.Restricts() {
		return true
	}
	for _, child := range rel.Relations {
		if restricts(child) {
			return true
		}
	}
	return false
}

func restricting(rels []listing.Relation) []listing.Relation {
	var out []listing.Relation
	for _, rel := range rels {
		if restricts(rel) {
			out = append(out, rel)
		}
	}
	return out
}

func applyRelationFilters(req *http.Request, prefix string, rels []listing.Relation) {
	for _, rel := range rels {
		path := prefix + rel.Name + "."
		applyFilters(req, path, rel.Filters, rel.Search)
		applyRelationFilters(req, path, rel.Relations)
	}
}

func applyFilters(req *http.Request, prefix string, filters []listing.Filter, search *listing.Search) {
	for _, f := range filters {
		switch f.Op {
		case listing.OpIn:
			req.Query(prefix+f.Column, "in.("+list(f.Value)+")")
		default:
			req.Query(prefix+f.Column, "eq."+literal(f.Value))
		}
	}
	if search != nil && len(search.Columns) > 0 {
		req.Query(prefix+"or", orSearch(search))
	}
}

// orSearch renders (a.ilike."*term*",b.ilike."*term*"). The term is escaped
// for LIKE with backslash and then quoted for the PostgREST grammar. A
// literal '*' cannot be expressed (PostgREST rewrites it to '%'), so it is
// sent as the single-character wildcard '_'.
func orSearch(search *listing.Search) string {
	term := listing.EscapeLike(search.Term, likeEscape)
	term = strings.ReplaceAll(term, "*", "_")
	pattern := quote("*" + term + "*")
	parts := make([]string, len(search.Columns))
	for i, col := range search.Columns {
		parts[i] = col + ".ilike." + pattern
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func literal(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

func list(v any) string {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return quoteIfString(v)
	}
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = quoteIfString(rv.Index(i).Interface())
	}
	return strings.Join(parts, ",")
}

func quoteIfString(v any) string {
	if s, ok := v.(string); ok {
		return quote(s)
	}
	return literal(v)
}

// parseTotal reads N from "0-9/N" or "*/N".
func parseTotal(contentRange string) (int64, error) {
	i := strings.LastIndexByte(contentRange, '/')
	if i < 0 || contentRange[i+1:] == "*" {
		return 0, fmt.Errorf("postgrest: no exact count in Content-Range %q", contentRange)
	}
	n, err := strconv.ParseInt(contentRange[i+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("postgrest: parse Content-Range %q: %w", contentRange, err)
	}
	return n, nil
}

// apiError is the error body PostgREST returns.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func check(resp *http.Response) error {
	if resp.OK() {
		return nil
	}
	var body apiError
	_ = json.Unmarshal(resp.Raw, &body)

	switch {
	case resp.StatusCode == 404, resp.StatusCode == 406:
		// 406 is the single-object response matching no row (PGRST116).
		return datastore.ErrNotFound
	case resp.StatusCode == 409, body.Code == "23505", body.Code == "23503":
		return fmt.Errorf("%w: %s", datastore.ErrConflict, body.Message)
	}
	if body.Message != "" {
		return fmt.Errorf("postgrest: status %d: %s %s", resp.StatusCode, body.Code, body.Message)
	}
	return resp.Throw()
}

func decode(raw []byte, dest any) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("postgrest: decode: %w", err)
	}
	return nil
}

// writable turns row into an insert body: nulls, a zero id and zero
// timestamps are dropped so the database fills its defaults.
func writable(row any) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("postgrest: encode: %w", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("postgrest: encode: %w", err)
	}
	for k, v := range m {
		switch s := string(v); {
		case s == "null":
			delete(m, k)
		case k == "id" && (s == "0" || s == `""`):
			delete(m, k)
		case strings.HasPrefix(s, `"0001-01-01T00:00:00`):
			delete(m, k)
		}
	}
	return m, nil
}

func tableOf(dest any) (string, error) {
	t := reflect.TypeOf(dest)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Slice {
		return "", errors.New("postgrest: All needs a pointer to a slice")
	}
	elem := t.Elem().Elem()
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	tabler, ok := reflect.New(elem).Interface().(datastore.Tabler)
	if !ok {
		return "", fmt.Errorf("postgrest: %s has no table name", elem)
	}
	return tabler.TableName(), nil
}

var _ datastore.Store = (*Store)(nil)
