// Package listing implements the count-then-page list query shared by every
// list endpoint.
//
// A Query describes what to read: base table, columns, at most a few
// belongs-to relations, equality filters and a free-text search. A Source
// executes it twice, once for the exact total and once for a page of rows,
// with identical predicates. Run ties the two together and builds the
// response envelope.
package listing

import (
	"context"
	"strings"
)

// Op is a filter operator.
type Op uint8

const (
	// OpEq matches column = value.
	OpEq Op = iota
	// OpIn matches column IN (values...). Value must be a slice.
	OpIn
)

// Filter is one predicate ANDed onto the query.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Search is a case-insensitive "contains" predicate ORed across Columns.
// Term is matched literally; pattern metacharacters carry no meaning.
type Search struct {
	Term    string
	Columns []string
}

// Relation is a many-to-one join resolved by the store.
//
// Name is the key the relation appears under in each row. Field is the Go
// association field used by ORM-backed stores. Filters and Search on a
// relation restrict which base rows match.
type Relation struct {
	Name       string
	Field      string
	Table      string
	ForeignKey string
	Columns    []string
	Filters    []Filter
	Search     *Search
	Relations  []Relation
}

// Restricts reports whether the relation carries predicates on base rows.
func (r Relation) Restricts() bool {
	return len(r.Filters) > 0 || r.Search != nil
}

// Query is a backend-neutral description of a filtered list read.
type Query struct {
	Table     string
	Columns   []string
	Relations []Relation
	Filters   []Filter
	Search    *Search
	OrderBy   string
}

// From starts a query on table.
func From(table string, columns ...string) Query {
	return Query{Table: table, Columns: columns}
}

// Eq adds an equality filter.
func (q Query) Eq(column string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Op: OpEq, Value: value})
	return q
}

// In adds a set-membership filter. An empty set adds nothing: an absent
// filter and an empty filter select the same rows.
func (q Query) In(column string, ids []int64) Query {
	if len(ids) == 0 {
		return q
	}
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Op: OpIn, Value: ids})
	return q
}

// Match sets the free-text search. Blank terms are ignored.
func (q Query) Match(term string, columns ...string) Query {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return q
	}
	q.Search = &Search{Term: term, Columns: columns}
	return q
}

// With attaches a relation.
func (q Query) With(rel Relation) Query {
	q.Relations = append(append([]Relation(nil), q.Relations...), rel)
	return q
}

// Order returns the column rows are sorted by. Pages are only stable under a
// total order, so the default is the primary key.
func (q Query) Order() string {
	if q.OrderBy == "" {
		return "id"
	}
	return q.OrderBy
}

// Range selects rows [Offset, Offset+Limit).
type Range struct {
	Offset int
	Limit  int
}

// Source executes list queries against a backing store.
type Source interface {
	// Count returns the exact number of rows matching q.
	Count(ctx context.Context, q Query) (int64, error)
	// Rows loads the rows of q within r into dest, a pointer to a slice.
	Rows(ctx context.Context, q Query, r Range, dest any) error
}
