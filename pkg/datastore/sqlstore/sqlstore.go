// Package sqlstore implements datastore.Store on gorm, for any dialect the
// database package can open.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sincro/backoffice/pkg/datastore"
	"github.com/sincro/backoffice/pkg/listing"
	"github.com/sincro/backoffice/pkg/metrics"
)

// likeEscape is portable across postgres, mysql, sqlite and sqlserver,
// unlike backslash which MySQL also treats as a string-literal escape.
const likeEscape = '!'

// Store is a gorm-backed datastore.Store.
type Store struct {
	db *gorm.DB
}

// New wraps db. db should be opened with TranslateError enabled.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migrations and seeders.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Count(ctx context.Context, q listing.Query) (int64, error) {
	defer metrics.ObserveDBQuery("count", time.Now())

	var n int64
	if err := s.scope(ctx, q).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (s *Store) Rows(ctx context.Context, q listing.Query, r listing.Range, dest any) error {
	defer metrics.ObserveDBQuery("select", time.Now())

	tx := s.scope(ctx, q)
	if len(q.Columns) > 0 {
		tx = tx.Select(q.Columns)
	}
	for _, rel := range q.Relations {
		tx = preload(tx, rel, "")
	}
	err := tx.Order(clause.OrderByColumn{Column: clause.Column{Name: q.Order()}}).
		Offset(r.Offset).
		Limit(r.Limit).
		Find(dest).Error
	return translate(err)
}

// scope builds the filtered query shared by Count and Rows.
func (s *Store) scope(ctx context.Context, q listing.Query) *gorm.DB {
	tx := s.db.WithContext(ctx).Table(q.Table)
	tx = where(tx, q.Filters, q.Search)
	for _, rel := range q.Relations {
		tx = s.restrict(ctx, tx, rel)
	}
	return tx
}

// restrict narrows base rows to those whose related row satisfies the
// relation's predicates, as "fk IN (SELECT id FROM related WHERE ...)".
func (s *Store) restrict(ctx context.Context, tx *gorm.DB, rel listing.Relation) *gorm.DB {
	nested := false
	for _, child := range rel.Relations {
		nested = nested || restricts(child)
	}
	if !rel.Restricts() && !nested {
		return tx
	}
	sub := s.db.WithContext(ctx).Table(rel.Table).Select("id")
	sub = where(sub, rel.Filters, rel.Search)
	for _, child := range rel.Relations {
		sub = s.restrict(ctx, sub, child)
	}
	return tx.Where(clause.Expr{
		SQL:  "? IN (?)",
		Vars: []any{clause.Column{Name: rel.ForeignKey}, sub},
	})
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

func where(tx *gorm.DB, filters []listing.Filter, search *listing.Search) *gorm.DB {
	for _, f := range filters {
		col := clause.Column{Name: f.Column}
		switch f.Op {
		case listing.OpIn:
			tx = tx.Where(clause.IN{Column: col, Values: toValues(f.Value)})
		default:
			tx = tx.Where(clause.Eq{Column: col, Value: f.Value})
		}
	}
	if search != nil && len(search.Columns) > 0 {
		tx = tx.Where(searchExpr(search))
	}
	return tx
}

// searchExpr renders (LOWER(a) LIKE LOWER(?) ESCAPE '!' OR ...).
func searchExpr(search *listing.Search) clause.Expr {
	pattern := listing.ContainsPattern(search.Term, likeEscape)
	parts := make([]string, len(search.Columns))
	vars := make([]any, 0, 2*len(search.Columns))
	for i, col := range search.Columns {
		parts[i] = fmt.Sprintf("LOWER(?) LIKE LOWER(?) ESCAPE '%c'", likeEscape)
		vars = append(vars, clause.Column{Name: col}, pattern)
	}
	return clause.Expr{SQL: "(" + strings.Join(parts, " OR ") + ")", Vars: vars}
}

func toValues(v any) []any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func preload(tx *gorm.DB, rel listing.Relation, prefix string) *gorm.DB {
	path := rel.Field
	if prefix != "" {
		path = prefix + "." + rel.Field
	}
	if cols := rel.Columns; len(cols) > 0 {
		tx = tx.Preload(path, func(db *gorm.DB) *gorm.DB { return db.Select(cols) })
	} else {
		tx = tx.Preload(path)
	}
	for _, child := range rel.Relations {
		tx = preload(tx, child, path)
	}
	return tx
}

func (s *Store) Find(ctx context.Context, dest datastore.Tabler, id any) error {
	defer metrics.ObserveDBQuery("select", time.Now())
	return translate(s.db.WithContext(ctx).Take(dest, clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).Error)
}

func (s *Store) FindBy(ctx context.Context, dest datastore.Tabler, column string, value any) error {
	defer metrics.ObserveDBQuery("select", time.Now())
	return translate(s.db.WithContext(ctx).Take(dest, clause.Eq{Column: clause.Column{Name: column}, Value: value}).Error)
}

func (s *Store) All(ctx context.Context, dest any, columns ...string) error {
	defer metrics.ObserveDBQuery("select", time.Now())
	tx := s.db.WithContext(ctx)
	if len(columns) > 0 {
		tx = tx.Select(columns)
	}
	return translate(tx.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).Find(dest).Error)
}

func (s *Store) Create(ctx context.Context, row datastore.Tabler) error {
	defer metrics.ObserveDBQuery("insert", time.Now())
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error)
}

func (s *Store) Update(ctx context.Context, dest datastore.Tabler, id any, fields map[string]any) error {
	if len(fields) > 0 {
		start := time.Now()
		err := s.db.WithContext(ctx).
			Model(dest).
			Omit(clause.Associations).
			Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).
			Updates(fields).Error
		metrics.ObserveDBQuery("update", start)
		if err != nil {
			return translate(err)
		}
	}
	// Reload from a clean value: Updates copies map entries into dest and a
	// stale primary key would add a second condition to the lookup.
	rv := reflect.ValueOf(dest).Elem()
	rv.Set(reflect.Zero(rv.Type()))
	return s.Find(ctx, dest, id)
}

func (s *Store) Delete(ctx context.Context, model datastore.Tabler, id any) error {
	defer metrics.ObserveDBQuery("delete", time.Now())
	if rv := reflect.ValueOf(model); rv.Kind() != reflect.Pointer {
		model = reflect.New(rv.Type()).Interface().(datastore.Tabler)
	}
	res := s.db.WithContext(ctx).Delete(model, clause.Eq{Column: clause.Column{Name: "id"}, Value: id})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return datastore.ErrNotFound
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return datastore.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", datastore.ErrConflict, err)
	default:
		return err
	}
}

var _ datastore.Store = (*Store)(nil)
