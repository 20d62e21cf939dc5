package listing

import (
	"encoding/json"
	"time"
)

// TimeLayout is the ISO-8601 layout of the envelope's "time" field.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Envelope names the entity a result is about.
type Envelope struct {
	// Entity is the plural row key, e.g. "bookings". The total is reported
	// under "total_" + Entity.
	Entity  string
	Message string
}

// Result is one page of rows plus the exact total for the same predicate.
type Result[T any] struct {
	Envelope
	Time   time.Time
	Total  int64
	Offset int
	Limit  int
	Rows   []T
}

// MarshalJSON renders {success,time,message,total_<entity>,offset,limit,<entity>}.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

// Map returns the envelope as a generic map.
func (r Result[T]) Map() map[string]any {
	rows := r.Rows
	if rows == nil {
		rows = []T{}
	}
	m := map[string]any{
		"success": true,
		"time":    r.Time.UTC().Format(TimeLayout),
		"message": r.Message,
		"offset":  r.Offset,
		"limit":   r.Limit,
	}
	m["total_"+r.Entity] = r.Total
	m[r.Entity] = rows
	return m
}

// Remap carries pagination metadata over to a page of different rows.
func Remap[T, R any](r Result[T], env Envelope, rows []R) Result[R] {
	return Result[R]{
		Envelope: env,
		Time:     r.Time,
		Total:    r.Total,
		Offset:   r.Offset,
		Limit:    r.Limit,
		Rows:     rows,
	}
}
