// Package seeders fills a fresh database with reference data.
//
// Seeders register themselves from init() and run in registration order
// with `backoffice seed`:
//
//	func init() {
//	    Register("catalog", seedCatalog)
//	}
package seeders

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sincro/backoffice/app/services"
	"github.com/sincro/backoffice/pkg/datastore"
)

// Env is what a seeder writes through. Seeders go through the datastore,
// so they work against SQL and hosted backends alike.
type Env struct {
	Store datastore.Store
	Users *services.UserService
	// AdminEmail and AdminPassword seed the first owner. Empty skips it.
	AdminEmail    string
	AdminPassword string
}

// Func seeds one concern.
type Func func(ctx context.Context, env Env) error

type entry struct {
	name string
	fn   Func
}

var (
	mu      sync.Mutex
	entries []entry
)

// Register adds a seeder.
func Register(name string, fn Func) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, entry{name: name, fn: fn})
}

// RunAll runs every seeder, stopping at the first error.
func RunAll(ctx context.Context, env Env, out io.Writer) error {
	mu.Lock()
	current := append([]entry(nil), entries...)
	mu.Unlock()

	if out == nil {
		out = io.Discard
	}
	if len(current) == 0 {
		fmt.Fprintln(out, "  (no seeders registered)")
		return nil
	}
	for _, e := range current {
		fmt.Fprintf(out, "  • Running seeder: %s … ", e.name)
		if err := e.fn(ctx, env); err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		fmt.Fprintln(out, "done")
	}
	return nil
}
