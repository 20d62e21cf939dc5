package identity

import (
	"context"
	"time"

	"github.com/sincro/backoffice/pkg/cache"
	"github.com/sincro/backoffice/pkg/logger"
)

const keyPrefix = "identity:"

// Cached serves Get from a cache and invalidates entries on Update and
// Delete. Cache failures degrade to the wrapped provider.
type Cached struct {
	Provider
	cache cache.Store
	ttl   time.Duration
}

func NewCached(p Provider, c cache.Store, ttl time.Duration) *Cached {
	return &Cached{Provider: p, cache: c, ttl: ttl}
}

func (c *Cached) Get(ctx context.Context, id string) (Identity, error) {
	var ident Identity
	if c.load(ctx, id, &ident) {
		return ident, nil
	}
	ident, err := c.Provider.Get(ctx, id)
	if err != nil {
		return Identity{}, err
	}
	c.store(ctx, ident)
	return ident, nil
}

// Lookup always asks the wrapped provider, so identities removed behind the
// cache drop out of listings at once. Results refresh the cached entries and
// ids the provider no longer knows are evicted.
func (c *Cached) Lookup(ctx context.Context, ids []string) (map[string]Identity, error) {
	found, err := c.Provider.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if ident, ok := found[id]; ok {
			c.store(ctx, ident)
			continue
		}
		c.forget(ctx, id)
	}
	return found, nil
}

func (c *Cached) Update(ctx context.Context, id string, ch Changes) (Identity, error) {
	ident, err := c.Provider.Update(ctx, id, ch)
	c.forget(ctx, id)
	return ident, err
}

func (c *Cached) Delete(ctx context.Context, id string) error {
	err := c.Provider.Delete(ctx, id)
	c.forget(ctx, id)
	return err
}

func (c *Cached) load(ctx context.Context, id string, dest *Identity) bool {
	hit, err := c.cache.Get(ctx, keyPrefix+id, dest)
	if err != nil {
		logger.WithCtx(ctx).Warn("identity cache read failed", "error", err)
		return false
	}
	return hit
}

func (c *Cached) store(ctx context.Context, ident Identity) {
	if err := c.cache.Set(ctx, keyPrefix+ident.ID, ident, c.ttl); err != nil {
		logger.WithCtx(ctx).Warn("identity cache write failed", "error", err)
	}
}

func (c *Cached) forget(ctx context.Context, id string) {
	if err := c.cache.Del(ctx, keyPrefix+id); err != nil {
		logger.WithCtx(ctx).Warn("identity cache invalidation failed", "identity_id", id, "error", err)
	}
}
