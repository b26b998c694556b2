// Package cache keeps recently fetched API listings in memory for a short time.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/logger"
	"storefront/internal/metric"
)

type item[V any] struct {
	data      V
	expiresAt int64
}

// TTL map whose entries expire after a fixed lifetime
type TTL[V any] struct {
	sync.RWMutex
	items             map[string]item[V]
	defaultExpiration time.Duration
	cleanupInterval   time.Duration
	now               func() time.Time
	log               *zap.Logger
}

func New[V any](defaultExpiration, cleanupInterval time.Duration, log *zap.Logger) *TTL[V] {
	return &TTL[V]{
		items:             make(map[string]item[V]),
		defaultExpiration: defaultExpiration,
		cleanupInterval:   cleanupInterval,
		now:               time.Now,
		log:               logger.OrNop(log).Named("cache"),
	}
}

func (c *TTL[V]) Set(key string, v V) {
	c.Lock()
	defer c.Unlock()
	c.items[key] = item[V]{
		data:      v,
		expiresAt: c.now().Add(c.defaultExpiration).UnixNano(),
	}
}

func (c *TTL[V]) Get(key string) (V, bool) {
	c.RLock()
	defer c.RUnlock()

	res, ok := c.items[key]
	if !ok || c.now().UnixNano() > res.expiresAt {
		metric.MenuCacheTotal.WithLabelValues("miss").Inc()
		var zero V
		return zero, false
	}
	metric.MenuCacheTotal.WithLabelValues("hit").Inc()
	return res.data, true
}

// Invalidate drops every entry; admin writes call it so the menu is refetched
func (c *TTL[V]) Invalidate() {
	c.Lock()
	defer c.Unlock()
	clear(c.items)
}

func (c *TTL[V]) Len() int {
	c.RLock()
	defer c.RUnlock()
	return len(c.items)
}

// removeExpired returns how many entries were dropped
func (c *TTL[V]) removeExpired() int {
	c.Lock()
	defer c.Unlock()
	now := c.now().UnixNano()
	deleted := 0
	for key, it := range c.items {
		if now > it.expiresAt {
			delete(c.items, key)
			deleted++
		}
	}
	return deleted
}

// GC removes expired entries every cleanup interval until ctx is done
func (c *TTL[V]) GC(ctx context.Context) error {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := c.removeExpired(); n > 0 {
				c.log.Debug("expired entries removed", zap.Int("count", n))
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
