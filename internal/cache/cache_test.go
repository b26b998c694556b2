package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestCache(ttl time.Duration) (*TTL[[]string], *clock) {
	clk := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New[[]string](ttl, time.Hour, nil)
	c.now = clk.now
	return c, clk
}

func TestTTL_GetWithinLifetime(t *testing.T) {
	c, clk := newTestCache(time.Minute)
	c.Set("menu", []string{"Margarita"})

	clk.t = clk.t.Add(59 * time.Second)
	got, ok := c.Get("menu")
	require.True(t, ok)
	assert.Equal(t, []string{"Margarita"}, got)
}

func TestTTL_Expires(t *testing.T) {
	c, clk := newTestCache(time.Minute)
	c.Set("menu", []string{"Margarita"})

	clk.t = clk.t.Add(2 * time.Minute)
	_, ok := c.Get("menu")
	assert.False(t, ok)

	assert.Equal(t, 1, c.removeExpired())
	assert.Equal(t, 0, c.Len())
}

func TestTTL_Invalidate(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Set("a", nil)
	c.Set("b", nil)
	c.Invalidate()
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTL_GCStopsWithContext(t *testing.T) {
	c := New[int](time.Minute, time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.GC(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("GC did not stop")
	}
}
