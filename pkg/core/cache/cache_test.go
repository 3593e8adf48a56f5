package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time forward
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache[V any](t *testing.T, cfg Config) (*Cache[V], *fakeClock) {
	t.Helper()
	c := New[V](cfg)
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c.now = clock.now
	return c, clock
}

func TestGetSetExpire(t *testing.T) {
	c, clock := newTestCache[string](t, Config{TTL: time.Second})

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", "1/2")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1/2", v)

	clock.t = clock.t.Add(2 * time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.size())

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestNeverExpires(t *testing.T) {
	c, clock := newTestCache[int](t, Config{})
	c.SetWithTTL("k", 7, 0)
	clock.t = clock.t.Add(24 * time.Hour)
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestEvictsAtCapacity(t *testing.T) {
	c, clock := newTestCache[int](t, Config{MaxItems: 2, TTL: time.Minute})
	c.Set("first", 1)
	clock.t = clock.t.Add(time.Second)
	c.Set("second", 2)
	c.Set("second", 3) // replacing does not evict
	assert.Equal(t, 2, c.size())

	c.Set("third", 3)
	assert.Equal(t, 2, c.size())
	_, ok := c.Get("first")
	assert.False(t, ok, "the entry closest to expiry goes first")
}

func TestGetOrSet(t *testing.T) {
	c, _ := newTestCache[int](t, Config{TTL: time.Minute})
	calls := 0
	fn := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrSet("answer", fn)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 1, calls)

	_, err := c.GetOrSet("broken", func() (int, error) { return 0, errors.New("boom") })
	assert.Error(t, err)
	_, ok := c.Get("broken")
	assert.False(t, ok, "errors are not cached")
}
