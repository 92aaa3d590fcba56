package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestTTLGetAfterSet(t *testing.T) {
	clock := newFakeClock()
	c := NewTTL[string](clock.Now, 0)

	c.SetWithTTL("k", "v", time.Minute)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestTTLExpiryEvictsOnRead(t *testing.T) {
	clock := newFakeClock()
	c := NewTTL[int](clock.Now, 0)

	c.SetWithTTL("a", 1, time.Minute)
	c.SetWithTTL("b", 2, time.Hour)

	t.Run("exactly at expiry is still a hit", func(t *testing.T) {
		clock.Advance(time.Minute)
		_, ok := c.Get("a")
		assert.True(t, ok)
	})

	t.Run("past expiry misses and shrinks", func(t *testing.T) {
		clock.Advance(time.Nanosecond)
		require.Equal(t, 2, c.Len(), "eviction is lazy")

		_, ok := c.Get("a")
		assert.False(t, ok)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("other keys unaffected", func(t *testing.T) {
		got, ok := c.Get("b")
		require.True(t, ok)
		assert.Equal(t, 2, got)
	})
}

func TestTTLDefaultIsFiveMinutes(t *testing.T) {
	clock := newFakeClock()
	c := NewTTL[string](clock.Now, 0)

	c.Set("k", "v")
	clock.Advance(5 * time.Minute)
	_, ok := c.Get("k")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestTTLOverwriteResetsExpiry(t *testing.T) {
	clock := newFakeClock()
	c := NewTTL[string](clock.Now, time.Minute)

	c.Set("k", "old")
	clock.Advance(50 * time.Second)
	c.Set("k", "new")
	clock.Advance(50 * time.Second)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "new", got)
	assert.Equal(t, 1, c.Len())
}

func TestTTLEmptyKeyIgnored(t *testing.T) {
	c := NewTTL[string](nil, 0)
	c.Set("", "v")
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("")
	assert.False(t, ok)
}

func TestTTLInvalidateAndClear(t *testing.T) {
	c := NewTTL[string](nil, 0)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	c.Invalidate("a")
	c.Invalidate("missing")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	c.Clear()
	for _, k := range []string{"a", "b", "c"} {
		_, ok := c.Get(k)
		assert.False(t, ok, k)
	}
	assert.Equal(t, 0, c.Len())
}

func TestTTLConcurrentAccess(t *testing.T) {
	c := NewTTL[int](nil, 0)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("shared", i)
				c.Get("shared")
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}
