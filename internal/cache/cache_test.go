package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (m *manualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *manualClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (failingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (failingBackend) Delete(context.Context, ...string) error {
	return errors.New("connection refused")
}

func quietLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func countingLoader(calls *int, value []string) func(context.Context) ([]string, error) {
	return func(context.Context) ([]string, error) {
		*calls++
		return value, nil
	}
}

func TestFetchReadThrough(t *testing.T) {
	ctx := context.Background()
	clk := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(NewMemoryBackend(clk), 5*time.Minute, quietLogger())

	calls := 0
	load := countingLoader(&calls, []string{"a@x.com"})

	got, err := Fetch(ctx, c, KeyRoster, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, got)

	got, err = Fetch(ctx, c, KeyRoster, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, got)
	assert.Equal(t, 1, calls, "second fetch must be served from cache")

	clk.Advance(5 * time.Minute)
	_, err = Fetch(ctx, c, KeyRoster, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "expired entry must be reloaded")
}

func TestInvalidateEvicts(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryBackend(nil), time.Minute, quietLogger())

	calls := 0
	load := countingLoader(&calls, []string{"Tech"})
	_, _ = Fetch(ctx, c, VPKey("VP@x.com"), load)
	_, _ = Fetch(ctx, c, VPKey("vp@x.com"), load)
	assert.Equal(t, 1, calls)

	c.Invalidate(ctx, "test", VPKey("vp@x.com"))
	_, _ = Fetch(ctx, c, VPKey("vp@x.com"), load)
	assert.Equal(t, 2, calls)
}

func TestLoadRacingInvalidationIsNotStored(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend(nil)
	c := New(backend, time.Minute, quietLogger())

	stale := func(ctx context.Context) ([]string, error) {
		// A writer commits and invalidates while this load is in flight.
		c.Invalidate(ctx, "approver_update", KeyRoster)
		return []string{"stale"}, nil
	}
	got, err := Fetch(ctx, c, KeyRoster, stale)
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, got)

	_, ok, err := backend.Get(ctx, KeyRoster)
	require.NoError(t, err)
	assert.False(t, ok, "stale snapshot must not be written back")
}

func TestBackendFailureFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	c := New(failingBackend{}, time.Minute, logger)

	calls := 0
	got, err := Fetch(ctx, c, KeyITChains, countingLoader(&calls, []string{"7"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, got)
	assert.Equal(t, 1, calls)
	assert.NotEmpty(t, hook.AllEntries())

	assert.NotPanics(t, func() { c.Invalidate(ctx, "test", KeyITChains) })
}

func TestDisabledCacheAlwaysLoads(t *testing.T) {
	ctx := context.Background()
	c := New(nil, time.Minute, quietLogger())
	assert.False(t, c.Enabled())

	calls := 0
	load := countingLoader(&calls, []string{"x"})
	_, _ = Fetch(ctx, c, KeySettings, load)
	_, _ = Fetch(ctx, c, KeySettings, load)
	assert.Equal(t, 2, calls)
}

func TestLoadErrorIsReturnedAndNotCached(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryBackend(nil), time.Minute, quietLogger())

	_, err := Fetch(ctx, c, KeyRoster, func(context.Context) ([]string, error) {
		return nil, errors.New("store down")
	})
	assert.EqualError(t, err, "store down")

	calls := 0
	_, err = Fetch(ctx, c, KeyRoster, countingLoader(&calls, []string{"a"}))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

// interceptingBackend runs onSet just before each write reaches the store.
type interceptingBackend struct {
	*MemoryBackend
	onSet func(ctx context.Context)
}

func (b *interceptingBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if b.onSet != nil {
		b.onSet(ctx)
	}
	return b.MemoryBackend.Set(ctx, key, value, ttl)
}

func TestInvalidationDuringWriteBackDropsStaleEntry(t *testing.T) {
	ctx := context.Background()
	backend := &interceptingBackend{MemoryBackend: NewMemoryBackend(nil)}
	c := New(backend, time.Minute, quietLogger())

	backend.onSet = func(ctx context.Context) {
		// The writer commits after the load finished but before the
		// snapshot is stored.
		c.Invalidate(ctx, "roster_write", KeyRoster)
	}
	got, err := Fetch(ctx, c, KeyRoster, func(context.Context) ([]string, error) {
		return []string{"stale"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, got)

	_, ok, err := backend.Get(ctx, KeyRoster)
	require.NoError(t, err)
	assert.False(t, ok, "stale snapshot stored after invalidation")

	// The next reader loads fresh data and caches it.
	backend.onSet = nil
	calls := 0
	got, err = Fetch(ctx, c, KeyRoster, countingLoader(&calls, []string{"fresh"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, got)
	_, ok, err = backend.Get(ctx, KeyRoster)
	require.NoError(t, err)
	assert.True(t, ok)
}
