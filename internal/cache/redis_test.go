package cache

import (
	"context"
	"fmt"
	"net"
	"path"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis answers GET, SET, DEL, SCAN and PING from a map inside a
// go-redis process hook, so commands never reach a network connection.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, fmt.Errorf("fake redis does not dial %s", addr)
	}
}

func (f *fakeRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			f.process(cmd)
		}
		return nil
	}
}

func (f *fakeRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		f.process(cmd)
		return cmd.Err()
	}
}

func (f *fakeRedis) process(cmd redis.Cmder) {
	f.mu.Lock()
	defer f.mu.Unlock()

	args := cmd.Args()
	switch c := cmd.(type) {
	case *redis.StringCmd: // GET
		v, ok := f.data[str(args[1])]
		if !ok {
			c.SetErr(redis.Nil)
			return
		}
		c.SetVal(v)
	case *redis.StatusCmd: // SET, PING
		if cmd.Name() == "set" {
			key := str(args[1])
			f.data[key] = str(args[2])
			if len(args) >= 5 {
				f.ttls[key] = ttlArg(str(args[3]), args[4])
			}
		}
		if cmd.Name() == "ping" {
			c.SetVal("PONG")
			return
		}
		c.SetVal("OK")
	case *redis.IntCmd: // DEL
		var n int64
		for _, a := range args[1:] {
			if _, ok := f.data[str(a)]; ok {
				delete(f.data, str(a))
				n++
			}
		}
		c.SetVal(n)
	case *redis.ScanCmd:
		pattern := "*"
		for i := 2; i+1 < len(args); i += 2 {
			if str(args[i]) == "match" {
				pattern = str(args[i+1])
			}
		}
		var keys []string
		for k := range f.data {
			if ok, _ := path.Match(pattern, k); ok {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		c.SetVal(keys, 0)
	default:
		cmd.SetErr(fmt.Errorf("fake redis: unsupported command %s", cmd.Name()))
	}
}

func (f *fakeRedis) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.data))
	for k := range f.data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func str(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return fmt.Sprint(v)
}

func ttlArg(unit string, v interface{}) time.Duration {
	var n int64
	_, _ = fmt.Sscan(str(v), &n)
	if unit == "px" {
		return time.Duration(n) * time.Millisecond
	}
	return time.Duration(n) * time.Second
}

func newTestRedis(t *testing.T) (*RedisBackend, *fakeRedis) {
	t.Helper()
	fake := newFakeRedis()
	client := redis.NewClient(&redis.Options{Addr: "fake:6379"})
	client.AddHook(fake)
	backend := NewRedisBackendFromClient(client)
	t.Cleanup(func() { _ = backend.Close() })
	return backend, fake
}

func TestRedisBackendPrefixesKeys(t *testing.T) {
	ctx := context.Background()
	backend, fake := newTestRedis(t)

	require.NoError(t, backend.Set(ctx, KeyRoster, []byte(`["a"]`), 5*time.Minute))
	assert.Equal(t, []string{"approvals:cache:roster"}, fake.keys())
	assert.Equal(t, 5*time.Minute, fake.ttls["approvals:cache:roster"])

	data, ok, err := backend.Get(ctx, KeyRoster)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["a"]`, string(data))
}

func TestRedisBackendMissingKeyIsMiss(t *testing.T) {
	backend, _ := newTestRedis(t)

	data, ok, err := backend.Get(context.Background(), KeyITChains)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestRedisBackendDeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	backend, fake := newTestRedis(t)

	for _, key := range []string{KeyRoster, KeyITChains, KeySettings} {
		require.NoError(t, backend.Set(ctx, key, []byte(`1`), time.Minute))
	}
	fake.mu.Lock()
	fake.data["other:app:key"] = "kept"
	fake.mu.Unlock()

	require.NoError(t, backend.Delete(ctx, KeyRoster))
	_, ok, err := backend.Get(ctx, KeyRoster)
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := backend.FlushAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"other:app:key"}, fake.keys())
}

func TestRedisBackendServesCache(t *testing.T) {
	ctx := context.Background()
	backend, _ := newTestRedis(t)
	c := New(backend, time.Minute, quietLogger())

	calls := 0
	for i := 0; i < 3; i++ {
		got, err := Fetch(ctx, c, KeySettings, countingLoader(&calls, []string{"7"}))
		require.NoError(t, err)
		assert.Equal(t, []string{"7"}, got)
	}
	assert.Equal(t, 1, calls)

	c.Invalidate(ctx, "settings_update", KeySettings)
	_, err := Fetch(ctx, c, KeySettings, countingLoader(&calls, []string{"7"}))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
