package cache

import (
	"context"
	"sync"
	"time"

	"approvalflow/internal/clock"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryBackend keeps entries in process memory with per-entry expiry.
type MemoryBackend struct {
	entries sync.Map // key -> memoryEntry
	clock   clock.Clock
}

func NewMemoryBackend(c clock.Clock) *MemoryBackend {
	if c == nil {
		c = clock.System
	}
	return &MemoryBackend{clock: c}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	entry := v.(memoryEntry)
	if !m.clock.Now().Before(entry.expiresAt) {
		m.entries.Delete(key)
		return nil, false, nil
	}
	return entry.data, true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.entries.Store(key, memoryEntry{data: value, expiresAt: m.clock.Now().Add(ttl)})
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.entries.Delete(key)
	}
	return nil
}

// Flush removes every entry.
func (m *MemoryBackend) Flush() {
	m.entries.Range(func(key, _ interface{}) bool {
		m.entries.Delete(key)
		return true
	})
}
