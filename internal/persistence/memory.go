package persistence

import (
	"context"
	"sync"
)

// MemoryBackend keeps values in process memory. Data is lost on restart.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), val...), nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *MemoryBackend) Atomic(_ context.Context, keys []string, fn AtomicFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if val, ok := m.data[key]; ok {
			current[key] = append([]byte(nil), val...)
		}
	}

	writes, err := fn(current)
	if err != nil {
		return err
	}
	for key, val := range writes {
		m.data[key] = append([]byte(nil), val...)
	}
	return nil
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }

func (m *MemoryBackend) Close() error { return nil }
