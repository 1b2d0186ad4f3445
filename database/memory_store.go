package database

import (
	"context"
	"sync"

	"github.com/tranmq/docrag-be/types"
)

// MemoryStore is an in-process ContentStore backed by a map.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks map[string]types.Chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chunks: make(map[string]types.Chunk)}
}

func (m *MemoryStore) Set(ctx context.Context, id string, chunk types.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[id] = chunk
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (types.Chunk, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chunk, ok := m.chunks[id]
	return chunk, ok, nil
}

func (m *MemoryStore) Len(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks), nil
}
