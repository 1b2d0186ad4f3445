package database

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tranmq/docrag-be/types"
)

// MemoryIndex is an in-process SummaryIndex using brute-force cosine
// similarity over embeddings produced by the configured Embedder. Entries
// keep insertion order; ranking ties resolve in favor of earlier entries.
type MemoryIndex struct {
	mu       sync.RWMutex
	embedder Embedder
	entries  []types.SummaryEntry
	vectors  [][]float32
}

func NewMemoryIndex(embedder Embedder) *MemoryIndex {
	return &MemoryIndex{embedder: embedder}
}

func (m *MemoryIndex) Add(ctx context.Context, entries []types.SummaryEntry) error {
	vectors := make([][]float32, 0, len(entries))
	for _, entry := range entries {
		vec, err := m.embedder.Embed(ctx, entry.Summary)
		if err != nil {
			return fmt.Errorf("embed summary %s: %w", entry.ID, err)
		}
		vectors = append(vectors, vec)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	m.vectors = append(m.vectors, vectors...)
	return nil
}

func (m *MemoryIndex) Query(ctx context.Context, query string, topK int) ([]string, error) {
	if topK <= 0 {
		return nil, nil
	}

	queryVec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		pos   int
		score float64
	}
	scores := make([]scored, len(m.vectors))
	for i, vec := range m.vectors {
		scores[i] = scored{pos: i, score: cosine(queryVec, vec)}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if topK > len(scores) {
		topK = len(scores)
	}
	ids := make([]string, 0, topK)
	for _, s := range scores[:topK] {
		ids = append(ids, m.entries[s.pos].ID)
	}
	return ids, nil
}

func (m *MemoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
