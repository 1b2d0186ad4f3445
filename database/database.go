package database

import (
	"context"

	"github.com/tranmq/docrag-be/types"
)

// SummaryIndex is the searchable half of the multi-vector index. It holds
// (identifier, summary, kind) entries and answers nearest-neighbor queries
// over the summary text. Identifiers are assigned by the caller and are
// opaque to the index.
type SummaryIndex interface {
	// Add inserts entries in order. Entries are never overwritten; the
	// caller guarantees identifier uniqueness.
	Add(ctx context.Context, entries []types.SummaryEntry) error

	// Query returns up to topK identifiers ranked closest first.
	Query(ctx context.Context, query string, topK int) ([]string, error)

	// Count reports the number of indexed entries.
	Count(ctx context.Context) (int, error)
}

// ContentStore maps identifiers to the original chunk content returned to
// callers after a search. It is the non-searchable half of the index.
type ContentStore interface {
	Set(ctx context.Context, id string, chunk types.Chunk) error
	Get(ctx context.Context, id string) (types.Chunk, bool, error)
	Len(ctx context.Context) (int, error)
}

// Embedder converts text into a vector representation for similarity
// search. Used by index implementations that do not vectorize server-side.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
