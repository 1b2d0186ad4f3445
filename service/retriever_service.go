package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tranmq/docrag-be/database"
	"github.com/tranmq/docrag-be/types"
)

// Retriever is a multi-vector index over document chunks. Each chunk is
// represented twice: a short summary in the summary index, searched by
// embedding similarity, and the original content in the content store,
// returned to callers. A generated identifier links the two sides
// one-to-one; the linkage is never mutated after creation.
type Retriever struct {
	index      database.SummaryIndex
	store      database.ContentStore
	summarizer Summarizer

	// guards the paired insert so concurrent ingestions cannot interleave
	// between the two sides
	mu sync.Mutex
}

// IndexReport accounts for one ingestion batch. Failures holds the
// per-chunk summarization errors for skipped chunks.
type IndexReport struct {
	Indexed  int
	Skipped  int
	Failures []error
}

func NewRetriever(index database.SummaryIndex, store database.ContentStore, summarizer Summarizer) *Retriever {
	return &Retriever{
		index:      index,
		store:      store,
		summarizer: summarizer,
	}
}

// Index summarizes and indexes chunks in order. A chunk whose summarization
// fails, or comes back empty, is skipped and reported; the rest of the
// batch proceeds. Store errors abort the batch. An empty input is a no-op.
func (r *Retriever) Index(ctx context.Context, chunks []types.Chunk) (*IndexReport, error) {
	report := &IndexReport{}
	for i, chunk := range chunks {
		if _, err := r.IndexChunk(ctx, i, chunk); err != nil {
			var summErr *types.SummarizationError
			if errors.As(err, &summErr) {
				log.Printf("skipping chunk: %v", summErr)
				report.Skipped++
				report.Failures = append(report.Failures, summErr)
				continue
			}
			return report, err
		}
		report.Indexed++
	}
	return report, nil
}

// IndexChunk indexes a single chunk and returns its generated identifier.
// position is only used in error reporting. The identifier is written to
// the summary index first; the content store entry follows under the same
// lock, so both sides always hold the same identifier set.
func (r *Retriever) IndexChunk(ctx context.Context, position int, chunk types.Chunk) (string, error) {
	summary, err := r.summarizer.Summarize(ctx, chunk)
	if err != nil {
		return "", &types.SummarizationError{Kind: chunk.Kind, Position: position, Err: err}
	}
	if strings.TrimSpace(summary) == "" {
		return "", &types.SummarizationError{Kind: chunk.Kind, Position: position, Err: types.ErrEmptySummary}
	}

	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	entry := types.SummaryEntry{ID: id, Summary: summary, Kind: chunk.Kind}
	if err := r.index.Add(ctx, []types.SummaryEntry{entry}); err != nil {
		return "", fmt.Errorf("add summary for chunk %d: %w", position, err)
	}
	if err := r.store.Set(ctx, id, chunk); err != nil {
		return "", fmt.Errorf("store content for %s: %w", id, err)
	}
	return id, nil
}

// Search runs a similarity search over the summaries and resolves the
// ranked identifiers to original content. topK <= 0 returns nothing. An
// identifier the content store cannot resolve means the two sides have
// diverged; that is index corruption, reported as ErrDanglingID.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]types.RetrievedChunk, error) {
	if topK <= 0 {
		return []types.RetrievedChunk{}, nil
	}

	ids, err := r.index.Query(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("summary search: %w", err)
	}

	results := make([]types.RetrievedChunk, 0, len(ids))
	for _, id := range ids {
		chunk, ok, err := r.store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", id, err)
		}
		if !ok {
			return nil, fmt.Errorf("resolve %s: %w", id, types.ErrDanglingID)
		}
		results = append(results, types.RetrievedChunk{
			ID:       id,
			Kind:     chunk.Kind,
			Content:  chunk.Content,
			Images:   chunk.Images,
			Metadata: chunk.Metadata,
		})
	}
	return results, nil
}
