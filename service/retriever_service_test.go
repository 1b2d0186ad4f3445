package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tranmq/docrag-be/database"
	"github.com/tranmq/docrag-be/service"
	"github.com/tranmq/docrag-be/types"
)

// vocabEmbedder is a deterministic bag-of-words embedder for tests. Tokens
// get vocabulary positions in order of first appearance.
type vocabEmbedder struct {
	mu    sync.Mutex
	vocab map[string]int
}

func newVocabEmbedder() *vocabEmbedder {
	return &vocabEmbedder{vocab: make(map[string]int)}
}

func (e *vocabEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	counts := make(map[int]float32)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?\"'%")
		if tok == "" {
			continue
		}
		idx, ok := e.vocab[tok]
		if !ok {
			idx = len(e.vocab)
			e.vocab[tok] = idx
		}
		counts[idx]++
	}
	vec := make([]float32, len(e.vocab))
	for i, c := range counts {
		vec[i] = c
	}
	return vec, nil
}

// echoSummarizer returns the chunk content unchanged as its summary.
type echoSummarizer struct{}

func (echoSummarizer) Summarize(_ context.Context, chunk types.Chunk) (string, error) {
	return chunk.Content, nil
}

// mapSummarizer returns a fixed summary per content, failing for content
// listed in fail.
type mapSummarizer struct {
	summaries map[string]string
	fail      map[string]error
}

func (m *mapSummarizer) Summarize(_ context.Context, chunk types.Chunk) (string, error) {
	if err, ok := m.fail[chunk.Content]; ok {
		return "", err
	}
	return m.summaries[chunk.Content], nil
}

func newTestRetriever(summarizer service.Summarizer) (*service.Retriever, *database.MemoryIndex, *database.MemoryStore) {
	index := database.NewMemoryIndex(newVocabEmbedder())
	store := database.NewMemoryStore()
	return service.NewRetriever(index, store, summarizer), index, store
}

func textChunk(content string) types.Chunk {
	return types.Chunk{Kind: types.ChunkKindText, Content: content}
}

func TestIndexEmptyInputIsNoop(t *testing.T) {
	retriever, index, store := newTestRetriever(echoSummarizer{})

	report, err := retriever.Index(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, report.Indexed)
	assert.Zero(t, report.Skipped)

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	n, err := store.Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchReturnsOriginalContentNotSummary(t *testing.T) {
	summarizer := &mapSummarizer{summaries: map[string]string{
		"long original body about quarterly revenue and growth figures": "revenue summary",
	}}
	retriever, _, _ := newTestRetriever(summarizer)

	chunks := []types.Chunk{
		textChunk("long original body about quarterly revenue and growth figures"),
	}
	report, err := retriever.Index(context.Background(), chunks)
	require.NoError(t, err)
	require.Equal(t, 1, report.Indexed)

	results, err := retriever.Search(context.Background(), "revenue summary", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "long original body about quarterly revenue and growth figures", results[0].Content)
	assert.NotEqual(t, "revenue summary", results[0].Content)
}

func TestBothSidesKeepEqualCardinality(t *testing.T) {
	retriever, index, store := newTestRetriever(echoSummarizer{})
	ctx := context.Background()

	batches := [][]types.Chunk{
		{textChunk("alpha one"), textChunk("beta two")},
		{textChunk("gamma three")},
		{},
		{textChunk("delta four"), textChunk("epsilon five"), textChunk("zeta six")},
	}
	total := 0
	for _, batch := range batches {
		report, err := retriever.Index(ctx, batch)
		require.NoError(t, err)
		total += report.Indexed

		count, err := index.Count(ctx)
		require.NoError(t, err)
		n, err := store.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, count, n)
		assert.Equal(t, total, count)
	}
}

func TestIdentifiersAreDistinctAcrossCalls(t *testing.T) {
	retriever, _, _ := newTestRetriever(echoSummarizer{})
	ctx := context.Background()

	chunks := []types.Chunk{textChunk("same content"), textChunk("same content")}

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		for pos, chunk := range chunks {
			id, err := retriever.IndexChunk(ctx, pos, chunk)
			require.NoError(t, err)
			assert.False(t, seen[id], "identifier %s reused", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, 6)
}

func TestReindexingProducesDisjointEntries(t *testing.T) {
	retriever, index, store := newTestRetriever(echoSummarizer{})
	ctx := context.Background()

	chunks := []types.Chunk{textChunk("first"), textChunk("second")}

	_, err := retriever.Index(ctx, chunks)
	require.NoError(t, err)
	_, err = retriever.Index(ctx, chunks)
	require.NoError(t, err)

	// No dedup: both rounds are fully indexed.
	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestSearchTopKZeroReturnsEmpty(t *testing.T) {
	retriever, _, _ := newTestRetriever(echoSummarizer{})
	ctx := context.Background()

	_, err := retriever.Index(ctx, []types.Chunk{textChunk("something indexed")})
	require.NoError(t, err)

	results, err := retriever.Search(ctx, "something", 0)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = retriever.Search(ctx, "something", -1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRanksMatchingSummaryFirst(t *testing.T) {
	retriever, _, _ := newTestRetriever(echoSummarizer{})
	ctx := context.Background()

	chunks := []types.Chunk{
		textChunk("Revenue grew 10%"),
		textChunk("Headcount increased by 50"),
	}
	report, err := retriever.Index(ctx, chunks)
	require.NoError(t, err)
	require.Equal(t, 2, report.Indexed)

	results, err := retriever.Search(ctx, "headcount", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Headcount increased by 50", results[0].Content)
}

func TestSearchDistinguishesTableFromImage(t *testing.T) {
	table := types.Chunk{Kind: types.ChunkKindTable, Content: "Q1 | 100 | 200"}
	image := types.Chunk{Kind: types.ChunkKindImage, Content: "aGVsbG8="}
	summarizer := &mapSummarizer{summaries: map[string]string{
		table.Content: "Q1 financial table",
		image.Content: "photo of a warehouse",
	}}
	retriever, _, _ := newTestRetriever(summarizer)
	ctx := context.Background()

	report, err := retriever.Index(ctx, []types.Chunk{table, image})
	require.NoError(t, err)
	require.Equal(t, 2, report.Indexed)

	results, err := retriever.Search(ctx, "financial", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.ChunkKindTable, results[0].Kind)
	assert.Equal(t, table.Content, results[0].Content)
}

func TestSummarizerFailureSkipsChunkOnly(t *testing.T) {
	summarizer := &mapSummarizer{
		summaries: map[string]string{
			"good chunk": "a good summary",
		},
		fail: map[string]error{
			"bad chunk": fmt.Errorf("provider exploded"),
		},
	}
	retriever, index, store := newTestRetriever(summarizer)
	ctx := context.Background()

	report, err := retriever.Index(ctx, []types.Chunk{
		textChunk("bad chunk"),
		textChunk("good chunk"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Indexed)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Failures, 1)

	var summErr *types.SummarizationError
	require.ErrorAs(t, report.Failures[0], &summErr)
	assert.Equal(t, types.ChunkKindText, summErr.Kind)
	assert.Equal(t, 0, summErr.Position)

	count, err := index.Count(ctx)
	require.NoError(t, err)
	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, n)
}

func TestEmptySummaryIsRejected(t *testing.T) {
	summarizer := &mapSummarizer{summaries: map[string]string{
		"whitespace": "   ",
	}}
	retriever, _, _ := newTestRetriever(summarizer)

	report, err := retriever.Index(context.Background(), []types.Chunk{textChunk("whitespace")})
	require.NoError(t, err)
	assert.Zero(t, report.Indexed)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Failures, 1)
	assert.ErrorIs(t, report.Failures[0], types.ErrEmptySummary)
}

func TestDanglingIdentifierIsFatal(t *testing.T) {
	// Build an index whose summary side knows an identifier the content
	// store has never seen.
	index := database.NewMemoryIndex(newVocabEmbedder())
	store := database.NewMemoryStore()
	require.NoError(t, index.Add(context.Background(), []types.SummaryEntry{
		{ID: "orphan-id", Summary: "an orphan summary", Kind: types.ChunkKindText},
	}))

	retriever := service.NewRetriever(index, store, echoSummarizer{})
	_, err := retriever.Search(context.Background(), "orphan", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrDanglingID))
}

func TestConcurrentIndexingPreservesInvariant(t *testing.T) {
	retriever, index, store := newTestRetriever(echoSummarizer{})
	ctx := context.Background()

	const workers = 8
	const perWorker = 5
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := retriever.IndexChunk(ctx, i, textChunk(fmt.Sprintf("worker %d chunk %d", w, i)))
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	count, err := index.Count(ctx)
	require.NoError(t, err)
	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, count)
	assert.Equal(t, workers*perWorker, n)
}
