package types

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySummary is returned when a summarizer produced an empty
	// summary for a non-empty chunk. Such chunks are never indexed.
	ErrEmptySummary = errors.New("summarizer returned empty summary")

	// ErrDanglingID is returned when a similarity search yields an
	// identifier with no content store entry. The index guarantees a
	// one-to-one linkage between both sides, so this signals corruption
	// and is not retryable.
	ErrDanglingID = errors.New("identifier has no content store entry")
)

// SummarizationError reports a failed summarization of a single chunk. It
// carries the chunk kind and its position in the ingestion batch so the
// failing chunk can be diagnosed. Callers may skip the chunk and continue.
type SummarizationError struct {
	Kind     ChunkKind
	Position int
	Err      error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarize %s chunk %d: %v", e.Kind, e.Position, e.Err)
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}
