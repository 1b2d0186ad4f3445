package service

import (
	"context"

	"github.com/tranmq/docrag-be/types"
)

// Summarizer produces the search representation for a chunk: a short plain
// text summary with no conversational framing.
type Summarizer interface {
	Summarize(ctx context.Context, chunk types.Chunk) (string, error)
}

// TextSummarizer summarizes raw text and table content.
type TextSummarizer interface {
	SummarizeText(ctx context.Context, text string) (string, error)
}

// VisionDescriber describes a base64-encoded image in plain text.
type VisionDescriber interface {
	DescribeImage(ctx context.Context, imageB64 string) (string, error)
}

// Answerer generates an answer to a question grounded in retrieved chunks.
type Answerer interface {
	Answer(ctx context.Context, question string, chunks []types.RetrievedChunk) (string, error)
}
