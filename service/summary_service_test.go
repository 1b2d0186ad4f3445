package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tranmq/docrag-be/config"
	"github.com/tranmq/docrag-be/service"
	"github.com/tranmq/docrag-be/types"
)

type fakeTextSummarizer struct {
	calls    int
	failures int
	err      error
}

func (f *fakeTextSummarizer) SummarizeText(_ context.Context, text string) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", f.err
	}
	return "summary of: " + text, nil
}

type fakeVision struct {
	calls int
}

func (f *fakeVision) DescribeImage(_ context.Context, _ string) (string, error) {
	f.calls++
	return "a picture", nil
}

func fastThrottle(maxRetries int) config.ThrottleConfig {
	return config.ThrottleConfig{
		RequestsPerSecond: 1000,
		Burst:             1000,
		MaxRetries:        maxRetries,
		RetryDelay:        time.Millisecond,
	}
}

func TestSummaryServiceRoutesByKind(t *testing.T) {
	text := &fakeTextSummarizer{}
	vision := &fakeVision{}
	svc := service.NewSummaryService(text, vision, fastThrottle(0))
	ctx := context.Background()

	summary, err := svc.Summarize(ctx, types.Chunk{Kind: types.ChunkKindText, Content: "prose"})
	require.NoError(t, err)
	assert.Equal(t, "summary of: prose", summary)

	summary, err = svc.Summarize(ctx, types.Chunk{Kind: types.ChunkKindTable, Content: "a | b"})
	require.NoError(t, err)
	assert.Equal(t, "summary of: a | b", summary)

	summary, err = svc.Summarize(ctx, types.Chunk{Kind: types.ChunkKindImage, Content: "aGVsbG8="})
	require.NoError(t, err)
	assert.Equal(t, "a picture", summary)

	assert.Equal(t, 2, text.calls)
	assert.Equal(t, 1, vision.calls)
}

func TestSummaryServiceRetriesThrottlingErrors(t *testing.T) {
	text := &fakeTextSummarizer{
		failures: 2,
		err:      errors.New("429 too many requests"),
	}
	svc := service.NewSummaryService(text, &fakeVision{}, fastThrottle(3))

	summary, err := svc.Summarize(context.Background(), types.Chunk{Kind: types.ChunkKindText, Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, "summary of: x", summary)
	assert.Equal(t, 3, text.calls)
}

func TestSummaryServiceGivesUpAfterMaxRetries(t *testing.T) {
	text := &fakeTextSummarizer{
		failures: 10,
		err:      errors.New("503 service unavailable"),
	}
	svc := service.NewSummaryService(text, &fakeVision{}, fastThrottle(2))

	_, err := svc.Summarize(context.Background(), types.Chunk{Kind: types.ChunkKindText, Content: "x"})
	require.Error(t, err)
	assert.Equal(t, 3, text.calls)
}

func TestSummaryServiceDoesNotRetryOtherErrors(t *testing.T) {
	text := &fakeTextSummarizer{
		failures: 10,
		err:      errors.New("model not found"),
	}
	svc := service.NewSummaryService(text, &fakeVision{}, fastThrottle(5))

	_, err := svc.Summarize(context.Background(), types.Chunk{Kind: types.ChunkKindText, Content: "x"})
	require.Error(t, err)
	assert.Equal(t, 1, text.calls)
}

func TestSummaryServiceTrimsWhitespace(t *testing.T) {
	svc := service.NewSummaryService(paddedSummarizer{}, &fakeVision{}, fastThrottle(0))
	summary, err := svc.Summarize(context.Background(), types.Chunk{Kind: types.ChunkKindText, Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, "padded", summary)
}

type paddedSummarizer struct{}

func (paddedSummarizer) SummarizeText(_ context.Context, _ string) (string, error) {
	return "\n  padded \n", nil
}
