package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tranmq/docrag-be/config"
	"github.com/tranmq/docrag-be/types"
	"github.com/tranmq/docrag-be/utils"
	"golang.org/x/time/rate"
)

// SummaryService routes chunks to the right provider by kind and applies
// the throttling policy: a token-bucket limiter paces every outgoing call,
// and throttling or transient provider errors are retried with exponential
// backoff. Non-retryable errors surface immediately.
type SummaryService struct {
	text       TextSummarizer
	vision     VisionDescriber
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

func NewSummaryService(text TextSummarizer, vision VisionDescriber, cfg config.ThrottleConfig) *SummaryService {
	return &SummaryService{
		text:       text,
		vision:     vision,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

func (s *SummaryService) Summarize(ctx context.Context, chunk types.Chunk) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(utils.CalculateBackoff(s.retryDelay, attempt)):
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}

		var summary string
		var err error
		switch chunk.Kind {
		case types.ChunkKindImage:
			summary, err = s.vision.DescribeImage(ctx, chunk.Content)
		default:
			summary, err = s.text.SummarizeText(ctx, chunk.Content)
		}
		if err != nil {
			lastErr = err
			if utils.IsRetryableError(err) {
				continue
			}
			return "", err
		}
		return strings.TrimSpace(summary), nil
	}

	return "", fmt.Errorf("giving up after %d attempts: %w", s.maxRetries+1, lastErr)
}
