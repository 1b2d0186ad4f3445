package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBackoffZeroForNonPositiveAttempt(t *testing.T) {
	assert.Equal(t, time.Duration(0), CalculateBackoff(time.Second, 0))
	assert.Equal(t, time.Duration(0), CalculateBackoff(time.Second, -1))
}

func TestCalculateBackoffGrowsWithAttempts(t *testing.T) {
	base := 100 * time.Millisecond
	for attempt := 1; attempt <= 5; attempt++ {
		expected := base * time.Duration(1<<uint(attempt))
		got := CalculateBackoff(base, attempt)
		assert.GreaterOrEqual(t, got, expected-expected/4,
			"attempt %d below jitter floor", attempt)
		assert.LessOrEqual(t, got, expected+expected/4,
			"attempt %d above jitter ceiling", attempt)
	}
}

func TestCalculateBackoffCapped(t *testing.T) {
	for i := 0; i < 20; i++ {
		got := CalculateBackoff(time.Second, 25)
		ceiling := 30 * time.Second
		assert.LessOrEqual(t, got, ceiling+ceiling/4)
		assert.GreaterOrEqual(t, got, ceiling-ceiling/4)
	}
}

func TestIsRetryableError(t *testing.T) {
	retryable := []error{
		errors.New("429 Too Many Requests"),
		errors.New("rate limit exceeded, retry later"),
		errors.New("503 Service Unavailable"),
		errors.New("context deadline exceeded: timeout"),
		fmt.Errorf("call failed: %w", errors.New("connection reset by peer")),
		errors.New("model is temporarily unavailable"),
	}
	for _, err := range retryable {
		assert.True(t, IsRetryableError(err), "expected retryable: %v", err)
	}

	permanent := []error{
		errors.New("401 Unauthorized"),
		errors.New("model not found"),
		errors.New("invalid request payload"),
	}
	for _, err := range permanent {
		assert.False(t, IsRetryableError(err), "expected permanent: %v", err)
	}

	assert.False(t, IsRetryableError(nil))
}
