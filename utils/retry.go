package utils

import (
	"math/rand/v2"
	"strings"
	"time"
)

// CalculateBackoff returns exponential backoff with jitter. Base delay is
// doubled each attempt, capped at 30 seconds, with random jitter up to 25%.
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}

// IsRetryableError reports whether an error from an LLM provider is worth
// retrying: throttling and transient server-side failures.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"429",
		"rate limit",
		"too many requests",
		"500",
		"502",
		"503",
		"504",
		"timeout",
		"connection reset",
		"temporarily unavailable",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
