package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

const MaxRetries = 3

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// Retrying retries transient model failures with backoff.
type Retrying struct {
	model   ChatModel
	log     *slog.Logger
	backoff func(attempt int) time.Duration
}

func WithRetry(model ChatModel, log *slog.Logger) *Retrying {
	return &Retrying{model: model, log: log, backoff: Backoff}
}

func (r *Retrying) Chat(ctx context.Context, messages []Message, tools []Tool) (Message, error) {
	var (
		reply   Message
		lastErr error
	)
	for attempt := range MaxRetries {
		reply, lastErr = r.model.Chat(ctx, messages, tools)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		r.log.Warn("retryable model error", "attempt", attempt, "error", lastErr)
		if attempt == MaxRetries-1 {
			break
		}
		select {
		case <-time.After(r.backoff(attempt)):
		case <-ctx.Done():
			return Message{}, ctx.Err()
		}
	}
	return reply, lastErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
