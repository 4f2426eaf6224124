package inference

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go"
)

// IsRetryableError determines if an error should trigger a retry
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Retry on JSON parsing errors as they might be due to incomplete responses
	errStr := err.Error()
	if strings.Contains(errStr, "json.Unmarshal") || strings.Contains(errStr, "unexpected end of JSON input") {
		return true
	}

	// Retry on network-related errors
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "connection reset") || strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Retry on 5xx errors (server errors)
	if strings.Contains(errStr, "response error 5") {
		return true
	}

	// Retry on rate limiting (429)
	if strings.Contains(errStr, "response error 429") {
		return true
	}

	return false
}

// Retry calls fn until it succeeds, returns a non-retryable error, or
// maxRetryAttempts retries have failed. Delays grow exponentially from
// initialDelay.
func Retry[T any](ctx context.Context, maxRetryAttempts uint, initialDelay time.Duration, fn func() (T, error)) (T, error) {
	var result T
	err := retry.Do(
		func() error {
			response, err := fn()
			if err != nil {
				if !IsRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxRetryAttempts+1),
		retry.Delay(initialDelay),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
		retry.OnRetry(func(n uint, err error) {
			slog.Default().Info("Retrying provider call",
				"attempt", n+1,
				"error", err,
			)
		}),
	)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
