// Package retry wraps transient store/API failures with bounded
// exponential backoff. Validation-class errors are never retried.
package retry

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Transient reports whether err matches the allow-list of retryable
// failures (connection-level and rate-limit style errors).
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"unavailable",
		"deadline exceeded",
		"connection refused",
		"connection reset",
		"too many requests",
		"timeout",
		"try again",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Do runs fn up to attempts times, sleeping baseDelay, 2*baseDelay, ... in
// between. Non-transient errors abort immediately.
func Do(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	delay := baseDelay
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if !Transient(err) || i == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
