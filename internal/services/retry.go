package services

import (
	"context"
	"time"

	"resumerefresh/internal/domain"
)

// Retry defaults for outbound mail.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// RetryPolicy bounds how a send is retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Backoff returns the wait before the attempt following attempt (1-based).
	// Nil means linear: attempt * BaseDelay.
	Backoff func(attempt int, base time.Duration) time.Duration
	// Retryable decides whether err deserves another attempt. Nil means domain.IsTransient.
	Retryable func(err error) bool
}

// NewRetryPolicy returns a linear backoff policy; non-positive values fall back to defaults.
func NewRetryPolicy(maxAttempts int, baseDelay time.Duration) RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay < 0 {
		baseDelay = DefaultBaseDelay
	}
	return RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: baseDelay}
}

// LinearBackoff waits attempt * base.
func LinearBackoff(attempt int, base time.Duration) time.Duration {
	return time.Duration(attempt) * base
}

// Delay returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.Backoff != nil {
		return p.Backoff(attempt, p.BaseDelay)
	}
	return LinearBackoff(attempt, p.BaseDelay)
}

// ShouldRetry reports whether another attempt follows a failure of attempt.
func (p RetryPolicy) ShouldRetry(attempt int, err error) bool {
	if attempt >= p.attempts() {
		return false
	}
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return domain.IsTransient(err)
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

// Wait sleeps for d or until ctx is done.
func (p RetryPolicy) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
