package service

import "context"

// AttemptLimiter throttles repeated credential attempts against the same key.
type AttemptLimiter interface {
	// Allow records one attempt for key and returns domainerrors.ErrTooManyAttempts
	// once the configured budget for the current window is spent.
	Allow(ctx context.Context, key string) error
}
