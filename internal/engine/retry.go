package engine

import (
	"context"
	"errors"
	"time"

	"github.com/overdrive-auctions/auction-core/internal/domain"
)

// isVersionConflict reports whether err is (or wraps) a
// domain.VersionConflictError.
func isVersionConflict(err error) bool {
	var conflict *domain.VersionConflictError
	return errors.As(err, &conflict)
}

// backoff sleeps BaseDelay*2^(attempt-1), honoring ctx cancellation at
// the suspension point (spec.md §5 "honored ... on entry to the retry
// sleep").
func backoff(ctx context.Context, attempt int) error {
	delay := BaseDelay * time.Duration(uint(1)<<uint(attempt-1))
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// withRetry runs attempt at most MaxAttempts times. attempt should open
// a fresh scope, do its work, and return the Commit error (nil on
// success). A VersionConflictError triggers a sleeping retry; any other
// error (NotFound, StateViolation, InvalidInput, ctx cancellation)
// surfaces immediately without retry, per spec.md §4.5/§7. Once
// MaxAttempts is exhausted, the last conflict is wrapped in an
// UnrecoverableError.
func withRetry(ctx context.Context, op string, attempt func() error) error {
	var lastErr error
	for n := 1; n <= MaxAttempts; n++ {
		err := attempt()
		if err == nil {
			return nil
		}
		if !isVersionConflict(err) {
			return err
		}
		lastErr = err
		if n == MaxAttempts {
			break
		}
		if err := backoff(ctx, n); err != nil {
			return err
		}
	}
	return &domain.UnrecoverableError{Op: op, Cause: lastErr}
}
