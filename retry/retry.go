// Package retry retries failed capacity growth.
//
// Growth failures leave a collection usable, and memory acquirers such as
// resource.Controller fail fast instead of waiting, so backoff is the
// caller's choice. Ensure applies a bounded, optionally rate limited retry
// policy:
//
//	policy := retry.Policy{
//		MaxAttempts: 5,
//		Limiter:     rate.NewLimiter(rate.Every(10*time.Millisecond), 1),
//	}
//	err := retry.Ensure(ctx, col, i, policy)
package retry

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"github.com/hupe1980/pincol/storage"
)

// DefaultMaxAttempts is used when Policy.MaxAttempts is not positive.
const DefaultMaxAttempts = 3

// Ensurer grows a collection to cover an index. *pincol.Col implements it.
type Ensurer interface {
	EnsureCapacityForContext(ctx context.Context, index int) error
}

// Policy controls how Ensure retries.
type Policy struct {
	// MaxAttempts bounds the number of calls, including the first one.
	MaxAttempts int

	// Limiter paces attempts after the first. Nil retries immediately.
	Limiter *rate.Limiter

	// Retryable decides whether an error is worth another attempt.
	// Nil uses Retryable.
	Retryable func(error) bool
}

// Retryable reports whether err is an allocation failure that a later attempt
// may not hit. Reaching the maximum capacity is permanent until the caller
// reserves more, so it is not retryable.
func Retryable(err error) bool {
	var allocErr *storage.AllocationError
	if !errors.As(err, &allocErr) {
		return false
	}
	return !errors.Is(err, storage.ErrMaximumCapacity)
}

// Ensure calls e.EnsureCapacityForContext until it succeeds, the policy gives
// up, or ctx is done. It returns the last error.
func Ensure(ctx context.Context, e Ensurer, index int, p Policy) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = Retryable
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && p.Limiter != nil {
			if waitErr := p.Limiter.Wait(ctx); waitErr != nil {
				return errors.Join(err, waitErr)
			}
		}

		err = e.EnsureCapacityForContext(ctx, index)
		if err == nil || !retryable(err) {
			return err
		}
	}

	return err
}
