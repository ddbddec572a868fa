// Package backoff implements exponential retry delays with jitter.
package backoff

import (
	"context"
	"math/rand"
	"time"
)

const (
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 30 * time.Second
	defaultFactor     = 2.0
	defaultMaxRetries = 5
	defaultJitter     = 0.1
)

// Policy describes how retries are spaced. The zero value is not usable,
// construct it with Default and override fields as needed.
type Policy struct {
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the grow of the delay.
	MaxDelay time.Duration
	// Factor multiplies the delay after every failed attempt.
	Factor float64
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// Jitter randomizes each delay by +/- this fraction.
	Jitter float64
}

// Default returns the stock retry policy.
func Default() Policy {
	return Policy{
		BaseDelay:  defaultBaseDelay,
		MaxDelay:   defaultMaxDelay,
		Factor:     defaultFactor,
		MaxRetries: defaultMaxRetries,
		Jitter:     defaultJitter,
	}
}

// Retry runs fn until it succeeds, the retry budget is exhausted, or ctx is
// cancelled. Returns the last error from fn, or ctx.Err on cancellation.
func (p Policy) Retry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	delay := p.BaseDelay

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.jittered(delay)):
			}

			delay = time.Duration(float64(delay) * p.Factor)
			if delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		if err = fn(ctx); err == nil {
			return nil
		}
	}

	return err
}

// RetryValue is Retry for functions that produce a value.
func RetryValue[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := p.Retry(ctx, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}

func (p Policy) jittered(delay time.Duration) time.Duration {
	if p.Jitter <= 0 {
		return delay
	}
	shift := (rand.Float64()*2 - 1) * p.Jitter * float64(delay)
	d := time.Duration(float64(delay) + shift)
	if d < 0 {
		return 0
	}
	return d
}
