package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"noelserdna/cyber-cv-analyzer/internal/config"
)

// RetryExhaustedError reports that every allowed attempt at the upstream call
// failed. It wraps the last failure. Distinct from a context deadline: the
// caller can tell "we gave up" apart from "we ran out of wall clock".
type RetryExhaustedError struct {
	Attempts int
	Elapsed  time.Duration
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempt(s) in %s: %v", e.Attempts, e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

// Retrier re-runs the upstream call on transient failures. Two independent
// stop conditions: attempt count and total elapsed time, whichever trips
// first. Delays follow the fixed schedule, reusing the last entry when
// attempts outnumber it.
type Retrier struct {
	maxAttempts int
	delays      []time.Duration
	maxElapsed  time.Duration
	clock       func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error

	// OnRetry, when set, observes every scheduled retry.
	OnRetry func(attempt int)
}

func NewRetrier(cfg config.RetryConfig) *Retrier {
	r := &Retrier{
		maxAttempts: cfg.MaxAttempts,
		delays:      cfg.Delays,
		maxElapsed:  cfg.MaxElapsed,
		clock:       time.Now,
		sleep:       sleepCtx,
	}
	if r.maxAttempts < 1 {
		r.maxAttempts = 1
	}
	if len(r.delays) == 0 {
		r.delays = []time.Duration{time.Second}
	}
	return r
}

// Do runs op until it succeeds, a non-retryable failure occurs, the context
// is done, or the attempt/elapsed budget runs out.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) (string, error)) (string, error) {
	start := r.clock().UTC()
	var lastErr error

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("agent call aborted: %w", err)
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", fmt.Errorf("agent call aborted: %w", ctx.Err())
		}

		if !IsRetryable(err) {
			return "", fmt.Errorf("agent call failed: %w", err)
		}

		elapsed := r.clock().UTC().Sub(start)
		if attempt >= r.maxAttempts || elapsed >= r.maxElapsed {
			return "", &RetryExhaustedError{Attempts: attempt, Elapsed: elapsed, Err: lastErr}
		}

		delay := r.delayFor(attempt)
		log.Printf("⚠️  Attempt %d failed: %v. Retrying in %s...\n", attempt, err, delay)
		if r.OnRetry != nil {
			r.OnRetry(attempt)
		}

		if err := r.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("agent call aborted: %w", err)
		}
	}
}

// delayFor returns the wait before the attempt following attempt n (1-based).
func (r *Retrier) delayFor(attempt int) time.Duration {
	idx := attempt - 1
	if idx >= len(r.delays) {
		idx = len(r.delays) - 1
	}
	return r.delays[idx]
}

// sleepCtx waits for d unless the context finishes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
