// Package retry dials backing services at startup with capped exponential
// backoff. Trip planner calls never go through it.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrExhausted is returned once every attempt of a Policy has failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy bounds how long startup waits for a dependency.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// Budget caps the total time spent, zero means no cap.
	Budget time.Duration
}

// StartupPolicy is used for Postgres and Typesense.
func StartupPolicy() Policy {
	return Policy{
		Attempts:  10,
		BaseDelay: 100 * time.Millisecond,
		MaxDelay:  10 * time.Second,
		Budget:    time.Minute,
	}
}

// Delay returns the pause that follows the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return d
}

// Connect calls dial until it succeeds, the attempts run out or ctx ends.
// Each dial gets the shared context so it can be bounded by Budget.
func Connect(ctx context.Context, p Policy, service string, dial func(context.Context) error) error {
	attempts := max(p.Attempts, 1)
	if p.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Budget)
		defer cancel()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return stopped(service, err, lastErr)
		}

		if lastErr = dial(ctx); lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		wait := p.Delay(attempt)
		log.Warn().Err(lastErr).
			Str("service", service).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("connection attempt failed")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return stopped(service, ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	return fmt.Errorf("%s: %w after %d attempts: %w", service, ErrExhausted, attempts, lastErr)
}

func stopped(service string, ctxErr, lastErr error) error {
	if lastErr == nil {
		return fmt.Errorf("%s: %w", service, ctxErr)
	}
	return fmt.Errorf("%s: %w (last error: %v)", service, ctxErr, lastErr)
}
