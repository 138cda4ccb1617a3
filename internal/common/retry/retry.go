// Package retry wraps single remote calls in an exponential backoff loop.
// Only the network call retries; the surrounding pipeline never does.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy bounds a backoff loop. Delay doubles after every failed attempt.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Factor       float64
}

// DefaultPolicy matches the downstream gateways: 200ms initial delay,
// factor 2.0, four attempts.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  4,
		InitialDelay: 200 * time.Millisecond,
		Factor:       2.0,
	}
}

// Permanent marks an error as not worth retrying, e.g. a data ambiguity a
// repeated call cannot change.
type Permanent struct {
	Err error
}

func (p *Permanent) Error() string { return p.Err.Error() }
func (p *Permanent) Unwrap() error { return p.Err }

// Stop wraps err so Do returns it immediately without further attempts.
func Stop(err error) error {
	return &Permanent{Err: err}
}

// Do runs operation until it succeeds, returns a Permanent error, the
// attempts are exhausted, or ctx is done.
func (p Policy) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := p.InitialDelay

	var err error
	for i := 0; i < attempts; i++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if perm, ok := err.(*Permanent); ok {
			return perm.Err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s canceled: %w", operation, ctx.Err())
		}
		delay = time.Duration(float64(delay) * p.Factor)
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, err)
}
