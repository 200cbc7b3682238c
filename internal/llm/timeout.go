package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutProvider bounds every call with its own deadline.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps a Provider so that a single call never blocks longer
// than d. Expiry of that deadline is reported as ErrProviderUnavailable so
// the retry layer treats it like any other transient failure. Expiry or
// cancellation of the caller's own context is passed through untouched.
func WithTimeout(p Provider, d time.Duration) Provider {
	return &TimeoutProvider{inner: p, timeout: d}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if t.timeout <= 0 {
		return t.inner.Generate(ctx, req)
	}

	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.inner.Generate(callCtx, req)
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return nil, &ErrProviderUnavailable{
			Err: fmt.Errorf("call exceeded %s: %w", t.timeout, err),
		}
	}
	return resp, err
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}

// contextError returns err unchanged when it stems from context
// cancellation or deadline expiry, nil otherwise. SDK error mappers use it
// so that timeouts are classified by TimeoutProvider, not as generic
// network failures.
func contextError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
