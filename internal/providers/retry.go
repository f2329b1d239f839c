package providers

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy is the single retry abstraction applied to every provider
// call site: a bounded attempt budget with a fixed sleep between tries.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy matches the upstream's tolerance: three attempts
// with a short fixed pause.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Backoff: time.Second}

// Do runs fn until it succeeds or the attempt budget is spent. The last
// error is wrapped with the operation name. Context cancellation aborts
// the backoff sleep.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Backoff):
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, err)
}
