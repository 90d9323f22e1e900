package retry

import (
	"context"
	"time"
)

// Sleeper waits for d or until ctx is done. Tests substitute an instant sleeper.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the default Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do calls fn until it succeeds, the policy is exhausted, shouldRetry rejects the error or
// ctx is done. fn receives the 1-based attempt number. The last error is returned unchanged.
func Do(ctx context.Context, p Policy, sleep Sleeper, shouldRetry func(error) bool, fn func(ctx context.Context, attempt int) error) error {
	if sleep == nil {
		sleep = ContextSleep
	}
	var err error
	for attempt := 1; attempt <= p.Attempts(); attempt++ {
		if err = fn(ctx, attempt); err == nil {
			return nil
		}
		if attempt == p.Attempts() || (shouldRetry != nil && !shouldRetry(err)) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		if serr := sleep(ctx, p.Delay(attempt)); serr != nil {
			return err
		}
	}
	return err
}
