package service

import (
	"context"
	"time"
)

const maxBackoff = 30 * time.Second

// backoffDelay returns the wait before retry attempt n (1-based):
// base, 2*base, 4*base, ... capped at maxBackoff.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	if attempt < 1 {
		attempt = 1
	}
	delay := base << (attempt - 1)
	if delay > maxBackoff || delay <= 0 {
		return maxBackoff
	}
	return delay
}

// sleep waits for the delay or the context, whichever ends first.
func sleep(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
