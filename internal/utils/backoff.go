package utils

import (
	"context"
	"math/rand"
	"time"
)

// Backoff retries a function with exponential delays plus jitter.
type Backoff struct {
	base       time.Duration
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewBackoff(base time.Duration, maxRetries int) Backoff {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return Backoff{base: base, maxRetries: maxRetries, sleep: sleepCtx}
}

// Do calls fn until it succeeds, the retries are spent or ctx is done. fn
// receives the zero-based attempt number. The last error is returned.
func (b Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	var err error
	for i := 0; i <= b.maxRetries; i++ {
		if err = fn(i); err == nil {
			return nil
		}
		if i == b.maxRetries {
			break
		}
		if serr := b.sleep(ctx, b.delay(i)); serr != nil {
			return err
		}
	}
	return err
}

func (b Backoff) delay(attempt int) time.Duration {
	d := time.Duration(1<<attempt) * b.base
	if b.base > 0 {
		d += time.Duration(rand.Int63n(int64(b.base)))
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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
