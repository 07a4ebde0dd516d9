package provider

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle enforces a minimum spacing between calls that share a key. Each
// key owns its own limiter, so a slow provider never delays another one.
type Throttle struct {
	interval time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewThrottle creates a throttle allowing one call per interval per key.
// A non-positive interval disables throttling.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the key's next slot is reached or ctx is cancelled.
// Slots are reserved atomically, so concurrent callers on one key are spaced
// by at least the interval.
func (t *Throttle) Wait(ctx context.Context, key string) error {
	if t == nil || t.interval <= 0 {
		return ctx.Err()
	}
	return t.limiter(key).Wait(ctx)
}

func (t *Throttle) limiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(t.interval), 1)
		t.limiters[key] = l
	}
	return l
}
