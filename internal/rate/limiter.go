// Package rate implements a fixed-window request limiter on top of the
// shared cache, so the count is enforced across instances when the cache
// backend is redis.
package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/OpenQueue/API/internal/cache"
)

// Result is the outcome of one Allow call.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter counts hits per key in fixed windows of Window length and
// rejects once Max is exceeded.
type Limiter struct {
	client cache.Client
	prefix string
	max    int64
	window time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// NewLimiter builds a limiter allowing max hits per window.
func NewLimiter(client cache.Client, prefix string, max int, window time.Duration) *Limiter {
	if prefix == "" {
		prefix = "rl"
	}
	return &Limiter{
		client: client,
		prefix: prefix,
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

// Allow records one hit for key and reports whether it is within the
// limit. Cache failures propagate; the caller decides whether to fail
// open or closed.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now().UTC()
	winStart := now.Truncate(l.window)
	counter := fmt.Sprintf("%s-%s-%d", l.prefix, key, winStart.Unix())

	hits, err := l.client.Incr(ctx, counter, l.window)
	if err != nil {
		return Result{}, err
	}

	remaining := l.max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:   hits <= l.max,
		Remaining: remaining,
	}
	if !res.Allowed {
		res.RetryAfter = winStart.Add(l.window).Sub(now)
	}
	return res, nil
}
