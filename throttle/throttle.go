// Package throttle gates repeated pipeline invocations within one session.
package throttle

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum time between two accepted invocations.
const DefaultInterval = 60 * time.Second

// Throttle is a single-token bucket refilled once per interval. A fresh
// Throttle starts full, so its first Allow always succeeds.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	limiter  *rate.Limiter
}

func New(interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Throttle{interval: interval, limiter: newLimiter(interval)}
}

func newLimiter(interval time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(interval), 1)
}

func (t *Throttle) current() *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limiter
}

// Allow takes the token and returns true when at least the interval has
// passed since the last accepted call. A denied call leaves the state unchanged.
func (t *Throttle) Allow(now time.Time) bool {
	return t.current().AllowN(now, 1)
}

// Remaining returns how long a caller has to wait before Allow succeeds.
func (t *Throttle) Remaining(now time.Time) time.Duration {
	tokens := t.current().TokensAt(now)
	if tokens >= 1 {
		return 0
	}
	return time.Duration((1 - tokens) * float64(t.interval)).Round(time.Millisecond)
}

// Reset forgets the last accepted invocation.
func (t *Throttle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.limiter = newLimiter(t.interval)
}
