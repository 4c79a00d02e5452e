package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token bucket shared by all outbound calls to one upstream host
type Limiter struct {
	mu       sync.Mutex
	rate     float64 // tokens per second
	burst    float64
	tokens   float64
	lastFill time.Time
	now      func() time.Time
}

// New creates a limiter refilling at rps tokens per second with a bucket of
// max(1, rps) tokens.
func New(rps float64) *Limiter {
	if rps <= 0 {
		rps = 1.0
	}
	burst := rps
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		rate:     rps,
		burst:    burst,
		tokens:   burst,
		lastFill: time.Now(),
		now:      time.Now,
	}
}

// Wait blocks until a token is available or ctx is done
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		wait, ok := l.reserve()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve refills the bucket and takes a token; when empty it reports how
// long until the next token lands.
func (l *Limiter) reserve() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.tokens += now.Sub(l.lastFill).Seconds() * l.rate
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
	l.lastFill = now

	if l.tokens >= 1.0 {
		l.tokens -= 1.0
		return 0, true
	}

	missing := 1.0 - l.tokens
	return time.Duration(missing / l.rate * float64(time.Second)), false
}
