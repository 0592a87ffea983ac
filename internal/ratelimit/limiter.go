// Package ratelimit implements a process-local fixed-window request counter.
//
// Bursts at window boundaries are accepted: a client may issue up to 2*max
// requests across the edge of two windows. State lives in memory and is not
// shared between processes.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultWindow      = 15 * time.Minute
	DefaultMaxRequests = 100
)

var ErrRateLimited = errors.New("rate limit exceeded")

type record struct {
	count   int
	resetAt time.Time
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type Limiter struct {
	mu      sync.Mutex
	records map[string]*record
	window  time.Duration
	max     int
	now     func() time.Time
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func New(window time.Duration, maxRequests int, opts ...Option) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	l := &Limiter{
		records: make(map[string]*record),
		window:  window,
		max:     maxRequests,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) Window() time.Duration {
	return l.window
}

// Allow counts one request for key. A rejected request does not extend the window.
func (l *Limiter) Allow(key string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok || now.After(rec.resetAt) {
		rec = &record{count: 1, resetAt: now.Add(l.window)}
		l.records[key] = rec
		return Decision{Allowed: true, Remaining: l.max - 1, ResetAt: rec.resetAt}
	}

	if rec.count >= l.max {
		return Decision{Allowed: false, Remaining: 0, ResetAt: rec.resetAt, RetryAfter: l.window}
	}

	rec.count++
	return Decision{Allowed: true, Remaining: l.max - rec.count, ResetAt: rec.resetAt}
}

// Sweep drops records whose window has ended and returns how many were removed.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, rec := range l.records {
		if now.After(rec.resetAt) {
			delete(l.records, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Run sweeps expired records every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = l.window
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Int("tracked", l.Len()).Msg("ratelimit: swept expired clients")
			}
		}
	}
}
