// Package ratelimit provides a sliding window admission limiter for outgoing requests
package ratelimit

import (
	"context"
	"sync"
	"time"

	perr "shelfsync/internal/platform/errors"
)

// Options configures a Limiter
type Options struct {
	// Max is the number of admissions allowed in any rolling Window
	Max int
	// Window is the rolling window length
	Window time.Duration
	// Now and Sleep are clock seams, default to wall time
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Stats is a point in time view of the limiter
type Stats struct {
	Max      int           `json:"max"`
	Window   time.Duration `json:"window"`
	InWindow int           `json:"in_window"`
	Waits    int64         `json:"waits"`
}

// Limiter records the timestamp of every admission and admits a caller only while
// fewer than Max timestamps remain inside the window
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	stamps []time.Time // ascending
	waits  int64

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a Limiter, Max defaults to 8 per second
func New(opts Options) *Limiter {
	if opts.Max <= 0 {
		opts.Max = 8
	}
	if opts.Window <= 0 {
		opts.Window = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepCtx
	}
	return &Limiter{
		max:    opts.Max,
		window: opts.Window,
		stamps: make([]time.Time, 0, opts.Max),
		now:    opts.Now,
		sleep:  opts.Sleep,
	}
}

// Wait blocks until the caller may proceed and records its admission
// after every wake up the window is re-checked, a wake is never an admission
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return perr.Wrap(err, perr.ErrorCodeCanceled, "rate limiter wait canceled")
		}
		wait, ok := l.reserve()
		if ok {
			return nil
		}
		if err := l.sleep(ctx, wait); err != nil {
			return perr.Wrap(err, perr.ErrorCodeCanceled, "rate limiter wait canceled")
		}
	}
}

// Allow admits the caller only if a slot is free right now
func (l *Limiter) Allow() bool {
	_, ok := l.reserve()
	return ok
}

// reserve prunes, then admits or reports how long until the oldest stamp leaves
func (l *Limiter) reserve() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.prune(now)
	if len(l.stamps) < l.max {
		l.stamps = append(l.stamps, now)
		return 0, true
	}
	l.waits++
	wait := l.window - now.Sub(l.stamps[0])
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait, false
}

func (l *Limiter) prune(now time.Time) {
	i := 0
	for i < len(l.stamps) && now.Sub(l.stamps[i]) >= l.window {
		i++
	}
	if i > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[i:]...)
	}
}

// Stats reports the current window occupancy
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return Stats{Max: l.max, Window: l.window, InWindow: len(l.stamps), Waits: l.waits}
}

// Reset forgets every admission
func (l *Limiter) Reset() {
	l.mu.Lock()
	l.stamps = l.stamps[:0]
	l.mu.Unlock()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
