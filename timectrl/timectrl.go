// Package timectrl drives the simulation clock: it advances simulated time in
// fixed ticks and notifies listeners, either paced by the wall clock or as
// fast as the listeners allow.
package timectrl

import (
	"context"
	"sync"
	"time"
)

// SimClock exposes the current simulated time.
type SimClock interface {
	Now() time.Time
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime advances one tick per wall-clock tick.
	RealTime Mode = iota
	// Accelerated advances as quickly as the listeners return.
	Accelerated
)

// ParseMode maps "realtime" or "accelerated" to a Mode; anything else is RealTime.
func ParseMode(s string) Mode {
	if s == "accelerated" {
		return Accelerated
	}
	return RealTime
}

// Listener is invoked once per tick with the new simulated time and the
// simulated duration of the tick.
type Listener func(now time.Time, dt time.Duration)

// TimeController drives simulation time and notifies registered listeners.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time
	ticks       uint64
	listeners   []Listener
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current simulation time.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime moves the clock without notifying listeners.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = t
}

// Ticks returns the number of ticks delivered so far.
func (tc *TimeController) Ticks() uint64 {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.ticks
}

// AddListener registers a callback invoked on every tick.
func (tc *TimeController) AddListener(fn Listener) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.listeners = append(tc.listeners, fn)
}

// Advance delivers one tick synchronously.
func (tc *TimeController) Advance() time.Time {
	tc.mu.Lock()
	tc.currentTime = tc.currentTime.Add(tc.Tick)
	tc.ticks++
	now := tc.currentTime
	listeners := append([]Listener(nil), tc.listeners...)
	tc.mu.Unlock()

	for _, fn := range listeners {
		fn(now, tc.Tick)
	}
	return now
}

// Start runs the controller in a separate goroutine until duration of
// simulated time has passed (zero means unbounded) or ctx is cancelled. The
// returned channel is closed when the controller stops.
func (tc *TimeController) Start(ctx context.Context, duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		tc.mu.Lock()
		tc.currentTime = tc.StartTime
		tc.mu.Unlock()

		var ticks <-chan time.Time
		if tc.Mode == RealTime {
			ticker := time.NewTicker(tc.Tick)
			defer ticker.Stop()
			ticks = ticker.C
		}

		var elapsed time.Duration
		for {
			if duration > 0 && elapsed >= duration {
				return
			}
			if ticks != nil {
				select {
				case <-ctx.Done():
					return
				case <-ticks:
				}
			} else if ctx.Err() != nil {
				return
			}
			tc.Advance()
			elapsed += tc.Tick
		}
	}()
	return done
}
