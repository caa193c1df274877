// Package sim runs the sequencer core on a regular Go runtime: a wall clock
// 16-bit compare timer and a pin recorder stand in for the hardware.
package sim

import (
	"context"
	"sync"
	"time"
)

// Timer16 is a 1 MHz free-running 16-bit counter derived from the wall
// clock. Compare matches are delivered on the goroutine started by Run.
type Timer16 struct {
	start time.Time

	mu      sync.Mutex
	compare uint16
	enabled bool
	matches uint64

	kick chan struct{}
}

// NewTimer16 starts the counter at zero
func NewTimer16() *Timer16 {
	return &Timer16{
		start: time.Now(),
		kick:  make(chan struct{}, 1),
	}
}

// Counter returns the microseconds since start, modulo 2^16
func (t *Timer16) Counter() uint16 {
	return uint16(time.Since(t.start).Microseconds())
}

func (t *Timer16) SetCompare(at uint16) {
	t.mu.Lock()
	t.compare = at
	t.mu.Unlock()
	t.poke()
}

func (t *Timer16) EnableCompare() {
	t.mu.Lock()
	t.enabled = true
	t.mu.Unlock()
	t.poke()
}

func (t *Timer16) DisableCompare() {
	t.mu.Lock()
	t.enabled = false
	t.mu.Unlock()
	t.poke()
}

// Matches returns how many compare matches were delivered
func (t *Timer16) Matches() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.matches
}

func (t *Timer16) poke() {
	select {
	case t.kick <- struct{}{}:
	default:
	}
}

// Run delivers compare matches to handler until ctx is done. The handler
// runs with no timer lock held, so it may reprogram the compare.
func (t *Timer16) Run(ctx context.Context, handler func()) {
	wait := time.NewTimer(time.Hour)
	defer wait.Stop()

	for {
		t.mu.Lock()
		enabled, at := t.enabled, t.compare
		t.mu.Unlock()

		delay := time.Hour
		if enabled {
			delay = time.Duration(at-t.Counter()) * time.Microsecond
		}
		if !wait.Stop() {
			select {
			case <-wait.C:
			default:
			}
		}
		wait.Reset(delay)

		select {
		case <-ctx.Done():
			return
		case <-t.kick:
			continue
		case <-wait.C:
		}

		t.mu.Lock()
		fire := t.enabled && t.compare == at
		if fire {
			t.matches++
		}
		t.mu.Unlock()
		if fire {
			handler()
		}
	}
}
