// Package debounce coalesces bursts of triggers into a single trailing call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer invokes a function once a burst of triggers has been quiet for a
// fixed delay. At most one timer is armed at a time; each Trigger cancels any
// previously armed timer before arming a new one.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
}

// New creates a debouncer that calls fn delay after the most recent Trigger.
func New(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules fn to run delay from now, superseding any pending schedule.
// A burst of triggers spaced closer than delay results in exactly one call,
// delay after the last trigger in the burst.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() { d.fire(t) })
	d.timer = t
}

// Stop cancels any pending invocation. It reports whether an invocation was
// pending and has now been cancelled.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	d.timer = nil
	return stopped
}

// Pending reports whether an invocation is currently scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// fire clears the armed timer only if it is still the one that fired; a
// Trigger racing with the callback must not lose its fresh schedule.
func (d *Debouncer) fire(t *time.Timer) {
	d.mu.Lock()
	if d.timer == t {
		d.timer = nil
	}
	d.mu.Unlock()
	d.fn()
}
