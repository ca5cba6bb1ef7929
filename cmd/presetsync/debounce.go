package main

import "time"

// debouncer coalesces a burst of events into a single timer fire. Bump
// stops and drains the timer before resetting it, so an expiry that raced
// an incoming event cannot leak a stale fire and trigger a duplicate run.
type debouncer struct {
	d     time.Duration
	timer *time.Timer
}

func newDebouncer(d time.Duration) *debouncer { return &debouncer{d: d} }

// Bump (re)starts the countdown.
func (b *debouncer) Bump() {
	if b.timer == nil {
		b.timer = time.NewTimer(b.d)
		return
	}
	if !b.timer.Stop() {
		select {
		case <-b.timer.C:
		default:
		}
	}
	b.timer.Reset(b.d)
}

// C returns the fire channel. It is nil until the first Bump, so selecting
// on it before any event blocks that case.
func (b *debouncer) C() <-chan time.Time {
	if b.timer == nil {
		return nil
	}
	return b.timer.C
}
