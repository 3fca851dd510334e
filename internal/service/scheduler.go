package service

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock supplies the current time to the draft engine.
type Clock interface {
	Now() time.Time
}

// Scheduler runs f once after d. There is no cancellation: scheduled work is
// expected to re-validate state when it runs.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// TimerScheduler schedules work on runtime timers. After Stop, callbacks
// that fire are dropped.
type TimerScheduler struct {
	stopped atomic.Bool
}

func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

func (s *TimerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, func() {
		if s.stopped.Load() {
			return
		}
		f()
	})
}

// Stop drops every callback that has not fired yet. Used during shutdown.
func (s *TimerScheduler) Stop() {
	s.stopped.Store(true)
}

// ManualClock is a Clock and Scheduler driven by Advance. It lets tests
// control exactly when watchdogs fire.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []scheduled
}

type scheduled struct {
	at time.Time
	f  func()
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, scheduled{at: c.now.Add(d), f: f})
}

// Pending returns the number of callbacks not yet fired.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Advance moves the clock forward and runs, in due order on the calling
// goroutine, every callback that became due. Callbacks scheduled while
// advancing run too if they fall inside the window.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		idx := -1
		for i, s := range c.pending {
			if s.at.After(target) {
				continue
			}
			if idx == -1 || s.at.Before(c.pending[idx].at) {
				idx = i
			}
		}
		if idx == -1 {
			c.now = target
			c.mu.Unlock()
			return
		}
		next := c.pending[idx]
		c.pending = append(c.pending[:idx], c.pending[idx+1:]...)
		if next.at.After(c.now) {
			c.now = next.at
		}
		c.mu.Unlock()

		next.f()
	}
}
