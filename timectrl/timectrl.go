package timectrl

import (
	"sort"
	"sync"
	"time"
)

// SimClock is an interface for accessing simulation time. Planner and
// engine components depend on this abstraction rather than a concrete
// time controller type, enabling testability.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
	// After returns a channel that receives the current simulation time
	// once the duration d has elapsed in simulation time.
	After(d time.Duration) <-chan time.Time
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime advances according to wall-clock time.
	RealTime Mode = iota
	// Accelerated advances as quickly as the loop can run while still stepping by Tick.
	Accelerated
)

// simTimer is a pending After registration.
type simTimer struct {
	fireAt time.Time
	ch     chan time.Time
}

// TimeController drives simulation time and notifies registered listeners.
// It implements SimClock.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	// currentTime tracks the current simulation time. It is updated
	// as the controller advances time.
	currentTime time.Time

	listeners []func(time.Time)
	timers    []*simTimer
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
		stop:        make(chan struct{}),
	}
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// After returns a channel that receives the simulation time once d has
// elapsed in simulation time. Timers fire during the tick whose sim time
// first reaches or passes their deadline. Implements SimClock.
func (tc *TimeController) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	tc.mu.Lock()
	defer tc.mu.Unlock()

	fireAt := tc.currentTime.Add(d)
	if d <= 0 {
		ch <- tc.currentTime
		return ch
	}
	tc.timers = append(tc.timers, &simTimer{fireAt: fireAt, ch: ch})
	sort.Slice(tc.timers, func(i, j int) bool {
		return tc.timers[i].fireAt.Before(tc.timers[j].fireAt)
	})
	return ch
}

// SetTime jumps the simulation clock to the given instant and fires any
// timers the jump passes. Intended for tests and scenario setup, not for
// use while Start is running.
func (tc *TimeController) SetTime(now time.Time) {
	tc.mu.Lock()
	tc.currentTime = now
	fired := tc.fireTimersLocked(now)
	tc.mu.Unlock()

	for _, timer := range fired {
		timer.ch <- now
	}
}

// AddListener registers a callback invoked on every tick.
func (tc *TimeController) AddListener(fn func(time.Time)) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.listeners = append(tc.listeners, fn)
}

// Stop halts a running controller. Safe to call more than once.
func (tc *TimeController) Stop() {
	tc.stopOnce.Do(func() { close(tc.stop) })
}

// Start runs the controller for the specified duration in a separate
// goroutine. A duration of zero runs until Stop is called. It returns a
// channel that is closed when the controller finishes.
func (tc *TimeController) Start(duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		tc.mu.Lock()
		simTime := tc.StartTime
		tc.currentTime = simTime
		tc.mu.Unlock()

		elapsed := time.Duration(0)

		// RealTime paces each step on a wall-clock ticker; Accelerated
		// steps as fast as the loop can run.
		var tickC <-chan time.Time
		if tc.Mode == RealTime {
			ticker := time.NewTicker(tc.Tick)
			defer ticker.Stop()
			tickC = ticker.C
		}

		for {
			if duration > 0 && elapsed >= duration {
				return
			}

			if tickC != nil {
				select {
				case <-tickC:
				case <-tc.stop:
					return
				}
			} else {
				select {
				case <-tc.stop:
					return
				default:
				}
			}

			simTime = simTime.Add(tc.Tick)
			elapsed += tc.Tick

			tc.mu.Lock()
			tc.currentTime = simTime
			listeners := append([]func(time.Time){}, tc.listeners...)
			fired := tc.fireTimersLocked(simTime)
			tc.mu.Unlock()

			for _, timer := range fired {
				timer.ch <- simTime
			}
			for _, fn := range listeners {
				fn(simTime)
			}
		}
	}()
	return done
}

// fireTimersLocked removes and returns all timers due at simTime. Callers
// must hold tc.mu.
func (tc *TimeController) fireTimersLocked(simTime time.Time) []*simTimer {
	idx := 0
	for idx < len(tc.timers) && !tc.timers[idx].fireAt.After(simTime) {
		idx++
	}
	if idx == 0 {
		return nil
	}
	fired := tc.timers[:idx]
	tc.timers = tc.timers[idx:]
	return fired
}
