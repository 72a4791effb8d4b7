// Package scheduler paces drawing against an event-driven loop.
package scheduler

import "time"

// FrameInterval is the target time between draws (60 Hz). It is a duration
// constant so the deadline arithmetic never accumulates rounding.
const FrameInterval = time.Second / 60

// State is the scheduler's position in its lifecycle.
type State int

const (
	AwaitingFirstDraw State = iota
	Steady
	Exited
)

func (s State) String() string {
	switch s {
	case AwaitingFirstDraw:
		return "awaiting-first-draw"
	case Steady:
		return "steady"
	case Exited:
		return "exited"
	default:
		return "unknown"
	}
}

// Action tells the loop what to do after a tick.
type Action struct {
	Draw   bool
	Reveal bool      // first visible paint: show the window after drawing
	WakeAt time.Time // next instant the loop must wake; zero once exited
}

// Scheduler decides when a tick should draw.
type Scheduler struct {
	interval time.Duration
	state    State
	lastDraw time.Time
}

// New creates a scheduler with the default frame interval.
func New() *Scheduler {
	return NewWithInterval(FrameInterval)
}

// NewWithInterval creates a scheduler with a custom frame interval.
func NewWithInterval(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = FrameInterval
	}
	return &Scheduler{interval: interval}
}

// State returns the current state.
func (s *Scheduler) State() State {
	return s.state
}

// Interval returns the frame interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// LastDraw returns when the last draw was dispatched.
func (s *Scheduler) LastDraw() time.Time {
	return s.lastDraw
}

// Done reports whether the scheduler has exited.
func (s *Scheduler) Done() bool {
	return s.state == Exited
}

// Tick is called once per loop wake-up.
func (s *Scheduler) Tick(now time.Time) Action {
	switch s.state {
	case AwaitingFirstDraw:
		return s.draw(now, true)
	case Steady:
		if now.Sub(s.lastDraw) >= s.interval {
			return s.draw(now, false)
		}
		return Action{WakeAt: s.lastDraw.Add(s.interval)}
	default:
		return Action{}
	}
}

// RedrawRequested draws immediately, bypassing the frame interval.
func (s *Scheduler) RedrawRequested(now time.Time) Action {
	if s.state == Exited {
		return Action{}
	}
	return s.draw(now, s.state == AwaitingFirstDraw)
}

// Close moves the scheduler to its terminal state.
func (s *Scheduler) Close() {
	s.state = Exited
}

// Deadline returns the next instant the loop must wake. ok is false once
// exited. Before the first draw the deadline is the zero time (wake now).
func (s *Scheduler) Deadline() (deadline time.Time, ok bool) {
	switch s.state {
	case AwaitingFirstDraw:
		return time.Time{}, true
	case Steady:
		return s.lastDraw.Add(s.interval), true
	default:
		return time.Time{}, false
	}
}

func (s *Scheduler) draw(now time.Time, reveal bool) Action {
	s.state = Steady
	s.lastDraw = now
	return Action{Draw: true, Reveal: reveal, WakeAt: now.Add(s.interval)}
}
