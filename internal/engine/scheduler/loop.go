package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/shellfog/internal/engine/input"
)

// EventSource delivers windowing events. Wait blocks until at least one event
// is available or deadline passes; a zero or past deadline must not block.
type EventSource interface {
	Wait(ctx context.Context, deadline time.Time) ([]input.Event, error)
}

// Handler is the application side of the loop.
type Handler interface {
	// BeginTick runs exactly once per tick before any event is dispatched.
	BeginTick(ctx context.Context)
	// HandleEvent receives resize, key and modifier events.
	HandleEvent(e input.Event)
	// Update runs every tick after events. Returning true requests exit.
	Update(now time.Time) bool
	// Draw renders one frame.
	Draw(now time.Time) error
	// Reveal makes the window visible after the first draw.
	Reveal()
}

// Loop drives a Handler from an EventSource at the Scheduler's pace.
type Loop struct {
	Scheduler *Scheduler
	Source    EventSource
	Handler   Handler

	// Now defaults to time.Now.
	Now func() time.Time
	// FatalDrawErrors stops the loop on the first failed draw instead of
	// skipping the frame.
	FatalDrawErrors bool
	Log             *zap.Logger

	frames    int
	failed    int
	fpsFrames int
	fpsTimer  time.Time
	// The window stays hidden until a draw has actually been presented.
	revealPending bool
}

// Frames returns the number of draws dispatched so far.
func (l *Loop) Frames() int {
	return l.frames
}

// FailedFrames returns the number of draws that returned an error.
func (l *Loop) FailedFrames() int {
	return l.failed
}

// Run loops until the scheduler exits, the context is cancelled, or a fatal
// error occurs. Cancellation is treated as a close request.
func (l *Loop) Run(ctx context.Context) error {
	if l.Scheduler == nil {
		l.Scheduler = New()
	}
	if l.Now == nil {
		l.Now = time.Now
	}
	if l.Log == nil {
		l.Log = zap.NewNop()
	}
	s := l.Scheduler

	l.Log.Info("starting frame loop", zap.Duration("interval", s.Interval()))

	for !s.Done() {
		deadline, _ := s.Deadline()
		events, err := l.Source.Wait(ctx, deadline)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				l.Log.Info("frame loop cancelled")
				s.Close()
				break
			}
			return fmt.Errorf("waiting for events: %w", err)
		}

		if err := l.tick(ctx, events); err != nil {
			return err
		}
	}

	l.Log.Info("frame loop stopped",
		zap.Int("frames", l.frames),
		zap.Int("failed", l.failed),
	)
	return nil
}

func (l *Loop) tick(ctx context.Context, events []input.Event) error {
	s := l.Scheduler
	l.Handler.BeginTick(ctx)
	now := l.Now()

	for _, e := range events {
		switch e.Type {
		case input.EventClose:
			l.Log.Debug("close requested")
			s.Close()
		case input.EventRedraw:
			if err := l.perform(s.RedrawRequested(now), now); err != nil {
				return err
			}
		default:
			l.Handler.HandleEvent(e)
		}
		if s.Done() {
			return nil
		}
	}

	if ctx.Err() != nil {
		s.Close()
		return nil
	}
	if l.Handler.Update(now) {
		s.Close()
		return nil
	}
	return l.perform(s.Tick(now), now)
}

func (l *Loop) perform(a Action, now time.Time) error {
	if !a.Draw {
		return nil
	}
	l.frames++

	if a.Reveal {
		l.revealPending = true
	}

	if err := l.Handler.Draw(now); err != nil {
		l.failed++
		if l.FatalDrawErrors {
			return fmt.Errorf("frame %d: %w", l.frames, err)
		}
		l.Log.Warn("frame skipped", zap.Int("frame", l.frames), zap.Error(err))
	} else if l.revealPending {
		l.revealPending = false
		l.Handler.Reveal()
		l.Log.Debug("window revealed", zap.Int("frame", l.frames))
	}

	l.fpsFrames++
	if l.fpsTimer.IsZero() {
		l.fpsTimer = now
	} else if elapsed := now.Sub(l.fpsTimer); elapsed >= time.Second {
		l.Log.Debug("fps",
			zap.Float64("fps", float64(l.fpsFrames)/elapsed.Seconds()),
			zap.Int("frames", l.frames),
		)
		l.fpsFrames = 0
		l.fpsTimer = now
	}
	return nil
}
