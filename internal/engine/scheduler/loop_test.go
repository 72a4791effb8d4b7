package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Faultbox/shellfog/internal/engine/input"
)

type step struct {
	at     time.Duration
	events []input.Event
}

// fakeSource replays steps, moving the fake clock to each step's time.
// Once the script runs out it delivers a close event.
type fakeSource struct {
	steps     []step
	now       time.Time
	deadlines []time.Time
}

func (f *fakeSource) Wait(ctx context.Context, deadline time.Time) ([]input.Event, error) {
	f.deadlines = append(f.deadlines, deadline)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(f.steps) == 0 {
		return []input.Event{input.Close()}, nil
	}
	s := f.steps[0]
	f.steps = f.steps[1:]
	f.now = at(s.at)
	return s.events, nil
}

func (f *fakeSource) clock() time.Time { return f.now }

type fakeHandler struct {
	ticks    int
	events   []input.Event
	updates  int
	draws    []time.Duration
	reveals  int
	drawErr  error
	failFor  int // draws that fail before drawErr stops applying
	exitAt   int
	latch    *input.Latch
	sawFresh []bool
}

func (h *fakeHandler) BeginTick(context.Context) {
	h.ticks++
	if h.latch != nil {
		h.latch.Decay()
	}
}

func (h *fakeHandler) HandleEvent(e input.Event) {
	h.events = append(h.events, e)
	if h.latch != nil {
		h.latch.Apply(e)
	}
}

func (h *fakeHandler) Update(time.Time) bool {
	h.updates++
	return h.exitAt > 0 && h.updates >= h.exitAt
}

func (h *fakeHandler) Draw(now time.Time) error {
	h.draws = append(h.draws, now.Sub(t0))
	if h.latch != nil {
		h.sawFresh = append(h.sawFresh, h.latch.Pressed(input.KeyW))
	}
	if h.failFor > 0 && len(h.draws) > h.failFor {
		return nil
	}
	return h.drawErr
}

func (h *fakeHandler) Reveal() { h.reveals++ }

func newLoop(src *fakeSource, h *fakeHandler) *Loop {
	return &Loop{Scheduler: New(), Source: src, Handler: h, Now: src.clock}
}

func TestLoopThrottlesDraws(t *testing.T) {
	src := &fakeSource{steps: []step{
		{at: 0},
		{at: 5 * time.Millisecond},
		{at: 20 * time.Millisecond},
	}}
	h := &fakeHandler{}
	l := newLoop(src, h)

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []time.Duration{0, 20 * time.Millisecond}
	if len(h.draws) != len(want) || h.draws[0] != want[0] || h.draws[1] != want[1] {
		t.Errorf("draws at %v, want %v", h.draws, want)
	}
	if h.reveals != 1 {
		t.Errorf("reveals = %d, want 1", h.reveals)
	}
	// Three scripted ticks plus the tick that delivers close.
	if h.ticks != 4 {
		t.Errorf("ticks = %d, want 4", h.ticks)
	}
	if l.Frames() != 2 {
		t.Errorf("Frames = %d, want 2", l.Frames())
	}
}

func TestLoopPassesDeadlines(t *testing.T) {
	src := &fakeSource{steps: []step{
		{at: 0},
		{at: 5 * time.Millisecond},
	}}
	l := newLoop(src, &fakeHandler{})
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !src.deadlines[0].IsZero() {
		t.Errorf("first wait deadline = %v, want zero (no blocking)", src.deadlines[0])
	}
	for i, d := range src.deadlines[1:] {
		if !d.Equal(at(FrameInterval)) {
			t.Errorf("wait %d deadline = %v, want %v", i+1, d.Sub(t0), FrameInterval)
		}
	}
}

func TestLoopRedrawIsImmediate(t *testing.T) {
	src := &fakeSource{steps: []step{
		{at: 0},
		{at: 3 * time.Millisecond, events: []input.Event{input.Redraw()}},
		{at: 10 * time.Millisecond},
	}}
	h := &fakeHandler{}
	if err := newLoop(src, h).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []time.Duration{0, 3 * time.Millisecond}
	if len(h.draws) != len(want) || h.draws[1] != want[1] {
		t.Errorf("draws at %v, want %v", h.draws, want)
	}
}

func TestLoopCloseStopsDrawing(t *testing.T) {
	src := &fakeSource{steps: []step{
		{at: 0},
		{at: 40 * time.Millisecond, events: []input.Event{input.Close(), input.Redraw()}},
		{at: 80 * time.Millisecond},
	}}
	h := &fakeHandler{}
	l := newLoop(src, h)
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(h.draws) != 1 {
		t.Errorf("draws at %v, want only the first", h.draws)
	}
	if len(src.steps) != 1 {
		t.Error("loop kept waiting after close")
	}
	if l.Scheduler.State() != Exited {
		t.Errorf("State = %v, want exited", l.Scheduler.State())
	}
}

func TestLoopDecaysOncePerTick(t *testing.T) {
	src := &fakeSource{steps: []step{
		{at: 0},
		{at: 2 * time.Millisecond, events: []input.Event{input.Key(input.KeyW, true)}},
		{at: 20 * time.Millisecond},
	}}
	h := &fakeHandler{latch: input.NewLatch()}
	if err := newLoop(src, h).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The press lands on a tick that does not draw; by the next draw the
	// edge has decayed but the key is still held.
	if len(h.sawFresh) != 2 || h.sawFresh[1] {
		t.Errorf("press edge seen at draws %v, want decayed by second draw", h.sawFresh)
	}
	if !h.latch.Held(input.KeyW) {
		t.Error("W should still be held")
	}
	if len(h.events) != 1 {
		t.Errorf("handler events = %v, want the key event only", h.events)
	}
}

func TestLoopSkipsFailedFrames(t *testing.T) {
	src := &fakeSource{steps: []step{
		{at: 0},
		{at: 20 * time.Millisecond},
		{at: 40 * time.Millisecond},
	}}
	h := &fakeHandler{drawErr: errors.New("submit failed")}
	l := newLoop(src, h)

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(h.draws) != 3 || l.FailedFrames() != 3 {
		t.Errorf("draws = %d, failed = %d; want 3 and 3", len(h.draws), l.FailedFrames())
	}
	if h.reveals != 0 {
		t.Errorf("reveals = %d, want 0 while no frame has been presented", h.reveals)
	}
}

func TestLoopRevealsAfterFirstGoodFrame(t *testing.T) {
	src := &fakeSource{steps: []step{
		{at: 0},
		{at: 20 * time.Millisecond},
		{at: 40 * time.Millisecond},
		{at: 60 * time.Millisecond},
	}}
	h := &fakeHandler{drawErr: errors.New("submit failed"), failFor: 2}
	l := newLoop(src, h)

	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if l.FailedFrames() != 2 {
		t.Errorf("failed = %d, want 2", l.FailedFrames())
	}
	if h.reveals != 1 {
		t.Errorf("reveals = %d, want 1 after the first good frame", h.reveals)
	}
}

func TestLoopFatalDrawErrors(t *testing.T) {
	drawErr := errors.New("submit failed")
	src := &fakeSource{steps: []step{{at: 0}, {at: 20 * time.Millisecond}}}
	h := &fakeHandler{drawErr: drawErr}
	l := newLoop(src, h)
	l.FatalDrawErrors = true

	err := l.Run(context.Background())
	if !errors.Is(err, drawErr) {
		t.Fatalf("Run = %v, want %v", err, drawErr)
	}
	if len(h.draws) != 1 {
		t.Errorf("draws = %d, want 1 (no retry)", len(h.draws))
	}
}

func TestLoopUpdateRequestsExit(t *testing.T) {
	src := &fakeSource{steps: []step{{at: 0}, {at: 20 * time.Millisecond}, {at: 40 * time.Millisecond}}}
	h := &fakeHandler{exitAt: 2}
	if err := newLoop(src, h).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(h.draws) != 1 {
		t.Errorf("draws = %v, want only the first", h.draws)
	}
}

func TestLoopContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{steps: []step{{at: 0}}}
	h := &fakeHandler{}
	l := newLoop(src, h)
	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(h.draws) != 0 || !l.Scheduler.Done() {
		t.Errorf("cancelled loop drew %d frames, done=%v", len(h.draws), l.Scheduler.Done())
	}
}

type errSource struct{ err error }

func (e errSource) Wait(context.Context, time.Time) ([]input.Event, error) { return nil, e.err }

func TestLoopSourceError(t *testing.T) {
	boom := errors.New("display lost")
	l := &Loop{Source: errSource{boom}, Handler: &fakeHandler{}}
	if err := l.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Run = %v, want %v", err, boom)
	}
}
