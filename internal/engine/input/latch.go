package input

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// KeyState is one key's latch cell.
type KeyState struct {
	HeldDown         bool
	ChangedThisFrame bool
}

// Modifiers is a bitset of held modifier keys.
type Modifiers uint8

// Modifier bits.
const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// Has reports whether every bit in m2 is set.
func (m Modifiers) Has(m2 Modifiers) bool {
	return m&m2 == m2
}

// Latch tracks held keys and which of them changed since the last Decay.
// It is owned by the loop goroutine; only DecayParallel fans out, and it
// writes disjoint entries.
type Latch struct {
	keys      [NumKeys]KeyState
	modifiers Modifiers
}

// NewLatch creates a latch with every key released.
func NewLatch() *Latch {
	return &Latch{}
}

// Set records a press or release. Unknown key codes are ignored.
func (l *Latch) Set(key KeyCode, pressed bool) {
	if !key.Valid() {
		return
	}
	l.keys[key] = KeyState{HeldDown: pressed, ChangedThisFrame: true}
}

// Decay clears every ChangedThisFrame flag. Called once per scheduler tick.
func (l *Latch) Decay() {
	decayRange(l.keys[:])
}

// DecayParallel is Decay split across up to workers goroutines. Chunks not
// yet started when ctx is done are skipped and ctx's error is returned, so
// the caller must finish with Decay.
func (l *Latch) DecayParallel(ctx context.Context, workers int) error {
	if workers <= 1 {
		l.Decay()
		return nil
	}

	chunk := (NumKeys + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < NumKeys; start += chunk {
		part := l.keys[start:min(start+chunk, NumKeys)]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			decayRange(part)
			return nil
		})
	}
	return g.Wait()
}

func decayRange(keys []KeyState) {
	for i := range keys {
		keys[i].ChangedThisFrame = false
	}
}

// State returns the latch cell for key. Unknown keys read as released.
func (l *Latch) State(key KeyCode) KeyState {
	if !key.Valid() {
		return KeyState{}
	}
	return l.keys[key]
}

// Held reports whether key is down.
func (l *Latch) Held(key KeyCode) bool {
	return l.State(key).HeldDown
}

// Pressed reports whether key went down this frame.
func (l *Latch) Pressed(key KeyCode) bool {
	s := l.State(key)
	return s.HeldDown && s.ChangedThisFrame
}

// Released reports whether key came up this frame.
func (l *Latch) Released(key KeyCode) bool {
	s := l.State(key)
	return !s.HeldDown && s.ChangedThisFrame
}

// SetModifiers replaces the modifier state wholesale.
func (l *Latch) SetModifiers(m Modifiers) {
	l.modifiers = m
}

// Modifiers returns the current modifier state.
func (l *Latch) Modifiers() Modifiers {
	return l.modifiers
}

// Axis returns +1 if pos is held, -1 if neg is held, 0 for both or neither.
func (l *Latch) Axis(neg, pos KeyCode) float32 {
	var v float32
	if l.Held(pos) {
		v++
	}
	if l.Held(neg) {
		v--
	}
	return v
}
