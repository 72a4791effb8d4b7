// Package input tracks keyboard state and turns SDL2 events into loop events.
package input

// EventType identifies what happened.
type EventType int

const (
	EventNone EventType = iota
	EventClose
	EventResize
	EventKey
	EventModifiers
	EventRedraw
)

func (t EventType) String() string {
	switch t {
	case EventClose:
		return "close"
	case EventResize:
		return "resize"
	case EventKey:
		return "key"
	case EventModifiers:
		return "modifiers"
	case EventRedraw:
		return "redraw"
	default:
		return "none"
	}
}

// Event is a windowing event, already translated off SDL types.
type Event struct {
	Type    EventType
	Key     KeyCode
	Pressed bool
	Mods    Modifiers
	Width   int
	Height  int
}

// Close returns a close-requested event.
func Close() Event { return Event{Type: EventClose} }

// Redraw returns a redraw-requested event.
func Redraw() Event { return Event{Type: EventRedraw} }

// Resize returns a resize event.
func Resize(width, height int) Event {
	return Event{Type: EventResize, Width: width, Height: height}
}

// Key returns a key press or release event.
func Key(code KeyCode, pressed bool) Event {
	return Event{Type: EventKey, Key: code, Pressed: pressed}
}

// ModifiersChanged returns a modifier-state event.
func ModifiersChanged(m Modifiers) Event {
	return Event{Type: EventModifiers, Mods: m}
}

// Apply feeds key and modifier events into the latch. Other events are
// ignored and reported as not handled.
func (l *Latch) Apply(e Event) bool {
	switch e.Type {
	case EventKey:
		l.Set(e.Key, e.Pressed)
		return true
	case EventModifiers:
		l.SetModifiers(e.Mods)
		return true
	}
	return false
}
