package input

import (
	"context"
	"time"

	"github.com/veandco/go-sdl2/sdl"
)

// SDLSource reads SDL2 events. SDL must already be initialised and calls
// must come from the thread that created the window.
type SDLSource struct {
	events []Event
	mods   Modifiers
}

// NewSDLSource creates an SDL event source.
func NewSDLSource() *SDLSource {
	return &SDLSource{
		events: make([]Event, 0, 16),
	}
}

// Wait blocks until an event arrives or deadline passes, then drains every
// pending event. A zero or past deadline polls without blocking.
// The returned slice is reused by the next call.
func (s *SDLSource) Wait(ctx context.Context, deadline time.Time) ([]Event, error) {
	s.events = s.events[:0]
	if err := ctx.Err(); err != nil {
		return s.events, err
	}

	var event sdl.Event
	if wait := time.Until(deadline); !deadline.IsZero() && wait > 0 {
		// Round up so we never wake before the deadline.
		ms := int((wait + time.Millisecond - 1) / time.Millisecond)
		event = sdl.WaitEventTimeout(ms)
	} else {
		event = sdl.PollEvent()
	}

	for ; event != nil; event = sdl.PollEvent() {
		s.translate(event)
	}
	return s.events, nil
}

func (s *SDLSource) translate(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		s.events = append(s.events, Close())

	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_SIZE_CHANGED:
			s.events = append(s.events, Resize(int(e.Data1), int(e.Data2)))
		case sdl.WINDOWEVENT_EXPOSED:
			s.events = append(s.events, Redraw())
		case sdl.WINDOWEVENT_CLOSE:
			s.events = append(s.events, Close())
		}

	case *sdl.KeyboardEvent:
		// SDL carries modifiers on key events; surface a change as its own event.
		if mods := translateMods(uint32(e.Keysym.Mod)); mods != s.mods {
			s.mods = mods
			s.events = append(s.events, ModifiersChanged(mods))
		}
		if e.Repeat != 0 {
			return
		}
		code, ok := TranslateScancode(e.Keysym.Scancode)
		if !ok {
			return
		}
		s.events = append(s.events, Key(code, e.Type == sdl.KEYDOWN))
	}
}

func translateMods(mod uint32) Modifiers {
	var m Modifiers
	if mod&uint32(sdl.KMOD_SHIFT) != 0 {
		m |= ModShift
	}
	if mod&uint32(sdl.KMOD_CTRL) != 0 {
		m |= ModCtrl
	}
	if mod&uint32(sdl.KMOD_ALT) != 0 {
		m |= ModAlt
	}
	if mod&uint32(sdl.KMOD_GUI) != 0 {
		m |= ModSuper
	}
	return m
}

// TranslateScancode maps an SDL scancode onto a KeyCode.
func TranslateScancode(sc sdl.Scancode) (KeyCode, bool) {
	switch {
	case sc >= sdl.SCANCODE_A && sc <= sdl.SCANCODE_Z:
		return KeyA + KeyCode(sc-sdl.SCANCODE_A), true
	case sc >= sdl.SCANCODE_1 && sc <= sdl.SCANCODE_9:
		return Key1 + KeyCode(sc-sdl.SCANCODE_1), true
	case sc >= sdl.SCANCODE_F1 && sc <= sdl.SCANCODE_F12:
		return KeyF1 + KeyCode(sc-sdl.SCANCODE_F1), true
	case sc >= sdl.SCANCODE_F13 && sc <= sdl.SCANCODE_F24:
		return KeyF13 + KeyCode(sc-sdl.SCANCODE_F13), true
	case sc >= sdl.SCANCODE_KP_1 && sc <= sdl.SCANCODE_KP_9:
		return KeyNumpad1 + KeyCode(sc-sdl.SCANCODE_KP_1), true
	}
	code, ok := scancodes[sc]
	return code, ok
}

var scancodes = map[sdl.Scancode]KeyCode{
	sdl.SCANCODE_0:              Key0,
	sdl.SCANCODE_ESCAPE:         KeyEscape,
	sdl.SCANCODE_PRINTSCREEN:    KeyPrintScreen,
	sdl.SCANCODE_SCROLLLOCK:     KeyScrollLock,
	sdl.SCANCODE_PAUSE:          KeyPause,
	sdl.SCANCODE_INSERT:         KeyInsert,
	sdl.SCANCODE_HOME:           KeyHome,
	sdl.SCANCODE_DELETE:         KeyDelete,
	sdl.SCANCODE_END:            KeyEnd,
	sdl.SCANCODE_PAGEDOWN:       KeyPageDown,
	sdl.SCANCODE_PAGEUP:         KeyPageUp,
	sdl.SCANCODE_LEFT:           KeyLeft,
	sdl.SCANCODE_UP:             KeyUp,
	sdl.SCANCODE_RIGHT:          KeyRight,
	sdl.SCANCODE_DOWN:           KeyDown,
	sdl.SCANCODE_BACKSPACE:      KeyBackspace,
	sdl.SCANCODE_RETURN:         KeyReturn,
	sdl.SCANCODE_SPACE:          KeySpace,
	sdl.SCANCODE_NUMLOCKCLEAR:   KeyNumLock,
	sdl.SCANCODE_KP_0:           KeyNumpad0,
	sdl.SCANCODE_KP_PLUS:        KeyNumpadAdd,
	sdl.SCANCODE_KP_DIVIDE:      KeyNumpadDivide,
	sdl.SCANCODE_KP_PERIOD:      KeyNumpadDecimal,
	sdl.SCANCODE_KP_COMMA:       KeyNumpadComma,
	sdl.SCANCODE_KP_ENTER:       KeyNumpadEnter,
	sdl.SCANCODE_KP_EQUALS:      KeyNumpadEquals,
	sdl.SCANCODE_KP_MULTIPLY:    KeyNumpadMultiply,
	sdl.SCANCODE_KP_MINUS:       KeyNumpadSubtract,
	sdl.SCANCODE_APOSTROPHE:     KeyApostrophe,
	sdl.SCANCODE_APPLICATION:    KeyApps,
	sdl.SCANCODE_BACKSLASH:      KeyBackslash,
	sdl.SCANCODE_CALCULATOR:     KeyCalculator,
	sdl.SCANCODE_CAPSLOCK:       KeyCapsLock,
	sdl.SCANCODE_COMMA:          KeyComma,
	sdl.SCANCODE_EQUALS:         KeyEquals,
	sdl.SCANCODE_GRAVE:          KeyGrave,
	sdl.SCANCODE_LALT:           KeyLAlt,
	sdl.SCANCODE_LEFTBRACKET:    KeyLBracket,
	sdl.SCANCODE_LCTRL:          KeyLControl,
	sdl.SCANCODE_LSHIFT:         KeyLShift,
	sdl.SCANCODE_LGUI:           KeyLSuper,
	sdl.SCANCODE_MAIL:           KeyMail,
	sdl.SCANCODE_MEDIASELECT:    KeyMediaSelect,
	sdl.SCANCODE_AUDIOSTOP:      KeyMediaStop,
	sdl.SCANCODE_MINUS:          KeyMinus,
	sdl.SCANCODE_MUTE:           KeyMute,
	sdl.SCANCODE_COMPUTER:       KeyMyComputer,
	sdl.SCANCODE_AC_FORWARD:     KeyNavigateForward,
	sdl.SCANCODE_AC_BACK:        KeyNavigateBackward,
	sdl.SCANCODE_AUDIONEXT:      KeyNextTrack,
	sdl.SCANCODE_NONUSBACKSLASH: KeyOEM102,
	sdl.SCANCODE_PERIOD:         KeyPeriod,
	sdl.SCANCODE_AUDIOPLAY:      KeyPlayPause,
	sdl.SCANCODE_POWER:          KeyPower,
	sdl.SCANCODE_AUDIOPREV:      KeyPrevTrack,
	sdl.SCANCODE_RALT:           KeyRAlt,
	sdl.SCANCODE_RIGHTBRACKET:   KeyRBracket,
	sdl.SCANCODE_RCTRL:          KeyRControl,
	sdl.SCANCODE_RSHIFT:         KeyRShift,
	sdl.SCANCODE_RGUI:           KeyRSuper,
	sdl.SCANCODE_SEMICOLON:      KeySemicolon,
	sdl.SCANCODE_SLASH:          KeySlash,
	sdl.SCANCODE_SLEEP:          KeySleep,
	sdl.SCANCODE_STOP:           KeyStop,
	sdl.SCANCODE_SYSREQ:         KeySysRq,
	sdl.SCANCODE_TAB:            KeyTab,
	sdl.SCANCODE_VOLUMEDOWN:     KeyVolumeDown,
	sdl.SCANCODE_VOLUMEUP:       KeyVolumeUp,
	sdl.SCANCODE_AC_BOOKMARKS:   KeyWebFavorites,
	sdl.SCANCODE_AC_HOME:        KeyWebHome,
	sdl.SCANCODE_AC_REFRESH:     KeyWebRefresh,
	sdl.SCANCODE_AC_SEARCH:      KeyWebSearch,
	sdl.SCANCODE_AC_STOP:        KeyWebStop,
	sdl.SCANCODE_COPY:           KeyCopy,
	sdl.SCANCODE_PASTE:          KeyPaste,
	sdl.SCANCODE_CUT:            KeyCut,
}
