package input

// KeyCode is the ordinal of a recognised key. It doubles as the index into
// the latch's fixed key table.
type KeyCode uint8

// Recognised keys.
const (
	Key1 KeyCode = iota
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	Key0

	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	KeyEscape

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyF13
	KeyF14
	KeyF15
	KeyF16
	KeyF17
	KeyF18
	KeyF19
	KeyF20
	KeyF21
	KeyF22
	KeyF23
	KeyF24

	KeyPrintScreen
	KeyScrollLock
	KeyPause

	KeyInsert
	KeyHome
	KeyDelete
	KeyEnd
	KeyPageDown
	KeyPageUp

	KeyLeft
	KeyUp
	KeyRight
	KeyDown

	KeyBackspace
	KeyReturn
	KeySpace

	KeyCompose
	KeyCaret

	KeyNumLock
	KeyNumpad0
	KeyNumpad1
	KeyNumpad2
	KeyNumpad3
	KeyNumpad4
	KeyNumpad5
	KeyNumpad6
	KeyNumpad7
	KeyNumpad8
	KeyNumpad9
	KeyNumpadAdd
	KeyNumpadDivide
	KeyNumpadDecimal
	KeyNumpadComma
	KeyNumpadEnter
	KeyNumpadEquals
	KeyNumpadMultiply
	KeyNumpadSubtract

	KeyAbntC1
	KeyAbntC2
	KeyApostrophe
	KeyApps
	KeyAsterisk
	KeyAt
	KeyAx
	KeyBackslash
	KeyCalculator
	KeyCapsLock
	KeyColon
	KeyComma
	KeyConvert
	KeyEquals
	KeyGrave
	KeyKana
	KeyKanji
	KeyLAlt
	KeyLBracket
	KeyLControl
	KeyLShift
	KeyLSuper
	KeyMail
	KeyMediaSelect
	KeyMediaStop
	KeyMinus
	KeyMute
	KeyMyComputer
	KeyNavigateForward
	KeyNavigateBackward
	KeyNextTrack
	KeyNoConvert
	KeyOEM102
	KeyPeriod
	KeyPlayPause
	KeyPlus
	KeyPower
	KeyPrevTrack
	KeyRAlt
	KeyRBracket
	KeyRControl
	KeyRShift
	KeyRSuper
	KeySemicolon
	KeySlash
	KeySleep
	KeyStop
	KeySysRq
	KeyTab
	KeyUnderline
	KeyUnlabeled
	KeyVolumeDown
	KeyVolumeUp
	KeyWake
	KeyWebBack
	KeyWebFavorites
	KeyWebForward
	KeyWebHome
	KeyWebRefresh
	KeyWebSearch
	KeyWebStop
	KeyYen
	KeyCopy
	KeyPaste
	KeyCut

	// NumKeys is the size of the key table.
	NumKeys int = iota
)

// Valid reports whether k indexes the key table.
func (k KeyCode) Valid() bool {
	return int(k) < NumKeys
}
