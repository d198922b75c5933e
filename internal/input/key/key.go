// Package key models keyboard input for the structural editor: keys,
// modifiers, events, and a parser for key specification strings used by
// configuration and plugins.
package key

import "strings"

// Key identifies a keyboard key. Character keys use KeyRune with the
// character carried in Event.Rune.
type Key uint16

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	// Special keys the structural engine cares about.
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyHome
	KeyEnd

	// Arrow keys.
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	// KeySpace is the space bar.
	KeySpace

	// KeyRune is used for character keys; the character is stored in
	// Event.Rune.
	KeyRune
)

// String returns a human-readable name for the key.
func (k Key) String() string {
	switch k {
	case KeyNone:
		return "None"
	case KeyEscape:
		return "Escape"
	case KeyEnter:
		return "Enter"
	case KeyTab:
		return "Tab"
	case KeyBackspace:
		return "Backspace"
	case KeyDelete:
		return "Delete"
	case KeyHome:
		return "Home"
	case KeyEnd:
		return "End"
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	case KeySpace:
		return "Space"
	case KeyRune:
		return "Rune"
	}
	return "Unknown"
}

// IsSpecial returns true for non-character keys.
func (k Key) IsSpecial() bool {
	return k != KeyNone && k != KeyRune
}

// KeyFromName returns the key for a lowercase name, or KeyNone.
func KeyFromName(name string) Key {
	switch strings.ToLower(name) {
	case "escape", "esc":
		return KeyEscape
	case "enter", "return", "cr":
		return KeyEnter
	case "tab":
		return KeyTab
	case "backspace", "bs":
		return KeyBackspace
	case "delete", "del":
		return KeyDelete
	case "home":
		return KeyHome
	case "end":
		return KeyEnd
	case "up":
		return KeyUp
	case "down":
		return KeyDown
	case "left":
		return KeyLeft
	case "right":
		return KeyRight
	case "space":
		return KeySpace
	}
	return KeyNone
}
