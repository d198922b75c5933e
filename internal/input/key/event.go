package key

import (
	"strings"
	"time"
	"unicode"
)

// Event represents a single key press event as reported by the host surface.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewEvent creates a key event with the current timestamp.
func NewEvent(key Key, r rune, mods Modifier) Event {
	return Event{Key: key, Rune: r, Modifiers: mods, Timestamp: time.Now()}
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return NewEvent(KeyRune, r, mods)
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return NewEvent(key, 0, mods)
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune)
}

// IsEnter returns true if this is the Enter key with no modifiers.
func (e Event) IsEnter() bool {
	return e.Key == KeyEnter && e.Modifiers == ModNone
}

// IsBackspace returns true if this is Backspace with no modifiers.
func (e Event) IsBackspace() bool {
	return e.Key == KeyBackspace && e.Modifiers == ModNone
}

// IsTab returns true if this is Tab with no modifiers.
func (e Event) IsTab() bool {
	return e.Key == KeyTab && e.Modifiers == ModNone
}

// IsShiftTab returns true if this is Shift+Tab.
func (e Event) IsShiftTab() bool {
	return e.Key == KeyTab && e.Modifiers == ModShift
}

// Equals returns true if two events represent the same key press.
// Timestamps are not compared.
func (e Event) Equals(other Event) bool {
	return e.Key == other.Key &&
		e.Rune == other.Rune &&
		e.Modifiers == other.Modifiers
}

// Chord returns the canonical dispatch name for the event, the identity used
// to select a ruleset: the modifier prefix plus the key name, e.g. "Enter",
// "Shift+Tab", "Ctrl+z".
func (e Event) Chord() string {
	var parts []string
	if e.Modifiers.HasCtrl() {
		parts = append(parts, "Ctrl")
	}
	if e.Modifiers.HasAlt() {
		parts = append(parts, "Alt")
	}
	if e.Modifiers.HasMeta() {
		parts = append(parts, "Meta")
	}
	// Shift is part of the character for rune events.
	if e.Modifiers.HasShift() && !e.IsRune() {
		parts = append(parts, "Shift")
	}

	switch {
	case e.Key == KeyRune && e.Rune == ' ':
		parts = append(parts, "Space")
	case e.Key == KeyRune:
		parts = append(parts, string(e.Rune))
	default:
		parts = append(parts, e.Key.String())
	}
	return strings.Join(parts, "+")
}

// String returns the canonical representation of the event.
func (e Event) String() string {
	return e.Chord()
}
