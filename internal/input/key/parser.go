package key

import (
	"errors"
	"fmt"
	"strings"
)

// Parse errors.
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into an Event.
//
// Supported formats:
//   - Single character: "a", "A", "@"
//   - Special keys: "Enter", "Tab", "Backspace", "Space"
//   - With modifiers: "Ctrl+Z", "Shift+Tab", "Ctrl+Shift+Z"
//   - Vim-style: "<C-z>", "<S-Tab>", "<CR>", "<BS>"
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	if strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		return parseVimStyle(spec[1 : len(spec)-1])
	}
	if strings.Contains(spec, "+") && len(spec) > 1 {
		return parseModifierStyle(spec)
	}
	return parseKeyWithModifiers(spec, ModNone)
}

// parseVimStyle parses "C-z", "S-Tab", "CR" style notation.
func parseVimStyle(inner string) (Event, error) {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return Event{}, ErrInvalidSpec
	}

	parts := strings.Split(inner, "-")
	keyPart := parts[len(parts)-1]

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		mod := ModifierFromName(strings.ToLower(strings.TrimSpace(p)))
		if mod == ModNone {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(mod)
	}
	return parseKeyWithModifiers(keyPart, mods)
}

// parseModifierStyle parses "Ctrl+Shift+Z" style notation.
func parseModifierStyle(spec string) (Event, error) {
	parts := strings.Split(spec, "+")
	if len(parts) < 2 {
		return Event{}, ErrInvalidSpec
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		mod := ModifierFromName(strings.ToLower(strings.TrimSpace(p)))
		if mod == ModNone {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(mod)
	}
	return parseKeyWithModifiers(strings.TrimSpace(parts[len(parts)-1]), mods)
}

// parseKeyWithModifiers resolves the key part of a spec.
func parseKeyWithModifiers(keyPart string, mods Modifier) (Event, error) {
	if keyPart == "" {
		return Event{}, ErrInvalidSpec
	}

	if k := KeyFromName(keyPart); k != KeyNone {
		return NewSpecialEvent(k, mods), nil
	}

	runes := []rune(keyPart)
	if len(runes) != 1 {
		return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
	}
	return NewRuneEvent(runes[0], mods), nil
}
