package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/blocktree/internal/input/key"
)

// FromTcell converts a terminal key event into the engine's key model. ok
// is false for keys the editor does not model.
func FromTcell(ev *tcell.EventKey) (key.Event, bool) {
	mods := convertMods(ev.Modifiers())

	switch ev.Key() {
	case tcell.KeyEnter:
		return key.NewSpecialEvent(key.KeyEnter, mods), true
	case tcell.KeyTab:
		return key.NewSpecialEvent(key.KeyTab, mods), true
	case tcell.KeyBacktab:
		// Terminals report Shift+Tab as a distinct key.
		return key.NewSpecialEvent(key.KeyTab, mods.With(key.ModShift)), true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return key.NewSpecialEvent(key.KeyBackspace, mods), true
	case tcell.KeyDelete:
		return key.NewSpecialEvent(key.KeyDelete, mods), true
	case tcell.KeyEscape:
		return key.NewSpecialEvent(key.KeyEscape, mods), true
	case tcell.KeyHome:
		return key.NewSpecialEvent(key.KeyHome, mods), true
	case tcell.KeyEnd:
		return key.NewSpecialEvent(key.KeyEnd, mods), true
	case tcell.KeyUp:
		return key.NewSpecialEvent(key.KeyUp, mods), true
	case tcell.KeyDown:
		return key.NewSpecialEvent(key.KeyDown, mods), true
	case tcell.KeyLeft:
		return key.NewSpecialEvent(key.KeyLeft, mods), true
	case tcell.KeyRight:
		return key.NewSpecialEvent(key.KeyRight, mods), true
	case tcell.KeyRune:
		return key.NewRuneEvent(ev.Rune(), mods), true
	}

	// Ctrl+letter arrives as a dedicated key code.
	if ev.Key() >= tcell.KeyCtrlA && ev.Key() <= tcell.KeyCtrlZ {
		r := rune('a' + (ev.Key() - tcell.KeyCtrlA))
		if mods.HasShift() {
			r = r - 'a' + 'A'
		}
		return key.NewRuneEvent(r, mods.With(key.ModCtrl).Without(key.ModShift)), true
	}

	return key.Event{}, false
}

func convertMods(m tcell.ModMask) key.Modifier {
	var mods key.Modifier
	if m&tcell.ModShift != 0 {
		mods = mods.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(key.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(key.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(key.ModMeta)
	}
	return mods
}
