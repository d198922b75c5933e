package rules

import (
	"github.com/dshills/blocktree/internal/engine/block"
	"github.com/dshills/blocktree/internal/intent"
)

// Chord names for the structural keys.
const (
	ChordEnter     = "Enter"
	ChordTab       = "Tab"
	ChordShiftTab  = "Shift+Tab"
	ChordBackspace = "Backspace"
)

// Default rule priorities. Plugins register below PriorityDefault so the
// built-in structural behavior stays authoritative unless a script
// explicitly outbids it.
const (
	PriorityHidden  = 100
	PriorityDefault = 0
	PriorityPlugin  = -10
)

// DefaultSet returns the built-in structural rules for Enter, Backspace,
// Tab, and Shift+Tab.
func DefaultSet() *Set {
	s := NewSet()

	// Enter inside a collapsed region skips past the hidden range: one
	// transaction creating a sibling after the subtree anchor, never
	// descending into hidden children.
	mustRegister(s, ChordEnter, Rule{
		ID:       "enter.hidden-range",
		Priority: PriorityHidden,
		When: func(ctx *Context) bool {
			return ctx.InHiddenRange && !ctx.HiddenAnchor.IsNone()
		},
		Execute: func(ctx *Context) Result {
			return Intents(intent.SiblingBelow(ctx.HiddenAnchor))
		},
	})

	mustRegister(s, ChordEnter, Rule{
		ID:       "enter.structural",
		Priority: PriorityDefault,
		Execute: func(ctx *Context) Result {
			kind := StructuralEnter(EnterState{
				IsEmpty:         ctx.IsEmpty,
				AtStart:         ctx.AtStart,
				AtEnd:           ctx.AtEnd,
				CanHaveChildren: ctx.CanHaveChildren,
				HasChildren:     ctx.HasChildren,
			})
			switch kind {
			case intent.KindSplitBlock:
				return Intents(intent.Split(ctx.Block, ctx.Offset))
			case intent.KindCreateChild:
				return Intents(intent.Child(ctx.Block))
			case intent.KindCreateSiblingAbove:
				return Intents(intent.SiblingAbove(ctx.Block))
			default:
				return Intents(intent.SiblingBelow(ctx.Block))
			}
		},
	})

	mustRegister(s, ChordBackspace, Rule{
		ID:       "backspace.structural",
		Priority: PriorityDefault,
		When: func(ctx *Context) bool {
			return ctx.AtStart
		},
		Execute: func(ctx *Context) Result {
			kind, handled := StructuralBackspace(BackspaceState{
				IsEmpty:     ctx.IsEmpty,
				AtStart:     ctx.AtStart,
				AtRootLevel: ctx.AtRootLevel(),
			})
			if !handled {
				return NotHandled()
			}
			switch kind {
			case intent.KindDeleteBlock:
				return Intents(intent.Delete(ctx.Block))
			case intent.KindOutdentBlock:
				return Intents(intent.Outdent(ctx.Block))
			default:
				return Intents(intent.Noop())
			}
		},
	})

	mustRegister(s, ChordTab, Rule{
		ID:       "tab.indent",
		Priority: PriorityDefault,
		Execute: func(ctx *Context) Result {
			ints := make([]intent.Intent, 0, len(ctx.Selection)+1)
			for _, id := range selectionOrBlock(ctx) {
				it := intent.Indent(id)
				if id == ctx.Block {
					it.Offset = ctx.Offset
				}
				ints = append(ints, it)
			}
			return Intents(ints...)
		},
	})

	mustRegister(s, ChordShiftTab, Rule{
		ID:       "tab.outdent",
		Priority: PriorityDefault,
		Execute: func(ctx *Context) Result {
			ints := make([]intent.Intent, 0, len(ctx.Selection)+1)
			for _, id := range selectionOrBlock(ctx) {
				it := intent.Outdent(id)
				if id == ctx.Block {
					it.Offset = ctx.Offset
				}
				ints = append(ints, it)
			}
			return Intents(ints...)
		},
	})

	return s
}

// selectionOrBlock returns the multi-block selection, or the cursor block
// when there is no selection.
func selectionOrBlock(ctx *Context) []block.ID {
	if len(ctx.Selection) > 0 {
		return ctx.Selection
	}
	return []block.ID{ctx.Block}
}

// mustRegister panics on registration failure; only used for the built-in
// rules whose ids are known unique.
func mustRegister(s *Set, chord string, r Rule) {
	if err := s.Register(chord, r); err != nil {
		panic(err)
	}
}
