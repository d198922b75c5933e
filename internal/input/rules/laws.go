package rules

import "github.com/dshills/blocktree/internal/intent"

// EnterState classifies the cursor context for a structural Enter press.
type EnterState struct {
	// IsEmpty is true when the block has no content.
	IsEmpty bool

	// AtStart and AtEnd report the cursor position within the content.
	AtStart bool
	AtEnd   bool

	// CanHaveChildren is true when the block's type supports nesting.
	CanHaveChildren bool

	// HasChildren is true when the block already has indented descendants.
	// Such a block is a closed subtree boundary: Enter at its end creates
	// a sibling at the same indent instead of corrupting the established
	// subtree anchor with a new first child.
	HasChildren bool
}

// StructuralEnter is the Enter decision table. It is total: every state
// yields exactly one intent kind. The order is significant:
//
//  1. an empty block always exits with a sibling below, even for
//     container types (explicit exit signal)
//  2. a non-empty container without descendants opens a child
//  3. cursor at start inserts a sibling above
//  4. cursor at end inserts a sibling below
//  5. otherwise the block splits at the cursor
func StructuralEnter(s EnterState) intent.Kind {
	switch {
	case s.IsEmpty:
		return intent.KindCreateSiblingBelow
	case s.CanHaveChildren && !s.HasChildren:
		return intent.KindCreateChild
	case s.AtStart:
		return intent.KindCreateSiblingAbove
	case s.AtEnd:
		return intent.KindCreateSiblingBelow
	default:
		return intent.KindSplitBlock
	}
}

// BackspaceState classifies the cursor context for a structural Backspace.
type BackspaceState struct {
	// IsEmpty is true when the block has no content.
	IsEmpty bool

	// AtStart is true when the cursor is at offset zero.
	AtStart bool

	// AtRootLevel is true when the block sits directly under the root.
	AtRootLevel bool
}

// StructuralBackspace is the Backspace decision table. The second return is
// false when the press is not structural and the host surface's own text
// deletion should run instead:
//
//  1. cursor not at start: plain character deletion, host's job
//  2. empty block: delete it, promoting any children
//  3. non-empty nested block at start: outdent one level
//  4. non-empty root-level block at start: text merge, host's job
func StructuralBackspace(s BackspaceState) (intent.Kind, bool) {
	switch {
	case !s.AtStart:
		return intent.KindNoop, false
	case s.IsEmpty:
		return intent.KindDeleteBlock, true
	case !s.AtRootLevel:
		return intent.KindOutdentBlock, true
	default:
		return intent.KindNoop, false
	}
}
