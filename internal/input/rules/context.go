package rules

import (
	"github.com/dshills/blocktree/internal/engine/block"
	"github.com/dshills/blocktree/internal/input/key"
)

// TreeReader is the read-only view of the document tree that rules may
// consult. *block.Tree satisfies it; rules never receive write access.
type TreeReader interface {
	Contains(id block.ID) bool
	HasChildren(id block.ID) bool
	Depth(id block.ID) int
	RootID() block.ID
}

// Context carries everything a rule may inspect for one key press. It is
// assembled by the dispatcher from the host surface's report and the current
// tree; rules treat it as immutable.
type Context struct {
	// Key is the key press being resolved.
	Key key.Event

	// Block is the id of the block holding the cursor.
	Block block.ID

	// Type is the block's type.
	Type block.Type

	// Offset is the cursor byte offset within the block's content.
	Offset int

	// Cursor position classification, as reported by the host surface.
	IsEmpty bool
	AtStart bool
	AtEnd   bool

	// HasChildren is true when the block already has indented descendants
	// (a closed subtree boundary).
	HasChildren bool

	// CanHaveChildren is true when the block's type supports nesting.
	CanHaveChildren bool

	// Depth is the block's distance from the root; 1 is root level.
	Depth int

	// InHiddenRange is true when the cursor sits inside a collapsed
	// region; HiddenAnchor is then the subtree anchor to skip past.
	InHiddenRange bool
	HiddenAnchor  block.ID

	// Selection lists selected block ids in document order for
	// multi-block operations. Empty or single-element for a plain caret.
	Selection []block.ID

	// Tree is a read-only view of the document.
	Tree TreeReader
}

// AtRootLevel reports whether the block sits directly under the root.
func (c *Context) AtRootLevel() bool {
	return c.Depth <= 1
}
