// Package intent defines the high-level structural operation requests that
// the rule engine emits and the resolver consumes. An intent names what
// should happen to the tree, independent of the key press that produced it.
package intent

import "github.com/dshills/blocktree/internal/engine/block"

// Kind identifies a structural operation.
type Kind string

// Supported intent kinds.
const (
	// KindDeleteBlock removes a block, promoting its children.
	KindDeleteBlock Kind = "delete-block"

	// KindIndentBlock nests a block under its previous sibling.
	KindIndentBlock Kind = "indent-block"

	// KindOutdentBlock lifts a block out of its parent, or degrades a
	// root-level block to its lower form.
	KindOutdentBlock Kind = "outdent-block"

	// KindCreateSiblingAbove inserts an empty sibling before the block.
	KindCreateSiblingAbove Kind = "create-sibling-above"

	// KindCreateSiblingBelow inserts an empty sibling after the block.
	KindCreateSiblingBelow Kind = "create-sibling-below"

	// KindCreateChild inserts an empty first child under the block.
	KindCreateChild Kind = "create-child"

	// KindSplitBlock divides a block's content at the cursor offset.
	KindSplitBlock Kind = "split-block"

	// KindNoop consumes the key press without mutating anything. A
	// deliberate outcome, not a failure.
	KindNoop Kind = "noop"
)

// Valid reports whether k is a known intent kind.
func (k Kind) Valid() bool {
	switch k {
	case KindDeleteBlock, KindIndentBlock, KindOutdentBlock,
		KindCreateSiblingAbove, KindCreateSiblingBelow, KindCreateChild,
		KindSplitBlock, KindNoop:
		return true
	}
	return false
}

// IsDelete reports whether the kind removes nodes. Deletions resolve in
// reverse document order so earlier removals cannot invalidate later ones.
func (k Kind) IsDelete() bool {
	return k == KindDeleteBlock
}

// Mutates reports whether the kind changes the tree at all.
func (k Kind) Mutates() bool {
	return k != KindNoop
}

// Intent is one structural operation request against a specific block.
type Intent struct {
	// Kind selects the operation.
	Kind Kind

	// Block is the target block id. Unused for KindNoop.
	Block block.ID

	// Offset is the cursor byte offset within the block's content. Split
	// intents divide there; indent and outdent intents carry it so the
	// caret can be restored to the same position afterward.
	Offset int

	// Type overrides the created block's type for create intents. Zero
	// means paragraph.
	Type block.Type
}

// Noop returns the consume-and-do-nothing intent.
func Noop() Intent {
	return Intent{Kind: KindNoop}
}

// Delete returns a delete-block intent.
func Delete(id block.ID) Intent {
	return Intent{Kind: KindDeleteBlock, Block: id}
}

// Indent returns an indent-block intent.
func Indent(id block.ID) Intent {
	return Intent{Kind: KindIndentBlock, Block: id}
}

// Outdent returns an outdent-block intent.
func Outdent(id block.ID) Intent {
	return Intent{Kind: KindOutdentBlock, Block: id}
}

// SiblingAbove returns a create-sibling-above intent.
func SiblingAbove(id block.ID) Intent {
	return Intent{Kind: KindCreateSiblingAbove, Block: id}
}

// SiblingBelow returns a create-sibling-below intent.
func SiblingBelow(id block.ID) Intent {
	return Intent{Kind: KindCreateSiblingBelow, Block: id}
}

// Child returns a create-child intent.
func Child(id block.ID) Intent {
	return Intent{Kind: KindCreateChild, Block: id}
}

// Split returns a split-block intent at the given content offset.
func Split(id block.ID, offset int) Intent {
	return Intent{Kind: KindSplitBlock, Block: id, Offset: offset}
}
