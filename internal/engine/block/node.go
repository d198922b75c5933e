package block

// Type identifies the semantic kind of a block.
type Type string

// Block types.
const (
	// TypeDoc is the document root. Exactly one per tree, never deleted.
	TypeDoc Type = "doc"

	// TypeParagraph is plain body text, the lowest form a block degrades to.
	TypeParagraph Type = "paragraph"

	// Heading levels. Headings downgrade to paragraphs when split by Enter.
	TypeHeading1 Type = "heading1"
	TypeHeading2 Type = "heading2"
	TypeHeading3 Type = "heading3"

	// TypeBulletItem is an unordered list item.
	TypeBulletItem Type = "bullet_item"

	// TypeNumberItem is an ordered list item.
	TypeNumberItem Type = "number_item"

	// TypeToggle is a collapsible container block.
	TypeToggle Type = "toggle"

	// TypeQuote is a block quotation.
	TypeQuote Type = "quote"

	// TypeCode is a fenced code block.
	TypeCode Type = "code"
)

// Valid reports whether t is a known block type.
func (t Type) Valid() bool {
	switch t {
	case TypeDoc, TypeParagraph, TypeHeading1, TypeHeading2, TypeHeading3,
		TypeBulletItem, TypeNumberItem, TypeToggle, TypeQuote, TypeCode:
		return true
	}
	return false
}

// IsHeading reports whether t is a heading level.
func (t Type) IsHeading() bool {
	return t == TypeHeading1 || t == TypeHeading2 || t == TypeHeading3
}

// CanHaveChildren reports whether pressing Enter inside a non-empty block of
// this type should open a child rather than a sibling. Only container types
// nest by default.
func (t Type) CanHaveChildren() bool {
	return t == TypeDoc || t == TypeToggle
}

// CanContain reports whether a block of this type accepts child as a nested
// block. Indent targets are checked with this before reparenting.
func (t Type) CanContain(child Type) bool {
	switch t {
	case TypeDoc, TypeToggle:
		return child != TypeDoc
	case TypeBulletItem, TypeNumberItem, TypeParagraph, TypeQuote:
		// Body blocks nest body blocks, not headings or further docs.
		return !child.IsHeading() && child != TypeDoc
	default:
		// Headings and code blocks are leaves.
		return false
	}
}

// CanIndent reports whether a block of this type may be reparented under a
// sibling at all.
func (t Type) CanIndent() bool {
	switch t {
	case TypeDoc, TypeHeading1, TypeHeading2, TypeHeading3:
		return false
	}
	return true
}

// LowerForm returns the type a root-level block degrades to when outdented,
// and false when the type has no lower form (outdent is then a no-op).
func (t Type) LowerForm() (Type, bool) {
	switch t {
	case TypeBulletItem, TypeNumberItem, TypeToggle, TypeQuote, TypeCode:
		return TypeParagraph, true
	case TypeHeading2:
		return TypeHeading1, true
	case TypeHeading3:
		return TypeHeading2, true
	}
	return t, false
}

// SplitType returns the type for the trailing half of an Enter-driven split.
// Headings produce paragraphs; every other type splits into itself.
func (t Type) SplitType() Type {
	if t.IsHeading() {
		return TypeParagraph
	}
	return t
}

// Node is a single block in the tree.
//
// ParentID is None only for the root. Children holds the authoritative
// sibling order; there is no separate positional index. Content is an opaque
// text payload owned by the host surface; the engine only carries it across
// structural operations.
type Node struct {
	ID       ID
	Type     Type
	ParentID ID
	Children []ID
	Content  string
}

// HasChildren reports whether the node has any children.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// ChildIndex returns the position of child in the node's children, or -1.
func (n *Node) ChildIndex(child ID) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	clone := &Node{
		ID:       n.ID,
		Type:     n.Type,
		ParentID: n.ParentID,
		Content:  n.Content,
	}
	if n.Children != nil {
		clone.Children = make([]ID, len(n.Children))
		copy(clone.Children, n.Children)
	}
	return clone
}
