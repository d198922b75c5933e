package block

import (
	"fmt"
	"sort"
)

// Tree is the canonical in-memory document: a map of id to node plus a
// designated root. The tree is exclusively owned by the engine; all writes go
// through the mutation primitives in mutate.go.
type Tree struct {
	rootID ID
	nodes  map[ID]*Node
	newID  IDGenerator
}

// TreeOption configures a Tree.
type TreeOption func(*Tree)

// WithIDGenerator sets the id generator used for created nodes.
func WithIDGenerator(gen IDGenerator) TreeOption {
	return func(t *Tree) {
		if gen != nil {
			t.newID = gen
		}
	}
}

// NewTree creates a document tree containing the root and a single empty
// paragraph, satisfying the root non-emptiness invariant from the start.
func NewTree(opts ...TreeOption) *Tree {
	t := &Tree{
		nodes: make(map[ID]*Node),
		newID: UUIDGenerator(),
	}
	for _, opt := range opts {
		opt(t)
	}

	root := &Node{ID: t.newID(), Type: TypeDoc}
	t.rootID = root.ID
	t.nodes[root.ID] = root

	para := &Node{ID: t.newID(), Type: TypeParagraph, ParentID: root.ID}
	t.nodes[para.ID] = para
	root.Children = []ID{para.ID}

	return t
}

// FromNodes builds a tree from deserialized nodes. The nodes are cloned, so
// the caller's slice stays independent, and the result is validated against
// the structural invariants before it is returned.
func FromNodes(rootID ID, nodes []*Node, opts ...TreeOption) (*Tree, error) {
	t := &Tree{
		rootID: rootID,
		nodes:  make(map[ID]*Node, len(nodes)),
		newID:  UUIDGenerator(),
	}
	for _, opt := range opts {
		opt(t)
	}

	for _, n := range nodes {
		if _, exists := t.nodes[n.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
		}
		t.nodes[n.ID] = n.Clone()
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// RootID returns the id of the root node.
func (t *Tree) RootID() ID {
	return t.rootID
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.nodes[t.rootID]
}

// Len returns the number of nodes, including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Get returns the node for id, or false if absent.
func (t *Tree) Get(id ID) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Contains reports whether id exists in the tree.
func (t *Tree) Contains(id ID) bool {
	_, ok := t.nodes[id]
	return ok
}

// HasChildren reports whether the block has any children. Returns false for
// an unknown id.
func (t *Tree) HasChildren(id ID) bool {
	n, ok := t.nodes[id]
	return ok && n.HasChildren()
}

// Parent returns the parent node of id, or nil for the root or an unknown id.
func (t *Tree) Parent(id ID) *Node {
	n, ok := t.nodes[id]
	if !ok || n.ParentID.IsNone() {
		return nil
	}
	return t.nodes[n.ParentID]
}

// PrevSibling returns the sibling immediately before id, or nil.
func (t *Tree) PrevSibling(id ID) *Node {
	parent := t.Parent(id)
	if parent == nil {
		return nil
	}
	idx := parent.ChildIndex(id)
	if idx <= 0 {
		return nil
	}
	return t.nodes[parent.Children[idx-1]]
}

// NextSibling returns the sibling immediately after id, or nil.
func (t *Tree) NextSibling(id ID) *Node {
	parent := t.Parent(id)
	if parent == nil {
		return nil
	}
	idx := parent.ChildIndex(id)
	if idx < 0 || idx+1 >= len(parent.Children) {
		return nil
	}
	return t.nodes[parent.Children[idx+1]]
}

// Depth returns the number of ancestors between id and the root. The root is
// at depth 0, its children at depth 1. Returns -1 for an unknown id.
func (t *Tree) Depth(id ID) int {
	n, ok := t.nodes[id]
	if !ok {
		return -1
	}
	depth := 0
	for !n.ParentID.IsNone() {
		n = t.nodes[n.ParentID]
		depth++
	}
	return depth
}

// IsAncestor reports whether a is a strict ancestor of id.
func (t *Tree) IsAncestor(a, id ID) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	for !n.ParentID.IsNone() {
		if n.ParentID == a {
			return true
		}
		n = t.nodes[n.ParentID]
	}
	return false
}

// Walk visits every node in document order (depth-first, children in sibling
// order), starting at the root. Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(*Node) bool) {
	t.walkFrom(t.rootID, fn)
}

func (t *Tree) walkFrom(id ID, fn func(*Node) bool) bool {
	n, ok := t.nodes[id]
	if !ok {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !t.walkFrom(c, fn) {
			return false
		}
	}
	return true
}

// DocumentOrder returns the ids of every node except the root in document
// order.
func (t *Tree) DocumentOrder() []ID {
	order := make([]ID, 0, len(t.nodes)-1)
	t.Walk(func(n *Node) bool {
		if n.ID != t.rootID {
			order = append(order, n.ID)
		}
		return true
	})
	return order
}

// SortDocumentOrder sorts ids in place into document order. Unknown ids sort
// last, preserving their relative order.
func (t *Tree) SortDocumentOrder(ids []ID) {
	pos := make(map[ID]int, len(t.nodes))
	for i, id := range t.DocumentOrder() {
		pos[id] = i
	}
	sort.SliceStable(ids, func(i, j int) bool {
		pi, iok := pos[ids[i]]
		pj, jok := pos[ids[j]]
		if iok != jok {
			return iok
		}
		return pi < pj
	})
}

// Validate checks the structural invariants and returns the first violation
// found. A valid tree has consistent parent/child links, no cycles, and a
// non-empty root.
func (t *Tree) Validate() error {
	root, ok := t.nodes[t.rootID]
	if !ok {
		return fmt.Errorf("%w: root %s missing", ErrInvariantViolation, t.rootID)
	}
	if root.Type != TypeDoc || !root.ParentID.IsNone() {
		return fmt.Errorf("%w: root %s malformed", ErrInvariantViolation, t.rootID)
	}
	if len(root.Children) == 0 {
		return fmt.Errorf("%w: root has no blocks", ErrInvariantViolation)
	}

	seen := make(map[ID]bool, len(t.nodes))
	for id, n := range t.nodes {
		if n.ID != id {
			return fmt.Errorf("%w: node keyed as %s has id %s", ErrInvariantViolation, id, n.ID)
		}
		if id == t.rootID {
			continue
		}
		parent, ok := t.nodes[n.ParentID]
		if !ok {
			return fmt.Errorf("%w: node %s has missing parent %s", ErrInvariantViolation, id, n.ParentID)
		}
		if parent.ChildIndex(id) < 0 {
			return fmt.Errorf("%w: node %s not listed by parent %s", ErrInvariantViolation, id, n.ParentID)
		}

		// Cycle check: the parent chain must reach the root.
		for k := range seen {
			delete(seen, k)
		}
		cur := n
		for !cur.ParentID.IsNone() {
			if seen[cur.ID] {
				return fmt.Errorf("%w: cycle through %s", ErrInvariantViolation, cur.ID)
			}
			seen[cur.ID] = true
			next, ok := t.nodes[cur.ParentID]
			if !ok {
				return fmt.Errorf("%w: broken parent chain at %s", ErrInvariantViolation, cur.ID)
			}
			cur = next
		}
	}

	// Child links must point at live nodes with matching parent ids.
	for id, n := range t.nodes {
		for _, c := range n.Children {
			child, ok := t.nodes[c]
			if !ok {
				return fmt.Errorf("%w: node %s lists missing child %s", ErrInvariantViolation, id, c)
			}
			if child.ParentID != id {
				return fmt.Errorf("%w: child %s of %s claims parent %s", ErrInvariantViolation, c, id, child.ParentID)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the tree sharing no state with the original.
// The clone keeps the same id generator.
func (t *Tree) Clone() *Tree {
	clone := &Tree{
		rootID: t.rootID,
		nodes:  make(map[ID]*Node, len(t.nodes)),
		newID:  t.newID,
	}
	for id, n := range t.nodes {
		clone.nodes[id] = n.Clone()
	}
	return clone
}

// Equal reports structural equality: same root, same node set, and identical
// type, parent, children order, and content per node.
func (t *Tree) Equal(other *Tree) bool {
	if other == nil || t.rootID != other.rootID || len(t.nodes) != len(other.nodes) {
		return false
	}
	for id, n := range t.nodes {
		o, ok := other.nodes[id]
		if !ok || n.Type != o.Type || n.ParentID != o.ParentID || n.Content != o.Content {
			return false
		}
		if len(n.Children) != len(o.Children) {
			return false
		}
		for i, c := range n.Children {
			if o.Children[i] != c {
				return false
			}
		}
	}
	return true
}
