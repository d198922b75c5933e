package block

import (
	"fmt"

	"github.com/rivo/uniseg"
)

// DeleteResult records everything needed to invert a delete exactly.
type DeleteResult struct {
	// Node is the detached node. Its Children slice still holds the
	// pre-promotion child list.
	Node *Node

	// Parent and Index locate where the node was removed from.
	Parent ID
	Index  int

	// Promoted lists the direct children reparented to Parent, in their
	// original order.
	Promoted []ID

	// Normalized is the id of the paragraph created to keep the root
	// non-empty, or None when no normalization was needed.
	Normalized ID
}

// Delete removes a block and promotes its direct children into the former
// parent at the exact index the block occupied, preserving their order.
// Grandchildren keep their existing parents. Fails with ErrNotFound for an
// unknown id and ErrRootImmutable for the root; on failure the tree is
// untouched.
func (t *Tree) Delete(id ID) (*DeleteResult, error) {
	return t.deleteReusing(id, None)
}

// Redelete re-applies an undone delete, reusing the recorded normalization
// paragraph id so block identity stays stable across redo. Undo-replay only.
func (t *Tree) Redelete(res *DeleteResult) error {
	if res == nil || res.Node == nil {
		return fmt.Errorf("redelete: %w: empty result", ErrInvariantViolation)
	}
	if !res.Normalized.IsNone() && t.Contains(res.Normalized) {
		return fmt.Errorf("redelete %s: %w", res.Normalized, ErrDuplicateID)
	}
	_, err := t.deleteReusing(res.Node.ID, res.Normalized)
	return err
}

func (t *Tree) deleteReusing(id, normID ID) (*DeleteResult, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	if id == t.rootID {
		return nil, fmt.Errorf("delete %s: %w", id, ErrRootImmutable)
	}

	parent := t.nodes[n.ParentID]
	idx := parent.ChildIndex(id)
	if idx < 0 {
		return nil, fmt.Errorf("delete %s: %w: not listed by parent", id, ErrInvariantViolation)
	}

	promoted := make([]ID, len(n.Children))
	copy(promoted, n.Children)

	// Splice the children into the parent at the node's index.
	spliced := make([]ID, 0, len(parent.Children)-1+len(promoted))
	spliced = append(spliced, parent.Children[:idx]...)
	spliced = append(spliced, promoted...)
	spliced = append(spliced, parent.Children[idx+1:]...)
	parent.Children = spliced

	for _, c := range promoted {
		t.nodes[c].ParentID = parent.ID
	}
	delete(t.nodes, id)

	res := &DeleteResult{
		Node:     n,
		Parent:   parent.ID,
		Index:    idx,
		Promoted: promoted,
	}

	// The document body must never become empty.
	root := t.nodes[t.rootID]
	if len(root.Children) == 0 {
		if normID.IsNone() {
			normID = t.newID()
		}
		para := &Node{ID: normID, Type: TypeParagraph, ParentID: root.ID}
		t.nodes[para.ID] = para
		root.Children = []ID{para.ID}
		res.Normalized = para.ID
	}

	return res, nil
}

// RestoreDeleted reinserts a previously deleted node, reclaiming its promoted
// children and removing any normalization paragraph. Undo-replay only; this
// is the one code path that inserts a node with a caller-supplied id.
func (t *Tree) RestoreDeleted(res *DeleteResult) error {
	if res == nil || res.Node == nil {
		return fmt.Errorf("restore: %w: empty result", ErrInvariantViolation)
	}
	if t.Contains(res.Node.ID) {
		return fmt.Errorf("restore %s: %w", res.Node.ID, ErrDuplicateID)
	}
	parent, ok := t.nodes[res.Parent]
	if !ok {
		return fmt.Errorf("restore %s: parent %s: %w", res.Node.ID, res.Parent, ErrNotFound)
	}

	if !res.Normalized.IsNone() {
		norm, ok := t.nodes[res.Normalized]
		if ok && !norm.HasChildren() {
			parent.Children = removeID(parent.Children, res.Normalized)
			delete(t.nodes, res.Normalized)
		}
	}

	// Reclaim the promoted children and put the node back at its index.
	promoted := make(map[ID]bool, len(res.Promoted))
	for _, c := range res.Promoted {
		promoted[c] = true
	}
	kept := parent.Children[:0]
	for _, c := range parent.Children {
		if !promoted[c] {
			kept = append(kept, c)
		}
	}
	parent.Children = kept

	n := res.Node
	n.ParentID = parent.ID
	n.Children = make([]ID, len(res.Promoted))
	copy(n.Children, res.Promoted)
	t.nodes[n.ID] = n

	idx := res.Index
	if idx > len(parent.Children) {
		idx = len(parent.Children)
	}
	parent.Children = insertID(parent.Children, idx, n.ID)

	for _, c := range res.Promoted {
		if child, ok := t.nodes[c]; ok {
			child.ParentID = n.ID
		}
	}
	return nil
}

// MoveResult records a reparenting for inversion.
type MoveResult struct {
	Block     ID
	OldParent ID
	OldIndex  int
	NewParent ID
	NewIndex  int
}

// Move reparents a block to index under newParent. Fails without mutating on
// an unknown id, the root, a missing target parent, or a move that would
// create a cycle.
func (t *Tree) Move(id, newParent ID, index int) (*MoveResult, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("move %s: %w", id, ErrNotFound)
	}
	if id == t.rootID {
		return nil, fmt.Errorf("move %s: %w", id, ErrRootImmutable)
	}
	target, ok := t.nodes[newParent]
	if !ok {
		return nil, fmt.Errorf("move %s: target %s: %w", id, newParent, ErrNotFound)
	}
	if newParent == id || t.IsAncestor(id, newParent) {
		return nil, fmt.Errorf("move %s under %s: %w: cycle", id, newParent, ErrInvariantViolation)
	}

	oldParent := t.nodes[n.ParentID]
	oldIdx := oldParent.ChildIndex(id)
	oldParent.Children = removeID(oldParent.Children, id)

	if oldParent.ID == target.ID && index > oldIdx {
		index--
	}
	if index < 0 || index > len(target.Children) {
		index = len(target.Children)
	}
	target.Children = insertID(target.Children, index, id)
	n.ParentID = target.ID

	return &MoveResult{
		Block:     id,
		OldParent: oldParent.ID,
		OldIndex:  oldIdx,
		NewParent: target.ID,
		NewIndex:  index,
	}, nil
}

// Indent reparents a block under its previous sibling, appended after the
// sibling's existing children. Returns ErrNoOp when there is no previous
// sibling or the types forbid the nesting.
func (t *Tree) Indent(id ID) (*MoveResult, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("indent %s: %w", id, ErrNotFound)
	}
	if id == t.rootID {
		return nil, fmt.Errorf("indent %s: %w", id, ErrRootImmutable)
	}
	if !n.Type.CanIndent() {
		return nil, ErrNoOp
	}
	prev := t.PrevSibling(id)
	if prev == nil || !prev.Type.CanContain(n.Type) {
		return nil, ErrNoOp
	}
	return t.Move(id, prev.ID, len(prev.Children))
}

// OutdentResult records an outdent for inversion. Exactly one of Moved and
// Converted is set.
type OutdentResult struct {
	Moved     *MoveResult
	Converted *ConvertResult
}

// Outdent moves a nested block out to its grandparent, directly after its
// former parent. A block already at root level degrades to its lower form
// instead; a root-level block with no lower form returns ErrNoOp.
func (t *Tree) Outdent(id ID) (*OutdentResult, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("outdent %s: %w", id, ErrNotFound)
	}
	if id == t.rootID {
		return nil, fmt.Errorf("outdent %s: %w", id, ErrRootImmutable)
	}

	parent := t.nodes[n.ParentID]
	if parent.ID == t.rootID {
		lower, ok := n.Type.LowerForm()
		if !ok {
			return nil, ErrNoOp
		}
		conv, err := t.ConvertType(id, lower)
		if err != nil {
			return nil, err
		}
		return &OutdentResult{Converted: conv}, nil
	}

	grand := t.nodes[parent.ParentID]
	idx := grand.ChildIndex(parent.ID)
	moved, err := t.Move(id, grand.ID, idx+1)
	if err != nil {
		return nil, err
	}
	return &OutdentResult{Moved: moved}, nil
}

// ConvertResult records a type conversion. Type conversion replaces the node
// wholesale: identity is tied to semantic kind, so the converted block gets a
// fresh id and the old id leaves the tree.
type ConvertResult struct {
	OldID   ID
	NewID   ID
	OldType Type
	NewType Type
}

// ConvertType replaces a block with a copy of a different type under a fresh
// id. Children, content, parent, and sibling position are preserved.
func (t *Tree) ConvertType(id ID, to Type) (*ConvertResult, error) {
	return t.convertTo(id, to, t.newID())
}

// RevertConvert undoes a conversion, restoring the original type under the
// original id. Undo-replay only.
func (t *Tree) RevertConvert(res *ConvertResult) error {
	if res == nil {
		return fmt.Errorf("revert convert: %w: empty result", ErrInvariantViolation)
	}
	_, err := t.convertTo(res.NewID, res.OldType, res.OldID)
	return err
}

// ReapplyConvert re-applies an undone conversion under its recorded
// replacement id. Undo-replay only.
func (t *Tree) ReapplyConvert(res *ConvertResult) error {
	if res == nil {
		return fmt.Errorf("reapply convert: %w: empty result", ErrInvariantViolation)
	}
	_, err := t.convertTo(res.OldID, res.NewType, res.NewID)
	return err
}

func (t *Tree) convertTo(id ID, to Type, newID ID) (*ConvertResult, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("convert %s: %w", id, ErrNotFound)
	}
	if id == t.rootID {
		return nil, fmt.Errorf("convert %s: %w", id, ErrRootImmutable)
	}
	if !to.Valid() || to == TypeDoc {
		return nil, fmt.Errorf("convert %s to %q: %w", id, to, ErrInvalidType)
	}
	if to == n.Type {
		return nil, ErrNoOp
	}
	if t.Contains(newID) {
		return nil, fmt.Errorf("convert %s: %w", id, ErrDuplicateID)
	}

	repl := &Node{
		ID:       newID,
		Type:     to,
		ParentID: n.ParentID,
		Content:  n.Content,
		Children: make([]ID, len(n.Children)),
	}
	copy(repl.Children, n.Children)

	parent := t.nodes[n.ParentID]
	idx := parent.ChildIndex(id)
	parent.Children[idx] = repl.ID

	for _, c := range repl.Children {
		t.nodes[c].ParentID = repl.ID
	}
	delete(t.nodes, id)
	t.nodes[repl.ID] = repl

	return &ConvertResult{OldID: id, NewID: repl.ID, OldType: n.Type, NewType: to}, nil
}

// SplitResult records a split for inversion.
type SplitResult struct {
	Block      ID
	NewID      ID
	Offset     int
	OldContent string
	NewType    Type
}

// Split divides a block's content at offset: the original keeps the head,
// and a new sibling with a fresh id is inserted directly after it holding
// the tail. The sibling keeps the original's type unless downgrade rules
// apply (headings split into paragraphs). The offset is clamped to the
// nearest grapheme-cluster boundary at or before it, so a split never lands
// inside a multi-byte cluster.
func (t *Tree) Split(id ID, offset int) (*SplitResult, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("split %s: %w", id, ErrNotFound)
	}
	if id == t.rootID {
		return nil, fmt.Errorf("split %s: %w", id, ErrRootImmutable)
	}

	offset = clampToGrapheme(n.Content, offset)
	old := n.Content

	parent := t.nodes[n.ParentID]
	idx := parent.ChildIndex(id)

	sibling := &Node{
		ID:       t.newID(),
		Type:     n.Type.SplitType(),
		ParentID: parent.ID,
		Content:  old[offset:],
	}
	n.Content = old[:offset]
	t.nodes[sibling.ID] = sibling
	parent.Children = insertID(parent.Children, idx+1, sibling.ID)

	return &SplitResult{
		Block:      id,
		NewID:      sibling.ID,
		Offset:     offset,
		OldContent: old,
		NewType:    sibling.Type,
	}, nil
}

// Unsplit undoes a split: the tail block is removed and the original content
// restored. Undo-replay only; the tail must still be childless.
func (t *Tree) Unsplit(res *SplitResult) error {
	if res == nil {
		return fmt.Errorf("unsplit: %w: empty result", ErrInvariantViolation)
	}
	n, ok := t.nodes[res.Block]
	if !ok {
		return fmt.Errorf("unsplit %s: %w", res.Block, ErrNotFound)
	}
	if err := t.RemoveLeaf(res.NewID); err != nil {
		return err
	}
	n.Content = res.OldContent
	return nil
}

// Resplit re-applies an undone split, reusing the recorded tail id so block
// identity stays stable across redo. Undo-replay only.
func (t *Tree) Resplit(res *SplitResult) error {
	if res == nil {
		return fmt.Errorf("resplit: %w: empty result", ErrInvariantViolation)
	}
	n, ok := t.nodes[res.Block]
	if !ok {
		return fmt.Errorf("resplit %s: %w", res.Block, ErrNotFound)
	}
	if t.Contains(res.NewID) {
		return fmt.Errorf("resplit %s: %w", res.NewID, ErrDuplicateID)
	}

	parent := t.nodes[n.ParentID]
	idx := parent.ChildIndex(res.Block)

	sibling := &Node{
		ID:       res.NewID,
		Type:     res.NewType,
		ParentID: parent.ID,
		Content:  res.OldContent[res.Offset:],
	}
	n.Content = res.OldContent[:res.Offset]
	t.nodes[sibling.ID] = sibling
	parent.Children = insertID(parent.Children, idx+1, sibling.ID)
	return nil
}

// Spec describes a block to create.
type Spec struct {
	Type    Type
	Parent  ID
	Index   int // -1 appends
	Content string
}

// Create inserts a new node with a freshly generated id at the given
// position. Ids are never reused from outside; undo-replay paths use the
// Restore* primitives instead.
func (t *Tree) Create(spec Spec) (*Node, error) {
	if !spec.Type.Valid() || spec.Type == TypeDoc {
		return nil, fmt.Errorf("create %q: %w", spec.Type, ErrInvalidType)
	}
	parent, ok := t.nodes[spec.Parent]
	if !ok {
		return nil, fmt.Errorf("create under %s: %w", spec.Parent, ErrNotFound)
	}
	if !parent.Type.CanContain(spec.Type) {
		return nil, fmt.Errorf("create %q under %q: %w: type cannot nest there",
			spec.Type, parent.Type, ErrInvariantViolation)
	}

	n := &Node{
		ID:       t.newID(),
		Type:     spec.Type,
		ParentID: parent.ID,
		Content:  spec.Content,
	}
	idx := spec.Index
	if idx < 0 || idx > len(parent.Children) {
		idx = len(parent.Children)
	}
	t.nodes[n.ID] = n
	parent.Children = insertID(parent.Children, idx, n.ID)
	return n, nil
}

// RestoreLeaf reinserts a childless block under a previously issued id.
// Undo-replay only (re-applying an undone Create).
func (t *Tree) RestoreLeaf(spec Spec, id ID) error {
	if t.Contains(id) {
		return fmt.Errorf("restore %s: %w", id, ErrDuplicateID)
	}
	parent, ok := t.nodes[spec.Parent]
	if !ok {
		return fmt.Errorf("restore %s: parent %s: %w", id, spec.Parent, ErrNotFound)
	}
	if !parent.Type.CanContain(spec.Type) {
		return fmt.Errorf("restore %q under %q: %w: type cannot nest there",
			spec.Type, parent.Type, ErrInvariantViolation)
	}

	n := &Node{
		ID:       id,
		Type:     spec.Type,
		ParentID: parent.ID,
		Content:  spec.Content,
	}
	idx := spec.Index
	if idx < 0 || idx > len(parent.Children) {
		idx = len(parent.Children)
	}
	t.nodes[n.ID] = n
	parent.Children = insertID(parent.Children, idx, n.ID)
	return nil
}

// RemoveLeaf removes a childless block without promotion. Undo-replay only
// (inverting Create and Split); refuses to empty the document body or remove
// a block that has since acquired children.
func (t *Tree) RemoveLeaf(id ID) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	if id == t.rootID {
		return fmt.Errorf("remove %s: %w", id, ErrRootImmutable)
	}
	if n.HasChildren() {
		return fmt.Errorf("remove %s: %w: block has children", id, ErrInvariantViolation)
	}
	parent := t.nodes[n.ParentID]
	if parent.ID == t.rootID && len(parent.Children) == 1 {
		return fmt.Errorf("remove %s: %w: would empty document body", id, ErrInvariantViolation)
	}
	parent.Children = removeID(parent.Children, id)
	delete(t.nodes, id)
	return nil
}

// SetContent replaces a block's content and returns the previous value.
// ErrNoOp when the content is unchanged.
func (t *Tree) SetContent(id ID, content string) (string, error) {
	n, ok := t.nodes[id]
	if !ok {
		return "", fmt.Errorf("set content %s: %w", id, ErrNotFound)
	}
	if id == t.rootID {
		return "", fmt.Errorf("set content %s: %w", id, ErrRootImmutable)
	}
	if n.Content == content {
		return n.Content, ErrNoOp
	}
	old := n.Content
	n.Content = content
	return old, nil
}

// clampToGrapheme snaps a byte offset to the nearest grapheme-cluster
// boundary at or before it.
func clampToGrapheme(s string, offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset >= len(s) {
		return len(s)
	}
	boundary := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		_, end := gr.Positions()
		if end > offset {
			break
		}
		boundary = end
	}
	return boundary
}

func insertID(ids []ID, idx int, id ID) []ID {
	ids = append(ids, None)
	copy(ids[idx+1:], ids[idx:])
	ids[idx] = id
	return ids
}

func removeID(ids []ID, id ID) []ID {
	for i, c := range ids {
		if c == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
