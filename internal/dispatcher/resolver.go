package dispatcher

import (
	"errors"
	"fmt"

	"github.com/dshills/blocktree/internal/engine"
	"github.com/dshills/blocktree/internal/engine/block"
	"github.com/dshills/blocktree/internal/engine/history"
	"github.com/dshills/blocktree/internal/host"
	"github.com/dshills/blocktree/internal/intent"
)

// Resolver maps intents onto mutation commands and computes the cursor
// target for the transaction.
type Resolver struct {
	eng *engine.Engine
}

// NewResolver creates a resolver bound to an engine.
func NewResolver(eng *engine.Engine) *Resolver {
	return &Resolver{eng: eng}
}

// Resolution is the outcome of resolving a batch of intents.
type Resolution struct {
	// Cursor is the single deterministic cursor target for the
	// transaction; Place is false when the cursor stays put (noop, or
	// nothing mutated).
	Cursor host.CursorTarget
	Place  bool

	// Mutated is true when at least one command committed.
	Mutated bool
}

// Resolve applies a batch of intents as one undo unit. Creation and
// reparenting intents run first in document order, then deletions in
// reverse document order so earlier removals cannot invalidate later
// targets. The cursor target is computed from the first intent of the
// original batch; a failing command aborts the remainder and leaves the
// already-committed prefix grouped on the undo stack.
func (r *Resolver) Resolve(intents []intent.Intent) (Resolution, error) {
	return r.ResolveAt(intents, block.None)
}

// ResolveAt is Resolve with the caret block identified. The cursor target
// then comes from the intent targeting the caret block, so a multi-block
// selection keeps the cursor in the block that held it; batches without a
// caret intent fall back to the first intent.
func (r *Resolver) ResolveAt(intents []intent.Intent, caret block.ID) (Resolution, error) {
	var res Resolution
	if len(intents) == 0 {
		return res, nil
	}

	tree := r.eng.Tree()
	if tree == nil {
		return res, engine.ErrNotReady
	}

	ordered := orderForApplication(tree, intents)

	grouped := len(ordered) > 1
	if grouped {
		r.eng.BeginGroup("structural edit")
		defer r.eng.EndGroup()
	}

	primary := &intents[0]
	if !caret.IsNone() {
		for i := range intents {
			if intents[i].Block == caret {
				primary = &intents[i]
				break
			}
		}
	}
	for _, it := range ordered {
		cmd, err := r.command(it)
		if err != nil {
			return res, err
		}
		if cmd == nil { // noop intent: consume without mutating
			continue
		}

		err = r.eng.Dispatch(cmd)
		if errors.Is(err, block.ErrNoOp) {
			continue
		}
		if err != nil {
			return res, err
		}
		res.Mutated = true

		if it == *primary && !res.Place {
			if target, ok := cursorAfter(it, cmd, r.eng.Tree()); ok {
				res.Cursor = target
				res.Place = true
			}
		}
	}
	return res, nil
}

// command builds the mutation command for an intent.
func (r *Resolver) command(it intent.Intent) (history.Command, error) {
	switch it.Kind {
	case intent.KindNoop:
		return nil, nil
	case intent.KindDeleteBlock:
		return history.NewDeleteBlockCommand(it.Block), nil
	case intent.KindIndentBlock:
		return history.NewIndentCommand(it.Block), nil
	case intent.KindOutdentBlock:
		return history.NewOutdentCommand(it.Block), nil
	case intent.KindSplitBlock:
		return history.NewSplitBlockCommand(it.Block, it.Offset), nil
	case intent.KindCreateSiblingAbove, intent.KindCreateSiblingBelow:
		return r.createSibling(it)
	case intent.KindCreateChild:
		return r.createChild(it)
	}
	return nil, fmt.Errorf("resolve: unknown intent kind %q", it.Kind)
}

// createSibling builds the create command for a sibling above or below the
// target block.
func (r *Resolver) createSibling(it intent.Intent) (history.Command, error) {
	tree := r.eng.Tree()
	n, ok := tree.Get(it.Block)
	if !ok {
		return nil, fmt.Errorf("create sibling of %s: %w", it.Block, block.ErrNotFound)
	}
	parent := tree.Parent(it.Block)
	if parent == nil {
		return nil, fmt.Errorf("create sibling of %s: %w", it.Block, block.ErrRootImmutable)
	}

	idx := parent.ChildIndex(n.ID)
	if it.Kind == intent.KindCreateSiblingBelow {
		idx++
	}
	return history.NewCreateBlockCommand(block.Spec{
		Type:   createType(it),
		Parent: parent.ID,
		Index:  idx,
	}), nil
}

// createChild builds the create command for a first child of the target.
func (r *Resolver) createChild(it intent.Intent) (history.Command, error) {
	tree := r.eng.Tree()
	if !tree.Contains(it.Block) {
		return nil, fmt.Errorf("create child of %s: %w", it.Block, block.ErrNotFound)
	}
	return history.NewCreateBlockCommand(block.Spec{
		Type:   createType(it),
		Parent: it.Block,
		Index:  0,
	}), nil
}

func createType(it intent.Intent) block.Type {
	if it.Type != "" {
		return it.Type
	}
	return block.TypeParagraph
}

// orderForApplication sequences a batch: non-delete intents in document
// order, then delete intents in reverse document order.
func orderForApplication(tree *block.Tree, intents []intent.Intent) []intent.Intent {
	var others, deletes []intent.Intent
	for _, it := range intents {
		if it.Kind.IsDelete() {
			deletes = append(deletes, it)
		} else {
			others = append(others, it)
		}
	}
	if len(others) > 1 {
		sortIntents(tree, others, false)
	}
	if len(deletes) > 1 {
		sortIntents(tree, deletes, true)
	}
	return append(others, deletes...)
}

// sortIntents sorts intents by their target's document position.
func sortIntents(tree *block.Tree, intents []intent.Intent, reverse bool) {
	ids := make([]block.ID, len(intents))
	for i, it := range intents {
		ids[i] = it.Block
	}
	tree.SortDocumentOrder(ids)

	byID := make(map[block.ID][]intent.Intent, len(intents))
	for _, it := range intents {
		byID[it.Block] = append(byID[it.Block], it)
	}
	out := intents[:0]
	if reverse {
		for i := len(ids) - 1; i >= 0; i-- {
			out = appendNext(out, byID, ids[i])
		}
	} else {
		for _, id := range ids {
			out = appendNext(out, byID, id)
		}
	}
}

func appendNext(out []intent.Intent, byID map[block.ID][]intent.Intent, id block.ID) []intent.Intent {
	list := byID[id]
	if len(list) == 0 {
		return out
	}
	byID[id] = list[1:]
	return append(out, list[0])
}
