package dispatcher

import (
	"github.com/dshills/blocktree/internal/engine/block"
	"github.com/dshills/blocktree/internal/engine/history"
	"github.com/dshills/blocktree/internal/host"
	"github.com/dshills/blocktree/internal/intent"
)

// cursorAfter computes the deterministic cursor target for an executed
// command. The tree argument is the post-mutation tree. ok is false when the
// intent leaves the cursor untouched.
func cursorAfter(it intent.Intent, cmd history.Command, tree *block.Tree) (host.CursorTarget, bool) {
	switch it.Kind {
	case intent.KindDeleteBlock:
		del, _ := cmd.(*history.DeleteBlockCommand)
		if del == nil || del.Result() == nil {
			return host.CursorTarget{}, false
		}
		return deleteCursor(del.Result(), tree), true

	case intent.KindSplitBlock:
		split, _ := cmd.(*history.SplitBlockCommand)
		if split == nil || split.Result() == nil {
			return host.CursorTarget{}, false
		}
		return host.CursorTarget{Block: split.Result().NewID, Placement: host.PlacementStart}, true

	case intent.KindCreateSiblingAbove, intent.KindCreateSiblingBelow, intent.KindCreateChild:
		created, _ := cmd.(*history.CreateBlockCommand)
		if created == nil || created.Created().IsNone() {
			return host.CursorTarget{}, false
		}
		return host.CursorTarget{Block: created.Created(), Placement: host.PlacementStart}, true

	case intent.KindIndentBlock:
		// Identity preserved: caret stays at its pre-operation offset.
		return host.CursorTarget{Block: it.Block, Placement: host.PlacementOffset, Offset: it.Offset}, true

	case intent.KindOutdentBlock:
		out, _ := cmd.(*history.OutdentCommand)
		target := it.Block
		if out != nil && out.Result() != nil && out.Result().Converted != nil {
			// Root-level outdent degraded the type, replacing the id.
			target = out.Result().Converted.NewID
		}
		return host.CursorTarget{Block: target, Placement: host.PlacementOffset, Offset: it.Offset}, true
	}
	return host.CursorTarget{}, false
}

// deleteCursor implements the delete placement rule: start of the first
// promoted child, else end of the preceding sibling, else start of the
// following sibling, else the parent.
func deleteCursor(res *block.DeleteResult, tree *block.Tree) host.CursorTarget {
	if len(res.Promoted) > 0 {
		return host.CursorTarget{Block: res.Promoted[0], Placement: host.PlacementStart}
	}

	parent, ok := tree.Get(res.Parent)
	if !ok {
		return host.CursorTarget{Block: tree.RootID(), Placement: host.PlacementSafe}
	}
	if res.Index > 0 && res.Index-1 < len(parent.Children) {
		return host.CursorTarget{Block: parent.Children[res.Index-1], Placement: host.PlacementEnd}
	}
	if res.Index < len(parent.Children) {
		return host.CursorTarget{Block: parent.Children[res.Index], Placement: host.PlacementStart}
	}
	return host.CursorTarget{Block: parent.ID, Placement: host.PlacementSafe}
}
