package block

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

// editableTypes are the types a user-visible block may carry.
var editableTypes = []Type{
	TypeParagraph, TypeHeading1, TypeHeading2, TypeHeading3,
	TypeBulletItem, TypeNumberItem, TypeToggle, TypeQuote, TypeCode,
}

// opOK filters errors that a random operation sequence is allowed to hit.
func opOK(t *rapid.T, op string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrNoOp) || errors.Is(err, ErrInvariantViolation) ||
		errors.Is(err, ErrRootImmutable) {
		return
	}
	t.Fatalf("%s: unexpected error %v", op, err)
}

// TestRandomMutationsKeepTreeValid drives the tree with arbitrary edit
// sequences and checks the structural invariants after every step.
func TestRandomMutationsKeepTreeValid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tree := NewTree(WithIDGenerator(seqIDs()))

		pick := func() ID {
			order := tree.DocumentOrder()
			return order[rapid.IntRange(0, len(order)-1).Draw(rt, "target")]
		}

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 7).Draw(rt, "op") {
			case 0:
				parent := tree.RootID()
				if rapid.Bool().Draw(rt, "nest") {
					parent = pick()
				}
				typ := rapid.SampledFrom(editableTypes).Draw(rt, "type")
				_, err := tree.Create(Spec{
					Type:    typ,
					Parent:  parent,
					Index:   -1,
					Content: rapid.StringN(0, 8, 24).Draw(rt, "content"),
				})
				opOK(rt, "Create", err)
			case 1:
				_, err := tree.Delete(pick())
				opOK(rt, "Delete", err)
			case 2:
				_, err := tree.Indent(pick())
				opOK(rt, "Indent", err)
			case 3:
				_, err := tree.Outdent(pick())
				opOK(rt, "Outdent", err)
			case 4:
				id := pick()
				n, _ := tree.Get(id)
				off := rapid.IntRange(0, len(n.Content)).Draw(rt, "offset")
				_, err := tree.Split(id, off)
				opOK(rt, "Split", err)
			case 5:
				to := rapid.SampledFrom(editableTypes).Draw(rt, "to")
				_, err := tree.ConvertType(pick(), to)
				opOK(rt, "ConvertType", err)
			case 6:
				_, err := tree.SetContent(pick(), rapid.StringN(0, 8, 24).Draw(rt, "text"))
				opOK(rt, "SetContent", err)
			case 7:
				id := pick()
				parent := pick()
				idx := rapid.IntRange(0, 3).Draw(rt, "index")
				_, err := tree.Move(id, parent, idx)
				opOK(rt, "Move", err)
			}

			if err := tree.Validate(); err != nil {
				rt.Fatalf("tree invalid after step %d: %v", i, err)
			}
			if len(tree.Root().Children) == 0 {
				rt.Fatal("root left empty")
			}
		}
	})
}

// TestDeleteRestoreIsInverse checks that any delete can be undone exactly.
func TestDeleteRestoreIsInverse(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tree := NewTree(WithIDGenerator(seqIDs()))
		n := rapid.IntRange(2, 12).Draw(rt, "blocks")
		for i := 0; i < n; i++ {
			parent := tree.RootID()
			if rapid.Bool().Draw(rt, "nest") {
				order := tree.DocumentOrder()
				parent = order[rapid.IntRange(0, len(order)-1).Draw(rt, "parent")]
			}
			typ := rapid.SampledFrom(editableTypes).Draw(rt, "type")
			if _, err := tree.Create(Spec{Type: typ, Parent: parent, Index: -1}); err != nil {
				continue
			}
		}

		order := tree.DocumentOrder()
		target := order[rapid.IntRange(0, len(order)-1).Draw(rt, "target")]
		before := tree.Clone()

		res, err := tree.Delete(target)
		if err != nil {
			return
		}
		if err := tree.RestoreDeleted(res); err != nil {
			rt.Fatalf("RestoreDeleted() error = %v", err)
		}
		if !tree.Equal(before) {
			rt.Fatal("delete then restore changed the tree")
		}
	})
}
