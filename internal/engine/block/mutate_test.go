package block

import (
	"errors"
	"testing"
)

// outline builds the tree used by the promotion scenarios:
//
//	root
//	├── x  "before"
//	├── a  "anchor"      (toggle)
//	│   ├── c1
//	│   ├── c2
//	│   │   └── g  "grandchild"
//	│   └── c3
//	└── y  "after"
func outline(t *testing.T) (tree *Tree, x, a, c1, c2, c3, g, y ID) {
	t.Helper()
	tree = NewTree(WithIDGenerator(seqIDs()))
	x = tree.Root().Children[0]
	if _, err := tree.SetContent(x, "before"); err != nil {
		t.Fatal(err)
	}
	a = mustCreate(t, tree, Spec{Type: TypeToggle, Parent: tree.RootID(), Index: 1, Content: "anchor"})
	c1 = mustCreate(t, tree, Spec{Type: TypeParagraph, Parent: a, Index: 0})
	c2 = mustCreate(t, tree, Spec{Type: TypeParagraph, Parent: a, Index: 1})
	c3 = mustCreate(t, tree, Spec{Type: TypeParagraph, Parent: a, Index: 2})
	g = mustCreate(t, tree, Spec{Type: TypeParagraph, Parent: c2, Index: 0, Content: "grandchild"})
	y = mustCreate(t, tree, Spec{Type: TypeParagraph, Parent: tree.RootID(), Index: -1, Content: "after"})
	return
}

func TestDeletePromotesChildrenAtIndex(t *testing.T) {
	tree, x, a, c1, c2, c3, g, y := outline(t)

	res, err := tree.Delete(a)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	want := []ID{x, c1, c2, c3, y}
	got := tree.Root().Children
	if len(got) != len(want) {
		t.Fatalf("root children = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("root children = %v, want %v", got, want)
		}
	}

	// Promotion is one level only: the grandchild stays put.
	gn, ok := tree.Get(g)
	if !ok || gn.ParentID != c2 {
		t.Errorf("grandchild parent = %v, want %s", gn, c2)
	}

	if res.Index != 1 || res.Parent != tree.RootID() {
		t.Errorf("result location = (%s, %d), want (root, 1)", res.Parent, res.Index)
	}
	if len(res.Promoted) != 3 {
		t.Errorf("Promoted = %v, want 3 ids", res.Promoted)
	}
	if tree.Contains(a) {
		t.Error("deleted id still present")
	}
	if err := tree.Validate(); err != nil {
		t.Errorf("tree invalid after delete: %v", err)
	}
}

func TestDeleteRestoreRoundTrip(t *testing.T) {
	tree, _, a, _, _, _, _, _ := outline(t)
	before := tree.Clone()

	res, err := tree.Delete(a)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := tree.RestoreDeleted(res); err != nil {
		t.Fatalf("RestoreDeleted() error = %v", err)
	}
	if !tree.Equal(before) {
		t.Error("restore did not reproduce the original tree")
	}
}

func TestDeleteNormalizesEmptyRoot(t *testing.T) {
	tree := newTestTree(t)
	only := tree.Root().Children[0]

	res, err := tree.Delete(only)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if res.Normalized.IsNone() {
		t.Fatal("expected normalization paragraph")
	}
	root := tree.Root()
	if len(root.Children) != 1 || root.Children[0] != res.Normalized {
		t.Errorf("root children = %v, want [%s]", root.Children, res.Normalized)
	}

	// Restore removes the normalization paragraph again.
	if err := tree.RestoreDeleted(res); err != nil {
		t.Fatalf("RestoreDeleted() error = %v", err)
	}
	if tree.Contains(res.Normalized) {
		t.Error("normalization paragraph survived restore")
	}
	if root.Children[0] != only {
		t.Errorf("root children = %v, want [%s]", root.Children, only)
	}
}

func TestDeleteErrors(t *testing.T) {
	tree := newTestTree(t)

	if _, err := tree.Delete("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(ghost) error = %v, want ErrNotFound", err)
	}
	if _, err := tree.Delete(tree.RootID()); !errors.Is(err, ErrRootImmutable) {
		t.Errorf("Delete(root) error = %v, want ErrRootImmutable", err)
	}
}

func TestMove(t *testing.T) {
	tree, x, a, c1, _, _, _, y := outline(t)

	t.Run("cycle refused", func(t *testing.T) {
		if _, err := tree.Move(a, c1, 0); !errors.Is(err, ErrInvariantViolation) {
			t.Errorf("Move into own subtree error = %v, want ErrInvariantViolation", err)
		}
	})

	t.Run("same parent index adjusts", func(t *testing.T) {
		// Move x (index 0) after y (index 2).
		res, err := tree.Move(x, tree.RootID(), 3)
		if err != nil {
			t.Fatalf("Move() error = %v", err)
		}
		if res.NewIndex != 2 {
			t.Errorf("NewIndex = %d, want 2", res.NewIndex)
		}
		got := tree.Root().Children
		want := []ID{a, y, x}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("root children = %v, want %v", got, want)
			}
		}
	})
}

func TestIndent(t *testing.T) {
	tree := newTestTree(t)
	first := tree.Root().Children[0]
	second := mustCreate(t, tree, Spec{Type: TypeBulletItem, Parent: tree.RootID(), Index: -1})

	t.Run("no previous sibling", func(t *testing.T) {
		if _, err := tree.Indent(first); !errors.Is(err, ErrNoOp) {
			t.Errorf("Indent(first) error = %v, want ErrNoOp", err)
		}
	})

	t.Run("reparents under previous sibling", func(t *testing.T) {
		res, err := tree.Indent(second)
		if err != nil {
			t.Fatalf("Indent() error = %v", err)
		}
		if res.NewParent != first {
			t.Errorf("NewParent = %s, want %s", res.NewParent, first)
		}
		if tree.Depth(second) != 2 {
			t.Errorf("Depth = %d, want 2", tree.Depth(second))
		}
	})

	t.Run("heading never indents", func(t *testing.T) {
		h := mustCreate(t, tree, Spec{Type: TypeHeading1, Parent: tree.RootID(), Index: -1})
		mustCreate(t, tree, Spec{Type: TypeHeading2, Parent: tree.RootID(), Index: -1})
		last := tree.Root().Children[len(tree.Root().Children)-1]
		_ = h
		if _, err := tree.Indent(last); !errors.Is(err, ErrNoOp) {
			t.Errorf("Indent(heading) error = %v, want ErrNoOp", err)
		}
	})

	t.Run("leaf sibling cannot contain", func(t *testing.T) {
		code := mustCreate(t, tree, Spec{Type: TypeCode, Parent: tree.RootID(), Index: -1})
		para := mustCreate(t, tree, Spec{Type: TypeParagraph, Parent: tree.RootID(), Index: -1})
		_ = code
		if _, err := tree.Indent(para); !errors.Is(err, ErrNoOp) {
			t.Errorf("Indent under code error = %v, want ErrNoOp", err)
		}
	})
}

func TestOutdentNested(t *testing.T) {
	tree, _, a, c1, c2, c3, _, _ := outline(t)

	res, err := tree.Outdent(c2)
	if err != nil {
		t.Fatalf("Outdent() error = %v", err)
	}
	if res.Moved == nil || res.Converted != nil {
		t.Fatalf("result = %+v, want Moved only", res)
	}

	// c2 lands directly after its former parent under the grandparent.
	an, _ := tree.Get(a)
	if len(an.Children) != 2 || an.Children[0] != c1 || an.Children[1] != c3 {
		t.Errorf("anchor children = %v, want [%s %s]", an.Children, c1, c3)
	}
	root := tree.Root()
	aIdx := root.ChildIndex(a)
	if root.Children[aIdx+1] != c2 {
		t.Errorf("c2 should follow its former parent, children = %v", root.Children)
	}
}

func TestOutdentRootLevel(t *testing.T) {
	tree := newTestTree(t)

	t.Run("degrades to lower form under fresh id", func(t *testing.T) {
		bullet := mustCreate(t, tree, Spec{Type: TypeBulletItem, Parent: tree.RootID(), Index: -1, Content: "item"})
		res, err := tree.Outdent(bullet)
		if err != nil {
			t.Fatalf("Outdent() error = %v", err)
		}
		conv := res.Converted
		if conv == nil {
			t.Fatal("expected a conversion")
		}
		if conv.NewID == bullet {
			t.Error("conversion must issue a fresh id")
		}
		if tree.Contains(bullet) {
			t.Error("old id still present")
		}
		n, _ := tree.Get(conv.NewID)
		if n.Type != TypeParagraph || n.Content != "item" {
			t.Errorf("converted = %+v, want paragraph %q", n, "item")
		}
	})

	t.Run("paragraph has no lower form", func(t *testing.T) {
		para := tree.Root().Children[0]
		if _, err := tree.Outdent(para); !errors.Is(err, ErrNoOp) {
			t.Errorf("Outdent(paragraph) error = %v, want ErrNoOp", err)
		}
	})

	t.Run("heading3 steps down one level", func(t *testing.T) {
		h3 := mustCreate(t, tree, Spec{Type: TypeHeading3, Parent: tree.RootID(), Index: -1})
		res, err := tree.Outdent(h3)
		if err != nil {
			t.Fatalf("Outdent() error = %v", err)
		}
		if res.Converted.NewType != TypeHeading2 {
			t.Errorf("NewType = %s, want heading2", res.Converted.NewType)
		}
	})
}

func TestConvertTypeRoundTrip(t *testing.T) {
	tree, _, a, c1, _, _, _, _ := outline(t)
	before := tree.Clone()

	res, err := tree.ConvertType(a, TypeBulletItem)
	if err != nil {
		t.Fatalf("ConvertType() error = %v", err)
	}
	if res.NewID == a || tree.Contains(a) {
		t.Error("conversion must replace the id")
	}
	if c1n, _ := tree.Get(c1); c1n.ParentID != res.NewID {
		t.Error("children must follow the replacement node")
	}

	if err := tree.RevertConvert(res); err != nil {
		t.Fatalf("RevertConvert() error = %v", err)
	}
	if !tree.Equal(before) {
		t.Error("revert did not reproduce the original tree")
	}
}

func TestConvertTypeErrors(t *testing.T) {
	tree := newTestTree(t)
	para := tree.Root().Children[0]

	if _, err := tree.ConvertType(para, TypeParagraph); !errors.Is(err, ErrNoOp) {
		t.Errorf("same-type convert error = %v, want ErrNoOp", err)
	}
	if _, err := tree.ConvertType(para, TypeDoc); !errors.Is(err, ErrInvalidType) {
		t.Errorf("convert to doc error = %v, want ErrInvalidType", err)
	}
	if _, err := tree.ConvertType(tree.RootID(), TypeParagraph); !errors.Is(err, ErrRootImmutable) {
		t.Errorf("convert root error = %v, want ErrRootImmutable", err)
	}
}

func TestSplit(t *testing.T) {
	tree := newTestTree(t)
	para := tree.Root().Children[0]
	if _, err := tree.SetContent(para, "hello world"); err != nil {
		t.Fatal(err)
	}

	res, err := tree.Split(para, 5)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	head, _ := tree.Get(para)
	tail, _ := tree.Get(res.NewID)
	if head.Content != "hello" || tail.Content != " world" {
		t.Errorf("split = %q / %q", head.Content, tail.Content)
	}
	if tree.Root().ChildIndex(res.NewID) != tree.Root().ChildIndex(para)+1 {
		t.Error("tail must directly follow the head")
	}

	if err := tree.Unsplit(res); err != nil {
		t.Fatalf("Unsplit() error = %v", err)
	}
	head, _ = tree.Get(para)
	if head.Content != "hello world" || tree.Contains(res.NewID) {
		t.Error("unsplit did not restore the original block")
	}
}

func TestSplitClampsToGraphemeBoundary(t *testing.T) {
	tree := newTestTree(t)
	para := tree.Root().Children[0]

	// Family emoji: one grapheme cluster, many bytes.
	family := "\U0001F468\u200D\U0001F469\u200D\U0001F467"
	if _, err := tree.SetContent(para, "a"+family+"b"); err != nil {
		t.Fatal(err)
	}

	res, err := tree.Split(para, 3) // inside the cluster
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if res.Offset != 1 {
		t.Errorf("Offset = %d, want clamp to 1", res.Offset)
	}
	head, _ := tree.Get(para)
	tail, _ := tree.Get(res.NewID)
	if head.Content != "a" || tail.Content != family+"b" {
		t.Errorf("split = %q / %q", head.Content, tail.Content)
	}
}

func TestSplitHeadingTailIsParagraph(t *testing.T) {
	tree := newTestTree(t)
	h := mustCreate(t, tree, Spec{Type: TypeHeading1, Parent: tree.RootID(), Index: -1, Content: "title text"})

	res, err := tree.Split(h, 5)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if res.NewType != TypeParagraph {
		t.Errorf("NewType = %s, want paragraph", res.NewType)
	}
	if hn, _ := tree.Get(h); hn.Type != TypeHeading1 {
		t.Error("head must keep its type")
	}
}

func TestCreate(t *testing.T) {
	tree := newTestTree(t)

	t.Run("index placement", func(t *testing.T) {
		first := tree.Root().Children[0]
		created := mustCreate(t, tree, Spec{Type: TypeParagraph, Parent: tree.RootID(), Index: 0})
		if tree.Root().Children[0] != created || tree.Root().Children[1] != first {
			t.Errorf("root children = %v", tree.Root().Children)
		}
	})

	t.Run("invalid type", func(t *testing.T) {
		if _, err := tree.Create(Spec{Type: "widget", Parent: tree.RootID()}); !errors.Is(err, ErrInvalidType) {
			t.Errorf("error = %v, want ErrInvalidType", err)
		}
		if _, err := tree.Create(Spec{Type: TypeDoc, Parent: tree.RootID()}); !errors.Is(err, ErrInvalidType) {
			t.Errorf("error = %v, want ErrInvalidType", err)
		}
	})

	t.Run("nesting rules enforced", func(t *testing.T) {
		bullet := mustCreate(t, tree, Spec{Type: TypeBulletItem, Parent: tree.RootID(), Index: -1})
		if _, err := tree.Create(Spec{Type: TypeHeading1, Parent: bullet}); !errors.Is(err, ErrInvariantViolation) {
			t.Errorf("heading under bullet error = %v, want ErrInvariantViolation", err)
		}
	})
}

func TestSetContent(t *testing.T) {
	tree := newTestTree(t)
	para := tree.Root().Children[0]

	old, err := tree.SetContent(para, "text")
	if err != nil || old != "" {
		t.Fatalf("SetContent() = (%q, %v)", old, err)
	}
	if _, err := tree.SetContent(para, "text"); !errors.Is(err, ErrNoOp) {
		t.Errorf("unchanged content error = %v, want ErrNoOp", err)
	}
	if _, err := tree.SetContent(tree.RootID(), "x"); !errors.Is(err, ErrRootImmutable) {
		t.Errorf("root content error = %v, want ErrRootImmutable", err)
	}
}

func TestRemoveLeafGuards(t *testing.T) {
	tree, _, a, _, _, _, _, _ := outline(t)

	if err := tree.RemoveLeaf(a); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("RemoveLeaf(parent) error = %v, want ErrInvariantViolation", err)
	}

	solo := newTestTree(t)
	only := solo.Root().Children[0]
	if err := solo.RemoveLeaf(only); !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("RemoveLeaf(last block) error = %v, want ErrInvariantViolation", err)
	}
}
