package host

import (
	"testing"

	"github.com/dshills/blocktree/internal/engine"
	"github.com/dshills/blocktree/internal/engine/block"
	"github.com/dshills/blocktree/internal/engine/history"
	"github.com/dshills/blocktree/internal/event"
)

// recordingMirror logs the order of mirror updates.
type recordingMirror struct {
	ops   []string
	trees []*block.Tree
}

func (m *recordingMirror) ApplyTree(snapshot *block.Tree) {
	m.ops = append(m.ops, "tree")
	m.trees = append(m.trees, snapshot)
}

func (m *recordingMirror) PlaceCursor(CursorTarget) {
	m.ops = append(m.ops, "cursor")
}

func TestBoundaryMirrorsCommits(t *testing.T) {
	eng := engine.New()
	mirror := &recordingMirror{}
	b := NewBoundary(eng, mirror)
	defer b.Close()

	first := eng.Tree().Root().Children[0]
	if err := eng.Dispatch(history.NewEditContentCommand(first, "text")); err != nil {
		t.Fatal(err)
	}

	if len(mirror.trees) != 1 {
		t.Fatalf("mirror updates = %d, want 1", len(mirror.trees))
	}
	// The mirror gets an independent snapshot carrying the committed state.
	snap := mirror.trees[0]
	if n, _ := snap.Get(first); n == nil || n.Content != "text" {
		t.Errorf("mirrored content = %+v", n)
	}
	if snap == eng.Tree() {
		t.Error("mirror received the live tree, not a snapshot")
	}
}

func TestBoundaryMirrorsHistoryMoves(t *testing.T) {
	eng := engine.New()
	mirror := &recordingMirror{}
	b := NewBoundary(eng, mirror)
	defer b.Close()

	first := eng.Tree().Root().Children[0]
	if err := eng.Dispatch(history.NewEditContentCommand(first, "text")); err != nil {
		t.Fatal(err)
	}
	if err := eng.Undo(); err != nil {
		t.Fatal(err)
	}

	if len(mirror.trees) != 2 {
		t.Fatalf("mirror updates = %d, want 2", len(mirror.trees))
	}
	if n, _ := mirror.trees[1].Get(first); n.Content != "" {
		t.Errorf("undone content = %q, want empty", n.Content)
	}
}

// TestBoundaryOrdersCursorAfterTree checks the lockstep guarantee: the cursor
// target of a transaction always arrives after its tree snapshot.
func TestBoundaryOrdersCursorAfterTree(t *testing.T) {
	eng := engine.New()
	mirror := &recordingMirror{}
	b := NewBoundary(eng, mirror)
	defer b.Close()

	first := eng.Tree().Root().Children[0]
	if err := eng.Dispatch(history.NewEditContentCommand(first, "text")); err != nil {
		t.Fatal(err)
	}
	eng.Bus().Publish(event.TopicCursorPlaced, event.CursorPlaced{
		Block:     first,
		Placement: string(PlacementEnd),
	})

	if len(mirror.ops) != 2 || mirror.ops[0] != "tree" || mirror.ops[1] != "cursor" {
		t.Errorf("ops = %v, want [tree cursor]", mirror.ops)
	}
}

func TestBoundaryClose(t *testing.T) {
	eng := engine.New()
	mirror := &recordingMirror{}
	b := NewBoundary(eng, mirror)
	b.Close()

	first := eng.Tree().Root().Children[0]
	if err := eng.Dispatch(history.NewEditContentCommand(first, "text")); err != nil {
		t.Fatal(err)
	}
	if len(mirror.ops) != 0 {
		t.Errorf("closed boundary still received %v", mirror.ops)
	}
}
