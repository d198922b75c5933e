package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dshills/blocktree/internal/engine/block"
	"github.com/dshills/blocktree/internal/engine/history"
	"github.com/dshills/blocktree/internal/event"
)

func seqIDs() block.IDGenerator {
	n := 0
	return func() block.ID {
		n++
		return block.ID(fmt.Sprintf("n%d", n))
	}
}

func TestNewIsReady(t *testing.T) {
	e := New(WithIDGenerator(seqIDs()))
	if !e.Ready() {
		t.Fatal("New() engine should be ready")
	}
	root := e.Tree().Root()
	if root == nil || len(root.Children) != 1 {
		t.Fatalf("fresh document root = %+v", root)
	}
}

func TestNotReadyGuards(t *testing.T) {
	e := NewEmpty()
	if e.Ready() {
		t.Fatal("NewEmpty() engine should not be ready")
	}

	cmd := history.NewDeleteBlockCommand("x")
	if err := e.Dispatch(cmd); !errors.Is(err, ErrNotReady) {
		t.Errorf("Dispatch() error = %v, want ErrNotReady", err)
	}
	if err := e.Undo(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Undo() error = %v, want ErrNotReady", err)
	}
	if err := e.Redo(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Redo() error = %v, want ErrNotReady", err)
	}
	if e.GetBlock("x") != nil || e.HasChildren("x") || !e.RootID().IsNone() {
		t.Error("detached engine leaked tree state")
	}
	if e.Snapshot() != nil {
		t.Error("Snapshot() on detached engine should be nil")
	}
}

func TestAttachClearsHistory(t *testing.T) {
	e := New(WithIDGenerator(seqIDs()))
	first := e.Tree().Root().Children[0]

	if err := e.Dispatch(history.NewEditContentCommand(first, "text")); err != nil {
		t.Fatal(err)
	}
	if !e.CanUndo() {
		t.Fatal("expected undo after dispatch")
	}

	e.Attach(block.NewTree())
	if e.CanUndo() || e.CanRedo() {
		t.Error("Attach must clear history")
	}
}

func TestDispatchPublishesTreeChanged(t *testing.T) {
	bus := event.NewBus()
	e := New(WithBus(bus), WithIDGenerator(seqIDs()))
	first := e.Tree().Root().Children[0]

	var got event.TreeChanged
	bus.Subscribe(event.TopicTreeChanged, func(_ event.Topic, ev any) {
		got = ev.(event.TreeChanged)
	})

	if err := e.Dispatch(history.NewEditContentCommand(first, "x")); err != nil {
		t.Fatal(err)
	}
	if got.Description != "Edit content" {
		t.Errorf("TreeChanged = %+v", got)
	}
}

func TestDispatchNoOpNotRecorded(t *testing.T) {
	bus := event.NewBus()
	e := New(WithBus(bus), WithIDGenerator(seqIDs()))
	first := e.Tree().Root().Children[0]

	published := 0
	bus.Subscribe(event.TopicTreeChanged, func(event.Topic, any) { published++ })

	err := e.Dispatch(history.NewEditContentCommand(first, ""))
	if !errors.Is(err, ErrNoOp) {
		t.Fatalf("Dispatch() error = %v, want ErrNoOp", err)
	}
	if e.CanUndo() {
		t.Error("no-op was pushed to history")
	}
	if published != 0 {
		t.Error("no-op published a tree change")
	}
}

func TestUndoRedoEvents(t *testing.T) {
	bus := event.NewBus()
	e := New(WithBus(bus), WithIDGenerator(seqIDs()))
	first := e.Tree().Root().Children[0]

	var topics []event.Topic
	bus.Subscribe("history.*", func(topic event.Topic, _ any) {
		topics = append(topics, topic)
	})

	if err := e.Dispatch(history.NewEditContentCommand(first, "x")); err != nil {
		t.Fatal(err)
	}
	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if err := e.Redo(); err != nil {
		t.Fatal(err)
	}

	if len(topics) != 2 || topics[0] != event.TopicHistoryUndone || topics[1] != event.TopicHistoryRedone {
		t.Errorf("topics = %v", topics)
	}

	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() on empty stack error = %v, want ErrNothingToUndo", err)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	e := New(WithIDGenerator(seqIDs()))
	first := e.Tree().Root().Children[0]

	snap := e.Snapshot()
	if err := e.Dispatch(history.NewEditContentCommand(first, "changed")); err != nil {
		t.Fatal(err)
	}
	if n, _ := snap.Get(first); n.Content != "" {
		t.Error("snapshot aliased the live tree")
	}
}

func TestGroupedDispatchUndoesAsOne(t *testing.T) {
	e := New(WithIDGenerator(seqIDs()))
	before := e.Snapshot()

	e.BeginGroup("bulk")
	for i := 0; i < 2; i++ {
		cmd := history.NewCreateBlockCommand(block.Spec{Type: block.TypeParagraph, Parent: e.RootID(), Index: -1})
		if err := e.Dispatch(cmd); err != nil {
			t.Fatal(err)
		}
	}
	e.EndGroup()

	if got := e.History().UndoCount(); got != 1 {
		t.Fatalf("UndoCount() = %d, want 1", got)
	}
	if err := e.Undo(); err != nil {
		t.Fatal(err)
	}
	if !e.Tree().Equal(before) {
		t.Error("group undo did not restore the starting tree")
	}
}

func TestDeleteBlockReturnsRecord(t *testing.T) {
	e := New(WithIDGenerator(seqIDs()))
	cmd := history.NewCreateBlockCommand(block.Spec{Type: block.TypeParagraph, Parent: e.RootID(), Index: -1})
	if err := e.Dispatch(cmd); err != nil {
		t.Fatal(err)
	}

	res, err := e.DeleteBlock(cmd.Created())
	if err != nil {
		t.Fatalf("DeleteBlock() error = %v", err)
	}
	if res == nil || res.Node.ID != cmd.Created() {
		t.Errorf("DeleteBlock() result = %+v", res)
	}

	if _, err := e.DeleteBlock("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteBlock(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestGetBlockReturnsCopy(t *testing.T) {
	e := New(WithIDGenerator(seqIDs()))
	first := e.Tree().Root().Children[0]

	n := e.GetBlock(first)
	if n == nil {
		t.Fatal("GetBlock() = nil for live block")
	}
	n.Content = "scribbled"
	if live, _ := e.Tree().Get(first); live.Content != "" {
		t.Error("GetBlock must return a copy")
	}
}
