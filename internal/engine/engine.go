package engine

import (
	"sync"

	"github.com/dshills/blocktree/internal/engine/block"
	"github.com/dshills/blocktree/internal/engine/history"
	"github.com/dshills/blocktree/internal/event"
)

// Re-export commonly used types for convenience.
type (
	// ID is a block identifier.
	ID = block.ID

	// Node is a block node.
	Node = block.Node

	// Tree is the document tree.
	Tree = block.Tree

	// Command is an undoable structural command.
	Command = history.Command
)

// Engine owns the document tree and the history stack.
type Engine struct {
	mu      sync.Mutex
	tree    *block.Tree
	history *history.History
	bus     *event.Bus
	opts    options
}

// New creates an engine with a fresh document: a root holding one empty
// paragraph.
func New(opts ...Option) *Engine {
	e := NewEmpty(opts...)
	e.tree = block.NewTree(block.WithIDGenerator(e.opts.idGen))
	return e
}

// NewEmpty creates an engine with no document attached. The engine reports
// not ready until Attach is called; the dispatcher consumes key presses as
// deferred in the meantime.
func NewEmpty(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		history: history.New(o.maxUndoEntries),
		bus:     o.bus,
		opts:    o,
	}
}

// Attach installs a document tree and clears any prior history.
func (e *Engine) Attach(tree *block.Tree) {
	e.mu.Lock()
	e.tree = tree
	e.history.Clear()
	e.mu.Unlock()
}

// Ready reports whether a document is attached.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree != nil
}

// Bus returns the engine's event bus.
func (e *Engine) Bus() *event.Bus {
	return e.bus
}

// Tree returns the live document tree for read access. All writes go
// through Dispatch; callers must not mutate nodes or children directly.
func (e *Engine) Tree() *block.Tree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree
}

// Snapshot returns an independent deep copy of the current tree, or nil when
// no document is attached.
func (e *Engine) Snapshot() *block.Tree {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree == nil {
		return nil
	}
	return e.tree.Clone()
}

// Dispatch executes a command, pushes it onto the undo stack, and clears the
// redo stack. A command failing with block.ErrNoOp is not recorded; the
// error is propagated for the caller to treat as a consumed no-op. On any
// failure the tree is left untouched.
func (e *Engine) Dispatch(cmd Command) error {
	e.mu.Lock()
	if e.tree == nil {
		e.mu.Unlock()
		return ErrNotReady
	}
	err := e.history.Execute(cmd, e.tree)
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.bus.Publish(event.TopicTreeChanged, event.TreeChanged{
		Description: cmd.Description(),
	})
	return nil
}

// Undo reverses the most recent command. Returns history.ErrNothingToUndo
// when there is nothing to undo.
func (e *Engine) Undo() error {
	e.mu.Lock()
	if e.tree == nil {
		e.mu.Unlock()
		return ErrNotReady
	}
	err := e.history.Undo(e.tree)
	undoDepth, redoDepth := e.history.UndoCount(), e.history.RedoCount()
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.bus.Publish(event.TopicHistoryUndone, event.HistoryMoved{
		UndoDepth: undoDepth,
		RedoDepth: redoDepth,
	})
	return nil
}

// Redo re-applies the most recently undone command. Returns
// history.ErrNothingToRedo when there is nothing to redo.
func (e *Engine) Redo() error {
	e.mu.Lock()
	if e.tree == nil {
		e.mu.Unlock()
		return ErrNotReady
	}
	err := e.history.Redo(e.tree)
	undoDepth, redoDepth := e.history.UndoCount(), e.history.RedoCount()
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.bus.Publish(event.TopicHistoryRedone, event.HistoryMoved{
		UndoDepth: undoDepth,
		RedoDepth: redoDepth,
	})
	return nil
}

// CanUndo returns true if undo is available.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// History returns the history manager for introspection.
func (e *Engine) History() *history.History {
	return e.history
}

// BeginGroup starts combining dispatched commands into one undo unit.
func (e *Engine) BeginGroup(name string) {
	e.history.BeginGroup(name)
}

// EndGroup closes the current command group.
func (e *Engine) EndGroup() {
	e.history.EndGroup()
}

// GetBlock returns a copy of the block, or nil if it does not exist or no
// document is attached.
func (e *Engine) GetBlock(id ID) *Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree == nil {
		return nil
	}
	n, ok := e.tree.Get(id)
	if !ok {
		return nil
	}
	return n.Clone()
}

// HasChildren reports whether the block has children. False for unknown ids
// or a detached engine.
func (e *Engine) HasChildren(id ID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree != nil && e.tree.HasChildren(id)
}

// RootID returns the root block id, or block.None when detached.
func (e *Engine) RootID() ID {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree == nil {
		return block.None
	}
	return e.tree.RootID()
}

// DeleteBlock dispatches a child-promoting delete and returns the record of
// what was removed and promoted, or nil and an error when the target is
// missing or the root.
func (e *Engine) DeleteBlock(id ID) (*block.DeleteResult, error) {
	cmd := history.NewDeleteBlockCommand(id)
	if err := e.Dispatch(cmd); err != nil {
		return nil, err
	}
	return cmd.Result(), nil
}
