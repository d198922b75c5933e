package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/blocktree/internal/engine/block"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// undoEntry wraps a command with metadata.
type undoEntry struct {
	command   Command
	timestamp time.Time
}

// OperationInfo describes one entry on the undo or redo stack.
type OperationInfo struct {
	Description string
	Timestamp   time.Time
}

// History manages undo/redo state for a document tree.
type History struct {
	mu sync.Mutex

	undoStack []*undoEntry
	redoStack []*undoEntry

	// Grouping state
	grouping  bool
	groupName string
	groupCmds []Command

	maxEntries int
}

// DefaultMaxEntries is the undo depth used when none is configured.
const DefaultMaxEntries = 1000

// New creates a new history manager.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Execute runs a command and, on success, adds it to the undo stack and
// clears the redo stack. A command failing with block.ErrNoOp is not pushed;
// the error is returned for the caller to interpret.
func (h *History) Execute(cmd Command, tree *block.Tree) error {
	if err := cmd.Execute(tree); err != nil {
		return err
	}
	h.Push(cmd)
	return nil
}

// Push adds an already-executed command to the undo stack and clears the
// redo stack. While grouping, the command is collected for the group instead.
func (h *History) Push(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		h.groupCmds = append(h.groupCmds, cmd)
		return
	}
	h.pushLocked(cmd)
}

func (h *History) pushLocked(cmd Command) {
	h.undoStack = append(h.undoStack, &undoEntry{
		command:   cmd,
		timestamp: time.Now(),
	})
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo undoes the most recent command and moves it to the redo stack.
// Returns ErrNothingToUndo when the undo stack is empty.
func (h *History) Undo(tree *block.Tree) error {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}
	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.mu.Unlock()

	if err := entry.command.Undo(tree); err != nil {
		// Restore entry on failure so the stack stays consistent.
		h.mu.Lock()
		h.undoStack = append(h.undoStack, entry)
		h.mu.Unlock()
		return err
	}

	h.mu.Lock()
	h.redoStack = append(h.redoStack, entry)
	h.mu.Unlock()
	return nil
}

// Redo re-applies the most recently undone command and moves it back to the
// undo stack. Returns ErrNothingToRedo when the redo stack is empty.
func (h *History) Redo(tree *block.Tree) error {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}
	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.mu.Unlock()

	if err := entry.command.Execute(tree); err != nil {
		h.mu.Lock()
		h.redoStack = append(h.redoStack, entry)
		h.mu.Unlock()
		return err
	}

	h.mu.Lock()
	h.undoStack = append(h.undoStack, entry)
	h.mu.Unlock()
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts a command group. Commands pushed while grouping are
// combined into a single undo unit. Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return
	}
	h.grouping = true
	h.groupName = name
	h.groupCmds = nil
}

// EndGroup finishes a command group. All commands since BeginGroup are
// combined into a CompoundCommand and pushed as one entry.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	h.grouping = false

	if len(h.groupCmds) == 0 {
		h.groupCmds = nil
		return
	}

	compound := &CompoundCommand{
		Name:     h.groupName,
		Commands: h.groupCmds,
	}
	h.pushLocked(compound)
	h.groupCmds = nil
}

// CancelGroup abandons a command group without pushing it.
// Note: commands already executed still affect the tree.
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.grouping = false
	h.groupCmds = nil
}

// IsGrouping returns true if currently in a command group.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupCmds = nil
}

// PeekUndo returns info about the next undo operation without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}
	entry := h.undoStack[len(h.undoStack)-1]
	return OperationInfo{
		Description: entry.command.Description(),
		Timestamp:   entry.timestamp,
	}, true
}

// PeekRedo returns info about the next redo operation without removing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return OperationInfo{}, false
	}
	entry := h.redoStack[len(h.redoStack)-1]
	return OperationInfo{
		Description: entry.command.Description(),
		Timestamp:   entry.timestamp,
	}, true
}

// UndoInfo returns info about every available undo operation, oldest first.
func (h *History) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]OperationInfo, len(h.undoStack))
	for i, entry := range h.undoStack {
		result[i] = OperationInfo{
			Description: entry.command.Description(),
			Timestamp:   entry.timestamp,
		}
	}
	return result
}

// MaxEntries returns the maximum undo depth.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}

// SetMaxEntries changes the maximum undo depth, trimming oldest entries if
// the stack is already larger.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	if len(h.undoStack) > max {
		excess := len(h.undoStack) - max
		h.undoStack = h.undoStack[excess:]
	}
}
