package engine

import (
	"errors"

	"github.com/dshills/blocktree/internal/engine/block"
	"github.com/dshills/blocktree/internal/engine/history"
)

// ErrNotReady indicates no document tree is attached yet. Callers treat the
// triggering key press as consumed and retry on the next user action.
var ErrNotReady = errors.New("engine not ready")

// Re-exported errors from the tree and history layers.
var (
	ErrNotFound           = block.ErrNotFound
	ErrRootImmutable      = block.ErrRootImmutable
	ErrInvariantViolation = block.ErrInvariantViolation
	ErrNoOp               = block.ErrNoOp
	ErrNothingToUndo      = history.ErrNothingToUndo
	ErrNothingToRedo      = history.ErrNothingToRedo
)
