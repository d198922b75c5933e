package event

import "github.com/dshills/blocktree/internal/engine/block"

// Engine event topics.
const (
	// TopicTreeChanged is published after a command mutates the tree.
	TopicTreeChanged Topic = "tree.changed"

	// TopicHistoryUndone is published after a successful undo.
	TopicHistoryUndone Topic = "history.undone"

	// TopicHistoryRedone is published after a successful redo.
	TopicHistoryRedone Topic = "history.redone"

	// TopicRuleMatched is published when a key press matched a rule.
	TopicRuleMatched Topic = "rule.matched"

	// TopicCursorPlaced is published after a transaction commits, carrying
	// the cursor target for the host surface. Always follows the
	// TopicTreeChanged event of the same transaction.
	TopicCursorPlaced Topic = "cursor.placed"

	// TopicDeferred is published when an engine guard consumed a key press
	// without acting (engine not ready, cursor block unknown).
	TopicDeferred Topic = "engine.deferred"
)

// TreeChanged reports a committed mutation.
type TreeChanged struct {
	// Description is the command description that committed.
	Description string

	// Blocks lists ids the mutation touched, when known.
	Blocks []block.ID
}

// HistoryMoved reports an undo or redo.
type HistoryMoved struct {
	Description string
	UndoDepth   int
	RedoDepth   int
}

// RuleMatched reports which rule claimed a key press.
type RuleMatched struct {
	Chord  string
	RuleID string
}

// CursorPlaced carries a cursor target for the host surface.
type CursorPlaced struct {
	Block     block.ID
	Placement string
	Offset    int
}

// Deferred reports a guard that consumed a key press without mutating.
type Deferred struct {
	Chord  string
	Reason string
}
