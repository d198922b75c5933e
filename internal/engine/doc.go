// Package engine is the authoritative owner of a document's block tree.
//
// The engine wraps the tree with the command/history layer: every structural
// mutation is dispatched as a reversible command, recorded for undo/redo,
// and announced on the engine's event bus. No other code path writes the
// tree's nodes or children.
//
// The engine is deliberately unaware of keys and rules; the dispatcher
// package turns key presses into commands and routes them here.
package engine
