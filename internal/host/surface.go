// Package host defines the boundary between the engine and the host text
// surface that renders the document. The surface owns text layout, caret
// pixel mapping, and its own node addressing; the engine owns the logical
// tree. The two stay consistent through one unidirectional boundary: the
// engine publishes committed changes and cursor targets, and the surface
// mirrors them. The engine never reads surface-native positions directly.
package host

import (
	"github.com/dshills/blocktree/internal/engine/block"
)

// Placement says where in a block the caret should land.
type Placement string

// Cursor placements.
const (
	// PlacementStart puts the caret before the first character.
	PlacementStart Placement = "start"

	// PlacementEnd puts the caret after the last character.
	PlacementEnd Placement = "end"

	// PlacementSafe lets the surface pick the nearest valid position.
	PlacementSafe Placement = "safe"

	// PlacementOffset puts the caret at CursorTarget.Offset, clamped by
	// the surface.
	PlacementOffset Placement = "offset"
)

// CursorTarget is a cursor-repositioning command for the surface.
type CursorTarget struct {
	Block     block.ID
	Placement Placement
	Offset    int
}

// KeyContext is the surface's report of the cursor state accompanying a key
// press. The surface is authoritative for text-level facts (offsets,
// emptiness); the engine is authoritative for structure.
type KeyContext struct {
	// Block holds the cursor.
	Block block.ID

	// Offset is the caret byte offset within the block's content.
	Offset int

	// Text classification at the caret.
	IsEmpty bool
	AtStart bool
	AtEnd   bool

	// InHiddenRange is set when the caret sits inside a collapsed region;
	// HiddenAnchor is the visible subtree anchor of that region.
	InHiddenRange bool
	HiddenAnchor  block.ID

	// Selection lists the selected block ids for multi-block operations,
	// in document order. Empty or single-element for a plain caret.
	Selection []block.ID
}

// Surface is what the engine consumes from the host text surface.
type Surface interface {
	// KeyContext reports the cursor context for the key press being
	// processed. ok is false while the surface has not finished mirroring
	// the document; the engine then defers the key press.
	KeyContext() (ctx KeyContext, ok bool)

	// BlockAt translates a surface-native document position into the
	// engine's block id, or block.None when unresolvable.
	BlockAt(position int) block.ID

	// PlaceCursor repositions the caret. Called strictly after the
	// mutation it belongs to has been announced.
	PlaceCursor(target CursorTarget)
}
