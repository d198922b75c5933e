package host

import (
	"github.com/dshills/blocktree/internal/engine"
	"github.com/dshills/blocktree/internal/engine/block"
	"github.com/dshills/blocktree/internal/event"
)

// Mirror is a read-mirrored copy of the document kept by the host surface.
type Mirror interface {
	// ApplyTree replaces the mirrored structure with a fresh snapshot.
	ApplyTree(snapshot *block.Tree)

	// PlaceCursor repositions the mirrored caret.
	PlaceCursor(target CursorTarget)
}

// Boundary keeps a surface mirror in lockstep with the engine. It subscribes
// to the engine bus; because delivery is synchronous and in subscription
// order, the mirror always sees the committed tree before the cursor target
// of the same transaction.
type Boundary struct {
	eng    *engine.Engine
	mirror Mirror
	subs   []event.Subscription
}

// NewBoundary wires a mirror to the engine's bus.
func NewBoundary(eng *engine.Engine, mirror Mirror) *Boundary {
	b := &Boundary{eng: eng, mirror: mirror}

	b.subs = append(b.subs, eng.Bus().Subscribe("tree.*", func(_ event.Topic, _ any) {
		b.mirror.ApplyTree(eng.Snapshot())
	}))
	b.subs = append(b.subs, eng.Bus().Subscribe("history.*", func(_ event.Topic, _ any) {
		b.mirror.ApplyTree(eng.Snapshot())
	}))
	b.subs = append(b.subs, eng.Bus().Subscribe(event.TopicCursorPlaced, func(_ event.Topic, e any) {
		cp, ok := e.(event.CursorPlaced)
		if !ok {
			return
		}
		b.mirror.PlaceCursor(CursorTarget{
			Block:     cp.Block,
			Placement: Placement(cp.Placement),
			Offset:    cp.Offset,
		})
	}))
	return b
}

// Close detaches the boundary from the bus.
func (b *Boundary) Close() {
	for _, s := range b.subs {
		b.eng.Bus().Unsubscribe(s)
	}
	b.subs = nil
}
