package dispatcher

import (
	"errors"

	"github.com/dshills/blocktree/internal/engine"
	"github.com/dshills/blocktree/internal/engine/block"
	"github.com/dshills/blocktree/internal/event"
	"github.com/dshills/blocktree/internal/host"
	"github.com/dshills/blocktree/internal/input/key"
	"github.com/dshills/blocktree/internal/input/rules"
	"github.com/dshills/blocktree/internal/intent"
)

// History chords handled ahead of rule evaluation.
const (
	ChordUndo      = "Ctrl+z"
	ChordRedo      = "Ctrl+Z"
	ChordRedoAlias = "Ctrl+y"
)

// Deferred-guard reasons published with event.Deferred.
const (
	ReasonNotReady     = "engine not ready"
	ReasonNoContext    = "surface has no cursor context"
	ReasonUnknownBlock = "cursor block not in tree"
)

// Dispatcher is the single entry point for key presses. It evaluates the
// rule set for the key's chord, resolves the resulting intents into one
// transaction, and places the cursor.
type Dispatcher struct {
	eng      *engine.Engine
	rules    *rules.Set
	resolver *Resolver
	surface  host.Surface
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRules replaces the default rule set.
func WithRules(s *rules.Set) Option {
	return func(d *Dispatcher) { d.rules = s }
}

// New creates a dispatcher wired to an engine and a host surface. Without
// options it installs the built-in structural rules.
func New(eng *engine.Engine, surface host.Surface, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		eng:      eng,
		rules:    rules.DefaultSet(),
		resolver: NewResolver(eng),
		surface:  surface,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Rules returns the active rule set for registration and tuning.
func (d *Dispatcher) Rules() *rules.Set {
	return d.rules
}

// HandleKey processes one key press. It returns true when the press was
// consumed (a rule handled it, a guard deferred it, or a matched rule
// resolved to nothing) and false when the host should apply its own text
// editing behavior.
func (d *Dispatcher) HandleKey(ev key.Event) bool {
	chord := ev.Chord()

	switch chord {
	case ChordUndo:
		d.eng.Undo()
		return true
	case ChordRedo, ChordRedoAlias:
		d.eng.Redo()
		return true
	}

	if !d.eng.Ready() {
		d.deferKey(chord, ReasonNotReady)
		return true
	}

	kctx, ok := d.surface.KeyContext()
	if !ok {
		d.deferKey(chord, ReasonNoContext)
		return true
	}

	tree := d.eng.Tree()
	if !tree.Contains(kctx.Block) {
		d.deferKey(chord, ReasonUnknownBlock)
		return true
	}

	ctx := d.buildContext(ev, kctx, tree)
	out := d.rules.Evaluate(chord, ctx)
	if !out.Matched {
		return false
	}
	d.eng.Bus().Publish(event.TopicRuleMatched, event.RuleMatched{Chord: chord})

	if out.Direct {
		return out.Handled
	}
	d.performStructural(out.Intents, kctx.Block)
	return true
}

// PerformStructural applies a batch of intents as one transaction and
// repositions the cursor. It is the only call path that mutates structure
// and places the cursor for a user action. Failures leave the cursor where
// it was.
func (d *Dispatcher) PerformStructural(intents []intent.Intent) error {
	return d.performStructural(intents, block.None)
}

// performStructural carries the caret block so the resolver can keep the
// cursor in the block that held it.
func (d *Dispatcher) performStructural(intents []intent.Intent, caret block.ID) error {
	res, err := d.resolver.ResolveAt(intents, caret)
	if err != nil && !errors.Is(err, block.ErrNoOp) {
		return err
	}
	if !res.Place {
		return nil
	}

	// Commit has been announced on tree.changed; repositioning follows it.
	d.eng.Bus().Publish(event.TopicCursorPlaced, event.CursorPlaced{
		Block:     res.Cursor.Block,
		Placement: string(res.Cursor.Placement),
		Offset:    res.Cursor.Offset,
	})
	d.surface.PlaceCursor(res.Cursor)
	return nil
}

// buildContext merges the surface's text-level report with the engine's
// structural facts into the rule evaluation context.
func (d *Dispatcher) buildContext(ev key.Event, kctx host.KeyContext, tree *block.Tree) *rules.Context {
	ctx := &rules.Context{
		Key:           ev,
		Block:         kctx.Block,
		Offset:        kctx.Offset,
		IsEmpty:       kctx.IsEmpty,
		AtStart:       kctx.AtStart,
		AtEnd:         kctx.AtEnd,
		InHiddenRange: kctx.InHiddenRange,
		HiddenAnchor:  kctx.HiddenAnchor,
		Selection:     kctx.Selection,
		Tree:          tree,
		HasChildren:   tree.HasChildren(kctx.Block),
		Depth:         tree.Depth(kctx.Block),
	}
	if n, ok := tree.Get(kctx.Block); ok {
		ctx.Type = n.Type
		ctx.CanHaveChildren = n.Type.CanHaveChildren()
	}
	return ctx
}

// deferKey publishes a deferred-guard event for a consumed key press.
func (d *Dispatcher) deferKey(chord, reason string) {
	d.eng.Bus().Publish(event.TopicDeferred, event.Deferred{
		Chord:  chord,
		Reason: reason,
	})
}
