package engine

import (
	"github.com/dshills/blocktree/internal/engine/block"
	"github.com/dshills/blocktree/internal/engine/history"
	"github.com/dshills/blocktree/internal/event"
)

type options struct {
	maxUndoEntries int
	idGen          block.IDGenerator
	bus            *event.Bus
}

func defaultOptions() options {
	return options{
		maxUndoEntries: history.DefaultMaxEntries,
		idGen:          block.UUIDGenerator(),
		bus:            event.NewBus(),
	}
}

// Option configures an Engine.
type Option func(*options)

// WithMaxUndoEntries sets the undo stack depth.
func WithMaxUndoEntries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxUndoEntries = n
		}
	}
}

// WithIDGenerator sets the generator for new block ids. Tests use this for
// deterministic ids.
func WithIDGenerator(gen block.IDGenerator) Option {
	return func(o *options) {
		if gen != nil {
			o.idGen = gen
		}
	}
}

// WithBus attaches an existing event bus instead of creating one.
func WithBus(bus *event.Bus) Option {
	return func(o *options) {
		if bus != nil {
			o.bus = bus
		}
	}
}
