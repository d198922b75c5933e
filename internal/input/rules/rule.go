package rules

import "github.com/dshills/blocktree/internal/intent"

// resultKind discriminates what a rule's executor produced.
type resultKind uint8

const (
	resultNone resultKind = iota
	resultIntents
	resultDirect
)

// Result is the outcome of a rule's executor: zero or more intents for the
// resolver, a direct handled/not-handled signal that bypasses the resolver,
// or nothing at all.
type Result struct {
	kind    resultKind
	intents []intent.Intent
	handled bool
}

// Intents returns a result forwarding the given intents to the resolver.
func Intents(ints ...intent.Intent) Result {
	return Result{kind: resultIntents, intents: ints}
}

// Handled returns a direct "the key is consumed" signal. The resolver is
// bypassed; no tree mutation happens.
func Handled() Result {
	return Result{kind: resultDirect, handled: true}
}

// NotHandled returns a direct "leave this to the host surface" signal.
func NotHandled() Result {
	return Result{kind: resultDirect, handled: false}
}

// None returns an empty result: the rule matched but contributes nothing.
func None() Result {
	return Result{kind: resultNone}
}

// IsDirect reports whether the result is a direct handled signal.
func (r Result) IsDirect() bool {
	return r.kind == resultDirect
}

// DirectHandled returns the direct signal's value.
func (r Result) DirectHandled() bool {
	return r.handled
}

// IntentList returns the emitted intents, nil for non-intent results.
func (r Result) IntentList() []intent.Intent {
	if r.kind != resultIntents {
		return nil
	}
	return r.intents
}

// Rule is one entry in a key's ordered rule list.
type Rule struct {
	// ID names the rule for configuration overrides and diagnostics.
	ID string

	// Priority orders evaluation; higher runs first. Ties are broken by
	// registration order.
	Priority int

	// When is the pure predicate deciding whether the rule applies. It
	// must not mutate anything or perform I/O. A nil When matches always.
	When func(*Context) bool

	// Execute produces the rule's result. Only called when When matched.
	Execute func(*Context) Result

	// Fallthrough, when true, lets evaluation continue to the next
	// matching rule after this one. The default (false) makes the rule's
	// result authoritative, stopping propagation.
	Fallthrough bool

	// Disabled rules are skipped during evaluation.
	Disabled bool

	// seq is the registration order, used for stable priority ties.
	seq int
}

// matches reports whether the rule applies to the context.
func (r *Rule) matches(ctx *Context) bool {
	if r.Disabled {
		return false
	}
	return r.When == nil || r.When(ctx)
}
