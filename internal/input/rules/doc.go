// Package rules implements the keyboard-intent resolution rules: an ordered,
// priority-sorted list of rules per key chord. Each rule has a pure predicate
// and an executor that emits structural intents or a direct handled signal.
//
// Evaluation is highest-priority-first. The first matching rule's result is
// authoritative and, unless the rule opts into fallthrough, stops further
// evaluation for that key press. A key press no rule matches is not handled
// by the engine and is left to the host surface's default behavior.
//
// The structural Enter and Backspace decision tables live in laws.go as
// pure, total functions so every cursor-context combination maps to exactly
// one outcome.
package rules
