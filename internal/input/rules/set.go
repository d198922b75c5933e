package rules

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/blocktree/internal/intent"
)

// Registration errors.
var (
	ErrDuplicateRule = errors.New("duplicate rule id")
	ErrRuleNotFound  = errors.New("rule not found")
	ErrNoExecutor    = errors.New("rule has no executor")
)

// Outcome is the aggregate result of evaluating a key press against a
// chord's rules.
type Outcome struct {
	// Matched is true when at least one rule applied. An unmatched key
	// press is not handled by the engine.
	Matched bool

	// Direct is true when a rule returned a direct handled signal; Handled
	// then carries that signal and Intents is empty.
	Direct  bool
	Handled bool

	// Intents holds the accumulated intents from matching rules.
	Intents []intent.Intent
}

// Set holds the ordered rules for every key chord.
type Set struct {
	mu      sync.RWMutex
	chords  map[string][]*Rule
	nextSeq int
}

// NewSet creates an empty rule set.
func NewSet() *Set {
	return &Set{chords: make(map[string][]*Rule)}
}

// Register adds a rule for a key chord (e.g. "Enter", "Shift+Tab"). Rules
// are kept sorted by descending priority with registration order breaking
// ties.
func (s *Set) Register(chord string, r Rule) error {
	if r.Execute == nil {
		return fmt.Errorf("register %q: %w", r.ID, ErrNoExecutor)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.chords {
		for _, e := range existing {
			if e.ID == r.ID {
				return fmt.Errorf("register %q: %w", r.ID, ErrDuplicateRule)
			}
		}
	}

	rule := r
	rule.seq = s.nextSeq
	s.nextSeq++

	list := append(s.chords[chord], &rule)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Priority != list[j].Priority {
			return list[i].Priority > list[j].Priority
		}
		return list[i].seq < list[j].seq
	})
	s.chords[chord] = list
	return nil
}

// Evaluate runs the chord's rules against the context, highest priority
// first. The first matching rule's result is authoritative unless it opts
// into fallthrough, in which case intents accumulate across matching rules.
// A direct handled signal always terminates evaluation.
func (s *Set) Evaluate(chord string, ctx *Context) Outcome {
	s.mu.RLock()
	list := s.chords[chord]
	rules := make([]*Rule, len(list))
	copy(rules, list)
	s.mu.RUnlock()

	var out Outcome
	for _, r := range rules {
		if !r.matches(ctx) {
			continue
		}
		out.Matched = true

		res := r.Execute(ctx)
		if res.IsDirect() {
			out.Direct = true
			out.Handled = res.DirectHandled()
			return out
		}
		out.Intents = append(out.Intents, res.IntentList()...)

		if !r.Fallthrough {
			break
		}
	}
	return out
}

// SetPriority changes a rule's priority and re-sorts its chord.
func (s *Set) SetPriority(id string, priority int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for chord, list := range s.chords {
		for _, r := range list {
			if r.ID != id {
				continue
			}
			r.Priority = priority
			sort.SliceStable(list, func(i, j int) bool {
				if list[i].Priority != list[j].Priority {
					return list[i].Priority > list[j].Priority
				}
				return list[i].seq < list[j].seq
			})
			s.chords[chord] = list
			return nil
		}
	}
	return fmt.Errorf("set priority %q: %w", id, ErrRuleNotFound)
}

// SetDisabled toggles a rule on or off without unregistering it.
func (s *Set) SetDisabled(id string, disabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, list := range s.chords {
		for _, r := range list {
			if r.ID == id {
				r.Disabled = disabled
				return nil
			}
		}
	}
	return fmt.Errorf("disable %q: %w", id, ErrRuleNotFound)
}

// Chords returns the chords that have registered rules.
func (s *Set) Chords() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.chords))
	for chord := range s.chords {
		out = append(out, chord)
	}
	sort.Strings(out)
	return out
}

// RuleIDs returns the rule ids for a chord in evaluation order.
func (s *Set) RuleIDs(chord string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.chords[chord]
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.ID
	}
	return out
}
