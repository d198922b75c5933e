package rules

import (
	"errors"
	"testing"

	"github.com/dshills/blocktree/internal/engine/block"
	"github.com/dshills/blocktree/internal/intent"
)

func intents(ids ...block.ID) Result {
	out := make([]intent.Intent, len(ids))
	for i, id := range ids {
		out[i] = intent.Indent(id)
	}
	return Intents(out...)
}

func TestRegisterValidation(t *testing.T) {
	s := NewSet()

	if err := s.Register("Enter", Rule{ID: "no-exec"}); !errors.Is(err, ErrNoExecutor) {
		t.Errorf("Register without executor error = %v, want ErrNoExecutor", err)
	}

	r := Rule{ID: "dup", Execute: func(*Context) Result { return None() }}
	if err := s.Register("Enter", r); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	// Duplicate ids are refused even on a different chord.
	if err := s.Register("Tab", r); !errors.Is(err, ErrDuplicateRule) {
		t.Errorf("duplicate Register error = %v, want ErrDuplicateRule", err)
	}
}

func TestEvaluatePriorityOrder(t *testing.T) {
	s := NewSet()
	var ran []string
	reg := func(id string, prio int) {
		err := s.Register("Enter", Rule{
			ID:       id,
			Priority: prio,
			Execute: func(*Context) Result {
				ran = append(ran, id)
				return intents("b")
			},
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	reg("low", -5)
	reg("high", 10)
	reg("mid", 0)

	out := s.Evaluate("Enter", &Context{})
	if !out.Matched {
		t.Fatal("expected a match")
	}
	// First match is authoritative without fallthrough.
	if len(ran) != 1 || ran[0] != "high" {
		t.Errorf("ran = %v, want [high]", ran)
	}

	ids := s.RuleIDs("Enter")
	want := []string{"high", "mid", "low"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("RuleIDs() = %v, want %v", ids, want)
		}
	}
}

func TestEvaluateTieBreakByRegistration(t *testing.T) {
	s := NewSet()
	for _, id := range []string{"first", "second"} {
		id := id
		if err := s.Register("Tab", Rule{ID: id, Execute: func(*Context) Result { return intents(block.ID(id)) }}); err != nil {
			t.Fatal(err)
		}
	}
	out := s.Evaluate("Tab", &Context{})
	if len(out.Intents) != 1 || out.Intents[0].Block != "first" {
		t.Errorf("Intents = %v, want the first-registered rule", out.Intents)
	}
}

func TestEvaluateWhenPredicate(t *testing.T) {
	s := NewSet()
	if err := s.Register("Backspace", Rule{
		ID:      "guarded",
		When:    func(ctx *Context) bool { return ctx.AtStart },
		Execute: func(*Context) Result { return intents("b") },
	}); err != nil {
		t.Fatal(err)
	}

	if out := s.Evaluate("Backspace", &Context{AtStart: false}); out.Matched {
		t.Error("predicate false should not match")
	}
	if out := s.Evaluate("Backspace", &Context{AtStart: true}); !out.Matched {
		t.Error("predicate true should match")
	}
}

func TestEvaluateFallthroughAccumulates(t *testing.T) {
	s := NewSet()
	if err := s.Register("Tab", Rule{
		ID: "extra", Priority: 5, Fallthrough: true,
		Execute: func(*Context) Result { return intents("x") },
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Register("Tab", Rule{
		ID:      "base",
		Execute: func(*Context) Result { return intents("y") },
	}); err != nil {
		t.Fatal(err)
	}

	out := s.Evaluate("Tab", &Context{})
	if len(out.Intents) != 2 || out.Intents[0].Block != "x" || out.Intents[1].Block != "y" {
		t.Errorf("Intents = %v, want [x y]", out.Intents)
	}
}

func TestEvaluateDirectTerminates(t *testing.T) {
	s := NewSet()
	called := false
	if err := s.Register("Enter", Rule{
		ID: "direct", Priority: 5, Fallthrough: true,
		Execute: func(*Context) Result { return Handled() },
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Register("Enter", Rule{
		ID: "never",
		Execute: func(*Context) Result {
			called = true
			return intents("b")
		},
	}); err != nil {
		t.Fatal(err)
	}

	out := s.Evaluate("Enter", &Context{})
	if !out.Direct || !out.Handled {
		t.Errorf("Outcome = %+v, want direct handled", out)
	}
	if len(out.Intents) != 0 {
		t.Errorf("direct result must not carry intents, got %v", out.Intents)
	}
	if called {
		t.Error("fallthrough must not survive a direct signal")
	}
}

func TestEvaluateNotHandledTerminates(t *testing.T) {
	s := NewSet()
	if err := s.Register("Backspace", Rule{
		ID: "decline", Priority: 5,
		Execute: func(*Context) Result { return NotHandled() },
	}); err != nil {
		t.Fatal(err)
	}
	lower := false
	if err := s.Register("Backspace", Rule{
		ID: "lower",
		Execute: func(*Context) Result {
			lower = true
			return intents("b")
		},
	}); err != nil {
		t.Fatal(err)
	}

	out := s.Evaluate("Backspace", &Context{})
	if !out.Direct || out.Handled {
		t.Errorf("Outcome = %+v, want direct not-handled", out)
	}
	if lower {
		t.Error("NotHandled is terminal, lower rules must not run")
	}
}

func TestEvaluateUnknownChord(t *testing.T) {
	s := NewSet()
	if out := s.Evaluate("F13", &Context{}); out.Matched {
		t.Error("unknown chord should not match")
	}
}

func TestSetPriorityResorts(t *testing.T) {
	s := NewSet()
	for _, id := range []string{"a", "b"} {
		if err := s.Register("Enter", Rule{ID: id, Execute: func(*Context) Result { return None() }}); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.SetPriority("b", 50); err != nil {
		t.Fatalf("SetPriority() error = %v", err)
	}
	if ids := s.RuleIDs("Enter"); ids[0] != "b" {
		t.Errorf("RuleIDs() = %v, want b first", ids)
	}
	if err := s.SetPriority("ghost", 1); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("SetPriority(ghost) error = %v, want ErrRuleNotFound", err)
	}
}

func TestSetDisabled(t *testing.T) {
	s := NewSet()
	if err := s.Register("Enter", Rule{ID: "only", Execute: func(*Context) Result { return intents("b") }}); err != nil {
		t.Fatal(err)
	}

	if err := s.SetDisabled("only", true); err != nil {
		t.Fatalf("SetDisabled() error = %v", err)
	}
	if out := s.Evaluate("Enter", &Context{}); out.Matched {
		t.Error("disabled rule matched")
	}
	if err := s.SetDisabled("only", false); err != nil {
		t.Fatal(err)
	}
	if out := s.Evaluate("Enter", &Context{}); !out.Matched {
		t.Error("re-enabled rule did not match")
	}
	if err := s.SetDisabled("ghost", true); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("SetDisabled(ghost) error = %v, want ErrRuleNotFound", err)
	}
}

func TestChords(t *testing.T) {
	s := DefaultSet()
	got := s.Chords()
	want := []string{ChordBackspace, ChordEnter, ChordShiftTab, ChordTab}
	if len(got) != len(want) {
		t.Fatalf("Chords() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Chords() = %v, want %v", got, want)
		}
	}
}
