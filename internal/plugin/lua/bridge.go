package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/blocktree/internal/engine/block"
	"github.com/dshills/blocktree/internal/input/rules"
	"github.com/dshills/blocktree/internal/intent"
)

// Bridge exposes the blocktree module to scripts and turns their rule
// tables into registered rules.
type Bridge struct {
	state *State
	set   *rules.Set

	// regErr holds the first registration failure raised inside a script.
	regErr error
}

// NewBridge installs the blocktree module into the state.
func NewBridge(state *State, set *rules.Set) *Bridge {
	b := &Bridge{state: state, set: set}
	state.RegisterModule("blocktree", map[string]lua.LGFunction{
		"rule": b.registerRule,
	})
	return b
}

// registerRule implements blocktree.rule{...}.
func (b *Bridge) registerRule(L *lua.LState) int {
	tbl := L.CheckTable(1)

	id := lua.LVAsString(tbl.RawGetString("id"))
	chord := lua.LVAsString(tbl.RawGetString("chord"))
	if id == "" || chord == "" {
		L.RaiseError("rule requires id and chord")
		return 0
	}

	execFn, ok := tbl.RawGetString("execute").(*lua.LFunction)
	if !ok {
		L.RaiseError("rule %q requires an execute function", id)
		return 0
	}
	whenFn, _ := tbl.RawGetString("when").(*lua.LFunction)

	priority := rules.PriorityPlugin
	if p, ok := tbl.RawGetString("priority").(lua.LNumber); ok {
		priority = int(p)
	}
	fallthru := lua.LVAsBool(tbl.RawGetString("fallthrough"))

	r := rules.Rule{
		ID:          id,
		Priority:    priority,
		Fallthrough: fallthru,
		Execute:     b.executor(id, execFn),
	}
	if whenFn != nil {
		r.When = b.predicate(whenFn)
	}

	if err := b.set.Register(chord, r); err != nil {
		if b.regErr == nil {
			b.regErr = err
		}
		L.RaiseError("registering rule %q: %s", id, err.Error())
		return 0
	}
	return 0
}

// predicate wraps a Lua when function. Script errors count as no match.
func (b *Bridge) predicate(fn *lua.LFunction) func(*rules.Context) bool {
	return func(ctx *rules.Context) bool {
		ret, err := b.state.call(fn, b.contextTable(ctx))
		if err != nil {
			return false
		}
		return lua.LVAsBool(ret)
	}
}

// executor wraps a Lua execute function. Script errors leave the key to
// the host surface rather than guessing at a mutation.
func (b *Bridge) executor(id string, fn *lua.LFunction) func(*rules.Context) rules.Result {
	return func(ctx *rules.Context) rules.Result {
		ret, err := b.state.call(fn, b.contextTable(ctx))
		if err != nil {
			return rules.NotHandled()
		}

		switch v := ret.(type) {
		case lua.LBool:
			if bool(v) {
				return rules.Handled()
			}
			return rules.NotHandled()
		case *lua.LTable:
			ints, err := intentsFromTable(v)
			if err != nil {
				return rules.NotHandled()
			}
			return rules.Intents(ints...)
		default:
			return rules.NotHandled()
		}
	}
}

// contextTable converts a rule context to the table handed to scripts.
func (b *Bridge) contextTable(ctx *rules.Context) *lua.LTable {
	b.state.mu.Lock()
	L := b.state.L
	tbl := L.NewTable()
	tbl.RawSetString("chord", lua.LString(ctx.Key.Chord()))
	tbl.RawSetString("block", lua.LString(ctx.Block))
	tbl.RawSetString("type", lua.LString(ctx.Type))
	tbl.RawSetString("offset", lua.LNumber(ctx.Offset))
	tbl.RawSetString("is_empty", lua.LBool(ctx.IsEmpty))
	tbl.RawSetString("at_start", lua.LBool(ctx.AtStart))
	tbl.RawSetString("at_end", lua.LBool(ctx.AtEnd))
	tbl.RawSetString("has_children", lua.LBool(ctx.HasChildren))
	tbl.RawSetString("can_have_children", lua.LBool(ctx.CanHaveChildren))
	tbl.RawSetString("depth", lua.LNumber(ctx.Depth))
	tbl.RawSetString("in_hidden_range", lua.LBool(ctx.InHiddenRange))
	tbl.RawSetString("hidden_anchor", lua.LString(ctx.HiddenAnchor))

	sel := L.NewTable()
	for i, id := range ctx.Selection {
		sel.RawSetInt(i+1, lua.LString(id))
	}
	tbl.RawSetString("selection", sel)
	b.state.mu.Unlock()
	return tbl
}

// intentsFromTable parses an array of intent tables.
func intentsFromTable(tbl *lua.LTable) ([]intent.Intent, error) {
	var out []intent.Intent
	var parseErr error

	tbl.ForEach(func(_, v lua.LValue) {
		if parseErr != nil {
			return
		}
		item, ok := v.(*lua.LTable)
		if !ok {
			parseErr = fmt.Errorf("%w: intent entries must be tables", ErrInvalidRule)
			return
		}

		kind := intent.Kind(lua.LVAsString(item.RawGetString("kind")))
		if !kind.Valid() {
			parseErr = fmt.Errorf("%w: unknown intent kind %q", ErrInvalidRule, kind)
			return
		}

		it := intent.Intent{
			Kind:  kind,
			Block: block.ID(lua.LVAsString(item.RawGetString("block"))),
		}
		if n, ok := item.RawGetString("offset").(lua.LNumber); ok {
			it.Offset = int(n)
		}
		if t := lua.LVAsString(item.RawGetString("type")); t != "" {
			it.Type = block.Type(t)
		}
		out = append(out, it)
	})

	return out, parseErr
}
