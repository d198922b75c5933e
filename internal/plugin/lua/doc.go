// Package lua loads user rule scripts into a sandboxed Lua runtime and
// registers the rules they declare with the key rule set.
//
// Scripts call blocktree.rule{...} with a chord, an id, and Lua functions
// for the match predicate and the executor. The executor returns an array
// of intent tables, true to claim the key directly, or nil to decline.
package lua
