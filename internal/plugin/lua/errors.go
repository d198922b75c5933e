package lua

import "errors"

// Plugin runtime errors.
var (
	// ErrStateClosed is returned when using a closed Lua state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrInvalidRule is returned when a script passes a malformed rule
	// table to blocktree.rule.
	ErrInvalidRule = errors.New("invalid plugin rule")
)
