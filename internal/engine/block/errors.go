package block

import "errors"

// Errors returned by tree operations.
var (
	// ErrNotFound indicates the target block id is absent from the tree.
	ErrNotFound = errors.New("block not found")

	// ErrRootImmutable indicates a structural operation targeted the root.
	ErrRootImmutable = errors.New("root block cannot be modified structurally")

	// ErrInvariantViolation indicates an operation would corrupt the tree
	// (orphan a node, create a cycle, or empty the document body).
	ErrInvariantViolation = errors.New("tree invariant violation")

	// ErrNoOp indicates a valid operation that deliberately mutates nothing,
	// such as outdenting a root-level paragraph. It is a control signal, not
	// a failure; callers consume it and skip the history push.
	ErrNoOp = errors.New("structural no-op")

	// ErrInvalidType indicates an unknown block type was supplied.
	ErrInvalidType = errors.New("invalid block type")

	// ErrDuplicateID indicates an id-preserving restore collided with a
	// live node.
	ErrDuplicateID = errors.New("duplicate block id")
)
