// Package block implements the canonical block-tree document model.
//
// A document is a flat map of typed nodes addressed by id, with a designated
// root node and parent/children links forming a tree. All structural edits go
// through the mutation primitives on Tree (Delete, Indent, Outdent, Split,
// Create, ConvertType); each primitive either fully succeeds or leaves the
// tree untouched.
//
// The package enforces the structural invariants:
//
//   - every non-root node's parent exists and lists the node as a child
//   - children order is the authoritative sibling order
//   - no cycles: every parent chain terminates at the root
//   - the root always has at least one child block
//   - a node's id never changes (type conversion replaces the node instead)
package block
