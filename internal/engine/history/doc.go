// Package history provides the reversible command layer over the block tree.
//
// Every structural mutation is wrapped in a Command that captures enough
// prior state during Execute to invert itself exactly. Commands are pushed
// onto an undo stack by History; undoing moves them to the redo stack and
// vice versa, so any sequence of execute/undo/redo leaves the tree
// structurally identical to replaying only the net-effective commands.
//
// Commands can be grouped: BeginGroup/EndGroup combine every command pushed
// in between into a single CompoundCommand that undoes as one unit. Batch
// intent resolution uses this so one key press is always one undo step.
package history
