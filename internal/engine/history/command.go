package history

import (
	"fmt"

	"github.com/dshills/blocktree/internal/engine/block"
)

// Command represents a structural edit that can be executed and undone.
type Command interface {
	// Execute performs the command against the tree.
	Execute(tree *block.Tree) error

	// Undo reverses the command. Only valid after a successful Execute.
	Undo(tree *block.Tree) error

	// Description returns a human-readable description of the command.
	Description() string
}

// DeleteBlockCommand removes a block, promoting its direct children into its
// former parent at its former index.
type DeleteBlockCommand struct {
	Block block.ID

	result *block.DeleteResult
}

// NewDeleteBlockCommand creates a delete command for the given block.
func NewDeleteBlockCommand(id block.ID) *DeleteBlockCommand {
	return &DeleteBlockCommand{Block: id}
}

// Execute removes the block and records the inverse state. A redo after
// undo re-applies the recorded delete so any normalization paragraph keeps
// its id.
func (c *DeleteBlockCommand) Execute(tree *block.Tree) error {
	if c.result != nil {
		return tree.Redelete(c.result)
	}
	res, err := tree.Delete(c.Block)
	if err != nil {
		return err
	}
	c.result = res
	return nil
}

// Undo reinserts the deleted block and reclaims its promoted children.
func (c *DeleteBlockCommand) Undo(tree *block.Tree) error {
	if c.result == nil {
		return fmt.Errorf("undo delete %s: command was never executed", c.Block)
	}
	return tree.RestoreDeleted(c.result)
}

// Result returns the delete record from the last Execute, or nil.
func (c *DeleteBlockCommand) Result() *block.DeleteResult {
	return c.result
}

// Description returns a human-readable description.
func (c *DeleteBlockCommand) Description() string {
	return "Delete block"
}

// IndentCommand nests a block under its previous sibling.
type IndentCommand struct {
	Block block.ID

	result *block.MoveResult
}

// NewIndentCommand creates an indent command for the given block.
func NewIndentCommand(id block.ID) *IndentCommand {
	return &IndentCommand{Block: id}
}

// Execute reparents the block under its previous sibling.
func (c *IndentCommand) Execute(tree *block.Tree) error {
	res, err := tree.Indent(c.Block)
	if err != nil {
		return err
	}
	c.result = res
	return nil
}

// Undo moves the block back to its former parent and index.
func (c *IndentCommand) Undo(tree *block.Tree) error {
	if c.result == nil {
		return fmt.Errorf("undo indent %s: command was never executed", c.Block)
	}
	_, err := tree.Move(c.Block, c.result.OldParent, c.result.OldIndex)
	return err
}

// Description returns a human-readable description.
func (c *IndentCommand) Description() string {
	return "Indent block"
}

// OutdentCommand moves a nested block out to its grandparent, or degrades a
// root-level block to its lower form.
type OutdentCommand struct {
	Block block.ID

	result *block.OutdentResult
}

// NewOutdentCommand creates an outdent command for the given block.
func NewOutdentCommand(id block.ID) *OutdentCommand {
	return &OutdentCommand{Block: id}
}

// Execute outdents the block and records which form the operation took.
// A redo of the degrade form re-applies the recorded conversion so the
// replacement block keeps its id.
func (c *OutdentCommand) Execute(tree *block.Tree) error {
	if c.result != nil && c.result.Converted != nil {
		return tree.ReapplyConvert(c.result.Converted)
	}
	res, err := tree.Outdent(c.Block)
	if err != nil {
		return err
	}
	c.result = res
	return nil
}

// Undo reverses the move or the type conversion, whichever happened.
func (c *OutdentCommand) Undo(tree *block.Tree) error {
	switch {
	case c.result == nil:
		return fmt.Errorf("undo outdent %s: command was never executed", c.Block)
	case c.result.Converted != nil:
		return tree.RevertConvert(c.result.Converted)
	case c.result.Moved != nil:
		m := c.result.Moved
		_, err := tree.Move(m.Block, m.OldParent, m.OldIndex)
		return err
	}
	return nil
}

// Result returns the outdent record from the last Execute, or nil.
func (c *OutdentCommand) Result() *block.OutdentResult {
	return c.result
}

// Description returns a human-readable description.
func (c *OutdentCommand) Description() string {
	return "Outdent block"
}

// SplitBlockCommand divides a block at a content offset, creating a new
// trailing sibling.
type SplitBlockCommand struct {
	Block  block.ID
	Offset int

	result *block.SplitResult
}

// NewSplitBlockCommand creates a split command.
func NewSplitBlockCommand(id block.ID, offset int) *SplitBlockCommand {
	return &SplitBlockCommand{Block: id, Offset: offset}
}

// Execute splits the block and records the original content. A redo after
// undo re-applies the recorded split so the tail keeps its id.
func (c *SplitBlockCommand) Execute(tree *block.Tree) error {
	if c.result != nil {
		return tree.Resplit(c.result)
	}
	res, err := tree.Split(c.Block, c.Offset)
	if err != nil {
		return err
	}
	c.result = res
	return nil
}

// Undo removes the trailing sibling and restores the original content.
func (c *SplitBlockCommand) Undo(tree *block.Tree) error {
	if c.result == nil {
		return fmt.Errorf("undo split %s: command was never executed", c.Block)
	}
	return tree.Unsplit(c.result)
}

// Result returns the split record from the last Execute, or nil.
func (c *SplitBlockCommand) Result() *block.SplitResult {
	return c.result
}

// Description returns a human-readable description.
func (c *SplitBlockCommand) Description() string {
	return "Split block"
}

// CreateBlockCommand inserts a new block with a fresh id.
type CreateBlockCommand struct {
	Spec block.Spec

	created block.ID
}

// NewCreateBlockCommand creates a command that inserts the described block.
func NewCreateBlockCommand(spec block.Spec) *CreateBlockCommand {
	return &CreateBlockCommand{Spec: spec}
}

// Execute inserts the block. A redo after undo reinserts it under the id
// issued the first time.
func (c *CreateBlockCommand) Execute(tree *block.Tree) error {
	if !c.created.IsNone() {
		return tree.RestoreLeaf(c.Spec, c.created)
	}
	n, err := tree.Create(c.Spec)
	if err != nil {
		return err
	}
	c.created = n.ID
	return nil
}

// Undo removes the created block.
func (c *CreateBlockCommand) Undo(tree *block.Tree) error {
	if c.created.IsNone() {
		return fmt.Errorf("undo create: command was never executed")
	}
	return tree.RemoveLeaf(c.created)
}

// Created returns the id of the block inserted by the last Execute.
func (c *CreateBlockCommand) Created() block.ID {
	return c.created
}

// Description returns a human-readable description.
func (c *CreateBlockCommand) Description() string {
	return fmt.Sprintf("Create %s", c.Spec.Type)
}

// EditContentCommand replaces a block's text content.
type EditContentCommand struct {
	ID      block.ID
	Content string

	old string
}

// NewEditContentCommand creates a content replacement command.
func NewEditContentCommand(id block.ID, content string) *EditContentCommand {
	return &EditContentCommand{ID: id, Content: content}
}

// Execute replaces the content, remembering the previous value.
func (c *EditContentCommand) Execute(tree *block.Tree) error {
	old, err := tree.SetContent(c.ID, c.Content)
	if err != nil {
		return err
	}
	c.old = old
	return nil
}

// Undo restores the previous content.
func (c *EditContentCommand) Undo(tree *block.Tree) error {
	_, err := tree.SetContent(c.ID, c.old)
	return err
}

// Description returns a human-readable description.
func (c *EditContentCommand) Description() string {
	return "Edit content"
}

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name     string
	Commands []Command
}

// NewCompoundCommand creates a compound command.
func NewCompoundCommand(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{Name: name, Commands: commands}
}

// Execute runs all commands in order. If a step fails, the already-executed
// steps are undone so the tree is left untouched.
func (c *CompoundCommand) Execute(tree *block.Tree) error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(tree); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo(tree)
			}
			return fmt.Errorf("compound command %q step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Undo reverses all commands in reverse order.
func (c *CompoundCommand) Undo(tree *block.Tree) error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(tree); err != nil {
			return fmt.Errorf("undo compound command %q step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Add appends a command to the group.
func (c *CompoundCommand) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// IsEmpty returns true if the group holds no commands.
func (c *CompoundCommand) IsEmpty() bool {
	return len(c.Commands) == 0
}

// Description returns the group's name.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d operations", len(c.Commands))
}
