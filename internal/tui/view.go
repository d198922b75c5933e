// Package tui renders the document tree in a terminal and reports cursor
// context back to the engine. It is the reference host surface: it mirrors
// committed snapshots, owns text-level cursor state, and never mutates the
// engine's tree directly.
package tui

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/blocktree/internal/engine/block"
	"github.com/dshills/blocktree/internal/host"
)

// View is the terminal document view. It implements host.Surface and
// host.Mirror.
type View struct {
	mu sync.Mutex

	screen tcell.Screen

	// Mirrored document snapshot; replaced wholesale on ApplyTree.
	tree *block.Tree

	// lines holds the visible blocks top to bottom. Children of collapsed
	// blocks are omitted.
	lines     []block.ID
	collapsed map[block.ID]bool

	cursorLine int
	cursorOff  int

	scroll int
	status string
}

// NewView creates a view on an initialized screen.
func NewView(screen tcell.Screen) *View {
	return &View{
		screen:    screen,
		collapsed: make(map[block.ID]bool),
	}
}

// ApplyTree replaces the mirrored snapshot and redraws.
func (v *View) ApplyTree(snapshot *block.Tree) {
	v.mu.Lock()
	v.tree = snapshot
	v.rebuildLines()
	v.clampCursor()
	v.mu.Unlock()
	v.Render()
}

// PlaceCursor moves the caret to the target block, expanding collapsed
// ancestors so it is visible.
func (v *View) PlaceCursor(target host.CursorTarget) {
	v.mu.Lock()
	if v.tree == nil || !v.tree.Contains(target.Block) {
		v.mu.Unlock()
		return
	}

	v.revealLocked(target.Block)
	for i, id := range v.lines {
		if id == target.Block {
			v.cursorLine = i
			break
		}
	}

	content := v.contentLocked(target.Block)
	switch target.Placement {
	case host.PlacementStart:
		v.cursorOff = 0
	case host.PlacementEnd:
		v.cursorOff = len(content)
	case host.PlacementOffset, host.PlacementSafe:
		v.cursorOff = clampOffset(content, target.Offset)
	}
	v.mu.Unlock()
	v.Render()
}

// KeyContext reports the cursor state for the key press being processed.
func (v *View) KeyContext() (host.KeyContext, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.tree == nil || len(v.lines) == 0 {
		return host.KeyContext{}, false
	}

	id := v.lines[v.cursorLine]
	content := v.contentLocked(id)
	off := clampOffset(content, v.cursorOff)

	return host.KeyContext{
		Block:   id,
		Offset:  off,
		IsEmpty: content == "",
		AtStart: off == 0,
		AtEnd:   off == len(content),
	}, true
}

// BlockAt translates a visible line number into a block id.
func (v *View) BlockAt(position int) block.ID {
	v.mu.Lock()
	defer v.mu.Unlock()

	if position < 0 || position >= len(v.lines) {
		return block.None
	}
	return v.lines[position]
}

// Current returns the cursor's block and byte offset.
func (v *View) Current() (block.ID, int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.lines) == 0 {
		return block.None, 0
	}
	return v.lines[v.cursorLine], v.cursorOff
}

// MoveVertical moves the caret dy visible lines, clamping the offset to the
// new block's content.
func (v *View) MoveVertical(dy int) {
	v.mu.Lock()
	line := v.cursorLine + dy
	if line < 0 {
		line = 0
	}
	if line >= len(v.lines) {
		line = len(v.lines) - 1
	}
	if line >= 0 {
		v.cursorLine = line
		v.cursorOff = clampOffset(v.contentLocked(v.lines[line]), v.cursorOff)
	}
	v.mu.Unlock()
	v.Render()
}

// MoveHorizontal moves the caret one rune left or right within the block.
func (v *View) MoveHorizontal(dx int) {
	v.mu.Lock()
	if len(v.lines) > 0 {
		content := v.contentLocked(v.lines[v.cursorLine])
		if dx < 0 && v.cursorOff > 0 {
			_, size := utf8.DecodeLastRuneInString(content[:v.cursorOff])
			v.cursorOff -= size
		} else if dx > 0 && v.cursorOff < len(content) {
			_, size := utf8.DecodeRuneInString(content[v.cursorOff:])
			v.cursorOff += size
		}
	}
	v.mu.Unlock()
	v.Render()
}

// MoveLineEdge moves the caret to the start or end of the block.
func (v *View) MoveLineEdge(end bool) {
	v.mu.Lock()
	if len(v.lines) > 0 {
		if end {
			v.cursorOff = len(v.contentLocked(v.lines[v.cursorLine]))
		} else {
			v.cursorOff = 0
		}
	}
	v.mu.Unlock()
	v.Render()
}

// ToggleCollapse folds or unfolds the cursor block's subtree.
func (v *View) ToggleCollapse() {
	v.mu.Lock()
	if len(v.lines) > 0 {
		id := v.lines[v.cursorLine]
		if v.tree.HasChildren(id) {
			v.collapsed[id] = !v.collapsed[id]
			v.rebuildLines()
			v.clampCursor()
		}
	}
	v.mu.Unlock()
	v.Render()
}

// SetStatus sets the status bar message.
func (v *View) SetStatus(msg string) {
	v.mu.Lock()
	v.status = msg
	v.mu.Unlock()
	v.Render()
}

// Render redraws the whole view.
func (v *View) Render() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.screen.Clear()
	width, height := v.screen.Size()
	if height < 2 {
		v.screen.Show()
		return
	}
	body := height - 1

	if v.cursorLine < v.scroll {
		v.scroll = v.cursorLine
	}
	if v.cursorLine >= v.scroll+body {
		v.scroll = v.cursorLine - body + 1
	}

	cursorX, cursorY := -1, -1
	for row := 0; row < body; row++ {
		idx := v.scroll + row
		if idx >= len(v.lines) {
			break
		}
		id := v.lines[idx]
		prefix := v.prefixLocked(id)
		content := v.contentLocked(id)

		style := tcell.StyleDefault
		if n, ok := v.tree.Get(id); ok && n.Type.IsHeading() {
			style = style.Bold(true)
		}

		drawString(v.screen, 0, row, prefix+content, style)
		if idx == v.cursorLine {
			off := clampOffset(content, v.cursorOff)
			cursorX = uniseg.StringWidth(prefix) + uniseg.StringWidth(content[:off])
			cursorY = row
		}
	}

	statusStyle := tcell.StyleDefault.Reverse(true)
	drawString(v.screen, 0, height-1, pad(v.status, width), statusStyle)

	if cursorX >= 0 {
		v.screen.ShowCursor(cursorX, cursorY)
	} else {
		v.screen.HideCursor()
	}
	v.screen.Show()
}

// rebuildLines flattens the tree into visible lines, skipping collapsed
// subtrees. Caller holds the lock.
func (v *View) rebuildLines() {
	v.lines = v.lines[:0]
	if v.tree == nil {
		return
	}
	root := v.tree.Root()
	if root == nil {
		return
	}
	for _, c := range root.Children {
		v.appendVisible(c)
	}
}

func (v *View) appendVisible(id block.ID) {
	n, ok := v.tree.Get(id)
	if !ok {
		return
	}
	v.lines = append(v.lines, id)
	if v.collapsed[id] {
		return
	}
	for _, c := range n.Children {
		v.appendVisible(c)
	}
}

// revealLocked expands every collapsed ancestor of id and rebuilds the
// visible lines if anything unfolded.
func (v *View) revealLocked(id block.ID) {
	changed := false
	for p := v.tree.Parent(id); p != nil; p = v.tree.Parent(p.ID) {
		if v.collapsed[p.ID] {
			delete(v.collapsed, p.ID)
			changed = true
		}
	}
	if changed {
		v.rebuildLines()
	}
}

func (v *View) clampCursor() {
	if len(v.lines) == 0 {
		v.cursorLine, v.cursorOff = 0, 0
		return
	}
	if v.cursorLine >= len(v.lines) {
		v.cursorLine = len(v.lines) - 1
	}
	v.cursorOff = clampOffset(v.contentLocked(v.lines[v.cursorLine]), v.cursorOff)
}

func (v *View) contentLocked(id block.ID) string {
	n, ok := v.tree.Get(id)
	if !ok {
		return ""
	}
	return n.Content
}

// prefixLocked builds the indent and type marker for a block line.
func (v *View) prefixLocked(id block.ID) string {
	n, ok := v.tree.Get(id)
	if !ok {
		return ""
	}
	indent := strings.Repeat("  ", maxInt(v.tree.Depth(id)-1, 0))

	switch n.Type {
	case block.TypeBulletItem:
		return indent + "• "
	case block.TypeNumberItem:
		return indent + fmt.Sprintf("%d. ", v.ordinalLocked(n))
	case block.TypeToggle:
		if v.collapsed[id] {
			return indent + "▸ "
		}
		return indent + "▾ "
	case block.TypeQuote:
		return indent + "> "
	case block.TypeCode:
		return indent + "| "
	case block.TypeHeading1:
		return indent + "# "
	case block.TypeHeading2:
		return indent + "## "
	case block.TypeHeading3:
		return indent + "### "
	default:
		return indent
	}
}

// ordinalLocked counts the run of numbered items ending at n.
func (v *View) ordinalLocked(n *block.Node) int {
	ord := 1
	for prev := v.tree.PrevSibling(n.ID); prev != nil && prev.Type == block.TypeNumberItem; prev = v.tree.PrevSibling(prev.ID) {
		ord++
	}
	return ord
}

func clampOffset(content string, off int) int {
	if off < 0 {
		return 0
	}
	if off > len(content) {
		return len(content)
	}
	// Never leave the caret inside a rune.
	for off > 0 && off < len(content) && !utf8.RuneStart(content[off]) {
		off--
	}
	return off
}

func drawString(s tcell.Screen, x, y int, text string, style tcell.Style) {
	col := x
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		runes := gr.Runes()
		s.SetContent(col, y, runes[0], runes[1:], style)
		col += gr.Width()
	}
}

func pad(s string, width int) string {
	w := uniseg.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
