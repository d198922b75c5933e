// Package app wires the engine, rule set, plugins, and terminal view into
// the blocktree editor application.
package app

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/blocktree/internal/config"
	"github.com/dshills/blocktree/internal/dispatcher"
	"github.com/dshills/blocktree/internal/doc"
	"github.com/dshills/blocktree/internal/engine"
	"github.com/dshills/blocktree/internal/engine/block"
	"github.com/dshills/blocktree/internal/engine/history"
	"github.com/dshills/blocktree/internal/event"
	"github.com/dshills/blocktree/internal/host"
	"github.com/dshills/blocktree/internal/input/key"
	"github.com/dshills/blocktree/internal/input/rules"
	"github.com/dshills/blocktree/internal/plugin/lua"
	"github.com/dshills/blocktree/internal/tui"
)

// Options configures the application.
type Options struct {
	// ConfigPath overrides the default config file location.
	ConfigPath string

	// DocPath is the document to open. Empty starts a fresh document.
	DocPath string

	// PluginDir overrides the configured Lua plugin directory.
	PluginDir string
}

// App is the running editor.
type App struct {
	opts Options
	cfg  *config.Config

	eng     *engine.Engine
	ruleSet *rules.Set
	plugins *lua.Loader

	screen   tcell.Screen
	view     *tui.View
	boundary *host.Boundary
	disp     *dispatcher.Dispatcher

	cfgWatcher *config.Watcher
}

// New builds the application: configuration, rules, plugins, engine, and
// document. The terminal is not touched until Run.
func New(opts Options) (*App, error) {
	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		opts:    opts,
		cfg:     cfg,
		ruleSet: rules.DefaultSet(),
	}

	if cfg.Plugins.Enabled {
		a.plugins = lua.NewLoader(a.ruleSet)
		dir := opts.PluginDir
		if dir == "" {
			dir = cfg.Plugins.Dir
		}
		if dir != "" {
			if err := a.plugins.LoadDir(dir); err != nil {
				return nil, err
			}
		}
	}
	if err := config.Apply(cfg, a.ruleSet); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	a.eng = engine.NewEmpty(engine.WithMaxUndoEntries(cfg.History.MaxEntries))

	tree, err := a.openDocument()
	if err != nil {
		return nil, err
	}
	a.eng.Attach(tree)

	if cfgPath != "" {
		a.cfgWatcher, err = config.Watch(cfgPath, a.onConfigReload)
		if err != nil {
			// Live reload is a convenience, not a requirement.
			a.cfgWatcher = nil
		}
	}

	return a, nil
}

// openDocument loads the requested file, or builds a fresh tree when the
// file is absent or no path was given.
func (a *App) openDocument() (*block.Tree, error) {
	if a.opts.DocPath == "" {
		return block.NewTree(), nil
	}
	if _, err := os.Stat(a.opts.DocPath); os.IsNotExist(err) {
		return block.NewTree(), nil
	}
	return doc.Load(a.opts.DocPath)
}

// Run initializes the terminal and processes events until quit.
func (a *App) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	a.screen = screen
	defer screen.Fini()

	a.view = tui.NewView(screen)
	a.boundary = host.NewBoundary(a.eng, a.view)
	defer a.boundary.Close()
	a.disp = dispatcher.New(a.eng, a.view, dispatcher.WithRules(a.ruleSet))

	a.eng.Bus().Subscribe(event.TopicDeferred, func(_ event.Topic, e any) {
		if d, ok := e.(event.Deferred); ok {
			a.view.SetStatus("deferred: " + d.Reason)
		}
	})

	a.view.ApplyTree(a.eng.Snapshot())
	a.updateStatus("")

	for {
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
			a.view.Render()

		case *tcell.EventKey:
			quit, err := a.handleKey(ev)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}

		case nil:
			return nil
		}
	}
}

// handleKey routes one key press: application chords first, then the
// structural dispatcher, then plain text editing.
func (a *App) handleKey(ev *tcell.EventKey) (quit bool, err error) {
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return true, nil
	case tcell.KeyCtrlS:
		a.save()
		return false, nil
	case tcell.KeyCtrlSpace:
		a.view.ToggleCollapse()
		return false, nil
	}

	kev, ok := tui.FromTcell(ev)
	if !ok {
		return false, nil
	}

	if a.disp.HandleKey(kev) {
		a.updateStatus("")
		return false, nil
	}
	a.handleText(kev)
	return false, nil
}

// handleText applies host-level editing for keys the rule set declined:
// caret movement and in-block text changes.
func (a *App) handleText(kev key.Event) {
	switch kev.Key {
	case key.KeyUp:
		a.view.MoveVertical(-1)
	case key.KeyDown:
		a.view.MoveVertical(1)
	case key.KeyLeft:
		a.view.MoveHorizontal(-1)
	case key.KeyRight:
		a.view.MoveHorizontal(1)
	case key.KeyHome:
		a.view.MoveLineEdge(false)
	case key.KeyEnd:
		a.view.MoveLineEdge(true)
	case key.KeyBackspace:
		a.deleteRuneBefore()
	case key.KeyRune, key.KeySpace:
		r := kev.Rune
		if kev.Key == key.KeySpace {
			r = ' '
		}
		if kev.Modifiers.Without(key.ModShift).IsEmpty() {
			a.insertRune(r)
		}
	}
}

// insertRune edits the cursor block's content through the command stack so
// typing is undoable like everything else.
func (a *App) insertRune(r rune) {
	id, off := a.view.Current()
	if id.IsNone() {
		return
	}
	n := a.eng.GetBlock(id)
	if n == nil {
		return
	}
	if off > len(n.Content) {
		off = len(n.Content)
	}

	content := n.Content[:off] + string(r) + n.Content[off:]
	if err := a.eng.Dispatch(history.NewEditContentCommand(id, content)); err != nil {
		return
	}
	a.view.PlaceCursor(host.CursorTarget{
		Block:     id,
		Placement: host.PlacementOffset,
		Offset:    off + utf8.RuneLen(r),
	})
	a.updateStatus("")
}

// deleteRuneBefore removes the rune before the caret. Structural backspace
// at offset zero is the dispatcher's business and never reaches here.
func (a *App) deleteRuneBefore() {
	id, off := a.view.Current()
	if id.IsNone() || off == 0 {
		return
	}
	n := a.eng.GetBlock(id)
	if n == nil || off > len(n.Content) {
		return
	}

	_, size := utf8.DecodeLastRuneInString(n.Content[:off])
	content := n.Content[:off-size] + n.Content[off:]
	if err := a.eng.Dispatch(history.NewEditContentCommand(id, content)); err != nil {
		return
	}
	a.view.PlaceCursor(host.CursorTarget{
		Block:     id,
		Placement: host.PlacementOffset,
		Offset:    off - size,
	})
	a.updateStatus("")
}

// save writes the document back to its file.
func (a *App) save() {
	if a.opts.DocPath == "" {
		a.view.SetStatus("no file to save to")
		return
	}
	snapshot := a.eng.Snapshot()
	if snapshot == nil {
		return
	}
	if err := doc.Save(snapshot, a.opts.DocPath); err != nil {
		a.view.SetStatus("save failed: " + err.Error())
		return
	}
	a.view.SetStatus("saved " + a.opts.DocPath)
}

// onConfigReload applies a changed config file to the live rule set.
func (a *App) onConfigReload(cfg *config.Config, err error) {
	if err != nil {
		if a.view != nil {
			a.view.SetStatus("config reload failed: " + err.Error())
		}
		return
	}
	a.cfg = cfg
	a.eng.History().SetMaxEntries(cfg.History.MaxEntries)
	if err := config.Apply(cfg, a.ruleSet); err != nil && a.view != nil {
		a.view.SetStatus("config reload: " + err.Error())
		return
	}
	if a.view != nil {
		a.view.SetStatus("config reloaded")
	}
}

// updateStatus refreshes the status bar with document facts.
func (a *App) updateStatus(extra string) {
	if a.view == nil {
		return
	}
	name := a.opts.DocPath
	if name == "" {
		name = "[new document]"
	}
	msg := fmt.Sprintf("%s  blocks:%d  undo:%d", name, a.blockCount(), a.eng.History().UndoCount())
	if extra != "" {
		msg += "  " + extra
	}
	a.view.SetStatus(msg)
}

func (a *App) blockCount() int {
	tree := a.eng.Tree()
	if tree == nil {
		return 0
	}
	return tree.Len() - 1
}

// Shutdown releases background resources. Safe to call more than once.
func (a *App) Shutdown() {
	if a.cfgWatcher != nil {
		a.cfgWatcher.Close()
		a.cfgWatcher = nil
	}
	if a.plugins != nil {
		a.plugins.Close()
		a.plugins = nil
	}
}
