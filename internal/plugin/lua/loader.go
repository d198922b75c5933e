package lua

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dshills/blocktree/internal/input/rules"
)

// Loader owns the shared Lua state for a plugin directory.
type Loader struct {
	state  *State
	bridge *Bridge
}

// NewLoader creates a loader whose scripts register rules into set.
func NewLoader(set *rules.Set) *Loader {
	state := NewState()
	return &Loader{
		state:  state,
		bridge: NewBridge(state, set),
	}
}

// LoadDir executes every *.lua script in dir in lexical order. A missing
// directory is not an error; a failing script is reported and stops the
// load so rule registration order stays predictable.
func (l *Loader) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading plugin dir %s: %w", dir, err)
	}

	var scripts []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".lua" {
			continue
		}
		scripts = append(scripts, filepath.Join(dir, e.Name()))
	}
	sort.Strings(scripts)

	for _, path := range scripts {
		if err := l.state.DoFile(path); err != nil {
			return fmt.Errorf("plugin %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

// LoadScript executes a single script from source, for tests and inline
// configuration.
func (l *Loader) LoadScript(code string) error {
	return l.state.DoString(code)
}

// Close shuts down the Lua runtime.
func (l *Loader) Close() error {
	return l.state.Close()
}
