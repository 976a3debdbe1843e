// Package registry provides a global registry for demo factories.
// Demos register themselves in init() functions, allowing the CLI and the
// SSH server to discover and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/sahilm/fuzzy"

	"github.com/vovakirdan/termfx/internal/core"
	"github.com/vovakirdan/termfx/internal/engine"
	"github.com/vovakirdan/termfx/internal/font"
	"github.com/vovakirdan/termfx/internal/gfx"
)

// Env is what a demo gets to build its program from.
type Env struct {
	Config core.RuntimeConfig
	Font   *font.Font  // never nil; the built-in font when none is configured
	Sprite gfx.Image   // optional sprite loaded from the assets config
	Logger *log.Logger // never nil
}

// Demo is the interface every engine demo implements.
// A demo holds no engine state of its own: it hands back callbacks that
// close over a fresh, lock-guarded state object.
type Demo interface {
	// ID returns a unique identifier (e.g., "planes", "shapes").
	// Used for CLI arguments, SSH commands and run statistics.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Backend names the backend the demo is designed for ("halfblock" or "tile").
	Backend() string

	// Program builds a new, independent program instance.
	Program(env Env) engine.Program
}

// DemoInfo contains metadata about a registered demo.
type DemoInfo struct {
	ID      string
	Title   string
	Backend string
}

// Factory is a function that creates a new instance of a demo.
type Factory func() Demo

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]DemoInfo)
	mu        sync.RWMutex
)

// Register adds a demo factory to the registry.
// Typically called from a demo's init() function.
// Panics if a demo with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: demo %q already registered", id))
	}

	factories[id] = f

	d := f()
	infos[id] = DemoInfo{ID: id, Title: d.Title(), Backend: d.Backend()}
}

// List returns information about all registered demos, sorted by ID.
func List() []DemoInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]DemoInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new demo by its ID.
// Returns an error if the demo ID is not registered.
func Create(id string) (Demo, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown demo %q", id)
	}

	return f(), nil
}

// Exists checks if a demo with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}

// Suggest returns registered IDs that fuzzily match id, best first.
func Suggest(id string) []string {
	mu.RLock()
	ids := make([]string, 0, len(factories))
	for k := range factories {
		ids = append(ids, k)
	}
	mu.RUnlock()

	sort.Strings(ids)
	matches := fuzzy.Find(id, ids)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return out
}

// reset clears the registry. Tests only.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	factories = make(map[string]Factory)
	infos = make(map[string]DemoInfo)
}
