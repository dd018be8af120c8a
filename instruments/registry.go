// Package instruments holds the registry of available instrument modules
// and the built-in modules that ship with pysat.
package instruments

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/JonathonMSmith/pysat/instrument"
	"github.com/JonathonMSmith/pysat/instruments/testmodel"
)

// Constructor builds a fresh module instance.
type Constructor func() instrument.Module

// Registry is a thread-safe map from "platform_name" to module
// constructors.
type Registry struct {
	mu   sync.RWMutex
	mods map[string]Constructor
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{mods: make(map[string]Constructor)}
}

func key(platform, name string) string {
	return strings.ToLower(platform) + "_" + strings.ToLower(name)
}

// Register adds a module constructor. It returns an error if the
// platform/name pair is already registered.
func (r *Registry) Register(platform, name string, c Constructor) error {
	if c == nil {
		return fmt.Errorf("nil constructor for %s %s", platform, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(platform, name)
	if _, exists := r.mods[k]; exists {
		return fmt.Errorf("instrument %q already registered", k)
	}
	r.mods[k] = c
	return nil
}

// Lookup returns the constructor for a platform/name pair.
func (r *Registry) Lookup(platform, name string) (Constructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.mods[key(platform, name)]
	if !ok {
		return nil, fmt.Errorf("unknown instrument %q", key(platform, name))
	}
	return c, nil
}

// List returns the registered "platform_name" keys, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.mods))
	for k := range r.mods {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Default is the registry the built-in modules register into.
var Default = NewRegistry()

func init() {
	// The simulated test instrument, platform "pysat" name "testing".
	if err := Default.Register("pysat", "testing", func() instrument.Module {
		return testmodel.New(testmodel.Config{})
	}); err != nil {
		panic(err)
	}
}
