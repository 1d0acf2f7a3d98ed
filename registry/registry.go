// Package registry implements the name→definition tool registry. A copy-on-write map lets Reload and InstallTool
// swap in a new tool set atomically while the Invoke step reads a
// consistent snapshot between batches.
package registry

import (
	"errors"
	"sync"

	"github.com/gloop-agent/gloop/agent"
)

var (
	// ErrToolUnregistered is returned when Register is given a definition
	// missing a name.
	ErrToolUnregistered = errors.New("registry: tool has no name")

	// ErrNilExecute is returned when Register is given a definition with no
	// Execute function.
	ErrNilExecute = errors.New("registry: tool has no execute function")
)

// Registry is a copy-on-write, concurrency-safe implementation of
// agent.Registry.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]agent.ToolDefinition
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{defs: map[string]agent.ToolDefinition{}}
}

// Lookup resolves a tool by name.
func (r *Registry) Lookup(name string) (agent.ToolDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return d, ok
}

// All returns every registered tool definition, in no particular order.
func (r *Registry) All() []agent.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]agent.ToolDefinition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// Register adds or replaces a tool definition by name. It swaps in a new
// map rather than mutating the old one in place, so a reader holding a
// snapshot via All is never affected mid-iteration.
func (r *Registry) Register(def agent.ToolDefinition) {
	if def.Name == "" || def.Execute == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make(map[string]agent.ToolDefinition, len(r.defs)+1)
	for k, v := range r.defs {
		next[k] = v
	}
	next[def.Name] = def
	r.defs = next
}

// MustRegister registers def or returns a descriptive error without
// mutating the registry, for callers building a tool set up front (e.g. at
// process startup, before any Eval has started reading it).
func MustRegister(r *Registry, def agent.ToolDefinition) error {
	if def.Name == "" {
		return ErrToolUnregistered
	}
	if def.Execute == nil {
		return ErrNilExecute
	}
	r.Register(def)
	return nil
}

// Names returns every registered tool's name, in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.defs))
	for name := range r.defs {
		out = append(out, name)
	}
	return out
}
