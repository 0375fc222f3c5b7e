package template

import (
	"fmt"
	"sync"
)

// BuilderFunc produces a configured builder for a named template.
type BuilderFunc func() *Builder

// Registry maps caller-supplied template keys to statically registered
// builder functions, populated explicitly at startup. Compiled templates
// are cached per key, since a Template is immutable once built.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]BuilderFunc
	compiled map[string]*Template
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
		compiled: make(map[string]*Template),
	}
}

// Register adds a builder under key, replacing any previous entry.
func (r *Registry) Register(key string, fn BuilderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[key] = fn
	delete(r.compiled, key)
}

// Lookup retrieves a registered builder function.
func (r *Registry) Lookup(key string) (BuilderFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.builders[key]
	return fn, ok
}

// Compile builds (or returns the cached) template for key.
func (r *Registry) Compile(key string) (*Template, error) {
	r.mu.RLock()
	if tmpl, ok := r.compiled[key]; ok {
		r.mu.RUnlock()
		return tmpl, nil
	}
	fn, ok := r.builders[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no template registered under key %q", key)
	}
	tmpl, err := fn().Build()
	if err != nil {
		return nil, fmt.Errorf("compiling template %q: %w", key, err)
	}
	r.mu.Lock()
	r.compiled[key] = tmpl
	r.mu.Unlock()
	return tmpl, nil
}

// DefaultRegistry backs the package-level Register and Compile.
var DefaultRegistry = NewRegistry()

// Register adds a builder to the default registry.
func Register(key string, fn BuilderFunc) { DefaultRegistry.Register(key, fn) }

// Compile builds a template from the default registry.
func Compile(key string) (*Template, error) { return DefaultRegistry.Compile(key) }
