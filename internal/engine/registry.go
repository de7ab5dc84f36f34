package engine

import "fmt"

// Registry holds the configured OCR engines, preserving registration order.
type Registry struct {
	order   []string
	engines map[string]Engine
}

// NewRegistry creates a new empty registry
func NewRegistry() *Registry {
	return &Registry{
		engines: make(map[string]Engine),
	}
}

// Register adds an engine to the registry. Re-registering a name replaces
// the previous engine but keeps its position.
func (r *Registry) Register(e Engine) {
	name := e.Name()
	if _, ok := r.engines[name]; !ok {
		r.order = append(r.order, name)
	}
	r.engines[name] = e
}

// Get returns the engine registered under name
func (r *Registry) Get(name string) (Engine, bool) {
	e, ok := r.engines[name]
	return e, ok
}

// Names returns the registered engine names in registration order
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Select resolves a list of engine names, preserving the requested order.
// An unknown name is an error; an empty list selects every registered
// engine.
func (r *Registry) Select(names []string) ([]Engine, error) {
	if len(names) == 0 {
		names = r.order
	}
	selected := make([]Engine, 0, len(names))
	for _, name := range names {
		e, ok := r.engines[name]
		if !ok {
			return nil, fmt.Errorf("unknown engine %q (registered: %v)", name, r.order)
		}
		selected = append(selected, e)
	}
	return selected, nil
}
