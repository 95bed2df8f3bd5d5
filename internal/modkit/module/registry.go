package module

import "sync"

// Registry holds the port sets modules publish while the api is composed
type Registry struct {
	mu  sync.RWMutex
	reg map[string]any
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry { return &Registry{reg: map[string]any{}} }

// Register stores the port set of each module under its name
func (r *Registry) Register(mods ...Module) {
	r.mu.Lock()
	for _, m := range mods {
		r.reg[m.Name()] = m.Ports()
	}
	r.mu.Unlock()
}

// PortsAs fetches and type asserts a port set for name
func PortsAs[T any](r *Registry, name string) (T, bool) {
	r.mu.RLock()
	v, ok := r.reg[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}

// MustPortsAs is PortsAs that panics with the module name when the port set is missing
func MustPortsAs[T any](r *Registry, name string) T {
	if v, ok := PortsAs[T](r, name); ok {
		return v
	}
	panic("module: requested port not found on module " + name)
}
