package codec

import "sync"

// Registry manages the available acceleration backends
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Accelerator
	first    Accelerator
}

var defaultRegistry = &Registry{
	backends: make(map[string]Accelerator),
}

// Register registers a backend with the default registry
func Register(a Accelerator) {
	defaultRegistry.Register(a)
}

// Get retrieves a backend by name from the default registry
func Get(name string) (Accelerator, error) {
	return defaultRegistry.Get(name)
}

// Default returns the first backend registered with the default registry
func Default() (Accelerator, error) {
	return defaultRegistry.Default()
}

// List returns all backends in the default registry
func List() []Accelerator {
	return defaultRegistry.List()
}

// Register registers a backend under its name. Registering a second backend
// under the same name replaces the first.
func (r *Registry) Register(a Accelerator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backends[a.Name()] = a
	if r.first == nil {
		r.first = a
	}
}

// Get retrieves a backend by name
func (r *Registry) Get(name string) (Accelerator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.backends[name]
	if !ok {
		return nil, ErrBackendNotFound
	}
	return a, nil
}

// Default returns the first registered backend, or ErrNoAccelerator when
// the registry is empty
func (r *Registry) Default() (Accelerator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.first == nil {
		return nil, ErrNoAccelerator
	}
	return r.first, nil
}

// List returns all registered backends
func (r *Registry) List() []Accelerator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	backends := make([]Accelerator, 0, len(r.backends))
	for _, a := range r.backends {
		backends = append(backends, a)
	}

	return backends
}
