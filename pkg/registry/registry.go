package registry

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/aretw0/patchbay/pkg/domain"
)

// Registry maps kind names to their ordered input slots.
// It is learned once per session from the backend greeting.
// Safe for concurrent use, so a backend can share one catalog across connections.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string][]string
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		kinds: make(map[string][]string),
	}
}

// FromKindInputs builds a registry from a hello payload.
func FromKindInputs(kindInputs map[string][]string) *Registry {
	r := NewRegistry()
	for k, in := range kindInputs {
		r.Register(k, in)
	}
	return r
}

// Register adds a kind to the registry.
// Registering the same kind again replaces its slot list; it never duplicates.
// It reports whether the kind is the engine, which callers must instantiate
// right away instead of offering it in a palette.
func (r *Registry) Register(kind string, inputs []string) (isEngine bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind] = slices.Clone(inputs)
	return kind == domain.EngineKind
}

// InputsFor returns a copy of the ordered input slots of kind.
// Returns domain.ErrUnknownKind if the kind was never registered.
func (r *Registry) InputsFor(kind string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	in, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownKind, kind)
	}
	return slices.Clone(in), nil
}

// Kind returns the full kind description.
func (r *Registry) Kind(kind string) (domain.Kind, error) {
	in, err := r.InputsFor(kind)
	if err != nil {
		return domain.Kind{}, err
	}
	return domain.Kind{Name: kind, Inputs: in}, nil
}

// Kinds returns every registered kind name, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Palette returns the kinds a user may place, i.e. every kind but the engine.
func (r *Registry) Palette() []string {
	return slices.DeleteFunc(r.Kinds(), func(k string) bool {
		return k == domain.EngineKind
	})
}

// KindInputs returns the registry content in hello payload form.
func (r *Registry) KindInputs() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := make(map[string][]string, len(r.kinds))
	for k, in := range r.kinds {
		m[k] = slices.Clone(in)
	}
	return m
}
