package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/protocol"
)

// Store implements ports.PatchStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]*protocol.Object
	mu   sync.RWMutex
}

// NewStore creates a new in-memory patch store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]*protocol.Object),
	}
}

// Save persists a deep copy of the patch.
func (s *Store) Save(ctx context.Context, name string, patch []*protocol.Object) error {
	if err := protocol.ValidatePatchName(name); err != nil {
		return err
	}
	copied := clonePatch(patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = copied
	return nil
}

// Load returns a copy of the patch so callers can't mutate the stored one.
func (s *Store) Load(ctx context.Context, name string) ([]*protocol.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	patch, ok := s.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPatchNotFound, name)
	}
	return clonePatch(patch), nil
}

// Delete removes the patch.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the saved patch names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func clonePatch(patch []*protocol.Object) []*protocol.Object {
	out := make([]*protocol.Object, 0, len(patch))
	for _, o := range patch {
		if o != nil {
			out = append(out, o.Clone())
		}
	}
	return out
}
