package middleware_test

import (
	"context"
	"sort"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/aretw0/patchbay/pkg/protocol"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string][]*protocol.Object
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string][]*protocol.Object)}
}

func (s *MockStore) Save(ctx context.Context, name string, patch []*protocol.Object) error {
	s.data[name] = patch
	return nil
}

func (s *MockStore) Load(ctx context.Context, name string) ([]*protocol.Object, error) {
	patch, ok := s.data[name]
	if !ok {
		return nil, domain.ErrPatchNotFound
	}
	return patch, nil
}

func (s *MockStore) Delete(ctx context.Context, name string) error {
	delete(s.data, name)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

var _ ports.PatchStore = (*MockStore)(nil)
