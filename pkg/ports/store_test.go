package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/aretw0/patchbay/pkg/protocol"
)

// MockStore is a minimal PatchStore used to exercise the contract suite itself.
type MockStore struct {
	data map[string][]*protocol.Object
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string][]*protocol.Object)}
}

func (m *MockStore) Save(ctx context.Context, name string, patch []*protocol.Object) error {
	copied := make([]*protocol.Object, len(patch))
	for i, o := range patch {
		copied[i] = o.Clone()
	}
	m.data[name] = copied
	return nil
}

func (m *MockStore) Load(ctx context.Context, name string) ([]*protocol.Object, error) {
	patch, ok := m.data[name]
	if !ok {
		return nil, domain.ErrPatchNotFound
	}
	return patch, nil
}

func (m *MockStore) Delete(ctx context.Context, name string) error {
	delete(m.data, name)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(m.data))
	for n := range m.data {
		names = append(names, n)
	}
	return names, nil
}

func TestPatchStore_Contract(t *testing.T) {
	ports.RunPatchStoreContract(t, NewMockStore())
}

func TestIntentSinkFunc(t *testing.T) {
	var got []string
	sink := ports.IntentSinkFunc(func(m *protocol.Message) error {
		got = append(got, m.Action)
		return nil
	})

	_ = sink.Send(&protocol.Message{Action: protocol.ActionSave})
	_ = ports.Discard.Send(&protocol.Message{Action: protocol.ActionLoad})

	if len(got) != 1 || got[0] != protocol.ActionSave {
		t.Errorf("unexpected intents: %v", got)
	}
}
