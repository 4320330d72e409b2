package graph

import (
	"testing"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/naming"
	"github.com/aretw0/patchbay/pkg/protocol"
	"github.com/aretw0/patchbay/pkg/registry"
	"github.com/stretchr/testify/require"
)

// recorder is an IntentSink that keeps every intent it was given.
type recorder struct {
	sent []*protocol.Message
	err  error
}

func (r *recorder) Send(m *protocol.Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, m)
	return nil
}

func (r *recorder) actions() []string {
	out := make([]string, len(r.sent))
	for i, m := range r.sent {
		out[i] = m.Action
	}
	return out
}

func (r *recorder) reset() {
	r.sent = nil
}

func testRegistry() *registry.Registry {
	return registry.FromKindInputs(map[string][]string{
		domain.EngineKind: {"root"},
		"osc":             {"pitch", "syn"},
		"mul":             {"a", "b"},
		"value":           nil,
		"noise":           nil,
	})
}

// newTestStore returns a store that already holds the engine, as after a greeting.
func newTestStore(t *testing.T, opts ...Option) (*Store, *recorder) {
	t.Helper()
	rec := &recorder{}
	s := New(testRegistry(), naming.NewAllocator(), rec, opts...)
	_, err := s.CreateEngine(domain.Display{Top: 300, Left: 200})
	require.NoError(t, err)
	return s, rec
}

func mustCreate(t *testing.T, s *Store, kind string) string {
	t.Helper()
	o, err := s.Create(kind, domain.Display{Top: 10, Left: 10})
	require.NoError(t, err)
	return o.Name
}

func input(t *testing.T, s *Store, name, slot string) string {
	t.Helper()
	o, ok := s.Object(name)
	require.True(t, ok, "object %s missing", name)
	return o.Inputs[slot]
}
