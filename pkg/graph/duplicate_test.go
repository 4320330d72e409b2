package graph

import (
	"testing"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicate_OnlyInternalEdges(t *testing.T) {
	s, rec := newTestStore(t)
	x := mustCreate(t, s, "osc")   // osc1
	y := mustCreate(t, s, "mul")   // mul2
	z := mustCreate(t, s, "noise") // noise3
	require.NoError(t, s.Connect(x, y, "a"))
	require.NoError(t, s.Connect(z, y, "b"))
	require.NoError(t, s.Connect(y, "engine", "root"))
	rec.reset()

	clones, err := NewDuplicator(s).Duplicate([]string{y, x})
	require.NoError(t, err)
	require.Len(t, clones, 2)

	// Processed in name order: mul2 -> mul4, osc1 -> osc5.
	yc, xc := clones[0], clones[1]
	assert.Equal(t, "mul4", yc.Name)
	assert.Equal(t, "osc5", xc.Name)
	assert.Equal(t, xc.Name, input(t, s, yc.Name, "a"), "internal edge replicated")
	assert.Equal(t, "", input(t, s, yc.Name, "b"), "external edge not replicated")
	assert.Equal(t, y, input(t, s, "engine", "root"), "clones never feed outside objects")

	assert.Equal(t, []string{
		protocol.ActionNew, protocol.ActionSetDisplay,
		protocol.ActionNew, protocol.ActionSetDisplay,
		protocol.ActionConnect,
	}, rec.actions())
}

func TestDuplicate_OffsetLabelAndValue(t *testing.T) {
	s, rec := newTestStore(t)
	v, err := s.Create("value", domain.Display{Top: 100, Left: 30, Label: "c#5"})
	require.NoError(t, err)
	require.NoError(t, s.SetValue(v.Name, 0.5))
	rec.reset()

	clones, err := NewDuplicator(s, WithOffset(domain.Display{Top: 5, Left: 7})).Duplicate([]string{v.Name})
	require.NoError(t, err)
	require.Len(t, clones, 1)

	c := clones[0]
	assert.Equal(t, domain.Display{Top: 105, Left: 37, Label: "c#5"}, c.Display)
	assert.Equal(t, 0.5, c.Value)
	assert.Equal(t, &protocol.Message{Action: protocol.ActionSet, Name: c.Name, Value: 0.5}, rec.sent[2])
}

func TestDuplicate_DefaultOffset(t *testing.T) {
	s, _ := newTestStore(t)
	o, err := s.Create("osc", domain.Display{Top: 10, Left: 20})
	require.NoError(t, err)

	clones, err := NewDuplicator(s).Duplicate([]string{o.Name})
	require.NoError(t, err)
	assert.Equal(t, domain.Display{Top: 60, Left: 70}, clones[0].Display)
}

func TestDuplicate_EngineExcluded(t *testing.T) {
	s, rec := newTestStore(t)
	osc := mustCreate(t, s, "osc")
	require.NoError(t, s.Connect(osc, "engine", "root"))
	rec.reset()

	clones, err := NewDuplicator(s).Duplicate([]string{"engine", osc, osc})
	require.NoError(t, err)
	require.Len(t, clones, 1)
	assert.Equal(t, "osc", clones[0].Kind)

	engines := 0
	for _, o := range s.Objects() {
		if o.IsEngine() {
			engines++
		}
	}
	assert.Equal(t, 1, engines)

	clones, err = NewDuplicator(s).Duplicate([]string{"engine"})
	require.NoError(t, err)
	assert.Empty(t, clones)
}

func TestDuplicate_UnknownSelectionCreatesNothing(t *testing.T) {
	s, rec := newTestStore(t)
	osc := mustCreate(t, s, "osc")
	rec.reset()

	_, err := NewDuplicator(s).Duplicate([]string{osc, "ghost"})
	assert.ErrorIs(t, err, domain.ErrUnknownObject)
	assert.Empty(t, rec.sent)
	assert.Equal(t, 2, s.Len())
}
