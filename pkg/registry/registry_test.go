package registry

import (
	"testing"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	assert.False(t, r.Register("osc", []string{"pitch", "syn"}))
	assert.True(t, r.Register(domain.EngineKind, []string{"root"}))
	r.Register("value", nil)

	in, err := r.InputsFor("osc")
	require.NoError(t, err)
	assert.Equal(t, []string{"pitch", "syn"}, in)

	in, err = r.InputsFor("value")
	require.NoError(t, err)
	assert.Empty(t, in)

	_, err = r.InputsFor("reverb")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestRegistry_Idempotent(t *testing.T) {
	r := NewRegistry()
	r.Register("mul", []string{"a", "b"})
	r.Register("mul", []string{"a", "b"})

	assert.Equal(t, []string{"mul"}, r.Kinds())
	in, _ := r.InputsFor("mul")
	assert.Equal(t, []string{"a", "b"}, in)
}

func TestRegistry_ReturnsCopies(t *testing.T) {
	slots := []string{"a", "b"}
	r := NewRegistry()
	r.Register("sum", slots)
	slots[0] = "mutated"

	in, _ := r.InputsFor("sum")
	in[1] = "mutated"

	again, _ := r.InputsFor("sum")
	assert.Equal(t, []string{"a", "b"}, again)
}

func TestRegistry_PaletteExcludesEngine(t *testing.T) {
	r := FromKindInputs(map[string][]string{
		"engine": {"root"},
		"sin":    {"pitch", "syn"},
		"noise":  nil,
	})

	assert.Equal(t, []string{"engine", "noise", "sin"}, r.Kinds())
	assert.Equal(t, []string{"noise", "sin"}, r.Palette())

	k, err := r.Kind("engine")
	require.NoError(t, err)
	assert.True(t, k.IsEngine())
	assert.True(t, k.HasInput("root"))
	assert.Equal(t, map[string][]string{"engine": {"root"}, "sin": {"pitch", "syn"}, "noise": nil}, r.KindInputs())
}
