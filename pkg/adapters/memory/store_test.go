package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/patchbay/pkg/adapters/memory"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/aretw0/patchbay/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunPatchStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	patch := []*protocol.Object{{Name: "osc1", Kind: "osc", Input: map[string]string{"pitch": "value2"}}}
	require.NoError(t, store.Save(ctx, "demo", patch))

	patch[0].Input["pitch"] = "changed"

	loaded, err := store.Load(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "value2", loaded[0].Input["pitch"])

	loaded[0].Name = "mutated"
	again, err := store.Load(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "osc1", again[0].Name)
}

func TestMemoryStore_RejectsInvalidName(t *testing.T) {
	store := memory.NewStore()
	err := store.Save(context.Background(), "../etc", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidPatchName)
}
