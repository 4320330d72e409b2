package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPatchStoreContract runs a suite of tests to verify that a PatchStore implementation
// adheres to the defined interface contract.
func RunPatchStoreContract(t *testing.T, store PatchStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	patch := []*protocol.Object{
		{Name: "engine", Kind: "engine", Input: map[string]string{"root": "mul3"}, Display: protocol.Display{Top: 300, Left: 200}},
		{Name: "mul3", Kind: "mul", Input: map[string]string{"a": "osc1", "b": "value2"}},
		{Name: "osc1", Kind: "osc", Display: protocol.Display{Top: 10, Left: 20, Label: "carrier"}},
		{Name: "value2", Kind: "value", Value: 0.25},
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, name, patch)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, loaded, len(patch))

		byName := make(map[string]*protocol.Object)
		for _, o := range loaded {
			byName[o.Name] = o
		}
		assert.Equal(t, "mul3", byName["engine"].Input["root"])
		assert.Equal(t, "value2", byName["mul3"].Input["b"])
		assert.Equal(t, "carrier", byName["osc1"].Display.Label)
		assert.Equal(t, 0.25, byName["value2"].Value)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, patch[:1]))
		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Len(t, loaded, 1)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrPatchNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, patch))

		err := store.Delete(ctx, name)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrPatchNotFound, "Load after Delete should return ErrPatchNotFound")

		assert.NoError(t, store.Delete(ctx, name), "Deleting twice is a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		_ = store.Save(ctx, id1, patch)
		_ = store.Save(ctx, id2, patch)

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
	})
}
