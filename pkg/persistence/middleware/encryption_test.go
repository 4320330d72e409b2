package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/patchbay/pkg/adapters/memory"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/persistence/middleware"
	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/aretw0/patchbay/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func samplePatch() []*protocol.Object {
	return []*protocol.Object{
		{Name: domain.EngineName, Kind: domain.EngineKind, Input: map[string]string{"root": "sin1"}},
		{Name: "sin1", Kind: "sin", Display: protocol.Display{Top: 10, Left: 20, Label: "my-secret-lead"}},
	}
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := NewMockStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, "lead", samplePatch()))

	stored, err := underlying.Load(ctx, "lead")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, middleware.SealedKind, stored[0].Kind)
	assert.NotContains(t, stored[0].Display.Label, "my-secret-lead")

	loaded, err := secure.Load(ctx, "lead")
	require.NoError(t, err)
	assert.Equal(t, samplePatch(), loaded)

	names, err := secure.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"lead"}, names)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := NewMockStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	secureOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, secureOld.Save(ctx, "rotated", samplePatch()))

	secureNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)
	loaded, err := secureNew.Load(ctx, "rotated")
	require.NoError(t, err, "fallback key decrypts")
	assert.Equal(t, samplePatch(), loaded)

	require.NoError(t, secureNew.Save(ctx, "rotated", loaded))
	_, err = secureOld.Load(ctx, "rotated")
	assert.Error(t, err, "old key alone cannot read a patch sealed with the new key")
}

func TestEncryptionMiddleware_PlainPatch(t *testing.T) {
	underlying := NewMockStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", samplePatch()))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)

	_, err = secure.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrPatchNotFound)

	require.NoError(t, secure.Delete(ctx, "plain"))
	_, err = underlying.Load(ctx, "plain")
	assert.ErrorIs(t, err, domain.ErrPatchNotFound)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := middleware.Chain(memory.NewStore(),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
	ports.RunPatchStoreContract(t, store)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestEncryptionMiddleware_BoundToName(t *testing.T) {
	underlying := NewMockStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, "lead", samplePatch()))
	sealed, err := underlying.Load(ctx, "lead")
	require.NoError(t, err)
	require.NoError(t, underlying.Save(ctx, "bass", sealed))

	_, err = secure.Load(ctx, "bass")
	assert.Error(t, err, "a sealed patch only opens under the name it was saved as")

	loaded, err := secure.Load(ctx, "lead")
	require.NoError(t, err)
	assert.Equal(t, samplePatch(), loaded)
}
