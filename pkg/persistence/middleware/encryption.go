package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/aretw0/patchbay/pkg/protocol"
)

// SealedKind is the kind of the single envelope object an encrypted patch is stored as.
const SealedKind = "sealed"

// ErrNotSealed is returned by Load when the stored patch is not an envelope.
var ErrNotSealed = errors.New("patch is missing encrypted envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new patches.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.PatchStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals patches with AES-GCM.
// The inner store sees one object of kind SealedKind whose label carries the ciphertext.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.PatchStore) ports.PatchStore {
		return &encryptionMiddleware{next: next, config: config}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, name string, patch []*protocol.Object) error {
	plainText, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to marshal patch: %w", err)
	}
	ciphertext, err := encrypt(plainText, []byte(name), m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt patch: %w", err)
	}
	envelope := &protocol.Object{
		Name: SealedKind,
		Kind: SealedKind,
		Display: protocol.Display{
			Label: base64.StdEncoding.EncodeToString(ciphertext),
		},
	}
	return m.next.Save(ctx, name, []*protocol.Object{envelope})
}

func (m *encryptionMiddleware) Load(ctx context.Context, name string) ([]*protocol.Object, error) {
	stored, err := m.next.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(stored) != 1 || stored[0].Kind != SealedKind {
		return nil, fmt.Errorf("%w: %s", ErrNotSealed, name)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(stored[0].Display.Label)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}
	plainText, err := decryptWithRotation(ciphertext, []byte(name), m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt patch: %w", err)
	}

	var patch []*protocol.Object
	if err := json.Unmarshal(plainText, &patch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted patch: %w", err)
	}
	return patch, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// encrypt seals plaintext bound to ad, the patch name, so a blob copied under
// another name does not open.
func encrypt(plaintext, ad []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, ad), nil
}

func decryptWithRotation(ciphertext, ad []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	for _, key := range append([][]byte{activeKey}, fallbackKeys...) {
		if plain, err := decrypt(ciphertext, ad, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext, ad []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, ad)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
