package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pagecraft/pkg/adapters/memory"
	"github.com/aretw0/pagecraft/pkg/persistence/middleware"
	"github.com/aretw0/pagecraft/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunPageStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := NewMockStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	original := newPage("secret-page")
	original.Params["secret"] = "my-secret-sauce"

	require.NoError(t, secureStore.Save(ctx, original))

	stored, err := underlyingStore.Load(ctx, "secret-page")
	require.NoError(t, err)
	assert.Equal(t, "secret-page", stored.ID, "id stays readable for indexing")
	assert.Empty(t, stored.ComponentsTree, "tree must not reach the store in clear")
	assert.NotContains(t, stored.Params, "secret")
	assert.Contains(t, stored.Addons, middleware.EnvelopeKey)

	loaded, err := secureStore.Load(ctx, "secret-page")
	require.NoError(t, err)
	assert.Equal(t, "my-secret-sauce", loaded.Params["secret"])
	require.NotNil(t, loaded.Root())
	require.Len(t, loaded.Root().Children, 1)
	assert.Equal(t, "Sign up", loaded.Root().Children[0].Props["label"])
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)

	ctx := context.Background()
	original := newPage("rotation-page")
	original.Params["data"] = "encrypted-with-old-key"
	require.NoError(t, secureStoreOld.Save(ctx, original))

	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loaded, err := secureStoreNew.Load(ctx, "rotation-page")
	require.NoError(t, err, "fallback key should decrypt")
	assert.Equal(t, "encrypted-with-old-key", loaded.Params["data"])

	loaded.Params["data"] = "encrypted-with-new-key"
	require.NoError(t, secureStoreNew.Save(ctx, loaded))

	_, err = secureStoreOld.Load(ctx, "rotation-page")
	assert.Error(t, err, "old key alone cannot read new-key envelopes")
}

func TestEncryptionMiddleware_RejectsPlainPages(t *testing.T) {
	underlyingStore := NewMockStore()
	require.NoError(t, underlyingStore.Save(context.Background(), newPage("plain")))

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	_, err := secureStore.Load(context.Background(), "plain")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestEncryptionMiddleware_EnvelopeBoundToID(t *testing.T) {
	ctx := context.Background()
	underlyingStore := NewMockStore()
	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	require.NoError(t, secureStore.Save(ctx, newPage("a")))

	stored, err := underlyingStore.Load(ctx, "a")
	require.NoError(t, err)
	moved := stored.Clone()
	moved.ID = "b"
	require.NoError(t, underlyingStore.Save(ctx, moved))

	_, err = secureStore.Load(ctx, "b")
	assert.Error(t, err, "an envelope copied under another id must not open")
}
