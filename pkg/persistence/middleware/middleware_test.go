package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secretSnapshot() *domain.Snapshot {
	snap := domain.NewSnapshot()
	snap.Template = "Page"
	snap.Data = map[string]any{"user": "ana", "password": "hunter2"}
	snap.DataSet = true
	return snap
}

func encrypted(t *testing.T, next ports.SnapshotStore, key []byte, fallbacks ...[]byte) ports.SnapshotStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key, FallbackKeys: fallbacks})
	require.NoError(t, err)
	return mw(next)
}

func TestEncryption_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, encrypted(t, memory.NewStore(), generateKey(t)))
}

func TestEncryption_HidesSnapshot(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	store := encrypted(t, underlying, generateKey(t))

	require.NoError(t, store.Save(ctx, "s", secretSnapshot()))

	raw, err := underlying.Load(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, raw.Template)
	assert.Empty(t, raw.Regions)
	assert.NotContains(t, raw.Data, "password")

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "Page", loaded.Template)
	assert.Equal(t, "hunter2", loaded.Data.(map[string]any)["password"])
}

func TestEncryption_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	require.NoError(t, encrypted(t, underlying, oldKey).Save(ctx, "s", secretSnapshot()))

	_, err := encrypted(t, underlying, newKey).Load(ctx, "s")
	assert.ErrorContains(t, err, "decrypt")

	loaded, err := encrypted(t, underlying, newKey, oldKey).Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "Page", loaded.Template)
}

func TestEncryption_RejectsPlainSnapshot(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(ctx, "s", secretSnapshot()))

	_, err := encrypted(t, underlying, generateKey(t)).Load(ctx, "s")
	assert.ErrorContains(t, err, "envelope")
}

func TestEncryption_BadKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)
}

func TestPII_MasksNestedKeys(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware([]string{"(?i)password", "^ssn$"})
	require.NoError(t, err)
	store := mw(underlying)

	snap := secretSnapshot()
	snap.Data.(map[string]any)["profile"] = map[string]any{"ssn": "123", "name": "ana"}
	snap.Data.(map[string]any)["accounts"] = []any{map[string]any{"Password": "x"}}
	require.NoError(t, store.Save(ctx, "s", snap))

	raw, err := underlying.Load(ctx, "s")
	require.NoError(t, err)
	data := raw.Data.(map[string]any)
	assert.Equal(t, middleware.Mask, data["password"])
	assert.Equal(t, "ana", data["user"])
	assert.Equal(t, map[string]any{"ssn": middleware.Mask, "name": "ana"}, data["profile"])
	assert.Equal(t, []any{map[string]any{"Password": middleware.Mask}}, data["accounts"])

	// The caller's snapshot is untouched.
	assert.Equal(t, "hunter2", snap.Data.(map[string]any)["password"])
}

func TestPII_InvalidPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	pii, err := middleware.NewPIIMiddleware([]string{"password"})
	require.NoError(t, err)
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	store := middleware.Chain(underlying, pii, enc)
	require.NoError(t, store.Save(ctx, "s", secretSnapshot()))

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.Data.(map[string]any)["password"])
}
