package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_OverwriteAndCorruption(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	first := domain.NewSnapshot()
	first.Template = "One"
	require.NoError(t, store.Save(ctx, "home", first))
	second := domain.NewSnapshot()
	second.Template = "Two"
	require.NoError(t, store.Save(ctx, "home", second))

	loaded, err := store.Load(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, "Two", loaded.Template)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))
	_, err = store.Load(ctx, "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSnapshotNotFound)

	assert.Error(t, store.Save(ctx, "", first))
}

func TestFileStore_ListMissingDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "nope"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
