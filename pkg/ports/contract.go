package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	id := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.NewSnapshot()
		snap.Template = "Page"
		snap.Regions["footer"] = "Footer"
		snap.Data = map[string]any{"title": "home", "count": 42}
		snap.DataSet = true

		require.NoError(t, store.Save(ctx, id, snap), "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "Page", loaded.Template)
		assert.Equal(t, snap.Regions, loaded.Regions)
		assert.True(t, loaded.DataSet)
		data, ok := loaded.Data.(map[string]any)
		require.True(t, ok, "data should round-trip as an object, got %T", loaded.Data)
		assert.Equal(t, "home", data["title"])
		// JSON backends turn numbers into float64; only presence is part of the contract.
		assert.NotNil(t, data["count"])
	})

	t.Run("Saved snapshot is isolated", func(t *testing.T) {
		snap := domain.NewSnapshot()
		require.NoError(t, store.Save(ctx, id, snap))
		snap.Regions["main"] = "Mutated"

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultMainRegion, loaded.Regions["main"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, id, domain.NewSnapshot()))
		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewSnapshot()))
		require.NoError(t, store.Save(ctx, id2, domain.NewSnapshot()))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
