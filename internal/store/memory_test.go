package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshotStores returns one fresh instance of every SnapshotStore.
func snapshotStores(t *testing.T) map[string]SnapshotStore {
	t.Helper()
	return map[string]SnapshotStore{
		"sqlite": newTestStore(t),
		"memory": NewMemoryStore(),
	}
}

func TestSnapshotStore_Contract(t *testing.T) {
	t.Parallel()
	for name, s := range snapshotStores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			assert.True(t, mustSave(t, s, diamondSnapshot("b")))
			assert.True(t, mustSave(t, s, diamondSnapshot("a")))
			assert.False(t, mustSave(t, s, diamondSnapshot("a")))

			got, err := s.LoadSnapshot(ctx, "a")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, ComputeSnapshotHash(diamondSnapshot("a")), got.Hash)
			assert.Equal(t, []string{"B", "C"}, got.Categories[4].Parents)
			assert.Len(t, got.Categories[3].Properties, 2)

			infos, err := s.Snapshots(ctx)
			require.NoError(t, err)
			require.Len(t, infos, 2)
			assert.Equal(t, "a", infos[0].Name)
			assert.Equal(t, 5, infos[0].CategoryCount)
			assert.Equal(t, got.Hash, infos[0].Hash)

			_, err = s.SaveSnapshot(ctx, &Snapshot{
				Name:       "bad",
				Categories: []CategoryRecord{{Label: ""}, {Ordinal: 1, Label: "x", Parents: []string{"y"}}},
			})
			require.Error(t, err)
			missing, err := s.LoadSnapshot(ctx, "bad")
			require.NoError(t, err)
			assert.Nil(t, missing)

			removed, err := s.DeleteSnapshot(ctx, "a")
			require.NoError(t, err)
			assert.True(t, removed)
			removed, err = s.DeleteSnapshot(ctx, "a")
			require.NoError(t, err)
			assert.False(t, removed)
		})
	}
}

func TestMemoryStore_CopiesOnSaveAndLoad(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	snap := diamondSnapshot("d")
	mustSave(t, s, snap)
	snap.Categories[4].Parents[0] = "mutated"

	got, err := s.LoadSnapshot(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, "B", got.Categories[4].Parents[0])

	got.Categories[1].Properties[0].Value = "mutated"
	again, err := s.LoadSnapshot(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, `"red"`, again.Categories[1].Properties[0].Value)
}

func TestMemoryStore_DuplicateLabel(t *testing.T) {
	t.Parallel()
	_, err := NewMemoryStore().SaveSnapshot(context.Background(), &Snapshot{
		Name:       "dup",
		Categories: []CategoryRecord{{Label: "a"}, {Ordinal: 1, Label: "a", Parents: []string{"a"}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate label")
}
