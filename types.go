package lineage

import "github.com/jward/lineage/internal/store"

// Re-export persistence types so callers can use them without importing
// internal/store.
type (
	Store         = store.Store
	SnapshotStore = store.SnapshotStore
	MemoryStore   = store.MemoryStore
	Snapshot      = store.Snapshot
	SnapshotInfo  = store.SnapshotInfo
)
