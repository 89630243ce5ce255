package store

import "context"

// SnapshotStore is the interface for snapshot persistence. Both Store
// (SQLite) and MemoryStore (in-process) implement it.
type SnapshotStore interface {
	// SaveSnapshot replaces the snapshot with the same name. It reports
	// false when the stored content already has the same hash, in which
	// case nothing is written.
	SaveSnapshot(ctx context.Context, snap *Snapshot) (bool, error)
	// LoadSnapshot returns nil, nil when no snapshot has that name.
	LoadSnapshot(ctx context.Context, name string) (*Snapshot, error)
	Snapshots(ctx context.Context) ([]SnapshotInfo, error)
	DeleteSnapshot(ctx context.Context, name string) (bool, error)
}

// Compile-time checks.
var (
	_ SnapshotStore = (*Store)(nil)
	_ SnapshotStore = (*MemoryStore)(nil)
)
