package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// MemoryStore keeps snapshots in memory. It validates parent references the
// same way Store does, so code written against SnapshotStore behaves the
// same with either.
//
// Thread safety: every method takes the mutex; snapshots are deep-copied
// on the way in and out.
type MemoryStore struct {
	mu     sync.Mutex
	snaps  map[string]*Snapshot
	nextID int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]*Snapshot)}
}

func (m *MemoryStore) SaveSnapshot(_ context.Context, snap *Snapshot) (bool, error) {
	hash := ComputeSnapshotHash(snap)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.snaps[snap.Name]; ok && existing.Hash == hash {
		snap.ID, snap.CreatedAt, snap.Hash = existing.ID, existing.CreatedAt, hash
		return false, nil
	}

	saved := make(map[string]bool, len(snap.Categories))
	for _, c := range snap.Categories {
		for _, p := range c.Parents {
			if !saved[p] {
				return false, errors.Newf("save snapshot %q: category %q references unsaved parent %q", snap.Name, c.Label, p)
			}
		}
		if saved[c.Label] {
			return false, errors.Newf("save snapshot %q: duplicate label %q", snap.Name, c.Label)
		}
		saved[c.Label] = true
	}

	m.nextID++
	snap.ID = m.nextID
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	snap.Hash = hash
	m.snaps[snap.Name] = cloneSnapshot(snap)
	return true, nil
}

func (m *MemoryStore) LoadSnapshot(_ context.Context, name string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[name]
	if !ok {
		return nil, nil
	}
	return cloneSnapshot(snap), nil
}

func (m *MemoryStore) Snapshots(_ context.Context) ([]SnapshotInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SnapshotInfo, 0, len(m.snaps))
	for _, s := range m.snaps {
		out = append(out, SnapshotInfo{
			Name:           s.Name,
			Categorization: s.Categorization,
			CreatedAt:      s.CreatedAt,
			CategoryCount:  len(s.Categories),
			Hash:           s.Hash,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) DeleteSnapshot(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snaps[name]; !ok {
		return false, nil
	}
	delete(m.snaps, name)
	return true, nil
}

func cloneSnapshot(s *Snapshot) *Snapshot {
	out := *s
	out.Categories = make([]CategoryRecord, len(s.Categories))
	for i, c := range s.Categories {
		c.Parents = slices.Clone(c.Parents)
		c.Properties = slices.Clone(c.Properties)
		out.Categories[i] = c
	}
	return &out
}
