package store

import "time"

// Snapshot is a persisted categorization: every category in creation order
// with its parent labels and local property values.
type Snapshot struct {
	ID             int64
	Name           string
	Categorization string
	CreatedAt      time.Time
	// Hash is set by SaveSnapshot; see ComputeSnapshotHash.
	Hash       string
	Categories []CategoryRecord
}

// CategoryRecord is one category of a snapshot. Parents reference labels of
// records with a lower Ordinal.
type CategoryRecord struct {
	Ordinal    int
	Label      string
	Parents    []string
	Properties []PropertyRecord
}

// PropertyRecord is one local value. Value holds JSON.
type PropertyRecord struct {
	Key   string
	Value string
}

// SnapshotInfo summarizes a stored snapshot.
type SnapshotInfo struct {
	Name           string
	Categorization string
	CreatedAt      time.Time
	CategoryCount  int
	Hash           string
}
