package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
)

// SaveSnapshot writes snap within a single transaction, replacing any
// snapshot with the same name. Categories are inserted in Ordinal order so
// every parent label resolves to an already-inserted row; the label-to-ID
// map plays the role of the id remapping table. A stored snapshot with the
// same content hash is left untouched and SaveSnapshot reports false.
func (s *Store) SaveSnapshot(ctx context.Context, snap *Snapshot) (bool, error) {
	hash := ComputeSnapshotHash(snap)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, errors.Wrap(err, "save snapshot: begin")
	}
	defer tx.Rollback()

	var existingID int64
	var existingHash string
	var existingCreated time.Time
	err = tx.QueryRowContext(ctx,
		"SELECT id, hash, created_at FROM snapshots WHERE name = ?", snap.Name,
	).Scan(&existingID, &existingHash, &existingCreated)
	switch {
	case err == nil && existingHash == hash:
		snap.ID, snap.CreatedAt, snap.Hash = existingID, existingCreated, hash
		return false, nil
	case err == nil:
		if _, err := tx.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", existingID); err != nil {
			return false, errors.Wrapf(err, "save snapshot %q: replace", snap.Name)
		}
	case !errors.Is(err, sql.ErrNoRows):
		return false, errors.Wrapf(err, "save snapshot %q: lookup", snap.Name)
	}

	createdAt := snap.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC().Truncate(time.Second)
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO snapshots (name, categorization, created_at, hash) VALUES (?, ?, ?, ?)",
		snap.Name, snap.Categorization, createdAt, hash,
	)
	if err != nil {
		return false, errors.Wrapf(err, "save snapshot %q", snap.Name)
	}
	snapID, err := res.LastInsertId()
	if err != nil {
		return false, errors.Wrap(err, "last insert id")
	}

	labelToID := make(map[string]int64, len(snap.Categories))
	for _, c := range snap.Categories {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO categories (snapshot_id, ordinal, label) VALUES (?, ?, ?)",
			snapID, c.Ordinal, c.Label,
		)
		if err != nil {
			return false, errors.Wrapf(err, "save snapshot %q: category %q", snap.Name, c.Label)
		}
		catID, err := res.LastInsertId()
		if err != nil {
			return false, errors.Wrap(err, "last insert id")
		}
		labelToID[c.Label] = catID

		for i, p := range c.Parents {
			parentID, ok := labelToID[p]
			if !ok {
				return false, errors.Newf("save snapshot %q: category %q references unsaved parent %q", snap.Name, c.Label, p)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO category_parents (category_id, parent_id, ordinal) VALUES (?, ?, ?)",
				catID, parentID, i,
			); err != nil {
				return false, errors.Wrapf(err, "save snapshot %q: parent %q of %q", snap.Name, p, c.Label)
			}
		}

		for i, prop := range c.Properties {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO properties (category_id, key, ordinal, value) VALUES (?, ?, ?, ?)",
				catID, prop.Key, i, prop.Value,
			); err != nil {
				return false, errors.Wrapf(err, "save snapshot %q: property %q of %q", snap.Name, prop.Key, c.Label)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, errors.Wrapf(err, "save snapshot %q: commit", snap.Name)
	}
	snap.ID = snapID
	snap.CreatedAt = createdAt
	snap.Hash = hash
	return true, nil
}

// LoadSnapshot reads the snapshot called name. It returns nil, nil when no
// such snapshot exists.
func (s *Store) LoadSnapshot(ctx context.Context, name string) (*Snapshot, error) {
	snap := &Snapshot{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, categorization, created_at, hash FROM snapshots WHERE name = ?", name,
	).Scan(&snap.ID, &snap.Name, &snap.Categorization, &snap.CreatedAt, &snap.Hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load snapshot %q", name)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, ordinal, label FROM categories WHERE snapshot_id = ? ORDER BY ordinal", snap.ID,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "load snapshot %q: categories", name)
	}
	byID := make(map[int64]int)
	idToLabel := make(map[int64]string)
	for rows.Next() {
		var id int64
		var rec CategoryRecord
		if err := rows.Scan(&id, &rec.Ordinal, &rec.Label); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan category")
		}
		byID[id] = len(snap.Categories)
		idToLabel[id] = rec.Label
		snap.Categories = append(snap.Categories, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate categories")
	}

	if err := s.loadParents(ctx, snap, byID, idToLabel); err != nil {
		return nil, err
	}
	if err := s.loadProperties(ctx, snap, byID); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) loadParents(ctx context.Context, snap *Snapshot, byID map[int64]int, idToLabel map[int64]string) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cp.category_id, cp.parent_id
		FROM category_parents cp
		JOIN categories c ON c.id = cp.category_id
		WHERE c.snapshot_id = ?
		ORDER BY cp.category_id, cp.ordinal`, snap.ID,
	)
	if err != nil {
		return errors.Wrapf(err, "load snapshot %q: parents", snap.Name)
	}
	defer rows.Close()
	for rows.Next() {
		var catID, parentID int64
		if err := rows.Scan(&catID, &parentID); err != nil {
			return errors.Wrap(err, "scan parent")
		}
		idx := byID[catID]
		snap.Categories[idx].Parents = append(snap.Categories[idx].Parents, idToLabel[parentID])
	}
	return rows.Err()
}

func (s *Store) loadProperties(ctx context.Context, snap *Snapshot, byID map[int64]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.category_id, p.key, p.value
		FROM properties p
		JOIN categories c ON c.id = p.category_id
		WHERE c.snapshot_id = ?
		ORDER BY p.category_id, p.ordinal`, snap.ID,
	)
	if err != nil {
		return errors.Wrapf(err, "load snapshot %q: properties", snap.Name)
	}
	defer rows.Close()
	for rows.Next() {
		var catID int64
		var prop PropertyRecord
		if err := rows.Scan(&catID, &prop.Key, &prop.Value); err != nil {
			return errors.Wrap(err, "scan property")
		}
		idx := byID[catID]
		snap.Categories[idx].Properties = append(snap.Categories[idx].Properties, prop)
	}
	return rows.Err()
}

// Snapshots lists every stored snapshot ordered by name.
func (s *Store) Snapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.name, s.categorization, s.created_at, s.hash, COUNT(c.id)
		FROM snapshots s
		LEFT JOIN categories c ON c.snapshot_id = s.id
		GROUP BY s.id
		ORDER BY s.name`)
	if err != nil {
		return nil, errors.Wrap(err, "list snapshots")
	}
	defer rows.Close()
	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.Name, &info.Categorization, &info.CreatedAt, &info.Hash, &info.CategoryCount); err != nil {
			return nil, errors.Wrap(err, "scan snapshot")
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteSnapshot removes the snapshot called name. It reports whether a
// snapshot was removed.
func (s *Store) DeleteSnapshot(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE name = ?", name)
	if err != nil {
		return false, errors.Wrapf(err, "delete snapshot %q", name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return n > 0, nil
}

// PropertyCounts returns the number of stored values per property key
// across every snapshot.
func (s *Store) PropertyCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, COUNT(*) FROM properties GROUP BY key")
	if err != nil {
		return nil, errors.Wrap(err, "property counts")
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, errors.Wrap(err, "scan property count")
		}
		out[key] = n
	}
	return out, rows.Err()
}
