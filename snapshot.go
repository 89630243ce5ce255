package lineage

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/jward/lineage/internal/store"
)

// NewMemoryStore returns an empty in-memory SnapshotStore.
func NewMemoryStore() *MemoryStore { return store.NewMemoryStore() }

// OpenStore opens (creating if needed) the snapshot database at path and
// migrates its schema.
func OpenStore(path string) (*Store, error) {
	s, err := store.NewStore(path)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// PersistentKey is a key whose local values can be written to a snapshot.
// *SimpleKey implements it; values are stored as JSON.
type PersistentKey interface {
	Name() string
	encodeLocal(c *Category) ([]string, error)
	decodeLocal(c *Category, raw string) error
}

var _ PersistentKey = (*SimpleKey[any])(nil)

// Save writes every category of cz, with its parent edges and the local
// values of keys, as the snapshot called name. Category labels are stored
// in their string form and must be unique within cz. Saving content that
// matches the stored snapshot leaves it untouched.
func Save(ctx context.Context, s SnapshotStore, name string, cz *Categorization, keys ...PersistentKey) error {
	seenKeys := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seenKeys[k.Name()] {
			return errors.Newf("save %q: key name %q used twice", name, k.Name())
		}
		seenKeys[k.Name()] = true
	}

	all := cz.Categories()
	snap := &store.Snapshot{
		Name:           name,
		Categorization: cz.Name(),
		Categories:     make([]store.CategoryRecord, 0, len(all)),
	}
	labels := make(map[string]bool, len(all))
	for _, c := range all {
		label := c.String()
		if labels[label] {
			return errors.Wrapf(ErrDuplicateLabel, "save %q: label %q", name, label)
		}
		labels[label] = true

		rec := store.CategoryRecord{Ordinal: c.ordinal, Label: label}
		for _, p := range c.parents {
			rec.Parents = append(rec.Parents, p.String())
		}
		for _, k := range keys {
			vals, err := k.encodeLocal(c)
			if err != nil {
				return errors.Wrapf(err, "save %q", name)
			}
			for _, v := range vals {
				rec.Properties = append(rec.Properties, store.PropertyRecord{Key: k.Name(), Value: v})
			}
		}
		snap.Categories = append(snap.Categories, rec)
	}

	changed, err := s.SaveSnapshot(ctx, snap)
	if err != nil {
		return err
	}
	if !changed {
		cz.logger.Info("snapshot unchanged", zap.String("snapshot", name), zap.String("hash", snap.Hash))
		return nil
	}
	cz.logger.Info("snapshot saved",
		zap.String("snapshot", name),
		zap.Int("categories", len(snap.Categories)),
		zap.Int("keys", len(keys)),
		zap.String("hash", snap.Hash),
	)
	return nil
}

// Load rebuilds the snapshot called name as a LabelGraph. The first
// category becomes the root. Stored values of keys are restored as local
// values; values stored under names not in keys are skipped.
func Load(ctx context.Context, s SnapshotStore, name string, keys []PersistentKey, opts ...Option) (*LabelGraph, error) {
	snap, err := s.LoadSnapshot(ctx, name)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, errors.Newf("snapshot %q not found", name)
	}

	byName := make(map[string]PersistentKey, len(keys))
	for _, k := range keys {
		byName[k.Name()] = k
	}

	rootLabel := ""
	if len(snap.Categories) > 0 {
		rootLabel = snap.Categories[0].Label
	}
	base := []Option{WithName(snap.Categorization)}
	g := NewLabelGraph(rootLabel, append(base, opts...)...)

	skipped := make(map[string]int)
	for i, rec := range snap.Categories {
		var c *Category
		if i == 0 {
			c = g.Root()
		} else {
			if len(rec.Parents) == 0 {
				return nil, errors.Newf("load %q: category %q has no parents", name, rec.Label)
			}
			c, err = g.Define(rec.Label, rec.Parents...)
			if err != nil {
				return nil, errors.Wrapf(err, "load %q", name)
			}
		}
		for _, prop := range rec.Properties {
			k, ok := byName[prop.Key]
			if !ok {
				skipped[prop.Key]++
				continue
			}
			if err := k.decodeLocal(c, prop.Value); err != nil {
				return nil, errors.Wrapf(err, "load %q", name)
			}
		}
	}

	logger := g.cz.logger
	for key, n := range skipped {
		logger.Warn("snapshot key not loaded", zap.String("snapshot", name), zap.String("key", key), zap.Int("values", n))
	}
	logger.Info("snapshot loaded", zap.String("snapshot", name), zap.Int("categories", g.Len()))
	return g, nil
}
