// Package manifest declares label hierarchies and their properties in YAML.
//
//	root: thing
//	policies:
//	  bottom_up: {strategy: pre-order, redundancy: keep-last}
//	categories:
//	  - label: animal
//	    properties: {sound: "..."}
//	  - label: dog
//	    parents: [animal]
//	    properties: {sound: woof}
//
// Categories must be listed after their parents. A category without parents
// hangs off the root.
package manifest

import (
	"bytes"
	"os"
	"slices"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/jward/lineage"
)

// Manifest is a decoded manifest document.
type Manifest struct {
	Name       string   `yaml:"name"`
	Root       string   `yaml:"root"`
	Policies   Policies `yaml:"policies"`
	Categories []Entry  `yaml:"categories"`
}

// Policies optionally overrides the default linearization policies.
type Policies struct {
	BottomUp *PolicySpec `yaml:"bottom_up"`
	TopDown  *PolicySpec `yaml:"top_down"`
}

// PolicySpec names a strategy and a redundancy handling in their string
// forms. Empty fields keep the default.
type PolicySpec struct {
	Strategy   string `yaml:"strategy"`
	Redundancy string `yaml:"redundancy"`
}

// Entry declares one category.
type Entry struct {
	Label      string         `yaml:"label"`
	Parents    []string       `yaml:"parents"`
	Properties map[string]any `yaml:"properties"`
}

// Built is the result of Build: the hierarchy and one key per property name.
type Built struct {
	Graph *lineage.LabelGraph
	keys  map[string]*lineage.SimpleKey[any]
	names []string
}

// Key returns the key for a property name.
func (b *Built) Key(name string) (*lineage.SimpleKey[any], bool) {
	k, ok := b.keys[name]
	return k, ok
}

// KeyNames returns every property name in order of first appearance.
func (b *Built) KeyNames() []string { return slices.Clone(b.names) }

// Keys returns every key in order of first appearance.
func (b *Built) Keys() []lineage.Key[any] {
	out := make([]lineage.Key[any], len(b.names))
	for i, n := range b.names {
		out[i] = b.keys[n]
	}
	return out
}

// PersistentKeys returns every key for use with lineage.Save and
// lineage.Load.
func (b *Built) PersistentKeys() []lineage.PersistentKey {
	out := make([]lineage.PersistentKey, len(b.names))
	for i, n := range b.names {
		out[i] = b.keys[n]
	}
	return out
}

// Parse decodes a manifest. Unknown fields are rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrap(err, "decode manifest")
	}
	return &m, nil
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read manifest %s", path)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %s", path)
	}
	return m, nil
}

// Build creates the hierarchy described by m. Within one entry, properties
// are applied in name order.
func (m *Manifest) Build(opts ...lineage.Option) (*Built, error) {
	base, err := m.options()
	if err != nil {
		return nil, err
	}
	b := &Built{
		Graph: lineage.NewLabelGraph(m.Root, append(base, opts...)...),
		keys:  make(map[string]*lineage.SimpleKey[any]),
	}

	for i, e := range m.Categories {
		if e.Label == "" {
			return nil, errors.Newf("category %d: label is required", i)
		}
		c, err := b.Graph.Define(e.Label, e.Parents...)
		if err != nil {
			return nil, errors.Wrapf(err, "category %d", i)
		}
		names := make([]string, 0, len(e.Properties))
		for name := range e.Properties {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			if err := lineage.Set[any](c, b.key(name), e.Properties[name], false); err != nil {
				return nil, errors.Wrapf(err, "category %q", e.Label)
			}
		}
	}
	return b, nil
}

func (b *Built) key(name string) *lineage.SimpleKey[any] {
	k, ok := b.keys[name]
	if !ok {
		k = lineage.NewKey[any](name)
		b.keys[name] = k
		b.names = append(b.names, name)
	}
	return k
}

func (m *Manifest) options() ([]lineage.Option, error) {
	var opts []lineage.Option
	if m.Name != "" {
		opts = append(opts, lineage.WithName(m.Name))
	}
	if m.Policies.BottomUp != nil {
		p, err := m.Policies.BottomUp.apply(lineage.DefaultBottomUp)
		if err != nil {
			return nil, errors.Wrap(err, "bottom_up policy")
		}
		opts = append(opts, lineage.WithBottomUp(p))
	}
	if m.Policies.TopDown != nil {
		p, err := m.Policies.TopDown.apply(lineage.DefaultTopDown)
		if err != nil {
			return nil, errors.Wrap(err, "top_down policy")
		}
		opts = append(opts, lineage.WithTopDown(p))
	}
	return opts, nil
}

func (s *PolicySpec) apply(p lineage.Policy) (lineage.Policy, error) {
	if s.Strategy != "" {
		strategy, err := lineage.ParseSearchStrategy(s.Strategy)
		if err != nil {
			return p, err
		}
		p = p.WithStrategy(strategy)
	}
	if s.Redundancy != "" {
		redundancy, err := lineage.ParseRedundancy(s.Redundancy)
		if err != nil {
			return p, err
		}
		p = p.WithRedundancy(redundancy)
	}
	return p, nil
}
