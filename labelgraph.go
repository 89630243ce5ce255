package lineage

import (
	"github.com/cockroachdb/errors"
)

// LabelGraph is a multi-parent hierarchy of string-labelled categories
// declared explicitly, ancestors first. Manifests and snapshots load into a
// LabelGraph.
type LabelGraph struct {
	cz      *Categorization
	byLabel map[string]*Category
}

// NewLabelGraph creates a graph whose root is labelled rootLabel, using
// DefaultBottomUp and DefaultTopDown unless opts override them.
func NewLabelGraph(rootLabel string, opts ...Option) *LabelGraph {
	base := []Option{WithName("labels"), WithRootLabel(rootLabel)}
	g := &LabelGraph{
		cz:      NewCategorization(append(base, opts...)...),
		byLabel: make(map[string]*Category),
	}
	root := g.cz.Root()
	g.byLabel[rootLabel] = root
	return g
}

// Categorization returns the underlying categorization.
func (g *LabelGraph) Categorization() *Categorization { return g.cz }

// Root returns the root category.
func (g *LabelGraph) Root() *Category { return g.cz.Root() }

// Define creates a category. With no parents it becomes a child of the
// root. Every parent must already be defined.
func (g *LabelGraph) Define(label string, parents ...string) (*Category, error) {
	if _, ok := g.byLabel[label]; ok {
		return nil, errors.Wrapf(ErrDuplicateLabel, "define %q", label)
	}
	cats := make([]*Category, 0, len(parents))
	for _, p := range parents {
		pc, ok := g.byLabel[p]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownParent, "define %q: parent %q", label, p)
		}
		cats = append(cats, pc)
	}
	if len(cats) == 0 {
		cats = append(cats, g.cz.Root())
	}
	c, err := g.cz.CreateChild(label, cats...)
	if err != nil {
		return nil, errors.Wrapf(err, "define %q", label)
	}
	g.byLabel[label] = c
	return c, nil
}

// Lookup returns the category labelled label.
func (g *LabelGraph) Lookup(label string) (*Category, bool) {
	c, ok := g.byLabel[label]
	return c, ok
}

// Labels returns every label in definition order, root first.
func (g *LabelGraph) Labels() []string {
	all := g.cz.Categories()
	out := make([]string, 0, len(all))
	for _, c := range all {
		out = append(out, c.String())
	}
	return out
}

// Len returns the number of categories, root included.
func (g *LabelGraph) Len() int { return g.cz.Len() }
