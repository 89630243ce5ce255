package lineage

import "strings"

// NameGraph is a single-parent hierarchy built from dot-delimited
// identifiers such as "net.http.server". Each segment is one category,
// labelled with its full identifier; the root is labelled "".
type NameGraph struct {
	cz       *Categorization
	segments map[*Category]*childIndex
}

// childIndex maps a segment to its child category and remembers the order
// segments were added in.
type childIndex struct {
	order []string
	byKey map[string]*Category
}

func (ix *childIndex) get(segment string) (*Category, bool) {
	c, ok := ix.byKey[segment]
	return c, ok
}

func (ix *childIndex) put(segment string, c *Category) {
	ix.order = append(ix.order, segment)
	ix.byKey[segment] = c
}

// NewNameGraph creates an empty name graph. Both default policies are
// pre-order without redundancy handling; opts may override them.
func NewNameGraph(opts ...Option) *NameGraph {
	base := []Option{
		WithName("names"),
		WithRootLabel(""),
		WithBottomUp(NameBottomUp),
		WithTopDown(NameTopDown),
	}
	return &NameGraph{
		cz:       NewCategorization(append(base, opts...)...),
		segments: make(map[*Category]*childIndex),
	}
}

// Categorization returns the underlying categorization.
func (g *NameGraph) Categorization() *Categorization { return g.cz }

// Root returns the category of the empty identifier.
func (g *NameGraph) Root() *Category { return g.cz.Root() }

// Category returns the category for id, creating it and any missing
// ancestors. Repeated calls with the same id return the same category.
func (g *NameGraph) Category(id string) *Category {
	cur := g.cz.Root()
	if id == "" {
		return cur
	}
	segments := strings.Split(id, ".")
	for i, segment := range segments {
		ix := g.index(cur)
		next, ok := ix.get(segment)
		if !ok {
			next = g.cz.mustCreateChild(strings.Join(segments[:i+1], "."), cur)
			ix.put(segment, next)
		}
		cur = next
	}
	return cur
}

// Lookup returns the category for id without creating anything.
func (g *NameGraph) Lookup(id string) (*Category, bool) {
	cur := g.cz.Root()
	if id == "" {
		return cur, true
	}
	for _, segment := range strings.Split(id, ".") {
		ix, ok := g.segments[cur]
		if !ok {
			return nil, false
		}
		next, ok := ix.get(segment)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Segments returns the child segments of c in insertion order.
func (g *NameGraph) Segments(c *Category) []string {
	ix, ok := g.segments[c]
	if !ok {
		return nil
	}
	out := make([]string, len(ix.order))
	copy(out, ix.order)
	return out
}

// ID returns the identifier c was created for.
func (g *NameGraph) ID(c *Category) string {
	id, _ := c.label.(string)
	return id
}

// Len returns the number of categories, root included.
func (g *NameGraph) Len() int { return g.cz.Len() }

func (g *NameGraph) index(c *Category) *childIndex {
	ix, ok := g.segments[c]
	if !ok {
		ix = &childIndex{byKey: make(map[string]*Category)}
		g.segments[c] = ix
	}
	return ix
}
