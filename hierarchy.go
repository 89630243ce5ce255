package lineage

// Hierarchy is a complete view of one category's position: direct edges,
// full linearizations in both directions, and its local keys.
type Hierarchy struct {
	Category    *Category
	Parents     []*Category // declared order
	Children    []*Category // creation order
	Ancestors   []*Category // bottom-up linearization without the category
	Descendants []*Category // top-down linearization without the category
	LocalKeys   []string
	Depth       int
}

// HierarchyOf builds the Hierarchy of c using its categorization's default
// policies.
func HierarchyOf(c *Category) *Hierarchy {
	ancestors := c.Ancestors()
	if ancestors == nil {
		ancestors = []*Category{}
	}
	descendants := c.Descendants()
	if descendants == nil {
		descendants = []*Category{}
	}
	return &Hierarchy{
		Category:    c,
		Parents:     c.Parents(),
		Children:    c.Children(),
		Ancestors:   ancestors,
		Descendants: descendants,
		LocalKeys:   c.LocalKeys(),
		Depth:       c.Depth(),
	}
}

// Labels renders categories as label strings.
func Labels(cats []*Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.String()
	}
	return out
}
