package lineage

import (
	"fmt"
	"slices"
)

// Category is a node of a categorization. Its parent edges are fixed when it
// is created; its children grow as descendants are declared. Properties set
// on a category are local to it and visible to descendants through
// property resolution.
type Category struct {
	label    any
	owner    *Categorization
	parents  []*Category
	children []*Category
	ordinal  int

	props    map[any]*propertySlot
	keyOrder []any
}

// propertySlot holds the local values of one key, in insertion order.
type propertySlot struct {
	name   string
	values []any
}

// Label returns the opaque label the category was created with.
func (c *Category) Label() any { return c.label }

// Categorization returns the categorization owning c.
func (c *Category) Categorization() *Categorization { return c.owner }

// Ordinal is the creation index of c within its categorization. The root
// has ordinal 0 and every parent has a lower ordinal than its children.
func (c *Category) Ordinal() int { return c.ordinal }

// Parents returns a copy of the ordered parent list.
func (c *Category) Parents() []*Category { return slices.Clone(c.parents) }

// Children returns a copy of the children, in the order they were created.
func (c *Category) Children() []*Category { return slices.Clone(c.children) }

// IsRoot reports whether c has no parents.
func (c *Category) IsRoot() bool { return len(c.parents) == 0 }

func (c *Category) String() string { return labelString(c.label) }

// Linearize is shorthand for Linearize(c, p).
func (c *Category) Linearize(p Policy) []*Category { return Linearize(c, p) }

// BottomUp linearizes c with its categorization's bottom-up policy. The
// first element is always c itself.
func (c *Category) BottomUp() []*Category { return Linearize(c, c.owner.bottomUp) }

// TopDown linearizes c with its categorization's top-down policy.
func (c *Category) TopDown() []*Category { return Linearize(c, c.owner.topDown) }

// Ancestors returns the bottom-up linearization without c.
func (c *Category) Ancestors() []*Category { return withoutSelf(c, c.BottomUp()) }

// Descendants returns the top-down linearization without c.
func (c *Category) Descendants() []*Category { return withoutSelf(c, c.TopDown()) }

// IsA reports whether other is c or one of its ancestors.
func (c *Category) IsA(other *Category) bool {
	for a := range Walk(c, Policy{Strategy: PreOrder, Next: Parents, Redundancy: KeepFirst}) {
		if a == other {
			return true
		}
	}
	return false
}

// Depth is the length of the shortest parent path from c to a root.
func (c *Category) Depth() int {
	depth := 0
	level := []*Category{c}
	seen := map[*Category]bool{c: true}
	for len(level) > 0 {
		var next []*Category
		for _, n := range level {
			if n.IsRoot() {
				return depth
			}
			for _, p := range n.parents {
				if !seen[p] {
					seen[p] = true
					next = append(next, p)
				}
			}
		}
		level = next
		depth++
	}
	return depth
}

// LocalKeys returns the names of keys with local values on c, in the order
// they were first set.
func (c *Category) LocalKeys() []string {
	names := make([]string, 0, len(c.keyOrder))
	for _, k := range c.keyOrder {
		names = append(names, c.props[k].name)
	}
	return names
}

func (c *Category) localValues(key any) []any {
	if slot, ok := c.props[key]; ok {
		return slot.values
	}
	return nil
}

func (c *Category) appendLocal(key any, name string, v any) {
	if c.props == nil {
		c.props = make(map[any]*propertySlot)
	}
	slot, ok := c.props[key]
	if !ok {
		slot = &propertySlot{name: name}
		c.props[key] = slot
		c.keyOrder = append(c.keyOrder, key)
	}
	slot.values = append(slot.values, v)
}

func (c *Category) removeLocal(key any) {
	if _, ok := c.props[key]; !ok {
		return
	}
	delete(c.props, key)
	c.keyOrder = slices.DeleteFunc(c.keyOrder, func(k any) bool { return k == key })
}

func withoutSelf(c *Category, seq []*Category) []*Category {
	return slices.DeleteFunc(seq, func(o *Category) bool { return o == c })
}

// labelString renders a label for logs, errors and snapshots.
func labelString(label any) string {
	switch l := label.(type) {
	case nil:
		return "<nil>"
	case string:
		return l
	case fmt.Stringer:
		return l.String()
	case interface{ Name() string }:
		return l.Name()
	default:
		return fmt.Sprint(l)
	}
}
