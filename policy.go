package lineage

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// SearchStrategy selects the order in which a traversal visits nodes.
type SearchStrategy int

const (
	// PreOrder visits a node, then each of its next nodes in order.
	PreOrder SearchStrategy = iota
	// PostOrder visits each next node in order, then the node itself.
	PostOrder
	// BreadthFirst visits nodes level by level using a FIFO queue.
	BreadthFirst
)

func (s SearchStrategy) String() string {
	switch s {
	case PreOrder:
		return "pre-order"
	case PostOrder:
		return "post-order"
	case BreadthFirst:
		return "breadth-first"
	default:
		return "unknown"
	}
}

// ParseSearchStrategy parses the String form of a SearchStrategy.
func ParseSearchStrategy(s string) (SearchStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pre-order", "preorder", "pre":
		return PreOrder, nil
	case "post-order", "postorder", "post":
		return PostOrder, nil
	case "breadth-first", "bfs", "breadth":
		return BreadthFirst, nil
	}
	return 0, errors.Newf("invalid search strategy %q: must be pre-order, post-order or breadth-first", s)
}

// Redundancy decides what happens to categories reachable through more than
// one path.
type Redundancy int

const (
	// KeepFirst keeps only the first occurrence of each category.
	KeepFirst Redundancy = iota
	// KeepLast keeps only the last occurrence of each category.
	KeepLast
	// Ignore returns the raw traversal, duplicates included. It never
	// terminates on a cyclic graph.
	Ignore
)

func (r Redundancy) String() string {
	switch r {
	case KeepFirst:
		return "keep-first"
	case KeepLast:
		return "keep-last"
	case Ignore:
		return "ignore"
	default:
		return "unknown"
	}
}

// ParseRedundancy parses the String form of a Redundancy.
func ParseRedundancy(s string) (Redundancy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keep-first", "first":
		return KeepFirst, nil
	case "keep-last", "last":
		return KeepLast, nil
	case "ignore", "none":
		return Ignore, nil
	}
	return 0, errors.Newf("invalid redundancy %q: must be keep-first, keep-last or ignore", s)
}

// NextFunc returns the ordered neighbours a traversal expands from c.
type NextFunc func(c *Category) []*Category

// Parents is the NextFunc of bottom-up traversals. The returned slice is
// shared with the category and must not be modified.
func Parents(c *Category) []*Category { return c.parents }

// Children is the NextFunc of top-down traversals. The returned slice is
// shared with the category and must not be modified.
func Children(c *Category) []*Category { return c.children }

// SortedBy reorders the output of next with cmp. The sort is stable, so
// categories cmp considers equal keep their declared order.
func SortedBy(next NextFunc, cmp func(a, b *Category) int) NextFunc {
	return func(c *Category) []*Category {
		nodes := slices.Clone(next(c))
		slices.SortStableFunc(nodes, cmp)
		return nodes
	}
}

// Policy describes how to linearize a hierarchy from a starting category.
type Policy struct {
	Strategy   SearchStrategy
	Next       NextFunc
	Redundancy Redundancy
}

// Default policies. Adapters with richer edge semantics (TypeGraph) build
// their own NextFunc but keep these strategies and redundancy rules.
var (
	// DefaultBottomUp puts the starting category first and defers shared
	// ancestors to their last occurrence.
	DefaultBottomUp = Policy{Strategy: PreOrder, Next: Parents, Redundancy: KeepLast}

	// DefaultTopDown walks descendants level by level.
	DefaultTopDown = Policy{Strategy: BreadthFirst, Next: Children, Redundancy: KeepFirst}

	// NameBottomUp and NameTopDown are used by single-parent trees, where
	// no category can be reached twice.
	NameBottomUp = Policy{Strategy: PreOrder, Next: Parents, Redundancy: Ignore}
	NameTopDown  = Policy{Strategy: PreOrder, Next: Children, Redundancy: Ignore}
)

func (p Policy) String() string {
	return p.Strategy.String() + "/" + p.Redundancy.String()
}

// WithStrategy returns a copy of p using strategy s.
func (p Policy) WithStrategy(s SearchStrategy) Policy {
	p.Strategy = s
	return p
}

// WithRedundancy returns a copy of p using redundancy r.
func (p Policy) WithRedundancy(r Redundancy) Policy {
	p.Redundancy = r
	return p
}
