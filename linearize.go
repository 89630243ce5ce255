package lineage

import (
	"iter"
	"slices"
)

// Walk returns the linearization of start under p as a lazy sequence.
//
// Ignore and KeepFirst are produced incrementally: consumers that stop early
// never force the rest of the hierarchy to be visited. KeepFirst prunes the
// expansion of categories it has already emitted, which yields exactly the
// first-occurrence subsequence of the raw traversal and also bounds cycles.
// KeepLast has to see the whole raw traversal before it can emit anything.
func Walk(start *Category, p Policy) iter.Seq[*Category] {
	next := p.Next
	if next == nil {
		next = Parents
	}
	switch p.Redundancy {
	case Ignore:
		return traverse(start, p.Strategy, next, nil)
	case KeepLast:
		return func(yield func(*Category) bool) {
			for _, c := range keepLast(slices.Collect(traverse(start, p.Strategy, next, nil))) {
				if !yield(c) {
					return
				}
			}
		}
	default:
		return func(yield func(*Category) bool) {
			traverse(start, p.Strategy, next, make(map[*Category]bool))(yield)
		}
	}
}

// Linearize materializes Walk. Calling it twice with the same policy on an
// unmodified hierarchy yields identical sequences.
func Linearize(start *Category, p Policy) []*Category {
	out := slices.Collect(Walk(start, p))
	if start.owner != nil && start.owner.observer != nil {
		start.owner.observer.ObserveLinearization(p, len(out))
	}
	return out
}

// traverse runs the raw search. When seen is non-nil every category is
// expanded at most once.
func traverse(start *Category, strategy SearchStrategy, next NextFunc, seen map[*Category]bool) iter.Seq[*Category] {
	switch strategy {
	case PostOrder:
		return func(yield func(*Category) bool) {
			var visit func(c *Category) bool
			visit = func(c *Category) bool {
				if seen != nil {
					if seen[c] {
						return true
					}
					seen[c] = true
				}
				for _, n := range next(c) {
					if !visit(n) {
						return false
					}
				}
				return yield(c)
			}
			visit(start)
		}
	case BreadthFirst:
		return func(yield func(*Category) bool) {
			if seen != nil {
				seen[start] = true
			}
			queue := []*Category{start}
			for len(queue) > 0 {
				c := queue[0]
				queue = queue[1:]
				if !yield(c) {
					return
				}
				for _, n := range next(c) {
					if seen != nil {
						if seen[n] {
							continue
						}
						seen[n] = true
					}
					queue = append(queue, n)
				}
			}
		}
	default:
		return func(yield func(*Category) bool) {
			var visit func(c *Category) bool
			visit = func(c *Category) bool {
				if seen != nil {
					if seen[c] {
						return true
					}
					seen[c] = true
				}
				if !yield(c) {
					return false
				}
				for _, n := range next(c) {
					if !visit(n) {
						return false
					}
				}
				return true
			}
			visit(start)
		}
	}
}

// keepFirst drops every category after its first occurrence.
func keepFirst(seq []*Category) []*Category {
	seen := make(map[*Category]bool, len(seq))
	out := make([]*Category, 0, len(seq))
	for _, c := range seq {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// keepLast drops every category except its last occurrence.
func keepLast(seq []*Category) []*Category {
	reversed := slices.Clone(seq)
	slices.Reverse(reversed)
	out := keepFirst(reversed)
	slices.Reverse(out)
	return out
}
