package lineage

import (
	"iter"
	"slices"

	"github.com/cockroachdb/errors"
)

// Resolve returns the values of k visible from c, walking the bottom-up
// policy of c's categorization. Values of nearer categories come first, so
// the first element is the effective value. The sequence is lazy: stopping
// early stops the walk.
func Resolve[V any](c *Category, k Key[V]) iter.Seq[V] {
	return ResolveWith(c, k, c.owner.bottomUp)
}

// ResolveWith is Resolve with an explicit linearization policy.
func ResolveWith[V any](c *Category, k Key[V], p Policy) iter.Seq[V] {
	return func(yield func(V) bool) {
		for cat := range Walk(c, p) {
			for _, v := range k.Local(cat) {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Values collects Resolve into a slice.
func Values[V any](c *Category, k Key[V]) []V {
	return slices.Collect(Resolve(c, k))
}

// IsPresent reports whether Resolve(c, k) yields at least one value.
func IsPresent[V any](c *Category, k Key[V]) bool {
	_, ok := Get(c, k)
	return ok
}

// Get returns the effective value of k for c.
func Get[V any](c *Category, k Key[V]) (V, bool) {
	for v := range Resolve(c, k) {
		return v, true
	}
	var zero V
	return zero, false
}

// Require returns the effective value of k for c or an error matching
// ErrPropertyNotSet.
func Require[V any](c *Category, k Key[V]) (V, error) {
	v, ok := Get(c, k)
	if !ok {
		return v, errors.Wrapf(ErrPropertyNotSet, "key %q from category %s", k.Name(), c)
	}
	return v, nil
}

// Set writes v locally on c. It never touches ancestors. With allowOverride
// false, a category that already holds a value for k is left unchanged and
// the returned error matches ErrPropertyAlreadySet.
func Set[V any](c *Category, k Key[V], v V, allowOverride bool) error {
	return k.SetLocal(c, v, allowOverride)
}

// RemoveLocal deletes the local values of k on c. Values inherited from
// ancestors stay visible.
func RemoveLocal[V any](c *Category, k Key[V]) error {
	return k.RemoveLocal(c)
}

// IsLocal reports whether c itself defines k.
func IsLocal[V any](c *Category, k Key[V]) bool {
	return len(k.Local(c)) > 0
}
