package lineage

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Key identifies a property. Property APIs are written against Key so they
// work with every variant; callers must be prepared for SetLocal and
// RemoveLocal to fail with ErrUnsupportedOperation.
type Key[V any] interface {
	// Name is a human-readable identifier used in errors, logs and
	// snapshots. It does not take part in key identity.
	Name() string
	// Local returns the values c defines for this key, without looking at
	// ancestors.
	Local(c *Category) []V
	// SetLocal stores v on c. When allowOverride is false and c already
	// holds a value, it fails with *PropertyAlreadySetError.
	SetLocal(c *Category, v V, allowOverride bool) error
	// RemoveLocal deletes the values stored on c.
	RemoveLocal(c *Category) error
}

// SimpleKey is an identity-compared key whose values live in the local
// property map of each category. Two SimpleKeys with the same name are
// different keys.
type SimpleKey[V any] struct {
	name string
}

// NewKey creates a SimpleKey.
func NewKey[V any](name string) *SimpleKey[V] {
	return &SimpleKey[V]{name: name}
}

func (k *SimpleKey[V]) Name() string { return k.name }

func (k *SimpleKey[V]) String() string { return k.name }

func (k *SimpleKey[V]) Local(c *Category) []V {
	raw := c.localValues(k)
	if len(raw) == 0 {
		return nil
	}
	out := make([]V, 0, len(raw))
	for _, v := range raw {
		tv, _ := v.(V) // nil values come back as the zero V
		out = append(out, tv)
	}
	return out
}

// SetLocal appends v to the local values of k on c.
func (k *SimpleKey[V]) SetLocal(c *Category, v V, allowOverride bool) error {
	if existing := c.localValues(k); len(existing) > 0 && !allowOverride {
		return &PropertyAlreadySetError{Key: k.name, Category: c.String(), Existing: existing[0]}
	}
	c.appendLocal(k, k.name, v)
	return nil
}

func (k *SimpleKey[V]) RemoveLocal(c *Category) error {
	c.removeLocal(k)
	return nil
}

func (k *SimpleKey[V]) encodeLocal(c *Category) ([]string, error) {
	vals := k.Local(c)
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(err, "encode key %q on %s", k.name, c)
		}
		out = append(out, string(b))
	}
	return out, nil
}

func (k *SimpleKey[V]) decodeLocal(c *Category, raw string) error {
	var v V
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return errors.Wrapf(err, "decode key %q on %s", k.name, c)
	}
	c.appendLocal(k, k.name, v)
	return nil
}

// CompositeKey tags values under several keys at once. Get concatenates the
// members' values in declared order; SetLocal and RemoveLocal apply to each
// member in declared order and stop at the first failure, leaving earlier
// members written.
type CompositeKey[V any] struct {
	name string
	keys []Key[V]
}

// NewCompositeKey creates a CompositeKey over keys.
func NewCompositeKey[V any](name string, keys ...Key[V]) *CompositeKey[V] {
	return &CompositeKey[V]{name: name, keys: keys}
}

func (k *CompositeKey[V]) Name() string { return k.name }

// Members returns the member keys in declared order.
func (k *CompositeKey[V]) Members() []Key[V] {
	out := make([]Key[V], len(k.keys))
	copy(out, k.keys)
	return out
}

func (k *CompositeKey[V]) Local(c *Category) []V {
	var out []V
	for _, member := range k.keys {
		out = append(out, member.Local(c)...)
	}
	return out
}

func (k *CompositeKey[V]) SetLocal(c *Category, v V, allowOverride bool) error {
	for _, member := range k.keys {
		if err := member.SetLocal(c, v, allowOverride); err != nil {
			return errors.Wrapf(err, "composite key %q: member %q", k.name, member.Name())
		}
	}
	return nil
}

func (k *CompositeKey[V]) RemoveLocal(c *Category) error {
	for _, member := range k.keys {
		if err := member.RemoveLocal(c); err != nil {
			return errors.Wrapf(err, "composite key %q: member %q", k.name, member.Name())
		}
	}
	return nil
}

// ComputedKey derives its value from the category instead of storing it.
// The function returns false when the category has no value. SetLocal and
// RemoveLocal always fail with ErrUnsupportedOperation.
type ComputedKey[V any] struct {
	name string
	fn   func(c *Category) (V, bool)
}

// NewComputedKey creates a ComputedKey. fn must not modify the hierarchy.
func NewComputedKey[V any](name string, fn func(c *Category) (V, bool)) *ComputedKey[V] {
	return &ComputedKey[V]{name: name, fn: fn}
}

func (k *ComputedKey[V]) Name() string { return k.name }

func (k *ComputedKey[V]) Local(c *Category) []V {
	if v, ok := k.fn(c); ok {
		return []V{v}
	}
	return nil
}

func (k *ComputedKey[V]) SetLocal(c *Category, _ V, _ bool) error {
	return errors.Wrapf(ErrUnsupportedOperation, "computed key %q: set on %s", k.name, c)
}

func (k *ComputedKey[V]) RemoveLocal(c *Category) error {
	return errors.Wrapf(ErrUnsupportedOperation, "computed key %q: remove on %s", k.name, c)
}

// Compile-time checks.
var (
	_ Key[any] = (*SimpleKey[any])(nil)
	_ Key[any] = (*CompositeKey[any])(nil)
	_ Key[any] = (*ComputedKey[any])(nil)
)
