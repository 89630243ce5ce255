package lineage

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// TypeKind distinguishes class-like from interface-like types.
type TypeKind int

const (
	ClassKind TypeKind = iota
	InterfaceKind
)

func (k TypeKind) String() string {
	switch k {
	case ClassKind:
		return "class"
	case InterfaceKind:
		return "interface"
	default:
		return "unknown"
	}
}

// TypeDescriptor is what a host type system exposes to TypeGraph.
// Descriptors are used as cache keys, so they must be comparable and the
// oracle must return the same descriptor for the same type (pointer types
// are the natural choice).
type TypeDescriptor interface {
	Name() string
	Kind() TypeKind
	// Superclass returns the direct superclass of a class-like type.
	Superclass() (TypeDescriptor, bool)
	// Interfaces returns the directly declared interfaces, in declaration
	// order. For interface-like types these are its super-interfaces.
	Interfaces() []TypeDescriptor
}

// Priority orders the class parent against interface parents.
type Priority int

const (
	ClassesFirst Priority = iota
	InterfacesFirst
)

func (p Priority) String() string {
	if p == InterfacesFirst {
		return "interfaces-first"
	}
	return "classes-first"
}

// ParsePriority parses the String form of a Priority.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classes-first", "classes", "":
		return ClassesFirst, nil
	case "interfaces-first", "interfaces":
		return InterfacesFirst, nil
	}
	return 0, errors.Newf("invalid priority %q: must be classes-first or interfaces-first", s)
}

// InterfaceOrder orders the interfaces of a type.
type InterfaceOrder int

const (
	DeclarationOrder InterfaceOrder = iota
	ReverseOrder
)

func (o InterfaceOrder) String() string {
	if o == ReverseOrder {
		return "reverse"
	}
	return "declaration"
}

// ParseInterfaceOrder parses the String form of an InterfaceOrder.
func ParseInterfaceOrder(s string) (InterfaceOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "declaration", "declared", "":
		return DeclarationOrder, nil
	case "reverse", "reversed":
		return ReverseOrder, nil
	}
	return 0, errors.Newf("invalid interface order %q: must be declaration or reverse", s)
}

// TypeOrder configures how TypeGraph orders multiple inheritance.
type TypeOrder struct {
	Priority   Priority
	Interfaces InterfaceOrder
}

// anyType labels the TypeGraph root.
type anyType struct{}

func (anyType) String() string { return "any" }

// AnyType is the label of every TypeGraph root.
var AnyType any = anyType{}

// TypeGraph builds a multi-parent hierarchy from a type oracle. Every class
// and interface becomes one category whose parents are its superclass
// followed by its declared interfaces. Classes without a superclass and
// interfaces without super-interfaces hang off the "any" root.
type TypeGraph struct {
	cz             *Categorization
	order          TypeOrder
	cache          map[TypeDescriptor]*Category
	building       map[TypeDescriptor]bool
	classRoots     []*Category
	interfaceRoots []*Category
}

// NewTypeGraph creates an empty type graph. The bottom-up policy is
// pre-order/keep-last and the top-down policy breadth-first/keep-first,
// both ordered by order.
func NewTypeGraph(order TypeOrder, opts ...Option) *TypeGraph {
	g := &TypeGraph{
		order:    order,
		cache:    make(map[TypeDescriptor]*Category),
		building: make(map[TypeDescriptor]bool),
	}
	base := []Option{
		WithName("types"),
		WithRootLabel(AnyType),
		WithBottomUp(Policy{Strategy: PreOrder, Next: g.supertypes, Redundancy: KeepLast}),
		WithTopDown(Policy{Strategy: BreadthFirst, Next: g.subtypes, Redundancy: KeepFirst}),
	}
	g.cz = NewCategorization(append(base, opts...)...)
	return g
}

// Categorization returns the underlying categorization.
func (g *TypeGraph) Categorization() *Categorization { return g.cz }

// Root returns the "any" category.
func (g *TypeGraph) Root() *Category { return g.cz.Root() }

// Order returns the multiple-inheritance ordering in use.
func (g *TypeGraph) Order() TypeOrder { return g.order }

// ClassRoots returns the classes attached directly to the root.
func (g *TypeGraph) ClassRoots() []*Category { return slices.Clone(g.classRoots) }

// InterfaceRoots returns the interfaces attached directly to the root.
func (g *TypeGraph) InterfaceRoots() []*Category { return slices.Clone(g.interfaceRoots) }

// Category returns the category for d, building it and any missing
// ancestors first. Results are cached by descriptor identity.
func (g *TypeGraph) Category(d TypeDescriptor) (*Category, error) {
	if c, ok := g.cache[d]; ok {
		return c, nil
	}
	if g.building[d] {
		return nil, errors.Wrapf(ErrInheritanceCycle, "type %s", d.Name())
	}
	g.building[d] = true
	defer delete(g.building, d)

	root := g.cz.Root()
	var parents []*Category
	attachedToRoot := false
	if d.Kind() == ClassKind {
		if super, ok := d.Superclass(); ok {
			sc, err := g.Category(super)
			if err != nil {
				return nil, errors.Wrapf(err, "superclass of %s", d.Name())
			}
			parents = append(parents, sc)
		} else {
			parents = append(parents, root)
			attachedToRoot = true
		}
	}
	for _, iface := range d.Interfaces() {
		ic, err := g.Category(iface)
		if err != nil {
			return nil, errors.Wrapf(err, "interface of %s", d.Name())
		}
		parents = append(parents, ic)
	}
	if len(parents) == 0 {
		parents = append(parents, root)
		attachedToRoot = true
	}

	c := g.cz.mustCreateChild(d, parents...)
	g.cache[d] = c
	if attachedToRoot {
		if d.Kind() == ClassKind {
			g.classRoots = append(g.classRoots, c)
		} else {
			g.interfaceRoots = append(g.interfaceRoots, c)
		}
	}
	return c, nil
}

// Lookup returns the cached category for d without building it.
func (g *TypeGraph) Lookup(d TypeDescriptor) (*Category, bool) {
	c, ok := g.cache[d]
	return c, ok
}

// Descriptor returns the descriptor c was built from. The root has none.
func (g *TypeGraph) Descriptor(c *Category) (TypeDescriptor, bool) {
	d, ok := c.label.(TypeDescriptor)
	return d, ok
}

// supertypes is the bottom-up NextFunc.
func (g *TypeGraph) supertypes(c *Category) []*Category {
	d, ok := g.Descriptor(c)
	if !ok {
		return nil
	}
	var class, ifaces []*Category
	if d.Kind() == ClassKind && len(c.parents) > 0 {
		class, ifaces = c.parents[:1], c.parents[1:]
	} else {
		ifaces = c.parents
	}
	if g.order.Interfaces == ReverseOrder {
		ifaces = slices.Clone(ifaces)
		slices.Reverse(ifaces)
	}
	return g.combine(class, ifaces)
}

// subtypes is the top-down NextFunc.
func (g *TypeGraph) subtypes(c *Category) []*Category {
	if c == g.cz.root {
		return g.combine(g.classRoots, g.interfaceRoots)
	}
	var classes, ifaces []*Category
	for _, child := range c.children {
		if d, ok := g.Descriptor(child); ok && d.Kind() == InterfaceKind {
			ifaces = append(ifaces, child)
		} else {
			classes = append(classes, child)
		}
	}
	return g.combine(classes, ifaces)
}

func (g *TypeGraph) combine(classes, ifaces []*Category) []*Category {
	out := make([]*Category, 0, len(classes)+len(ifaces))
	if g.order.Priority == InterfacesFirst {
		out = append(out, ifaces...)
		return append(out, classes...)
	}
	out = append(out, classes...)
	return append(out, ifaces...)
}
