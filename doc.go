// Package lineage is a categorization engine for multi-parent hierarchies.
// It computes linearizations of a category's ancestors or descendants and
// resolves properties along them, so a value set on an ancestor is visible
// from every descendant unless a nearer category overrides it.
//
// # Model
//
// A [Categorization] owns a root and a set of [Category] nodes. Each
// category has an ordered list of parents fixed at creation time. Parents
// always exist before their children, so the graph is acyclic and
// [Category.Ordinal] is a topological order.
//
// # Linearization
//
// A [Policy] combines a [SearchStrategy] (pre-order, post-order or
// breadth-first), a [NextFunc] that lists the neighbours to expand, and a
// [Redundancy] rule for categories reachable through more than one path:
//
//	root <- A <- B <- D
//	        A <- C <- D
//
//	pre-order/keep-last   D B C A root   (default bottom-up)
//	pre-order/keep-first  D B A root C
//	pre-order/ignore      D B A root C A root
//
// [Walk] produces the sequence lazily; [Linearize] materializes it.
//
// # Properties
//
// Properties are addressed by a [Key]. [SimpleKey] stores values on the
// category itself, [CompositeKey] writes to several keys at once and
// [ComputedKey] derives values from the category. [Resolve] walks the
// bottom-up linearization and yields local values nearest first:
//
//	color := lineage.NewKey[string]("color")
//	_ = lineage.Set(a, color, "red", false)
//	v, ok := lineage.Get(d, color) // "red", true
//
// # Dispatch
//
// [Dispatch] treats the resolved values of a key as a chain of
// responsibility. A candidate that returns [Delegate] passes control to the
// next one; any other error aborts the chain.
//
// # Adapters
//
// [NameGraph] builds a tree from dotted identifiers, [TypeGraph] builds a
// class/interface hierarchy from a [TypeDescriptor] oracle, and
// [LabelGraph] holds explicitly declared string-labelled categories.
// [Save] and [Load] persist a categorization in SQLite.
package lineage
