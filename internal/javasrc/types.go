package javasrc

import (
	"strings"

	"github.com/jward/lineage"
)

// ObjectName is the implicit superclass of every class.
const ObjectName = "java.lang.Object"

// Declaration is one type declared in a Java source file, before its
// supertypes are resolved. Supertype names are kept as written.
type Declaration struct {
	Name       string // qualified: package, enclosing types, simple name
	Simple     string
	Package    string
	Kind       lineage.TypeKind
	Superclass string // "" when the declaration has no extends clause
	Interfaces []string
	Imports    []string // single-type and on-demand ("pkg.*") imports of the file
	File       string
	Line       int // 1-based
}

// enclosing returns the qualified name of the type declaring d, or "" for a
// top-level type.
func (d *Declaration) enclosing() string {
	prefix := d.Package
	if prefix != "" {
		prefix += "."
	}
	rest := d.Name[len(prefix):]
	if i := strings.LastIndexByte(rest, '.'); i >= 0 {
		return prefix + rest[:i]
	}
	return ""
}

// Type is a resolved Java type. It implements lineage.TypeDescriptor.
// Types that are referenced but not declared in the indexed sources are
// external: their supertypes are unknown beyond java.lang.Object.
type Type struct {
	name       string
	kind       lineage.TypeKind
	superclass *Type
	interfaces []*Type
	external   bool
	decl       *Declaration
}

func (t *Type) Name() string { return t.name }

func (t *Type) String() string { return t.name }

func (t *Type) Kind() lineage.TypeKind { return t.kind }

// External reports whether t was referenced but never declared.
func (t *Type) External() bool { return t.external }

// Declaration returns the source declaration, or nil for external types.
func (t *Type) Declaration() *Declaration { return t.decl }

func (t *Type) Superclass() (lineage.TypeDescriptor, bool) {
	if t.superclass == nil {
		return nil, false
	}
	return t.superclass, true
}

func (t *Type) Interfaces() []lineage.TypeDescriptor {
	if len(t.interfaces) == 0 {
		return nil
	}
	out := make([]lineage.TypeDescriptor, len(t.interfaces))
	for i, iface := range t.interfaces {
		out[i] = iface
	}
	return out
}

var _ lineage.TypeDescriptor = (*Type)(nil)
