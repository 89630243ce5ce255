package javasrc

import (
	"context"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/jward/lineage"
)

var (
	grammar     *sitter.Language
	grammarOnce sync.Once
)

func language() *sitter.Language {
	grammarOnce.Do(func() {
		grammar = java.GetLanguage()
	})
	return grammar
}

// ParseFile extracts every type declared in src, nested types included, in
// source order. Files with syntax errors are still parsed; declarations
// tree-sitter could recover are returned.
func ParseFile(ctx context.Context, path string, src []byte) ([]Declaration, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(language())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	f := &fileScope{path: path, src: src}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			f.pkg = f.qualifiedName(child)
		case "import_declaration":
			f.imports = append(f.imports, f.importName(child))
		}
	}

	var decls []Declaration
	for i := 0; i < int(root.NamedChildCount()); i++ {
		decls = f.collect(root.NamedChild(i), f.pkg, decls)
	}
	for i := range decls {
		decls[i].Imports = f.imports
	}
	return decls, nil
}

type fileScope struct {
	path    string
	src     []byte
	pkg     string
	imports []string
}

func (f *fileScope) text(n *sitter.Node) string {
	return n.Content(f.src)
}

// qualifiedName returns the dotted name inside a package declaration.
func (f *fileScope) qualifiedName(n *sitter.Node) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "scoped_identifier" || c.Type() == "identifier" {
			return f.text(c)
		}
	}
	return ""
}

func (f *fileScope) importName(n *sitter.Node) string {
	name := ""
	wildcard := false
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "scoped_identifier", "identifier":
			name = f.text(c)
		case "asterisk":
			wildcard = true
		}
	}
	if wildcard {
		return name + ".*"
	}
	return name
}

// collect appends the declaration at n, if any, and the declarations nested
// in its body.
func (f *fileScope) collect(n *sitter.Node, scope string, decls []Declaration) []Declaration {
	var kind lineage.TypeKind
	switch n.Type() {
	case "class_declaration", "enum_declaration", "record_declaration":
		kind = lineage.ClassKind
	case "interface_declaration", "annotation_type_declaration":
		kind = lineage.InterfaceKind
	default:
		return decls
	}

	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return decls
	}
	simple := f.text(nameNode)
	qualified := simple
	if scope != "" {
		qualified = scope + "." + simple
	}
	d := Declaration{
		Name:    qualified,
		Simple:  simple,
		Package: f.pkg,
		Kind:    kind,
		File:    f.path,
		Line:    int(n.StartPoint().Row) + 1,
	}

	switch n.Type() {
	case "enum_declaration":
		d.Superclass = "java.lang.Enum"
	case "record_declaration":
		d.Superclass = "java.lang.Record"
	case "annotation_type_declaration":
		d.Interfaces = []string{"java.lang.annotation.Annotation"}
	}

	var body *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "superclass":
			if c.NamedChildCount() > 0 {
				d.Superclass = f.typeName(c.NamedChild(0))
			}
		case "super_interfaces", "extends_interfaces":
			d.Interfaces = append(d.Interfaces, f.typeList(c)...)
		case "class_body", "interface_body", "enum_body", "annotation_type_body":
			body = c
		}
	}

	decls = append(decls, d)
	if body != nil {
		decls = f.collectBody(body, qualified, decls)
	}
	return decls
}

func (f *fileScope) collectBody(body *sitter.Node, scope string, decls []Declaration) []Declaration {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		if c.Type() == "enum_body_declarations" {
			decls = f.collectBody(c, scope, decls)
			continue
		}
		decls = f.collect(c, scope, decls)
	}
	return decls
}

func (f *fileScope) typeList(n *sitter.Node) []string {
	var out []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "type_list" {
			continue
		}
		for j := 0; j < int(c.NamedChildCount()); j++ {
			if name := f.typeName(c.NamedChild(j)); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

// typeName strips type arguments and annotations from a type node:
// "java.util.List<String>" becomes "java.util.List".
func (f *fileScope) typeName(n *sitter.Node) string {
	switch n.Type() {
	case "type_identifier", "identifier":
		return f.text(n)
	case "scoped_type_identifier":
		var parts []string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if p := f.typeName(n.NamedChild(i)); p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, ".")
	case "generic_type":
		if n.NamedChildCount() > 0 {
			return f.typeName(n.NamedChild(0))
		}
	case "annotated_type":
		for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
			if p := f.typeName(n.NamedChild(i)); p != "" {
				return p
			}
		}
	}
	return ""
}
