package javasrc

import (
	"context"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jward/lineage"
)

// Index is a set of resolved Java types keyed by qualified name.
type Index struct {
	types  map[string]*Type
	order  []*Type
	simple map[string][]*Type
}

func newIndex() *Index {
	ix := &Index{
		types:  make(map[string]*Type),
		simple: make(map[string][]*Type),
	}
	ix.external(ObjectName, lineage.ClassKind)
	return ix
}

// Object returns java.lang.Object.
func (ix *Index) Object() *Type { return ix.types[ObjectName] }

// Type returns the type with the given qualified name. A simple name is
// accepted when it identifies exactly one declared type.
func (ix *Index) Type(name string) (*Type, bool) {
	if t, ok := ix.types[name]; ok {
		return t, true
	}
	if cands := ix.simple[name]; len(cands) == 1 {
		return cands[0], true
	}
	return nil, false
}

// Types returns every type, declared and external, in the order they were
// added.
func (ix *Index) Types() []*Type { return slices.Clone(ix.order) }

// Len returns the number of types.
func (ix *Index) Len() int { return len(ix.order) }

func (ix *Index) add(t *Type) {
	ix.types[t.name] = t
	ix.order = append(ix.order, t)
}

// external returns the external type called name, creating it if needed.
// Every external class other than java.lang.Object extends Object.
func (ix *Index) external(name string, kind lineage.TypeKind) *Type {
	if t, ok := ix.types[name]; ok {
		return t
	}
	t := &Type{name: name, kind: kind, external: true}
	if kind == lineage.ClassKind && name != ObjectName {
		t.superclass = ix.types[ObjectName]
	}
	ix.add(t)
	return t
}

// Link resolves the supertypes of decls into an Index. Two declarations
// with the same qualified name are an error. Names that do not resolve to a
// declaration become external types.
func Link(decls []Declaration) (*Index, error) {
	ix := newIndex()
	for i := range decls {
		d := &decls[i]
		if existing, ok := ix.types[d.Name]; ok && !existing.external {
			return nil, errors.Newf("type %s declared twice: %s:%d and %s:%d",
				d.Name, existing.decl.File, existing.decl.Line, d.File, d.Line)
		}
		t, ok := ix.types[d.Name]
		if ok {
			// java.lang.Object itself is being indexed.
			t.external = false
			t.kind = d.Kind
		} else {
			t = &Type{name: d.Name, kind: d.Kind}
			ix.add(t)
		}
		t.decl = d
		ix.simple[d.Simple] = append(ix.simple[d.Simple], t)
	}

	for i := range decls {
		d := &decls[i]
		t := ix.types[d.Name]
		if d.Kind == lineage.ClassKind {
			switch {
			case d.Superclass != "":
				t.superclass = ix.resolve(d, d.Superclass, lineage.ClassKind)
			case d.Name != ObjectName:
				t.superclass = ix.Object()
			}
		}
		for _, iface := range d.Interfaces {
			t.interfaces = append(t.interfaces, ix.resolve(d, iface, lineage.InterfaceKind))
		}
	}
	return ix, nil
}

// resolve finds the type a name refers to from inside d. Unresolved names
// become external types of kind, qualified through a matching single-type
// import when there is one.
func (ix *Index) resolve(d *Declaration, name string, kind lineage.TypeKind) *Type {
	if t, ok := ix.lookup(d, name); ok {
		return t
	}
	if !strings.Contains(name, ".") {
		for _, imp := range d.Imports {
			if strings.HasSuffix(imp, "."+name) {
				return ix.external(imp, kind)
			}
		}
	}
	return ix.external(name, kind)
}

// lookup follows Java's order for a type name used inside d: enclosing
// types, single-type imports, the package, on-demand imports, then
// java.lang. A dotted name is tried as qualified first, then as a member of
// whatever its first segment resolves to.
func (ix *Index) lookup(d *Declaration, name string) (*Type, bool) {
	if head, rest, dotted := strings.Cut(name, "."); dotted {
		if t, ok := ix.types[name]; ok {
			return t, true
		}
		if outer, ok := ix.lookup(d, head); ok {
			t, ok := ix.types[outer.name+"."+rest]
			return t, ok
		}
		return nil, false
	}

	for scope := d.Name; scope != ""; {
		if t, ok := ix.types[scope+"."+name]; ok {
			return t, true
		}
		st, ok := ix.types[scope]
		if !ok || st.decl == nil {
			break
		}
		scope = st.decl.enclosing()
	}

	for _, imp := range d.Imports {
		if strings.HasSuffix(imp, "."+name) {
			t, ok := ix.types[imp]
			return t, ok
		}
	}

	local := name
	if d.Package != "" {
		local = d.Package + "." + name
	}
	if t, ok := ix.types[local]; ok {
		return t, true
	}

	for _, imp := range d.Imports {
		if pkg, ok := strings.CutSuffix(imp, ".*"); ok {
			if t, ok := ix.types[pkg+"."+name]; ok {
				return t, true
			}
		}
	}

	t, ok := ix.types["java.lang."+name]
	return t, ok
}

// Option configures IndexDirectory.
type Option func(*indexConfig)

type indexConfig struct {
	logger      *zap.Logger
	concurrency int
}

// WithLogger logs parse progress to l.
func WithLogger(l *zap.Logger) Option {
	return func(c *indexConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithConcurrency limits the number of files parsed at once.
func WithConcurrency(n int) Option {
	return func(c *indexConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// IndexDirectory parses every .java file under dir in parallel and links
// the result. Files ignored by git are skipped when dir is in a work tree. Declarations are linked in path order, so the index is the
// same from run to run.
func IndexDirectory(ctx context.Context, dir string, opts ...Option) (*Index, error) {
	cfg := indexConfig{logger: zap.NewNop(), concurrency: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&cfg)
	}

	paths, err := listJavaFiles(dir)
	if err != nil {
		return nil, err
	}

	perFile := make([][]Declaration, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			src, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "read %s", path)
			}
			decls, err := ParseFile(gctx, path, src)
			if err != nil {
				return err
			}
			perFile[i] = decls
			if ce := cfg.logger.Check(zap.DebugLevel, "parsed java file"); ce != nil {
				ce.Write(zap.String("path", path), zap.Int("types", len(decls)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Declaration
	for _, decls := range perFile {
		all = append(all, decls...)
	}
	ix, err := Link(all)
	if err != nil {
		return nil, err
	}
	cfg.logger.Info("indexed java sources",
		zap.String("dir", dir),
		zap.Int("files", len(paths)),
		zap.Int("types", ix.Len()),
	)
	return ix, nil
}

// Populate builds a category in g for every type of ix, in index order.
func (ix *Index) Populate(g *lineage.TypeGraph) error {
	for _, t := range ix.order {
		if _, err := g.Category(t); err != nil {
			return errors.Wrapf(err, "populate %s", t.name)
		}
	}
	return nil
}
