package runtime

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
	"github.com/risor-io/risor/parser"
	"go.uber.org/zap"

	"github.com/jward/lineage"
)

// Runtime embeds a Risor VM and evaluates scripts against a category.
// Scripts see the category through the globals label, parents, depth,
// ordinal, is_root and categorization, and the host functions ancestors()
// and prop(name).
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	logger     *zap.Logger
	keys       map[string]lineage.Key[any]
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk. Also configures the Risor importer to use
// FSImporter for import statement resolution.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithLogger routes the script log global and evaluation failures to l.
func WithLogger(l *zap.Logger) RuntimeOption {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithKeys makes keys readable from scripts through prop(name).
func WithKeys(keys ...lineage.Key[any]) RuntimeOption {
	return func(r *Runtime) {
		for _, k := range keys {
			r.keys[k.Name()] = k
		}
	}
}

// NewRuntime creates a Runtime that resolves script paths and imports
// relative to scriptsDir.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		scriptsDir: scriptsDir,
		logger:     zap.NewNop(),
		keys:       make(map[string]lineage.Key[any]),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Eval runs source with c bound to the category globals and returns the
// value of its last expression converted to Go. A script evaluating to nil
// returns nil.
func (r *Runtime) Eval(ctx context.Context, source string, c *lineage.Category) (any, error) {
	return r.eval(ctx, source, "<inline>", c)
}

// EvalScript loads the script at path and runs it like Eval.
func (r *Runtime) EvalScript(ctx context.Context, path string, c *lineage.Category) (any, error) {
	src, err := r.LoadScript(path)
	if err != nil {
		return nil, err
	}
	return r.eval(ctx, src, path, c)
}

// Key returns a computed key whose value on a category is the result of
// source. A nil result, or a failed evaluation, means no value; failures
// are logged at warn level. Syntax errors are reported here rather than on
// every lookup.
func (r *Runtime) Key(ctx context.Context, name, source string) (*lineage.ComputedKey[any], error) {
	return r.key(ctx, name, source, "<inline>")
}

// KeyFromScript is Key with the source loaded from a script file.
func (r *Runtime) KeyFromScript(ctx context.Context, name, path string) (*lineage.ComputedKey[any], error) {
	src, err := r.LoadScript(path)
	if err != nil {
		return nil, err
	}
	return r.key(ctx, name, src, path)
}

func (r *Runtime) key(ctx context.Context, name, source, label string) (*lineage.ComputedKey[any], error) {
	if _, err := parser.Parse(ctx, source); err != nil {
		return nil, errors.Wrapf(err, "runtime: key %q: script %s", name, label)
	}
	// The key outlives the call that built it; keep ctx values only.
	evalCtx := context.WithoutCancel(ctx)
	return lineage.NewComputedKey(name, func(c *lineage.Category) (any, bool) {
		v, err := r.eval(evalCtx, source, label, c)
		if err != nil {
			r.logger.Warn("computed key evaluation failed",
				zap.String("key", name),
				zap.Stringer("category", c),
				zap.Error(err),
			)
			return nil, false
		}
		return v, v != nil
	}), nil
}

func (r *Runtime) eval(ctx context.Context, source, label string, c *lineage.Category) (any, error) {
	globals := r.buildGlobals(c)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	// Wire importer so Risor import statements resolve correctly.
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	result, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "runtime: script %s", label)
	}
	if result == nil {
		return nil, nil
	}
	return result.Interface(), nil
}

// buildImporter returns a Risor importer configured for the Runtime's script source.
// Returns nil if neither fs.FS nor scriptsDir is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file and returns its source code.
// When an fs.FS is configured, uses fs.ReadFile on the embedded filesystem.
// Otherwise, uses os.ReadFile with scriptsDir as the base directory.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", errors.Wrapf(err, "runtime: loading script %s from fs", fsPath)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", errors.Wrapf(err, "runtime: loading script %s", fullPath)
	}
	return string(data), nil
}

// buildGlobals constructs the globals exposed to a script evaluated on c.
func (r *Runtime) buildGlobals(c *lineage.Category) map[string]any {
	globals := map[string]any{
		"log": mustProxy(&logObject{logger: r.logger.Named("script")}),
	}
	if c == nil {
		return globals
	}

	parents := c.Parents()
	parentLabels := make([]any, len(parents))
	for i, p := range parents {
		parentLabels[i] = p.String()
	}
	globals["label"] = c.String()
	globals["parents"] = parentLabels
	globals["depth"] = c.Depth()
	globals["ordinal"] = c.Ordinal()
	globals["is_root"] = c.IsRoot()
	globals["categorization"] = c.Categorization().Name()
	globals["ancestors"] = makeAncestorsFn(c)
	globals["prop"] = makePropFn(c, r.keys)
	return globals
}

// makeAncestorsFn creates the "ancestors" host function.
//
// ancestors() → list of labels, nearest first
func makeAncestorsFn(c *lineage.Category) *object.Builtin {
	return object.NewBuiltin("ancestors", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("ancestors", 0, len(args))
		}
		ancestors := c.Ancestors()
		items := make([]object.Object, len(ancestors))
		for i, a := range ancestors {
			items[i] = object.NewString(a.String())
		}
		return object.NewList(items)
	})
}

// makePropFn creates the "prop" host function.
//
// prop(name) → effective value of the named key, or nil
func makePropFn(c *lineage.Category, keys map[string]lineage.Key[any]) *object.Builtin {
	return object.NewBuiltin("prop", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("prop", 1, len(args))
		}
		nameStr, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("prop: name must be a string, got %s", args[0].Type())
		}
		k, ok := keys[nameStr.Value()]
		if !ok {
			return object.Errorf("prop: unknown key %q", nameStr.Value())
		}
		v, ok := lineage.Get(c, k)
		if !ok || v == nil {
			return object.Nil
		}
		return object.FromGoType(v)
	})
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(errors.Wrap(err, "runtime: proxy error"))
	}
	return p
}
