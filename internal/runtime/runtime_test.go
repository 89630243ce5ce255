package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jward/lineage"
)

// animals builds root "" -> animal -> dog with sound=woof set on animal.
func animals(t *testing.T) (*lineage.LabelGraph, *lineage.SimpleKey[any]) {
	t.Helper()
	g := lineage.NewLabelGraph("")
	animal, err := g.Define("animal")
	require.NoError(t, err)
	_, err = g.Define("dog", "animal")
	require.NoError(t, err)

	sound := lineage.NewKey[any]("sound")
	require.NoError(t, lineage.Set[any](animal, sound, "woof", false))
	return g, sound
}

func mustLookup(t *testing.T, g *lineage.LabelGraph, label string) *lineage.Category {
	t.Helper()
	c, ok := g.Lookup(label)
	require.True(t, ok, "category %q", label)
	return c
}

// =============================================================================
// Eval
// =============================================================================

func TestEval_CategoryGlobals(t *testing.T) {
	t.Parallel()
	g, _ := animals(t)
	dog := mustLookup(t, g, "dog")
	rt := NewRuntime("")
	ctx := context.Background()

	tests := []struct {
		source string
		want   any
	}{
		{`label`, "dog"},
		{`parents`, []any{"animal"}},
		{`depth`, int64(2)},
		{`ordinal`, int64(2)},
		{`is_root`, false},
		{`categorization`, "labels"},
		{`ancestors()`, []any{"animal", ""}},
		{`label + "/" + parents[0]`, "dog/animal"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()
			got, err := rt.Eval(ctx, tt.source, dog)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_Prop(t *testing.T) {
	t.Parallel()
	g, sound := animals(t)
	rt := NewRuntime("", WithKeys(sound))

	got, err := rt.Eval(context.Background(), `prop("sound")`, mustLookup(t, g, "dog"))
	require.NoError(t, err)
	assert.Equal(t, "woof", got)

	got, err = rt.Eval(context.Background(), `prop("sound")`, g.Root())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEval_NilCategory(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")
	got, err := rt.Eval(context.Background(), `1 + 2`, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
}

func TestEval_LogGoesToZap(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.InfoLevel)
	g, _ := animals(t)
	rt := NewRuntime("", WithLogger(zap.New(core)))

	_, err := rt.Eval(context.Background(), `log.Warn("visiting " + label)`, mustLookup(t, g, "dog"))
	require.NoError(t, err)

	entries := logs.FilterMessage("visiting dog").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "script", entries[0].LoggerName)
}

// =============================================================================
// Computed keys
// =============================================================================

const shoutSource = `
func shout() {
	if is_root {
		return nil
	}
	return label + "!"
}
shout()
`

func TestKey_ComputesPerCategory(t *testing.T) {
	t.Parallel()
	g, _ := animals(t)
	rt := NewRuntime("")

	k, err := rt.Key(context.Background(), "shout", shoutSource)
	require.NoError(t, err)
	assert.Equal(t, "shout", k.Name())

	v, ok := lineage.Get[any](mustLookup(t, g, "dog"), k)
	require.True(t, ok)
	assert.Equal(t, "dog!", v)

	assert.Empty(t, k.Local(g.Root()))
	assert.Equal(t, []any{"dog!", "animal!"}, lineage.Values[any](mustLookup(t, g, "dog"), k))
}

func TestKey_OutlivesCancelledContext(t *testing.T) {
	t.Parallel()
	g, _ := animals(t)
	rt := NewRuntime("")

	ctx, cancel := context.WithCancel(context.Background())
	k, err := rt.Key(ctx, "shout", shoutSource)
	require.NoError(t, err)
	cancel()

	v, ok := lineage.Get[any](mustLookup(t, g, "dog"), k)
	require.True(t, ok)
	assert.Equal(t, "dog!", v)
}

func TestKey_IsReadOnly(t *testing.T) {
	t.Parallel()
	g, _ := animals(t)
	rt := NewRuntime("")
	k, err := rt.Key(context.Background(), "shout", shoutSource)
	require.NoError(t, err)

	err = lineage.Set[any](g.Root(), k, "x", true)
	assert.ErrorIs(t, err, lineage.ErrUnsupportedOperation)
	err = lineage.RemoveLocal[any](g.Root(), k)
	assert.ErrorIs(t, err, lineage.ErrUnsupportedOperation)
}

func TestKey_SyntaxError(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("")
	_, err := rt.Key(context.Background(), "broken", `label +`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `key "broken"`)
}

func TestKey_EvaluationFailureMeansNoValue(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.WarnLevel)
	g, _ := animals(t)
	rt := NewRuntime("", WithLogger(zap.New(core)))

	k, err := rt.Key(context.Background(), "undefined", `no_such_global + 1`)
	require.NoError(t, err)

	_, ok := lineage.Get[any](mustLookup(t, g, "dog"), k)
	assert.False(t, ok)
	assert.NotZero(t, logs.FilterMessage("computed key evaluation failed").Len())
}

func TestKeyFromScript(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shout.risor"), []byte(shoutSource), 0o644))
	g, _ := animals(t)

	rt := NewRuntime(dir)
	k, err := rt.KeyFromScript(context.Background(), "shout", "shout.risor")
	require.NoError(t, err)
	v, ok := lineage.Get[any](mustLookup(t, g, "animal"), k)
	require.True(t, ok)
	assert.Equal(t, "animal!", v)
}

// =============================================================================
// Script loading
// =============================================================================

func TestEvalScript_MissingFile(t *testing.T) {
	t.Parallel()
	rt := NewRuntime(t.TempDir())
	_, err := rt.EvalScript(context.Background(), "nonexistent.risor", nil)
	require.Error(t, err)
}

func TestLoadScript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.risor")
	content := `x := 42`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rt := NewRuntime(dir)
	got, err := rt.LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestLoadScript_FromFSFS(t *testing.T) {
	t.Parallel()

	content := `x := 42`
	mapFS := fstest.MapFS{
		"keys/size.risor": &fstest.MapFile{Data: []byte(content)},
	}

	rt := NewRuntime("", WithRuntimeFS(mapFS))

	got, err := rt.LoadScript("keys/size.risor")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	// Absolute-style path should be resolved within the FS.
	got, err = rt.LoadScript("/keys/size.risor")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestLoadScript_FromFSFS_NotFound(t *testing.T) {
	t.Parallel()

	rt := NewRuntime("", WithRuntimeFS(fstest.MapFS{}))

	_, err := rt.LoadScript("nonexistent.risor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from fs")
}

func TestEvalScript_FromFSFS(t *testing.T) {
	t.Parallel()
	mapFS := fstest.MapFS{
		"double.risor": &fstest.MapFile{Data: []byte(`depth * 2`)},
	}
	g, _ := animals(t)

	rt := NewRuntime("", WithRuntimeFS(mapFS))
	got, err := rt.EvalScript(context.Background(), "double.risor", mustLookup(t, g, "dog"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)
}

// =============================================================================
// Importer wiring
// =============================================================================

func TestImport_FSImporter(t *testing.T) {
	t.Parallel()
	// Risor's FSImporter resolves "naming" by trying name + ".risor".
	mapFS := fstest.MapFS{
		"naming.risor": &fstest.MapFile{Data: []byte(`
func qualify(name) {
	return "lineage:" + name
}
`)},
	}
	g, _ := animals(t)

	rt := NewRuntime("", WithRuntimeFS(mapFS))
	got, err := rt.Eval(context.Background(), `
import naming

naming.qualify(label)
`, mustLookup(t, g, "dog"))
	require.NoError(t, err)
	assert.Equal(t, "lineage:dog", got)
}

func TestImport_LocalImporterSeesGlobals(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "helper.risor"), []byte(`
func describe() {
	return '{label}@{depth}'
}
`), 0o644))
	g, _ := animals(t)

	rt := NewRuntime(dir)
	got, err := rt.Eval(context.Background(), `
import helper
helper.describe()
`, mustLookup(t, g, "animal"))
	require.NoError(t, err)
	assert.Equal(t, "animal@1", got)
}
