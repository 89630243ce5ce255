package scripts

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/lineage"
	"github.com/jward/lineage/internal/runtime"
)

func builtin(t *testing.T, name string) *lineage.ComputedKey[any] {
	t.Helper()
	p, err := KeyPath(name)
	require.NoError(t, err)
	rt := runtime.NewRuntime("", runtime.WithRuntimeFS(FS))
	k, err := rt.KeyFromScript(context.Background(), name, p)
	require.NoError(t, err)
	return k
}

// diamond is thing <- A <- (B, C) <- D.
func diamond(t *testing.T) *lineage.LabelGraph {
	t.Helper()
	g := lineage.NewLabelGraph("thing")
	for _, def := range [][]string{{"A"}, {"B", "A"}, {"C", "A"}, {"D", "B", "C"}} {
		_, err := g.Define(def[0], def[1:]...)
		require.NoError(t, err)
	}
	return g
}

func value(t *testing.T, g *lineage.LabelGraph, k lineage.Key[any], label string) any {
	t.Helper()
	c, ok := g.Lookup(label)
	require.True(t, ok, "category %q", label)
	v, _ := lineage.Get[any](c, k)
	return v
}

func TestKeyNames(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"fanin", "path", "shape"}, KeyNames())
}

func TestKeyPath_Unknown(t *testing.T) {
	t.Parallel()
	_, err := KeyPath("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"nope"`)
	assert.Contains(t, errors.FlattenHints(err), "path")
}

func TestBuiltinKeys(t *testing.T) {
	t.Parallel()
	g := diamond(t)

	tests := []struct {
		key   string
		label string
		want  any
	}{
		{"path", "D", "D < B < C < A < thing"},
		{"path", "thing", "thing"},
		{"shape", "thing", "root"},
		{"shape", "A", "line"},
		{"shape", "D", "merge"},
		{"fanin", "D", int64(2)},
		{"fanin", "B", int64(1)},
		{"fanin", "thing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.key+"/"+tt.label, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, value(t, g, builtin(t, tt.key), tt.label))
		})
	}
}
