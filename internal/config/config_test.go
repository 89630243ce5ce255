package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/lineage"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lineage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()
	// An explicit empty file avoids picking up a lineage.yaml from the tree.
	v, err := New(writeConfig(t, ""))
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, filepath.Join(".lineage", "lineage.db"), cfg.DB)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)

	order, err := cfg.TypeOrder()
	require.NoError(t, err)
	assert.Equal(t, lineage.TypeOrder{Priority: lineage.ClassesFirst, Interfaces: lineage.DeclarationOrder}, order)
}

func TestLoad_FromFile(t *testing.T) {
	t.Parallel()
	v, err := New(writeConfig(t, `
format: text
db: /tmp/x.db
log:
  level: debug
  json: true
typegraph:
  priority: interfaces-first
  interfaces: reverse
  concurrency: 4
scripts:
  dir: ./keys
`))
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "/tmp/x.db", cfg.DB)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, 4, cfg.TypeGraph.Concurrency)
	assert.Equal(t, "./keys", cfg.Scripts.Dir)

	order, err := cfg.TypeOrder()
	require.NoError(t, err)
	assert.Equal(t, lineage.InterfacesFirst, order.Priority)
	assert.Equal(t, lineage.ReverseOrder, order.Interfaces)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("LINEAGE_FORMAT", "text")
	t.Setenv("LINEAGE_TYPEGRAPH_PRIORITY", "interfaces")

	v, err := New(writeConfig(t, "format: json\n"))
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "interfaces", cfg.TypeGraph.Priority)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"format", "format: xml\n", `invalid format "xml"`},
		{"priority", "typegraph:\n  priority: sideways\n", "typegraph.priority"},
		{"interfaces", "typegraph:\n  interfaces: shuffled\n", "typegraph.interfaces"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := New(writeConfig(t, tt.body))
			require.NoError(t, err)
			_, err = Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestNew_MissingExplicitFile(t *testing.T) {
	t.Parallel()
	_, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
