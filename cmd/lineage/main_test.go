package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/lineage/internal/metrics"
)

func TestFindRepoRoot_DirectGitDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := findRepoRoot(root)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NestedSubdirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	deep := filepath.Join(root, "sub", "deep")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	got := findRepoRoot(deep)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NoGitAncestor(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	got := findRepoRoot(dir)
	assert.Equal(t, dir, got)
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()
	require.NoError(t, validateFormat("json"))
	require.NoError(t, validateFormat("text"))
	err := validateFormat("yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestSplitList(t *testing.T) {
	t.Parallel()
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a.b", "c"}, splitList(" a.b, ,c ,"))
}

func TestDisplayLabel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "(root)", displayLabel(""))
	assert.Equal(t, "a.b", displayLabel("a.b"))
}

// =============================================================================
// Text formatting
// =============================================================================

func TestOutputResultText_Linearization(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{
		Command: "names linearize",
		Results: CLILinearization{
			Start:      "a.b",
			Direction:  "bottom-up",
			Policy:     "pre-order/ignore",
			Categories: []string{"a.b", "a", ""},
		},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "a.b")
	assert.Contains(t, out, "(root)")
}

func TestOutputResultText_UnsupportedType(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{Results: 42})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported result type")
}

// =============================================================================
// Metrics
// =============================================================================

func TestToCLIMetrics(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)
	c.Categories.WithLabelValues("labels").Add(3)
	c.DispatchAttempts.Observe(2)
	c.DispatchAttempts.Observe(1)

	families, err := reg.Gather()
	require.NoError(t, err)
	got := toCLIMetrics(families)

	byName := make(map[string]CLIMetric)
	for _, m := range got {
		byName[m.Name] = m
	}
	created, ok := byName["lineage_categories_created_total"]
	require.True(t, ok)
	assert.Equal(t, 3.0, created.Value)
	assert.Equal(t, map[string]string{"categorization": "labels"}, created.Labels)

	attempts, ok := byName["lineage_dispatch_attempts"]
	require.True(t, ok)
	assert.Equal(t, 3.0, attempts.Value)
	assert.Equal(t, uint64(2), attempts.Count)
	assert.Nil(t, attempts.Labels)
}
