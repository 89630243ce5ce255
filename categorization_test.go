package lineage

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// =============================================================================
// Root and children
// =============================================================================

func TestCategorization_RootIsLazy(t *testing.T) {
	t.Parallel()
	cz := NewCategorization(WithRootLabel("top"))
	assert.False(t, cz.HasRoot())
	root := cz.Root()
	assert.True(t, cz.HasRoot())
	assert.Same(t, root, cz.Root())
	assert.Equal(t, "top", root.String())
	assert.True(t, root.IsRoot())
	assert.Equal(t, 0, root.Ordinal())
}

func TestCategorization_DuplicateRoot(t *testing.T) {
	t.Parallel()
	cz := NewCategorization(WithName("dup"))
	_, err := cz.CreateRoot("first")
	require.NoError(t, err)
	_, err = cz.CreateRoot("second")
	require.ErrorIs(t, err, ErrDuplicateRoot)
	assert.Equal(t, "first", cz.Root().String())
}

func TestCategorization_CreateChildMisuse(t *testing.T) {
	t.Parallel()
	cz := NewCategorization()
	other := NewCategorization(WithName("other"))

	_, err := cz.CreateChild("orphan")
	require.Error(t, err)
	assert.True(t, errors.IsAssertionFailure(err))

	_, err = cz.CreateChild("nil", nil)
	require.Error(t, err)
	assert.True(t, errors.IsAssertionFailure(err))

	_, err = cz.CreateChild("foreign", other.Root())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `categorization "other"`)
}

func TestCategorization_OrdinalsAndEdges(t *testing.T) {
	t.Parallel()
	_, cats := diamond(t)
	assert.Equal(t, 4, cats["D"].Ordinal())
	for _, c := range cats {
		for _, p := range c.Parents() {
			assert.Less(t, p.Ordinal(), c.Ordinal())
		}
	}
	assert.Equal(t, []string{"B", "C"}, Labels(cats["A"].Children()))
	assert.Equal(t, []string{"D"}, Labels(cats["C"].Children()))
}

func TestCategorization_RepeatedParentKeptAsDeclared(t *testing.T) {
	t.Parallel()
	cz := NewCategorization()
	a, err := cz.CreateChild("a", cz.Root())
	require.NoError(t, err)
	b, err := cz.CreateChild("b", a, a)
	require.NoError(t, err)

	assert.Len(t, b.Parents(), 2)
	assert.Len(t, a.Children(), 1)
	assert.Equal(t, []string{"b", "a", "<nil>"}, Labels(b.BottomUp()))
}

func TestCategorization_ParentsCopy(t *testing.T) {
	t.Parallel()
	_, cats := diamond(t)
	parents := cats["D"].Parents()
	parents[0] = cats["root"]
	assert.Equal(t, []string{"B", "C"}, Labels(cats["D"].Parents()))
}

func TestCategorization_CreationListeners(t *testing.T) {
	t.Parallel()
	var created []string
	g, _ := diamond(t, WithCreationListener(func(c *Category) {
		created = append(created, c.String())
	}))
	assert.Equal(t, []string{"root", "A", "B", "C", "D"}, created)

	var late []string
	g.Categorization().AddCreationListener(func(c *Category) { late = append(late, c.String()) })
	_, err := g.Define("E", "D")
	require.NoError(t, err)
	assert.Equal(t, []string{"E"}, late)
	assert.Len(t, created, 6)
}

func TestCategorization_LogsCreation(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.DebugLevel)
	diamond(t, WithLogger(zap.New(core)), WithName("shapes"))

	entries := logs.FilterMessage("category created").All()
	require.Len(t, entries, 5)
	last := entries[4].ContextMap()
	assert.Equal(t, "D", last["category"])
	assert.Equal(t, int64(2), last["parents"])
	assert.Equal(t, "shapes", last["categorization"])
}

// =============================================================================
// Category queries
// =============================================================================

func TestCategory_IsA(t *testing.T) {
	t.Parallel()
	_, cats := diamond(t)
	assert.True(t, cats["D"].IsA(cats["D"]))
	assert.True(t, cats["D"].IsA(cats["A"]))
	assert.True(t, cats["D"].IsA(cats["root"]))
	assert.False(t, cats["B"].IsA(cats["C"]))
	assert.False(t, cats["A"].IsA(cats["D"]))
}

func TestCategory_Depth(t *testing.T) {
	t.Parallel()
	g, cats := diamond(t)
	assert.Equal(t, 0, cats["root"].Depth())
	assert.Equal(t, 1, cats["A"].Depth())
	assert.Equal(t, 3, cats["D"].Depth())

	// A shortcut to the root shortens the depth.
	e, err := g.Define("E", "D", "root")
	require.NoError(t, err)
	assert.Equal(t, 1, e.Depth())
}

func TestHierarchyOf(t *testing.T) {
	t.Parallel()
	_, cats := diamond(t)
	color := NewKey[string]("color")
	require.NoError(t, Set[string](cats["B"], color, "red", false))

	h := HierarchyOf(cats["B"])
	assert.Same(t, cats["B"], h.Category)
	assert.Equal(t, []string{"A"}, Labels(h.Parents))
	assert.Equal(t, []string{"D"}, Labels(h.Children))
	assert.Equal(t, []string{"A", "root"}, Labels(h.Ancestors))
	assert.Equal(t, []string{"D"}, Labels(h.Descendants))
	assert.Equal(t, []string{"color"}, h.LocalKeys)
	assert.Equal(t, 2, h.Depth)

	leaf := HierarchyOf(cats["D"])
	assert.NotNil(t, leaf.Descendants)
	assert.Empty(t, leaf.Descendants)
}

func TestLabelString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "<nil>", labelString(nil))
	assert.Equal(t, "x", labelString("x"))
	assert.Equal(t, "any", labelString(AnyType))
	assert.Equal(t, "42", labelString(42))
	assert.Equal(t, "T", labelString(fakeType{name: "T"}))
}
