package lineage

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// handlers puts one handler name on D, B and A of a diamond, so the
// candidates from D are "d", "b", "a".
func handlers(t *testing.T) (map[string]*Category, *SimpleKey[string]) {
	t.Helper()
	_, cats := diamond(t)
	k := NewKey[string]("handler")
	for _, label := range []string{"A", "B", "D"} {
		require.NoError(t, Set[string](cats[label], k, strings.ToLower(label), false))
	}
	return cats, k
}

// recordingObserver captures dispatch observations.
type recordingObserver struct {
	linearizations int
	dispatches     []dispatchRecord
}

type dispatchRecord struct {
	key      string
	attempts int
	err      error
}

func (o *recordingObserver) ObserveLinearization(Policy, int) { o.linearizations++ }

func (o *recordingObserver) ObserveDispatch(key string, attempts int, err error) {
	o.dispatches = append(o.dispatches, dispatchRecord{key, attempts, err})
}

func TestDispatch_FirstSuccessWins(t *testing.T) {
	t.Parallel()
	cats, k := handlers(t)
	var tried []string
	got, err := Dispatch[string, string](cats["D"], k, func(h string) (string, error) {
		tried = append(tried, h)
		if h == "b" {
			return "handled by b", nil
		}
		return "", Delegate("only b handles this")
	})
	require.NoError(t, err)
	assert.Equal(t, "handled by b", got)
	assert.Equal(t, []string{"d", "b"}, tried)
}

func TestDispatch_UnrelatedErrorAborts(t *testing.T) {
	t.Parallel()
	cats, k := handlers(t)
	boom := errors.New("boom")
	var tried []string
	_, err := Dispatch[string, int](cats["D"], k, func(h string) (int, error) {
		tried = append(tried, h)
		if h == "d" {
			return 0, Delegate("not d")
		}
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrChainExhausted)
	assert.Equal(t, []string{"d", "b"}, tried, "a must not be invoked")
}

func TestDispatch_AllDelegate(t *testing.T) {
	t.Parallel()
	cats, k := handlers(t)
	calls := 0
	_, err := Dispatch[string, string](cats["D"], k, func(string) (string, error) {
		calls++
		return "", Delegate("no")
	})
	require.ErrorIs(t, err, ErrChainExhausted)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "3 candidate(s) delegated")
}

func TestDispatch_NoCandidates(t *testing.T) {
	t.Parallel()
	_, cats := diamond(t)
	_, err := Dispatch[string, string](cats["D"], NewKey[string]("none"), func(string) (string, error) {
		t.Fatal("op must not run")
		return "", nil
	})
	require.ErrorIs(t, err, ErrChainExhausted)
}

func TestDispatch_PrivateSignal(t *testing.T) {
	t.Parallel()
	cats, k := handlers(t)
	errSkip := errors.New("skip")
	// Same message, different identity.
	lookalike := errors.New("skip")

	got, err := Dispatch[string, string](cats["D"], k, func(h string) (string, error) {
		if h == "a" {
			return "a", nil
		}
		return "", errors.Wrap(errSkip, h)
	}, WithDelegationSignal(errSkip))
	require.NoError(t, err)
	assert.Equal(t, "a", got)

	_, err = Dispatch[string, string](cats["D"], k, func(string) (string, error) {
		return "", lookalike
	}, WithDelegationSignal(errSkip))
	require.ErrorIs(t, err, lookalike)
	assert.NotErrorIs(t, err, ErrChainExhausted)

	// The default signal is an ordinary error under a private one.
	_, err = Dispatch[string, string](cats["D"], k, func(string) (string, error) {
		return "", Delegate("default")
	}, WithDelegationSignal(errSkip))
	require.ErrorIs(t, err, ErrNotMyResponsibility)
	assert.NotErrorIs(t, err, ErrChainExhausted)
}

func TestDispatch_WithPolicy(t *testing.T) {
	t.Parallel()
	_, cats := diamond(t)
	k := NewKey[string]("handler")
	require.NoError(t, Set[string](cats["A"], k, "a", false))
	require.NoError(t, Set[string](cats["C"], k, "c", false))

	first := func(h string) (string, error) { return h, nil }
	got, err := Dispatch[string, string](cats["D"], k, first)
	require.NoError(t, err)
	assert.Equal(t, "c", got)

	got, err = Dispatch[string, string](cats["D"], k, first,
		WithDispatchPolicy(Policy{Strategy: PreOrder, Next: Parents, Redundancy: KeepFirst}))
	require.NoError(t, err)
	assert.Equal(t, "a", got)
}

func TestDispatch_Observed(t *testing.T) {
	t.Parallel()
	obs := &recordingObserver{}
	_, cats := diamond(t, WithObserver(obs))
	k := NewKey[string]("handler")
	require.NoError(t, Set[string](cats["A"], k, "a", false))

	_, err := Dispatch[string, string](cats["D"], k, func(string) (string, error) {
		return "", Delegate("no")
	})
	require.Error(t, err)
	require.Len(t, obs.dispatches, 1)
	assert.Equal(t, "handler", obs.dispatches[0].key)
	assert.Equal(t, 1, obs.dispatches[0].attempts)
	assert.ErrorIs(t, obs.dispatches[0].err, ErrChainExhausted)

	cats["D"].BottomUp()
	assert.Equal(t, 1, obs.linearizations)
}
