package lineage

import (
	stderrors "errors"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// DispatchOption configures a single Dispatch call.
type DispatchOption func(*dispatchConfig)

type dispatchConfig struct {
	signal error
	policy *Policy
}

// WithDelegationSignal replaces ErrNotMyResponsibility as the error that
// means "try the next candidate". Matching is by identity along the wrap
// chain, so a private marker never collides with an unrelated error that
// happens to carry the same message.
func WithDelegationSignal(signal error) DispatchOption {
	return func(cfg *dispatchConfig) {
		cfg.signal = signal
	}
}

// WithDispatchPolicy resolves candidates with p instead of the
// categorization's bottom-up policy.
func WithDispatchPolicy(p Policy) DispatchOption {
	return func(cfg *dispatchConfig) {
		cfg.policy = &p
	}
}

// Delegate returns an error that makes Dispatch move on to the next
// candidate under the default signal.
func Delegate(reason string) error {
	return errors.Wrap(ErrNotMyResponsibility, reason)
}

// Dispatch runs op over the values of key visible from c, nearest first,
// as a chain of responsibility. The first candidate for which op succeeds
// wins. A candidate returning the delegation signal passes control to the
// next one; any other error aborts the chain and is returned unchanged.
// When every candidate delegates, the error matches ErrChainExhausted.
func Dispatch[V, R any](c *Category, key Key[V], op func(candidate V) (R, error), opts ...DispatchOption) (R, error) {
	cfg := dispatchConfig{signal: ErrNotMyResponsibility}
	for _, opt := range opts {
		opt(&cfg)
	}
	policy := c.owner.bottomUp
	if cfg.policy != nil {
		policy = *cfg.policy
	}
	logger := c.owner.logger

	var zero R
	attempts := 0
	for candidate := range ResolveWith(c, key, policy) {
		attempts++
		result, err := op(candidate)
		if err == nil {
			c.owner.observeDispatch(key.Name(), attempts, nil)
			return result, nil
		}
		if !stderrors.Is(err, cfg.signal) {
			c.owner.observeDispatch(key.Name(), attempts, err)
			return zero, err
		}
		if ce := logger.Check(zap.DebugLevel, "dispatch candidate delegated"); ce != nil {
			ce.Write(
				zap.String("key", key.Name()),
				zap.Stringer("category", c),
				zap.Int("attempt", attempts),
				zap.Error(err),
			)
		}
	}

	err := errors.Wrapf(ErrChainExhausted, "dispatch %q from category %s: %d candidate(s) delegated",
		key.Name(), c, attempts)
	c.owner.observeDispatch(key.Name(), attempts, err)
	return zero, err
}

func (cz *Categorization) observeDispatch(key string, attempts int, err error) {
	if cz.observer != nil {
		cz.observer.ObserveDispatch(key, attempts, err)
	}
}
