package lineage

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error kinds surfaced by the engine. Match them with errors.Is; wrapped
// variants keep the sentinel reachable through the error chain.
var (
	// ErrPropertyNotSet indicates that no category in a linearization
	// defines the requested key.
	ErrPropertyNotSet = errors.New("property not set")

	// ErrPropertyAlreadySet indicates a write that forbade overriding an
	// existing local value. The concrete error is *PropertyAlreadySetError.
	ErrPropertyAlreadySet = errors.New("property already set")

	// ErrUnsupportedOperation is returned when mutating a computed key.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrChainExhausted indicates every dispatch candidate delegated.
	ErrChainExhausted = errors.New("chain of responsibility exhausted")

	// ErrDuplicateRoot is returned when a categorization root is set twice.
	ErrDuplicateRoot = errors.New("categorization root already set")

	// ErrNotMyResponsibility is the default delegation signal for Dispatch.
	ErrNotMyResponsibility = errors.New("not my responsibility")

	// ErrUnknownParent is returned by LabelGraph when a parent label has
	// not been defined yet.
	ErrUnknownParent = errors.New("unknown parent category")

	// ErrDuplicateLabel is returned by LabelGraph when a label is defined twice.
	ErrDuplicateLabel = errors.New("duplicate category label")

	// ErrInheritanceCycle is returned by TypeGraph when a type oracle
	// reports a type among its own supertypes.
	ErrInheritanceCycle = errors.New("inheritance cycle")
)

// PropertyAlreadySetError reports a rejected write together with the value
// currently stored for the key.
type PropertyAlreadySetError struct {
	Key      string
	Category string
	Existing any
}

func (e *PropertyAlreadySetError) Error() string {
	return fmt.Sprintf("%s: key %q on category %s (current value %v)",
		ErrPropertyAlreadySet, e.Key, e.Category, e.Existing)
}

func (e *PropertyAlreadySetError) Unwrap() error {
	return ErrPropertyAlreadySet
}
