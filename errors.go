package ordtree

import "errors"

var (
	// ErrLoadFactor signals a bulk-load load factor outside [0.5, 1.0].
	ErrLoadFactor = errors.New("ordtree: load factor out of range")
	// ErrLengthMismatch signals bulk-load key and value sequences of unequal length.
	ErrLengthMismatch = errors.New("ordtree: keys and values differ in length")
	// ErrNotAscending signals bulk-load keys that are not strictly ascending.
	// Duplicate keys are an ordering violation, not silently merged.
	ErrNotAscending = errors.New("ordtree: keys not strictly ascending")
	// ErrComparatorMismatch signals a set operation over trees with different
	// comparators.
	ErrComparatorMismatch = errors.New("ordtree: trees use different comparators")
	// ErrNodeSizeMismatch signals a set operation that requires both trees to
	// share one maximum node size.
	ErrNodeSizeMismatch = errors.New("ordtree: trees use different node sizes")
	// ErrInvariant signals a structural invariant violation found by Check.
	ErrInvariant = errors.New("ordtree: invariant violation")
)
