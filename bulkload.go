package ordtree

import (
	"fmt"
	"math"
)

// DefaultLoadFactor is the target fill ratio for leaves packed by BulkLoad.
const DefaultLoadFactor = 0.8

type loadConfig struct {
	loadFactor float64
}

// LoadOption adjusts bulk-load behavior.
type LoadOption func(*loadConfig)

// WithLoadFactor overrides the target fill ratio. Valid ratios lie in
// [0.5, 1.0]; BulkLoad rejects anything else.
func WithLoadFactor(f float64) LoadOption {
	return func(cfg *loadConfig) {
		cfg.loadFactor = f
	}
}

// BulkLoad constructs a balanced tree directly from sorted, duplicate-free
// input in O(n), producing a better-packed tree than repeated insertion.
//
// keys must be strictly ascending under compare. values must parallel keys;
// passing nil values builds a set-mode tree that stores no values at all.
// maxNodeSize must be even and at least 4 (a programming error otherwise).
func BulkLoad[K, V any](keys []K, values []V, maxNodeSize int, compare func(K, K) int, opts ...LoadOption) (*Tree[K, V], error) {
	assert(compare != nil, "BulkLoad requires a comparator")
	assertNodeSize(maxNodeSize)
	cfg := loadConfig{loadFactor: DefaultLoadFactor}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.loadFactor < 0.5 || cfg.loadFactor > 1.0 {
		return nil, fmt.Errorf("%w: %g not in [0.5, 1.0]", ErrLoadFactor, cfg.loadFactor)
	}
	if values != nil && len(values) != len(keys) {
		return nil, fmt.Errorf("%w: %d keys, %d values", ErrLengthMismatch, len(keys), len(values))
	}
	for i := 1; i < len(keys); i++ {
		if compare(keys[i-1], keys[i]) >= 0 {
			return nil, fmt.Errorf("%w: at index %d", ErrNotAscending, i)
		}
	}
	t := New[K, V](compare, maxNodeSize)
	t.set = values == nil
	t.root = buildFromSorted(keys, values, maxNodeSize, cfg.loadFactor)
	T().Debugf("bulk load of %d keys produced tree of height %d", len(keys), t.Height())
	return t, nil
}

// buildFromSorted packs validated sorted input into leaves and builds
// parent levels bottom-up. Input slices are copied, never aliased.
func buildFromSorted[K, V any](keys []K, values []V, maxNodeSize int, loadFactor float64) node[K, V] {
	n := len(keys)
	if n == 0 {
		return nil
	}
	target := int(math.Ceil(float64(maxNodeSize) * loadFactor))
	minFill := maxNodeSize / 2

	// Leaf packing: even chunking keeps leaf sizes within one of each
	// other; the clamp keeps every leaf at or above half full.
	leafCount := 1
	if n > maxNodeSize {
		leafCount = ceilDiv(n, target)
		if most := n / minFill; leafCount > most {
			leafCount = most
		}
	}
	level := make([]node[K, V], 0, leafCount)
	remaining, off := n, 0
	for l := leafCount; l > 0; l-- {
		c := ceilDiv(remaining, l)
		level = append(level, makeLeaf(keys[off:off+c], sliceRange(values, off, off+c)))
		off += c
		remaining -= c
	}

	// Level building: wrap the whole level once it fits in one parent,
	// except at the exact half-full boundary, which the next pass would
	// immediately have to unwind.
	for len(level) > 1 {
		count := len(level)
		if count <= maxNodeSize && !(count == maxNodeSize && target == minFill) {
			level = []node[K, V]{makeInternal(level...)}
			break
		}
		parentCount := ceilDiv(count, target)
		if most := count / minFill; parentCount > most {
			parentCount = most
		}
		parents := make([]node[K, V], 0, parentCount)
		remaining, off = count, 0
		for l := parentCount; l > 0; l-- {
			c := ceilDiv(remaining, l)
			parents = append(parents, makeInternal(level[off:off+c]...))
			off += c
			remaining -= c
		}
		// Even chunking under the clamp keeps every parent at or above
		// minimum fill already; the borrow remains as the repair step for
		// any future change to the chunking rule.
		if last := parents[len(parents)-1]; last.length() < minFill {
			takeFromLeft(last, parents[len(parents)-2], minFill)
		}
		level = parents
	}
	return level[0]
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func sliceRange[V any](vals []V, from, to int) []V {
	if vals == nil {
		return nil
	}
	return vals[from:to]
}
