package ordtree

import "fmt"

// Check validates structural tree invariants.
//
// This checker is intentionally strict and meant for tests: uniform leaf
// depth, occupancy bounds, cached subtree sizes, parallel value storage and
// global strict key order are all verified. It does not run on hot paths.
func (t *Tree[K, V]) Check() error {
	if t == nil {
		return fmt.Errorf("%w: nil tree", ErrInvariant)
	}
	if t.root == nil {
		return nil
	}
	_, _, err := t.checkNode(t.root, true)
	if err != nil {
		return err
	}
	return t.checkKeyOrder()
}

func (t *Tree[K, V]) checkNode(n node[K, V], isRoot bool) (items int, height int, err error) {
	if n == nil {
		return 0, 0, fmt.Errorf("%w: nil node", ErrInvariant)
	}
	if n.isLeaf() {
		leaf := n.(*leafNode[K, V])
		if len(leaf.keys) == 0 {
			return 0, 0, fmt.Errorf("%w: empty leaf", ErrInvariant)
		}
		if len(leaf.keys) > t.max {
			return 0, 0, fmt.Errorf("%w: leaf holds %d keys, max is %d",
				ErrInvariant, len(leaf.keys), t.max)
		}
		if !isRoot && len(leaf.keys) < t.minFill() {
			return 0, 0, fmt.Errorf("%w: leaf holds %d keys, min is %d",
				ErrInvariant, len(leaf.keys), t.minFill())
		}
		if leaf.vals != nil && len(leaf.vals) != len(leaf.keys) {
			return 0, 0, fmt.Errorf("%w: leaf has %d keys but %d values",
				ErrInvariant, len(leaf.keys), len(leaf.vals))
		}
		return len(leaf.keys), 1, nil
	}

	inner := n.(*innerNode[K, V])
	if len(inner.children) == 0 {
		return 0, 0, fmt.Errorf("%w: inner node has no children", ErrInvariant)
	}
	if len(inner.children) > t.max {
		return 0, 0, fmt.Errorf("%w: inner node holds %d children, max is %d",
			ErrInvariant, len(inner.children), t.max)
	}
	min := t.minFill()
	if isRoot {
		min = 2
	}
	if len(inner.children) < min {
		return 0, 0, fmt.Errorf("%w: inner node holds %d children, min is %d",
			ErrInvariant, len(inner.children), min)
	}
	var totalItems, childHeight int
	for i, child := range inner.children {
		cItems, cHeight, cErr := t.checkNode(child, false)
		if cErr != nil {
			return 0, 0, cErr
		}
		totalItems += cItems
		if i == 0 {
			childHeight = cHeight
		} else if cHeight != childHeight {
			return 0, 0, fmt.Errorf("%w: non-uniform subtree heights", ErrInvariant)
		}
	}
	if totalItems != inner.size {
		return 0, 0, fmt.Errorf("%w: cached size %d, actual %d",
			ErrInvariant, inner.size, totalItems)
	}
	return totalItems, childHeight + 1, nil
}

// checkKeyOrder verifies global strict ascending key order across leaves.
func (t *Tree[K, V]) checkKeyOrder() error {
	var prev K
	first := true
	var orderErr error
	t.ForEach(func(key K, _ V) bool {
		if !first && t.compare(prev, key) >= 0 {
			orderErr = fmt.Errorf("%w: keys not strictly ascending", ErrInvariant)
			return false
		}
		prev = key
		first = false
		return true
	})
	return orderErr
}
