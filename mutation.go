package ordtree

// Copy-on-write helpers. A node marked shared is reachable from more than
// one tree handle and must never be mutated in place; mutating paths call
// exclusive() on every node they touch on the way down.

// clone returns an exclusive copy of a leaf; keys and values are copied.
func (l *leafNode[K, V]) clone() node[K, V] {
	return makeLeaf(l.keys, l.vals)
}

// clone returns an exclusive copy of an inner node. The children are not
// copied; they become shared between the original and the copy, so sharing
// propagates one level at a time as edits reach deeper.
func (n *innerNode[K, V]) clone() node[K, V] {
	cloned := &innerNode[K, V]{
		children: append([]node[K, V](nil), n.children...),
		size:     n.size,
	}
	for _, child := range cloned.children {
		child.markShared()
	}
	return cloned
}

// exclusive returns n itself when it may be edited in place, or an
// exclusive copy when n is shared. Callers must rewrite the parent's child
// reference with the result.
func exclusive[K, V any](n node[K, V]) node[K, V] {
	if !n.isShared() {
		return n
	}
	return n.clone()
}

// insertKeyAt inserts a key/value pair into a leaf at index i.
func insertKeyAt[K, V any](leaf *leafNode[K, V], i int, key K, val V) {
	assert(!leaf.shared, "insertKeyAt called on shared leaf")
	leaf.keys = append(leaf.keys, key)
	copy(leaf.keys[i+1:], leaf.keys[i:])
	leaf.keys[i] = key
	if leaf.vals != nil {
		leaf.vals = append(leaf.vals, val)
		copy(leaf.vals[i+1:], leaf.vals[i:])
		leaf.vals[i] = val
	}
}

// removeKeyAt removes the key/value pair at index i from a leaf.
func removeKeyAt[K, V any](leaf *leafNode[K, V], i int) {
	assert(!leaf.shared, "removeKeyAt called on shared leaf")
	leaf.keys = append(leaf.keys[:i], leaf.keys[i+1:]...)
	if leaf.vals != nil {
		leaf.vals = append(leaf.vals[:i], leaf.vals[i+1:]...)
	}
}

// insertChildAt inserts a child into an inner node at slot i and updates the
// cached subtree size.
func insertChildAt[K, V any](inner *innerNode[K, V], i int, child node[K, V]) {
	assert(!inner.shared, "insertChildAt called on shared inner node")
	inner.children = append(inner.children, nil)
	copy(inner.children[i+1:], inner.children[i:])
	inner.children[i] = child
	recomputeSize(inner)
}

// removeChildAt removes the child at slot i from an inner node and updates
// the cached subtree size.
func removeChildAt[K, V any](inner *innerNode[K, V], i int) {
	assert(!inner.shared, "removeChildAt called on shared inner node")
	inner.children = append(inner.children[:i], inner.children[i+1:]...)
	recomputeSize(inner)
}

// splitLeaf splits an overflowing exclusive leaf into two halves.
func splitLeaf[K, V any](leaf *leafNode[K, V]) (*leafNode[K, V], *leafNode[K, V]) {
	mid := len(leaf.keys) / 2
	left := makeLeaf(leaf.keys[:mid], sliceFront(leaf.vals, mid))
	right := makeLeaf(leaf.keys[mid:], sliceBack(leaf.vals, mid))
	return left, right
}

// splitInner splits an overflowing exclusive inner node into two halves.
func splitInner[K, V any](inner *innerNode[K, V]) (*innerNode[K, V], *innerNode[K, V]) {
	mid := len(inner.children) / 2
	left := makeInternal(inner.children[:mid]...)
	right := makeInternal(inner.children[mid:]...)
	return left, right
}

func sliceFront[V any](vals []V, mid int) []V {
	if vals == nil {
		return nil
	}
	return vals[:mid]
}

func sliceBack[V any](vals []V, mid int) []V {
	if vals == nil {
		return nil
	}
	return vals[mid:]
}
