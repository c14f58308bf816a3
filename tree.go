package ordtree

import (
	"iter"
	"sort"
)

// Tree is a persistent ordered key-value collection.
//
// A tree holds a total ordering over keys and a maximum node size (the
// branching factor). The zero Tree is not usable; create trees with New,
// FromEntries or BulkLoad.
//
// Trees are single-writer. Clone is O(1) and shares all nodes with the
// original; mutations copy shared nodes on write.
type Tree[K, V any] struct {
	root    node[K, V]
	compare func(K, K) int
	max     int
	// set marks a tree that stores keys only; its leaves carry no value
	// slices and value accessors return the zero V. The mode is fixed for
	// the life of the tree.
	set bool
}

// Entry pairs a key with its value.
type Entry[K, V any] struct {
	Key K
	Val V
}

// New creates an empty tree over the given total ordering.
//
// maxNodeSize must be even and at least 4; violating this is a programming
// error and panics.
func New[K, V any](compare func(K, K) int, maxNodeSize int) *Tree[K, V] {
	assert(compare != nil, "New requires a comparator")
	assertNodeSize(maxNodeSize)
	return &Tree[K, V]{compare: compare, max: maxNodeSize}
}

// FromEntries creates a tree seeded by repeated insertion. For large sorted
// inputs prefer BulkLoad, which packs nodes more tightly.
func FromEntries[K, V any](entries []Entry[K, V], compare func(K, K) int, maxNodeSize int) *Tree[K, V] {
	t := New[K, V](compare, maxNodeSize)
	for _, e := range entries {
		t.Insert(e.Key, e.Val)
	}
	return t
}

func assertNodeSize(maxNodeSize int) {
	assert(maxNodeSize >= 4, "maximum node size must be at least 4")
	assert(maxNodeSize%2 == 0, "maximum node size must be even")
}

// minFill is the lower occupancy bound for non-root nodes.
func (t *Tree[K, V]) minFill() int {
	return t.max / 2
}

// MaxNodeSize returns the branching factor the tree was created with.
func (t *Tree[K, V]) MaxNodeSize() int {
	return t.max
}

// Clone returns an O(1) snapshot of the tree.
//
// No node is copied; the root is marked shared and both handles point at
// it. Mutations on either handle copy the nodes they touch.
func (t *Tree[K, V]) Clone() *Tree[K, V] {
	if t.root != nil {
		t.root.markShared()
	}
	return &Tree[K, V]{root: t.root, compare: t.compare, max: t.max, set: t.set}
}

// IsEmpty reports whether the tree has no keys.
func (t *Tree[K, V]) IsEmpty() bool {
	return t == nil || t.root == nil
}

// Len returns the number of keys in the tree.
func (t *Tree[K, V]) Len() int {
	if t == nil || t.root == nil {
		return 0
	}
	return t.root.weight()
}

// Height returns the tree height, where 0 means empty and 1 means a leaf
// root.
func (t *Tree[K, V]) Height() int {
	h := 0
	for n := t.root; n != nil; {
		h++
		inner, ok := n.(*innerNode[K, V])
		if !ok {
			break
		}
		n = inner.children[0]
	}
	return h
}

// childSlot returns the slot of the child whose key range covers key: the
// last child whose minimum key does not exceed key, clamped to the first.
func (t *Tree[K, V]) childSlot(inner *innerNode[K, V], key K) int {
	i := sort.Search(len(inner.children), func(j int) bool {
		return t.compare(inner.children[j].minKey(), key) > 0
	})
	if i == 0 {
		return 0
	}
	return i - 1
}

// Get returns the value stored under key.
func (t *Tree[K, V]) Get(key K) (V, bool) {
	var zero V
	if t == nil || t.root == nil {
		return zero, false
	}
	n := t.root
	for !n.isLeaf() {
		inner := n.(*innerNode[K, V])
		n = inner.children[t.childSlot(inner, key)]
	}
	leaf := n.(*leafNode[K, V])
	i := sort.Search(len(leaf.keys), func(j int) bool {
		return t.compare(leaf.keys[j], key) >= 0
	})
	if i < len(leaf.keys) && t.compare(leaf.keys[i], key) == 0 {
		return leaf.value(i), true
	}
	return zero, false
}

// Insert stores value under key, replacing an existing binding. Shared
// nodes on the way down are copied, never edited in place. Inserting into
// a set-mode tree records the key only.
func (t *Tree[K, V]) Insert(key K, value V) {
	if t.root == nil {
		if t.set {
			t.root = makeLeaf[K, V]([]K{key}, nil)
		} else {
			t.root = makeLeaf([]K{key}, []V{value})
		}
		return
	}
	updated, promoted, _ := t.insertRecursive(t.root, key, value)
	if promoted != nil {
		t.root = makeInternal(updated, promoted)
		return
	}
	t.root = updated
}

// insertRecursive inserts one binding into subtree n and propagates split
// results, mirroring the path-copy unwind of deletion.
func (t *Tree[K, V]) insertRecursive(n node[K, V], key K, value V) (updated, promoted node[K, V], added bool) {
	if n.isLeaf() {
		leaf := exclusive(n).(*leafNode[K, V])
		if !t.set && leaf.vals == nil && len(leaf.keys) > 0 {
			// A union may hang set-mode leaves into a value-carrying tree;
			// storing a value here materializes the zero values first.
			leaf.vals = make([]V, len(leaf.keys))
		}
		i := sort.Search(len(leaf.keys), func(j int) bool {
			return t.compare(leaf.keys[j], key) >= 0
		})
		if i < len(leaf.keys) && t.compare(leaf.keys[i], key) == 0 {
			if leaf.vals != nil {
				leaf.vals[i] = value
			}
			return leaf, nil, false
		}
		insertKeyAt(leaf, i, key, value)
		if len(leaf.keys) <= t.max {
			return leaf, nil, true
		}
		left, right := splitLeaf(leaf)
		return left, right, true
	}

	inner := exclusive(n).(*innerNode[K, V])
	slot := t.childSlot(inner, key)
	child, promotedChild, added := t.insertRecursive(inner.children[slot], key, value)
	inner.children[slot] = child
	if promotedChild != nil {
		insertChildAt(inner, slot+1, promotedChild)
	} else {
		recomputeSize(inner)
	}
	if len(inner.children) <= t.max {
		return inner, nil, added
	}
	left, right := splitInner(inner)
	return left, right, added
}

// Delete removes key from the tree and reports whether it was present.
func (t *Tree[K, V]) Delete(key K) bool {
	if t.root == nil {
		return false
	}
	updated, removed, _ := t.deleteRecursive(t.root, key)
	if !removed {
		return false
	}
	t.root = updated
	t.normalizeRoot()
	return true
}

// normalizeRoot applies the standard root rules after deletion: an empty
// root leaf empties the tree, an inner root with a single child collapses.
func (t *Tree[K, V]) normalizeRoot() {
	for t.root != nil {
		if t.root.isLeaf() {
			if t.root.length() == 0 {
				t.root = nil
			}
			return
		}
		inner := t.root.(*innerNode[K, V])
		if len(inner.children) != 1 {
			return
		}
		t.root = inner.children[0]
	}
}

// deleteRecursive removes key from subtree n.
//
// Nodes are cloned only on the path that actually removes something; a miss
// leaves the tree untouched. underflow reports that the updated node fell
// below minimum fill and the parent must rebalance.
func (t *Tree[K, V]) deleteRecursive(n node[K, V], key K) (updated node[K, V], removed, underflow bool) {
	if n.isLeaf() {
		orig := n.(*leafNode[K, V])
		i := sort.Search(len(orig.keys), func(j int) bool {
			return t.compare(orig.keys[j], key) >= 0
		})
		if i >= len(orig.keys) || t.compare(orig.keys[i], key) != 0 {
			return n, false, false
		}
		leaf := exclusive(n).(*leafNode[K, V])
		removeKeyAt(leaf, i)
		return leaf, true, len(leaf.keys) < t.minFill()
	}

	slot := t.childSlot(n.(*innerNode[K, V]), key)
	child, removed, childUnderflow := t.deleteRecursive(n.(*innerNode[K, V]).children[slot], key)
	if !removed {
		return n, false, false
	}
	inner := exclusive(n).(*innerNode[K, V])
	inner.children[slot] = child
	recomputeSize(inner)
	if childUnderflow {
		t.rebalanceChild(inner, slot)
	}
	return inner, true, len(inner.children) < t.minFill()
}

// rebalanceChild repairs occupancy for the child at slot. Sibling operation
// order: borrow-left, borrow-right, merge-left, merge-right.
func (t *Tree[K, V]) rebalanceChild(parent *innerNode[K, V], slot int) {
	child := parent.children[slot]
	need := t.minFill() - child.length()
	assert(need > 0, "rebalanceChild called on a child that meets minimum fill")

	if slot > 0 && parent.children[slot-1].length()-need >= t.minFill() {
		left := exclusive(parent.children[slot-1])
		parent.children[slot-1] = left
		takeFromLeft(child, left, t.minFill())
		recomputeSize(parent)
		return
	}
	if slot+1 < len(parent.children) && parent.children[slot+1].length()-need >= t.minFill() {
		right := exclusive(parent.children[slot+1])
		parent.children[slot+1] = right
		takeFromRight(child, right, t.minFill())
		recomputeSize(parent)
		return
	}
	if slot > 0 {
		parent.children[slot-1] = t.mergeNodes(parent.children[slot-1], child)
		removeChildAt(parent, slot)
		return
	}
	assert(slot+1 < len(parent.children), "rebalanceChild found no sibling to merge with")
	parent.children[slot] = t.mergeNodes(child, parent.children[slot+1])
	removeChildAt(parent, slot+1)
}

// mergeNodes joins two adjacent siblings into a fresh exclusive node. The
// combined occupancy fits, since merging is only attempted after borrowing
// failed on both sides.
func (t *Tree[K, V]) mergeNodes(left, right node[K, V]) node[K, V] {
	assert(left.length()+right.length() <= t.max, "mergeNodes would overflow")
	if left.isLeaf() {
		l := left.(*leafNode[K, V])
		r := right.(*leafNode[K, V])
		keys := append(append([]K(nil), l.keys...), r.keys...)
		return makeLeaf(keys, mergedVals(l, r))
	}
	l := left.(*innerNode[K, V])
	r := right.(*innerNode[K, V])
	// Adopting children of a shared node bypasses its sharing mark, so the
	// mark has to move down onto the children first.
	markChildrenIfShared(l)
	markChildrenIfShared(r)
	children := append(append([]node[K, V](nil), l.children...), r.children...)
	return makeInternal(children...)
}

func markChildrenIfShared[K, V any](inner *innerNode[K, V]) {
	if !inner.shared {
		return
	}
	for _, child := range inner.children {
		child.markShared()
	}
}

// mergedVals concatenates the value sequences of two leaves. A set-mode
// leaf (nil values) merged with a value-carrying one materializes zero
// values for the set side.
func mergedVals[K, V any](l, r *leafNode[K, V]) []V {
	if l.vals == nil && r.vals == nil {
		return nil
	}
	vals := make([]V, 0, len(l.keys)+len(r.keys))
	for i := range l.keys {
		vals = append(vals, l.value(i))
	}
	for i := range r.keys {
		vals = append(vals, r.value(i))
	}
	return vals
}

// ForEach walks bindings in ascending key order. Iteration stops early if
// the callback returns false.
func (t *Tree[K, V]) ForEach(fn func(key K, value V) bool) {
	if t == nil || t.root == nil || fn == nil {
		return
	}
	forEachNode(t.root, fn)
}

func forEachNode[K, V any](n node[K, V], fn func(K, V) bool) bool {
	if n.isLeaf() {
		leaf := n.(*leafNode[K, V])
		for i, key := range leaf.keys {
			if !fn(key, leaf.value(i)) {
				return false
			}
		}
		return true
	}
	for _, child := range n.(*innerNode[K, V]).children {
		if !forEachNode(child, fn) {
			return false
		}
	}
	return true
}

// All returns an iterator over bindings in ascending key order.
func (t *Tree[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		t.ForEach(yield)
	}
}

// Entries flattens the tree into an entry slice in ascending key order.
func (t *Tree[K, V]) Entries() []Entry[K, V] {
	entries := make([]Entry[K, V], 0, t.Len())
	t.ForEach(func(key K, value V) bool {
		entries = append(entries, Entry[K, V]{Key: key, Val: value})
		return true
	})
	return entries
}
