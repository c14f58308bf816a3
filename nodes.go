package ordtree

// node is the tagged union over leaf and inner tree nodes. Every algorithm
// switches on the concrete type; there is no behavior behind this interface
// beyond what uniform traversal needs.
type node[K, V any] interface {
	isLeaf() bool
	// length is the item count of the node itself: keys for a leaf,
	// children for an inner node.
	length() int
	// weight is the total key count of the subtree rooted at the node.
	weight() int
	// minKey is the minimum key of the subtree rooted at the node, which
	// is the first key of its leftmost descendant leaf.
	minKey() K
	isShared() bool
	markShared()
	// clone returns an exclusive shallow copy; see mutation.go.
	clone() node[K, V]
}

// leafNode stores strictly ascending keys and a parallel value sequence.
//
// vals is nil when the tree is used as a set; all value accessors must stay
// nil-safe in that case.
type leafNode[K, V any] struct {
	keys   []K
	vals   []V
	shared bool
}

func (l *leafNode[K, V]) isLeaf() bool   { return true }
func (l *leafNode[K, V]) length() int    { return len(l.keys) }
func (l *leafNode[K, V]) weight() int    { return len(l.keys) }
func (l *leafNode[K, V]) isShared() bool { return l.shared }
func (l *leafNode[K, V]) markShared()    { l.shared = true }

func (l *leafNode[K, V]) minKey() K {
	assert(len(l.keys) > 0, "minKey on empty leaf")
	return l.keys[0]
}

// value returns the value at leaf index i, or the zero value for set-mode
// leaves.
func (l *leafNode[K, V]) value(i int) V {
	if l.vals == nil {
		var zero V
		return zero
	}
	return l.vals[i]
}

// innerNode stores child references and a cached subtree key count. A
// child's minimum key is implicitly its leftmost descendant leaf's first
// key; no pivot-key array is stored.
type innerNode[K, V any] struct {
	children []node[K, V]
	size     int
	shared   bool
}

func (n *innerNode[K, V]) isLeaf() bool   { return false }
func (n *innerNode[K, V]) length() int    { return len(n.children) }
func (n *innerNode[K, V]) weight() int    { return n.size }
func (n *innerNode[K, V]) isShared() bool { return n.shared }
func (n *innerNode[K, V]) markShared()    { n.shared = true }

func (n *innerNode[K, V]) minKey() K {
	assert(len(n.children) > 0, "minKey on inner node with zero children")
	return n.children[0].minKey()
}

// makeLeaf materializes a new exclusive leaf. The key and value slices are
// copied, never aliased, so callers may pass views into other nodes.
func makeLeaf[K, V any](keys []K, vals []V) *leafNode[K, V] {
	leaf := &leafNode[K, V]{
		keys: append([]K(nil), keys...),
	}
	if vals != nil {
		assert(len(vals) == len(keys), "makeLeaf requires parallel key/value sequences")
		leaf.vals = append([]V(nil), vals...)
	}
	return leaf
}

// makeInternal materializes a new exclusive inner node and computes its
// cached subtree size from the children.
func makeInternal[K, V any](children ...node[K, V]) *innerNode[K, V] {
	assert(len(children) > 0, "makeInternal called with zero children")
	inner := &innerNode[K, V]{
		children: append([]node[K, V](nil), children...),
	}
	recomputeSize(inner)
	return inner
}

func recomputeSize[K, V any](inner *innerNode[K, V]) {
	total := 0
	for _, child := range inner.children {
		total += child.weight()
	}
	inner.size = total
}

// takeFromLeft moves trailing items from leftSibling into right until right
// satisfies the minimum-fill bound. Both nodes must be exclusive (not
// shared) and of the same kind; the caller recomputes parent bookkeeping.
func takeFromLeft[K, V any](right, leftSibling node[K, V], minFill int) {
	assert(!right.isShared() && !leftSibling.isShared(),
		"takeFromLeft requires exclusive nodes")
	assert(right.isLeaf() == leftSibling.isLeaf(),
		"takeFromLeft requires siblings of the same kind")
	need := minFill - right.length()
	assert(need > 0, "takeFromLeft called on a node that meets minimum fill")
	assert(leftSibling.length()-need >= minFill,
		"takeFromLeft would underfill the left sibling")
	if right.isLeaf() {
		r := right.(*leafNode[K, V])
		l := leftSibling.(*leafNode[K, V])
		cut := len(l.keys) - need
		r.keys = append(append([]K(nil), l.keys[cut:]...), r.keys...)
		l.keys = l.keys[:cut]
		if l.vals != nil {
			r.vals = append(append([]V(nil), l.vals[cut:]...), r.vals...)
			l.vals = l.vals[:cut]
		}
		return
	}
	r := right.(*innerNode[K, V])
	l := leftSibling.(*innerNode[K, V])
	cut := len(l.children) - need
	r.children = append(append([]node[K, V](nil), l.children[cut:]...), r.children...)
	l.children = l.children[:cut]
	recomputeSize(r)
	recomputeSize(l)
}

// takeFromRight is the mirror of takeFromLeft: it moves leading items from
// rightSibling into left until left satisfies the minimum-fill bound.
func takeFromRight[K, V any](left, rightSibling node[K, V], minFill int) {
	assert(!left.isShared() && !rightSibling.isShared(),
		"takeFromRight requires exclusive nodes")
	assert(left.isLeaf() == rightSibling.isLeaf(),
		"takeFromRight requires siblings of the same kind")
	need := minFill - left.length()
	assert(need > 0, "takeFromRight called on a node that meets minimum fill")
	assert(rightSibling.length()-need >= minFill,
		"takeFromRight would underfill the right sibling")
	if left.isLeaf() {
		l := left.(*leafNode[K, V])
		r := rightSibling.(*leafNode[K, V])
		l.keys = append(l.keys, r.keys[:need]...)
		r.keys = append([]K(nil), r.keys[need:]...)
		if r.vals != nil {
			l.vals = append(l.vals, r.vals[:need]...)
			r.vals = append([]V(nil), r.vals[need:]...)
		}
		return
	}
	l := left.(*innerNode[K, V])
	r := rightSibling.(*innerNode[K, V])
	l.children = append(l.children, r.children[:need]...)
	r.children = append([]node[K, V](nil), r.children[need:]...)
	recomputeSize(l)
	recomputeSize(r)
}
