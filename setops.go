package ordtree

import "reflect"

// Cross-tree set algorithms. All of them are hook configurations of the
// cursor engine: two cursors leapfrog each other through the operand trees,
// jumping over whole disjoint subtrees instead of scanning keys one at a
// time. A naive merge costs O(N+M) always; the leapfrog costs near
// O(log(N+M)) per alternation between in-range and out-of-range stretches.
//
// Set operations never modify the contents of their operands. Marking
// operand nodes as shared is the one permitted side effect; it is the same
// bookkeeping Clone performs.

// checkOperands validates tree compatibility for a set operation.
// Comparator identity is required for every operation; union additionally
// requires one maximum node size because it attaches subtrees of both
// operands into one result.
func checkOperands[K, V any](a, b *Tree[K, V], needSameNodeSize bool) error {
	assert(a != nil && b != nil, "set operation requires two operand trees")
	if reflect.ValueOf(a.compare).Pointer() != reflect.ValueOf(b.compare).Pointer() {
		return ErrComparatorMismatch
	}
	if needSameNodeSize && a.max != b.max {
		return ErrNodeSizeMismatch
	}
	return nil
}

// ForEachKeyInBoth calls visit for every key present in both trees, with
// each tree's own value at that key, in ascending key order. The walk stops
// early when visit returns false.
//
// The operand trees must share one comparator; branching factors may
// differ.
func ForEachKeyInBoth[K, V any](a, b *Tree[K, V], visit func(key K, va, vb V) bool) error {
	if err := checkOperands(a, b, false); err != nil {
		return err
	}
	assert(visit != nil, "ForEachKeyInBoth requires a callback")
	eachKeyInBoth(a, b, visit)
	return nil
}

// eachKeyInBoth runs the shared-key leapfrog and reports how many nodes the
// two cursors landed on, for skip instrumentation in tests.
func eachKeyInBoth[K, V any](a, b *Tree[K, V], visit func(K, V, V) bool) (visited int) {
	ca, okA := newCursor(a, walkHooks[K, V, struct{}]{})
	cb, okB := newCursor(b, walkHooks[K, V, struct{}]{})
	defer func() {
		if okA {
			visited += ca.visits
		}
		if okB {
			visited += cb.visits
		}
	}()
	if !okA || !okB {
		return
	}
	for {
		switch cmp := a.compare(ca.key(), cb.key()); {
		case cmp == 0:
			if !visit(ca.key(), ca.value(), cb.value()) {
				return
			}
			if ca.moveForwardOne() || cb.moveForwardOne() {
				return
			}
		case cmp < 0:
			if end, _ := ca.moveTo(cb.key(), true); end {
				return
			}
		default:
			if end, _ := cb.moveTo(ca.key(), true); end {
				return
			}
		}
	}
}

// ForEachKeyNotIn calls visit for every key of include that is absent from
// exclude, in ascending key order. The walk stops early when visit returns
// false.
//
// The operand trees must share one comparator; branching factors may
// differ.
func ForEachKeyNotIn[K, V any](include, exclude *Tree[K, V], visit func(key K, value V) bool) error {
	if err := checkOperands(include, exclude, false); err != nil {
		return err
	}
	assert(visit != nil, "ForEachKeyNotIn requires a callback")
	eachKeyNotIn(include, exclude, visit)
	return nil
}

func eachKeyNotIn[K, V any](include, exclude *Tree[K, V], visit func(K, V) bool) (visited int) {
	ci, okI := newCursor(include, walkHooks[K, V, struct{}]{})
	ce, okE := newCursor(exclude, walkHooks[K, V, struct{}]{})
	defer func() {
		if okI {
			visited += ci.visits
		}
		if okE {
			visited += ce.visits
		}
	}()
	if !okI {
		return
	}
	excludeDone := !okE
	for {
		if excludeDone {
			if !visit(ci.key(), ci.value()) {
				return
			}
			if ci.moveForwardOne() {
				return
			}
			continue
		}
		switch cmp := include.compare(ci.key(), ce.key()); {
		case cmp < 0:
			if !visit(ci.key(), ci.value()) {
				return
			}
			if ci.moveForwardOne() {
				return
			}
		case cmp == 0:
			if ci.moveForwardOne() {
				return
			}
			excludeDone = ce.moveForwardOne()
		default:
			end, _ := ce.moveTo(ci.key(), true)
			excludeDone = end
		}
	}
}

// Intersect builds a new tree holding the keys present in both operands,
// with values produced by combine. Empty operands short-circuit to a clone
// of the empty side. The result is materialized through the bulk loader and
// adopts a's comparator and node size.
func Intersect[K, V any](a, b *Tree[K, V], combine func(key K, va, vb V) V) (*Tree[K, V], error) {
	if err := checkOperands(a, b, false); err != nil {
		return nil, err
	}
	assert(combine != nil, "Intersect requires a combiner")
	if a.IsEmpty() {
		return a.Clone(), nil
	}
	if b.IsEmpty() {
		return b.Clone(), nil
	}
	setMode := a.isSetMode() && b.isSetMode()
	var keys []K
	var vals []V
	eachKeyInBoth(a, b, func(k K, va, vb V) bool {
		keys = append(keys, k)
		if !setMode {
			vals = append(vals, combine(k, va, vb))
		}
		return true
	})
	out := New[K, V](a.compare, a.max)
	out.set = setMode
	out.root = buildFromSorted(keys, vals, a.max, DefaultLoadFactor)
	return out, nil
}

// Union builds a new tree holding every key of either operand. Keys present
// in both are combined; combine may report false to drop such a key from
// the result. Operands must share comparator and maximum node size, because
// subtree stretches disjoint between the operands are attached to the
// result by reference rather than rebuilt.
func Union[K, V any](a, b *Tree[K, V], combine func(key K, va, vb V) (V, bool)) (*Tree[K, V], error) {
	if err := checkOperands(a, b, true); err != nil {
		return nil, err
	}
	assert(combine != nil, "Union requires a combiner")
	if a.IsEmpty() {
		return b.Clone(), nil
	}
	if b.IsEmpty() {
		return a.Clone(), nil
	}
	bld := newSetBuilder[K, V](a.compare, a.max, a.isSetMode() && b.isSetMode())
	ca, _ := newCursor(a, captureHooks(bld))
	cb, _ := newCursor(b, captureHooks(bld))
	aDone, bDone := false, false
	for !aDone && !bDone {
		switch cmp := a.compare(ca.key(), cb.key()); {
		case cmp == 0:
			if v, keep := combine(ca.key(), ca.value(), cb.value()); keep {
				bld.appendKV(ca.key(), v)
			}
			aDone = ca.moveForwardOne()
			bDone = cb.moveForwardOne()
		case cmp < 0:
			bld.appendKV(ca.key(), ca.value())
			aDone, _ = ca.moveTo(cb.key(), true)
		default:
			bld.appendKV(cb.key(), cb.value())
			bDone, _ = cb.moveTo(ca.key(), true)
		}
	}
	if !aDone {
		bld.appendKV(ca.key(), ca.value())
		ca.moveToEnd()
	}
	if !bDone {
		bld.appendKV(cb.key(), cb.value())
		cb.moveToEnd()
	}
	return bld.tree(), nil
}

// Subtract builds a new tree holding the keys of a that are absent from b,
// keeping a's values. Operands must share one comparator; branching factors
// may differ, since only a's subtrees are reused in the result.
func Subtract[K, V any](a, b *Tree[K, V]) (*Tree[K, V], error) {
	if err := checkOperands(a, b, false); err != nil {
		return nil, err
	}
	if a.IsEmpty() || b.IsEmpty() {
		return a.Clone(), nil
	}
	bld := newSetBuilder[K, V](a.compare, a.max, a.isSetMode())
	ca, _ := newCursor(a, captureHooks(bld))
	cb, _ := newCursor(b, walkHooks[K, V, struct{}]{})
	aDone, bDone := false, false
	for !aDone && !bDone {
		switch cmp := a.compare(ca.key(), cb.key()); {
		case cmp == 0:
			aDone = ca.moveForwardOne()
			bDone = cb.moveForwardOne()
		case cmp < 0:
			bld.appendKV(ca.key(), ca.value())
			aDone, _ = ca.moveTo(cb.key(), true)
		default:
			bDone, _ = cb.moveTo(ca.key(), true)
		}
	}
	if !aDone {
		bld.appendKV(ca.key(), ca.value())
		ca.moveToEnd()
	}
	return bld.tree(), nil
}

// isSetMode reports whether the tree stores keys only. The mode is a
// property of the tree, not of individual leaves, so it survives emptiness
// and mutation.
func (t *Tree[K, V]) isSetMode() bool {
	return t != nil && t.set
}

// captureHooks configures a cursor so that every key and every whole
// subtree the cursor jumps over lands in the builder: run keys one by one,
// wholly-skipped subtrees by reference. Union and subtract move a cursor
// only across stretches that belong in their result, so the capture order
// is exactly ascending key order.
func captureHooks[K, V any](b *setBuilder[K, V]) walkHooks[K, V, struct{}] {
	return walkHooks[K, V, struct{}]{
		onMoveInLeaf: func(c *cursor[K, V, struct{}], from, to int) {
			for i := from + 1; i < to; i++ {
				b.appendKV(c.leaf.keys[i], c.leaf.value(i))
			}
		},
		onExitLeaf: func(c *cursor[K, V, struct{}]) {
			for i := c.index + 1; i < len(c.leaf.keys); i++ {
				b.appendKV(c.leaf.keys[i], c.leaf.value(i))
			}
		},
		onStepUp: func(c *cursor[K, V, struct{}], frame *spineFrame[K, V, struct{}], resume int) {
			for i := frame.childIndex + 1; i < resume; i++ {
				b.appendSubtree(frame.node.children[i])
			}
		},
		onStepDown: func(c *cursor[K, V, struct{}], frame *spineFrame[K, V, struct{}]) {
			for i := 0; i < frame.childIndex; i++ {
				b.appendSubtree(frame.node.children[i])
			}
		},
		onEnterLeaf: func(c *cursor[K, V, struct{}]) {
			for i := 0; i < c.index; i++ {
				b.appendKV(c.leaf.keys[i], c.leaf.value(i))
			}
		},
	}
}

// setBuilder accumulates a set-operation result as a sequence of segments
// in ascending key order: runs of single keys and whole shared subtrees.
// Runs are materialized through the bulk loader; subtrees are joined in by
// reference with only seam nodes copied.
type setBuilder[K, V any] struct {
	out     *Tree[K, V]
	setMode bool
	keys    []K
	vals    []V
	root    node[K, V]
	height  int
}

func newSetBuilder[K, V any](compare func(K, K) int, maxNodeSize int, setMode bool) *setBuilder[K, V] {
	out := New[K, V](compare, maxNodeSize)
	out.set = setMode
	return &setBuilder[K, V]{out: out, setMode: setMode}
}

func (b *setBuilder[K, V]) appendKV(key K, value V) {
	b.keys = append(b.keys, key)
	if !b.setMode {
		b.vals = append(b.vals, value)
	}
}

func (b *setBuilder[K, V]) appendSubtree(n node[K, V]) {
	b.flushRun()
	n.markShared()
	b.attach(n, heightOf(n))
}

func (b *setBuilder[K, V]) flushRun() {
	if len(b.keys) == 0 {
		return
	}
	var vals []V
	if !b.setMode {
		vals = b.vals
	}
	run := buildFromSorted(b.keys, vals, b.out.max, DefaultLoadFactor)
	b.keys, b.vals = nil, nil
	b.attach(run, heightOf(run))
}

func (b *setBuilder[K, V]) attach(n node[K, V], h int) {
	jl, jr, outH := b.out.joinNodes(b.root, b.height, n, h)
	if jr != nil {
		b.root = makeInternal(jl, jr)
		b.height = outH + 1
		return
	}
	// A seam merge can leave a single-child node at the top. Collapse it
	// right away; the join recursion relies on every inner node it enters
	// having at least two children.
	for jl != nil && !jl.isLeaf() {
		inner := jl.(*innerNode[K, V])
		if len(inner.children) != 1 {
			break
		}
		jl = inner.children[0]
		outH--
	}
	b.root = jl
	b.height = outH
}

func (b *setBuilder[K, V]) tree() *Tree[K, V] {
	b.flushRun()
	b.out.root = b.root
	return b.out
}

// heightOf follows the left spine; the tree keeps all leaves at one depth.
func heightOf[K, V any](n node[K, V]) int {
	h := 0
	for n != nil {
		h++
		if n.isLeaf() {
			break
		}
		n = n.(*innerNode[K, V]).children[0]
	}
	return h
}

// joinNodes joins two subtrees whose key ranges are ordered and disjoint:
// every key under left precedes every key under right. Heights may differ.
//
// The function returns up to two nodes at outHeight: a single node when no
// split was needed, or two siblings when local overflow required one. This
// mirrors insertion's split propagation and lets callers create a new
// parent only when needed. Only nodes on the join seam are copied; shared
// subtrees hang unchanged off the copies.
func (t *Tree[K, V]) joinNodes(left node[K, V], leftH int, right node[K, V], rightH int) (jl, jr node[K, V], outH int) {
	switch {
	case left == nil && right == nil:
		return nil, nil, 0
	case left == nil:
		return right, nil, rightH
	case right == nil:
		return left, nil, leftH
	}

	if leftH == rightH {
		jl, jr = t.joinSameHeight(left, right)
		return jl, jr, leftH
	}

	if leftH > rightH {
		inner := exclusive(left).(*innerNode[K, V])
		last := len(inner.children) - 1
		cl, cr, _ := t.joinNodes(inner.children[last], leftH-1, right, rightH)
		inner.children[last] = cl
		if cr != nil {
			insertChildAt(inner, last+1, cr)
		} else {
			recomputeSize(inner)
			t.balanceTail(inner)
		}
		if len(inner.children) > t.max {
			l, r := splitInner(inner)
			return l, r, leftH
		}
		return inner, nil, leftH
	}

	inner := exclusive(right).(*innerNode[K, V])
	cl, cr, _ := t.joinNodes(left, leftH, inner.children[0], rightH-1)
	inner.children[0] = cl
	if cr != nil {
		insertChildAt(inner, 1, cr)
	} else {
		recomputeSize(inner)
		t.balanceHead(inner)
	}
	if len(inner.children) > t.max {
		l, r := splitInner(inner)
		return l, r, rightH
	}
	return inner, nil, rightH
}

// joinSameHeight joins two equal-height siblings: merge into one node when
// the combined occupancy fits, keep the originals (sharing intact) when
// both already satisfy minimum fill, redistribute into two fresh nodes
// otherwise.
func (t *Tree[K, V]) joinSameHeight(left, right node[K, V]) (node[K, V], node[K, V]) {
	total := left.length() + right.length()
	if total <= t.max {
		return t.mergeNodes(left, right), nil
	}
	if left.length() >= t.minFill() && right.length() >= t.minFill() {
		return left, right
	}
	mid := total / 2
	if left.isLeaf() {
		l := left.(*leafNode[K, V])
		r := right.(*leafNode[K, V])
		keys := append(append([]K(nil), l.keys...), r.keys...)
		vals := mergedVals(l, r)
		return makeLeaf(keys[:mid], sliceFront(vals, mid)), makeLeaf(keys[mid:], sliceBack(vals, mid))
	}
	l := left.(*innerNode[K, V])
	r := right.(*innerNode[K, V])
	markChildrenIfShared(l)
	markChildrenIfShared(r)
	children := append(append([]node[K, V](nil), l.children...), r.children...)
	return makeInternal(children[:mid]...), makeInternal(children[mid:]...)
}

// balanceTail repairs an underfull last child after a seam join, by merging
// with or borrowing from its left sibling.
func (t *Tree[K, V]) balanceTail(inner *innerNode[K, V]) {
	last := len(inner.children) - 1
	if inner.children[last].length() >= t.minFill() {
		return
	}
	assert(last > 0, "balanceTail requires a left sibling")
	left, right := inner.children[last-1], inner.children[last]
	if left.length()+right.length() <= t.max {
		inner.children[last-1] = t.mergeNodes(left, right)
		removeChildAt(inner, last)
		return
	}
	le, re := exclusive(left), exclusive(right)
	inner.children[last-1], inner.children[last] = le, re
	takeFromLeft(re, le, t.minFill())
}

// balanceHead is the mirror of balanceTail for an underfull first child.
func (t *Tree[K, V]) balanceHead(inner *innerNode[K, V]) {
	if inner.children[0].length() >= t.minFill() {
		return
	}
	assert(len(inner.children) > 1, "balanceHead requires a right sibling")
	left, right := inner.children[0], inner.children[1]
	if left.length()+right.length() <= t.max {
		inner.children[0] = t.mergeNodes(left, right)
		removeChildAt(inner, 1)
		return
	}
	le, re := exclusive(left), exclusive(right)
	inner.children[0], inner.children[1] = le, re
	takeFromRight(le, re, t.minFill())
}
