package ordtree

import "sort"

// The walk engine. A cursor positions itself at arbitrary keys of one tree
// while visiting only nodes relevant to the target, and notifies a
// caller-supplied hook set at every structural transition. All set
// algorithms in this package are configurations of this one engine.
//
// Cursors are ephemeral: one cursor lives for exactly one traversal call
// and is never reused across unrelated operations. Two cursors over two
// trees are active simultaneously during a dual-tree walk.

// spineFrame records one ancestor level of the cursor position: the inner
// node, the child slot currently being visited, and an opaque payload the
// hook owner may use to carry accumulators.
type spineFrame[K, V, P any] struct {
	node       *innerNode[K, V]
	childIndex int
	payload    P
}

// walkHooks bundles the traversal lifecycle callbacks. Every hook is
// optional; a nil hook is skipped.
//
// onStepUp fires once per abandoned spine level, including levels whose
// subtrees are skipped without visiting a single key; resume is the child
// slot at which the walk continues in that frame (len(children) when the
// frame is abandoned entirely). onStepDown fires for each inner node
// entered on the way to a new leaf, after the frame has been pushed.
// onMoveInLeaf fires for a same-leaf step from index from to index to.
// onExitLeaf fires while the cursor still holds its old leaf index.
type walkHooks[K, V, P any] struct {
	makePayload  func() P
	onEnterLeaf  func(c *cursor[K, V, P])
	onMoveInLeaf func(c *cursor[K, V, P], from, to int)
	onExitLeaf   func(c *cursor[K, V, P])
	onStepUp     func(c *cursor[K, V, P], frame *spineFrame[K, V, P], resume int)
	onStepDown   func(c *cursor[K, V, P], frame *spineFrame[K, V, P])
}

// cursor tracks a position inside one tree during a single traversal call.
type cursor[K, V, P any] struct {
	tree        *Tree[K, V]
	spine       []spineFrame[K, V, P]
	leaf        *leafNode[K, V]
	index       int
	leafPayload P
	hooks       walkHooks[K, V, P]
	// visits counts node landings (descents and leaf entries). Tests use it
	// to verify that disjoint subtrees are skipped, not scanned.
	visits int
}

func (c *cursor[K, V, P]) newPayload() P {
	if c.hooks.makePayload != nil {
		return c.hooks.makePayload()
	}
	var zero P
	return zero
}

// newCursor descends the leftmost spine from root to leaf, pushing one
// frame per inner node, and lands on the first key. ok is false for an
// empty tree.
func newCursor[K, V, P any](t *Tree[K, V], hooks walkHooks[K, V, P]) (c *cursor[K, V, P], ok bool) {
	if t == nil || t.root == nil {
		return nil, false
	}
	c = &cursor[K, V, P]{tree: t, hooks: hooks}
	n := t.root
	for !n.isLeaf() {
		inner := n.(*innerNode[K, V])
		c.pushFrame(inner, 0)
		n = inner.children[0]
	}
	c.landOnLeaf(n.(*leafNode[K, V]), 0)
	return c, true
}

func (c *cursor[K, V, P]) pushFrame(inner *innerNode[K, V], childIndex int) {
	c.visits++
	c.spine = append(c.spine, spineFrame[K, V, P]{
		node:       inner,
		childIndex: childIndex,
		payload:    c.newPayload(),
	})
	if c.hooks.onStepDown != nil {
		c.hooks.onStepDown(c, &c.spine[len(c.spine)-1])
	}
}

func (c *cursor[K, V, P]) landOnLeaf(leaf *leafNode[K, V], index int) {
	c.visits++
	c.leaf = leaf
	c.index = index
	c.leafPayload = c.newPayload()
	if c.hooks.onEnterLeaf != nil {
		c.hooks.onEnterLeaf(c)
	}
}

// key returns the key under the cursor. O(1).
func (c *cursor[K, V, P]) key() K {
	return c.leaf.keys[c.index]
}

// value returns the value under the cursor, or the zero value for set-mode
// trees.
func (c *cursor[K, V, P]) value() V {
	return c.leaf.value(c.index)
}

// pred reports whether key lies at or beyond the move target.
func (c *cursor[K, V, P]) pred(key, target K, inclusive bool) bool {
	cmp := c.tree.compare(key, target)
	if inclusive {
		return cmp >= 0
	}
	return cmp > 0
}

// moveForwardOne advances the cursor by exactly one key. The common case
// stays inside the current leaf and is O(1).
func (c *cursor[K, V, P]) moveForwardOne() (end bool) {
	if c.index+1 < len(c.leaf.keys) {
		if c.hooks.onMoveInLeaf != nil {
			c.hooks.onMoveInLeaf(c, c.index, c.index+1)
		}
		c.index++
		return false
	}
	end, _ = c.moveTo(c.key(), false)
	return end
}

// moveTo positions the cursor at the first key at or beyond target
// (inclusive) or strictly beyond it (exclusive). Movement is forward-only.
//
// The spine is scanned outward for the shallowest ancestor whose unvisited
// children still cover the target; every level abandoned on the way gets
// one onStepUp call, whole subtrees are skipped without visiting their
// keys, and the walk descends afresh from the chosen ancestor.
func (c *cursor[K, V, P]) moveTo(target K, inclusive bool) (end, exact bool) {
	// Fast path: the destination may still be inside the current leaf.
	i := c.index + sort.Search(len(c.leaf.keys)-c.index, func(j int) bool {
		return c.pred(c.leaf.keys[c.index+j], target, inclusive)
	})
	if i < len(c.leaf.keys) {
		if i != c.index && c.hooks.onMoveInLeaf != nil {
			c.hooks.onMoveInLeaf(c, c.index, i)
		}
		c.index = i
		return false, c.tree.compare(c.leaf.keys[i], target) == 0
	}

	if c.hooks.onExitLeaf != nil {
		c.hooks.onExitLeaf(c)
	}

	// Scan the spine for the shallowest frame whose next unvisited child
	// range reaches up to the target. If no frame does, but unvisited
	// children remain, the destination is the very next key in order.
	chosen := -1
	deepestUnvisited := -1
	for fi := len(c.spine) - 1; fi >= 0; fi-- {
		f := &c.spine[fi]
		if f.childIndex+1 >= len(f.node.children) {
			continue
		}
		if deepestUnvisited < 0 {
			deepestUnvisited = fi
		}
		if !c.pred(f.node.children[f.childIndex+1].minKey(), target, inclusive) {
			chosen = fi
		}
	}
	if deepestUnvisited < 0 {
		// Target lies beyond every remaining node: close out all levels.
		c.abandonAll()
		return true, false
	}

	fi := chosen
	if fi < 0 {
		fi = deepestUnvisited
	}
	frame := &c.spine[fi]
	resume := frame.childIndex + 1
	if chosen >= 0 {
		// Within the chosen frame, jump to the last unvisited child whose
		// minimum key still precedes the target.
		lo := frame.childIndex + 1
		children := frame.node.children
		k := sort.Search(len(children)-lo, func(j int) bool {
			return c.pred(children[lo+j].minKey(), target, inclusive)
		})
		assert(k >= 1, "moveTo chose a frame whose next child overshoots the target")
		resume = lo + k - 1
	}

	// Abandon every level below the chosen frame, then the frame's own
	// visited child range.
	for level := len(c.spine) - 1; level > fi; level-- {
		f := &c.spine[level]
		if c.hooks.onStepUp != nil {
			c.hooks.onStepUp(c, f, len(f.node.children))
		}
	}
	if c.hooks.onStepUp != nil {
		c.hooks.onStepUp(c, frame, resume)
	}
	c.spine = c.spine[:fi+1]
	frame = &c.spine[fi]
	frame.childIndex = resume

	// Descend from the resumed child down to a leaf, binary-searching the
	// target at each level.
	n := frame.node.children[resume]
	for !n.isLeaf() {
		inner := n.(*innerNode[K, V])
		k := sort.Search(len(inner.children), func(j int) bool {
			return c.pred(inner.children[j].minKey(), target, inclusive)
		})
		slot := k - 1
		if slot < 0 {
			slot = 0
		}
		c.pushFrame(inner, slot)
		n = inner.children[slot]
	}
	leaf := n.(*leafNode[K, V])
	i = sort.Search(len(leaf.keys), func(j int) bool {
		return c.pred(leaf.keys[j], target, inclusive)
	})
	c.landOnLeaf(leaf, i)
	if i == len(leaf.keys) {
		// The chosen subtree's maximum still precedes the target; hop on.
		// The second pass terminates: after the descent above, no frame has
		// an unvisited child whose minimum precedes the target.
		return c.moveTo(target, inclusive)
	}
	return false, c.tree.compare(leaf.keys[i], target) == 0
}

// moveToEnd abandons the rest of the tree, firing onExitLeaf and one
// onStepUp per remaining level. Used by algorithms that drain a cursor.
func (c *cursor[K, V, P]) moveToEnd() {
	if c.hooks.onExitLeaf != nil {
		c.hooks.onExitLeaf(c)
	}
	c.abandonAll()
}

func (c *cursor[K, V, P]) abandonAll() {
	for level := len(c.spine) - 1; level >= 0; level-- {
		f := &c.spine[level]
		if c.hooks.onStepUp != nil {
			c.hooks.onStepUp(c, f, len(f.node.children))
		}
	}
	c.spine = c.spine[:0]
	c.leaf = nil
	c.index = 0
}
