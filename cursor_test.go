package ordtree

import (
	"testing"
)

func loadSequential(t *testing.T, n, maxNodeSize int) *Tree[int, int] {
	t.Helper()
	keys := make([]int, n)
	vals := make([]int, n)
	for i := 0; i < n; i++ {
		keys[i] = i * 2 // even keys only, odd keys are gaps
		vals[i] = i * 20
	}
	tree, err := BulkLoad(keys, vals, maxNodeSize, intCompare)
	if err != nil {
		t.Fatalf("BulkLoad failed: %v", err)
	}
	return tree
}

func TestCursorForwardScan(t *testing.T) {
	tree := loadSequential(t, 300, 4)
	c, ok := newCursor(tree, walkHooks[int, int, struct{}]{})
	if !ok {
		t.Fatal("no cursor on a non-empty tree")
	}
	var got []Entry[int, int]
	for {
		got = append(got, Entry[int, int]{c.key(), c.value()})
		if c.moveForwardOne() {
			break
		}
	}
	if !entriesEqual(got, tree.Entries()) {
		t.Errorf("forward scan disagrees with Entries, got %d entries", len(got))
	}
}

func TestCursorMoveToExactAndSuccessor(t *testing.T) {
	tree := loadSequential(t, 200, 4) // keys 0,2,...,398
	for _, tc := range []struct {
		target    int
		inclusive bool
		wantEnd   bool
		wantExact bool
		wantKey   int
	}{
		{0, true, false, true, 0},
		{120, true, false, true, 120},
		{121, true, false, false, 122}, // gap, lands on successor
		{121, false, false, false, 122},
		{120, false, false, false, 122}, // exclusive skips the exact match
		{398, true, false, true, 398},
		{398, false, true, false, 0}, // nothing after the last key
		{399, true, true, false, 0},
		{-5, true, false, false, 0},
	} {
		c, _ := newCursor(tree, walkHooks[int, int, struct{}]{})
		end, exact := c.moveTo(tc.target, tc.inclusive)
		if end != tc.wantEnd || exact != tc.wantExact {
			t.Errorf("moveTo(%d, %v) = (end %v, exact %v), want (%v, %v)",
				tc.target, tc.inclusive, end, exact, tc.wantEnd, tc.wantExact)
			continue
		}
		if !end && c.key() != tc.wantKey {
			t.Errorf("moveTo(%d, %v) landed on key %d, want %d",
				tc.target, tc.inclusive, c.key(), tc.wantKey)
		}
	}
}

func TestCursorMoveToSkipsSubtrees(t *testing.T) {
	tree := loadSequential(t, 5000, 4)
	total := 0
	walkNodesWithParent(tree.root, nil, func(_, _ node[int, int]) { total++ })
	c, _ := newCursor(tree, walkHooks[int, int, struct{}]{})
	if end, exact := c.moveTo(9998, true); end || !exact {
		t.Fatalf("moveTo(last) = (end %v, exact %v)", end, exact)
	}
	// one spine down, one spine up: far fewer landings than nodes
	if c.visits > total/10 {
		t.Errorf("moveTo visited %d nodes of %d, expected a skipping walk", c.visits, total)
	}
}

func TestCursorHookLifecycle(t *testing.T) {
	tree := loadSequential(t, 60, 4)
	var enters, exits, downs, ups, finalUps int
	hooks := walkHooks[int, int, int]{
		makePayload: func() int { return 0 },
		onEnterLeaf: func(c *cursor[int, int, int]) { enters++ },
		onExitLeaf:  func(c *cursor[int, int, int]) { exits++ },
		onStepDown: func(c *cursor[int, int, int], frame *spineFrame[int, int, int]) {
			downs++
			if frame.node == nil {
				t.Error("onStepDown with nil frame node")
			}
		},
		onStepUp: func(c *cursor[int, int, int], frame *spineFrame[int, int, int], resume int) {
			ups++
			if resume == len(frame.node.children) {
				finalUps++
			}
			if resume < frame.childIndex || resume > len(frame.node.children) {
				t.Errorf("onStepUp resume %d out of range for childIndex %d, %d children",
					resume, frame.childIndex, len(frame.node.children))
			}
		},
	}
	c, _ := newCursor(tree, hooks)
	for !c.moveForwardOne() {
	}
	// the walk covered the whole tree: every leaf entered and exited,
	// every frame pushed was abandoned for good exactly once. A frame may
	// see additional step-ups when the walk resumes at a later child.
	if enters != exits {
		t.Errorf("%d leaf entries but %d leaf exits", enters, exits)
	}
	if downs != finalUps {
		t.Errorf("%d step-downs but %d final step-ups", downs, finalUps)
	}
	if ups < downs {
		t.Errorf("fewer step-ups (%d) than step-downs (%d)", ups, downs)
	}
	if enters < 2 || downs < 2 {
		t.Errorf("walk too shallow: %d leaves, %d inner frames", enters, downs)
	}
}

func TestCursorLeafPayloadAccumulates(t *testing.T) {
	tree := loadSequential(t, 40, 4)
	sums := 0
	hooks := walkHooks[int, int, *int]{
		makePayload: func() *int { return new(int) },
		onMoveInLeaf: func(c *cursor[int, int, *int], from, to int) {
			for i := from + 1; i <= to && i < len(c.leaf.keys); i++ {
				*c.leafPayload += c.leaf.keys[i]
			}
		},
		onEnterLeaf: func(c *cursor[int, int, *int]) {
			if c.index < len(c.leaf.keys) {
				*c.leafPayload += c.leaf.keys[c.index]
			}
		},
		onExitLeaf: func(c *cursor[int, int, *int]) {
			sums += *c.leafPayload
		},
	}
	c, _ := newCursor(tree, hooks)
	for !c.moveForwardOne() {
	}
	want := 0
	for _, e := range tree.Entries() {
		want += e.Key
	}
	if sums != want {
		t.Errorf("payload accumulation saw key sum %d, want %d", sums, want)
	}
}

func TestCursorOnEmptyTree(t *testing.T) {
	tree := New[int, int](intCompare, 4)
	if _, ok := newCursor(tree, walkHooks[int, int, struct{}]{}); ok {
		t.Error("cursor created over an empty tree")
	}
}
