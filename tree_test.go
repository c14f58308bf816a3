package ordtree

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func intCompare(a, b int) int {
	return a - b
}

func reverseIntCompare(a, b int) int {
	return b - a
}

func checked[K, V any](t *testing.T, tree *Tree[K, V]) {
	t.Helper()
	if err := tree.Check(); err != nil {
		t.Fatalf("tree violates invariants: %v", err)
	}
}

func TestNewPanicsOnBadNodeSize(t *testing.T) {
	for _, size := range []int{0, 2, 3, 5, 7} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic for maxNodeSize=%d, got none", size)
				}
			}()
			New[int, int](intCompare, size)
		}()
	}
}

func TestInsertAndGet(t *testing.T) {
	gtrace.CoreTracer = gotestingadapter.New(t)
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	tree := New[int, string](intCompare, 4)
	tree.Insert(3, "three")
	tree.Insert(1, "one")
	tree.Insert(2, "two")
	checked(t, tree)
	if tree.Len() != 3 {
		t.Fatalf("expected 3 keys, got %d", tree.Len())
	}
	for k, want := range map[int]string{1: "one", 2: "two", 3: "three"} {
		if v, ok := tree.Get(k); !ok || v != want {
			t.Errorf("Get(%d) = (%q, %v), want (%q, true)", k, v, ok, want)
		}
	}
	if _, ok := tree.Get(4); ok {
		t.Errorf("Get(4) found a key that was never inserted")
	}
}

func TestInsertReplacesExistingBinding(t *testing.T) {
	tree := New[int, string](intCompare, 4)
	tree.Insert(7, "old")
	tree.Insert(7, "new")
	checked(t, tree)
	if tree.Len() != 1 {
		t.Fatalf("expected 1 key after replacing, got %d", tree.Len())
	}
	if v, _ := tree.Get(7); v != "new" {
		t.Errorf("expected replaced value, got %q", v)
	}
}

func TestInsertManySplitsAndStaysSorted(t *testing.T) {
	tree := New[int, int](intCompare, 4)
	// insertion order deliberately adversarial
	for i := 0; i < 200; i++ {
		tree.Insert((i*37)%200, (i*37)%200*10)
	}
	checked(t, tree)
	if tree.Len() != 200 {
		t.Fatalf("expected 200 keys, got %d", tree.Len())
	}
	if tree.Height() < 3 {
		t.Errorf("expected a tree of height >= 3 for 200 keys at node size 4, got %d", tree.Height())
	}
	prev := -1
	tree.ForEach(func(k, v int) bool {
		if k <= prev {
			t.Fatalf("keys out of order: %d after %d", k, prev)
		}
		if v != k*10 {
			t.Fatalf("value mismatch at key %d: %d", k, v)
		}
		prev = k
		return true
	})
}

func TestDeleteRebalances(t *testing.T) {
	tree := New[int, int](intCompare, 4)
	for i := 0; i < 150; i++ {
		tree.Insert(i, i)
	}
	for i := 0; i < 150; i += 2 {
		if !tree.Delete(i) {
			t.Fatalf("Delete(%d) did not find the key", i)
		}
		checked(t, tree)
	}
	if tree.Len() != 75 {
		t.Fatalf("expected 75 keys after deleting evens, got %d", tree.Len())
	}
	if tree.Delete(2) {
		t.Errorf("Delete(2) succeeded twice")
	}
	for i := 1; i < 150; i += 2 {
		if !tree.Delete(i) {
			t.Fatalf("Delete(%d) did not find the key", i)
		}
	}
	if !tree.IsEmpty() {
		t.Fatalf("expected empty tree, %d keys remain", tree.Len())
	}
	checked(t, tree)
}

func TestDeleteMissReturnsTreeUntouched(t *testing.T) {
	tree := New[int, int](intCompare, 4)
	for i := 0; i < 20; i++ {
		tree.Insert(i*2, i)
	}
	before := tree.Entries()
	if tree.Delete(7) {
		t.Fatalf("Delete(7) claimed success for a missing key")
	}
	if !entriesEqual(before, tree.Entries()) {
		t.Errorf("failed delete modified the tree")
	}
}

func TestCloneIsolatesMutations(t *testing.T) {
	tree := New[int, string](intCompare, 4)
	for i := 0; i < 100; i++ {
		tree.Insert(i, "orig")
	}
	snapshot := tree.Clone()
	for i := 0; i < 100; i += 3 {
		tree.Insert(i, "changed")
	}
	tree.Delete(50)
	checked(t, tree)
	checked(t, snapshot)
	if snapshot.Len() != 100 {
		t.Fatalf("snapshot length changed to %d", snapshot.Len())
	}
	for i := 0; i < 100; i++ {
		if v, ok := snapshot.Get(i); !ok || v != "orig" {
			t.Fatalf("snapshot key %d = (%q, %v), want (orig, true)", i, v, ok)
		}
	}
	if v, _ := tree.Get(99); v != "changed" {
		t.Errorf("mutation lost on the live tree")
	}
}

func TestCloneOfCloneSharesUntouchedSubtrees(t *testing.T) {
	tree := New[int, int](intCompare, 8)
	for i := 0; i < 500; i++ {
		tree.Insert(i, i)
	}
	a := tree.Clone()
	b := a.Clone()
	b.Insert(1000, 1000)
	checked(t, a)
	checked(t, b)
	if a.Len() != 500 || b.Len() != 501 {
		t.Fatalf("unexpected lengths a=%d b=%d", a.Len(), b.Len())
	}
	// a large shared prefix of nodes must be identical between the handles
	shared := 0
	aNodes := collectNodes(a.root)
	walkNodesWithParent(b.root, nil, func(n, _ node[int, int]) {
		if aNodes[n] {
			shared++
		}
	})
	if shared == 0 {
		t.Errorf("expected clone to share nodes with its origin, none shared")
	}
}

func collectNodes[K, V any](root node[K, V]) map[node[K, V]]bool {
	seen := make(map[node[K, V]]bool)
	walkNodesWithParent(root, nil, func(n, _ node[K, V]) {
		seen[n] = true
	})
	return seen
}

func TestNodeMinKeyMatchesLeftmostEntry(t *testing.T) {
	tree := New[int, int](intCompare, 4)
	for i := 0; i < 300; i++ {
		tree.Insert((i*17)%300, i)
	}
	walkNodesWithParent(tree.root, nil, func(n, _ node[int, int]) {
		var first int
		found := false
		forEachNode(n, func(k, _ int) bool {
			first = k
			found = true
			return false
		})
		if !found {
			t.Fatal("empty node in tree")
		}
		if n.minKey() != first {
			t.Errorf("minKey %d but leftmost entry %d", n.minKey(), first)
		}
	})
}

func TestFromEntries(t *testing.T) {
	entries := []Entry[int, string]{{3, "c"}, {1, "a"}, {2, "b"}}
	tree := FromEntries(entries, intCompare, 4)
	checked(t, tree)
	got := tree.Entries()
	want := []Entry[int, string]{{1, "a"}, {2, "b"}, {3, "c"}}
	if !entriesEqual(got, want) {
		t.Errorf("FromEntries order wrong: %v", got)
	}
}

func TestAllIteratorStopsEarly(t *testing.T) {
	tree := New[int, int](intCompare, 4)
	for i := 0; i < 50; i++ {
		tree.Insert(i, i)
	}
	count := 0
	for k := range tree.All() {
		count++
		if k == 9 {
			break
		}
	}
	if count != 10 {
		t.Errorf("expected 10 iterations, got %d", count)
	}
}

func TestCheckFindsCorruptedSize(t *testing.T) {
	tree := New[int, int](intCompare, 4)
	for i := 0; i < 50; i++ {
		tree.Insert(i, i)
	}
	inner := tree.root.(*innerNode[int, int])
	inner.size++
	if err := tree.Check(); !errors.Is(err, ErrInvariant) {
		t.Errorf("expected ErrInvariant for corrupted cached size, got %v", err)
	}
	inner.size--
}

func entriesEqual[K comparable, V comparable](a, b []Entry[K, V]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
