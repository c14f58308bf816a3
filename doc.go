/*
Package ordtree implements a persistent, ordered key-value collection as a
B+ tree with structural sharing, together with a family of bulk set
algorithms (bulk loading, intersection, union, set difference and
shared-key enumeration) that operate on pairs of trees.

Trees are cheap to snapshot: Clone is O(1) and marks the root as shared;
subsequent edits copy only the nodes they actually touch (path-copy,
copy-on-write). Sharing propagates lazily, one level at a time, as edits
reach deeper into the tree.

The cross-tree algorithms are built on a single generic cursor engine that
walks one or two trees in sorted order and skips whole disjoint subtrees,
so that operations on mostly-disjoint or mostly-identical trees cost closer
to O(log n) than to O(n).

Current status:
  - leaf/inner node model with shared-node marking and cached subtree sizes,
  - O(1) Clone with copy-on-write mutation (Insert, Delete),
  - spine-based cursor engine with caller-supplied lifecycle hooks,
  - O(n) bulk loading from sorted sequences with configurable load factor,
  - ForEachKeyInBoth / ForEachKeyNotIn leapfrog enumeration,
  - Intersect / Union / Subtract with subtree reuse across inputs,
  - strict structural invariant checker for tests (Check).

Trees are single-writer: concurrent reads are safe only as long as no
mutation runs concurrently. There is no internal synchronization.

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer.com>

Please refer to the License file for details.
*/
package ordtree

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to a global core-tracer.
func T() tracing.Trace {
	return gtrace.CoreTracer
}

// assert guards against programming errors. Failing an assertion means the
// tree code itself is buggy, not that the caller passed bad input.
func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
