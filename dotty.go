package ordtree

import (
	"fmt"
	"io"
)

type nodeids[K, V any] struct {
	idTable map[node[K, V]]int
	max     int
}

func newtable[K, V any]() nodeids[K, V] {
	return nodeids[K, V]{
		idTable: make(map[node[K, V]]int),
		max:     1,
	}
}

func (ids *nodeids[K, V]) alloc(n node[K, V]) int {
	if id := ids.idTable[n]; id > 0 {
		return id
	}
	ids.idTable[n] = ids.max
	ids.max++
	return ids.max - 1
}

// Tree2Dot outputs the internal structure of a tree in Graphviz DOT format
// (for debugging purposes). Shared nodes are drawn filled.
func Tree2Dot[K, V any](t *Tree[K, V], w io.Writer) {
	io.WriteString(w, "strict digraph {\n")
	io.WriteString(w, "\tnode [fontname=Arial,fontsize=12];\n")
	ids := newtable[K, V]()
	nodelist, edgelist := "", ""
	walkNodesWithParent(t.root, nil, func(n, parent node[K, V]) {
		id := ids.alloc(n)
		styles := nodeDotStyles(n)
		if n.isLeaf() {
			leaf := n.(*leafNode[K, V])
			label := fmt.Sprintf("leaf |%d|\\n%v", len(leaf.keys), leaf.keys[0])
			nodelist += fmt.Sprintf("\"%d\" [label=\"%s\" %s];\n", id, label, styles)
		} else {
			inner := n.(*innerNode[K, V])
			label := fmt.Sprintf("inner |%d| #%d", len(inner.children), inner.size)
			nodelist += fmt.Sprintf("\"%d\" [label=\"%s\" %s];\n", id, label, styles)
		}
		if parent != nil {
			edgelist += fmt.Sprintf("\"%d\" -> \"%d\";\n", ids.alloc(parent), id)
		}
	})
	io.WriteString(w, nodelist)
	io.WriteString(w, edgelist)
	io.WriteString(w, "}\n")
}

func nodeDotStyles[K, V any](n node[K, V]) string {
	shape := "box"
	if n.isLeaf() {
		shape = "ellipse"
	}
	if n.isShared() {
		return fmt.Sprintf(",shape=%s,style=filled,fillcolor=lightgrey", shape)
	}
	return fmt.Sprintf(",shape=%s", shape)
}

func walkNodesWithParent[K, V any](n, parent node[K, V], fn func(n, parent node[K, V])) {
	if n == nil {
		return
	}
	fn(n, parent)
	if inner, ok := n.(*innerNode[K, V]); ok {
		for _, child := range inner.children {
			walkNodesWithParent(child, n, fn)
		}
	}
}
