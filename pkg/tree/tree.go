// Package tree provides the rooted binary topology type that extracted
// spanning trees are materialized into.
//
// Topologies are built bottom-up from [Leaf] and [Join] and never mutated
// afterwards. Leaf nodes carry the taxon id; internal nodes carry a synthetic
// id assigned by the builder. Equality is structural and ignores child order,
// since a rooted bipartition does not distinguish left from right.
package tree

import (
	"fmt"
	"slices"
	"strings"
)

// Node is one vertex of a rooted binary topology. A node is either a leaf
// (both children nil) or internal (both children non-nil); the constructors
// maintain this invariant.
type Node struct {
	id    int
	left  *Node
	right *Node
}

// Leaf returns a leaf node for the given taxon. The node id is the taxon id.
func Leaf(taxon int) *Node {
	return &Node{id: taxon}
}

// Join returns an internal node with the given synthetic id joining two
// existing subtrees. Callers assign synthetic ids above the taxon count so
// that leaf ids and internal ids never collide.
func Join(left, right *Node, id int) *Node {
	return &Node{id: id, left: left, right: right}
}

// ID returns the node's id: the taxon id for leaves, the synthetic id for
// internal nodes.
func (n *Node) ID() int { return n.id }

// Left returns the left child, or nil for a leaf.
func (n *Node) Left() *Node { return n.left }

// Right returns the right child, or nil for a leaf.
func (n *Node) Right() *Node { return n.right }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return n.left == nil && n.right == nil }

// NodeCount returns the number of nodes in the subtree rooted at n.
func (n *Node) NodeCount() int {
	count := 0
	n.walk(func(*Node) { count++ })
	return count
}

// Leaves returns the taxon ids of all leaves under n in ascending order.
func (n *Node) Leaves() []int {
	var taxa []int
	n.walk(func(v *Node) {
		if v.IsLeaf() {
			taxa = append(taxa, v.id)
		}
	})
	slices.Sort(taxa)
	return taxa
}

// walk visits every node of the subtree iteratively (explicit stack, no
// call recursion) in an unspecified order.
func (n *Node) walk(visit func(*Node)) {
	stack := []*Node{n}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(v)
		if v.left != nil {
			stack = append(stack, v.left)
		}
		if v.right != nil {
			stack = append(stack, v.right)
		}
	}
}

// Equal reports whether two topologies are structurally identical, ignoring
// child order and internal node ids.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	return n.canonical() == o.canonical()
}

// Newick renders the topology in Newick format. Leaf labels come from names
// (indexed by taxon id); a leaf whose taxon id has no name renders as "tN".
// Children are emitted in canonical order (subtree containing the smallest
// taxon first) so output is deterministic for equal topologies.
func (n *Node) Newick(names []string) string {
	var b strings.Builder
	n.writeNewick(&b, names)
	b.WriteByte(';')
	return b.String()
}

func (n *Node) writeNewick(b *strings.Builder, names []string) {
	if n.IsLeaf() {
		if n.id >= 0 && n.id < len(names) {
			b.WriteString(names[n.id])
		} else {
			fmt.Fprintf(b, "t%d", n.id)
		}
		return
	}
	first, second := n.left, n.right
	if minLeaf(second) < minLeaf(first) {
		first, second = second, first
	}
	b.WriteByte('(')
	first.writeNewick(b, names)
	b.WriteByte(',')
	second.writeNewick(b, names)
	b.WriteByte(')')
}

// canonical returns a name-free normal form used for structural equality.
func (n *Node) canonical() string {
	if n.IsLeaf() {
		return fmt.Sprintf("t%d", n.id)
	}
	first, second := n.left, n.right
	if minLeaf(second) < minLeaf(first) {
		first, second = second, first
	}
	return "(" + first.canonical() + "," + second.canonical() + ")"
}

func minLeaf(n *Node) int {
	if n.IsLeaf() {
		return n.id
	}
	return min(minLeaf(n.left), minLeaf(n.right))
}
