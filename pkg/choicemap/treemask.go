package choicemap

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/phylobits/sdag/pkg/bitset"
	"github.com/phylobits/sdag/pkg/sdag"
)

var (
	// ErrSlotReassigned is returned by [Map.ExpandTreeMask] when a mask
	// assigns the same adjacency slot of a node twice. The mask does not
	// describe a tree.
	ErrSlotReassigned = errors.New("tree mask reassigns an adjacency slot")
)

// TreeMask is the edge set of one spanning tree through the DAG, sorted in
// ascending edge-id order. It is derived data: recompute it from the choice
// map and a central edge whenever the map changes.
type TreeMask []sdag.EdgeID

// Contains reports whether the mask includes the given edge.
func (t TreeMask) Contains(id sdag.EdgeID) bool {
	_, ok := slices.BinarySearch(t, id)
	return ok
}

// Slots of [AdjacentNodes], in storage order.
const (
	AdjParent = iota
	AdjLeftChild
	AdjRightChild
	adjCount
)

// AdjacentNodes holds the tree neighbors of one node: parent, left child,
// right child. Unset slots hold [sdag.NoNode].
type AdjacentNodes [adjCount]sdag.NodeID

// Parent returns the parent slot.
func (a AdjacentNodes) Parent() sdag.NodeID { return a[AdjParent] }

// LeftChild returns the left-child slot.
func (a AdjacentNodes) LeftChild() sdag.NodeID { return a[AdjLeftChild] }

// RightChild returns the right-child slot.
func (a AdjacentNodes) RightChild() sdag.NodeID { return a[AdjRightChild] }

func unsetAdjacent() AdjacentNodes {
	return AdjacentNodes{sdag.NoNode, sdag.NoNode, sdag.NoNode}
}

// ExpandedTreeMask maps every node touched by a tree mask to its tree
// neighbors. It is the normalized adjacency view used to build topologies.
type ExpandedTreeMask map[sdag.NodeID]AdjacentNodes

// ExtractTreeMask recovers the unique spanning tree the selection implies
// for the given central edge, as a sorted edge set.
//
// The walk makes two passes. Rootward: follow parent choices from the
// central edge up to a root edge, collecting every edge on the way and
// setting aside the sister choice of each step (and the central edge's two
// child choices) for later expansion. Leafward: replay the pending edges in
// the order they were set aside, descending through left/right child
// choices until every subtree is fully collected. The replay order does not
// affect which edges end up in the mask, only the traversal order, which is
// kept deterministic.
func (m *Map) ExtractTreeMask(central sdag.EdgeID) (TreeMask, error) {
	mask := make(map[sdag.EdgeID]struct{})
	var rootward, leafward []sdag.EdgeID

	pushValid := func(stack []sdag.EdgeID, id sdag.EdgeID) []sdag.EdgeID {
		if !id.IsNone() {
			stack = append(stack, id)
		}
		return stack
	}

	centralChoice, err := m.Get(central)
	if err != nil {
		return nil, err
	}
	rootward = pushValid(rootward, centralChoice.LeftChild)
	rootward = pushValid(rootward, centralChoice.RightChild)

	// Rootward pass: climb parent choices to a root edge, pending each
	// step's sister.
	cursor := central
	for {
		choice, err := m.Get(cursor)
		if err != nil {
			return nil, err
		}
		if _, dup := mask[cursor]; dup {
			return nil, fmt.Errorf("%w: edge %s revisited", ErrCyclicSelection, cursor)
		}
		mask[cursor] = struct{}{}
		if m.dag.IsEdgeRoot(cursor) {
			break
		}
		rootward = pushValid(rootward, choice.Sister)
		cursor = choice.Parent
	}

	// Reverse the pending stack so entries closer to the root expand first.
	for i := len(rootward) - 1; i >= 0; i-- {
		leafward = append(leafward, rootward[i])
	}

	// Leafward pass: drain pending edges, descending through child choices.
	for len(leafward) > 0 {
		id := leafward[len(leafward)-1]
		leafward = leafward[:len(leafward)-1]
		choice, err := m.Get(id)
		if err != nil {
			return nil, err
		}
		if _, dup := mask[id]; dup {
			return nil, fmt.Errorf("%w: edge %s revisited", ErrCyclicSelection, id)
		}
		mask[id] = struct{}{}
		leafward = pushValid(leafward, choice.LeftChild)
		leafward = pushValid(leafward, choice.RightChild)
	}

	out := make(TreeMask, 0, len(mask))
	for id := range mask {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

// TreeMaskIsValid reports whether the edge set is a structurally valid
// rooted binary spanning tree: exactly one edge terminates at the DAG root,
// each taxon leaf is the child endpoint of exactly one edge, no node gets a
// second parent or a second occupant of a child slot, interior nodes below
// the root have both children, and non-root nodes have a parent. Diagnostics go to diag
// (nil suppresses them); the first violation found stops the check.
func (m *Map) TreeMaskIsValid(mask TreeMask, diag io.Writer) bool {
	if diag == nil {
		diag = io.Discard
	}
	rootSeen := false
	leafSeen := make([]bool, m.dag.TaxonCount())
	adjacency := make(map[sdag.NodeID][adjCount]bool)

	for _, id := range mask {
		edge, err := m.dag.GetEdge(id)
		if err != nil {
			fmt.Fprintf(diag, "invalid tree mask: %v\n", err)
			return false
		}
		if m.dag.IsNodeRoot(edge.Parent) {
			if rootSeen {
				fmt.Fprintln(diag, "invalid tree mask: multiple edges terminate at the DAG root")
				return false
			}
			rootSeen = true
		}
		if m.dag.IsNodeLeaf(edge.Child) {
			if leafSeen[edge.Child] {
				fmt.Fprintf(diag, "invalid tree mask: multiple edges terminate at leaf %s\n", edge.Child)
				return false
			}
			leafSeen[edge.Child] = true
		}

		childSlot := AdjLeftChild
		if edge.Side == bitset.CladeRight {
			childSlot = AdjRightChild
		}
		parentAdj := adjacency[edge.Parent]
		if parentAdj[childSlot] {
			fmt.Fprintf(diag, "invalid tree mask: node %s has two occupants of a child slot\n", edge.Parent)
			return false
		}
		parentAdj[childSlot] = true
		adjacency[edge.Parent] = parentAdj

		childAdj := adjacency[edge.Child]
		if childAdj[AdjParent] {
			fmt.Fprintf(diag, "invalid tree mask: node %s has two parent edges\n", edge.Child)
			return false
		}
		childAdj[AdjParent] = true
		adjacency[edge.Child] = childAdj
	}

	for _, node := range slices.Sorted(maps.Keys(adjacency)) {
		flags := adjacency[node]
		left, right := flags[AdjLeftChild], flags[AdjRightChild]
		// The DAG root carries only the single rootsplit edge, so the
		// both-children requirement applies below it.
		if left != right && !m.dag.IsNodeRoot(node) {
			fmt.Fprintf(diag, "invalid tree mask: node %s has only one child\n", node)
			return false
		}
		if !left && !right && !m.dag.IsNodeLeaf(node) {
			fmt.Fprintf(diag, "invalid tree mask: interior node %s has no children\n", node)
			return false
		}
		if !flags[AdjParent] && !m.dag.IsNodeRoot(node) {
			fmt.Fprintf(diag, "invalid tree mask: non-root node %s has no parent\n", node)
			return false
		}
	}

	if !rootSeen {
		fmt.Fprintln(diag, "invalid tree mask: tree does not reach the DAG root")
		return false
	}
	for taxon, seen := range leafSeen {
		if !seen {
			fmt.Fprintf(diag, "invalid tree mask: tree does not span leaf %d\n", taxon)
			return false
		}
	}
	return true
}

// ExpandTreeMask normalizes a tree mask into per-node adjacency. Assigning
// the same slot twice returns [ErrSlotReassigned], which catches malformed
// masks early and independently of [Map.TreeMaskIsValid].
func (m *Map) ExpandTreeMask(mask TreeMask) (ExpandedTreeMask, error) {
	expanded := make(ExpandedTreeMask)
	for _, id := range mask {
		edge, err := m.dag.GetEdge(id)
		if err != nil {
			return nil, err
		}
		for _, node := range []sdag.NodeID{edge.Parent, edge.Child} {
			if _, ok := expanded[node]; !ok {
				expanded[node] = unsetAdjacent()
			}
		}

		childSlot := AdjLeftChild
		if edge.Side == bitset.CladeRight {
			childSlot = AdjRightChild
		}
		parentAdj := expanded[edge.Parent]
		if !parentAdj[childSlot].IsNone() {
			return nil, fmt.Errorf("%w: node %s, %s child", ErrSlotReassigned, edge.Parent, edge.Side)
		}
		parentAdj[childSlot] = edge.Child
		expanded[edge.Parent] = parentAdj

		childAdj := expanded[edge.Child]
		if !childAdj[AdjParent].IsNone() {
			return nil, fmt.Errorf("%w: node %s, parent", ErrSlotReassigned, edge.Child)
		}
		childAdj[AdjParent] = edge.Parent
		expanded[edge.Child] = childAdj
	}
	return expanded, nil
}

// ExtractExpandedTreeMask extracts the tree mask for the central edge and
// normalizes it in one step.
func (m *Map) ExtractExpandedTreeMask(central sdag.EdgeID) (ExpandedTreeMask, error) {
	mask, err := m.ExtractTreeMask(central)
	if err != nil {
		return nil, err
	}
	return m.ExpandTreeMask(mask)
}
