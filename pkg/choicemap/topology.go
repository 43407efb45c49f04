package choicemap

import (
	"errors"
	"fmt"

	"github.com/phylobits/sdag/pkg/sdag"
	"github.com/phylobits/sdag/pkg/tree"
)

var (
	// ErrMalformedMask is returned by topology building when the expanded
	// mask is missing adjacency the traversal needs, loops back on itself,
	// or does not span a single connected tree.
	ErrMalformedMask = errors.New("expanded tree mask does not describe a tree")
)

// ExtractTopology extracts the tree mask anchored at the central edge and
// materializes it as a rooted topology.
func (m *Map) ExtractTopology(central sdag.EdgeID) (*tree.Node, error) {
	mask, err := m.ExtractTreeMask(central)
	if err != nil {
		return nil, err
	}
	return m.TopologyFromMask(mask)
}

// TopologyFromMask normalizes a tree mask and materializes it.
func (m *Map) TopologyFromMask(mask TreeMask) (*tree.Node, error) {
	expanded, err := m.ExpandTreeMask(mask)
	if err != nil {
		return nil, err
	}
	return m.TopologyFromExpanded(expanded)
}

// TopologyFromExpanded converts an expanded tree mask into an explicit
// rooted topology.
//
// The traversal is iterative: per-node visited-left/visited-right flags and
// a cursor replace call recursion, so stack use stays bounded however deep
// the tree is. Starting at the DAG root, the cursor descends left before
// right; a taxon node becomes a leaf ([tree.Leaf], id = taxon id); a node
// whose right subtree is finished joins its two built children under the
// next synthetic id (counting up from the taxon count) and returns to its
// parent. The walk ends when the rootsplit node, the single child of the
// DAG root in the mask, has been built.
func (m *Map) TopologyFromExpanded(expanded ExpandedTreeMask) (*tree.Node, error) {
	rootID := m.dag.RootNode()
	rootAdj, ok := expanded[rootID]
	if !ok {
		return nil, fmt.Errorf("%w: DAG root %s not in mask", ErrMalformedMask, rootID)
	}
	rootsplitID := rootAdj.LeftChild()
	if rootsplitID.IsNone() {
		return nil, fmt.Errorf("%w: DAG root %s has no child", ErrMalformedMask, rootID)
	}

	visitedLeft := make(map[sdag.NodeID]bool, len(expanded))
	visitedRight := make(map[sdag.NodeID]bool, len(expanded))
	built := make(map[sdag.NodeID]*tree.Node, len(expanded))

	nextSyntheticID := m.dag.TaxonCount()
	cursor := rootID
	// Each node is entered at most four times; more steps means the
	// adjacency loops.
	for steps := 0; built[rootsplitID] == nil; steps++ {
		if steps > 4*len(expanded) {
			return nil, fmt.Errorf("%w: traversal does not terminate", ErrMalformedMask)
		}
		adjacent, ok := expanded[cursor]
		if !ok {
			return nil, fmt.Errorf("%w: node %s not in mask", ErrMalformedMask, cursor)
		}

		var next sdag.NodeID
		switch {
		case visitedRight[cursor]:
			left, right := built[adjacent.LeftChild()], built[adjacent.RightChild()]
			if left == nil || right == nil {
				return nil, fmt.Errorf("%w: node %s joined before its children were built", ErrMalformedMask, cursor)
			}
			built[cursor] = tree.Join(left, right, nextSyntheticID)
			nextSyntheticID++
			next = adjacent.Parent()
		case visitedLeft[cursor]:
			visitedRight[cursor] = true
			next = adjacent.RightChild()
		case m.dag.IsNodeLeaf(cursor):
			built[cursor] = tree.Leaf(int(cursor))
			next = adjacent.Parent()
		default:
			visitedLeft[cursor] = true
			next = adjacent.LeftChild()
		}
		if next == cursor {
			return nil, fmt.Errorf("%w: node %s adjacent to itself", ErrMalformedMask, cursor)
		}
		cursor = next
	}

	if len(built)+1 != len(expanded) {
		return nil, fmt.Errorf("%w: built %d nodes for %d in mask", ErrMalformedMask, len(built), len(expanded))
	}
	return built[rootsplitID], nil
}
