package sdag

import (
	"fmt"
	"slices"
	"sort"

	"github.com/phylobits/sdag/pkg/bitset"
	"github.com/phylobits/sdag/pkg/tree"
)

// FromTopologies builds the union subsplit DAG of one or more rooted binary
// topologies over the given taxon set. Every subsplit and parent/child pair
// that occurs in any input tree becomes a node and an edge of the DAG; leaf
// subsplits and the universal root subsplit are always included, so every
// input topology is recoverable as a spanning tree through the result.
//
// Each topology's leaf ids must cover [0, len(taxonNames)) exactly once;
// otherwise [ErrLeafSetMismatch] is returned.
func FromTopologies(taxonNames []string, topologies []*tree.Node) (*DAG, error) {
	n := len(taxonNames)
	if n == 0 {
		return nil, ErrEmptyTaxonSet
	}
	if len(topologies) == 0 {
		return nil, fmt.Errorf("%w: no topologies given", ErrLeafSetMismatch)
	}

	interior := make(map[string]bitset.Subsplit)
	pairs := make(map[[2]string][2]bitset.Subsplit)
	full := bitset.FullSubsplit(n)

	for i, top := range topologies {
		if err := checkLeafSet(top, n); err != nil {
			return nil, fmt.Errorf("topology %d: %w", i+1, err)
		}
		rootSubsplit, err := collectSubsplits(top, n, interior, pairs)
		if err != nil {
			return nil, fmt.Errorf("topology %d: %w", i+1, err)
		}
		addPair(pairs, full, rootSubsplit)
	}

	d := &DAG{
		taxonNames:     taxonNames,
		nodeBySubsplit: make(map[string]NodeID),
		edgeByPair:     make(map[[2]NodeID]EdgeID),
	}

	// Leaves first (node id = taxon id), interior subsplits in canonical
	// order, root last.
	for taxon := 0; taxon < n; taxon++ {
		d.appendNode(bitset.LeafSubsplit(n, taxon))
	}
	ordered := make([]bitset.Subsplit, 0, len(interior))
	for _, s := range interior {
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return bitset.SubsplitCompare(ordered[i], ordered[j]) < 0
	})
	for _, s := range ordered {
		d.appendNode(s)
	}
	d.appendNode(full)

	d.rootward = make([][2][]NodeID, len(d.nodes))
	d.leafward = make([][2][]NodeID, len(d.nodes))

	type pair struct{ parent, child NodeID }
	edgePairs := make([]pair, 0, len(pairs))
	for _, p := range pairs {
		parentID, ok := d.nodeBySubsplit[p[0].Key()]
		if !ok {
			return nil, fmt.Errorf("internal: parent subsplit %s not indexed", p[0])
		}
		childID, ok := d.nodeBySubsplit[p[1].Key()]
		if !ok {
			return nil, fmt.Errorf("internal: child subsplit %s not indexed", p[1])
		}
		edgePairs = append(edgePairs, pair{parentID, childID})
	}
	slices.SortFunc(edgePairs, func(a, b pair) int {
		if a.parent != b.parent {
			return int(a.parent) - int(b.parent)
		}
		return int(a.child) - int(b.child)
	})

	for _, p := range edgePairs {
		side, err := bitset.FocalCladeOf(d.nodes[p.parent].Subsplit, d.nodes[p.child].Subsplit)
		if err != nil {
			return nil, fmt.Errorf("edge %s→%s: %w", p.parent, p.child, err)
		}
		id := EdgeID(len(d.edges))
		d.edges = append(d.edges, Edge{ID: id, Parent: p.parent, Child: p.child, Side: side})
		d.edgeByPair[[2]NodeID{p.parent, p.child}] = id
		d.leafward[p.parent][side] = append(d.leafward[p.parent][side], p.child)
		d.rootward[p.child][side] = append(d.rootward[p.child][side], p.parent)
	}

	return d, nil
}

func (d *DAG) appendNode(s bitset.Subsplit) {
	id := NodeID(len(d.nodes))
	d.nodes = append(d.nodes, Node{ID: id, Subsplit: s})
	d.nodeBySubsplit[s.Key()] = id
}

func checkLeafSet(top *tree.Node, n int) error {
	leaves := top.Leaves()
	if len(leaves) != n {
		return fmt.Errorf("%w: %d leaves, %d taxa", ErrLeafSetMismatch, len(leaves), n)
	}
	for i, taxon := range leaves {
		if taxon != i {
			return fmt.Errorf("%w: leaf ids are not 0..%d", ErrLeafSetMismatch, n-1)
		}
	}
	return nil
}

// collectSubsplits walks the topology bottom-up (explicit post-order stack),
// recording the subsplit of every interior node and the parent/child subsplit
// pair of every edge. Returns the subsplit of the topology's root.
func collectSubsplits(top *tree.Node, n int, interior map[string]bitset.Subsplit, pairs map[[2]string][2]bitset.Subsplit) (bitset.Subsplit, error) {
	clades := make(map[*tree.Node]bitset.Clade)
	subsplits := make(map[*tree.Node]bitset.Subsplit)

	type frame struct {
		node    *tree.Node
		visited bool
	}
	stack := []frame{{node: top}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node.IsLeaf() {
			clades[f.node] = bitset.CladeOf(n, f.node.ID())
			subsplits[f.node] = bitset.LeafSubsplit(n, f.node.ID())
			continue
		}
		if !f.visited {
			stack = append(stack, frame{node: f.node, visited: true})
			stack = append(stack, frame{node: f.node.Left()})
			stack = append(stack, frame{node: f.node.Right()})
			continue
		}
		left, right := clades[f.node.Left()], clades[f.node.Right()]
		s, err := bitset.NewSubsplit(left, right)
		if err != nil {
			return bitset.Subsplit{}, fmt.Errorf("node %d: %w", f.node.ID(), err)
		}
		clades[f.node] = left.Union(right)
		subsplits[f.node] = s
		interior[s.Key()] = s
		addPair(pairs, s, subsplits[f.node.Left()])
		addPair(pairs, s, subsplits[f.node.Right()])
	}
	return subsplits[top], nil
}

func addPair(pairs map[[2]string][2]bitset.Subsplit, parent, child bitset.Subsplit) {
	pairs[[2]string{parent.Key(), child.Key()}] = [2]bitset.Subsplit{parent, child}
}
