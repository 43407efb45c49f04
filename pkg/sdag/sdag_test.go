package sdag

import (
	"errors"
	"testing"

	"github.com/phylobits/sdag/pkg/bitset"
	"github.com/phylobits/sdag/pkg/tree"
)

var fourTaxa = []string{"A", "B", "C", "D"}

// balancedFour builds ((A,B),(C,D)) over taxa 0..3.
func balancedFour() *tree.Node {
	ab := tree.Join(tree.Leaf(0), tree.Leaf(1), 4)
	cd := tree.Join(tree.Leaf(2), tree.Leaf(3), 5)
	return tree.Join(ab, cd, 6)
}

// caterpillarFour builds (((A,B),C),D) over taxa 0..3.
func caterpillarFour() *tree.Node {
	ab := tree.Join(tree.Leaf(0), tree.Leaf(1), 4)
	abc := tree.Join(ab, tree.Leaf(2), 5)
	return tree.Join(abc, tree.Leaf(3), 6)
}

func TestFromTopologiesSingleTree(t *testing.T) {
	d, err := FromTopologies(fourTaxa, []*tree.Node{balancedFour()})
	if err != nil {
		t.Fatalf("FromTopologies: %v", err)
	}

	// 4 leaves + 3 interior subsplits + universal root.
	if got := d.NodeCount(); got != 8 {
		t.Errorf("NodeCount() = %d, want 8", got)
	}
	// One spanning tree contributes 2n-1 edges.
	if got := d.EdgeCount(); got != 7 {
		t.Errorf("EdgeCount() = %d, want 7", got)
	}
	if got := d.TaxonCount(); got != 4 {
		t.Errorf("TaxonCount() = %d, want 4", got)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestFromTopologiesUnion(t *testing.T) {
	d, err := FromTopologies(fourTaxa, []*tree.Node{balancedFour(), caterpillarFour()})
	if err != nil {
		t.Fatalf("FromTopologies: %v", err)
	}

	// The caterpillar shares the (A,B) subsplit and adds (AB,C) and (ABC,D).
	if got := d.NodeCount(); got != 10 {
		t.Errorf("NodeCount() = %d, want 10", got)
	}
	if got := d.EdgeCount(); got != 12 {
		t.Errorf("EdgeCount() = %d, want 12", got)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestNodeLayout(t *testing.T) {
	d, err := FromTopologies(fourTaxa, []*tree.Node{balancedFour()})
	if err != nil {
		t.Fatalf("FromTopologies: %v", err)
	}

	// Leaf node ids equal taxon ids.
	for taxon := 0; taxon < 4; taxon++ {
		id := NodeID(taxon)
		if !d.IsNodeLeaf(id) {
			t.Errorf("IsNodeLeaf(%d) = false, want true", taxon)
		}
		n, err := d.GetNode(id)
		if err != nil {
			t.Fatalf("GetNode(%d): %v", taxon, err)
		}
		want := bitset.LeafSubsplit(4, taxon)
		if !n.Subsplit.Equal(want) {
			t.Errorf("node %d subsplit = %s, want %s", taxon, n.Subsplit, want)
		}
	}

	// Universal root is the last node.
	root := d.RootNode()
	if int(root) != d.NodeCount()-1 {
		t.Errorf("RootNode() = %s, want %d", root, d.NodeCount()-1)
	}
	if !d.IsNodeRoot(root) {
		t.Error("IsNodeRoot(RootNode()) = false")
	}
	rn, _ := d.GetNode(root)
	if !rn.Subsplit.Equal(bitset.FullSubsplit(4)) {
		t.Errorf("root subsplit = %s, want full", rn.Subsplit)
	}
}

func TestGetNodeAndEdgeErrors(t *testing.T) {
	d, err := FromTopologies(fourTaxa, []*tree.Node{balancedFour()})
	if err != nil {
		t.Fatalf("FromTopologies: %v", err)
	}

	if _, err := d.GetNode(NoNode); !errors.Is(err, ErrNoSuchNode) {
		t.Errorf("GetNode(NoNode) err = %v, want ErrNoSuchNode", err)
	}
	if _, err := d.GetNode(NodeID(d.NodeCount())); !errors.Is(err, ErrNoSuchNode) {
		t.Errorf("GetNode(out of range) err = %v, want ErrNoSuchNode", err)
	}
	if _, err := d.GetEdge(NoEdge); !errors.Is(err, ErrNoSuchEdge) {
		t.Errorf("GetEdge(NoEdge) err = %v, want ErrNoSuchEdge", err)
	}
}

func TestNeighbors(t *testing.T) {
	d, err := FromTopologies(fourTaxa, []*tree.Node{balancedFour(), caterpillarFour()})
	if err != nil {
		t.Fatalf("FromTopologies: %v", err)
	}

	ab := mustNode(t, d, bitset.CladeOf(4, 0), bitset.CladeOf(4, 1))
	abcd := mustNode(t, d, bitset.CladeOf(4, 0, 1), bitset.CladeOf(4, 2, 3))
	abc := mustNode(t, d, bitset.CladeOf(4, 0, 1), bitset.CladeOf(4, 2))

	// (A,B) refines the left clade of both (AB,CD) and (AB,C).
	parents := d.Neighbors(ab, Rootward, bitset.CladeLeft)
	if len(parents) != 2 || !containsNode(parents, abcd) || !containsNode(parents, abc) {
		t.Errorf("rootward left of (A,B) = %v, want {%s, %s}", parents, abcd, abc)
	}
	if got := d.Neighbors(ab, Rootward, bitset.CladeRight); len(got) != 0 {
		t.Errorf("rootward right of (A,B) = %v, want empty", got)
	}

	// (AB,CD) has (A,B) under its left clade and (C,D) under its right.
	left := d.Neighbors(abcd, Leafward, bitset.CladeLeft)
	if len(left) != 1 || left[0] != ab {
		t.Errorf("leafward left of (AB,CD) = %v, want [%s]", left, ab)
	}
	cd := mustNode(t, d, bitset.CladeOf(4, 2), bitset.CladeOf(4, 3))
	right := d.Neighbors(abcd, Leafward, bitset.CladeRight)
	if len(right) != 1 || right[0] != cd {
		t.Errorf("leafward right of (AB,CD) = %v, want [%s]", right, cd)
	}

	// The root node has both rootsplits under its covering clade.
	root := d.Neighbors(d.RootNode(), Leafward, bitset.CladeLeft)
	if len(root) != 2 {
		t.Errorf("leafward left of root = %v, want two rootsplits", root)
	}
}

func TestEdgeQueries(t *testing.T) {
	d, err := FromTopologies(fourTaxa, []*tree.Node{balancedFour()})
	if err != nil {
		t.Fatalf("FromTopologies: %v", err)
	}

	abcd := mustNode(t, d, bitset.CladeOf(4, 0, 1), bitset.CladeOf(4, 2, 3))
	ab := mustNode(t, d, bitset.CladeOf(4, 0), bitset.CladeOf(4, 1))

	id, ok := d.EdgeBetween(abcd, ab)
	if !ok {
		t.Fatalf("EdgeBetween(%s, %s) not found", abcd, ab)
	}
	e, err := d.GetEdge(id)
	if err != nil {
		t.Fatalf("GetEdge: %v", err)
	}
	if e.Parent != abcd || e.Child != ab {
		t.Errorf("edge endpoints = %s to %s, want %s to %s", e.Parent, e.Child, abcd, ab)
	}
	if e.Side != bitset.CladeLeft {
		t.Errorf("edge side = %s, want left", e.Side)
	}

	if _, ok := d.EdgeBetween(ab, abcd); ok {
		t.Error("EdgeBetween should not find the reversed direction")
	}

	rootEdge, ok := d.EdgeBetween(d.RootNode(), abcd)
	if !ok {
		t.Fatal("root edge not found")
	}
	if !d.IsEdgeRoot(rootEdge) {
		t.Error("IsEdgeRoot(root edge) = false")
	}
	leafEdge, ok := d.EdgeBetween(ab, NodeID(0))
	if !ok {
		t.Fatal("leaf edge not found")
	}
	if !d.IsEdgeLeaf(leafEdge) {
		t.Error("IsEdgeLeaf(leaf edge) = false")
	}
}

func TestFromTopologiesErrors(t *testing.T) {
	if _, err := FromTopologies(nil, []*tree.Node{balancedFour()}); !errors.Is(err, ErrEmptyTaxonSet) {
		t.Errorf("err = %v, want ErrEmptyTaxonSet", err)
	}
	if _, err := FromTopologies(fourTaxa, nil); !errors.Is(err, ErrLeafSetMismatch) {
		t.Errorf("err = %v, want ErrLeafSetMismatch", err)
	}
	// Three-leaf tree over a four-taxon set.
	bad := tree.Join(tree.Join(tree.Leaf(0), tree.Leaf(1), 4), tree.Leaf(2), 5)
	if _, err := FromTopologies(fourTaxa, []*tree.Node{bad}); !errors.Is(err, ErrLeafSetMismatch) {
		t.Errorf("err = %v, want ErrLeafSetMismatch", err)
	}
}

func mustNode(t *testing.T, d *DAG, a, b bitset.Clade) NodeID {
	t.Helper()
	s, err := bitset.NewSubsplit(a, b)
	if err != nil {
		t.Fatalf("NewSubsplit: %v", err)
	}
	id, ok := d.NodeBySubsplit(s)
	if !ok {
		t.Fatalf("subsplit %s not in DAG", s)
	}
	return id
}

func containsNode(ids []NodeID, want NodeID) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
