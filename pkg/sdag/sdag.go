// Package sdag implements the subsplit DAG: a directed acyclic graph whose
// nodes are subsplits of a fixed taxon set and whose edges join parent
// subsplits to compatible child subsplits. The DAG compactly represents the
// collection of rooted binary trees that can be assembled from its edges.
//
// # Node and edge layout
//
// Nodes are stored in a fixed deterministic order: the taxon leaves first
// (leaf node id equals taxon id), then interior subsplits in canonical
// subsplit order, then the universal root subsplit last. Edges are ordered by
// (parent, child) node id. References between structures use integer handles
// ([NodeID], [EdgeID]) with reserved sentinels rather than pointers; callers
// must treat a sentinel as "no such node/edge" at every boundary.
//
// A DAG is immutable after construction and safe for concurrent readers.
package sdag

import (
	"errors"
	"fmt"

	"github.com/phylobits/sdag/pkg/bitset"
)

var (
	// ErrNoSuchNode is returned when a node id is outside the DAG's range.
	ErrNoSuchNode = errors.New("no such node")

	// ErrNoSuchEdge is returned when an edge id is outside the DAG's range.
	ErrNoSuchEdge = errors.New("no such edge")

	// ErrLeafSetMismatch is returned by [FromTopologies] when a topology's
	// leaves do not cover the taxon set exactly once each.
	ErrLeafSetMismatch = errors.New("topology leaves do not match taxon set")

	// ErrEmptyTaxonSet is returned by [FromTopologies] when no taxa are given.
	ErrEmptyTaxonSet = errors.New("taxon set is empty")
)

// Node is one subsplit vertex of the DAG.
type Node struct {
	ID       NodeID
	Subsplit bitset.Subsplit
}

// Edge is a directed parent→child connection between two compatible
// subsplits. Side records which clade of the parent the child refines
// (the edge's focal clade).
type Edge struct {
	ID     EdgeID
	Parent NodeID
	Child  NodeID
	Side   bitset.CladeSide
}

// DAG is the subsplit DAG. Use [FromTopologies] to construct one.
type DAG struct {
	taxonNames []string
	nodes      []Node
	edges      []Edge

	nodeBySubsplit map[string]NodeID
	edgeByPair     map[[2]NodeID]EdgeID

	// Adjacency indexed by node, direction, and clade side. For Leafward the
	// side is the queried node's own clade that the neighbor refines; for
	// Rootward it is the neighbor's clade that the queried node refines.
	rootward [][2][]NodeID
	leafward [][2][]NodeID
}

// TaxonCount returns the number of taxa (and leaf nodes).
func (d *DAG) TaxonCount() int { return len(d.taxonNames) }

// TaxonNames returns the taxon labels indexed by taxon id.
func (d *DAG) TaxonNames() []string { return d.taxonNames }

// NodeCount returns the number of nodes, leaves and root included.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges, leaf and root edges included.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// RootNode returns the id of the universal root node (always the last node).
func (d *DAG) RootNode() NodeID { return NodeID(len(d.nodes) - 1) }

// GetNode returns the node for id. Returns [ErrNoSuchNode] for ids outside
// the valid range (the [NoNode] sentinel included).
func (d *DAG) GetNode(id NodeID) (Node, error) {
	if id < 0 || int(id) >= len(d.nodes) {
		return Node{}, fmt.Errorf("%w: node %s", ErrNoSuchNode, id)
	}
	return d.nodes[id], nil
}

// GetEdge returns the edge for id. Returns [ErrNoSuchEdge] for ids outside
// the valid range (the [NoEdge] sentinel included).
func (d *DAG) GetEdge(id EdgeID) (Edge, error) {
	if id < 0 || int(id) >= len(d.edges) {
		return Edge{}, fmt.Errorf("%w: edge %s", ErrNoSuchEdge, id)
	}
	return d.edges[id], nil
}

// EdgeBetween returns the id of the edge joining parent to child, if any.
func (d *DAG) EdgeBetween(parent, child NodeID) (EdgeID, bool) {
	id, ok := d.edgeByPair[[2]NodeID{parent, child}]
	return id, ok
}

// NodeBySubsplit returns the id of the node holding the given subsplit.
func (d *DAG) NodeBySubsplit(s bitset.Subsplit) (NodeID, bool) {
	id, ok := d.nodeBySubsplit[s.Key()]
	return id, ok
}

// Neighbors returns the neighbor node ids of id in the given direction on the
// given clade side. Leafward neighbors on a side are the children attached to
// that clade of the node; rootward neighbors on a side are the parents whose
// clade of that side the node refines. The returned slice is a read-only
// view; it is empty (not nil-checked) at root/leaf boundaries.
func (d *DAG) Neighbors(id NodeID, dir Direction, side bitset.CladeSide) []NodeID {
	if id < 0 || int(id) >= len(d.nodes) {
		return nil
	}
	if dir == Rootward {
		return d.rootward[id][side]
	}
	return d.leafward[id][side]
}

// IsNodeLeaf reports whether id is a taxon leaf node.
func (d *DAG) IsNodeLeaf(id NodeID) bool {
	return id >= 0 && int(id) < d.TaxonCount()
}

// IsNodeRoot reports whether id is the universal root node.
func (d *DAG) IsNodeRoot(id NodeID) bool {
	return len(d.nodes) > 0 && id == d.RootNode()
}

// IsEdgeRoot reports whether the edge descends from the root node.
// Out-of-range ids report false.
func (d *DAG) IsEdgeRoot(id EdgeID) bool {
	e, err := d.GetEdge(id)
	return err == nil && d.IsNodeRoot(e.Parent)
}

// IsEdgeLeaf reports whether the edge terminates at a taxon leaf.
// Out-of-range ids report false.
func (d *DAG) IsEdgeLeaf(id EdgeID) bool {
	e, err := d.GetEdge(id)
	return err == nil && d.IsNodeLeaf(e.Child)
}

// Validate checks structural integrity and returns nil if the DAG is sound:
// edges join existing nodes as valid parent/child subsplit pairs with the
// recorded focal side, every non-root node has at least one rootward
// neighbor, and every interior node has at least one leafward neighbor on
// each clade side.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		parent, err := d.GetNode(e.Parent)
		if err != nil {
			return fmt.Errorf("edge %s: %w", e.ID, err)
		}
		child, err := d.GetNode(e.Child)
		if err != nil {
			return fmt.Errorf("edge %s: %w", e.ID, err)
		}
		side, err := bitset.FocalCladeOf(parent.Subsplit, child.Subsplit)
		if err != nil {
			return fmt.Errorf("edge %s (%s→%s): %w", e.ID, e.Parent, e.Child, err)
		}
		if side != e.Side {
			return fmt.Errorf("edge %s (%s→%s): recorded side %s, focal side %s",
				e.ID, e.Parent, e.Child, e.Side, side)
		}
	}
	for _, n := range d.nodes {
		if !d.IsNodeRoot(n.ID) {
			if len(d.rootward[n.ID][bitset.CladeLeft])+len(d.rootward[n.ID][bitset.CladeRight]) == 0 {
				return fmt.Errorf("node %s: non-root node has no rootward neighbors", n.ID)
			}
		}
		if d.IsNodeLeaf(n.ID) || d.IsNodeRoot(n.ID) {
			continue
		}
		for _, side := range []bitset.CladeSide{bitset.CladeLeft, bitset.CladeRight} {
			if len(d.leafward[n.ID][side]) == 0 {
				return fmt.Errorf("node %s: interior node has no %s children", n.ID, side)
			}
		}
	}
	return nil
}
