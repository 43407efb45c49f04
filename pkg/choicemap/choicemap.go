// Package choicemap implements the per-edge choice map that turns a subsplit
// DAG into concrete spanning trees.
//
// Every DAG edge owns an [EdgeChoice]: references to one adjacent edge in
// each of four directions (parent, sister, left child, right child). A fully
// populated map acts as a global selection function over the DAG: starting
// from any edge, following parent choices reaches the root and following
// child choices reaches the taxa, so each edge determines exactly one
// spanning tree (its [TreeMask]). The map supports growth and reindexing as
// the DAG gains edges, deterministic first-neighbor seeding, structural
// validity checks, and materialization of extracted masks into rooted
// topologies.
//
// A Map is exclusively owned by the component driving DAG mutation: growth
// and selection must not run concurrently with anything else. Read-only
// extraction and validity checks may run concurrently with each other.
//
// Failures split two ways, matching what the caller can do about them.
// Broken invariants (out-of-range references during extraction, adjacency
// slots assigned twice) are returned as errors with package sentinels; a
// choice map or mask that is merely inconsistent is reported by the
// IsValid methods as false with human-readable diagnostics on a caller
// supplied writer (nil suppresses them).
package choicemap

import (
	"errors"
	"fmt"
	"io"

	"github.com/phylobits/sdag/pkg/bitset"
	"github.com/phylobits/sdag/pkg/sdag"
)

var (
	// ErrShrink is returned by [Map.Grow] when the requested size is
	// smaller than the current one. Choice maps only grow.
	ErrShrink = errors.New("choice map cannot shrink")

	// ErrBadReindexer is returned by [Map.Grow] when the reindexer is not
	// a permutation of the new edge-index range.
	ErrBadReindexer = errors.New("reindexer is not a permutation of the edge range")

	// ErrEdgeOutOfRange is returned when a stored edge reference leaves the
	// DAG's valid edge-index range during extraction.
	ErrEdgeOutOfRange = errors.New("edge reference outside valid edge range")

	// ErrCyclicSelection is returned when following parent choices
	// revisits an edge, which means the selection cannot reach the root.
	ErrCyclicSelection = errors.New("parent choices form a cycle")
)

// EdgeChoice references the four neighboring edges chosen for one DAG edge.
// Unset directions hold [sdag.NoEdge]; a root edge has no parent or sister,
// a leaf edge has no children.
type EdgeChoice struct {
	Parent     sdag.EdgeID
	Sister     sdag.EdgeID
	LeftChild  sdag.EdgeID
	RightChild sdag.EdgeID
}

func emptyChoice() EdgeChoice {
	return EdgeChoice{Parent: sdag.NoEdge, Sister: sdag.NoEdge, LeftChild: sdag.NoEdge, RightChild: sdag.NoEdge}
}

// IsEmpty reports whether no direction is set.
func (c EdgeChoice) IsEmpty() bool {
	return c.Parent.IsNone() && c.Sister.IsNone() && c.LeftChild.IsNone() && c.RightChild.IsNone()
}

// Map holds one [EdgeChoice] per DAG edge, indexed by [sdag.EdgeID].
type Map struct {
	dag     *sdag.DAG
	choices []EdgeChoice
}

// New returns a choice map for d with one unset choice per edge. Populate it
// with [Map.SelectFirstEdges] (or per-edge selection) before extracting.
func New(d *sdag.DAG) *Map {
	m := &Map{dag: d, choices: make([]EdgeChoice, d.EdgeCount())}
	for i := range m.choices {
		m.choices[i] = emptyChoice()
	}
	return m
}

// DAG returns the DAG the map selects over.
func (m *Map) DAG() *sdag.DAG { return m.dag }

// Size returns the number of per-edge entries.
func (m *Map) Size() int { return len(m.choices) }

// Get returns the choice stored for the given edge.
func (m *Map) Get(id sdag.EdgeID) (EdgeChoice, error) {
	if id < 0 || int(id) >= len(m.choices) {
		return EdgeChoice{}, fmt.Errorf("%w: edge %s of %d", ErrEdgeOutOfRange, id, len(m.choices))
	}
	return m.choices[id], nil
}

// Reindexer maps old edge indices to new ones after a structural DAG change.
// Entry i is the new index of the edge previously stored at index i; a valid
// reindexer is a permutation of [0, len).
type Reindexer []sdag.EdgeID

// NewIndex returns the new index for an old one.
func (r Reindexer) NewIndex(old sdag.EdgeID) (sdag.EdgeID, error) {
	if old < 0 || int(old) >= len(r) {
		return sdag.NoEdge, fmt.Errorf("%w: old index %s of %d", ErrEdgeOutOfRange, old, len(r))
	}
	return r[old], nil
}

func (r Reindexer) isPermutation() bool {
	seen := make([]bool, len(r))
	for _, v := range r {
		if v < 0 || int(v) >= len(r) || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// Grow resizes the map to newCount entries, appending unset choices for the
// new edges. If a reindexer is supplied it must be a permutation of
// [0, newCount); every stored edge reference is remapped through it first,
// and only then is the storage itself reordered, so no reference is read
// while its target is mid-move. New slots must be populated via the
// selectors before use.
func (m *Map) Grow(newCount int, reindexer Reindexer) error {
	if newCount < len(m.choices) {
		return fmt.Errorf("%w: %d entries, requested %d", ErrShrink, len(m.choices), newCount)
	}
	for len(m.choices) < newCount {
		m.choices = append(m.choices, emptyChoice())
	}
	if reindexer == nil {
		return nil
	}
	if len(reindexer) != newCount || !reindexer.isPermutation() {
		return fmt.Errorf("%w: %d entries for %d edges", ErrBadReindexer, len(reindexer), newCount)
	}

	// Pass one: remap the references held inside each choice.
	for i := range m.choices {
		for _, ref := range []*sdag.EdgeID{
			&m.choices[i].Parent, &m.choices[i].Sister,
			&m.choices[i].LeftChild, &m.choices[i].RightChild,
		} {
			if ref.IsNone() {
				continue
			}
			mapped, err := reindexer.NewIndex(*ref)
			if err != nil {
				return err
			}
			*ref = mapped
		}
	}

	// Pass two: physically reorder the entries.
	reordered := make([]EdgeChoice, newCount)
	for old, choice := range m.choices {
		reordered[reindexer[old]] = choice
	}
	m.choices = reordered
	return nil
}

// SelectFirstEdges resets every entry to the deterministic first-neighbor
// selection. Use this to (re)initialize a map from scratch, for example
// after a bulk DAG rebuild.
func (m *Map) SelectFirstEdges() error {
	for id := sdag.EdgeID(0); int(id) < m.dag.EdgeCount(); id++ {
		if err := m.SelectFirstEdge(id); err != nil {
			return err
		}
	}
	return nil
}

// SelectFirstEdge seeds the choice for one edge from the first entry of each
// relevant neighbor list. The parent choice is taken from the parent node's
// left-side rootward neighbors and then overwritten from the right-side
// ones when both lists are non-empty; the later assignment wins. The sister
// is the first leafward neighbor of the parent node on the clade opposite
// the edge's focal clade; the children are the first leafward neighbors of
// the child node on each side. Directions with no neighbors stay unset,
// which is the boundary condition for root and leaf edges.
func (m *Map) SelectFirstEdge(id sdag.EdgeID) error {
	edge, err := m.dag.GetEdge(id)
	if err != nil {
		return err
	}
	choice := emptyChoice()

	leftParents := m.dag.Neighbors(edge.Parent, sdag.Rootward, bitset.CladeLeft)
	rightParents := m.dag.Neighbors(edge.Parent, sdag.Rootward, bitset.CladeRight)
	sisters := m.dag.Neighbors(edge.Parent, sdag.Leafward, edge.Side.Opposite())
	leftChildren := m.dag.Neighbors(edge.Child, sdag.Leafward, bitset.CladeLeft)
	rightChildren := m.dag.Neighbors(edge.Child, sdag.Leafward, bitset.CladeRight)

	if len(leftParents) > 0 {
		if choice.Parent, err = m.edgeBetween(leftParents[0], edge.Parent); err != nil {
			return err
		}
	}
	if len(rightParents) > 0 {
		if choice.Parent, err = m.edgeBetween(rightParents[0], edge.Parent); err != nil {
			return err
		}
	}
	if len(sisters) > 0 {
		if choice.Sister, err = m.edgeBetween(edge.Parent, sisters[0]); err != nil {
			return err
		}
	}
	if len(leftChildren) > 0 {
		if choice.LeftChild, err = m.edgeBetween(edge.Child, leftChildren[0]); err != nil {
			return err
		}
	}
	if len(rightChildren) > 0 {
		if choice.RightChild, err = m.edgeBetween(edge.Child, rightChildren[0]); err != nil {
			return err
		}
	}

	m.choices[id] = choice
	return nil
}

func (m *Map) edgeBetween(parent, child sdag.NodeID) (sdag.EdgeID, error) {
	id, ok := m.dag.EdgeBetween(parent, child)
	if !ok {
		return sdag.NoEdge, fmt.Errorf("%w: no edge %s→%s", sdag.ErrNoSuchEdge, parent, child)
	}
	return id, nil
}

// SelectionIsValid checks every entry of the map and reports whether the
// selection as a whole is usable for extraction. Diagnostics are written to
// diag (nil suppresses them). Per edge it requires: the choice is not
// entirely unset; parent and sister are in-range ids exactly when the edge
// is not a root edge (and unset when it is); each child is an in-range id
// exactly when the edge is not a leaf edge. Scanning stops at the first
// failing edge after dumping its context.
func (m *Map) SelectionIsValid(diag io.Writer) bool {
	if diag == nil {
		diag = io.Discard
	}
	edgeCount := m.dag.EdgeCount()
	inRange := func(id sdag.EdgeID) bool { return id >= 0 && int(id) < edgeCount }

	for id := sdag.EdgeID(0); int(id) < len(m.choices); id++ {
		choice := m.choices[id]
		valid := true

		if choice.IsEmpty() {
			fmt.Fprintf(diag, "invalid selection: edge %s has an empty choice\n", id)
			valid = false
		}
		isRoot := m.dag.IsEdgeRoot(id)
		isLeaf := m.dag.IsEdgeLeaf(id)

		for _, ref := range []struct {
			name string
			id   sdag.EdgeID
		}{{"parent", choice.Parent}, {"sister", choice.Sister}} {
			switch {
			case isRoot && !ref.id.IsNone():
				fmt.Fprintf(diag, "invalid selection: root edge %s has a %s choice\n", id, ref.name)
				valid = false
			case !isRoot && !inRange(ref.id):
				fmt.Fprintf(diag, "invalid selection: edge %s has no valid %s choice\n", id, ref.name)
				valid = false
			}
		}
		for _, ref := range []struct {
			name string
			id   sdag.EdgeID
		}{{"left child", choice.LeftChild}, {"right child", choice.RightChild}} {
			switch {
			case isLeaf && !ref.id.IsNone():
				fmt.Fprintf(diag, "invalid selection: leaf edge %s has a %s choice\n", id, ref.name)
				valid = false
			case !isLeaf && !inRange(ref.id):
				fmt.Fprintf(diag, "invalid selection: edge %s has no valid %s choice\n", id, ref.name)
				valid = false
			}
		}

		if !valid {
			fmt.Fprintf(diag, "failed at edge %s: leaf=%v root=%v\n", id, isLeaf, isRoot)
			fmt.Fprintf(diag, "edge choice: %s\n", m.EdgeChoiceString(id))
			return false
		}
	}
	return true
}
