// Package nni represents nearest-neighbor interchanges: local rearrangements
// that exchange the sister clade of a DAG edge with one of the two child
// clades below it.
//
// An [Operation] is a directed parent→child subsplit pair. It is an immutable
// value with a total order ([Compare]), so operations can key sorted
// containers of candidate moves with content-determined equivalence. The
// package also answers the combinatorial questions the search loop needs:
// which pairs are one clade swap apart ([AreNeighbors]), which swap produced
// a given neighbor ([SisterSwappedWithRightChild]), and how the clade roles
// of a pre-move operation line up with those of a post-move one
// ([BuildCladeMap]).
package nni

import (
	"errors"
	"fmt"
	"slices"

	"github.com/phylobits/sdag/pkg/bitset"
)

var (
	// ErrNotNeighbors is returned when two operations that must be one
	// clade swap apart are not.
	ErrNotNeighbors = errors.New("nni operations are not neighbors")

	// ErrNoCladeMapping is returned by [BuildCladeMap] when some free clade
	// of the pre-move operation has no unconsumed equal clade in the
	// post-move operation. This indicates the inputs were not in fact
	// produced by a single clade swap.
	ErrNoCladeMapping = errors.New("no clade mapping from pre-move to post-move operation")
)

// CladeRole names one of the four clades an operation is built from.
// ParentFocal is the parent side the child refines; the other three are the
// "free" clades a swap can permute.
type CladeRole int

const (
	ParentFocal CladeRole = iota
	ParentSister
	ChildLeft
	ChildRight
	numCladeRoles
)

func (r CladeRole) String() string {
	switch r {
	case ParentFocal:
		return "parent-focal"
	case ParentSister:
		return "parent-sister"
	case ChildLeft:
		return "child-left"
	case ChildRight:
		return "child-right"
	}
	return fmt.Sprintf("clade-role(%d)", int(r))
}

// CladeMap maps each clade role of a pre-move operation to the role holding
// the equal clade in a post-move neighbor. Index with a [CladeRole].
type CladeMap [numCladeRoles]CladeRole

// Operation is a directed parent→child subsplit pair.
type Operation struct {
	Parent bitset.Subsplit
	Child  bitset.Subsplit
}

// New returns the operation for the given parent and child subsplits.
func New(parent, child bitset.Subsplit) Operation {
	return Operation{Parent: parent, Child: child}
}

// IsValid reports whether (Parent, Child) is a valid parent/child pair:
// one side of the parent equals the union of the child's sides.
func (op Operation) IsValid() bool {
	return bitset.IsParentChildPair(op.Parent, op.Child)
}

// Compare totally orders operations lexicographically: parent subsplits
// first (canonical subsplit order), child subsplits to break ties.
func Compare(a, b Operation) int {
	if c := bitset.SubsplitCompare(a.Parent, b.Parent); c != 0 {
		return c
	}
	return bitset.SubsplitCompare(a.Child, b.Child)
}

// Compare orders op against other; see the package-level [Compare].
func (op Operation) Compare(other Operation) int { return Compare(op, other) }

// Equal reports whether two operations hold equal parent and child subsplits.
func (op Operation) Equal(other Operation) bool { return Compare(op, other) == 0 }

// Clade returns the clade filling the given role. The result is only
// meaningful for a valid operation; for an invalid one the zero clade is
// returned.
func (op Operation) Clade(role CladeRole) bitset.Clade {
	switch role {
	case ChildLeft:
		return op.Child.Clade(bitset.CladeLeft)
	case ChildRight:
		return op.Child.Clade(bitset.CladeRight)
	}
	focal, err := bitset.FocalCladeOf(op.Parent, op.Child)
	if err != nil {
		return bitset.Clade{}
	}
	if role == ParentFocal {
		return op.Parent.Clade(focal)
	}
	return op.Parent.Clade(focal.Opposite())
}

// SisterClade returns the parent side not refined by the child.
func (op Operation) SisterClade() bitset.Clade { return op.Clade(ParentSister) }

// Neighbor returns the operation produced by exchanging the sister clade
// with one child clade: the right child when swapWithRightChild is set, the
// left child otherwise. The focal side of the parent is inferred from the
// child. The result of a valid input is itself a valid operation.
func (op Operation) Neighbor(swapWithRightChild bool) (Operation, error) {
	focal, err := bitset.FocalCladeOf(op.Parent, op.Child)
	if err != nil {
		return Operation{}, err
	}
	return NeighborWithFocal(op.Parent, op.Child, swapWithRightChild, focal == bitset.CladeRight)
}

// NeighborWithFocal builds the clade-swapped neighbor of the pair
// (parent, child) with the focal side given explicitly. Writing the parent
// as (X, Y∪Z) with X the sister and the child as (Y, Z) with Y the clade
// being swapped out, the result is parent (Y, X∪Z) with child (X, Z).
func NeighborWithFocal(parent, child bitset.Subsplit, swapWithRightChild, focalOnRight bool) (Operation, error) {
	sisterSide := bitset.CladeRight
	if focalOnRight {
		sisterSide = bitset.CladeLeft
	}
	swapSide := bitset.CladeLeft
	if swapWithRightChild {
		swapSide = bitset.CladeRight
	}
	x := parent.Clade(sisterSide)
	y := child.Clade(swapSide)
	z := child.Clade(swapSide.Opposite())

	parentOut, err := bitset.NewSubsplit(y, x.Union(z))
	if err != nil {
		return Operation{}, fmt.Errorf("neighbor parent: %w", err)
	}
	childOut, err := bitset.NewSubsplit(x, z)
	if err != nil {
		return Operation{}, fmt.Errorf("neighbor child: %w", err)
	}
	return Operation{Parent: parentOut, Child: childOut}, nil
}

// AreNeighbors reports whether a and b are one clade swap apart: their
// sister clades differ, and their {sister, left child, right child} clade
// multisets are equal.
func AreNeighbors(a, b Operation) bool {
	if a.SisterClade().Equal(b.SisterClade()) {
		return false
	}
	return freeClades(a) == freeClades(b)
}

// freeClades returns a canonical rendering of {sister, left child, right
// child} as a sorted triple, so multiset equality is string equality.
func freeClades(op Operation) [3]string {
	clades := []bitset.Clade{op.Clade(ParentSister), op.Clade(ChildLeft), op.Clade(ChildRight)}
	slices.SortFunc(clades, bitset.CladeCompare)
	return [3]string{clades[0].String(), clades[1].String(), clades[2].String()}
}

// SisterSwappedWithRightChild recovers which child clade was exchanged with
// the sister to turn pre into post: true when it was the right child (pre's
// sister equals post's right child clade). Returns [ErrNotNeighbors] if the
// operations are not one swap apart.
func SisterSwappedWithRightChild(pre, post Operation) (bool, error) {
	if !AreNeighbors(pre, post) {
		return false, ErrNotNeighbors
	}
	return pre.SisterClade().Equal(post.Clade(ChildRight)), nil
}

// BuildCladeMap matches each free clade role of pre (sister, left child,
// right child) to the unique post role holding an equal clade, consuming
// each post role at most once in role order. ParentFocal always maps to
// ParentFocal: a neighboring swap leaves the focal parent side unchanged.
// Used to carry per-clade bookkeeping across a rearrangement without
// recomputation.
//
// Returns [ErrNotNeighbors] if pre and post are not one swap apart, and
// [ErrNoCladeMapping] if a free clade cannot be matched (possible only for
// inconsistent inputs).
func BuildCladeMap(pre, post Operation) (CladeMap, error) {
	var m CladeMap
	if !AreNeighbors(pre, post) {
		return m, ErrNotNeighbors
	}
	free := [3]CladeRole{ParentSister, ChildLeft, ChildRight}
	var consumed [numCladeRoles]bool
	for _, preRole := range free {
		preClade := pre.Clade(preRole)
		found := false
		for _, postRole := range free {
			if consumed[postRole] {
				continue
			}
			if preClade.Equal(post.Clade(postRole)) {
				m[preRole] = postRole
				consumed[postRole] = true
				found = true
				break
			}
		}
		if !found {
			return CladeMap{}, fmt.Errorf("%w: %s", ErrNoCladeMapping, preRole)
		}
	}
	m[ParentFocal] = ParentFocal
	return m, nil
}

// String renders the operation as "{ P:left|right, C:left|right }".
func (op Operation) String() string {
	return fmt.Sprintf("{ P:%s, C:%s }", op.Parent, op.Child)
}
