package bitset

import "errors"

var (
	// ErrOverlappingClades is returned by [NewSubsplit] when the two clades
	// share a taxon. Subsplit sides must be disjoint.
	ErrOverlappingClades = errors.New("subsplit clades must be disjoint")

	// ErrNotParentChild is returned by [FocalCladeOf] when neither side of
	// the parent equals the union of the child's sides.
	ErrNotParentChild = errors.New("subsplits are not a parent/child pair")
)

// CladeSide selects one of the two sides of a subsplit.
type CladeSide int

const (
	// CladeLeft is the side stored first in canonical order.
	CladeLeft CladeSide = iota
	// CladeRight is the side stored second in canonical order.
	CladeRight
)

// Opposite returns the other side.
func (s CladeSide) Opposite() CladeSide {
	if s == CladeLeft {
		return CladeRight
	}
	return CladeLeft
}

func (s CladeSide) String() string {
	if s == CladeLeft {
		return "left"
	}
	return "right"
}

// Subsplit is a bipartition of a clade into two disjoint sides.
// The sides are stored canonically ([CladeCompare] order), so two subsplits
// built from the same pair of clades in either order are equal. The zero
// value is the empty subsplit over an empty universe.
type Subsplit struct {
	sides [2]Clade
}

// NewSubsplit builds a subsplit from two disjoint clades over the same taxon
// universe. The side holding the lower-numbered first taxon becomes
// [CladeLeft]; an empty side always becomes [CladeRight]. Returns
// [ErrOverlappingClades] if the clades intersect.
func NewSubsplit(a, b Clade) (Subsplit, error) {
	if !a.Disjoint(b) {
		return Subsplit{}, ErrOverlappingClades
	}
	if CladeCompare(a, b) > 0 {
		a, b = b, a
	}
	return Subsplit{sides: [2]Clade{a, b}}, nil
}

// LeafSubsplit returns the subsplit of a single taxon: (taxon, empty).
func LeafSubsplit(size, taxon int) Subsplit {
	return Subsplit{sides: [2]Clade{CladeOf(size, taxon), NewClade(size)}}
}

// FullSubsplit returns the subsplit (all taxa, empty) used for the DAG root.
func FullSubsplit(size int) Subsplit {
	all := NewClade(size)
	for i := 0; i < size; i++ {
		all.Set(i)
	}
	return Subsplit{sides: [2]Clade{all, NewClade(size)}}
}

// Clade returns the requested side of the subsplit.
func (s Subsplit) Clade(side CladeSide) Clade { return s.sides[side] }

// Union returns the set of all taxa covered by the subsplit.
func (s Subsplit) Union() Clade { return s.sides[0].Union(s.sides[1]) }

// Equal reports whether two subsplits bipartition the same taxa the same way.
func (s Subsplit) Equal(o Subsplit) bool {
	return s.sides[0].Equal(o.sides[0]) && s.sides[1].Equal(o.sides[1])
}

// SubsplitCompare totally orders subsplits: first by the union of their
// sides, then by the left side, then by the right.
func SubsplitCompare(a, b Subsplit) int {
	if c := CladeCompare(a.Union(), b.Union()); c != 0 {
		return c
	}
	if c := CladeCompare(a.sides[0], b.sides[0]); c != 0 {
		return c
	}
	return CladeCompare(a.sides[1], b.sides[1])
}

// IsParentChildPair reports whether (parent, child) form a valid parent/child
// pair: exactly when one side of the parent equals the union of the child's
// sides and that side splits into two parts (the child refines it).
func IsParentChildPair(parent, child Subsplit) bool {
	_, err := FocalCladeOf(parent, child)
	return err == nil
}

// FocalCladeOf returns which side of the parent the child refines, that is,
// the parent side equal to the union of the child's sides. Returns
// [ErrNotParentChild] when no side matches.
func FocalCladeOf(parent, child Subsplit) (CladeSide, error) {
	union := child.Union()
	if union.IsEmpty() {
		return CladeLeft, ErrNotParentChild
	}
	if parent.sides[CladeLeft].Equal(union) {
		return CladeLeft, nil
	}
	if parent.sides[CladeRight].Equal(union) {
		return CladeRight, nil
	}
	return CladeLeft, ErrNotParentChild
}

// String renders the subsplit as "left|right" bit strings, e.g. "1100|0011".
func (s Subsplit) String() string {
	return s.sides[0].String() + "|" + s.sides[1].String()
}

// Key returns a compact string usable as a map key. It is identical to
// String and exists to make the intent explicit at call sites.
func (s Subsplit) Key() string { return s.String() }
