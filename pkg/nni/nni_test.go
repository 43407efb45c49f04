package nni

import (
	"errors"
	"testing"

	"github.com/phylobits/sdag/pkg/bitset"
)

// Taxa are A=0, B=1, C=2, D=3 over a four-taxon universe.
func clade(taxa ...int) bitset.Clade {
	return bitset.CladeOf(4, taxa...)
}

func subsplit(t *testing.T, a, b bitset.Clade) bitset.Subsplit {
	t.Helper()
	s, err := bitset.NewSubsplit(a, b)
	if err != nil {
		t.Fatalf("NewSubsplit(%s, %s): %v", a, b, err)
	}
	return s
}

// opACDB is the operation with parent (ACD, B) and child (A, CD). Its focal
// clade is ACD, its sister B, so swapping sister with either child yields a
// distinct neighbor. Used as the base case throughout.
func opACDB(t *testing.T) Operation {
	t.Helper()
	return New(
		subsplit(t, clade(0, 2, 3), clade(1)),
		subsplit(t, clade(0), clade(2, 3)),
	)
}

func TestIsValid(t *testing.T) {
	op := opACDB(t)
	if !op.IsValid() {
		t.Error("IsValid() = false for a parent/child pair")
	}

	// Child (A, C) does not cover either parent side.
	invalid := New(
		subsplit(t, clade(0, 1), clade(2, 3)),
		subsplit(t, clade(0), clade(2)),
	)
	if invalid.IsValid() {
		t.Error("IsValid() = true for a non-parent/child pair")
	}
}

func TestCladeRoles(t *testing.T) {
	op := opACDB(t)
	tests := []struct {
		role CladeRole
		want bitset.Clade
	}{
		{ParentFocal, clade(0, 2, 3)},
		{ParentSister, clade(1)},
		{ChildLeft, clade(0)},
		{ChildRight, clade(2, 3)},
	}
	for _, tt := range tests {
		if got := op.Clade(tt.role); !got.Equal(tt.want) {
			t.Errorf("Clade(%s) = %s, want %s", tt.role, got, tt.want)
		}
	}
	if got := op.SisterClade(); !got.Equal(clade(1)) {
		t.Errorf("SisterClade() = %s, want %s", got, clade(1))
	}
}

func TestCladeOfInvalidOperation(t *testing.T) {
	invalid := New(
		subsplit(t, clade(0, 1), clade(2, 3)),
		subsplit(t, clade(0), clade(2)),
	)
	if got := invalid.Clade(ParentSister); !got.Equal(bitset.Clade{}) {
		t.Errorf("Clade(ParentSister) on invalid op = %s, want zero clade", got)
	}
}

func TestNeighbor(t *testing.T) {
	op := opACDB(t)

	// Swapping sister B with the right child CD gives parent (AB, CD) with
	// child (A, B).
	post, err := op.Neighbor(true)
	if err != nil {
		t.Fatalf("Neighbor(true): %v", err)
	}
	wantPost := New(
		subsplit(t, clade(0, 1), clade(2, 3)),
		subsplit(t, clade(0), clade(1)),
	)
	if !post.Equal(wantPost) {
		t.Errorf("Neighbor(true) = %s, want %s", post, wantPost)
	}
	if !post.IsValid() {
		t.Error("Neighbor(true) produced an invalid operation")
	}

	// Swapping sister B with the left child A gives parent (A, BCD) with
	// child (B, CD).
	post2, err := op.Neighbor(false)
	if err != nil {
		t.Fatalf("Neighbor(false): %v", err)
	}
	wantPost2 := New(
		subsplit(t, clade(0), clade(1, 2, 3)),
		subsplit(t, clade(1), clade(2, 3)),
	)
	if !post2.Equal(wantPost2) {
		t.Errorf("Neighbor(false) = %s, want %s", post2, wantPost2)
	}
	if !post2.IsValid() {
		t.Error("Neighbor(false) produced an invalid operation")
	}

	if post.Equal(post2) {
		t.Error("the two swap directions should give distinct neighbors")
	}
}

func TestNeighborWithFocal(t *testing.T) {
	// Parent (AB, CD) with child (A, B): the focal clade AB is the left
	// parent side. Swapping sister CD with the right child B gives parent
	// (B, ACD), canonically (ACD, B), with child (CD, A), canonically
	// (A, CD).
	parent := subsplit(t, clade(0, 1), clade(2, 3))
	child := subsplit(t, clade(0), clade(1))

	post, err := NeighborWithFocal(parent, child, true, false)
	if err != nil {
		t.Fatalf("NeighborWithFocal: %v", err)
	}
	want := opACDB(t)
	if !post.Equal(want) {
		t.Errorf("NeighborWithFocal = %s, want %s", post, want)
	}

	// The inferred-focal path must agree with the explicit one.
	inferred, err := New(parent, child).Neighbor(true)
	if err != nil {
		t.Fatalf("Neighbor(true): %v", err)
	}
	if !post.Equal(inferred) {
		t.Errorf("explicit focal = %s, inferred = %s", post, inferred)
	}
}

func TestNeighborInvalid(t *testing.T) {
	invalid := New(
		subsplit(t, clade(0, 1), clade(2, 3)),
		subsplit(t, clade(0), clade(2)),
	)
	if _, err := invalid.Neighbor(true); !errors.Is(err, bitset.ErrNotParentChild) {
		t.Errorf("err = %v, want ErrNotParentChild", err)
	}
}

func TestAreNeighbors(t *testing.T) {
	op := opACDB(t)
	post, err := op.Neighbor(true)
	if err != nil {
		t.Fatalf("Neighbor: %v", err)
	}

	if !AreNeighbors(op, post) {
		t.Error("AreNeighbors(op, neighbor) = false, want true")
	}
	if !AreNeighbors(post, op) {
		t.Error("AreNeighbors should be symmetric")
	}
	if AreNeighbors(op, op) {
		t.Error("AreNeighbors(op, op) = true; an operation is not its own neighbor")
	}

	// Same sister, same children: not a swap apart.
	unrelated := New(
		subsplit(t, clade(0, 1), clade(2, 3)),
		subsplit(t, clade(2), clade(3)),
	)
	if AreNeighbors(op, unrelated) {
		t.Error("AreNeighbors(op, unrelated) = true, want false")
	}
}

func TestSisterSwappedWithRightChild(t *testing.T) {
	op := opACDB(t)

	for _, swapRight := range []bool{true, false} {
		post, err := op.Neighbor(swapRight)
		if err != nil {
			t.Fatalf("Neighbor(%v): %v", swapRight, err)
		}
		got, err := SisterSwappedWithRightChild(op, post)
		if err != nil {
			t.Fatalf("SisterSwappedWithRightChild(%v): %v", swapRight, err)
		}
		if got != swapRight {
			t.Errorf("SisterSwappedWithRightChild = %v, want %v", got, swapRight)
		}
	}

	if _, err := SisterSwappedWithRightChild(op, op); !errors.Is(err, ErrNotNeighbors) {
		t.Errorf("err = %v, want ErrNotNeighbors", err)
	}
}

func TestBuildCladeMap(t *testing.T) {
	op := opACDB(t)
	post, err := op.Neighbor(true)
	if err != nil {
		t.Fatalf("Neighbor: %v", err)
	}

	m, err := BuildCladeMap(op, post)
	if err != nil {
		t.Fatalf("BuildCladeMap: %v", err)
	}

	// The swap moved the sister (B) into the child's right slot and the old
	// right child (CD) up into the sister slot; the left child (A) stayed.
	want := CladeMap{}
	want[ParentFocal] = ParentFocal
	want[ParentSister] = ChildRight
	want[ChildLeft] = ChildLeft
	want[ChildRight] = ParentSister
	if m != want {
		t.Errorf("BuildCladeMap = %v, want %v", m, want)
	}

	// Every mapped role must hold an equal clade.
	for _, role := range []CladeRole{ParentSister, ChildLeft, ChildRight} {
		if !op.Clade(role).Equal(post.Clade(m[role])) {
			t.Errorf("clade at %s does not match mapped role %s", role, m[role])
		}
	}

	if _, err := BuildCladeMap(op, op); !errors.Is(err, ErrNotNeighbors) {
		t.Errorf("err = %v, want ErrNotNeighbors", err)
	}
}

func TestCompare(t *testing.T) {
	op := opACDB(t)
	post, err := op.Neighbor(true)
	if err != nil {
		t.Fatalf("Neighbor: %v", err)
	}

	// post's parent (AB, CD) sorts before op's parent (ACD, B): same union,
	// left side {0,1} before {0,2,3}.
	if got := Compare(post, op); got >= 0 {
		t.Errorf("Compare(post, op) = %d, want < 0", got)
	}
	if got := Compare(op, post); got <= 0 {
		t.Errorf("Compare(op, post) = %d, want > 0", got)
	}
	if got := op.Compare(op); got != 0 {
		t.Errorf("Compare(op, op) = %d, want 0", got)
	}
	if !op.Equal(op) {
		t.Error("Equal(op, op) = false")
	}
}

func TestString(t *testing.T) {
	op := opACDB(t)
	if got, want := op.String(), "{ P:1011|0100, C:1000|0011 }"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
