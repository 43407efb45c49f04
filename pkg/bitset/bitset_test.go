package bitset

import (
	"slices"
	"testing"
)

func TestCladeMembership(t *testing.T) {
	c := CladeOf(6, 1, 3, 4)

	if got := c.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
	if got := c.First(); got != 1 {
		t.Errorf("First() = %d, want 1", got)
	}
	if got := c.Members(); !slices.Equal(got, []int{1, 3, 4}) {
		t.Errorf("Members() = %v, want [1 3 4]", got)
	}
	for i := 0; i < 6; i++ {
		want := i == 1 || i == 3 || i == 4
		if got := c.Test(i); got != want {
			t.Errorf("Test(%d) = %v, want %v", i, got, want)
		}
	}
	if c.Test(-1) || c.Test(6) {
		t.Error("Test out of range should report false")
	}
}

func TestCladeEmpty(t *testing.T) {
	c := NewClade(4)
	if !c.IsEmpty() {
		t.Error("IsEmpty() = false, want true")
	}
	if got := c.First(); got != -1 {
		t.Errorf("First() = %d, want -1", got)
	}
	if got := c.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
}

func TestCladeSetOperations(t *testing.T) {
	a := CladeOf(8, 0, 2)
	b := CladeOf(8, 5, 7)
	c := CladeOf(8, 2, 5)

	if !a.Disjoint(b) {
		t.Error("Disjoint(a, b) = false, want true")
	}
	if a.Disjoint(c) {
		t.Error("Disjoint(a, c) = true, want false")
	}

	u := a.Union(b)
	if got := u.Members(); !slices.Equal(got, []int{0, 2, 5, 7}) {
		t.Errorf("Union members = %v, want [0 2 5 7]", got)
	}
	if !a.Equal(CladeOf(8, 2, 0)) {
		t.Error("Equal should not depend on insertion order")
	}
	if a.Equal(CladeOf(4, 0, 2)) {
		t.Error("clades over different universes should not be equal")
	}
}

func TestCladeCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Clade
		want int
	}{
		{"LowestMemberFirst", CladeOf(4, 0), CladeOf(4, 1), -1},
		{"SupersetWithLowerMemberFirst", CladeOf(4, 0, 1), CladeOf(4, 1), -1},
		{"SharedPrefixThenDiffer", CladeOf(4, 1, 2), CladeOf(4, 1, 3), -1},
		{"EmptySortsLast", CladeOf(4, 3), NewClade(4), -1},
		{"Equal", CladeOf(4, 1, 2), CladeOf(4, 2, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sign(CladeCompare(tt.a, tt.b)); got != tt.want {
				t.Errorf("CladeCompare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := sign(CladeCompare(tt.b, tt.a)); got != -tt.want {
				t.Errorf("CladeCompare(%s, %s) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestCladeString(t *testing.T) {
	if got := CladeOf(4, 1, 2).String(); got != "0110" {
		t.Errorf("String() = %q, want %q", got, "0110")
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func TestLargeUniverse(t *testing.T) {
	// Spans multiple words.
	c := CladeOf(130, 0, 63, 64, 100, 129)
	if got := c.Count(); got != 5 {
		t.Errorf("Count() = %d, want 5", got)
	}
	if got := c.Members(); !slices.Equal(got, []int{0, 63, 64, 100, 129}) {
		t.Errorf("Members() = %v", got)
	}
	o := CladeOf(130, 64)
	if c.Disjoint(o) {
		t.Error("Disjoint = true, want false")
	}
	if got := sign(CladeCompare(o, c)); got != 1 {
		t.Errorf("CladeCompare = %d, want 1", got)
	}
}
