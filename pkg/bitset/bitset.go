// Package bitset implements the clade and subsplit bit algebra underlying
// the subsplit DAG.
//
// A [Clade] is a fixed-width bitset over a taxon universe of known size:
// bit i is set when taxon i belongs to the clade. A [Subsplit] is an ordered
// pair of disjoint clades representing a bipartition of their union. Both are
// small value types intended to be passed by value and compared by content.
//
// # Ordering
//
// Clades are totally ordered by their lowest-numbered member: the clade
// containing the smaller first taxon sorts first, and the empty clade sorts
// after every non-empty clade. Subsplits are ordered by the union of their
// sides, then by each side in turn. These orderings exist so that subsplits
// and NNI operations can serve as keys in sorted containers with
// content-determined (not identity-determined) equivalence.
package bitset

import (
	"math/bits"
	"strings"
)

const wordBits = 64

// Clade is a set of taxa out of a universe of fixed size.
// The zero value is an empty clade over an empty universe; use NewClade or
// CladeOf to create clades over a real taxon universe.
type Clade struct {
	words []uint64
	size  int
}

// NewClade returns an empty clade over a universe of size taxa.
func NewClade(size int) Clade {
	if size <= 0 {
		return Clade{}
	}
	return Clade{words: make([]uint64, (size+wordBits-1)/wordBits), size: size}
}

// CladeOf returns a clade over a universe of size taxa containing the given
// members. Members outside [0, size) are ignored.
func CladeOf(size int, taxa ...int) Clade {
	c := NewClade(size)
	for _, t := range taxa {
		c.Set(t)
	}
	return c
}

// Size returns the number of taxa in the universe (not the member count).
func (c Clade) Size() int { return c.size }

// Set adds taxon i to the clade. Out-of-range indices are ignored.
func (c *Clade) Set(i int) {
	if i < 0 || i >= c.size {
		return
	}
	c.words[i/wordBits] |= 1 << (uint(i) % wordBits)
}

// Test reports whether taxon i is a member of the clade.
func (c Clade) Test(i int) bool {
	if i < 0 || i >= c.size {
		return false
	}
	return c.words[i/wordBits]&(1<<(uint(i)%wordBits)) != 0
}

// Count returns the number of taxa in the clade.
func (c Clade) Count() int {
	n := 0
	for _, w := range c.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// IsEmpty reports whether the clade has no members.
func (c Clade) IsEmpty() bool {
	for _, w := range c.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// First returns the lowest-numbered member of the clade, or -1 if empty.
func (c Clade) First() int {
	for i, w := range c.words {
		if w != 0 {
			return i*wordBits + bits.TrailingZeros64(w)
		}
	}
	return -1
}

// Members returns the taxa in the clade in ascending order.
func (c Clade) Members() []int {
	var out []int
	for i, w := range c.words {
		for w != 0 {
			out = append(out, i*wordBits+bits.TrailingZeros64(w))
			w &= w - 1
		}
	}
	return out
}

// Union returns the set union of c and o. Both clades must share a universe.
func (c Clade) Union(o Clade) Clade {
	out := NewClade(c.size)
	for i := range out.words {
		out.words[i] = c.words[i]
		if i < len(o.words) {
			out.words[i] |= o.words[i]
		}
	}
	return out
}

// Disjoint reports whether c and o have no members in common.
func (c Clade) Disjoint(o Clade) bool {
	n := min(len(c.words), len(o.words))
	for i := 0; i < n; i++ {
		if c.words[i]&o.words[i] != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether c and o contain exactly the same taxa.
func (c Clade) Equal(o Clade) bool {
	if c.size != o.size {
		return false
	}
	for i := range c.words {
		if c.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

// CladeCompare orders clades by their lowest-numbered member: at the first
// taxon where the two clades differ, the clade containing it sorts first.
// The empty clade sorts after every non-empty clade. Returns a negative,
// zero, or positive value in the usual comparison convention.
func CladeCompare(a, b Clade) int {
	n := max(len(a.words), len(b.words))
	for i := 0; i < n; i++ {
		var wa, wb uint64
		if i < len(a.words) {
			wa = a.words[i]
		}
		if i < len(b.words) {
			wb = b.words[i]
		}
		if wa == wb {
			continue
		}
		diff := wa ^ wb
		low := bits.TrailingZeros64(diff)
		if wa&(1<<uint(low)) != 0 {
			return -1
		}
		return 1
	}
	return 0
}

// String renders the clade as a bit string, taxon 0 first ("0110" means
// taxa 1 and 2 are members of a four-taxon universe).
func (c Clade) String() string {
	var b strings.Builder
	b.Grow(c.size)
	for i := 0; i < c.size; i++ {
		if c.Test(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
