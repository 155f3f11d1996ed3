package core

import "math/bits"

const wordBits = 64

// CellSet is a fixed-capacity bitset of cell indices. The zero value is an
// empty set with no capacity; use NewCellSet to size it for a board.
type CellSet struct {
	words []uint64
	n     int
}

// NewCellSet returns an empty set able to hold indices [0, n).
func NewCellSet(n int) CellSet {
	return CellSet{
		words: make([]uint64, (n+wordBits-1)/wordBits),
		n:     n,
	}
}

// Cap returns the number of indices the set can address.
func (s CellSet) Cap() int { return s.n }

func (s CellSet) inRange(i int) bool {
	return i >= 0 && i < s.n
}

// Has reports whether i is in the set. Out-of-range indices are never members.
func (s CellSet) Has(i int) bool {
	if !s.inRange(i) {
		return false
	}
	return s.words[i/wordBits]&(1<<(uint(i)%wordBits)) != 0
}

// Add inserts i. Out-of-range indices are ignored.
func (s CellSet) Add(i int) {
	if !s.inRange(i) {
		return
	}
	s.words[i/wordBits] |= 1 << (uint(i) % wordBits)
}

// Remove deletes i if present.
func (s CellSet) Remove(i int) {
	if !s.inRange(i) {
		return
	}
	s.words[i/wordBits] &^= 1 << (uint(i) % wordBits)
}

// Len returns the number of members.
func (s CellSet) Len() int {
	count := 0
	for _, w := range s.words {
		count += bits.OnesCount64(w)
	}
	return count
}

// Clone returns an independent copy.
func (s CellSet) Clone() CellSet {
	words := make([]uint64, len(s.words))
	copy(words, s.words)
	return CellSet{words: words, n: s.n}
}

// Equal reports whether both sets have the same capacity and members.
func (s CellSet) Equal(other CellSet) bool {
	if s.n != other.n || len(s.words) != len(other.words) {
		return false
	}
	for i, w := range s.words {
		if other.words[i] != w {
			return false
		}
	}
	return true
}

// Intersects reports whether the two sets share a member.
func (s CellSet) Intersects(other CellSet) bool {
	limit := len(s.words)
	if len(other.words) < limit {
		limit = len(other.words)
	}
	for i := 0; i < limit; i++ {
		if s.words[i]&other.words[i] != 0 {
			return true
		}
	}
	return false
}

// Indices returns the members in ascending order.
func (s CellSet) Indices() []int {
	out := make([]int, 0, s.Len())
	for wi, w := range s.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			out = append(out, wi*wordBits+tz)
			w &= w - 1
		}
	}
	return out
}

// Words exposes the raw words for hashing. The slice must not be modified.
func (s CellSet) Words() []uint64 {
	return s.words
}
