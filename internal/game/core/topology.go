package core

import (
	"fmt"
	"slices"
)

// Topology is the static description of a board: its size and the value of
// every cell in row-major order. It is immutable once built and may be shared
// by any number of game states and goroutines.
type Topology struct {
	k          int
	values     []int
	totalValue int
	neighbors  [][]int
}

// NewTopology validates the board description and precomputes adjacency.
func NewTopology(k int, values []int) (*Topology, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: size must be at least 1, got %d", ErrInvalidTopology, k)
	}
	if len(values) != k*k {
		return nil, fmt.Errorf("%w: expected %d values for size %d, got %d", ErrInvalidTopology, k*k, k, len(values))
	}

	total := 0
	for i, v := range values {
		if v <= 0 {
			return nil, fmt.Errorf("%w: value at cell %d must be positive, got %d", ErrInvalidTopology, i, v)
		}
		total += v
	}

	t := &Topology{
		k:          k,
		values:     slices.Clone(values),
		totalValue: total,
		neighbors:  make([][]int, k*k),
	}
	for i := range t.neighbors {
		t.neighbors[i] = t.computeNeighbors(i)
	}
	return t, nil
}

// MustTopology is NewTopology for fixed, known-good inputs; it panics on error.
func MustTopology(k int, values []int) *Topology {
	t, err := NewTopology(k, values)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Topology) computeNeighbors(i int) []int {
	n := make([]int, 0, 4)
	if i%t.k != 0 {
		n = append(n, i-1)
	}
	if i%t.k != t.k-1 {
		n = append(n, i+1)
	}
	if i >= t.k {
		n = append(n, i-t.k)
	}
	if i < t.k*(t.k-1) {
		n = append(n, i+t.k)
	}
	return n
}

// K returns the side length of the board.
func (t *Topology) K() int { return t.k }

// Size returns the number of cells, K².
func (t *Topology) Size() int { return len(t.values) }

// TotalValue returns the sum of all cell values.
func (t *Topology) TotalValue() int { return t.totalValue }

// InBounds reports whether i is a valid linear cell index.
func (t *Topology) InBounds(i int) bool {
	return i >= 0 && i < len(t.values)
}

// Value returns the value of cell i. It panics if i is out of bounds.
func (t *Topology) Value(i int) int {
	return t.values[i]
}

// Values returns a copy of the row-major cell values.
func (t *Topology) Values() []int {
	return slices.Clone(t.values)
}

// Neighbors returns the orthogonal in-grid neighbors of i: left, right, up,
// down, skipping those that would wrap or leave the board. The returned slice
// is shared and must not be modified. Out-of-bounds indices have no neighbors.
func (t *Topology) Neighbors(i int) []int {
	if !t.InBounds(i) {
		return nil
	}
	return t.neighbors[i]
}

// Coordinate converts a linear index into a row/column pair.
func (t *Topology) Coordinate(i int) Coordinate {
	return FromIndex(i, t.k)
}

// Index converts a coordinate into a linear index, reporting whether it is on
// the board.
func (t *Topology) Index(c Coordinate) (int, bool) {
	if !c.IsValid(t.k) {
		return -1, false
	}
	return c.ToIndex(t.k), true
}

// Classify reports the status of cell i given both players' ownership sets.
func (t *Topology) Classify(i int, owned [NumPlayers]CellSet) CellStatus {
	switch {
	case !t.InBounds(i):
		return CellOutOfBounds
	case owned[PlayerA].Has(i):
		return CellOwnedA
	case owned[PlayerB].Has(i):
		return CellOwnedB
	default:
		return CellFree
	}
}

// Compatible reports whether two topologies describe the same board.
func (t *Topology) Compatible(other *Topology) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	return t.k == other.k && slices.Equal(t.values, other.values)
}
