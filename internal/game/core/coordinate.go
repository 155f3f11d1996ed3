package core

import "fmt"

// Coordinate is a (row, column) position on a K×K board.
type Coordinate struct {
	Row, Col int
}

// NewCoordinate creates a coordinate from a row and column.
func NewCoordinate(row, col int) Coordinate {
	return Coordinate{Row: row, Col: col}
}

// FromIndex converts a row-major linear index into a coordinate.
func FromIndex(idx, k int) Coordinate {
	return Coordinate{
		Row: idx / k,
		Col: idx % k,
	}
}

// IsValid checks if the coordinate lies on a k×k board.
func (c Coordinate) IsValid(k int) bool {
	return c.Row >= 0 && c.Row < k && c.Col >= 0 && c.Col < k
}

// ToIndex converts the coordinate to a row-major linear index.
func (c Coordinate) ToIndex(k int) int {
	return c.Row*k + c.Col
}

// IsAdjacentTo checks if this coordinate is orthogonally adjacent to another
func (c Coordinate) IsAdjacentTo(other Coordinate) bool {
	dr := c.Row - other.Row
	dc := c.Col - other.Col
	return (dr == 0 && (dc == 1 || dc == -1)) || (dc == 0 && (dr == 1 || dr == -1))
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}
