package core

import "fmt"

// Player identifies one of the two sides of a match.
type Player int

const (
	PlayerA Player = iota
	PlayerB
)

// NumPlayers is the number of seats in every match.
const NumPlayers = 2

// Opponent returns the other player.
func (p Player) Opponent() Player {
	if p == PlayerA {
		return PlayerB
	}
	return PlayerA
}

// Valid reports whether p is PlayerA or PlayerB.
func (p Player) Valid() bool {
	return p == PlayerA || p == PlayerB
}

func (p Player) String() string {
	switch p {
	case PlayerA:
		return "A"
	case PlayerB:
		return "B"
	default:
		return fmt.Sprintf("Player(%d)", int(p))
	}
}

// CellStatus classifies a cell index against an ownership pair.
type CellStatus int

const (
	CellFree CellStatus = iota
	CellOwnedA
	CellOwnedB
	CellOutOfBounds
)

// StatusOf returns the status a cell has when owned by p.
func StatusOf(p Player) CellStatus {
	if p == PlayerA {
		return CellOwnedA
	}
	return CellOwnedB
}

// Owner returns the owning player for an owned status.
func (s CellStatus) Owner() (Player, bool) {
	switch s {
	case CellOwnedA:
		return PlayerA, true
	case CellOwnedB:
		return PlayerB, true
	default:
		return 0, false
	}
}

func (s CellStatus) String() string {
	switch s {
	case CellFree:
		return "Free"
	case CellOwnedA:
		return "OwnedA"
	case CellOwnedB:
		return "OwnedB"
	case CellOutOfBounds:
		return "OutOfBounds"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}
