package core

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalAction is the root of every rejected action. Callers match the
	// specific causes below with errors.Is and still see ErrIllegalAction.
	ErrIllegalAction     = errors.New("illegal action")
	ErrCellOccupied      = fmt.Errorf("%w: cell is occupied", ErrIllegalAction)
	ErrCellOutOfBounds   = fmt.Errorf("%w: cell is out of bounds", ErrIllegalAction)
	ErrMalformedAction   = fmt.Errorf("%w: malformed action", ErrIllegalAction)
	ErrUnsupportedAction = fmt.Errorf("%w: unsupported action", ErrIllegalAction)

	ErrGameOver        = errors.New("game is over")
	ErrInvalidTopology = errors.New("invalid topology")

	ErrDegenerateHeuristicInput = errors.New("degenerate heuristic input: no reward captured")
)

// ActionError carries the action and the player that attempted it.
type ActionError struct {
	Action Action
	Player Player
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("player %s action %v: %v", e.Player, e.Action, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// WrapActionError annotates err with the offending action and player.
func WrapActionError(action Action, player Player, err error) error {
	if err == nil {
		return nil
	}
	return &ActionError{Action: action, Player: player, Err: err}
}
