package game

import (
	"fmt"

	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
)

// Transition describes what a single applied action did.
type Transition struct {
	Player   core.Player
	Action   core.Deploy
	Captured []int
	Gained   int // value added to Player's reward, including captures
	Lost     int // value removed from the opponent's reward by captures
}

// Apply returns the state that results from action, leaving s untouched.
func (s *GameState) Apply(action core.Action) (*GameState, error) {
	next, _, err := s.ApplyWithDetails(action)
	return next, err
}

// ApplyWithDetails is Apply that also reports the transition.
func (s *GameState) ApplyWithDetails(action core.Action) (*GameState, Transition, error) {
	deploy, err := s.validate(action)
	if err != nil {
		return nil, Transition{}, err
	}
	next := s.Clone()
	return next, next.apply(deploy), nil
}

// ApplyInPlace mutates s. On error s is unchanged.
func (s *GameState) ApplyInPlace(action core.Action) (Transition, error) {
	deploy, err := s.validate(action)
	if err != nil {
		return Transition{}, err
	}
	return s.apply(deploy), nil
}

// validate runs every check before any mutation happens.
func (s *GameState) validate(action core.Action) (core.Deploy, error) {
	var deploy core.Deploy
	switch a := action.(type) {
	case core.Deploy:
		deploy = a
	case *core.Deploy:
		if a == nil {
			return deploy, core.WrapActionError(action, s.current, core.ErrMalformedAction)
		}
		deploy = *a
	case core.Slide, *core.Slide:
		return deploy, core.WrapActionError(action, s.current, core.ErrUnsupportedAction)
	case nil:
		return deploy, fmt.Errorf("%w: nil action", core.ErrMalformedAction)
	default:
		return deploy, core.WrapActionError(action, s.current, core.ErrMalformedAction)
	}

	if s.IsTerminal() {
		return deploy, core.WrapActionError(deploy, s.current, core.ErrGameOver)
	}

	switch s.Status(deploy.Cell) {
	case core.CellFree:
		return deploy, nil
	case core.CellOutOfBounds:
		return deploy, core.WrapActionError(deploy, s.current, core.ErrCellOutOfBounds)
	default:
		return deploy, core.WrapActionError(deploy, s.current, core.ErrCellOccupied)
	}
}

// apply performs a validated deploy: claim, flank, switch turn.
func (s *GameState) apply(d core.Deploy) Transition {
	me := s.current
	opp := me.Opponent()
	tr := Transition{Player: me, Action: d}

	s.take(d.Cell, me)
	tr.Gained += s.topo.Value(d.Cell)

	// Flanking is a single ring: only direct neighbors of the placed cell can
	// flip, and a flipped cell never triggers further flips.
	neighbors := s.topo.Neighbors(d.Cell)
	flanked := false
	for _, n := range neighbors {
		if s.owned[me].Has(n) {
			flanked = true
			break
		}
	}
	if flanked {
		for _, n := range neighbors {
			if !s.owned[opp].Has(n) {
				continue
			}
			v := s.topo.Value(n)
			s.take(n, me)
			s.reward[opp] -= v
			tr.Captured = append(tr.Captured, n)
			tr.Gained += v
			tr.Lost += v
		}
	}

	s.current = opp
	return tr
}

// take gives cell i to p, clearing the opponent's claim and crediting p.
func (s *GameState) take(i int, p core.Player) {
	s.owned[p].Add(i)
	s.owned[p.Opponent()].Remove(i)
	s.reward[p] += s.topo.Value(i)
}
