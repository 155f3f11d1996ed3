package game

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
)

// Heuristic scores a state from p's point of view; higher is better for p.
type Heuristic func(s *GameState, p core.Player) float64

// GreedyReward scores a state by p's accumulated reward.
func GreedyReward(s *GameState, p core.Player) float64 {
	return float64(s.Reward(p))
}

// RewardShares returns each player's fraction of the reward captured so far.
// Before any cell is owned there is nothing to divide, and the call fails with
// ErrDegenerateHeuristicInput.
func RewardShares(s *GameState) ([core.NumPlayers]float64, error) {
	return shares(s.Rewards())
}

// ShareOfReward scores a state by p's fraction of the reward captured so far.
// A board with nothing captured scores zero.
func ShareOfReward(s *GameState, p core.Player) float64 {
	sh, err := RewardShares(s)
	if err != nil {
		return 0
	}
	return sh[p]
}

// RandomFillShare returns a heuristic scoring p's share of a board completed
// at random with rng. The heuristic is not safe for concurrent use.
func RandomFillShare(rng *rand.Rand) Heuristic {
	return func(s *GameState, p core.Player) float64 {
		sh, err := RandomFillShares(s, rng)
		if err != nil {
			return 0
		}
		return sh[p]
	}
}

// RandomFillShares completes the board by giving every free cell to a player
// picked uniformly at random (no flanking), then returns the reward shares of
// the filled board. s is not modified.
func RandomFillShares(s *GameState, rng *rand.Rand) ([core.NumPlayers]float64, error) {
	filled := s.Clone()
	for i := 0; i < filled.topo.Size(); i++ {
		if filled.Status(i) != core.CellFree {
			continue
		}
		filled.take(i, core.Player(rng.Intn(core.NumPlayers)))
	}
	return shares(filled.Rewards())
}

func shares(r [core.NumPlayers]int) ([core.NumPlayers]float64, error) {
	total := r[core.PlayerA] + r[core.PlayerB]
	if total <= 0 {
		return [core.NumPlayers]float64{}, fmt.Errorf("%w: total reward %d", core.ErrDegenerateHeuristicInput, total)
	}
	return [core.NumPlayers]float64{
		float64(r[core.PlayerA]) / float64(total),
		float64(r[core.PlayerB]) / float64(total),
	}, nil
}
