package agent

import (
	"context"

	"github.com/mitchelldurbincs/Paratroopers/internal/game"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
)

// GreedyAgent plays the legal action whose successor state scores best under
// its heuristic for the player to move. Ties go to the lowest cell index.
type GreedyAgent struct {
	name      string
	heuristic game.Heuristic
}

// NewGreedyAgent creates a greedy agent. A nil heuristic means
// game.GreedyReward.
func NewGreedyAgent(name string, heuristic game.Heuristic) *GreedyAgent {
	if heuristic == nil {
		heuristic = game.GreedyReward
	}
	return &GreedyAgent{name: name, heuristic: heuristic}
}

func (a *GreedyAgent) Name() string { return a.name }

// InitState has nothing to prepare.
func (a *GreedyAgent) InitState(ctx context.Context, _ *game.GameState) error {
	return ctx.Err()
}

func (a *GreedyAgent) GetAction(ctx context.Context, state *game.GameState) (core.Action, error) {
	me := state.CurrentPlayer()

	var best core.Action
	bestScore := 0.0
	for _, action := range state.LegalActions() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := state.Apply(action)
		if err != nil {
			return nil, err
		}
		if score := a.heuristic(next, me); best == nil || score > bestScore {
			best, bestScore = action, score
		}
	}
	if best == nil {
		return nil, core.ErrGameOver
	}
	return best, nil
}
