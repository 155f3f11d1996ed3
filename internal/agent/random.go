package agent

import (
	"context"

	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/Paratroopers/internal/game"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
)

// RandomAgent plays a uniformly random legal action.
type RandomAgent struct {
	name string
	rng  *rand.Rand
}

// NewRandomAgent creates a random agent drawing from rng.
func NewRandomAgent(name string, rng *rand.Rand) *RandomAgent {
	return &RandomAgent{name: name, rng: rng}
}

func (a *RandomAgent) Name() string { return a.name }

func (a *RandomAgent) GetAction(ctx context.Context, state *game.GameState) (core.Action, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	legal := state.LegalActions()
	if len(legal) == 0 {
		return nil, core.ErrGameOver
	}
	return legal[a.rng.Intn(len(legal))], nil
}
