// Package agent defines the decision-making capability the simulation driver
// consumes and ships the simple agents: random, greedy and keyboard.
package agent

import (
	"context"

	"github.com/mitchelldurbincs/Paratroopers/internal/game"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
)

// Agent picks an action for the player to move in state. The state passed in
// is a copy the agent may mutate. Implementations should return promptly once
// ctx is done; the driver discards late results either way.
type Agent interface {
	Name() string
	GetAction(ctx context.Context, state *game.GameState) (core.Action, error)
}

// Initializer is implemented by agents that need a startup hook before the
// first decision of a match.
type Initializer interface {
	InitState(ctx context.Context, state *game.GameState) error
}
