package rules

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/Paratroopers/internal/game"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
)

// Outcome is the result of a finished match from the players' point of view.
type Outcome struct {
	Winner core.Player
	Draw   bool
}

func (o Outcome) String() string {
	if o.Draw {
		return "draw"
	}
	return fmt.Sprintf("%s wins", o.Winner)
}

// OutcomeFromRewards picks the player with the larger reward; equal rewards
// are a draw.
func OutcomeFromRewards(r [core.NumPlayers]int) Outcome {
	switch {
	case r[core.PlayerA] > r[core.PlayerB]:
		return Outcome{Winner: core.PlayerA}
	case r[core.PlayerB] > r[core.PlayerA]:
		return Outcome{Winner: core.PlayerB}
	default:
		return Outcome{Draw: true}
	}
}

// WinConditionChecker handles game over detection and winner determination
type WinConditionChecker struct {
	logger zerolog.Logger
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// CheckGameOver reports whether s is terminal and, if so, who won.
func (wc *WinConditionChecker) CheckGameOver(s *game.GameState) (bool, Outcome) {
	if !s.IsTerminal() {
		wc.logger.Debug().Int("free_cells", s.FreeCount()).Msg("Game still running")
		return false, Outcome{}
	}

	rewards := s.Rewards()
	outcome := OutcomeFromRewards(rewards)
	wc.logger.Info().
		Int("reward_a", rewards[core.PlayerA]).
		Int("reward_b", rewards[core.PlayerB]).
		Str("outcome", outcome.String()).
		Msg("Game over")
	return true, outcome
}
