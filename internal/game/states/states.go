package states

import (
	"fmt"
	"time"
)

// InitState represents agent initialization before the first move
type InitState struct{}

func NewInitState() State {
	return &InitState{}
}

func (s *InitState) Phase() GamePhase {
	return PhaseInit
}

func (s *InitState) Enter(ctx *MatchContext) error {
	ctx.Logger.Debug().Strs("agents", ctx.Agents).Msg("Entering Init state")
	return nil
}

func (s *InitState) Exit(ctx *MatchContext) error {
	ctx.Logger.Debug().Msg("Exiting Init state")
	return nil
}

func (s *InitState) Validate(ctx *MatchContext) error {
	return nil
}

// RunningState represents active play
type RunningState struct{}

func NewRunningState() State {
	return &RunningState{}
}

func (s *RunningState) Phase() GamePhase {
	return PhaseRunning
}

func (s *RunningState) Enter(ctx *MatchContext) error {
	ctx.StartTime = time.Now()
	ctx.Logger.Info().
		Time("start_time", ctx.StartTime).
		Msg("Match started")
	return nil
}

func (s *RunningState) Exit(ctx *MatchContext) error {
	ctx.EndTime = time.Now()
	ctx.Logger.Debug().
		Dur("elapsed", ctx.GetElapsedTime()).
		Int("moves", ctx.Moves).
		Msg("Exiting running state")
	return nil
}

func (s *RunningState) Validate(ctx *MatchContext) error {
	if len(ctx.Agents) < 2 {
		return fmt.Errorf("cannot run match with %d agents", len(ctx.Agents))
	}
	return nil
}

// TerminalState represents a match that reached a full board
type TerminalState struct{}

func NewTerminalState() State {
	return &TerminalState{}
}

func (s *TerminalState) Phase() GamePhase {
	return PhaseTerminal
}

func (s *TerminalState) Enter(ctx *MatchContext) error {
	ctx.Logger.Info().
		Int("winner", ctx.Winner).
		Bool("draw", ctx.Draw).
		Int("moves", ctx.Moves).
		Dur("match_duration", ctx.GetElapsedTime()).
		Msg("Match ended")
	return nil
}

func (s *TerminalState) Exit(ctx *MatchContext) error {
	ctx.Logger.Debug().Msg("Exiting terminal state")
	return nil
}

func (s *TerminalState) Validate(ctx *MatchContext) error {
	if ctx.Winner < 0 && !ctx.Draw {
		return fmt.Errorf("terminal state requires either a winner or a draw")
	}
	return nil
}

// AbortedState represents a match stopped by an agent failure
type AbortedState struct{}

func NewAbortedState() State {
	return &AbortedState{}
}

func (s *AbortedState) Phase() GamePhase {
	return PhaseAborted
}

func (s *AbortedState) Enter(ctx *MatchContext) error {
	if ctx.EndTime.IsZero() {
		ctx.EndTime = time.Now()
	}
	ctx.Logger.Warn().
		Err(ctx.Error).
		Int("aborted_by", ctx.AbortedBy).
		Int("moves", ctx.Moves).
		Msg("Match aborted")
	return nil
}

func (s *AbortedState) Exit(ctx *MatchContext) error {
	ctx.Logger.Debug().Msg("Exiting aborted state")
	return nil
}

func (s *AbortedState) Validate(ctx *MatchContext) error {
	if ctx.Error == nil {
		return fmt.Errorf("aborted state requires an error in context")
	}
	return nil
}

// ResetState clears a finished match
type ResetState struct{}

func NewResetState() State {
	return &ResetState{}
}

func (s *ResetState) Phase() GamePhase {
	return PhaseReset
}

func (s *ResetState) Enter(ctx *MatchContext) error {
	ctx.Logger.Debug().Msg("Resetting match")

	ctx.StartTime = time.Time{}
	ctx.EndTime = time.Time{}
	ctx.Moves = 0
	ctx.Winner = -1
	ctx.Draw = false
	ctx.AbortedBy = -1
	ctx.Error = nil

	// Clear metadata but keep the map allocated
	for k := range ctx.Metadata {
		delete(ctx.Metadata, k)
	}

	return nil
}

func (s *ResetState) Exit(ctx *MatchContext) error {
	ctx.Logger.Debug().Msg("Match reset complete")
	return nil
}

func (s *ResetState) Validate(ctx *MatchContext) error {
	return nil
}
