package events

import (
	"time"

	"github.com/mitchelldurbincs/Paratroopers/internal/game"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
)

// Event type constants
const (
	TypeMatchStarted     = "match.started"
	TypeAgentInitialized = "agent.initialized"
	TypeActionApplied    = "action.applied"
	TypeCellsCaptured    = "cells.captured"
	TypeMatchEnded       = "match.ended"
	TypeMatchAborted     = "match.aborted"
	TypeStateTransition  = "state.transition"
)

// MatchStartedEvent is published once the board is set and agents are seated
type MatchStartedEvent struct {
	BaseEvent
	Topology *core.Topology `json:"-"`
	Size     int
	Agents   []string
}

// NewMatchStartedEvent creates a new MatchStartedEvent
func NewMatchStartedEvent(matchID string, topo *core.Topology, agents []string) *MatchStartedEvent {
	return &MatchStartedEvent{
		BaseEvent: newBase(TypeMatchStarted, matchID),
		Topology:  topo,
		Size:      topo.K(),
		Agents:    agents,
	}
}

// AgentInitializedEvent is published after an agent's startup hook returns in time
type AgentInitializedEvent struct {
	BaseEvent
	Seat    int
	Agent   string
	Elapsed time.Duration
}

// NewAgentInitializedEvent creates a new AgentInitializedEvent
func NewAgentInitializedEvent(matchID string, seat int, agent string, elapsed time.Duration) *AgentInitializedEvent {
	return &AgentInitializedEvent{
		BaseEvent: newBase(TypeAgentInitialized, matchID),
		Seat:      seat,
		Agent:     agent,
		Elapsed:   elapsed,
	}
}

// ActionAppliedEvent is published after every accepted decision. State is a
// snapshot owned by the event; subscribers may keep it.
type ActionAppliedEvent struct {
	BaseEvent
	Seat    int
	Agent   string
	Player  core.Player
	Action  core.Action
	Move    int
	Elapsed time.Duration
	Rewards [core.NumPlayers]int
	State   *game.GameState `json:"-"`
}

// NewActionAppliedEvent creates a new ActionAppliedEvent
func NewActionAppliedEvent(matchID string, seat int, agent string, tr game.Transition, move int, elapsed time.Duration, state *game.GameState) *ActionAppliedEvent {
	return &ActionAppliedEvent{
		BaseEvent: newBase(TypeActionApplied, matchID),
		Seat:      seat,
		Agent:     agent,
		Player:    tr.Player,
		Action:    tr.Action,
		Move:      move,
		Elapsed:   elapsed,
		Rewards:   state.Rewards(),
		State:     state,
	}
}

// CellsCapturedEvent is published when a deploy flanks opponent cells
type CellsCapturedEvent struct {
	BaseEvent
	Player core.Player
	Origin int
	Cells  []int
	Value  int
	Move   int
}

// NewCellsCapturedEvent creates a new CellsCapturedEvent
func NewCellsCapturedEvent(matchID string, tr game.Transition, move int) *CellsCapturedEvent {
	return &CellsCapturedEvent{
		BaseEvent: newBase(TypeCellsCaptured, matchID),
		Player:    tr.Player,
		Origin:    tr.Action.Cell,
		Cells:     tr.Captured,
		Value:     tr.Lost,
		Move:      move,
	}
}

// MatchEndedEvent is published when a match reaches a full board
type MatchEndedEvent struct {
	BaseEvent
	Rewards   [core.NumPlayers]int
	Winner    int // seat, -1 for a draw
	Moves     int
	Duration  time.Duration
	AgentTime [core.NumPlayers]time.Duration
}

// NewMatchEndedEvent creates a new MatchEndedEvent
func NewMatchEndedEvent(matchID string, rewards [core.NumPlayers]int, winner, moves int, duration time.Duration, agentTime [core.NumPlayers]time.Duration) *MatchEndedEvent {
	return &MatchEndedEvent{
		BaseEvent: newBase(TypeMatchEnded, matchID),
		Rewards:   rewards,
		Winner:    winner,
		Moves:     moves,
		Duration:  duration,
		AgentTime: agentTime,
	}
}

// MatchAbortedEvent is published when an agent fault stops a match
type MatchAbortedEvent struct {
	BaseEvent
	Seat   int
	Agent  string
	Phase  string
	Reason string
	Moves  int
}

// NewMatchAbortedEvent creates a new MatchAbortedEvent
func NewMatchAbortedEvent(matchID string, seat int, agent, phase string, reason error, moves int) *MatchAbortedEvent {
	msg := ""
	if reason != nil {
		msg = reason.Error()
	}
	return &MatchAbortedEvent{
		BaseEvent: newBase(TypeMatchAborted, matchID),
		Seat:      seat,
		Agent:     agent,
		Phase:     phase,
		Reason:    msg,
		Moves:     moves,
	}
}

// StateTransitionEvent is published on every match phase change
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string
	ToPhase   string
	Reason    string
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(matchID, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, matchID),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}
