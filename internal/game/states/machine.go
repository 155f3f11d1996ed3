package states

import (
	"fmt"
	"sync"
	"time"

	"github.com/mitchelldurbincs/Paratroopers/internal/game/events"
)

// State represents a match phase with lifecycle callbacks
type State interface {
	// Phase returns the GamePhase this state represents
	Phase() GamePhase

	// Enter is called when transitioning into this state
	Enter(ctx *MatchContext) error

	// Exit is called when transitioning out of this state
	Exit(ctx *MatchContext) error

	// Validate checks if the state is valid given the context
	Validate(ctx *MatchContext) error
}

// Transition represents a state transition in the history
type Transition struct {
	From      GamePhase
	To        GamePhase
	Timestamp time.Time
	Reason    string
}

// StateMachine manages match phase transitions and history
type StateMachine struct {
	mu             sync.RWMutex
	currentPhase   GamePhase
	states         map[GamePhase]State
	context        *MatchContext
	history        []Transition
	maxHistorySize int
	eventBus       events.Publisher
}

// NewStateMachine creates a new state machine in PhaseInit. eventBus may be nil.
func NewStateMachine(ctx *MatchContext, eventBus events.Publisher) *StateMachine {
	sm := &StateMachine{
		currentPhase:   PhaseInit,
		states:         make(map[GamePhase]State),
		context:        ctx,
		history:        make([]Transition, 0, 8),
		maxHistorySize: 100,
		eventBus:       eventBus,
	}

	sm.registerDefaultStates()

	return sm
}

// registerDefaultStates registers the built-in state implementations
func (sm *StateMachine) registerDefaultStates() {
	sm.RegisterState(NewInitState())
	sm.RegisterState(NewRunningState())
	sm.RegisterState(NewTerminalState())
	sm.RegisterState(NewAbortedState())
	sm.RegisterState(NewResetState())
}

// RegisterState registers a state implementation
func (sm *StateMachine) RegisterState(state State) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.states[state.Phase()] = state
}

// CurrentPhase returns the current match phase
func (sm *StateMachine) CurrentPhase() GamePhase {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.currentPhase
}

// TransitionTo attempts to transition to the specified phase
func (sm *StateMachine) TransitionTo(targetPhase GamePhase, reason string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.transitionLocked(targetPhase, reason)
}

func (sm *StateMachine) transitionLocked(targetPhase GamePhase, reason string) error {
	if !sm.currentPhase.CanTransitionTo(targetPhase) {
		return fmt.Errorf("invalid transition from %s to %s", sm.currentPhase, targetPhase)
	}

	currentState, hasCurrentState := sm.states[sm.currentPhase]
	targetState, hasTargetState := sm.states[targetPhase]

	if !hasTargetState {
		return fmt.Errorf("no state implementation for phase %s", targetPhase)
	}

	if err := targetState.Validate(sm.context); err != nil {
		return fmt.Errorf("target state validation failed: %w", err)
	}

	if hasCurrentState {
		if err := currentState.Exit(sm.context); err != nil {
			sm.context.Logger.Error().
				Err(err).
				Str("from_phase", sm.currentPhase.String()).
				Str("to_phase", targetPhase.String()).
				Msg("Error exiting state")
			// Continue with transition despite exit error
		}
	}

	previousPhase := sm.currentPhase
	sm.currentPhase = targetPhase

	if err := targetState.Enter(sm.context); err != nil {
		// Rollback on enter failure
		sm.currentPhase = previousPhase
		return fmt.Errorf("failed to enter state %s: %w", targetPhase, err)
	}

	sm.addToHistory(Transition{
		From:      previousPhase,
		To:        targetPhase,
		Timestamp: time.Now(),
		Reason:    reason,
	})

	if sm.eventBus != nil {
		sm.eventBus.Publish(events.NewStateTransitionEvent(
			sm.context.MatchID,
			previousPhase.String(),
			targetPhase.String(),
			reason,
		))
	}

	sm.context.Logger.Debug().
		Str("from_phase", previousPhase.String()).
		Str("to_phase", targetPhase.String()).
		Str("reason", reason).
		Msg("State transition completed")

	return nil
}

// addToHistory adds a transition to the history, maintaining max size
func (sm *StateMachine) addToHistory(transition Transition) {
	sm.history = append(sm.history, transition)

	if len(sm.history) > sm.maxHistorySize {
		sm.history = sm.history[len(sm.history)-sm.maxHistorySize:]
	}
}

// GetHistory returns a copy of the transition history
func (sm *StateMachine) GetHistory() []Transition {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	history := make([]Transition, len(sm.history))
	copy(history, sm.history)
	return history
}

// GetContext returns the match context
func (sm *StateMachine) GetContext() *MatchContext {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.context
}

// CanTransitionTo checks if a transition to the target phase is allowed
func (sm *StateMachine) CanTransitionTo(targetPhase GamePhase) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.currentPhase.CanTransitionTo(targetPhase)
}

// Reset moves a finished match back to PhaseInit through PhaseReset and
// clears the history.
func (sm *StateMachine) Reset() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if err := sm.transitionLocked(PhaseReset, "reset requested"); err != nil {
		return err
	}
	if err := sm.transitionLocked(PhaseInit, "reset complete"); err != nil {
		return err
	}
	sm.history = sm.history[:0]
	return nil
}
