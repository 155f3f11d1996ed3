package states

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/Paratroopers/internal/game/events"
)

func TestGamePhase_String(t *testing.T) {
	tests := []struct {
		phase    GamePhase
		expected string
	}{
		{PhaseInit, "Init"},
		{PhaseRunning, "Running"},
		{PhaseTerminal, "Terminal"},
		{PhaseAborted, "Aborted"},
		{PhaseReset, "Reset"},
		{GamePhase(999), "Unknown(999)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.phase.String())
		})
	}
}

func TestParsePhase(t *testing.T) {
	for _, p := range []GamePhase{PhaseInit, PhaseRunning, PhaseTerminal, PhaseAborted, PhaseReset} {
		got, err := ParsePhase(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParsePhase("Paused")
	assert.Error(t, err)
}

func TestGamePhase_Properties(t *testing.T) {
	t.Run("IsTerminal", func(t *testing.T) {
		assert.True(t, PhaseTerminal.IsTerminal())
		assert.True(t, PhaseAborted.IsTerminal())
		assert.False(t, PhaseRunning.IsTerminal())
		assert.False(t, PhaseInit.IsTerminal())
	})

	t.Run("CanReceiveActions", func(t *testing.T) {
		assert.True(t, PhaseRunning.CanReceiveActions())
		assert.False(t, PhaseInit.CanReceiveActions())
		assert.False(t, PhaseTerminal.CanReceiveActions())
		assert.False(t, PhaseAborted.CanReceiveActions())
	})
}

func TestGamePhase_Transitions(t *testing.T) {
	tests := []struct {
		from    GamePhase
		allowed []GamePhase
	}{
		{PhaseInit, []GamePhase{PhaseRunning, PhaseAborted}},
		{PhaseRunning, []GamePhase{PhaseTerminal, PhaseAborted}},
		{PhaseTerminal, []GamePhase{PhaseReset}},
		{PhaseAborted, []GamePhase{PhaseReset}},
		{PhaseReset, []GamePhase{PhaseInit}},
	}

	allPhases := []GamePhase{PhaseInit, PhaseRunning, PhaseTerminal, PhaseAborted, PhaseReset}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.AllowedTransitions())

			for _, target := range allPhases {
				shouldAllow := false
				for _, allowed := range tt.allowed {
					if target == allowed {
						shouldAllow = true
						break
					}
				}
				assert.Equal(t, shouldAllow, tt.from.CanTransitionTo(target))
			}
		})
	}

	assert.Empty(t, GamePhase(42).AllowedTransitions())
}

func TestMatchContext(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("NewMatchContext", func(t *testing.T) {
		ctx := NewMatchContext("test-match", []string{"greedy", "random"}, logger)
		assert.Equal(t, "test-match", ctx.MatchID)
		assert.Equal(t, []string{"greedy", "random"}, ctx.Agents)
		assert.Equal(t, -1, ctx.Winner)
		assert.Equal(t, -1, ctx.AbortedBy)
		assert.NotNil(t, ctx.Metadata)
	})

	t.Run("GetElapsedTime", func(t *testing.T) {
		ctx := NewMatchContext("test-match", nil, logger)

		assert.Equal(t, time.Duration(0), ctx.GetElapsedTime())

		ctx.StartTime = time.Now().Add(-10 * time.Second)
		elapsed := ctx.GetElapsedTime()
		assert.Greater(t, elapsed, 9*time.Second)
		assert.Less(t, elapsed, 11*time.Second)

		ctx.EndTime = ctx.StartTime.Add(3 * time.Second)
		assert.Equal(t, 3*time.Second, ctx.GetElapsedTime())
	})

	t.Run("Metadata", func(t *testing.T) {
		ctx := NewMatchContext("test-match", nil, logger)

		ctx.SetMetadata("board_size", 5)
		val, exists := ctx.GetMetadata("board_size")
		assert.True(t, exists)
		assert.Equal(t, 5, val)

		_, exists = ctx.GetMetadata("nonexistent")
		assert.False(t, exists)
	})
}

func TestStateMachine(t *testing.T) {
	logger := zerolog.Nop()

	setup := func() (*StateMachine, *MatchContext) {
		ctx := NewMatchContext("test-match", []string{"greedy", "random"}, logger)
		sm := NewStateMachine(ctx, events.NewEventBus(logger))
		return sm, ctx
	}

	t.Run("NewStateMachine", func(t *testing.T) {
		sm, _ := setup()
		assert.Equal(t, PhaseInit, sm.CurrentPhase())
		assert.Len(t, sm.states, 5)
	})

	t.Run("Completed Match", func(t *testing.T) {
		sm, ctx := setup()

		require.NoError(t, sm.TransitionTo(PhaseRunning, "agents ready"))
		assert.Equal(t, PhaseRunning, sm.CurrentPhase())
		assert.False(t, ctx.StartTime.IsZero())

		ctx.Winner = 1
		require.NoError(t, sm.TransitionTo(PhaseTerminal, "board full"))
		assert.Equal(t, PhaseTerminal, sm.CurrentPhase())
		assert.False(t, ctx.EndTime.IsZero())
	})

	t.Run("Draw Is Terminal", func(t *testing.T) {
		sm, ctx := setup()
		require.NoError(t, sm.TransitionTo(PhaseRunning, "agents ready"))

		ctx.Draw = true
		assert.NoError(t, sm.TransitionTo(PhaseTerminal, "board full"))
	})

	t.Run("Invalid Transitions", func(t *testing.T) {
		sm, _ := setup()

		err := sm.TransitionTo(PhaseTerminal, "skip running")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid transition")
		assert.Equal(t, PhaseInit, sm.CurrentPhase())

		err = sm.TransitionTo(PhaseReset, "nothing to reset")
		assert.Error(t, err)
		assert.Equal(t, PhaseInit, sm.CurrentPhase())
	})

	t.Run("State Validation", func(t *testing.T) {
		sm, ctx := setup()

		ctx.Agents = []string{"solo"}
		err := sm.TransitionTo(PhaseRunning, "one agent")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot run match")

		ctx.Agents = []string{"greedy", "random"}
		require.NoError(t, sm.TransitionTo(PhaseRunning, "agents ready"))

		err = sm.TransitionTo(PhaseTerminal, "no result yet")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "winner or a draw")

		err = sm.TransitionTo(PhaseAborted, "no error")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires an error")
		assert.Equal(t, PhaseRunning, sm.CurrentPhase())
	})

	t.Run("History Tracking", func(t *testing.T) {
		sm, ctx := setup()

		_ = sm.TransitionTo(PhaseRunning, "reason1")
		ctx.Winner = 0
		_ = sm.TransitionTo(PhaseTerminal, "reason2")

		history := sm.GetHistory()
		require.Len(t, history, 2)

		assert.Equal(t, PhaseInit, history[0].From)
		assert.Equal(t, PhaseRunning, history[0].To)
		assert.Equal(t, "reason1", history[0].Reason)

		assert.Equal(t, PhaseRunning, history[1].From)
		assert.Equal(t, PhaseTerminal, history[1].To)
		assert.Equal(t, "reason2", history[1].Reason)
	})

	t.Run("Startup Abort", func(t *testing.T) {
		sm, ctx := setup()

		ctx.AbortedBy = 0
		ctx.Error = errors.New("startup timeout")
		require.NoError(t, sm.TransitionTo(PhaseAborted, "startup timeout"))
		assert.Equal(t, PhaseAborted, sm.CurrentPhase())
		assert.True(t, ctx.StartTime.IsZero())
		assert.False(t, ctx.EndTime.IsZero())
	})

	t.Run("Reset", func(t *testing.T) {
		sm, ctx := setup()

		require.NoError(t, sm.TransitionTo(PhaseRunning, "agents ready"))
		ctx.Moves = 4
		ctx.AbortedBy = 1
		ctx.Error = errors.New("decision timeout")
		ctx.SetMetadata("k", 1)
		require.NoError(t, sm.TransitionTo(PhaseAborted, "decision timeout"))

		require.NoError(t, sm.Reset())
		assert.Equal(t, PhaseInit, sm.CurrentPhase())
		assert.Empty(t, sm.GetHistory())
		assert.Nil(t, ctx.Error)
		assert.Equal(t, 0, ctx.Moves)
		assert.Equal(t, -1, ctx.AbortedBy)
		assert.Empty(t, ctx.Metadata)

		// The machine is usable again after a reset
		assert.NoError(t, sm.TransitionTo(PhaseRunning, "again"))
	})

	t.Run("Reset Requires Finished Match", func(t *testing.T) {
		sm, _ := setup()
		assert.Error(t, sm.Reset())
		assert.Equal(t, PhaseInit, sm.CurrentPhase())
	})

	t.Run("CanTransitionTo", func(t *testing.T) {
		sm, _ := setup()

		assert.True(t, sm.CanTransitionTo(PhaseRunning))
		assert.True(t, sm.CanTransitionTo(PhaseAborted))
		assert.False(t, sm.CanTransitionTo(PhaseTerminal))
		assert.False(t, sm.CanTransitionTo(PhaseReset))
	})
}

func TestStateMachine_PublishesTransitions(t *testing.T) {
	logger := zerolog.Nop()
	bus := events.NewEventBus(logger)

	var got []*events.StateTransitionEvent
	bus.SubscribeFunc(events.TypeStateTransition, func(e events.Event) {
		got = append(got, e.(*events.StateTransitionEvent))
	})

	ctx := NewMatchContext("published", []string{"a", "b"}, logger)
	sm := NewStateMachine(ctx, bus)
	require.NoError(t, sm.TransitionTo(PhaseRunning, "agents ready"))

	require.Len(t, got, 1)
	assert.Equal(t, "published", got[0].MatchID())
	assert.Equal(t, "Init", got[0].FromPhase)
	assert.Equal(t, "Running", got[0].ToPhase)
	assert.Equal(t, "agents ready", got[0].Reason)

	// Failed transitions publish nothing
	_ = sm.TransitionTo(PhaseInit, "bad")
	assert.Len(t, got, 1)
}

func TestStateMachine_NilPublisher(t *testing.T) {
	ctx := NewMatchContext("quiet", []string{"a", "b"}, zerolog.Nop())
	sm := NewStateMachine(ctx, nil)
	assert.NoError(t, sm.TransitionTo(PhaseRunning, "agents ready"))
}

// MockState for testing custom state implementations
type MockState struct {
	phase       GamePhase
	enterCalled bool
	exitCalled  bool
	enterError  error
	exitError   error
}

func (m *MockState) Phase() GamePhase             { return m.phase }
func (m *MockState) Enter(*MatchContext) error    { m.enterCalled = true; return m.enterError }
func (m *MockState) Exit(*MatchContext) error     { m.exitCalled = true; return m.exitError }
func (m *MockState) Validate(*MatchContext) error { return nil }

func TestStateMachine_CustomStates(t *testing.T) {
	ctx := NewMatchContext("test-match", []string{"a", "b"}, zerolog.Nop())
	sm := NewStateMachine(ctx, nil)

	t.Run("StateCallbacks", func(t *testing.T) {
		initMock := &MockState{phase: PhaseInit, exitError: errors.New("exit failed")}
		runningMock := &MockState{phase: PhaseRunning}
		sm.RegisterState(initMock)
		sm.RegisterState(runningMock)

		// Exit errors are logged, not fatal
		require.NoError(t, sm.TransitionTo(PhaseRunning, "test"))
		assert.True(t, initMock.exitCalled)
		assert.True(t, runningMock.enterCalled)
	})

	t.Run("EnterFailureRollsBack", func(t *testing.T) {
		terminalMock := &MockState{phase: PhaseTerminal, enterError: errors.New("enter failed")}
		sm.RegisterState(terminalMock)

		err := sm.TransitionTo(PhaseTerminal, "test")
		require.Error(t, err)
		assert.Equal(t, PhaseRunning, sm.CurrentPhase())
		assert.Len(t, sm.GetHistory(), 1)
	})
}
