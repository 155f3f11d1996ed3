package sim

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/Paratroopers/internal/agent"
	"github.com/mitchelldurbincs/Paratroopers/internal/game"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/events"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/states"
	"github.com/mitchelldurbincs/Paratroopers/internal/monitoring"
	"github.com/mitchelldurbincs/Paratroopers/internal/testutil"
)

func newTestDriver(topo *core.Topology, timeouts Timeouts) *Driver {
	return NewDriver(topo, Config{Timeouts: timeouts}, testutil.NopLogger(), nil, nil)
}

var generous = Timeouts{Startup: time.Second, Decision: time.Second}

// flankingScript replays D3 D4 D5 D6 D0 D7 D1 D2 D8 on the sample board
func flankingScript() (*testutil.ScriptedAgent, *testutil.ScriptedAgent) {
	return testutil.NewScriptedAgent("first", "D3", "D5", "D0", "D1", "D8"),
		testutil.NewScriptedAgent("second", "D4", "D6", "D7", "D2")
}

func TestDriver_CompletedMatch(t *testing.T) {
	a, b := flankingScript()
	d := newTestDriver(testutil.SampleTopology(), generous)

	res, err := d.Run(context.Background(), [core.NumPlayers]Seat{{Agent: a}, {Agent: b}})
	require.NoError(t, err)

	assert.True(t, res.Completed())
	assert.Equal(t, states.PhaseTerminal, res.Phase)
	assert.NotEmpty(t, res.MatchID)
	assert.Equal(t, [core.NumPlayers]string{"first", "second"}, res.Agents)
	assert.Equal(t, [core.NumPlayers]int{35, 10}, res.Rewards)
	assert.Equal(t, core.PlayerA, res.Outcome.Winner)
	assert.False(t, res.Outcome.Draw)
	assert.Nil(t, res.Aborted)

	// Exactly K² actions
	assert.Equal(t, 9, res.Moves)
	require.Len(t, res.Actions, 9)
	assert.Equal(t, core.Deploy{Cell: 8}, res.Actions[8])

	require.Len(t, res.RewardHistory, 9)
	assert.Equal(t, [core.NumPlayers]int{11, 20}, res.RewardHistory[5])
	assert.Equal(t, [core.NumPlayers]int{18, 15}, res.RewardHistory[6])
	assert.Equal(t, [core.NumPlayers]int{18, 18}, res.RewardHistory[7])
	assert.Equal(t, [core.NumPlayers]int{35, 10}, res.RewardHistory[8])

	require.NotNil(t, res.Final)
	assert.True(t, res.Final.IsTerminal())
	assert.Equal(t, res.Rewards, res.Final.RecomputeRewards())
	replay := testutil.PlayDeploys(t, game.NewGameState(testutil.SampleTopology()), 3, 4, 5, 6, 0, 7, 1, 2, 8)
	assert.True(t, replay.Equal(res.Final))
	assert.Equal(t, replay.Hash(), res.Final.Hash())

	assert.Equal(t, 5, a.Calls())
	assert.Equal(t, 4, b.Calls())
}

func TestDriver_AgentsGetPrivateCopies(t *testing.T) {
	a, b := flankingScript()
	d := newTestDriver(testutil.SampleTopology(), generous)

	res, err := d.Run(context.Background(), [core.NumPlayers]Seat{{Agent: a}, {Agent: b}})
	require.NoError(t, err)

	seen := a.Seen()
	require.Len(t, seen, 5)
	// Each snapshot shows the board before that decision, never a later one
	assert.Equal(t, 0, seen[0].OccupiedCount())
	assert.Equal(t, 8, seen[4].OccupiedCount())
	assert.False(t, seen[4].Equal(res.Final))

	_, err = seen[0].ApplyInPlace(core.Deploy{Cell: 0})
	require.NoError(t, err, "agent may mutate its copy")
	assert.Equal(t, 1, seen[0].OccupiedCount())
}

func TestDriver_ZeroDecisionBudgetAborts(t *testing.T) {
	a := testutil.NewScriptedAgent("patient")
	b := testutil.NewScriptedAgent("hasty")
	d := newTestDriver(testutil.SampleTopology(), generous)

	seats := [core.NumPlayers]Seat{
		{Agent: a},
		{Agent: b, Timeouts: &Timeouts{Startup: time.Second, Decision: 0}},
	}
	res, err := d.Run(context.Background(), seats)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAgentTimeout)

	assert.Equal(t, states.PhaseAborted, res.Phase)
	assert.False(t, res.Completed())
	require.NotNil(t, res.Aborted)
	assert.Equal(t, 1, res.Aborted.Seat)
	assert.Equal(t, "hasty", res.Aborted.Agent)
	assert.Equal(t, PhaseDecision, res.Aborted.Phase)
	assert.Equal(t, [core.NumPlayers]int{}, res.Rewards, "aborted match yields no reward")
	assert.Equal(t, 1, res.Moves)

	var timeout *AgentTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, 1, timeout.Seat)
	assert.Equal(t, "hasty", timeout.Agent)
	assert.Equal(t, PhaseDecision, timeout.Phase)
	assert.Zero(t, timeout.Budget)

	assert.Equal(t, 0, b.Calls(), "zero budget never reaches the agent")
}

func TestDriver_ZeroDefaultBudgetAbortsFirstSeat(t *testing.T) {
	d := newTestDriver(testutil.SampleTopology(), Timeouts{Startup: time.Second})
	res, err := d.Run(context.Background(), [core.NumPlayers]Seat{
		{Agent: testutil.NewScriptedAgent("a")},
		{Agent: testutil.NewScriptedAgent("b")},
	})

	assert.ErrorIs(t, err, ErrAgentTimeout)
	assert.Equal(t, 0, res.Aborted.Seat)
	assert.Equal(t, 0, res.Moves)
}

func TestDriver_RunawayDecisionIsAbandoned(t *testing.T) {
	monitor := monitoring.NewGoroutineMonitor(testutil.NopLogger(), time.Hour, 0)
	d := NewDriver(testutil.SampleTopology(),
		Config{Timeouts: Timeouts{Startup: time.Second, Decision: 20 * time.Millisecond}},
		testutil.NopLogger(), nil, monitor)

	stuck := testutil.NewBlockingAgent("stuck")
	defer stuck.Release()

	start := time.Now()
	res, err := d.Run(context.Background(), [core.NumPlayers]Seat{
		{Agent: testutil.NewScriptedAgent("ok")},
		{Agent: stuck},
	})

	assert.Less(t, time.Since(start), 2*time.Second, "driver must not wait for the agent")
	assert.ErrorIs(t, err, ErrAgentTimeout)
	assert.Equal(t, PhaseDecision, res.Aborted.Phase)
	assert.Equal(t, "stuck", res.Aborted.Agent)
	assert.GreaterOrEqual(t, res.AgentTime[1], 20*time.Millisecond)

	assert.Equal(t, 1, monitor.GetMetrics().Abandoned)
	assert.Equal(t, 1, stuck.Started())
	assert.Equal(t, 0, stuck.Returned())

	stuck.Release()
	assert.Eventually(t, func() bool {
		return monitor.GetMetrics().Abandoned == 0
	}, time.Second, time.Millisecond)
}

func TestDriver_StartupFailures(t *testing.T) {
	boom := errors.New("cannot load model")

	tests := []struct {
		name    string
		budget  time.Duration
		agent   *testutil.SlowInitAgent
		timeout bool
		wantErr error
	}{
		{
			name:    "slow hook times out",
			budget:  10 * time.Millisecond,
			agent:   &testutil.SlowInitAgent{Agent: testutil.NewScriptedAgent("slow"), Delay: time.Second},
			timeout: true,
			wantErr: ErrAgentTimeout,
		},
		{
			name:    "zero budget times out",
			budget:  0,
			agent:   &testutil.SlowInitAgent{Agent: testutil.NewScriptedAgent("slow")},
			timeout: true,
			wantErr: ErrAgentTimeout,
		},
		{
			name:    "hook error",
			budget:  time.Second,
			agent:   &testutil.SlowInitAgent{Agent: testutil.NewScriptedAgent("slow"), Err: boom},
			wantErr: boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDriver(testutil.SampleTopology(), Timeouts{Startup: tt.budget, Decision: time.Second})
			res, err := d.Run(context.Background(), [core.NumPlayers]Seat{
				{Agent: testutil.NewScriptedAgent("plain")},
				{Agent: tt.agent},
			})

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, states.PhaseAborted, res.Phase)
			assert.Equal(t, 1, res.Aborted.Seat)
			assert.Equal(t, "slow", res.Aborted.Agent)
			assert.Equal(t, PhaseStartup, res.Aborted.Phase)
			assert.Equal(t, 0, res.Moves)
			assert.Equal(t, [core.NumPlayers]int{}, res.Rewards)

			var timeout *AgentTimeoutError
			assert.Equal(t, tt.timeout, errors.As(err, &timeout))
		})
	}
}

func TestDriver_StartupHookIsOptional(t *testing.T) {
	// Agents without a startup hook are not affected by the startup budget
	d := newTestDriver(testutil.UniformTopology(2, 1), Timeouts{Startup: 0, Decision: time.Second})
	res, err := d.Run(context.Background(), [core.NumPlayers]Seat{
		{Agent: testutil.NewScriptedAgent("a")},
		{Agent: testutil.NewScriptedAgent("b")},
	})
	require.NoError(t, err)
	assert.True(t, res.Completed())
}

func TestDriver_StartupHookRunsOnce(t *testing.T) {
	slow := &testutil.SlowInitAgent{Agent: testutil.NewScriptedAgent("slow")}
	d := newTestDriver(testutil.UniformTopology(2, 1), generous)

	res, err := d.Run(context.Background(), [core.NumPlayers]Seat{{Agent: slow}, {Agent: testutil.NewScriptedAgent("b")}})
	require.NoError(t, err)
	assert.True(t, res.Completed())
	assert.Equal(t, 1, slow.Inits())
}

func TestDriver_AgentFailuresAbort(t *testing.T) {
	denied := errors.New("no move for you")

	tests := []struct {
		name  string
		agent agent.Agent
		check func(t *testing.T, err error)
	}{
		{
			name:  "error",
			agent: &testutil.ErrorAgent{AgentName: "bad", Err: denied},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, denied) },
		},
		{
			name:  "panic",
			agent: &testutil.PanicAgent{AgentName: "bad"},
			check: func(t *testing.T, err error) {
				var pe *PanicError
				assert.ErrorAs(t, err, &pe)
			},
		},
		{
			name:  "illegal action",
			agent: testutil.NewScriptedAgent("bad", "D3"),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, core.ErrCellOccupied)
				assert.ErrorIs(t, err, core.ErrIllegalAction)
				var ae *core.ActionError
				require.ErrorAs(t, err, &ae)
				assert.Equal(t, core.PlayerB, ae.Player)
			},
		},
		{
			name:  "slide",
			agent: testutil.NewScriptedAgent("bad", "S0-1"),
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, core.ErrUnsupportedAction) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDriver(testutil.SampleTopology(), generous)
			res, err := d.Run(context.Background(), [core.NumPlayers]Seat{
				{Agent: testutil.NewScriptedAgent("good", "D3")},
				{Agent: tt.agent},
			})

			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrAgentTimeout)
			assert.Equal(t, states.PhaseAborted, res.Phase)
			assert.Equal(t, 1, res.Aborted.Seat)
			assert.Equal(t, PhaseDecision, res.Aborted.Phase)
			assert.Equal(t, 1, res.Moves)
			assert.Equal(t, [core.NumPlayers]int{}, res.Rewards)

			var abortErr *AbortError
			require.ErrorAs(t, err, &abortErr)
			assert.Same(t, res.Aborted, abortErr)
			tt.check(t, err)
		})
	}
}

func TestDriver_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := newTestDriver(testutil.SampleTopology(), generous)
	res, err := d.Run(ctx, [core.NumPlayers]Seat{
		{Agent: testutil.NewScriptedAgent("a")},
		{Agent: testutil.NewScriptedAgent("b")},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, states.PhaseAborted, res.Phase)
}

func TestDriver_MissingAgent(t *testing.T) {
	d := newTestDriver(testutil.SampleTopology(), generous)
	res, err := d.Run(context.Background(), [core.NumPlayers]Seat{{Agent: testutil.NewScriptedAgent("a")}})
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestDriver_PublishesEvents(t *testing.T) {
	bus := events.NewEventBus(testutil.NopLogger())

	var mu sync.Mutex
	var types []string
	var transitions []string
	bus.Subscribe(recorder(func(e events.Event) {
		mu.Lock()
		defer mu.Unlock()
		types = append(types, e.Type())
		if st, ok := e.(*events.StateTransitionEvent); ok {
			transitions = append(transitions, st.FromPhase+"->"+st.ToPhase)
		}
	}))

	a, b := flankingScript()
	d := NewDriver(testutil.SampleTopology(), Config{Timeouts: generous}, testutil.NopLogger(), bus, nil)
	res, err := d.Run(context.Background(), [core.NumPlayers]Seat{{Agent: a}, {Agent: b}})
	require.NoError(t, err)

	count := func(typ string) int {
		n := 0
		for _, tp := range types {
			if tp == typ {
				n++
			}
		}
		return n
	}
	assert.Equal(t, events.TypeMatchStarted, types[0])
	assert.Equal(t, events.TypeMatchEnded, types[len(types)-1])
	assert.Equal(t, 9, count(events.TypeActionApplied))
	assert.Equal(t, 2, count(events.TypeCellsCaptured))
	assert.Equal(t, 0, count(events.TypeMatchAborted))
	assert.Equal(t, []string{"Init->Running", "Running->Terminal"}, transitions)
	assert.Equal(t, 9, res.Moves)
}

func TestDriver_PublishesAbort(t *testing.T) {
	bus := events.NewEventBus(testutil.NopLogger())

	var aborted *events.MatchAbortedEvent
	bus.SubscribeFunc(events.TypeMatchAborted, func(e events.Event) {
		aborted = e.(*events.MatchAbortedEvent)
	})

	d := NewDriver(testutil.SampleTopology(), Config{Timeouts: generous}, testutil.NopLogger(), bus, nil)
	res, err := d.Run(context.Background(), [core.NumPlayers]Seat{
		{Agent: testutil.NewScriptedAgent("a")},
		{Agent: testutil.NewScriptedAgent("b"), Timeouts: &Timeouts{Startup: time.Second}},
	})
	require.Error(t, err)

	require.NotNil(t, aborted)
	assert.Equal(t, res.MatchID, aborted.MatchID())
	assert.Equal(t, 1, aborted.Seat)
	assert.Equal(t, "b", aborted.Agent)
	assert.Equal(t, "decision", aborted.Phase)
}

func TestDriver_RandomPlayouts(t *testing.T) {
	for k := 1; k <= 5; k++ {
		rng := testutil.NewTestRNG(uint64(k))
		values := make([]int, k*k)
		for i := range values {
			values[i] = 1 + rng.Intn(k*k)
		}
		topo := core.MustTopology(k, values)
		d := newTestDriver(topo, generous)

		r1, err := agent.New("random", agent.Options{Seed: uint64(k)})
		require.NoError(t, err)
		r2, err := agent.New("greedy", agent.Options{})
		require.NoError(t, err)

		res, err := d.Run(context.Background(), [core.NumPlayers]Seat{{Agent: r1}, {Agent: r2}})
		require.NoError(t, err)
		assert.Equal(t, k*k, res.Moves)
		assert.Equal(t, topo.TotalValue(), res.Rewards[0]+res.Rewards[1])

		prevTotal := 0
		for _, r := range res.RewardHistory {
			total := r[0] + r[1]
			assert.Greater(t, total, prevTotal)
			prevTotal = total
		}
	}
}

func TestDriver_ConcurrentRunsShareTopology(t *testing.T) {
	d := newTestDriver(testutil.SampleTopology(), generous)

	var wg sync.WaitGroup
	results := make([]*MatchResult, 8)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, b := flankingScript()
			res, err := d.Run(context.Background(), [core.NumPlayers]Seat{{Agent: a}, {Agent: b}})
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	wg.Wait()

	ids := map[string]bool{}
	for _, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, [core.NumPlayers]int{35, 10}, res.Rewards)
		ids[res.MatchID] = true
	}
	assert.Len(t, ids, len(results), "match IDs are unique")
}

type recorder func(events.Event)

func (r recorder) ID() string { return "recorder" }
func (r recorder) HandleEvent(e events.Event) { r(e) }
func (r recorder) InterestedIn(string) bool { return true }
