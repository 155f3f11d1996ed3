// Package sim runs matches between agents: a Driver plays one match under
// per-call time budgets and a Session repeats matches with seat rotation.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/Paratroopers/internal/agent"
	"github.com/mitchelldurbincs/Paratroopers/internal/game"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/events"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/rules"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/states"
	"github.com/mitchelldurbincs/Paratroopers/internal/monitoring"
)

// Timeouts bounds the two kinds of agent call.
type Timeouts struct {
	Startup  time.Duration
	Decision time.Duration
}

// Seat is one agent slot of a match. Seat i plays core.Player(i).
type Seat struct {
	Agent agent.Agent
	// Timeouts overrides the driver defaults for this seat when non-nil.
	Timeouts *Timeouts
}

// Config holds driver settings.
type Config struct {
	Timeouts Timeouts
}

// DefaultConfig returns a one second startup and three second decision budget.
func DefaultConfig() Config {
	return Config{Timeouts: Timeouts{Startup: time.Second, Decision: 3 * time.Second}}
}

// MatchResult is everything recorded about one match. Rewards stay zero for
// an aborted match.
type MatchResult struct {
	MatchID       string
	Phase         states.GamePhase
	Agents        [core.NumPlayers]string
	Rewards       [core.NumPlayers]int
	Outcome       rules.Outcome
	Moves         int
	Actions       []core.Action
	RewardHistory [][core.NumPlayers]int
	AgentTime     [core.NumPlayers]time.Duration
	Aborted       *AbortError
	Final         *game.GameState
	Duration      time.Duration
}

// Completed reports whether the match reached a full board.
func (r *MatchResult) Completed() bool {
	return r.Phase == states.PhaseTerminal
}

// Driver plays matches on a fixed topology. It holds no per-match state, so
// one Driver may run several matches at once.
type Driver struct {
	topo    *core.Topology
	cfg     Config
	logger  zerolog.Logger
	bus     events.Publisher
	monitor *monitoring.GoroutineMonitor
	checker *rules.WinConditionChecker
}

// NewDriver creates a driver. bus and monitor may be nil.
func NewDriver(topo *core.Topology, cfg Config, logger zerolog.Logger, bus events.Publisher, monitor *monitoring.GoroutineMonitor) *Driver {
	logger = logger.With().Str("component", "sim_driver").Logger()
	return &Driver{
		topo:    topo,
		cfg:     cfg,
		logger:  logger,
		bus:     bus,
		monitor: monitor,
		checker: rules.NewWinConditionChecker(logger),
	}
}

// Topology returns the board every match of this driver is played on.
func (d *Driver) Topology() *core.Topology { return d.topo }

// match is the mutable state of a single Run.
type match struct {
	d       *Driver
	seats   [core.NumPlayers]Seat
	state   *game.GameState
	machine *states.StateMachine
	ctx     *states.MatchContext
	result  *MatchResult
	begin   time.Time
}

// Run plays one match from the empty board. An agent that times out, fails,
// panics or plays an illegal action aborts the match: the result then has
// Phase PhaseAborted and the returned error is the same *AbortError as
// result.Aborted.
func (d *Driver) Run(ctx context.Context, seats [core.NumPlayers]Seat) (*MatchResult, error) {
	var names [core.NumPlayers]string
	for i, seat := range seats {
		if seat.Agent == nil {
			return nil, fmt.Errorf("seat %d has no agent", i)
		}
		names[i] = seat.Agent.Name()
	}

	matchID := uuid.NewString()
	mctx := states.NewMatchContext(matchID, names[:], d.logger)
	m := &match{
		d:       d,
		seats:   seats,
		state:   game.NewGameState(d.topo),
		machine: states.NewStateMachine(mctx, d.bus),
		ctx:     mctx,
		result: &MatchResult{
			MatchID: matchID,
			Phase:   states.PhaseInit,
			Agents:  names,
		},
		begin: time.Now(),
	}
	m.publish(events.NewMatchStartedEvent(matchID, d.topo, names[:]))

	if err := m.initAgents(ctx); err != nil {
		return m.result, err
	}
	if err := m.machine.TransitionTo(states.PhaseRunning, "agents initialized"); err != nil {
		return m.result, err
	}
	m.result.Phase = states.PhaseRunning

	if err := m.play(ctx); err != nil {
		return m.result, err
	}
	return m.result, m.finish()
}

func (m *match) timeouts(seat int) Timeouts {
	if t := m.seats[seat].Timeouts; t != nil {
		return *t
	}
	return m.d.cfg.Timeouts
}

func (m *match) hooks(seat int) abandonHooks {
	name := m.result.Agents[seat]
	return abandonHooks{
		Abandoned: func() {
			m.ctx.Logger.Warn().Int("seat", seat).Str("agent", name).Msg("Abandoned agent call still running")
			if m.d.monitor != nil {
				m.d.monitor.RecordAbandoned(name)
			}
		},
		Returned: func() {
			if m.d.monitor != nil {
				m.d.monitor.AbandonedReturned(name)
			}
		},
	}
}

// initAgents runs the optional startup hook of every seat in seat order.
func (m *match) initAgents(ctx context.Context) error {
	for seat := range m.seats {
		initializer, ok := m.seats[seat].Agent.(agent.Initializer)
		if !ok {
			continue
		}
		budget := m.timeouts(seat).Startup
		snapshot := m.state.Clone()
		res := callWithBudget(ctx, budget, m.hooks(seat), func(cctx context.Context) (struct{}, error) {
			return struct{}{}, initializer.InitState(cctx, snapshot)
		})
		if res.TimedOut {
			return m.abort(seat, PhaseStartup, m.timeoutError(seat, PhaseStartup, budget, res.Elapsed))
		}
		if res.Err != nil {
			return m.abort(seat, PhaseStartup, res.Err)
		}
		m.publish(events.NewAgentInitializedEvent(m.result.MatchID, seat, m.result.Agents[seat], res.Elapsed))
	}
	return nil
}

// play asks seats for actions round-robin, starting with the seat of the
// player to move, until the board is full.
func (m *match) play(ctx context.Context) error {
	first := int(m.state.CurrentPlayer())
	for turn := 0; !m.state.IsTerminal(); turn++ {
		seat := (first + turn) % core.NumPlayers
		budget := m.timeouts(seat).Decision
		snapshot := m.state.Clone()
		a := m.seats[seat].Agent

		res := callWithBudget(ctx, budget, m.hooks(seat), func(cctx context.Context) (core.Action, error) {
			return a.GetAction(cctx, snapshot)
		})
		m.result.AgentTime[seat] += res.Elapsed

		switch {
		case res.TimedOut:
			return m.abort(seat, PhaseDecision, m.timeoutError(seat, PhaseDecision, budget, res.Elapsed))
		case res.Err != nil:
			return m.abort(seat, PhaseDecision, res.Err)
		case res.Value == nil:
			return m.abort(seat, PhaseDecision, fmt.Errorf("%w: no action returned", core.ErrMalformedAction))
		}

		player := m.state.CurrentPlayer()
		tr, err := m.state.ApplyInPlace(res.Value)
		if err != nil {
			return m.abort(seat, PhaseDecision, core.WrapActionError(res.Value, player, err))
		}

		m.ctx.Moves++
		m.result.Moves++
		m.result.Actions = append(m.result.Actions, res.Value)
		m.result.RewardHistory = append(m.result.RewardHistory, m.state.Rewards())

		m.ctx.Logger.Debug().
			Int("move", m.result.Moves).
			Int("seat", seat).
			Str("action", res.Value.String()).
			Dur("elapsed", res.Elapsed).
			Ints("captured", tr.Captured).
			Msg("Action applied")

		if m.d.bus != nil {
			m.publish(events.NewActionAppliedEvent(m.result.MatchID, seat, m.result.Agents[seat], tr,
				m.result.Moves, res.Elapsed, m.state.Clone()))
			if len(tr.Captured) > 0 {
				m.publish(events.NewCellsCapturedEvent(m.result.MatchID, tr, m.result.Moves))
			}
		}
	}
	return nil
}

func (m *match) finish() error {
	_, outcome := m.d.checker.CheckGameOver(m.state)
	if outcome.Draw {
		m.ctx.Draw = true
	} else {
		m.ctx.Winner = int(outcome.Winner)
	}
	if err := m.machine.TransitionTo(states.PhaseTerminal, outcome.String()); err != nil {
		return err
	}

	m.result.Phase = states.PhaseTerminal
	m.result.Rewards = m.state.Rewards()
	m.result.Outcome = outcome
	m.result.Final = m.state
	m.result.Duration = time.Since(m.begin)

	m.publish(events.NewMatchEndedEvent(m.result.MatchID, m.result.Rewards, m.ctx.Winner,
		m.result.Moves, m.result.Duration, m.result.AgentTime))
	return nil
}

func (m *match) timeoutError(seat int, phase AgentPhase, budget, elapsed time.Duration) error {
	return &AgentTimeoutError{
		Seat:    seat,
		Agent:   m.result.Agents[seat],
		Phase:   phase,
		Budget:  budget,
		Elapsed: elapsed,
	}
}

// abort moves the match to PhaseAborted and returns the abort error.
func (m *match) abort(seat int, phase AgentPhase, cause error) error {
	abortErr := &AbortError{
		Seat:  seat,
		Agent: m.result.Agents[seat],
		Phase: phase,
		Err:   cause,
	}

	m.ctx.AbortedBy = seat
	m.ctx.Error = abortErr
	if err := m.machine.TransitionTo(states.PhaseAborted, string(phase)+" failure"); err != nil {
		m.ctx.Logger.Error().Err(err).Msg("Failed to enter aborted phase")
	}

	m.result.Phase = states.PhaseAborted
	m.result.Aborted = abortErr
	m.result.Rewards = [core.NumPlayers]int{}
	m.result.Final = m.state
	m.result.Duration = time.Since(m.begin)

	m.publish(events.NewMatchAbortedEvent(m.result.MatchID, seat, abortErr.Agent, string(phase), cause, m.result.Moves))
	return abortErr
}

func (m *match) publish(e events.Event) {
	if m.d.bus != nil {
		m.d.bus.Publish(e)
	}
}
