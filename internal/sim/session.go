package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mitchelldurbincs/Paratroopers/internal/agent"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/rules"
)

// Contender is one of the two agents compared by a session. New is called
// once per match so no agent state leaks between matches.
type Contender struct {
	Name     string
	New      func() (agent.Agent, error)
	Timeouts *Timeouts
}

// SessionConfig controls a repeated run.
type SessionConfig struct {
	Simulations int
	// Parallelism is the number of matches played at once; values below one
	// mean one.
	Parallelism int
}

// MatchRecord is one match of a session.
type MatchRecord struct {
	Index int
	// Swapped is set when the second contender sat in seat 0.
	Swapped bool
	Result  *MatchResult
	Err     error
}

// ContenderRewards returns the match rewards ordered by contender instead of
// by seat.
func (r MatchRecord) ContenderRewards() [core.NumPlayers]int {
	rewards := r.Result.Rewards
	if r.Swapped {
		rewards[0], rewards[1] = rewards[1], rewards[0]
	}
	return rewards
}

// contenderOfSeat maps a seat of this match to a contender index.
func (r MatchRecord) contenderOfSeat(seat int) int {
	if r.Swapped {
		return 1 - seat
	}
	return seat
}

// ContenderStats aggregates one contender over a session.
type ContenderStats struct {
	Name         string
	Wins         int
	Draws        int
	Losses       int
	Aborted      int // matches this contender caused to abort
	TotalReward  int
	DecisionTime time.Duration
	// Rewards holds the contender's reward in every completed match, in
	// match order.
	Rewards []int
}

// SessionReport is the outcome of Session.Run.
type SessionReport struct {
	ID         string
	Topology   *core.Topology
	Matches    []MatchRecord
	Contenders [core.NumPlayers]ContenderStats
	Draws      int
	Aborted    int
	Duration   time.Duration
}

// Completed returns the number of matches that reached a full board.
func (r *SessionReport) Completed() int {
	return len(r.Matches) - r.Aborted
}

// Session plays repeated matches between two contenders on the driver's
// topology, swapping seats every other match.
type Session struct {
	driver *Driver
	cfg    SessionConfig
	logger zerolog.Logger
}

// NewSession creates a session.
func NewSession(driver *Driver, cfg SessionConfig, logger zerolog.Logger) *Session {
	return &Session{
		driver: driver,
		cfg:    cfg,
		logger: logger.With().Str("component", "sim_session").Logger(),
	}
}

// Run plays the configured number of matches. Aborted matches are recorded
// and the session goes on; an agent factory error or a cancelled ctx stops
// it.
func (s *Session) Run(ctx context.Context, contenders [core.NumPlayers]Contender) (*SessionReport, error) {
	if s.cfg.Simulations < 0 {
		return nil, fmt.Errorf("simulations must be non-negative, got %d", s.cfg.Simulations)
	}
	for i, c := range contenders {
		if c.New == nil {
			return nil, fmt.Errorf("contender %d (%s) has no agent factory", i, c.Name)
		}
	}
	parallelism := s.cfg.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	report := &SessionReport{
		ID:       uuid.NewString(),
		Topology: s.driver.Topology(),
		Matches:  make([]MatchRecord, s.cfg.Simulations),
	}
	logger := s.logger.With().Str("session_id", report.ID).Logger()
	logger.Info().
		Str("first", contenders[0].Name).
		Str("second", contenders[1].Name).
		Int("simulations", s.cfg.Simulations).
		Int("parallelism", parallelism).
		Msg("Session started")

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i := 0; i < s.cfg.Simulations; i++ {
		i := i
		g.Go(func() error {
			rec, err := s.runMatch(gctx, i, contenders)
			if err != nil {
				return err
			}
			report.Matches[i] = rec
			if rec.Err != nil {
				logger.Warn().
					Int("match", i).
					Str("match_id", rec.Result.MatchID).
					Err(rec.Err).
					Msg("Match aborted")
				return nil
			}
			logger.Info().
				Int("match", i).
				Str("match_id", rec.Result.MatchID).
				Bool("swapped", rec.Swapped).
				Ints("rewards", rec.Result.Rewards[:]).
				Msg("Match finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	report.Duration = time.Since(start)

	aggregate(report, contenders)

	logger.Info().
		Int("wins_first", report.Contenders[0].Wins).
		Int("wins_second", report.Contenders[1].Wins).
		Int("draws", report.Draws).
		Int("aborted", report.Aborted).
		Dur("duration", report.Duration).
		Msg("Session finished")
	return report, nil
}

func (s *Session) runMatch(ctx context.Context, index int, contenders [core.NumPlayers]Contender) (MatchRecord, error) {
	rec := MatchRecord{Index: index, Swapped: index%2 == 1}

	var seats [core.NumPlayers]Seat
	for seat := range seats {
		c := contenders[rec.contenderOfSeat(seat)]
		a, err := c.New()
		if err != nil {
			return rec, fmt.Errorf("creating agent %s: %w", c.Name, err)
		}
		seats[seat] = Seat{Agent: a, Timeouts: c.Timeouts}
	}

	result, err := s.driver.Run(ctx, seats)
	if result == nil {
		return rec, err
	}
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return rec, ctx.Err()
	}
	rec.Result = result
	rec.Err = err
	return rec, nil
}

func aggregate(report *SessionReport, contenders [core.NumPlayers]Contender) {
	for i := range report.Contenders {
		report.Contenders[i].Name = contenders[i].Name
	}

	for _, rec := range report.Matches {
		res := rec.Result
		for seat := 0; seat < core.NumPlayers; seat++ {
			report.Contenders[rec.contenderOfSeat(seat)].DecisionTime += res.AgentTime[seat]
		}

		if !res.Completed() {
			report.Aborted++
			if res.Aborted != nil {
				report.Contenders[rec.contenderOfSeat(res.Aborted.Seat)].Aborted++
			}
			continue
		}

		rewards := rec.ContenderRewards()
		for i := range report.Contenders {
			report.Contenders[i].TotalReward += rewards[i]
			report.Contenders[i].Rewards = append(report.Contenders[i].Rewards, rewards[i])
		}
		// Contender order stands in for seats here: Winner 0 is the first
		// contender whichever seat it held.
		o := rules.OutcomeFromRewards(rewards)
		if o.Draw {
			report.Draws++
			report.Contenders[0].Draws++
			report.Contenders[1].Draws++
			continue
		}
		report.Contenders[o.Winner].Wins++
		report.Contenders[o.Winner.Opponent()].Losses++
	}
}
