package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/Paratroopers/internal/agent"
	"github.com/mitchelldurbincs/Paratroopers/internal/config"
	"github.com/mitchelldurbincs/Paratroopers/internal/game"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/events"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/mapgen"
	"github.com/mitchelldurbincs/Paratroopers/internal/monitoring"
	"github.com/mitchelldurbincs/Paratroopers/internal/sim"
)

// humanBudget replaces the configured budgets for keyboard players.
const humanBudget = 24 * time.Hour

func agentNames() string {
	return strings.Join(agent.Names(), ", ")
}

func newRankCmd() *cobra.Command {
	defaults := config.Defaults()
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Compare two agents over repeated matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd.Context(), config.Get(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntP("simulations", "n", defaults.Session.Simulations, "Number of matches")
	cmd.Flags().Int("parallelism", defaults.Session.Parallelism, "Matches played at once")
	return cmd
}

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play a single match and print the board after every move",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), config.Get(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runner is what both commands share: the board, the driver and the stdin
// reader handed to interactive agents.
type runner struct {
	cfg     *config.Config
	seed    uint64
	in      *bufio.Reader
	out     io.Writer
	logger  zerolog.Logger
	bus     *events.EventBus
	monitor *monitoring.GoroutineMonitor
	driver  *sim.Driver
}

func newRunner(cfg *config.Config, in io.Reader, out io.Writer, verbose bool) (*runner, error) {
	rt := &runner{
		cfg:    cfg,
		seed:   cfg.Board.Seed,
		in:     bufio.NewReader(in),
		out:    out,
		logger: log.Logger,
	}
	if rt.seed == 0 {
		rt.seed = uint64(time.Now().UnixNano())
	}

	topo, err := buildTopology(cfg.Board, rt.seed, rt.in, out)
	if err != nil {
		return nil, err
	}

	rt.bus = events.NewEventBus(rt.logger)
	eventLog := subscribers.NewLoggerSubscriber("match-log", rt.logger, zerolog.DebugLevel)
	eventLog.SetDevMode(zerolog.GlobalLevel() <= zerolog.TraceLevel)
	rt.bus.Subscribe(eventLog)
	if verbose {
		opts := game.RenderOptions{Color: cfg.Match.Color, ShowValues: true}
		rt.bus.Subscribe(subscribers.NewRenderSubscriber("render", out, opts))
	}

	if cfg.Monitoring.Enabled {
		rt.monitor = monitoring.NewGoroutineMonitor(rt.logger, cfg.Monitoring.CheckInterval, cfg.Monitoring.AlertThreshold)
	}

	driverCfg := sim.Config{Timeouts: sim.Timeouts{
		Startup:  cfg.Match.StartupTimeout,
		Decision: cfg.Match.DecisionTimeout,
	}}
	rt.driver = sim.NewDriver(topo, driverCfg, rt.logger, rt.bus, rt.monitor)

	log.Info().
		Int("size", topo.K()).
		Int("total_value", topo.TotalValue()).
		Uint64("seed", rt.seed).
		Dur("decision_timeout", cfg.Match.DecisionTimeout).
		Msg("Board ready")
	return rt, nil
}

// contender builds a factory for one of the configured agents. Each match
// gets a fresh agent; random agents draw a new seed per match.
func (rt *runner) contender(name string, index int) (sim.Contender, error) {
	opts := agent.Options{In: rt.in, Out: rt.out, Color: rt.cfg.Match.Color}
	if _, err := agent.New(name, opts); err != nil {
		return sim.Contender{}, err
	}

	key := strings.ToLower(strings.TrimSpace(name))
	var matches atomic.Uint64
	base := rt.seed + uint64(index+1)*1_000_003
	c := sim.Contender{
		Name: fmt.Sprintf("%s(%d)", key, index+1),
		New: func() (agent.Agent, error) {
			o := opts
			o.Seed = base + matches.Add(1)
			return agent.New(name, o)
		},
	}
	if key == "keyboard" {
		c.Timeouts = &sim.Timeouts{Startup: humanBudget, Decision: humanBudget}
	}
	return c, nil
}

func (rt *runner) contenders() ([core.NumPlayers]sim.Contender, error) {
	var cs [core.NumPlayers]sim.Contender
	for i, name := range []string{rt.cfg.Agents.First, rt.cfg.Agents.Second} {
		c, err := rt.contender(name, i)
		if err != nil {
			return cs, err
		}
		cs[i] = c
	}
	return cs, nil
}

func (rt *runner) startMonitor() func() {
	if rt.monitor == nil {
		return func() {}
	}
	rt.monitor.Start()
	return func() {
		rt.monitor.Check()
		m := rt.monitor.GetMetrics()
		log.Debug().
			Int("goroutines", m.Current).
			Int("peak", m.Peak).
			Int("abandoned", m.Abandoned).
			Msg("Goroutine summary")
		rt.monitor.Stop()
	}
}

func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func runRank(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	rt, err := newRunner(cfg, in, out, cfg.Match.Verbose)
	if err != nil {
		return err
	}
	contenders, err := rt.contenders()
	if err != nil {
		return err
	}
	stop := rt.startMonitor()
	defer stop()

	if config.ConfigFilePath() != "" {
		config.WatchConfig(func() {
			log.Info().Msg("Config file changed; new values apply to the next run")
		})
	}

	ctx, cancel := signalContext(ctx)
	defer cancel()

	session := sim.NewSession(rt.driver, sim.SessionConfig{
		Simulations: cfg.Session.Simulations,
		Parallelism: cfg.Session.Parallelism,
	}, rt.logger)
	report, err := session.Run(ctx, contenders)
	if err != nil {
		return err
	}
	log.Debug().
		Int("matches_started", rt.bus.Published(events.TypeMatchStarted)).
		Int("matches_ended", rt.bus.Published(events.TypeMatchEnded)).
		Int("matches_aborted", rt.bus.Published(events.TypeMatchAborted)).
		Msg("Session events")
	return sim.WriteReport(out, report)
}

func runPlay(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	rt, err := newRunner(cfg, in, out, true)
	if err != nil {
		return err
	}
	contenders, err := rt.contenders()
	if err != nil {
		return err
	}
	stop := rt.startMonitor()
	defer stop()

	ctx, cancel := signalContext(ctx)
	defer cancel()

	var seats [core.NumPlayers]sim.Seat
	for i, c := range contenders {
		a, err := c.New()
		if err != nil {
			return err
		}
		seats[i] = sim.Seat{Agent: a, Timeouts: c.Timeouts}
	}

	result, err := rt.driver.Run(ctx, seats)
	if err != nil {
		return err
	}
	for seat, t := range result.AgentTime {
		fmt.Fprintf(out, "%s used %s\n", result.Agents[seat], t.Round(time.Microsecond))
	}
	return nil
}

// buildTopology takes explicit values first, then random generation, and
// otherwise reads K rows from in.
func buildTopology(b config.BoardConfig, seed uint64, in *bufio.Reader, out io.Writer) (*core.Topology, error) {
	switch {
	case len(b.Values) > 0:
		return core.NewTopology(b.Size, b.Values)
	case b.Random:
		mc := mapgen.DefaultMapConfig(b.Size)
		if b.MaxValue > 0 {
			mc.MaxValue = b.MaxValue
		}
		gen := mapgen.NewGenerator(mc, rand.New(rand.NewSource(seed)))
		return gen.GenerateTopology()
	default:
		fmt.Fprintf(out, "Enter %d rows of %d cell values:\n", b.Size, b.Size)
		rows, err := readRows(in, b.Size)
		if err != nil {
			return nil, err
		}
		return mapgen.ReadTopology(strings.NewReader(rows), b.Size)
	}
}

// readRows consumes exactly k non-blank lines so that moves typed after the
// board stay buffered for keyboard agents.
func readRows(in *bufio.Reader, k int) (string, error) {
	var sb strings.Builder
	for n := 0; n < k; {
		line, err := in.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			sb.WriteString(strings.TrimSpace(line))
			sb.WriteByte('\n')
			n++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading board rows: %w", err)
		}
	}
	return sb.String(), nil
}
