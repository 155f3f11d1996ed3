package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mitchelldurbincs/Paratroopers/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flags are bound to config keys, so a
// flag given on the command line beats the config file and PARA_* variables.
func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "paratroopers",
		Short: "Play and rank agents in the Paratroopers territory game",
		Long: `paratroopers drives two agents through matches on a K x K board of
valued cells. Each move deploys on a free cell and flanks adjacent enemy
cells next to the mover's own territory.

Use "rank" to compare two agents over many matches with seats swapped
every other match, or "play" to watch a single match.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(configPath); err != nil {
				return err
			}
			if err := config.LoadEnvironmentConfig(os.Getenv("APP_ENV")); err != nil {
				return err
			}
			if err := config.BindFlags(cmd.Flags()); err != nil {
				return err
			}
			c := config.Get()
			setupLogging(cmd.ErrOrStderr(), c.Logging.Level, c.Logging.Format)
			if path := config.ConfigFilePath(); path != "" {
				log.Debug().Str("config_file", path).Msg("Loaded configuration")
			}
			return nil
		},
		SilenceUsage: true,
	}

	defaults := config.Defaults()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to config file")
	flags.String("log-level", defaults.Logging.Level, "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", defaults.Logging.Format, "Log format: console, json")
	flags.IntP("size", "k", defaults.Board.Size, "Board side length K")
	flags.BoolP("random-board", "r", defaults.Board.Random, "Draw cell values at random instead of reading rows from stdin")
	flags.Int("max-value", defaults.Board.MaxValue, "Largest random cell value (0 means K*K)")
	flags.Uint64("seed", defaults.Board.Seed, "Seed for the board and random agents (0 means time-based)")
	flags.DurationP("time-per-move", "t", defaults.Match.DecisionTimeout, "Decision budget per move")
	flags.Duration("startup-timeout", defaults.Match.StartupTimeout, "Budget for agent initialization")
	flags.BoolP("verbose", "v", defaults.Match.Verbose, "Print the board after every move")
	flags.Bool("color", defaults.Match.Color, "Use ANSI colors when printing boards")
	flags.Bool("monitor", defaults.Monitoring.Enabled, "Track goroutines and abandoned agent calls")
	flags.String("agent1", defaults.Agents.First, "First agent ("+agentNames()+")")
	flags.String("agent2", defaults.Agents.Second, "Second agent ("+agentNames()+")")

	rootCmd.AddCommand(newRankCmd())
	rootCmd.AddCommand(newPlayCmd())

	return rootCmd
}

func setupLogging(out io.Writer, level, format string) {
	logLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || logLevel == zerolog.NoLevel {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if format == "json" || os.Getenv("APP_ENV") == "production" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}
