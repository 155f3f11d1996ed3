package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Board      BoardConfig      `mapstructure:"board"`
	Match      MatchConfig      `mapstructure:"match"`
	Session    SessionConfig    `mapstructure:"session"`
	Agents     AgentsConfig     `mapstructure:"agents"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// BoardConfig describes how the board is built
type BoardConfig struct {
	Size   int  `mapstructure:"size"`
	Random bool `mapstructure:"random"`
	// Values is an explicit row-major board; when set it wins over Random.
	Values   []int  `mapstructure:"values"`
	MaxValue int    `mapstructure:"max_value"` // 0 means size*size
	Seed     uint64 `mapstructure:"seed"`      // 0 means time-based
}

// MatchConfig holds per-match settings
type MatchConfig struct {
	StartupTimeout  time.Duration `mapstructure:"startup_timeout"`
	DecisionTimeout time.Duration `mapstructure:"decision_timeout"`
	Verbose         bool          `mapstructure:"verbose"`
	Color           bool          `mapstructure:"color"`
}

// SessionConfig holds ranking session settings
type SessionConfig struct {
	Simulations int `mapstructure:"simulations"`
	Parallelism int `mapstructure:"parallelism"`
}

// AgentsConfig names the two contenders
type AgentsConfig struct {
	First  string `mapstructure:"first"`
	Second string `mapstructure:"second"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MonitoringConfig holds goroutine monitor settings
type MonitoringConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	CheckInterval  time.Duration `mapstructure:"check_interval"`
	AlertThreshold int           `mapstructure:"alert_threshold"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// flagKeys maps command line flag names to config keys
var flagKeys = map[string]string{
	"size":            "board.size",
	"random-board":    "board.random",
	"max-value":       "board.max_value",
	"seed":            "board.seed",
	"startup-timeout": "match.startup_timeout",
	"time-per-move":   "match.decision_timeout",
	"verbose":         "match.verbose",
	"color":           "match.color",
	"simulations":     "session.simulations",
	"parallelism":     "session.parallelism",
	"agent1":          "agents.first",
	"agent2":          "agents.second",
	"log-level":       "logging.level",
	"log-format":      "logging.format",
	"monitor":         "monitoring.enabled",
}

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Board defaults
	v.SetDefault("board.size", 5)
	v.SetDefault("board.random", true)
	v.SetDefault("board.values", []int{})
	v.SetDefault("board.max_value", 0)
	v.SetDefault("board.seed", 0)

	// Match defaults
	v.SetDefault("match.startup_timeout", time.Second)
	v.SetDefault("match.decision_timeout", 3*time.Second)
	v.SetDefault("match.verbose", false)
	v.SetDefault("match.color", true)

	// Session defaults
	v.SetDefault("session.simulations", 10)
	v.SetDefault("session.parallelism", 1)

	v.SetDefault("agents.first", "greedy")
	v.SetDefault("agents.second", "random")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Monitoring defaults
	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.check_interval", 30*time.Second)
	v.SetDefault("monitoring.alert_threshold", 1000)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/paratroopers")
	}

	v.SetEnvPrefix("PARA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; defaults apply.
		if !isNotFound(err) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode()
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func decode() error {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	cfg = c
	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// Defaults returns the built-in configuration without reading files or the
// environment.
func Defaults() *Config {
	dv := viper.New()
	setViperDefaults(dv)
	c := &Config{}
	_ = dv.Unmarshal(c)
	return c
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// BindFlags binds command line flags to their config keys so that a flag
// set by the user overrides file and environment values. Flags missing from
// fs are skipped.
func BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return decode()
}

// LoadEnvironmentConfig loads environment-specific config overlay
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	return decode()
}

// Set allows runtime config updates. Values that fail validation are kept
// in viper but the struct keeps its previous state.
func Set(key string, value interface{}) {
	v.Set(key, value)
	_ = decode()
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return v.GetBool(key)
}

// GetDuration gets a duration value from config
func GetDuration(key string) time.Duration {
	return v.GetDuration(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of config file
func WatchConfig(onChange func()) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		if err := decode(); err != nil {
			return
		}
		if onChange != nil {
			onChange()
		}
	})
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Board.Size <= 0 {
		return fmt.Errorf("board.size must be positive")
	}
	if n := len(c.Board.Values); n != 0 && n != c.Board.Size*c.Board.Size {
		return fmt.Errorf("board.values must hold %d values, got %d", c.Board.Size*c.Board.Size, n)
	}
	for i, val := range c.Board.Values {
		if val <= 0 {
			return fmt.Errorf("board.values[%d] must be positive", i)
		}
	}
	if c.Board.MaxValue < 0 {
		return fmt.Errorf("board.max_value must be non-negative")
	}

	// Zero budgets are allowed; they abort the match on the first call.
	if c.Match.StartupTimeout < 0 {
		return fmt.Errorf("match.startup_timeout must be non-negative")
	}
	if c.Match.DecisionTimeout < 0 {
		return fmt.Errorf("match.decision_timeout must be non-negative")
	}

	if c.Session.Simulations < 0 {
		return fmt.Errorf("session.simulations must be non-negative")
	}
	if c.Session.Parallelism < 1 {
		return fmt.Errorf("session.parallelism must be at least 1")
	}

	if strings.TrimSpace(c.Agents.First) == "" || strings.TrimSpace(c.Agents.Second) == "" {
		return fmt.Errorf("agents.first and agents.second must be set")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}

	if c.Monitoring.CheckInterval <= 0 {
		return fmt.Errorf("monitoring.check_interval must be positive")
	}
	if c.Monitoring.AlertThreshold <= 0 {
		return fmt.Errorf("monitoring.alert_threshold must be positive")
	}

	return nil
}
