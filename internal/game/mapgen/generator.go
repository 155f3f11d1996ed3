package mapgen

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
)

// MapConfig holds configuration for board value generation
type MapConfig struct {
	Size     int
	MinValue int
	MaxValue int // inclusive
}

// DefaultMapConfig draws each cell value uniformly from [1, K²].
func DefaultMapConfig(k int) MapConfig {
	return MapConfig{
		Size:     k,
		MinValue: 1,
		MaxValue: k * k,
	}
}

// Validate checks that the config can produce a valid topology.
func (c MapConfig) Validate() error {
	if c.Size < 1 {
		return fmt.Errorf("%w: size must be at least 1, got %d", core.ErrInvalidTopology, c.Size)
	}
	if c.MinValue < 1 {
		return fmt.Errorf("%w: min value must be positive, got %d", core.ErrInvalidTopology, c.MinValue)
	}
	if c.MaxValue < c.MinValue {
		return fmt.Errorf("%w: max value %d below min value %d", core.ErrInvalidTopology, c.MaxValue, c.MinValue)
	}
	return nil
}

// Generator handles board generation with deterministic RNG
type Generator struct {
	config MapConfig
	rng    *rand.Rand
}

// NewGenerator creates a new board generator
func NewGenerator(config MapConfig, rng *rand.Rand) *Generator {
	return &Generator{
		config: config,
		rng:    rng,
	}
}

// GenerateValues returns K² row-major cell values.
func (g *Generator) GenerateValues() ([]int, error) {
	if err := g.config.Validate(); err != nil {
		return nil, err
	}
	span := g.config.MaxValue - g.config.MinValue + 1
	values := make([]int, g.config.Size*g.config.Size)
	for i := range values {
		values[i] = g.config.MinValue + g.rng.Intn(span)
	}
	return values, nil
}

// GenerateTopology draws values and builds the board from them.
func (g *Generator) GenerateTopology() (*core.Topology, error) {
	values, err := g.GenerateValues()
	if err != nil {
		return nil, err
	}
	return core.NewTopology(g.config.Size, values)
}
