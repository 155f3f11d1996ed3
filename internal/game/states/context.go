package states

import (
	"time"

	"github.com/rs/zerolog"
)

// MatchContext provides match-specific information to states for making decisions
type MatchContext struct {
	// MatchID uniquely identifies this match
	MatchID string

	// Logger for state-specific logging
	Logger zerolog.Logger

	// Agents holds the agent name seated as each player
	Agents []string

	// StartTime is when PhaseRunning was entered
	StartTime time.Time

	// EndTime is when a terminal phase was entered
	EndTime time.Time

	// Moves is the number of actions applied so far
	Moves int

	// Winner is the winning seat, -1 for a draw or while undecided
	Winner int

	// Draw is set when the match finished with equal rewards
	Draw bool

	// AbortedBy is the seat whose agent caused an abort, -1 otherwise
	AbortedBy int

	// Error holds the cause of a transition to PhaseAborted
	Error error

	// Metadata for custom state data
	Metadata map[string]interface{}
}

// NewMatchContext creates a new match context
func NewMatchContext(matchID string, agents []string, logger zerolog.Logger) *MatchContext {
	return &MatchContext{
		MatchID:   matchID,
		Agents:    agents,
		Logger:    logger.With().Str("match_id", matchID).Logger(),
		Metadata:  make(map[string]interface{}),
		Winner:    -1,
		AbortedBy: -1,
	}
}

// GetElapsedTime returns the time spent running, up to the end if the match is over
func (mc *MatchContext) GetElapsedTime() time.Duration {
	if mc.StartTime.IsZero() {
		return 0
	}
	if !mc.EndTime.IsZero() {
		return mc.EndTime.Sub(mc.StartTime)
	}
	return time.Since(mc.StartTime)
}

// SetMetadata stores custom data for states
func (mc *MatchContext) SetMetadata(key string, value interface{}) {
	mc.Metadata[key] = value
}

// GetMetadata retrieves custom data stored by states
func (mc *MatchContext) GetMetadata(key string) (interface{}, bool) {
	val, exists := mc.Metadata[key]
	return val, exists
}
