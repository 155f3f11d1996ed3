package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/Paratroopers/internal/game/events"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("match_id", event.MatchID()).
		Time("timestamp", event.Timestamp()).
		Logger()

	var logEvent *zerolog.Event
	switch ls.logLevel {
	case zerolog.TraceLevel:
		logEvent = eventLogger.Trace()
	case zerolog.DebugLevel:
		logEvent = eventLogger.Debug()
	case zerolog.InfoLevel:
		logEvent = eventLogger.Info()
	case zerolog.WarnLevel:
		logEvent = eventLogger.Warn()
	case zerolog.ErrorLevel:
		logEvent = eventLogger.Error()
	default:
		logEvent = eventLogger.Info()
	}

	switch e := event.(type) {
	case *events.MatchStartedEvent:
		logEvent.
			Int("board_size", e.Size).
			Strs("agents", e.Agents)
		if e.Topology != nil {
			logEvent.Int("total_value", e.Topology.TotalValue())
		}

	case *events.AgentInitializedEvent:
		logEvent.
			Int("seat", e.Seat).
			Str("agent", e.Agent).
			Dur("elapsed", e.Elapsed)

	case *events.ActionAppliedEvent:
		logEvent.
			Int("seat", e.Seat).
			Str("agent", e.Agent).
			Str("player", e.Player.String()).
			Int("move", e.Move).
			Dur("elapsed", e.Elapsed).
			Ints("rewards", e.Rewards[:])
		if e.Action != nil {
			logEvent.Str("action", e.Action.String())
		}

	case *events.CellsCapturedEvent:
		logEvent.
			Str("player", e.Player.String()).
			Int("origin", e.Origin).
			Ints("cells", e.Cells).
			Int("value", e.Value).
			Int("move", e.Move)

	case *events.MatchEndedEvent:
		logEvent.
			Ints("rewards", e.Rewards[:]).
			Int("winner", e.Winner).
			Int("moves", e.Moves).
			Dur("duration", e.Duration)

	case *events.MatchAbortedEvent:
		logEvent.
			Int("seat", e.Seat).
			Str("agent", e.Agent).
			Str("phase", e.Phase).
			Str("reason", e.Reason).
			Int("moves", e.Moves)

	case *events.StateTransitionEvent:
		logEvent.
			Str("from_phase", e.FromPhase).
			Str("to_phase", e.ToPhase).
			Str("reason", e.Reason)
	}

	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Match event")
}
