package events

import (
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

type funcEntry struct {
	id        string
	eventType string
	handler   EventHandler
}

// EventBus delivers match events synchronously, in subscription order.
// Handlers run outside the bus lock, so a handler may subscribe or
// unsubscribe while an event is being delivered.
type EventBus struct {
	mu           sync.RWMutex
	subscribers  []Subscriber
	funcHandlers []funcEntry
	nextFuncID   int
	published    map[string]int
	logger       zerolog.Logger
}

var _ Bus = (*EventBus)(nil)

// NewEventBus creates a new event bus instance
func NewEventBus(logger zerolog.Logger) *EventBus {
	return &EventBus{
		published: make(map[string]int),
		logger:    logger.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe adds a subscriber. A subscriber with the same ID is replaced in
// place.
func (eb *EventBus) Subscribe(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	id := subscriber.ID()
	replaced := false
	for i, s := range eb.subscribers {
		if s.ID() == id {
			eb.subscribers[i] = subscriber
			replaced = true
			break
		}
	}
	if !replaced {
		eb.subscribers = append(eb.subscribers, subscriber)
	}
	eb.logger.Debug().
		Str("subscriber_id", id).
		Bool("replaced", replaced).
		Msg("Subscriber added to event bus")
}

// Unsubscribe removes the subscriber or function handler registered under id.
func (eb *EventBus) Unsubscribe(id string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for i, s := range eb.subscribers {
		if s.ID() == id {
			eb.subscribers = append(eb.subscribers[:i:i], eb.subscribers[i+1:]...)
			eb.logger.Debug().Str("subscriber_id", id).Msg("Subscriber removed from event bus")
			return
		}
	}
	for i, f := range eb.funcHandlers {
		if f.id == id {
			eb.funcHandlers = append(eb.funcHandlers[:i:i], eb.funcHandlers[i+1:]...)
			eb.logger.Debug().Str("handler_id", id).Msg("Function handler removed from event bus")
			return
		}
	}
}

// SubscribeFunc adds a handler for one event type and returns an ID that
// Unsubscribe accepts.
func (eb *EventBus) SubscribeFunc(eventType string, handler EventHandler) string {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextFuncID++
	id := eventType + "_func_" + strconv.Itoa(eb.nextFuncID)
	eb.funcHandlers = append(eb.funcHandlers, funcEntry{id: id, eventType: eventType, handler: handler})
	eb.logger.Debug().
		Str("event_type", eventType).
		Str("handler_id", id).
		Msg("Function handler added to event bus")

	return id
}

// Publish sends an event to all interested subscribers, then to the function
// handlers for its type. Parallel sessions share one bus, so handlers must be
// safe for concurrent calls.
func (eb *EventBus) Publish(event Event) {
	eventType := event.Type()

	eb.mu.Lock()
	eb.published[eventType]++
	subs := append([]Subscriber(nil), eb.subscribers...)
	var handlers []funcEntry
	for _, f := range eb.funcHandlers {
		if f.eventType == eventType {
			handlers = append(handlers, f)
		}
	}
	eb.mu.Unlock()

	eb.logger.Trace().
		Str("event_type", eventType).
		Str("match_id", event.MatchID()).
		Time("timestamp", event.Timestamp()).
		Msg("Publishing event")

	for _, s := range subs {
		if s.InterestedIn(eventType) {
			eb.deliver(event, s.ID(), s.HandleEvent)
		}
	}
	for _, f := range handlers {
		eb.deliver(event, f.id, f.handler)
	}
}

// deliver runs one handler, logging a panic instead of letting it reach the
// match driver.
func (eb *EventBus) deliver(event Event, id string, handle EventHandler) {
	defer func() {
		if r := recover(); r != nil {
			eb.logger.Error().
				Str("handler_id", id).
				Str("event_type", event.Type()).
				Str("match_id", event.MatchID()).
				Interface("panic", r).
				Msg("Event handler panicked")
		}
	}()
	handle(event)
}

// Published returns how many events of the given type have been published.
func (eb *EventBus) Published(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return eb.published[eventType]
}

// GetSubscriberCount returns the number of subscribers for debugging
func (eb *EventBus) GetSubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// GetFuncHandlerCount returns the number of function handlers for a specific event type
func (eb *EventBus) GetFuncHandlerCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	n := 0
	for _, f := range eb.funcHandlers {
		if f.eventType == eventType {
			n++
		}
	}
	return n
}
