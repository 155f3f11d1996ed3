package subscribers

import (
	"fmt"
	"io"
	"sync"

	"github.com/mitchelldurbincs/Paratroopers/internal/game"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/events"
)

// RenderSubscriber writes a human readable trace of a match: the value grid
// at start, the board after every move and a closing summary.
type RenderSubscriber struct {
	id   string
	out  io.Writer
	opts game.RenderOptions
	mu   sync.Mutex
}

// NewRenderSubscriber creates a subscriber printing to out
func NewRenderSubscriber(id string, out io.Writer, opts game.RenderOptions) *RenderSubscriber {
	return &RenderSubscriber{id: id, out: out, opts: opts}
}

// ID returns the subscriber's unique identifier
func (rs *RenderSubscriber) ID() string {
	return rs.id
}

// InterestedIn returns true for the events that change what is on screen
func (rs *RenderSubscriber) InterestedIn(eventType string) bool {
	switch eventType {
	case events.TypeMatchStarted, events.TypeActionApplied,
		events.TypeMatchEnded, events.TypeMatchAborted:
		return true
	}
	return false
}

// HandleEvent renders the event
func (rs *RenderSubscriber) HandleEvent(event events.Event) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	switch e := event.(type) {
	case *events.MatchStartedEvent:
		fmt.Fprintf(rs.out, "match %s: %d x %d board\n", e.MatchID(), e.Size, e.Size)
		if e.Topology != nil {
			fmt.Fprint(rs.out, game.RenderValues(e.Topology))
		}
	case *events.ActionAppliedEvent:
		fmt.Fprintf(rs.out, "\nmove %d: %s (%s) plays %v in %s\n",
			e.Move, e.Player, e.Agent, e.Action, e.Elapsed)
		if e.State != nil {
			fmt.Fprint(rs.out, game.Render(e.State, rs.opts))
		}
	case *events.MatchEndedEvent:
		result := "draw"
		if e.Winner >= 0 {
			result = fmt.Sprintf("seat %d wins", e.Winner)
		}
		fmt.Fprintf(rs.out, "\nfinal reward A=%d B=%d, %s after %d moves\n",
			e.Rewards[0], e.Rewards[1], result, e.Moves)
	case *events.MatchAbortedEvent:
		fmt.Fprintf(rs.out, "\nmatch aborted: seat %d (%s) failed during %s: %s\n",
			e.Seat, e.Agent, e.Phase, e.Reason)
	}
}
