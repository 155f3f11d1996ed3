package sim

import (
	"errors"
	"fmt"
	"time"
)

// ErrAgentTimeout matches every AgentTimeoutError via errors.Is.
var ErrAgentTimeout = errors.New("agent timed out")

// AgentPhase names the agent call that failed.
type AgentPhase string

const (
	PhaseStartup  AgentPhase = "startup"
	PhaseDecision AgentPhase = "decision"
)

// AgentTimeoutError reports an agent that did not answer within its budget.
type AgentTimeoutError struct {
	Seat    int
	Agent   string
	Phase   AgentPhase
	Budget  time.Duration
	Elapsed time.Duration
}

func (e *AgentTimeoutError) Error() string {
	return fmt.Sprintf("seat %d (%s) exceeded %s budget of %s after %s",
		e.Seat, e.Agent, e.Phase, e.Budget, e.Elapsed.Round(time.Microsecond))
}

func (e *AgentTimeoutError) Unwrap() error { return ErrAgentTimeout }

// AbortError records why a match was aborted: a timeout, an agent error or
// panic, or an illegal action.
type AbortError struct {
	Seat  int
	Agent string
	Phase AgentPhase
	Err   error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("match aborted by seat %d (%s) during %s: %v", e.Seat, e.Agent, e.Phase, e.Err)
}

func (e *AbortError) Unwrap() error { return e.Err }

// PanicError wraps a value recovered from a panicking agent call.
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("agent panicked: %v", e.Value)
}
