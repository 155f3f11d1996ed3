package states

import "fmt"

// GamePhase represents the lifecycle phase of a single match
type GamePhase int

const (
	// PhaseInit - agents are being initialized against the empty board
	PhaseInit GamePhase = iota

	// PhaseRunning - agents alternate decisions until the board is full
	PhaseRunning

	// PhaseTerminal - every cell is owned and rewards are final
	PhaseTerminal

	// PhaseAborted - an agent timed out or failed; the match yields no reward
	PhaseAborted

	// PhaseReset - clearing a finished match so the machine can be reused
	PhaseReset
)

// String returns the string representation of a GamePhase
func (p GamePhase) String() string {
	switch p {
	case PhaseInit:
		return "Init"
	case PhaseRunning:
		return "Running"
	case PhaseTerminal:
		return "Terminal"
	case PhaseAborted:
		return "Aborted"
	case PhaseReset:
		return "Reset"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if the match is over, completed or not
func (p GamePhase) IsTerminal() bool {
	return p == PhaseTerminal || p == PhaseAborted
}

// CanReceiveActions returns true if agent decisions are applied in this phase
func (p GamePhase) CanReceiveActions() bool {
	return p == PhaseRunning
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p GamePhase) AllowedTransitions() []GamePhase {
	switch p {
	case PhaseInit:
		return []GamePhase{PhaseRunning, PhaseAborted}
	case PhaseRunning:
		return []GamePhase{PhaseTerminal, PhaseAborted}
	case PhaseTerminal:
		return []GamePhase{PhaseReset}
	case PhaseAborted:
		return []GamePhase{PhaseReset}
	case PhaseReset:
		return []GamePhase{PhaseInit}
	default:
		return []GamePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string to a GamePhase
func ParsePhase(s string) (GamePhase, error) {
	switch s {
	case "Init":
		return PhaseInit, nil
	case "Running":
		return PhaseRunning, nil
	case "Terminal":
		return PhaseTerminal, nil
	case "Aborted":
		return PhaseAborted, nil
	case "Reset":
		return PhaseReset, nil
	default:
		return PhaseInit, fmt.Errorf("unknown phase %q", s)
	}
}
