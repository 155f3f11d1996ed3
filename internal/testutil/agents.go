package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mitchelldurbincs/Paratroopers/internal/agent"
	"github.com/mitchelldurbincs/Paratroopers/internal/game"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
)

var (
	_ agent.Agent       = (*ScriptedAgent)(nil)
	_ agent.Agent       = (*BlockingAgent)(nil)
	_ agent.Initializer = (*SlowInitAgent)(nil)
	_ agent.Agent       = (*ErrorAgent)(nil)
	_ agent.Agent       = (*PanicAgent)(nil)
)

// ScriptedAgent plays a fixed list of actions and then the first legal one.
type ScriptedAgent struct {
	AgentName string
	Script    []core.Action

	mu    sync.Mutex
	next  int
	calls int
	seen  []*game.GameState
}

// NewScriptedAgent creates an agent playing the given wire-form actions
func NewScriptedAgent(name string, actions ...string) *ScriptedAgent {
	script := make([]core.Action, len(actions))
	for i, a := range actions {
		script[i] = core.MustParseAction(a)
	}
	return &ScriptedAgent{AgentName: name, Script: script}
}

func (a *ScriptedAgent) Name() string { return a.AgentName }

func (a *ScriptedAgent) GetAction(_ context.Context, state *game.GameState) (core.Action, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls++
	a.seen = append(a.seen, state)
	if a.next < len(a.Script) {
		action := a.Script[a.next]
		a.next++
		return action, nil
	}
	legal := state.LegalActions()
	if len(legal) == 0 {
		return nil, core.ErrGameOver
	}
	return legal[0], nil
}

// Calls returns how many decisions the agent was asked for
func (a *ScriptedAgent) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Seen returns the states the agent was handed, in order
func (a *ScriptedAgent) Seen() []*game.GameState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*game.GameState(nil), a.seen...)
}

// BlockingAgent ignores its context and blocks every decision until Release
// is called, the way a runaway search would.
type BlockingAgent struct {
	AgentName string

	release  chan struct{}
	once     sync.Once
	started  atomic.Int32
	returned atomic.Int32
}

// NewBlockingAgent creates a blocking agent
func NewBlockingAgent(name string) *BlockingAgent {
	return &BlockingAgent{AgentName: name, release: make(chan struct{})}
}

func (a *BlockingAgent) Name() string { return a.AgentName }

func (a *BlockingAgent) GetAction(_ context.Context, state *game.GameState) (core.Action, error) {
	a.started.Add(1)
	defer a.returned.Add(1)
	<-a.release
	return state.LegalActions()[0], nil
}

// Release unblocks every pending and future call
func (a *BlockingAgent) Release() {
	a.once.Do(func() { close(a.release) })
}

// Started reports how many calls have begun
func (a *BlockingAgent) Started() int { return int(a.started.Load()) }

// Returned reports how many calls have finished
func (a *BlockingAgent) Returned() int { return int(a.returned.Load()) }

// SlowInitAgent wraps another agent with a startup hook that sleeps for
// Delay, or fails with Err when set.
type SlowInitAgent struct {
	agent.Agent
	Delay time.Duration
	Err   error

	inits atomic.Int32
}

func (a *SlowInitAgent) InitState(ctx context.Context, _ *game.GameState) error {
	a.inits.Add(1)
	if a.Err != nil {
		return a.Err
	}
	select {
	case <-time.After(a.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inits reports how many times the startup hook ran
func (a *SlowInitAgent) Inits() int { return int(a.inits.Load()) }

// ErrorAgent fails every decision with Err
type ErrorAgent struct {
	AgentName string
	Err       error
}

func (a *ErrorAgent) Name() string { return a.AgentName }

func (a *ErrorAgent) GetAction(context.Context, *game.GameState) (core.Action, error) {
	return nil, a.Err
}

// PanicAgent panics on every decision
type PanicAgent struct {
	AgentName string
}

func (a *PanicAgent) Name() string { return a.AgentName }

func (a *PanicAgent) GetAction(context.Context, *game.GameState) (core.Action, error) {
	panic(fmt.Sprintf("%s exploded", a.AgentName))
}
