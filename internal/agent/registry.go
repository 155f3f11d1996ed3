package agent

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/Paratroopers/internal/game"
)

// ErrUnknownAgent is returned by New for names with no registered factory.
var ErrUnknownAgent = errors.New("unknown agent")

// Options carries what a factory may need to build an agent.
type Options struct {
	// Seed for randomized agents. Two agents built with the same seed make
	// the same choices.
	Seed uint64
	// In and Out are used by interactive agents; nil means stdin/stdout.
	In  io.Reader
	Out io.Writer
	// Color enables ANSI colors in boards printed by interactive agents.
	Color bool
}

// Factory builds a named agent.
type Factory func(name string, opts Options) (Agent, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		"random": func(name string, opts Options) (Agent, error) {
			return NewRandomAgent(name, rand.New(rand.NewSource(opts.Seed))), nil
		},
		"greedy": func(name string, _ Options) (Agent, error) {
			return NewGreedyAgent(name, nil), nil
		},
		"greedy-share": func(name string, _ Options) (Agent, error) {
			return NewGreedyAgent(name, game.ShareOfReward), nil
		},
		"greedy-fill": func(name string, opts Options) (Agent, error) {
			return NewGreedyAgent(name, game.RandomFillShare(rand.New(rand.NewSource(opts.Seed)))), nil
		},
		"keyboard": func(name string, opts Options) (Agent, error) {
			in, out := opts.In, opts.Out
			if in == nil {
				in = os.Stdin
			}
			if out == nil {
				out = os.Stdout
			}
			return NewKeyboardAgent(name, in, out, game.RenderOptions{Color: opts.Color}), nil
		},
	}
)

// Register adds or replaces the factory for name.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = factory
}

// New builds the agent registered under name (case-insensitive).
func New(name string, opts Options) (Agent, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	registryMu.RLock()
	factory, ok := registry[key]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownAgent, name, strings.Join(Names(), ", "))
	}
	return factory(key, opts)
}

// Names lists the registered agent names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
