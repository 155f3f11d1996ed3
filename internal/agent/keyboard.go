package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/Paratroopers/internal/game"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
)

// KeyboardAgent asks a human for each move. It accepts the wire form ("D7")
// or a "row col" pair and asks again until the input names a free cell.
type KeyboardAgent struct {
	name string
	in   *bufio.Reader
	out  io.Writer
	opts game.RenderOptions
}

// NewKeyboardAgent creates an agent reading moves from in and printing the
// board and prompts to out. Moves are read one line at a time, so agents
// sharing one *bufio.Reader never consume each other's input; any other
// reader is wrapped.
func NewKeyboardAgent(name string, in io.Reader, out io.Writer, opts game.RenderOptions) *KeyboardAgent {
	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	return &KeyboardAgent{
		name: name,
		in:   br,
		out:  out,
		opts: opts,
	}
}

func (a *KeyboardAgent) Name() string { return a.name }

// InitState shows the cell values before the first move.
func (a *KeyboardAgent) InitState(ctx context.Context, state *game.GameState) error {
	fmt.Fprint(a.out, game.RenderValues(state.Topology()))
	return ctx.Err()
}

func (a *KeyboardAgent) GetAction(ctx context.Context, state *game.GameState) (core.Action, error) {
	fmt.Fprint(a.out, game.Render(state, a.opts))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fmt.Fprintf(a.out, "player %s move (D<cell> or row col): ", state.CurrentPlayer())
		line, err := a.readLine()
		if err != nil {
			return nil, err
		}

		action, err := parseKeyboardMove(line, state)
		if err != nil {
			fmt.Fprintf(a.out, "invalid move: %v\n", err)
			continue
		}
		return action, nil
	}
}

// readLine returns the next line without its terminator. A final line with
// no newline still counts; after that the input is exhausted.
func (a *KeyboardAgent) readLine() (string, error) {
	line, err := a.in.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", io.ErrUnexpectedEOF
		}
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func parseKeyboardMove(line string, state *game.GameState) (core.Action, error) {
	topo := state.Topology()

	var cell int
	if fields := strings.Fields(line); len(fields) == 2 {
		row, errRow := strconv.Atoi(fields[0])
		col, errCol := strconv.Atoi(fields[1])
		if errRow != nil || errCol != nil {
			return nil, fmt.Errorf("%w: %q", core.ErrMalformedAction, line)
		}
		idx, ok := topo.Index(core.NewCoordinate(row, col))
		if !ok {
			return nil, fmt.Errorf("%w: row %d col %d", core.ErrCellOutOfBounds, row, col)
		}
		cell = idx
	} else {
		action, err := core.ParseAction(line)
		if err != nil {
			return nil, err
		}
		deploy, ok := action.(core.Deploy)
		if !ok {
			return nil, fmt.Errorf("%w: %v", core.ErrUnsupportedAction, action)
		}
		cell = deploy.Cell
	}

	switch state.Status(cell) {
	case core.CellFree:
		return core.Deploy{Cell: cell}, nil
	case core.CellOutOfBounds:
		return nil, fmt.Errorf("%w: %d", core.ErrCellOutOfBounds, cell)
	default:
		return nil, fmt.Errorf("%w: %d", core.ErrCellOccupied, cell)
	}
}
