package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
)

// ANSI color codes used by the text renderer.
const (
	ColorReset = "\033[0m"
	ColorRed   = "\033[31m"
	ColorBlue  = "\033[34m"
	ColorGray  = "\033[90m"
)

var playerColors = [core.NumPlayers]string{ColorRed, ColorBlue}

// RenderOptions controls the text board output.
type RenderOptions struct {
	// Color wraps owned cells in ANSI color codes.
	Color bool
	// ShowValues prints the cell value next to the owner mark.
	ShowValues bool
}

// Render returns a text grid of cell ownership: '.' for free cells and the
// owner's letter otherwise, followed by a line with both rewards.
func Render(s *GameState, opts RenderOptions) string {
	topo := s.Topology()
	k := topo.K()
	width := cellWidth(topo, opts)

	var sb strings.Builder
	sb.Grow((k*(width+1) + 8) * (k + 3))

	writeHeader(&sb, k, width)
	for row := 0; row < k; row++ {
		fmt.Fprintf(&sb, "%2d |", row)
		for col := 0; col < k; col++ {
			i := core.NewCoordinate(row, col).ToIndex(k)
			sb.WriteByte(' ')
			writeCell(&sb, s, i, width, opts)
		}
		sb.WriteString(" |\n")
	}

	fmt.Fprintf(&sb, "reward A=%d B=%d, to move: %s\n",
		s.Reward(core.PlayerA), s.Reward(core.PlayerB), s.CurrentPlayer())
	return sb.String()
}

// RenderValues returns a text grid of the cell values of topo.
func RenderValues(topo *core.Topology) string {
	k := topo.K()
	width := len(strconv.Itoa(maxValue(topo)))

	var sb strings.Builder
	writeHeader(&sb, k, width)
	for row := 0; row < k; row++ {
		fmt.Fprintf(&sb, "%2d |", row)
		for col := 0; col < k; col++ {
			fmt.Fprintf(&sb, " %*d", width, topo.Value(core.NewCoordinate(row, col).ToIndex(k)))
		}
		sb.WriteString(" |\n")
	}
	fmt.Fprintf(&sb, "total value: %d\n", topo.TotalValue())
	return sb.String()
}

func writeHeader(sb *strings.Builder, k, width int) {
	sb.WriteString("    ")
	for col := 0; col < k; col++ {
		fmt.Fprintf(sb, " %*d", width, col)
	}
	sb.WriteString("\n")
}

func writeCell(sb *strings.Builder, s *GameState, i, width int, opts RenderOptions) {
	var mark string
	status := s.Status(i)
	owner, owned := status.Owner()
	if owned {
		mark = owner.String()
	} else {
		mark = "."
	}
	if opts.ShowValues {
		mark += strconv.Itoa(s.Topology().Value(i))
	}
	pad := width - len(mark)
	if pad > 0 {
		sb.WriteString(strings.Repeat(" ", pad))
	}

	switch {
	case !opts.Color:
		sb.WriteString(mark)
	case owned:
		sb.WriteString(playerColors[owner])
		sb.WriteString(mark)
		sb.WriteString(ColorReset)
	default:
		sb.WriteString(ColorGray)
		sb.WriteString(mark)
		sb.WriteString(ColorReset)
	}
}

func cellWidth(topo *core.Topology, opts RenderOptions) int {
	w := len(strconv.Itoa(topo.K() - 1))
	if opts.ShowValues {
		if vw := 1 + len(strconv.Itoa(maxValue(topo))); vw > w {
			w = vw
		}
	}
	return w
}

func maxValue(topo *core.Topology) int {
	m := 0
	for i := 0; i < topo.Size(); i++ {
		if v := topo.Value(i); v > m {
			m = v
		}
	}
	return m
}
