package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/Paratroopers/internal/game"
	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
)

// SampleTopology is the 3x3 board with values 1..9 in row-major order
func SampleTopology() *core.Topology {
	return core.MustTopology(3, []int{1, 2, 3, 4, 5, 6, 7, 8, 9})
}

// UniformTopology creates a k x k board where every cell is worth value
func UniformTopology(k, value int) *core.Topology {
	values := make([]int, k*k)
	for i := range values {
		values[i] = value
	}
	return core.MustTopology(k, values)
}

// PlayDeploys applies a deploy on each cell in order, failing the test on
// the first rejected action
func PlayDeploys(t *testing.T, s *game.GameState, cells ...int) *game.GameState {
	t.Helper()
	for _, cell := range cells {
		_, err := s.ApplyInPlace(core.Deploy{Cell: cell})
		require.NoError(t, err, "deploy %d", cell)
	}
	return s
}
