package game

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
)

// GameState is one position of a match: who owns which cells, the reward each
// player has accumulated, and whose turn it is. Every state carries the
// topology it was created from; states built on different boards are never
// mixed.
type GameState struct {
	topo    *core.Topology
	owned   [core.NumPlayers]core.CellSet
	reward  [core.NumPlayers]int
	current core.Player
}

// NewGameState returns the empty starting position for topo with PlayerA to move.
func NewGameState(topo *core.Topology) *GameState {
	return &GameState{
		topo: topo,
		owned: [core.NumPlayers]core.CellSet{
			core.NewCellSet(topo.Size()),
			core.NewCellSet(topo.Size()),
		},
		current: core.PlayerA,
	}
}

// Topology returns the board this state is played on.
func (s *GameState) Topology() *core.Topology { return s.topo }

// CurrentPlayer returns the player whose turn it is.
func (s *GameState) CurrentPlayer() core.Player { return s.current }

// Reward returns p's accumulated reward.
func (s *GameState) Reward(p core.Player) int { return s.reward[p] }

// Rewards returns both rewards indexed by player.
func (s *GameState) Rewards() [core.NumPlayers]int { return s.reward }

// Owned returns a copy of the cells owned by p.
func (s *GameState) Owned(p core.Player) core.CellSet {
	return s.owned[p].Clone()
}

// Status classifies cell i.
func (s *GameState) Status(i int) core.CellStatus {
	return s.topo.Classify(i, s.owned)
}

// Cells returns a read-only snapshot of every cell's classification in
// row-major order.
func (s *GameState) Cells() []core.CellStatus {
	out := make([]core.CellStatus, s.topo.Size())
	for i := range out {
		out[i] = s.Status(i)
	}
	return out
}

// OccupiedCount returns the number of owned cells.
func (s *GameState) OccupiedCount() int {
	return s.owned[core.PlayerA].Len() + s.owned[core.PlayerB].Len()
}

// FreeCount returns the number of unowned cells.
func (s *GameState) FreeCount() int {
	return s.topo.Size() - s.OccupiedCount()
}

// LegalActions returns one Deploy per free cell in ascending index order.
// Slide is never offered.
func (s *GameState) LegalActions() []core.Action {
	actions := make([]core.Action, 0, s.FreeCount())
	for i := 0; i < s.topo.Size(); i++ {
		if s.Status(i) == core.CellFree {
			actions = append(actions, core.Deploy{Cell: i})
		}
	}
	return actions
}

// IsTerminal reports whether every cell is owned, which is exactly when the
// rewards sum to the board's total value.
func (s *GameState) IsTerminal() bool {
	return s.reward[core.PlayerA]+s.reward[core.PlayerB] == s.topo.TotalValue()
}

// Clone returns a deep copy sharing only the immutable topology.
func (s *GameState) Clone() *GameState {
	return &GameState{
		topo: s.topo,
		owned: [core.NumPlayers]core.CellSet{
			s.owned[core.PlayerA].Clone(),
			s.owned[core.PlayerB].Clone(),
		},
		reward:  s.reward,
		current: s.current,
	}
}

// Equal compares ownership only; rewards and the player to move are ignored.
// Rewards are a function of ownership (see RecomputeRewards), so two states
// reached by legal play that compare equal also hold equal rewards. States on
// incompatible topologies are never equal.
func (s *GameState) Equal(other *GameState) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	if !s.topo.Compatible(other.topo) {
		return false
	}
	return s.owned[core.PlayerA].Equal(other.owned[core.PlayerA]) &&
		s.owned[core.PlayerB].Equal(other.owned[core.PlayerB])
}

// Hash is consistent with Equal: it covers the ownership sets only.
func (s *GameState) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for p := core.PlayerA; p <= core.PlayerB; p++ {
		for _, w := range s.owned[p].Words() {
			binary.LittleEndian.PutUint64(buf[:], w)
			h.Write(buf[:])
		}
		h.Write([]byte{0xff})
	}
	return h.Sum64()
}

// RecomputeRewards derives both rewards from ownership and cell values.
func (s *GameState) RecomputeRewards() [core.NumPlayers]int {
	var out [core.NumPlayers]int
	for p := core.PlayerA; p <= core.PlayerB; p++ {
		for _, i := range s.owned[p].Indices() {
			out[p] += s.topo.Value(i)
		}
	}
	return out
}

// String renders the ownership grid without color.
func (s *GameState) String() string {
	return Render(s, RenderOptions{})
}
