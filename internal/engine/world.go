package engine

import (
	"github.com/talgya/villagesim/internal/agent"
	"github.com/talgya/villagesim/internal/building"
)

// World is the village grid: bounds, agent positions, and buildings.
// Cells are shared; any number of agents may stand on one.
type World struct {
	width, height int

	agents []*agent.Agent
	houses []*building.House
}

// NewWorld creates an empty grid.
func NewWorld(width, height int) *World {
	return &World{width: width, height: height}
}

func (w *World) Width() int  { return w.width }
func (w *World) Height() int { return w.height }

// AddAgent places an agent on the grid, clamping it inside the bounds.
func (w *World) AddAgent(a *agent.Agent) {
	a.X = clamp(a.X, 0, w.width-1)
	a.Y = clamp(a.Y, 0, w.height-1)
	w.agents = append(w.agents, a)
}

// RemoveAgent takes an agent off the grid.
func (w *World) RemoveAgent(a *agent.Agent) {
	for i, other := range w.agents {
		if other == a {
			w.agents = append(w.agents[:i], w.agents[i+1:]...)
			return
		}
	}
}

// MoveAgent moves an agent to the given cell. Out-of-bounds moves are
// rejected and leave the agent where it was.
func (w *World) MoveAgent(a *agent.Agent, x, y int) bool {
	if x < 0 || y < 0 || x >= w.width || y >= w.height {
		return false
	}
	a.X, a.Y = x, y
	return true
}

// AgentsNear returns the living agents within the Chebyshev radius of a
// cell, including any standing on it.
func (w *World) AgentsNear(x, y, radius int) []*agent.Agent {
	var out []*agent.Agent
	for _, a := range w.agents {
		if !a.Alive() {
			continue
		}
		if absInt(a.X-x) <= radius && absInt(a.Y-y) <= radius {
			out = append(out, a)
		}
	}
	return out
}

// Agents returns every agent on the grid, dead or alive. The slice is
// shared; callers must not mutate it.
func (w *World) Agents() []*agent.Agent { return w.agents }

// Houses returns every house in the village.
func (w *World) Houses() []*building.House { return w.houses }

// AddHouse registers a new house.
func (w *World) AddHouse(h *building.House) {
	w.houses = append(w.houses, h)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
