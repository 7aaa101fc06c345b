package agent

import (
	"github.com/talgya/villagesim/internal/building"
	"github.com/talgya/villagesim/internal/clock"
	"github.com/talgya/villagesim/internal/resource"
	"github.com/talgya/villagesim/internal/storage"
	"github.com/talgya/villagesim/internal/threat"
)

// Clock is the read-only view of simulated time that agents and
// occupations need.
type Clock interface {
	Hour() int
	TotalDay() int
	Season() clock.Season
	Weather() clock.Weather
	TicksPerHour() int
}

// Grid is the spatial oracle. Movement goes through it so the world can
// enforce bounds; there is no pathfinding behind it.
type Grid interface {
	Width() int
	Height() int
	MoveAgent(a *Agent, x, y int) bool
	AgentsNear(x, y, radius int) []*Agent
}

// Buildings exposes the village's structures to occupations that build,
// repair, or shelter in them.
type Buildings interface {
	Houses() []*building.House
	AddHouse(h *building.House)
}

// Context bundles everything an agent touches during a step. It is built
// once by the world and shared by every agent; all access is from the
// single-threaded tick loop.
type Context struct {
	Clock     Clock
	Grid      Grid
	Resources *resource.Manager
	Storage   *storage.Manager
	Buildings Buildings
	Threats   *threat.Manager
}
