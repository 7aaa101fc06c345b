package agent

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/villagesim/internal/clock"
	"github.com/talgya/villagesim/internal/resource"
	"github.com/talgya/villagesim/internal/storage"
)

type stubClock struct {
	hour, day int
	season    clock.Season
	weather   clock.Weather
	tph       int
}

func (c *stubClock) Hour() int              { return c.hour }
func (c *stubClock) TotalDay() int          { return c.day }
func (c *stubClock) Season() clock.Season   { return c.season }
func (c *stubClock) Weather() clock.Weather { return c.weather }
func (c *stubClock) TicksPerHour() int      { return c.tph }

type stubGrid struct {
	w, h   int
	agents []*Agent
}

func (g *stubGrid) Width() int  { return g.w }
func (g *stubGrid) Height() int { return g.h }

func (g *stubGrid) MoveAgent(a *Agent, x, y int) bool {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return false
	}
	a.X, a.Y = x, y
	return true
}

func (g *stubGrid) AgentsNear(x, y, radius int) []*Agent {
	var out []*Agent
	for _, a := range g.agents {
		dx, dy := a.X-x, a.Y-y
		if dx < 0 {
			dx = -dx
		}
		if dy < 0 {
			dy = -dy
		}
		if dx <= radius && dy <= radius {
			out = append(out, a)
		}
	}
	return out
}

func newTestContext() (*Context, *stubGrid) {
	grid := &stubGrid{w: 20, h: 20}
	ctx := &Context{
		Clock:     &stubClock{hour: 10, tph: 1},
		Grid:      grid,
		Resources: resource.NewManager(1),
		Storage:   storage.NewManager(),
	}
	return ctx, grid
}

func TestNeedsAndHealthStayInBounds(t *testing.T) {
	ctx, _ := newTestContext()
	a := New(rand.New(rand.NewSource(1)))

	// Nothing to eat or drink anywhere. Run long enough for every need
	// to bottom out and health to drain.
	for _i := 0; _i < 5000; _i++ {
		a.Step(ctx, 1.0)
		for n, v := range a.Needs {
			require.GreaterOrEqual(t, v, 0.0, "need %s below 0", n)
			require.LessOrEqual(t, v, 100.0, "need %s above 100", n)
		}
		require.GreaterOrEqual(t, a.Health, 0.0)
		require.LessOrEqual(t, a.Health, 100.0)
	}
	assert.False(t, a.Alive(), "agent survived with nothing to consume")
}

func TestLowFoodTriggersSurvivalOverride(t *testing.T) {
	ctx, _ := newTestContext()
	a := New(rand.New(rand.NewSource(2)))
	a.Needs[NeedFood] = 15.0

	a.Step(ctx, 1.0)
	assert.Equal(t, ActionFindFood, a.Action, "lowest need under threshold must force find_food")
}

func TestFindFoodGathersAndEats(t *testing.T) {
	ctx, _ := newTestContext()
	a := New(rand.New(rand.NewSource(3)))
	a.X, a.Y = 5, 5
	a.Needs[NeedFood] = 15.0

	ctx.Resources.Add(resource.NewNode(resource.FoodBerry, 5, 5, 50, 50, 0.8))

	ev := a.Step(ctx, 1.0)
	require.NotNil(t, ev)
	assert.Equal(t, "gathered_food", ev.Action)
	assert.Greater(t, a.Needs[NeedFood], 15.0, "eating must raise the food need")
}

func TestFindWaterDrinks(t *testing.T) {
	ctx, _ := newTestContext()
	a := New(rand.New(rand.NewSource(4)))
	a.X, a.Y = 3, 3
	a.Needs[NeedWater] = 10.0

	ctx.Resources.Add(resource.NewNode(resource.Water, 3, 3, 500, 500, 1.0))

	ev := a.Step(ctx, 1.0)
	require.NotNil(t, ev)
	assert.Equal(t, "gathered_water", ev.Action)
	assert.InDelta(t, 10.0-2.0+consumePortion*waterEffectiveness, a.Needs[NeedWater], 1.0)
}

func TestGreedyMovementDiagonalFirst(t *testing.T) {
	ctx, _ := newTestContext()
	a := New(rand.New(rand.NewSource(5)))
	a.X, a.Y = 0, 0

	arrived := a.MoveToward(ctx, 3, 2)
	assert.False(t, arrived)
	assert.Equal(t, 1, a.X)
	assert.Equal(t, 1, a.Y, "diagonal step moves both axes at once")

	for _i := 0; _i < 10; _i++ {
		if a.MoveToward(ctx, 3, 2) {
			break
		}
	}
	assert.Equal(t, 3, a.X)
	assert.Equal(t, 2, a.Y)
}

func TestGoHomeWithoutHomeSelfCompletes(t *testing.T) {
	ctx, _ := newTestContext()
	a := New(rand.New(rand.NewSource(6)))
	a.SetAction(ActionGoHome, Target{})

	a.Step(ctx, 1.0)
	assert.Equal(t, 1.0, a.Progress, "no resolvable target must self-complete")
}

func TestSleepCycle(t *testing.T) {
	ctx, _ := newTestContext()
	a := New(rand.New(rand.NewSource(7)))
	a.SetHome(4, 4)
	a.X, a.Y = 4, 4
	a.Needs[NeedRest] = 25.0
	// Keep other needs high so rest stays the lowest.
	a.Needs[NeedFood] = 100
	a.Needs[NeedWater] = 100

	a.Step(ctx, 1.0)
	require.Equal(t, ActionSleep, a.Action, "tired agent at home starts sleeping")

	before := a.Needs[NeedRest]
	a.Step(ctx, 1.0)
	assert.InDelta(t, before+restRecoveryPerHour, a.Needs[NeedRest], 1e-9)

	a.Needs[NeedRest] = 96.0
	a.Step(ctx, 1.0) // marks the sleep complete
	a.Needs[NeedFood] = 100
	a.Needs[NeedWater] = 100
	a.Step(ctx, 1.0)
	assert.NotEqual(t, ActionSleep, a.Action, "well rested agent wakes up")
}

func TestShelterFrozenAtHome(t *testing.T) {
	ctx, _ := newTestContext()
	a := New(rand.New(rand.NewSource(8)))
	a.SetHome(2, 2)
	a.X, a.Y = 2, 2
	a.Needs[NeedShelter] = 60.0

	a.updateNeeds(ctx, 1.0)
	assert.Equal(t, 60.0, a.Needs[NeedShelter])

	a.X = 3
	a.updateNeeds(ctx, 1.0)
	assert.InDelta(t, 59.5, a.Needs[NeedShelter], 1e-9)
}

func TestSocializeWithNeighbor(t *testing.T) {
	ctx, grid := newTestContext()
	a := New(rand.New(rand.NewSource(9)))
	b := New(rand.New(rand.NewSource(10)))
	a.X, a.Y = 5, 5
	b.X, b.Y = 6, 5
	grid.agents = []*Agent{a, b}

	a.Needs[NeedSocial] = 20.0
	a.SetAction(ActionSocialize, Target{})
	ev := a.progressAction(ctx, 1.0)

	require.NotNil(t, ev)
	assert.Equal(t, "socialized", ev.Action)
	assert.InDelta(t, 40.0, a.Needs[NeedSocial], 1e-9)
	assert.Contains(t, a.Relationships, b.ID)
}

func TestSkillImprovementConverges(t *testing.T) {
	a := New(rand.New(rand.NewSource(11)))
	a.Skills[SkillFarming] = 0.2

	prev := a.Skills[SkillFarming]
	for _i := 0; _i < 10000; _i++ {
		a.ImproveSkill(SkillFarming, 0.01)
		cur := a.Skills[SkillFarming]
		require.GreaterOrEqual(t, cur, prev)
		require.LessOrEqual(t, cur, 1.0)
		prev = cur
	}
	assert.InDelta(t, 1.0, a.Skills[SkillFarming], 1e-6)
}

func TestInventoryCapacity(t *testing.T) {
	a := New(rand.New(rand.NewSource(12)))
	a.Capacity = 50

	assert.Equal(t, 50.0, a.AddToInventory(resource.Wood, 80))
	assert.Equal(t, 0.0, a.AddToInventory(resource.Stone, 5), "full pack takes nothing")
	assert.Equal(t, 50.0, a.RemoveFromInventory(resource.Wood, 100))
	assert.NotContains(t, a.Inventory, resource.Wood)
}

func TestCriticalNeedsDrainHealth(t *testing.T) {
	ctx, _ := newTestContext()
	a := New(rand.New(rand.NewSource(13)))
	a.Needs[NeedFood] = 10.0
	a.Needs[NeedWater] = 10.0

	before := a.Health
	a.updateHealth(ctx, 1.0)
	assert.InDelta(t, before-1.0, a.Health, 1e-9, "two critical needs cost 1.0 health per hour")

	for n := range a.Needs {
		a.Needs[n] = 80.0
	}
	a.Health = 90.0
	a.updateHealth(ctx, 1.0)
	assert.InDelta(t, 90.2, a.Health, 1e-9, "all needs satisfied regenerates health")
}
