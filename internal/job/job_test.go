package job

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/villagesim/internal/agent"
	"github.com/talgya/villagesim/internal/building"
	"github.com/talgya/villagesim/internal/clock"
	"github.com/talgya/villagesim/internal/resource"
	"github.com/talgya/villagesim/internal/storage"
	"github.com/talgya/villagesim/internal/threat"
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
	agents []*agent.Agent
}

func (g *stubGrid) Width() int  { return g.w }
func (g *stubGrid) Height() int { return g.h }

func (g *stubGrid) MoveAgent(a *agent.Agent, x, y int) bool {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return false
	}
	a.X, a.Y = x, y
	return true
}

func (g *stubGrid) AgentsNear(x, y, radius int) []*agent.Agent {
	var out []*agent.Agent
	for _, a := range g.agents {
		if absInt(a.X-x) <= radius && absInt(a.Y-y) <= radius {
			out = append(out, a)
		}
	}
	return out
}

type stubBuildings struct {
	houses []*building.House
}

func (b *stubBuildings) Houses() []*building.House  { return b.houses }
func (b *stubBuildings) AddHouse(h *building.House) { b.houses = append(b.houses, h) }

func newTestContext(season clock.Season) (*agent.Context, *stubGrid, *stubBuildings) {
	grid := &stubGrid{w: 30, h: 30}
	b := &stubBuildings{}
	ctx := &agent.Context{
		Clock:     &stubClock{hour: 10, tph: 1, season: season},
		Grid:      grid,
		Resources: resource.NewManager(1),
		Storage:   storage.NewManager(),
		Buildings: b,
		Threats:   threat.NewManager(30, 30, 1),
	}
	return ctx, grid, b
}

func TestAssignRemoveSkillRoundTrip(t *testing.T) {
	ctx, _, _ := newTestContext(clock.Spring)
	a := agent.New(rand.New(rand.NewSource(1)))

	before := make(map[agent.Skill]float64, len(a.Skills))
	for s, v := range a.Skills {
		before[s] = v
	}

	j := NewFarmer(rand.New(rand.NewSource(2)))
	Assign(a, j, ctx)
	assert.InDelta(t, before[agent.SkillFarming]*1.5, a.Skills[agent.SkillFarming], 1e-12)
	assert.InDelta(t, before[agent.SkillWoodcutting]*1.2, a.Skills[agent.SkillWoodcutting], 1e-12)

	Remove(a, ctx)
	require.Nil(t, a.Occupation)
	for s, v := range before {
		assert.InDelta(t, v, a.Skills[s], 1e-12, "skill %s not restored", s)
	}
}

func TestReassignReversesPreviousJobFirst(t *testing.T) {
	ctx, _, _ := newTestContext(clock.Spring)
	a := agent.New(rand.New(rand.NewSource(3)))
	before := a.Skills[agent.SkillFarming]

	Assign(a, NewFarmer(rand.New(rand.NewSource(4))), ctx)
	Assign(a, NewGuard(rand.New(rand.NewSource(5))), ctx)
	Remove(a, ctx)

	assert.InDelta(t, before, a.Skills[agent.SkillFarming], 1e-12,
		"stacked assignment must not leave a residual modifier")
}

func TestRemoveFlushesCarriedInventory(t *testing.T) {
	ctx, _, _ := newTestContext(clock.Summer)
	a := agent.New(rand.New(rand.NewSource(6)))

	w := NewWoodcutter(rand.New(rand.NewSource(7)))
	Assign(a, w, ctx)
	w.Carried = 35.0

	Remove(a, ctx)
	assert.Equal(t, 35.0,
		ctx.Resources.VillageAmount(resource.Wood)+ctx.Storage.TotalAmount(resource.Wood),
		"carried wood must land in the village economy, not vanish")
	assert.Equal(t, 0.0, w.Carried)
}

func TestWoodcutterChopsAndDelivers(t *testing.T) {
	ctx, _, _ := newTestContext(clock.Summer)
	a := agent.New(rand.New(rand.NewSource(8)))
	a.X, a.Y = 10, 10

	ctx.Resources.Add(resource.NewNode(resource.Tree, 11, 10, 100, 100, 0.5))

	w := NewWoodcutter(rand.New(rand.NewSource(9)))
	Assign(a, w, ctx)

	w.DecideAction(a, ctx)
	require.Equal(t, agent.ActionChopWood, a.Action)

	var chopped bool
	for _i := 0; _i < 60; _i++ {
		if ev := w.ProgressAction(a, ctx, 1.0); ev != nil && ev.Action == "chopped_wood" {
			chopped = true
			break
		}
		if a.Progress >= 1.0 {
			a.Progress = 0
		}
	}
	require.True(t, chopped)
	assert.Greater(t, w.Carried, 0.0)

	// Force a delivery and confirm the economy receives it.
	carried := w.Carried
	a.SetAction(agent.ActionDeliverWood, dropoffTarget(a, ctx, resource.Wood))
	for _i := 0; _i < 60; _i++ {
		if ev := w.ProgressAction(a, ctx, 1.0); ev != nil && ev.Action == "deposited_wood" {
			break
		}
	}
	total := ctx.Resources.VillageAmount(resource.Wood) + ctx.Storage.TotalAmount(resource.Wood)
	assert.InDelta(t, carried, total, 1e-9)
}

func TestFarmerCropLifecycle(t *testing.T) {
	ctx, _, _ := newTestContext(clock.Spring)
	a := agent.New(rand.New(rand.NewSource(10)))
	a.X, a.Y = 15, 15

	// A water node nearby makes the neighborhood farmable.
	ctx.Resources.Add(resource.NewNode(resource.Water, 16, 15, 500, 500, 1.0))

	f := NewFarmer(rand.New(rand.NewSource(11)))
	Assign(a, f, ctx)

	f.DecideAction(a, ctx)
	require.Equal(t, agent.ActionPlantCrop, a.Action, "spring on an empty field means planting")

	var planted bool
	for _i := 0; _i < 40; _i++ {
		if ev := f.ProgressAction(a, ctx, 1.0); ev != nil && ev.Action == "planted_crop" {
			planted = true
			break
		}
	}
	require.True(t, planted)
	require.Len(t, f.Crops, 1)

	// Grow the crop to maturity under good conditions.
	for _i := 0; _i < 200; _i++ {
		f.GrowCrops(clock.Spring, clock.WeatherRain)
	}
	for _, c := range f.Crops {
		require.Equal(t, 1.0, c.Growth)
	}

	f.DecideAction(a, ctx)
	require.Equal(t, agent.ActionHarvestCrop, a.Action)

	var harvested bool
	for _i := 0; _i < 40; _i++ {
		if ev := f.ProgressAction(a, ctx, 1.0); ev != nil && ev.Action == "harvested_crop" {
			harvested = true
			break
		}
	}
	require.True(t, harvested)
	assert.Empty(t, f.Crops)
	total := ctx.Resources.VillageAmount(resource.FoodWheat) + ctx.Storage.TotalAmount(resource.FoodWheat)
	assert.Greater(t, total, 0.0, "harvest must enter the village economy")
}

func TestBlacksmithSmeltsIngot(t *testing.T) {
	ctx, _, _ := newTestContext(clock.Summer)
	a := agent.New(rand.New(rand.NewSource(12)))
	a.X, a.Y = 15, 15
	a.SetHome(15, 15)

	ctx.Resources.AddToVillageStorage(resource.IronOre, 10)
	ctx.Resources.AddToVillageStorage(resource.Wood, 50)

	b := NewBlacksmith(rand.New(rand.NewSource(13)))
	Assign(a, b, ctx)

	var crafted bool
	for _i := 0; _i < 300; _i++ {
		if a.Action == agent.ActionNone || a.Progress >= 1.0 {
			a.Progress = 0
			b.DecideAction(a, ctx)
		}
		if ev := b.ProgressAction(a, ctx, 1.0); ev != nil && ev.Action == "crafted_item" {
			require.Equal(t, "iron_ingot", ev.Fields["item"])
			crafted = true
			break
		}
	}
	require.True(t, crafted)
	assert.Less(t, ctx.Resources.VillageAmount(resource.IronOre), 10.0, "smelting consumes ore")
	assert.Greater(t, ctx.Resources.VillageAmount(resource.IronIngot)+ctx.Storage.TotalAmount(resource.IronIngot), 0.0)
}

func TestBlacksmithCraftFailsWhenMaterialsVanish(t *testing.T) {
	ctx, _, _ := newTestContext(clock.Summer)
	a := agent.New(rand.New(rand.NewSource(14)))
	a.X, a.Y = 15, 15
	a.SetHome(15, 15)

	ctx.Resources.AddToVillageStorage(resource.IronOre, 2)
	ctx.Resources.AddToVillageStorage(resource.Wood, 50)

	b := NewBlacksmith(rand.New(rand.NewSource(15)))
	Assign(a, b, ctx)
	b.DecideAction(a, ctx)
	require.Equal(t, agent.ActionFuelForge, a.Action, "a cold forge gets fueled first")

	// Fuel the forge until the next decision starts the smelt, then steal
	// the ore mid-project.
	for _i := 0; _i < 40; _i++ {
		if a.Action == agent.ActionCraftItem {
			break
		}
		if a.Action == agent.ActionNone || a.Progress >= 1.0 {
			a.Progress = 0
			b.DecideAction(a, ctx)
		}
		b.ProgressAction(a, ctx, 1.0)
	}
	require.Equal(t, agent.ActionCraftItem, a.Action)
	ctx.Resources.TakeFromVillageStorage(resource.IronOre, 2)

	var failed bool
	for _i := 0; _i < 100; _i++ {
		if ev := b.ProgressAction(a, ctx, 1.0); ev != nil && ev.Action == "craft_failed" {
			assert.Equal(t, "iron_ore", ev.Fields["missing"])
			failed = true
			break
		}
		if a.Progress >= 1.0 {
			break
		}
	}
	assert.True(t, failed, "completion without materials must abort with a failure event")
}

func TestBuilderRepairsDamagedFacility(t *testing.T) {
	ctx, _, _ := newTestContext(clock.Summer)
	ctx.Clock.(*stubClock).day = 12
	a := agent.New(rand.New(rand.NewSource(24)))
	a.X, a.Y = 15, 15

	f := storage.NewWarehouse(16, 15)
	f.Damage(50) // well under the repair threshold
	ctx.Storage.AddFacility(f)
	ctx.Resources.AddToVillageStorage(resource.Wood, 10)

	b := NewBuilder(rand.New(rand.NewSource(25)))
	Assign(a, b, ctx)

	b.DecideAction(a, ctx)
	require.Equal(t, agent.ActionRepair, a.Action)

	var repaired bool
	for _i := 0; _i < 30; _i++ {
		if ev := b.ProgressAction(a, ctx, 1.0); ev != nil && ev.Action == "repaired_structure" {
			repaired = true
			break
		}
	}
	require.True(t, repaired)
	assert.Equal(t, 1, b.RepairsDone)
	assert.Greater(t, f.Condition, 50.0)
	assert.Equal(t, 12, f.LastRepair, "repair stamps the current day")
}

func TestGuardDefeatsThreat(t *testing.T) {
	ctx, _, _ := newTestContext(clock.Summer)
	a := agent.New(rand.New(rand.NewSource(16)))
	a.X, a.Y = 15, 15
	a.Skills[agent.SkillCombat] = 0.9

	th := ctx.Threats.Spawn(threat.VillageState{Population: 10})
	th.X, th.Y = 16, 15
	th.Aggression = 1.0
	th.Health = 5.0 // one good hit

	g := NewGuard(rand.New(rand.NewSource(17)))
	Assign(a, g, ctx)

	g.DecideAction(a, ctx)
	require.Equal(t, agent.ActionEngageThreat, a.Action)

	var defeated bool
	for _i := 0; _i < 50; _i++ {
		if ev := g.ProgressAction(a, ctx, 1.0); ev != nil && ev.Action == "threat_defeated" {
			defeated = true
			break
		}
	}
	assert.True(t, defeated)
	assert.Equal(t, 1, g.ThreatsBeaten)
}

func TestManagerCooldownBlocksChange(t *testing.T) {
	m := NewManager(1)
	a := agent.New(rand.New(rand.NewSource(18)))

	m.lastChange[a.ID] = 100
	m.needs[Guard] = 100.0 // overwhelming demand

	assert.False(t, m.ShouldChangeJob(a, 110), "inside the 15 day cooldown")
	assert.True(t, m.ShouldChangeJob(a, 115), "cooldown expired and the demand is overwhelming")
}

func TestManagerHysteresis(t *testing.T) {
	ctx, _, _ := newTestContext(clock.Summer)
	m := NewManager(2)
	a := agent.New(rand.New(rand.NewSource(19)))
	Assign(a, NewFarmer(rand.New(rand.NewSource(20))), ctx)
	m.Register(a)

	m.needs[Farmer] = 2.0
	m.needs[Woodcutter] = 2.5 // better, but not 1.5x better
	assert.False(t, m.ShouldChangeJob(a, 100))

	m.needs[Woodcutter] = 10.0
	assert.True(t, m.ShouldChangeJob(a, 100))
}

func TestManagerAssignsHighestWeightedJob(t *testing.T) {
	ctx, _, _ := newTestContext(clock.Summer)
	m := NewManager(3)
	a := agent.New(rand.New(rand.NewSource(21)))
	m.Register(a)

	m.needs[Blacksmith] = 8.0
	kind := m.AssignNewJob(a, ctx, 50)

	assert.Equal(t, Blacksmith, kind)
	require.Len(t, m.History(), 1)
	assert.Equal(t, Unemployed, m.History()[0].From)
	assert.Equal(t, Blacksmith, m.History()[0].To)
	assert.Equal(t, 50, m.History()[0].Day)
	assert.Equal(t, 1, m.Distribution()[Blacksmith])
}

func TestManagerDefaultsToFarmer(t *testing.T) {
	ctx, _, _ := newTestContext(clock.Summer)
	m := NewManager(4)
	a := agent.New(rand.New(rand.NewSource(22)))
	m.Register(a)

	// All needs zero.
	kind := m.AssignNewJob(a, ctx, 10)
	assert.Equal(t, Farmer, kind)
}

func TestUpdateVillageNeedsFormulas(t *testing.T) {
	m := NewManager(5)
	res := resource.NewManager(5)

	a := agent.New(rand.New(rand.NewSource(23)))
	a.Needs[agent.NeedFood] = 40.0
	agents := []*agent.Agent{a}

	m.UpdateVillageNeeds(agents, nil, res, nil, clock.Summer)

	// (100-40)/20 = 3.0; no season multiplier in summer for food.
	assert.InDelta(t, 3.0, m.needs[Farmer], 1e-9)
	// Empty stores: miner gets (50-0)/10 + (20-0)/5 = 9.
	assert.InDelta(t, 9.0, m.needs[Miner], 1e-9)
	// Blacksmith: (10-0)/2 + (5-0)/1 = 10.
	assert.InDelta(t, 10.0, m.needs[Blacksmith], 1e-9)
	// One villager: security 0.1.
	assert.InDelta(t, 0.1, m.needs[Guard], 1e-9)

	m.UpdateVillageNeeds(agents, nil, res, nil, clock.Winter)
	assert.InDelta(t, 4.0, m.needs[Woodcutter], 1e-9, "winter doubles the base +2 wood need")
}
