package threat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/villagesim/internal/building"
	"github.com/talgya/villagesim/internal/clock"
	"github.com/talgya/villagesim/internal/resource"
)

func TestVillageStrength(t *testing.T) {
	weak := VillageState{Population: 5}
	strong := VillageState{Population: 30, Guards: 4, Weapons: 10, Tools: 20}

	assert.Equal(t, 20.0, weak.Strength())
	assert.Equal(t, 10.0+60.0+60.0+50.0+20.0, strong.Strength())
}

func TestKindsScaleWithStrength(t *testing.T) {
	assert.Contains(t, kindsForStrength(20), Wolves)
	assert.NotContains(t, kindsForStrength(20), Dragon)
	assert.Contains(t, kindsForStrength(400), Dragon)
	assert.NotContains(t, kindsForStrength(400), Wolves)
}

func TestSpawnPlacesThreatOnEdge(t *testing.T) {
	m := NewManager(50, 50, 7)
	for _i := 0; _i < 20; _i++ {
		th := m.Spawn(VillageState{Population: 10})
		onEdge := th.X == 0 || th.X == 49 || th.Y == 0 || th.Y == 49
		assert.True(t, onEdge, "threat at (%d,%d) not on edge", th.X, th.Y)
		assert.GreaterOrEqual(t, th.Strength, 0.5)
		assert.LessOrEqual(t, th.Strength, 2.0)
	}
}

func TestThreatArrivesAndLoots(t *testing.T) {
	m := NewManager(20, 20, 3)
	res := resource.NewManager(3)
	res.AddToVillageStorage(resource.FoodWheat, 500)

	th := m.Spawn(VillageState{Population: 10})
	require.Equal(t, Approaching, th.Status)

	// Walk time forward until the threat arrives and reaches its target.
	for _i := 0; _i < 200; _i++ {
		m.Step(12, 1, clock.Summer, 1.0, VillageState{}, nil, res)
		if !th.Active() {
			break
		}
	}

	assert.Less(t, res.VillageAmount(resource.FoodWheat), 500.0, "ledger untouched after attack")
}

func TestThreatDamagesBuildings(t *testing.T) {
	m := NewManager(20, 20, 11)
	res := resource.NewManager(11)

	th := m.Spawn(VillageState{Population: 10})
	th.Status = Attacking
	th.X, th.Y = 10, 10

	h := building.NewHouse(10, 10, "", m.rng)
	h.AddMaterials(resource.Wood, 50)
	h.AddMaterials(resource.Stone, 20)
	houses := []*building.House{h}

	// Force the target onto the house cell.
	th.targetX, th.targetY = 10, 10
	th.hasTarget = true

	m.Step(12, 1, clock.Summer, 1.0, VillageState{}, houses, res)
	assert.Less(t, h.Condition, 100.0)
}

func TestTakeDamage(t *testing.T) {
	m := NewManager(20, 20, 5)
	th := m.Spawn(VillageState{Population: 10})
	th.Aggression = 1.0 // never flees

	require.False(t, th.TakeDamage(th.Health/2))
	assert.True(t, th.TakeDamage(th.Health+1))
	assert.Equal(t, Defeated, th.Status)
	assert.Equal(t, 0.0, th.Health)
}

func TestNearUsesChebyshevRadius(t *testing.T) {
	m := NewManager(50, 50, 9)
	th := m.Spawn(VillageState{Population: 5})
	th.X, th.Y = 10, 10

	assert.Len(t, m.Near(12, 12, 2), 1)
	assert.Empty(t, m.Near(14, 10, 3))
}

func TestSpawnCooldown(t *testing.T) {
	m := NewManager(50, 50, 13)
	m.lastSpawnDay = 5
	assert.Nil(t, m.maybeSpawn(10, clock.Winter, VillageState{Population: 50}),
		"spawns blocked inside the cooldown window")
}
