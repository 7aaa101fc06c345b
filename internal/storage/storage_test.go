package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/villagesim/internal/resource"
)

func TestFacilityCapacityInvariant(t *testing.T) {
	s := NewStockpile(0, 0)

	// 1000 into an empty 800-capacity stockpile stores exactly 800.
	assert.Equal(t, 800.0, s.Add(resource.Wood, 1000))
	assert.Equal(t, 800.0, s.Stored())
	assert.LessOrEqual(t, s.Stored(), s.Capacity)

	// Repeated adds never push past capacity.
	for i := 0; i < 50; i++ {
		s.Add(resource.Stone, 100)
		assert.LessOrEqual(t, s.Stored(), s.Capacity)
	}
}

func TestAcceptPolicies(t *testing.T) {
	stockpile := NewStockpile(0, 0)
	granary := NewGranary(0, 0)
	armory := NewArmory(0, 0)
	warehouse := NewWarehouse(0, 0)

	// A stockpile refuses weapons outright.
	assert.Equal(t, 0.0, stockpile.Add(resource.Weapons, 10))
	assert.Equal(t, 10.0, stockpile.Add(resource.Clay, 10))

	assert.Equal(t, 0.0, granary.Add(resource.Wood, 10))
	assert.Equal(t, 10.0, granary.Add(resource.FoodWheat, 10))

	assert.Equal(t, 0.0, armory.Add(resource.FoodFish, 10))
	assert.Equal(t, 10.0, armory.Add(resource.Weapons, 10))
	assert.Equal(t, 10.0, armory.Add(resource.BasicTools, 10))

	// Warehouse takes anything.
	for _, rt := range []resource.Type{resource.Wood, resource.FoodWheat, resource.Weapons, resource.Potion} {
		assert.Equal(t, 5.0, warehouse.Add(rt, 5))
	}
}

func TestFacilityRemoveClamped(t *testing.T) {
	w := NewWarehouse(0, 0)
	w.Add(resource.Stone, 30)

	assert.Equal(t, 30.0, w.Remove(resource.Stone, 100))
	assert.Equal(t, 0.0, w.Remove(resource.Stone, 1))
	_, present := w.Resources[resource.Stone]
	assert.False(t, present, "zeroed entries are cleaned up")
}

func TestFacilityDamageAndRepair(t *testing.T) {
	w := NewWarehouse(0, 0)

	assert.Equal(t, 40.0, w.Damage(40))
	assert.Equal(t, 60.0, w.Condition)

	// Damage beyond remaining condition clamps at zero.
	assert.Equal(t, 60.0, w.Damage(200))
	assert.Equal(t, 0.0, w.Condition)

	assert.Equal(t, 70.0, w.Repair(70, 3))
	assert.Equal(t, 3, w.LastRepair)
	// Repairs clamp at 100.
	assert.Equal(t, 30.0, w.Repair(500, 4))
	assert.Equal(t, 100.0, w.Condition)
	assert.Equal(t, 0.0, w.Repair(10, 5))
}

func TestManagerFillsMostAvailableFirst(t *testing.T) {
	m := NewManager()
	big := NewWarehouse(0, 0)   // 2000 free
	small := NewWarehouse(1, 0) // will be mostly full
	m.AddFacility(big)
	m.AddFacility(small)
	small.Add(resource.Stone, 1900) // 100 free

	added := m.AddResource(resource.Wood, 500)
	assert.Equal(t, 500.0, added)
	assert.Equal(t, 500.0, big.Resources[resource.Wood])
	assert.Equal(t, 0.0, small.Resources[resource.Wood])
}

func TestManagerOverflowsThenReportsShortfall(t *testing.T) {
	m := NewManager()
	a := NewStockpile(0, 0) // 800
	b := NewStockpile(1, 0) // 800
	m.AddFacility(a)
	m.AddFacility(b)

	// 2000 across 1600 of capacity: both fill, 1600 reported as stored.
	assert.Equal(t, 1600.0, m.AddResource(resource.Wood, 2000))
	assert.Equal(t, 800.0, a.Stored())
	assert.Equal(t, 800.0, b.Stored())

	// Nothing eligible: nothing stored.
	assert.Equal(t, 0.0, m.AddResource(resource.Weapons, 10))
}

func TestManagerDrainsMostStockedFirst(t *testing.T) {
	m := NewManager()
	a := NewWarehouse(0, 0)
	b := NewWarehouse(1, 0)
	m.AddFacility(a)
	m.AddFacility(b)
	a.Add(resource.Wood, 100)
	b.Add(resource.Wood, 400)

	removed := m.RemoveResource(resource.Wood, 350)
	assert.Equal(t, 350.0, removed)
	// b held the most, so it drains first.
	assert.Equal(t, 50.0, b.Resources[resource.Wood])
	assert.Equal(t, 100.0, a.Resources[resource.Wood])

	assert.Equal(t, 150.0, m.RemoveResource(resource.Wood, 9999))
	assert.Equal(t, 0.0, m.TotalAmount(resource.Wood))
}

func TestEligibilityCacheInvalidatedOnFacilityChange(t *testing.T) {
	m := NewManager()
	m.AddFacility(NewGranary(0, 0))

	require.Len(t, m.FacilitiesFor(resource.FoodWheat), 1)
	require.Empty(t, m.FacilitiesFor(resource.Weapons))

	m.AddFacility(NewArmory(1, 0))
	assert.Len(t, m.FacilitiesFor(resource.Weapons), 1)

	armory := m.FacilitiesFor(resource.Weapons)[0]
	require.True(t, m.RemoveFacility(armory.ID))
	assert.Empty(t, m.FacilitiesFor(resource.Weapons))
}

func TestFacilitiesNear(t *testing.T) {
	m := NewManager()
	m.AddFacility(NewWarehouse(10, 10))
	m.AddFacility(NewStockpile(14, 10))
	m.AddFacility(NewGranary(30, 30))

	assert.Len(t, m.FacilitiesNear(10, 10, 5), 2)
	assert.Len(t, m.FacilitiesNear(10, 10, 1), 1)
}
