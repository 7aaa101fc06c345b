// Package storage provides capacity-bounded, type-filtered resource
// containers and the allocation logic that routes resources across them.
package storage

import (
	"math/rand"

	"github.com/talgya/villagesim/internal/resource"
)

// AcceptPolicy decides which resource types a facility may hold.
type AcceptPolicy func(t resource.Type) bool

// Kind labels the facility archetypes. Kinds differ only by accept policy
// and capacity/size defaults.
type Kind uint8

const (
	KindWarehouse Kind = iota
	KindGranary
	KindStockpile
	KindArmory
)

// String returns the facility kind name.
func (k Kind) String() string {
	switch k {
	case KindWarehouse:
		return "warehouse"
	case KindGranary:
		return "granary"
	case KindStockpile:
		return "stockpile"
	case KindArmory:
		return "armory"
	default:
		return "storage"
	}
}

// Condition threshold below which damage may spill stored resources.
const damageLossThreshold = 30.0

// Facility is a capacity-bounded container. Capacity is a single scalar
// shared across every resource type stored, and the sum of stored amounts
// never exceeds it.
type Facility struct {
	ID       int
	Kind     Kind
	X, Y     int
	Capacity float64
	Accepts  AcceptPolicy

	Resources  map[resource.Type]float64
	Condition  float64 // 0-100
	LastRepair int     // game day of last repair
	Width      int     // footprint in grid cells
	Height     int

	rng *rand.Rand
}

func newFacility(kind Kind, x, y int, capacity float64, accepts AcceptPolicy, w, h int) *Facility {
	return &Facility{
		Kind:      kind,
		X:         x,
		Y:         y,
		Capacity:  capacity,
		Accepts:   accepts,
		Resources: make(map[resource.Type]float64),
		Condition: 100.0,
		Width:     w,
		Height:    h,
		rng:       rand.New(rand.NewSource(int64(x)<<16 ^ int64(y))),
	}
}

// NewWarehouse stores any resource type.
func NewWarehouse(x, y int) *Facility {
	return newFacility(KindWarehouse, x, y, 2000, func(resource.Type) bool { return true }, 2, 2)
}

// NewGranary stores food only.
func NewGranary(x, y int) *Facility {
	return newFacility(KindGranary, x, y, 1500, resource.Type.IsFood, 2, 1)
}

// NewStockpile stores raw materials only.
func NewStockpile(x, y int) *Facility {
	return newFacility(KindStockpile, x, y, 800, resource.Type.IsRaw, 1, 1)
}

// NewArmory stores weapons and tools only.
func NewArmory(x, y int) *Facility {
	return newFacility(KindArmory, x, y, 500, resource.Type.IsEquipment, 1, 1)
}

// Add stores up to amount of the resource and returns the amount actually
// stored, limited by the accept policy and remaining capacity.
func (f *Facility) Add(t resource.Type, amount float64) float64 {
	if f.Accepts != nil && !f.Accepts(t) {
		return 0
	}
	space := f.AvailableCapacity()
	added := amount
	if added > space {
		added = space
	}
	if added <= 0 {
		return 0
	}
	f.Resources[t] += added
	return added
}

// Remove takes up to amount of the resource and returns the amount actually
// removed, limited by what is held.
func (f *Facility) Remove(t resource.Type, amount float64) float64 {
	held := f.Resources[t]
	removed := amount
	if removed > held {
		removed = held
	}
	if removed <= 0 {
		return 0
	}
	remaining := held - removed
	if remaining <= 0 {
		delete(f.Resources, t)
	} else {
		f.Resources[t] = remaining
	}
	return removed
}

// Stored returns the total amount currently stored across all types.
func (f *Facility) Stored() float64 {
	total := 0.0
	for _, amt := range f.Resources {
		total += amt
	}
	return total
}

// AvailableCapacity returns the remaining storage space.
func (f *Facility) AvailableCapacity() float64 {
	space := f.Capacity - f.Stored()
	if space < 0 {
		return 0
	}
	return space
}

// FullnessPercent returns capacity usage on a 0-100 scale.
func (f *Facility) FullnessPercent() float64 {
	if f.Capacity <= 0 {
		return 100
	}
	return f.Stored() / f.Capacity * 100
}

// Damage lowers the facility condition and returns the damage actually
// applied. A badly damaged facility may spill part of its contents.
func (f *Facility) Damage(amount float64) float64 {
	taken := amount
	if taken > f.Condition {
		taken = f.Condition
	}
	f.Condition -= taken
	if f.Condition < damageLossThreshold && f.rng.Float64() < 0.3 {
		f.loseResources(taken / 100.0)
	}
	return taken
}

// Repair restores condition up to 100 and returns the repair actually
// applied.
func (f *Facility) Repair(amount float64, day int) float64 {
	if f.Condition >= 100 {
		return 0
	}
	applied := amount
	if applied > 100-f.Condition {
		applied = 100 - f.Condition
	}
	f.Condition += applied
	f.LastRepair = day
	return applied
}

func (f *Facility) loseResources(fraction float64) {
	for t, amt := range f.Resources {
		loss := amt * fraction * (0.5 + f.rng.Float64()*0.5)
		remaining := amt - loss
		if remaining <= 0 {
			delete(f.Resources, t)
		} else {
			f.Resources[t] = remaining
		}
	}
}
