// Package building models the village's constructed structures. Buildings
// are placed on the grid, take construction materials before they become
// usable, weather over time, and can be repaired.
package building

import (
	"math/rand"

	"github.com/talgya/villagesim/internal/clock"
	"github.com/talgya/villagesim/internal/resource"
)

// Kind identifies what a building is for.
type Kind uint8

const (
	KindHouse Kind = iota
	KindWorkshop
	KindMarket
)

func (k Kind) String() string {
	switch k {
	case KindHouse:
		return "house"
	case KindWorkshop:
		return "workshop"
	case KindMarket:
		return "market"
	default:
		return "unknown"
	}
}

// Building is the shared state of every structure. Specific kinds embed it
// and layer behavior on top.
type Building struct {
	ID        int
	Kind      Kind
	X, Y      int
	Condition float64
	Capacity  int
	Occupants []string
	OwnerID   string

	// Construction bookkeeping. Progress runs 0..1 and a building is
	// unusable until it reaches 1.
	Progress  float64
	materials map[resource.Type]float64
	provided  map[resource.Type]float64
}

func newBuilding(kind Kind, x, y int, materials map[resource.Type]float64) *Building {
	b := &Building{
		Kind:      kind,
		X:         x,
		Y:         y,
		Condition: 100.0,
		Progress:  1.0,
		materials: materials,
		provided:  make(map[resource.Type]float64),
	}
	if len(materials) > 0 {
		b.Progress = 0.0
	}
	return b
}

// Complete reports whether construction has finished.
func (b *Building) Complete() bool {
	return b.Progress >= 1.0
}

// RemainingMaterials returns what is still needed to finish construction.
func (b *Building) RemainingMaterials() map[resource.Type]float64 {
	remaining := make(map[resource.Type]float64)
	if b.Complete() {
		return remaining
	}
	for t, required := range b.materials {
		if got := b.provided[t]; got < required {
			remaining[t] = required - got
		}
	}
	return remaining
}

// AddMaterials contributes construction materials and advances progress.
// It returns the amount actually consumed, which may be less than offered
// when the requirement is already met.
func (b *Building) AddMaterials(t resource.Type, amount float64) float64 {
	if b.Complete() || amount <= 0 {
		return 0
	}
	required, ok := b.materials[t]
	if !ok {
		return 0
	}
	provided := b.provided[t]
	if provided >= required {
		return 0
	}
	used := min(amount, required-provided)
	b.provided[t] = provided + used

	var totalRequired, totalProvided float64
	for mt, req := range b.materials {
		totalRequired += req
		totalProvided += b.provided[mt]
	}
	b.Progress = min(1.0, totalProvided/totalRequired)
	return used
}

// CanEnter reports whether the agent may occupy the building right now.
// The owner is always admitted and holds no regular slot, so capacity
// counts only the other occupants.
func (b *Building) CanEnter(agentID string) bool {
	if !b.Complete() {
		return false
	}
	if b.OwnerID != "" && agentID == b.OwnerID {
		return true
	}
	if b.Capacity > 0 && b.regularOccupants() >= b.Capacity {
		return false
	}
	return true
}

// regularOccupants counts occupants other than the owner.
func (b *Building) regularOccupants() int {
	n := 0
	for _, id := range b.Occupants {
		if id != b.OwnerID {
			n++
		}
	}
	return n
}

// Enter adds the agent to the occupant list.
func (b *Building) Enter(agentID string) bool {
	if !b.CanEnter(agentID) {
		return false
	}
	for _, id := range b.Occupants {
		if id == agentID {
			return true
		}
	}
	b.Occupants = append(b.Occupants, agentID)
	return true
}

// Exit removes the agent from the occupant list.
func (b *Building) Exit(agentID string) bool {
	for i, id := range b.Occupants {
		if id == agentID {
			b.Occupants = append(b.Occupants[:i], b.Occupants[i+1:]...)
			return true
		}
	}
	return false
}

// Deteriorate lowers condition, clamped at zero.
func (b *Building) Deteriorate(amount float64) {
	b.Condition = max(0, b.Condition-amount)
}

// Repair raises condition, clamped at 100.
func (b *Building) Repair(amount float64) {
	b.Condition = min(100.0, b.Condition+amount)
}

// Weather deterioration rates per simulated hour.
var weatherDeterioration = map[clock.Weather]float64{
	clock.WeatherClear: 0.01,
	clock.WeatherRain:  0.03,
	clock.WeatherFog:   0.01,
	clock.WeatherStorm: 0.05,
	clock.WeatherSnow:  0.02,
}

var seasonDeterioration = map[clock.Season]float64{
	clock.Spring: 1.0,
	clock.Summer: 0.8,
	clock.Autumn: 1.2,
	clock.Winter: 1.5,
}

// House shelters agents. Its comfort and insulation are rolled at build
// time and scale the rest and shelter quality it provides.
type House struct {
	Building
	Comfort    float64
	Security   float64
	Insulation float64
}

// NewHouse creates an unbuilt house at the given position. Construction
// needs 50 wood and 20 stone before anyone can move in.
func NewHouse(x, y int, ownerID string, rng *rand.Rand) *House {
	h := &House{
		Building: *newBuilding(KindHouse, x, y, map[resource.Type]float64{
			resource.Wood:  50.0,
			resource.Stone: 20.0,
		}),
		Comfort:    0.5 + rng.Float64()*0.5,
		Security:   0.5 + rng.Float64()*0.5,
		Insulation: 0.5 + rng.Float64()*0.5,
	}
	h.OwnerID = ownerID
	h.Capacity = 4
	return h
}

// Step applies one hour of weathering. Insulation halves the rate at best.
func (h *House) Step(season clock.Season, weather clock.Weather) {
	rate := weatherDeterioration[weather] * seasonDeterioration[season]
	rate *= 1.0 - h.Insulation*0.5
	h.Deteriorate(rate)
}

// RestQuality is the 0..1 factor applied to rest recovery for sleepers
// inside this house.
func (h *House) RestQuality() float64 {
	return h.Comfort * h.Condition / 100.0
}

// ShelterQuality is the 0..1 factor applied to the shelter need for
// occupants.
func (h *House) ShelterQuality() float64 {
	return h.Insulation * h.Condition / 100.0
}
