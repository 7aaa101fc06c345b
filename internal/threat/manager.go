package threat

import (
	"math/rand"

	"github.com/talgya/villagesim/internal/building"
	"github.com/talgya/villagesim/internal/clock"
	"github.com/talgya/villagesim/internal/resource"
)

const (
	baseThreatChance    = 0.01 // per day
	threatScalingFactor = 0.02 // per villager
	minDaysBetween      = 10
)

var seasonThreatModifiers = map[clock.Season]float64{
	clock.Spring: 0.8,
	clock.Summer: 1.0,
	clock.Autumn: 1.2,
	clock.Winter: 1.5, // hungry winters drive attacks
}

// VillageState is the snapshot the spawner sizes new threats against.
type VillageState struct {
	Population int
	Guards     int
	Weapons    float64
	Tools      float64
}

// Strength estimates how defensible the village looks from outside.
func (v VillageState) Strength() float64 {
	return 10.0 + float64(v.Population)*2.0 +
		float64(v.Guards)*15.0 + v.Weapons*5.0 + v.Tools*1.0
}

// Report describes something a threat did this step.
type Report struct {
	Threat string
	Kind   Kind
	Action string
	Fields map[string]any
}

// Manager owns all threats against one village.
type Manager struct {
	width, height int
	threats       []*Threat
	resolved      []*Threat
	lastSpawnDay  int
	checkedDay    int
	rng           *rand.Rand
}

// NewManager creates a threat manager for a world of the given size.
func NewManager(width, height int, seed int64) *Manager {
	return &Manager{
		width:        width,
		height:       height,
		lastSpawnDay: -minDaysBetween,
		checkedDay:   -1,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// Active returns the threats still approaching or attacking.
func (m *Manager) Active() []*Threat {
	var out []*Threat
	for _, t := range m.threats {
		if t.Active() {
			out = append(out, t)
		}
	}
	return out
}

// Near returns active threats within a chebyshev radius of a position.
func (m *Manager) Near(x, y, radius int) []*Threat {
	var out []*Threat
	for _, t := range m.threats {
		if !t.Active() {
			continue
		}
		if abs(t.X-x) <= radius && abs(t.Y-y) <= radius {
			out = append(out, t)
		}
	}
	return out
}

// Resolved returns threats that have been defeated, fled, or left with
// their loot.
func (m *Manager) Resolved() []*Threat {
	return m.resolved
}

// Step advances every threat by the given simulated hours and, once per
// day at midnight, rolls for a fresh spawn scaled against the village.
func (m *Manager) Step(hour, day int, season clock.Season, hours float64,
	village VillageState, houses []*building.House, res *resource.Manager) []Report {

	var reports []Report

	if hour == 0 && day != m.checkedDay {
		m.checkedDay = day
		if t := m.maybeSpawn(day, season, village); t != nil {
			reports = append(reports, Report{
				Threat: t.ID, Kind: t.Kind, Action: "threat_sighted",
				Fields: map[string]any{"strength": t.Strength, "x": t.X, "y": t.Y},
			})
		}
	}

	for _, t := range m.threats {
		switch t.Status {
		case Approaching:
			t.approachHours -= hours
			if t.approachHours <= 0 {
				t.Status = Attacking
				reports = append(reports, Report{
					Threat: t.ID, Kind: t.Kind, Action: "threat_arrived",
					Fields: map[string]any{"x": t.X, "y": t.Y},
				})
			}
		case Attacking:
			reports = append(reports, m.attack(t, hours, houses, res)...)
		}
	}

	// Sweep resolved threats out of the active list.
	active := m.threats[:0]
	for _, t := range m.threats {
		if t.Active() {
			active = append(active, t)
		} else {
			m.resolved = append(m.resolved, t)
			reports = append(reports, Report{
				Threat: t.ID, Kind: t.Kind, Action: "threat_" + t.Status.String(),
				Fields: map[string]any{"damage_done": t.DamageDone, "loot": lootTotal(t.Loot)},
			})
		}
	}
	m.threats = active

	return reports
}

func (m *Manager) maybeSpawn(day int, season clock.Season, village VillageState) *Threat {
	if day-m.lastSpawnDay < minDaysBetween {
		return nil
	}
	sizeFactor := min(3.0, 1.0+float64(village.Population)*threatScalingFactor)
	chance := baseThreatChance * seasonThreatModifiers[season] * sizeFactor
	if m.rng.Float64() >= chance {
		return nil
	}
	m.lastSpawnDay = day
	return m.Spawn(village)
}

// Spawn creates a threat sized against the village and places it on a
// random map edge. Exported so scenarios can force an attack.
func (m *Manager) Spawn(village VillageState) *Threat {
	strength := village.Strength()
	kinds := kindsForStrength(strength)
	kind := kinds[m.rng.Intn(len(kinds))]

	x, y := m.edgePosition()
	factor := 0.7 + m.rng.Float64()*0.6
	adjusted := max(0.5, min(2.0, factor*strength/50.0))

	t := newThreat(kind, x, y, adjusted, m.rng)
	m.threats = append(m.threats, t)
	return t
}

func kindsForStrength(strength float64) []Kind {
	var kinds []Kind
	if strength < 50 {
		kinds = append(kinds, Wolves, Raiders)
	}
	if strength >= 50 && strength < 100 {
		kinds = append(kinds, Wolves, Raiders, Bear)
	}
	if strength >= 100 && strength < 200 {
		kinds = append(kinds, Raiders, Bear, OrcParty)
	}
	if strength >= 200 && strength < 300 {
		kinds = append(kinds, OrcParty, Troll)
	}
	if strength >= 300 {
		kinds = append(kinds, OrcRaidingParty, Troll, Dragon)
	}
	if len(kinds) == 0 {
		kinds = []Kind{Wolves}
	}
	return kinds
}

func (m *Manager) edgePosition() (int, int) {
	switch m.rng.Intn(4) {
	case 0: // north
		return m.rng.Intn(m.width), 0
	case 1: // east
		return m.width - 1, m.rng.Intn(m.height)
	case 2: // south
		return m.rng.Intn(m.width), m.height - 1
	default: // west
		return 0, m.rng.Intn(m.height)
	}
}

// attack moves the threat at its current target, batters any building it
// stands on, and loots the village ledger.
func (m *Manager) attack(t *Threat, hours float64, houses []*building.House, res *resource.Manager) []Report {
	damagePotential := t.BaseStrength() * t.Strength * hours

	if !t.hasTarget {
		m.selectTarget(t, houses)
	}
	if t.X != t.targetX || t.Y != t.targetY {
		t.X += sign(t.targetX - t.X)
		t.Y += sign(t.targetY - t.Y)
		return nil
	}

	var reports []Report

	// Standing on the target. Wreck whatever is here.
	for _, h := range houses {
		if h.X != t.X || h.Y != t.Y || h.Condition <= 0 {
			continue
		}
		damage := min(damagePotential, h.Condition)
		h.Deteriorate(damage)
		t.DamageDone += damage
		reports = append(reports, Report{
			Threat: t.ID, Kind: t.Kind, Action: "building_attacked",
			Fields: map[string]any{"x": h.X, "y": h.Y, "damage": damage, "condition": h.Condition},
		})
		break
	}

	looted := m.loot(t, res)
	if len(looted) > 0 {
		reports = append(reports, Report{
			Threat: t.ID, Kind: t.Kind, Action: "village_looted",
			Fields: map[string]any{"loot": looted},
		})
	}

	// Done here. Pick somewhere else to menace next step.
	t.hasTarget = false

	if lootTotal(t.Loot) > t.BaseStrength()*5*t.Strength {
		t.Status = Victorious
	}
	return reports
}

func (m *Manager) selectTarget(t *Threat, houses []*building.House) {
	if len(houses) > 0 && m.rng.Float64() < 0.7 {
		h := houses[m.rng.Intn(len(houses))]
		t.targetX, t.targetY = h.X, h.Y
	} else {
		t.targetX, t.targetY = m.width/2, m.height/2
	}
	t.hasTarget = true
}

func (m *Manager) loot(t *Threat, res *resource.Manager) map[string]float64 {
	looted := make(map[string]float64)
	for _, rt := range lootTargets[t.Kind] {
		want := float64(3+m.rng.Intn(8)) * t.Strength
		taken := res.TakeFromVillageStorage(rt, want)
		if taken > 0 {
			t.Loot[rt] += taken
			looted[rt.String()] = taken
		}
	}
	return looted
}

func lootTotal(loot map[resource.Type]float64) float64 {
	var total float64
	for _, amt := range loot {
		total += amt
	}
	return total
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
