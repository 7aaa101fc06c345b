package job

import (
	"math/rand"

	"github.com/talgya/villagesim/internal/agent"
	"github.com/talgya/villagesim/internal/building"
	"github.com/talgya/villagesim/internal/clock"
	"github.com/talgya/villagesim/internal/resource"
)

const (
	changeCooldownDays = 15
	changeHysteresis   = 1.5
)

// Change records one job reassignment.
type Change struct {
	AgentID string
	From    Kind
	To      Kind
	Day     int
}

// Manager watches village-wide need signals and moves agents between
// occupations. Needs are recomputed every simulated hour; reassignment is
// evaluated once a day.
type Manager struct {
	needs        map[Kind]float64
	distribution map[Kind]int
	history      []Change
	lastChange   map[string]int
	rng          *rand.Rand
}

// NewManager creates a job manager.
func NewManager(seed int64) *Manager {
	return &Manager{
		needs:        make(map[Kind]float64, len(AllKinds)),
		distribution: make(map[Kind]int),
		lastChange:   make(map[string]int),
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// Needs returns the current need signal per occupation.
func (m *Manager) Needs() map[Kind]float64 {
	out := make(map[Kind]float64, len(m.needs))
	for k, v := range m.needs {
		out[k] = v
	}
	return out
}

// Distribution returns how many agents hold each occupation.
func (m *Manager) Distribution() map[Kind]int {
	out := make(map[Kind]int, len(m.distribution))
	for k, v := range m.distribution {
		out[k] = v
	}
	return out
}

// History returns the job-change log.
func (m *Manager) History() []Change { return m.history }

// Register counts an agent's occupation into the distribution.
func (m *Manager) Register(a *agent.Agent) {
	m.distribution[kindOf(a)]++
}

// Unregister removes an agent's occupation from the distribution.
func (m *Manager) Unregister(a *agent.Agent) {
	k := kindOf(a)
	m.distribution[k]--
	if m.distribution[k] <= 0 {
		delete(m.distribution, k)
	}
}

func kindOf(a *agent.Agent) Kind {
	if j, ok := a.Occupation.(Job); ok {
		return j.Kind()
	}
	return Unemployed
}

// UpdateVillageNeeds recomputes every need signal from current state.
// Called once per simulated hour.
func (m *Manager) UpdateVillageNeeds(agents []*agent.Agent, houses []*building.House,
	res *resource.Manager, totalStored func(resource.Type) float64, season clock.Season) {

	for _, k := range AllKinds {
		m.needs[k] = 0.0
	}

	// Hungry villagers call for farmers.
	avgFood := 100.0
	avgHealth := 100.0
	if len(agents) > 0 {
		var food, health float64
		for _, a := range agents {
			food += a.Needs[agent.NeedFood]
			health += a.Health
		}
		avgFood = food / float64(len(agents))
		avgHealth = health / float64(len(agents))
	}
	m.needs[Farmer] = max(0.0, (100.0-avgFood)/20.0)
	m.needs[Healer] = max(0.0, (100.0-avgHealth)/20.0)

	if season == clock.Autumn || season == clock.Winter {
		m.needs[Woodcutter] += 2.0
	}

	avgCondition := 100.0
	if len(houses) > 0 {
		var cond float64
		for _, h := range houses {
			cond += h.Condition
		}
		avgCondition = cond / float64(len(houses))
	}
	m.needs[Builder] = max(0.0, (100.0-avgCondition)/20.0)

	amount := func(t resource.Type) float64 {
		total := res.VillageAmount(t)
		if totalStored != nil {
			total += totalStored(t)
		}
		return total
	}

	stone := amount(resource.Stone)
	ore := amount(resource.IronOre)
	if stone < 50.0 || ore < 20.0 {
		m.needs[Miner] += max(0.0, (50.0-stone)/10.0) + max(0.0, (20.0-ore)/5.0)
	}

	tools := amount(resource.BasicTools) + amount(resource.AdvancedTools)
	weapons := amount(resource.Weapons)
	if tools < 10.0 || weapons < 5.0 {
		m.needs[Blacksmith] += max(0.0, (10.0-tools)/2.0) + max(0.0, (5.0-weapons)/1.0)
	}

	m.needs[Guard] = min(5.0, float64(len(agents))/10.0)

	var surplus float64
	for _, amt := range res.VillageResources() {
		if amt > 50.0 {
			surplus += amt
		}
	}
	m.needs[Merchant] = min(5.0, surplus/100.0)

	m.adjustForSeason(season)
}

func (m *Manager) adjustForSeason(season clock.Season) {
	switch season {
	case clock.Spring:
		m.needs[Farmer] *= 1.5
	case clock.Summer:
		m.needs[Builder] *= 1.5
	case clock.Autumn:
		m.needs[Farmer] *= 1.3
	case clock.Winter:
		m.needs[Woodcutter] *= 2.0
	}
}

// Aptitude scores how suited an agent is to an occupation, 0..1.
func Aptitude(a *agent.Agent, k Kind) float64 {
	switch k {
	case Farmer:
		return a.Skills[agent.SkillFarming]
	case Woodcutter:
		return a.Skills[agent.SkillWoodcutting]
	case Builder:
		return a.Skills[agent.SkillBuilding]
	case Miner:
		return a.Skills[agent.SkillMining]
	case Merchant:
		return (a.Skills[agent.SkillNegotiation] + a.Skills[agent.SkillCharisma]) / 2
	case Blacksmith:
		return (a.Skills[agent.SkillCrafting] + a.Skills[agent.SkillStrength]) / 2
	case Guard:
		return (a.Skills[agent.SkillCombat] + a.Skills[agent.SkillStrength]) / 2
	case Healer:
		return a.Skills[agent.SkillHealing]
	default:
		return 0.5
	}
}

// ShouldChangeJob decides whether the agent would serve the village
// better elsewhere. Changes are blocked inside the cooldown window, and
// the alternative must beat the current job's need by a wide margin so
// agents don't oscillate.
func (m *Manager) ShouldChangeJob(a *agent.Agent, day int) bool {
	if last, ok := m.lastChange[a.ID]; ok && day-last < changeCooldownDays {
		return false
	}
	current := kindOf(a)
	currentNeed := m.needs[current]

	bestKind, bestNeed := current, currentNeed
	for _, k := range AllKinds {
		adjusted := m.needs[k] * (0.5 + 0.5*Aptitude(a, k))
		if adjusted > bestNeed {
			bestKind, bestNeed = k, adjusted
		}
	}
	return bestKind != current && bestNeed > currentNeed*changeHysteresis
}

// AssignNewJob gives the agent the highest-weighted occupation, falling
// back to farmer, and logs the change.
func (m *Manager) AssignNewJob(a *agent.Agent, ctx *agent.Context, day int) Kind {
	m.Unregister(a)
	from := kindOf(a)

	bestKind := Farmer
	bestNeed := -1.0
	for _, k := range AllKinds {
		adjusted := m.needs[k] * (0.5 + 0.5*Aptitude(a, k))
		if adjusted > bestNeed {
			bestKind, bestNeed = k, adjusted
		}
	}

	Assign(a, New(bestKind, m.rng), ctx)
	m.Register(a)
	m.lastChange[a.ID] = day
	m.history = append(m.history, Change{AgentID: a.ID, From: from, To: bestKind, Day: day})
	return bestKind
}
