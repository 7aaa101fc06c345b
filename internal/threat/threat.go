// Package threat models the dangers that test the village: packs and
// raiding parties that spawn at the map edge, approach, batter buildings,
// and loot the village ledger until guards drive them off.
package threat

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/talgya/villagesim/internal/resource"
)

// Kind classifies a threat.
type Kind uint8

const (
	Wolves Kind = iota
	Raiders
	Bear
	OrcParty
	OrcRaidingParty
	Troll
	Dragon
)

func (k Kind) String() string {
	switch k {
	case Wolves:
		return "wolves"
	case Raiders:
		return "raiders"
	case Bear:
		return "bear"
	case OrcParty:
		return "orc_party"
	case OrcRaidingParty:
		return "orc_raiding_party"
	case Troll:
		return "troll"
	case Dragon:
		return "dragon"
	default:
		return "unknown"
	}
}

// Difficulty rates the kind on a 1..10 scale.
func (k Kind) Difficulty() int {
	switch k {
	case Wolves:
		return 2
	case Raiders:
		return 3
	case Bear:
		return 4
	case OrcParty:
		return 5
	case Troll:
		return 6
	case OrcRaidingParty:
		return 7
	case Dragon:
		return 10
	default:
		return 1
	}
}

// lootTargets lists what each kind goes after, in preference order.
var lootTargets = map[Kind][]resource.Type{
	Wolves:          {resource.FoodWheat},
	Raiders:         {resource.FoodWheat, resource.IronIngot, resource.BasicTools, resource.Weapons},
	Bear:            {resource.FoodWheat, resource.FoodBerry},
	OrcParty:        {resource.FoodWheat, resource.Weapons},
	OrcRaidingParty: {resource.FoodWheat, resource.IronIngot, resource.Weapons, resource.AdvancedTools},
	Troll:           {resource.FoodWheat, resource.Stone},
	Dragon:          {resource.FoodWheat, resource.IronIngot, resource.Weapons, resource.AdvancedTools},
}

// Status tracks a threat through its lifecycle.
type Status uint8

const (
	Approaching Status = iota
	Attacking
	Defeated
	Fled
	Victorious
)

func (s Status) String() string {
	switch s {
	case Approaching:
		return "approaching"
	case Attacking:
		return "attacking"
	case Defeated:
		return "defeated"
	case Fled:
		return "fled"
	case Victorious:
		return "victorious"
	default:
		return "unknown"
	}
}

// Threat is one active danger.
type Threat struct {
	ID       string
	Kind     Kind
	X, Y     int
	Strength float64
	Status   Status
	Health   float64

	// Aggression in 0.5..1.0 decides whether a wounded threat stands
	// its ground.
	Aggression float64

	// hours until the threat reaches the village outskirts
	approachHours float64

	targetX, targetY int
	hasTarget        bool

	Loot       map[resource.Type]float64
	DamageDone float64

	rng *rand.Rand
}

func newThreat(kind Kind, x, y int, strength float64, rng *rand.Rand) *Threat {
	return &Threat{
		ID:            uuid.NewString(),
		Kind:          kind,
		X:             x,
		Y:             y,
		Strength:      strength,
		Status:        Approaching,
		Health:        100.0 * strength,
		Aggression:    0.5 + rng.Float64()*0.5,
		approachHours: float64(3 + rng.Intn(10)),
		Loot:          make(map[resource.Type]float64),
		rng:           rng,
	}
}

// BaseStrength converts kind difficulty to damage scale.
func (t *Threat) BaseStrength() float64 {
	return float64(t.Kind.Difficulty()) * 10.0
}

// TakeDamage wounds the threat. A badly hurt threat may flee instead of
// fighting to the death. Reports whether the threat is out of the fight.
func (t *Threat) TakeDamage(damage float64) bool {
	t.Health -= damage
	if t.Health <= 0 {
		t.Health = 0
		t.Status = Defeated
		return true
	}
	if t.Health <= t.BaseStrength()*0.3 && t.rng.Float64() > t.Aggression {
		t.Status = Fled
		return true
	}
	return false
}

// Active reports whether the threat still needs dealing with.
func (t *Threat) Active() bool {
	return t.Status == Approaching || t.Status == Attacking
}
