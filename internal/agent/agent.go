// Package agent implements the villagers: decaying needs, skills, carried
// inventory, and the per-tick action state machine that drives survival
// behavior and hands off to the assigned occupation.
package agent

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/talgya/villagesim/internal/resource"
)

// Need is one of the physiological needs, tracked on a 0..100 scale where
// 0 is critical.
type Need uint8

const (
	NeedFood Need = iota
	NeedWater
	NeedRest
	NeedShelter
	NeedSocial
)

// AllNeeds lists every need in declaration order.
var AllNeeds = []Need{NeedFood, NeedWater, NeedRest, NeedShelter, NeedSocial}

func (n Need) String() string {
	switch n {
	case NeedFood:
		return "food"
	case NeedWater:
		return "water"
	case NeedRest:
		return "rest"
	case NeedShelter:
		return "shelter"
	case NeedSocial:
		return "social"
	default:
		return "unknown"
	}
}

// decay in need points per simulated hour
var needDecayRates = map[Need]float64{
	NeedFood:    1.0,
	NeedWater:   2.0,
	NeedRest:    1.5,
	NeedShelter: 0.5,
	NeedSocial:  0.3,
}

const (
	criticalNeed      = 20.0 // below this a need costs health
	survivalThreshold = 30.0 // below this the agent drops work to self-care
	sleepTrigger      = 50.0
	wellRested        = 95.0

	restRecoveryPerHour = 10.0
	healthRegenPerHour  = 0.2
	healthLossPerNeed   = 0.5

	foodEffectiveness  = 5.0
	waterEffectiveness = 8.0
	consumePortion     = 10.0

	socialGain = 20.0
)

// Skill names an ability on a 0..1 scale.
type Skill string

const (
	SkillFarming     Skill = "farming"
	SkillMining      Skill = "mining"
	SkillWoodcutting Skill = "woodcutting"
	SkillBuilding    Skill = "building"
	SkillCrafting    Skill = "crafting"
	SkillTrading     Skill = "trading"
	SkillCooking     Skill = "cooking"
	SkillCombat      Skill = "combat"
	SkillPerception  Skill = "perception"
	SkillStrength    Skill = "strength"
	SkillSurvival    Skill = "survival"
	SkillHealing     Skill = "healing"
	SkillNegotiation Skill = "negotiation"
	SkillCharisma    Skill = "charisma"
)

// AllSkills lists every skill an agent carries. Every agent starts with a
// small random level in each so occupation modifiers always have a base to
// multiply, which keeps assignment and removal exact inverses.
var AllSkills = []Skill{
	SkillFarming, SkillMining, SkillWoodcutting, SkillBuilding,
	SkillCrafting, SkillTrading, SkillCooking, SkillCombat,
	SkillPerception, SkillStrength, SkillSurvival, SkillHealing,
	SkillNegotiation, SkillCharisma,
}

// Event is an observable record produced when an action does something
// worth reporting.
type Event struct {
	Agent  string
	Action string
	Fields map[string]any
}

// Occupation is the behavior an assigned job contributes to the agent's
// step loop. Implemented by the job package.
type Occupation interface {
	Name() string
	DecideAction(a *Agent, ctx *Context)
	ProgressAction(a *Agent, ctx *Context, dt float64) *Event
}

// Agent is a single villager.
type Agent struct {
	ID   string
	Name string
	Age  int
	X, Y int

	Health    float64
	Needs     map[Need]float64
	Skills    map[Skill]float64
	Inventory map[resource.Type]float64
	Capacity  float64

	HomeX, HomeY int
	HasHome      bool

	Action   ActionKind
	Target   Target
	Progress float64

	Occupation Occupation

	Relationships map[string]float64

	rng *rand.Rand
}

// New creates a villager with full needs and modest random skills. The
// supplied rng also drives the agent's later stochastic choices.
func New(rng *rand.Rand) *Agent {
	a := &Agent{
		ID:            uuid.NewString(),
		Name:          randomName(rng),
		Age:           18 + rng.Intn(33),
		Health:        100.0,
		Needs:         make(map[Need]float64, len(AllNeeds)),
		Skills:        make(map[Skill]float64, len(AllSkills)),
		Inventory:     make(map[resource.Type]float64),
		Capacity:      100.0,
		Relationships: make(map[string]float64),
		rng:           rng,
	}
	for _, n := range AllNeeds {
		a.Needs[n] = 100.0
	}
	for _, s := range AllSkills {
		a.Skills[s] = 0.1 + rng.Float64()*0.2
	}
	return a
}

// Alive reports whether the agent still participates in the simulation.
func (a *Agent) Alive() bool {
	return a.Health > 0
}

// SetHome fixes the agent's home position.
func (a *Agent) SetHome(x, y int) {
	a.HomeX, a.HomeY = x, y
	a.HasHome = true
}

// AtHome reports whether the agent stands on its home cell.
func (a *Agent) AtHome() bool {
	return a.HasHome && a.X == a.HomeX && a.Y == a.HomeY
}

// Carried sums everything in the inventory.
func (a *Agent) Carried() float64 {
	var total float64
	for _, amt := range a.Inventory {
		total += amt
	}
	return total
}

// AddToInventory stores up to the remaining carrying capacity and returns
// the amount actually taken.
func (a *Agent) AddToInventory(t resource.Type, amount float64) float64 {
	free := a.Capacity - a.Carried()
	taken := min(amount, max(0, free))
	if taken > 0 {
		a.Inventory[t] += taken
	}
	return taken
}

// RemoveFromInventory takes up to amount and returns what was available.
func (a *Agent) RemoveFromInventory(t resource.Type, amount float64) float64 {
	have := a.Inventory[t]
	taken := min(amount, have)
	if taken <= 0 {
		return 0
	}
	if have-taken <= 0 {
		delete(a.Inventory, t)
	} else {
		a.Inventory[t] = have - taken
	}
	return taken
}

// ImproveSkill raises a skill with diminishing returns as it approaches
// the 1.0 cap.
func (a *Agent) ImproveSkill(s Skill, amount float64) {
	level := a.Skills[s]
	a.Skills[s] = min(1.0, level+amount*(1.0-level*0.5))
}

// Step advances the agent by dt ticks: needs decay, health is derived,
// a finished action is completed, a new one is chosen if idle, and the
// current one progresses. Returns an event when the action produced one.
func (a *Agent) Step(ctx *Context, dt float64) *Event {
	a.updateNeeds(ctx, dt)
	a.updateHealth(ctx, dt)
	if !a.Alive() {
		return nil
	}

	var ev *Event
	if a.Action != ActionNone && a.Progress >= 1.0 {
		a.completeAction()
		a.Action = ActionNone
		a.Target = Target{}
		a.Progress = 0.0
	}
	if a.Action == ActionNone {
		a.decideNext(ctx)
	}
	if a.Action != ActionNone {
		ev = a.progressAction(ctx, dt)
	}
	return ev
}

func (a *Agent) updateNeeds(ctx *Context, dt float64) {
	hours := dt / float64(ctx.Clock.TicksPerHour())
	for _, n := range AllNeeds {
		if n == NeedRest && a.Action == ActionSleep {
			a.Needs[n] = min(100.0, a.Needs[n]+restRecoveryPerHour*hours)
			continue
		}
		if n == NeedShelter && a.AtHome() {
			continue
		}
		a.Needs[n] = max(0.0, a.Needs[n]-needDecayRates[n]*hours)
	}
}

func (a *Agent) updateHealth(ctx *Context, dt float64) {
	hours := dt / float64(ctx.Clock.TicksPerHour())
	critical := 0
	allSatisfied := true
	for _, v := range a.Needs {
		if v < criticalNeed {
			critical++
		}
		if v <= 50.0 {
			allSatisfied = false
		}
	}
	if critical > 0 {
		a.Health = max(0.0, a.Health-healthLossPerNeed*float64(critical)*hours)
	} else if a.Health < 100.0 && allSatisfied {
		a.Health = min(100.0, a.Health+healthRegenPerHour*hours)
	}
}

// decideNext picks the next action: a survival action when the lowest need
// is under the threshold, otherwise the occupation decides, otherwise
// wander.
func (a *Agent) decideNext(ctx *Context) {
	lowest := AllNeeds[0]
	for _, n := range AllNeeds[1:] {
		if a.Needs[n] < a.Needs[lowest] {
			lowest = n
		}
	}
	if a.Needs[lowest] < survivalThreshold {
		switch lowest {
		case NeedFood:
			a.SetAction(ActionFindFood, Target{})
		case NeedWater:
			a.SetAction(ActionFindWater, Target{})
		case NeedRest, NeedShelter:
			if a.HasHome {
				a.SetAction(ActionGoHome, At(a.HomeX, a.HomeY))
			} else {
				a.SetAction(ActionFindShelter, Target{})
			}
		case NeedSocial:
			a.SetAction(ActionSocialize, Target{})
		}
		return
	}
	if a.Occupation != nil {
		a.Occupation.DecideAction(a, ctx)
		if a.Action != ActionNone {
			return
		}
	}
	a.SetAction(ActionWander, Target{})
}

// SetAction replaces the current action and resets progress.
func (a *Agent) SetAction(kind ActionKind, target Target) {
	a.Action = kind
	a.Target = target
	a.Progress = 0.0
}

// completeAction applies the finishing side effect of the current action.
// Most actions apply their effects during progress; the exceptions eat or
// drink whatever was gathered.
func (a *Agent) completeAction() {
	switch a.Action {
	case ActionFindFood:
		a.ConsumeFood()
	case ActionFindWater:
		a.ConsumeWater()
	}
}

// ConsumeFood eats up to one portion of carried food.
func (a *Agent) ConsumeFood() {
	remaining := consumePortion
	for _, t := range []resource.Type{resource.FoodBerry, resource.FoodFish, resource.FoodWheat} {
		if remaining <= 0 {
			break
		}
		eaten := a.RemoveFromInventory(t, remaining)
		remaining -= eaten
		a.Needs[NeedFood] = min(100.0, a.Needs[NeedFood]+eaten*foodEffectiveness)
	}
}

// ConsumeWater drinks up to one portion of carried water.
func (a *Agent) ConsumeWater() {
	drunk := a.RemoveFromInventory(resource.Water, consumePortion)
	if drunk > 0 {
		a.Needs[NeedWater] = min(100.0, a.Needs[NeedWater]+drunk*waterEffectiveness)
	}
}
