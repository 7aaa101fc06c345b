package agent

import (
	"github.com/talgya/villagesim/internal/resource"
)

// ActionKind is the closed set of things an agent can be doing. Survival
// actions are handled by the agent itself; the rest are progressed by the
// assigned occupation.
type ActionKind uint8

const (
	ActionNone ActionKind = iota

	// survival
	ActionWander
	ActionGoHome
	ActionFindFood
	ActionFindWater
	ActionSleep
	ActionFindShelter
	ActionSocialize

	// farmer
	ActionPrepareField
	ActionPlantCrop
	ActionTendCrop
	ActionHarvestCrop

	// gatherers
	ActionChopWood
	ActionDeliverWood
	ActionMineDeposit
	ActionDeliverOre
	ActionGatherHerbs
	ActionDeliverHerbs

	// blacksmith
	ActionFuelForge
	ActionCraftItem
	ActionWaitMaterials

	// guard
	ActionPatrol
	ActionEngageThreat

	// healer
	ActionBrewPotion
	ActionTreatPatient

	// merchant
	ActionManageMarket
	ActionTradeJourney

	// builder
	ActionBuild
	ActionRepair
)

var actionNames = map[ActionKind]string{
	ActionNone:          "idle",
	ActionWander:        "wander",
	ActionGoHome:        "go_home",
	ActionFindFood:      "find_food",
	ActionFindWater:     "find_water",
	ActionSleep:         "sleeping",
	ActionFindShelter:   "find_shelter",
	ActionSocialize:     "socialize",
	ActionPrepareField:  "prepare_field",
	ActionPlantCrop:     "plant_crop",
	ActionTendCrop:      "tend_crop",
	ActionHarvestCrop:   "harvest_crop",
	ActionChopWood:      "chop_wood",
	ActionDeliverWood:   "deliver_wood",
	ActionMineDeposit:   "mine_deposit",
	ActionDeliverOre:    "deliver_ore",
	ActionGatherHerbs:   "gather_herbs",
	ActionDeliverHerbs:  "deliver_herbs",
	ActionFuelForge:     "fuel_forge",
	ActionCraftItem:     "craft_item",
	ActionWaitMaterials: "wait_for_materials",
	ActionPatrol:        "patrol",
	ActionEngageThreat:  "engage_threat",
	ActionBrewPotion:    "brew_potion",
	ActionTreatPatient:  "treat_patient",
	ActionManageMarket:  "manage_market",
	ActionTradeJourney:  "trade_journey",
	ActionBuild:         "build",
	ActionRepair:        "repair",
}

// Survival reports whether the action is one the agent runs itself
// rather than delegating to its occupation.
func (k ActionKind) Survival() bool {
	return k >= ActionWander && k <= ActionSocialize
}

func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return "unknown"
}

// Target is the optional payload of an action: a grid cell and, when the
// action aims at an entity, its id.
type Target struct {
	X, Y  int
	ID    string
	Valid bool
}

// At builds a positional target.
func At(x, y int) Target {
	return Target{X: x, Y: y, Valid: true}
}

// progressAction dispatches the running action. Survival actions are
// built in; everything else belongs to the occupation.
func (a *Agent) progressAction(ctx *Context, dt float64) *Event {
	switch a.Action {
	case ActionWander:
		a.stepWander(ctx)
		return nil
	case ActionGoHome:
		return a.stepGoHome(ctx)
	case ActionFindFood:
		return a.stepFindFood(ctx)
	case ActionFindWater:
		return a.stepFindWater(ctx)
	case ActionSleep:
		return a.stepSleeping(ctx)
	case ActionFindShelter:
		return a.stepFindShelter(ctx)
	case ActionSocialize:
		return a.stepSocialize(ctx)
	}
	if a.Occupation != nil {
		return a.Occupation.ProgressAction(a, ctx, dt)
	}
	// A job action with no job to run it. Drop it.
	a.Progress = 1.0
	return nil
}

// MoveToward takes one greedy step toward (tx, ty): the diagonal first,
// then each axis alone if the grid refuses. Reports whether the agent now
// stands on the target cell.
func (a *Agent) MoveToward(ctx *Context, tx, ty int) bool {
	if a.X == tx && a.Y == ty {
		return true
	}
	dx, dy := sign(tx-a.X), sign(ty-a.Y)
	if !ctx.Grid.MoveAgent(a, a.X+dx, a.Y+dy) {
		if dx != 0 && ctx.Grid.MoveAgent(a, a.X+dx, a.Y) {
			return a.X == tx && a.Y == ty
		}
		if dy != 0 {
			ctx.Grid.MoveAgent(a, a.X, a.Y+dy)
		}
	}
	return a.X == tx && a.Y == ty
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

func (a *Agent) stepWander(ctx *Context) {
	dx := a.rng.Intn(3) - 1
	dy := a.rng.Intn(3) - 1
	ctx.Grid.MoveAgent(a, a.X+dx, a.Y+dy)
	a.Progress = 0.5
}

func (a *Agent) stepGoHome(ctx *Context) *Event {
	if !a.HasHome {
		a.Progress = 1.0
		return nil
	}
	if a.MoveToward(ctx, a.HomeX, a.HomeY) {
		a.Progress = 1.0
		if a.Needs[NeedRest] < sleepTrigger {
			a.SetAction(ActionSleep, Target{})
		}
	} else {
		a.Progress = 0.5
	}
	return nil
}

func (a *Agent) stepFindFood(ctx *Context) *Event {
	for t, amt := range a.Inventory {
		if t.IsFood() && amt > 0 {
			a.ConsumeFood()
			a.Progress = 1.0
			return nil
		}
	}
	for _, node := range ctx.Resources.At(a.X, a.Y) {
		if !node.Type.IsFood() || node.Depleted {
			continue
		}
		got := node.Extract(consumePortion)
		if got > 0 {
			a.AddToInventory(node.Type, got)
			a.ConsumeFood()
			a.Progress = 1.0
			return &Event{Agent: a.Name, Action: "gathered_food", Fields: map[string]any{
				"resource": node.Type.String(), "amount": got,
			}}
		}
	}
	a.stepWander(ctx)
	a.Progress = 0 // keep searching
	return nil
}

func (a *Agent) stepFindWater(ctx *Context) *Event {
	if a.Inventory[resource.Water] > 0 {
		a.ConsumeWater()
		a.Progress = 1.0
		return nil
	}
	for _, node := range ctx.Resources.At(a.X, a.Y) {
		if node.Type != resource.Water || node.Depleted {
			continue
		}
		got := node.Extract(consumePortion)
		if got > 0 {
			a.AddToInventory(resource.Water, got)
			a.ConsumeWater()
			a.Progress = 1.0
			return &Event{Agent: a.Name, Action: "gathered_water", Fields: map[string]any{
				"amount": got,
			}}
		}
	}
	a.stepWander(ctx)
	a.Progress = 0
	return nil
}

func (a *Agent) stepSleeping(ctx *Context) *Event {
	if !a.AtHome() && a.HasHome {
		a.SetAction(ActionGoHome, At(a.HomeX, a.HomeY))
		return nil
	}
	if a.Needs[NeedRest] >= wellRested {
		a.Progress = 1.0
	} else {
		a.Progress = 0.5
	}
	return nil
}

// stepFindShelter claims a home. A finished house with room is preferred;
// failing that the agent settles on a random cell.
func (a *Agent) stepFindShelter(ctx *Context) *Event {
	if !a.HasHome {
		claimed := false
		if ctx.Buildings != nil {
			for _, h := range ctx.Buildings.Houses() {
				if h.Complete() && h.Enter(a.ID) {
					a.SetHome(h.X, h.Y)
					claimed = true
					break
				}
			}
		}
		if !claimed {
			a.SetHome(a.rng.Intn(ctx.Grid.Width()), a.rng.Intn(ctx.Grid.Height()))
		}
	}
	a.SetAction(ActionGoHome, At(a.HomeX, a.HomeY))
	return nil
}

func (a *Agent) stepSocialize(ctx *Context) *Event {
	var others []*Agent
	for _, other := range ctx.Grid.AgentsNear(a.X, a.Y, 2) {
		if other.ID != a.ID && other.Alive() {
			others = append(others, other)
		}
	}
	if len(others) == 0 {
		a.stepWander(ctx)
		a.Progress = 0
		return nil
	}
	other := others[a.rng.Intn(len(others))]
	a.socializeWith(other)
	a.Progress = 1.0
	return &Event{Agent: a.Name, Action: "socialized", Fields: map[string]any{
		"with": other.Name,
	}}
}

func (a *Agent) socializeWith(other *Agent) {
	a.Needs[NeedSocial] = min(100.0, a.Needs[NeedSocial]+socialGain)
	if _, known := a.Relationships[other.ID]; !known {
		a.Relationships[other.ID] = a.rng.Float64()*20 - 10
	}
	a.Relationships[other.ID] = min(100.0, a.Relationships[other.ID]+0.5+a.rng.Float64()*1.5)
}
