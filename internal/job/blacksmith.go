package job

import (
	"math/rand"

	"github.com/talgya/villagesim/internal/agent"
	"github.com/talgya/villagesim/internal/resource"
)

const (
	forgeFuelLow  = 10.0
	forgeFuelLoad = 20.0
)

type recipe struct {
	inputs map[resource.Type]float64
	hours  float64
}

// smithingRecipes maps each product to what it eats. Wood in the ingot
// recipe is smelting fuel.
var smithingRecipes = map[resource.Type]recipe{
	resource.IronIngot: {
		inputs: map[resource.Type]float64{resource.IronOre: 2.0, resource.Wood: 0.5},
		hours:  0.5,
	},
	resource.BasicTools: {
		inputs: map[resource.Type]float64{resource.IronIngot: 5.0, resource.Wood: 2.0},
		hours:  1.0,
	},
	resource.Weapons: {
		inputs: map[resource.Type]float64{resource.IronIngot: 8.0, resource.Wood: 3.0},
		hours:  1.5,
	},
	resource.AdvancedTools: {
		inputs: map[resource.Type]float64{resource.IronIngot: 10.0, resource.Wood: 5.0},
		hours:  2.0,
	},
}

// BlacksmithJob smelts ore and crafts tools and weapons at a forge.
type BlacksmithJob struct {
	base
	forge      fieldPos
	hasForge   bool
	Fuel       float64
	project    resource.Type
	hasProject bool
	Completed  map[resource.Type]int
}

// NewBlacksmith builds the smithing occupation.
func NewBlacksmith(rng *rand.Rand) *BlacksmithJob {
	return &BlacksmithJob{
		base: base{
			kind: Blacksmith,
			modifiers: map[agent.Skill]float64{
				agent.SkillCrafting: 0.6,
				agent.SkillStrength: 0.3,
				agent.SkillBuilding: 0.2,
			},
			rng: rng,
		},
		Completed: make(map[resource.Type]int),
	}
}

func (b *BlacksmithJob) DecideAction(a *agent.Agent, ctx *agent.Context) {
	if !b.hasForge {
		if a.HasHome {
			b.forge = fieldPos{a.HomeX, a.HomeY}
		} else {
			b.forge = fieldPos{ctx.Grid.Width() / 2, ctx.Grid.Height() / 2}
		}
		b.hasForge = true
	}
	target := agent.At(b.forge.x, b.forge.y)
	if b.hasProject {
		a.SetAction(agent.ActionCraftItem, target)
		return
	}
	if b.Fuel < forgeFuelLow {
		a.SetAction(agent.ActionFuelForge, target)
		return
	}
	if product, ok := b.pickProject(ctx); ok {
		b.project = product
		b.hasProject = true
		a.SetAction(agent.ActionCraftItem, target)
		return
	}
	a.SetAction(agent.ActionWaitMaterials, target)
}

// pickProject walks the smithy's priorities: keep ingots flowing, then
// arm the village, then tool it up.
func (b *BlacksmithJob) pickProject(ctx *agent.Context) (resource.Type, bool) {
	order := []resource.Type{resource.IronIngot}
	if villageAmount(ctx, resource.Weapons) < 5.0 {
		order = append(order, resource.Weapons)
	}
	order = append(order, resource.BasicTools)
	if villageAmount(ctx, resource.BasicTools) >= 10.0 {
		order = append(order, resource.AdvancedTools)
	}
	for _, product := range order {
		if b.canAfford(ctx, smithingRecipes[product]) {
			return product, true
		}
	}
	return 0, false
}

func (b *BlacksmithJob) canAfford(ctx *agent.Context, r recipe) bool {
	for t, amt := range r.inputs {
		if villageAmount(ctx, t) < amt {
			return false
		}
	}
	return true
}

func (b *BlacksmithJob) ProgressAction(a *agent.Agent, ctx *agent.Context, dt float64) *agent.Event {
	if !a.MoveToward(ctx, b.forge.x, b.forge.y) {
		a.Progress = 0.5
		return nil
	}
	switch a.Action {
	case agent.ActionFuelForge:
		return b.progressFuel(a, ctx)
	case agent.ActionCraftItem:
		return b.progressCraft(a, ctx)
	case agent.ActionWaitMaterials:
		a.Progress += 0.2
		return nil
	}
	a.Progress = 1.0
	return nil
}

func (b *BlacksmithJob) progressFuel(a *agent.Agent, ctx *agent.Context) *agent.Event {
	if villageAmount(ctx, resource.Wood) < 1.0 {
		a.Progress = 1.0
		return &agent.Event{Agent: a.Name, Action: "forge_fuel_failed", Fields: map[string]any{
			"reason": "not_enough_wood",
		}}
	}
	// Fueling advances in fixed quarter steps, so the completion window
	// must open at 0.75 or the fourth step overshoots it.
	if a.Progress < 0.75 {
		a.Progress += 0.25
		return nil
	}
	a.Progress = 1.0
	added := withdraw(ctx, resource.Wood, forgeFuelLoad)
	b.Fuel += added
	return &agent.Event{Agent: a.Name, Action: "forge_fueled", Fields: map[string]any{
		"amount": added, "fuel": b.Fuel,
	}}
}

func (b *BlacksmithJob) progressCraft(a *agent.Agent, ctx *agent.Context) *agent.Event {
	if !b.hasProject {
		a.Progress = 1.0
		return nil
	}
	product := b.project
	r := smithingRecipes[product]

	// Everything past smelting needs a hot forge.
	if product != resource.IronIngot && b.Fuel < 1.0 {
		b.hasProject = false
		a.SetAction(agent.ActionFuelForge, agent.At(b.forge.x, b.forge.y))
		return nil
	}

	threshold := 1.0 - 0.2/r.hours // longer recipes take more passes
	if a.Progress < threshold {
		skill := a.Skills[agent.SkillCrafting]
		a.Progress += (0.2 + skill*0.1) / r.hours
		a.ImproveSkill(agent.SkillCrafting, 0.008)
		if product != resource.IronIngot {
			b.Fuel = max(0, b.Fuel-0.1)
		}
		return nil
	}

	a.Progress = 1.0
	b.hasProject = false

	// Materials must still be there at the moment of completion.
	for t, amt := range r.inputs {
		if villageAmount(ctx, t) < amt {
			return &agent.Event{Agent: a.Name, Action: "craft_failed", Fields: map[string]any{
				"item": product.String(), "missing": t.String(),
			}}
		}
	}
	for t, amt := range r.inputs {
		withdraw(ctx, t, amt)
	}

	quality := 1.0 + a.Skills[agent.SkillCrafting]*0.5
	deposit(ctx, product, quality)
	b.Completed[product]++

	return &agent.Event{Agent: a.Name, Action: "crafted_item", Fields: map[string]any{
		"item": product.String(), "quality": quality,
	}}
}
