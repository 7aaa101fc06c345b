package job

import (
	"math/rand"

	"github.com/talgya/villagesim/internal/agent"
	"github.com/talgya/villagesim/internal/building"
	"github.com/talgya/villagesim/internal/resource"
	"github.com/talgya/villagesim/internal/storage"
)

const repairThreshold = 60.0

// BuilderJob finishes unbuilt houses and keeps structures and storage
// facilities in repair.
type BuilderJob struct {
	base
	site        *building.House
	facility    *storage.Facility
	HousesBuilt int
	RepairsDone int
}

// NewBuilder builds the construction occupation.
func NewBuilder(rng *rand.Rand) *BuilderJob {
	return &BuilderJob{
		base: base{
			kind: Builder,
			modifiers: map[agent.Skill]float64{
				agent.SkillBuilding: 0.6,
				agent.SkillStrength: 0.3,
				agent.SkillCrafting: 0.2,
			},
			rng: rng,
		},
	}
}

func (b *BuilderJob) DecideAction(a *agent.Agent, ctx *agent.Context) {
	b.site, b.facility = nil, nil

	// Unfinished construction first.
	if ctx.Buildings != nil {
		for _, h := range ctx.Buildings.Houses() {
			if !h.Complete() {
				b.site = h
				a.SetAction(agent.ActionBuild, agent.At(h.X, h.Y))
				return
			}
		}
		// Then whatever is falling apart, worst first.
		var worst *building.House
		for _, h := range ctx.Buildings.Houses() {
			if h.Complete() && h.Condition < repairThreshold {
				if worst == nil || h.Condition < worst.Condition {
					worst = h
				}
			}
		}
		if worst != nil {
			b.site = worst
			a.SetAction(agent.ActionRepair, agent.At(worst.X, worst.Y))
			return
		}
	}
	var worstFacility *storage.Facility
	for _, f := range ctx.Storage.Facilities() {
		if f.Condition < repairThreshold {
			if worstFacility == nil || f.Condition < worstFacility.Condition {
				worstFacility = f
			}
		}
	}
	if worstFacility != nil {
		b.facility = worstFacility
		a.SetAction(agent.ActionRepair, agent.At(worstFacility.X, worstFacility.Y))
	}
}

func (b *BuilderJob) ProgressAction(a *agent.Agent, ctx *agent.Context, dt float64) *agent.Event {
	switch a.Action {
	case agent.ActionBuild:
		return b.progressBuild(a, ctx)
	case agent.ActionRepair:
		return b.progressRepair(a, ctx)
	}
	a.Progress = 1.0
	return nil
}

func (b *BuilderJob) progressBuild(a *agent.Agent, ctx *agent.Context) *agent.Event {
	site := b.site
	if site == nil || site.Complete() {
		a.Progress = 1.0
		return nil
	}
	if !a.MoveToward(ctx, site.X, site.Y) {
		a.Progress = 0.5
		return nil
	}
	if a.Progress < 0.8 {
		a.Progress += 0.15 + a.Skills[agent.SkillBuilding]*0.15
		a.ImproveSkill(agent.SkillBuilding, 0.01)
		a.ImproveSkill(agent.SkillStrength, 0.005)
		return nil
	}
	a.Progress = 1.0

	// Fetch and apply whatever the site still needs.
	applied := make(map[string]float64)
	for t, needed := range site.RemainingMaterials() {
		got := withdraw(ctx, t, needed)
		if got <= 0 {
			continue
		}
		used := site.AddMaterials(t, got)
		if leftover := got - used; leftover > 0 {
			deposit(ctx, t, leftover)
		}
		if used > 0 {
			applied[t.String()] = used
		}
	}
	if len(applied) == 0 {
		return &agent.Event{Agent: a.Name, Action: "build_failed", Fields: map[string]any{
			"reason": "no_materials",
		}}
	}
	if site.Complete() {
		b.HousesBuilt++
		return &agent.Event{Agent: a.Name, Action: "completed_building", Fields: map[string]any{
			"x": site.X, "y": site.Y,
		}}
	}
	return &agent.Event{Agent: a.Name, Action: "construction_progress", Fields: map[string]any{
		"applied": applied, "progress": site.Progress,
	}}
}

func (b *BuilderJob) progressRepair(a *agent.Agent, ctx *agent.Context) *agent.Event {
	if !a.MoveToward(ctx, a.Target.X, a.Target.Y) {
		a.Progress = 0.5
		return nil
	}
	if a.Progress < 0.85 {
		a.Progress += 0.12 + a.Skills[agent.SkillBuilding]*0.1
		a.ImproveSkill(agent.SkillBuilding, 0.008)
		return nil
	}
	a.Progress = 1.0

	// A repair consumes a little wood when the village has it.
	amount := 10.0 + a.Skills[agent.SkillBuilding]*10.0
	if withdraw(ctx, resource.Wood, 2.0) < 2.0 {
		amount /= 2 // patching without materials is slow work
	}
	switch {
	case b.site != nil:
		b.site.Repair(amount)
	case b.facility != nil:
		b.facility.Repair(amount, ctx.Clock.TotalDay())
	default:
		return nil
	}
	b.RepairsDone++
	return &agent.Event{Agent: a.Name, Action: "repaired_structure", Fields: map[string]any{
		"amount": amount,
	}}
}
