package job

import (
	"math/rand"

	"github.com/talgya/villagesim/internal/agent"
	"github.com/talgya/villagesim/internal/resource"
)

const (
	healerHerbCapacity = 30.0
	herbsPerPotion     = 3.0
	patientThreshold   = 50.0
)

// HealerJob gathers herbs, brews potions, and patches up hurt villagers.
type HealerJob struct {
	base
	herbSpot       fieldPos
	hasHerbSpot    bool
	CarriedHerbs   float64
	PotionsCreated int
	patientID      string
}

// NewHealer builds the healing occupation.
func NewHealer(rng *rand.Rand) *HealerJob {
	return &HealerJob{
		base: base{
			kind: Healer,
			modifiers: map[agent.Skill]float64{
				agent.SkillHealing:    0.7,
				agent.SkillPerception: 0.3,
				agent.SkillCrafting:   0.2,
			},
			rng: rng,
		},
	}
}

func (h *HealerJob) DecideAction(a *agent.Agent, ctx *agent.Context) {
	// The hurt come first.
	if patient := h.findPatient(a, ctx); patient != nil {
		h.patientID = patient.ID
		a.SetAction(agent.ActionTreatPatient, agent.Target{X: patient.X, Y: patient.Y, ID: patient.ID, Valid: true})
		return
	}
	if h.CarriedHerbs >= herbsPerPotion {
		home := agent.At(ctx.Grid.Width()/2, ctx.Grid.Height()/2)
		if a.HasHome {
			home = agent.At(a.HomeX, a.HomeY)
		}
		a.SetAction(agent.ActionBrewPotion, home)
		return
	}
	if h.CarriedHerbs < healerHerbCapacity {
		if !h.hasHerbSpot {
			pos, ok := scanForNode(a, ctx, 6, resource.Herb)
			if !ok {
				return
			}
			h.herbSpot = pos
			h.hasHerbSpot = true
		}
		a.SetAction(agent.ActionGatherHerbs, agent.At(h.herbSpot.x, h.herbSpot.y))
	}
}

func (h *HealerJob) findPatient(a *agent.Agent, ctx *agent.Context) *agent.Agent {
	radius := 8 + int(a.Skills[agent.SkillPerception]*8)
	var worst *agent.Agent
	for _, other := range ctx.Grid.AgentsNear(a.X, a.Y, radius) {
		if other.ID == a.ID || !other.Alive() || other.Health >= patientThreshold {
			continue
		}
		if worst == nil || other.Health < worst.Health {
			worst = other
		}
	}
	return worst
}

func (h *HealerJob) ProgressAction(a *agent.Agent, ctx *agent.Context, dt float64) *agent.Event {
	switch a.Action {
	case agent.ActionGatherHerbs:
		return h.progressGather(a, ctx)
	case agent.ActionBrewPotion:
		return h.progressBrew(a, ctx)
	case agent.ActionTreatPatient:
		return h.progressTreat(a, ctx)
	}
	a.Progress = 1.0
	return nil
}

func (h *HealerJob) progressGather(a *agent.Agent, ctx *agent.Context) *agent.Event {
	if !a.MoveToward(ctx, h.herbSpot.x, h.herbSpot.y) {
		a.Progress = 0.5
		return nil
	}
	node := nodeAt(ctx, a.X, a.Y, resource.Herb)
	if node == nil {
		a.Progress = 1.0
		h.hasHerbSpot = false
		return nil
	}
	if a.Progress < 0.85 {
		a.Progress += 0.15 + a.Skills[agent.SkillPerception]*0.1
		a.ImproveSkill(agent.SkillPerception, 0.006)
		a.ImproveSkill(agent.SkillHealing, 0.003)
		return nil
	}
	a.Progress = 1.0
	got := node.Extract(min(5.0, healerHerbCapacity-h.CarriedHerbs))
	h.CarriedHerbs += got
	return &agent.Event{Agent: a.Name, Action: "gathered_herbs", Fields: map[string]any{
		"amount": got, "carried": h.CarriedHerbs,
	}}
}

func (h *HealerJob) progressBrew(a *agent.Agent, ctx *agent.Context) *agent.Event {
	if !a.MoveToward(ctx, a.Target.X, a.Target.Y) {
		a.Progress = 0.5
		return nil
	}
	if h.CarriedHerbs < herbsPerPotion {
		a.Progress = 1.0
		return &agent.Event{Agent: a.Name, Action: "brew_failed", Fields: map[string]any{
			"reason": "not_enough_herbs",
		}}
	}
	if a.Progress < 0.8 {
		a.Progress += 0.15 + a.Skills[agent.SkillHealing]*0.15
		a.ImproveSkill(agent.SkillHealing, 0.007)
		a.ImproveSkill(agent.SkillCrafting, 0.005)
		return nil
	}
	a.Progress = 1.0
	h.CarriedHerbs -= herbsPerPotion
	h.PotionsCreated++
	deposit(ctx, resource.Potion, 1.0)
	return &agent.Event{Agent: a.Name, Action: "brewed_potion", Fields: map[string]any{
		"potions": h.PotionsCreated,
	}}
}

func (h *HealerJob) progressTreat(a *agent.Agent, ctx *agent.Context) *agent.Event {
	patient := h.findByID(ctx, a)
	if patient == nil || patient.Health >= patientThreshold {
		// Patient recovered, wandered off, or died.
		h.patientID = ""
		a.Progress = 1.0
		return nil
	}
	if !a.MoveToward(ctx, patient.X, patient.Y) {
		a.Progress = 0.5
		return nil
	}
	if a.Progress < 0.75 {
		a.Progress += 0.2 + a.Skills[agent.SkillHealing]*0.15
		return nil
	}
	a.Progress = 1.0
	h.patientID = ""

	heal := 10.0 + a.Skills[agent.SkillHealing]*15.0
	usedPotion := false
	if withdraw(ctx, resource.Potion, 1.0) >= 1.0 {
		heal += 15.0
		usedPotion = true
	}
	patient.Health = min(100.0, patient.Health+heal)
	a.ImproveSkill(agent.SkillHealing, 0.01)

	return &agent.Event{Agent: a.Name, Action: "treated_patient", Fields: map[string]any{
		"patient": patient.Name, "healed": heal, "potion": usedPotion,
	}}
}

func (h *HealerJob) findByID(ctx *agent.Context, a *agent.Agent) *agent.Agent {
	if h.patientID == "" {
		return nil
	}
	for _, other := range ctx.Grid.AgentsNear(a.X, a.Y, ctx.Grid.Width()+ctx.Grid.Height()) {
		if other.ID == h.patientID && other.Alive() {
			return other
		}
	}
	return nil
}

// Drop flushes gathered herbs into the village economy.
func (h *HealerJob) Drop(a *agent.Agent, ctx *agent.Context) {
	if h.CarriedHerbs > 0 {
		deposit(ctx, resource.Herb, h.CarriedHerbs)
		h.CarriedHerbs = 0
	}
}
