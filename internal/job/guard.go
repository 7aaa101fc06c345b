package job

import (
	"math/rand"

	"github.com/talgya/villagesim/internal/agent"
	"github.com/talgya/villagesim/internal/resource"
	"github.com/talgya/villagesim/internal/threat"
)

const guardDetectRadius = 10

// GuardJob patrols the village and fights off whatever the wilds send.
// A guard checks out a weapon from storage and returns it when the job
// ends.
type GuardJob struct {
	base
	patrolPoints  []fieldPos
	patrolIndex   int
	HasWeapon     bool
	engaged       string // threat id
	DamageDealt   float64
	ThreatsBeaten int
}

// NewGuard builds the guarding occupation.
func NewGuard(rng *rand.Rand) *GuardJob {
	return &GuardJob{
		base: base{
			kind: Guard,
			modifiers: map[agent.Skill]float64{
				agent.SkillCombat:     0.8,
				agent.SkillStrength:   0.5,
				agent.SkillPerception: 0.3,
			},
			rng: rng,
		},
	}
}

func (g *GuardJob) DecideAction(a *agent.Agent, ctx *agent.Context) {
	if len(g.patrolPoints) == 0 {
		g.layPatrolRoute(ctx)
	}
	if !g.HasWeapon && withdraw(ctx, resource.Weapons, 1.0) >= 1.0 {
		g.HasWeapon = true
	}
	if ctx.Threats != nil {
		// Perception widens the detection net.
		radius := guardDetectRadius + int(a.Skills[agent.SkillPerception]*10)
		if threats := ctx.Threats.Near(a.X, a.Y, radius); len(threats) > 0 {
			t := nearestThreat(a, threats)
			g.engaged = t.ID
			a.SetAction(agent.ActionEngageThreat, agent.Target{X: t.X, Y: t.Y, ID: t.ID, Valid: true})
			return
		}
	}
	point := g.patrolPoints[g.patrolIndex]
	a.SetAction(agent.ActionPatrol, agent.At(point.x, point.y))
}

// layPatrolRoute rings the village center.
func (g *GuardJob) layPatrolRoute(ctx *agent.Context) {
	cx, cy := ctx.Grid.Width()/2, ctx.Grid.Height()/2
	r := min(ctx.Grid.Width(), ctx.Grid.Height()) / 4
	g.patrolPoints = []fieldPos{
		{cx - r, cy - r}, {cx + r, cy - r}, {cx + r, cy + r}, {cx - r, cy + r},
	}
	for i, p := range g.patrolPoints {
		g.patrolPoints[i] = fieldPos{
			clampInt(p.x, 0, ctx.Grid.Width()-1),
			clampInt(p.y, 0, ctx.Grid.Height()-1),
		}
	}
}

func (g *GuardJob) ProgressAction(a *agent.Agent, ctx *agent.Context, dt float64) *agent.Event {
	switch a.Action {
	case agent.ActionPatrol:
		return g.progressPatrol(a, ctx)
	case agent.ActionEngageThreat:
		return g.progressEngage(a, ctx, dt)
	}
	a.Progress = 1.0
	return nil
}

func (g *GuardJob) progressPatrol(a *agent.Agent, ctx *agent.Context) *agent.Event {
	if a.MoveToward(ctx, a.Target.X, a.Target.Y) {
		a.Progress = 1.0
		g.patrolIndex = (g.patrolIndex + 1) % len(g.patrolPoints)
		a.ImproveSkill(agent.SkillPerception, 0.004)
	} else {
		a.Progress = 0.5
	}
	return nil
}

func (g *GuardJob) progressEngage(a *agent.Agent, ctx *agent.Context, dt float64) *agent.Event {
	target := g.findEngaged(ctx)
	if target == nil || !target.Active() {
		// Threat gone before we got there.
		g.engaged = ""
		a.Progress = 1.0
		return nil
	}
	if !a.MoveToward(ctx, target.X, target.Y) {
		a.Progress = 0.5
		return nil
	}

	hours := dt / float64(ctx.Clock.TicksPerHour())
	effectiveness := 0.3 + a.Skills[agent.SkillCombat]*0.5 + a.Skills[agent.SkillStrength]*0.2
	if g.HasWeapon {
		effectiveness += 0.3
	}
	dealt := 10.0 * effectiveness * hours * (0.8 + g.rng.Float64()*0.4)
	taken := target.BaseStrength() * 0.05 * target.Strength * hours * (0.7 + g.rng.Float64()*0.3)

	defeated := target.TakeDamage(dealt)
	a.Health = max(0, a.Health-taken)
	g.DamageDealt += dealt

	a.ImproveSkill(agent.SkillCombat, 0.01)
	a.ImproveSkill(agent.SkillStrength, 0.005)

	if defeated {
		g.ThreatsBeaten++
		g.engaged = ""
		a.Progress = 1.0
		return &agent.Event{Agent: a.Name, Action: "threat_defeated", Fields: map[string]any{
			"threat": target.Kind.String(), "outcome": target.Status.String(),
		}}
	}
	a.Progress = 0.5
	return &agent.Event{Agent: a.Name, Action: "fighting_threat", Fields: map[string]any{
		"threat": target.Kind.String(), "damage": dealt,
	}}
}

func (g *GuardJob) findEngaged(ctx *agent.Context) *threat.Threat {
	if ctx.Threats == nil || g.engaged == "" {
		return nil
	}
	for _, t := range ctx.Threats.Active() {
		if t.ID == g.engaged {
			return t
		}
	}
	return nil
}

// Drop returns the checked-out weapon to the village.
func (g *GuardJob) Drop(a *agent.Agent, ctx *agent.Context) {
	if g.HasWeapon {
		deposit(ctx, resource.Weapons, 1.0)
		g.HasWeapon = false
	}
}

func nearestThreat(a *agent.Agent, threats []*threat.Threat) *threat.Threat {
	best := threats[0]
	bestDist := max(absInt(best.X-a.X), absInt(best.Y-a.Y))
	for _, t := range threats[1:] {
		if d := max(absInt(t.X-a.X), absInt(t.Y-a.Y)); d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
