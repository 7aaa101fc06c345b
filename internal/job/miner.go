package job

import (
	"math/rand"

	"github.com/talgya/villagesim/internal/agent"
	"github.com/talgya/villagesim/internal/resource"
)

const minerCapacity = 40.0

// MinerJob digs stone and iron ore out of deposits and hauls them back.
// Ore takes priority while the smithy is starved for it.
type MinerJob struct {
	base
	currentDeposit fieldPos
	depositType    resource.Type
	hasDeposit     bool
	Carried        map[resource.Type]float64
}

// NewMiner builds the mining occupation.
func NewMiner(rng *rand.Rand) *MinerJob {
	return &MinerJob{
		base: base{
			kind: Miner,
			modifiers: map[agent.Skill]float64{
				agent.SkillMining:     0.5,
				agent.SkillStrength:   0.4,
				agent.SkillPerception: 0.2,
			},
			rng: rng,
		},
		Carried: make(map[resource.Type]float64),
	}
}

func (m *MinerJob) carriedTotal() float64 {
	var total float64
	for _, amt := range m.Carried {
		total += amt
	}
	return total
}

func (m *MinerJob) DecideAction(a *agent.Agent, ctx *agent.Context) {
	if m.carriedTotal() >= minerCapacity {
		a.SetAction(agent.ActionDeliverOre, dropoffTarget(a, ctx, resource.Stone))
		return
	}
	if !m.hasDeposit && !m.findDeposit(a, ctx) {
		return
	}
	a.SetAction(agent.ActionMineDeposit, agent.At(m.currentDeposit.x, m.currentDeposit.y))
}

func (m *MinerJob) findDeposit(a *agent.Agent, ctx *agent.Context) bool {
	// Ore shortage outranks stone.
	order := []resource.Type{resource.Stone, resource.IronOre}
	if villageAmount(ctx, resource.IronOre) < 20.0 {
		order = []resource.Type{resource.IronOre, resource.Stone}
	}
	for _, t := range order {
		if pos, ok := scanForNode(a, ctx, 6, t); ok {
			m.currentDeposit = pos
			m.depositType = t
			m.hasDeposit = true
			return true
		}
	}
	return false
}

func (m *MinerJob) ProgressAction(a *agent.Agent, ctx *agent.Context, dt float64) *agent.Event {
	switch a.Action {
	case agent.ActionMineDeposit:
		return m.progressMine(a, ctx)
	case agent.ActionDeliverOre:
		return m.progressDeliver(a, ctx)
	}
	a.Progress = 1.0
	return nil
}

func (m *MinerJob) progressMine(a *agent.Agent, ctx *agent.Context) *agent.Event {
	if !a.MoveToward(ctx, m.currentDeposit.x, m.currentDeposit.y) {
		a.Progress = 0.5
		return nil
	}
	node := nodeAt(ctx, a.X, a.Y, m.depositType)
	if node == nil {
		a.Progress = 1.0
		m.hasDeposit = false
		return &agent.Event{Agent: a.Name, Action: "deposit_exhausted", Fields: map[string]any{
			"resource": m.depositType.String(),
		}}
	}
	if a.Progress < 0.9 {
		skill := a.Skills[agent.SkillMining]
		a.Progress += 0.1 + skill*0.15
		a.ImproveSkill(agent.SkillMining, 0.006)
		a.ImproveSkill(agent.SkillStrength, 0.004)
		return nil
	}
	a.Progress = 1.0
	skill := a.Skills[agent.SkillMining]
	got := node.Extract(5.0 + skill*10.0)
	if got <= 0 {
		m.hasDeposit = false
		return nil
	}
	m.Carried[m.depositType] += got
	if m.carriedTotal() >= minerCapacity {
		a.SetAction(agent.ActionDeliverOre, dropoffTarget(a, ctx, resource.Stone))
	}
	return &agent.Event{Agent: a.Name, Action: "mined_deposit", Fields: map[string]any{
		"resource": m.depositType.String(), "amount": got, "carried": m.carriedTotal(),
	}}
}

func (m *MinerJob) progressDeliver(a *agent.Agent, ctx *agent.Context) *agent.Event {
	if !a.MoveToward(ctx, a.Target.X, a.Target.Y) {
		a.Progress = 0.5
		return nil
	}
	delivered := make(map[string]float64, len(m.Carried))
	for t, amt := range m.Carried {
		deposit(ctx, t, amt)
		delivered[t.String()] = amt
		delete(m.Carried, t)
	}
	a.Progress = 1.0
	return &agent.Event{Agent: a.Name, Action: "deposited_minerals", Fields: map[string]any{
		"delivered": delivered,
	}}
}

// Drop flushes carried minerals into the village economy.
func (m *MinerJob) Drop(a *agent.Agent, ctx *agent.Context) {
	for t, amt := range m.Carried {
		deposit(ctx, t, amt)
		delete(m.Carried, t)
	}
}
