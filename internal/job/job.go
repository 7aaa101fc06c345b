// Package job implements the village occupations. Each job is a typed
// strategy that decides and progresses work actions for its holder, moving
// resources through the village economy as it goes.
package job

import (
	"math/rand"

	"github.com/talgya/villagesim/internal/agent"
	"github.com/talgya/villagesim/internal/resource"
)

// Kind identifies an occupation.
type Kind uint8

const (
	Unemployed Kind = iota
	Farmer
	Woodcutter
	Miner
	Builder
	Blacksmith
	Guard
	Healer
	Merchant
)

// AllKinds lists the assignable occupations.
var AllKinds = []Kind{
	Farmer, Woodcutter, Miner, Builder, Blacksmith, Guard, Healer, Merchant,
}

func (k Kind) String() string {
	switch k {
	case Farmer:
		return "farmer"
	case Woodcutter:
		return "woodcutter"
	case Miner:
		return "miner"
	case Builder:
		return "builder"
	case Blacksmith:
		return "blacksmith"
	case Guard:
		return "guard"
	case Healer:
		return "healer"
	case Merchant:
		return "merchant"
	default:
		return "unemployed"
	}
}

// Job extends the agent-facing occupation contract with what the manager
// needs: the kind, the skill modifiers applied on assignment, and a hook
// to flush carried goods back into the economy on removal.
type Job interface {
	agent.Occupation
	Kind() Kind
	SkillModifiers() map[agent.Skill]float64
	Drop(a *agent.Agent, ctx *agent.Context)
}

// New constructs a fresh job of the given kind.
func New(kind Kind, rng *rand.Rand) Job {
	switch kind {
	case Farmer:
		return NewFarmer(rng)
	case Woodcutter:
		return NewWoodcutter(rng)
	case Miner:
		return NewMiner(rng)
	case Builder:
		return NewBuilder(rng)
	case Blacksmith:
		return NewBlacksmith(rng)
	case Guard:
		return NewGuard(rng)
	case Healer:
		return NewHealer(rng)
	case Merchant:
		return NewMerchant(rng)
	default:
		return nil
	}
}

// Assign gives the agent a new job, replacing any previous one. Matching
// skills are multiplied by (1 + modifier); Remove divides them back, so
// the round trip is exact.
func Assign(a *agent.Agent, j Job, ctx *agent.Context) {
	if a.Occupation != nil {
		Remove(a, ctx)
	}
	a.Occupation = j
	for skill, mod := range j.SkillModifiers() {
		a.Skills[skill] *= 1.0 + mod
	}
}

// Remove takes the agent's job away: skill modifiers are reversed exactly,
// job-carried goods are flushed into the village economy, and any job
// action in flight is dropped.
func Remove(a *agent.Agent, ctx *agent.Context) {
	j, ok := a.Occupation.(Job)
	if !ok {
		a.Occupation = nil
		return
	}
	for skill, mod := range j.SkillModifiers() {
		a.Skills[skill] /= 1.0 + mod
	}
	j.Drop(a, ctx)
	a.Occupation = nil
	if a.Action != agent.ActionNone && !a.Action.Survival() {
		a.SetAction(agent.ActionNone, agent.Target{})
	}
}

// base carries the pieces every job shares.
type base struct {
	kind      Kind
	modifiers map[agent.Skill]float64
	rng       *rand.Rand
}

func (b *base) Kind() Kind                              { return b.kind }
func (b *base) Name() string                            { return b.kind.String() }
func (b *base) SkillModifiers() map[agent.Skill]float64 { return b.modifiers }
func (b *base) Drop(a *agent.Agent, ctx *agent.Context) {}

// deposit routes an amount into the village economy: physical storage
// first, ledger overflow for whatever no facility takes.
func deposit(ctx *agent.Context, t resource.Type, amount float64) {
	if amount <= 0 {
		return
	}
	stored := ctx.Storage.AddResource(t, amount)
	if rest := amount - stored; rest > 0 {
		ctx.Resources.AddToVillageStorage(t, rest)
	}
}

// withdraw pulls an amount out of the village economy, draining the
// ledger first and then physical storage. Returns what it got.
func withdraw(ctx *agent.Context, t resource.Type, amount float64) float64 {
	got := ctx.Resources.TakeFromVillageStorage(t, amount)
	if got < amount {
		got += ctx.Storage.RemoveResource(t, amount-got)
	}
	return got
}

// villageAmount is the total of a type across ledger and facilities.
func villageAmount(ctx *agent.Context, t resource.Type) float64 {
	return ctx.Resources.VillageAmount(t) + ctx.Storage.TotalAmount(t)
}
