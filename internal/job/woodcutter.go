package job

import (
	"math/rand"

	"github.com/talgya/villagesim/internal/agent"
	"github.com/talgya/villagesim/internal/resource"
)

const woodcutterCapacity = 50.0

// WoodcutterJob fells trees and hauls the lumber back to storage.
type WoodcutterJob struct {
	base
	knownForests  []fieldPos
	currentForest fieldPos
	hasForest     bool
	Carried       float64
	TreesFelled   int
}

// NewWoodcutter builds the woodcutting occupation.
func NewWoodcutter(rng *rand.Rand) *WoodcutterJob {
	return &WoodcutterJob{
		base: base{
			kind: Woodcutter,
			modifiers: map[agent.Skill]float64{
				agent.SkillWoodcutting: 0.5,
				agent.SkillStrength:    0.3,
				agent.SkillSurvival:    0.2,
			},
			rng: rng,
		},
	}
}

func (w *WoodcutterJob) DecideAction(a *agent.Agent, ctx *agent.Context) {
	if w.Carried >= woodcutterCapacity {
		a.SetAction(agent.ActionDeliverWood, dropoffTarget(a, ctx, resource.Wood))
		return
	}
	if !w.hasForest && !w.findForest(a, ctx) {
		return
	}
	a.SetAction(agent.ActionChopWood, agent.At(w.currentForest.x, w.currentForest.y))
}

// findForest locates a tree stand: a known one first, then a scan of the
// surrounding cells.
func (w *WoodcutterJob) findForest(a *agent.Agent, ctx *agent.Context) bool {
	// Forget known forests that have since been stripped.
	live := w.knownForests[:0]
	for _, f := range w.knownForests {
		if hasLiveNode(ctx, f.x, f.y, resource.Tree) {
			live = append(live, f)
		}
	}
	w.knownForests = live

	if len(w.knownForests) > 0 {
		w.currentForest = w.knownForests[w.rng.Intn(len(w.knownForests))]
		w.hasForest = true
		return true
	}
	if pos, ok := scanForNode(a, ctx, 5, resource.Tree); ok {
		w.knownForests = append(w.knownForests, pos)
		w.currentForest = pos
		w.hasForest = true
		return true
	}
	return false
}

func (w *WoodcutterJob) ProgressAction(a *agent.Agent, ctx *agent.Context, dt float64) *agent.Event {
	switch a.Action {
	case agent.ActionChopWood:
		return w.progressChop(a, ctx)
	case agent.ActionDeliverWood:
		return w.progressDeliver(a, ctx)
	}
	a.Progress = 1.0
	return nil
}

func (w *WoodcutterJob) progressChop(a *agent.Agent, ctx *agent.Context) *agent.Event {
	if !a.MoveToward(ctx, w.currentForest.x, w.currentForest.y) {
		a.Progress = 0.5
		return nil
	}
	tree := nodeAt(ctx, a.X, a.Y, resource.Tree)
	if tree == nil {
		a.Progress = 1.0
		w.hasForest = false
		return &agent.Event{Agent: a.Name, Action: "forest_depleted", Fields: map[string]any{
			"x": a.X, "y": a.Y,
		}}
	}
	if a.Progress < 0.95 {
		skill := a.Skills[agent.SkillWoodcutting]
		a.Progress += 0.15 + skill*0.15
		a.ImproveSkill(agent.SkillWoodcutting, 0.006)
		a.ImproveSkill(agent.SkillStrength, 0.003)
		return nil
	}
	a.Progress = 1.0
	if tree.Extract(1.0) <= 0 {
		w.hasForest = false
		return nil
	}
	if tree.Depleted {
		w.TreesFelled++
	}
	skill := a.Skills[agent.SkillWoodcutting]
	amount := 10.0 + skill*15.0
	w.Carried += amount
	if w.Carried >= woodcutterCapacity {
		a.SetAction(agent.ActionDeliverWood, dropoffTarget(a, ctx, resource.Wood))
	}
	return &agent.Event{Agent: a.Name, Action: "chopped_wood", Fields: map[string]any{
		"amount": amount, "carried": w.Carried,
	}}
}

func (w *WoodcutterJob) progressDeliver(a *agent.Agent, ctx *agent.Context) *agent.Event {
	if !a.MoveToward(ctx, a.Target.X, a.Target.Y) {
		a.Progress = 0.5
		return nil
	}
	amount := w.Carried
	w.Carried = 0
	deposit(ctx, resource.Wood, amount)
	a.Progress = 1.0
	return &agent.Event{Agent: a.Name, Action: "deposited_wood", Fields: map[string]any{
		"amount": amount,
	}}
}

// Drop flushes carried lumber into the village economy instead of losing
// it with the job.
func (w *WoodcutterJob) Drop(a *agent.Agent, ctx *agent.Context) {
	if w.Carried > 0 {
		deposit(ctx, resource.Wood, w.Carried)
		w.Carried = 0
	}
}

// shared target helpers

// dropoffTarget aims at the nearest facility that takes the type, or the
// village center when none exists.
func dropoffTarget(a *agent.Agent, ctx *agent.Context, t resource.Type) agent.Target {
	best := agent.At(ctx.Grid.Width()/2, ctx.Grid.Height()/2)
	bestDist := -1
	for _, f := range ctx.Storage.FacilitiesFor(t) {
		d := max(absInt(f.X-a.X), absInt(f.Y-a.Y))
		if bestDist < 0 || d < bestDist {
			best = agent.At(f.X, f.Y)
			bestDist = d
		}
	}
	return best
}

// scanForNode searches outward for a live node of the type.
func scanForNode(a *agent.Agent, ctx *agent.Context, radius int, t resource.Type) (fieldPos, bool) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x, y := a.X+dx, a.Y+dy
			if hasLiveNode(ctx, x, y, t) {
				return fieldPos{x, y}, true
			}
		}
	}
	return fieldPos{}, false
}

func hasLiveNode(ctx *agent.Context, x, y int, t resource.Type) bool {
	return nodeAt(ctx, x, y, t) != nil
}

func nodeAt(ctx *agent.Context, x, y int, t resource.Type) *resource.Node {
	for _, n := range ctx.Resources.At(x, y) {
		if n.Type == t && !n.Depleted {
			return n
		}
	}
	return nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
