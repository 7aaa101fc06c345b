package job

import (
	"math/rand"

	"github.com/talgya/villagesim/internal/agent"
	"github.com/talgya/villagesim/internal/clock"
	"github.com/talgya/villagesim/internal/resource"
)

// CropKind is what a farmer can plant.
type CropKind uint8

const (
	CropWheat CropKind = iota
	CropCorn
)

func (c CropKind) String() string {
	if c == CropCorn {
		return "corn"
	}
	return "wheat"
}

// growth per tick before modifiers
func (c CropKind) growthRate() float64 {
	if c == CropCorn {
		return 0.008
	}
	return 0.01
}

func (c CropKind) baseYield() float64 {
	if c == CropCorn {
		return 25.0
	}
	return 20.0
}

var cropSeasonModifiers = map[clock.Season]float64{
	clock.Spring: 1.2,
	clock.Summer: 1.5,
	clock.Autumn: 0.8,
	clock.Winter: 0.2,
}

var cropWeatherModifiers = map[clock.Weather]float64{
	clock.WeatherClear: 1.0,
	clock.WeatherRain:  1.3,
	clock.WeatherFog:   0.8,
	clock.WeatherStorm: 0.6,
	clock.WeatherSnow:  0.1,
}

// Crop is one planted field cell.
type Crop struct {
	Kind   CropKind
	Growth float64 // 0..1, ready at 1
}

type fieldPos struct{ x, y int }

// FarmerJob grows food. It keeps a set of known field cells, plants in
// season, tends growth, and delivers the harvest into village storage.
type FarmerJob struct {
	base
	knownFields  []fieldPos
	currentField fieldPos
	hasField     bool
	Crops        map[fieldPos]*Crop
}

// NewFarmer builds the farming occupation.
func NewFarmer(rng *rand.Rand) *FarmerJob {
	return &FarmerJob{
		base: base{
			kind: Farmer,
			modifiers: map[agent.Skill]float64{
				agent.SkillFarming:     0.5,
				agent.SkillWoodcutting: 0.2,
				agent.SkillCooking:     0.2,
			},
			rng: rng,
		},
		Crops: make(map[fieldPos]*Crop),
	}
}

func (f *FarmerJob) DecideAction(a *agent.Agent, ctx *agent.Context) {
	if !f.hasField && !f.acquireField(a, ctx) {
		// No field yet. Wander toward one.
		return
	}
	target := agent.At(f.currentField.x, f.currentField.y)
	if crop, ok := f.Crops[f.currentField]; ok {
		if crop.Growth >= 1.0 {
			a.SetAction(agent.ActionHarvestCrop, target)
		} else {
			a.SetAction(agent.ActionTendCrop, target)
		}
		return
	}
	season := ctx.Clock.Season()
	if season == clock.Spring || season == clock.Summer {
		a.SetAction(agent.ActionPlantCrop, target)
	} else {
		a.SetAction(agent.ActionPrepareField, target)
	}
}

// acquireField picks a known field or scouts a fresh cell near water that
// holds no resource node.
func (f *FarmerJob) acquireField(a *agent.Agent, ctx *agent.Context) bool {
	if len(f.knownFields) > 0 {
		f.currentField = f.knownFields[f.rng.Intn(len(f.knownFields))]
		f.hasField = true
		return true
	}
	for dy := -3; dy <= 3; dy++ {
		for dx := -3; dx <= 3; dx++ {
			x, y := a.X+dx, a.Y+dy
			if x < 0 || y < 0 || x >= ctx.Grid.Width() || y >= ctx.Grid.Height() {
				continue
			}
			if len(ctx.Resources.At(x, y)) > 0 {
				continue
			}
			if !nearWater(ctx, x, y) {
				continue
			}
			field := fieldPos{x, y}
			f.knownFields = append(f.knownFields, field)
			f.currentField = field
			f.hasField = true
			return true
		}
	}
	return false
}

func nearWater(ctx *agent.Context, x, y int) bool {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			for _, n := range ctx.Resources.At(x+dx, y+dy) {
				if n.Type == resource.Water {
					return true
				}
			}
		}
	}
	return false
}

func (f *FarmerJob) ProgressAction(a *agent.Agent, ctx *agent.Context, dt float64) *agent.Event {
	if !a.MoveToward(ctx, a.Target.X, a.Target.Y) {
		a.Progress = 0.5
		return nil
	}
	switch a.Action {
	case agent.ActionPrepareField:
		return f.progressWork(a, 0.85, 0.12, 0.1, 0.008, func() *agent.Event {
			return &agent.Event{Agent: a.Name, Action: "prepared_field", Fields: map[string]any{
				"x": f.currentField.x, "y": f.currentField.y,
			}}
		})
	case agent.ActionPlantCrop:
		return f.progressWork(a, 0.8, 0.1, 0.2, 0.01, func() *agent.Event {
			kind := CropWheat
			if ctx.Clock.Season() == clock.Summer {
				kind = CropCorn
			}
			f.Crops[f.currentField] = &Crop{Kind: kind}
			return &agent.Event{Agent: a.Name, Action: "planted_crop", Fields: map[string]any{
				"crop": kind.String(),
			}}
		})
	case agent.ActionTendCrop:
		crop, ok := f.Crops[f.currentField]
		if !ok {
			a.Progress = 1.0
			return nil
		}
		return f.progressWork(a, 0.9, 0.2, 0.2, 0.005, func() *agent.Event {
			boost := 0.05 + a.Skills[agent.SkillFarming]*0.05
			crop.Growth = min(1.0, crop.Growth+boost)
			return &agent.Event{Agent: a.Name, Action: "tended_crop", Fields: map[string]any{
				"crop": crop.Kind.String(), "growth": crop.Growth,
			}}
		})
	case agent.ActionHarvestCrop:
		crop, ok := f.Crops[f.currentField]
		if !ok {
			a.Progress = 1.0
			return nil
		}
		return f.progressWork(a, 0.7, 0.15, 0.15, 0.02, func() *agent.Event {
			skill := a.Skills[agent.SkillFarming]
			amount := crop.Kind.baseYield() * (0.8 + 0.4*skill) * crop.Growth
			delete(f.Crops, f.currentField)
			deposit(ctx, resource.FoodWheat, amount)
			return &agent.Event{Agent: a.Name, Action: "harvested_crop", Fields: map[string]any{
				"crop": crop.Kind.String(), "amount": amount,
			}}
		})
	}
	a.Progress = 1.0
	return nil
}

// progressWork advances field labor: progress grows with farming skill
// until the threshold, then finish runs and the action completes.
func (f *FarmerJob) progressWork(a *agent.Agent, threshold, baseRate, skillRate, learn float64, finish func() *agent.Event) *agent.Event {
	if a.Progress < threshold {
		a.Progress += baseRate + a.Skills[agent.SkillFarming]*skillRate
		a.ImproveSkill(agent.SkillFarming, learn)
		return nil
	}
	a.Progress = 1.0
	return finish()
}

// GrowCrops advances every planted crop by one tick of growth, scaled by
// season and weather. The world calls this each step.
func (f *FarmerJob) GrowCrops(season clock.Season, weather clock.Weather) {
	rate := cropSeasonModifiers[season] * cropWeatherModifiers[weather]
	for _, crop := range f.Crops {
		crop.Growth = min(1.0, crop.Growth+crop.Kind.growthRate()*rate)
	}
}
