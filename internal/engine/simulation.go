// Package engine ties the village systems together and advances them
// tick by tick.
package engine

import (
	"log/slog"
	"math/rand"

	"github.com/talgya/villagesim/internal/agent"
	"github.com/talgya/villagesim/internal/clock"
	"github.com/talgya/villagesim/internal/job"
	"github.com/talgya/villagesim/internal/resource"
	"github.com/talgya/villagesim/internal/storage"
	"github.com/talgya/villagesim/internal/threat"
)

// maxEvents bounds the in-memory event buffer.
const maxEvents = 1000

// Event is a notable occurrence in the village, normalized from agent
// and threat reports.
type Event struct {
	Tick   uint64         `json:"tick"`
	Day    int            `json:"day"`
	Hour   int            `json:"hour"`
	Source string         `json:"source"`
	Action string         `json:"action"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Stats aggregates village state once per day.
type Stats struct {
	Day           int     `json:"day"`
	Population    int     `json:"population"`
	Deaths        int     `json:"deaths"`
	AvgHealth     float64 `json:"avg_health"`
	AvgFood       float64 `json:"avg_food"`
	TotalFood     float64 `json:"total_food"`
	TotalWood     float64 `json:"total_wood"`
	ActiveThreats int     `json:"active_threats"`
}

// Simulation holds the complete village state and wires systems together.
type Simulation struct {
	Clock     *clock.TimeSystem
	World     *World
	Resources *resource.Manager
	Storage   *storage.Manager
	Threats   *threat.Manager
	Jobs      *job.Manager

	Events []Event
	Stats  Stats

	// OnEvent, when set, receives every event as it happens. Used to feed
	// the journal and the live API stream.
	OnEvent func(Event)

	ctx         *agent.Context
	rng         *rand.Rand
	totalDeaths int
}

// Step advances the simulation by one tick.
func (s *Simulation) Step() {
	s.Clock.Step()
	hours := 1.0 / float64(s.Clock.TicksPerHour())

	s.Resources.Step(hours, clock.SeasonRegrowthModifier(s.Clock.Season()))

	s.stepAgents()
	s.stepCrops()

	if s.Clock.IsHourBoundary() {
		s.stepHour()
	}
}

// stepAgents advances every agent in list order, collecting events and
// handling deaths as they happen.
func (s *Simulation) stepAgents() {
	var dead []*agent.Agent
	for _, a := range s.World.Agents() {
		if !a.Alive() {
			continue
		}
		if ev := a.Step(s.ctx, 1.0); ev != nil {
			s.record(ev.Agent, ev.Action, ev.Fields)
		}
		if !a.Alive() {
			dead = append(dead, a)
		}
	}
	for _, a := range dead {
		s.handleDeath(a)
	}
}

// stepCrops grows every farmer's planted fields one tick, whether or not
// the farmer is standing on them.
func (s *Simulation) stepCrops() {
	season := s.Clock.Season()
	weather := s.Clock.Weather()
	for _, a := range s.World.Agents() {
		if f, ok := a.Occupation.(*job.FarmerJob); ok {
			f.GrowCrops(season, weather)
		}
	}
}

// stepHour runs the once-per-hour systems: threats, house weathering,
// need signals, and on the right hours the daily work.
func (s *Simulation) stepHour() {
	hour := s.Clock.Hour()
	day := s.Clock.TotalDay()
	season := s.Clock.Season()
	weather := s.Clock.Weather()

	for _, h := range s.World.Houses() {
		h.Step(season, weather)
	}

	reports := s.Threats.Step(hour, day, season, 1.0, s.villageState(), s.World.Houses(), s.Resources)
	for _, r := range reports {
		s.record(r.Kind.String(), r.Action, r.Fields)
	}

	s.Jobs.UpdateVillageNeeds(s.aliveAgents(), s.World.Houses(), s.Resources,
		s.Storage.TotalAmount, season)

	if hour == 6 {
		s.evaluateJobs(day)
	}
	if hour == 0 {
		s.collectStats(day)
		s.logDay()
	}
}

// evaluateJobs runs the morning job review: the jobless get work, and
// anyone the village needs more elsewhere is reassigned.
func (s *Simulation) evaluateJobs(day int) {
	for _, a := range s.aliveAgents() {
		if a.Occupation == nil || s.Jobs.ShouldChangeJob(a, day) {
			from := kindName(a)
			to := s.Jobs.AssignNewJob(a, s.ctx, day)
			s.record(a.Name, "changed_job", map[string]any{
				"from": from, "to": to.String(),
			})
		}
	}
}

func kindName(a *agent.Agent) string {
	if a.Occupation == nil {
		return "unemployed"
	}
	return a.Occupation.Name()
}

func (s *Simulation) handleDeath(a *agent.Agent) {
	s.Jobs.Unregister(a)
	job.Remove(a, s.ctx)
	s.World.RemoveAgent(a)
	s.totalDeaths++
	s.record(a.Name, "died", map[string]any{
		"age": a.Age, "day": s.Clock.TotalDay(),
	})
	slog.Info("villager died", "name", a.Name, "age", a.Age, "day", s.Clock.TotalDay())
}

// villageState summarizes how defensible the village looks to a raider.
func (s *Simulation) villageState() threat.VillageState {
	return threat.VillageState{
		Population: len(s.aliveAgents()),
		Guards:     s.Jobs.Distribution()[job.Guard],
		Weapons:    s.villageAmount(resource.Weapons),
		Tools:      s.villageAmount(resource.BasicTools) + s.villageAmount(resource.AdvancedTools),
	}
}

func (s *Simulation) villageAmount(t resource.Type) float64 {
	return s.Resources.VillageAmount(t) + s.Storage.TotalAmount(t)
}

func (s *Simulation) aliveAgents() []*agent.Agent {
	agents := s.World.Agents()
	out := make([]*agent.Agent, 0, len(agents))
	for _, a := range agents {
		if a.Alive() {
			out = append(out, a)
		}
	}
	return out
}

func (s *Simulation) collectStats(day int) {
	alive := s.aliveAgents()
	st := Stats{
		Day:           day,
		Population:    len(alive),
		Deaths:        s.totalDeaths,
		ActiveThreats: len(s.Threats.Active()),
	}
	for _, a := range alive {
		st.AvgHealth += a.Health
		st.AvgFood += a.Needs[agent.NeedFood]
	}
	if len(alive) > 0 {
		st.AvgHealth /= float64(len(alive))
		st.AvgFood /= float64(len(alive))
	}
	for _, t := range []resource.Type{resource.FoodBerry, resource.FoodFish, resource.FoodWheat} {
		st.TotalFood += s.villageAmount(t)
	}
	st.TotalWood = s.villageAmount(resource.Wood)
	s.Stats = st
}

func (s *Simulation) logDay() {
	slog.Info("daily report",
		"time", s.Clock.String(),
		"population", s.Stats.Population,
		"deaths", s.Stats.Deaths,
		"avg_health", s.Stats.AvgHealth,
		"avg_food", s.Stats.AvgFood,
		"stored_food", s.Stats.TotalFood,
		"stored_wood", s.Stats.TotalWood,
		"threats", s.Stats.ActiveThreats,
	)
}

func (s *Simulation) record(source, action string, fields map[string]any) {
	ev := Event{
		Tick:   s.Clock.Tick(),
		Day:    s.Clock.TotalDay(),
		Hour:   s.Clock.Hour(),
		Source: source,
		Action: action,
		Fields: fields,
	}
	s.Events = append(s.Events, ev)
	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
	if s.OnEvent != nil {
		s.OnEvent(ev)
	}
}
