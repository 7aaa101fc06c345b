package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/talgya/villagesim/internal/agent"
	"github.com/talgya/villagesim/internal/building"
	"github.com/talgya/villagesim/internal/clock"
	"github.com/talgya/villagesim/internal/config"
	"github.com/talgya/villagesim/internal/job"
	"github.com/talgya/villagesim/internal/resource"
	"github.com/talgya/villagesim/internal/storage"
	"github.com/talgya/villagesim/internal/threat"
)

// starterStock is what the founding wagons carried in.
var starterStock = map[resource.Type]float64{
	resource.Wood:       150,
	resource.Stone:      60,
	resource.FoodBerry:  80,
	resource.FoodWheat:  60,
	resource.Herb:       15,
	resource.BasicTools: 5,
	resource.Weapons:    2,
}

// jobNames maps config occupation names to kinds.
var jobNames = map[string]job.Kind{
	"farmer":     job.Farmer,
	"woodcutter": job.Woodcutter,
	"miner":      job.Miner,
	"builder":    job.Builder,
	"blacksmith": job.Blacksmith,
	"guard":      job.Guard,
	"healer":     job.Healer,
	"merchant":   job.Merchant,
}

// NewSimulation builds a fresh village: terrain resources, storage
// facilities, founding houses, and the starting population with their
// assigned trades. Deterministic for a given seed.
func NewSimulation(cfg config.Config) *Simulation {
	rng := rand.New(rand.NewSource(cfg.Seed))

	world := NewWorld(cfg.WorldWidth, cfg.WorldHeight)
	resources := resource.NewManager(cfg.Seed)
	resources.Generate(cfg.WorldWidth, cfg.WorldHeight, cfg.Seed)

	stores := storage.NewManager()
	threats := threat.NewManager(cfg.WorldWidth, cfg.WorldHeight, cfg.Seed)
	jobs := job.NewManager(cfg.Seed)

	s := &Simulation{
		Clock:     clock.New(cfg.TicksPerHour, cfg.Seed),
		World:     world,
		Resources: resources,
		Storage:   stores,
		Threats:   threats,
		Jobs:      jobs,
		rng:       rng,
	}
	s.ctx = &agent.Context{
		Clock:     s.Clock,
		Grid:      world,
		Resources: resources,
		Storage:   stores,
		Buildings: world,
		Threats:   threats,
	}

	s.placeFacilities(cfg)
	s.stockVillage()
	s.spawnPopulation(cfg)
	s.collectStats(0)

	slog.Info("village founded",
		"size", cfg.WorldWidth, "population", cfg.InitialAgents, "seed", cfg.Seed)
	return s
}

// placeFacilities rings the village center with the founding storage
// buildings.
func (s *Simulation) placeFacilities(cfg config.Config) {
	cx, cy := cfg.WorldWidth/2, cfg.WorldHeight/2
	s.Storage.AddFacility(storage.NewWarehouse(cx-3, cy))
	s.Storage.AddFacility(storage.NewGranary(cx+3, cy))
	s.Storage.AddFacility(storage.NewStockpile(cx, cy-3))
	s.Storage.AddFacility(storage.NewArmory(cx, cy+3))
}

// stockVillage deposits the starter goods: facilities first, ledger
// overflow for anything they cannot hold.
func (s *Simulation) stockVillage() {
	for t := resource.Type(0); t < resource.NumTypes; t++ {
		amount, ok := starterStock[t]
		if !ok {
			continue
		}
		stored := s.Storage.AddResource(t, amount)
		if rest := amount - stored; rest > 0 {
			s.Resources.AddToVillageStorage(t, rest)
		}
	}
}

// spawnPopulation creates the founding villagers, houses them in pairs,
// and hands out the configured trades.
func (s *Simulation) spawnPopulation(cfg config.Config) {
	cx, cy := cfg.WorldWidth/2, cfg.WorldHeight/2

	var agents []*agent.Agent
	for i := 0; i < cfg.InitialAgents; i++ {
		a := agent.New(s.rng)
		a.X = cx + s.rng.Intn(9) - 4
		a.Y = cy + s.rng.Intn(9) - 4
		s.World.AddAgent(a)
		agents = append(agents, a)
		s.record(a.Name, "settled", map[string]any{"age": a.Age})
	}

	// One finished house per pair of founders.
	for i := 0; i < len(agents); i += 2 {
		hx := cx - 6 + (i/2)%6*2
		hy := cy + 5 + (i/2)/6*2
		h := building.NewHouse(hx, hy, agents[i].ID, s.rng)
		h.AddMaterials(resource.Wood, 50)
		h.AddMaterials(resource.Stone, 20)
		s.World.AddHouse(h)

		for j := i; j < i+2 && j < len(agents); j++ {
			if h.Enter(agents[j].ID) {
				agents[j].SetHome(hx, hy)
			}
		}
	}

	s.assignFoundingJobs(cfg, agents)
}

func (s *Simulation) assignFoundingJobs(cfg config.Config, agents []*agent.Agent) {
	names := make([]string, 0, len(cfg.InitialJobs))
	for name := range cfg.InitialJobs {
		names = append(names, name)
	}
	sort.Strings(names)

	next := 0
	for _, name := range names {
		kind, ok := jobNames[name]
		if !ok {
			slog.Warn("unknown occupation in config", "name", name)
			continue
		}
		for i := 0; i < cfg.InitialJobs[name] && next < len(agents); i++ {
			job.Assign(agents[next], job.New(kind, s.rng), s.ctx)
			s.Jobs.Register(agents[next])
			next++
		}
	}
	// Anyone left over farms.
	for ; next < len(agents); next++ {
		job.Assign(agents[next], job.New(job.Farmer, s.rng), s.ctx)
		s.Jobs.Register(agents[next])
	}
}

// Run steps the simulation for the given number of days, or until the
// context is cancelled or the village dies out.
func (s *Simulation) Run(ctx context.Context, days int) {
	ticksPerDay := s.Clock.TicksPerHour() * clock.HoursPerDay
	total := days * ticksPerDay
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			slog.Info("simulation interrupted", "time", s.Clock.String())
			return
		default:
		}
		s.Step()
		if len(s.aliveAgents()) == 0 {
			slog.Info("the village has fallen", "time", s.Clock.String())
			return
		}
	}
	slog.Info("simulation finished", "time", s.Clock.String(), "population", s.Stats.Population)
}
