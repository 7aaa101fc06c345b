package engine

import (
	"context"
	"log/slog"
	"time"
)

// Runner paces a simulation against wall-clock time. A Speed of 1.0
// advances one tick per Interval; 0 pauses.
type Runner struct {
	Sim      *Simulation
	Speed    float64
	Interval time.Duration
	running  bool

	// Callbacks populated during setup.
	OnTick func() // after every tick
	OnDay  func(day int)
}

// NewRunner wraps a simulation with default real-time pacing.
func NewRunner(sim *Simulation) *Runner {
	return &Runner{
		Sim:      sim,
		Speed:    1.0,
		Interval: 100 * time.Millisecond,
	}
}

// Run drives the simulation until the context is cancelled, Stop is
// called, or the village dies out. Blocks.
func (r *Runner) Run(ctx context.Context) {
	r.running = true
	slog.Info("runner started", "speed", r.Speed, "interval", r.Interval)

	ticksPerDay := uint64(r.Sim.Clock.TicksPerHour()) * 24

	for r.running {
		select {
		case <-ctx.Done():
			r.running = false
			continue
		default:
		}

		if r.Speed <= 0 {
			// Paused. Sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		r.Sim.Step()
		if r.OnTick != nil {
			r.OnTick()
		}
		if r.Sim.Clock.Tick()%ticksPerDay == 0 && r.OnDay != nil {
			r.OnDay(r.Sim.Clock.TotalDay())
		}

		if len(r.Sim.aliveAgents()) == 0 {
			slog.Warn("the village has fallen", "day", r.Sim.Clock.TotalDay())
			r.running = false
			continue
		}

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(r.Interval) / r.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("runner stopped", "tick", r.Sim.Clock.Tick())
}

// Stop halts the loop after the current tick.
func (r *Runner) Stop() {
	r.running = false
}
