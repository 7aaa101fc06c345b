// Command villagesim runs the autonomous village simulation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/villagesim/internal/api"
	"github.com/talgya/villagesim/internal/config"
	"github.com/talgya/villagesim/internal/engine"
	"github.com/talgya/villagesim/internal/journal"
)

func main() {
	var (
		configPath   string
		seed         int64
		days         int
		ticksPerHour int
		dbPath       string
		listenAddr   string
		realtime     bool
		verbose      bool
	)

	root := &cobra.Command{
		Use:   "villagesim",
		Short: "Run the autonomous village simulation",
		Long: `villagesim simulates a small medieval village: villagers work jobs,
gather and craft resources, build and repair houses, and defend the
village against threats, day after day, with no player input.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: level,
			}))
			slog.SetDefault(logger)

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			if cmd.Flags().Changed("days") {
				cfg.Days = days
			}
			if cmd.Flags().Changed("ticks-per-hour") {
				cfg.TicksPerHour = ticksPerHour
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			if cmd.Flags().Changed("listen") {
				cfg.ListenAddr = listenAddr
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}

			return run(cfg, realtime)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	flags.Int64Var(&seed, "seed", 42, "world generation seed")
	flags.IntVar(&days, "days", 30, "number of days to simulate (0 = run until the village dies)")
	flags.IntVar(&ticksPerHour, "ticks-per-hour", 10, "simulation ticks per game hour")
	flags.StringVar(&dbPath, "db", "village.db", "sqlite journal path (empty disables the journal)")
	flags.StringVar(&listenAddr, "listen", ":8080", "HTTP API listen address (empty disables the API)")
	flags.BoolVar(&realtime, "realtime", false, "pace the simulation against wall-clock time")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config, realtime bool) error {
	slog.Info("founding village", "seed", cfg.Seed, "villagers", cfg.InitialAgents,
		"world", fmt.Sprintf("%dx%d", cfg.WorldWidth, cfg.WorldHeight))

	var db *journal.DB
	if cfg.DBPath != "" {
		var err error
		db, err = journal.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer db.Close()
		slog.Info("journal opened", "path", cfg.DBPath)
	}

	sim := engine.NewSimulation(cfg)

	var server *api.Server
	if cfg.ListenAddr != "" {
		server = api.NewServer(db)
		server.EventRateLimit = cfg.APIRateLimit
		server.Publish(api.BuildSnapshot(sim))
		server.Start(cfg.ListenAddr)
	}

	sim.OnEvent = func(ev engine.Event) {
		if db != nil {
			if err := db.AppendEvent(ev); err != nil {
				slog.Error("journal write failed", "error", err)
			}
		}
		if server != nil {
			server.Broadcast(ev)
		}
	}

	runner := engine.NewRunner(sim)
	if !realtime {
		runner.Interval = 0
	}
	runner.OnTick = func() {
		if server != nil && sim.Clock.IsHourBoundary() {
			server.Publish(api.BuildSnapshot(sim))
		}
	}
	runner.OnDay = func(day int) {
		if db != nil {
			if err := db.WriteStats(sim.Stats); err != nil {
				slog.Error("stats write failed", "error", err)
			}
		}
		if cfg.Days > 0 && day >= cfg.Days {
			slog.Info("simulation complete", "days", day)
			runner.Stop()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner.Run(ctx)

	if db != nil {
		if err := db.WriteStats(sim.Stats); err != nil {
			slog.Error("final stats write failed", "error", err)
		}
	}
	slog.Info("simulation stopped", "day", sim.Clock.TotalDay(),
		"population", sim.Stats.Population, "deaths", sim.Stats.Deaths)
	return nil
}
