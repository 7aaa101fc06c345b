// Package config loads simulation settings from a YAML file, with
// working defaults when no file is given.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a simulation run.
type Config struct {
	WorldWidth   int   `yaml:"world_width"`
	WorldHeight  int   `yaml:"world_height"`
	TicksPerHour int   `yaml:"ticks_per_hour"`
	Seed         int64 `yaml:"seed"`

	InitialAgents int            `yaml:"initial_agents"`
	InitialJobs   map[string]int `yaml:"initial_jobs,omitempty"`

	// Run control.
	Days         int    `yaml:"days"`
	DBPath       string `yaml:"db_path"`
	ListenAddr   string `yaml:"listen_addr"`
	APIRateLimit int    `yaml:"api_rate_limit"`
}

// Load reads the config at path, applying defaults for anything unset.
// An empty path yields pure defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Defaults returns a ready-to-run configuration.
func Defaults() Config {
	return Config{
		WorldWidth:    50,
		WorldHeight:   50,
		TicksPerHour:  10,
		Seed:          42,
		InitialAgents: 15,
		InitialJobs: map[string]int{
			"farmer":     4,
			"woodcutter": 2,
			"miner":      2,
			"builder":    2,
			"blacksmith": 1,
			"guard":      2,
			"healer":     1,
			"merchant":   1,
		},
		Days:         30,
		DBPath:       "village.db",
		ListenAddr:   ":8080",
		APIRateLimit: 60,
	}
}

func (c *Config) applyDefaults() {
	d := Defaults()
	if c.WorldWidth <= 0 {
		c.WorldWidth = d.WorldWidth
	}
	if c.WorldHeight <= 0 {
		c.WorldHeight = d.WorldHeight
	}
	if c.TicksPerHour <= 0 {
		c.TicksPerHour = d.TicksPerHour
	}
	if c.InitialAgents <= 0 {
		c.InitialAgents = d.InitialAgents
	}
	if c.Days <= 0 {
		c.Days = d.Days
	}
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = d.DBPath
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.APIRateLimit <= 0 {
		c.APIRateLimit = d.APIRateLimit
	}
	if c.InitialJobs == nil {
		c.InitialJobs = d.InitialJobs
	}
}

// Validate rejects configurations the simulation cannot run with.
func (c Config) Validate() error {
	if c.WorldWidth < 10 || c.WorldHeight < 10 {
		return fmt.Errorf("world must be at least 10x10, got %dx%d", c.WorldWidth, c.WorldHeight)
	}
	if c.TicksPerHour < 1 {
		return fmt.Errorf("ticks_per_hour must be >= 1, got %d", c.TicksPerHour)
	}
	if c.InitialAgents < 1 {
		return fmt.Errorf("initial_agents must be >= 1, got %d", c.InitialAgents)
	}
	total := 0
	for name, n := range c.InitialJobs {
		if n < 0 {
			return fmt.Errorf("initial_jobs.%s must not be negative", name)
		}
		total += n
	}
	if total > c.InitialAgents {
		return fmt.Errorf("initial_jobs assigns %d workers but only %d agents spawn", total, c.InitialAgents)
	}
	return nil
}
