package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.WorldWidth)
	assert.Equal(t, 10, cfg.TicksPerHour)
	assert.Equal(t, 15, cfg.InitialAgents)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesAndBackfills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "village.yaml")
	data := "world_width: 80\nworld_height: 80\nseed: 7\ninitial_agents: 20\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.WorldWidth)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 20, cfg.InitialAgents)
	assert.Equal(t, 10, cfg.TicksPerHour, "unset fields fall back to defaults")
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 60, cfg.APIRateLimit)
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "village.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world_width: 5\nworld_height: 5\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateJobTotals(t *testing.T) {
	cfg := Defaults()
	cfg.InitialAgents = 5
	assert.Error(t, cfg.Validate(), "default job plan needs more agents than 5")

	cfg.InitialJobs = map[string]int{"farmer": 3}
	assert.NoError(t, cfg.Validate())
}
