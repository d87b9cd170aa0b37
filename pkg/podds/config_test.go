package podds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, ValidateConfig(DefaultPoddsConfig()))
}

func TestValidateConfigCatchesBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*PoddsConfig)
	}{
		{"tiny goal grid", func(c *PoddsConfig) { c.GoalGridMax = 2 }},
		{"zero goals floor", func(c *PoddsConfig) { c.MinGoalsFloor = 0 }},
		{"too few trials", func(c *PoddsConfig) { c.SimulationTrials = 100 }},
		{"positive rho", func(c *PoddsConfig) { c.DixonColesRho = 0.05 }},
		{"excessive jitter", func(c *PoddsConfig) { c.LambdaJitter = 0.9 }},
		{"full kelly plus", func(c *PoddsConfig) { c.KellyFraction = 1.5 }},
		{"bet cap over bankroll", func(c *PoddsConfig) { c.MaxBetPercentage = 2.0 }},
		{"blend weight out of range", func(c *PoddsConfig) { c.SimulationWeight = 1.2 }},
		{"confidence floor at one", func(c *PoddsConfig) { c.StyleConfidenceFloor = 1.0 }},
		{"unbounded pool", func(c *PoddsConfig) { c.CouponPoolCap = 30 }},
		{"zero tolerance", func(c *PoddsConfig) { c.CouponTolerance = 0 }},
		{"no workers", func(c *PoddsConfig) { c.ScanWorkers = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultPoddsConfig()
			tc.mutate(config)
			assert.Error(t, ValidateConfig(config))
		})
	}
}

func TestUpdateConfigRejectsInvalid(t *testing.T) {
	original := Config
	defer func() { Config = original }()

	bad := DefaultPoddsConfig()
	bad.SimulationTrials = 10
	assert.Error(t, UpdateConfig(bad))
	assert.Same(t, original, Config, "A rejected config must not be installed")

	good := DefaultPoddsConfig()
	good.SimulationTrials = 5000
	require.NoError(t, UpdateConfig(good))
	assert.Equal(t, 5000, Config.SimulationTrials)
}

func TestLoadConfigOverridesOnTopOfDefaults(t *testing.T) {
	original := Config
	defer func() { Config = original }()

	path := filepath.Join(t.TempDir(), "podds.yaml")
	content := "simulationTrials: 20000\nkellyFraction: 0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 20000, config.SimulationTrials)
	assert.Equal(t, 0.5, config.KellyFraction)
	// Untouched fields keep their defaults
	assert.Equal(t, -0.03, config.DixonColesRho)
	assert.Same(t, config, Config, "LoadConfig installs the result globally")
}

func TestLoadConfigErrors(t *testing.T) {
	original := Config
	defer func() { Config = original }()

	_, err := LoadConfig("/nonexistent/podds.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulationTrials: [not a number"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)

	// Syntactically valid but semantically broken overrides are rejected too
	path = filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scanWorkers: 0\n"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
	assert.Same(t, original, Config)
}
