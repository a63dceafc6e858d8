package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/facility-atlas/internal/model"
	"github.com/sells-group/facility-atlas/internal/overlap"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 20.0, cfg.Analysis.ServiceRadiusMiles)
	assert.Equal(t, 0.5, cfg.Analysis.ConsolidationRadiusFraction)
	assert.Equal(t, 15, cfg.Analysis.TopK)
	assert.Equal(t, 0.3, cfg.Analysis.SavingsFraction)
	assert.Equal(t, "outputs", cfg.Output.Dir)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FACILITY_ANALYSIS_SERVICE_RADIUS_MILES", "25")
	t.Setenv("FACILITY_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25.0, cfg.Analysis.ServiceRadiusMiles)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestAnalysisConfig_Overlap(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	oc := cfg.Analysis.Overlap()
	require.NoError(t, overlap.ValidateConfig(oc))
	assert.Equal(t, 2_000_000.0, oc.CategoryCosts[model.CategoryRHC])
	assert.Equal(t, 5_000_000.0, oc.CategoryCosts[model.CategoryFQHC])
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "not-a-level", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func TestInitLogger_Formats(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))
}
