package di

import (
	"testing"

	"StockPilot/internal/services/research"
	"StockPilot/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResearchParamsDefaultsMatchCalibration(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	bull, bear, cons := researchParams(cfg)
	assert.Equal(t, research.DefaultBullParams(), bull)
	assert.Equal(t, research.DefaultBearParams(), bear)
	assert.Equal(t, research.DefaultConsensusParams(), cons)
}

func TestResearchParamsOverrides(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Research.BearDamping = 0.75
	cfg.Research.VariancePenalty = 4
	cfg.Research.OptimismBias = 1

	bull, bear, cons := researchParams(cfg)
	assert.Equal(t, 1.0, bull.OptimismBias)
	assert.Equal(t, 4.0, bear.VariancePenalty)
	assert.Equal(t, 0.75, cons.BearDamping)
	assert.Equal(t, research.DefaultConsensusParams().MaxConfidence, cons.MaxConfidence)
}

func TestInitializeToolkitWithoutInfrastructure(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Cache.Dir = t.TempDir()

	tk, err := InitializeToolkit(cfg)
	require.NoError(t, err)
	require.NotNil(t, tk.Coordinator)
	require.NotNil(t, tk.HTTP)
	assert.NoError(t, tk.Close())
}
