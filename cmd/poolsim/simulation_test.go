package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/respawn/pkg/config"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Simulation = config.SimulationConfig{
		Frames:          40,
		SpawnsPerFrame:  3,
		Lifetime:        5,
		EffectsPerFrame: 2,
		EffectFrames:    3,
		AssetEvery:      4,
	}
	return cfg
}

func TestSimulationRecyclesObjects(t *testing.T) {
	ctx := context.Background()
	cfg := smallConfig()

	sim, err := newSimulation(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	report, err := sim.run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 40, report.Frames)
	assert.Zero(t, report.AssetFailures)

	props := report.Pools["props"]
	assert.EqualValues(t, 40*3, props.Claims)
	assert.Less(t, props.Created, props.Claims, "props must be reused")
	assert.EqualValues(t, props.Claims, props.Hits+props.Created-int64(cfg.Pool("props").Prewarm))

	effects := report.Pools["effects"]
	assert.EqualValues(t, 40*2, effects.Claims)
	assert.Positive(t, effects.Releases)

	assets := report.Pools["assets"]
	assert.EqualValues(t, 10, assets.Claims)

	assert.Equal(t, 3, report.SceneObjects, "only the templates survive shutdown")
}

func TestSimulationWithoutPruning(t *testing.T) {
	ctx := context.Background()
	cfg := smallConfig()
	cfg.Pools = map[string]config.PoolConfig{}

	sim, err := newSimulation(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	report, err := sim.run(ctx)
	require.NoError(t, err)

	for name, s := range report.Pools {
		assert.Equal(t, s.Created, s.Destroyed+s.Holes, name)
	}
}

func TestSimulationStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sim, err := newSimulation(ctx, smallConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	cancel()
	_, err = sim.run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunCommandWritesReport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.json")
	t.Setenv("POOLSIM_SPAWNS", "2")

	var stdout bytes.Buffer
	cmd := newRootCmd(&stdout)
	cmd.SetArgs([]string{"run", "--frames", "12", "--effects", "1", "--output", out})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var report Report
	require.NoError(t, gojson.Unmarshal(data, &report))
	assert.Equal(t, 12, report.Frames)
	assert.EqualValues(t, 24, report.Pools["props"].Claims)
	assert.EqualValues(t, 12, report.Pools["effects"].Claims)
}

func TestRunCommandRejectsInvalidOverrides(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--frames=-1"})
	assert.Error(t, cmd.Execute())
}

func TestVersionCommand(t *testing.T) {
	var stdout bytes.Buffer
	cmd := newRootCmd(&stdout)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "poolsim v"+version)
}
