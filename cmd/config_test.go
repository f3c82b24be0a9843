package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/lb-sim/sim"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileConfig_YAML(t *testing.T) {
	path := writeConfig(t, "run.yaml", `
algo: weighted-round-robin
servers:
  - name: a
    latency_ms: 10
    weight: 2
  - name: b
    latency_ms: 20
requests: 6
tie_break: seeded
seed: 42
`)
	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "weighted-round-robin", cfg.Algorithm)
	require.NotNil(t, cfg.Requests)
	assert.Equal(t, 6, *cfg.Requests)
	assert.Equal(t, sim.SeededTieBreak(42), cfg.TieBreakMode())

	servers, err := cfg.ServerList()
	require.NoError(t, err)
	assert.Equal(t, []sim.Server{
		{ID: 0, Name: "a", BaseLatencyMs: 10, Weight: 2},
		{ID: 1, Name: "b", BaseLatencyMs: 20, Weight: 1},
	}, servers)
}

func TestLoadFileConfig_JSON(t *testing.T) {
	path := writeConfig(t, "run.json", `{
  "algo": "least-connections",
  "servers": [{"name": "x", "latency_ms": 3}],
  "poisson": {"rate": 0.5, "duration_ms": 100}
}`)
	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "least-connections", cfg.Algorithm)
	require.NotNil(t, cfg.Poisson)
	assert.Equal(t, 0.5, cfg.Poisson.Rate)
	assert.Equal(t, int64(100), cfg.Poisson.DurationMs)
	assert.Equal(t, sim.StableTieBreak(), cfg.TieBreakMode())
}

func TestLoadFileConfig_SeedWithoutTieBreakIsSeeded(t *testing.T) {
	cfg, err := LoadFileConfig(writeConfig(t, "run.yml", "seed: 7\n"))
	require.NoError(t, err)
	assert.Equal(t, sim.SeededTieBreak(7), cfg.TieBreakMode())
}

func TestLoadFileConfig_ExplicitStableIgnoresSeed(t *testing.T) {
	cfg, err := LoadFileConfig(writeConfig(t, "run.yml", "tie_break: stable\nseed: 7\n"))
	require.NoError(t, err)
	assert.Equal(t, sim.StableTieBreak(), cfg.TieBreakMode())
}

func TestLoadFileConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"unsupported extension", "run.toml", "algo = 'x'", "unsupported config format '.toml'"},
		{"unknown field", "run.yaml", "algorithm: round-robin\n", "field algorithm not found"},
		{"seeded without seed", "run.yaml", "tie_break: seeded\n", "tie-break seed required"},
		{"unknown tie break", "run.yaml", "tie_break: random\n", "unknown tie_break"},
		{"requests and poisson", "run.yaml", "requests: 3\npoisson: {rate: 1, duration_ms: 5}\n", "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFileConfig(writeConfig(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFileConfig_MissingFile(t *testing.T) {
	_, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileConfig_ServerList_Invalid(t *testing.T) {
	zero := int64(0)
	cfg := &FileConfig{Servers: []ServerEntry{{Name: "a", LatencyMs: 5, Weight: &zero}}}
	_, err := cfg.ServerList()
	assert.ErrorContains(t, err, "weight must be > 0 in 'a'")

	cfg = &FileConfig{Servers: []ServerEntry{{Name: " ", LatencyMs: 5}}}
	_, err = cfg.ServerList()
	assert.ErrorContains(t, err, "empty entries")
}
