package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/lb-sim/sim"
)

// FileConfig is the on-disk run configuration (.yaml, .yml or .json).
// All fields are optional; explicitly set CLI flags override them.
type FileConfig struct {
	Algorithm string         `yaml:"algo"`
	Servers   []ServerEntry  `yaml:"servers"`
	Requests  *int           `yaml:"requests"`
	Poisson   *PoissonConfig `yaml:"poisson"`
	TieBreak  string         `yaml:"tie_break"` // "stable" or "seeded"
	Seed      *uint64        `yaml:"seed"`
}

// ServerEntry is one server in a config file.
type ServerEntry struct {
	Name      string `yaml:"name"`
	LatencyMs int64  `yaml:"latency_ms"`
	Weight    *int64 `yaml:"weight"` // defaults to 1
}

// PoissonConfig selects a Poisson request profile.
type PoissonConfig struct {
	Rate       float64 `yaml:"rate"`
	DurationMs int64   `yaml:"duration_ms"`
}

// LoadFileConfig reads and strictly parses a config file. JSON is parsed by the
// YAML decoder, so both formats share field names and unknown-field checks.
func LoadFileConfig(path string) (*FileConfig, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("unsupported config format '%s'", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Strict field checking: typos must cause errors
	var cfg FileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *FileConfig) validate() error {
	switch c.TieBreak {
	case "", string(sim.TieBreakStable):
	case string(sim.TieBreakSeeded):
		if c.Seed == nil {
			return fmt.Errorf("tie-break seed required when tie_break is seeded")
		}
	default:
		return fmt.Errorf("unknown tie_break %q", c.TieBreak)
	}
	if c.Requests != nil && c.Poisson != nil {
		return fmt.Errorf("requests and poisson are mutually exclusive")
	}
	return nil
}

// ServerList converts the config entries to engine servers with ids by position.
func (c *FileConfig) ServerList() ([]sim.Server, error) {
	servers := make([]sim.Server, len(c.Servers))
	for i, e := range c.Servers {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("servers must not contain empty entries")
		}
		weight := int64(1)
		if e.Weight != nil {
			weight = *e.Weight
		}
		servers[i] = sim.Server{Name: e.Name, BaseLatencyMs: e.LatencyMs, Weight: weight}
	}
	if err := validateServers(servers); err != nil {
		return nil, err
	}
	return servers, nil
}

// TieBreakMode returns the tie-break implied by the file: seeded when
// tie_break is "seeded" or when a seed is given without an explicit tie_break.
func (c *FileConfig) TieBreakMode() sim.TieBreak {
	if c.Seed != nil && c.TieBreak != string(sim.TieBreakStable) {
		return sim.SeededTieBreak(*c.Seed)
	}
	return sim.StableTieBreak()
}
