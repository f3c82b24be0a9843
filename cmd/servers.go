package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inference-sim/lb-sim/sim"
)

// ParseServers parses a comma-separated list of name:latency_ms[:weight] entries.
// Ids are assigned by input order; weight defaults to 1.
func ParseServers(spec string) ([]sim.Server, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, sim.ErrEmptyServers
	}
	parts := strings.Split(spec, ",")
	servers := make([]sim.Server, 0, len(parts))
	for _, part := range parts {
		entry := strings.TrimSpace(part)
		if entry == "" {
			return nil, fmt.Errorf("servers must not contain empty entries")
		}
		fields := strings.Split(entry, ":")
		if len(fields) < 2 || len(fields) > 3 || strings.TrimSpace(fields[0]) == "" {
			return nil, fmt.Errorf("invalid server entry '%s': expected name:latency_ms[:weight]", entry)
		}
		latency, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latency in '%s'", entry)
		}
		weight := int64(1)
		if len(fields) == 3 {
			weight, err = strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid weight in '%s'", entry)
			}
		}
		servers = append(servers, sim.Server{
			Name:          strings.TrimSpace(fields[0]),
			BaseLatencyMs: latency,
			Weight:        weight,
		})
	}
	if err := validateServers(servers); err != nil {
		return nil, err
	}
	return servers, nil
}

// validateServers assigns ids by position and rejects non-positive values and duplicate names.
func validateServers(servers []sim.Server) error {
	seen := make(map[string]bool, len(servers))
	for i := range servers {
		s := &servers[i]
		s.ID = i
		if s.BaseLatencyMs <= 0 {
			return fmt.Errorf("latency must be > 0 in '%s'", s.Name)
		}
		if s.Weight <= 0 {
			return fmt.Errorf("weight must be > 0 in '%s'", s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate server name '%s'", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
