package output

import (
	"fmt"
	"strings"

	"github.com/inference-sim/lb-sim/sim"
	"github.com/inference-sim/lb-sim/sim/workload"
)

// FormatConfig renders the resolved configuration for show-config.
func FormatConfig(algorithm string, profile workload.Profile, tieBreak sim.TieBreak, servers []sim.Server) string {
	if algorithm == "" {
		algorithm = sim.AlgorithmRoundRobin
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Algorithm: %s\n", algorithm)
	fmt.Fprintf(&b, "Requests: %s\n", profile)
	fmt.Fprintf(&b, "Tie-break: %s\n", tieBreak)
	b.WriteString("Servers:\n")
	for _, s := range servers {
		fmt.Fprintf(&b, "- %s (latency: %dms, weight: %d)\n", s.Name, s.BaseLatencyMs, s.Weight)
	}
	return b.String()
}
