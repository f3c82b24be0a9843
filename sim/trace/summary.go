package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions     int
	TieBrokenCount     int
	UniqueTargets      int
	TargetDistribution map[string]int // server name → count of requests routed
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		TargetDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Decisions)
	for _, d := range st.Decisions {
		summary.TargetDistribution[d.ChosenServer]++
		if d.TieBroken {
			summary.TieBrokenCount++
		}
	}
	summary.UniqueTargets = len(summary.TargetDistribution)

	return summary
}
