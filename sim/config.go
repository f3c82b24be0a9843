package sim

import (
	"fmt"
	"math"

	"github.com/inference-sim/lb-sim/sim/trace"
)

// TieBreakMode selects how ties among equally good servers are resolved.
type TieBreakMode string

const (
	// TieBreakStable always selects the first candidate among ties.
	TieBreakStable TieBreakMode = "stable"
	// TieBreakSeeded draws tie-breaks from a PRNG seeded once per run.
	TieBreakSeeded TieBreakMode = "seeded"
)

// TieBreak is the tie-break mode of a run, carrying the seed when seeded.
type TieBreak struct {
	Mode TieBreakMode
	Seed uint64 // Only meaningful when Mode == TieBreakSeeded
}

// StableTieBreak returns the no-randomness tie-break mode.
func StableTieBreak() TieBreak {
	return TieBreak{Mode: TieBreakStable}
}

// SeededTieBreak returns a seeded tie-break mode.
func SeededTieBreak(seed uint64) TieBreak {
	return TieBreak{Mode: TieBreakSeeded, Seed: seed}
}

// IsSeeded reports whether tie-breaks are drawn from a seeded PRNG.
func (t TieBreak) IsSeeded() bool {
	return t.Mode == TieBreakSeeded
}

// String renders the mode as "stable" or "seeded(<seed>)".
func (t TieBreak) String() string {
	if t.IsSeeded() {
		return fmt.Sprintf("seeded(%d)", t.Seed)
	}
	return string(TieBreakStable)
}

// RunConfig is the immutable input of one simulation run.
// The engine never writes to it; reusing a RunConfig across runs is safe.
type RunConfig struct {
	Algorithm    string // One of ValidAlgorithms(); empty defaults to round-robin
	Servers      []Server
	RequestCount int
	TieBreak     TieBreak
	TraceLevel   trace.TraceLevel // Empty or "none" disables decision tracing
}

// Validate checks the config in a fixed order: empty server list, zero
// requests, duplicate ids, per-server latency and weight, then int64 range.
func (c *RunConfig) Validate() error {
	if len(c.Servers) == 0 {
		return ErrEmptyServers
	}
	if c.RequestCount <= 0 {
		return ErrRequestsZero
	}
	seen := make(map[int]bool, len(c.Servers))
	for _, s := range c.Servers {
		if seen[s.ID] {
			return &DuplicateServerIDError{ID: s.ID}
		}
		seen[s.ID] = true
	}
	for _, s := range c.Servers {
		if s.BaseLatencyMs <= 0 {
			return &InvalidServerError{ID: s.ID, Field: "base_latency_ms", Value: s.BaseLatencyMs}
		}
		if s.Weight <= 0 {
			return &InvalidServerError{ID: s.ID, Field: "weight", Value: s.Weight}
		}
	}
	if err := c.checkOverflow(); err != nil {
		return err
	}
	if !IsValidAlgorithm(c.Algorithm) {
		return fmt.Errorf("unknown algorithm %q; valid algorithms: %v", c.Algorithm, ValidAlgorithms())
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return fmt.Errorf("unknown trace level %q", c.TraceLevel)
	}
	return nil
}

// checkOverflow rejects values whose tick arithmetic would wrap int64: the last
// completion (RequestCount + latency), latency × RequestCount (response time
// totals and least response time scores) and the total weight.
func (c *RunConfig) checkOverflow() error {
	requests := int64(c.RequestCount)
	var total int64
	for _, s := range c.Servers {
		if s.BaseLatencyMs > math.MaxInt64-requests {
			return &InvalidServerError{ID: s.ID, Field: "base_latency_ms", Value: s.BaseLatencyMs,
				Reason: fmt.Sprintf("overflows completion time with %d requests", c.RequestCount)}
		}
		if s.BaseLatencyMs > math.MaxInt64/requests {
			return &InvalidServerError{ID: s.ID, Field: "base_latency_ms", Value: s.BaseLatencyMs,
				Reason: fmt.Sprintf("overflows response time totals with %d requests", c.RequestCount)}
		}
		if s.Weight > math.MaxInt64-total {
			return &InvalidServerError{ID: s.ID, Field: "weight", Value: s.Weight,
				Reason: "overflows total weight"}
		}
		total += s.Weight
	}
	return nil
}
