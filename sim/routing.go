package sim

import "fmt"

// Algorithm names accepted by NewStrategy.
const (
	AlgorithmRoundRobin         = "round-robin"
	AlgorithmWeightedRoundRobin = "weighted-round-robin"
	AlgorithmLeastConnections   = "least-connections"
	AlgorithmLeastResponseTime  = "least-response-time"
)

// validAlgorithms lists the algorithms in their canonical display order.
var validAlgorithms = []string{
	AlgorithmRoundRobin,
	AlgorithmWeightedRoundRobin,
	AlgorithmLeastConnections,
	AlgorithmLeastResponseTime,
}

// ValidAlgorithms returns the recognized algorithm names in display order.
func ValidAlgorithms() []string {
	names := make([]string, len(validAlgorithms))
	copy(names, validAlgorithms)
	return names
}

// IsValidAlgorithm reports whether name is a recognized algorithm. Empty is valid (round-robin).
func IsValidAlgorithm(name string) bool {
	if name == "" {
		return true
	}
	for _, n := range validAlgorithms {
		if n == name {
			return true
		}
	}
	return false
}

// Selection is a strategy's decision for one arrival.
type Selection struct {
	Index      int    // Index of the chosen server in the snapshot slice
	Score      *int64 // Decision metric in ms; nil for strategies without scoring
	Candidates []int  // Indices tied at the best metric (nil for cursor-based strategies)
}

// TieBroken reports whether the decision consulted the tie-break source.
func (s Selection) TieBroken() bool {
	return len(s.Candidates) > 1
}

// SelectionStrategy decides which server receives the next request.
// Implementations must treat servers as read-only; only the engine mutates state.
// A strategy instance serves exactly one run.
type SelectionStrategy interface {
	Name() string
	Select(servers []ServerSnapshot, tb TieBreaker) Selection
}

// RoundRobin cycles through servers in input order.
type RoundRobin struct {
	cursor int
}

// Name implements SelectionStrategy.
func (rr *RoundRobin) Name() string { return AlgorithmRoundRobin }

// Select implements SelectionStrategy for RoundRobin.
func (rr *RoundRobin) Select(servers []ServerSnapshot, _ TieBreaker) Selection {
	if len(servers) == 0 {
		panic("RoundRobin.Select: empty snapshots")
	}
	idx := rr.cursor % len(servers)
	rr.cursor = (rr.cursor + 1) % len(servers)
	return Selection{Index: idx}
}

// WeightedRoundRobin walks a cursor over the total weight space [0, Σweight).
// Server i owns the interval [Σ_{j<i} w_j, Σ_{j≤i} w_j), so over Σweight
// consecutive calls server i is chosen exactly w_i times.
type WeightedRoundRobin struct {
	cursor int64
}

// Name implements SelectionStrategy.
func (w *WeightedRoundRobin) Name() string { return AlgorithmWeightedRoundRobin }

// Select implements SelectionStrategy for WeightedRoundRobin.
func (w *WeightedRoundRobin) Select(servers []ServerSnapshot, _ TieBreaker) Selection {
	if len(servers) == 0 {
		panic("WeightedRoundRobin.Select: empty snapshots")
	}
	var total int64
	for _, s := range servers {
		total += s.Weight
	}
	if total <= 0 {
		panic(fmt.Sprintf("WeightedRoundRobin.Select: non-positive total weight %d", total))
	}

	target := w.cursor % total
	w.cursor = (w.cursor + 1) % total

	var upper int64
	for i, s := range servers {
		upper += s.Weight
		if target < upper {
			return Selection{Index: i}
		}
	}
	panic("WeightedRoundRobin.Select: cursor outside weight space")
}

// LeastConnections routes to the server with the fewest active connections.
// Ties draw one bounded index from the tie-break source over the tied set.
type LeastConnections struct{}

// Name implements SelectionStrategy.
func (lc *LeastConnections) Name() string { return AlgorithmLeastConnections }

// Select implements SelectionStrategy for LeastConnections.
func (lc *LeastConnections) Select(servers []ServerSnapshot, tb TieBreaker) Selection {
	if len(servers) == 0 {
		panic("LeastConnections.Select: empty snapshots")
	}
	candidates := argminCandidates(servers, func(s ServerSnapshot) int64 {
		return int64(s.ActiveConnections)
	})
	return Selection{Index: pickCandidate(candidates, tb), Candidates: candidates}
}

// LeastResponseTime routes to the server with the lowest expected completion delay,
// scored as BaseLatencyMs * (ActiveConnections + 1). Ties are resolved like
// LeastConnections. The winning score is reported.
type LeastResponseTime struct{}

// Name implements SelectionStrategy.
func (lrt *LeastResponseTime) Name() string { return AlgorithmLeastResponseTime }

// Select implements SelectionStrategy for LeastResponseTime.
func (lrt *LeastResponseTime) Select(servers []ServerSnapshot, tb TieBreaker) Selection {
	if len(servers) == 0 {
		panic("LeastResponseTime.Select: empty snapshots")
	}
	candidates := argminCandidates(servers, ResponseTimeScore)
	idx := pickCandidate(candidates, tb)
	score := ResponseTimeScore(servers[idx])
	return Selection{Index: idx, Score: &score, Candidates: candidates}
}

// ResponseTimeScore estimates the delay a new request would see on s right now.
func ResponseTimeScore(s ServerSnapshot) int64 {
	return s.BaseLatencyMs * int64(s.ActiveConnections+1)
}

// argminCandidates scans servers once and returns every index tied at the minimum metric,
// in input order.
func argminCandidates(servers []ServerSnapshot, metric func(ServerSnapshot) int64) []int {
	best := metric(servers[0])
	candidates := []int{0}
	for i := 1; i < len(servers); i++ {
		m := metric(servers[i])
		switch {
		case m < best:
			best = m
			candidates = candidates[:0]
			candidates = append(candidates, i)
		case m == best:
			candidates = append(candidates, i)
		}
	}
	return candidates
}

// pickCandidate returns the sole candidate without consulting tb, otherwise one bounded draw.
func pickCandidate(candidates []int, tb TieBreaker) int {
	if len(candidates) == 1 {
		return candidates[0]
	}
	return candidates[tb.Intn(len(candidates))]
}

// NewStrategy creates a fresh strategy by name.
// Valid names are listed by ValidAlgorithms. Empty string defaults to round-robin.
// Panics on unrecognized names; callers validate with IsValidAlgorithm first.
func NewStrategy(name string) SelectionStrategy {
	switch name {
	case "", AlgorithmRoundRobin:
		return &RoundRobin{}
	case AlgorithmWeightedRoundRobin:
		return &WeightedRoundRobin{}
	case AlgorithmLeastConnections:
		return &LeastConnections{}
	case AlgorithmLeastResponseTime:
		return &LeastResponseTime{}
	default:
		panic(fmt.Sprintf("unknown algorithm %q", name))
	}
}
