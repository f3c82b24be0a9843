package sim

// Server is one entry of the input server pool.
type Server struct {
	ID            int    // Unique within a run; adapters assign it by input order
	Name          string // Display name used in assignments and summaries
	BaseLatencyMs int64  // Response time of the server when it has no other work (> 0)
	Weight        int64  // Relative share for weight-aware strategies (> 0)
}

// ServerState is the engine-owned mutable state of a server during a run.
type ServerState struct {
	Server
	ActiveConnections int   // Requests assigned and not yet completed
	PickCount         int64 // Cumulative times this server was chosen
}

// ServerSnapshot is the read-only view of a server handed to a SelectionStrategy.
// Strategies receive a fresh copy per arrival, so writes to it never reach engine state.
type ServerSnapshot struct {
	ID                int
	Name              string
	BaseLatencyMs     int64
	Weight            int64
	ActiveConnections int
}

// Snapshot returns the strategy-facing view of s.
func (s *ServerState) Snapshot() ServerSnapshot {
	return ServerSnapshot{
		ID:                s.ID,
		Name:              s.Name,
		BaseLatencyMs:     s.BaseLatencyMs,
		Weight:            s.Weight,
		ActiveConnections: s.ActiveConnections,
	}
}

// Request is a synthetic request. Request k (1-based) arrives at tick k.
type Request struct {
	ID            int
	ArrivalTimeMs int64
}
