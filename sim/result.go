package sim

import (
	"fmt"

	"github.com/inference-sim/lb-sim/sim/trace"
)

// Assignment records where one request was routed.
type Assignment struct {
	RequestID     int
	ServerID      int
	ServerName    string
	Score         *int64 // present only for score-based strategies
	StartedAtMs   int64
	CompletedAtMs int64 // StartedAtMs + BaseLatencyMs of the chosen server
}

// ResponseMs returns the response time of the request.
func (a Assignment) ResponseMs() int64 {
	return a.CompletedAtMs - a.StartedAtMs
}

// ServerSummary aggregates the requests served by one server.
type ServerSummary struct {
	Name           string
	RequestsServed int
	AvgResponseMs  int64 // integer mean, 0 when RequestsServed == 0
}

// RunResult is the output of one simulation run.
type RunResult struct {
	Algorithm   string
	Assignments []Assignment           // request-id order
	Summaries   []ServerSummary        // input server order
	TieBreak    TieBreak               // echo of the mode used
	DurationMs  int64                  // engine clock after the last event (last completion time)
	Trace       *trace.SimulationTrace // nil unless tracing was enabled
}

// RequestsServed returns the total requests across all summaries.
func (r *RunResult) RequestsServed() int {
	total := 0
	for _, s := range r.Summaries {
		total += s.RequestsServed
	}
	return total
}

// summarize aggregates assignments per server, preserving input server order.
// Assignments referencing an unknown server id indicate an engine defect and panic.
func summarize(servers []ServerState, assignments []Assignment) []ServerSummary {
	index := make(map[int]int, len(servers))
	for i, s := range servers {
		index[s.ID] = i
	}

	counts := make([]int, len(servers))
	totals := make([]int64, len(servers))
	for _, a := range assignments {
		i, ok := index[a.ServerID]
		if !ok {
			panic(fmt.Sprintf("summarize: assignment for request %d references unknown server id %d", a.RequestID, a.ServerID))
		}
		counts[i]++
		totals[i] += a.ResponseMs()
	}

	summaries := make([]ServerSummary, len(servers))
	for i, s := range servers {
		var avg int64
		if counts[i] > 0 {
			avg = totals[i] / int64(counts[i])
		}
		summaries[i] = ServerSummary{
			Name:           s.Name,
			RequestsServed: counts[i],
			AvgResponseMs:  avg,
		}
	}
	return summaries
}
