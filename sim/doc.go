// Package sim provides the discrete-event engine used to evaluate
// load-balancing policies offline.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - server.go: server input, per-run mutable state and the read-only snapshot
//     handed to strategies
//   - event.go: Arrival and Completion events and the EventQueue ordering
//   - engine.go: validation, the event loop and result aggregation
//
// # Architecture
//
// The sim package owns the core; adapters live in sub-packages:
//   - sim/workload/: request profiles resolved to a request count
//   - sim/trace/: optional per-decision trace recording
//   - sim/output/: human, summary and json rendering of a RunResult
//
// # Key Interfaces
//
//   - SelectionStrategy: pick a server index given the current snapshots
//   - TieBreaker: bounded index draw used to resolve ties
//
// A run is single-threaded. For a fixed RunConfig the sequence of strategy
// calls, and therefore the RunResult, is bit-identical across executions.
package sim
