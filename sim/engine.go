package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/lb-sim/sim/trace"
)

// Engine is the discrete-event simulator for one run. It exclusively owns the
// server state, the event queue and the strategy for the duration of the run.
type Engine struct {
	Clock int64

	config      RunConfig
	servers     []ServerState
	queue       *EventQueue
	strategy    SelectionStrategy
	tieBreaker  TieBreaker
	assignments []Assignment
	snapshots   []ServerSnapshot // reused per arrival; strategies see a copy of server state
	trace       *trace.SimulationTrace
	ran         bool
}

// NewEngine validates cfg and prepares a fresh run: server state with zeroed
// counters, a new strategy, the tie-break source for cfg.TieBreak and one
// arrival per request at tick = request id. On error nothing is initialized.
func NewEngine(cfg RunConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	servers := make([]ServerState, len(cfg.Servers))
	for i, s := range cfg.Servers {
		servers[i] = ServerState{Server: s}
	}

	e := &Engine{
		config:      cfg,
		servers:     servers,
		queue:       NewEventQueue(2 * cfg.RequestCount),
		strategy:    NewStrategy(cfg.Algorithm),
		tieBreaker:  NewTieBreaker(cfg.TieBreak, NewPartitionedRNG(cfg.TieBreak.Seed)),
		assignments: make([]Assignment, 0, cfg.RequestCount),
		snapshots:   make([]ServerSnapshot, len(servers)),
	}
	if cfg.TraceLevel.Enabled() {
		e.trace = trace.NewSimulationTrace(cfg.TraceLevel)
	}

	for id := 1; id <= cfg.RequestCount; id++ {
		e.queue.Schedule(NewArrivalEvent(Request{ID: id, ArrivalTimeMs: int64(id)}))
	}
	return e, nil
}

// Run drains the event queue and returns the result. An Engine runs once.
func (e *Engine) Run() *RunResult {
	if e.ran {
		panic("Engine.Run: engine already ran")
	}
	e.ran = true

	logrus.Infof("Starting simulation: algorithm=%s servers=%d requests=%d tie_break=%s",
		e.strategy.Name(), len(e.servers), e.config.RequestCount, e.config.TieBreak)

	for {
		ev, ok := e.queue.PopEarliest()
		if !ok {
			break
		}
		e.Clock = ev.TimeMs
		logrus.Debugf("[tick %07d] Executing %s", e.Clock, ev.Kind)
		switch ev.Kind {
		case EventCompletion:
			e.handleCompletion(ev)
		case EventArrival:
			e.handleArrival(ev.Request)
		default:
			panic(fmt.Sprintf("Engine.Run: unknown event kind %v", ev.Kind))
		}
	}

	e.checkInvariants()
	logrus.Infof("[tick %07d] Simulation ended", e.Clock)

	return &RunResult{
		Algorithm:   e.strategy.Name(),
		Assignments: e.assignments,
		Summaries:   summarize(e.servers, e.assignments),
		TieBreak:    e.config.TieBreak,
		DurationMs:  e.Clock,
		Trace:       e.trace,
	}
}

func (e *Engine) handleCompletion(ev ScheduledEvent) {
	if ev.ServerIndex < 0 || ev.ServerIndex >= len(e.servers) {
		panic(fmt.Sprintf("Engine: completion of request %d references server index %d outside [0,%d)",
			ev.RequestID, ev.ServerIndex, len(e.servers)))
	}
	s := &e.servers[ev.ServerIndex]
	if s.ActiveConnections > 0 {
		s.ActiveConnections--
	} else {
		logrus.Warnf("[tick %07d] completion of request %d on %s with no active connections", e.Clock, ev.RequestID, s.Name)
	}
	logrus.Debugf("[tick %07d] request %d completed on %s (active=%d)", e.Clock, ev.RequestID, s.Name, s.ActiveConnections)
}

func (e *Engine) handleArrival(req Request) {
	for i := range e.servers {
		e.snapshots[i] = e.servers[i].Snapshot()
	}
	sel := e.strategy.Select(e.snapshots, e.tieBreaker)
	if sel.Index < 0 || sel.Index >= len(e.servers) {
		panic(fmt.Sprintf("Engine: %s chose server index %d outside [0,%d)", e.strategy.Name(), sel.Index, len(e.servers)))
	}

	if e.trace != nil {
		e.recordDecision(req, sel)
	}

	s := &e.servers[sel.Index]
	s.ActiveConnections++
	s.PickCount++

	started := e.Clock
	completed := started + s.BaseLatencyMs
	e.queue.Schedule(NewCompletionEvent(completed, sel.Index, req.ID))

	e.assignments = append(e.assignments, Assignment{
		RequestID:     req.ID,
		ServerID:      s.ID,
		ServerName:    s.Name,
		Score:         sel.Score,
		StartedAtMs:   started,
		CompletedAtMs: completed,
	})
	logrus.Debugf("[tick %07d] request %d -> %s (active=%d)", e.Clock, req.ID, s.Name, s.ActiveConnections)
}

// recordDecision captures the pre-increment view of the decision.
func (e *Engine) recordDecision(req Request, sel Selection) {
	loads := make([]int, len(e.servers))
	for i := range e.servers {
		loads[i] = e.servers[i].ActiveConnections
	}
	var candidates []string
	if sel.Candidates != nil {
		candidates = make([]string, len(sel.Candidates))
		for i, idx := range sel.Candidates {
			candidates[i] = e.servers[idx].Name
		}
	}
	e.trace.RecordDecision(trace.DecisionRecord{
		RequestID:    req.ID,
		Clock:        e.Clock,
		ChosenServer: e.servers[sel.Index].Name,
		Score:        sel.Score,
		Candidates:   candidates,
		TieBroken:    sel.TieBroken(),
		Loads:        loads,
	})
}

// checkInvariants fails fast if the run broke the arrival/completion pairing.
func (e *Engine) checkInvariants() {
	if got, want := e.queue.Scheduled(), uint64(2*e.config.RequestCount); got != want {
		panic(fmt.Sprintf("Engine: scheduled %d events, want %d", got, want))
	}
	var picks int64
	for _, s := range e.servers {
		if s.ActiveConnections != 0 {
			panic(fmt.Sprintf("Engine: server %s has %d active connections after drain", s.Name, s.ActiveConnections))
		}
		picks += s.PickCount
	}
	if picks != int64(e.config.RequestCount) {
		panic(fmt.Sprintf("Engine: %d picks for %d requests", picks, e.config.RequestCount))
	}
}

// Servers returns a copy of the current server state.
func (e *Engine) Servers() []ServerState {
	out := make([]ServerState, len(e.servers))
	copy(out, e.servers)
	return out
}

// Run validates cfg, simulates it and returns the result.
// Validation errors are returned before any event is processed.
func Run(cfg RunConfig) (*RunResult, error) {
	e, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return e.Run(), nil
}
