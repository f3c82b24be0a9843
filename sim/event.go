package sim

import (
	"container/heap"
	"fmt"
)

// EventKind identifies the payload of a ScheduledEvent.
type EventKind int

const (
	// EventCompletion releases a server connection. Ranked before arrivals so that
	// capacity freed at tick t is visible to routing decisions made at tick t.
	EventCompletion EventKind = iota
	// EventArrival routes a new request.
	EventArrival
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventCompletion:
		return "Completion"
	case EventArrival:
		return "Arrival"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// ScheduledEvent is a time-stamped Arrival or Completion.
// Arrival events carry Request; Completion events carry ServerIndex and RequestID.
type ScheduledEvent struct {
	TimeMs int64
	Kind   EventKind

	Request Request // Arrival payload

	ServerIndex int // Completion payload: index into the run's server state
	RequestID   int // Completion payload

	seq uint64 // insertion order, assigned by EventQueue.Schedule
}

// NewArrivalEvent creates an arrival event for req at its arrival time.
func NewArrivalEvent(req Request) ScheduledEvent {
	return ScheduledEvent{TimeMs: req.ArrivalTimeMs, Kind: EventArrival, Request: req}
}

// NewCompletionEvent creates a completion event for a request served by serverIndex.
func NewCompletionEvent(timeMs int64, serverIndex, requestID int) ScheduledEvent {
	return ScheduledEvent{TimeMs: timeMs, Kind: EventCompletion, ServerIndex: serverIndex, RequestID: requestID}
}

// eventHeap implements heap.Interface.
// Ordering: time → kind rank (Completion < Arrival) → insertion order.
type eventHeap []ScheduledEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	ei, ej := h[i], h[j]
	if ei.TimeMs != ej.TimeMs {
		return ei.TimeMs < ej.TimeMs
	}
	if ei.Kind != ej.Kind {
		return ei.Kind < ej.Kind
	}
	return ei.seq < ej.seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(ScheduledEvent))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// EventQueue is a min-priority queue of ScheduledEvents with a total order:
// no two events compare equal, so draining it is deterministic.
type EventQueue struct {
	events  eventHeap
	nextSeq uint64
}

// NewEventQueue creates an empty queue with room for capacity events.
func NewEventQueue(capacity int) *EventQueue {
	return &EventQueue{events: make(eventHeap, 0, capacity)}
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return q.events.Len()
}

// Schedule inserts ev in O(log n).
func (q *EventQueue) Schedule(ev ScheduledEvent) {
	ev.seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.events, ev)
}

// PopEarliest removes and returns the earliest event. ok is false when the queue is empty.
func (q *EventQueue) PopEarliest() (ev ScheduledEvent, ok bool) {
	if q.events.Len() == 0 {
		return ScheduledEvent{}, false
	}
	return heap.Pop(&q.events).(ScheduledEvent), true
}

// Scheduled returns the total number of events ever scheduled on q.
func (q *EventQueue) Scheduled() uint64 {
	return q.nextSeq
}
