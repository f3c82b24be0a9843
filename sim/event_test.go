package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(q *EventQueue) []ScheduledEvent {
	var out []ScheduledEvent
	for {
		ev, ok := q.PopEarliest()
		if !ok {
			return out
		}
		out = append(out, ev)
	}
}

func TestEventQueue_TimestampOrdering(t *testing.T) {
	// GIVEN events scheduled out of time order
	q := NewEventQueue(0)
	q.Schedule(NewArrivalEvent(Request{ID: 1, ArrivalTimeMs: 100}))
	q.Schedule(NewArrivalEvent(Request{ID: 2, ArrivalTimeMs: 50}))
	q.Schedule(NewArrivalEvent(Request{ID: 3, ArrivalTimeMs: 150}))

	// WHEN drained
	events := drain(q)

	// THEN they come out in time order
	require.Len(t, events, 3)
	assert.Equal(t, int64(50), events[0].TimeMs)
	assert.Equal(t, int64(100), events[1].TimeMs)
	assert.Equal(t, int64(150), events[2].TimeMs)
	assert.Equal(t, 0, q.Len())
}

func TestEventQueue_CompletionBeforeArrivalAtSameTime(t *testing.T) {
	// GIVEN an arrival scheduled before a completion at the same tick
	q := NewEventQueue(0)
	q.Schedule(NewArrivalEvent(Request{ID: 2, ArrivalTimeMs: 2}))
	q.Schedule(NewCompletionEvent(2, 0, 1))

	// WHEN drained
	events := drain(q)

	// THEN the completion is popped first
	require.Len(t, events, 2)
	assert.Equal(t, EventCompletion, events[0].Kind)
	assert.Equal(t, EventArrival, events[1].Kind)
}

func TestEventQueue_InsertionOrderWithinKindAndTime(t *testing.T) {
	q := NewEventQueue(0)
	q.Schedule(NewCompletionEvent(5, 2, 30))
	q.Schedule(NewCompletionEvent(5, 0, 10))
	q.Schedule(NewCompletionEvent(5, 1, 20))

	events := drain(q)

	require.Len(t, events, 3)
	assert.Equal(t, []int{30, 10, 20}, []int{events[0].RequestID, events[1].RequestID, events[2].RequestID})
}

func TestEventQueue_DeterministicForSameInsertionSequence(t *testing.T) {
	build := func() []ScheduledEvent {
		q := NewEventQueue(0)
		for id := 1; id <= 20; id++ {
			q.Schedule(NewArrivalEvent(Request{ID: id, ArrivalTimeMs: int64(id % 4)}))
			q.Schedule(NewCompletionEvent(int64(id%3), id%2, id))
		}
		return drain(q)
	}
	assert.Equal(t, build(), build())
}

func TestEventQueue_PopEarliest_EmptySignals(t *testing.T) {
	q := NewEventQueue(4)
	_, ok := q.PopEarliest()
	assert.False(t, ok)
	assert.Equal(t, uint64(0), q.Scheduled())
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "Completion", EventCompletion.String())
	assert.Equal(t, "Arrival", EventArrival.String())
	assert.Equal(t, "EventKind(9)", EventKind(9).String())
}
