package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingTieBreaker records how often it is consulted.
type countingTieBreaker struct {
	calls int
	pick  int
}

func (c *countingTieBreaker) Intn(n int) int {
	c.calls++
	return c.pick % n
}

func snaps(loads ...int) []ServerSnapshot {
	out := make([]ServerSnapshot, len(loads))
	for i, l := range loads {
		out[i] = ServerSnapshot{ID: i, Name: string(rune('a' + i)), BaseLatencyMs: 10, Weight: 1, ActiveConnections: l}
	}
	return out
}

func TestRoundRobin_CyclesIndices(t *testing.T) {
	rr := NewStrategy(AlgorithmRoundRobin)
	servers := snaps(0, 0, 0)
	tb := &countingTieBreaker{}

	var picks []int
	for i := 0; i < 7; i++ {
		sel := rr.Select(servers, tb)
		assert.Nil(t, sel.Score)
		picks = append(picks, sel.Index)
	}

	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0}, picks)
	assert.Equal(t, 0, tb.calls, "round robin must not consult the tie-breaker")
}

func TestWeightedRoundRobin_RespectsWeights(t *testing.T) {
	// GIVEN weights [2,1]
	servers := []ServerSnapshot{{Name: "a", Weight: 2}, {Name: "b", Weight: 1}}
	wrr := NewStrategy(AlgorithmWeightedRoundRobin)

	// WHEN 6 requests are routed
	var picks []int
	for i := 0; i < 6; i++ {
		picks = append(picks, wrr.Select(servers, StableTieBreaker{}).Index)
	}

	// THEN the interval cursor yields [0,0,1,0,0,1]
	assert.Equal(t, []int{0, 0, 1, 0, 0, 1}, picks)
}

func TestWeightedRoundRobin_FullCycleMatchesWeights(t *testing.T) {
	servers := []ServerSnapshot{{Weight: 3}, {Weight: 1}, {Weight: 4}}
	wrr := &WeightedRoundRobin{}
	counts := make([]int, len(servers))
	for i := 0; i < 8*5; i++ {
		counts[wrr.Select(servers, StableTieBreaker{}).Index]++
	}
	assert.Equal(t, []int{15, 5, 20}, counts)
}

func TestLeastConnections_PrefersLowestActiveConnections(t *testing.T) {
	tb := &countingTieBreaker{}
	sel := (&LeastConnections{}).Select(snaps(3, 1, 2), tb)

	assert.Equal(t, 1, sel.Index)
	assert.Equal(t, []int{1}, sel.Candidates)
	assert.False(t, sel.TieBroken())
	assert.Nil(t, sel.Score)
	assert.Equal(t, 0, tb.calls, "single candidate must not consult the tie-breaker")
}

func TestLeastConnections_TieDrawsOverCandidates(t *testing.T) {
	// GIVEN servers 0 and 2 tied at the minimum
	tb := &countingTieBreaker{pick: 1}

	// WHEN selected
	sel := (&LeastConnections{}).Select(snaps(1, 4, 1), tb)

	// THEN one draw is taken over the tied set, in input order
	assert.Equal(t, []int{0, 2}, sel.Candidates)
	assert.Equal(t, 2, sel.Index)
	assert.True(t, sel.TieBroken())
	assert.Equal(t, 1, tb.calls)
}

func TestLeastConnections_SeededTieBreakMatchesDirectDraw(t *testing.T) {
	candidates := []int{0, 1, 2}
	expected := candidates[rand.New(rand.NewSource(42)).Intn(len(candidates))]

	sel := (&LeastConnections{}).Select(snaps(1, 1, 1), rand.New(rand.NewSource(42)))

	assert.Equal(t, expected, sel.Index)
}

func TestLeastConnections_StableTieBreakPicksFirst(t *testing.T) {
	sel := (&LeastConnections{}).Select(snaps(2, 0, 0), StableTieBreaker{})
	assert.Equal(t, 1, sel.Index)
}

func TestLeastResponseTime_ScoresLatencyInflatedByLoad(t *testing.T) {
	// GIVEN fast (10ms, 2 active → 30) and slow (25ms, 0 active → 25)
	servers := []ServerSnapshot{
		{Name: "fast", BaseLatencyMs: 10, ActiveConnections: 2},
		{Name: "slow", BaseLatencyMs: 25, ActiveConnections: 0},
	}

	sel := (&LeastResponseTime{}).Select(servers, StableTieBreaker{})

	assert.Equal(t, 1, sel.Index)
	require.NotNil(t, sel.Score)
	assert.Equal(t, int64(25), *sel.Score)
}

func TestLeastResponseTime_TieUsesTieBreaker(t *testing.T) {
	servers := []ServerSnapshot{
		{BaseLatencyMs: 20, ActiveConnections: 0},
		{BaseLatencyMs: 10, ActiveConnections: 1},
		{BaseLatencyMs: 30, ActiveConnections: 0},
	}
	tb := &countingTieBreaker{pick: 1}

	sel := (&LeastResponseTime{}).Select(servers, tb)

	assert.Equal(t, []int{0, 1}, sel.Candidates)
	assert.Equal(t, 1, sel.Index)
	assert.Equal(t, int64(20), *sel.Score)
	assert.Equal(t, 1, tb.calls)
}

func TestStrategies_DoNotMutateSnapshots(t *testing.T) {
	for _, name := range ValidAlgorithms() {
		t.Run(name, func(t *testing.T) {
			servers := snaps(2, 0, 1)
			before := append([]ServerSnapshot(nil), servers...)
			s := NewStrategy(name)
			for i := 0; i < 5; i++ {
				s.Select(servers, rand.New(rand.NewSource(int64(i))))
			}
			assert.Equal(t, before, servers)
		})
	}
}

func TestStrategies_PanicOnEmptySnapshots(t *testing.T) {
	for _, name := range ValidAlgorithms() {
		t.Run(name, func(t *testing.T) {
			assert.Panics(t, func() { NewStrategy(name).Select(nil, StableTieBreaker{}) })
		})
	}
}

func TestNewStrategy_Names(t *testing.T) {
	assert.Equal(t, AlgorithmRoundRobin, NewStrategy("").Name())
	for _, name := range ValidAlgorithms() {
		assert.Equal(t, name, NewStrategy(name).Name())
	}
	assert.Panics(t, func() { NewStrategy("random") })
}

func TestValidAlgorithms_OrderAndValidity(t *testing.T) {
	assert.Equal(t, []string{
		"round-robin",
		"weighted-round-robin",
		"least-connections",
		"least-response-time",
	}, ValidAlgorithms())
	assert.True(t, IsValidAlgorithm(""))
	assert.False(t, IsValidAlgorithm("least-loaded"))

	// Mutating the returned slice must not affect the registry.
	names := ValidAlgorithms()
	names[0] = "changed"
	assert.Equal(t, AlgorithmRoundRobin, ValidAlgorithms()[0])
}
