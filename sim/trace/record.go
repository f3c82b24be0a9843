// Package trace provides decision-trace recording for load-balancing policy analysis.
// It has no dependency on sim/ and stores plain data types only.
package trace

// DecisionRecord captures a single strategy decision at an arrival.
type DecisionRecord struct {
	RequestID    int
	Clock        int64
	ChosenServer string
	Score        *int64   // nil for strategies without scoring
	Candidates   []string // servers tied at the best metric (nil for cursor-based strategies)
	TieBroken    bool     // true when the tie-break source was consulted
	Loads        []int    // pre-increment active connections, in input server order
}
