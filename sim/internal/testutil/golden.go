// Package testutil provides shared test infrastructure for the simulator.
// It holds the golden scenario types used by sim/ tests and has no
// dependency on sim/ itself.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenServer is one server of a golden scenario.
type GoldenServer struct {
	Name      string `json:"name"`
	LatencyMs int64  `json:"latency_ms"`
	Weight    int64  `json:"weight"`
}

// GoldenTestCase is a single stable tie-break scenario and its expected result.
type GoldenTestCase struct {
	Name      string         `json:"name"`
	Algorithm string         `json:"algo"`
	Servers   []GoldenServer `json:"servers"`
	Requests  int            `json:"requests"`
	Expected  GoldenResult   `json:"expected"`
}

// GoldenResult is the expected outcome of a golden scenario.
type GoldenResult struct {
	Assigned   []string        `json:"assigned"`         // server name per request, in request order
	Scores     []int64         `json:"scores,omitempty"` // only for scored strategies
	Summaries  []GoldenSummary `json:"summaries"`
	DurationMs int64           `json:"duration_ms"`
}

// GoldenSummary is the expected per-server summary.
type GoldenSummary struct {
	Name           string `json:"name"`
	RequestsServed int    `json:"requests_served"`
	AvgResponseMs  int64  `json:"avg_response_ms"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}
