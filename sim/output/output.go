// Package output renders a sim.RunResult for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/inference-sim/lb-sim/sim"
)

// Format names a result rendering.
type Format string

const (
	FormatHuman   Format = "human"
	FormatSummary Format = "summary"
	FormatJSON    Format = "json"
)

var validFormats = map[Format]bool{FormatHuman: true, FormatSummary: true, FormatJSON: true}

// ParseFormat returns the Format for name; empty defaults to human.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatHuman, nil
	}
	f := Format(name)
	if !validFormats[f] {
		return "", fmt.Errorf("unknown format %q; valid formats: %s", name, strings.Join(ValidFormatNames(), ", "))
	}
	return f, nil
}

// ValidFormatNames returns sorted format names.
func ValidFormatNames() []string {
	names := make([]string, 0, len(validFormats))
	for f := range validFormats {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// Metadata describes the run a result came from.
type Metadata struct {
	Algorithm  string `json:"algo"`
	TieBreak   string `json:"tie_break"`
	DurationMs int64  `json:"duration_ms"`
}

// MetadataOf extracts the metadata of r.
func MetadataOf(r *sim.RunResult) Metadata {
	return Metadata{
		Algorithm:  r.Algorithm,
		TieBreak:   r.TieBreak.String(),
		DurationMs: r.DurationMs,
	}
}

// Formatter renders a RunResult to text.
type Formatter interface {
	Write(r *sim.RunResult) string
}

// NewFormatter returns the formatter for f.
// Panics on unrecognized formats; callers validate with ParseFormat first.
func NewFormatter(f Format) Formatter {
	switch f {
	case "", FormatHuman:
		return HumanFormatter{}
	case FormatSummary:
		return SummaryFormatter{}
	case FormatJSON:
		return JSONFormatter{}
	default:
		panic(fmt.Sprintf("unknown format %q", f))
	}
}

// SummaryFormatter prints metadata and per-server totals.
type SummaryFormatter struct{}

// Write implements Formatter.
func (SummaryFormatter) Write(r *sim.RunResult) string {
	var b strings.Builder
	writeMetadata(&b, MetadataOf(r))
	writeSummary(&b, r.Summaries)
	return b.String()
}

// HumanFormatter prints metadata, every assignment and the summary.
type HumanFormatter struct{}

// Write implements Formatter.
func (HumanFormatter) Write(r *sim.RunResult) string {
	var b strings.Builder
	writeMetadata(&b, MetadataOf(r))
	b.WriteString("Assignments:\n")
	for _, a := range r.Assignments {
		if a.Score != nil {
			fmt.Fprintf(&b, "Request %d -> %s (score: %dms)\n", a.RequestID, a.ServerName, *a.Score)
		} else {
			fmt.Fprintf(&b, "Request %d -> %s\n", a.RequestID, a.ServerName)
		}
	}
	writeSummary(&b, r.Summaries)
	return b.String()
}

func writeMetadata(b *strings.Builder, m Metadata) {
	b.WriteString("Metadata:\n")
	fmt.Fprintf(b, "algo: %s\n", m.Algorithm)
	fmt.Fprintf(b, "tie_break: %s\n", m.TieBreak)
	fmt.Fprintf(b, "duration_ms: %d\n", m.DurationMs)
}

func writeSummary(b *strings.Builder, summaries []sim.ServerSummary) {
	b.WriteString("Summary:\n")
	for _, s := range summaries {
		fmt.Fprintf(b, "%s: %d requests (avg response: %dms)\n", s.Name, s.RequestsServed, s.AvgResponseMs)
	}
}

// JSONFormatter prints the result as indented JSON.
type JSONFormatter struct{}

type jsonAssignment struct {
	RequestID     int    `json:"request_id"`
	ServerID      int    `json:"server_id"`
	ServerName    string `json:"server_name"`
	Score         *int64 `json:"score,omitempty"`
	StartedAtMs   int64  `json:"started_at_ms"`
	CompletedAtMs int64  `json:"completed_at_ms"`
}

type jsonSummary struct {
	Name           string `json:"name"`
	RequestsServed int    `json:"requests_served"`
	AvgResponseMs  int64  `json:"avg_response_ms"`
}

type jsonDecision struct {
	RequestID    int      `json:"request_id"`
	Clock        int64    `json:"clock_ms"`
	ChosenServer string   `json:"chosen_server"`
	Score        *int64   `json:"score,omitempty"`
	Candidates   []string `json:"candidates,omitempty"`
	TieBroken    bool     `json:"tie_broken"`
	Loads        []int    `json:"loads"`
}

type jsonResult struct {
	Metadata    Metadata         `json:"metadata"`
	Assignments []jsonAssignment `json:"assignments"`
	Summaries   []jsonSummary    `json:"summaries"`
	Decisions   []jsonDecision   `json:"decisions,omitempty"` // only with decision tracing
}

// Write implements Formatter.
func (JSONFormatter) Write(r *sim.RunResult) string {
	out := jsonResult{
		Metadata:    MetadataOf(r),
		Assignments: make([]jsonAssignment, len(r.Assignments)),
		Summaries:   make([]jsonSummary, len(r.Summaries)),
	}
	for i, a := range r.Assignments {
		out.Assignments[i] = jsonAssignment{
			RequestID:     a.RequestID,
			ServerID:      a.ServerID,
			ServerName:    a.ServerName,
			Score:         a.Score,
			StartedAtMs:   a.StartedAtMs,
			CompletedAtMs: a.CompletedAtMs,
		}
	}
	for i, s := range r.Summaries {
		out.Summaries[i] = jsonSummary{Name: s.Name, RequestsServed: s.RequestsServed, AvgResponseMs: s.AvgResponseMs}
	}
	if r.Trace != nil {
		out.Decisions = make([]jsonDecision, len(r.Trace.Decisions))
		for i, d := range r.Trace.Decisions {
			out.Decisions[i] = jsonDecision{
				RequestID:    d.RequestID,
				Clock:        d.Clock,
				ChosenServer: d.ChosenServer,
				Score:        d.Score,
				Candidates:   d.Candidates,
				TieBroken:    d.TieBroken,
				Loads:        d.Loads,
			}
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		// Plain structs of strings and integers always marshal.
		panic(fmt.Sprintf("JSONFormatter: %v", err))
	}
	return string(data) + "\n"
}
