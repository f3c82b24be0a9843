// Package workload resolves request profiles into the request count the engine simulates.
package workload

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// ProfileKind selects how the number of requests is determined.
type ProfileKind string

const (
	// ProfileFixed simulates exactly Count requests.
	ProfileFixed ProfileKind = "fixed"
	// ProfilePoisson samples the count from a Poisson process over DurationMs.
	ProfilePoisson ProfileKind = "poisson"
)

// MaxPoissonRequests bounds the request count a Poisson profile may produce.
// Profiles whose expected count RatePerMs × DurationMs exceeds it are rejected,
// and sampling stops once it is reached.
const MaxPoissonRequests = 10_000_000

// Profile describes the synthetic request stream of a run.
type Profile struct {
	Kind       ProfileKind
	Count      int     // ProfileFixed
	RatePerMs  float64 // ProfilePoisson: mean arrivals per millisecond
	DurationMs int64   // ProfilePoisson: observation window
}

// FixedCount returns a profile of exactly n requests.
func FixedCount(n int) Profile {
	return Profile{Kind: ProfileFixed, Count: n}
}

// Poisson returns a profile whose request count is drawn from a Poisson process.
func Poisson(ratePerMs float64, durationMs int64) Profile {
	return Profile{Kind: ProfilePoisson, RatePerMs: ratePerMs, DurationMs: durationMs}
}

// Validate checks profile parameters. A fixed count of zero is left to the engine,
// which reports it as its own typed error.
func (p Profile) Validate() error {
	switch p.Kind {
	case ProfileFixed, "":
		if p.Count < 0 {
			return fmt.Errorf("request count must be non-negative, got %d", p.Count)
		}
	case ProfilePoisson:
		if p.RatePerMs <= 0 || math.IsNaN(p.RatePerMs) || math.IsInf(p.RatePerMs, 0) {
			return fmt.Errorf("request rate must be > 0 (got %v)", p.RatePerMs)
		}
		if p.DurationMs <= 0 {
			return fmt.Errorf("request duration must be > 0 (got %dms)", p.DurationMs)
		}
		if expected := p.RatePerMs * float64(p.DurationMs); expected > MaxPoissonRequests {
			return fmt.Errorf("poisson profile expects %.0f requests, above the limit of %d", expected, MaxPoissonRequests)
		}
	default:
		return fmt.Errorf("unknown request profile %q", p.Kind)
	}
	return nil
}

// String renders the profile as a count or "poisson(rate=…, duration_ms=…)".
func (p Profile) String() string {
	if p.Kind == ProfilePoisson {
		return fmt.Sprintf("poisson(rate=%v, duration_ms=%d)", p.RatePerMs, p.DurationMs)
	}
	return fmt.Sprintf("%d", p.Count)
}

// ResolveCount returns the number of requests for p. Poisson profiles count the
// arrivals whose cumulative exponential inter-arrival time stays below DurationMs,
// drawing gaps from rng; at least one and at most MaxPoissonRequests requests are produced.
// Fixed profiles never touch rng.
func ResolveCount(p Profile, rng *rand.Rand) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if p.Kind != ProfilePoisson {
		return p.Count, nil
	}

	count := 0
	elapsed := 0.0
	window := float64(p.DurationMs)
	for {
		elapsed += rng.ExpFloat64() / p.RatePerMs
		if elapsed >= window {
			break
		}
		count++
		if count == MaxPoissonRequests {
			logrus.Warnf("poisson profile (rate=%v, duration_ms=%d) reached %d requests; truncating the window",
				p.RatePerMs, p.DurationMs, MaxPoissonRequests)
			break
		}
	}
	if count == 0 {
		logrus.Warnf("poisson profile (rate=%v, duration_ms=%d) produced no arrivals; simulating 1 request", p.RatePerMs, p.DurationMs)
		count = 1
	}
	logrus.Debugf("poisson profile resolved to %d requests", count)
	return count, nil
}
