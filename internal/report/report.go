// Package report aggregates sweep results and renders the text summaries.
package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/t13-mirror/internal/match"
	"github.com/danielpatrickdp/t13-mirror/internal/sweep"
)

// #region summary

// Summary aggregates one SweepResult.
type Summary struct {
	Total            int     `json:"total"`
	Locked           int     `json:"locked"`
	LockRate         float64 `json:"lock_rate"`
	MedianIterations float64 `json:"median_iterations"`
	HasMedian        bool    `json:"has_median"`
}

// Summarize counts locks and takes the median iteration count over locked
// seeds. LockRate is 0 for an empty result; HasMedian is false when nothing
// locked.
func Summarize(results sweep.SweepResult) Summary {
	s := Summary{Total: len(results)}
	iters := lockedIterations(results)
	s.Locked = len(iters)
	if s.Total > 0 {
		s.LockRate = float64(s.Locked) / float64(s.Total)
	}
	if len(iters) > 0 {
		s.MedianIterations = median(iters)
		s.HasMedian = true
	}
	return s
}

func lockedIterations(results sweep.SweepResult) []int {
	var iters []int
	for _, r := range results {
		if r.Locked {
			iters = append(iters, r.Iterations)
		}
	}
	return iters
}

// median averages the two middle values for an even count.
func median(values []int) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

// medianText renders the median the way the summary has always shown it:
// an integer for an odd count, a decimal for an even one, "—" for none.
func medianText(results sweep.SweepResult) string {
	iters := lockedIterations(results)
	if len(iters) == 0 {
		return "—"
	}
	m := median(iters)
	if len(iters)%2 == 1 {
		return strconv.Itoa(int(m))
	}
	if m == float64(int(m)) {
		return strconv.FormatFloat(m, 'f', 1, 64)
	}
	return strconv.FormatFloat(m, 'f', -1, 64)
}

// #endregion summary

// #region compare

// Comparison aligns one seed's outcome across two sweeps.
type Comparison struct {
	Seed string            `json:"seed"`
	A    sweep.SeedOutcome `json:"a"`
	B    sweep.SeedOutcome `json:"b"`
}

// Compare aligns a and b by seedOrder. Seeds missing from either side get
// an unlocked zero-iteration placeholder. An empty seedOrder uses the seeds
// of a followed by the seeds only b has.
func Compare(a, b sweep.SweepResult, seedOrder []string) []Comparison {
	byA := index(a)
	byB := index(b)
	if len(seedOrder) == 0 {
		seedOrder = unionOrder(a, b)
	}
	out := make([]Comparison, 0, len(seedOrder))
	for _, seed := range seedOrder {
		out = append(out, Comparison{Seed: seed, A: lookup(byA, seed), B: lookup(byB, seed)})
	}
	return out
}

// index keeps the first outcome per seed.
func index(results sweep.SweepResult) map[string]sweep.SeedOutcome {
	m := make(map[string]sweep.SeedOutcome, len(results))
	for _, r := range results {
		if _, ok := m[r.Seed]; !ok {
			m[r.Seed] = r
		}
	}
	return m
}

func lookup(m map[string]sweep.SeedOutcome, seed string) sweep.SeedOutcome {
	if r, ok := m[seed]; ok {
		return r
	}
	return Placeholder(seed)
}

// Placeholder is the outcome used for a seed a sweep never reached.
func Placeholder(seed string) sweep.SeedOutcome {
	return sweep.SeedOutcome{Seed: seed, Signals: []match.Signal{}}
}

func unionOrder(a, b sweep.SweepResult) []string {
	seen := make(map[string]bool)
	var order []string
	for _, res := range []sweep.SweepResult{a, b} {
		for _, r := range res {
			if !seen[r.Seed] {
				seen[r.Seed] = true
				order = append(order, r.Seed)
			}
		}
	}
	return order
}

// #endregion compare

// #region print

// Labels names the two sides of a comparison.
type Labels struct {
	TitleA, TitleB string
	ShortA, ShortB string
}

// DefaultLabels compares a blind run against a calibration run.
func DefaultLabels() Labels {
	return Labels{TitleA: "Blind", TitleB: "Calibration", ShortA: "blind", ShortB: "calib"}
}

func status(locked bool) string {
	if locked {
		return "LOCK"
	}
	return "—"
}

// PrintSummary writes the titled summary block with one line per seed.
func PrintSummary(w io.Writer, title string, results sweep.SweepResult) error {
	s := Summarize(results)
	var b strings.Builder
	fmt.Fprintf(&b, "\n===== %s =====\n", title)
	fmt.Fprintf(&b, "Seeds: %d | Locks: %d | Lock rate: %d/%d = %.2f\n", s.Total, s.Locked, s.Locked, s.Total, s.LockRate)
	fmt.Fprintf(&b, "Median iterations to lock (locked only): %s\n", medianText(results))
	b.WriteString("\nPer-seed:\n")
	for _, r := range results {
		sigs := make([]string, len(r.Signals))
		for i, sig := range r.Signals {
			sigs[i] = string(sig)
		}
		fmt.Fprintf(&b, "  • %-12s | %-4s | iters=%02d | %s\n", r.Seed, status(r.Locked), r.Iterations, strings.Join(sigs, ", "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// PrintComparison writes the side-by-side block.
func PrintComparison(w io.Writer, comps []Comparison, labels Labels) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n===== Comparison (%s vs %s) =====\n", labels.TitleA, labels.TitleB)
	for _, c := range comps {
		fmt.Fprintf(&b, "  • %-12s | %s: %s @ %02d  ||  %s: %s @ %02d\n",
			c.Seed,
			labels.ShortA, status(c.A.Locked), c.A.Iterations,
			labels.ShortB, status(c.B.Locked), c.B.Iterations)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// #endregion print
