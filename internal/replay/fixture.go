package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/danielpatrickdp/t13-mirror/internal/match"
)

// #region fixture-types

// Fixture is a JSON regression case for the reply matcher: a phrase set
// (defaults when omitted) and replies with their expected verdicts.
type Fixture struct {
	Description string            `json:"description"`
	Phrases     *match.PhraseSets `json:"phrases,omitempty"`
	Cases       []FixtureCase     `json:"cases"`
}

// FixtureCase is one reply and what matching it should yield.
type FixtureCase struct {
	Name           string         `json:"name"`
	Reply          string         `json:"reply"`
	ExpectLocked   bool           `json:"expect_locked"`
	ExpectSignals  []match.Signal `json:"expect_signals"`
	ExpectDecoyHit bool           `json:"expect_decoy_hit"`
	ExpectNearMiss bool           `json:"expect_near_miss"`
}

// Mismatch describes one case whose verdict differed from expectations.
type Mismatch struct {
	Case   string `json:"case"`
	Reason string `json:"reason"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a fixture file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	if len(f.Cases) == 0 {
		return Fixture{}, fmt.Errorf("fixture %s has no cases", path)
	}
	return f, nil
}

// Check runs every case and returns the mismatches.
func (f Fixture) Check() []Mismatch {
	sets := match.DefaultPhraseSets()
	if f.Phrases != nil {
		sets = *f.Phrases
	}
	m := match.NewMatcher(sets)

	var out []Mismatch
	for _, c := range f.Cases {
		got := m.Match(c.Reply)
		if got.Locked != c.ExpectLocked {
			out = append(out, Mismatch{c.Name, fmt.Sprintf("locked=%v, want %v", got.Locked, c.ExpectLocked)})
		}
		if got.DecoyHit != c.ExpectDecoyHit {
			out = append(out, Mismatch{c.Name, fmt.Sprintf("decoy_hit=%v, want %v", got.DecoyHit, c.ExpectDecoyHit)})
		}
		if nm := len(got.NearMisses) > 0; nm != c.ExpectNearMiss {
			out = append(out, Mismatch{c.Name, fmt.Sprintf("near_miss=%v, want %v", nm, c.ExpectNearMiss)})
		}
		if c.ExpectSignals != nil && !sameSignals(got.Signals, c.ExpectSignals) {
			out = append(out, Mismatch{c.Name, fmt.Sprintf("signals=%v, want %v", got.Signals, c.ExpectSignals)})
		}
	}
	return out
}

func sameSignals(a, b []match.Signal) bool {
	a, b = slices.Clone(a), slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// #endregion fixture-loader
