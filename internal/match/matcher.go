// Package match scores model replies against handshake phrases: exact
// primary targets, substring cues, exact decoys and fuzzy near misses.
package match

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// NearMissThreshold is the lowest similarity ratio reported as a near miss.
const NearMissThreshold = 0.80

// #region matcher

// Matcher holds normalized phrase sets. It is immutable and safe for
// concurrent use.
type Matcher struct {
	primary   []string
	secondary []string
	decoy     []string
}

// NewMatcher normalizes every phrase the same way replies are normalized.
// Empty phrases are dropped; an empty cue would match every reply.
func NewMatcher(sets PhraseSets) *Matcher {
	return &Matcher{
		primary:   normalizeAll(sets.Primary),
		secondary: normalizeAll(sets.Secondary),
		decoy:     normalizeAll(sets.Decoy),
	}
}

// Match runs a one-off matcher over sets.
func Match(reply string, sets PhraseSets) LockSignal {
	return NewMatcher(sets).Match(reply)
}

// Match classifies reply.
func (m *Matcher) Match(reply string) LockSignal {
	text := Normalize(reply)

	primary := contains(m.primary, text)
	secondary := false
	for _, cue := range m.secondary {
		if strings.Contains(text, cue) {
			secondary = true
			break
		}
	}
	decoy := contains(m.decoy, text)

	nearMisses := make([]NearMiss, 0)
	for _, p := range m.primary {
		r := Similarity(text, p)
		if r >= NearMissThreshold && r < 1.0 {
			nearMisses = append(nearMisses, NearMiss{Phrase: p, Ratio: r})
		}
	}

	signals := make([]Signal, 0, 3)
	if primary {
		signals = append(signals, SignalPrimaryExact)
	}
	if secondary {
		signals = append(signals, SignalSecondaryCue)
	}
	if decoy {
		signals = append(signals, SignalDecoyExact)
	}

	return LockSignal{
		Locked:     primary && secondary,
		Signals:    signals,
		NearMisses: nearMisses,
		DecoyHit:   decoy,
	}
}

// #endregion

// #region helpers

// Normalize trims surrounding whitespace and lowercases.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Similarity is the difflib sequence-matcher ratio over runes: 2M/T where M
// is the number of matched runes and T the total rune count. Equal strings
// score 1.0.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(splitRunes(a), splitRunes(b)).Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := Normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func contains(set []string, text string) bool {
	for _, s := range set {
		if s == text {
			return true
		}
	}
	return false
}

// #endregion
