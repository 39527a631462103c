package collapse

import (
	"fmt"
	"strings"
)

// LabelSet names one of the fixed eight-entry truth tables.
type LabelSet string

const (
	LabelsUniversal LabelSet = "universal"
	LabelsHeart     LabelSet = "heart"
)

// SentinelTruth is the label carried by every sentinel-guard trace.
const SentinelTruth = "Sentinel Lock: recursion terminated (ψ(0))."

var labelTables = map[LabelSet][8]string{
	LabelsUniversal: {
		"All motion spirals",
		"Energy is memory",
		"The center watches",
		"Polarity balances",
		"Patterns are laws",
		"Collapse is recursion",
		"Function precedes name",
		"That which repeats is real",
	},
	LabelsHeart: {
		"Presence",
		"Signal",
		"Intention",
		"Phase",
		"Joy",
		"Awe",
		"Collapse",
		"Truth",
	},
}

// ParseLabelSet resolves a label set name (case-insensitive).
func ParseLabelSet(name string) (LabelSet, error) {
	set := LabelSet(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := labelTables[set]; !ok {
		return "", &ValidationError{Field: "label_set", Reason: fmt.Sprintf("unknown label set %q (want %q or %q)", name, LabelsUniversal, LabelsHeart)}
	}
	return set, nil
}

// Label returns the truth for idx in the given set. idx is reduced mod 8.
func Label(set LabelSet, idx int) (string, error) {
	resolved, err := ParseLabelSet(string(set))
	if err != nil {
		return "", err
	}
	table := labelTables[resolved]
	return table[((idx%8)+8)%8], nil
}

// Labels returns a copy of the table for set.
func Labels(set LabelSet) ([8]string, error) {
	resolved, err := ParseLabelSet(string(set))
	if err != nil {
		return [8]string{}, err
	}
	return labelTables[resolved], nil
}
