package collapse

import (
	"fmt"
	"math/big"
	"strings"
)

// #region text-mode

// TextMode selects how text is turned into an integer.
type TextMode string

const (
	ModeConcat TextMode = "concat"
	ModeSum    TextMode = "sum"
)

// ParseTextMode resolves a mode name (case-insensitive).
func ParseTextMode(name string) (TextMode, error) {
	switch TextMode(strings.ToLower(strings.TrimSpace(name))) {
	case ModeConcat:
		return ModeConcat, nil
	case ModeSum:
		return ModeSum, nil
	}
	return "", &ValidationError{Field: "text_mode", Reason: fmt.Sprintf("mode must be %q or %q, got %q", ModeConcat, ModeSum, name)}
}

// #endregion

// #region options

// Options configures a single collapse computation.
type Options struct {
	Dimension  int
	Base       int
	FromText   bool
	TextMode   TextMode
	StartIndex int
	LabelSet   LabelSet
}

// DefaultOptions returns D=13, base 12, concat text mode, start index 1 and
// the universal label set.
func DefaultOptions() Options {
	return Options{
		Dimension:  13,
		Base:       12,
		TextMode:   ModeConcat,
		StartIndex: 1,
		LabelSet:   LabelsUniversal,
	}
}

// #endregion

// #region trace

// Trace is the full record of one collapse computation.
type Trace struct {
	N         *big.Int `json:"n"`
	D         int      `json:"D"`
	Base      int      `json:"base"`
	F1        *big.Int `json:"f1"`
	F2        *big.Int `json:"f2"`
	F3        *big.Int `json:"f3"`
	Collapsed int64    `json:"collapsed"`
	HD        int64    `json:"H_D"`
	Fused     int64    `json:"fused"`
	Idx       int      `json:"idx"`
	Truth     string   `json:"truth"`
	LabelSet  LabelSet `json:"label_set"`
	Sentinel  bool     `json:"sentinel,omitempty"`
}

// #endregion

// #region validation-error

// ValidationError reports malformed collapse input: an unknown label set or
// text mode, text without letters, or oversized concat input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// #endregion
