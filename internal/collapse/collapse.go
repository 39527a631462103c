// Package collapse implements the deterministic T13 collapse: three digit
// functions of an integer are summed modulo a base, fused with a
// dimension-derived harmonic constant and mapped onto one of eight labels.
package collapse

import (
	"fmt"
	"math"
	"math/big"
	"slices"
	"strings"
)

// MaxDimension is the largest accepted observer dimension.
const MaxDimension = math.MaxInt32

// #region collapse

// Collapse resolves x to an integer and runs CollapseInt.
//
// With opts.FromText the text is encoded with EncodeText; encoding failures
// are returned as *ValidationError. Otherwise x is parsed as a decimal
// integer, and input that is not a number takes the sentinel path.
func Collapse(x string, opts Options) (Trace, error) {
	if opts.FromText {
		n, err := EncodeText(x, opts.TextMode)
		if err != nil {
			return Trace{}, err
		}
		return CollapseInt(n, opts)
	}
	n, ok := new(big.Int).SetString(strings.TrimSpace(x), 10)
	if !ok {
		return sentinelTrace(nil, opts), nil
	}
	return CollapseInt(n, opts)
}

// Auto takes the numeric path when x is a decimal integer and the text
// path otherwise, so digit-only seeds never hit the encoder.
func Auto(x string, opts Options) (Trace, error) {
	if n, ok := new(big.Int).SetString(strings.TrimSpace(x), 10); ok {
		return CollapseInt(n, opts)
	}
	opts.FromText = true
	return Collapse(x, opts)
}

// CollapseInt computes the trace for n. Negative n, D < 1 or base < 2
// yield the sentinel trace before anything else is evaluated.
func CollapseInt(n *big.Int, opts Options) (Trace, error) {
	if n == nil || n.Sign() < 0 || opts.Dimension < 1 || opts.Base < 2 {
		return sentinelTrace(n, opts), nil
	}
	if opts.Dimension > MaxDimension {
		return Trace{}, &ValidationError{Field: "dimension", Reason: fmt.Sprintf("%d exceeds %d", opts.Dimension, MaxDimension)}
	}
	set, err := ParseLabelSet(string(labelSetOrDefault(opts.LabelSet)))
	if err != nil {
		return Trace{}, err
	}

	digits := new(big.Int).Abs(n).Text(10)
	f1 := divergence(digits)
	f2 := mirror(n, digits)
	f3 := weightedResonance(digits, opts.StartIndex)

	sum := new(big.Int).Add(f1, f2)
	sum.Add(sum, f3)
	// big.Int.Mod is Euclidean, so collapsed is in [0, base).
	collapsed := new(big.Int).Mod(sum, big.NewInt(int64(opts.Base))).Int64()

	hd := HarmonicConstant(opts.Dimension)
	fused := collapsed ^ hd
	idx := int(((fused % 8) + 8) % 8)

	return Trace{
		N:         new(big.Int).Set(n),
		D:         opts.Dimension,
		Base:      opts.Base,
		F1:        f1,
		F2:        f2,
		F3:        f3,
		Collapsed: collapsed,
		HD:        hd,
		Fused:     fused,
		Idx:       idx,
		Truth:     labelTables[set][idx],
		LabelSet:  set,
	}, nil
}

// HarmonicConstant returns H_D = 13(D-8). It is negative for D < 8.
func HarmonicConstant(d int) int64 {
	return 13 * (int64(d) - 8)
}

// #endregion

// #region digit-functions

// divergence is |desc(digits) - asc(digits)|, the Kaprekar-style step.
func divergence(digits string) *big.Int {
	b := []byte(digits)
	slices.Sort(b)
	asc := mustParse(string(b))
	slices.Reverse(b)
	desc := mustParse(string(b))
	return new(big.Int).Abs(desc.Sub(desc, asc))
}

// mirror is |n - reverse(n)|.
func mirror(n *big.Int, digits string) *big.Int {
	b := []byte(digits)
	slices.Reverse(b)
	rev := mustParse(string(b))
	return rev.Abs(rev.Sub(n, rev))
}

// weightedResonance is sum(d_i * (i + start)) over digit positions.
func weightedResonance(digits string, start int) *big.Int {
	total := new(big.Int)
	weight := new(big.Int)
	term := new(big.Int)
	for i := 0; i < len(digits); i++ {
		weight.SetInt64(int64(i) + int64(start))
		term.SetInt64(int64(digits[i] - '0'))
		total.Add(total, term.Mul(term, weight))
	}
	return total
}

func mustParse(digits string) *big.Int {
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		panic(fmt.Sprintf("collapse: invalid digit string %q", digits))
	}
	return v
}

// #endregion

// #region sentinel

func sentinelTrace(n *big.Int, opts Options) Trace {
	echo := new(big.Int)
	if n != nil {
		echo.Set(n)
	}
	return Trace{
		N:        echo,
		D:        opts.Dimension,
		Base:     opts.Base,
		F1:       new(big.Int),
		F2:       new(big.Int),
		F3:       new(big.Int),
		Truth:    SentinelTruth,
		LabelSet: labelSetOrDefault(opts.LabelSet),
		Sentinel: true,
	}
}

func labelSetOrDefault(set LabelSet) LabelSet {
	if set == "" {
		return LabelsUniversal
	}
	return set
}

// #endregion
