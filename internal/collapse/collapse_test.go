package collapse

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// #region fixed-points

func TestCollapse_KnownOutputsUniversal(t *testing.T) {
	cases := []struct {
		n     string
		idx   int
		truth string
	}{
		{"72", 4, "Patterns are laws"},
		{"13", 6, "Function precedes name"},
		{"144", 2, "The center watches"},
	}
	for _, tc := range cases {
		t.Run(tc.n, func(t *testing.T) {
			tr, err := Collapse(tc.n, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tc.idx, tr.Idx)
			assert.Equal(t, tc.truth, tr.Truth)
			assert.False(t, tr.Sentinel)
		})
	}
}

func TestCollapse_KnownOutputsHeart(t *testing.T) {
	opts := DefaultOptions()
	opts.LabelSet = LabelsHeart

	expected := map[string]string{"72": "Joy", "13": "Collapse", "144": "Intention"}
	for n, truth := range expected {
		tr, err := Collapse(n, opts)
		require.NoError(t, err)
		assert.Equal(t, truth, tr.Truth, "n=%s", n)
	}
}

func TestCollapseInt_FullTrace(t *testing.T) {
	tr, err := CollapseInt(big.NewInt(72), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "72", tr.N.String())
	assert.Equal(t, 13, tr.D)
	assert.Equal(t, 12, tr.Base)
	assert.Equal(t, "45", tr.F1.String())
	assert.Equal(t, "45", tr.F2.String())
	assert.Equal(t, "11", tr.F3.String())
	assert.Equal(t, int64(5), tr.Collapsed)
	assert.Equal(t, int64(65), tr.HD)
	assert.Equal(t, int64(68), tr.Fused)
	assert.Equal(t, 4, tr.Idx)
	assert.Equal(t, LabelsUniversal, tr.LabelSet)
}

func TestCollapseInt_NegativeHarmonicConstant(t *testing.T) {
	opts := DefaultOptions()
	opts.Dimension = 3

	tr, err := CollapseInt(big.NewInt(72), opts)
	require.NoError(t, err)
	assert.Equal(t, int64(-65), tr.HD)
	assert.Equal(t, int64(-70), tr.Fused, "two's-complement XOR of 5 and -65")
	assert.Equal(t, 2, tr.Idx, "mod 8 must be non-negative")
	assert.Equal(t, "The center watches", tr.Truth)
}

func TestCollapseInt_StartIndex(t *testing.T) {
	opts := DefaultOptions()
	opts.StartIndex = 0
	tr, err := CollapseInt(big.NewInt(72), opts)
	require.NoError(t, err)
	assert.Equal(t, "2", tr.F3.String())
	assert.Equal(t, int64(8), tr.Collapsed)
	assert.Equal(t, "Energy is memory", tr.Truth)

	opts.StartIndex = -5
	tr, err = CollapseInt(big.NewInt(72), opts)
	require.NoError(t, err)
	assert.Equal(t, "-43", tr.F3.String())
	assert.Equal(t, int64(11), tr.Collapsed, "Euclidean modulus keeps collapsed non-negative")
}

func TestCollapse_LargeInteger(t *testing.T) {
	tr, err := Collapse("1000000000000000000000000000007", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "7099999999999999999999999999983", tr.F1.String())
	assert.Equal(t, "5999999999999999999999999999994", tr.F2.String())
	assert.Equal(t, "218", tr.F3.String())
	assert.Equal(t, 2, tr.Idx)
}

func TestCollapse_TextSeeds(t *testing.T) {
	opts := DefaultOptions()
	opts.FromText = true

	cases := map[string]struct {
		n     string
		truth string
	}{
		"O13":          {"15", "The center watches"},
		"Echo returns": {"503081518052021181419", "Patterns are laws"},
		"Observer":     {"1502190518220518", "Polarity balances"},
		"Center":       {"30514200518", "Energy is memory"},
	}
	for seed, want := range cases {
		tr, err := Collapse(seed, opts)
		require.NoError(t, err, seed)
		assert.Equal(t, want.n, tr.N.String(), seed)
		assert.Equal(t, want.truth, tr.Truth, seed)
	}
}

// #endregion

// #region sentinel

func TestCollapse_SentinelGuard(t *testing.T) {
	cases := []struct {
		name string
		x    string
		d    int
		base int
	}{
		{"negative n", "-5", 13, 12},
		{"zero dimension", "7", 0, 12},
		{"base below two", "7", 13, 1},
		{"not a number", "seven", 13, 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Dimension = tc.d
			opts.Base = tc.base

			tr, err := Collapse(tc.x, opts)
			require.NoError(t, err)
			assert.True(t, tr.Sentinel)
			assert.Equal(t, 0, tr.Idx)
			assert.Equal(t, int64(0), tr.Collapsed)
			assert.Equal(t, int64(0), tr.HD)
			assert.Equal(t, int64(0), tr.Fused)
			assert.Equal(t, 0, tr.F1.Sign())
			assert.Equal(t, 0, tr.F2.Sign())
			assert.Equal(t, 0, tr.F3.Sign())
			assert.Equal(t, SentinelTruth, tr.Truth)
		})
	}
}

func TestCollapse_SentinelBeforeLabelValidation(t *testing.T) {
	opts := DefaultOptions()
	opts.LabelSet = "cosmic"
	tr, err := Collapse("-1", opts)
	require.NoError(t, err)
	assert.True(t, tr.Sentinel)
}

// #endregion

// #region validation

func TestCollapse_UnknownLabelSet(t *testing.T) {
	opts := DefaultOptions()
	opts.LabelSet = "cosmic"
	_, err := Collapse("72", opts)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "label_set", verr.Field)
}

func TestCollapse_TextWithoutLetters(t *testing.T) {
	opts := DefaultOptions()
	opts.FromText = true
	_, err := Collapse("123 !?", opts)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCollapse_DimensionTooLarge(t *testing.T) {
	opts := DefaultOptions()
	opts.Dimension = MaxDimension + 1
	_, err := Collapse("72", opts)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "dimension", verr.Field)
}

func TestParseLabelSet_CaseInsensitive(t *testing.T) {
	set, err := ParseLabelSet("  HEART ")
	require.NoError(t, err)
	assert.Equal(t, LabelsHeart, set)
}

func TestLabel_ReducesIndex(t *testing.T) {
	got, err := Label(LabelsUniversal, 12)
	require.NoError(t, err)
	assert.Equal(t, "Patterns are laws", got)

	got, err = Label(LabelsHeart, -1)
	require.NoError(t, err)
	assert.Equal(t, "Truth", got)
}

// #endregion

// #region properties

func TestCollapse_IndexInRangeAndDeterministic(t *testing.T) {
	for _, set := range []LabelSet{LabelsUniversal, LabelsHeart} {
		table, err := Labels(set)
		require.NoError(t, err)
		for d := 1; d <= 20; d++ {
			for base := 2; base <= 15; base++ {
				for n := int64(0); n < 300; n += 7 {
					opts := Options{Dimension: d, Base: base, StartIndex: 1, LabelSet: set}
					a, err := CollapseInt(big.NewInt(n), opts)
					require.NoError(t, err)
					b, err := CollapseInt(big.NewInt(n), opts)
					require.NoError(t, err)

					if a.Idx < 0 || a.Idx >= 8 {
						t.Fatalf("idx %d out of range for n=%d D=%d base=%d", a.Idx, n, d, base)
					}
					if a.Truth == "" || a.Truth != table[a.Idx] {
						t.Fatalf("truth %q inconsistent with %s[%d]", a.Truth, set, a.Idx)
					}
					if a.Idx != b.Idx || a.Fused != b.Fused || a.F1.Cmp(b.F1) != 0 {
						t.Fatalf("non-deterministic trace for n=%d", n)
					}
				}
			}
		}
	}
}

// #endregion

// #region serialization

func TestTrace_JSONFields(t *testing.T) {
	tr, err := Collapse("144", DefaultOptions())
	require.NoError(t, err)

	raw, err := json.Marshal(tr)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{"n", "D", "base", "f1", "f2", "f3", "collapsed", "H_D", "fused", "idx", "truth"} {
		assert.Contains(t, m, key)
	}
	assert.NotContains(t, m, "sentinel")
	assert.EqualValues(t, 297, m["f1"])
}

func TestTrace_Explain(t *testing.T) {
	tr, err := Collapse("72", DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tr.Explain(&buf))
	out := buf.String()
	assert.Contains(t, out, "XOR fusion")
	assert.Contains(t, out, "68")
	assert.Contains(t, out, "Patterns are laws")
	assert.Equal(t, 11, strings.Count(out, "\n"))

	buf.Reset()
	sentinel, err := Collapse("-1", DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, sentinel.Explain(&buf))
	assert.Contains(t, buf.String(), "Sentinel lock triggered")
}

func TestAuto_PicksPath(t *testing.T) {
	numeric, err := Auto("7605", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, numeric.N.Cmp(big.NewInt(7605)))

	text, err := Auto("O13", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, text.N.Cmp(big.NewInt(15)))
	assert.Equal(t, "The center watches", text.Truth)

	neg, err := Auto("-5", DefaultOptions())
	require.NoError(t, err)
	assert.True(t, neg.Sentinel)

	_, err = Auto("?!", DefaultOptions())
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

// #endregion
