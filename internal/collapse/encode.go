package collapse

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxConcatLength bounds concat-mode input so the resulting integer stays small.
const MaxConcatLength = 100

// #region encode

// EncodeText converts text to an integer using A=1..Z=26.
//
// Diacritics are stripped and the text is uppercased before every
// non-letter is dropped. In concat mode each letter contributes its ordinal
// as two decimal digits (A=01, Z=26) and the digit string is parsed as one
// integer, so "AB" encodes to 102. In sum mode the ordinals are added.
func EncodeText(text string, mode TextMode) (*big.Int, error) {
	if mode == "" {
		mode = ModeConcat
	}
	if mode != ModeConcat && mode != ModeSum {
		return nil, &ValidationError{Field: "text_mode", Reason: fmt.Sprintf("mode must be %q or %q, got %q", ModeConcat, ModeSum, mode)}
	}
	if mode == ModeConcat && utf8.RuneCountInString(text) > MaxConcatLength {
		return nil, &ValidationError{Field: "text", Reason: fmt.Sprintf("input too long for concat mode (max %d chars)", MaxConcatLength)}
	}

	letters, err := letterOrdinals(text)
	if err != nil {
		return nil, err
	}
	if len(letters) == 0 {
		return nil, &ValidationError{Field: "text", Reason: "no alphabetic characters found in text input"}
	}

	if mode == ModeSum {
		total := 0
		for _, v := range letters {
			total += v
		}
		return big.NewInt(int64(total)), nil
	}

	var sb strings.Builder
	sb.Grow(2 * len(letters))
	for _, v := range letters {
		fmt.Fprintf(&sb, "%02d", v)
	}
	n, ok := new(big.Int).SetString(sb.String(), 10)
	if !ok {
		return nil, fmt.Errorf("parse concat digits %q", sb.String())
	}
	return n, nil
}

// #endregion

// #region normalize

// letterOrdinals returns the 1-26 ordinals of the ASCII letters left after
// decomposition, mark removal and uppercasing.
func letterOrdinals(text string) ([]int, error) {
	// Transformers and casers carry state, so each call builds its own.
	stripMarks := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(stripMarks, text)
	if err != nil {
		return nil, fmt.Errorf("normalize text: %w", err)
	}
	upper := cases.Upper(language.Und).String(stripped)

	out := make([]int, 0, len(upper))
	for _, r := range upper {
		if r >= 'A' && r <= 'Z' {
			out = append(out, int(r-'A')+1)
		}
	}
	return out, nil
}

// #endregion
