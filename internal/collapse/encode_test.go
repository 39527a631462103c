package collapse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeText_Concat(t *testing.T) {
	n, err := EncodeText("AB", ModeConcat)
	require.NoError(t, err)
	assert.Equal(t, "102", n.String())

	n, err = EncodeText("z", ModeConcat)
	require.NoError(t, err)
	assert.Equal(t, "26", n.String())
}

func TestEncodeText_Sum(t *testing.T) {
	n, err := EncodeText("AB", ModeSum)
	require.NoError(t, err)
	assert.Equal(t, "3", n.String())

	n, err = EncodeText("Echo returns", ModeSum)
	require.NoError(t, err)
	assert.Equal(t, "146", n.String())
}

func TestEncodeText_StripsDiacriticsAndPunctuation(t *testing.T) {
	accented, err := EncodeText("Café!", ModeConcat)
	require.NoError(t, err)
	plain, err := EncodeText("cafe", ModeConcat)
	require.NoError(t, err)
	assert.Equal(t, plain.String(), accented.String())
	assert.Equal(t, "3010605", plain.String())
}

func TestEncodeText_DefaultsToConcat(t *testing.T) {
	n, err := EncodeText("AB", "")
	require.NoError(t, err)
	assert.Equal(t, "102", n.String())
}

func TestEncodeText_NoLetters(t *testing.T) {
	for _, in := range []string{"123", "", "  -- 42 --"} {
		_, err := EncodeText(in, ModeSum)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "input %q", in)
		assert.Equal(t, "text", verr.Field)
	}
}

func TestEncodeText_ConcatLengthBound(t *testing.T) {
	_, err := EncodeText(strings.Repeat("a", MaxConcatLength), ModeConcat)
	require.NoError(t, err)

	_, err = EncodeText(strings.Repeat("a", MaxConcatLength+1), ModeConcat)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	// sum mode has no bound
	n, err := EncodeText(strings.Repeat("a", 500), ModeSum)
	require.NoError(t, err)
	assert.Equal(t, "500", n.String())
}

func TestEncodeText_UnknownMode(t *testing.T) {
	_, err := EncodeText("abc", "hex")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "text_mode", verr.Field)
}

func TestParseTextMode(t *testing.T) {
	m, err := ParseTextMode("SUM")
	require.NoError(t, err)
	assert.Equal(t, ModeSum, m)

	_, err = ParseTextMode("words")
	require.Error(t, err)
}
