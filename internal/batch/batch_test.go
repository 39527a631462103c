package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/t13-mirror/internal/collapse"
)

func TestRun_MixedInputs(t *testing.T) {
	rows := Run(context.Background(), []string{"72", "13", "O13", "123abc!", "-5", "!!!", "144"}, DefaultOptions())
	require.Len(t, rows, 7)

	assert.Equal(t, Row{Input: "72", Index: 4, Truth: "Patterns are laws"}, rows[0])
	assert.Equal(t, Row{Input: "13", Index: 6, Truth: "Function precedes name"}, rows[1])
	assert.Equal(t, Row{Input: "O13", Index: 2, Truth: "The center watches"}, rows[2])
	assert.NoError(t, rows[3].Err, "text with some letters is encoded")
	assert.Equal(t, collapse.SentinelTruth, rows[4].Truth)

	bad := rows[5]
	require.Error(t, bad.Err)
	var verr *collapse.ValidationError
	assert.True(t, errors.As(bad.Err, &verr))
	assert.Equal(t, 0, bad.Index)
	assert.True(t, strings.HasPrefix(bad.Truth, "Error: "))

	assert.Equal(t, "The center watches", rows[6].Truth, "later rows still run")
}

func TestRun_PreservesOrderUnderConcurrency(t *testing.T) {
	inputs := make([]string, 200)
	for i := range inputs {
		inputs[i] = fmt.Sprint(i + 1)
	}
	opts := DefaultOptions()
	opts.Limit = 8

	rows := Run(context.Background(), inputs, opts)
	require.Len(t, rows, len(inputs))
	for i, r := range rows {
		assert.Equal(t, inputs[i], r.Input)
		want, err := collapse.Auto(inputs[i], opts.Collapse)
		require.NoError(t, err)
		assert.Equal(t, want.Idx, r.Index)
	}
}

func TestRun_HeartLabels(t *testing.T) {
	opts := DefaultOptions()
	opts.Collapse.LabelSet = collapse.LabelsHeart
	rows := Run(context.Background(), []string{"72"}, opts)
	assert.Equal(t, "Joy", rows[0].Truth)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rows := Run(ctx, []string{"72", "13"}, DefaultOptions())
	for _, r := range rows {
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.True(t, strings.HasPrefix(r.Truth, "Error: "))
	}
}

func TestWriteCSV(t *testing.T) {
	rows := []Row{
		{Input: "72", Index: 4, Truth: "Patterns are laws"},
		{Input: "a, b", Index: 0, Truth: "Error: boom", Err: errors.New("boom")},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))
	assert.Equal(t, "Input,Index,Truth\n72,4,Patterns are laws\n\"a, b\",0,Error: boom\n", buf.String())
}

func TestReadInputs(t *testing.T) {
	inputs, err := ReadInputs(strings.NewReader("  72 \n\n O13\n\t\nEcho returns"))
	require.NoError(t, err)
	assert.Equal(t, []string{"72", "O13", "Echo returns"}, inputs)
}
