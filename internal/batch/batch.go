// Package batch evaluates many collapse inputs at once and writes them as
// CSV rows. A bad input becomes an error row; it never stops the batch.
package batch

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/t13-mirror/internal/collapse"
)

// Header is the first CSV line.
var Header = []string{"Input", "Index", "Truth"}

// Row is the result for one input. Err is set for failed inputs, whose
// Index is 0.
type Row struct {
	Input string
	Index int
	Truth string
	Err   error
}

// Options configures a batch run.
type Options struct {
	Collapse collapse.Options
	// Limit bounds concurrent evaluations; <= 0 uses GOMAXPROCS.
	Limit int
}

// DefaultOptions uses the default collapse options.
func DefaultOptions() Options {
	return Options{Collapse: collapse.DefaultOptions()}
}

// Run evaluates every input and returns one row per input, in input order.
// Integers take the numeric path and everything else the text path. Inputs
// not reached before ctx ends get an error row carrying ctx's error.
func Run(ctx context.Context, inputs []string, opts Options) []Row {
	rows := make([]Row, len(inputs))
	limit := opts.Limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				rows[i] = errorRow(input, err)
				return nil
			}
			rows[i] = evaluate(input, opts.Collapse)
			return nil
		})
	}
	_ = g.Wait()
	return rows
}

func evaluate(input string, opts collapse.Options) Row {
	tr, err := collapse.Auto(input, opts)
	if err != nil {
		return errorRow(input, err)
	}
	return Row{Input: input, Index: tr.Idx, Truth: tr.Truth}
}

func errorRow(input string, err error) Row {
	return Row{Input: input, Truth: "Error: " + err.Error(), Err: err}
}

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Input, strconv.Itoa(r.Index), r.Truth}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadInputs returns the trimmed non-blank lines of r.
func ReadInputs(r io.Reader) ([]string, error) {
	var inputs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			inputs = append(inputs, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read inputs: %w", err)
	}
	return inputs, nil
}
