package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/t13-mirror/internal/collapse"
)

var (
	dimension  int
	base       int
	textMode   string
	labelSet   string
	startIndex int
	fromText   bool
	jsonOut    bool
	explain    bool
)

func addCollapseFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&dimension, "dimension", "D", 0, "Observer dimension D (default from config: 13)")
	cmd.Flags().IntVar(&base, "base", 0, "Modular base (default from config: 12)")
	cmd.Flags().StringVar(&textMode, "text-mode", "", "Text conversion mode: concat or sum")
	cmd.Flags().StringVar(&labelSet, "label-set", "", "Truth label set: universal or heart")
	cmd.Flags().IntVar(&startIndex, "start-index", 0, "Weight of the first digit in f3 (default from config: 1)")
}

// collapseOptions merges explicitly set flags over the config.
func collapseOptions(cmd *cobra.Command) (collapse.Options, error) {
	opts, err := cfg.CollapseOptions()
	if err != nil {
		return collapse.Options{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("dimension") {
		opts.Dimension = dimension
	}
	if flags.Changed("base") {
		opts.Base = base
	}
	if flags.Changed("text-mode") {
		if opts.TextMode, err = collapse.ParseTextMode(textMode); err != nil {
			return collapse.Options{}, err
		}
	}
	if flags.Changed("label-set") {
		if opts.LabelSet, err = collapse.ParseLabelSet(labelSet); err != nil {
			return collapse.Options{}, err
		}
	}
	if flags.Changed("start-index") {
		opts.StartIndex = startIndex
	}
	return opts, nil
}

var collapseCmd = &cobra.Command{
	Use:   "collapse [input]",
	Short: "Collapse one number or text to its truth label",
	Example: `  t13 collapse 72
  t13 collapse --text "Echo returns" --explain
  t13 collapse 7605 -D 3 --label-set heart --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := collapseOptions(cmd)
		if err != nil {
			return err
		}
		opts.FromText = fromText

		var tr collapse.Trace
		if fromText {
			tr, err = collapse.Collapse(args[0], opts)
		} else {
			tr, err = collapse.Auto(args[0], opts)
		}
		if err != nil {
			return err
		}
		logger.Debug("collapse",
			zap.String("input", args[0]),
			zap.Int("idx", tr.Idx),
			zap.Bool("sentinel", tr.Sentinel))

		out := cmd.OutOrStdout()
		switch {
		case jsonOut:
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(tr)
		case explain || verbose || cfg.Logging.Verbose:
			return tr.Explain(out)
		default:
			_, err := fmt.Fprintf(out, "T13 collapse: index %d -> %s\n", tr.Idx, tr.Truth)
			return err
		}
	},
}

func init() {
	collapseCmd.Flags().BoolVarP(&fromText, "text", "t", false, "Treat the input as text even if it looks numeric")
	collapseCmd.Flags().BoolVar(&jsonOut, "json", false, "Print the full trace as JSON")
	collapseCmd.Flags().BoolVar(&explain, "explain", false, "Print the step-by-step trace (also printed with --verbose)")
}
