package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/t13-mirror/internal/batch"
)

var (
	batchInputs      []string
	batchFile        string
	batchOutput      string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Collapse many inputs and write a CSV of index and truth",
	Long: `Each input is collapsed independently. Integers take the numeric path and
anything else the text path. An input that fails produces an "Error: ..." row
with index 0; the batch always completes.`,
	Example: `  t13 batch -i 72 13 "Echo returns" -o out.csv
  t13 batch -f seeds.txt -o -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs := batchInputs
		if len(inputs) == 0 && batchFile != "" {
			f, err := os.Open(batchFile)
			if err != nil {
				return fmt.Errorf("open inputs: %w", err)
			}
			inputs, err = batch.ReadInputs(f)
			f.Close()
			if err != nil {
				return err
			}
		}
		if len(inputs) == 0 {
			return fmt.Errorf("no inputs provided (use -i or -f)")
		}

		opts, err := collapseOptions(cmd)
		if err != nil {
			return err
		}
		limit := cfg.Batch.Concurrency
		if cmd.Flags().Changed("concurrency") {
			limit = batchConcurrency
		}
		rows := batch.Run(cmd.Context(), inputs, batch.Options{Collapse: opts, Limit: limit})

		failed := 0
		for _, r := range rows {
			if r.Err != nil {
				failed++
				logger.Warn("input failed", zap.String("input", r.Input), zap.Error(r.Err))
			}
		}

		if batchOutput == "-" {
			return batch.WriteCSV(cmd.OutOrStdout(), rows)
		}
		f, err := os.Create(batchOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		if err := batch.WriteCSV(f, rows); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}
		logger.Info("batch written",
			zap.String("path", batchOutput),
			zap.Int("rows", len(rows)),
			zap.Int("failed", failed))
		return nil
	},
}

func init() {
	batchCmd.Flags().StringSliceVarP(&batchInputs, "inputs", "i", nil, "Inputs (numbers or text)")
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "File with one input per line")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "t13_output.csv", `Output CSV file ("-" for stdout)`)
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "Parallel evaluations (0 = GOMAXPROCS)")
}
