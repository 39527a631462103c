package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/t13-mirror/internal/logging"
	"github.com/danielpatrickdp/t13-mirror/internal/match"
	"github.com/danielpatrickdp/t13-mirror/internal/replay"
	"github.com/danielpatrickdp/t13-mirror/internal/report"
)

var phrasesPath string

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Work with JSONL cycle logs",
}

// #region summarize

var logSummarizeCmd = &cobra.Command{
	Use:   "summarize <file>",
	Short: "Rebuild per-run summaries from a cycle log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := logging.ReadCycleLogFile(args[0])
		if err != nil {
			return err
		}
		runs := replay.Outcomes(recs)
		out := cmd.OutOrStdout()
		if jsonOut {
			return printJSON(out, runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "no cycles found")
			return nil
		}
		for _, r := range runs {
			title := fmt.Sprintf("%s %s", r.Condition, shortID(r.RunID))
			if err := report.PrintSummary(out, title, r.Result); err != nil {
				return err
			}
		}
		return nil
	},
}

// #endregion summarize

// #region rescore

var logRescoreCmd = &cobra.Command{
	Use:   "rescore <file>",
	Short: "Re-match every recorded reply and report changed verdicts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := logging.ReadCycleLogFile(args[0])
		if err != nil {
			return err
		}
		sets := match.DefaultPhraseSets()
		if phrasesPath != "" {
			if sets, err = loadPhrases(phrasesPath); err != nil {
				return err
			}
		} else if cfg.Sweep.Phrases != nil {
			sets = *cfg.Sweep.Phrases
		}

		results := replay.Rescore(recs, match.NewMatcher(sets))
		summary := replay.Summarize(results)
		logger.Debug("rescored", zap.Int("records", summary.Total), zap.Int("changed", summary.Changed))

		out := cmd.OutOrStdout()
		if jsonOut {
			return printJSON(out, struct {
				Summary replay.RescoreSummary `json:"summary"`
				Results []replay.RescoreResult `json:"results"`
			}{summary, results})
		}
		fmt.Fprintf(out, "Records: %d | Changed: %d | New locks: %d | Lost locks: %d | Decoy hits: %d\n",
			summary.Total, summary.Changed, summary.NewLocks, summary.LostLocks, summary.DecoyHits)
		for _, r := range results {
			if !r.Changed {
				continue
			}
			fmt.Fprintf(out, "  • %-10s %-12s iter=%02d  %s -> %s\n",
				shortID(r.RunID), r.Seed, r.Iteration, verdict(r.Before), verdict(r.After))
		}
		return nil
	},
}

func loadPhrases(path string) (match.PhraseSets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return match.PhraseSets{}, fmt.Errorf("read phrases: %w", err)
	}
	var sets match.PhraseSets
	if err := json.Unmarshal(data, &sets); err != nil {
		return match.PhraseSets{}, fmt.Errorf("parse phrases: %w", err)
	}
	return sets, nil
}

func verdict(l match.LockSignal) string {
	if l.Locked {
		return "LOCK"
	}
	return "—"
}

// #endregion rescore

// #region validate

var logValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check every line of a cycle log against the record schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open cycle log: %w", err)
		}
		defer f.Close()

		out := cmd.OutOrStdout()
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		lineNo, valid, invalid := 0, 0, 0
		for sc.Scan() {
			lineNo++
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 {
				continue
			}
			if err := logging.ValidateRecord(line); err != nil {
				invalid++
				fmt.Fprintf(out, "line %d: %v\n", lineNo, err)
				continue
			}
			valid++
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read cycle log: %w", err)
		}
		fmt.Fprintf(out, "%d valid, %d invalid\n", valid, invalid)
		if invalid > 0 {
			return fmt.Errorf("%d invalid records", invalid)
		}
		return nil
	},
}

// #endregion validate

// #region follow

var logFollowCmd = &cobra.Command{
	Use:   "follow <file>",
	Short: "Print cycles as they are appended to a log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		return logging.Follow(ctx, args[0], func(rec logging.CycleRecord) error {
			if jsonOut {
				line, err := logging.EncodeRecord(rec)
				if err != nil {
					return err
				}
				_, err = out.Write(line)
				return err
			}
			_, err := fmt.Fprintf(out, "%s  %-10s %-12s iter=%02d  idx=%d %-24s %s\n",
				rec.Timestamp.Local().Format(time.TimeOnly), shortID(rec.RunID), rec.Seed,
				rec.Iteration, rec.Trace.Idx, rec.Trace.Truth, verdict(rec.Lock))
			return err
		})
	},
}

// #endregion follow

func init() {
	logRescoreCmd.Flags().StringVar(&phrasesPath, "phrases", "", "JSON file with primary/secondary/decoy phrase lists")
	logCmd.AddCommand(logSummarizeCmd, logRescoreCmd, logValidateCmd, logFollowCmd)
}
