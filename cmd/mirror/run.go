package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/t13-mirror/internal/logging"
	"github.com/danielpatrickdp/t13-mirror/internal/oracle"
	"github.com/danielpatrickdp/t13-mirror/internal/report"
	"github.com/danielpatrickdp/t13-mirror/internal/store"
	"github.com/danielpatrickdp/t13-mirror/internal/sweep"
)

const conditionBoth = "both"

var (
	condition     string
	seeds         []string
	maxIterations int
	maxMinutes    float64
	delaySeconds  float64
	noStore       bool
)

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&condition, "condition", conditionBoth, "Condition to run: blind, calibration or both")
	cmd.Flags().StringSliceVar(&seeds, "seeds", nil, "Seeds to sweep (default from config)")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Cycle cap per seed")
	cmd.Flags().Float64Var(&maxMinutes, "max-minutes", 0, "Time budget per seed in minutes")
	cmd.Flags().Float64Var(&delaySeconds, "delay", 0, "Seconds between cycles")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Skip the SQLite store and write only the JSONL logs")
}

// applyRunFlags copies explicitly set flags into the loaded config.
func applyRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("seeds") {
		cfg.Sweep.Seeds = seeds
	}
	if flags.Changed("max-iterations") {
		cfg.Sweep.MaxIterations = maxIterations
	}
	if flags.Changed("max-minutes") {
		cfg.Sweep.MaxMinutes = maxMinutes
	}
	if flags.Changed("delay") {
		cfg.Sweep.DelaySeconds = delaySeconds
	}
}

func conditions(name string) ([]string, error) {
	switch strings.ToLower(name) {
	case conditionBoth:
		return []string{sweep.ConditionBlind, sweep.ConditionCalibration}, nil
	case sweep.ConditionBlind, sweep.ConditionCalibration:
		return []string{strings.ToLower(name)}, nil
	}
	return nil, fmt.Errorf("unknown condition %q", name)
}

func runSweeps(cmd *cobra.Command, args []string) error {
	applyRunFlags(cmd)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	conds, err := conditions(condition)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := oracle.New(ctx, cfg.OracleConfig(), logger)
	if err != nil {
		return fmt.Errorf("create oracle: %w", err)
	}
	defer client.Close()

	var st *store.Store
	if !noStore {
		st, err = store.NewStore(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	out := cmd.OutOrStdout()
	results := make(map[string]sweep.SweepResult, len(conds))
	var runErr error
	for i, cond := range conds {
		if i > 0 {
			fmt.Fprintf(out, "\n===== %s SWEEP COMPLETE - Brief pause before %s =====\n", strings.ToUpper(conds[i-1]), cond)
			if !wait(ctx, cfg.Pause()) {
				logger.Info("interrupted during pause")
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "===== STARTING %s SWEEP =====\n", strings.ToUpper(cond))
		res, err := runCondition(ctx, client, st, cond)
		results[cond] = res
		if err != nil {
			runErr = err
			break
		}
	}

	for _, cond := range conds {
		res, ok := results[cond]
		if !ok {
			continue
		}
		if err := report.PrintSummary(out, strings.ToUpper(cond)+" SUMMARY", res); err != nil {
			return err
		}
	}
	if runErr == nil && len(conds) == 2 {
		comps := report.Compare(results[sweep.ConditionBlind], results[sweep.ConditionCalibration], cfg.Sweep.Seeds)
		if err := report.PrintComparison(out, comps, report.DefaultLabels()); err != nil {
			return err
		}
	}
	return runErr
}

// runCondition sweeps every configured seed under one condition, writing
// cycles to the condition's JSONL log and, when enabled, the store.
func runCondition(ctx context.Context, o oracle.Oracle, st *store.Store, cond string) (sweep.SweepResult, error) {
	scfg, err := cfg.SweepConfig(cond)
	if err != nil {
		return nil, err
	}

	clog, err := logging.OpenCycleLog(cfg.LogPath(cond))
	if err != nil {
		return nil, err
	}
	defer clog.Close()

	sinks := logging.MultiSink{clog}
	if st != nil {
		sinks = append(sinks, st)
	}
	ctrl, err := sweep.NewController(o, scfg,
		sweep.WithSink(sinks),
		sweep.WithLogger(logger.With(zap.String("condition", cond))),
	)
	if err != nil {
		return nil, err
	}

	if st != nil {
		if _, err := st.CreateRun(ctrl.RunID(), cond, scfg); err != nil {
			return nil, err
		}
	}
	logger.Info("sweep started",
		zap.String("run_id", ctrl.RunID()),
		zap.String("condition", cond),
		zap.Strings("seeds", cfg.Sweep.Seeds),
		zap.String("log", clog.Path()))

	res, runErr := ctrl.RunSweep(ctx, cfg.Sweep.Seeds)

	status := store.StatusCompleted
	switch {
	case runErr != nil:
		status = store.StatusFailed
	case ctrl.Cancelled():
		status = store.StatusCancelled
	}
	if st != nil {
		if err := st.SaveOutcomes(ctrl.RunID(), res); err != nil {
			runErr = errors.Join(runErr, err)
		}
		if err := st.FinishRun(ctrl.RunID(), status); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}
	logger.Info("sweep finished",
		zap.String("run_id", ctrl.RunID()),
		zap.String("status", status),
		zap.Int("cycles", ctrl.Iterations()))

	return res, runErr
}

// wait sleeps for d and reports false if ctx ended first.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
