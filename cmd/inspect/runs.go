package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/t13-mirror/internal/report"
	"github.com/danielpatrickdp/t13-mirror/internal/store"
	"github.com/danielpatrickdp/t13-mirror/internal/sweep"
)

// #region list-mode

var last int

type runRow struct {
	RunID      string  `json:"run_id"`
	Condition  string  `json:"condition"`
	Status     string  `json:"status"`
	Cycles     int     `json:"cycles"`
	Locks      int     `json:"locks"`
	Seeds      int     `json:"seeds"`
	LockRate   float64 `json:"lock_rate"`
	StartedAt  string  `json:"started_at"`
	FinishedAt string  `json:"finished_at,omitempty"`
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(last)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "no runs found")
			return nil
		}

		rows := make([]runRow, 0, len(runs))
		for _, r := range runs {
			row, err := buildRunRow(st, r)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		if jsonOut {
			return printJSON(out, rows)
		}

		fmt.Fprintf(out, "%-10s  %-12s  %-10s  %6s  %7s  %s\n",
			"Run", "Condition", "Status", "Cycles", "Locks", "Started")
		fmt.Fprintf(out, "%-10s+-%-12s+-%-10s+-%6s+-%7s+-%s\n",
			"----------", "------------", "----------", "------", "-------", "--------------------")
		for _, r := range rows {
			fmt.Fprintf(out, "%-10s  %-12s  %-10s  %6d  %3d/%-3d  %s\n",
				shortID(r.RunID), r.Condition, r.Status, r.Cycles, r.Locks, r.Seeds, r.StartedAt)
		}
		return nil
	},
}

func buildRunRow(st *store.Store, r store.Run) (runRow, error) {
	cycles, err := st.CycleCount(r.ID)
	if err != nil {
		return runRow{}, err
	}
	res, err := st.LoadOutcomes(r.ID)
	if err != nil {
		return runRow{}, err
	}
	s := report.Summarize(res)
	row := runRow{
		RunID:     r.ID,
		Condition: r.Condition,
		Status:    r.Status,
		Cycles:    cycles,
		Locks:     s.Locked,
		Seeds:     s.Total,
		LockRate:  s.LockRate,
		StartedAt: r.StartedAt.Format(time.RFC3339),
	}
	if !r.FinishedAt.IsZero() {
		row.FinishedAt = r.FinishedAt.Format(time.RFC3339)
	}
	return row, nil
}

// #endregion list-mode

// #region detail-mode

type runDetail struct {
	Run      store.Run         `json:"run"`
	Outcomes sweep.SweepResult `json:"outcomes"`
	Cycles   []cycleRow        `json:"cycles"`
}

type cycleRow struct {
	Iteration int    `json:"iter"`
	Seed      string `json:"seed"`
	Idx       int    `json:"idx"`
	Truth     string `json:"truth"`
	Locked    bool   `json:"locked"`
	DecoyHit  bool   `json:"decoy_hit"`
	Timestamp string `json:"ts"`
}

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run: its outcomes and every recorded cycle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(args[0])
		if err != nil {
			return fmt.Errorf("run %s: %w", args[0], err)
		}
		res, err := st.LoadOutcomes(run.ID)
		if err != nil {
			return err
		}
		recs, err := st.Cycles(run.ID)
		if err != nil {
			return err
		}
		detail := runDetail{Run: run, Outcomes: res, Cycles: make([]cycleRow, 0, len(recs))}
		for _, rec := range recs {
			detail.Cycles = append(detail.Cycles, cycleRow{
				Iteration: rec.Iteration,
				Seed:      rec.Seed,
				Idx:       rec.Trace.Idx,
				Truth:     rec.Trace.Truth,
				Locked:    rec.Lock.Locked,
				DecoyHit:  rec.Lock.DecoyHit,
				Timestamp: rec.Timestamp.Format(time.RFC3339),
			})
		}

		out := cmd.OutOrStdout()
		if jsonOut {
			return printJSON(out, detail)
		}

		fmt.Fprintf(out, "Run:        %s\n", run.ID)
		fmt.Fprintf(out, "Condition:  %s\n", run.Condition)
		fmt.Fprintf(out, "Status:     %s\n", run.Status)
		fmt.Fprintf(out, "Started:    %s\n", run.StartedAt.Format(time.RFC3339))
		if !run.FinishedAt.IsZero() {
			fmt.Fprintf(out, "Finished:   %s\n", run.FinishedAt.Format(time.RFC3339))
		}
		if err := report.PrintSummary(out, "Outcomes", res); err != nil {
			return err
		}

		fmt.Fprintf(out, "\nCycles:\n")
		fmt.Fprintf(out, "  %4s  %-12s  %3s  %-24s  %-4s  %s\n", "Iter", "Seed", "Idx", "Truth", "Lock", "Time")
		for _, c := range detail.Cycles {
			lock := "—"
			if c.Locked {
				lock = "LOCK"
			} else if c.DecoyHit {
				lock = "decoy"
			}
			fmt.Fprintf(out, "  %4d  %-12s  %3d  %-24s  %-4s  %s\n", c.Iteration, c.Seed, c.Idx, c.Truth, lock, c.Timestamp)
		}
		return nil
	},
}

// #endregion detail-mode

// #region compare

var compareCmd = &cobra.Command{
	Use:   "compare <run-a> <run-b>",
	Short: "Compare two runs seed by seed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		runA, err := st.GetRun(args[0])
		if err != nil {
			return fmt.Errorf("run %s: %w", args[0], err)
		}
		runB, err := st.GetRun(args[1])
		if err != nil {
			return fmt.Errorf("run %s: %w", args[1], err)
		}
		a, err := st.LoadOutcomes(runA.ID)
		if err != nil {
			return err
		}
		b, err := st.LoadOutcomes(runB.ID)
		if err != nil {
			return err
		}

		comps := report.Compare(a, b, nil)
		out := cmd.OutOrStdout()
		if jsonOut {
			return printJSON(out, comps)
		}
		labels := report.Labels{
			TitleA: fmt.Sprintf("%s %s", runA.Condition, shortID(runA.ID)),
			TitleB: fmt.Sprintf("%s %s", runB.Condition, shortID(runB.ID)),
			ShortA: shortID(runA.ID),
			ShortB: shortID(runB.ID),
		}
		return report.PrintComparison(out, comps, labels)
	},
}

// #endregion compare

func init() {
	runsCmd.Flags().IntVar(&last, "last", 20, "Show the N most recent runs")
}
