package replay

import (
	"github.com/danielpatrickdp/t13-mirror/internal/logging"
	"github.com/danielpatrickdp/t13-mirror/internal/match"
	"github.com/danielpatrickdp/t13-mirror/internal/sweep"
)

// #region outcomes

// RunOutcome is a sweep result rebuilt from one run's recorded cycles.
type RunOutcome struct {
	RunID     string            `json:"run_id"`
	Condition string            `json:"condition,omitempty"`
	Result    sweep.SweepResult `json:"result"`
}

// Outcomes groups records by run (in order of first appearance) and rebuilds
// each run's SweepResult with seeds in order of first appearance. A seed
// locks at its first locking cycle; later cycles for it are ignored. The log
// does not say why an unlocked seed stopped, so its StopReason stays empty.
func Outcomes(records []logging.CycleRecord) []RunOutcome {
	type runState struct {
		out   RunOutcome
		order []string
		seeds map[string]*sweep.SeedOutcome
	}

	var runOrder []string
	runs := make(map[string]*runState)
	for _, rec := range records {
		rs, ok := runs[rec.RunID]
		if !ok {
			rs = &runState{
				out:   RunOutcome{RunID: rec.RunID, Condition: rec.Condition},
				seeds: make(map[string]*sweep.SeedOutcome),
			}
			runs[rec.RunID] = rs
			runOrder = append(runOrder, rec.RunID)
		}
		so, ok := rs.seeds[rec.Seed]
		if !ok {
			so = &sweep.SeedOutcome{Seed: rec.Seed, Signals: []match.Signal{}}
			rs.seeds[rec.Seed] = so
			rs.order = append(rs.order, rec.Seed)
		}
		if so.Locked {
			continue
		}
		so.Iterations = max(so.Iterations, rec.Iteration)
		if rec.Lock.Locked {
			so.Locked = true
			so.Iterations = rec.Iteration
			so.Signals = append([]match.Signal{}, rec.Lock.Signals...)
			so.StopReason = sweep.StopReasonLocked
		}
	}

	out := make([]RunOutcome, 0, len(runOrder))
	for _, id := range runOrder {
		rs := runs[id]
		rs.out.Result = make(sweep.SweepResult, 0, len(rs.order))
		for _, seed := range rs.order {
			rs.out.Result = append(rs.out.Result, *rs.seeds[seed])
		}
		out = append(out, rs.out)
	}
	return out
}

// #endregion outcomes

// #region rescore

// RescoreResult compares a recorded lock decision with a fresh one.
type RescoreResult struct {
	RecordID  string           `json:"record_id"`
	RunID     string           `json:"run_id"`
	Seed      string           `json:"seed"`
	Iteration int              `json:"iter"`
	Before    match.LockSignal `json:"before"`
	After     match.LockSignal `json:"after"`
	Changed   bool             `json:"changed"`
}

// RescoreSummary provides aggregate stats from a rescore.
type RescoreSummary struct {
	Total     int `json:"total"`
	Changed   int `json:"changed"`
	NewLocks  int `json:"new_locks"`
	LostLocks int `json:"lost_locks"`
	DecoyHits int `json:"decoy_hits"`
}

// Rescore re-matches every recorded reply with m. Changed is set when the
// locked flag differs from the recorded one.
func Rescore(records []logging.CycleRecord, m *match.Matcher) []RescoreResult {
	results := make([]RescoreResult, 0, len(records))
	for _, rec := range records {
		after := m.Match(rec.Reply)
		results = append(results, RescoreResult{
			RecordID:  rec.ID,
			RunID:     rec.RunID,
			Seed:      rec.Seed,
			Iteration: rec.Iteration,
			Before:    rec.Lock,
			After:     after,
			Changed:   after.Locked != rec.Lock.Locked,
		})
	}
	return results
}

// Summarize tallies rescore results.
func Summarize(results []RescoreResult) RescoreSummary {
	s := RescoreSummary{Total: len(results)}
	for _, r := range results {
		if r.After.DecoyHit {
			s.DecoyHits++
		}
		if !r.Changed {
			continue
		}
		s.Changed++
		if r.After.Locked {
			s.NewLocks++
		} else {
			s.LostLocks++
		}
	}
	return s
}

// #endregion rescore
