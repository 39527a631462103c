package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/t13-mirror/internal/collapse"
	"github.com/danielpatrickdp/t13-mirror/internal/logging"
	"github.com/danielpatrickdp/t13-mirror/internal/match"
	"github.com/danielpatrickdp/t13-mirror/internal/sweep"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func record(t *testing.T, runID, id, seed string, iter int, reply string) logging.CycleRecord {
	t.Helper()
	tr, err := collapse.Auto(seed, collapse.DefaultOptions())
	if err != nil {
		t.Fatalf("collapse: %v", err)
	}
	return logging.CycleRecord{
		ID:        id,
		RunID:     runID,
		Timestamp: time.Date(2026, 4, 1, 10, 0, iter, 0, time.UTC),
		Iteration: iter,
		Seed:      seed,
		Condition: sweep.ConditionBlind,
		Trace:     tr,
		Aux:       logging.Aux{NumericSeed: sweep.NumericSeed(seed), Bloom: sweep.Bloom(sweep.NumericSeed(seed))},
		Reply:     reply,
		Lock:      match.Match(reply, match.DefaultPhraseSets()),
	}
}

func TestCreateAndGetRun(t *testing.T) {
	s := tempDB(t)

	run, err := s.CreateRun("run-1", sweep.ConditionBlind, map[string]int{"max_iterations": 24})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if run.Status != StatusRunning {
		t.Fatalf("expected running, got %s", run.Status)
	}

	got, err := s.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Condition != sweep.ConditionBlind || got.ConfigJSON != `{"max_iterations":24}` {
		t.Fatalf("unexpected run: %+v", got)
	}
	if !got.FinishedAt.IsZero() {
		t.Fatal("expected zero FinishedAt while running")
	}

	if err := s.FinishRun("run-1", StatusCompleted); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	got, _ = s.GetRun("run-1")
	if got.Status != StatusCompleted || got.FinishedAt.IsZero() {
		t.Fatalf("expected completed with finish time, got %+v", got)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	s := tempDB(t)
	if _, err := s.GetRun("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.FinishRun("missing", StatusFailed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRun_Duplicate(t *testing.T) {
	s := tempDB(t)
	if _, err := s.CreateRun("dup", "blind", nil); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if _, err := s.CreateRun("dup", "blind", nil); err == nil {
		t.Fatal("expected error for duplicate run id")
	}
}

func TestAppendAndCycles(t *testing.T) {
	s := tempDB(t)
	if _, err := s.CreateRun("run-1", sweep.ConditionBlind, nil); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	var sink logging.Sink = s
	recs := []logging.CycleRecord{
		record(t, "run-1", "c1", "O13", 1, "hello"),
		record(t, "run-1", "c2", "O13", 2, "Truth is the echo, the spiral remembers. i will remember"),
		record(t, "run-1", "c3", "7605", 1, "Truth is the echo, the spiral remembers."),
	}
	for _, rec := range recs {
		if err := sink.Append(rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	n, err := s.CycleCount("run-1")
	if err != nil {
		t.Fatalf("CycleCount: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 cycles, got %d", n)
	}

	got, err := s.Cycles("run-1")
	if err != nil {
		t.Fatalf("Cycles: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i, rec := range got {
		if rec.ID != recs[i].ID {
			t.Errorf("record %d: expected id %s, got %s", i, recs[i].ID, rec.ID)
		}
	}
	if got[2].Trace.N.Int64() != 7605 {
		t.Errorf("expected numeric seed path for 7605, got n=%s", got[2].Trace.N)
	}
	if got[0].Trace.Truth != "The center watches" {
		t.Errorf("unexpected truth %q", got[0].Trace.Truth)
	}
}

func TestAppend_RegistersUnknownRun(t *testing.T) {
	s := tempDB(t)
	if err := s.Append(record(t, "run-x", "c1", "Center", 1, "x")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	run, err := s.GetRun("run-x")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Condition != sweep.ConditionBlind || run.Status != StatusRunning {
		t.Fatalf("unexpected run: %+v", run)
	}
}

func TestAppend_DuplicateID(t *testing.T) {
	s := tempDB(t)
	rec := record(t, "run-1", "c1", "O13", 1, "x")
	if err := s.Append(rec); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(rec); err == nil {
		t.Fatal("expected error for duplicate record id")
	}
	if n, _ := s.CycleCount("run-1"); n != 1 {
		t.Fatalf("expected 1 cycle after rejected duplicate, got %d", n)
	}
}

func TestSaveAndLoadOutcomes(t *testing.T) {
	s := tempDB(t)
	if _, err := s.CreateRun("run-1", sweep.ConditionCalibration, nil); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	res := sweep.SweepResult{
		{Seed: "Witness", Iterations: 24, Signals: []match.Signal{}, StopReason: sweep.StopReasonMaxIterations},
		{Seed: "O13", Locked: true, Iterations: 3, Signals: []match.Signal{match.SignalPrimaryExact, match.SignalSecondaryCue}, StopReason: sweep.StopReasonLocked},
		{Seed: "Center", Signals: []match.Signal{}, StopReason: sweep.StopReasonCancelled},
	}
	if err := s.SaveOutcomes("run-1", res); err != nil {
		t.Fatalf("SaveOutcomes: %v", err)
	}
	if err := s.SaveOutcomes("run-1", res); err != nil {
		t.Fatalf("SaveOutcomes again: %v", err)
	}

	got, err := s.LoadOutcomes("run-1")
	if err != nil {
		t.Fatalf("LoadOutcomes: %v", err)
	}
	if len(got) != len(res) {
		t.Fatalf("expected %d outcomes, got %d", len(res), len(got))
	}
	for i := range res {
		if got[i].Seed != res[i].Seed || got[i].Locked != res[i].Locked ||
			got[i].Iterations != res[i].Iterations || got[i].StopReason != res[i].StopReason ||
			len(got[i].Signals) != len(res[i].Signals) {
			t.Errorf("outcome %d: expected %+v, got %+v", i, res[i], got[i])
		}
	}
	if got[0].Signals == nil {
		t.Error("expected non-nil empty signals")
	}
}

func TestLoadOutcomes_Unknown(t *testing.T) {
	s := tempDB(t)
	got, err := s.LoadOutcomes("nope")
	if err != nil {
		t.Fatalf("LoadOutcomes: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}

func TestListRuns(t *testing.T) {
	s := tempDB(t)
	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.CreateRun(id, "blind", nil); err != nil {
			t.Fatalf("CreateRun %s: %v", id, err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("expected newest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
}
