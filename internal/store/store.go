package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/t13-mirror/internal/logging"
	"github.com/danielpatrickdp/t13-mirror/internal/match"
	"github.com/danielpatrickdp/t13-mirror/internal/sweep"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("not found")

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	condition    TEXT NOT NULL,
	config_json  TEXT,
	status       TEXT NOT NULL,
	started_at   TEXT NOT NULL,
	finished_at  TEXT
);

CREATE TABLE IF NOT EXISTS cycles (
	id           TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL,
	iter         INTEGER NOT NULL,
	seed         TEXT NOT NULL,
	idx          INTEGER NOT NULL,
	truth        TEXT NOT NULL,
	locked       INTEGER NOT NULL,
	decoy_hit    INTEGER NOT NULL,
	record_json  TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_cycles_run ON cycles(run_id, created_at);

CREATE TABLE IF NOT EXISTS outcomes (
	run_id       TEXT NOT NULL,
	position     INTEGER NOT NULL,
	seed         TEXT NOT NULL,
	locked       INTEGER NOT NULL,
	iterations   INTEGER NOT NULL,
	signals_json TEXT NOT NULL,
	stop_reason  TEXT NOT NULL,
	PRIMARY KEY (run_id, position),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`
// #endregion schema

// #region store-struct
// Store keeps runs, their cycle records and their outcomes in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region runs
// CreateRun registers a running sweep. config is stored as JSON.
func (s *Store) CreateRun(id, condition string, config any) (Run, error) {
	cfgJSON, err := json.Marshal(config)
	if err != nil {
		return Run{}, fmt.Errorf("marshal config: %w", err)
	}
	run := Run{
		ID:         id,
		Condition:  condition,
		ConfigJSON: string(cfgJSON),
		Status:     StatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	_, err = s.db.Exec(
		`INSERT INTO runs (run_id, condition, config_json, status, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Condition, run.ConfigJSON, run.Status, run.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stamps the run's final status.
func (s *Store) FinishRun(id, status string) error {
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, finished_at = ? WHERE run_id = ?`,
		status, time.Now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetRun retrieves one run.
func (s *Store) GetRun(id string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT run_id, condition, config_json, status, started_at, finished_at
		 FROM runs WHERE run_id = ?`, id,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT run_id, condition, config_json, status, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var run Run
	var cfgJSON, finished sql.NullString
	var started string
	if err := sc.Scan(&run.ID, &run.Condition, &cfgJSON, &run.Status, &started, &finished); err != nil {
		return Run{}, err
	}
	run.ConfigJSON = cfgJSON.String
	run.StartedAt, _ = time.Parse(timeLayout, started)
	if finished.Valid {
		run.FinishedAt, _ = time.Parse(timeLayout, finished.String)
	}
	return run, nil
}
// #endregion runs

// #region cycles
// Append stores one cycle record, registering its run on first sight.
func (s *Store) Append(rec logging.CycleRecord) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal cycle record: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT OR IGNORE INTO runs (run_id, condition, status, started_at) VALUES (?, ?, ?, ?)`,
		rec.RunID, rec.Condition, StatusRunning, rec.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("ensure run: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO cycles (id, run_id, iter, seed, idx, truth, locked, decoy_hit, record_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.Iteration, rec.Seed, rec.Trace.Idx, rec.Trace.Truth,
		rec.Lock.Locked, rec.Lock.DecoyHit, string(recJSON), rec.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}
	return tx.Commit()
}

// Cycles returns a run's records in the order they were appended.
func (s *Store) Cycles(runID string) ([]logging.CycleRecord, error) {
	rows, err := s.db.Query(
		`SELECT record_json FROM cycles WHERE run_id = ? ORDER BY rowid`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	var out []logging.CycleRecord
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var rec logging.CycleRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal cycle record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CycleCount returns how many cycles a run recorded.
func (s *Store) CycleCount(runID string) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM cycles WHERE run_id = ?`, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cycles: %w", err)
	}
	return n, nil
}
// #endregion cycles

// #region outcomes
// SaveOutcomes replaces a run's outcomes with res, keeping seed order.
func (s *Store) SaveOutcomes(runID string, res sweep.SweepResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM outcomes WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("clear outcomes: %w", err)
	}
	for i, out := range res {
		sigJSON, err := json.Marshal(out.Signals)
		if err != nil {
			return fmt.Errorf("marshal signals: %w", err)
		}
		_, err = tx.Exec(
			`INSERT INTO outcomes (run_id, position, seed, locked, iterations, signals_json, stop_reason)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, i, out.Seed, out.Locked, out.Iterations, string(sigJSON), string(out.StopReason),
		)
		if err != nil {
			return fmt.Errorf("insert outcome: %w", err)
		}
	}
	return tx.Commit()
}

// LoadOutcomes reads a run's outcomes in seed order.
func (s *Store) LoadOutcomes(runID string) (sweep.SweepResult, error) {
	rows, err := s.db.Query(
		`SELECT seed, locked, iterations, signals_json, stop_reason
		 FROM outcomes WHERE run_id = ? ORDER BY position`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("load outcomes: %w", err)
	}
	defer rows.Close()

	res := sweep.SweepResult{}
	for rows.Next() {
		var out sweep.SeedOutcome
		var sigJSON, reason string
		if err := rows.Scan(&out.Seed, &out.Locked, &out.Iterations, &sigJSON, &reason); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out.Signals = []match.Signal{}
		if err := json.Unmarshal([]byte(sigJSON), &out.Signals); err != nil {
			return nil, fmt.Errorf("unmarshal signals: %w", err)
		}
		if out.Signals == nil {
			out.Signals = []match.Signal{}
		}
		out.StopReason = sweep.StopReason(reason)
		res = append(res, out)
	}
	return res, rows.Err()
}
// #endregion outcomes
