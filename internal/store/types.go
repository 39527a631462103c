package store

import "time"

// #region run-status
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)
// #endregion run-status

// #region run
// Run is one sweep under one condition.
type Run struct {
	ID         string    `json:"run_id"`
	Condition  string    `json:"condition"`
	ConfigJSON string    `json:"config,omitempty"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"` // zero while running
}
// #endregion run
