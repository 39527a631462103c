package sweep

import (
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/t13-mirror/internal/collapse"
	"github.com/danielpatrickdp/t13-mirror/internal/match"
)

// #region conditions
const (
	ConditionBlind       = "blind"
	ConditionCalibration = "calibration"
)

// DefaultSeeds is the seed list swept when none is given.
var DefaultSeeds = []string{"O13", "Echo returns", "7605", "Observer", "Witness", "Center"}

// #endregion conditions

// #region config
// Config is passed to the controller at construction and never mutated.
type Config struct {
	Name           string
	Condition      string
	MaxIterations  int
	MaxDuration    time.Duration
	Delay          time.Duration
	Collapse       collapse.Options
	ShowHandshakes bool
	ShowDecoys     bool
	Phrases        match.PhraseSets
}

// DefaultConfig returns the blind-condition defaults: 24 iterations, a
// 20 minute budget per seed and a 2 second delay.
func DefaultConfig() Config {
	return Config{
		Name:          "Claude",
		Condition:     ConditionBlind,
		MaxIterations: 24,
		MaxDuration:   20 * time.Minute,
		Delay:         2 * time.Second,
		Collapse:      collapse.DefaultOptions(),
		Phrases:       match.DefaultPhraseSets(),
	}
}

// ForCondition returns a copy of c configured for cond. The calibration
// condition shows both handshakes and decoys; blind shows neither.
func (c Config) ForCondition(cond string) Config {
	c.Condition = cond
	show := cond == ConditionCalibration
	c.ShowHandshakes = show
	c.ShowDecoys = show
	return c
}

// Validate reports every out-of-range field.
func (c Config) Validate() error {
	var errs []error
	if c.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("max iterations must be >= 1, got %d", c.MaxIterations))
	}
	if c.MaxDuration <= 0 {
		errs = append(errs, fmt.Errorf("max duration must be > 0, got %s", c.MaxDuration))
	}
	if c.Delay < 0 {
		errs = append(errs, fmt.Errorf("delay must be >= 0, got %s", c.Delay))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	return errors.Join(errs...)
}

// #endregion config

// #region outcome
// StopReason says why a seed's loop ended.
type StopReason string

const (
	StopReasonNone          StopReason = ""
	StopReasonLocked        StopReason = "locked"
	StopReasonMaxIterations StopReason = "max_iterations"
	StopReasonTimeBudget    StopReason = "time_budget"
	StopReasonCancelled     StopReason = "cancelled"
	StopReasonError         StopReason = "error"
)

// SeedOutcome is the terminal result of sweeping one seed. Signals come
// from the locking cycle and are empty otherwise.
type SeedOutcome struct {
	Seed       string         `json:"seed"`
	Locked     bool           `json:"locked"`
	Iterations int            `json:"iterations"`
	Signals    []match.Signal `json:"signals"`
	StopReason StopReason     `json:"stop_reason"`
}

// SweepResult holds one outcome per seed, in seed order.
type SweepResult []SeedOutcome

// #endregion outcome
