package logging

import (
	"time"

	"github.com/danielpatrickdp/t13-mirror/internal/collapse"
	"github.com/danielpatrickdp/t13-mirror/internal/match"
)

// #region cycle-record
// CycleRecord is one sweep iteration as persisted: written once, never
// mutated. Serialized as a single JSON line in the cycle log.
type CycleRecord struct {
	ID             string           `json:"id"`
	RunID          string           `json:"run_id"`
	Timestamp      time.Time        `json:"ts"`
	Iteration      int              `json:"iter"`
	Seed           string           `json:"seed"`
	Condition      string           `json:"condition,omitempty"`
	ShowHandshakes bool             `json:"show_handshakes"`
	ShowDecoys     bool             `json:"show_decoys"`
	Trace          collapse.Trace   `json:"t13"`
	Aux            Aux              `json:"m13"`
	Reply          string           `json:"model_reply"`
	Lock           match.LockSignal `json:"lock"`
}

// Aux is the numeric-only derivation shown beside the collapse trace.
type Aux struct {
	NumericSeed int64   `json:"numeric_seed"`
	Bloom       float64 `json:"bloom"`
}
// #endregion cycle-record

// #region sink
// Sink receives cycle records in the order they happen.
type Sink interface {
	Append(rec CycleRecord) error
}

// MultiSink appends to every sink in order, stopping at the first failure.
type MultiSink []Sink

// Append implements Sink.
func (m MultiSink) Append(rec CycleRecord) error {
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Append(rec); err != nil {
			return err
		}
	}
	return nil
}

// Discard drops every record.
var Discard Sink = discard{}

type discard struct{}

func (discard) Append(CycleRecord) error { return nil }
// #endregion sink
