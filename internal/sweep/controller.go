// Package sweep drives repeated oracle probes per seed until a lock, the
// iteration budget, the time budget or cancellation ends the seed's loop.
package sweep

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/t13-mirror/internal/collapse"
	"github.com/danielpatrickdp/t13-mirror/internal/logging"
	"github.com/danielpatrickdp/t13-mirror/internal/match"
	"github.com/danielpatrickdp/t13-mirror/internal/oracle"
)

// #region controller-struct

// Controller runs sweeps for one configuration. It is not safe for
// concurrent RunSweep calls; Cancel may be called from any goroutine.
type Controller struct {
	oracle  oracle.Oracle
	cfg     Config
	matcher *match.Matcher
	sink    logging.Sink
	logger  *zap.Logger
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration)
	runID   string

	iter int

	cancelled atomic.Bool
	stopOnce  sync.Once
	stopCh    chan struct{}
}

// Option customizes a Controller.
type Option func(*Controller)

// WithSink sets where cycle records go. Defaults to logging.Discard.
func WithSink(s logging.Sink) Option {
	return func(c *Controller) { c.sink = s }
}

// WithLogger sets the operational logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithSleep replaces the inter-cycle pause.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(c *Controller) { c.sleep = sleep }
}

// WithRunID fixes the run id stamped on every record.
func WithRunID(id string) Option {
	return func(c *Controller) { c.runID = id }
}

// #endregion controller-struct

// #region constructor

// NewController validates cfg and wires the controller.
func NewController(o oracle.Oracle, cfg Config, opts ...Option) (*Controller, error) {
	if o == nil {
		return nil, fmt.Errorf("nil oracle")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sweep config: %w", err)
	}
	c := &Controller{
		oracle:  o,
		cfg:     cfg,
		matcher: match.NewMatcher(cfg.Phrases),
		sink:    logging.Discard,
		logger:  zap.NewNop(),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.runID == "" {
		c.runID = uuid.NewString()
	}
	if c.sink == nil {
		c.sink = logging.Discard
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// RunID identifies the records this controller writes.
func (c *Controller) RunID() string { return c.runID }

// Config returns the configuration the controller was built with.
func (c *Controller) Config() Config { return c.cfg }

// Iterations is the current seed's iteration counter.
func (c *Controller) Iterations() int { return c.iter }

// #endregion constructor

// #region cancel

// Cancel raises the stop flag. It stays raised for the controller's lifetime.
func (c *Controller) Cancel() {
	c.cancelled.Store(true)
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// Cancelled reports whether Cancel was called or a sweep context ended.
func (c *Controller) Cancelled() bool { return c.cancelled.Load() }

// #endregion cancel

// #region run-sweep

// RunSweep processes seeds in order. On an oracle or sink failure it stops
// and returns the outcomes gathered so far, including the failing seed,
// together with the error. Oracle failures are *oracle.TransportError.
func (c *Controller) RunSweep(ctx context.Context, seeds []string) (SweepResult, error) {
	results := make(SweepResult, 0, len(seeds))
	c.logger.Info("sweep start",
		zap.String("run_id", c.runID),
		zap.String("condition", c.cfg.Condition),
		zap.Int("seeds", len(seeds)))

	for _, seed := range seeds {
		out, err := c.runSeed(ctx, seed)
		results = append(results, out)
		if err != nil {
			c.logger.Error("sweep aborted",
				zap.String("seed", seed),
				zap.Int("iter", out.Iterations),
				zap.Error(err))
			return results, err
		}
	}

	c.logger.Info("sweep done", zap.String("run_id", c.runID), zap.Int("seeds", len(results)))
	return results, nil
}

func (c *Controller) runSeed(ctx context.Context, seed string) (SeedOutcome, error) {
	c.iter = 0
	start := c.now()
	for {
		if reason := c.stopReason(ctx, start); reason != StopReasonNone {
			c.logger.Info("seed stopped",
				zap.String("seed", seed),
				zap.String("reason", string(reason)),
				zap.Int("iter", c.iter))
			return SeedOutcome{Seed: seed, Iterations: c.iter, Signals: []match.Signal{}, StopReason: reason}, nil
		}

		lock, err := c.Cycle(ctx, seed)
		if err != nil {
			return SeedOutcome{Seed: seed, Iterations: c.iter, Signals: []match.Signal{}, StopReason: StopReasonError}, err
		}
		if lock.Locked {
			c.logger.Info("seed locked", zap.String("seed", seed), zap.Int("iter", c.iter))
			return SeedOutcome{Seed: seed, Locked: true, Iterations: c.iter, Signals: lock.Signals, StopReason: StopReasonLocked}, nil
		}
		if c.iter < c.cfg.MaxIterations {
			c.pause(ctx, c.cfg.Delay)
		}
	}
}

// stopReason checks, in order, cancellation, the time budget and the
// iteration budget.
func (c *Controller) stopReason(ctx context.Context, start time.Time) StopReason {
	if ctx.Err() != nil {
		c.Cancel()
	}
	if c.cancelled.Load() {
		return StopReasonCancelled
	}
	if c.now().Sub(start) > c.cfg.MaxDuration {
		return StopReasonTimeBudget
	}
	if c.iter >= c.cfg.MaxIterations {
		return StopReasonMaxIterations
	}
	return StopReasonNone
}

// pause waits d, returning early on cancellation.
func (c *Controller) pause(ctx context.Context, d time.Duration) {
	if c.sleep != nil {
		c.sleep(ctx, d)
		return
	}
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	case <-c.stopCh:
	}
}

// #endregion run-sweep

// #region cycle

// Cycle runs one probe for seed: trace, prompt, oracle call, match and
// record. The oracle call is detached from ctx cancellation so an
// in-flight request always completes.
func (c *Controller) Cycle(ctx context.Context, seed string) (match.LockSignal, error) {
	c.iter++

	trace, err := collapse.Auto(seed, c.cfg.Collapse)
	if err != nil {
		return match.LockSignal{}, fmt.Errorf("collapse seed %q: %w", seed, err)
	}
	numeric := NumericSeed(seed)
	bloom := Bloom(numeric)

	prompt := Prompt{
		Iteration:      c.iter,
		Name:           c.cfg.Name,
		Seed:           seed,
		Trace:          trace,
		NumericSeed:    numeric,
		Bloom:          bloom,
		ShowHandshakes: c.cfg.ShowHandshakes,
		ShowDecoys:     c.cfg.ShowDecoys,
	}.Build()

	started := c.now()
	reply, err := c.oracle.Generate(context.WithoutCancel(ctx), prompt)
	if err != nil {
		return match.LockSignal{}, oracle.Wrap("unknown", err)
	}
	lock := c.matcher.Match(reply)

	rec := logging.CycleRecord{
		ID:             uuid.NewString(),
		RunID:          c.runID,
		Timestamp:      c.now().UTC(),
		Iteration:      c.iter,
		Seed:           seed,
		Condition:      c.cfg.Condition,
		ShowHandshakes: c.cfg.ShowHandshakes,
		ShowDecoys:     c.cfg.ShowDecoys,
		Trace:          trace,
		Aux:            logging.Aux{NumericSeed: numeric, Bloom: bloom},
		Reply:          reply,
		Lock:           lock,
	}
	if err := c.sink.Append(rec); err != nil {
		return lock, fmt.Errorf("append cycle record: %w", err)
	}

	c.logger.Debug("cycle",
		zap.String("seed", seed),
		zap.Int("iter", c.iter),
		zap.Int("idx", trace.Idx),
		zap.String("truth", trace.Truth),
		zap.Bool("locked", lock.Locked),
		zap.Bool("decoy_hit", lock.DecoyHit),
		zap.Int("near_misses", len(lock.NearMisses)),
		zap.Duration("latency", c.now().Sub(started)))
	return lock, nil
}

// #endregion cycle
