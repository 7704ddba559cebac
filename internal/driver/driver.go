package driver

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/levelfeed/internal/scheduler"
	"github.com/rickgao/levelfeed/internal/study"
)

// Study is the session API the driver invokes.
type Study interface {
	Reset()
	Tick(in study.TickInput) scheduler.Action
}

// Clock provides tick timestamps.
type Clock interface {
	Now() time.Time
}

// Config holds driver configuration.
type Config struct {
	TickInterval time.Duration // Time between ticks (default: 100ms)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval: 100 * time.Millisecond,
	}
}

// Driver ticks a Study from one goroutine so calls never overlap.
type Driver struct {
	cfg    Config
	study  Study
	clock  Clock
	logger *slog.Logger

	suspended atomic.Bool
	ticks     atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Driver.
func New(cfg Config, s Study, clock Clock, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	return &Driver{
		cfg:    cfg,
		study:  s,
		clock:  clock,
		logger: logger,
	}
}

// Start resets the study and begins the tick loop.
func (d *Driver) Start(ctx context.Context) error {
	d.ctx, d.cancel = context.WithCancel(ctx)

	d.wg.Add(1)
	go d.run()

	d.logger.Info("driver started", "tick_interval", d.cfg.TickInterval)

	return nil
}

// Stop gracefully shuts down the driver.
func (d *Driver) Stop(ctx context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("driver stopped", "ticks", d.ticks.Load())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Suspend turns subsequent ticks into no-ops until called with false.
func (d *Driver) Suspend(v bool) {
	d.suspended.Store(v)
}

// Suspended reports whether ticks are currently no-ops.
func (d *Driver) Suspended() bool {
	return d.suspended.Load()
}

// Ticks returns the number of ticks delivered.
func (d *Driver) Ticks() int64 {
	return d.ticks.Load()
}

// run is the tick loop. Reset and Tick only ever run on this goroutine.
func (d *Driver) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cfg.TickInterval)
	defer ticker.Stop()

	d.study.Reset()
	d.tick()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.tick()
		}
	}
}

func (d *Driver) tick() {
	now := d.clock.Now()
	action := d.study.Tick(study.TickInput{
		Now:       now,
		Anchor:    now,
		Suspended: d.suspended.Load(),
	})
	d.ticks.Add(1)

	if action.Kind != scheduler.NoOp && action.Kind != scheduler.AwaitMore {
		d.logger.Debug("tick", "action", action.Kind)
	}
}

// TicksToTimeout is the number of ticks after which a request started on the
// first tick is guaranteed to have been abandoned: one tick to start it,
// timeoutTicks+1 ticks for the counter to pass the threshold, and one more
// for the timeout to fire.
func TicksToTimeout(timeoutTicks int) int {
	return timeoutTicks + 3
}

// RunOnce ticks s until a fetch completes or maxTicks is reached, sleeping
// interval between ticks. It returns the final action.
func RunOnce(ctx context.Context, s Study, clock Clock, interval time.Duration, maxTicks int) (scheduler.Action, error) {
	s.Reset()

	var last scheduler.Action
	for i := 0; i < maxTicks; i++ {
		now := clock.Now()
		last = s.Tick(study.TickInput{Now: now, Anchor: now})

		switch last.Kind {
		case scheduler.HandleSuccess, scheduler.HandleFailure, scheduler.HandleTimeout:
			return last, nil
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(interval):
		}
	}
	return last, nil
}
