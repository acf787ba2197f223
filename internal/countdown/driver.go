// Package countdown drives the per-question timer of an interview session.
//
// The state machine owns the remaining time; this package only supplies the
// one-second beat. A Driver runs at most one goroutine, started and stopped
// to follow the session's isTimerRunning flag.
package countdown

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/intervue/internal/interview"
)

// DefaultInterval is the countdown granularity.
const DefaultInterval = time.Second

// Ticker delivers beats until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers. Tests substitute a synthetic clock.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// RealClock is backed by time.Ticker.
type RealClock struct{}

func (RealClock) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// Target is what the driver steps once per beat.
type Target interface {
	Step(ctx context.Context) (interview.StepResult, error)
}

// Option configures a Driver.
type Option func(*Driver)

// WithClock replaces the real clock.
func WithClock(c Clock) Option {
	return func(d *Driver) { d.clock = c }
}

// WithInterval sets the beat interval.
func WithInterval(iv time.Duration) Option {
	return func(d *Driver) { d.interval = iv }
}

// WithLogger sets the logger for step failures.
func WithLogger(log *zap.Logger) Option {
	return func(d *Driver) { d.log = log }
}

// OnStep registers a callback invoked after every successful beat.
func OnStep(fn func(interview.StepResult)) Option {
	return func(d *Driver) { d.onStep = fn }
}

// Driver owns the countdown goroutine for one machine.
type Driver struct {
	target   Target
	clock    Clock
	interval time.Duration
	log      *zap.Logger
	onStep   func(interview.StepResult)

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	gen    uint64
	closed bool
}

// New creates a stopped driver bound to ctx. Cancelling ctx stops it
// permanently, as does Close.
func New(ctx context.Context, target Target, opts ...Option) *Driver {
	d := &Driver{
		target:   target,
		clock:    RealClock{},
		interval: DefaultInterval,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(d)
	}
	d.ctx = ctx
	return d
}

// Listener adapts the driver to machine change notifications. A suspended
// session never runs its countdown.
func (d *Driver) Listener() interview.Listener {
	return func(v interview.View) {
		d.Sync(v.State.IsTimerRunning && !v.Suspended)
	}
}

// Sync starts the countdown goroutine when running is true and none is
// active, and stops it when running is false. Stopping does not wait for
// the goroutine to exit, so Sync is safe to call from a machine listener
// that runs on the countdown goroutine itself.
func (d *Driver) Sync(running bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if running {
		if d.cancel != nil {
			return
		}
		ctx, cancel := context.WithCancel(d.ctx)
		d.gen++
		d.cancel = cancel
		go d.run(ctx, d.gen)
		return
	}
	d.stopLocked()
}

// Running reports whether a countdown goroutine is active.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

// Close stops the countdown and disables further starts.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.stopLocked()
}

func (d *Driver) stopLocked() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Driver) run(ctx context.Context, gen uint64) {
	t := d.clock.NewTicker(d.interval)
	defer t.Stop()
	defer d.finished(gen)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
		}
		// A stop may race with a beat already delivered.
		if ctx.Err() != nil {
			return
		}

		res, err := d.target.Step(ctx)
		if err != nil {
			d.log.Debug("countdown step rejected", zap.Error(err))
			return
		}
		if d.onStep != nil {
			d.onStep(res)
		}
		if res.TimedOut {
			d.log.Info("question timed out", zap.Int("next_remaining", res.Remaining))
		}
		if !res.Running {
			return
		}
	}
}

// finished clears the active run unless a newer one has replaced it.
func (d *Driver) finished(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen == gen && d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
