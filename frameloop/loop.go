// Package frameloop provides the single goroutine on which world state is read and mutated:
// raycasts, camera pose queries, track updates and per-tick animations.
package frameloop

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/arlens/logging"
	"go.viam.com/arlens/utils"
)

// ErrClosed is returned when work is submitted to a closed loop.
var ErrClosed = errors.New("frame loop is closed")

// DefaultTickInterval is roughly one display frame at 60Hz.
const DefaultTickInterval = 16 * time.Millisecond

// Loop serializes submitted tasks and tick callbacks onto one goroutine.
type Loop struct {
	clock  clock.Clock
	ticker *clock.Ticker
	tasks  chan func()
	logger logging.Logger

	mu      sync.Mutex
	tickers []func(dt time.Duration) bool

	workers utils.StoppableWorkers
}

// New starts a loop that ticks every tickInterval on clk. A nil clk uses the wall clock.
func New(clk clock.Clock, tickInterval time.Duration, logger logging.Logger) *Loop {
	if clk == nil {
		clk = clock.New()
	}
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	if logger == nil {
		logger = logging.NewBlankLogger("frameloop")
	}
	l := &Loop{
		clock:  clk,
		ticker: clk.Ticker(tickInterval),
		tasks:  make(chan func(), 64),
		logger: logger,
	}
	last := clk.Now()
	l.workers = utils.NewStoppableWorkers(func(ctx context.Context) {
		l.run(ctx, last)
	})
	return l
}

func (l *Loop) run(ctx context.Context, last time.Time) {
	defer l.ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-l.tasks:
			task()
		case now := <-l.ticker.C:
			dt := now.Sub(last)
			last = now
			l.tick(dt)
		}
	}
}

func (l *Loop) tick(dt time.Duration) {
	l.mu.Lock()
	current := l.tickers
	l.tickers = nil
	l.mu.Unlock()

	keep := current[:0]
	for _, f := range current {
		if f(dt) {
			keep = append(keep, f)
		}
	}

	l.mu.Lock()
	// callbacks registered during this tick run from the next one on, after the survivors
	l.tickers = append(keep, l.tickers...)
	l.mu.Unlock()
}

// Post queues f to run on the loop goroutine.
func (l *Loop) Post(f func()) error {
	ctx := l.workers.Context()
	if ctx.Err() != nil {
		return ErrClosed
	}
	select {
	case l.tasks <- f:
		return nil
	case <-ctx.Done():
		return ErrClosed
	}
}

// Do runs f on the loop goroutine and waits for its result. It must not be called from the
// loop goroutine itself. If ctx ends first Do returns early, but a queued f still runs.
func (l *Loop) Do(ctx context.Context, f func() error) error {
	done := make(chan error, 1)
	if err := l.Post(func() { done <- f() }); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.workers.Context().Done():
		return ErrClosed
	}
}

// OnTick registers f to run on every tick, with the time since the previous tick, until it
// returns false. Safe to call from any goroutine.
func (l *Loop) OnTick(f func(dt time.Duration) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tickers = append(l.tickers, f)
}

// NumTickers returns how many tick callbacks are registered.
func (l *Loop) NumTickers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tickers)
}

// Close stops the loop and waits for the goroutine to exit. Queued tasks are dropped.
func (l *Loop) Close() {
	l.workers.Stop()
	l.logger.Debug("frame loop stopped")
}
