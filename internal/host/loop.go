// Package host runs cooperative tick handlers at a fixed rate.
package host

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Ticker is a unit of work driven once per tick. It returns true once it has
// nothing left to do.
type Ticker interface {
	Tick(dt time.Duration) (done bool, err error)
}

// TickFunc adapts a function to Ticker.
type TickFunc func(dt time.Duration) (bool, error)

// Tick calls f(dt).
func (f TickFunc) Tick(dt time.Duration) (bool, error) { return f(dt) }

// Config holds loop settings.
type Config struct {
	Interval time.Duration
	Logger   *zap.Logger
}

// Loop calls its tickers in registration order on every tick, on a single
// goroutine.
type Loop struct {
	config  Config
	tickers []*entry
	ticks   uint64
}

type entry struct {
	name   string
	ticker Ticker
	done   bool
}

// New creates a loop.
func New(cfg Config) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = 16 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Loop{config: cfg}
}

// Add registers a ticker under name.
func (l *Loop) Add(name string, t Ticker) {
	l.tickers = append(l.tickers, &entry{name: name, ticker: t})
}

// Ticks returns the number of ticks run so far.
func (l *Loop) Ticks() uint64 {
	return l.ticks
}

// Step runs one tick. It reports true when every ticker is done.
func (l *Loop) Step(dt time.Duration) (bool, error) {
	l.ticks++

	allDone := true
	for _, e := range l.tickers {
		if e.done {
			continue
		}
		done, err := e.ticker.Tick(dt)
		if err != nil {
			return false, fmt.Errorf("%s: %w", e.name, err)
		}
		if done {
			e.done = true
			l.config.Logger.Debug("ticker finished", zap.String("name", e.name), zap.Uint64("tick", l.ticks))
			continue
		}
		allDone = false
	}
	return allDone, nil
}

// Run ticks until every ticker is done, a ticker fails, or ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.config.Interval)
	defer ticker.Stop()

	lastTime := time.Now()
	l.config.Logger.Info("starting tick loop",
		zap.Duration("interval", l.config.Interval),
		zap.Int("tickers", len(l.tickers)),
	)

	for {
		select {
		case <-ctx.Done():
			l.config.Logger.Warn("tick loop cancelled", zap.Uint64("ticks", l.ticks))
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(lastTime)
			lastTime = now

			done, err := l.Step(dt)
			if err != nil {
				return err
			}
			if done {
				l.config.Logger.Info("tick loop finished", zap.Uint64("ticks", l.ticks))
				return nil
			}
		}
	}
}
