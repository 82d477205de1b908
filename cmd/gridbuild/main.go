// Package main sweeps the intake over the arm workspace and writes the
// occupancy grid used to validate arm setpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/liftarm/internal/config"
	"github.com/Faultbox/liftarm/internal/gridbuild"
	"github.com/Faultbox/liftarm/internal/host"
	"github.com/Faultbox/liftarm/internal/kinematics"
	"github.com/Faultbox/liftarm/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("sweep aborted, no grid written")
		} else {
			logger.Error("grid build failed", zap.Error(err))
		}
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	geom := cfg.Mechanism.Geometry()
	bounds := kinematics.WorkspaceBounds(geom)
	probe := cfg.Physics.IntakeProbe()

	b, err := gridbuild.New(bounds, cfg.Grid.StepSize, probe, geom.MountVector(),
		gridbuild.WithPersister(gridbuild.FilePersister(cfg.Grid.Path)),
		gridbuild.WithSamplesPerTick(cfg.Grid.SamplesPerTick),
		gridbuild.WithLogger(logger.Named("gridbuild")),
	)
	if err != nil {
		return err
	}

	logger.Sugar.Debugf("config: %+v", *cfg)

	cols, rows := b.Samples()
	logger.Info("building occupancy grid",
		zap.Stringer("bounds", bounds),
		zap.Float32("step", cfg.Grid.StepSize),
		zap.Int("columns", cols),
		zap.Int("rows", rows),
		zap.String("path", cfg.Grid.Path))

	start := time.Now()
	loop := host.New(host.Config{Interval: cfg.Grid.TickInterval, Logger: logger.Named("host")})
	loop.Add("gridbuild", b)
	loop.Add("progress", progressReporter(b))

	if err := loop.Run(ctx); err != nil {
		return err
	}

	logger.Info("sweep finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Uint64("ticks", loop.Ticks()),
		zap.Int("probe_queries", probe.Queries()))
	return nil
}

// progressReporter logs each tenth of the sweep as it passes.
func progressReporter(b *gridbuild.Builder) host.Ticker {
	last := -1
	return host.TickFunc(func(time.Duration) (bool, error) {
		done, total := b.Progress()
		if pct := done * 10 / total; pct != last {
			last = pct
			logger.Debug("sweep progress", zap.Int("done", done), zap.Int("total", total))
		}
		return b.Done(), nil
	})
}
