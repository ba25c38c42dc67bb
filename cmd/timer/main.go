// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Jussi Maki

// Command timer mounts the lifted timer component and prints every render.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joamaki/observe/internal/config"
	"github.com/joamaki/observe/internal/logging"
	"github.com/joamaki/observe/observe"
	"github.com/joamaki/observe/stream"
	"github.com/joamaki/observe/timer"
	"github.com/joamaki/observe/view"
)

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	var (
		configPath = flag.String("config", "", "path to the configuration file (default "+config.DefaultFile+" if present)")
		interval   = flag.Duration("interval", 0, "interval between ticks, overrides the configuration")
		duration   = flag.Duration("duration", 0, "stop after this long, overrides the configuration")
		logLevel   = flag.String("log-level", "", "log level, overrides the configuration")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("error: %s", err)
	}
	if *interval != 0 {
		cfg.Timer.Interval = *interval
	}
	if *duration != 0 {
		cfg.Timer.Duration = *duration
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fatal("error: %s", err)
	}

	log, err := logging.New(cfg.Log.Level)
	if err != nil {
		fatal("error: %s", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, os.Stdout); err != nil {
		log.Fatal("Timer failed", zap.Error(err))
	}
}

// run mounts the lifted timer and writes each render as a line to 'out'
// until 'ctx' is cancelled or the configured duration has elapsed.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger, out io.Writer) error {
	if cfg.Timer.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timer.Duration)
		defer cancel()
	}

	ticks := timer.Ticking(cfg.Timer.Interval)
	if cfg.Timer.MaxRate > 0 {
		ticks = stream.Throttle(ticks, cfg.Timer.MaxRate, 1)
	}

	loopOpts := []view.LoopOption{view.WithLogger(log)}
	if cfg.Render.MaxPerSecond > 0 {
		loopOpts = append(loopOpts, view.WithRenderLimit(cfg.Render.MaxPerSecond, cfg.Render.Burst))
	}
	loop := view.NewLoop(loopOpts...)

	// The loop outlives 'ctx' so that the component can be unmounted after
	// the timer has been stopped.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	var g errgroup.Group
	g.Go(func() error {
		err := loop.Run(loopCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		defer stopLoop()

		lifted := timer.Lifted.New()
		log.Info("Mounting timer",
			zap.Stringer("instance", lifted.ID()),
			zap.Duration("interval", cfg.Timer.Interval))

		m, err := view.Mount(ctx, loop, view.Stateful[observe.Inputs[timer.Tick]](lifted),
			observe.Inputs[timer.Tick]{Observable: ticks},
			view.WithMountLogger(log),
			view.OnRender(func(n view.Node) {
				fmt.Fprintln(out, view.Format(n))
			}))
		if err != nil {
			return fmt.Errorf("mount: %w", err)
		}

		<-ctx.Done()

		unmountCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.Unmount(unmountCtx); err != nil {
			return fmt.Errorf("unmount: %w", err)
		}
		log.Info("Timer stopped")
		return nil
	})
	return g.Wait()
}
