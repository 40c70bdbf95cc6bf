package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"metro-simulator/internal/audio"
	"metro-simulator/internal/config"
	"metro-simulator/internal/journal"
	"metro-simulator/internal/logging"
	"metro-simulator/internal/metrics"
	"metro-simulator/internal/metro"
	"metro-simulator/internal/publisher"
	"metro-simulator/internal/render"
	"metro-simulator/internal/sim"
)

// defaultTerminalLog keeps log lines off the screen tcell is drawing.
const defaultTerminalLog = "metrosim.log"

func main() {
	// Load configuration from .env and environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logFile := cfg.LogFile
	if logFile == "" && cfg.RenderMode == config.RenderTerminal {
		logFile = defaultTerminalLog
	}
	logger, closeLog, err := logging.Open(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, logFile)
	if err != nil {
		log.Fatalf("logging error: %v", err)
	}
	defer closeLog()

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := uuid.NewString()
	logger.Info(ctx, "starting metro simulator",
		logging.String("run_id", runID),
		logging.String("render_mode", cfg.RenderMode),
		logging.Float("speed_multiplier", cfg.SpeedMultiplier),
	)

	opts := sim.Options{
		Params:          metro.DefaultParams(),
		Night:           cfg.Night,
		TickInterval:    cfg.TickInterval,
		Dt:              cfg.Dt(),
		PublishInterval: cfg.PublishInterval,
		RunID:           runID,
		Logger:          logger,
	}

	// Metrics setup
	var mcol *metrics.Collector
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector(cfg.SpeedMultiplier, cfg.TickInterval, cfg.PublishInterval)
		mcol.Serve(ctx, cfg.MetricsAddr, logger)
		opts.Metrics = mcol
	}

	if cfg.NATSURL != "" {
		var pm publisher.PublisherMetrics
		if mcol != nil {
			pm = mcol
		}
		pub, err := publisher.NewNATSPublisher(publisher.Options{
			URL:           cfg.NATSURL,
			SubjectPrefix: cfg.NATSSubjectPrefix,
			RunID:         runID,
			LogSubjects:   cfg.LogNATSSubjects,
			Metrics:       pm,
			Logger:        logger,
		})
		if err != nil {
			logger.Error(ctx, "nats connect failed", logging.String("url", cfg.NATSURL), logging.Err(err))
			os.Exit(1)
		}
		defer pub.Close()
		opts.Publisher = pub
	}

	if cfg.JournalDSN != "" {
		j, err := journal.Open(ctx, cfg.JournalDSN)
		if err != nil {
			logger.Error(ctx, "journal open failed", logging.Err(err))
			os.Exit(1)
		}
		defer j.Close()
		logger.Info(ctx, "journal ready", logging.String("driver", j.Driver()))
		opts.Journal = j
	}

	if cfg.AudioEnabled {
		chime := audio.NewChime()
		if err := chime.Init(); err != nil {
			logger.Warn(ctx, "audio unavailable, continuing without chime", logging.Err(err))
		} else {
			defer chime.Close()
			opts.Chime = chime
		}
	}

	switch cfg.RenderMode {
	case config.RenderSnapshot:
		err = runSnapshot(ctx, opts, cfg, logger)
	case config.RenderHeadless:
		err = sim.NewRunner(opts).Run(ctx)
	default:
		err = runTerminal(ctx, cancel, opts)
	}
	if err != nil && ctx.Err() == nil {
		logger.Error(ctx, "simulator failed", logging.Err(err))
		os.Exit(1)
	}
	logger.Info(context.Background(), "shutdown complete")
}

// runTerminal drives the simulation in a tcell screen until a quit key or
// signal.
func runTerminal(ctx context.Context, cancel context.CancelFunc, opts sim.Options) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()

	term := render.NewTerminal(screen)
	defer term.Close()
	opts.Renderer = term
	runner := sim.NewRunner(opts)

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	runner.Start(ctx)
	defer runner.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch keyCommand(ev) {
				case cmdDay:
					runner.SetMode(false)
				case cmdNight:
					runner.SetMode(true)
				case cmdQuit:
					cancel()
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		}
	}
}

// runSnapshot advances a fixed number of ticks without waiting on the wall
// clock and writes the final frame as a PNG.
func runSnapshot(ctx context.Context, opts sim.Options, cfg *config.Config, logger logging.Logger) error {
	runner := sim.NewRunner(opts)
	for i := 0; i < cfg.SnapshotTicks && ctx.Err() == nil; i++ {
		if err := runner.Step(ctx); err != nil {
			return err
		}
	}

	pointSize := max(1, cfg.SnapshotWidth/500)
	canvas := render.NewImageCanvas(cfg.SnapshotWidth, cfg.SnapshotHeight, pointSize)
	defer canvas.Close()
	s := runner.Simulation()
	if err := canvas.Render(s); err != nil {
		return fmt.Errorf("render snapshot: %w", err)
	}
	if err := canvas.SavePNG(cfg.SnapshotPath); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	logger.Info(ctx, "snapshot written",
		logging.String("path", cfg.SnapshotPath),
		logging.Uint64("tick", s.Tick()),
		logging.String("state", s.State().String()),
	)
	return nil
}
