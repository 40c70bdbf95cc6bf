package sim

import (
	"context"
	"sync"
	"time"

	"metro-simulator/internal/journal"
	"metro-simulator/internal/logging"
	mmetrics "metro-simulator/internal/metrics"
	"metro-simulator/internal/metro"
	"metro-simulator/internal/scene"
)

// Renderer draws one frame after each advance.
type Renderer interface {
	Render(v scene.View) error
}

type Publisher interface {
	PublishState(s metro.Snapshot) error
	PublishTransition(e metro.Event, cycle int) error
}

type Journal interface {
	RecordCycle(ctx context.Context, c journal.Cycle) error
}

type Chime interface {
	DoorsOpening() error
	DoorsClosing() error
}

// Options wires the runner. Every sink is optional.
type Options struct {
	Params          metro.Params
	Night           bool
	TickInterval    time.Duration
	Dt              float64 // simulated seconds per tick
	PublishInterval time.Duration
	RunID           string

	Renderer  Renderer
	Publisher Publisher
	Journal   Journal
	Chime     Chime
	Metrics   *mmetrics.Collector
	Logger    logging.Logger
}

// Runner is the fixed-tick driver. Each tick advances the simulation,
// fans its events out to the sinks and then renders, so a frame never
// sees a half-applied tick.
type Runner struct {
	opts         Options
	sim          *metro.Simulation
	log          logging.Logger
	publishEvery uint64
	modes        chan bool

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunner(opts Options) *Runner {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 16 * time.Millisecond
	}
	if opts.Dt <= 0 {
		opts.Dt = opts.TickInterval.Seconds()
	}
	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}
	if opts.RunID != "" {
		log = log.With(logging.String("run_id", opts.RunID))
	}

	every := uint64(1)
	if opts.PublishInterval > opts.TickInterval {
		every = uint64(opts.PublishInterval / opts.TickInterval)
	}

	s := metro.NewSimulation(opts.Params)
	s.SetMode(opts.Night)
	if opts.Metrics != nil {
		opts.Metrics.SetState(s.State())
	}
	return &Runner{
		opts:         opts,
		sim:          s,
		log:          log,
		publishEvery: every,
		modes:        make(chan bool, 8),
	}
}

// Simulation exposes the driven state for read-only use between ticks.
func (r *Runner) Simulation() *metro.Simulation { return r.sim }

// SetMode queues a day/night switch. It is applied at the start of the
// next tick and may be called from any goroutine.
func (r *Runner) SetMode(night bool) {
	select {
	case r.modes <- night:
	default:
		r.log.Warn(context.Background(), "mode change dropped", logging.Bool("night", night))
	}
}

// Step runs one tick. Sink failures are logged and counted; only a render
// error is returned.
func (r *Runner) Step(ctx context.Context) error {
	start := time.Now()
	r.applyModes(ctx)

	events := r.sim.Advance(r.opts.Dt)
	for _, e := range events {
		r.handle(ctx, e)
	}

	tr := r.sim.Train()
	if m := r.opts.Metrics; m != nil {
		m.Ticks.Inc()
		m.ObserveTrain(tr, r.sim.SimTime())
	}
	if r.opts.Publisher != nil && r.sim.Tick()%r.publishEvery == 0 {
		if err := r.opts.Publisher.PublishState(r.sim.Snapshot()); err != nil {
			r.log.Warn(ctx, "publish state failed", logging.Err(err))
		}
	}

	var err error
	if r.opts.Renderer != nil {
		err = r.opts.Renderer.Render(r.sim)
	}
	if m := r.opts.Metrics; m != nil {
		m.TickDuration.Observe(time.Since(start).Seconds())
	}
	return err
}

func (r *Runner) applyModes(ctx context.Context) {
	for {
		select {
		case night := <-r.modes:
			if night != r.sim.Night() {
				r.sim.SetMode(night)
				r.log.Info(ctx, "display mode changed", logging.Bool("night", night))
			}
		default:
			return
		}
	}
}

func (r *Runner) handle(ctx context.Context, e metro.Event) {
	m := r.opts.Metrics
	switch e.Kind {
	case metro.EventTransition:
		r.log.Debug(ctx, "state transition",
			logging.String("from", e.From.String()),
			logging.String("to", e.To.String()),
			logging.Uint64("tick", e.Tick),
		)
		if m != nil {
			m.ObserveTransition(e.From, e.To)
		}
		if p := r.opts.Publisher; p != nil {
			if err := p.PublishTransition(e, r.sim.Cycle()); err != nil {
				r.log.Warn(ctx, "publish transition failed", logging.Err(err))
			}
		}
		r.chime(ctx, e.To)

	case metro.EventBoarded:
		r.log.Debug(ctx, "passenger boarded", logging.Int("passenger", e.Passenger), logging.Uint64("tick", e.Tick))
		if m != nil {
			m.Boardings.Inc()
		}

	case metro.EventCycleCompleted:
		r.log.Info(ctx, "cycle completed",
			logging.Int("cycle", e.Cycle),
			logging.Int("boarded", e.Boarded),
			logging.Float("sim_seconds", r.sim.SimTime()),
		)
		if m != nil {
			m.Cycles.Inc()
		}
		r.record(ctx, e)
	}
}

func (r *Runner) chime(ctx context.Context, to metro.TrainState) {
	c := r.opts.Chime
	if c == nil {
		return
	}
	var err error
	switch to {
	case metro.DoorsOpening:
		err = c.DoorsOpening()
	case metro.DoorsClosing:
		err = c.DoorsClosing()
	default:
		return
	}
	if err != nil {
		r.log.Warn(ctx, "door chime failed", logging.Err(err))
	}
}

func (r *Runner) record(ctx context.Context, e metro.Event) {
	j := r.opts.Journal
	if j == nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	err := j.RecordCycle(wctx, journal.Cycle{
		RunID:       r.opts.RunID,
		Cycle:       e.Cycle,
		CompletedAt: time.Now(),
		SimSeconds:  r.sim.SimTime(),
		Boarded:     e.Boarded,
	})
	if m := r.opts.Metrics; m != nil {
		if err != nil {
			m.JournalErrInc()
		} else {
			m.JournalWriteInc()
		}
	}
	if err != nil {
		r.log.Warn(ctx, "journal write failed", logging.Int("cycle", e.Cycle), logging.Err(err))
	}
}

// Run ticks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	tick := time.NewTicker(r.opts.TickInterval)
	defer tick.Stop()

	r.log.Info(ctx, "simulation started",
		logging.Any("tick_interval", r.opts.TickInterval),
		logging.Float("dt", r.opts.Dt),
		logging.Bool("night", r.sim.Night()),
	)
	for {
		select {
		case <-ctx.Done():
			r.log.Info(ctx, "simulation stopped",
				logging.Uint64("ticks", r.sim.Tick()),
				logging.Int("cycles", r.sim.Cycle()),
			)
			return ctx.Err()
		case <-tick.C:
			if err := r.Step(ctx); err != nil {
				r.log.Warn(ctx, "render failed", logging.Err(err))
			}
		}
	}
}

// Start runs the loop in a goroutine. Calling Start twice is a no-op.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_ = r.Run(ctx)
	}()
}

// Stop cancels the loop and waits for the current tick to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}
