package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"metro-simulator/internal/logging"
	"metro-simulator/internal/metro"
)

type Collector struct {
	reg *prometheus.Registry

	Ticks       prometheus.Counter
	Cycles      prometheus.Counter
	Boardings   prometheus.Counter
	Transitions *prometheus.CounterVec // from, to
	State       *prometheus.GaugeVec   // state; 1 for the current one

	DoorAperture prometheus.Gauge
	TrainX       prometheus.Gauge
	SimSeconds   prometheus.Gauge

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge

	JournalWrites prometheus.Counter
	JournalErrs   prometheus.Counter

	TickDuration    prometheus.Histogram
	PublishDuration prometheus.Histogram

	SpeedMultiplier prometheus.Gauge
	TickInterval    prometheus.Gauge // seconds
	PublishInterval prometheus.Gauge // seconds
}

func NewCollector(speedMultiplier float64, tickInterval, publishInterval time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "metrosim_ticks_total",
			Help: "Total simulation ticks advanced.",
		}),
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "metrosim_cycles_total",
			Help: "Total completed arrival, boarding and departure cycles.",
		}),
		Boardings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "metrosim_boardings_total",
			Help: "Total passengers that boarded the train.",
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "metrosim_state_transitions_total",
			Help: "Train state machine transitions.",
		}, []string{"from", "to"}),
		State: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "metrosim_train_state",
			Help: "1 for the train's current state, 0 otherwise.",
		}, []string{"state"}),
		DoorAperture: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "metrosim_door_aperture",
			Help: "Door aperture, 0 closed to 1 fully open.",
		}),
		TrainX: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "metrosim_train_position_x",
			Help: "Train reference point in world pixels.",
		}),
		SimSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "metrosim_sim_time_seconds",
			Help: "Accumulated simulated time.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "metrosim_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "metrosim_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "metrosim_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		JournalWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "metrosim_journal_writes_total",
			Help: "Cycle rows written to the journal.",
		}),
		JournalErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "metrosim_journal_errors_total",
			Help: "Failed journal writes.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "metrosim_tick_duration_seconds",
			Help:    "Wall time of one advance plus render pass.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "metrosim_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		SpeedMultiplier: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "metrosim_speed_multiplier",
			Help: "Current speed multiplier.",
		}),
		TickInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "metrosim_tick_interval_seconds",
			Help: "Wall-clock tick interval in seconds.",
		}),
		PublishInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "metrosim_publish_interval_seconds",
			Help: "Snapshot publish interval in seconds.",
		}),
	}

	reg.MustRegister(
		c.Ticks, c.Cycles, c.Boardings, c.Transitions, c.State,
		c.DoorAperture, c.TrainX, c.SimSeconds,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
		c.JournalWrites, c.JournalErrs,
		c.TickDuration, c.PublishDuration,
		c.SpeedMultiplier, c.TickInterval, c.PublishInterval,
	)

	c.SpeedMultiplier.Set(speedMultiplier)
	c.TickInterval.Set(tickInterval.Seconds())
	c.PublishInterval.Set(publishInterval.Seconds())
	for _, st := range metro.AllStates() {
		c.State.WithLabelValues(st.String()).Set(0)
	}

	return c
}

// ObserveTrain records the per-tick train gauges.
func (c *Collector) ObserveTrain(tr metro.Train, simTime float64) {
	c.DoorAperture.Set(tr.DoorAperture)
	c.TrainX.Set(tr.PositionX)
	c.SimSeconds.Set(simTime)
}

// ObserveTransition counts a transition and moves the state gauge.
func (c *Collector) ObserveTransition(from, to metro.TrainState) {
	c.Transitions.WithLabelValues(from.String(), to.String()).Inc()
	c.State.WithLabelValues(from.String()).Set(0)
	c.State.WithLabelValues(to.String()).Set(1)
}

// SetState marks st as current without counting a transition.
func (c *Collector) SetState(st metro.TrainState) {
	for _, s := range metro.AllStates() {
		v := 0.0
		if s == st {
			v = 1
		}
		c.State.WithLabelValues(s.String()).Set(v)
	}
}

// Publisher and journal hooks.

func (c *Collector) NATSPublishedInc()              { c.NATSPublished.Inc() }
func (c *Collector) NATSPublishErrInc()             { c.NATSPublishErrs.Inc() }
func (c *Collector) PublishObserve(d time.Duration) { c.PublishDuration.Observe(d.Seconds()) }
func (c *Collector) NATSSetConnected(b bool) {
	if b {
		c.NATSConnected.Set(1)
	} else {
		c.NATSConnected.Set(0)
	}
}
func (c *Collector) JournalWriteInc() { c.JournalWrites.Inc() }
func (c *Collector) JournalErrInc()   { c.JournalErrs.Inc() }

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address. The
// server is shut down when ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server error", logging.Err(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info(ctx, "metrics listening", logging.String("addr", addr))
	return srv
}
