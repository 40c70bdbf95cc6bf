package sim

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"metro-simulator/internal/journal"
	"metro-simulator/internal/metrics"
	"metro-simulator/internal/metro"
	"metro-simulator/internal/scene"
)

type fakeRenderer struct {
	mu     sync.Mutex
	frames int
	nights int
	states []metro.TrainState
}

func (f *fakeRenderer) Render(v scene.View) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames++
	if v.Night() {
		f.nights++
	}
	if s, ok := v.(*metro.Simulation); ok {
		f.states = append(f.states, s.State())
	}
	return nil
}

func (f *fakeRenderer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

type fakePublisher struct {
	states      []metro.Snapshot
	transitions []metro.Event
	err         error
}

func (f *fakePublisher) PublishState(s metro.Snapshot) error {
	f.states = append(f.states, s)
	return f.err
}

func (f *fakePublisher) PublishTransition(e metro.Event, _ int) error {
	f.transitions = append(f.transitions, e)
	return f.err
}

type fakeJournal struct {
	rows []journal.Cycle
	err  error
}

func (f *fakeJournal) RecordCycle(_ context.Context, c journal.Cycle) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, c)
	return nil
}

type fakeChime struct{ opens, closes int }

func (f *fakeChime) DoorsOpening() error { f.opens++; return nil }
func (f *fakeChime) DoorsClosing() error { f.closes++; return nil }

func newTestRunner(opts Options) *Runner {
	opts.Params = metro.DefaultParams()
	opts.TickInterval = 16 * time.Millisecond
	opts.Dt = 0.016
	if opts.RunID == "" {
		opts.RunID = "test-run"
	}
	return NewRunner(opts)
}

func stepUntilCycle(t *testing.T, r *Runner, cycles int) int {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= 10000*cycles; i++ {
		if err := r.Step(ctx); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if r.Simulation().Cycle() >= cycles {
			return i
		}
	}
	t.Fatalf("%d cycles not completed", cycles)
	return 0
}

func TestStepFansOutEvents(t *testing.T) {
	rend := &fakeRenderer{}
	pub := &fakePublisher{}
	jr := &fakeJournal{}
	ch := &fakeChime{}
	m := metrics.NewCollector(1, 16*time.Millisecond, 160*time.Millisecond)
	r := newTestRunner(Options{
		PublishInterval: 160 * time.Millisecond,
		Renderer:        rend,
		Publisher:       pub,
		Journal:         jr,
		Chime:           ch,
		Metrics:         m,
	})

	ticks := stepUntilCycle(t, r, 2)

	if rend.frames != ticks {
		t.Fatalf("frames = %d, want one per tick (%d)", rend.frames, ticks)
	}
	if len(pub.transitions) != 16 {
		t.Fatalf("transitions published = %d, want 16", len(pub.transitions))
	}
	if want := ticks / 10; len(pub.states) != want {
		t.Fatalf("states published = %d, want %d", len(pub.states), want)
	}
	if ch.opens != 2 || ch.closes != 2 {
		t.Fatalf("chime opens/closes = %d/%d, want 2/2", ch.opens, ch.closes)
	}
	if len(jr.rows) != 2 || jr.rows[0].Cycle != 1 || jr.rows[1].Cycle != 2 {
		t.Fatalf("journal rows = %+v", jr.rows)
	}
	if jr.rows[0].RunID != "test-run" || jr.rows[0].Boarded != 2 || jr.rows[0].SimSeconds <= 0 {
		t.Fatalf("journal row = %+v", jr.rows[0])
	}

	if got := testutil.ToFloat64(m.Ticks); got != float64(ticks) {
		t.Fatalf("ticks metric = %v, want %d", got, ticks)
	}
	if got := testutil.ToFloat64(m.Cycles); got != 2 {
		t.Fatalf("cycles metric = %v", got)
	}
	if got := testutil.ToFloat64(m.Boardings); got != 4 {
		t.Fatalf("boardings metric = %v", got)
	}
	if got := testutil.ToFloat64(m.JournalWrites); got != 2 {
		t.Fatalf("journal writes = %v", got)
	}
	if got := testutil.ToFloat64(m.State.WithLabelValues("moving_to_station")); got != 1 {
		t.Fatalf("state gauge = %v", got)
	}
}

func TestRenderSeesCompletedTick(t *testing.T) {
	rend := &fakeRenderer{}
	r := newTestRunner(Options{Renderer: rend})
	stepUntilCycle(t, r, 1)

	// The frame after the rollover tick already shows the next approach.
	last := rend.states[len(rend.states)-1]
	if last != metro.MovingToStation {
		t.Fatalf("last rendered state = %s", last)
	}
}

func TestSinkFailuresDoNotStopTicks(t *testing.T) {
	m := metrics.NewCollector(1, time.Millisecond, time.Millisecond)
	r := newTestRunner(Options{
		Publisher: &fakePublisher{err: errors.New("nats down")},
		Journal:   &fakeJournal{err: errors.New("db down")},
		Metrics:   m,
	})
	stepUntilCycle(t, r, 1)
	if got := testutil.ToFloat64(m.JournalErrs); got != 1 {
		t.Fatalf("journal errors = %v, want 1", got)
	}
}

func TestSetModeAppliesNextTick(t *testing.T) {
	rend := &fakeRenderer{}
	r := newTestRunner(Options{Renderer: rend})
	ctx := context.Background()

	_ = r.Step(ctx)
	r.SetMode(true)
	if r.Simulation().Night() {
		t.Fatal("mode applied before the next tick")
	}
	_ = r.Step(ctx)
	r.SetMode(false)
	r.SetMode(true)
	_ = r.Step(ctx)
	if !r.Simulation().Night() || rend.nights != 2 {
		t.Fatalf("night = %v, night frames = %d", r.Simulation().Night(), rend.nights)
	}
}

func TestStartStop(t *testing.T) {
	rend := &fakeRenderer{}
	r := NewRunner(Options{Params: metro.DefaultParams(), TickInterval: time.Millisecond, Renderer: rend})

	r.Start(context.Background())
	r.Start(context.Background())
	deadline := time.Now().Add(5 * time.Second)
	for rend.count() < 5 {
		if time.Now().After(deadline) {
			t.Fatal("runner did not tick")
		}
		time.Sleep(time.Millisecond)
	}
	r.Stop()
	n := rend.count()
	time.Sleep(10 * time.Millisecond)
	if rend.count() != n {
		t.Fatal("runner kept ticking after Stop")
	}
	r.Stop()
}

func TestRunReturnsOnCancel(t *testing.T) {
	r := NewRunner(Options{Params: metro.DefaultParams(), TickInterval: time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run = %v, want deadline exceeded", err)
	}
	if r.Simulation().Tick() == 0 {
		t.Fatal("no ticks ran")
	}
}

func TestDefaultDt(t *testing.T) {
	r := NewRunner(Options{Params: metro.DefaultParams(), TickInterval: 20 * time.Millisecond})
	_ = r.Step(context.Background())
	if got := r.Simulation().SimTime(); got != 0.02 {
		t.Fatalf("SimTime after one tick = %v, want 0.02", got)
	}
}
