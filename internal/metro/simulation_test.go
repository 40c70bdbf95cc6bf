package metro

import (
	"math"
	"testing"
)

const dt = 0.016

// runUntil advances s until cond holds, failing after limit ticks. It
// returns the number of ticks taken.
func runUntil(t *testing.T, s *Simulation, limit int, cond func() bool) int {
	t.Helper()
	for i := 1; i <= limit; i++ {
		s.Advance(dt)
		if cond() {
			return i
		}
	}
	t.Fatalf("condition not reached within %d ticks (state %s)", limit, s.State())
	return 0
}

func TestNewSimulationInitialState(t *testing.T) {
	p := DefaultParams()
	s := NewSimulation(p)

	if s.State() != MovingToStation {
		t.Fatalf("State = %s, want %s", s.State(), MovingToStation)
	}
	tr := s.Train()
	if tr.PositionX != -520 || !tr.SignalGreen || tr.DoorAperture != 0 || tr.Speed != 220 {
		t.Fatalf("Train = %+v", tr)
	}
	for i, ps := range s.Passengers() {
		sp := p.Spawns[i]
		if !ps.Active || ps.X != sp.X || ps.Y != sp.Y || ps.Speed != sp.Speed || ps.WalkPhase != sp.WalkPhase {
			t.Errorf("passenger %d = %+v, want spawn %+v", i, ps, sp)
		}
	}
	if s.Cycle() != 0 {
		t.Fatalf("Cycle = %d, want 0", s.Cycle())
	}
}

func TestFullCycleTiming(t *testing.T) {
	s := NewSimulation(DefaultParams())

	toArrive := runUntil(t, s, 1000, func() bool { return s.State() == Arriving })
	if toArrive < 266 || toArrive > 268 {
		t.Fatalf("ticks to Arriving = %d, want 267±1", toArrive)
	}
	if x := s.Train().PositionX; x != 420 {
		t.Fatalf("PositionX on arrival = %v, want clamped to 420", x)
	}

	arriving := runUntil(t, s, 100, func() bool { return s.State() != Arriving })
	if arriving != 22 {
		t.Fatalf("Arriving lasted %d ticks, want 22", arriving)
	}
	if s.State() != StoppedSignalRed {
		t.Fatalf("State after Arriving = %s, want %s", s.State(), StoppedSignalRed)
	}
}

func TestStateOrder(t *testing.T) {
	s := NewSimulation(DefaultParams())
	var seen []TrainState
	for i := 0; i < 10000 && s.Cycle() == 0; i++ {
		for _, e := range s.Advance(dt) {
			if e.Kind == EventTransition {
				seen = append(seen, e.To)
			}
		}
	}
	want := []TrainState{Arriving, StoppedSignalRed, DoorsOpening, PassengersBoarding, DoorsClosing, SignalGreenWait, MovingAway, MovingToStation}
	if len(seen) != len(want) {
		t.Fatalf("transitions = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transition %d = %s, want %s", i, seen[i], want[i])
		}
	}
}

func TestLiveness(t *testing.T) {
	p := DefaultParams()
	s := NewSimulation(p)
	left := false
	n := runUntil(t, s, 10000, func() bool {
		if s.State() != MovingToStation {
			left = true
		}
		return left && s.State() == MovingToStation
	})
	if n >= 10000 {
		t.Fatalf("cycle took %d ticks", n)
	}
	if s.Cycle() != 1 {
		t.Fatalf("Cycle = %d, want 1", s.Cycle())
	}
	if x := s.Train().PositionX; x != -p.TrainLength {
		t.Fatalf("PositionX after rollover = %v, want %v", x, -p.TrainLength)
	}
	if a := s.Train().DoorAperture; a != 0 {
		t.Fatalf("DoorAperture after rollover = %v", a)
	}
	for i, ps := range s.Passengers() {
		if !ps.Active || ps.X != p.Spawns[i].X || ps.Y != p.Spawns[i].Y {
			t.Errorf("passenger %d not respawned: %+v", i, ps)
		}
	}
	if s.Elapsed() != 0 {
		t.Fatalf("Elapsed = %v, want reset to 0", s.Elapsed())
	}
}

func TestSignalPerState(t *testing.T) {
	s := NewSimulation(DefaultParams())
	visited := map[TrainState]bool{}
	for i := 0; i < 3000; i++ {
		s.Advance(dt)
		st := s.State()
		visited[st] = true
		if got, want := s.Train().SignalGreen, SignalGreenIn(st); got != want {
			t.Fatalf("tick %d state %s: SignalGreen = %v, want %v", i, st, got, want)
		}
	}
	for _, st := range AllStates() {
		if !visited[st] {
			t.Errorf("state %s never visited", st)
		}
	}
	red := []TrainState{StoppedSignalRed, DoorsOpening, PassengersBoarding, DoorsClosing}
	for _, st := range red {
		if SignalGreenIn(st) {
			t.Errorf("SignalGreenIn(%s) = true, want false", st)
		}
	}
}

func TestDoorApertureBounds(t *testing.T) {
	s := NewSimulation(DefaultParams())
	steps := []float64{dt, 0.05, -1, math.NaN(), 0.2, 0.001, math.Inf(1), 0.033}
	for i := 0; i < 20000; i++ {
		s.Advance(steps[i%len(steps)])
		a := s.Train().DoorAperture
		if a < 0 || a > 1 {
			t.Fatalf("tick %d: DoorAperture = %v out of [0,1]", i, a)
		}
		if w := s.Train().WheelAngle; w < -360 || w > 0 {
			t.Fatalf("tick %d: WheelAngle = %v out of [-360,0]", i, w)
		}
	}
	if s.Cycle() == 0 {
		t.Fatal("no cycle completed with mixed step sizes")
	}
}

func TestBoardingGating(t *testing.T) {
	s := NewSimulation(DefaultParams())
	boarded := 0
	for i := 0; i < 3000; i++ {
		before := s.Passengers()
		events := s.Advance(dt)
		after := s.Passengers()
		for j := range after {
			if before[j].Active && !after[j].Active {
				if s.Train().DoorAperture <= 0.95 {
					t.Fatalf("tick %d: passenger %d boarded at aperture %v", i, j, s.Train().DoorAperture)
				}
				if s.State() != PassengersBoarding && s.State() != DoorsClosing {
					t.Fatalf("passenger %d deactivated in %s", j, s.State())
				}
			}
		}
		for _, e := range events {
			if e.Kind == EventBoarded {
				boarded++
			}
			if e.Kind == EventCycleCompleted && e.Boarded != 2 {
				t.Fatalf("cycle %d boarded %d, want 2", e.Cycle, e.Boarded)
			}
		}
	}
	if boarded < 2 {
		t.Fatalf("boarded = %d, want at least 2", boarded)
	}
}

func TestBoardingFloorWithNoPassengers(t *testing.T) {
	s := NewSimulation(DefaultParams())
	runUntil(t, s, 2000, func() bool { return s.State() == PassengersBoarding })
	for i := range s.passengers {
		s.passengers[i].Deactivate()
	}
	n := runUntil(t, s, 200, func() bool { return s.State() == DoorsClosing })
	if n < 25 || n > 27 {
		t.Fatalf("boarding with no passengers lasted %d ticks, want the 0.4s floor (~26)", n)
	}
}

func TestBoardingTargetFollowsTrain(t *testing.T) {
	s := NewSimulation(DefaultParams())
	runUntil(t, s, 2000, func() bool { return s.State() == PassengersBoarding })
	if got := s.BoardingTargetX(); got != 420+305 {
		t.Fatalf("BoardingTargetX = %v, want 725", got)
	}
	s.train.PositionX = 400
	if got := s.BoardingTargetX(); got != 705 {
		t.Fatalf("BoardingTargetX after move = %v, want 705", got)
	}
}

func TestInvalidStepIgnored(t *testing.T) {
	s := NewSimulation(DefaultParams())
	s.Advance(dt)
	before := s.Snapshot()
	for _, bad := range []float64{-0.5, math.NaN(), math.Inf(-1), math.Inf(1)} {
		s.Advance(bad)
	}
	after := s.Snapshot()
	if after.Train != before.Train || after.Elapsed != before.Elapsed || after.SimTime != before.SimTime {
		t.Fatalf("invalid dt changed state: before %+v after %+v", before, after)
	}
	if after.Tick != before.Tick+4 {
		t.Fatalf("Tick = %d, want %d", after.Tick, before.Tick+4)
	}
}

func TestNightModeDoesNotAffectTiming(t *testing.T) {
	day := NewSimulation(DefaultParams())
	night := NewSimulation(DefaultParams())
	night.SetMode(true)
	for i := 0; i < 1500; i++ {
		day.Advance(dt)
		night.Advance(dt)
		if day.State() != night.State() || day.Train() != night.Train() {
			t.Fatalf("tick %d diverged: %s/%+v vs %s/%+v", i, day.State(), day.Train(), night.State(), night.Train())
		}
	}
	if !night.Night() || day.Night() {
		t.Fatal("mode flag not kept")
	}
}

func TestElapsedResetsOnTransition(t *testing.T) {
	s := NewSimulation(DefaultParams())
	for i := 0; i < 3000; i++ {
		for _, e := range s.Advance(dt) {
			if e.Kind == EventTransition && s.Elapsed() != 0 {
				t.Fatalf("Elapsed = %v right after %s -> %s", s.Elapsed(), e.From, e.To)
			}
		}
	}
}

func TestCloudsDriftAndWrap(t *testing.T) {
	p := DefaultParams()
	p.Clouds = []Cloud{{X: 1000, Y: 500, Speed: 40, Scale: 1}}
	s := NewSimulation(p)
	s.Advance(0.25)
	if got := s.Clouds()[0].X; got != 1010 {
		t.Fatalf("cloud x = %v, want 1010", got)
	}
	s.Advance(2)
	if got := s.Clouds()[0].X; got != -60 {
		t.Fatalf("cloud x = %v, want wrapped to -60", got)
	}
}

func TestStateString(t *testing.T) {
	if MovingAway.String() != "moving_away" {
		t.Fatalf("String = %q", MovingAway.String())
	}
	if TrainState(99).String() != "unknown" {
		t.Fatalf("out of range String = %q", TrainState(99).String())
	}
}

func TestTrainStillDuringDwell(t *testing.T) {
	s := NewSimulation(DefaultParams())
	var x float64
	wasDwell := false
	for i := 0; i < 3000; i++ {
		s.Advance(dt)
		dwell := Dwell(s.State())
		if dwell && wasDwell && s.Train().PositionX != x {
			t.Fatalf("train moved during %s", s.State())
		}
		wasDwell, x = dwell, s.Train().PositionX
	}
	if got := s.Snapshot().Boarded; got != s.BoardedCount() {
		t.Fatalf("Snapshot.Boarded = %d, want %d", got, s.BoardedCount())
	}
}
