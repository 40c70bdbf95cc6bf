package metro

import "math"

// Train is the renderer-facing train state. It is mutated only by
// Simulation.Advance.
type Train struct {
	PositionX    float64 // world x of the train reference point
	Speed        float64 // px/sec
	WheelAngle   float64 // degrees in [-360, 0]
	DoorAperture float64 // 0 closed .. 1 fully open
	SignalGreen  bool
}

// EventKind classifies what happened during a tick.
type EventKind int

const (
	EventTransition EventKind = iota
	EventBoarded
	EventCycleCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventTransition:
		return "transition"
	case EventBoarded:
		return "boarded"
	case EventCycleCompleted:
		return "cycle_completed"
	}
	return "unknown"
}

// Event is a discrete occurrence reported by Advance.
type Event struct {
	Kind EventKind
	Tick uint64

	// Transition
	From, To TrainState

	// Boarded
	Passenger int

	// CycleCompleted carries the cycle counter after the rollover and how
	// many passengers boarded during the finished cycle.
	Cycle   int
	Boarded int
}

type phase struct {
	enter func(s *Simulation)
	// tick runs the per-tick behaviour and reports the next state when
	// the exit condition holds.
	tick func(s *Simulation, dt float64) (TrainState, bool)
}

var phases = map[TrainState]phase{
	MovingToStation: {
		enter: func(s *Simulation) { s.train.DoorAperture = 0 },
		tick:  (*Simulation).tickMovingToStation,
	},
	Arriving: {
		tick: func(s *Simulation, _ float64) (TrainState, bool) {
			return StoppedSignalRed, s.elapsed > s.params.ArriveDuration
		},
	},
	StoppedSignalRed: {
		tick: func(s *Simulation, _ float64) (TrainState, bool) {
			return DoorsOpening, s.elapsed > s.params.RedDuration
		},
	},
	DoorsOpening: {
		tick: (*Simulation).tickDoorsOpening,
	},
	PassengersBoarding: {
		tick: (*Simulation).tickBoarding,
	},
	DoorsClosing: {
		tick: (*Simulation).tickDoorsClosing,
	},
	SignalGreenWait: {
		tick: func(s *Simulation, _ float64) (TrainState, bool) {
			return MovingAway, s.elapsed > s.params.GreenWaitDuration
		},
	},
	MovingAway: {
		tick: (*Simulation).tickMovingAway,
	},
}

// Simulation owns the whole animated state: the train state machine, the
// two passengers and the drifting clouds. It is not safe for concurrent
// use; one driver calls Advance and the render pass reads between ticks.
type Simulation struct {
	params Params

	state   TrainState
	elapsed float64
	cycle   int
	tick    uint64
	simTime float64
	boarded int

	train      Train
	passengers [2]Passenger
	clouds     []Cloud
	night      bool

	pending []Event
}

// NewSimulation starts a simulation in MovingToStation with the train at
// p.StartX and both passengers at their spawn positions.
func NewSimulation(p Params) *Simulation {
	s := &Simulation{
		params: p,
		train:  Train{PositionX: p.StartX, Speed: p.TrainSpeed},
		clouds: append([]Cloud(nil), p.Clouds...),
	}
	s.spawnPassengers()
	s.enter(MovingToStation)
	return s
}

// Advance moves the simulation forward by dt seconds and returns the events
// of this tick. Negative or non-finite dt is treated as zero.
func (s *Simulation) Advance(dt float64) []Event {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = 0
	}
	s.tick++
	s.simTime += dt
	s.elapsed += dt

	for i := range s.clouds {
		s.clouds[i].drift(dt, s.params.ViewportWidth)
	}

	if next, ok := phases[s.state].tick(s, dt); ok {
		s.transition(next)
	}

	events := s.pending
	s.pending = nil
	return events
}

// SetMode selects the night palette. It has no effect on timing or geometry.
func (s *Simulation) SetMode(night bool) { s.night = night }

func (s *Simulation) Night() bool       { return s.night }
func (s *Simulation) State() TrainState { return s.state }
func (s *Simulation) Elapsed() float64  { return s.elapsed }
func (s *Simulation) Cycle() int        { return s.cycle }
func (s *Simulation) Tick() uint64      { return s.tick }
func (s *Simulation) SimTime() float64  { return s.simTime }
func (s *Simulation) Train() Train      { return s.train }
func (s *Simulation) Params() Params    { return s.params }
func (s *Simulation) BoardedCount() int { return s.boarded }
func (s *Simulation) Clouds() []Cloud   { return append([]Cloud(nil), s.clouds...) }
func (s *Simulation) Passengers() []Passenger {
	return []Passenger{s.passengers[0], s.passengers[1]}
}

// BoardingTargetX is the world x passengers walk to. It follows the live
// train position.
func (s *Simulation) BoardingTargetX() float64 {
	return s.train.PositionX + s.params.DoorOffset
}

// Snapshot is a copy of everything the renderer and publishers read.
type Snapshot struct {
	Tick       uint64
	SimTime    float64
	State      TrainState
	Elapsed    float64
	Cycle      int
	Boarded    int
	Night      bool
	Train      Train
	Passengers []Passenger
	Clouds     []Cloud
}

func (s *Simulation) Snapshot() Snapshot {
	return Snapshot{
		Tick:       s.tick,
		SimTime:    s.simTime,
		State:      s.state,
		Elapsed:    s.elapsed,
		Cycle:      s.cycle,
		Boarded:    s.boarded,
		Night:      s.night,
		Train:      s.train,
		Passengers: s.Passengers(),
		Clouds:     s.Clouds(),
	}
}

func (s *Simulation) transition(next TrainState) {
	from := s.state
	s.enter(next)
	s.emit(Event{Kind: EventTransition, From: from, To: next})
}

func (s *Simulation) enter(st TrainState) {
	s.state = st
	s.elapsed = 0
	s.train.SignalGreen = SignalGreenIn(st)
	if fn := phases[st].enter; fn != nil {
		fn(s)
	}
}

func (s *Simulation) emit(e Event) {
	e.Tick = s.tick
	s.pending = append(s.pending, e)
}

func (s *Simulation) spawnPassengers() {
	for i := range s.passengers {
		s.passengers[i].Respawn(s.params.Spawns[i])
	}
	s.boarded = 0
}

func (s *Simulation) spinWheels(dt float64) {
	s.train.WheelAngle -= 360 * s.params.WheelFactor * dt
	for s.train.WheelAngle < -360 {
		s.train.WheelAngle += 360
	}
}

func (s *Simulation) tickMovingToStation(dt float64) (TrainState, bool) {
	s.train.PositionX += s.train.Speed * dt
	s.spinWheels(dt)
	if s.train.PositionX >= s.params.StopTarget {
		s.train.PositionX = s.params.StopTarget
		return Arriving, true
	}
	return 0, false
}

func (s *Simulation) tickDoorsOpening(dt float64) (TrainState, bool) {
	s.train.DoorAperture = math.Min(1, s.train.DoorAperture+s.params.DoorOpenRate*dt)
	return PassengersBoarding, s.train.DoorAperture >= 1 && s.elapsed > s.params.DoorsOpenMinimum
}

func (s *Simulation) tickBoarding(dt float64) (TrainState, bool) {
	target := s.BoardingTargetX()
	remaining := 0
	for i := range s.passengers {
		p := &s.passengers[i]
		if !p.Active {
			continue
		}
		p.MoveToward(target, dt)
		p.WalkPhase += s.params.WalkRate * dt
		if math.Abs(p.X-target) < s.params.BoardingEpsilon && s.train.DoorAperture > s.params.BoardingApertureGT {
			p.Deactivate()
			s.boarded++
			s.emit(Event{Kind: EventBoarded, Passenger: i})
			continue
		}
		remaining++
	}
	return DoorsClosing, remaining == 0 && s.elapsed > s.params.BoardingMinimum
}

func (s *Simulation) tickDoorsClosing(dt float64) (TrainState, bool) {
	s.train.DoorAperture = math.Max(0, s.train.DoorAperture-s.params.DoorCloseRate*dt)
	return SignalGreenWait, s.train.DoorAperture <= 0
}

func (s *Simulation) tickMovingAway(dt float64) (TrainState, bool) {
	s.train.PositionX += s.train.Speed * dt
	s.spinWheels(dt)
	if s.train.PositionX <= s.params.ViewportWidth+s.params.ExitMargin {
		return 0, false
	}
	s.train.PositionX = -s.params.TrainLength
	s.train.DoorAperture = 0
	s.cycle++
	s.emit(Event{Kind: EventCycleCompleted, Cycle: s.cycle, Boarded: s.boarded})
	s.spawnPassengers()
	return MovingToStation, true
}
