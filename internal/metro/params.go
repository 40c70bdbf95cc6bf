package metro

// Spawn is a passenger's starting placement for a cycle.
type Spawn struct {
	X, Y      float64
	Speed     float64 // px/sec
	WalkPhase float64 // radians
}

// Params holds the scene geometry, rates and phase durations. All
// durations are simulation seconds.
type Params struct {
	ViewportWidth float64
	ExitMargin    float64 // train resets once positionX > ViewportWidth+ExitMargin

	TrainSpeed  float64 // px/sec
	TrainLength float64 // positionX after a cycle rollover is -TrainLength
	StartX      float64
	StopTarget  float64

	WheelFactor float64 // revolutions per second while moving

	DoorOpenRate  float64 // aperture per second
	DoorCloseRate float64
	// DoorOffset is the distance from the train reference point to the
	// boarding target on the middle coach.
	DoorOffset float64

	ArriveDuration     float64
	RedDuration        float64
	DoorsOpenMinimum   float64
	BoardingMinimum    float64
	GreenWaitDuration  float64
	BoardingEpsilon    float64
	BoardingApertureGT float64

	WalkRate float64 // radians per second

	Spawns [2]Spawn
	Clouds []Cloud
}

// DefaultParams reproduces the reference metro scene.
func DefaultParams() Params {
	return Params{
		ViewportWidth: 1000,
		ExitMargin:    50,

		TrainSpeed:  220,
		TrainLength: 520,
		StartX:      -520,
		StopTarget:  420,

		WheelFactor: 1.2,

		DoorOpenRate:  1.3,
		DoorCloseRate: 1.3,
		DoorOffset:    240 + 65,

		ArriveDuration:     0.35,
		RedDuration:        0.6,
		DoorsOpenMinimum:   0.2,
		BoardingMinimum:    0.4,
		GreenWaitDuration:  0.5,
		BoardingEpsilon:    2,
		BoardingApertureGT: 0.95,

		WalkRate: 8,

		Spawns: [2]Spawn{
			{X: 760, Y: 170, Speed: 90, WalkPhase: 0},
			{X: 820, Y: 170, Speed: 80, WalkPhase: 1.2},
		},
		Clouds: []Cloud{
			{X: 120, Y: 520, Speed: 25, Scale: 1.0},
			{X: 520, Y: 480, Speed: 20, Scale: 1.1},
			{X: 860, Y: 540, Speed: 27.5, Scale: 0.9},
		},
	}
}
