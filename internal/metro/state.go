package metro

// TrainState is the phase of the arrival/boarding/departure cycle.
type TrainState int

const (
	MovingToStation TrainState = iota
	Arriving
	StoppedSignalRed
	DoorsOpening
	PassengersBoarding
	DoorsClosing
	SignalGreenWait
	MovingAway
)

var stateNames = [...]string{
	MovingToStation:    "moving_to_station",
	Arriving:           "arriving",
	StoppedSignalRed:   "stopped_signal_red",
	DoorsOpening:       "doors_opening",
	PassengersBoarding: "passengers_boarding",
	DoorsClosing:       "doors_closing",
	SignalGreenWait:    "signal_green_wait",
	MovingAway:         "moving_away",
}

func (s TrainState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// AllStates lists every state in cycle order.
func AllStates() []TrainState {
	return []TrainState{
		MovingToStation, Arriving, StoppedSignalRed, DoorsOpening,
		PassengersBoarding, DoorsClosing, SignalGreenWait, MovingAway,
	}
}

// SignalGreenIn reports the signal aspect shown while in s. The signal is
// red from the stop through door closing.
func SignalGreenIn(s TrainState) bool {
	switch s {
	case StoppedSignalRed, DoorsOpening, PassengersBoarding, DoorsClosing:
		return false
	default:
		return true
	}
}

// Dwell reports whether the train is stationary at the platform in s.
func Dwell(s TrainState) bool {
	return s != MovingToStation && s != MovingAway
}
