package metro

import "math"

// Passenger is a walker on the platform. Active from spawn until it reaches
// the boarding target while the doors are open.
type Passenger struct {
	Active    bool
	X, Y      float64
	Speed     float64 // px/sec
	WalkPhase float64 // radians, drives the leg swing
}

// Respawn places p at s and reactivates it. It is the only way back to
// Active once a passenger has boarded.
func (p *Passenger) Respawn(s Spawn) {
	*p = Passenger{Active: true, X: s.X, Y: s.Y, Speed: s.Speed, WalkPhase: s.WalkPhase}
}

// MoveToward steps p horizontally toward targetX at its own speed,
// snapping onto the target when within one step.
func (p *Passenger) MoveToward(targetX, dt float64) {
	step := p.Speed * dt
	dx := targetX - p.X
	switch {
	case math.Abs(dx) <= step:
		p.X = targetX
	case dx > 0:
		p.X += step
	default:
		p.X -= step
	}
}

// Deactivate marks p as boarded. It is one-way.
func (p *Passenger) Deactivate() { p.Active = false }

// LegSwing is the leg rotation in degrees for the current walk phase.
func (p Passenger) LegSwing() float64 { return math.Sin(p.WalkPhase) * 22 }
