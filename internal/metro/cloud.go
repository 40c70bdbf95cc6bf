package metro

// Cloud is a piece of drifting scenery. Clouds do not interact with the
// train cycle.
type Cloud struct {
	X, Y  float64
	Speed float64 // px/sec
	Scale float64
}

const cloudWrap = 60

func (c *Cloud) drift(dt, width float64) {
	c.X += c.Speed * dt
	if c.X > width+cloudWrap {
		c.X = -cloudWrap
	}
}
