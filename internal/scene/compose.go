package scene

import (
	"github.com/gogpu/gg"

	"metro-simulator/internal/metro"
	"metro-simulator/internal/raster"
	"metro-simulator/internal/transform"
)

// World dimensions. World space has its origin bottom-left with y up.
const (
	WorldWidth  = 1000
	WorldHeight = 600
)

const (
	trainY      = 135.0
	coaches     = 3
	coachW      = 170.0
	coachH      = 70.0
	coachGap    = 8.0
	wheelRadius = 12
)

// Canvas is the host drawing surface. Coordinates are device pixels with
// the origin top-left.
type Canvas interface {
	Size() (width, height int)
	SetColor(c gg.RGBA)
	Plot(pts []raster.Point)
	FillPolygon(pts []gg.Point)
}

// View is the read-only state the composer draws.
type View interface {
	Night() bool
	Train() metro.Train
	Passengers() []metro.Passenger
	Clouds() []metro.Cloud
}

type composer struct {
	c   Canvas
	st  *transform.Stack
	pal Palette
}

// Compose draws one frame of v onto c, back to front.
func Compose(c Canvas, v View) {
	w, h := c.Size()
	cp := &composer{c: c, st: transform.NewStack(), pal: PaletteFor(v.Night())}

	cp.st.Translate(0, float64(h))
	cp.st.Scale(float64(w)/WorldWidth, -float64(h)/WorldHeight)

	cp.sky()
	cp.sunMoon(v.Night())
	cp.buildings()
	cp.station()
	cp.track()
	tr := v.Train()
	cp.signal(tr.SignalGreen)
	for _, cl := range v.Clouds() {
		cp.st.Scoped(func() {
			cp.st.Translate(cl.X, cl.Y)
			cp.st.Scale(cl.Scale, cl.Scale)
			cp.cloud()
		})
	}
	for _, p := range v.Passengers() {
		cp.passenger(p)
	}
	cp.train(tr)
}

func (cp *composer) color(col gg.RGBA) { cp.c.SetColor(col) }

func (cp *composer) fillRect(x, y, w, h float64) {
	cp.c.FillPolygon(cp.st.Rect(x, y, w, h))
}

func (cp *composer) plot(pts []raster.Point) {
	cp.c.Plot(cp.st.ApplyPoints(pts))
}

func (cp *composer) sky() {
	cp.color(cp.pal.Sky)
	cp.fillRect(0, 0, WorldWidth, WorldHeight)
	cp.color(cp.pal.Ground)
	cp.fillRect(0, 0, WorldWidth, 150)
}

func (cp *composer) sunMoon(night bool) {
	if !night {
		cp.color(cp.pal.Sun)
		cp.plot(raster.CircleMidpoint(880, 520, 35))
		return
	}
	cp.color(cp.pal.Moon)
	cp.plot(raster.CircleMidpoint(880, 520, 30))
	cp.color(cp.pal.MoonShadow)
	cp.plot(raster.CircleMidpoint(892, 528, 26))
}

type building struct{ x, y, w, h, s float64 }

var skyline = []building{
	{40, 230, 120, 170, 1.0},
	{180, 230, 90, 140, 1.0},
	{290, 230, 140, 190, 1.0},
	{460, 230, 110, 160, 1.0},
	{590, 230, 160, 210, 1.0},
	{780, 230, 120, 175, 1.0},
}

func (cp *composer) buildings() {
	const cols, rows = 4, 5
	for _, b := range skyline {
		cp.st.Scoped(func() {
			cp.st.Translate(b.x, b.y)
			cp.st.Scale(b.s, b.s)

			cp.color(cp.pal.BuildingFill)
			cp.fillRect(0, 0, b.w, b.h)
			cp.color(cp.pal.BuildingOutline)
			cp.plot(raster.RectOutlineDDA(0, 0, int(b.w), int(b.h)))

			wx := b.w / (cols + 1)
			wy := b.h / (rows + 1)
			cp.color(cp.pal.BuildingWindow)
			for r := 1; r <= rows; r++ {
				for c := 1; c <= cols; c++ {
					cp.fillRect(float64(c)*wx-10, float64(r)*wy-8, 18, 14)
				}
			}
		})
	}
}

func (cp *composer) station() {
	cp.color(cp.pal.Platform)
	cp.fillRect(0, 150, WorldWidth, 80)
	cp.color(cp.pal.PlatformEdge)
	cp.plot(raster.LineBresenham(0, 150, WorldWidth, 150))

	cp.color(cp.pal.StationFill)
	cp.fillRect(680, 230, 280, 170)
	cp.color(cp.pal.StationOutline)
	cp.plot(raster.RectOutlineBresenham(680, 230, 280, 170))

	cp.color(cp.pal.StationSign)
	cp.fillRect(740, 350, 160, 40)
	cp.color(cp.pal.SignText)
	for _, s := range metroLetters {
		cp.plot(raster.LineDDA(s[0], s[1], s[2], s[3]))
	}
	cp.plot(raster.CircleMidpoint(915, 370, 10))
}

// metroLetters spells METRO (the O is a circle) as DDA strokes.
var metroLetters = [][4]float64{
	// M
	{755, 360, 755, 380}, {755, 380, 765, 370}, {765, 370, 775, 380}, {775, 380, 775, 360},
	// E
	{790, 360, 790, 380}, {790, 380, 810, 380}, {790, 370, 805, 370}, {790, 360, 810, 360},
	// T
	{825, 380, 845, 380}, {835, 380, 835, 360},
	// R
	{860, 360, 860, 380}, {860, 380, 878, 380}, {878, 380, 878, 370}, {878, 370, 860, 370}, {860, 370, 880, 360},
}

func (cp *composer) track() {
	cp.color(cp.pal.Rail)
	cp.plot(raster.LineBresenham(0, 120, WorldWidth, 120))
	cp.plot(raster.LineBresenham(0, 95, WorldWidth, 95))

	cp.color(cp.pal.Sleeper)
	for x := 0; x < WorldWidth; x += 35 {
		cp.fillRect(float64(x), 92, 18, 32)
	}
}

func (cp *composer) signal(green bool) {
	cp.color(cp.pal.SignalPole)
	cp.fillRect(610, 150, 12, 140)
	cp.color(cp.pal.SignalHead)
	cp.fillRect(590, 260, 55, 85)

	red, grn := cp.pal.SignalRedOn, cp.pal.SignalGreenOff
	if green {
		red, grn = cp.pal.SignalRedOff, cp.pal.SignalGreenOn
	}
	cp.color(red)
	cp.plot(raster.CircleMidpoint(617, 320, 12))
	cp.color(grn)
	cp.plot(raster.CircleMidpoint(617, 285, 12))
}

func (cp *composer) cloud() {
	cp.color(cp.pal.Cloud)
	cp.fillRect(-35, -10, 90, 22)
	cp.plot(raster.CircleMidpoint(-20, 2, 18))
	cp.plot(raster.CircleMidpoint(5, 10, 22))
	cp.plot(raster.CircleMidpoint(30, 2, 18))
}

func (cp *composer) passenger(p metro.Passenger) {
	if !p.Active {
		return
	}
	cp.st.Scoped(func() {
		cp.st.Translate(p.X, p.Y)

		cp.color(cp.pal.PassengerBody)
		cp.fillRect(-6, 0, 12, 26)
		cp.color(cp.pal.PassengerHead)
		cp.plot(raster.CircleMidpoint(0, 34, 8))

		swing := p.LegSwing()
		cp.color(cp.pal.PassengerLegs)
		for _, leg := range [2]struct{ x, deg float64 }{{-3, swing}, {3, -swing}} {
			cp.st.Scoped(func() {
				cp.st.Translate(leg.x, 0)
				cp.st.Rotate(leg.deg)
				cp.fillRect(-2, -14, 4, 14)
			})
		}
	})
}

func (cp *composer) wheel(cx, cy, angle float64) {
	cp.st.Scoped(func() {
		cp.st.Translate(cx, cy)
		cp.st.Rotate(angle)
		cp.color(cp.pal.Wheel)
		cp.plot(raster.CircleMidpoint(0, 0, wheelRadius))
		const r = wheelRadius
		cp.plot(raster.LineDDA(0, 0, r, 0))
		cp.plot(raster.LineDDA(0, 0, -r, 0))
		cp.plot(raster.LineDDA(0, 0, 0, r))
		cp.plot(raster.LineDDA(0, 0, 0, -r))
	})
}

func (cp *composer) train(tr metro.Train) {
	cp.st.Scoped(func() {
		cp.st.Translate(tr.PositionX, trainY)

		for i := 0; i < coaches; i++ {
			ox := float64(i) * (coachW + coachGap)

			cp.color(cp.pal.CoachBody)
			cp.fillRect(ox, 20, coachW, coachH)
			cp.color(cp.pal.CoachRoof)
			cp.fillRect(ox, 85, coachW, 12)
			cp.color(cp.pal.CoachWindow)
			cp.fillRect(ox+15, 55, coachW-30, 22)
			cp.color(cp.pal.CoachOutline)
			cp.plot(raster.RectOutlineBresenham(int(ox), 20, int(coachW), int(coachH)+12))

			if i == 1 {
				cp.doors(ox+65, 22, tr.DoorAperture)
			}
		}

		cabinX := coaches * (coachW + coachGap)
		cp.color(cp.pal.Cabin)
		cp.fillRect(cabinX, 30, 70, 60)
		cp.color(cp.pal.CabinWindow)
		cp.fillRect(cabinX+20, 60, 35, 18)

		for i := 0; i < coaches; i++ {
			ox := float64(i) * (coachW + coachGap)
			cp.wheel(ox+35, 18, tr.WheelAngle)
			cp.wheel(ox+coachW-35, 18, tr.WheelAngle)
		}
		cp.wheel(cabinX+20, 18, tr.WheelAngle)
		cp.wheel(cabinX+55, 18, tr.WheelAngle)
	})
}

// doors draws the middle-coach door: two panels that slide apart as the
// aperture opens.
func (cp *composer) doors(x, y, aperture float64) {
	const doorW, doorH = 40.0, 65.0
	cp.color(cp.pal.DoorFrame)
	cp.plot(raster.RectOutlineBresenham(int(x), int(y), int(doorW), int(doorH)))

	slide := doorW * 0.5 * aperture
	panel := doorW*0.5 - slide
	if panel <= 0 {
		return
	}
	cp.color(cp.pal.DoorPanel)
	cp.fillRect(x, y, panel, doorH)
	cp.fillRect(x+doorW*0.5+slide, y, panel, doorH)
}
