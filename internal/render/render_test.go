package render

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/gogpu/gg"

	"metro-simulator/internal/metro"
	"metro-simulator/internal/raster"
	"metro-simulator/internal/scene"
)

func near(a, b gg.RGBA) bool {
	const tol = 2.0 / 255
	return math.Abs(a.R-b.R) <= tol && math.Abs(a.G-b.G) <= tol && math.Abs(a.B-b.B) <= tol
}

func TestImageCanvasPlot(t *testing.T) {
	c := NewImageCanvas(20, 10, 2)
	defer c.Close()
	red := gg.RGB(1, 0, 0)
	c.SetColor(red)
	c.Plot([]raster.Point{{X: 3, Y: 4}, {X: 19, Y: 9}, {X: -5, Y: 50}})

	for _, p := range []raster.Point{{X: 3, Y: 4}, {X: 4, Y: 4}, {X: 3, Y: 5}, {X: 4, Y: 5}, {X: 19, Y: 9}} {
		if got := c.Pixel(p.X, p.Y); !near(got, red) || got.A != 1 {
			t.Errorf("pixel %v = %+v, want red", p, got)
		}
	}
	if got := c.Pixel(5, 4); got.A != 0 {
		t.Errorf("pixel outside point = %+v, want untouched", got)
	}
}

func TestImageCanvasFillPolygon(t *testing.T) {
	c := NewImageCanvas(40, 40, 1)
	defer c.Close()
	blue := gg.RGB(0, 0, 1)
	c.SetColor(blue)
	c.FillPolygon([]gg.Point{{X: 10, Y: 10}, {X: 30, Y: 10}, {X: 30, Y: 30}, {X: 10, Y: 30}})
	c.FillPolygon([]gg.Point{{X: 0, Y: 0}, {X: 5, Y: 5}})
	if err := c.Err(); err != nil {
		t.Fatalf("Err = %v", err)
	}
	if got := c.Pixel(20, 20); !near(got, blue) {
		t.Fatalf("centre = %+v, want blue", got)
	}
	if got := c.Pixel(2, 2); got.A != 0 {
		t.Fatalf("outside = %+v, want transparent", got)
	}
}

// sameColor allows for the 8-bit rounding done by the pixmap.
func sameColor(a, b tcell.Color) bool {
	ar, ag, ab := a.RGB()
	br, bg, bb := b.RGB()
	d := func(x, y int32) bool { return x-y <= 2 && y-x <= 2 }
	return d(ar, br) && d(ag, bg) && d(ab, bb)
}

type view struct{ sim *metro.Simulation }

func (v view) Night() bool                   { return v.sim.Night() }
func (v view) Train() metro.Train            { return v.sim.Train() }
func (v view) Passengers() []metro.Passenger { return v.sim.Passengers() }
func (v view) Clouds() []metro.Cloud         { return v.sim.Clouds() }

func TestImageCanvasSnapshot(t *testing.T) {
	sim := metro.NewSimulation(metro.DefaultParams())
	for i := 0; i < 400; i++ {
		sim.Advance(0.016)
	}
	c := NewImageCanvas(scene.WorldWidth, scene.WorldHeight, 2)
	defer c.Close()
	if err := c.Render(view{sim}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	day := scene.PaletteFor(false)
	if got := c.Pixel(2, 2); !near(got, day.Sky) {
		t.Fatalf("top-left = %+v, want sky %+v", got, day.Sky)
	}
	if got := c.Pixel(2, scene.WorldHeight-2); !near(got, day.Ground) {
		t.Fatalf("bottom-left = %+v, want ground %+v", got, day.Ground)
	}

	path := filepath.Join(t.TempDir(), "metro.png")
	if err := c.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != scene.WorldWidth || b.Dy() != scene.WorldHeight {
		t.Fatalf("bounds = %v", b)
	}
}

func TestImageCanvasRenderClearsPreviousError(t *testing.T) {
	sim := metro.NewSimulation(metro.DefaultParams())
	c := NewImageCanvas(scene.WorldWidth, scene.WorldHeight, 2)
	defer c.Close()

	c.err = errors.New("fill failed")
	if err := c.Render(view{sim}); err != nil {
		t.Fatalf("Render after a failed frame = %v, want nil", err)
	}
	if err := c.Err(); err != nil {
		t.Fatalf("Err = %v, want nil", err)
	}
}

func TestTerminalRender(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(50, 15)

	sim := metro.NewSimulation(metro.DefaultParams())
	term := NewTerminal(screen)
	defer term.Close()
	if err := term.Render(view{sim}); err != nil {
		t.Fatalf("Render: %v", err)
	}

	r, _, style, _ := screen.GetContent(1, 1)
	if r != halfBlock {
		t.Fatalf("cell rune = %q, want half block", r)
	}
	fg, _, _ := style.Decompose()
	sky := cellColor(scene.PaletteFor(false).Sky)
	if !sameColor(fg, sky) {
		t.Fatalf("top-left fg = %v, want sky %v", fg, sky)
	}

	_, _, style, _ = screen.GetContent(1, 13)
	_, bg, _ := style.Decompose()
	if want := cellColor(scene.PaletteFor(false).Ground); !sameColor(bg, want) {
		t.Fatalf("bottom-left bg = %v, want ground %v", bg, want)
	}

	// Night changes the sky cell.
	sim.SetMode(true)
	if err := term.Render(view{sim}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	_, _, style, _ = screen.GetContent(1, 1)
	fg, _, _ = style.Decompose()
	if want := cellColor(scene.PaletteFor(true).Sky); !sameColor(fg, want) {
		t.Fatalf("night fg = %v, want %v", fg, want)
	}
}

func TestTerminalResize(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(20, 8)

	term := NewTerminal(screen)
	sim := metro.NewSimulation(metro.DefaultParams())
	if err := term.Render(view{sim}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	screen.SetSize(30, 10)
	if err := term.Render(view{sim}); err != nil {
		t.Fatalf("Render after resize: %v", err)
	}
	if w, h := term.canvas.Size(); w != 30 || h != 20 {
		t.Fatalf("canvas = %dx%d, want 30x20", w, h)
	}
}

func TestChannel(t *testing.T) {
	tests := []struct {
		in   float64
		want int32
	}{{-1, 0}, {0, 0}, {0.5, 128}, {1, 255}, {2, 255}}
	for _, tt := range tests {
		if got := channel(tt.in); got != tt.want {
			t.Errorf("channel(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
