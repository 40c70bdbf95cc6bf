package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/gogpu/gg"

	"metro-simulator/internal/scene"
)

// halfBlock shows the upper pixel of a cell as foreground and the lower
// one as background, doubling vertical resolution.
const halfBlock = '▀'

// Terminal renders frames into a tcell screen. Each cell holds two
// vertically stacked pixels of an offscreen canvas sized to the screen.
type Terminal struct {
	screen     tcell.Screen
	canvas     *ImageCanvas
	cols, rows int
}

func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// Render composes v, copies it to the screen and shows it. A zero-sized
// screen is skipped.
func (t *Terminal) Render(v scene.View) error {
	cols, rows := t.screen.Size()
	if cols <= 0 || rows <= 0 {
		return nil
	}
	if t.canvas == nil || cols != t.cols || rows != t.rows {
		if t.canvas != nil {
			_ = t.canvas.Close()
		}
		t.canvas = NewImageCanvas(cols, rows*2, 1)
		t.cols, t.rows = cols, rows
	}

	if err := t.canvas.Render(v); err != nil {
		return err
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			style := tcell.StyleDefault.
				Foreground(cellColor(t.canvas.Pixel(x, 2*y))).
				Background(cellColor(t.canvas.Pixel(x, 2*y+1)))
			t.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}
	t.screen.Show()
	return nil
}

// Close releases the offscreen canvas. The screen belongs to the caller.
func (t *Terminal) Close() error {
	if t.canvas == nil {
		return nil
	}
	return t.canvas.Close()
}

func cellColor(c gg.RGBA) tcell.Color {
	return tcell.NewRGBColor(channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) int32 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return int32(v*255 + 0.5)
}
