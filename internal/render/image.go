// Package render hosts scene.Canvas implementations: an offscreen gg
// image for PNG snapshots and a tcell terminal view.
package render

import (
	"io"

	"github.com/gogpu/gg"

	"metro-simulator/internal/raster"
	"metro-simulator/internal/scene"
)

// ImageCanvas draws onto an offscreen gg context. Points are plotted as
// pointSize×pointSize squares.
type ImageCanvas struct {
	dc        *gg.Context
	color     gg.RGBA
	pointSize int
	err       error
}

func NewImageCanvas(width, height, pointSize int) *ImageCanvas {
	if pointSize < 1 {
		pointSize = 1
	}
	return &ImageCanvas{dc: gg.NewContext(width, height), pointSize: pointSize, color: gg.RGB(0, 0, 0)}
}

func (c *ImageCanvas) Size() (int, int) { return c.dc.Width(), c.dc.Height() }

func (c *ImageCanvas) SetColor(col gg.RGBA) {
	c.color = col
	c.dc.SetRGBA(col.R, col.G, col.B, col.A)
}

func (c *ImageCanvas) Plot(pts []raster.Point) {
	for _, p := range pts {
		for dy := 0; dy < c.pointSize; dy++ {
			for dx := 0; dx < c.pointSize; dx++ {
				c.dc.SetPixel(p.X+dx, p.Y+dy, c.color)
			}
		}
	}
}

// FillPolygon fills a closed polygon. Fewer than three vertices draw
// nothing. The first fill error is kept and reported by Err.
func (c *ImageCanvas) FillPolygon(pts []gg.Point) {
	if len(pts) < 3 {
		return
	}
	c.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		c.dc.LineTo(p.X, p.Y)
	}
	c.dc.ClosePath()
	if err := c.dc.Fill(); err != nil && c.err == nil {
		c.err = err
	}
}

// Render composes one frame of v. Err is reset first, so a failed frame
// does not poison the next one.
func (c *ImageCanvas) Render(v scene.View) error {
	c.err = nil
	scene.Compose(c, v)
	return c.err
}

// Pixel reads back one pixel; out of range returns transparent.
func (c *ImageCanvas) Pixel(x, y int) gg.RGBA {
	return c.dc.ResizeTarget().GetPixel(x, y)
}

func (c *ImageCanvas) Err() error { return c.err }

func (c *ImageCanvas) SavePNG(path string) error { return c.dc.SavePNG(path) }

func (c *ImageCanvas) EncodePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

func (c *ImageCanvas) Close() error { return c.dc.Close() }
