package transform

import (
	"math"

	"github.com/gogpu/gg"

	"metro-simulator/internal/raster"
)

// Stack is a push/pop stack of 2D affine transforms. Operations compose by
// post-multiplication, so the most recently added transform is applied to
// object coordinates first.
type Stack struct {
	current gg.Matrix
	saved   []gg.Matrix
}

// NewStack returns a stack holding the identity transform.
func NewStack() *Stack {
	return &Stack{current: gg.Identity(), saved: make([]gg.Matrix, 0, 8)}
}

// Push saves the current transform.
func (s *Stack) Push() {
	s.saved = append(s.saved, s.current)
}

// Pop restores the most recently pushed transform. It reports false and
// leaves the stack untouched when nothing was pushed.
func (s *Stack) Pop() bool {
	if len(s.saved) == 0 {
		return false
	}
	s.current = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
	return true
}

// Scoped runs fn between a Push and a Pop.
func (s *Stack) Scoped(fn func()) {
	s.Push()
	defer s.Pop()
	fn()
}

// Depth is the number of saved transforms.
func (s *Stack) Depth() int { return len(s.saved) }

func (s *Stack) Translate(x, y float64) {
	s.current = s.current.Multiply(gg.Translate(x, y))
}

func (s *Stack) Scale(sx, sy float64) {
	s.current = s.current.Multiply(gg.Scale(sx, sy))
}

// Rotate rotates counter-clockwise about the local origin by deg degrees.
func (s *Stack) Rotate(deg float64) {
	s.current = s.current.Multiply(gg.Rotate(deg * math.Pi / 180))
}

// RotateAbout rotates by deg degrees about the local pivot (px,py).
func (s *Stack) RotateAbout(deg, px, py float64) {
	s.Translate(px, py)
	s.Rotate(deg)
	s.Translate(-px, -py)
}

// Matrix returns the current transform.
func (s *Stack) Matrix() gg.Matrix { return s.current }

// Apply maps a local point through the current transform.
func (s *Stack) Apply(x, y float64) (float64, float64) {
	p := s.current.TransformPoint(gg.Pt(x, y))
	return p.X, p.Y
}

// ApplyPoints maps local pixel points through the current transform,
// rounding the results back to the pixel grid.
func (s *Stack) ApplyPoints(pts []raster.Point) []raster.Point {
	if s.current.IsIdentity() {
		return pts
	}
	out := make([]raster.Point, len(pts))
	for i, p := range pts {
		x, y := s.Apply(float64(p.X), float64(p.Y))
		out[i] = raster.Point{X: int(math.Round(x)), Y: int(math.Round(y))}
	}
	return out
}

// Rect returns the corners of a local w×h rectangle at (x,y) mapped through
// the current transform, in drawing order.
func (s *Stack) Rect(x, y, w, h float64) []gg.Point {
	corners := [4][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	out := make([]gg.Point, 0, 4)
	for _, c := range corners {
		px, py := s.Apply(c[0], c[1])
		out = append(out, gg.Pt(px, py))
	}
	return out
}
