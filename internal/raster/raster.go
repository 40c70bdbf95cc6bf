package raster

import "math"

// Point is an integer pixel coordinate.
type Point struct {
	X, Y int
}

// LineDDA returns the pixels of the segment (x1,y1)-(x2,y2) using the
// incremental (DDA) algorithm. Both endpoints are included, also for
// fractional spans, where the step count is rounded up.
func LineDDA(x1, y1, x2, y2 float64) []Point {
	dx := x2 - x1
	dy := y2 - y1

	steps := math.Ceil(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps < 1 || math.IsNaN(steps) || math.IsInf(steps, 0) {
		steps = 1
	}
	xInc := dx / steps
	yInc := dy / steps

	n := int(steps)
	pts := make([]Point, 0, n+1)
	for i := 0; i < n; i++ {
		t := float64(i)
		pts = append(pts, Point{X: round(x1 + t*xInc), Y: round(y1 + t*yInc)})
	}
	return append(pts, Point{X: round(x2), Y: round(y2)})
}

// LineBresenham returns the pixels of the segment (x1,y1)-(x2,y2) using
// integer error accumulation. A degenerate segment yields one point.
func LineBresenham(x1, y1, x2, y2 int) []Point {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}

	err := dx - dy
	pts := make([]Point, 0, max(dx, dy)+1)
	for {
		pts = append(pts, Point{X: x1, Y: y1})
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
	return pts
}

// CircleMidpoint returns the outline of a circle of radius r centred on
// (cx,cy). One octant is computed with the midpoint decision variable and
// mirrored into the other seven. Duplicates are dropped, first emission wins,
// so r == 0 yields only the centre. Negative radii are treated as zero.
func CircleMidpoint(cx, cy, r int) []Point {
	if r < 0 {
		r = 0
	}
	x, y := 0, r
	d := 1 - r

	seen := make(map[Point]struct{}, 8*(r+1))
	pts := make([]Point, 0, 8*(r+1))
	emit := func(p Point) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		pts = append(pts, p)
	}
	plot8 := func(px, py int) {
		emit(Point{cx + px, cy + py})
		emit(Point{cx - px, cy + py})
		emit(Point{cx + px, cy - py})
		emit(Point{cx - px, cy - py})
		emit(Point{cx + py, cy + px})
		emit(Point{cx - py, cy + px})
		emit(Point{cx + py, cy - px})
		emit(Point{cx - py, cy - px})
	}

	plot8(x, y)
	for x < y {
		x++
		if d < 0 {
			d += 2*x + 1
		} else {
			y--
			d += 2*(x-y) + 1
		}
		plot8(x, y)
	}
	return pts
}

// RectOutlineDDA traces the four edges of a w×h rectangle anchored at (x,y)
// with LineDDA.
func RectOutlineDDA(x, y, w, h int) []Point {
	fx, fy, fw, fh := float64(x), float64(y), float64(w), float64(h)
	var pts []Point
	pts = append(pts, LineDDA(fx, fy, fx+fw, fy)...)
	pts = append(pts, LineDDA(fx+fw, fy, fx+fw, fy+fh)...)
	pts = append(pts, LineDDA(fx+fw, fy+fh, fx, fy+fh)...)
	pts = append(pts, LineDDA(fx, fy+fh, fx, fy)...)
	return pts
}

// RectOutlineBresenham is RectOutlineDDA with LineBresenham edges.
func RectOutlineBresenham(x, y, w, h int) []Point {
	var pts []Point
	pts = append(pts, LineBresenham(x, y, x+w, y)...)
	pts = append(pts, LineBresenham(x+w, y, x+w, y+h)...)
	pts = append(pts, LineBresenham(x+w, y+h, x, y+h)...)
	pts = append(pts, LineBresenham(x, y+h, x, y)...)
	return pts
}

// round rounds half away from zero.
func round(v float64) int { return int(math.Round(v)) }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
