// Package geom provides the small amount of plane geometry the placement
// resolver needs: points, rectangles and distances between them.
package geom

import "math"

// Point is a pointer position in viewport coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Rect is an axis-aligned rectangle in viewport coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// XYWH builds a Rect from its origin and size.
func XYWH(x, y, w, h float64) Rect {
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Empty reports whether r has no positive area.
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Contains reports whether p lies inside r, borders included.
func (r Rect) Contains(p Point) bool {
	return p.Y >= r.Top && p.Y <= r.Bottom && p.X >= r.Left && p.X <= r.Right
}

// Distance returns the euclidean distance from p to the closest point of r.
// It is zero when p is inside r.
func (r Rect) Distance(p Point) float64 {
	dx := math.Min(math.Abs(p.X-r.Left), math.Abs(p.X-r.Right))
	dy := math.Min(math.Abs(p.Y-r.Top), math.Abs(p.Y-r.Bottom))
	if p.X >= r.Left && p.X <= r.Right {
		dx = 0
	}
	if p.Y >= r.Top && p.Y <= r.Bottom {
		dy = 0
	}
	return math.Sqrt(dx*dx + dy*dy)
}

// EdgeDistance returns the vertical distance from p to the nearest of the
// top and bottom edges of r, and whether the bottom edge is the closer one.
func (r Rect) EdgeDistance(p Point) (distance float64, bottom bool) {
	top := math.Abs(p.Y - r.Top)
	btm := math.Abs(p.Y - r.Bottom)
	return math.Min(top, btm), btm < top
}
