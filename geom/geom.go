// Package geom provides the small set of shapes used by ggdraw records and
// render contexts. Points and affine matrices are gg's own types.
package geom

import (
	"image"
	"math"

	"github.com/gogpu/gg"
)

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// R is shorthand for Rect{X: x, Y: y, W: w, H: h}.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// FromImage converts an image rectangle.
func FromImage(r image.Rectangle) Rect {
	return Rect{X: float64(r.Min.X), Y: float64(r.Min.Y), W: float64(r.Dx()), H: float64(r.Dy())}
}

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether (x, y) lies inside r. The right and bottom edges
// are exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Vertices returns the corners in clockwise order starting at the origin.
func (r Rect) Vertices() []gg.Point {
	return []gg.Point{
		{X: r.X, Y: r.Y},
		{X: r.X + r.W, Y: r.Y},
		{X: r.X + r.W, Y: r.Y + r.H},
		{X: r.X, Y: r.Y + r.H},
	}
}

// Transform maps the corners through m. The result is a polygon because a
// rotated or sheared rectangle is no longer axis-aligned.
func (r Rect) Transform(m gg.Matrix) Polygon {
	return Polygon{Vertices: r.Vertices()}.Transform(m)
}

// Image returns the smallest integer rectangle covering r.
func (r Rect) Image() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.W)), int(math.Ceil(r.Y+r.H)),
	)
}

// Intersect returns the overlap of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.X+r.W, o.X+o.W)
	y1 := math.Min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Polygon is a closed outline.
type Polygon struct {
	Vertices []gg.Point
}

// Clone returns a deep copy.
func (p Polygon) Clone() Polygon {
	return Polygon{Vertices: append([]gg.Point(nil), p.Vertices...)}
}

// Transform returns a copy with every vertex mapped through m.
func (p Polygon) Transform(m gg.Matrix) Polygon {
	out := make([]gg.Point, len(p.Vertices))
	for i, v := range p.Vertices {
		out[i] = m.TransformPoint(v)
	}
	return Polygon{Vertices: out}
}

// Bounds returns the axis-aligned bounding box.
func (p Polygon) Bounds() Rect {
	if len(p.Vertices) == 0 {
		return Rect{}
	}
	minX, minY := p.Vertices[0].X, p.Vertices[0].Y
	maxX, maxY := minX, minY
	for _, v := range p.Vertices[1:] {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Contains reports whether (x, y) is inside p using the even-odd rule.
func (p Polygon) Contains(x, y float64) bool {
	inside := false
	n := len(p.Vertices)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p.Vertices[i], p.Vertices[j]
		if (a.Y > y) != (b.Y > y) && x < (b.X-a.X)*(y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
