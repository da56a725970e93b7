// Package spatial computes area metrics for location maps: the size of the
// work area, how much of it placed objects occupy, and what remains free.
//
// Positions are in image-pixel space. Object sizes are stored natively in
// meters, and a meters-per-pixel scale converts between the two.
package spatial

import (
	"errors"
	"math"
)

// Calibration errors.
var (
	ErrCoincidentPoints = errors.New("calibration points must be distinct")
	ErrInvalidDistance  = errors.New("calibration distance must be positive")
)

// Point is a position in image-pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon is an ordered, implicitly closed list of vertices.
type Polygon []Point

// Valid reports whether the polygon has enough vertices to enclose an area.
func (p Polygon) Valid() bool {
	return len(p) >= 3
}

// PolygonArea returns the enclosed area using the shoelace formula.
// Polygons with fewer than three vertices have zero area.
func PolygonArea(p Polygon) float64 {
	n := len(p)
	if n < 3 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}

	return math.Abs(sum) / 2
}

// ContainsPoint tests q against p with the even-odd rule.
// Polygons with fewer than three vertices contain nothing.
func ContainsPoint(p Polygon, q Point) bool {
	n := len(p)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := p[i].X, p[i].Y
		xj, yj := p[j].X, p[j].Y

		if (yi > q.Y) != (yj > q.Y) &&
			q.X < (xj-xi)*(q.Y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}

	return inside
}

// Rect returns the polygon for an axis-aligned rectangle with its top-left
// corner at (x, y).
func Rect(x, y, width, height float64) Polygon {
	return Polygon{
		{X: x, Y: y},
		{X: x + width, Y: y},
		{X: x + width, Y: y + height},
		{X: x, Y: y + height},
	}
}

// Calibrate derives a meters-per-pixel scale from two reference points a
// known real-world distance apart.
func Calibrate(a, b Point, meters float64) (float64, error) {
	if meters <= 0 || math.IsNaN(meters) || math.IsInf(meters, 0) {
		return 0, ErrInvalidDistance
	}

	pixels := math.Hypot(b.X-a.X, b.Y-a.Y)
	if pixels == 0 {
		return 0, ErrCoincidentPoints
	}

	return meters / pixels, nil
}
