// Package shape provides the area geometry used for targeting: points,
// axis-aligned boxes and the four area shapes (circle, square, cone, line).
//
// Coordinates are battlefield units with +X to the right and +Y down, matching
// screen space. Angles are degrees measured from +X toward +Y.
//
// Every operation is total. Degenerate shapes (zero radius, size, range or
// length) contain only their defining point instead of failing.
package shape

import (
	"fmt"
	"strings"
)

// Point represents a 2D point in space
type Point struct {
	X, Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p multiplied by s.
func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Rect is an axis-aligned bounding box. Edges are inclusive.
type Rect struct {
	Min, Max Point
}

// Intersects returns true if the boxes share at least one point.
func (r Rect) Intersects(other Rect) bool {
	if r.Max.X < other.Min.X || other.Max.X < r.Min.X {
		return false
	}
	if r.Max.Y < other.Min.Y || other.Max.Y < r.Min.Y {
		return false
	}
	return true
}

// Contains returns true if p lies inside or on the edge of the box.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Union returns the smallest box covering both boxes.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		Min: Point{X: min(r.Min.X, other.Min.X), Y: min(r.Min.Y, other.Min.Y)},
		Max: Point{X: max(r.Max.X, other.Max.X), Y: max(r.Max.Y, other.Max.Y)},
	}
}

// Width returns the horizontal extent of the box.
func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height returns the vertical extent of the box.
func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// Kind identifies the variant of an area shape
type Kind int

const (
	KindCircle Kind = iota + 1
	KindSquare
	KindCone
	KindLine
)

// String returns the lowercase kind name used in template files.
func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindSquare:
		return "square"
	case KindCone:
		return "cone"
	case KindLine:
		return "line"
	default:
		return "unknown"
	}
}

// ParseKind maps a template shape name to its Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "circle", "sphere", "radius":
		return KindCircle, nil
	case "square", "cube":
		return KindSquare, nil
	case "cone":
		return KindCone, nil
	case "line":
		return KindLine, nil
	default:
		return 0, fmt.Errorf("unknown shape %q", name)
	}
}

// Shape is a targeting area. Implementations are value types and never
// change after construction.
type Shape interface {
	Kind() Kind
	Contains(p Point) bool
	Bounds() Rect
	Centroid() Point
	Area() float64
	Perimeter(n int) []Point
}

// Circle is a disc around Center.
type Circle struct {
	Center Point
	Radius float64
}

// Square is an axis-aligned square of side Size centered on Center.
// Squares are never rotated.
type Square struct {
	Center Point
	Size   float64
}

// Cone is a circular sector starting at Origin, opening Angle degrees
// around Direction and reaching Range units.
type Cone struct {
	Origin    Point
	Direction float64
	Angle     float64
	Range     float64
}

// Line is a segment from Start to End, Width units wide.
type Line struct {
	Start, End Point
	Width      float64
}

func (Circle) Kind() Kind { return KindCircle }
func (Square) Kind() Kind { return KindSquare }
func (Cone) Kind() Kind   { return KindCone }
func (Line) Kind() Kind   { return KindLine }
