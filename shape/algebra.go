package shape

import "math"

// coneArcSegments controls how finely a cone arc is subdivided when walking
// its outline.
const coneArcSegments = 64

// Contains reports whether p lies inside s, boundary inclusive.
// A nil shape contains nothing.
func Contains(p Point, s Shape) bool {
	if s == nil {
		return false
	}
	return s.Contains(p)
}

// BoundsOf returns the axis-aligned box of s. The box of a nil shape is the
// zero Rect.
func BoundsOf(s Shape) Rect {
	if s == nil {
		return Rect{}
	}
	return s.Bounds()
}

// CenterOf returns the centroid of s.
func CenterOf(s Shape) Point {
	if s == nil {
		return Point{}
	}
	return s.Centroid()
}

// AreaOf returns the surface area of s.
func AreaOf(s Shape) float64 {
	if s == nil {
		return 0
	}
	return s.Area()
}

// Overlaps reports whether the bounding boxes of a and b intersect.
// It is conservative: shapes whose boxes touch but whose areas do not are
// still reported as overlapping.
func Overlaps(a, b Shape) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Bounds().Intersects(b.Bounds())
}

// PerimeterSamples returns n evenly distributed boundary points of s.
// The result depends only on s and n.
func PerimeterSamples(s Shape, n int) []Point {
	if s == nil || n <= 0 {
		return []Point{}
	}
	return s.Perimeter(n)
}

// --- Circle ---

func (c Circle) radius() float64 {
	return max(c.Radius, 0)
}

// Contains reports whether p is within Radius of Center.
func (c Circle) Contains(p Point) bool {
	return Distance(p, c.Center) <= c.radius()
}

// Bounds returns the tight box around the disc.
func (c Circle) Bounds() Rect {
	r := c.radius()
	return Rect{
		Min: Point{X: c.Center.X - r, Y: c.Center.Y - r},
		Max: Point{X: c.Center.X + r, Y: c.Center.Y + r},
	}
}

// Centroid returns the circle center.
func (c Circle) Centroid() Point {
	return c.Center
}

// Area returns πr².
func (c Circle) Area() float64 {
	r := c.radius()
	return math.Pi * r * r
}

// Perimeter returns n points at angles 2πk/n measured from +X.
func (c Circle) Perimeter(n int) []Point {
	out := make([]Point, 0, max(n, 0))
	r := c.radius()
	for k := 0; k < n; k++ {
		theta := 2 * math.Pi * float64(k) / float64(n)
		out = append(out, Point{
			X: c.Center.X + math.Cos(theta)*r,
			Y: c.Center.Y + math.Sin(theta)*r,
		})
	}
	return out
}

// --- Square ---

func (s Square) half() float64 {
	return max(s.Size, 0) / 2
}

// Contains reports whether p is within half the side on both axes.
func (s Square) Contains(p Point) bool {
	h := s.half()
	return math.Abs(p.X-s.Center.X) <= h && math.Abs(p.Y-s.Center.Y) <= h
}

// Bounds returns the square itself.
func (s Square) Bounds() Rect {
	h := s.half()
	return Rect{
		Min: Point{X: s.Center.X - h, Y: s.Center.Y - h},
		Max: Point{X: s.Center.X + h, Y: s.Center.Y + h},
	}
}

// Centroid returns the square center.
func (s Square) Centroid() Point {
	return s.Center
}

// Area returns the side squared.
func (s Square) Area() float64 {
	side := max(s.Size, 0)
	return side * side
}

// Perimeter walks the outline clockwise from the top-left corner.
func (s Square) Perimeter(n int) []Point {
	b := s.Bounds()
	return walkClosed([]Point{
		b.Min,
		{X: b.Max.X, Y: b.Min.Y},
		b.Max,
		{X: b.Min.X, Y: b.Max.Y},
	}, n)
}

// --- Cone ---

func (c Cone) reach() float64 {
	return max(c.Range, 0)
}

func (c Cone) spread() float64 {
	return Clamp(c.Angle, 0, 360)
}

// Contains reports whether p is within Range of Origin and inside the
// angular opening around Direction.
func (c Cone) Contains(p Point) bool {
	d := Distance(p, c.Origin)
	if d > c.reach() {
		return false
	}
	if d == 0 {
		return true
	}
	diff := math.Abs(NormalizeDegrees(Bearing(c.Origin, p) - c.Direction))
	return diff <= c.spread()/2
}

// Bounds returns the box of the full circle of radius Range around Origin.
// This over-approximates the sector.
func (c Cone) Bounds() Rect {
	return Circle{Center: c.Origin, Radius: c.reach()}.Bounds()
}

// Centroid returns the centroid of the circular sector.
func (c Cone) Centroid() Point {
	r := c.reach()
	alpha := c.spread() / 2 * math.Pi / 180
	if r == 0 || alpha == 0 {
		return c.Origin
	}
	d := 2 * r * math.Sin(alpha) / (3 * alpha)
	return FromPolar(c.Origin, c.Direction, d)
}

// Area returns half the opening in radians times Range squared.
func (c Cone) Area() float64 {
	r := c.reach()
	return 0.5 * (c.spread() * math.Pi / 180) * r * r
}

// Perimeter walks origin, arc start, along the arc, and back to the origin.
func (c Cone) Perimeter(n int) []Point {
	r := c.reach()
	half := c.spread() / 2
	vertices := make([]Point, 0, coneArcSegments+2)
	vertices = append(vertices, c.Origin)
	for i := 0; i <= coneArcSegments; i++ {
		deg := c.Direction - half + c.spread()*float64(i)/coneArcSegments
		vertices = append(vertices, FromPolar(c.Origin, deg, r))
	}
	return walkClosed(vertices, n)
}

// --- Line ---

func (l Line) halfWidth() float64 {
	return max(l.Width, 0) / 2
}

// Length returns the distance between Start and End.
func (l Line) Length() float64 {
	return Distance(l.Start, l.End)
}

// Contains reports whether p is within half the width of the segment.
// A zero-length line contains only its start point.
func (l Line) Contains(p Point) bool {
	if l.Start == l.End {
		return p == l.Start
	}
	closest := closestOnSegment(p, l.Start, l.End)
	return Distance(p, closest) <= l.halfWidth()
}

// Bounds returns the endpoint box expanded by half the width on both axes.
func (l Line) Bounds() Rect {
	h := l.halfWidth()
	return Rect{
		Min: Point{X: min(l.Start.X, l.End.X) - h, Y: min(l.Start.Y, l.End.Y) - h},
		Max: Point{X: max(l.Start.X, l.End.X) + h, Y: max(l.Start.Y, l.End.Y) + h},
	}
}

// Centroid returns the midpoint of the segment.
func (l Line) Centroid() Point {
	return Lerp(l.Start, l.End, 0.5)
}

// Area returns length times width.
func (l Line) Area() float64 {
	return l.Length() * max(l.Width, 0)
}

// Perimeter walks the outline of the oriented rectangle covered by the line.
func (l Line) Perimeter(n int) []Point {
	dir := Point{X: 1}
	if length := l.Length(); length > 0 {
		dir = l.End.Sub(l.Start).Scale(1 / length)
	}
	normal := Point{X: -dir.Y, Y: dir.X}.Scale(l.halfWidth())
	return walkClosed([]Point{
		l.Start.Add(normal),
		l.End.Add(normal),
		l.End.Sub(normal),
		l.Start.Sub(normal),
	}, n)
}
