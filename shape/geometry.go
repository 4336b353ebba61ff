package shape

import "math"

// Distance calculates the Euclidean distance between two points
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Lerp interpolates between a and b. t is not clamped.
func Lerp(a, b Point, t float64) Point {
	return Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizeDegrees maps an angle into (-180, 180].
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// Bearing returns the direction from a to b in degrees.
func Bearing(a, b Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
}

// FromPolar returns the point at distance r from origin along deg.
func FromPolar(origin Point, deg, r float64) Point {
	rad := deg * math.Pi / 180
	return Point{
		X: origin.X + math.Cos(rad)*r,
		Y: origin.Y + math.Sin(rad)*r,
	}
}

// closestOnSegment clamps the projection of p onto [a, b] and returns the
// resulting point.
func closestOnSegment(p, a, b Point) Point {
	d := b.Sub(a)
	lenSq := d.X*d.X + d.Y*d.Y
	if lenSq == 0 {
		return a
	}
	t := ((p.X-a.X)*d.X + (p.Y-a.Y)*d.Y) / lenSq
	return Lerp(a, b, Clamp(t, 0, 1))
}

// walkClosed samples n points spaced by equal arc length along a closed
// polyline, starting at vertices[0].
func walkClosed(vertices []Point, n int) []Point {
	out := make([]Point, 0, n)
	if n <= 0 || len(vertices) == 0 {
		return out
	}

	lengths := make([]float64, len(vertices))
	total := 0.0
	for i := range vertices {
		seg := Distance(vertices[i], vertices[(i+1)%len(vertices)])
		lengths[i] = seg
		total += seg
	}
	if total == 0 {
		for i := 0; i < n; i++ {
			out = append(out, vertices[0])
		}
		return out
	}

	step := total / float64(n)
	edge := 0
	walked := 0.0
	for k := 0; k < n; k++ {
		target := step * float64(k)
		for edge < len(vertices)-1 && walked+lengths[edge] < target {
			walked += lengths[edge]
			edge++
		}
		a := vertices[edge]
		b := vertices[(edge+1)%len(vertices)]
		t := 0.0
		if lengths[edge] > 0 {
			t = (target - walked) / lengths[edge]
		}
		out = append(out, Lerp(a, b, Clamp(t, 0, 1)))
	}
	return out
}
