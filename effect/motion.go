package effect

import (
	"math"

	"github.com/cespare/xxhash/v2"

	"chosenoffset.com/battlefx/shape"
)

// path evaluates an effect's travel position for a progress value in [0, 1].
// It is fixed when the instance is created.
type path struct {
	from, to shape.Point
	curved   bool
	control  shape.Point
}

func newPath(id string, from, to shape.Point, curved bool, height float64) path {
	p := path{from: from, to: to, curved: curved}
	if curved {
		p.control = curveControl(id, from, to, height)
	}
	return p
}

// curveControl places the Bézier control point on the perpendicular through
// the chord midpoint. Offset size and side come from the id hash, so the same
// id always produces the same curve.
func curveControl(id string, from, to shape.Point, height float64) shape.Point {
	mid := shape.Lerp(from, to, 0.5)
	chord := to.Sub(from)
	length := math.Hypot(chord.X, chord.Y)
	if length == 0 || height <= 0 {
		return mid
	}

	seed := xxhash.Sum64String(id)
	u := float64(seed>>11) / (1 << 53)
	offset := height * (0.5 + 0.5*u)
	if seed&1 == 1 {
		offset = -offset
	}

	normal := shape.Point{X: -chord.Y / length, Y: chord.X / length}
	return mid.Add(normal.Scale(offset))
}

func (p path) at(t float64) shape.Point {
	t = shape.Clamp(t, 0, 1)
	if !p.curved {
		return shape.Lerp(p.from, p.to, t)
	}
	a := (1 - t) * (1 - t)
	b := 2 * (1 - t) * t
	c := t * t
	return shape.Point{
		X: a*p.from.X + b*p.control.X + c*p.to.X,
		Y: a*p.from.Y + b*p.control.Y + c*p.to.Y,
	}
}

// trail samples the path behind progress. Samples run from the head
// backwards and stop at the start of the path.
func (p path) trail(progress float64, samples int, step float64) []shape.Point {
	if samples <= 0 {
		return nil
	}
	out := make([]shape.Point, samples)
	for k := range out {
		out[k] = p.at(math.Max(progress-float64(k)*step, 0))
	}
	return out
}
