package game

import (
	"chosenoffset.com/battlefx/shape"
)

// Camera maps battlefield units to screen pixels.
type Camera struct {
	X, Y float64 // Battlefield point at the top-left corner of the view
	Zoom float64 // Pixels per battlefield unit
}

// ToScreen converts a battlefield point to screen coordinates.
func (c Camera) ToScreen(p shape.Point) (float32, float32) {
	return float32((p.X - c.X) * c.zoom()), float32((p.Y - c.Y) * c.zoom())
}

// ToWorld converts screen coordinates to a battlefield point.
func (c Camera) ToWorld(x, y int) shape.Point {
	return shape.Point{X: float64(x)/c.zoom() + c.X, Y: float64(y)/c.zoom() + c.Y}
}

// Length converts a battlefield distance to pixels.
func (c Camera) Length(d float64) float32 {
	return float32(d * c.zoom())
}

// ZoomAt changes the zoom while keeping the battlefield point under the
// screen position (x, y) fixed.
func (c *Camera) ZoomAt(zoom float64, x, y int) {
	zoom = shape.Clamp(zoom, minZoom, maxZoom)
	anchor := c.ToWorld(x, y)
	c.Zoom = zoom
	c.X = anchor.X - float64(x)/zoom
	c.Y = anchor.Y - float64(y)/zoom
}

// CenterOn moves the camera so p is in the middle of a w by h view.
func (c *Camera) CenterOn(p shape.Point, w, h int) {
	c.X = p.X - float64(w)/2/c.zoom()
	c.Y = p.Y - float64(h)/2/c.zoom()
}

func (c Camera) zoom() float64 {
	if c.Zoom <= 0 {
		return 1
	}
	return c.Zoom
}

const (
	minZoom = 0.25
	maxZoom = 4
)

// Message represents an on-screen message that fades over time.
type Message struct {
	Text     string
	TimeLeft float64 // Seconds remaining
	MaxTime  float64 // Initial duration
}

// Flash marks an impact point for a short time.
type Flash struct {
	Pos      shape.Point
	Radius   float64
	TimeLeft float64
	MaxTime  float64
}
