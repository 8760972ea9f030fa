package world

import "github.com/playmatatu/ropesim/internal/rope"

// Line is a headless polyline: the source a rope is built from and the sink
// it renders into every tick.
type Line struct {
	points []rope.Vec2
	width  float64
}

func NewLine(points []rope.Vec2, width float64) *Line {
	cp := make([]rope.Vec2, len(points))
	copy(cp, points)
	return &Line{points: cp, width: width}
}

func (l *Line) Points() []rope.Vec2 {
	cp := make([]rope.Vec2, len(l.points))
	copy(cp, l.points)
	return cp
}

func (l *Line) Width() float64 {
	return l.width
}

func (l *Line) SetPoints(points []rope.Vec2) {
	l.points = points
}
