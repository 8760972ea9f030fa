package world

import "github.com/playmatatu/ropesim/internal/rope"

// ropeArea collects one rope's proxies and their transforms.
type ropeArea struct {
	shapes []rope.Shape
	xforms []rope.Transform
}

func (a *ropeArea) AddShape(s rope.Shape) {
	a.shapes = append(a.shapes, s)
	a.xforms = append(a.xforms, rope.Identity())
}

func (a *ropeArea) SetShapeTransform(i int, xf rope.Transform) {
	if i < 0 || i >= len(a.xforms) {
		return
	}
	a.xforms[i] = xf
}

func (a *ropeArea) ClearShapes() {
	a.shapes = nil
	a.xforms = nil
}

// overlaps reports whether any proxy, grown by margin, touches box.
func (a *ropeArea) overlaps(box AABB, margin float64) bool {
	for i, s := range a.shapes {
		pb, ok := shapeBounds(s, a.xforms[i])
		if !ok {
			continue
		}
		if pb.Grow(margin).Intersects(box) {
			return true
		}
	}
	return false
}
