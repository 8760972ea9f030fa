package world

import (
	"math"

	"github.com/playmatatu/ropesim/internal/rope"
)

// HalfPlane is an infinite boundary. Points with dot(p, Normal) < Distance
// (in body space) are inside; Normal points out of the solid.
type HalfPlane struct {
	Normal   rope.Vec2 `json:"normal"`
	Distance float64   `json:"distance"`
}

// Rect is an axis-aligned box centred on its body.
type Rect struct {
	HalfExtents rope.Vec2 `json:"half_extents"`
}

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min rope.Vec2
	Max rope.Vec2
}

func (b AABB) Intersects(o AABB) bool {
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y
}

// Grow returns b expanded by m on every side.
func (b AABB) Grow(m float64) AABB {
	return AABB{
		Min: rope.NewVec2(b.Min.X-m, b.Min.Y-m),
		Max: rope.NewVec2(b.Max.X+m, b.Max.Y+m),
	}
}

func (b AABB) merge(o AABB) AABB {
	return AABB{
		Min: rope.NewVec2(math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y)),
		Max: rope.NewVec2(math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y)),
	}
}

var infiniteAABB = AABB{
	Min: rope.NewVec2(math.Inf(-1), math.Inf(-1)),
	Max: rope.NewVec2(math.Inf(1), math.Inf(1)),
}

// shapeBounds returns the world bounds of a shape, or false for shapes the
// world does not know.
func shapeBounds(s rope.Shape, xf rope.Transform) (AABB, bool) {
	switch sh := s.(type) {
	case *rope.CircleShape:
		c := xf.Origin
		r := sh.Radius
		return AABB{Min: rope.NewVec2(c.X-r, c.Y-r), Max: rope.NewVec2(c.X+r, c.Y+r)}, true
	case *HalfPlane:
		return infiniteAABB, true
	case *Rect:
		h := sh.HalfExtents
		corners := [4]rope.Vec2{
			xf.Xform(rope.NewVec2(-h.X, -h.Y)),
			xf.Xform(rope.NewVec2(h.X, -h.Y)),
			xf.Xform(rope.NewVec2(h.X, h.Y)),
			xf.Xform(rope.NewVec2(-h.X, h.Y)),
		}
		box := AABB{Min: corners[0], Max: corners[0]}
		for _, c := range corners[1:] {
			box = box.merge(AABB{Min: c, Max: c})
		}
		return box, true
	}
	return AABB{}, false
}

func validShape(s rope.Shape) bool {
	switch sh := s.(type) {
	case *rope.CircleShape:
		return sh.Radius > 0
	case *HalfPlane:
		return !sh.Normal.IsZero()
	case *Rect:
		return sh.HalfExtents.X > 0 && sh.HalfExtents.Y > 0
	}
	return false
}
