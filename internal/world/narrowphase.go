package world

import (
	"math"

	"github.com/playmatatu/ropesim/internal/rope"
)

// NarrowPhase generates contacts between world shapes and circles. Each
// contact is a pair (point on a, point on b); b - a points from the surface of
// a to the deepest point of b, so moving b by -(b - a) separates them.
type NarrowPhase struct{}

func (NarrowPhase) CollideAndGetContacts(a rope.Shape, xa rope.Transform, b rope.Shape, xb rope.Transform) []rope.Vec2 {
	circle, ok := b.(*rope.CircleShape)
	if !ok || circle.Radius <= 0 {
		return nil
	}
	center := xb.Origin

	switch s := a.(type) {
	case *rope.CircleShape:
		return circleCircle(xa.Origin, s.Radius, center, circle.Radius)
	case *HalfPlane:
		return halfPlaneCircle(s, xa, center, circle.Radius)
	case *Rect:
		return rectCircle(s, xa, center, circle.Radius)
	}
	return nil
}

func circleCircle(ca rope.Vec2, ra float64, cb rope.Vec2, rb float64) []rope.Vec2 {
	d := cb.Minus(ca)
	dist := d.Magnitude()
	if dist >= ra+rb {
		return nil
	}
	n := rope.NewVec2(0, -1)
	if dist > 0 {
		n = d.Times(1 / dist)
	}
	return []rope.Vec2{ca.Plus(n.Times(ra)), cb.Minus(n.Times(rb))}
}

func halfPlaneCircle(hp *HalfPlane, xf rope.Transform, center rope.Vec2, r float64) []rope.Vec2 {
	local := hp.Normal.Normalize()
	if local.IsZero() {
		return nil
	}
	n := xf.BasisXform(local).Normalize()
	surface := xf.Xform(local.Times(hp.Distance))

	height := center.Minus(surface).Dot(n)
	depth := r - height
	if depth <= 0 {
		return nil
	}
	deepest := center.Minus(n.Times(r))
	return []rope.Vec2{deepest.Plus(n.Times(depth)), deepest}
}

func rectCircle(rc *Rect, xf rope.Transform, center rope.Vec2, r float64) []rope.Vec2 {
	h := rc.HalfExtents
	lc := xf.AffineInverse().Xform(center)
	q := rope.NewVec2(clamp(lc.X, -h.X, h.X), clamp(lc.Y, -h.Y, h.Y))

	var onRect, onCircle rope.Vec2
	if q.IsEqualTo(lc) {
		dx := h.X - math.Abs(lc.X)
		dy := h.Y - math.Abs(lc.Y)
		var n rope.Vec2
		if dx < dy {
			n = rope.NewVec2(sign(lc.X), 0)
			onRect = rope.NewVec2(n.X*h.X, lc.Y)
		} else {
			n = rope.NewVec2(0, sign(lc.Y))
			onRect = rope.NewVec2(lc.X, n.Y*h.Y)
		}
		onCircle = lc.Minus(n.Times(r))
	} else {
		d := lc.Minus(q)
		dist := d.Magnitude()
		if dist >= r {
			return nil
		}
		n := d.Times(1 / dist)
		onRect = q
		onCircle = lc.Minus(n.Times(r))
	}
	return []rope.Vec2{xf.Xform(onRect), xf.Xform(onCircle)}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
