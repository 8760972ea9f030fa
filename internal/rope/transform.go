package rope

// Transform is a 2D affine transform: X and Y are the basis columns and
// Origin the translation.
type Transform struct {
	X      Vec2 `json:"x"`
	Y      Vec2 `json:"y"`
	Origin Vec2 `json:"origin"`
}

func Identity() Transform {
	return Transform{X: Vec2{X: 1}, Y: Vec2{Y: 1}}
}

func Translation(origin Vec2) Transform {
	t := Identity()
	t.Origin = origin
	return t
}

// BasisXform applies only the linear part.
func (t Transform) BasisXform(v Vec2) Vec2 {
	return t.X.Times(v.X).Plus(t.Y.Times(v.Y))
}

func (t Transform) Xform(v Vec2) Vec2 {
	return t.BasisXform(v).Plus(t.Origin)
}

// TranslatedLocal moves the origin by offset expressed in the transform's own
// basis, i.e. it places a child at local position offset.
func (t Transform) TranslatedLocal(offset Vec2) Transform {
	t.Origin = t.Origin.Plus(t.BasisXform(offset))
	return t
}

// AffineInverse returns the inverse transform. A degenerate basis yields the
// identity.
func (t Transform) AffineInverse() Transform {
	det := t.X.X*t.Y.Y - t.Y.X*t.X.Y
	if det == 0 {
		return Identity()
	}
	inv := 1 / det
	r := Transform{
		X: Vec2{X: t.Y.Y * inv, Y: -t.X.Y * inv},
		Y: Vec2{X: -t.Y.X * inv, Y: t.X.X * inv},
	}
	r.Origin = r.BasisXform(t.Origin).Invert()
	return r
}
