package rope

import (
	"math"
	"testing"
)

func TestTransformTranslatedLocal(t *testing.T) {
	rot := Transform{X: NewVec2(0, 1), Y: NewVec2(-1, 0), Origin: NewVec2(10, 0)}
	got := rot.TranslatedLocal(NewVec2(2, 0)).Origin
	if !got.IsEqualTo(NewVec2(10, 2)) {
		t.Fatalf("origin = %+v, want (10,2)", got)
	}
}

func TestTransformAffineInverse(t *testing.T) {
	xf := Transform{X: NewVec2(0, 2), Y: NewVec2(-2, 0), Origin: NewVec2(3, -4)}
	p := NewVec2(7, 1)
	back := xf.AffineInverse().Xform(xf.Xform(p))
	if math.Abs(back.X-p.X) > 1e-12 || math.Abs(back.Y-p.Y) > 1e-12 {
		t.Fatalf("inverse round trip = %+v, want %+v", back, p)
	}
}
