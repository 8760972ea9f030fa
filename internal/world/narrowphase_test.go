package world

import (
	"math"
	"testing"

	"github.com/playmatatu/ropesim/internal/rope"
)

// separation returns the displacement the rope core applies for a static
// contact list: -(b - a) for every pair.
func separation(contacts []rope.Vec2) rope.Vec2 {
	var total rope.Vec2
	for i := 0; i+1 < len(contacts); i += 2 {
		total = total.Minus(contacts[i+1].Minus(contacts[i]))
	}
	return total
}

func near(a, b rope.Vec2) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestNarrowPhaseContacts(t *testing.T) {
	np := NarrowPhase{}
	proxy := &rope.CircleShape{Radius: 2}

	tests := []struct {
		name    string
		shape   rope.Shape
		xform   rope.Transform
		center  rope.Vec2
		wantSep rope.Vec2
		want    int
	}{
		{"floor penetrated", &HalfPlane{Normal: rope.NewVec2(0, -1)}, rope.Translation(rope.NewVec2(0, 50)), rope.NewVec2(3, 49), rope.NewVec2(0, -1), 2},
		{"floor clear", &HalfPlane{Normal: rope.NewVec2(0, -1)}, rope.Translation(rope.NewVec2(0, 50)), rope.NewVec2(3, 47), rope.Vec2{}, 0},
		{"circle overlap", &rope.CircleShape{Radius: 3}, rope.Identity(), rope.NewVec2(4, 0), rope.NewVec2(1, 0), 2},
		{"circle apart", &rope.CircleShape{Radius: 3}, rope.Identity(), rope.NewVec2(6, 0), rope.Vec2{}, 0},
		{"rect side", &Rect{HalfExtents: rope.NewVec2(5, 5)}, rope.Translation(rope.NewVec2(10, 0)), rope.NewVec2(4, 0), rope.NewVec2(-1, 0), 2},
		{"rect centre inside", &Rect{HalfExtents: rope.NewVec2(10, 10)}, rope.Translation(rope.NewVec2(0, 20)), rope.NewVec2(0, 12), rope.NewVec2(0, -4), 2},
		{"rect corner clear", &Rect{HalfExtents: rope.NewVec2(5, 5)}, rope.Identity(), rope.NewVec2(7, 7), rope.Vec2{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contacts := np.CollideAndGetContacts(tt.shape, tt.xform, proxy, rope.Translation(tt.center))
			if len(contacts) != tt.want {
				t.Fatalf("contacts = %v, want %d points", contacts, tt.want)
			}
			if sep := separation(contacts); !near(sep, tt.wantSep) {
				t.Fatalf("separation = %+v, want %+v", sep, tt.wantSep)
			}
		})
	}
}

func TestNarrowPhaseNeedsCircleProxy(t *testing.T) {
	np := NarrowPhase{}
	got := np.CollideAndGetContacts(&rope.CircleShape{Radius: 1}, rope.Identity(), &Rect{HalfExtents: rope.NewVec2(1, 1)}, rope.Identity())
	if got != nil {
		t.Fatalf("contacts = %v, want none", got)
	}
}
