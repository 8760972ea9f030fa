package sim

import (
	"fmt"

	"github.com/playmatatu/ropesim/internal/rope"
	"github.com/playmatatu/ropesim/internal/world"
)

// RopeRequest describes a rope to add to a session.
type RopeRequest struct {
	Points          []rope.Vec2 `json:"points" binding:"required"`
	Width           float64     `json:"width"`
	SegmentLength   float64     `json:"segment_length"`
	PinIndices      []int       `json:"pin_indices"`
	UseColliders    bool        `json:"use_colliders"`
	Origin          rope.Vec2   `json:"origin"`
	InitialVelocity *rope.Vec2  `json:"initial_velocity,omitempty"`
}

func (r RopeRequest) validate(maxPoints int) error {
	if len(r.Points) == 0 {
		return fmt.Errorf("%w: rope needs at least one point", ErrInvalidRequest)
	}
	if maxPoints > 0 && len(r.Points) > maxPoints {
		return fmt.Errorf("%w: rope has %d points, limit is %d", ErrInvalidRequest, len(r.Points), maxPoints)
	}
	if r.Width < 0 || r.SegmentLength < 0 {
		return fmt.Errorf("%w: width and segment_length must not be negative", ErrInvalidRequest)
	}
	for _, p := range r.Points {
		if !p.IsFinite() {
			return fmt.Errorf("%w: non-finite point", ErrInvalidRequest)
		}
	}
	return nil
}

func (r RopeRequest) options() world.RopeOptions {
	return world.RopeOptions{
		Points: r.Points,
		Width:  r.Width,
		Settings: rope.Settings{
			SegmentLength: r.SegmentLength,
			PinIndices:    r.PinIndices,
			UseColliders:  r.UseColliders,
		},
		Origin: r.Origin,
	}
}

// ShapeRequest is one body shape: "circle", "rect" or "half_plane".
type ShapeRequest struct {
	Type        string    `json:"type" binding:"required"`
	Radius      float64   `json:"radius,omitempty"`
	HalfExtents rope.Vec2 `json:"half_extents,omitempty"`
	Normal      rope.Vec2 `json:"normal,omitempty"`
	Distance    float64   `json:"distance,omitempty"`
}

func (s ShapeRequest) shape() (rope.Shape, error) {
	switch s.Type {
	case "circle":
		return &rope.CircleShape{Radius: s.Radius}, nil
	case "rect":
		return &world.Rect{HalfExtents: s.HalfExtents}, nil
	case "half_plane":
		return &world.HalfPlane{Normal: s.Normal, Distance: s.Distance}, nil
	}
	return nil, fmt.Errorf("%w: unknown shape type %q", ErrInvalidRequest, s.Type)
}

// BodyRequest describes a body to add to a session.
type BodyRequest struct {
	ID           string         `json:"id" binding:"required"`
	Kind         string         `json:"kind" binding:"required"`
	Position     rope.Vec2      `json:"position"`
	Velocity     rope.Vec2      `json:"velocity"`
	Mass         float64        `json:"mass"`
	GravityScale *float64       `json:"gravity_scale,omitempty"`
	Shapes       []ShapeRequest `json:"shapes" binding:"required"`
}

func parseKind(s string) (rope.BodyKind, error) {
	switch s {
	case "static":
		return rope.BodyStatic, nil
	case "rigid":
		return rope.BodyRigid, nil
	case "kinematic":
		return rope.BodyKinematic, nil
	}
	return 0, fmt.Errorf("%w: unknown body kind %q", ErrInvalidRequest, s)
}

func (r BodyRequest) body() (*world.Body, error) {
	kind, err := parseKind(r.Kind)
	if err != nil {
		return nil, err
	}
	shapes := make([]rope.Shape, 0, len(r.Shapes))
	for _, sr := range r.Shapes {
		s, err := sr.shape()
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, s)
	}
	b := world.NewBody(rope.BodyID(r.ID), kind, r.Position, r.Mass, shapes...)
	b.Velocity = r.Velocity
	if r.GravityScale != nil {
		b.GravityScale = *r.GravityScale
	}
	return b, nil
}

// RopeBindRequest joins two particles of two ropes.
type RopeBindRequest struct {
	Rope       rope.RopeID `json:"rope"`
	Index      int         `json:"index"`
	OtherRope  rope.RopeID `json:"other_rope"`
	OtherIndex int         `json:"other_index"`
}

// NodeBindRequest pins a particle to a named anchor or, when Source is set,
// to a particle of another rope.
type NodeBindRequest struct {
	Rope   rope.RopeID       `json:"rope"`
	Index  int               `json:"index"`
	Anchor string            `json:"anchor,omitempty"`
	Source *rope.ParticleRef `json:"source,omitempty"`
}
