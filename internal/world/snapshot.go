package world

import (
	"sort"

	"github.com/playmatatu/ropesim/internal/rope"
)

type RopeState struct {
	ID          rope.RopeID `json:"id"`
	Origin      rope.Vec2   `json:"origin"`
	Points      []rope.Vec2 `json:"points"`
	Width       float64     `json:"width"`
	Constraints int         `json:"constraints"`
	Touching    int         `json:"touching"`
}

type BodyState struct {
	ID       rope.BodyID `json:"id"`
	Kind     string      `json:"kind"`
	Position rope.Vec2   `json:"position"`
	Velocity rope.Vec2   `json:"velocity"`
	Mass     float64     `json:"mass"`
}

type AnchorState struct {
	Name     string    `json:"name"`
	Position rope.Vec2 `json:"position"`
}

// Snapshot is a serialisable view of the world after a step.
type Snapshot struct {
	Tick    int64         `json:"tick"`
	Ropes   []RopeState   `json:"ropes"`
	Bodies  []BodyState   `json:"bodies"`
	Anchors []AnchorState `json:"anchors"`
}

func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Tick:    w.tick,
		Ropes:   make([]RopeState, 0, len(w.order)),
		Bodies:  make([]BodyState, 0, len(w.bodies)),
		Anchors: make([]AnchorState, 0, len(w.anchors)),
	}
	for _, id := range w.order {
		n := w.ropes[id]
		s.Ropes = append(s.Ropes, RopeState{
			ID:          id,
			Origin:      n.rope.Transform().Origin,
			Points:      n.line.Points(),
			Width:       n.line.Width(),
			Constraints: n.rope.ConstraintCount(),
			Touching:    n.rope.TouchingBodies(),
		})
	}
	for _, id := range w.bodyIDs() {
		b := w.bodies[id]
		s.Bodies = append(s.Bodies, BodyState{
			ID:       id,
			Kind:     b.kind.String(),
			Position: b.Position,
			Velocity: b.Velocity,
			Mass:     b.mass,
		})
	}
	names := make([]string, 0, len(w.anchors))
	for name := range w.anchors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.Anchors = append(s.Anchors, AnchorState{Name: name, Position: w.anchors[name].position})
	}
	return s
}
