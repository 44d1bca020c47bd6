package object

import "github.com/tomz197/asteroidfield/internal/physics"

// DebrisMass is the mass of one piece of shrapnel.
const DebrisMass = 0.05

// NewDebris creates a piece of shrapnel spanning a to b in body-local
// coordinates. Debris cannot be damaged; it drifts until culled with the
// session.
func NewDebris(a, b physics.Vec2) *Entity {
	return &Entity{
		Kind:    KindDebris,
		Outline: []physics.Vec2{a, b},
	}
}

// Edge is one side of a closed outline.
type Edge struct {
	A, B physics.Vec2
	// Normal is the outward unit normal in outline coordinates.
	Normal physics.Vec2
}

// Edges splits a closed outline into its sides. The outward normal is taken
// as the side of the edge facing away from the outline's origin.
func Edges(outline []physics.Vec2) []Edge {
	if len(outline) < 2 {
		return nil
	}
	edges := make([]Edge, 0, len(outline))
	for i, a := range outline {
		b := outline[(i+1)%len(outline)]
		n := b.Sub(a).Perp().Normalize()
		mid := a.Add(b).Scale(0.5)
		if n.Dot(mid) < 0 {
			n = n.Scale(-1)
		}
		edges = append(edges, Edge{A: a, B: b, Normal: n})
	}
	return edges
}
