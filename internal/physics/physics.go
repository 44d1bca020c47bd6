// Package physics provides the physics world adapter used by the simulation,
// plus the vector and distance helpers shared by spawning and culling.
package physics

import "math"

// Distance calculates the Euclidean distance between two points.
func Distance(a, b Vec2) float64 {
	return math.Sqrt(DistanceSquared(a, b))
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(a, b Vec2) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}

// PointInCircle checks if a point is within radius of a target position.
func PointInCircle(p, center Vec2, radius float64) bool {
	return DistanceSquared(p, center) <= radius*radius
}

// CirclesOverlap checks if two circles overlap.
func CirclesOverlap(a Vec2, ra float64, b Vec2, rb float64) bool {
	minDist := ra + rb
	return DistanceSquared(a, b) < minDist*minDist
}
