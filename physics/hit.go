package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/damagebehaviors/ecs"
)

// Hit is a single contact reported by a sweep or an overlap query.
type Hit struct {
	Actor ecs.Entity
	// Index is the hurtbox index on Actor.
	Index   int
	Surface string

	// Location is the capsule center at the time of impact.
	Location     cp.Vector
	Point        cp.Vector
	Normal       cp.Vector
	ImpactPoint  cp.Vector
	ImpactNormal cp.Vector

	// Time is the normalized time of impact along the sweep in [0,1].
	Time     float64
	Distance float64
}
