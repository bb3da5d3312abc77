package hitreg

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/physics"
)

// HitResult is what a detector reports for every struck hurt shape.
type HitResult struct {
	HitActor   ecs.Entity
	Hit        physics.Hit
	Direction  cp.Vector
	Instigator ecs.Entity
	Surface    string
}
