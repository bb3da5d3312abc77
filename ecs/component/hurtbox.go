package component

type ShapeKind string

const (
	ShapeCircle  ShapeKind = "circle"
	ShapeBox     ShapeKind = "box"
	ShapeCapsule ShapeKind = "capsule"
)

// Hurtbox is a collision primitive relative to the actor transform that
// hit detectors can strike.
type Hurtbox struct {
	Shape      ShapeKind
	Radius     float64
	Width      float64
	Height     float64
	HalfHeight float64
	OffsetX    float64
	OffsetY    float64
	Rotation   float64
	// Surface is the physical material reported on hits.
	Surface string
	// ObjectType is the collision channel this shape belongs to.
	ObjectType string
	// RespondsTo lists channels that can detect this shape. Empty means all.
	RespondsTo []string
}

var HurtboxComponent = NewComponent[[]Hurtbox]()
