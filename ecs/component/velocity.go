package component

// Velocity moves unattached actors in units per second.
type Velocity struct {
	X       float64
	Y       float64
	Angular float64
}

var VelocityComponent = NewComponent[Velocity]()
