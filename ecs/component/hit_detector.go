package component

// DetectorShape describes one capsule hit detector on an actor. Socket is
// optional; Local is relative to the socket (or the actor when empty).
type DetectorShape struct {
	Name       string
	Socket     string
	Local      Transform
	Radius     float64
	HalfHeight float64
}

var DetectorShapesComponent = NewComponent[[]DetectorShape]()
