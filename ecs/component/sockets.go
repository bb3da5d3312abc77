package component

// Sockets are named attach points relative to the actor transform.
// Animation tracks may key them over time.
type Sockets struct {
	Local map[string]Transform
}

var SocketsComponent = NewComponent[Sockets]()

func (s *Sockets) Get(name string) (Transform, bool) {
	if s == nil || s.Local == nil {
		return Identity(), false
	}
	t, ok := s.Local[name]
	return t, ok
}

func (s *Sockets) Set(name string, t Transform) {
	if s.Local == nil {
		s.Local = make(map[string]Transform)
	}
	s.Local[name] = t
}
