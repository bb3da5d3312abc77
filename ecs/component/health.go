package component

type Health struct {
	Initial float64
	Current float64
}

var HealthComponent = NewComponent[Health]()
