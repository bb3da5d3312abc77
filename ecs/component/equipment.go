package component

// Equipment maps slot names to the actors equipped in them.
type Equipment struct {
	Slots map[string]uint64
}

var EquipmentComponent = NewComponent[Equipment]()
