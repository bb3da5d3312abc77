package component

// Name is the designer-facing actor name used by scenario lookups and logs.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
