package component

// Owner points at the actor responsible for this one (a weapon's wielder,
// a projectile's shooter). Hit results use it as the instigator fallback.
type Owner struct {
	Actor uint64
}

var OwnerComponent = NewComponent[Owner]()
