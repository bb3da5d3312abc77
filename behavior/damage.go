package behavior

import (
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/hitreg"
)

// Payload keys written by DamageKind.
const (
	KeyDamage     = "damage"
	KeyAmount     = "amount"
	KeyMultiplier = "multiplier"
	KeySurface    = "surface"
	KeyTarget     = "target"
)

// DamageKind enriches the payload with a damage amount for every hit.
// The base amount comes from the definition params and can be overridden
// per activation with an "amount" payload entry; "multiplier" scales it.
type DamageKind struct {
	Base
	Amount float64
}

func newDamageKind(_ *Kinds, def *Definition) (Kind, error) {
	k := DamageKind{}
	if v, ok := Payload(def.Params).Float(KeyAmount); ok {
		k.Amount = v
	}
	return k, nil
}

func (k DamageKind) ProcessHit(b *Behavior, r hitreg.HitResult, _ *hitreg.Detector) (bool, Payload) {
	out := b.Payload()
	amount := k.Amount
	if v, ok := out.Float(KeyAmount); ok {
		amount = v
	}
	mult := 1.0
	if v, ok := out.Float(KeyMultiplier); ok {
		mult = v
	}
	target := k.HitTarget(b, r)
	if !ecs.IsAlive(b.World(), target) {
		target = r.HitActor
	}

	out[KeyDamage] = amount * mult
	out[KeySurface] = r.Surface
	out[KeyTarget] = uint64(target)
	return true, out
}
