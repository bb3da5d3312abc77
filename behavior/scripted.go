package behavior

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/damagebehaviors/hitreg"
	"github.com/milk9111/damagebehaviors/logger"
	"github.com/sirupsen/logrus"
)

// Scripts start from these defaults and reassign the hooks they need:
//
//	can_hit = func(hit) { return hit.surface != "steel" }
const scriptPrelude = `
can_hit := func(hit) { return true }
process_hit := func(hit, payload) { return {registered: true, payload: payload} }
`

const scriptDispatch = `
__result := undefined
if __phase == "can_hit" {
	__result = can_hit(__hit)
} else if __phase == "process_hit" {
	__result = process_hit(__hit, __payload)
}
`

// ScriptedKind runs CanBeAddedToHitActors and ProcessHit through a tengo
// script. Everything else is the default.
type ScriptedKind struct {
	Base
	script   string
	compiled *tengo.Compiled
}

func newScriptedKind(k *Kinds, def *Definition) (Kind, error) {
	if strings.TrimSpace(def.Script) == "" {
		return nil, fmt.Errorf("behavior %q: scripted kind needs a script", def.Name)
	}
	compiled, err := k.compile(def.Script)
	if err != nil {
		return nil, fmt.Errorf("behavior %q: %w", def.Name, err)
	}
	return &ScriptedKind{script: def.Script, compiled: compiled.Clone()}, nil
}

func (k *Kinds) compile(name string) (*tengo.Compiled, error) {
	if c, ok := k.compiled[name]; ok {
		return c, nil
	}
	src, err := k.load(name)
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", name, err)
	}

	script := tengo.NewScript([]byte(scriptPrelude + "\n" + string(src) + "\n" + scriptDispatch))
	_ = script.Add("__phase", "")
	_ = script.Add("__hit", map[string]any{})
	_ = script.Add("__payload", map[string]any{})
	script.SetImports(stdlib.GetModuleMap("math", "text", "fmt"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile script %s: %w", name, err)
	}
	k.compiled[name] = compiled
	return compiled, nil
}

func (s *ScriptedKind) CanBeAddedToHitActors(b *Behavior, r hitreg.HitResult) bool {
	if !s.Base.CanBeAddedToHitActors(b, r) {
		return false
	}
	res, err := s.run(b, "can_hit", r, nil)
	if err != nil {
		s.logError(b, "can_hit", err)
		return true
	}
	if v, ok := res.(bool); ok {
		return v
	}
	return true
}

func (s *ScriptedKind) ProcessHit(b *Behavior, r hitreg.HitResult, d *hitreg.Detector) (bool, Payload) {
	payload := b.Payload()
	res, err := s.run(b, "process_hit", r, payload)
	if err != nil {
		s.logError(b, "process_hit", err)
		return s.Base.ProcessHit(b, r, d)
	}

	switch v := res.(type) {
	case bool:
		return v, payload
	case map[string]any:
		registered := true
		if reg, ok := v["registered"].(bool); ok {
			registered = reg
		}
		if out, ok := v["payload"].(map[string]any); ok {
			return registered, Payload(out)
		}
		return registered, payload
	default:
		return true, payload
	}
}

func (s *ScriptedKind) run(b *Behavior, phase string, r hitreg.HitResult, payload Payload) (any, error) {
	if err := s.compiled.Set("__phase", phase); err != nil {
		return nil, err
	}
	if err := s.compiled.Set("__hit", hitToScript(b, r)); err != nil {
		return nil, err
	}
	if err := s.compiled.Set("__payload", payloadToScript(payload)); err != nil {
		return nil, err
	}
	if err := s.compiled.Run(); err != nil {
		return nil, err
	}
	return objectToAny(s.compiled.Get("__result").Object()), nil
}

func (s *ScriptedKind) logError(b *Behavior, phase string, err error) {
	logger.Log.WithError(err).WithFields(logrus.Fields{
		"behavior": b.Name(),
		"script":   s.script,
		"phase":    phase,
	}).Warn("behavior: script hook failed")
}

func hitToScript(b *Behavior, r hitreg.HitResult) map[string]any {
	return map[string]any{
		"actor":      r.HitActor.String(),
		"instigator": r.Instigator.String(),
		"surface":    r.Surface,
		"time":       r.Hit.Time,
		"distance":   r.Hit.Distance,
		"point":      []any{r.Hit.ImpactPoint.X, r.Hit.ImpactPoint.Y},
		"normal":     []any{r.Hit.ImpactNormal.X, r.Hit.ImpactNormal.Y},
		"direction":  []any{r.Direction.X, r.Direction.Y},
		"behavior":   b.Name(),
	}
}

func payloadToScript(p Payload) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = scriptValue(v)
	}
	return out
}

// scriptValue narrows Go values to the types tengo.FromInterface accepts.
func scriptValue(v any) any {
	switch x := v.(type) {
	case nil, string, bool, int, int64, float64:
		return x
	case float32:
		return float64(x)
	case int32:
		return int64(x)
	case uint64:
		return int64(x)
	case uint32:
		return int64(x)
	case uint:
		return int64(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = scriptValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = scriptValue(item)
		}
		return out
	case Payload:
		return payloadToScript(x)
	default:
		return fmt.Sprint(x)
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
