package behavior

import "maps"

// Payload is free-form data handed from the invoker to hit processing
// and on to hit listeners.
type Payload map[string]any

// Clone returns a shallow copy. A nil payload clones to an empty one.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	maps.Copy(out, p)
	return out
}

// Float reads a numeric value regardless of how it was decoded.
func (p Payload) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

func (p Payload) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}
