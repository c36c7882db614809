package jsv

import (
	"encoding/json"
	"reflect"
)

// Normalizable is implemented by native Go values that carry their own JSON
// form (e.g. Rat) instead of being converted field-by-field.
type Normalizable interface {
	NormalizeJSON() (any, error)
}

// OnGeneralAtom is invoked for any value Normalize does not otherwise know
// how to reduce to pure JSON: anything that is neither a JSON primitive, a
// map/slice, nor a Normalizable. The default rejects with
// ErrUnrepresentableValue; callers may supply their own to support e.g.
// enum labels backed by named constants.
type OnGeneralAtom func(v any) (any, error)

// Normalizer converts in-memory schema values that may carry native tagged
// values (structs implementing Normalizable, map[any]any, arbitrary atoms)
// into pure JSON form: map[string]any, []any, float64/json.Number, string,
// bool, nil; int and int64 values pass through unchanged. Applying
// Normalize to an already-pure value is a no-op (idempotent).
type Normalizer struct {
	OnGeneralAtom OnGeneralAtom
}

// NewNormalizer builds a Normalizer with the default atom handler.
func NewNormalizer() *Normalizer {
	return &Normalizer{OnGeneralAtom: rejectGeneralAtom}
}

func rejectGeneralAtom(any) (any, error) {
	return nil, ErrUnrepresentableValue
}

// Normalize reduces v to pure JSON form.
func (n *Normalizer) Normalize(v any) (any, error) {
	if n.OnGeneralAtom == nil {
		n.OnGeneralAtom = rejectGeneralAtom
	}
	return n.normalize(v)
}

func (n *Normalizer) normalize(v any) (any, error) {
	switch val := v.(type) {
	case nil, bool, string, float64, int, int64, json.Number:
		return val, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			nv, err := n.normalize(item)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			key, ok := k.(string)
			if !ok {
				sv, err := n.normalize(k)
				if err != nil {
					return nil, err
				}
				key, ok = sv.(string)
				if !ok {
					return nil, ErrNonStringMapKey
				}
			}
			nv, err := n.normalize(item)
			if err != nil {
				return nil, err
			}
			out[key] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			nv, err := n.normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case Normalizable:
		jsonForm, err := val.NormalizeJSON()
		if err != nil {
			return nil, err
		}
		return n.normalize(jsonForm)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			nv, err := n.normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			kv, err := n.normalize(iter.Key().Interface())
			if err != nil {
				return nil, err
			}
			key, ok := kv.(string)
			if !ok {
				return nil, ErrNonStringMapKey
			}
			vv, err := n.normalize(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[key] = vv
		}
		return out, nil
	}

	return n.OnGeneralAtom(v)
}
