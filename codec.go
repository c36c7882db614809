package jsv

import (
	"bytes"
	"io"
	"sort"

	"github.com/goccy/go-json"
)

// Codec is the external collaborator selecting a concrete JSON
// encoder/decoder. jsv ships DefaultCodec, backed by goccy/go-json; callers
// may substitute their own.
type Codec interface {
	// Decode reads one JSON value from r into pure-JSON Go types
	// (map[string]any, []any, float64 or json.Number, string, bool, nil);
	// DefaultCodec decodes numbers as json.Number.
	Decode(r io.Reader) (any, error)
	// EncodeToIoData marshals v to compact JSON bytes.
	EncodeToIoData(v any) ([]byte, error)
	// FormatToIoData marshals v to indented ("pretty") JSON bytes.
	FormatToIoData(v any) ([]byte, error)
	// ToOrderedData renders v to JSON bytes with object keys sorted, for
	// deterministic output; requires ordered-map support from the codec.
	ToOrderedData(v any) ([]byte, error)
}

// DefaultCodec is the goccy/go-json-backed Codec used when a caller does not
// supply their own.
type DefaultCodec struct{}

// NewDefaultCodec constructs a DefaultCodec.
func NewDefaultCodec() *DefaultCodec {
	return &DefaultCodec{}
}

// Decode implements Codec.
func (DefaultCodec) Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// EncodeToIoData implements Codec.
func (DefaultCodec) EncodeToIoData(v any) ([]byte, error) {
	return json.Marshal(v)
}

// FormatToIoData implements Codec.
func (DefaultCodec) FormatToIoData(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// ToOrderedData implements Codec, sorting object keys at every nesting level
// before marshaling so two equal values always serialize identically.
func (DefaultCodec) ToOrderedData(v any) ([]byte, error) {
	ordered := orderKeys(v)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(ordered); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// orderedMap preserves explicit key order through goccy/go-json's encoder.
type orderedMap struct {
	keys   []string
	values map[string]any
}

func (m orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func orderKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make(map[string]any, len(val))
		for _, k := range keys {
			values[k] = orderKeys(val[k])
		}
		return orderedMap{keys: keys, values: values}
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = orderKeys(item)
		}
		return out
	default:
		return v
	}
}
