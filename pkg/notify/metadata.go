package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry is a single key/value pair in a Metadata bag.
type Entry struct {
	Key   string
	Value any
}

// Metadata is an insertion-ordered string-keyed bag attached to outcomes and
// deferred envelopes. Unlike a plain map it keeps the order keys were first
// added in, so serialized outcomes are stable and diffable.
//
// Metadata values are never mutated in place; Merge and Set return copies.
type Metadata []Entry

// Get returns the value stored under key and whether it exists.
func (m Metadata) Get(key string) (any, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (m Metadata) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set returns a copy of m with key set to value. An existing key keeps its
// original position; a new key is appended.
func (m Metadata) Set(key string, value any) Metadata {
	return m.Merge(Metadata{{Key: key, Value: value}})
}

// Merge returns a copy of m with extra merged in. Keys already present keep
// their position but take the new value; new keys are appended in order.
func (m Metadata) Merge(extra Metadata) Metadata {
	out := make(Metadata, len(m), len(m)+len(extra))
	copy(out, m)
	for _, e := range extra {
		replaced := false
		for i := range out {
			if out[i].Key == e.Key {
				out[i].Value = e.Value
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, e)
		}
	}
	return out
}

// Map returns the bag as a plain map, losing key order.
func (m Metadata) Map() map[string]any {
	out := make(map[string]any, len(m))
	for _, e := range m {
		out[e.Key] = e.Value
	}
	return out
}

// MarshalJSON encodes the bag as a JSON object with keys in insertion order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata key %q: %w", e.Key, err)
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata value for %q: %w", e.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving its key order.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("metadata: expected JSON object, got %v", tok)
	}

	out := Metadata{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("metadata: non-string key %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		out = append(out, Entry{Key: key, Value: normalizeJSONValue(value)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// normalizeJSONValue converts json.Number back to float64 so a bag survives a
// marshal/unmarshal round trip comparably to values set in code.
func normalizeJSONValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		for i := range t {
			t[i] = normalizeJSONValue(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeJSONValue(t[k])
		}
		return t
	default:
		return v
	}
}
