package hot

import (
	"encoding/json"
	"fmt"
	"iter"
	"strings"
)

// Map is an immutable map with string keys. The zero value is an empty map.
type Map struct {
	m map[string]any
}

// NewMap freezes src into a Map.
func NewMap(src map[string]any) Map {
	if src == nil {
		return Map{}
	}
	return freezeMap(src)
}

// AsMap extracts a Map from v. It accepts Map, Value and live string-keyed
// maps; anything else reports false.
func AsMap(v any) (Map, bool) {
	switch x := v.(type) {
	case Map:
		return x, true
	case Value:
		return AsMap(x.data)
	case nil:
		return Map{}, false
	}
	if m, ok := Freeze(v).(Map); ok {
		return m, true
	}
	return Map{}, false
}

// Len returns the number of keys.
func (m Map) Len() int { return len(m.m) }

// IsZero reports whether m was never assigned.
func (m Map) IsZero() bool { return m.m == nil }

// Has reports whether key is present.
func (m Map) Has(key string) bool {
	_, ok := m.m[key]
	return ok
}

// Get returns the value stored under key, or nil.
func (m Map) Get(key string) any {
	return m.m[key]
}

// String returns the string stored under key, or "".
func (m Map) String(key string) string {
	s, _ := m.m[key].(string)
	return s
}

// Map returns the Map stored under key.
func (m Map) Map(key string) (Map, bool) {
	x, ok := m.m[key].(Map)
	return x, ok
}

// List returns the List stored under key.
func (m Map) List(key string) (List, bool) {
	x, ok := m.m[key].(List)
	return x, ok
}

// Keys returns the keys in ascending order.
func (m Map) Keys() []string {
	return sortedKeys(m.m)
}

// All iterates over the entries in key order.
func (m Map) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range sortedKeys(m.m) {
			if !yield(k, m.m[k]) {
				return
			}
		}
	}
}

// Set returns a copy of m with key bound to the frozen value.
func (m Map) Set(key string, value any) Map {
	out := m.clone(1)
	out.m[key] = Freeze(value)
	return out
}

// Delete returns a copy of m without key.
func (m Map) Delete(key string) Map {
	if !m.Has(key) {
		return m
	}
	out := m.clone(0)
	delete(out.m, key)
	return out
}

// Merge returns a copy of m overlaid with the entries of src.
func (m Map) Merge(src map[string]any) Map {
	out := m.clone(len(src))
	for k, v := range src {
		out.m[k] = Freeze(v)
	}
	return out
}

// Equal reports deep value equality.
func (m Map) Equal(other Map) bool {
	if len(m.m) != len(other.m) {
		return false
	}
	for k, v := range m.m {
		ov, ok := other.m[k]
		if !ok || !Equal(v, ov) {
			return false
		}
	}
	return true
}

// ToLive returns a fresh plain map the caller owns.
func (m Map) ToLive() map[string]any {
	out := make(map[string]any, len(m.m))
	for k, v := range m.m {
		out[k] = Thaw(v)
	}
	return out
}

// MarshalJSON encodes the live form.
func (m Map) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToLive())
}

// UnmarshalJSON decodes a JSON object into m.
func (m *Map) UnmarshalJSON(data []byte) error {
	var live map[string]any
	if err := json.Unmarshal(data, &live); err != nil {
		return err
	}
	*m = NewMap(live)
	return nil
}

// GoString renders m with sorted keys, which keeps test failures readable.
func (m Map) GoString() string {
	var sb strings.Builder
	sb.WriteString("hot.Map{")
	for i, k := range sortedKeys(m.m) {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q: %#v", k, m.m[k])
	}
	sb.WriteString("}")
	return sb.String()
}

func (m Map) clone(extra int) Map {
	out := make(map[string]any, len(m.m)+extra)
	for k, v := range m.m {
		out[k] = v
	}
	return Map{m: out}
}
