// Package hot holds the persistent, value-comparable representation of
// editor data ("hot data") and the conversions to and from plain Go values
// ("live" data).
//
// A Map or List is never mutated after construction. Setters return a new
// value that shares every untouched child with the original, so snapshots
// kept by the history stay valid while the tree keeps changing.
package hot

import (
	"reflect"
	"slices"
)

// Kind tags which representation a Value carries.
type Kind uint8

const (
	// KindNone is the zero Value.
	KindNone Kind = iota
	// KindLive marks plain Go data (maps, slices, scalars).
	KindLive
	// KindSnapshot marks persistent data (Map, List, scalars).
	KindSnapshot
)

// Value is either live data or a snapshot. Constructors that accept
// initial data take a Value so the two sources are told apart explicitly.
type Value struct {
	kind Kind
	data any
}

// Live wraps plain Go data.
func Live(v any) Value {
	return Value{kind: KindLive, data: v}
}

// Snapshot wraps persistent data, freezing it if needed.
func Snapshot(v any) Value {
	return Value{kind: KindSnapshot, data: Freeze(v)}
}

// Kind returns the tag of v.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v carries nothing at all.
func (v Value) IsZero() bool { return v.kind == KindNone }

// IsSnapshot reports whether v carries persistent data.
func (v Value) IsSnapshot() bool { return v.kind == KindSnapshot }

// Data returns the wrapped data as is.
func (v Value) Data() any { return v.data }

// ToSnapshot converts v into its persistent form.
func (v Value) ToSnapshot() Value {
	if v.kind == KindSnapshot {
		return v
	}
	return Snapshot(v.data)
}

// ToLive converts v into plain Go data.
func (v Value) ToLive() Value {
	if v.kind != KindSnapshot {
		return Value{kind: KindLive, data: v.data}
	}
	return Live(Thaw(v.data))
}

// Get looks up key in v, keeping its tag. Missing keys and non-map data
// yield a zero Value.
func (v Value) Get(key string) Value {
	switch d := v.data.(type) {
	case Map:
		if !d.Has(key) {
			return Value{}
		}
		return Value{kind: v.kind, data: d.Get(key)}
	case map[string]any:
		x, ok := d[key]
		if !ok {
			return Value{}
		}
		return Value{kind: v.kind, data: x}
	}
	return Value{}
}

// Freeze converts plain Go data into its persistent form. Maps with string
// keys become Map, slices and arrays become List, everything else is kept.
func Freeze(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Map, List:
		return x
	case Value:
		return Freeze(x.data)
	case map[string]any:
		return freezeMap(x)
	case []any:
		items := make([]any, len(x))
		for i, item := range x {
			items[i] = Freeze(item)
		}
		return List{items: items}
	case string, bool, int, int64, float64:
		return x
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return freezeMap(m)
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = Freeze(rv.Index(i).Interface())
		}
		return List{items: items}
	}
	return v
}

func freezeMap(src map[string]any) Map {
	m := make(map[string]any, len(src))
	for k, item := range src {
		m[k] = Freeze(item)
	}
	return Map{m: m}
}

// Thaw converts persistent data back into fresh plain Go data that the
// caller owns.
func Thaw(v any) any {
	switch x := v.(type) {
	case Map:
		return x.ToLive()
	case List:
		return x.ToLive()
	case Value:
		return Thaw(x.data)
	}
	return v
}

// Equal reports whether a and b hold the same value. Live data is frozen
// first, numbers compare by magnitude regardless of their Go type.
func Equal(a, b any) bool {
	a, b = Freeze(a), Freeze(b)
	switch x := a.(type) {
	case Map:
		y, ok := b.(Map)
		return ok && x.Equal(y)
	case List:
		y, ok := b.(List)
		return ok && x.Equal(y)
	}
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// sortedKeys is shared by Map iteration and formatting.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
