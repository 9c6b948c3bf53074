package hot

import (
	"encoding/json"
	"iter"
)

// List is an immutable sequence. The zero value is an empty list.
type List struct {
	items []any
}

// NewList freezes items into a List.
func NewList(items ...any) List {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = Freeze(item)
	}
	return List{items: out}
}

// Len returns the number of items.
func (l List) Len() int { return len(l.items) }

// At returns the item at i, or nil when out of range.
func (l List) At(i int) any {
	if i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

// All iterates over the items in order.
func (l List) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		for i, item := range l.items {
			if !yield(i, item) {
				return
			}
		}
	}
}

// Maps returns the items that are Maps, in order.
func (l List) Maps() []Map {
	out := make([]Map, 0, len(l.items))
	for _, item := range l.items {
		if m, ok := item.(Map); ok {
			out = append(out, m)
		}
	}
	return out
}

// Append returns a copy of l with items added at the end.
func (l List) Append(items ...any) List {
	out := make([]any, len(l.items), len(l.items)+len(items))
	copy(out, l.items)
	for _, item := range items {
		out = append(out, Freeze(item))
	}
	return List{items: out}
}

// Equal reports deep value equality.
func (l List) Equal(other List) bool {
	if len(l.items) != len(other.items) {
		return false
	}
	for i := range l.items {
		if !Equal(l.items[i], other.items[i]) {
			return false
		}
	}
	return true
}

// ToLive returns a fresh plain slice the caller owns.
func (l List) ToLive() []any {
	out := make([]any, len(l.items))
	for i, item := range l.items {
		out[i] = Thaw(item)
	}
	return out
}

// MarshalJSON encodes the live form.
func (l List) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.ToLive())
}

// UnmarshalJSON decodes a JSON array into l.
func (l *List) UnmarshalJSON(data []byte) error {
	var live []any
	if err := json.Unmarshal(data, &live); err != nil {
		return err
	}
	*l = NewList(live...)
	return nil
}
