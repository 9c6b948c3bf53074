package schema

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Internal prop keys that carry schema-level rendering markers while a
// node is live.
const (
	ConditionProp = "__condition__"
	LoopProp      = "__loop__"
	LoopArgsProp  = "__loopArgs__"
)

// LifeCycleNames are the hooks folded into props while a node is live.
var LifeCycleNames = []string{"constructor", "didMount", "willUnmount"}

// ComponentSchema is one node of a components tree.
type ComponentSchema struct {
	ID            string             `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	ComponentName string             `json:"componentName" yaml:"componentName" mapstructure:"componentName"`
	Props         map[string]any     `json:"props,omitempty" yaml:"props,omitempty" mapstructure:"props"`
	Children      []*ComponentSchema `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`
	LifeCycles    map[string]any     `json:"lifeCycles,omitempty" yaml:"lifeCycles,omitempty" mapstructure:"lifeCycles"`
	Condition     any                `json:"condition,omitempty" yaml:"condition,omitempty" mapstructure:"condition"`
	Loop          any                `json:"loop,omitempty" yaml:"loop,omitempty" mapstructure:"loop"`
	LoopArgs      []string           `json:"loopArgs,omitempty" yaml:"loopArgs,omitempty" mapstructure:"loopArgs"`

	// Addons holds every other top-level key.
	Addons map[string]any `json:"-" yaml:",inline" mapstructure:",remain"`
}

// IsEmpty reports whether c carries no component at all: no id, no name,
// no props and no children. A nil c is empty.
func (c *ComponentSchema) IsEmpty() bool {
	return c == nil || (c.ID == "" && c.ComponentName == "" && len(c.Props) == 0 && len(c.Children) == 0)
}

var componentKeys = map[string]bool{
	"id": true, "componentName": true, "props": true, "children": true,
	"lifeCycles": true, "condition": true, "loop": true, "loopArgs": true,
}

// Clone returns a deep copy of s.
func (s *ComponentSchema) Clone() *ComponentSchema {
	if s == nil {
		return nil
	}
	out := &ComponentSchema{
		ID:            s.ID,
		ComponentName: s.ComponentName,
		Props:         cloneMap(s.Props),
		LifeCycles:    cloneMap(s.LifeCycles),
		Condition:     cloneAny(s.Condition),
		Loop:          cloneAny(s.Loop),
		Addons:        cloneMap(s.Addons),
	}
	if s.LoopArgs != nil {
		out.LoopArgs = append([]string(nil), s.LoopArgs...)
	}
	if s.Children != nil {
		out.Children = make([]*ComponentSchema, len(s.Children))
		for i, c := range s.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Walk calls fn for s and every descendant, depth first. Returning false
// skips the children of the visited component.
func (s *ComponentSchema) Walk(fn func(c *ComponentSchema, depth int) bool) {
	s.walk(fn, 0)
}

func (s *ComponentSchema) walk(fn func(*ComponentSchema, int) bool, depth int) {
	if s == nil || !fn(s, depth) {
		return
	}
	for _, c := range s.Children {
		c.walk(fn, depth+1)
	}
}

// MarshalJSON writes addons next to the regular keys.
func (s ComponentSchema) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Addons)+8)
	for k, v := range s.Addons {
		out[k] = v
	}
	if s.ID != "" {
		out["id"] = s.ID
	}
	out["componentName"] = s.ComponentName
	if len(s.Props) > 0 {
		out["props"] = s.Props
	}
	if s.Children != nil {
		out["children"] = s.Children
	}
	if len(s.LifeCycles) > 0 {
		out["lifeCycles"] = s.LifeCycles
	}
	if s.Condition != nil {
		out["condition"] = s.Condition
	}
	if s.Loop != nil {
		out["loop"] = s.Loop
	}
	if len(s.LoopArgs) > 0 {
		out["loopArgs"] = s.LoopArgs
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads regular keys and collects the rest as addons.
func (s *ComponentSchema) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := DecodeComponent(raw)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}

// ToMap converts s into plain maps, the shape snapshots are built from.
func (s *ComponentSchema) ToMap() map[string]any {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("schema: component is not serializable: %v", err))
	}
	var out map[string]any
	_ = json.Unmarshal(data, &out)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneAny(v)
	}
	return out
}

func cloneAny(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneMap(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = cloneAny(item)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	}
	return v
}

// splitAddons separates known keys from addon keys of a raw component.
func splitAddons(raw map[string]any) map[string]any {
	addons := maps.Clone(raw)
	for k := range componentKeys {
		delete(addons, k)
	}
	if len(addons) == 0 {
		return nil
	}
	return addons
}
