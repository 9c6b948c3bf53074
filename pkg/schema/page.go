package schema

import (
	"encoding/json"
)

var pageKeys = map[string]bool{
	"id": true, "componentsTree": true, "layout": true, "props": true,
	"children": true, "params": true,
}

// PageData is a whole page document.
type PageData struct {
	ID             string             `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	ComponentsTree []*ComponentSchema `json:"componentsTree,omitempty" yaml:"componentsTree,omitempty" mapstructure:"componentsTree"`
	// Layout is the older single-root form of ComponentsTree.
	Layout   *ComponentSchema   `json:"layout,omitempty" yaml:"layout,omitempty" mapstructure:"layout"`
	Props    map[string]any     `json:"props,omitempty" yaml:"props,omitempty" mapstructure:"props"`
	Children []*ComponentSchema `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`
	Params   map[string]any     `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`

	// Addons holds page-level addon data.
	Addons map[string]any `json:"-" yaml:",inline" mapstructure:",remain"`
}

// Root returns the root component, building one from Props and Children
// when the document has no components tree.
func (p *PageData) Root() *ComponentSchema {
	if len(p.ComponentsTree) > 0 && p.ComponentsTree[0] != nil {
		return p.ComponentsTree[0]
	}
	if p.Layout != nil {
		return p.Layout
	}
	return &ComponentSchema{Props: p.Props, Children: p.Children}
}

// Clone returns a deep copy of p.
func (p *PageData) Clone() *PageData {
	if p == nil {
		return nil
	}
	out := &PageData{
		ID:     p.ID,
		Layout: p.Layout.Clone(),
		Props:  cloneMap(p.Props),
		Params: cloneMap(p.Params),
		Addons: cloneMap(p.Addons),
	}
	if p.ComponentsTree != nil {
		out.ComponentsTree = make([]*ComponentSchema, len(p.ComponentsTree))
		for i, c := range p.ComponentsTree {
			out.ComponentsTree[i] = c.Clone()
		}
	}
	if p.Children != nil {
		out.Children = make([]*ComponentSchema, len(p.Children))
		for i, c := range p.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// MarshalJSON writes addons next to the regular keys.
func (p PageData) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Addons)+4)
	for k, v := range p.Addons {
		out[k] = v
	}
	if p.ID != "" {
		out["id"] = p.ID
	}
	if p.ComponentsTree != nil {
		out["componentsTree"] = p.ComponentsTree
	}
	if p.Layout != nil {
		out["layout"] = p.Layout
	}
	if len(p.Props) > 0 {
		out["props"] = p.Props
	}
	if p.Children != nil {
		out["children"] = p.Children
	}
	out["params"] = p.Params
	if p.Params == nil {
		out["params"] = map[string]any{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads regular keys and collects the rest as addons.
func (p *PageData) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := DecodePage(raw)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}
