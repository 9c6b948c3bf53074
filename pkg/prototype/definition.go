package prototype

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/pagecraft/pkg/prop"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// Definition is the declarative form of a prototype, as read from
// component description files.
type Definition struct {
	ComponentName string `yaml:"componentName" mapstructure:"componentName"`
	Title         string `yaml:"title,omitempty" mapstructure:"title"`
	Icon          string `yaml:"icon,omitempty" mapstructure:"icon"`
	Category      string `yaml:"category,omitempty" mapstructure:"category"`

	Container bool  `yaml:"container,omitempty" mapstructure:"container"`
	Slot      bool  `yaml:"slot,omitempty" mapstructure:"slot"`
	Modal     bool  `yaml:"modal,omitempty" mapstructure:"modal"`
	Floating  bool  `yaml:"floating,omitempty" mapstructure:"floating"`
	Inline    *bool `yaml:"inline,omitempty" mapstructure:"inline"`

	// Capability switches default to true when unset.
	Draggable  *bool `yaml:"draggable,omitempty" mapstructure:"draggable"`
	Hoverable  *bool `yaml:"hoverable,omitempty" mapstructure:"hoverable"`
	Selectable *bool `yaml:"selectable,omitempty" mapstructure:"selectable"`
	Settable   *bool `yaml:"settable,omitempty" mapstructure:"settable"`
	Operable   *bool `yaml:"operable,omitempty" mapstructure:"operable"`
	// DropIn defaults to Container.
	DropIn *bool `yaml:"dropIn,omitempty" mapstructure:"dropIn"`

	// Accepts limits which components may be placed inside; empty means any.
	Accepts []string `yaml:"accepts,omitempty" mapstructure:"accepts"`
	// Parents limits which containers the component may be placed in.
	Parents []string `yaml:"parents,omitempty" mapstructure:"parents"`

	Props        []prop.Config             `yaml:"props,omitempty" mapstructure:"props"`
	DefaultProps map[string]any            `yaml:"defaultProps,omitempty" mapstructure:"defaultProps"`
	Children     []*schema.ComponentSchema `yaml:"children,omitempty" mapstructure:"children"`
	RectSelector string                    `yaml:"rectSelector,omitempty" mapstructure:"rectSelector"`
}

// Hooks attach behavior that cannot be declared in a file.
type Hooks struct {
	ToActive        func(props map[string]any) map[string]any
	ToStatic        func(props map[string]any) map[string]any
	DidDropIn       func(container, dragment Target)
	DidDropOut      func(container, dragment Target)
	SubtreeModified func(t Target)
}

// Declared is a Prototype backed by a Definition.
type Declared struct {
	def   Definition
	hooks Hooks
}

// Declare builds a prototype from def.
func Declare(def Definition) *Declared {
	return &Declared{def: def}
}

// WithHooks returns a copy of d using hooks.
func (d *Declared) WithHooks(h Hooks) *Declared {
	return &Declared{def: d.def, hooks: h}
}

// Definition returns the declaration d was built from.
func (d *Declared) Definition() Definition { return d.def }

func (d *Declared) ComponentName() string { return d.def.ComponentName }
func (d *Declared) Icon() string          { return d.def.Icon }
func (d *Declared) Category() string      { return d.def.Category }
func (d *Declared) RectSelector() string  { return d.def.RectSelector }

func (d *Declared) Title() string {
	if d.def.Title != "" {
		return d.def.Title
	}
	return d.def.ComponentName
}

func (d *Declared) Configure() []prop.Config { return d.def.Props }

func (d *Declared) DefaultProps() map[string]any {
	return schemaClone(d.def.DefaultProps)
}

func (d *Declared) InitialChildren() []*schema.ComponentSchema {
	out := make([]*schema.ComponentSchema, 0, len(d.def.Children))
	for _, c := range d.def.Children {
		out = append(out, c.Clone())
	}
	return out
}

func (d *Declared) IsContainer() bool { return d.def.Container }
func (d *Declared) HasSlot() bool     { return d.def.Slot }
func (d *Declared) IsModal() bool     { return d.def.Modal }
func (d *Declared) IsFloating() bool  { return d.def.Floating }

func (d *Declared) IsInline() (bool, bool) {
	if d.def.Inline == nil {
		return false, false
	}
	return *d.def.Inline, true
}

func (d *Declared) CanDragging(Target) bool  { return flag(d.def.Draggable, true) }
func (d *Declared) CanHovering(Target) bool  { return flag(d.def.Hoverable, true) }
func (d *Declared) CanSelecting(Target) bool { return flag(d.def.Selectable, true) }
func (d *Declared) CanSetting(Target) bool   { return flag(d.def.Settable, true) }
func (d *Declared) CanOperating(Target) bool { return flag(d.def.Operable, true) }

func (d *Declared) CanDropTo(container Target) bool {
	return allowed(d.def.Parents, container)
}

func (d *Declared) CanDropIn(dragment Target) bool {
	return flag(d.def.DropIn, d.def.Container) && allowed(d.def.Accepts, dragment)
}

func (d *Declared) CanContain(dragment Target) bool {
	return allowed(d.def.Accepts, dragment)
}

func (d *Declared) TransformToActive(props map[string]any) map[string]any {
	if d.hooks.ToActive == nil {
		return props
	}
	return d.hooks.ToActive(props)
}

func (d *Declared) TransformToStatic(props map[string]any) map[string]any {
	if d.hooks.ToStatic == nil {
		return props
	}
	return d.hooks.ToStatic(props)
}

func (d *Declared) DidDropIn(container, dragment Target) {
	if d.hooks.DidDropIn != nil {
		d.hooks.DidDropIn(container, dragment)
	}
}

func (d *Declared) DidDropOut(container, dragment Target) {
	if d.hooks.DidDropOut != nil {
		d.hooks.DidDropOut(container, dragment)
	}
}

func (d *Declared) SubtreeModified(t Target) {
	if d.hooks.SubtreeModified != nil {
		d.hooks.SubtreeModified(t)
	}
}

// Declarations returns the typed props of d for validation.
func (d *Declared) Declarations() (schema.Declarations, error) {
	raw := make(map[string]string)
	collectTypes(d.def.Props, raw)
	return schema.ParseDeclarations(raw)
}

func collectTypes(cfgs []prop.Config, out map[string]string) {
	for _, c := range cfgs {
		switch c.Type {
		case prop.TypeGroup, prop.TypeTab:
			collectTypes(c.Items, out)
		case prop.TypeComposite:
			out[c.Name] = "object"
		default:
			if c.ValueType != "" {
				out[c.Name] = c.ValueType
			}
		}
	}
}

// ParseDefinitions reads one definition or a list of definitions from YAML
// or JSON.
func ParseDefinitions(data []byte) ([]Definition, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse definitions: %w", err)
	}
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		if list, ok := v["components"].([]any); ok {
			items = list
		} else {
			items = []any{v}
		}
	default:
		return nil, fmt.Errorf("%w: expected a definition or a list", schema.ErrMalformed)
	}

	defs := make([]Definition, 0, len(items))
	for i, item := range items {
		var def Definition
		if err := schema.Decode(item, &def); err != nil {
			return nil, fmt.Errorf("definition %d: %w", i, err)
		}
		if def.ComponentName == "" {
			return nil, fmt.Errorf("definition %d: %w: missing componentName", i, schema.ErrMalformed)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func flag(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func allowed(list []string, t Target) bool {
	if len(list) == 0 {
		return true
	}
	if t == nil {
		return false
	}
	return slices.Contains(list, t.ComponentName())
}

func schemaClone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := &schema.ComponentSchema{Props: m}
	return c.Clone().Props
}
