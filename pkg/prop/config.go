// Package prop implements the property model of a node: leaf props,
// composite props addressed by dotted paths, layout-only groups and tabs,
// and the Props bag that owns them.
//
// Every data-bearing item keeps a frozen hot value next to its live value.
// A change only counts when the frozen encoding differs by value; counted
// changes bubble to the bag, which reports one history record to its
// owner.
package prop

import "github.com/aretw0/pagecraft/pkg/event"

// Item kinds accepted in Config.Type.
const (
	TypeField     = ""
	TypeComposite = "composite"
	TypeGroup     = "group"
	TypeTab       = "tab"
)

// Display modes of a group.
const (
	DisplayTab    = "tab"
	DisplayInline = "inline"
	DisplayNone   = "none"
)

// Config declares one item of a Props bag.
type Config struct {
	Name    string   `yaml:"name" mapstructure:"name"`
	Type    string   `yaml:"type,omitempty" mapstructure:"type"`
	Title   string   `yaml:"title,omitempty" mapstructure:"title"`
	Tip     string   `yaml:"tip,omitempty" mapstructure:"tip"`
	Display string   `yaml:"display,omitempty" mapstructure:"display"`
	Items   []Config `yaml:"items,omitempty" mapstructure:"items"`

	// ValueType names the schema type of the value, e.g. "string" or "[int]".
	ValueType    string `yaml:"valueType,omitempty" mapstructure:"valueType"`
	DefaultValue any    `yaml:"defaultValue,omitempty" mapstructure:"defaultValue"`
	InitialValue any    `yaml:"initialValue,omitempty" mapstructure:"initialValue"`

	Hidden          bool `yaml:"hidden,omitempty" mapstructure:"hidden"`
	Disabled        bool `yaml:"disabled,omitempty" mapstructure:"disabled"`
	Ignore          bool `yaml:"ignore,omitempty" mapstructure:"ignore"`
	SupportVariable bool `yaml:"supportVariable,omitempty" mapstructure:"supportVariable"`
	Collapsed       bool `yaml:"collapsed,omitempty" mapstructure:"collapsed"`

	// Accessor transforms the stored value on read.
	Accessor func(value any) any `yaml:"-" mapstructure:"-"`
	// Mutator runs after a counted change with the live and frozen value.
	Mutator func(value, hotValue any) `yaml:"-" mapstructure:"-"`
	// Sync runs when a sibling prop changed.
	Sync func(f Field) `yaml:"-" mapstructure:"-"`
}

// Owner receives history records from a bag.
type Owner interface {
	AddRecord(title string)
}

// Item is anything a bag lists: fields and layout groups.
type Item interface {
	Name() string
	Title() string
	Config() Config
	IsHidden() bool
	IsIgnore() bool
	Destroy()
}

// Field is a data-bearing item.
type Field interface {
	Item

	Value() any
	SetValue(v any)
	// SetHotValue sets the value from frozen data.
	SetHotValue(v any)
	HotValue() any
	MixValue() any
	SetHotData(v any, disableMutator bool)
	ToData() any
	Modify() bool
	Sync()
	IsDisabled() bool

	// Prop resolves a dotted path below this field. Leaves resolve only
	// the empty path.
	Prop(path string) Field

	IsUseVariable() bool
	SetUseVariable(on bool)
	VariableValue() string
	SetVariableValue(name string)

	OnValueChange(fn func(v any)) event.Dispose

	attach(bag *Props, parent *Composite)
}
