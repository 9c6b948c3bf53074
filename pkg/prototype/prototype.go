// Package prototype describes what a component can do: its capabilities,
// its prop declarations and its defaults. Nodes consult their prototype
// for every capability query and fall back to permissive defaults when
// the component is unknown.
package prototype

import (
	"github.com/aretw0/pagecraft/pkg/prop"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// Target is the side of a capability query the prototype inspects: the
// dragged component or the receiving container.
type Target interface {
	ComponentName() string
}

// Prototype is the capability descriptor of a component.
type Prototype interface {
	ComponentName() string
	Title() string
	Icon() string
	Category() string

	Configure() []prop.Config
	DefaultProps() map[string]any
	InitialChildren() []*schema.ComponentSchema

	IsContainer() bool
	HasSlot() bool
	IsModal() bool
	IsFloating() bool
	// IsInline reports the declared flow; known is false when the
	// rendering bridge should decide.
	IsInline() (inline, known bool)

	CanDragging(t Target) bool
	CanHovering(t Target) bool
	CanSelecting(t Target) bool
	CanSetting(t Target) bool
	CanOperating(t Target) bool
	CanDropTo(container Target) bool
	CanDropIn(dragment Target) bool
	CanContain(dragment Target) bool

	// RectSelector names the element the bridge measures, if not the root.
	RectSelector() string
}

// Transformer rewrites props between their stored and live forms.
type Transformer interface {
	TransformToActive(props map[string]any) map[string]any
	TransformToStatic(props map[string]any) map[string]any
}

// DropObserver is told when a descendant drops in or out of a container.
type DropObserver interface {
	DidDropIn(container, dragment Target)
	DidDropOut(container, dragment Target)
}

// SubtreeObserver is told when something below a node changed.
type SubtreeObserver interface {
	SubtreeModified(t Target)
}
