package node

import (
	"github.com/google/uuid"

	"github.com/aretw0/pagecraft/pkg/geom"
	"github.com/aretw0/pagecraft/pkg/location"
	"github.com/aretw0/pagecraft/pkg/prototype"
)

// Owner is the page a tree belongs to. Nodes reach every collaborator
// through it.
type Owner interface {
	// Prototype resolves a component name; nil means unknown.
	Prototype(componentName string) prototype.Prototype
	// UniqueID returns candidate when no live node uses it, or a fresh id.
	UniqueID(candidate string) string
	// Track indexes a constructed node by id.
	Track(n *Node)
	// AddHistory records an undo step for the whole tree.
	AddHistory(title string)
	// AddNode announces a node attached to the tree for the first time.
	AddNode(n *Node)
	// DestroyNode announces a destroyed node.
	DestroyNode(n *Node)

	Bridge() Bridge
	Bounds() (geom.Rect, bool)
	Interaction() Interaction
	VisibleModalNode() *Node
	VisibleFloatingNodes() []*Node
	Device() string
}

// Bridge measures rendered nodes.
type Bridge interface {
	Rect(n *Node) (geom.Rect, bool)
	// Display is the computed layout of the element of n.
	Display(n *Node) (location.Display, bool)
}

// Interaction is the subset of the exchange nodes drive.
type Interaction interface {
	Purge(n *Node)
	Select(n *Node)
	Hover(n *Node)
	Lock(n *Node)
	InPlaceEdit(n *Node)
}

// Dragment is what is being dragged: an existing node or a new component.
type Dragment interface {
	prototype.Target
	IsModal() bool
	CanDropTo(container *Node) bool
}

// Source is a dragment that produces insertable data.
type Source interface {
	Dragment
	Data() any
}

// ComponentDragment drags a new instance of a prototype.
type ComponentDragment struct {
	Proto prototype.Prototype
}

func (d ComponentDragment) ComponentName() string { return d.Proto.ComponentName() }
func (d ComponentDragment) IsModal() bool         { return d.Proto.IsModal() }
func (d ComponentDragment) Data() any             { return d.Proto }

func (d ComponentDragment) CanDropTo(container *Node) bool {
	return d.Proto.CanDropTo(container)
}

// MetaDragment carries only metadata. It can be located but is never
// inserted.
type MetaDragment struct {
	Name  string
	Modal bool
	Meta  map[string]any
}

func (d MetaDragment) ComponentName() string   { return d.Name }
func (d MetaDragment) IsModal() bool           { return d.Modal }
func (d MetaDragment) CanDropTo(_ *Node) bool { return true }

// Layout is a Bridge backed by precomputed rectangles, keyed by node id.
type Layout struct {
	Rects    map[string]geom.Rect        `json:"rects" yaml:"rects"`
	Displays map[string]location.Display `json:"displays,omitempty" yaml:"displays,omitempty"`
}

func (l *Layout) Rect(n *Node) (geom.Rect, bool) {
	if l == nil {
		return geom.Rect{}, false
	}
	r, ok := l.Rects[n.ID()]
	return r, ok
}

func (l *Layout) Display(n *Node) (location.Display, bool) {
	if l == nil {
		return location.Display{}, false
	}
	d, ok := l.Displays[n.ID()]
	return d, ok
}

// Detached is an Owner for trees that live outside a page. It indexes
// nodes so ids stay unique.
type Detached struct {
	Protos func(name string) prototype.Prototype
	index  map[string]*Node
}

func (d *Detached) Prototype(name string) prototype.Prototype {
	if d.Protos == nil {
		return nil
	}
	return d.Protos(name)
}

func (d *Detached) UniqueID(candidate string) string {
	if candidate != "" {
		if _, used := d.index[candidate]; !used {
			return candidate
		}
	}
	return NewID()
}

func (d *Detached) Track(n *Node) {
	if d.index == nil {
		d.index = make(map[string]*Node)
	}
	d.index[n.ID()] = n
}

func (d *Detached) DestroyNode(n *Node) {
	if d.index[n.ID()] == n {
		delete(d.index, n.ID())
	}
}

func (d *Detached) AddHistory(string)             {}
func (d *Detached) AddNode(*Node)                 {}
func (d *Detached) Bridge() Bridge                { return (*Layout)(nil) }
func (d *Detached) Bounds() (geom.Rect, bool)     { return geom.Rect{}, false }
func (d *Detached) Interaction() Interaction      { return nil }
func (d *Detached) VisibleModalNode() *Node       { return nil }
func (d *Detached) VisibleFloatingNodes() []*Node { return nil }
func (d *Detached) Device() string                { return "" }

// NewID returns a fresh node id.
func NewID() string {
	return "node_" + uuid.NewString()
}
