// Package node implements the component tree of a page: nodes built from
// schemas, prototypes or snapshots, their structural edits, the hot-data
// round trip that feeds the history, and the placement resolver.
package node

import (
	"slices"
	"strings"

	"github.com/aretw0/pagecraft/pkg/event"
	"github.com/aretw0/pagecraft/pkg/geom"
	"github.com/aretw0/pagecraft/pkg/hot"
	"github.com/aretw0/pagecraft/pkg/location"
	"github.com/aretw0/pagecraft/pkg/prop"
	"github.com/aretw0/pagecraft/pkg/prototype"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// Keys of the hot data of a node.
const (
	HotID            = "id"
	HotComponentName = "componentName"
	HotChildren      = "children"
	HotProps         = "props"
)

// Component names with special handling.
const (
	RootComponentName    = "Page"
	SlotComponentName    = "Slot"
	UnknownComponentName = "UnknownComponent"
)

// Node is one component instance in the tree.
type Node struct {
	owner         Owner
	id            string
	componentName string
	proto         prototype.Prototype
	parent        *Node
	children      []*Node
	props         *prop.Props
	status        Status
	hot           hot.Map
	isRoot        bool
	destroyed     bool

	addons    map[string]func() any
	rawAddons map[string]any

	statusChange   event.Emitter[StatusChange]
	childrenChange event.Emitter[[]*Node]
	destroyEvent   event.Emitter[*Node]
}

// Option configures node construction.
type Option func(*options)

type options struct {
	reserveID bool
	root      bool
}

// WithReservedID keeps the schema id even when another node uses it.
func WithReservedID() Option {
	return func(o *options) { o.reserveID = true }
}

func asRoot() Option {
	return func(o *options) { o.root = true }
}

func newNode(owner Owner, opts []Option) (*Node, options) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if owner == nil {
		owner = &Detached{}
	}
	return &Node{owner: owner, isRoot: o.root, status: Status{Visibility: true}}, o
}

// FromSchema builds a node and its subtree from a component schema.
func FromSchema(owner Owner, data *schema.ComponentSchema, parent *Node, opts ...Option) *Node {
	n, o := newNode(owner, opts)
	n.parent = parent
	data = transformInitData(data.Clone())

	n.id = n.owner.UniqueID(data.ID)
	if o.reserveID && data.ID != "" {
		n.id = data.ID
	}
	n.componentName = data.ComponentName
	n.proto = n.owner.Prototype(n.ComponentName())

	props := map[string]any{}
	for k, v := range data.Props {
		props[k] = v
	}
	if t, ok := n.proto.(prototype.Transformer); ok {
		props = t.TransformToActive(props)
	}
	for k, v := range data.LifeCycles {
		props[k] = v
	}
	if data.Condition != nil {
		props[schema.ConditionProp] = data.Condition
	}
	if data.Loop != nil {
		props[schema.LoopProp] = data.Loop
	}
	if data.LoopArgs != nil {
		props[schema.LoopArgsProp] = slices.Clone(data.LoopArgs)
	}
	n.props = prop.New(n, n.configure(), hot.Live(props))
	n.rawAddons = data.Addons

	children := data.Children
	if children == nil && n.proto != nil && n.IsContainer() {
		children = n.proto.InitialChildren()
	}
	for _, c := range children {
		if c == nil {
			continue
		}
		n.children = append(n.children, FromSchema(n.owner, c, n, childOpts(o)...))
	}
	n.finish()
	return n
}

// FromPrototype builds a fresh instance of proto with its default props
// and initial children.
func FromPrototype(owner Owner, proto prototype.Prototype, parent *Node) *Node {
	return FromSchema(owner, &schema.ComponentSchema{
		ComponentName: proto.ComponentName(),
		Props:         proto.DefaultProps(),
		Children:      proto.InitialChildren(),
	}, parent)
}

// FromSnapshot rebuilds a node from hot data, keeping the ids it holds.
func FromSnapshot(owner Owner, data hot.Map, parent *Node, opts ...Option) (*Node, error) {
	if !validTree(data) {
		return nil, ErrInvalidSnapshot
	}
	n, o := newNode(owner, opts)
	n.parent = parent
	n.id = data.String(HotID)
	n.componentName = data.String(HotComponentName)
	n.proto = n.owner.Prototype(n.ComponentName())

	propsData, _ := data.Map(HotProps)
	n.props = prop.New(n, n.configure(), hot.Snapshot(propsData))

	if list, ok := data.List(HotChildren); ok {
		for _, cm := range list.Maps() {
			c, err := FromSnapshot(n.owner, cm, n, childOpts(o)...)
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, c)
		}
	}
	n.finish()
	return n, nil
}

func childOpts(o options) []Option {
	if o.reserveID {
		return []Option{WithReservedID()}
	}
	return nil
}

// validTree checks data and every descendant. Children must all be
// well-formed maps.
func validTree(data hot.Map) bool {
	if !validSnapshot(data) {
		return false
	}
	list, ok := data.List(HotChildren)
	if !ok {
		return true
	}
	for _, item := range list.All() {
		cm, ok := item.(hot.Map)
		if !ok || !validTree(cm) {
			return false
		}
	}
	return true
}

func validSnapshot(data hot.Map) bool {
	if data.IsZero() || data.String(HotID) == "" {
		return false
	}
	if _, ok := data.Map(HotProps); !ok && data.Has(HotProps) {
		return false
	}
	if _, ok := data.List(HotChildren); !ok && data.Has(HotChildren) && data.Get(HotChildren) != nil {
		return false
	}
	return true
}

func (n *Node) configure() []prop.Config {
	if n.proto == nil {
		return nil
	}
	return n.proto.Configure()
}

func (n *Node) finish() {
	n.hot = n.computeHot()
	n.owner.Track(n)
}

// transformInitData moves components carried by JSBlock prop values into
// the children.
func transformInitData(data *schema.ComponentSchema) *schema.ComponentSchema {
	for _, k := range sortedKeys(data.Props) {
		v := data.Props[k]
		if !schema.IsJSBlock(v) {
			continue
		}
		raw, _ := v.(map[string]any)["value"].(map[string]any)
		if raw == nil {
			continue
		}
		if c, err := schema.DecodeComponent(raw); err == nil {
			data.Children = append(data.Children, c)
		}
	}
	return data
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (n *Node) ID() string                     { return n.id }
func (n *Node) Owner() Owner                   { return n.owner }
func (n *Node) Prototype() prototype.Prototype { return n.proto }
func (n *Node) Parent() *Node                  { return n.parent }
func (n *Node) Props() *prop.Props             { return n.props }
func (n *Node) IsRoot() bool                   { return n.isRoot }
func (n *Node) IsValid() bool                  { return n.proto != nil }
func (n *Node) IsDestroyed() bool              { return n.destroyed }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

func (n *Node) ChildCount() int { return len(n.children) }

// Index returns the position of child, or -1.
func (n *Node) Index(child *Node) int { return slices.Index(n.children, child) }

// ComponentName returns the prototype name, the raw schema name for
// unknown components, or a placeholder.
func (n *Node) ComponentName() string {
	if n.proto != nil {
		return n.proto.ComponentName()
	}
	if n.componentName != "" {
		return n.componentName
	}
	if n.isRoot {
		return RootComponentName
	}
	return UnknownComponentName
}

// Title returns the display title. Slots use their slot title or name.
func (n *Node) Title() string {
	if n.proto == nil {
		return n.ComponentName()
	}
	if n.proto.ComponentName() == SlotComponentName {
		for _, k := range []string{"slotTitle", "slotName"} {
			if s, ok := n.PropValue(k).(string); ok && s != "" {
				return s
			}
		}
		return n.ComponentName()
	}
	return n.proto.Title()
}

func (n *Node) Icon() string {
	if n.proto == nil {
		return ""
	}
	return n.proto.Icon()
}

// PropValue returns the value of a declared or extra prop.
func (n *Node) PropValue(path string) any {
	if v := n.props.PropValue(path); v != nil {
		return v
	}
	v, _ := n.props.ExtraProp(path)
	return v
}

// SetPropValue sets a prop, creating it when undeclared.
func (n *Node) SetPropValue(path string, v any) bool {
	return n.props.SetPropValue(path, v)
}

// SetCondition sets the conditional-rendering expression; nil clears it.
func (n *Node) SetCondition(v any) { n.props.SetExtraProp(schema.ConditionProp, v) }

// SetLoop sets the loop data source; nil clears it.
func (n *Node) SetLoop(v any) { n.props.SetExtraProp(schema.LoopProp, v) }

// SetLoopArgs names the loop item and index variables.
func (n *Node) SetLoopArgs(args []string) {
	if args == nil {
		n.props.SetExtraProp(schema.LoopArgsProp, nil)
		return
	}
	n.props.SetExtraProp(schema.LoopArgsProp, toAnySlice(args))
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// Capability queries. Unknown components are operable but never
// draggable, containers or drop targets.

func (n *Node) CanDragging() bool {
	return n.proto != nil && !n.isRoot && n.proto.CanDragging(n)
}

func (n *Node) CanHovering() bool  { return n.proto == nil || n.proto.CanHovering(n) }
func (n *Node) CanSelecting() bool { return n.proto == nil || n.proto.CanSelecting(n) }
func (n *Node) CanSetting() bool   { return n.proto == nil || n.proto.CanSetting(n) }
func (n *Node) CanOperating() bool { return n.proto == nil || n.proto.CanOperating(n) }

// CanDropTo reports whether n may be placed into container.
func (n *Node) CanDropTo(container *Node) bool {
	return n.proto == nil || n.proto.CanDropTo(container)
}

// CanDropIn reports whether d may be dropped directly into n. A root
// without a prototype accepts anything that may drop to it.
func (n *Node) CanDropIn(d Dragment) bool {
	if n.proto == nil {
		return n.isRoot && d.CanDropTo(n)
	}
	return n.proto.CanDropIn(d) && d.CanDropTo(n)
}

// CanContain reports whether n may hold d anywhere below it. A node never
// contains itself or a container that lives inside the dragged node.
func (n *Node) CanContain(d Dragment) bool {
	if !n.IsContainer() {
		return false
	}
	if dn, ok := d.(*Node); ok && dn.ContainsNode(n) {
		return false
	}
	return n.proto == nil || n.proto.CanContain(d)
}

func (n *Node) IsContainer() bool {
	if n.isRoot && n.proto == nil {
		return true
	}
	return n.proto != nil && n.proto.IsContainer()
}

func (n *Node) IsModal() bool    { return n.proto != nil && n.proto.IsModal() }
func (n *Node) IsFloating() bool { return n.proto != nil && n.proto.IsFloating() }

// IsInline asks the prototype, then the rendering bridge.
func (n *Node) IsInline() bool {
	if n.proto != nil {
		if inline, known := n.proto.IsInline(); known {
			return inline
		}
	}
	d, ok := n.owner.Bridge().Display(n)
	return ok && d.IsInline()
}

// Display returns the computed layout of n, if the bridge knows it.
func (n *Node) Display() (location.Display, bool) {
	return n.owner.Bridge().Display(n)
}

func (n *Node) ableToModifyChildren() bool {
	return n.IsContainer() || (n.proto != nil && n.proto.HasSlot()) || (n.proto == nil && len(n.children) > 0)
}

// IsVisible checks the visibility prop against the current device.
func (n *Node) IsVisible() bool {
	v := n.PropValue("visibility")
	if v == nil || v == "ALL" {
		return true
	}
	device := strings.ToUpper(n.owner.Device())
	m, ok := hot.Freeze(v).(hot.List)
	if !ok {
		return false
	}
	for _, item := range m.All() {
		if s, ok := item.(string); ok && s == device {
			return true
		}
	}
	return false
}

// Rect returns the rendered rectangle. The root covers the owner bounds.
func (n *Node) Rect() (geom.Rect, bool) {
	if n.isRoot {
		if r, ok := n.owner.Bounds(); ok {
			return r, true
		}
	}
	return n.owner.Bridge().Rect(n)
}

// ContainsNode reports whether other is n or below n.
func (n *Node) ContainsNode(other *Node) bool {
	if other == nil {
		return false
	}
	if other == n {
		return true
	}
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// IsChildOf reports whether n is a child of other, or any descendant when
// recursive.
func (n *Node) IsChildOf(other *Node, recursive bool) bool {
	if !recursive {
		return n.parent != nil && n.parent == other
	}
	return other != n && other.ContainsNode(n)
}

// FindNode returns the node with id in the subtree of n.
func (n *Node) FindNode(id string) *Node {
	if n.id == id {
		return n
	}
	for _, c := range n.children {
		if f := c.FindNode(id); f != nil {
			return f
		}
	}
	return nil
}

// NodeAt returns the deepest node whose rectangle contains p.
func (n *Node) NodeAt(p geom.Point) *Node {
	r, ok := n.Rect()
	if !ok || !r.Contains(p) {
		return nil
	}
	for _, c := range slices.Backward(n.children) {
		if f := c.NodeAt(p); f != nil {
			return f
		}
	}
	return n
}

// Walk visits n and its descendants depth first.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// OnStatusChange subscribes to status changes.
func (n *Node) OnStatusChange(fn func(StatusChange)) event.Dispose {
	return n.statusChange.Subscribe(fn)
}

// OnChildrenChange subscribes to structural changes of the child list.
func (n *Node) OnChildrenChange(fn func([]*Node)) event.Dispose {
	return n.childrenChange.Subscribe(fn)
}

// OnPropsChange subscribes to prop changes.
func (n *Node) OnPropsChange(fn func()) event.Dispose {
	return n.props.OnPropsChange(fn)
}

// OnDestroy subscribes to the destruction of n.
func (n *Node) OnDestroy(fn func(*Node)) event.Dispose {
	return n.destroyEvent.Subscribe(fn)
}

func (n *Node) emitChildren() {
	n.childrenChange.Emit(slices.Clone(n.children))
}
