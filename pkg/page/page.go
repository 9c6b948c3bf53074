// Package page ties a component tree to its history, page parameters and
// addons. A Page is the owner every node of its tree reports to; Pages
// is the ordered collection an editor works on and the drop sensor
// registered with the drag engine.
package page

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/event"
	"github.com/aretw0/pagecraft/pkg/geom"
	"github.com/aretw0/pagecraft/pkg/history"
	"github.com/aretw0/pagecraft/pkg/hot"
	"github.com/aretw0/pagecraft/pkg/location"
	"github.com/aretw0/pagecraft/pkg/node"
	"github.com/aretw0/pagecraft/pkg/prototype"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// Keys of the page snapshot kept by the history.
const (
	HotLayout = "layout"
	HotParams = "params"
)

// ReservedAddons are names an addon cannot take.
var ReservedAddons = []string{"id", HotParams, HotLayout}

// Page is one editable page.
type Page struct {
	id         string
	root       *node.Node
	params     hot.Map
	addonsData map[string]any
	addons     []addon
	history    *history.History
	index      map[string]*node.Node
	visitors   map[string]any

	protos      func(string) prototype.Prototype
	interaction node.Interaction
	bridge      node.Bridge
	bounds      geom.Rect
	mounted     bool
	device      string
	visible     bool
	sensitive   bool
	refreshes   int
	historyOpts []history.Option
	log         *slog.Logger

	floating FloatingNodes
	modals   ModalNodes

	visibleChange event.Emitter[bool]
	paramsChange  event.Emitter[hot.Map]
	nodeCreate    event.Emitter[*node.Node]
	nodeDestroy   event.Emitter[*node.Node]
	ready         event.Signal
	refresh       event.Signal
}

type addon struct {
	name   string
	export func() any
}

var _ node.Owner = (*Page)(nil)

// Option configures a Page.
type Option func(*Page)

// WithRegistry resolves component names through r.
func WithRegistry(r *prototype.Registry) Option {
	return func(p *Page) {
		p.protos = func(name string) prototype.Prototype {
			proto, _ := r.Get(name)
			return proto
		}
	}
}

// WithPrototypes resolves component names through fn.
func WithPrototypes(fn func(name string) prototype.Prototype) Option {
	return func(p *Page) { p.protos = fn }
}

// WithInteraction sets the exchange nodes report selection and hover to.
func WithInteraction(x node.Interaction) Option {
	return func(p *Page) { p.interaction = x }
}

// WithDevice sets the device nodes are checked against for visibility.
func WithDevice(device string) Option {
	return func(p *Page) { p.device = device }
}

// WithHistory passes options to the page history.
func WithHistory(opts ...history.Option) Option {
	return func(p *Page) { p.historyOpts = append(p.historyOpts, opts...) }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(p *Page) {
		if l != nil {
			p.log = l
		}
	}
}

// New builds a page from data. Its history starts with the initial tree
// as the save point.
func New(data *schema.PageData, opts ...Option) *Page {
	if data == nil {
		data = &schema.PageData{}
	}
	p := &Page{
		index:      make(map[string]*node.Node),
		visitors:   make(map[string]any),
		addonsData: maps.Clone(data.Addons),
		params:     hot.NewMap(data.Params),
		log:        logging.NewNop(),
	}
	if p.addonsData == nil {
		p.addonsData = make(map[string]any)
	}
	for _, opt := range opts {
		opt(p)
	}
	p.id = data.ID
	if p.id == "" {
		p.id = "page_" + uuid.NewString()
	}
	p.root = node.NewRoot(p, data.Root())
	p.history = history.New(p.snapshot, p.replay, append([]history.Option{history.WithLogger(p.log)}, p.historyOpts...)...)
	return p
}

func (p *Page) snapshot(prev hot.Value) hot.Value {
	base, _ := hot.AsMap(prev)
	return hot.Snapshot(base.Set(HotLayout, p.root.HotData()).Set(HotParams, p.params))
}

func (p *Page) replay(v hot.Value) error {
	m, ok := hot.AsMap(v)
	if !ok {
		return ErrInvalidSnapshot
	}
	layout, ok := m.Map(HotLayout)
	if !ok {
		return fmt.Errorf("%w: missing layout", ErrInvalidSnapshot)
	}
	params, _ := m.Map(HotParams)
	p.setHotParams(params)
	if !p.root.SetHotData(layout) {
		return fmt.Errorf("%w: layout rejected", ErrInvalidSnapshot)
	}
	return nil
}

// ID returns the page id.
func (p *Page) ID() string { return p.id }

// Root returns the root node.
func (p *Page) Root() *node.Node { return p.root }

// History returns the undo history.
func (p *Page) History() *history.History { return p.history }

// HotData returns the snapshot of the current history step.
func (p *Page) HotData() hot.Value { return p.history.HotData() }

// Node finds a live node by id.
func (p *Page) Node(id string) *node.Node { return p.index[id] }

// Param returns one page parameter.
func (p *Page) Param(name string) any { return hot.Thaw(p.params.Get(name)) }

// Params returns the page parameters.
func (p *Page) Params() hot.Map { return p.params }

// SetParam changes one page parameter and records an undo step.
func (p *Page) SetParam(name string, value any) {
	p.setHotParams(p.params.Set(name, value))
	p.AddHistory("Change page params")
}

func (p *Page) setHotParams(params hot.Map) bool {
	if params.Equal(p.params) {
		return false
	}
	p.params = params
	p.paramsChange.Emit(params)
	return true
}

// RegisterAddon adds page-level data exported by fn under name. A later
// registration with the same name replaces the earlier one.
func (p *Page) RegisterAddon(name string, fn func() any) error {
	if slices.Contains(ReservedAddons, name) {
		return fmt.Errorf("%w: %q", ErrReservedAddon, name)
	}
	p.addons = slices.DeleteFunc(p.addons, func(a addon) bool { return a.name == name })
	p.addons = append(p.addons, addon{name: name, export: fn})
	return nil
}

// AddonData returns the data of one addon, falling back to the data the
// page was loaded with.
func (p *Page) AddonData(name string) any {
	for _, a := range p.addons {
		if a.name == name {
			return a.export()
		}
	}
	return p.addonsData[name]
}

// ExportAddonData merges the loaded addon data with every registered
// addon. An addon exporting nil removes its key.
func (p *Page) ExportAddonData() map[string]any {
	out := maps.Clone(p.addonsData)
	for _, a := range p.addons {
		if v := a.export(); v == nil {
			delete(out, a.name)
		} else {
			out[a.name] = v
		}
	}
	return out
}

// ToData exports the page.
func (p *Page) ToData() *schema.PageData {
	return &schema.PageData{
		ID:             p.id,
		ComponentsTree: []*schema.ComponentSchema{p.root.ToData()},
		Params:         p.params.ToLive(),
		Addons:         p.ExportAddonData(),
	}
}

// AcceptRootVisitor runs fn over the root and keeps its result under
// name. A failing visitor is logged and stores nothing.
func (p *Page) AcceptRootVisitor(name string, fn func(root *node.Node) (any, error)) any {
	if name == "" {
		name = "default"
	}
	res, err := fn(p.root)
	if err != nil {
		p.log.Warn("root visitor failed", "page", p.id, "visitor", name, "error", err)
		return nil
	}
	p.visitors[name] = res
	return res
}

// RootVisitor returns the stored result of a visitor.
func (p *Page) RootVisitor(name string) any { return p.visitors[name] }

// Mount attaches the rendered view: bridge measures nodes and bounds is
// the viewport of the page.
func (p *Page) Mount(bridge node.Bridge, bounds geom.Rect) {
	p.bridge = bridge
	p.bounds = bounds
	wasMounted := p.mounted
	p.mounted = true
	if !wasMounted {
		event.Fire(&p.ready)
	}
}

// Unmount detaches the rendered view.
func (p *Page) Unmount() {
	p.bridge = nil
	p.mounted = false
}

// IsReady reports whether a view is mounted.
func (p *Page) IsReady() bool { return p.mounted }

// SetVisible shows or hides the page.
func (p *Page) SetVisible(on bool) {
	if p.visible == on {
		return
	}
	p.visible = on
	p.visibleChange.Emit(on)
}

// IsVisible reports whether the page is the one shown.
func (p *Page) IsVisible() bool { return p.visible }

// SetDevice switches the device nodes are checked against.
func (p *Page) SetDevice(device string) { p.device = device }

// StartRefresh opens a refresh window; nested windows are counted.
func (p *Page) StartRefresh() { p.refreshes++ }

// EndRefresh closes one refresh window.
func (p *Page) EndRefresh() {
	if p.refreshes > 0 {
		p.refreshes--
	}
}

// CanRefresh reports whether a refresh window is open.
func (p *Page) CanRefresh() bool { return p.refreshes > 0 }

// Refresh asks the view to repaint.
func (p *Page) Refresh() { event.Fire(&p.refresh) }

// FloatingNodes returns the floating node manager.
func (p *Page) FloatingNodes() *FloatingNodes { return &p.floating }

// ModalNodes returns the modal node manager.
func (p *Page) ModalNodes() *ModalNodes { return &p.modals }

// Destroy tears down the tree and the history and drops every listener.
func (p *Page) Destroy() {
	p.Unmount()
	p.root.Destroy()
	p.history.Destroy()
	p.visibleChange.Clear()
	p.paramsChange.Clear()
	p.nodeCreate.Clear()
	p.nodeDestroy.Clear()
	p.ready.Clear()
	p.refresh.Clear()
	p.floating.changed.Clear()
	p.modals.changed.Clear()
}

// Sensor implementation, used through Pages.

// IsEnabled reports whether the page has a mounted view.
func (p *Page) IsEnabled() bool { return p.mounted }

// IsEnter reports whether pt is inside the page viewport.
func (p *Page) IsEnter(pt geom.Point) bool {
	return p.mounted && p.bounds.Contains(pt)
}

// IsInRange keeps the page active while the pointer has not left it to
// the right, where the side panels live.
func (p *Page) IsInRange(pt geom.Point) bool {
	return p.mounted && pt.X <= p.bounds.Right
}

// Orient resolves where d would land at pt.
func (p *Page) Orient(d node.Dragment, pt geom.Point) *location.Location {
	p.sensitive = true
	return p.root.Locate(d, pt)
}

// Deactivate ends drop feedback.
func (p *Page) Deactivate() { p.sensitive = false }

// IsSensitive reports whether a drag is being oriented over the page.
func (p *Page) IsSensitive() bool { return p.sensitive }

// node.Owner implementation.

func (p *Page) Prototype(name string) prototype.Prototype {
	if p.protos == nil {
		return nil
	}
	return p.protos(name)
}

func (p *Page) UniqueID(candidate string) string {
	if candidate != "" {
		if _, used := p.index[candidate]; !used {
			return candidate
		}
	}
	return node.NewID()
}

func (p *Page) Track(n *node.Node) {
	p.index[n.ID()] = n
	p.floating.track(n)
	p.modals.track(n)
}

func (p *Page) AddHistory(title string) {
	if p.history != nil {
		p.history.Log(title)
	}
}

func (p *Page) AddNode(n *node.Node) { p.nodeCreate.Emit(n) }

func (p *Page) DestroyNode(n *node.Node) {
	if p.index[n.ID()] == n {
		delete(p.index, n.ID())
	}
	p.floating.forget(n)
	p.modals.forget(n)
	p.nodeDestroy.Emit(n)
}

func (p *Page) Bridge() node.Bridge {
	if p.bridge == nil {
		return (*node.Layout)(nil)
	}
	return p.bridge
}

func (p *Page) Bounds() (geom.Rect, bool) { return p.bounds, p.mounted }

func (p *Page) Interaction() node.Interaction { return p.interaction }

func (p *Page) VisibleModalNode() *node.Node { return p.modals.Visible() }

func (p *Page) VisibleFloatingNodes() []*node.Node { return p.floating.Visible() }

func (p *Page) Device() string { return p.device }

// Events.

func (p *Page) OnVisibleChange(fn func(bool)) event.Dispose {
	return p.visibleChange.Subscribe(fn)
}

func (p *Page) OnParamsChange(fn func(hot.Map)) event.Dispose {
	return p.paramsChange.Subscribe(fn)
}

func (p *Page) OnNodeCreate(fn func(*node.Node)) event.Dispose {
	return p.nodeCreate.Subscribe(fn)
}

func (p *Page) OnNodeDestroy(fn func(*node.Node)) event.Dispose {
	return p.nodeDestroy.Subscribe(fn)
}

// OnReady fires once, when a view is first mounted.
func (p *Page) OnReady(fn func()) event.Dispose {
	return p.ready.Once(func(struct{}) { fn() })
}

func (p *Page) OnRefresh(fn func()) event.Dispose {
	return p.refresh.Subscribe(func(struct{}) { fn() })
}
