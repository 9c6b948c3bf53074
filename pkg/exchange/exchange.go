// Package exchange tracks which node plays each interaction role: the
// dragged node, the drop target, the selection, the hovered node, the
// locked node and the node being edited in place. At most one node holds
// each role, and roles exclude one another as a user would expect.
package exchange

import (
	"log/slog"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/dragengine"
	"github.com/aretw0/pagecraft/pkg/event"
	"github.com/aretw0/pagecraft/pkg/location"
	"github.com/aretw0/pagecraft/pkg/node"
)

// IntoView asks the host to scroll Node into view.
type IntoView struct {
	Node      *node.Node
	Insertion *location.Insertion
}

// Exchange holds the interaction roles.
type Exchange struct {
	dragging       *node.Node
	dropping       *node.Node
	selected       *node.Node
	hovering       *node.Node
	locking        *node.Node
	inPlaceEditing *node.Node

	log *slog.Logger

	draggingChange       event.Emitter[*node.Node]
	droppingChange       event.Emitter[*node.Node]
	selectedChange       event.Emitter[*node.Node]
	hoveringChange       event.Emitter[*node.Node]
	lockingChange        event.Emitter[*node.Node]
	inPlaceEditingChange event.Emitter[*node.Node]
	intoView             event.Emitter[IntoView]
}

var _ node.Interaction = (*Exchange)(nil)

// Option configures an Exchange.
type Option func(*Exchange)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(x *Exchange) {
		if l != nil {
			x.log = l
		}
	}
}

// New returns an Exchange with every role empty.
func New(opts ...Option) *Exchange {
	x := &Exchange{log: logging.NewNop()}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Attach follows the gestures of e: a drag clears the selection, moves the
// dropping role along with the pointer and inserts the dragment where it
// is released.
func (x *Exchange) Attach(e *dragengine.Engine) event.Dispose {
	var g event.Group
	g.Add(
		e.OnDragStart(x.onDragStart),
		e.OnDrag(x.onDrag),
		e.OnDragEnd(x.onDragEnd),
	)
	return g.Dispose
}

func (x *Exchange) onDragStart(ev dragengine.StartEvent) {
	x.Select(nil)
	x.Hover(nil)
	if n, ok := ev.Dragment.(*node.Node); ok {
		x.SetDragging(n)
	}
}

func (x *Exchange) onDrag(ev dragengine.DragEvent) {
	if ev.Location == nil {
		x.SetDropping(nil, nil)
		return
	}
	x.SetDropping(node.ContainerOf(ev.Location), ev.Location.Insertion())
}

func (x *Exchange) onDragEnd(ev dragengine.EndEvent) {
	x.SetDragging(nil)
	x.SetDropping(nil, nil)
	switch ev.Dragment.(type) {
	case node.MetaDragment, *node.MetaDragment:
		return
	}
	if ev.Location == nil {
		return
	}
	container := node.ContainerOf(ev.Location)
	if container == nil {
		return
	}
	var data any = ev.Dragment
	if n, ok := ev.Dragment.(*node.Node); ok && ev.Copy {
		data = n.ToData()
	}
	if inserted := container.Insert(data, ev.Location.Insertion()); inserted != nil {
		x.log.Debug("dropped", "node", inserted.ID(), "container", container.ID(), "copy", ev.Copy)
		x.Select(inserted)
	}
}

// Purge removes n from the first role holding it. A nil n clears dragging,
// dropping, selection, hover and lock.
func (x *Exchange) Purge(n *node.Node) {
	if n == nil {
		x.SetDragging(nil)
		x.SetDropping(nil, nil)
		x.Select(nil)
		x.Hover(nil)
		x.Lock(nil)
		return
	}
	switch n {
	case x.dragging:
		x.SetDragging(nil)
	case x.dropping:
		x.SetDropping(nil, nil)
	case x.selected:
		x.Select(nil)
	case x.hovering:
		x.Hover(nil)
	}
}

// Hover marks the closest hoverable ancestor-or-self of n. The dragged and
// dropping nodes are never hovered.
func (x *Exchange) Hover(n *node.Node) {
	for n != nil && !n.CanHovering() {
		n = n.Parent()
	}
	if n != nil && (n == x.dragging || n == x.dropping) {
		n = nil
	}
	if x.hovering == n {
		return
	}
	if x.hovering != nil {
		x.hovering.SetStatus(node.StatusHovering, false)
	}
	if n != nil {
		n.SetStatus(node.StatusHovering, true)
	}
	x.hovering = n
	x.hoveringChange.Emit(n)
}

// Select marks the closest selectable ancestor-or-self of n, which also
// becomes the hovered node. Selecting anything but the locked node
// releases the lock.
func (x *Exchange) Select(n *node.Node) {
	for n != nil && !n.CanSelecting() {
		n = n.Parent()
	}
	if n != nil {
		x.intoView.Emit(IntoView{Node: n})
	}
	if x.locking != nil && x.locking != n {
		x.Lock(nil)
	}
	if x.selected == n {
		return
	}
	if x.selected != nil {
		x.selected.SetStatus(node.StatusSelected, false)
	}
	if n != nil {
		x.hovering = n
		n.SetStatus(node.StatusSelected, true)
		n.SetStatus(node.StatusHovering, true)
	}
	x.selected = n
	x.selectedChange.Emit(n)
}

// SetDropping makes n the drop target with the proposed insertion. It
// clears selection and hover.
func (x *Exchange) SetDropping(n *node.Node, ins *location.Insertion) {
	if n != nil {
		x.intoView.Emit(IntoView{Node: n, Insertion: ins})
	}
	if x.dropping != nil && x.dropping != n {
		x.dropping.SetStatus(node.StatusDropping, nil)
	}
	if n != nil {
		x.Select(nil)
		x.Hover(nil)
		n.SetStatus(node.StatusDropping, ins)
	}
	x.dropping = n
	x.droppingChange.Emit(n)
}

// SetDragging makes n the dragged node. It clears dropping, selection and
// hover.
func (x *Exchange) SetDragging(n *node.Node) {
	if x.dragging == n {
		return
	}
	if x.dragging != nil {
		x.dragging.SetStatus(node.StatusDragging, false)
	}
	if n != nil {
		x.SetDropping(nil, nil)
		x.Select(nil)
		x.Hover(nil)
		n.SetStatus(node.StatusDragging, true)
	}
	x.dragging = n
	x.draggingChange.Emit(n)
}

// Lock selects and locks n. A nil n releases the lock.
func (x *Exchange) Lock(n *node.Node) {
	x.hold(&x.locking, n, node.StatusLocking, &x.lockingChange)
}

// InPlaceEdit selects n and starts editing it in place. A nil n stops.
func (x *Exchange) InPlaceEdit(n *node.Node) {
	x.hold(&x.inPlaceEditing, n, node.StatusInPlaceEditing, &x.inPlaceEditingChange)
}

func (x *Exchange) hold(slot **node.Node, n *node.Node, field node.StatusField, changed *event.Emitter[*node.Node]) {
	if *slot == n {
		return
	}
	if prev := *slot; prev != nil {
		prev.SetStatus(field, false)
		*slot = nil
	}
	if n != nil {
		x.Select(n)
		n.SetStatus(field, true)
	}
	*slot = n
	changed.Emit(n)
}

func (x *Exchange) Dragging() *node.Node       { return x.dragging }
func (x *Exchange) Dropping() *node.Node       { return x.dropping }
func (x *Exchange) Selected() *node.Node       { return x.selected }
func (x *Exchange) Hovering() *node.Node       { return x.hovering }
func (x *Exchange) Locking() *node.Node        { return x.locking }
func (x *Exchange) InPlaceEditing() *node.Node { return x.inPlaceEditing }

func (x *Exchange) OnDraggingChange(fn func(*node.Node)) event.Dispose {
	return x.draggingChange.Subscribe(fn)
}

func (x *Exchange) OnDroppingChange(fn func(*node.Node)) event.Dispose {
	return x.droppingChange.Subscribe(fn)
}

func (x *Exchange) OnSelectedChange(fn func(*node.Node)) event.Dispose {
	return x.selectedChange.Subscribe(fn)
}

func (x *Exchange) OnHoveringChange(fn func(*node.Node)) event.Dispose {
	return x.hoveringChange.Subscribe(fn)
}

func (x *Exchange) OnLockingChange(fn func(*node.Node)) event.Dispose {
	return x.lockingChange.Subscribe(fn)
}

func (x *Exchange) OnInPlaceEditingChange(fn func(*node.Node)) event.Dispose {
	return x.inPlaceEditingChange.Subscribe(fn)
}

// OnIntoView subscribes to scroll requests.
func (x *Exchange) OnIntoView(fn func(IntoView)) event.Dispose {
	return x.intoView.Subscribe(fn)
}
