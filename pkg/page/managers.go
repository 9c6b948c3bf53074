package page

import (
	"slices"

	"github.com/aretw0/pagecraft/pkg/event"
	"github.com/aretw0/pagecraft/pkg/node"
)

// FloatingNodes tracks the floating nodes of a page, such as popovers,
// which the resolver tries before the regular tree.
type FloatingNodes struct {
	nodes   []*node.Node
	changed event.Signal
}

func (m *FloatingNodes) track(n *node.Node) {
	if !n.IsFloating() || slices.Contains(m.nodes, n) {
		return
	}
	m.nodes = append(m.nodes, n)
	event.Fire(&m.changed)
}

func (m *FloatingNodes) forget(n *node.Node) {
	if i := slices.Index(m.nodes, n); i >= 0 {
		m.nodes = slices.Delete(m.nodes, i, i+1)
		event.Fire(&m.changed)
	}
}

// Nodes returns every tracked floating node.
func (m *FloatingNodes) Nodes() []*node.Node { return slices.Clone(m.nodes) }

// Visible returns the floating nodes currently shown.
func (m *FloatingNodes) Visible() []*node.Node {
	var out []*node.Node
	for _, n := range m.nodes {
		if n.IsVisibleInPane() {
			out = append(out, n)
		}
	}
	return out
}

// OnChange subscribes to additions and removals.
func (m *FloatingNodes) OnChange(fn func()) event.Dispose {
	return m.changed.Subscribe(func(struct{}) { fn() })
}

// ModalNodes tracks the modal nodes of a page. Modals start hidden and at
// most one is shown at a time; while one is shown, drops are confined to
// it.
type ModalNodes struct {
	nodes   []*node.Node
	changed event.Signal
}

func (m *ModalNodes) track(n *node.Node) {
	if !n.IsModal() || slices.Contains(m.nodes, n) {
		return
	}
	n.SetStatus(node.StatusVisibility, false)
	m.nodes = append(m.nodes, n)
	event.Fire(&m.changed)
}

func (m *ModalNodes) forget(n *node.Node) {
	if i := slices.Index(m.nodes, n); i >= 0 {
		m.nodes = slices.Delete(m.nodes, i, i+1)
		event.Fire(&m.changed)
	}
}

// Nodes returns every tracked modal node.
func (m *ModalNodes) Nodes() []*node.Node { return slices.Clone(m.nodes) }

// Show makes n the visible modal and hides the others. It reports false
// when n is not a tracked modal.
func (m *ModalNodes) Show(n *node.Node) bool {
	if !slices.Contains(m.nodes, n) {
		return false
	}
	for _, o := range m.nodes {
		o.SetStatus(node.StatusVisibility, o == n)
	}
	event.Fire(&m.changed)
	return true
}

// Hide hides every modal.
func (m *ModalNodes) Hide() {
	for _, o := range m.nodes {
		o.SetStatus(node.StatusVisibility, false)
	}
	event.Fire(&m.changed)
}

// Visible returns the shown modal, or nil.
func (m *ModalNodes) Visible() *node.Node {
	for _, n := range m.nodes {
		if n.IsVisibleInPane() {
			return n
		}
	}
	return nil
}

// OnChange subscribes to additions, removals and visibility switches.
func (m *ModalNodes) OnChange(fn func()) event.Dispose {
	return m.changed.Subscribe(func(struct{}) { fn() })
}
