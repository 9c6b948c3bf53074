package node

import (
	"slices"

	"github.com/aretw0/pagecraft/pkg/hot"
	"github.com/aretw0/pagecraft/pkg/location"
	"github.com/aretw0/pagecraft/pkg/prototype"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// EditOption tunes a structural edit.
type EditOption func(*editConfig)

type editConfig struct {
	noRecord bool
}

// NoRecord skips the history record of an edit.
func NoRecord() EditOption {
	return func(c *editConfig) { c.noRecord = true }
}

func editOptions(opts []EditOption) editConfig {
	var c editConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Materialize turns insertable data into a node owned by n's owner. It
// accepts *Node, *schema.ComponentSchema, a schema map, a hot.Map snapshot,
// a prototype.Prototype or a Source dragment. It returns nil for anything
// else.
func (n *Node) Materialize(data any) *Node {
	switch d := data.(type) {
	case *Node:
		return d
	case *schema.ComponentSchema:
		if d == nil {
			return nil
		}
		return FromSchema(n.owner, d, nil)
	case map[string]any:
		s, err := schema.DecodeComponent(d)
		if err != nil {
			return nil
		}
		return FromSchema(n.owner, s, nil)
	case hot.Map:
		c, err := FromSnapshot(n.owner, d, nil)
		if err != nil {
			return nil
		}
		return c
	case prototype.Prototype:
		return FromPrototype(n.owner, d, nil)
	case Source:
		return n.Materialize(d.Data())
	}
	return nil
}

// Insert places data at ins, or appends when ins is nil.
func (n *Node) Insert(data any, ins *location.Insertion, opts ...EditOption) *Node {
	index := len(n.children)
	if ins != nil {
		index = ins.Index()
	}
	return n.InsertAt(data, index, opts...)
}

// InsertAt places data at index. A node from another parent is moved
// here; a node already in n is reordered.
func (n *Node) InsertAt(data any, index int, opts ...EditOption) *Node {
	cfg := editOptions(opts)
	child := n.Materialize(data)
	if child == nil || child == n || child.isRoot || child.ContainsNode(n) {
		return nil
	}
	index = max(0, min(index, len(n.children)))

	title := "Move node"
	if i := n.Index(child); i < 0 {
		old := child.parent
		if old == nil {
			title = "Insert node"
		}
		if old != nil && old != n {
			old.RemoveChild(child, true, NoRecord())
		}
		child.setParent(n)
		n.children = slices.Insert(n.children, min(index, len(n.children)), child)
		if old == nil {
			n.owner.AddNode(child)
		}
	} else {
		if index > i {
			index--
		}
		if index == i {
			return child
		}
		n.children = slices.Delete(n.children, i, i+1)
		n.children = slices.Insert(n.children, index, child)
	}

	if cfg.noRecord {
		n.refresh()
	} else {
		n.AddRecord(title)
	}
	n.emitChildren()
	return child
}

// InsertAfter places data right after ref, or last when ref is nil.
func (n *Node) InsertAfter(data any, ref *Node, opts ...EditOption) *Node {
	if !n.ableToModifyChildren() {
		return nil
	}
	index := len(n.children)
	if ref != nil {
		if index = n.Index(ref); index < 0 {
			return nil
		}
		index++
	}
	return n.InsertAt(data, index, opts...)
}

// InsertBefore places data right before ref, or first when ref is nil.
func (n *Node) InsertBefore(data any, ref *Node, opts ...EditOption) *Node {
	if !n.ableToModifyChildren() {
		return nil
	}
	index := 0
	if ref != nil {
		if index = n.Index(ref); index < 0 {
			return nil
		}
	}
	return n.InsertAt(data, index, opts...)
}

// RemoveChild detaches child. Unless move is set the child is destroyed.
func (n *Node) RemoveChild(child *Node, move bool, opts ...EditOption) {
	cfg := editOptions(opts)
	i := n.Index(child)
	if i < 0 {
		return
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.setParent(nil)
	if cfg.noRecord {
		n.refresh()
	} else {
		n.AddRecord("Remove node")
	}
	n.emitChildren()
	if !move {
		child.Destroy()
	}
}

// ReplaceChild swaps child for data at the same position. The
// replacement inherits the selection. Data that cannot become a detached
// node leaves the tree unchanged and returns nil.
func (n *Node) ReplaceChild(child *Node, data any) *Node {
	i := n.Index(child)
	if i < 0 {
		return nil
	}
	repl := n.Materialize(data)
	if repl == nil || repl == child || repl.parent != nil || repl.isRoot || repl.destroyed {
		return nil
	}

	selected := child.status.Selected
	child.Destroy()
	repl.setParent(n)
	n.children[i] = repl
	n.owner.AddNode(repl)
	n.AddRecord("Replace node")
	n.emitChildren()
	if selected {
		repl.Select()
	}
	return repl
}

// ReplaceWith replaces n in its parent. With inherit the replacement keeps
// the id of n and any prop it does not set itself.
func (n *Node) ReplaceWith(data *schema.ComponentSchema, inherit bool) (*Node, error) {
	if n.isRoot || n.parent == nil {
		return nil, ErrRootImmutable
	}
	data = data.Clone()
	var opts []Option
	if inherit {
		if data.ID == "" {
			data.ID = n.id
		}
		if data.Props == nil {
			data.Props = make(map[string]any)
		}
		for k, v := range n.ToData().Props {
			if _, ok := data.Props[k]; !ok {
				data.Props[k] = v
			}
		}
		if data.ID == n.id {
			opts = append(opts, WithReservedID())
		}
	}
	return n.parent.ReplaceChild(n, FromSchema(n.owner, data, nil, opts...)), nil
}

// Remove removes n from its parent.
func (n *Node) Remove() error {
	if n.isRoot {
		return ErrRootImmutable
	}
	if n.parent != nil {
		n.parent.RemoveChild(n, false)
	}
	return nil
}

// Clone inserts a copy of n right after it and selects the copy.
func (n *Node) Clone() (*Node, error) {
	if n.isRoot || n.parent == nil {
		return nil, ErrRootImmutable
	}
	c := n.parent.InsertAfter(n.ToData(), n)
	if c != nil {
		c.Select()
	}
	return c, nil
}

// MergeChildren edits the child list in one step: remover drops children,
// adder returns data to append and sorter reorders the result. Any of them
// may be nil. A single history record is written.
func (n *Node) MergeChildren(remover func(*Node) bool, adder func([]*Node) []any, sorter func(a, b *Node) int) {
	var removed []*Node
	if remover != nil {
		kept := n.children[:0:0]
		for _, c := range n.children {
			if remover(c) {
				removed = append(removed, c)
				continue
			}
			kept = append(kept, c)
		}
		n.children = kept
	}
	if adder != nil {
		for _, data := range adder(slices.Clone(n.children)) {
			c := n.Materialize(data)
			if c == nil || c.parent != nil {
				continue
			}
			c.setParent(n)
			n.children = append(n.children, c)
			n.owner.AddNode(c)
		}
	}
	if sorter != nil {
		slices.SortStableFunc(n.children, sorter)
	}
	for _, c := range removed {
		c.setParent(nil)
		c.Destroy()
	}
	n.AddRecord("Merge children")
	n.emitChildren()
}

// GetSuitablePlace finds where d can be dropped starting at n: n itself
// when it is the root or a drop-in container, otherwise the closest
// accepting ancestor, with ref being the child of that ancestor on the way.
// A root that refuses d falls back to its first child that accepts it.
func (n *Node) GetSuitablePlace(d Dragment, ref *Node) (container, at *Node) {
	return n.suitablePlace(d, ref, false)
}

func (n *Node) suitablePlace(d Dragment, ref *Node, dropIn bool) (*Node, *Node) {
	if n.isRoot || (n.IsContainer() && dropIn) {
		dn, isNode := d.(*Node)
		if n.CanDropIn(d) && !(isNode && dn.ContainsNode(n)) {
			return n, ref
		}
		if n.isRoot {
			for _, c := range n.children {
				if c.CanDropIn(d) {
					return c, ref
				}
			}
		}
	}
	if n.parent != nil {
		return n.parent.suitablePlace(d, n, true)
	}
	return nil, nil
}

// refresh brings the snapshots from n up to the root in line with the
// tree without writing a history record.
func (n *Node) refresh() {
	for c := n; c != nil; c = c.parent {
		c.hot = c.computeHot()
	}
}

func (n *Node) setParent(parent *Node) {
	if n.isRoot || n.parent == parent {
		return
	}
	for c := n.parent; c != nil; c = c.parent {
		if obs, ok := c.proto.(prototype.DropObserver); ok {
			obs.DidDropOut(c, n)
		}
	}
	n.parent = parent
	for c := parent; c != nil; c = c.parent {
		if obs, ok := c.proto.(prototype.DropObserver); ok {
			obs.DidDropIn(c, n)
		}
	}
}

// Destroy purges n from the exchange, destroys the subtree, tells the
// owner and releases every listener.
func (n *Node) Destroy() {
	if n.destroyed {
		return
	}
	n.destroyed = true
	if x := n.owner.Interaction(); x != nil {
		x.Purge(n)
	}
	for _, c := range n.children {
		c.Destroy()
	}
	n.owner.DestroyNode(n)
	n.props.Destroy()
	n.destroyEvent.Emit(n)
	n.destroyEvent.Clear()
	n.statusChange.Clear()
	n.childrenChange.Clear()
}
