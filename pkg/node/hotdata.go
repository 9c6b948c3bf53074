package node

import (
	"slices"
	"strings"

	"github.com/aretw0/pagecraft/pkg/hot"
	"github.com/aretw0/pagecraft/pkg/prototype"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// HotData returns the snapshot of n and its subtree.
func (n *Node) HotData() hot.Map { return n.hot }

func (n *Node) computeHot() hot.Map {
	data := map[string]any{
		HotID:            n.id,
		HotComponentName: n.ComponentName(),
		HotProps:         n.props.HotData(),
	}
	if n.ableToModifyChildren() {
		items := make([]any, len(n.children))
		for i, c := range n.children {
			items[i] = c.hot
		}
		data[HotChildren] = hot.NewList(items...)
	}
	return hot.NewMap(data)
}

// AddRecord refreshes the snapshot of n and, when it changed, passes the
// record up the tree. The root hands it to the owner history.
func (n *Node) AddRecord(title string) {
	next := n.computeHot()
	if next.Equal(n.hot) {
		return
	}
	n.hot = next
	if title == "" {
		title = "Alter node"
	}
	if n.isRoot {
		n.owner.AddHistory(title)
		return
	}
	n.reportModified()
	if n.parent != nil {
		n.parent.AddRecord(title)
	}
}

func (n *Node) reportModified() {
	if n.isRoot || n.proto == nil {
		return
	}
	if obs, ok := n.proto.(prototype.SubtreeObserver); ok {
		obs.SubtreeModified(n)
	}
}

// SetHotData replays a snapshot onto n. Descendants are matched by id
// and component name anywhere in the subtree, so surviving nodes keep
// their identity even when the snapshot moved them. Unmatched entries are
// created and leftover nodes destroyed. Malformed data anywhere in the
// tree is rejected before n is touched.
func (n *Node) SetHotData(data hot.Map) bool {
	if !validTree(data) || data.String(HotID) != n.id {
		return false
	}
	pool := make(map[string]*Node)
	for _, c := range n.children {
		c.Walk(func(d *Node) bool {
			pool[d.id] = d
			return true
		})
	}

	n.replay(data, pool)

	stale := make([]*Node, 0, len(pool))
	for _, d := range pool {
		stale = append(stale, d)
	}
	slices.SortFunc(stale, func(a, b *Node) int { return strings.Compare(a.id, b.id) })
	for _, d := range stale {
		d.children = nil
		d.parent = nil
		d.Destroy()
	}
	return true
}

func (n *Node) replay(data hot.Map, pool map[string]*Node) {
	var next []*Node
	if list, ok := data.List(HotChildren); ok {
		for _, cm := range list.Maps() {
			id := cm.String(HotID)
			if old, ok := pool[id]; ok && old.ComponentName() == cm.String(HotComponentName) {
				delete(pool, id)
				old.parent = n
				old.replay(cm, pool)
				next = append(next, old)
				continue
			}
			c, err := FromSnapshot(n.owner, cm, n)
			if err != nil {
				continue
			}
			n.owner.AddNode(c)
			next = append(next, c)
		}
	}
	changed := !slices.Equal(next, n.children)
	n.children = next
	if changed {
		n.emitChildren()
	}

	propsData, _ := data.Map(HotProps)
	n.props.SetHotData(propsData)
	n.hot = n.computeHot()
}

// ToData exports n and its subtree as a component schema. Slot children
// are omitted; lifecycle hooks and rendering markers are lifted out of the
// props.
func (n *Node) ToData() *schema.ComponentSchema {
	props := n.props.ToData()
	if t, ok := n.proto.(prototype.Transformer); ok {
		props = t.TransformToStatic(props)
	}
	out := &schema.ComponentSchema{
		ID:            n.id,
		ComponentName: n.ComponentName(),
	}

	if v, ok := props[schema.ConditionProp]; ok {
		if v != nil {
			out.Condition = v
		}
		delete(props, schema.ConditionProp)
	}
	if v, ok := props[schema.LoopProp]; ok {
		if v != nil {
			out.Loop = v
			if args, ok := props[schema.LoopArgsProp]; ok {
				out.LoopArgs = toStrings(args)
			}
		}
		delete(props, schema.LoopProp)
	}
	delete(props, schema.LoopArgsProp)

	for _, name := range schema.LifeCycleNames {
		v, ok := props[name]
		if !ok {
			continue
		}
		if out.LifeCycles == nil {
			out.LifeCycles = make(map[string]any)
		}
		out.LifeCycles[name] = jsValue(v)
		delete(props, name)
	}
	if len(props) > 0 {
		out.Props = props
	}

	if n.ableToModifyChildren() {
		out.Children = make([]*schema.ComponentSchema, 0, len(n.children))
		for _, c := range n.children {
			if c.componentName == SlotComponentName || c.ComponentName() == SlotComponentName {
				continue
			}
			out.Children = append(out.Children, c.ToData())
		}
	}
	out.Addons = n.exportAddons()
	return out
}

func toStrings(v any) []string {
	switch x := v.(type) {
	case []string:
		return slices.Clone(x)
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// jsValue wraps source text as a js expression value.
func jsValue(v any) any {
	if s, ok := v.(string); ok {
		return map[string]any{"type": "js", "compiled": s, "source": s}
	}
	return v
}
