package node

import (
	"github.com/aretw0/pagecraft/pkg/geom"
	"github.com/aretw0/pagecraft/pkg/location"
)

// Locate resolves where d would land if released at p inside n. It does
// not mutate anything and returns nil when n cannot take d.
func (n *Node) Locate(d Dragment, p geom.Point) *location.Location {
	// Modal components only go to the root.
	if d.IsModal() {
		if !n.isRoot {
			return nil
		}
		var near location.Element
		if len(n.children) > 0 {
			near = n.children[0]
		}
		return location.New(n, location.Config{Near: near, NearEdge: true})
	}

	if n.isRoot {
		if m := n.owner.VisibleModalNode(); m != nil {
			return m.Locate(d, p)
		}
	}

	if n.isRoot || (n.IsModal() && !n.IsFloating()) {
		for _, f := range n.owner.VisibleFloatingNodes() {
			if !f.IsChildOf(n, true) || !f.IsContainer() {
				continue
			}
			r, ok := f.Rect()
			if !ok || !r.Contains(p) {
				continue
			}
			if loc := f.Locate(d, p); loc != nil {
				return loc
			}
		}
	}

	if !n.CanContain(d) || !n.IsVisible() {
		return nil
	}
	edge, ok := n.Rect()
	if !ok {
		return nil
	}

	if n.CanDropIn(d) {
		return n.locateIn(d, p, edge)
	}

	if !edge.Contains(p) {
		return nil
	}
	// Not a drop target itself: hand over to the nearest child container.
	var near *Node
	nearDistance := -1.0
	for _, c := range n.children {
		r, ok := c.Rect()
		if !c.IsContainer() || !ok || r.Width() <= 0 || r.Height() <= 0 {
			continue
		}
		dist := r.Distance(p)
		if dist == 0 {
			near = c
			break
		}
		if nearDistance < 0 || dist < nearDistance {
			nearDistance = dist
			near = c
		}
	}
	if near == nil {
		return nil
	}
	return near.Locate(d, p)
}

func (n *Node) locateIn(d Dragment, p geom.Point, edge geom.Rect) *location.Location {
	var (
		near         *Node
		nearRect     geom.Rect
		nearIndex    int
		nearDistance = -1.0
	)
	for i, c := range n.children {
		r, ok := c.Rect()
		if !ok {
			continue
		}
		var dist float64
		if c.IsContainer() && r.Contains(p) {
			if loc := c.Locate(d, p); loc != nil {
				return loc
			}
		} else {
			dist = r.Distance(p)
		}
		if dist == 0 {
			near, nearIndex, nearRect, nearDistance = c, i, r, 0
			break
		}
		if nearDistance < 0 || dist < nearDistance {
			near, nearIndex, nearRect, nearDistance = c, i, r, dist
		}
	}

	cfg := location.Config{NearIndex: nearIndex}
	if near != nil {
		cfg.Near = near
		if disp, ok := n.Display(); ok {
			cfg.ContainerDisplay = &disp
		}
		cfg.NearAfter = location.IsNearAfter(p, nearRect, near.IsInline(), cfg.ContainerDisplay)
	}

	if nearDistance != 0 {
		dist, bottom := edge.EdgeDistance(p)
		if nearDistance < 0 || dist < nearDistance {
			cfg.NearAfter = bottom
			cfg.NearEdge = true
			if bottom {
				cfg.NearIndex = len(n.children) - 1
			} else {
				cfg.NearIndex = 0
			}
		}
	}
	return location.New(n, cfg)
}

// ContainerOf returns the node a location points into.
func ContainerOf(loc *location.Location) *Node {
	if loc == nil {
		return nil
	}
	n, _ := loc.Container().(*Node)
	return n
}

// NearOf returns the near sibling of an insertion.
func NearOf(ins *location.Insertion) *Node {
	if ins == nil {
		return nil
	}
	n, _ := ins.Near().(*Node)
	return n
}
