package node

import "github.com/aretw0/pagecraft/pkg/location"

// StatusField names one interaction flag of a node.
type StatusField string

const (
	StatusSelected       StatusField = "selected"
	StatusHovering       StatusField = "hovering"
	StatusDragging       StatusField = "dragging"
	StatusDropping       StatusField = "dropping"
	StatusLocking        StatusField = "locking"
	StatusPseudo         StatusField = "pseudo"
	StatusInPlaceEditing StatusField = "inPlaceEditing"
	StatusVisibility     StatusField = "visibility"
)

// Status is the interaction state of a node. Dropping carries the
// insertion while the node receives a drop.
type Status struct {
	Selected       bool
	Hovering       bool
	Dragging       bool
	Dropping       *location.Insertion
	Locking        bool
	Pseudo         bool
	InPlaceEditing bool
	Visibility     bool
}

// StatusChange is emitted for every effective status change.
type StatusChange struct {
	Node   *Node
	Field  StatusField
	Status Status
}

// SetStatus sets one flag. Dropping takes a *location.Insertion or nil,
// every other field a bool. Unknown fields, mistyped values and values
// equal to the current one are ignored. Pseudo requires selected, and
// clearing selected clears pseudo.
func (n *Node) SetStatus(field StatusField, value any) bool {
	s := &n.status
	if field == StatusDropping {
		var ins *location.Insertion
		if value != nil {
			var ok bool
			if ins, ok = value.(*location.Insertion); !ok {
				return false
			}
		}
		if s.Dropping == ins {
			return false
		}
		s.Dropping = ins
		n.statusChange.Emit(StatusChange{Node: n, Field: field, Status: *s})
		return true
	}

	flag, ok := value.(bool)
	if !ok {
		return false
	}
	var target *bool
	switch field {
	case StatusSelected:
		target = &s.Selected
	case StatusHovering:
		target = &s.Hovering
	case StatusDragging:
		target = &s.Dragging
	case StatusLocking:
		target = &s.Locking
	case StatusPseudo:
		target = &s.Pseudo
	case StatusInPlaceEditing:
		target = &s.InPlaceEditing
	case StatusVisibility:
		target = &s.Visibility
	default:
		return false
	}
	if *target == flag {
		return false
	}
	if field == StatusPseudo && flag && !s.Selected {
		return false
	}
	if field == StatusSelected && !flag {
		s.Pseudo = false
	}
	*target = flag
	n.statusChange.Emit(StatusChange{Node: n, Field: field, Status: *s})
	return true
}

// Status returns a copy of the interaction state.
func (n *Node) Status() Status { return n.status }

func (n *Node) IsSelected() bool       { return n.status.Selected }
func (n *Node) IsHovering() bool       { return n.status.Hovering }
func (n *Node) IsDragging() bool       { return n.status.Dragging }
func (n *Node) IsLocking() bool        { return n.status.Locking }
func (n *Node) IsInPlaceEditing() bool { return n.status.InPlaceEditing }
func (n *Node) IsVisibleInPane() bool  { return n.status.Visibility }

// Select makes n the selected node.
func (n *Node) Select() {
	if x := n.owner.Interaction(); x != nil {
		x.Select(n)
	}
}

// Hover makes n the hovered node.
func (n *Node) Hover() {
	if x := n.owner.Interaction(); x != nil {
		x.Hover(n)
	}
}

// SetLock locks n, or releases the lock when n holds it.
func (n *Node) SetLock(on bool) {
	x := n.owner.Interaction()
	if x == nil {
		return
	}
	if on {
		x.Lock(n)
	} else if n.status.Locking {
		x.Lock(nil)
	}
}

// SetInPlaceEdit starts in-place editing of n, or stops it when n is
// being edited.
func (n *Node) SetInPlaceEdit(on bool) {
	x := n.owner.Interaction()
	if x == nil {
		return
	}
	if on {
		x.InPlaceEdit(n)
	} else if n.status.InPlaceEditing {
		x.InPlaceEdit(nil)
	}
}
