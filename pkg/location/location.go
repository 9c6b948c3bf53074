// Package location describes proposed drop points produced by the
// placement resolver. Values are immutable once constructed.
package location

import (
	"math"
	"strings"

	"github.com/aretw0/pagecraft/pkg/geom"
)

// DisplayType is the outer display mode of a rendered element.
type DisplayType string

const (
	DisplayInline      DisplayType = "inline"
	DisplayBlock       DisplayType = "block"
	DisplayInlineBlock DisplayType = "inline-block"
	DisplayFlex        DisplayType = "flex"
)

// FlexDirection is the main axis of a flex container.
type FlexDirection string

const (
	FlexRow           FlexDirection = "row"
	FlexRowReverse    FlexDirection = "row-reverse"
	FlexColumn        FlexDirection = "column"
	FlexColumnReverse FlexDirection = "column-reverse"
)

// Display is the effective layout of a container.
type Display struct {
	Type          DisplayType   `json:"display"`
	FlexDirection FlexDirection `json:"flexDirection,omitempty"`
}

// ParseDisplay builds a Display from computed style values. Flex
// containers without a direction default to row.
func ParseDisplay(display, direction string) Display {
	d := Display{Type: DisplayType(strings.TrimSpace(display))}
	if strings.HasPrefix(display, "flex") || strings.HasPrefix(display, "inline-flex") {
		d.Type = DisplayFlex
		d.FlexDirection = FlexDirection(strings.TrimSpace(direction))
		if d.FlexDirection == "" {
			d.FlexDirection = FlexRow
		}
	}
	return d
}

// IsInline reports whether the display mode flows inline.
func (d Display) IsInline() bool {
	return strings.HasPrefix(string(d.Type), "inline")
}

// IsRow reports whether d lays children out along a horizontal axis.
func (d Display) IsRow() bool {
	return d.Type == DisplayFlex && (d.FlexDirection == FlexRow || d.FlexDirection == FlexRowReverse)
}

// Element is the view of a tree node a location needs.
type Element interface {
	Rect() (geom.Rect, bool)
	IsInline() bool
}

// Config carries the raw resolver output an Insertion is built from.
type Config struct {
	Near             Element
	NearIndex        int
	NearAfter        bool
	NearEdge         bool
	ContainerDisplay *Display
}

// Insertion is the resolved position inside a container.
type Insertion struct {
	index            int
	near             Element
	nearAfter        bool
	nearEdge         bool
	containerDisplay *Display
}

// NewInsertion resolves the final index: one past the near sibling when
// inserting after it.
func NewInsertion(c Config) *Insertion {
	ins := &Insertion{
		index:     c.NearIndex,
		near:      c.Near,
		nearAfter: c.NearAfter,
		nearEdge:  c.NearEdge,
	}
	if c.ContainerDisplay != nil {
		d := *c.ContainerDisplay
		ins.containerDisplay = &d
	}
	if ins.nearAfter && ins.index >= 0 {
		ins.index++
	}
	return ins
}

// Index returns the child index the dragment would be inserted at.
func (i *Insertion) Index() int { return i.index }

// Near returns the nearest sibling, or nil for an empty container.
func (i *Insertion) Near() Element { return i.near }

// NearRect returns the rectangle of the near sibling.
func (i *Insertion) NearRect() (geom.Rect, bool) {
	if i.near == nil {
		return geom.Rect{}, false
	}
	return i.near.Rect()
}

// IsNearAfter reports whether the insertion follows the near sibling.
func (i *Insertion) IsNearAfter() bool { return i.nearAfter }

// IsNearEdge reports whether the insertion is at the container edge.
func (i *Insertion) IsNearEdge() bool { return i.nearEdge }

// ContainerDisplay returns the display of the near sibling's container.
func (i *Insertion) ContainerDisplay() (Display, bool) {
	if i.containerDisplay == nil {
		return Display{}, false
	}
	return *i.containerDisplay, true
}

// IsVertical reports whether the insertion line should be drawn
// vertically, between two horizontally adjacent siblings.
func (i *Insertion) IsVertical() bool {
	if i.nearEdge {
		return false
	}
	if i.near != nil && i.near.IsInline() {
		return true
	}
	return i.containerDisplay != nil &&
		i.containerDisplay.Type == DisplayFlex &&
		i.containerDisplay.FlexDirection == FlexRow
}

// Location is a container plus the insertion inside it.
type Location struct {
	container Element
	insertion *Insertion
}

// New builds a Location for container from the resolver output.
func New(container Element, c Config) *Location {
	return &Location{container: container, insertion: NewInsertion(c)}
}

// Container returns the receiving container.
func (l *Location) Container() Element { return l.container }

// Insertion returns the insertion inside the container.
func (l *Location) Insertion() *Insertion { return l.insertion }

// IsNearAfter classifies a pointer as before or after a sibling rectangle.
// Inline siblings and row containers compare the manhattan distance to the
// top-left and bottom-right corners; everything else compares vertical
// distance to the top and bottom edges.
func IsNearAfter(p geom.Point, r geom.Rect, inline bool, container *Display) bool {
	if inline || (container != nil && container.IsRow()) {
		toStart := math.Abs(p.X-r.Left) + math.Abs(p.Y-r.Top)
		toEnd := math.Abs(p.X-r.Right) + math.Abs(p.Y-r.Bottom)
		return toStart > toEnd
	}
	return math.Abs(p.Y-r.Top) > math.Abs(p.Y-r.Bottom)
}
