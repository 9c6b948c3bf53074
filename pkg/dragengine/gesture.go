package dragengine

import (
	"fmt"

	"github.com/aretw0/pagecraft/pkg/location"
	"github.com/aretw0/pagecraft/pkg/node"
)

// Gesture is one press-move-release cycle. Feed it pointer input until
// Up or Cancel; afterwards every method is a no-op.
type Gesture struct {
	engine   *Engine
	dragment node.Dragment
	origin   Pointer

	moving       bool
	newbie       bool
	copy         bool
	done         bool
	lastLocation *location.Location
	lastSensor   Sensor
}

// Dragment returns what is being dragged.
func (g *Gesture) Dragment() node.Dragment { return g.dragment }

// IsMoving reports whether the shake threshold was passed.
func (g *Gesture) IsMoving() bool { return g.moving }

// IsDone reports whether the gesture has finished.
func (g *Gesture) IsDone() bool { return g.done }

// Copy reports whether releasing now would copy instead of move.
func (g *Gesture) Copy() bool { return g.copy }

// Location returns the last location the sensors produced.
func (g *Gesture) Location() *location.Location { return g.lastLocation }

// Move feeds a pointer sample.
func (g *Gesture) Move(p Pointer) {
	if g.done {
		return
	}
	if !g.moving {
		if !HasShake(p.Point, g.origin.Point) {
			return
		}
		g.moving = true
		g.start()
	}
	g.dragTo(p)
}

// Modifiers updates copy mode from the current modifier keys.
func (g *Gesture) Modifiers(alt, ctrl bool) {
	if g.done {
		return
	}
	g.copy = (alt || ctrl) && !g.newbie
}

// KeyDown handles a key press. Escape cancels the gesture.
func (g *Gesture) KeyDown(key string) {
	if g.done {
		return
	}
	if key == KeyEscape {
		g.Cancel()
	}
}

// Cancel ends the gesture without a location.
func (g *Gesture) Cancel() {
	g.lastLocation = nil
	g.over()
}

// Up ends the gesture at the last location.
func (g *Gesture) Up() {
	g.over()
}

func (g *Gesture) start() {
	e := g.engine
	if !g.newbie {
		e.chooseSensor(g, g.origin.Point)
	}
	e.log.Debug("drag start", "component", g.dragment.ComponentName())
	e.dragStart.Emit(StartEvent{Dragment: g.dragment, Pointer: g.origin})
}

func (g *Gesture) dragTo(p Pointer) {
	g.Modifiers(p.Alt, p.Ctrl)
	if s := g.engine.chooseSensor(g, p.Point); s != nil {
		g.lastLocation = s.Orient(g.dragment, p.Point)
	} else {
		g.lastLocation = nil
	}
	g.engine.drag.Emit(DragEvent{Dragment: g.dragment, Pointer: p, Location: g.lastLocation})
}

// over finishes the gesture. Listener panics are re-raised after the
// engine has been reset.
func (g *Gesture) over() {
	if g.done {
		return
	}
	g.done = true
	e := g.engine
	if g.lastSensor != nil {
		g.lastSensor.Deactivate()
	}
	g.lastSensor = nil
	g.newbie = false

	var failure any
	if g.moving {
		ev := EndEvent{Dragment: g.dragment, Location: g.lastLocation, Copy: g.copy}
		func() {
			defer func() { failure = recover() }()
			e.dragEnd.Emit(ev)
		}()
		e.log.Debug("drag end", "component", g.dragment.ComponentName(), "located", ev.Location != nil, "copy", ev.Copy)
	}

	g.moving = false
	g.lastLocation = nil
	e.release(g)
	if failure != nil {
		e.log.Error("drag end handler failed", "error", fmt.Sprint(failure))
		panic(failure)
	}
}
