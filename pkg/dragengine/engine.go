// Package dragengine turns raw pointer input into drag gestures. A gesture
// starts once the pointer moves past a small shake threshold, asks the
// registered sensors where the dragment would land, and reports the final
// location when the button is released.
package dragengine

import (
	"log/slog"
	"slices"

	"github.com/aretw0/pagecraft/internal/logging"
	"github.com/aretw0/pagecraft/pkg/event"
	"github.com/aretw0/pagecraft/pkg/geom"
	"github.com/aretw0/pagecraft/pkg/location"
	"github.com/aretw0/pagecraft/pkg/node"
)

// ShakeDistance is the squared pointer travel below which a press is not
// yet a drag.
const ShakeDistance = 4.0

// Mouse buttons.
const (
	ButtonPrimary   = 0
	ButtonSecondary = 2
)

// KeyEscape cancels a gesture.
const KeyEscape = "Escape"

// Pointer is one pointer sample.
type Pointer struct {
	geom.Point
	Button int
	Alt    bool
	Ctrl   bool
}

// At is shorthand for a primary-button pointer at (x, y).
func At(x, y float64) Pointer {
	return Pointer{Point: geom.Pt(x, y)}
}

// HasShake reports whether b moved far enough from a to count as a drag.
func HasShake(a, b geom.Point) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx+dy*dy > ShakeDistance
}

// Sensor is a region that can receive drops, such as a page canvas or an
// outline tree.
type Sensor interface {
	IsEnabled() bool
	// IsEnter reports whether p entered the sensor area.
	IsEnter(p geom.Point) bool
	// IsInRange reports whether the sensor still wants p.
	IsInRange(p geom.Point) bool
	Orient(d node.Dragment, p geom.Point) *location.Location
	// Deactivate clears any drop feedback the sensor shows.
	Deactivate()
}

// StartEvent is emitted when a gesture passes the shake threshold.
type StartEvent struct {
	Dragment node.Dragment
	Pointer  Pointer
}

// DragEvent is emitted for every pointer move of a started gesture.
type DragEvent struct {
	Dragment node.Dragment
	Pointer  Pointer
	Location *location.Location
}

// EndEvent is emitted when a started gesture finishes. Location is nil
// when the gesture was cancelled or ended outside every sensor.
type EndEvent struct {
	Dragment node.Dragment
	Location *location.Location
	Copy     bool
}

// Engine owns the sensors and the gesture in progress.
type Engine struct {
	sensors []Sensor
	enabled bool
	active  *Gesture
	log     *slog.Logger

	dragStart event.Emitter[StartEvent]
	drag      event.Emitter[DragEvent]
	dragEnd   event.Emitter[EndEvent]
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New returns an enabled engine without sensors.
func New(opts ...Option) *Engine {
	e := &Engine{enabled: true, log: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddSensor registers s. Sensors are consulted in registration order.
func (e *Engine) AddSensor(s Sensor) event.Dispose {
	e.sensors = append(e.sensors, s)
	return func() { e.RemoveSensor(s) }
}

// RemoveSensor unregisters s.
func (e *Engine) RemoveSensor(s Sensor) {
	if i := slices.Index(e.sensors, s); i >= 0 {
		e.sensors = slices.Delete(e.sensors, i, i+1)
	}
}

// SetEnabled toggles whether new gestures are accepted.
func (e *Engine) SetEnabled(on bool) { e.enabled = on }

// IsEnabled reports whether new gestures are accepted.
func (e *Engine) IsEnabled() bool { return e.enabled }

// Active returns the armed gesture, or nil.
func (e *Engine) Active() *Gesture { return e.active }

// InDragging reports whether a gesture has passed the shake threshold.
func (e *Engine) InDragging() bool {
	return e.active != nil && e.active.moving
}

// Press handles a button press on a drag source. boost picks the dragment
// under the pointer; returning nil ignores the press. Secondary button
// presses never start a gesture.
func (e *Engine) Press(p Pointer, boost func(Pointer) node.Dragment) *Gesture {
	if !e.enabled || p.Button == ButtonSecondary {
		return nil
	}
	d := boost(p)
	if d == nil {
		return nil
	}
	return e.Boost(d, p)
}

// Boost arms a gesture for d pressed at origin. A gesture still in
// progress is cancelled first. It returns nil when the engine is disabled.
func (e *Engine) Boost(d node.Dragment, origin Pointer) *Gesture {
	if !e.enabled || d == nil {
		return nil
	}
	if e.active != nil {
		e.active.Cancel()
	}
	_, isNode := d.(*node.Node)
	g := &Gesture{
		engine:   e,
		dragment: d,
		origin:   origin,
		newbie:   !isNode,
	}
	e.active = g
	return g
}

func (e *Engine) release(g *Gesture) {
	if e.active == g {
		e.active = nil
	}
}

// chooseSensor picks the sensor for p. A new component that has not yet
// been located needs a sensor the pointer entered; otherwise any sensor
// in range will do and the previous one is kept as a fallback.
func (e *Engine) chooseSensor(g *Gesture, p geom.Point) Sensor {
	var use Sensor
	if g.newbie && g.lastLocation == nil {
		for _, s := range e.sensors {
			if s.IsEnabled() && s.IsEnter(p) {
				use = s
				break
			}
		}
	} else {
		for _, s := range e.sensors {
			if s.IsEnabled() && s.IsInRange(p) {
				use = s
				break
			}
		}
		if use == nil {
			use = g.lastSensor
		}
	}
	if use != g.lastSensor {
		if g.lastSensor != nil {
			g.lastSensor.Deactivate()
		}
		g.lastSensor = use
	}
	return use
}

// OnDragStart subscribes to gesture starts.
func (e *Engine) OnDragStart(fn func(StartEvent)) event.Dispose {
	return e.dragStart.Subscribe(fn)
}

// OnDrag subscribes to pointer moves of started gestures.
func (e *Engine) OnDrag(fn func(DragEvent)) event.Dispose {
	return e.drag.Subscribe(fn)
}

// OnDragEnd subscribes to gesture ends.
func (e *Engine) OnDragEnd(fn func(EndEvent)) event.Dispose {
	return e.dragEnd.Subscribe(fn)
}
