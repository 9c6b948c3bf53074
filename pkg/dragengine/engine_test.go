package dragengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pagecraft/pkg/dragengine"
	"github.com/aretw0/pagecraft/pkg/geom"
	"github.com/aretw0/pagecraft/pkg/location"
	"github.com/aretw0/pagecraft/pkg/node"
	"github.com/aretw0/pagecraft/pkg/schema"
)

type element struct{}

func (element) Rect() (geom.Rect, bool) { return geom.XYWH(0, 0, 100, 100), true }
func (element) IsInline() bool          { return false }

type sensor struct {
	name        string
	area        geom.Rect
	disabled    bool
	deactivated int
	oriented    int
}

func (s *sensor) IsEnabled() bool             { return !s.disabled }
func (s *sensor) IsEnter(p geom.Point) bool   { return s.area.Contains(p) }
func (s *sensor) IsInRange(p geom.Point) bool { return s.area.Contains(p) }
func (s *sensor) Deactivate()                 { s.deactivated++ }

func (s *sensor) Orient(node.Dragment, geom.Point) *location.Location {
	s.oriented++
	return location.New(element{}, location.Config{NearIndex: s.oriented})
}

func existingNode(t *testing.T) *node.Node {
	t.Helper()
	return node.FromSchema(&node.Detached{}, &schema.ComponentSchema{ComponentName: "Box"}, nil)
}

type recorder struct {
	starts int
	drags  []dragSample
	ends   []dragengine.EndEvent
}

type dragSample struct {
	located bool
}

func watch(e *dragengine.Engine) *recorder {
	r := &recorder{}
	e.OnDragStart(func(dragengine.StartEvent) { r.starts++ })
	e.OnDrag(func(ev dragengine.DragEvent) { r.drags = append(r.drags, dragSample{located: ev.Location != nil}) })
	e.OnDragEnd(func(ev dragengine.EndEvent) { r.ends = append(r.ends, ev) })
	return r
}

func TestHasShake(t *testing.T) {
	assert.False(t, dragengine.HasShake(geom.Pt(0, 0), geom.Pt(2, 0)))
	assert.False(t, dragengine.HasShake(geom.Pt(0, 0), geom.Pt(1, 1)))
	assert.True(t, dragengine.HasShake(geom.Pt(0, 0), geom.Pt(2, 1)))
}

func TestGesture_StartsAfterShake(t *testing.T) {
	e := dragengine.New()
	s := &sensor{area: geom.XYWH(0, 0, 500, 500)}
	e.AddSensor(s)
	r := watch(e)

	g := e.Boost(node.MetaDragment{Name: "Box"}, dragengine.At(10, 10))
	require.NotNil(t, g)

	g.Move(dragengine.At(11, 11))
	assert.False(t, g.IsMoving())
	assert.Zero(t, r.starts)
	assert.False(t, e.InDragging())

	g.Move(dragengine.At(20, 20))
	assert.True(t, g.IsMoving())
	assert.True(t, e.InDragging())
	assert.Equal(t, 1, r.starts)
	require.Len(t, r.drags, 1)
	assert.True(t, r.drags[0].located)

	g.Up()
	require.Len(t, r.ends, 1)
	assert.NotNil(t, r.ends[0].Location)
	assert.Equal(t, 1, s.deactivated)
	assert.Nil(t, e.Active())
	assert.True(t, g.IsDone())
}

func TestGesture_ReleaseWithoutMoveEmitsNothing(t *testing.T) {
	e := dragengine.New()
	r := watch(e)
	g := e.Boost(node.MetaDragment{Name: "Box"}, dragengine.At(0, 0))
	g.Up()
	assert.Zero(t, r.starts)
	assert.Empty(t, r.ends)
}

func TestGesture_EscapeCancels(t *testing.T) {
	e := dragengine.New()
	e.AddSensor(&sensor{area: geom.XYWH(0, 0, 500, 500)})
	r := watch(e)

	g := e.Boost(existingNode(t), dragengine.At(0, 0))
	g.Move(dragengine.At(50, 50))
	require.NotNil(t, g.Location())

	g.KeyDown(dragengine.KeyEscape)
	require.Len(t, r.ends, 1)
	assert.Nil(t, r.ends[0].Location)

	g.Move(dragengine.At(60, 60))
	g.Up()
	assert.Len(t, r.ends, 1)
}

func TestGesture_CopyModeOnlyForExistingNodes(t *testing.T) {
	e := dragengine.New()
	r := watch(e)

	g := e.Boost(existingNode(t), dragengine.At(0, 0))
	g.Move(dragengine.Pointer{Point: geom.Pt(10, 10), Alt: true})
	assert.True(t, g.Copy())
	g.Modifiers(false, false)
	assert.False(t, g.Copy())
	g.Modifiers(false, true)
	g.Up()
	require.Len(t, r.ends, 1)
	assert.True(t, r.ends[0].Copy)

	g = e.Boost(node.MetaDragment{Name: "Box"}, dragengine.At(0, 0))
	g.Move(dragengine.Pointer{Point: geom.Pt(10, 10), Ctrl: true})
	assert.False(t, g.Copy())
}

func TestGesture_SensorChoice(t *testing.T) {
	e := dragengine.New()
	left := &sensor{name: "left", area: geom.XYWH(0, 0, 100, 100)}
	right := &sensor{name: "right", area: geom.XYWH(200, 0, 100, 100)}
	e.AddSensor(left)
	e.AddSensor(right)

	g := e.Boost(node.MetaDragment{Name: "Box"}, dragengine.At(150, 50))
	g.Move(dragengine.At(160, 50))
	assert.Nil(t, g.Location(), "a new component needs a sensor it entered")

	g.Move(dragengine.At(50, 50))
	assert.NotNil(t, g.Location())
	assert.Equal(t, 1, left.oriented)

	g.Move(dragengine.At(150, 50))
	assert.Equal(t, 2, left.oriented, "previous sensor is kept when out of every range")

	g.Move(dragengine.At(250, 50))
	assert.Equal(t, 1, right.oriented)
	assert.Equal(t, 1, left.deactivated, "switching sensors deactivates the previous one")

	g.Up()
	assert.Equal(t, 1, right.deactivated)
}

func TestGesture_DisabledSensorsAreSkipped(t *testing.T) {
	e := dragengine.New()
	off := &sensor{area: geom.XYWH(0, 0, 100, 100), disabled: true}
	e.AddSensor(off)
	g := e.Boost(node.MetaDragment{Name: "Box"}, dragengine.At(0, 0))
	g.Move(dragengine.At(50, 50))
	assert.Nil(t, g.Location())
	assert.Zero(t, off.oriented)
}

func TestEngine_Disabled(t *testing.T) {
	e := dragengine.New()
	e.SetEnabled(false)
	assert.Nil(t, e.Boost(node.MetaDragment{Name: "Box"}, dragengine.At(0, 0)))

	called := false
	assert.Nil(t, e.Press(dragengine.At(0, 0), func(dragengine.Pointer) node.Dragment {
		called = true
		return node.MetaDragment{Name: "Box"}
	}))
	assert.False(t, called)
}

func TestEngine_Press(t *testing.T) {
	e := dragengine.New()
	boost := func(dragengine.Pointer) node.Dragment { return node.MetaDragment{Name: "Box"} }

	assert.Nil(t, e.Press(dragengine.Pointer{Button: dragengine.ButtonSecondary}, boost))
	assert.Nil(t, e.Press(dragengine.At(0, 0), func(dragengine.Pointer) node.Dragment { return nil }))
	g := e.Press(dragengine.At(0, 0), boost)
	require.NotNil(t, g)
	assert.Same(t, g, e.Active())
}

func TestEngine_BoostCancelsActiveGesture(t *testing.T) {
	e := dragengine.New()
	e.AddSensor(&sensor{area: geom.XYWH(0, 0, 500, 500)})
	r := watch(e)

	first := e.Boost(existingNode(t), dragengine.At(0, 0))
	first.Move(dragengine.At(30, 30))
	second := e.Boost(existingNode(t), dragengine.At(0, 0))

	assert.True(t, first.IsDone())
	require.Len(t, r.ends, 1)
	assert.Nil(t, r.ends[0].Location)
	assert.Same(t, second, e.Active())
}

func TestEngine_RemoveSensor(t *testing.T) {
	e := dragengine.New()
	s := &sensor{area: geom.XYWH(0, 0, 100, 100)}
	dispose := e.AddSensor(s)
	dispose()

	g := e.Boost(node.MetaDragment{Name: "Box"}, dragengine.At(0, 0))
	g.Move(dragengine.At(50, 50))
	assert.Nil(t, g.Location())
}

func TestGesture_DragEndPanicIsRaisedAfterCleanup(t *testing.T) {
	e := dragengine.New()
	s := &sensor{area: geom.XYWH(0, 0, 100, 100)}
	e.AddSensor(s)
	e.OnDragEnd(func(dragengine.EndEvent) { panic("boom") })

	g := e.Boost(node.MetaDragment{Name: "Box"}, dragengine.At(0, 0))
	g.Move(dragengine.At(50, 50))

	assert.PanicsWithValue(t, "boom", g.Up)
	assert.Nil(t, e.Active())
	assert.False(t, e.InDragging())
	assert.Equal(t, 1, s.deactivated)
}
