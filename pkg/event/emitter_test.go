package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/pagecraft/pkg/event"
)

func TestEmitter_SubscribeAndDispose(t *testing.T) {
	var e event.Emitter[int]
	var got []int

	dispose := e.Subscribe(func(v int) { got = append(got, v) })
	e.Subscribe(func(v int) { got = append(got, v*10) })
	assert.Equal(t, 2, e.Len())

	e.Emit(1)
	dispose()
	dispose()
	e.Emit(2)

	assert.Equal(t, []int{1, 10, 20}, got)
	assert.Equal(t, 1, e.Len())
}

func TestEmitter_Once(t *testing.T) {
	var e event.Emitter[string]
	calls := 0
	e.Once(func(string) { calls++ })

	e.Emit("a")
	e.Emit("b")
	assert.Equal(t, 1, calls)
	assert.Zero(t, e.Len())
}

func TestEmitter_SubscribeWhileEmitting(t *testing.T) {
	var e event.Emitter[int]
	late := 0
	e.Subscribe(func(int) {
		e.Subscribe(func(int) { late++ })
	})

	e.Emit(1)
	assert.Zero(t, late, "a listener added during emit waits for the next one")
	e.Emit(2)
	assert.Equal(t, 1, late)
}

func TestGroup_DisposesInReverse(t *testing.T) {
	var order []string
	var g event.Group
	g.Add(func() { order = append(order, "first") }, func() { order = append(order, "second") })

	g.Dispose()
	g.Dispose()
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestSignal(t *testing.T) {
	var s event.Signal
	fired := false
	s.Subscribe(func(struct{}) { fired = true })
	event.Fire(&s)
	assert.True(t, fired)

	s.Clear()
	assert.Zero(t, s.Len())
}
