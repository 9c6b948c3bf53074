// Package event provides typed, synchronous publish/subscribe channels.
// Every subscription hands back a disposer so listeners never outlive
// their owner.
package event

import "sync"

// Dispose removes a subscription. Calling it more than once is harmless.
type Dispose func()

// Emitter fans a value of type T out to its listeners, in subscription
// order. The zero value is ready to use.
type Emitter[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription[T]
}

type subscription[T any] struct {
	id   uint64
	fn   func(T)
	once bool
}

// Subscribe registers fn and returns its disposer.
func (e *Emitter[T]) Subscribe(fn func(T)) Dispose {
	return e.add(fn, false)
}

// Once registers fn for the next emission only.
func (e *Emitter[T]) Once(fn func(T)) Dispose {
	return e.add(fn, true)
}

func (e *Emitter[T]) add(fn func(T), once bool) Dispose {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscription[T]{id: id, fn: fn, once: once})
	e.mu.Unlock()

	var disposed sync.Once
	return func() {
		disposed.Do(func() { e.remove(id) })
	}
}

func (e *Emitter[T]) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			return
		}
	}
}

// Emit calls every listener with v. Listeners added or removed while
// emitting take effect on the next emission.
func (e *Emitter[T]) Emit(v T) {
	e.mu.Lock()
	subs := make([]subscription[T], len(e.subs))
	copy(subs, e.subs)
	for _, s := range subs {
		if s.once {
			e.removeLocked(s.id)
		}
	}
	e.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

func (e *Emitter[T]) removeLocked(id uint64) {
	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of live subscriptions.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}

// Clear drops every subscription.
func (e *Emitter[T]) Clear() {
	e.mu.Lock()
	e.subs = nil
	e.mu.Unlock()
}

// Signal is an Emitter for notifications without a payload.
type Signal = Emitter[struct{}]

// Fire emits on a Signal.
func Fire(s *Signal) {
	s.Emit(struct{}{})
}

// Group collects disposers so an owner can release them together.
type Group struct {
	mu    sync.Mutex
	items []Dispose
}

// Add records d.
func (g *Group) Add(d ...Dispose) {
	g.mu.Lock()
	g.items = append(g.items, d...)
	g.mu.Unlock()
}

// Dispose releases every recorded disposer in reverse order.
func (g *Group) Dispose() {
	g.mu.Lock()
	items := g.items
	g.items = nil
	g.mu.Unlock()
	for i := len(items) - 1; i >= 0; i-- {
		items[i]()
	}
}
